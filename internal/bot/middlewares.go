package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/handlers"
	"github.com/chanport/channels-bot/internal/domain"
	apperrors "github.com/chanport/channels-bot/internal/errors"
	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/pkg/metrics"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Something went wrong. Please try again later."
					if errHandler != nil {
						panicErr := fmt.Errorf("panic recovered: %v", r)
						if msg, _ := errHandler.Handle(context.Background(), panicErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "⚠️ Something went wrong. Please try again later."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates. Free
// text is not logged verbatim: it may contain the admin password.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			chatID := int64(0)
			if c != nil && c.Chat() != nil {
				chatID = c.Chat().ID
			}

			action := updateAction(c)

			log.Info("handling update", slog.Int64("chat_id", chatID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("chat_id", chatID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// RegisterUserMiddleware records first contact in the user ledger.
// Appending an already-known Telegram ID is a no-op.
func RegisterUserMiddleware(ledger repository.UserLedger, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if ledger == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			sender := c.Sender()
			user := domain.User{
				TelegramID: sender.ID,
				FirstName:  sender.FirstName,
				Username:   sender.Username,
				FirstSeen:  time.Now().UTC(),
			}

			if err := ledger.Append(context.Background(), user); err != nil {
				log.Error("failed to record user", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}

			return next(c)
		}
	}
}

// MetricsMiddleware measures execution time and status for bot handlers.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(updateAction(c), status, time.Since(start))

		return err
	}
}

// updateAction maps an update to a low-cardinality action label.
// Commands and callback data are bounded sets; everything else is
// collapsed to "text" so user input never becomes a label or log value.
func updateAction(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		return strings.TrimPrefix(cb.Data, "\f")
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		return text
	}

	return "text"
}
