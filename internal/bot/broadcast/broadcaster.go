// Package broadcast fans one message out to every user in the ledger.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/pkg/metrics"
)

// Sender sends a Telegram message. *telebot.Bot satisfies it.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Result tallies one broadcast run.
type Result struct {
	Sent   int
	Failed int
}

// Broadcaster delivers a message to every recorded user sequentially,
// pausing between sends to stay under Telegram rate limits. A failure
// for one recipient never stops delivery to the rest.
type Broadcaster struct {
	sender Sender
	users  repository.UserLedger
	delay  time.Duration
	log    *slog.Logger
}

// New creates a Broadcaster.
func New(sender Sender, users repository.UserLedger, delay time.Duration, log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}

	return &Broadcaster{
		sender: sender,
		users:  users,
		delay:  delay,
		log:    log,
	}
}

// SendToAll delivers text to every user and reports the tally. The
// context cancels the remaining deliveries, not the one in flight.
func (b *Broadcaster) SendToAll(ctx context.Context, text string) (Result, error) {
	users, err := b.users.List(ctx)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, user := range users {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if _, err := b.sender.Send(telebot.ChatID(user.TelegramID), text); err != nil {
			b.log.Warn("broadcast delivery failed",
				slog.Int64("user_id", user.TelegramID),
				slog.Any("error", err),
			)
			result.Failed++
			metrics.RecordBroadcastMessage("failed")
			continue
		}

		result.Sent++
		metrics.RecordBroadcastMessage("sent")

		if b.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(b.delay):
			}
		}
	}

	b.log.Info("broadcast complete", slog.Int("sent", result.Sent), slog.Int("failed", result.Failed))

	return result, nil
}
