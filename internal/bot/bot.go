// Package bot is the Telegram front end: it receives updates, routes
// them through the admin conversation machine, and exposes the channel
// grid and payment entry points to ordinary users.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/broadcast"
	"github.com/chanport/channels-bot/internal/bot/handlers"
	"github.com/chanport/channels-bot/internal/bot/keyboard"
	apperrors "github.com/chanport/channels-bot/internal/errors"
	"github.com/chanport/channels-bot/internal/payments"
	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/internal/state"
	"github.com/chanport/channels-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application wiring for handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	machine     state.Machine
	router      *Router
	dispatcher  *Dispatcher
	keyboard    *keyboard.Builder
	errHandler  *apperrors.Handler
	broadcaster *broadcast.Broadcaster
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	machine state.Machine,
	stores *repository.Stores,
	paymentService *payments.Service,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(machine, log)
	router := NewRouter(dispatcher, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)
	broadcaster := broadcast.New(tb, stores.Users, cfg.Broadcast.Delay, log)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		machine:     machine,
		router:      router,
		dispatcher:  dispatcher,
		keyboard:    kb,
		errHandler:  errHandler,
		broadcaster: broadcaster,
	}

	b.setupRouter(stores, paymentService)
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations
// such as health checks and payment notifications.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Notifier returns the resolution notifier for the reconciliation loop.
func (b *Bot) Notifier() payments.Notifier {
	return NewPaymentNotifier(b.telebot, b.log)
}

func (b *Bot) setupRouter(stores *repository.Stores, paymentService *payments.Service) {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(RegisterUserMiddleware(stores.Users, b.log))
	b.router.Use(MetricsMiddleware)

	adminFlow := handlers.NewAdminFlow(
		b.machine,
		stores.Groups,
		stores.Users,
		stores.Amount,
		paymentService,
		b.broadcaster,
		b.keyboard,
		b.cfg.Admin.Password,
		b.log,
	)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(stores.Groups, b.keyboard, b.log))
	b.router.RegisterCommand(CommandAdmin, adminFlow.Entry())
	b.router.RegisterCommand(CommandCancel, adminFlow.Cancel())

	b.router.RegisterCallback(handlers.CallbackMakePayment, handlers.NewMakePaymentHandler(paymentService, b.log))
	b.router.RegisterCallback(handlers.CallbackRefresh, handlers.NewRefreshHandler(stores.Groups, b.keyboard, b.log))

	b.dispatcher.RegisterStateHandler(state.StateUnauthenticated, adminFlow.HandlePassword())
	b.dispatcher.RegisterStateHandler(state.StateMainMenu, adminFlow.HandleMenu())
	b.dispatcher.RegisterStateHandler(state.StateAwaitGroupName, adminFlow.HandleGroupName())
	b.dispatcher.RegisterStateHandler(state.StateAwaitGroupLink, adminFlow.HandleGroupLink())
	b.dispatcher.RegisterStateHandler(state.StateAwaitGroupChoice, adminFlow.HandleGroupChoice())
	b.dispatcher.RegisterStateHandler(state.StateAwaitBroadcastText, adminFlow.HandleBroadcastText())
	b.dispatcher.RegisterStateHandler(state.StateAwaitAmount, adminFlow.HandleAmount())
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
