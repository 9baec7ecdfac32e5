package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
	"github.com/chanport/channels-bot/pkg/logger"
)

// Notifier receives payments the moment they resolve, so the front end
// can tell the payer. Delivery failures are the notifier's problem; the
// reconciler has already persisted the terminal status.
type Notifier interface {
	PaymentResolved(ctx context.Context, payment domain.Payment)
}

// Reconciler drives ReconcileOnce on a fixed interval for the lifetime
// of the process. The interval is a floor: the timer for the next pass
// starts only after the previous pass completes, so passes never
// overlap. Stop lets an in-flight pass finish before returning.
type Reconciler struct {
	service  *Service
	notifier Notifier
	interval time.Duration
	log      *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewReconciler builds the background reconciliation loop.
func NewReconciler(service *Service, notifier Notifier, interval time.Duration, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Reconciler{
		service:  service,
		notifier: notifier,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop in its own goroutine.
func (r *Reconciler) Start() {
	go r.run()

	r.log.Info("payment reconciliation started",
		slog.Duration("interval", r.interval))
}

// Stop signals the loop to exit and waits for the in-flight pass, if
// any, to complete.
func (r *Reconciler) Stop(ctx context.Context) error {
	close(r.stop)

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) run() {
	defer close(r.done)

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-timer.C:
		}

		r.pass()
		timer.Reset(r.interval)
	}
}

func (r *Reconciler) pass() {
	ctx := logger.WithCorrelationID(context.Background())

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in reconciliation pass", slog.Any("panic", rec))
		}
	}()

	resolved, err := r.service.ReconcileOnce(ctx)
	if err != nil {
		r.log.Error("reconciliation pass failed", slog.Any("error", err))
		return
	}

	if r.notifier == nil {
		return
	}

	for _, payment := range resolved {
		r.notifier.PaymentResolved(ctx, payment)
	}
}
