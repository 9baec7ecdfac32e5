// Package payments owns the payment record lifecycle: invoice issuance
// and the reconciliation that advances pending records to a terminal
// status.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
	apperrors "github.com/chanport/channels-bot/internal/errors"
	"github.com/chanport/channels-bot/internal/gateway"
	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/pkg/metrics"
)

// Service creates payments and reconciles pending ones against the
// gateway. ReconcileOnce is single-flight: a call that finds another
// pass in progress returns immediately without touching any record.
type Service struct {
	payments repository.PaymentRepository
	amounts  repository.AmountRepository
	creds    gateway.CredentialsSource
	client   gateway.Client
	network  string
	log      *slog.Logger

	reconcileMu sync.Mutex

	// now is swapped out by tests.
	now func() time.Time
}

// NewService constructs the payment lifecycle engine.
func NewService(
	paymentsRepo repository.PaymentRepository,
	amounts repository.AmountRepository,
	creds gateway.CredentialsSource,
	client gateway.Client,
	network string,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		payments: paymentsRepo,
		amounts:  amounts,
		creds:    creds,
		client:   client,
		network:  network,
		log:      log,
		now:      time.Now,
	}
}

// RequestPayment issues an invoice for the user at the currently
// configured amount and persists the resulting payment in pending
// state. Nothing is persisted when invoice creation fails. Without
// configured credentials it fails with a gateway-unavailable error.
func (s *Service) RequestPayment(ctx context.Context, userID int64, displayName string) (*domain.Payment, error) {
	if !s.creds.Credentials().Configured() {
		return nil, apperrors.NewGatewayUnavailableError()
	}

	amount, err := s.amounts.Get(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	requestTime := s.now()
	orderID := fmt.Sprintf("%d_%d", userID, requestTime.Unix())

	invoice, err := s.client.CreateInvoice(ctx, gateway.CreateInvoiceRequest{
		Amount:  amount,
		OrderID: orderID,
		Network: s.network,
	})
	if err != nil {
		s.log.Error("invoice creation failed",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, err
	}

	payment := domain.Payment{
		UserID:      userID,
		DisplayName: displayName,
		Amount:      amount,
		InvoiceID:   invoice.ID,
		Status:      domain.StatusPending,
		PayURL:      invoice.PayURL,
		CreatedAt:   requestTime,
	}

	if err := s.payments.Add(ctx, payment); err != nil {
		s.log.Error("failed to persist payment",
			slog.String("invoice_id", invoice.ID), slog.Any("error", err))
		return nil, apperrors.NewStoreError(err)
	}

	metrics.RecordPaymentCreated(amount)

	s.log.Info("invoice created",
		slog.Int64("user_id", userID),
		slog.String("invoice_id", invoice.ID),
		slog.Int("amount", amount),
	)

	return &payment, nil
}

// ReconcileOnce queries the gateway for every pending payment and
// persists any terminal status it learns about, returning the payments
// resolved during this pass. A failure on one record never prevents the
// rest of the pass; payments already terminal are not re-queried.
func (s *Service) ReconcileOnce(ctx context.Context) ([]domain.Payment, error) {
	if !s.reconcileMu.TryLock() {
		s.log.Debug("reconciliation pass already in progress, skipping")
		return nil, nil
	}
	defer s.reconcileMu.Unlock()

	start := s.now()

	pending, err := s.payments.ListPending(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	var resolved []domain.Payment
	for _, payment := range pending {
		if payment.InvoiceID == "" {
			continue
		}

		status, err := s.client.InvoiceStatus(ctx, payment.InvoiceID)
		if err != nil {
			s.log.Warn("status check failed, will retry next pass",
				slog.String("invoice_id", payment.InvoiceID), slog.Any("error", err))
			continue
		}

		if !status.Terminal() {
			continue
		}

		resolvedAt := s.now()
		if err := s.payments.UpdateStatus(ctx, payment.InvoiceID, status, resolvedAt); err != nil {
			if errors.Is(err, repository.ErrTerminalStatus) {
				continue
			}
			s.log.Error("failed to persist payment status",
				slog.String("invoice_id", payment.InvoiceID), slog.Any("error", err))
			continue
		}

		payment.Status = status
		payment.UpdatedAt = &resolvedAt
		resolved = append(resolved, payment)

		metrics.RecordPaymentResolved(string(status))

		s.log.Info("payment resolved",
			slog.String("invoice_id", payment.InvoiceID),
			slog.String("status", string(status)),
		)
	}

	metrics.RecordReconcilePass(len(pending), s.now().Sub(start))

	return resolved, nil
}

// Stats summarizes the payment ledger for the admin report.
type Stats struct {
	Total      int
	Paid       int
	Pending    int
	Failed     int
	Recent     []domain.Payment
	RecentSize int
}

// Stats aggregates counts by status plus the most recent records,
// newest first.
func (s *Service) Stats(ctx context.Context, recent int) (*Stats, error) {
	all, err := s.payments.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	stats := &Stats{Total: len(all), RecentSize: recent}
	for _, p := range all {
		switch p.Status {
		case domain.StatusPaid:
			stats.Paid++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusFailed:
			stats.Failed++
		}
	}

	for i := len(all) - 1; i >= 0 && len(stats.Recent) < recent; i-- {
		stats.Recent = append(stats.Recent, all[i])
	}

	return stats, nil
}
