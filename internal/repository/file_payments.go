package repository

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
)

const paymentsFile = "payments.json"

// filePaymentRepository stores payments as an ordered JSON array, newest
// last. Status updates rewrite the full document atomically; a terminal
// status is never overwritten.
type filePaymentRepository struct {
	doc *document
}

// NewFilePaymentRepository creates a file-backed payment repository rooted at dir.
func NewFilePaymentRepository(dir string, log *slog.Logger) PaymentRepository {
	return &filePaymentRepository{
		doc: newDocument(filepath.Join(dir, paymentsFile), log),
	}
}

func (r *filePaymentRepository) Add(ctx context.Context, payment domain.Payment) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	var payments []domain.Payment
	r.doc.load(&payments)

	payments = append(payments, payment)

	return r.doc.save(payments)
}

func (r *filePaymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	var payments []domain.Payment
	r.doc.load(&payments)

	return payments, nil
}

func (r *filePaymentRepository) ListPending(ctx context.Context) ([]domain.Payment, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	var payments []domain.Payment
	r.doc.load(&payments)

	pending := make([]domain.Payment, 0)
	for _, p := range payments {
		if !p.Resolved() {
			pending = append(pending, p)
		}
	}

	return pending, nil
}

func (r *filePaymentRepository) UpdateStatus(ctx context.Context, invoiceID string, status domain.PaymentStatus, updatedAt time.Time) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	var payments []domain.Payment
	r.doc.load(&payments)

	for i := range payments {
		if payments[i].InvoiceID != invoiceID {
			continue
		}

		if payments[i].Resolved() {
			return ErrTerminalStatus
		}

		payments[i].Status = status
		ts := updatedAt
		payments[i].UpdatedAt = &ts

		return r.doc.save(payments)
	}

	return ErrNotFound
}
