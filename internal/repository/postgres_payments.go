package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
)

type postgresPaymentRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresPaymentRepository creates a SQL-backed payment repository.
func NewPostgresPaymentRepository(db *sql.DB, log *slog.Logger) PaymentRepository {
	return &postgresPaymentRepository{db: db, log: log}
}

func (r *postgresPaymentRepository) Add(ctx context.Context, payment domain.Payment) error {
	const query = `
		INSERT INTO payments (user_id, display_name, amount, invoice_id, status, pay_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := r.db.ExecContext(ctx, query,
		payment.UserID,
		payment.DisplayName,
		payment.Amount,
		payment.InvoiceID,
		string(payment.Status),
		payment.PayURL,
		payment.CreatedAt,
		payment.UpdatedAt,
	); err != nil {
		r.logError("add payment", err)
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *postgresPaymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	const query = `
		SELECT user_id, display_name, amount, invoice_id, status, pay_url, created_at, updated_at
		FROM payments
		ORDER BY id
	`

	return r.queryPayments(ctx, query)
}

func (r *postgresPaymentRepository) ListPending(ctx context.Context) ([]domain.Payment, error) {
	const query = `
		SELECT user_id, display_name, amount, invoice_id, status, pay_url, created_at, updated_at
		FROM payments
		WHERE status = 'pending'
		ORDER BY id
	`

	return r.queryPayments(ctx, query)
}

// UpdateStatus guards terminal monotonicity in the predicate: only a row
// still in pending state can transition.
func (r *postgresPaymentRepository) UpdateStatus(ctx context.Context, invoiceID string, status domain.PaymentStatus, updatedAt time.Time) error {
	const query = `
		UPDATE payments
		SET status = $2, updated_at = $3
		WHERE invoice_id = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, invoiceID, string(status), updatedAt)
	if err != nil {
		r.logError("update payment status", err)
		return fmt.Errorf("update payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM payments WHERE invoice_id = $1)`
		if err := r.db.QueryRowContext(ctx, existsQuery, invoiceID).Scan(&exists); err != nil {
			return fmt.Errorf("check payment existence: %w", err)
		}

		if exists {
			return ErrTerminalStatus
		}
		return ErrNotFound
	}

	return nil
}

func (r *postgresPaymentRepository) queryPayments(ctx context.Context, query string) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("query payments", err)
		return nil, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var status string
		var updatedAt sql.NullTime

		if err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.Amount,
			&p.InvoiceID,
			&status,
			&p.PayURL,
			&p.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}

		p.Status = domain.PaymentStatus(status)
		if updatedAt.Valid {
			ts := updatedAt.Time
			p.UpdatedAt = &ts
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

func (r *postgresPaymentRepository) logError(operation string, err error) {
	if r.log != nil {
		r.log.Error("payment repository operation failed",
			slog.String("operation", operation), slog.Any("error", err))
	}
}
