package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chanport/channels-bot/internal/domain"
)

type postgresAmountRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresAmountRepository creates a SQL-backed amount repository.
func NewPostgresAmountRepository(db *sql.DB, log *slog.Logger) AmountRepository {
	return &postgresAmountRepository{db: db, log: log}
}

func (r *postgresAmountRepository) Get(ctx context.Context) (int, error) {
	const query = `SELECT usdt FROM payment_settings WHERE id = 1`

	var usdt int
	err := r.db.QueryRowContext(ctx, query).Scan(&usdt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultPaymentAmount, nil
	}
	if err != nil {
		if r.log != nil {
			r.log.Warn("failed to read payment amount, using default", slog.Any("error", err))
		}
		return domain.DefaultPaymentAmount, nil
	}

	if usdt <= 0 {
		return domain.DefaultPaymentAmount, nil
	}

	return usdt, nil
}

func (r *postgresAmountRepository) Set(ctx context.Context, usdt int) error {
	if usdt <= 0 {
		return fmt.Errorf("payment amount must be positive, got %d", usdt)
	}

	const query = `
		INSERT INTO payment_settings (id, usdt)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET usdt = EXCLUDED.usdt
	`

	if _, err := r.db.ExecContext(ctx, query, usdt); err != nil {
		if r.log != nil {
			r.log.Error("failed to set payment amount", slog.Any("error", err))
		}
		return fmt.Errorf("upsert payment amount: %w", err)
	}

	return nil
}
