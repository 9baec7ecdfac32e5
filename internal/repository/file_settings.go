package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chanport/channels-bot/internal/domain"
)

const amountFile = "payment_config.json"

// fileAmountRepository stores the payment amount as a one-field JSON
// document. Reads fall back to the default amount when the document is
// absent, corrupt or non-positive.
type fileAmountRepository struct {
	doc *document
}

// NewFileAmountRepository creates a file-backed amount repository rooted at dir.
func NewFileAmountRepository(dir string, log *slog.Logger) AmountRepository {
	return &fileAmountRepository{
		doc: newDocument(filepath.Join(dir, amountFile), log),
	}
}

func (r *fileAmountRepository) Get(ctx context.Context) (int, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	cfg := domain.AmountConfig{USDT: domain.DefaultPaymentAmount}
	r.doc.load(&cfg)

	if cfg.USDT <= 0 {
		return domain.DefaultPaymentAmount, nil
	}

	return cfg.USDT, nil
}

func (r *fileAmountRepository) Set(ctx context.Context, usdt int) error {
	if usdt <= 0 {
		return fmt.Errorf("payment amount must be positive, got %d", usdt)
	}

	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	return r.doc.save(domain.AmountConfig{USDT: usdt})
}
