// Package repository defines the persistence contracts for the bot's
// records and provides file-backed and PostgreSQL-backed implementations.
//
// Reads degrade to typed defaults when the underlying record is absent
// or unreadable; writes are full-document overwrites that never leave a
// partially-written document behind.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
)

// ErrNotFound indicates that the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrTerminalStatus indicates an attempt to overwrite a payment status
// that has already reached a terminal value.
var ErrTerminalStatus = errors.New("payment status is terminal")

// GroupRepository persists the advertised groups, keyed by name.
type GroupRepository interface {
	// List returns every group in a stable order.
	List(ctx context.Context) ([]domain.Group, error)
	// Upsert stores the group, overwriting any group with the same name.
	Upsert(ctx context.Context, group domain.Group) error
	// Remove deletes the named group, returning ErrNotFound when absent.
	Remove(ctx context.Context, name string) error
}

// UserLedger is the append-only record of everyone who contacted the bot.
type UserLedger interface {
	// Append records the user unless an entry with the same Telegram ID
	// already exists. Re-appending is a no-op, never a duplicate.
	Append(ctx context.Context, user domain.User) error
	// List returns all users in the order they first appeared.
	List(ctx context.Context) ([]domain.User, error)
}

// PaymentRepository persists payment records.
type PaymentRepository interface {
	// Add appends a new payment record.
	Add(ctx context.Context, payment domain.Payment) error
	// List returns every payment in creation order.
	List(ctx context.Context) ([]domain.Payment, error)
	// ListPending returns payments that have not reached a terminal status.
	ListPending(ctx context.Context) ([]domain.Payment, error)
	// UpdateStatus transitions the payment identified by invoiceID. It
	// returns ErrNotFound for an unknown invoice and ErrTerminalStatus
	// when the stored status is already terminal.
	UpdateStatus(ctx context.Context, invoiceID string, status domain.PaymentStatus, updatedAt time.Time) error
}

// AmountRepository holds the process-wide payment amount.
type AmountRepository interface {
	// Get returns the configured amount, or the default when unset.
	Get(ctx context.Context) (int, error)
	// Set stores a new amount. The amount must be a positive integer.
	Set(ctx context.Context, usdt int) error
}

// Stores bundles one repository per record kind behind a single handle.
type Stores struct {
	Groups   GroupRepository
	Users    UserLedger
	Payments PaymentRepository
	Amount   AmountRepository
}
