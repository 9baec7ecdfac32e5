package domain

import "time"

// PaymentStatus is the processor-reported state of an invoice. The set
// is open: the processor may introduce values this code has never seen,
// and any value other than pending/unknown counts as terminal.
type PaymentStatus string

const (
	// StatusPending is the initial state of every payment.
	StatusPending PaymentStatus = "pending"
	// StatusPaid indicates the invoice was settled in full.
	StatusPaid PaymentStatus = "paid"
	// StatusFailed indicates the processor rejected or lost the payment.
	StatusFailed PaymentStatus = "failed"
	// StatusExpired indicates the invoice lapsed before payment.
	StatusExpired PaymentStatus = "expired"
	// StatusCancelled indicates the payer abandoned the invoice.
	StatusCancelled PaymentStatus = "cancelled"
	// StatusUnknown means the status could not be determined. It is a
	// sentinel, never terminal, and is never persisted.
	StatusUnknown PaymentStatus = "unknown"
)

// Terminal reports whether no further transition can happen from s.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusPending, StatusUnknown, "":
		return false
	}
	return true
}

// Payment records one invoice issued through the payment gateway. Status
// starts at pending and moves at most once, to a terminal value; a
// payment is never deleted.
type Payment struct {
	UserID      int64         `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Amount      int           `json:"amount"`
	InvoiceID   string        `json:"invoice_id"`
	Status      PaymentStatus `json:"status"`
	PayURL      string        `json:"pay_url"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

// Resolved reports whether the payment has reached a terminal status.
func (p Payment) Resolved() bool {
	return p.Status.Terminal()
}
