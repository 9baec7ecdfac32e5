// Package gateway talks to the crypto payment processor. The client is
// stateless: it issues single requests with fixed timeout budgets and
// maps every failure to an explicit value, leaving retries to callers.
package gateway

import (
	"context"

	"github.com/chanport/channels-bot/internal/domain"
)

// Invoice is the processor's answer to a successful create request.
type Invoice struct {
	ID     string
	PayURL string
}

// CreateInvoiceRequest describes one invoice to issue.
type CreateInvoiceRequest struct {
	// Amount is the invoice amount in whole USDT.
	Amount int
	// OrderID is the caller-supplied idempotency handle, derived
	// deterministically from the requesting user and request time.
	OrderID string
	// Network is the settlement network, e.g. "tron".
	Network string
}

// Client is the processor-facing contract consumed by the payment
// lifecycle engine.
type Client interface {
	// CreateInvoice issues a new invoice. It performs no retries; a
	// transport failure or malformed response comes back as an error.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	// InvoiceStatus reports the current processor status for the
	// invoice. When the status cannot be determined it returns
	// domain.StatusUnknown together with the underlying error; it never
	// reports unknown as terminal and never panics past its boundary.
	InvoiceStatus(ctx context.Context, invoiceID string) (domain.PaymentStatus, error)
}
