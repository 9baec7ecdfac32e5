package bot

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/broadcast"
	"github.com/chanport/channels-bot/internal/domain"
)

// PaymentNotifier messages a payer when their payment reaches a
// terminal status. Delivery is best effort: the status is already
// persisted, so a failed notification is logged and dropped.
type PaymentNotifier struct {
	sender broadcast.Sender
	log    *slog.Logger
}

// NewPaymentNotifier builds the notifier over a message sender.
func NewPaymentNotifier(sender broadcast.Sender, log *slog.Logger) *PaymentNotifier {
	if log == nil {
		log = slog.Default()
	}

	return &PaymentNotifier{sender: sender, log: log}
}

// PaymentResolved tells the payer how their invoice ended.
func (n *PaymentNotifier) PaymentResolved(ctx context.Context, payment domain.Payment) {
	var msg string
	switch payment.Status {
	case domain.StatusPaid:
		msg = fmt.Sprintf(
			"✅ <b>Payment Received!</b>\n\n💰 Amount: <b>%d USDT</b>\n🆔 Invoice ID: <code>%s</code>\n\nThank you!",
			payment.Amount, payment.InvoiceID,
		)
	default:
		msg = fmt.Sprintf(
			"❌ <b>Payment Not Completed</b>\n\n🆔 Invoice ID: <code>%s</code>\n📊 Status: <code>%s</code>\n\nYou can request a new invoice at any time.",
			payment.InvoiceID, payment.Status,
		)
	}

	if _, err := n.sender.Send(telebot.ChatID(payment.UserID), msg, telebot.ModeHTML); err != nil {
		n.log.Warn("failed to notify payer",
			slog.Int64("user_id", payment.UserID),
			slog.String("invoice_id", payment.InvoiceID),
			slog.Any("error", err),
		)
	}
}
