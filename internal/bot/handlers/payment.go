package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/payments"
)

// NewMakePaymentHandler issues an invoice for the calling user and
// replies with the payment link. Failures surface through the error
// middleware, which turns them into user-facing messages.
func NewMakePaymentHandler(service *payments.Service, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		if err := c.Respond(&telebot.CallbackResponse{}); err != nil {
			log.Warn("failed to answer payment callback", slog.Any("error", err))
		}

		sender := c.Sender()
		displayName := sender.Username
		if displayName == "" {
			displayName = sender.FirstName
		}
		if displayName == "" {
			displayName = "User"
		}

		payment, err := service.RequestPayment(context.Background(), sender.ID, displayName)
		if err != nil {
			return err
		}

		msg := fmt.Sprintf(
			"💸 <b>Payment Request Created</b>\n\n"+
				"💰 Amount: <b>%d USDT</b>\n"+
				"🆔 Invoice ID: <code>%s</code>\n\n"+
				"🔗 <a href='%s'>Click here to pay via Cryptomus</a>\n\n"+
				"⏳ <i>Payment status will update automatically within 30 seconds.</i>",
			payment.Amount, payment.InvoiceID, payment.PayURL,
		)

		return c.Send(msg, telebot.ModeHTML)
	}
}
