package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/keyboard"
	"github.com/chanport/channels-bot/internal/repository"
)

// Callback data for the inline buttons under the channel grid.
const (
	CallbackMakePayment = "make_payment"
	CallbackRefresh     = "refresh"
)

const welcomeMessage = "👋 <b>Welcome!</b>\n\n" +
	"🌟 <b>Professional Channel Manager Bot</b>\n\n" +
	"📋 <b>Available Channels</b>:\n"

const noChannelsMessage = "\n<i>❌ No channels available at the moment.</i>"

// NewStartHandler greets the user and shows the channel grid. User
// registration happens in middleware, so /start on a known user changes
// nothing in the ledger.
func NewStartHandler(groups repository.GroupRepository, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		msg, markup, err := channelList(context.Background(), groups, kb)
		if err != nil {
			return err
		}

		return c.Send(msg, markup, telebot.ModeHTML)
	}
}

// NewRefreshHandler re-renders the channel grid in place.
func NewRefreshHandler(groups repository.GroupRepository, kb *keyboard.Builder, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		if err := c.Respond(&telebot.CallbackResponse{Text: "🔄 Refreshing channels..."}); err != nil {
			log.Warn("failed to answer refresh callback", slog.Any("error", err))
		}

		msg, markup, err := channelList(context.Background(), groups, kb)
		if err != nil {
			return err
		}

		// Editing fails when the rendered list is unchanged or the
		// message is too old; fall back to a fresh message.
		if err := c.Edit(msg, markup, telebot.ModeHTML); err != nil {
			return c.Send(msg, markup, telebot.ModeHTML)
		}

		return nil
	}
}

func channelList(ctx context.Context, groups repository.GroupRepository, kb *keyboard.Builder) (string, *telebot.ReplyMarkup, error) {
	list, err := groups.List(ctx)
	if err != nil {
		return "", nil, err
	}

	msg := welcomeMessage
	if len(list) == 0 {
		msg += noChannelsMessage
	}

	return msg, kb.ChannelGrid(list, CallbackMakePayment, CallbackRefresh), nil
}
