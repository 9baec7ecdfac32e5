// Package keyboard renders the bot's reply and inline keyboards.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/domain"
)

// Admin menu button labels. The menu is a reply keyboard, so selections
// arrive as plain text messages matching these labels.
const (
	LabelAddGroup     = "➕ Add Group"
	LabelRemoveGroup  = "🗑️ Remove Group"
	LabelViewGroups   = "📋 View All Groups"
	LabelBroadcast    = "📢 Broadcast Message"
	LabelUserStats    = "👥 User Statistics"
	LabelSetAmount    = "💰 Set Payment Amount"
	LabelPaymentStats = "📊 Payment Statistics"
	LabelExit         = "⬅️ Exit Admin Panel"
	LabelBackToMenu   = "⬅️ Back to Menu"
)

// Action button labels shown under the channel grid.
const (
	LabelMakePayment = "💸 Make Payment"
	LabelRefresh     = "🔄 Refresh Channels"
)

// Builder creates the keyboards used across the bot.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// ChannelGrid builds the inline channel grid: URL buttons two per row,
// followed by the payment and refresh action rows.
func (b *Builder) ChannelGrid(groups []domain.Group, paymentData, refreshData string) *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(groups)/2+3)

	for i := 0; i < len(groups); i += 2 {
		row := []telebot.InlineButton{
			{Text: groups[i].Name, URL: groups[i].Link},
		}
		if i+1 < len(groups) {
			row = append(row, telebot.InlineButton{
				Text: groups[i+1].Name,
				URL:  groups[i+1].Link,
			})
		}
		rows = append(rows, row)
	}

	rows = append(rows,
		[]telebot.InlineButton{{Text: LabelMakePayment, Data: paymentData}},
		[]telebot.InlineButton{{Text: LabelRefresh, Data: refreshData}},
	)

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = rows
	return markup
}

// AdminMenu builds the admin panel reply keyboard.
func (b *Builder) AdminMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	markup.Reply(
		markup.Row(markup.Text(LabelAddGroup), markup.Text(LabelRemoveGroup)),
		markup.Row(markup.Text(LabelViewGroups), markup.Text(LabelBroadcast)),
		markup.Row(markup.Text(LabelUserStats), markup.Text(LabelSetAmount)),
		markup.Row(markup.Text(LabelPaymentStats), markup.Text(LabelExit)),
	)

	return markup
}

// RemoveGroupMenu builds the group-removal reply keyboard: group names
// two per row plus a back row.
func (b *Builder) RemoveGroupMenu(groups []domain.Group) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	rows := make([]telebot.Row, 0, len(groups)/2+1)
	for i := 0; i < len(groups); i += 2 {
		row := telebot.Row{markup.Text(groups[i].Name)}
		if i+1 < len(groups) {
			row = append(row, markup.Text(groups[i+1].Name))
		}
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(markup.Text(LabelBackToMenu)))

	markup.Reply(rows...)
	return markup
}

// BackToMenu builds a reply keyboard with only the back row.
func (b *Builder) BackToMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}
	markup.Reply(markup.Row(markup.Text(LabelBackToMenu)))
	return markup
}

// RemoveMenu hides any visible reply keyboard.
func (b *Builder) RemoveMenu() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}
