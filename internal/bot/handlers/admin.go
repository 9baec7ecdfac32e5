package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/broadcast"
	"github.com/chanport/channels-bot/internal/bot/keyboard"
	"github.com/chanport/channels-bot/internal/domain"
	"github.com/chanport/channels-bot/internal/payments"
	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/internal/state"
)

// menuAction enumerates the admin panel operations. Menu text is parsed
// into one of these exactly once; everything downstream switches on the
// action, so adding an operation means the compiler points at every
// switch that must learn about it.
type menuAction int

const (
	actionUnknown menuAction = iota
	actionAddGroup
	actionRemoveGroup
	actionViewGroups
	actionBroadcast
	actionUserStats
	actionSetAmount
	actionPaymentStats
	actionExit
)

func parseMenuAction(text string) menuAction {
	switch strings.TrimSpace(text) {
	case keyboard.LabelAddGroup:
		return actionAddGroup
	case keyboard.LabelRemoveGroup:
		return actionRemoveGroup
	case keyboard.LabelViewGroups:
		return actionViewGroups
	case keyboard.LabelBroadcast:
		return actionBroadcast
	case keyboard.LabelUserStats:
		return actionUserStats
	case keyboard.LabelSetAmount:
		return actionSetAmount
	case keyboard.LabelPaymentStats:
		return actionPaymentStats
	case keyboard.LabelExit:
		return actionExit
	default:
		return actionUnknown
	}
}

// Session scratch key for the group name collected before its link.
const stashGroupName = "group_name"

const adminMenuMessage = "┏━━━━━━━━━━━━━━━━━━━━━━━━━┓\n" +
	"┃  🔐 <b>ADMIN PANEL</b> 🔐      ┃\n" +
	"┗━━━━━━━━━━━━━━━━━━━━━━━━━┛\n\n" +
	"Select an option:"

// AdminFlow implements the password-gated admin conversation. Each
// method handles the text arriving while the chat sits in one state of
// the conversation machine.
type AdminFlow struct {
	machine     state.Machine
	groups      repository.GroupRepository
	users       repository.UserLedger
	amounts     repository.AmountRepository
	payments    *payments.Service
	broadcaster *broadcast.Broadcaster
	kb          *keyboard.Builder
	password    string
	log         *slog.Logger
}

// NewAdminFlow wires the admin conversation against its collaborators.
func NewAdminFlow(
	machine state.Machine,
	groups repository.GroupRepository,
	users repository.UserLedger,
	amounts repository.AmountRepository,
	paymentService *payments.Service,
	broadcaster *broadcast.Broadcaster,
	kb *keyboard.Builder,
	password string,
	log *slog.Logger,
) *AdminFlow {
	if log == nil {
		log = slog.Default()
	}

	return &AdminFlow{
		machine:     machine,
		groups:      groups,
		users:       users,
		amounts:     amounts,
		payments:    paymentService,
		broadcaster: broadcaster,
		kb:          kb,
		password:    password,
		log:         log,
	}
}

// Entry handles /admin: it opens a session and prompts for the password.
func (f *AdminFlow) Entry() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		if err := f.machine.Begin(context.Background(), c.Chat().ID); err != nil {
			return err
		}

		return c.Send("🔑 <b>Admin Authentication</b>\n\nEnter admin password:", telebot.ModeHTML)
	}
}

// Cancel handles /cancel: it drops the session from any state.
func (f *AdminFlow) Cancel() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		chatID := c.Chat().ID
		if err := f.machine.Reset(context.Background(), chatID); err != nil {
			f.log.Error("failed to reset session", slog.Int64("chat_id", chatID), slog.Any("error", err))
			return err
		}

		return c.Send("❌ Operation canceled.", f.kb.RemoveMenu())
	}
}

// HandlePassword verifies the password while the chat is unauthenticated.
func (f *AdminFlow) HandlePassword() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		if strings.TrimSpace(c.Text()) != f.password {
			return c.Send("❌ Incorrect password. Try again:")
		}

		ctx := context.Background()
		if err := f.machine.TransitionTo(ctx, c.Chat().ID, state.StateMainMenu); err != nil {
			return err
		}

		return f.showMenu(c)
	}
}

// HandleMenu dispatches a main menu selection.
func (f *AdminFlow) HandleMenu() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID

		switch parseMenuAction(c.Text()) {
		case actionAddGroup:
			if err := f.machine.TransitionTo(ctx, chatID, state.StateAwaitGroupName); err != nil {
				return err
			}
			return c.Send("🌟 <b>Add New Group/Channel</b>\n\nSend the group name:", telebot.ModeHTML)

		case actionRemoveGroup:
			return f.promptGroupRemoval(ctx, c, chatID)

		case actionViewGroups:
			return f.reportGroups(ctx, c)

		case actionBroadcast:
			if err := f.machine.TransitionTo(ctx, chatID, state.StateAwaitBroadcastText); err != nil {
				return err
			}
			return c.Send(
				"📢 <b>Broadcast Message</b>\n\nEnter message to send to all users:",
				f.kb.BackToMenu(),
				telebot.ModeHTML,
			)

		case actionUserStats:
			return f.reportUserStats(ctx, c)

		case actionSetAmount:
			if err := f.machine.TransitionTo(ctx, chatID, state.StateAwaitAmount); err != nil {
				return err
			}
			return c.Send("💰 <b>Set Payment Amount</b>\n\nEnter amount in USDT (integer):", telebot.ModeHTML)

		case actionPaymentStats:
			return f.reportPaymentStats(ctx, c)

		case actionExit:
			if err := f.machine.Reset(ctx, chatID); err != nil {
				return err
			}
			return c.Send(
				"👋 <b>Logged Out Successfully!</b>\n\nUse /admin to access again.",
				f.kb.RemoveMenu(),
				telebot.ModeHTML,
			)

		case actionUnknown:
			return f.showMenu(c)
		}

		return nil
	}
}

// HandleGroupName stashes the group name and asks for the link.
func (f *AdminFlow) HandleGroupName() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID
		name := strings.TrimSpace(c.Text())

		if err := f.machine.Stash(ctx, chatID, stashGroupName, name); err != nil {
			return err
		}
		if err := f.machine.TransitionTo(ctx, chatID, state.StateAwaitGroupLink); err != nil {
			return err
		}

		return c.Send("🔗 <b>Send Group Link</b>\n\nPaste the group/channel link:", telebot.ModeHTML)
	}
}

// HandleGroupLink finishes group creation with the stashed name.
// Re-adding an existing name overwrites its link.
func (f *AdminFlow) HandleGroupLink() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID
		link := strings.TrimSpace(c.Text())

		name, ok, err := f.machine.Stashed(ctx, chatID, stashGroupName)
		if err != nil {
			return err
		}
		if !ok || name == "" {
			name = "Unnamed"
		}

		if err := f.groups.Upsert(ctx, domain.Group{Name: name, Link: link}); err != nil {
			return err
		}
		if err := f.machine.TransitionTo(ctx, chatID, state.StateMainMenu); err != nil {
			return err
		}

		msg := fmt.Sprintf(
			"✅ <b>Group Added Successfully!</b>\n\n📝 Name: %s\n🔗 Link: %s",
			html.EscapeString(name), html.EscapeString(link),
		)
		if err := c.Send(msg, telebot.ModeHTML); err != nil {
			return err
		}

		return f.showMenu(c)
	}
}

// HandleGroupChoice removes the selected group or reports an invalid
// selection; either way the chat returns to the menu.
func (f *AdminFlow) HandleGroupChoice() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID
		choice := strings.TrimSpace(c.Text())

		if err := f.machine.TransitionTo(ctx, chatID, state.StateMainMenu); err != nil {
			return err
		}

		if choice == keyboard.LabelBackToMenu {
			return f.showMenu(c)
		}

		switch err := f.groups.Remove(ctx, choice); {
		case err == nil:
			msg := fmt.Sprintf("🗑️ <b>Group Removed!</b>\n\n%s", html.EscapeString(choice))
			if sendErr := c.Send(msg, telebot.ModeHTML); sendErr != nil {
				return sendErr
			}
		case errors.Is(err, repository.ErrNotFound):
			if sendErr := c.Send("❌ Invalid group selection."); sendErr != nil {
				return sendErr
			}
		default:
			return err
		}

		return f.showMenu(c)
	}
}

// HandleBroadcastText fans the message out to every user and reports
// the tally.
func (f *AdminFlow) HandleBroadcastText() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID
		text := c.Text()

		if err := f.machine.TransitionTo(ctx, chatID, state.StateMainMenu); err != nil {
			return err
		}

		if strings.TrimSpace(text) == keyboard.LabelBackToMenu {
			return f.showMenu(c)
		}

		result, err := f.broadcaster.SendToAll(ctx, text)
		if err != nil {
			return err
		}

		msg := fmt.Sprintf(
			"✅ <b>Broadcast Complete!</b>\n\n📤 Sent: %d\n❌ Failed: %d",
			result.Sent, result.Failed,
		)
		if err := c.Send(msg, telebot.ModeHTML); err != nil {
			return err
		}

		return f.showMenu(c)
	}
}

// HandleAmount parses and stores the new payment amount. Invalid input
// re-prompts without leaving the state or touching the stored amount.
func (f *AdminFlow) HandleAmount() Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID
		amount, ok := parseAmount(c.Text())
		if !ok {
			return c.Send("❌ Invalid amount. Enter a positive integer.")
		}

		if err := f.amounts.Set(ctx, amount); err != nil {
			return err
		}
		if err := f.machine.TransitionTo(ctx, chatID, state.StateMainMenu); err != nil {
			return err
		}

		msg := fmt.Sprintf("✅ Payment amount set to <b>%d USDT</b>", amount)
		if err := c.Send(msg, telebot.ModeHTML); err != nil {
			return err
		}

		return f.showMenu(c)
	}
}

func parseAmount(text string) (int, bool) {
	amount, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

func (f *AdminFlow) showMenu(c telebot.Context) error {
	return c.Send(adminMenuMessage, f.kb.AdminMenu(), telebot.ModeHTML)
}

func (f *AdminFlow) promptGroupRemoval(ctx context.Context, c telebot.Context, chatID int64) error {
	groups, err := f.groups.List(ctx)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		if err := c.Send("❌ <b>No Groups Available</b>\n\nAdd some groups first!", telebot.ModeHTML); err != nil {
			return err
		}
		return f.showMenu(c)
	}

	if err := f.machine.TransitionTo(ctx, chatID, state.StateAwaitGroupChoice); err != nil {
		return err
	}

	return c.Send(
		"🗑️ <b>Remove Group</b>\n\nSelect group to remove:",
		f.kb.RemoveGroupMenu(groups),
		telebot.ModeHTML,
	)
}

func (f *AdminFlow) reportGroups(ctx context.Context, c telebot.Context) error {
	groups, err := f.groups.List(ctx)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		if err := c.Send("❌ <b>No Groups Available</b>", telebot.ModeHTML); err != nil {
			return err
		}
		return f.showMenu(c)
	}

	var sb strings.Builder
	sb.WriteString("┏━━━━━━━━━━━━━━━━━━━━━━━━━┓\n")
	sb.WriteString("┃   📋 <b>ALL GROUPS LIST</b> 📋   ┃\n")
	sb.WriteString("┗━━━━━━━━━━━━━━━━━━━━━━━━━┛\n\n")
	fmt.Fprintf(&sb, "<b>Total Groups:</b> %d\n\n", len(groups))

	for i, group := range groups {
		fmt.Fprintf(&sb, "<b>%d.</b> %s\n    🔗 %s\n\n",
			i+1, html.EscapeString(group.Name), html.EscapeString(group.Link))
	}

	if err := c.Send(sb.String(), telebot.ModeHTML); err != nil {
		return err
	}

	return f.showMenu(c)
}

func (f *AdminFlow) reportUserStats(ctx context.Context, c telebot.Context) error {
	users, err := f.users.List(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("┏━━━━━━━━━━━━━━━━━━━━━━━━━┓\n")
	sb.WriteString("┃  👥 <b>USER STATISTICS</b> 👥  ┃\n")
	sb.WriteString("┗━━━━━━━━━━━━━━━━━━━━━━━━━┛\n\n")
	fmt.Fprintf(&sb, "<b>Total Users:</b> %d\n\n", len(users))
	sb.WriteString("<b>Recent 10 Users:</b>\n")

	recent := users
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	for i, user := range recent {
		fmt.Fprintf(&sb, "%d. %s (%s)\n    <code>%d</code>\n",
			i+1, html.EscapeString(user.FirstName), html.EscapeString(user.Handle()), user.TelegramID)
	}

	if err := c.Send(sb.String(), telebot.ModeHTML); err != nil {
		return err
	}

	return f.showMenu(c)
}

func (f *AdminFlow) reportPaymentStats(ctx context.Context, c telebot.Context) error {
	stats, err := f.payments.Stats(ctx, 5)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("┏━━━━━━━━━━━━━━━━━━━━━━━━━┓\n")
	sb.WriteString("┃ 📊 <b>PAYMENT STATS</b> 📊    ┃\n")
	sb.WriteString("┗━━━━━━━━━━━━━━━━━━━━━━━━━┛\n\n")
	fmt.Fprintf(&sb, "📝 Total Payments: <b>%d</b>\n", stats.Total)
	fmt.Fprintf(&sb, "✅ Successful: <b>%d</b>\n", stats.Paid)
	fmt.Fprintf(&sb, "⏳ Pending: <b>%d</b>\n", stats.Pending)
	fmt.Fprintf(&sb, "❌ Failed: <b>%d</b>\n\n", stats.Failed)
	sb.WriteString("<b>Last 5 Transactions:</b>\n")

	if len(stats.Recent) == 0 {
		sb.WriteString("\n<i>No transactions yet.</i>\n")
	} else {
		for i, tx := range stats.Recent {
			fmt.Fprintf(&sb, "\n%d. <b>%s</b>\n   💰 %d USDT\n   📊 Status: <code>%s</code>\n   📅 %s",
				i+1,
				html.EscapeString(tx.DisplayName),
				tx.Amount,
				tx.Status,
				tx.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
	}

	if err := c.Send(sb.String(), telebot.ModeHTML); err != nil {
		return err
	}

	return f.showMenu(c)
}
