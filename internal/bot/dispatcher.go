package bot

import (
	"context"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/chanport/channels-bot/internal/bot/handlers"
	"github.com/chanport/channels-bot/internal/state"
)

// Dispatcher routes free-text updates to the handler for the chat's
// current admin conversation state. Chats without an open session are
// never dispatched, so ordinary messages are not mistaken for password
// attempts.
type Dispatcher struct {
	machine       state.Machine
	stateHandlers map[state.State]handlers.Handler
	log           *slog.Logger
	mu            sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(machine state.Machine, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		machine:       machine,
		stateHandlers: make(map[state.State]handlers.Handler),
		log:           log,
	}
}

// RegisterStateHandler registers a handler for the provided state.
func (d *Dispatcher) RegisterStateHandler(s state.State, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateHandlers[s] = h
}

// Dispatch routes the update based on the chat's current state. It
// reports whether a handler consumed the update.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Chat() == nil {
		d.log.Warn("cannot dispatch without chat information")
		return false, nil
	}

	ctx := context.Background()
	chatID := c.Chat().ID

	active, err := d.machine.Active(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !active {
		return false, nil
	}

	current, err := d.machine.Current(ctx, chatID)
	if err != nil {
		return false, err
	}

	handler := d.getHandler(current)
	if handler == nil {
		d.log.Info("no handler registered for state",
			slog.String("state", string(current)),
			slog.Int64("chat_id", chatID),
		)
		return false, nil
	}

	return true, handler(c)
}

func (d *Dispatcher) getHandler(s state.State) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stateHandlers[s]
}
