package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSessionNotFound indicates that no session exists for the chat.
	ErrSessionNotFound = errors.New("admin session not found")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Machine describes the operations of the admin conversation FSM. One
// logical machine exists per chat; sessions never share mutable state.
type Machine interface {
	// Begin opens (or reopens) a session for the chat in the
	// unauthenticated state. Only chats with an open session take part
	// in the admin conversation.
	Begin(ctx context.Context, chatID int64) error
	// Active reports whether the chat currently has an open session.
	Active(ctx context.Context, chatID int64) (bool, error)
	// Current returns the chat's state, defaulting to unauthenticated
	// when no session exists yet.
	Current(ctx context.Context, chatID int64) (State, error)
	// TransitionTo moves the chat to newState when the transition table
	// allows it, preserving the session's scratch context.
	TransitionTo(ctx context.Context, chatID int64, newState State) error
	// Stash records a scratch value on the session, such as the group
	// name collected while waiting for its link.
	Stash(ctx context.Context, chatID int64, key, value string) error
	// Stashed reads a scratch value recorded by Stash.
	Stashed(ctx context.Context, chatID int64, key string) (string, bool, error)
	// Reset drops the session entirely, returning the chat to
	// unauthenticated.
	Reset(ctx context.Context, chatID int64) error
}

// machine is a concrete Machine over a SessionStorage backend. A
// process-local mutex serializes the read-check-write cycle; updates
// from one Telegram chat arrive sequentially, so contention is rare.
type machine struct {
	storage SessionStorage
	log     *slog.Logger
	mu      sync.Mutex
}

// NewMachine creates the FSM controller using the provided storage backend.
func NewMachine(storage SessionStorage, log *slog.Logger) Machine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage: storage,
		log:     log,
	}
}

func (m *machine) Begin(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.storage.SetSession(ctx, chatID, &Session{
		ChatID:       chatID,
		CurrentState: StateUnauthenticated,
	})
}

func (m *machine) Active(ctx context.Context, chatID int64) (bool, error) {
	_, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (m *machine) Current(ctx context.Context, chatID int64) (State, error) {
	session, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return StateUnauthenticated, nil
		}
		return StateUnauthenticated, err
	}

	return session.CurrentState, nil
}

func (m *machine) TransitionTo(ctx context.Context, chatID int64, newState State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.loadOrInit(ctx, chatID)
	if err != nil {
		return err
	}

	if !IsTransitionAllowed(session.CurrentState, newState) {
		m.log.Warn("invalid state transition",
			slog.Int64("chat_id", chatID),
			slog.String("from", string(session.CurrentState)),
			slog.String("to", string(newState)),
		)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.CurrentState, newState)
	}

	transitionRecorder(string(session.CurrentState), string(newState))

	session.CurrentState = newState

	return m.storage.SetSession(ctx, chatID, session)
}

func (m *machine) Stash(ctx context.Context, chatID int64, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.loadOrInit(ctx, chatID)
	if err != nil {
		return err
	}

	if session.Context == nil {
		session.Context = make(map[string]string)
	}
	session.Context[key] = value

	return m.storage.SetSession(ctx, chatID, session)
}

func (m *machine) Stashed(ctx context.Context, chatID int64, key string) (string, bool, error) {
	session, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	value, ok := session.Context[key]
	return value, ok, nil
}

func (m *machine) Reset(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.storage.ClearSession(ctx, chatID)
}

func (m *machine) loadOrInit(ctx context.Context, chatID int64) (*Session, error) {
	session, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		session = &Session{
			ChatID:       chatID,
			CurrentState: StateUnauthenticated,
		}
	}

	return session, nil
}
