package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
)

var errStorageFailure = errors.New("storage error")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetSession(ctx context.Context, chatID int64) (*Session, error) {
	args := m.Called(ctx, chatID)
	session, _ := args.Get(0).(*Session)
	return session, args.Error(1)
}

func (m *mockStorage) SetSession(ctx context.Context, chatID int64, session *Session) error {
	args := m.Called(ctx, chatID, session)
	return args.Error(0)
}

func (m *mockStorage) ClearSession(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func TestMachine_TransitionTo(t *testing.T) {
	ctx := context.Background()
	chatID := int64(42)
	log := testLogger()

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		newState    State
		expectedErr error
	}{
		{
			name: "password transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetSession", mock.Anything, chatID).
					Return(&Session{ChatID: chatID, CurrentState: StateUnauthenticated}, nil).Once()
				ms.On("SetSession", mock.Anything, chatID, mock.MatchedBy(func(session *Session) bool {
					return session.CurrentState == StateMainMenu
				})).Return(nil).Once()
			},
			newState:    StateMainMenu,
			expectedErr: nil,
		},
		{
			name: "privileged jump rejected without authentication",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetSession", mock.Anything, chatID).
					Return(&Session{ChatID: chatID, CurrentState: StateUnauthenticated}, nil).Once()
			},
			newState:    StateAwaitBroadcastText,
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "missing session starts unauthenticated",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetSession", mock.Anything, chatID).
					Return((*Session)(nil), ErrSessionNotFound).Once()
				ms.On("SetSession", mock.Anything, chatID, mock.MatchedBy(func(session *Session) bool {
					return session.CurrentState == StateMainMenu
				})).Return(nil).Once()
			},
			newState:    StateMainMenu,
			expectedErr: nil,
		},
		{
			name: "scratch context survives the transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetSession", mock.Anything, chatID).
					Return(&Session{
						ChatID:       chatID,
						CurrentState: StateAwaitGroupName,
						Context:      map[string]string{"group_name": "News"},
					}, nil).Once()
				ms.On("SetSession", mock.Anything, chatID, mock.MatchedBy(func(session *Session) bool {
					return session.CurrentState == StateAwaitGroupLink &&
						session.Context["group_name"] == "News"
				})).Return(nil).Once()
			},
			newState:    StateAwaitGroupLink,
			expectedErr: nil,
		},
		{
			name: "storage failure surfaces",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetSession", mock.Anything, chatID).
					Return((*Session)(nil), errStorageFailure).Once()
			},
			newState:    StateMainMenu,
			expectedErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			machine := NewMachine(ms, log)
			err := machine.TransitionTo(ctx, chatID, tc.newState)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestMachine_BeginAndActive(t *testing.T) {
	ctx := context.Background()
	log := testLogger()

	machine := NewMachine(NewMemoryStorage(), log)

	active, err := machine.Active(ctx, 7)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active {
		t.Fatal("expected no session before Begin")
	}

	if err := machine.Begin(ctx, 7); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	active, err = machine.Active(ctx, 7)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if !active {
		t.Fatal("expected session after Begin")
	}

	current, err := machine.Current(ctx, 7)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != StateUnauthenticated {
		t.Fatalf("expected %s after Begin, got %s", StateUnauthenticated, current)
	}

	// Other chats are unaffected.
	active, err = machine.Active(ctx, 8)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active {
		t.Fatal("session leaked to an unrelated chat")
	}
}

func TestMachine_BeginResetsAuthenticatedSession(t *testing.T) {
	ctx := context.Background()
	machine := NewMachine(NewMemoryStorage(), testLogger())

	if err := machine.Begin(ctx, 1); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := machine.TransitionTo(ctx, 1, StateMainMenu); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}

	if err := machine.Begin(ctx, 1); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	current, err := machine.Current(ctx, 1)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != StateUnauthenticated {
		t.Fatalf("re-entering /admin must demand the password again, got %s", current)
	}
}

func TestMachine_StashAndStashed(t *testing.T) {
	ctx := context.Background()
	machine := NewMachine(NewMemoryStorage(), testLogger())

	if err := machine.Begin(ctx, 5); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if err := machine.Stash(ctx, 5, "group_name", "Crypto News"); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	value, ok, err := machine.Stashed(ctx, 5, "group_name")
	if err != nil {
		t.Fatalf("Stashed: %v", err)
	}
	if !ok || value != "Crypto News" {
		t.Fatalf("expected stashed value, got %q (ok=%t)", value, ok)
	}

	_, ok, err = machine.Stashed(ctx, 5, "missing")
	if err != nil {
		t.Fatalf("Stashed: %v", err)
	}
	if ok {
		t.Fatal("unexpected value for missing key")
	}

	// No session means no stash, not an error.
	_, ok, err = machine.Stashed(ctx, 6, "group_name")
	if err != nil {
		t.Fatalf("Stashed: %v", err)
	}
	if ok {
		t.Fatal("unexpected value for chat without session")
	}
}

func TestMachine_Reset(t *testing.T) {
	ctx := context.Background()
	machine := NewMachine(NewMemoryStorage(), testLogger())

	if err := machine.Begin(ctx, 9); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := machine.TransitionTo(ctx, 9, StateMainMenu); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}

	if err := machine.Reset(ctx, 9); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	active, err := machine.Active(ctx, 9)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active {
		t.Fatal("expected no session after Reset")
	}
}
