// Package state manages the per-chat admin conversation state machine.
package state

import "context"

// SessionStorage defines the persistence contract for admin sessions.
// Implementations serialize their own access; the machine never assumes
// a single caller.
type SessionStorage interface {
	// GetSession returns the session for the chat, or ErrSessionNotFound.
	GetSession(ctx context.Context, chatID int64) (*Session, error)
	// SetSession saves the provided session for the chat.
	SetSession(ctx context.Context, chatID int64, session *Session) error
	// ClearSession removes the session for the chat.
	ClearSession(ctx context.Context, chatID int64) error
}
