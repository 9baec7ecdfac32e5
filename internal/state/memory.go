package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps admin sessions in process memory. Sessions vanish
// on restart, which matches the authenticate-on-entry flow: the admin
// simply logs in again.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStorage constructs an in-memory SessionStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[int64]*Session),
	}
}

// GetSession returns a copy of the stored session or ErrSessionNotFound.
func (s *MemoryStorage) GetSession(ctx context.Context, chatID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := *session
	if session.Context != nil {
		copied.Context = make(map[string]string, len(session.Context))
		for k, v := range session.Context {
			copied.Context[k] = v
		}
	}

	return &copied, nil
}

// SetSession saves the session for the chat.
func (s *MemoryStorage) SetSession(ctx context.Context, chatID int64, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now().UTC()
	s.sessions[chatID] = session

	return nil
}

// ClearSession removes the session for the chat.
func (s *MemoryStorage) ClearSession(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)

	return nil
}
