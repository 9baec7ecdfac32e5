package domain

import "time"

// User is one entry in the append-only ledger of everyone who ever
// contacted the bot. A user is recorded once, on first contact, and is
// never mutated or deleted afterwards.
type User struct {
	TelegramID int64
	FirstName  string
	Username   string
	FirstSeen  time.Time
}

// Handle returns the @-handle when the user has one, or "N/A" otherwise.
func (u User) Handle() string {
	if u.Username == "" {
		return "N/A"
	}
	return "@" + u.Username
}
