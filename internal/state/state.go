package state

import "time"

// State represents a step in the admin conversation state machine.
type State string

const (
	// StateUnauthenticated is the initial state: no password yet, nothing
	// privileged reachable.
	StateUnauthenticated State = "unauthenticated"
	// StateMainMenu is the authenticated admin panel menu.
	StateMainMenu State = "main_menu"
	// StateAwaitGroupName waits for the name of a group being added.
	StateAwaitGroupName State = "await_group_name"
	// StateAwaitGroupLink waits for the invite link of a group being added.
	StateAwaitGroupLink State = "await_group_link"
	// StateAwaitGroupChoice waits for the admin to pick a group to remove.
	StateAwaitGroupChoice State = "await_group_choice"
	// StateAwaitBroadcastText waits for the message to broadcast.
	StateAwaitBroadcastText State = "await_broadcast_text"
	// StateAwaitAmount waits for the new payment amount.
	StateAwaitAmount State = "await_amount"
)

// Session captures one admin conversation, keyed by originating chat.
// Context carries scratch data between steps, such as the group name
// stashed while waiting for its link.
type Session struct {
	ChatID       int64             `json:"chat_id"`
	CurrentState State             `json:"current_state"`
	Context      map[string]string `json:"context,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
