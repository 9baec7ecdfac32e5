package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "password accepted", from: StateUnauthenticated, to: StateMainMenu, expected: true},
		{name: "menu to add group name", from: StateMainMenu, to: StateAwaitGroupName, expected: true},
		{name: "group name to group link", from: StateAwaitGroupName, to: StateAwaitGroupLink, expected: true},
		{name: "group link back to menu", from: StateAwaitGroupLink, to: StateMainMenu, expected: true},
		{name: "menu to group choice", from: StateMainMenu, to: StateAwaitGroupChoice, expected: true},
		{name: "group choice back to menu", from: StateAwaitGroupChoice, to: StateMainMenu, expected: true},
		{name: "menu to broadcast", from: StateMainMenu, to: StateAwaitBroadcastText, expected: true},
		{name: "broadcast back to menu", from: StateAwaitBroadcastText, to: StateMainMenu, expected: true},
		{name: "menu to amount", from: StateMainMenu, to: StateAwaitAmount, expected: true},
		{name: "amount back to menu", from: StateAwaitAmount, to: StateMainMenu, expected: true},
		{name: "unauthenticated cannot reach group name", from: StateUnauthenticated, to: StateAwaitGroupName, expected: false},
		{name: "unauthenticated cannot reach broadcast", from: StateUnauthenticated, to: StateAwaitBroadcastText, expected: false},
		{name: "unauthenticated cannot reach amount", from: StateUnauthenticated, to: StateAwaitAmount, expected: false},
		{name: "group name cannot jump to menu", from: StateAwaitGroupName, to: StateMainMenu, expected: false},
		{name: "group link cannot loop to group name", from: StateAwaitGroupLink, to: StateAwaitGroupName, expected: false},
		{name: "unknown state goes nowhere", from: State("bogus"), to: StateMainMenu, expected: false},
		{name: "cancel from menu", from: StateMainMenu, to: StateUnauthenticated, expected: true},
		{name: "cancel from broadcast", from: StateAwaitBroadcastText, to: StateUnauthenticated, expected: true},
		{name: "cancel from unknown state", from: State("whatever"), to: StateUnauthenticated, expected: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}
