package state

// validTransitions contains the permitted forward transitions in the
// admin FSM. Every privileged state hangs off the main menu, and the
// main menu is reachable only through the password transition from
// unauthenticated.
var validTransitions = map[State][]State{
	StateUnauthenticated: {
		StateMainMenu,
	},
	StateMainMenu: {
		StateAwaitGroupName,
		StateAwaitGroupChoice,
		StateAwaitBroadcastText,
		StateAwaitAmount,
	},
	StateAwaitGroupName: {
		StateAwaitGroupLink,
	},
	StateAwaitGroupLink: {
		StateMainMenu,
	},
	StateAwaitGroupChoice: {
		StateMainMenu,
	},
	StateAwaitBroadcastText: {
		StateMainMenu,
	},
	StateAwaitAmount: {
		StateMainMenu,
	},
}

// IsTransitionAllowed reports whether moving from one state to another
// is valid. Cancelling back to unauthenticated is always allowed, from
// any state.
func IsTransitionAllowed(from, to State) bool {
	if to == StateUnauthenticated {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
