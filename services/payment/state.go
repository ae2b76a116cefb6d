package payment

// State is the position of a booking in the payment flow.
type State string

const (
	StateNotRequired              State = "not_required"
	StateAwaitingOrder            State = "awaiting_order"
	StateAwaitingUserConfirmation State = "awaiting_user_confirmation"
	StateVerifying                State = "verifying"
	StateVerified                 State = "verified"
	StateFailed                   State = "failed"
)

// transitions lists the legal successors of each state. Only Failed loops
// back, through a manual retry.
var transitions = map[State][]State{
	StateNotRequired:              nil,
	StateAwaitingOrder:            {StateAwaitingUserConfirmation, StateFailed},
	StateAwaitingUserConfirmation: {StateVerifying, StateFailed},
	StateVerifying:                {StateVerified, StateFailed},
	StateVerified:                 nil,
	StateFailed:                   {StateAwaitingOrder},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s State) CanTransitionTo(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports states with no successor.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Confirmed reports states in which the booking counts as confirmed for messaging.
func (s State) Confirmed() bool {
	return s == StateNotRequired || s == StateVerified
}
