// Package flow decides what happens to each inbound end-user message and
// carries the decision out. Routing itself is a pure function of the user's
// conversation state, so the precedence rules are testable without a bot.
package flow

import "relaybot/bot/session"

// Action names what the engine should do with a routed message.
type Action int

const (
	// ActionRelayForward forwards the text to every operator as part of an
	// active relay. The user's state is left untouched.
	ActionRelayForward Action = iota
	// ActionComposeForward forwards captured input to every operator and
	// acknowledges the user. The user returns to idle.
	ActionComposeForward
	// ActionFallback answers with the fixed menu hint.
	ActionFallback
)

// String is used in logs and audit records.
func (a Action) String() string {
	switch a {
	case ActionRelayForward:
		return "relay_forward"
	case ActionComposeForward:
		return "compose_forward"
	default:
		return "fallback"
	}
}

// Decision is the outcome of routing one message.
type Decision struct {
	Next   session.State
	Action Action
}

// Route maps the user's current state to a decision. An active relay always
// wins: even a user who was mid-input gets relayed, and their pending input
// state survives until the relay ends.
func Route(st session.State, inRelay bool) Decision {
	if inRelay {
		return Decision{Next: st, Action: ActionRelayForward}
	}
	if st == session.StateAwaitingInput {
		return Decision{Next: session.StateIdle, Action: ActionComposeForward}
	}
	return Decision{Next: session.StateIdle, Action: ActionFallback}
}
