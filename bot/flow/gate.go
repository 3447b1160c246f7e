package flow

import (
	"fmt"

	"relaybot/bot/session"
)

// Gate answers menu feature taps. Whatever the user was doing before the tap
// is dropped first, so a stale input prompt can never swallow a later
// free-text message.
type Gate struct {
	store    session.Store
	messages map[string]string
	generic  string
}

// NewGate builds a gate over per-feature reply texts. Features missing from
// messages fall back to generic.
func NewGate(store session.Store, messages map[string]string, generic string) *Gate {
	return &Gate{store: store, messages: messages, generic: generic}
}

// Respond resolves the reply for a feature tap and resets the user to idle.
func (g *Gate) Respond(userID int64, feature string) string {
	s := g.store.Get(userID)
	g.store.SetState(userID, session.StateIdle)

	if s.Linked {
		return fmt.Sprintf(TextQueuedFmt, feature)
	}
	if msg, ok := g.messages[feature]; ok {
		return msg
	}
	return g.generic
}
