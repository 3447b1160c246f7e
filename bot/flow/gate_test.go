package flow

import (
	"fmt"
	"testing"

	"relaybot/bot/session"
)

func TestGateFeatureMessages(t *testing.T) {
	store := session.NewMemoryStore()
	g := NewGate(store, map[string]string{
		"status": "All systems are up.",
	}, "That option is not available yet.")

	if got := g.Respond(1, "status"); got != "All systems are up." {
		t.Errorf("known feature = %q", got)
	}
	if got := g.Respond(1, "billing"); got != "That option is not available yet." {
		t.Errorf("unknown feature = %q", got)
	}
}

func TestGateLinkedUserAlwaysQueued(t *testing.T) {
	store := session.NewMemoryStore()
	store.SetLinked(7, true)
	g := NewGate(store, map[string]string{"status": "up"}, "generic")

	if got := g.Respond(7, "status"); got != fmt.Sprintf(TextQueuedFmt, "status") {
		t.Errorf("linked user got %q, want queued text", got)
	}
}

func TestGateClearsPendingInput(t *testing.T) {
	store := session.NewMemoryStore()
	store.SetState(3, session.StateAwaitingInput)
	g := NewGate(store, nil, "generic")

	g.Respond(3, "anything")

	if st := store.Get(3).State; st != session.StateIdle {
		t.Errorf("state after tap = %q, want idle", st)
	}
}
