package flow

import (
	"testing"

	"relaybot/bot/session"
)

func TestRouteTable(t *testing.T) {
	cases := []struct {
		name    string
		state   session.State
		inRelay bool
		want    Decision
	}{
		{
			name:  "idle free text falls back",
			state: session.StateIdle,
			want:  Decision{Next: session.StateIdle, Action: ActionFallback},
		},
		{
			name:  "awaiting input captures and returns to idle",
			state: session.StateAwaitingInput,
			want:  Decision{Next: session.StateIdle, Action: ActionComposeForward},
		},
		{
			name:    "relay wins over idle",
			state:   session.StateIdle,
			inRelay: true,
			want:    Decision{Next: session.StateIdle, Action: ActionRelayForward},
		},
		{
			name:    "relay wins over pending input and preserves it",
			state:   session.StateAwaitingInput,
			inRelay: true,
			want:    Decision{Next: session.StateAwaitingInput, Action: ActionRelayForward},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Route(tc.state, tc.inRelay)
			if got != tc.want {
				t.Fatalf("Route(%q, %v) = %+v, want %+v", tc.state, tc.inRelay, got, tc.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	if got := ActionRelayForward.String(); got != "relay_forward" {
		t.Errorf("relay action = %q", got)
	}
	if got := ActionComposeForward.String(); got != "compose_forward" {
		t.Errorf("compose action = %q", got)
	}
	if got := ActionFallback.String(); got != "fallback" {
		t.Errorf("fallback action = %q", got)
	}
}
