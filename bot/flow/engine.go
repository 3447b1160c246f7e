package flow

import (
	"context"
	"fmt"
	"strings"

	"relaybot/bot/broadcast"
	"relaybot/bot/history"
	"relaybot/bot/relay"
	"relaybot/bot/session"
	"relaybot/core/logger"

	"log/slog"
)

// Notification labels shown to operators above forwarded text.
const (
	labelRelayReply     = "Reply from user"
	labelSupportRequest = "Support request"
)

// Engine executes routing decisions and the operator control plane. It talks
// to Telegram only through the broadcaster, so tests drive it with a fake
// sender.
type Engine struct {
	store  session.Store
	relays *relay.Registry
	cast   *broadcast.Broadcaster
	rec    history.Recorder
}

// NewEngine wires the engine. rec may be history.Nop{}.
func NewEngine(store session.Store, relays *relay.Registry, cast *broadcast.Broadcaster, rec history.Recorder) *Engine {
	return &Engine{store: store, relays: relays, cast: cast, rec: rec}
}

// InRelay reports whether the user has an open operator conversation.
func (e *Engine) InRelay(userID int64) bool {
	return e.relays.Active(userID)
}

// ActiveRelays returns the number of open operator conversations.
func (e *Engine) ActiveRelays() int {
	return e.relays.Count()
}

// HandleText routes one free-text message from an end user and returns the
// reply to send back, or "" when the user should get nothing.
func (e *Engine) HandleText(ctx context.Context, from broadcast.User, text string) string {
	s := e.store.Get(from.ID)
	d := Route(s.State, e.relays.Active(from.ID))
	e.store.SetState(from.ID, d.Next)

	logger.LogEvent(ctx, logger.FLOW, slog.LevelDebug, "route",
		slog.Int64("user_id", from.ID),
		slog.String("state", string(s.State)),
		slog.String("action", d.Action.String()),
	)

	switch d.Action {
	case ActionRelayForward:
		res := e.cast.Broadcast(ctx, broadcast.Notification(labelRelayReply, from, text))
		e.record(ctx, from.ID, history.KindRelayReply, res, text)
		return ""

	case ActionComposeForward:
		res := e.cast.Broadcast(ctx, broadcast.Notification(labelSupportRequest, from, text))
		e.record(ctx, from.ID, history.KindCapturedInput, res, text)
		return TextAck

	default:
		return TextFallback
	}
}

// BeginInput puts the user into the input prompt state.
func (e *Engine) BeginInput(userID int64) {
	e.store.SetState(userID, session.StateAwaitingInput)
}

// CancelInput drops a pending input prompt. It reports whether one existed.
func (e *Engine) CancelInput(userID int64) bool {
	was := e.store.Get(userID).State == session.StateAwaitingInput
	e.store.SetState(userID, session.StateIdle)
	return was
}

// Reset wipes the user's session entirely: state, the linked flag, and any
// open relay. The relay is dropped without notifying anyone, so the user's
// next text routes normally instead of reaching the operators.
func (e *Engine) Reset(userID int64) {
	e.store.Clear(userID)
	e.relays.End(userID)
}

// StartRelay delivers an operator's message to the user and opens the relay,
// so the user's next texts come back to the operators. The relay is only
// opened when delivery succeeds, to keep operators from talking into a void.
func (e *Engine) StartRelay(ctx context.Context, userID int64, text string) error {
	if err := e.cast.SendTo(ctx, userID, TextSupportPrefix+text); err != nil {
		return fmt.Errorf("deliver to %d: %w", userID, err)
	}
	e.relays.Start(userID)
	e.rec.Record(ctx, history.Event{UserID: userID, Kind: history.KindOperatorDirect, Outcome: "delivered", Body: text})
	return nil
}

// EndRelay closes an open relay and tells the user. It reports whether a
// relay was actually open.
func (e *Engine) EndRelay(ctx context.Context, userID int64) bool {
	if !e.relays.End(userID) {
		return false
	}
	if err := e.cast.SendTo(ctx, userID, TextRelayClosed); err != nil {
		logger.LogEvent(ctx, logger.FLOW, slog.LevelWarn, "relay.close_notify",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
	return true
}

// Approve marks the user's request approved and notifies them.
func (e *Engine) Approve(ctx context.Context, userID int64) error {
	e.store.SetLinked(userID, true)
	if err := e.cast.SendTo(ctx, userID, TextApproved); err != nil {
		return fmt.Errorf("notify %d: %w", userID, err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, userID int64, kind string, res []broadcast.Delivery, body string) {
	e.rec.Record(ctx, history.Event{
		UserID:  userID,
		Kind:    kind,
		Outcome: summarize(res),
		Body:    body,
	})
}

// summarize folds per-recipient outcomes into a compact audit string, e.g.
// "delivered_rich=2 failed=1".
func summarize(res []broadcast.Delivery) string {
	counts := map[string]int{}
	order := []string{}
	for _, d := range res {
		key := d.Outcome.String()
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	parts := make([]string, 0, len(order))
	for _, key := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
