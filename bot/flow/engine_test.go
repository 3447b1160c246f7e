package flow

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"relaybot/bot/broadcast"
	"relaybot/bot/history"
	"relaybot/bot/relay"
	"relaybot/bot/session"

	tele "gopkg.in/telebot.v4"
)

type sentMsg struct {
	to   string
	text string
	rich bool
}

type fakeSender struct {
	calls   []sentMsg
	failAll map[string]bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	text, _ := what.(string)
	rich := false
	for _, opt := range opts {
		if so, ok := opt.(*tele.SendOptions); ok && so != nil && so.ParseMode == tele.ModeMarkdownV2 {
			rich = true
		}
	}
	key := to.Recipient()
	if f.failAll[key] {
		return nil, errors.New("telegram: forbidden")
	}
	f.calls = append(f.calls, sentMsg{to: key, text: text, rich: rich})
	return &tele.Message{}, nil
}

func (f *fakeSender) sentTo(id int64) []sentMsg {
	key := strconv.FormatInt(id, 10)
	out := []sentMsg{}
	for _, c := range f.calls {
		if c.to == key {
			out = append(out, c)
		}
	}
	return out
}

type memRecorder struct {
	events []history.Event
}

func (m *memRecorder) Record(_ context.Context, ev history.Event) {
	m.events = append(m.events, ev)
}

func newTestEngine(operators []int64) (*Engine, *fakeSender, *memRecorder, session.Store) {
	sender := &fakeSender{failAll: map[string]bool{}}
	store := session.NewMemoryStore()
	rec := &memRecorder{}
	eng := NewEngine(store, relay.NewRegistry(), broadcast.New(sender, operators), rec)
	return eng, sender, rec, store
}

func TestIdleTextFallsBack(t *testing.T) {
	eng, sender, _, _ := newTestEngine([]int64{100, 200})

	reply := eng.HandleText(context.Background(), broadcast.User{ID: 1}, "hi there")

	if reply != TextFallback {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if len(sender.calls) != 0 {
		t.Errorf("fallback reached operators: %d sends", len(sender.calls))
	}
}

func TestCapturedInputForwardsAndAcks(t *testing.T) {
	eng, sender, rec, store := newTestEngine([]int64{100, 200})
	user := broadcast.User{ID: 1, Username: "alice"}

	eng.BeginInput(user.ID)
	reply := eng.HandleText(context.Background(), user, "my payment failed")

	if reply != TextAck {
		t.Errorf("reply = %q, want ack", reply)
	}
	for _, op := range []int64{100, 200} {
		got := sender.sentTo(op)
		if len(got) != 1 {
			t.Fatalf("operator %d got %d messages, want 1", op, len(got))
		}
		if !strings.Contains(got[0].text, "my payment failed") {
			t.Errorf("operator %d text = %q, missing payload", op, got[0].text)
		}
	}
	if st := store.Get(user.ID).State; st != session.StateIdle {
		t.Errorf("state after capture = %q, want idle", st)
	}
	if len(rec.events) != 1 || rec.events[0].Kind != history.KindCapturedInput {
		t.Errorf("recorded events = %+v", rec.events)
	}
	if rec.events[0].Outcome != "delivered_rich=2" {
		t.Errorf("outcome summary = %q", rec.events[0].Outcome)
	}
}

func TestAckDoesNotDependOnDelivery(t *testing.T) {
	eng, sender, _, _ := newTestEngine([]int64{100, 200})
	sender.failAll["100"] = true
	sender.failAll["200"] = true

	eng.BeginInput(1)
	reply := eng.HandleText(context.Background(), broadcast.User{ID: 1}, "anyone there?")

	if reply != TextAck {
		t.Errorf("reply with all operators down = %q, want ack", reply)
	}
}

func TestRelayRoundTrip(t *testing.T) {
	eng, sender, _, _ := newTestEngine([]int64{100, 200})
	ctx := context.Background()
	user := broadcast.User{ID: 555, Username: "bob"}

	if err := eng.StartRelay(ctx, user.ID, "how can we help?"); err != nil {
		t.Fatalf("StartRelay: %v", err)
	}
	got := sender.sentTo(user.ID)
	if len(got) != 1 || got[0].text != TextSupportPrefix+"how can we help?" {
		t.Fatalf("user received %+v", got)
	}
	if !eng.InRelay(user.ID) {
		t.Fatal("relay not active after StartRelay")
	}

	reply := eng.HandleText(ctx, user, "the app crashes on login")
	if reply != "" {
		t.Errorf("relayed text got reply %q, want silence", reply)
	}
	for _, op := range []int64{100, 200} {
		msgs := sender.sentTo(op)
		if len(msgs) != 1 || !strings.Contains(msgs[0].text, "the app crashes on login") {
			t.Errorf("operator %d got %+v", op, msgs)
		}
	}

	if !eng.EndRelay(ctx, user.ID) {
		t.Fatal("EndRelay reported no relay")
	}
	if eng.EndRelay(ctx, user.ID) {
		t.Error("second EndRelay reported an open relay")
	}
	closed := sender.sentTo(user.ID)
	if len(closed) != 2 || closed[1].text != TextRelayClosed {
		t.Errorf("user messages after close = %+v", closed)
	}

	if reply := eng.HandleText(ctx, user, "ok"); reply != TextFallback {
		t.Errorf("post-relay text reply = %q, want fallback", reply)
	}
}

func TestRelayPreservesPendingInput(t *testing.T) {
	eng, _, _, store := newTestEngine([]int64{100})
	ctx := context.Background()
	user := broadcast.User{ID: 9}

	eng.BeginInput(user.ID)
	if err := eng.StartRelay(ctx, user.ID, "hello"); err != nil {
		t.Fatalf("StartRelay: %v", err)
	}

	if reply := eng.HandleText(ctx, user, "mid-relay text"); reply != "" {
		t.Errorf("relay reply = %q, want silence", reply)
	}
	if st := store.Get(user.ID).State; st != session.StateAwaitingInput {
		t.Errorf("state during relay = %q, want awaiting_input", st)
	}

	eng.EndRelay(ctx, user.ID)
	if reply := eng.HandleText(ctx, user, "now my actual question"); reply != TextAck {
		t.Errorf("post-relay capture reply = %q, want ack", reply)
	}
}

func TestStartRelayFailureLeavesRelayClosed(t *testing.T) {
	eng, sender, _, _ := newTestEngine([]int64{100})
	sender.failAll["42"] = true

	if err := eng.StartRelay(context.Background(), 42, "hi"); err == nil {
		t.Fatal("StartRelay succeeded against dead recipient")
	}
	if eng.InRelay(42) {
		t.Error("relay opened despite failed delivery")
	}
}

func TestApproveAndReset(t *testing.T) {
	eng, sender, _, store := newTestEngine([]int64{100})
	ctx := context.Background()

	if err := eng.Approve(ctx, 7); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !store.Get(7).Linked {
		t.Error("user not linked after approve")
	}
	got := sender.sentTo(7)
	if len(got) != 1 || got[0].text != TextApproved {
		t.Errorf("user received %+v", got)
	}

	eng.Reset(7)
	if store.Get(7).Linked {
		t.Error("linked flag survived reset")
	}
}

func TestResetDropsOpenRelay(t *testing.T) {
	eng, sender, _, _ := newTestEngine([]int64{100})
	ctx := context.Background()
	user := broadcast.User{ID: 8}

	if err := eng.StartRelay(ctx, user.ID, "hello"); err != nil {
		t.Fatalf("StartRelay: %v", err)
	}
	before := len(sender.calls)

	eng.Reset(user.ID)

	if eng.InRelay(user.ID) {
		t.Error("relay survived reset")
	}
	if len(sender.calls) != before {
		t.Errorf("reset sent %d extra messages", len(sender.calls)-before)
	}
	if reply := eng.HandleText(ctx, user, "hi again"); reply != TextFallback {
		t.Errorf("post-reset text reply = %q, want fallback", reply)
	}
	if got := sender.sentTo(100); len(got) != 0 {
		t.Errorf("operators received %+v after reset", got)
	}
}

func TestCancelInput(t *testing.T) {
	eng, _, _, _ := newTestEngine(nil)

	if eng.CancelInput(1) {
		t.Error("cancel with no prompt reported true")
	}
	eng.BeginInput(1)
	if !eng.CancelInput(1) {
		t.Error("cancel with pending prompt reported false")
	}
}
