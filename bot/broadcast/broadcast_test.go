package broadcast

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type sentCall struct {
	to    string
	text  string
	parse tele.ParseMode
}

// fakeSender scripts failures per recipient: failRich rejects the formatted
// attempt, failAll rejects both attempts.
type fakeSender struct {
	calls    []sentCall
	failRich map[string]bool
	failAll  map[string]bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	text, _ := what.(string)
	parse := tele.ParseMode("")
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so != nil {
			parse = so.ParseMode
		}
	}
	call := sentCall{to: to.Recipient(), text: text, parse: parse}
	f.calls = append(f.calls, call)

	if f.failAll[to.Recipient()] {
		return nil, errors.New("recipient unreachable")
	}
	if parse == tele.ModeMarkdownV2 && f.failRich[to.Recipient()] {
		return nil, errors.New("can't parse entities")
	}
	return &tele.Message{}, nil
}

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

func TestBroadcastAllRich(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, []int64{1, 2, 3})

	results := b.Broadcast(context.Background(), Message{Rich: "*x*", Plain: "x"})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, d := range results {
		if d.Outcome != OutcomeRich || d.Err != nil {
			t.Fatalf("result %d = %+v", i, d)
		}
	}
	if len(sender.calls) != 3 {
		t.Fatalf("send calls = %d", len(sender.calls))
	}
}

func TestBroadcastFallsBackToPlain(t *testing.T) {
	sender := &fakeSender{failRich: map[string]bool{idKey(2): true}}
	b := New(sender, []int64{1, 2})

	results := b.Broadcast(context.Background(), Message{Rich: "*x*", Plain: "x"})

	if results[0].Outcome != OutcomeRich {
		t.Fatalf("recipient 1 outcome = %v", results[0].Outcome)
	}
	if results[1].Outcome != OutcomePlain {
		t.Fatalf("recipient 2 outcome = %v", results[1].Outcome)
	}
	// 1 rich for recipient 1, rich+plain for recipient 2
	if len(sender.calls) != 3 {
		t.Fatalf("send calls = %d", len(sender.calls))
	}
	last := sender.calls[2]
	if last.parse != "" || last.text != "x" {
		t.Fatalf("fallback call = %+v", last)
	}
}

func TestBroadcastIsolatesFailures(t *testing.T) {
	sender := &fakeSender{failAll: map[string]bool{idKey(1): true, idKey(3): true}}
	b := New(sender, []int64{1, 2, 3, 4})

	results := b.Broadcast(context.Background(), Message{Rich: "*x*", Plain: "x"})

	if len(results) != 4 {
		t.Fatalf("results = %d, want an outcome for every recipient", len(results))
	}
	want := []Outcome{OutcomeFailed, OutcomeRich, OutcomeFailed, OutcomeRich}
	for i, d := range results {
		if d.Outcome != want[i] {
			t.Fatalf("recipient %d outcome = %v, want %v", d.Recipient, d.Outcome, want[i])
		}
	}
	if results[0].Err == nil || results[2].Err == nil {
		t.Fatal("failed deliveries should carry their error")
	}
}

func TestBroadcastEmptyRecipients(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, nil)
	if results := b.Broadcast(context.Background(), Message{}); len(results) != 0 {
		t.Fatalf("results = %d", len(results))
	}
	if len(sender.calls) != 0 {
		t.Fatal("no sends expected")
	}
}

func TestNotificationTemplate(t *testing.T) {
	msg := Notification("Reply from user", User{ID: 555, Username: "alice_w"}, "hi (there)!")

	if !strings.Contains(msg.Plain, "Reply from user") ||
		!strings.Contains(msg.Plain, "@alice_w") ||
		!strings.Contains(msg.Plain, "(555)") ||
		!strings.Contains(msg.Plain, "hi (there)!") {
		t.Fatalf("plain rendering incomplete: %q", msg.Plain)
	}
	if !strings.Contains(msg.Rich, `hi \(there\)\!`) {
		t.Fatalf("payload not escaped in rich rendering: %q", msg.Rich)
	}
	if !strings.Contains(msg.Rich, `@alice\_w`) {
		t.Fatalf("handle not escaped in rich rendering: %q", msg.Rich)
	}
}

func TestNotificationWithoutUsername(t *testing.T) {
	msg := Notification("Support request", User{ID: 9}, "hello")
	if !strings.Contains(msg.Plain, "N/A") {
		t.Fatalf("expected N/A handle, got %q", msg.Plain)
	}
}

func TestSendTo(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, nil)
	if err := b.SendTo(context.Background(), 7, "hello"); err != nil {
		t.Fatalf("SendTo: %v", err)
	}
	if len(sender.calls) != 1 || sender.calls[0].to != "7" || sender.calls[0].text != "hello" {
		t.Fatalf("unexpected call: %+v", sender.calls)
	}

	sender = &fakeSender{failAll: map[string]bool{"7": true}}
	b = New(sender, nil)
	if err := b.SendTo(context.Background(), 7, "hello"); err == nil {
		t.Fatal("expected error")
	}
}
