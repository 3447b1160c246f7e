package bot

import (
	"sync/atomic"
	"testing"

	"relaybot/bot/broadcast"
	"relaybot/bot/flow"
	"relaybot/bot/history"
	"relaybot/bot/relay"
	"relaybot/bot/session"
	coretelegram "relaybot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// stubSender records what the bot sends on its own behalf (fan-out and
// control-plane deliveries), as opposed to replies on the update context.
type stubSender struct {
	sent []stubSent
}

type stubSent struct {
	to   string
	text string
}

func (s *stubSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	text, _ := what.(string)
	s.sent = append(s.sent, stubSent{to: to.Recipient(), text: text})
	return &tele.Message{}, nil
}

var updSeq int64

// testCtx fakes the slice of tele.Context the routing stack touches. Any
// method outside that surface panics through the embedded nil interface.
type testCtx struct {
	tele.Context
	upd    tele.Update
	sender *tele.User
	sent   []string
	kv     map[string]interface{}
}

func newUpdate(from *tele.User, text, payload string) *testCtx {
	msg := &tele.Message{
		Text:    text,
		Payload: payload,
		Sender:  from,
		Chat:    &tele.Chat{ID: from.ID},
	}
	return &testCtx{
		upd:    tele.Update{ID: int(atomic.AddInt64(&updSeq, 1)), Message: msg},
		sender: from,
		kv:     map[string]interface{}{},
	}
}

func (c *testCtx) Update() tele.Update       { return c.upd }
func (c *testCtx) Message() *tele.Message    { return c.upd.Message }
func (c *testCtx) Callback() *tele.Callback  { return nil }
func (c *testCtx) Sender() *tele.User        { return c.sender }
func (c *testCtx) Chat() *tele.Chat          { return c.upd.Message.Chat }
func (c *testCtx) Text() string              { return c.upd.Message.Text }
func (c *testCtx) Get(key string) interface{} { return c.kv[key] }
func (c *testCtx) Set(key string, val interface{}) { c.kv[key] = val }

func (c *testCtx) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func (c *testCtx) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

func (c *testCtx) Respond(_ ...*tele.CallbackResponse) error { return nil }

// newWiredApp assembles an App over fakes and returns the fully wired
// routes, exactly as RunTelegram would register them.
func newWiredApp(t *testing.T, operators []int64) (*App, *stubSender, []coretelegram.Route) {
	t.Helper()

	stub := &stubSender{}
	ls := &lazySender{}
	ls.bind(stub)

	store := session.NewMemoryStore()
	cfg := &Config{}
	cfg.Telegram.Token = "test-token"
	cfg.Telegram.Operators = operators

	app := &App{
		cfg:    cfg,
		engine: flow.NewEngine(store, relay.NewRegistry(), broadcast.New(ls, operators), history.Nop{}),
		gate:   flow.NewGate(store, gateMessages, gateGenericText),
		store:  store,
		sender: ls,
	}
	app.registry = app.buildRegistry()

	opts, err := app.TelegramRunOptions()
	if err != nil {
		t.Fatal(err)
	}
	return app, stub, opts.Routes
}

func dispatch(t *testing.T, routes []coretelegram.Route, endpoint interface{}, c tele.Context) {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			if err := r.Handler(c); err != nil {
				t.Fatalf("handler %v: %v", endpoint, err)
			}
			return
		}
	}
	t.Fatalf("no route for endpoint %v", endpoint)
}

func TestCommandSilentlyCancelsPendingCapture(t *testing.T) {
	app, stub, routes := newWiredApp(t, []int64{100})
	user := &tele.User{ID: 1, Username: "alice"}

	app.engine.BeginInput(user.ID)

	c := newUpdate(user, "/start", "")
	dispatch(t, routes, "/start", c)

	if st := app.store.Get(user.ID).State; st != session.StateIdle {
		t.Errorf("state after command = %q, want idle", st)
	}
	for _, text := range c.sent {
		if text == flow.TextCancelled {
			t.Error("command cancellation was announced")
		}
	}
	if len(c.sent) != 1 || c.sent[0] != welcomeText {
		t.Errorf("replies = %v, want just the welcome", c.sent)
	}
	if len(stub.sent) != 0 {
		t.Errorf("operators received %v", stub.sent)
	}

	// The cancelled capture must not fire on the next text.
	free := newUpdate(user, "hello", "")
	dispatch(t, routes, tele.OnText, free)
	if len(free.sent) != 1 || free.sent[0] != flow.TextFallback {
		t.Errorf("post-cancel text replies = %v, want fallback", free.sent)
	}
	if len(stub.sent) != 0 {
		t.Errorf("cancelled capture still forwarded: %v", stub.sent)
	}
}

func TestMenuPressCancelsPendingCapture(t *testing.T) {
	app, stub, routes := newWiredApp(t, []int64{100})
	user := &tele.User{ID: 2}

	app.engine.BeginInput(user.ID)

	c := newUpdate(user, MenuServiceStatus, "")
	dispatch(t, routes, tele.OnText, c)

	if st := app.store.Get(user.ID).State; st != session.StateIdle {
		t.Errorf("state after menu press = %q, want idle", st)
	}
	if len(c.sent) != 1 || c.sent[0] != gateMessages[featureStatus] {
		t.Errorf("replies = %v, want the status gate message", c.sent)
	}
	if len(stub.sent) != 0 {
		t.Errorf("menu press forwarded to operators: %v", stub.sent)
	}
}

func TestUnknownCommandAnswersNothing(t *testing.T) {
	app, stub, routes := newWiredApp(t, nil)
	user := &tele.User{ID: 3}

	c := newUpdate(user, "/bogus", "")
	dispatch(t, routes, tele.OnText, c)
	if len(c.sent) != 0 {
		t.Errorf("idle unknown command replied: %v", c.sent)
	}

	app.engine.BeginInput(user.ID)
	c = newUpdate(user, "/bogus", "")
	dispatch(t, routes, tele.OnText, c)
	if st := app.store.Get(user.ID).State; st != session.StateIdle {
		t.Errorf("state after unknown command = %q, want idle", st)
	}
	if len(c.sent) != 0 {
		t.Errorf("unknown command replied: %v", c.sent)
	}
	if len(stub.sent) != 0 {
		t.Errorf("unknown command reached operators: %v", stub.sent)
	}
}

func TestOperatorCommandsSilentForOthers(t *testing.T) {
	app, stub, routes := newWiredApp(t, []int64{100})
	outsider := &tele.User{ID: 999}

	c := newUpdate(outsider, "/reply 1 hi", "1 hi")
	dispatch(t, routes, "/reply", c)

	if len(c.sent) != 0 {
		t.Errorf("non-operator got replies: %v", c.sent)
	}
	if len(stub.sent) != 0 {
		t.Errorf("non-operator triggered deliveries: %v", stub.sent)
	}
	if app.engine.InRelay(1) {
		t.Error("non-operator opened a relay")
	}
}
