package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"relaybot/bot/broadcast"
	"relaybot/bot/flow"
	"relaybot/bot/history"
	"relaybot/bot/relay"
	"relaybot/bot/session"
	"relaybot/core/buildinfo"
	"relaybot/core/database"
	"relaybot/core/logger"
	coretelegram "relaybot/core/telegram"
	"relaybot/core/telegram/commands"
	"relaybot/core/telegram/router"

	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"
)

const cancelAction = "flow_cancel"

// App holds the assembled application.
type App struct {
	cfg      *Config
	engine   *flow.Engine
	gate     *flow.Gate
	store    session.Store
	sender   *lazySender
	registry *coretelegram.Registry
	db       *sqlx.DB
}

// lazySender satisfies broadcast.Sender before the bot exists. The real bot
// is bound in the OnStart hook; sends before that fail cleanly.
type lazySender struct {
	mu sync.RWMutex
	s  broadcast.Sender
}

func (l *lazySender) bind(s broadcast.Sender) {
	l.mu.Lock()
	l.s = s
	l.mu.Unlock()
}

func (l *lazySender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	l.mu.RLock()
	s := l.s
	l.mu.RUnlock()
	if s == nil {
		return nil, errors.New("bot not started yet")
	}
	return s.Send(to, what, opts...)
}

// Bootstrap initializes logging, optional persistence, and the conversation
// engine.
func Bootstrap(cfg *Config) (*App, error) {
	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	appLog := logger.L.With("component", "app")
	appLog.Info("starting",
		slog.String("event", "boot"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
	)
	for _, w := range cfg.Warnings() {
		appLog.Warn("config warning",
			slog.String("event", "config"),
			slog.String("warning", w),
		)
	}

	var (
		db  *sqlx.DB
		rec history.Recorder = history.Nop{}
	)
	if cfg.Database.Enabled() {
		if err := database.RunMigrations(cfg.Database); err != nil {
			return nil, err
		}
		conn, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		db = conn
		rec = history.NewDB(conn)
	}

	sender := &lazySender{}
	store := session.NewMemoryStore()

	app := &App{
		cfg:    cfg,
		engine: flow.NewEngine(store, relay.NewRegistry(), broadcast.New(sender, cfg.Telegram.Operators), rec),
		gate:   flow.NewGate(store, gateMessages, gateGenericText),
		store:  store,
		sender: sender,
		db:     db,
	}
	app.registry = app.buildRegistry()
	return app, nil
}

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Show the main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How this bot works",
	})
	reg.RegisterCommand("/contact", commands.Command{
		Handler:     a.handleContactSupport,
		Description: "Write to the support team",
	})
	reg.RegisterCommand("/link", commands.Command{
		Handler:     a.handleLink,
		Description: "Request an account link",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     a.handleResetSelf,
		Description: "Start over from a clean state",
	})

	reg.RegisterCommand("/reply", commands.Command{
		Handler:      a.handleReply,
		Description:  "Message a user: /reply <id> <text>",
		OperatorOnly: true,
	})
	reg.RegisterCommand("/close", commands.Command{
		Handler:      a.handleClose,
		Description:  "End a conversation: /close <id>",
		OperatorOnly: true,
	})
	reg.RegisterCommand("/approve", commands.Command{
		Handler:      a.handleApprove,
		Description:  "Approve a request: /approve <id>",
		OperatorOnly: true,
	})
	reg.RegisterCommand("/drop", commands.Command{
		Handler:      a.handleDrop,
		Description:  "Reset a user session: /drop <id>",
		OperatorOnly: true,
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:      a.handleStatus,
		Description:  "Show active conversations",
		OperatorOnly: true,
	})

	reg.RegisterMenu(MenuContactSupport, a.handleContactSupport)
	reg.RegisterMenu(MenuServiceStatus, a.gateHandler(featureStatus))
	reg.RegisterMenu(MenuFAQ, a.gateHandler(featureFAQ))
	reg.RegisterMenu(MenuBilling, a.gateHandler(featureBilling))

	_ = reg.RegisterCallback(cancelAction, a.handleCancel)

	return reg
}

// preempt drops the sender's pending input prompt before a command or menu
// press runs. The cancellation is deliberately silent.
func (a *App) preempt(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if s := c.Sender(); s != nil {
			a.engine.CancelInput(s.ID)
		}
		return next(c)
	}
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		Operators: core.Telegram.Operators,
		Preempt:   a.preempt,
	})
	routes = append(routes, router.TextRoutes(a.registry, router.TextOptions{
		FreeText:       a.handleFreeText,
		UnknownCommand: a.handleUnknownCommand,
		Preempt:        a.preempt,
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.sender.bind(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
