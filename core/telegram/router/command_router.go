package router

import (
	"relaybot/core/logger"
	tg "relaybot/core/telegram"
	"relaybot/core/telegram/middleware"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Operators []int64
	OnReject  tele.HandlerFunc
	// Preempt, when set, wraps every command handler. The conversation flow
	// uses it to silently cancel an in-progress input capture: commands
	// always pre-empt a capture without notifying the user.
	Preempt tele.MiddlewareFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	opOpts := middleware.OperatorOptions{
		Operators: opts.Operators,
		OnReject:  opts.OnReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		if opts.Preempt != nil {
			h = opts.Preempt(h)
		}
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.OperatorOnly {
			h = middleware.OperatorOnlyMiddleware(opOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("menu_labels", len(reg.MenuLabels())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
