package router

import (
	"strings"
	"time"

	tg "relaybot/core/telegram"
	"relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls routing of plain text updates.
type TextOptions struct {
	// FreeText handles text that is neither a menu label nor a command.
	FreeText tele.HandlerFunc
	// UnknownCommand handles slash-prefixed text with no registered handler.
	UnknownCommand tele.HandlerFunc
	// Preempt wraps menu and command dispatch the same way CommandRoutes
	// does, so menu presses cancel an in-progress capture consistently.
	Preempt tele.MiddlewareFunc
}

// TextRoutes builds the OnText route. Incoming text is classified in order:
// exact menu-button label, command marker, free text. Free text is the only
// class whose handling depends on conversation state.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if h, ok := reg.LookupMenu(text); ok {
				if opts.Preempt != nil {
					h = opts.Preempt(h)
				}
				return handleWithSummary(c, "menu."+normalizeHandlerName(text), start, func() error {
					return h(c)
				})
			}
		}

		if strings.HasPrefix(text, "/") {
			// Registered commands are dispatched by telebot before OnText;
			// what lands here is aliases and unknown commands.
			if reg != nil {
				name := strings.Fields(text)[0]
				if key, cmd, ok := reg.LookupCommand(name); ok && cmd.Handler != nil {
					h := cmd.Handler
					if opts.Preempt != nil {
						h = opts.Preempt(h)
					}
					return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
						return h(c)
					})
				}
			}
			if opts.UnknownCommand != nil {
				return handleWithSummary(c, "unknown_command", start, func() error {
					return opts.UnknownCommand(c)
				})
			}
			logHandlerSummary(c, "unknown_command", start, "skip", nil)
			return nil
		}

		if opts.FreeText != nil {
			return handleWithSummary(c, "free_text", start, func() error {
				return opts.FreeText(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
