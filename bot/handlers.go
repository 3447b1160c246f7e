package bot

import (
	"fmt"
	"strconv"
	"strings"

	"relaybot/bot/broadcast"
	"relaybot/bot/flow"
	"relaybot/core/logger"
	"relaybot/core/telegram/helpers"
	"relaybot/core/telegram/keyboard"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{MenuContactSupport},
		[]string{MenuServiceStatus, MenuFAQ},
		[]string{MenuBilling},
	)
}

func (a *App) handleStart(c tele.Context) error {
	helpers.WithHandler(c, "start")
	return c.Send(welcomeText, mainMenu())
}

func (a *App) handleHelp(c tele.Context) error {
	helpers.WithHandler(c, "help")
	return c.Send(
		"Messages you send through \""+MenuContactSupport+"\" go straight to the support team. "+
			"They answer you right here in this chat. /start brings the menu back.",
		mainMenu(),
	)
}

func (a *App) handleContactSupport(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	helpers.WithHandler(c, "contact_support")
	a.engine.BeginInput(sender.ID)
	return c.Send(flow.TextAskInput, keyboard.SingleCancelMarkup(cancelAction))
}

func (a *App) handleLink(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	helpers.WithHandler(c, "link")
	if a.store.Get(sender.ID).Linked {
		return helpers.SendText(c, fmt.Sprintf(flow.TextQueuedFmt, "link"))
	}
	a.engine.BeginInput(sender.ID)
	return c.Send(linkPromptText, keyboard.SingleCancelMarkup(cancelAction))
}

func (a *App) handleResetSelf(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	helpers.WithHandler(c, "reset")
	a.engine.Reset(sender.ID)
	return c.Send("Done, you are starting fresh.", mainMenu())
}

// gateHandler answers a feature tap via the menu gate.
func (a *App) gateHandler(feature string) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		helpers.WithHandler(c, "menu."+feature)
		return c.Send(a.gate.Respond(sender.ID, feature), mainMenu())
	}
}

func (a *App) handleCancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.engine.CancelInput(sender.ID)
	return c.EditOrSend(flow.TextCancelled)
}

func (a *App) handleFreeText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.WithHandler(c, "free_text")

	reply := a.engine.HandleText(ctx, broadcast.User{ID: sender.ID, Username: sender.Username}, c.Text())
	if reply == "" {
		return nil
	}
	return helpers.SendText(c, reply)
}

// handleUnknownCommand drops any pending input prompt and answers nothing.
// Unknown commands never leak which commands exist.
func (a *App) handleUnknownCommand(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.WithHandler(c, "unknown_command")
	if a.engine.CancelInput(sender.ID) {
		logger.LogEvent(ctx, logger.FLOW, slog.LevelDebug, "input.preempted",
			slog.Int64("user_id", sender.ID),
		)
	}
	return nil
}

// parseUserID extracts the target user ID from an operator command payload
// and returns the rest of the payload.
func parseUserID(payload string) (int64, string, error) {
	fields := strings.SplitN(strings.TrimSpace(payload), " ", 2)
	if fields[0] == "" {
		return 0, "", fmt.Errorf("missing user id")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad user id %q", fields[0])
	}
	rest := ""
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return id, rest, nil
}

func (a *App) handleReply(c tele.Context) error {
	ctx := helpers.WithHandler(c, "reply")
	id, text, err := parseUserID(c.Message().Payload)
	if err != nil || text == "" {
		return helpers.SendText(c, "Usage: /reply <user_id> <text>")
	}
	if err := a.engine.StartRelay(ctx, id, text); err != nil {
		return helpers.SendText(c, fmt.Sprintf("Could not reach %d: %v", id, err))
	}
	return helpers.SendText(c, fmt.Sprintf("Delivered. Conversation with %d is open; their messages now come here.", id))
}

func (a *App) handleClose(c tele.Context) error {
	ctx := helpers.WithHandler(c, "close")
	id, _, err := parseUserID(c.Message().Payload)
	if err != nil {
		return helpers.SendText(c, "Usage: /close <user_id>")
	}
	if !a.engine.EndRelay(ctx, id) {
		return helpers.SendText(c, fmt.Sprintf("No open conversation with %d.", id))
	}
	return helpers.SendText(c, fmt.Sprintf("Conversation with %d closed.", id))
}

func (a *App) handleApprove(c tele.Context) error {
	ctx := helpers.WithHandler(c, "approve")
	id, _, err := parseUserID(c.Message().Payload)
	if err != nil {
		return helpers.SendText(c, "Usage: /approve <user_id>")
	}
	if err := a.engine.Approve(ctx, id); err != nil {
		return helpers.SendText(c, fmt.Sprintf("Approved, but could not notify %d: %v", id, err))
	}
	return helpers.SendText(c, fmt.Sprintf("Approved %d and notified them.", id))
}

func (a *App) handleDrop(c tele.Context) error {
	helpers.WithHandler(c, "drop")
	id, _, err := parseUserID(c.Message().Payload)
	if err != nil {
		return helpers.SendText(c, "Usage: /drop <user_id>")
	}
	a.engine.Reset(id)
	return helpers.SendText(c, fmt.Sprintf("Session for %d reset.", id))
}

func (a *App) handleStatus(c tele.Context) error {
	helpers.WithHandler(c, "status")
	return helpers.SendMDV2(c, fmt.Sprintf(
		"*Active conversations:* %d\n*Operators configured:* %d",
		a.engine.ActiveRelays(),
		len(a.cfg.Telegram.Operators),
	))
}
