// Package broadcast delivers operator notifications to every configured
// operator with per-recipient failure isolation. Delivery is best effort:
// one MarkdownV2 attempt, one plain-text fallback, no retries.
package broadcast

import (
	"context"
	"fmt"

	"relaybot/core/logger"
	"relaybot/core/telegram/format"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Sender is the outbound capability of the messaging client. *tele.Bot
// satisfies it; tests substitute a fake.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Message carries a formatted rendering and a safe degraded rendering of one
// logical notification. It is built once per notification, not per recipient.
type Message struct {
	Rich  string
	Plain string
}

// Outcome classifies the delivery result for a single recipient.
type Outcome int

const (
	// OutcomeRich means the MarkdownV2 rendering was delivered.
	OutcomeRich Outcome = iota
	// OutcomePlain means formatting was rejected and the plain rendering was delivered.
	OutcomePlain
	// OutcomeFailed means both attempts failed.
	OutcomeFailed
)

// String returns the log token for an outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRich:
		return "delivered_rich"
	case OutcomePlain:
		return "delivered_plain"
	default:
		return "failed"
	}
}

// Delivery reports the outcome for one recipient.
type Delivery struct {
	Recipient int64
	Outcome   Outcome
	Err       error
}

// User identifies the sender whose content a notification carries.
type User struct {
	ID       int64
	Username string
}

// Broadcaster fans a message out to a fixed, ordered recipient list.
type Broadcaster struct {
	sender     Sender
	recipients []int64
}

// New creates a Broadcaster for the given sender and recipient list.
func New(sender Sender, recipients []int64) *Broadcaster {
	return &Broadcaster{sender: sender, recipients: recipients}
}

// Recipients returns the configured recipient list.
func (b *Broadcaster) Recipients() []int64 {
	return b.recipients
}

// Broadcast delivers msg to every recipient sequentially. A failure for one
// recipient never aborts delivery to the remaining ones; the returned slice
// always contains an entry per recipient, in recipient order.
func (b *Broadcaster) Broadcast(ctx context.Context, msg Message) []Delivery {
	results := make([]Delivery, 0, len(b.recipients))
	for _, id := range b.recipients {
		d := Delivery{Recipient: id, Outcome: OutcomeRich}

		_, err := b.sender.Send(tele.ChatID(id), msg.Rich, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
		if err != nil {
			_, plainErr := b.sender.Send(tele.ChatID(id), msg.Plain)
			if plainErr != nil {
				d.Outcome = OutcomeFailed
				d.Err = plainErr
			} else {
				d.Outcome = OutcomePlain
			}
		}

		attrs := []slog.Attr{
			slog.Int64("recipient", id),
			slog.String("outcome", d.Outcome.String()),
		}
		if d.Err != nil {
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(d.Err.Error(), 256)))
			logger.LogEvent(ctx, logger.CAST, slog.LevelError, "broadcast.delivery", attrs...)
		} else {
			logger.LogEvent(ctx, logger.CAST, slog.LevelDebug, "broadcast.delivery", attrs...)
		}

		results = append(results, d)
	}
	return results
}

// SendTo delivers plain text to a single user (used by the control plane).
func (b *Broadcaster) SendTo(ctx context.Context, userID int64, text string) error {
	_, err := b.sender.Send(tele.ChatID(userID), text)
	if err != nil {
		logger.LogEvent(ctx, logger.CAST, slog.LevelError, "send.direct",
			slog.Int64("recipient", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return err
	}
	logger.LogEvent(ctx, logger.CAST, slog.LevelDebug, "send.direct",
		slog.Int64("recipient", userID),
		slog.String("status", "ok"),
	)
	return nil
}

// Notification builds the fixed operator notification template: a label, the
// sender's display handle (or "N/A"), the numeric sender ID, and the payload.
// Only the free-form parts are escaped, never the template literals.
func Notification(label string, from User, payload string) Message {
	handle := "N/A"
	if from.Username != "" {
		handle = "@" + from.Username
	}
	rich := fmt.Sprintf("*%s*\nFrom: %s \\(`%d`\\)\n\n%s",
		format.EscapeMarkdownV2(label),
		format.EscapeMarkdownV2(handle),
		from.ID,
		format.EscapeMarkdownV2(payload),
	)
	plain := fmt.Sprintf("%s\nFrom: %s (%d)\n\n%s", label, handle, from.ID, payload)
	return Message{Rich: rich, Plain: plain}
}
