// Package history optionally persists an audit trail of forwarded messages
// and delivery outcomes. The conversation flow never depends on it: when no
// database is configured the Nop recorder is wired instead.
package history

import (
	"context"
	"time"

	"relaybot/core/logger"

	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Event is one audit record.
type Event struct {
	UserID  int64     `db:"user_id"`
	Kind    string    `db:"kind"`
	Outcome string    `db:"outcome"`
	Body    string    `db:"body"`
	At      time.Time `db:"at"`
}

// Event kinds recorded by the engine.
const (
	KindRelayReply     = "relay_reply"
	KindCapturedInput  = "captured_input"
	KindOperatorDirect = "operator_direct"
)

// Recorder persists events. Implementations must never fail the caller's
// flow: errors are logged and swallowed.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) {}

// DB records events into the relay_events table.
type DB struct {
	db *sqlx.DB
}

// NewDB wraps an open connection into a Recorder.
func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db}
}

const insertEvent = `
	INSERT INTO relay_events (user_id, kind, outcome, body, at)
	VALUES (:user_id, :kind, :outcome, :body, :at)`

// Record implements Recorder. Failures are logged, never propagated.
func (d *DB) Record(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	ev.Body = logger.SanitizeLimit(ev.Body, 4096)

	if _, err := d.db.NamedExecContext(ctx, insertEvent, ev); err != nil {
		logger.Error(ctx, "db", "history.record",
			slog.Int64("user_id", ev.UserID),
			slog.String("kind", ev.Kind),
			slog.String("err", err.Error()),
		)
	}
}
