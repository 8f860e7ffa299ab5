package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pomobot/core/logger"
)

// SQLStore is a Store over the pomodoro_events table.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore wraps an open database that has the journal migrations applied.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type eventRow struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	ChatID    int64  `db:"chat_id"`
	Kind      string `db:"kind"`
	From      string `db:"from_state"`
	To        string `db:"to_state"`
	Cycle     int    `db:"cycle"`
	CreatedAt int64  `db:"created_at"`
}

const insertEvent = `INSERT INTO pomodoro_events
	(id, user_id, chat_id, kind, from_state, to_state, cycle, created_at)
	VALUES (:id, :user_id, :chat_id, :kind, :from_state, :to_state, :cycle, :created_at)`

// Append inserts rec, assigning an id and timestamp when missing.
func (s *SQLStore) Append(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return errors.New("journal: nil store")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	row := eventRow{
		ID:        rec.ID,
		UserID:    rec.UserID,
		ChatID:    rec.ChatID,
		Kind:      string(rec.Kind),
		From:      rec.From,
		To:        rec.To,
		Cycle:     rec.Cycle,
		CreatedAt: rec.CreatedAt.UnixMilli(),
	}
	if _, err := s.db.NamedExecContext(ctx, insertEvent, row); err != nil {
		logger.Journal.Error("append failed",
			slog.String("event", "journal.append"),
			slog.Int64("user_id", rec.UserID),
			slog.String("kind", string(rec.Kind)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("journal: append: %w", err)
	}
	logger.Journal.Debug("appended",
		slog.String("event", "journal.append"),
		slog.Int64("user_id", rec.UserID),
		slog.String("kind", string(rec.Kind)),
	)
	return nil
}

const summaryQuery = `SELECT
	COALESCE(SUM(CASE WHEN kind = 'registered' THEN 1 ELSE 0 END), 0) AS sessions,
	COALESCE(SUM(CASE WHEN kind = 'expired' AND from_state = 'work' THEN 1 ELSE 0 END), 0) AS focus_completed,
	COALESCE(SUM(CASE WHEN kind = 'expired' AND from_state = 'break' THEN 1 ELSE 0 END), 0) AS breaks,
	COALESCE(SUM(CASE WHEN kind = 'expired' AND from_state = 'long_break' THEN 1 ELSE 0 END), 0) AS long_breaks,
	COALESCE(SUM(CASE WHEN kind = 'skipped' THEN 1 ELSE 0 END), 0) AS skips,
	COALESCE(SUM(CASE WHEN kind = 'purged' THEN 1 ELSE 0 END), 0) AS purged,
	COALESCE(MAX(created_at), 0) AS last_at
	FROM pomodoro_events WHERE user_id = ?`

type summaryRow struct {
	Sessions       int   `db:"sessions"`
	FocusCompleted int   `db:"focus_completed"`
	Breaks         int   `db:"breaks"`
	LongBreaks     int   `db:"long_breaks"`
	Skips          int   `db:"skips"`
	Purged         int   `db:"purged"`
	LastAt         int64 `db:"last_at"`
}

// Summary aggregates every record of userID.
func (s *SQLStore) Summary(ctx context.Context, userID int64) (Summary, error) {
	if s == nil || s.db == nil {
		return Summary{}, errors.New("journal: nil store")
	}
	var row summaryRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(summaryQuery), userID); err != nil {
		return Summary{}, fmt.Errorf("journal: summary: %w", err)
	}
	sum := Summary{
		Sessions:       row.Sessions,
		FocusCompleted: row.FocusCompleted,
		Breaks:         row.Breaks,
		LongBreaks:     row.LongBreaks,
		Skips:          row.Skips,
		Purged:         row.Purged,
	}
	if row.LastAt > 0 {
		sum.LastActivity = time.UnixMilli(row.LastAt)
	}
	return sum, nil
}
