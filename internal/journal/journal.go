// Package journal keeps an append-only history of pomodoro lifecycle events
// and answers per-user summaries from it. Running timers are never restored
// from the journal.
package journal

import (
	"context"
	"embed"
	"io/fs"
	"time"
)

// Kind names a journaled lifecycle event.
type Kind string

const (
	KindRegistered Kind = "registered"
	KindStarted    Kind = "started"
	KindSkipped    Kind = "skipped"
	KindExpired    Kind = "expired"
	KindEnded      Kind = "ended"
	KindPurged     Kind = "purged"
)

// Record is one journaled event.
type Record struct {
	ID        string
	UserID    int64
	ChatID    int64
	Kind      Kind
	From      string
	To        string
	Cycle     int
	CreatedAt time.Time
}

// Summary aggregates a user's history.
type Summary struct {
	Sessions       int
	FocusCompleted int
	Breaks         int
	LongBreaks     int
	Skips          int
	Purged         int
	LastActivity   time.Time
}

// Empty reports whether the user has no history at all.
func (s Summary) Empty() bool {
	return s.Sessions == 0 && s.LastActivity.IsZero()
}

// Store persists records and answers summaries.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Summary(ctx context.Context, userID int64) (Summary, error)
}

// Nop is a Store that keeps nothing. It is used when no database is configured.
type Nop struct{}

// Append discards rec.
func (Nop) Append(context.Context, Record) error { return nil }

// Summary always reports an empty history.
func (Nop) Summary(context.Context, int64) (Summary, error) { return Summary{}, nil }

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations with the files at the root.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
