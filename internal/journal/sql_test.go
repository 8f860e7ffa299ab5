package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pomobot/core/database"
)

func openTestStore(t *testing.T) (*SQLStore, *sqlx.DB) {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "journal.db")}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.RunMigrations(cfg, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLStore(db), db
}

func TestSQLStoreSummary(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	records := []Record{
		{UserID: 1, ChatID: 10, Kind: KindRegistered, To: "work", Cycle: 1},
		{UserID: 1, ChatID: 10, Kind: KindExpired, From: "work", To: "standby", Cycle: 1},
		{UserID: 1, ChatID: 10, Kind: KindStarted, From: "standby", To: "break", Cycle: 1},
		{UserID: 1, ChatID: 10, Kind: KindExpired, From: "break", To: "standby", Cycle: 1},
		{UserID: 1, ChatID: 10, Kind: KindStarted, From: "standby", To: "work", Cycle: 2},
		{UserID: 1, ChatID: 10, Kind: KindSkipped, From: "work", To: "standby", Cycle: 2},
		{UserID: 1, ChatID: 10, Kind: KindExpired, From: "standby", To: "standby", Cycle: 2},
		{UserID: 1, ChatID: 10, Kind: KindExpired, From: "long_break", To: "standby", Cycle: 4},
		{UserID: 1, ChatID: 10, Kind: KindPurged, From: "standby", Cycle: 4},
		{UserID: 2, ChatID: 20, Kind: KindRegistered, To: "work", Cycle: 1},
	}
	for i, rec := range records {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	sum, err := store.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := Summary{Sessions: 1, FocusCompleted: 1, Breaks: 1, LongBreaks: 1, Skips: 1, Purged: 1}
	if sum.Sessions != want.Sessions || sum.FocusCompleted != want.FocusCompleted ||
		sum.Breaks != want.Breaks || sum.LongBreaks != want.LongBreaks ||
		sum.Skips != want.Skips || sum.Purged != want.Purged {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}
	if !sum.LastActivity.Equal(base.Add(8 * time.Minute)) {
		t.Fatalf("last activity = %s", sum.LastActivity)
	}

	var ids []string
	if err := db.Select(&ids, `SELECT id FROM pomodoro_events`); err != nil {
		t.Fatalf("select ids: %v", err)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if len(id) != 36 || seen[id] {
			t.Fatalf("bad or duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSQLStoreEmptySummary(t *testing.T) {
	store, _ := openTestStore(t)
	sum, err := store.Summary(context.Background(), 404)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Empty() {
		t.Fatalf("summary for unknown user = %+v", sum)
	}
}

func TestSQLStoreAppendAssignsTimestamp(t *testing.T) {
	store, _ := openTestStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.Append(context.Background(), Record{UserID: 5, Kind: KindRegistered}); err != nil {
		t.Fatalf("append: %v", err)
	}
	sum, _ := store.Summary(context.Background(), 5)
	if !sum.LastActivity.Equal(fixed) {
		t.Fatalf("last activity = %s, want %s", sum.LastActivity, fixed)
	}
}

func TestNopStore(t *testing.T) {
	var s Store = Nop{}
	if err := s.Append(context.Background(), Record{Kind: KindStarted}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if sum, err := s.Summary(context.Background(), 1); err != nil || !sum.Empty() {
		t.Fatalf("summary = %+v, %v", sum, err)
	}
}
