package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/pomobot/internal/journal"
	"github.com/m3rciful/pomobot/internal/pomodoro"
)

type collectingStore struct {
	mu      sync.Mutex
	records []journal.Record
}

func (s *collectingStore) Append(_ context.Context, rec journal.Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

func (s *collectingStore) Summary(context.Context, int64) (journal.Summary, error) {
	return journal.Summary{}, nil
}

func TestRecorderJournalsEventsInOrder(t *testing.T) {
	store := &collectingStore{}
	rec := NewRecorder(store)
	clock := newFakeClock()
	h := pomodoro.NewHandler(pomodoro.Options[Destination]{Clock: clock, Observer: rec.Observe})

	if err := h.Register(alice.UserID, alice); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := h.Register(alice.UserID, alice); err == nil {
		t.Fatal("second register must fail")
	}
	if err := h.Skip(alice.UserID); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, err := h.Start(alice.UserID); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(5 * time.Minute)
	h.PollExpired()
	if err := h.End(alice.UserID); err != nil {
		t.Fatalf("end: %v", err)
	}
	rec.Close()

	want := []struct {
		kind     journal.Kind
		from, to string
	}{
		{journal.KindRegistered, "", "work"},
		{journal.KindSkipped, "work", "standby"},
		{journal.KindStarted, "standby", "break"},
		{journal.KindExpired, "break", "standby"},
		{journal.KindEnded, "standby", ""},
	}
	if len(store.records) != len(want) {
		t.Fatalf("records = %+v", store.records)
	}
	for i, w := range want {
		got := store.records[i]
		if got.Kind != w.kind || got.From != w.from || got.To != w.to {
			t.Fatalf("record %d = %+v, want %+v", i, got, w)
		}
		if got.UserID != alice.UserID || got.ChatID != alice.ChatID || got.CreatedAt.IsZero() {
			t.Fatalf("record %d identity = %+v", i, got)
		}
	}
}

func TestRecorderNilStore(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Observe(pomodoro.Event[Destination]{Kind: pomodoro.EventRegistered, UserID: 1, To: pomodoro.StateWork})
	rec.Close()
}
