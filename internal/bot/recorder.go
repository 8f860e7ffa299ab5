package bot

import (
	"context"
	"log/slog"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/sender"
	"github.com/m3rciful/pomobot/internal/journal"
	"github.com/m3rciful/pomobot/internal/pomodoro"
)

// Recorder observes registry mutations, logs them and appends them to the
// journal off the caller's goroutine.
type Recorder struct {
	store journal.Store
	queue *sender.Dispatcher
}

// NewRecorder builds a recorder writing to store through a single worker
// so journal order follows event order.
func NewRecorder(store journal.Store) *Recorder {
	if store == nil {
		store = journal.Nop{}
	}
	return &Recorder{
		store: store,
		queue: sender.NewDispatcher(sender.Options{QueueSize: 512, Workers: 1, MaxRetries: 2}),
	}
}

// Observe is a pomodoro.Options observer.
func (r *Recorder) Observe(ev pomodoro.Event[Destination]) {
	ctx := logger.WithUpdateMeta(context.Background(), 0, ev.UserID, ev.Route.ChatID)
	logger.Pomo.LogAttrs(ctx, slog.LevelInfo, "pomodoro "+string(ev.Kind),
		slog.String("event", "pomodoro."+string(ev.Kind)),
		slog.Int64("user_id", ev.UserID),
		slog.String("from", stateName(ev.From)),
		slog.String("to", stateName(ev.To)),
		slog.Int("cycle", ev.Cycle),
	)

	rec := recordOf(ev)
	err := r.queue.Enqueue(ctx, "journal.append", string(ev.Kind), func() error {
		return r.store.Append(ctx, rec)
	})
	if err != nil {
		logger.Journal.Warn("journal write dropped",
			slog.String("event", "journal.drop"),
			slog.Int64("user_id", ev.UserID),
			slog.String("err", err.Error()),
		)
	}
}

// Close drains pending writes.
func (r *Recorder) Close() {
	r.queue.Close()
}

func recordOf(ev pomodoro.Event[Destination]) journal.Record {
	return journal.Record{
		UserID:    ev.UserID,
		ChatID:    ev.Route.ChatID,
		Kind:      journal.Kind(ev.Kind),
		From:      stateName(ev.From),
		To:        stateName(ev.To),
		Cycle:     ev.Cycle,
		CreatedAt: ev.At,
	}
}

// stateName renders s for logs and the journal; the zero state is empty.
func stateName(s pomodoro.State) string {
	if s == 0 {
		return ""
	}
	return s.String()
}
