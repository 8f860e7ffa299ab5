package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/pomobot/core/logger"
)

// Scanner is the part of the registry the loop drives.
type Scanner interface {
	PollInactive() []Destination
	PollExpired() []Destination
	ActiveCount() int
}

// Notifier delivers loop notifications.
type Notifier interface {
	TimerUp(ctx context.Context, d Destination)
	Ended(ctx context.Context, d Destination)
}

// Loop polls the registry on a fixed interval while pomodoros are active.
// It stops itself once the registry is empty; Wake starts it again.
type Loop struct {
	interval time.Duration
	scanner  Scanner
	notifier Notifier

	mu      sync.Mutex
	parent  context.Context
	running bool
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// NewLoop builds an idle loop. Wake does nothing until Bind is called.
func NewLoop(interval time.Duration, scanner Scanner, notifier Notifier) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	return &Loop{interval: interval, scanner: scanner, notifier: notifier}
}

// Bind attaches the loop to the bot runtime and starts it if pomodoros are
// already registered.
func (l *Loop) Bind(ctx context.Context) {
	l.mu.Lock()
	l.parent = ctx
	l.mu.Unlock()
	if l.scanner.ActiveCount() > 0 {
		l.Wake()
	}
}

// Wake starts the loop unless it is already running.
func (l *Loop) Wake() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running || l.parent == nil || l.parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(l.parent)
	l.running = true
	l.stop = cancel
	l.wg.Add(1)
	go l.run(ctx)
	logger.Loop.Debug("loop started", slog.String("event", "loop.start"))
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Close stops the loop and waits for the current tick to finish.
func (l *Loop) Close() {
	l.mu.Lock()
	l.parent = nil
	if l.stop != nil {
		l.stop()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.idle()
			return
		case <-ticker.C:
		}
		l.Tick(ctx)
		if l.stopIfEmpty() {
			logger.Loop.Debug("loop stopped", slog.String("event", "loop.stop"))
			return
		}
	}
}

// Tick runs one pass: inactive pomodoros are purged first, then expired
// timers are announced.
func (l *Loop) Tick(ctx context.Context) {
	start := time.Now()
	ended := l.scanner.PollInactive()
	for _, d := range ended {
		l.notifier.Ended(ctx, d)
	}
	due := l.scanner.PollExpired()
	for _, d := range due {
		l.notifier.TimerUp(ctx, d)
	}
	if len(ended) > 0 || len(due) > 0 {
		logger.Loop.Info("tick",
			slog.String("event", "loop.tick"),
			slog.Int("ended", len(ended)),
			slog.Int("expired", len(due)),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}

// stopIfEmpty marks the loop idle when nothing is registered. It holds the
// same mutex as Wake so a registration racing the stop restarts the loop.
func (l *Loop) stopIfEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scanner.ActiveCount() > 0 {
		return false
	}
	l.running = false
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	return true
}

func (l *Loop) idle() {
	l.mu.Lock()
	l.running = false
	l.stop = nil
	l.mu.Unlock()
}
