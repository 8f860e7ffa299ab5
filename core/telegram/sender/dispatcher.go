package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job did not fit in the queue.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options size the worker pool and bound retries. Zero values get defaults:
// 256 queued jobs, 4 workers, 2s backoff step and 12s per job.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2+len(extra))
	attrs = append(attrs, slog.String("action", j.action))
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher runs outbound calls on a fixed pool of workers. Jobs that fail
// with a transient network error or a flood error are retried with linear
// backoff, honoring Telegram's retry_after.
type Dispatcher struct {
	opts Options
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	failed    atomic.Uint64
	succeeded atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, jobs: make(chan job, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be called more than once
// when retries are enabled.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 { return d.failed.Load() }

// DoneCount returns the number of jobs that succeeded.
func (d *Dispatcher) DoneCount() uint64 { return d.succeeded.Load() }

// Close stops accepting jobs and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(j.ctx, "tg.sender", "send.start", j.attrs()...)

	attempt, err := d.retry(ctx, j, attempts)
	elapsed := slog.Duration("elapsed", logger.Took(start))
	if err != nil {
		d.failed.Add(1)
		logger.Error(j.ctx, "tg.sender", "send.fail", j.attrs(
			slog.String("error", redact(err)),
			slog.String("error_kind", errorKind(err)),
			slog.Int("attempts", attempt),
			elapsed,
		)...)
		return
	}
	d.succeeded.Add(1)
	if attempt > 1 {
		logger.Info(j.ctx, "tg.sender", "send.retry.success", j.attrs(slog.Int("attempt", attempt), elapsed)...)
		return
	}
	logger.Debug(j.ctx, "tg.sender", "send.success", j.attrs(elapsed)...)
}

// retry calls j.run until it succeeds, fails permanently or ctx expires. It
// returns the number of attempts made.
func (d *Dispatcher) retry(ctx context.Context, j job, attempts int) (int, error) {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, err
		}
		err := j.run()
		if err == nil {
			return n, nil
		}
		if n == attempts || !netutil.ShouldRetry(err) {
			return n, err
		}
		delay := max(d.opts.RetryBackoff*time.Duration(n), netutil.RetryAfter(err))
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return n, errors.Join(ctx.Err(), err)
		case <-t.C:
		}
		logger.Debug(j.ctx, "tg.sender", "send.retry.backoff", j.attrs(slog.Int("attempt", n), slog.Duration("backoff", delay))...)
	}
}
