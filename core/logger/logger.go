package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/pomobot/core/buildinfo"
	coreconfig "github.com/m3rciful/pomobot/core/config"
)

var (
	// L is the base logger. It discards output until InitLogger runs.
	L = slog.New(slog.DiscardHandler)

	// DB logs database connection events.
	DB = L
	// TG logs Telegram transport events.
	TG = L
	// MIG logs database migration events.
	MIG = L
	// TWire logs Telegram wiring steps.
	TWire = L
	// Pomo logs pomodoro lifecycle transitions.
	Pomo = L
	// Loop logs the expiry polling loop.
	Loop = L
	// Journal logs session journal writes and queries.
	Journal = L
)

var components = []struct {
	dst  **slog.Logger
	name string
}{
	{&DB, "db"},
	{&TG, "tg"},
	{&MIG, "db.migrate"},
	{&TWire, "tg.wire"},
	{&Pomo, "pomodoro"},
	{&Loop, "pomodoro.loop"},
	{&Journal, "journal"},
}

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	out     *asyncWriter
	files   []io.Closer
	level   slog.LevelVar
	sampler = newRatioSampler(1, 50)
	trace   bool
)

// options is the logging configuration after defaults are applied.
type options struct {
	json    bool
	order   []string
	level   slog.Level
	num     int
	den     int
	profile string
	path    string
}

func resolve(cfg *coreconfig.Config) options {
	o := options{json: true, order: defaultKeyOrder, num: 1, den: 50, profile: "prod"}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.json = false
	case "json":
	default:
		o.json = o.profile != "debug" && o.profile != "dev"
	}
	o.order = keyOrder(lc.KeysOrder)
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		o.level = slog.LevelDebug
	case "warn", "warning":
		o.level = slog.LevelWarn
	case "error":
		o.level = slog.LevelError
	}
	if raw := strings.TrimSpace(lc.DebugSample); raw != "" {
		switch n, d := parseRatio(raw); {
		case n == 0 && d == 0:
			o.num, o.den = 0, 0
		case n > 0 && d > 0:
			o.num, o.den = n, d
		}
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		o.path = filepath.Join(dir, file)
	}
	return o
}

// InitLogger configures the global structured logger. Only the first call
// has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		o := resolve(cfg)
		level.Set(o.level)
		sampler.Set(o.num, o.den)
		trace = envFlag("TRACE") || envFlag("LOG_TRACE")

		sinks := []io.Writer{os.Stdout}
		if o.path != "" {
			f, ferr := openLogFile(o.path)
			if ferr != nil {
				err = ferr
				return
			}
			sinks = append(sinks, f)
			files = append(files, f)
		}
		out = newAsyncWriter(sinks, 64<<10)

		var enc encoder = kvEncoder{order: o.order}
		if o.json {
			enc = jsonEncoder{order: o.order}
		}
		L = slog.New(newHandler(handlerOptions{level: &level, out: out, enc: enc}))
		slog.SetDefault(L)
		for _, c := range components {
			*c.dst = L.With("component", c.name)
		}

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", o.profile),
		)
	})
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Shutdown flushes pending lines and closes log files.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if out != nil {
		errs = append(errs, out.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged. TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return trace || sampler.Allow()
}

// LogEvent logs attrs at level with event set. A nil logg falls back to the
// logger stored in ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the named component.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Debug logs a debug event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warning event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}
