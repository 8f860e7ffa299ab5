package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"

var errNoWriter = errors.New("logger: writer not initialized")

// entry is one log line before encoding. Values are already normalized to
// strings, bools, integers, floats or nil.
type entry map[string]any

func (e entry) str(key string) string {
	switch v := e[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (e entry) setDefault(key string, v any) {
	if _, ok := e[key]; !ok {
		e[key] = v
	}
}

// finish fills the mandatory fields and normalizes the enumerated ones.
func (e entry) finish(msg string, json bool) {
	if e.str("event") == "" {
		if msg == "" {
			msg = "unknown"
		}
		e["event"] = msg
	}
	if e.str("component") == "" {
		e["component"] = "app"
	}
	if rid := e.str("rid"); rid != "" {
		if short := CompactRID(rid); short != rid {
			if json {
				e.setDefault("rid_full", rid)
			}
			e["rid"] = short
		}
	}
	if s := e.str("status"); s != "" {
		e["status"] = statusName(s)
	}
	if o := e.str("outcome"); o != "" {
		if name, ok := outcomeName(o); ok {
			e["outcome"] = name
		} else {
			delete(e, "outcome")
		}
	}
	for k, v := range e {
		if v == nil || v == "" {
			delete(e, k)
		}
	}
}

type handlerOptions struct {
	level slog.Leveler
	out   *asyncWriter
	enc   encoder
}

// handler is the slog.Handler behind every component logger. Clones made by
// WithAttrs and WithGroup share opts.
type handler struct {
	opts   *handlerOptions
	attrs  []slog.Attr
	prefix string
}

func newHandler(opts handlerOptions) *handler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if opts.enc == nil {
		opts.enc = kvEncoder{order: defaultKeyOrder}
	}
	return &handler{opts: &opts}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return errNoWriter
	}
	_, json := h.opts.enc.(jsonEncoder)

	e := make(entry, 16)
	ts := r.Time.UTC()
	e["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	e["level"] = levelName(r.Level.String())
	if json {
		e["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		h.put(e, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(e, a)
		return true
	})
	fromContext(ctx, e)
	e.finish(r.Message, json)

	buf := getBuffer()
	defer putBuffer(buf)
	if err := h.opts.enc.encode(buf, e); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return h.opts.out.Write(buf.Bytes())
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return &c
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = joinKey(h.prefix, name)
	return &c
}

func (h *handler) put(e entry, a slog.Attr) {
	walkAttr(h.prefix, a, func(key string, v slog.Value) {
		if key, val, ok := normalize(key, v); ok {
			e[key] = val
		}
	})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// walkAttr flattens groups into dotted keys.
func walkAttr(prefix string, a slog.Attr, fn func(string, slog.Value)) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			walkAttr(key, child, fn)
		}
		return
	}
	if key != "" {
		fn(key, v)
	}
}

func normalize(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	case string:
		return key, strings.TrimSpace(x), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// msKey makes the millisecond unit part of a duration key.
func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func fromContext(ctx context.Context, e entry) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		e.setDefault("rid", rid)
	}
	m := MetaFrom(ctx)
	if m.UpdateID != 0 {
		e.setDefault("update_id", m.UpdateID)
	}
	if m.UserID != 0 {
		e.setDefault("user_id", m.UserID)
	}
	if m.ChatID != 0 {
		e.setDefault("chat_id", m.ChatID)
	}
	if name := HandlerFrom(ctx); name != "" {
		e.setDefault("handler", name)
	}
}

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took is RoundMS of the time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}
