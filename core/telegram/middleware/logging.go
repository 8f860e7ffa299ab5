package middleware

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/pomobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers the last ids logged so an update that passes
// through the logger twice (global chain plus route wrapper) is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	ids  [128]int
	next int
}

var receipts seenUpdates

// first reports whether id is new and records it.
func (s *seenUpdates) first(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.ids {
		if seen == id && id != 0 {
			return false
		}
	}
	s.ids[s.next] = id
	s.next = (s.next + 1) % len(s.ids)
	return true
}

// LoggerMiddleware builds the request context, exposes its rid as "rid" on
// c and logs a sampled update.received line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		c.Set("rid", logger.RIDFrom(ctx))
		if logger.ShouldSampleDebug() && receipts.first(c.Update().ID) {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
