package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	coreconfig "github.com/m3rciful/pomobot/core/config"
	"github.com/m3rciful/pomobot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

type userLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiters keeps one token bucket per user and forgets users idle for
// longer than idle.
type limiters struct {
	mu     sync.Mutex
	every  rate.Limit
	idle   time.Duration
	lastGC time.Time
	users  map[int64]*userLimiter
}

func newLimiters(interval time.Duration) *limiters {
	return &limiters{
		every: rate.Every(interval),
		idle:  max(10*interval, time.Minute),
		users: make(map[int64]*userLimiter),
	}
}

func (l *limiters) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastGC) > l.idle {
		for id, u := range l.users {
			if now.Sub(u.seen) > l.idle {
				delete(l.users, id)
			}
		}
		l.lastGC = now
	}
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{lim: rate.NewLimiter(l.every, 1)}
		l.users[userID] = u
	}
	u.seen = now
	return u.lim.AllowN(now, 1)
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	set := newLimiters(opts.Interval)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if set.allow(user.ID, time.Now()) {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
