package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/pomobot/core/config"
	"github.com/m3rciful/pomobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares returns the global chain in installation order:
// recover, rate_limit (when an interval is configured), logger, metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if cfg != nil {
		if rl, ok := rateLimit(cfg.RateLimit, onLimited); ok {
			chain = append(chain, Middleware{Name: "rate_limit", Use: middleware.RateLimitMiddleware(rl)})
		}
	}
	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimit(cfg coreconfig.RateLimitConfig, onLimited tele.HandlerFunc) (middleware.RateLimitOptions, bool) {
	if cfg.IntervalMS <= 0 {
		return middleware.RateLimitOptions{}, false
	}
	opts := middleware.RateLimitOptions{
		Interval:  time.Duration(cfg.IntervalMS) * time.Millisecond,
		Exclude:   make(map[string]struct{}, len(cfg.ExcludeUpdates)),
		OnLimited: onLimited,
	}
	// Normalize already lowercased the kinds.
	for _, kind := range cfg.ExcludeUpdates {
		opts.Exclude[kind] = struct{}{}
	}
	return opts, true
}
