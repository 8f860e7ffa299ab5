package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const sendStatsKey = "send_stats"

// sendStats counts messages sent while handling one update. Sends may run
// on dispatcher workers, so the counters are atomic.
type sendStats struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func (s *sendStats) record(opts []interface{}) {
	s.messages.Add(1)
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				s.keyboard.Store(true)
			}
		case *tele.ReplyMarkup:
			if v != nil {
				s.keyboard.Store(true)
			}
		}
	}
}

// countingContext wraps tele.Context and records every successful outgoing message.
type countingContext struct {
	tele.Context
	stats *sendStats
}

func (m countingContext) done(err error, opts []interface{}) error {
	if err == nil {
		m.stats.record(opts)
	}
	return err
}

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	return m.done(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	return m.done(m.Context.Reply(what, opts...), opts)
}

func (m countingContext) Edit(what interface{}, opts ...interface{}) error {
	return m.done(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.done(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return m.done(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware counts the messages a handler sends and whether
// any carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &sendStats{}
		c.Set(sendStatsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// GetCounters returns the message count and keyboard flag for the update.
func GetCounters(c tele.Context) (int, bool) {
	stats, ok := c.Get(sendStatsKey).(*sendStats)
	if !ok || stats == nil {
		return 0, false
	}
	return int(stats.messages.Load()), stats.keyboard.Load()
}
