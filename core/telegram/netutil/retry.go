// Package netutil classifies transport and Bot API errors for retries.
package netutil

import (
	"errors"
	"net"
	"time"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether err is transient: a timeout, a failed dial or
// a Telegram flood response. *url.Error and *net.OpError are both net.Error,
// so a single errors.As walk covers wrapped transport failures.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := flood(err); ok {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}

// RetryAfter is the wait Telegram asked for in a flood error, or zero.
func RetryAfter(err error) time.Duration {
	if fe, ok := flood(err); ok && fe.RetryAfter > 0 {
		return time.Duration(fe.RetryAfter) * time.Second
	}
	return 0
}

func flood(err error) (tele.FloodError, bool) {
	var fe tele.FloodError
	ok := errors.As(err, &fe)
	return fe, ok
}
