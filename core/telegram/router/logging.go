package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/pomobot/core/logger"
	tghelpers "github.com/m3rciful/pomobot/core/telegram/helpers"
	"github.com/m3rciful/pomobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// coder is implemented by domain errors that carry a stable log code.
type coder interface{ Code() string }

// summary writes the single handler.handled line for an update.
type summary struct {
	name   string
	start  time.Time
	extras []slog.Attr
}

func newSummary(name string, extras ...slog.Attr) summary {
	return summary{name: name, start: time.Now(), extras: extras}
}

// run tags the request context with the handler, calls fn and logs it.
func (s summary) run(c tele.Context, fn func() error) error {
	tghelpers.WithHandler(c, s.name)
	err := fn()
	s.log(c, "", err)
	return err
}

// skip logs an update that was deliberately left unhandled.
func (s summary) skip(c tele.Context) {
	s.log(c, "skip", nil)
}

func (s summary) log(c tele.Context, status string, err error) {
	ctx := tghelpers.WithHandler(c, s.name)
	msgs, kb := middleware.GetCounters(c)
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	if status == "" {
		status = outcome
	}
	attrs := append([]slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(s.start)),
	}, s.extras...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
			slog.String("cause", s.name),
		)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

// handlerName turns a command or callback key into a log-friendly name.
func handlerName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// errorCode prefers a Code() on the chain and falls back to the type name.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
