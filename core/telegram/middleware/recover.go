package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/pomobot/core/logger"
	tghelpers "github.com/m3rciful/pomobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware logs a handler panic with its stack and swallows it, so
// one bad update cannot take the poller down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = nil
		}()
		return next(c)
	}
}
