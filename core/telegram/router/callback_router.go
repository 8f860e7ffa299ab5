package router

import (
	"log/slog"

	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches inline button presses by unique key. The query is
// always answered once the handler returns; a handler that already answered
// with a toast makes the second answer a no-op.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() { _ = c.Respond() }()

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + handlerName(key)

		h, ok := reg.GetCallback(key)
		if ok && h != nil {
			return newSummary(name, slog.String("cb_key", key)).run(c, func() error { return h(c) })
		}
		if h = opts.NotFound; h == nil {
			h = reg.CallbackNotFound()
		}
		s := newSummary(name, slog.String("cb_key", key), slog.String("reason", "not_found"))
		return s.run(c, func() error {
			if h == nil {
				return nil
			}
			return h(c)
		})
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: guard(handler)}
}
