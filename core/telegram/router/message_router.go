package router

import (
	"strings"

	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// TextOptions holds the fallbacks for text and document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// FallbackOptions splits a fallback provider into text and callback options.
func FallbackOptions(p ui.FallbackProvider) (TextOptions, CallbackOptions) {
	if p == nil {
		return TextOptions{}, CallbackOptions{}
	}
	text := TextOptions{UnknownText: p.UnknownText(), UnknownDocument: p.UnknownDocument()}
	return text, CallbackOptions{NotFound: p.UnknownCallback()}
}

// fallback runs h under name, or logs a skip when h is nil.
func fallback(c tele.Context, name string, h tele.HandlerFunc) error {
	s := newSummary(name)
	if h == nil {
		s.skip(c)
		return nil
	}
	return s.run(c, func() error { return h(c) })
}

// TextRoutes returns the OnText and OnDocument routes. Text naming a
// command through an alias or a bot mention is resolved through the
// registry; admin-only commands are never reachable this way.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		if reg != nil && strings.HasPrefix(c.Text(), "/") {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				s := newSummary(handlerName(key))
				if cmd.AdminOnly {
					s.skip(c)
					return nil
				}
				return s.run(c, func() error { return cmd.Handler(c) })
			}
		}
		return fallback(c, "unknown_text", opts.UnknownText)
	}
	document := func(c tele.Context) error {
		return fallback(c, "unexpected_document", opts.UnknownDocument)
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: guard(text)},
		{Endpoint: tele.OnDocument, Handler: guard(document)},
	}
}
