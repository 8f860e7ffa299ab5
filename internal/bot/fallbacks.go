package bot

import (
	"log/slog"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/callbacks"
	"github.com/m3rciful/pomobot/core/telegram/helpers"
	"github.com/m3rciful/pomobot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Fallbacks answers updates no command or callback matched. Only private
// chats get a hint; groups are left alone.
type Fallbacks struct{}

var _ ui.FallbackProvider = Fallbacks{}

func (Fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if !isPrivate(c) {
			return nil
		}
		return helpers.SendText(c, msgUnknownCommand)
	}
}

func (Fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		if !isPrivate(c) {
			return nil
		}
		return helpers.SendText(c, msgUnknownCommand)
	}
}

func (Fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		logger.TG.Debug("stale callback",
			slog.String("event", "callback.unknown"),
			slog.String("cb_key", logger.SanitizeLimit(callbacks.CallbackKey(c), 64)),
		)
		return c.Respond(&tele.CallbackResponse{Text: "This button is no longer active"})
	}
}

func isPrivate(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate
}
