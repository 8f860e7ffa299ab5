package bot

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier pushes loop notifications to the chat each pomodoro was
// set in. The sender is attached once the bot is built.
type TelegramNotifier struct {
	sender atomic.Pointer[senderBox]
}

type senderBox struct{ s helpers.Sender }

// SetSender attaches the bot used for outbound messages.
func (n *TelegramNotifier) SetSender(s helpers.Sender) {
	if s == nil {
		n.sender.Store(nil)
		return
	}
	n.sender.Store(&senderBox{s: s})
}

// TimerUp announces an expired timer with the start/skip/finish controls.
func (n *TelegramNotifier) TimerUp(ctx context.Context, d Destination) {
	n.push(ctx, "timer_up", d, msgTimerUp(d), controlsKeyboard(d.UserID))
}

// Ended announces a pomodoro removed for inactivity.
func (n *TelegramNotifier) Ended(ctx context.Context, d Destination) {
	n.push(ctx, "ended", d, msgEnded(d), nil)
}

func (n *TelegramNotifier) push(ctx context.Context, kind string, d Destination, text string, markup *tele.ReplyMarkup) {
	box := n.sender.Load()
	if box == nil {
		logger.Loop.Warn("notification dropped",
			slog.String("event", "notify.drop"),
			slog.String("kind", kind),
			slog.Int64("user_id", d.UserID),
		)
		return
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	ctx = logger.WithUpdateMeta(ctx, 0, d.UserID, d.ChatID)
	if err := helpers.SendTo(ctx, box.s, d, text, opts); err != nil {
		logger.Loop.Warn("notification failed",
			slog.String("event", "notify.fail"),
			slog.String("kind", kind),
			slog.Int64("user_id", d.UserID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}
