package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the queue used by the send helpers. With nil the
// helpers send inline.
func SetDispatcher(d *sender.Dispatcher) { dispatcher.Store(d) }

// Sender is the part of *tele.Bot needed to push messages outside an update.
type Sender interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// dispatch queues run, or runs it inline when there is no dispatcher or the
// queue refuses the job.
func dispatch(ctx context.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	err := d.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// withOpts drops a nil *SendOptions so telebot sees no options at all.
func withOpts(opts *tele.SendOptions) []any {
	if opts == nil {
		return nil
	}
	return []any{opts}
}

// SendTo pushes text to a recipient that is not the sender of an update,
// such as the owner of an expired timer.
func SendTo(ctx context.Context, s Sender, to tele.Recipient, text string, opts *tele.SendOptions) error {
	if s == nil || to == nil {
		return errors.New("telegram sender: nil sender or recipient")
	}
	return dispatch(ctx, "send.push", "sendMessage", func() error {
		_, err := s.Send(to, text, withOpts(opts)...)
		return err
	})
}

// SendText replies with plain text.
func SendText(c tele.Context, text string) error {
	return dispatch(BuildContext(c), "send.text", "sendMessage", func() error {
		return c.Send(text)
	})
}

// SendMD replies with Markdown text and an optional keyboard.
func SendMD(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	return dispatch(BuildContext(c), "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendMD edits the message the callback came from, or sends a new one
// when there is nothing to edit. It runs inline so the callback answer
// follows the edit.
func EditOrSendMD(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}
