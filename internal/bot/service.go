package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/internal/journal"
	"github.com/m3rciful/pomobot/internal/pomodoro"

	tele "gopkg.in/telebot.v4"
)

// Reply is what a command answers with.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Service maps chat commands onto the pomodoro registry. It holds no
// Telegram state and is safe for concurrent use.
type Service struct {
	pomos   *pomodoro.Handler[Destination]
	store   journal.Store
	loop    *Loop
	history bool
	now     func() time.Time
}

// ServiceOptions configures a Service. Store may be nil when no database is
// configured; /stats then reports that history is disabled.
type ServiceOptions struct {
	Pomodoros *pomodoro.Handler[Destination]
	Store     journal.Store
	Loop      *Loop
}

// NewService wires a Service.
func NewService(opts ServiceOptions) *Service {
	s := &Service{
		pomos:   opts.Pomodoros,
		store:   opts.Store,
		loop:    opts.Loop,
		history: opts.Store != nil,
		now:     time.Now,
	}
	if s.store == nil {
		s.store = journal.Nop{}
	}
	return s
}

// Register sets a pomodoro for d's owner and makes sure the poll loop runs.
func (s *Service) Register(ctx context.Context, d Destination) (Reply, error) {
	err := s.pomos.Register(d.UserID, d)
	if s.loop != nil {
		s.loop.Wake()
	}
	if err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgRegistered(d)}, nil
}

// Start leaves standby and reports the phase entered with its time left.
func (s *Service) Start(ctx context.Context, d Destination) (Reply, error) {
	state, err := s.pomos.Start(d.UserID)
	if err != nil {
		return s.reject(ctx, d, err)
	}
	left, err := s.pomos.TimeLeft(d.UserID)
	if err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgStarted(state, left)}, nil
}

// Skip abandons the running phase.
func (s *Service) Skip(ctx context.Context, d Destination) (Reply, error) {
	if err := s.pomos.Skip(d.UserID); err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgSkipped(d), Markup: controlsKeyboard(d.UserID)}, nil
}

// TimeLeft describes the remaining time.
func (s *Service) TimeLeft(ctx context.Context, d Destination) (Reply, error) {
	left, err := s.pomos.TimeLeft(d.UserID)
	if err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgTimeLeft(left)}, nil
}

// Status shows phase, cycle and standby progress.
func (s *Service) Status(ctx context.Context, d Destination) (Reply, error) {
	st, err := s.pomos.Snapshot(d.UserID)
	if err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgStatus(st, s.pomos.Settings())}, nil
}

// Finish ends the pomodoro.
func (s *Service) Finish(ctx context.Context, d Destination) (Reply, error) {
	if err := s.pomos.End(d.UserID); err != nil {
		return s.reject(ctx, d, err)
	}
	return Reply{Text: msgFinished(d)}, nil
}

// Stats summarizes the journal for d's owner.
func (s *Service) Stats(ctx context.Context, d Destination) (Reply, error) {
	if !s.history {
		return Reply{Text: msgStatsDisabled}, nil
	}
	sum, err := s.store.Summary(ctx, d.UserID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: msgStats(d, sum, s.now())}, nil
}

// Help lists the commands.
func (s *Service) Help() Reply {
	return Reply{Text: msgHelp()}
}

// Active reports registry size and loop state for operators.
func (s *Service) Active() Reply {
	running := s.loop != nil && s.loop.Running()
	return Reply{Text: msgActive(s.pomos.ActiveCount(), running)}
}

// reject turns registry rejections into user-facing replies. Other errors
// are returned unchanged.
func (s *Service) reject(ctx context.Context, d Destination, err error) (Reply, error) {
	fb, ok := pomodoro.FeedbackOf(err)
	if !ok {
		return Reply{}, err
	}
	code := "POMODORO_ERROR"
	var opErr *pomodoro.OpError
	if errors.As(err, &opErr) {
		code = opErr.Code()
	}
	logger.Debug(ctx, "pomodoro", "rejected",
		slog.Int64("user_id", d.UserID),
		slog.String("err_code", code),
	)
	switch fb {
	case pomodoro.FeedbackUnknownUser:
		return Reply{Text: msgUnknownUser(d)}, nil
	case pomodoro.FeedbackInvalidInput:
		return Reply{Text: msgInvalidInput(d)}, nil
	}
	return Reply{}, err
}
