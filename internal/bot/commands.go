package bot

import (
	"context"
	"errors"
	"fmt"

	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/callbacks"
	"github.com/m3rciful/pomobot/core/telegram/commands"
	"github.com/m3rciful/pomobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type action func(ctx context.Context, d Destination) (Reply, error)

func send(c tele.Context, r Reply) error {
	if r.Text == "" {
		return nil
	}
	return helpers.SendMD(c, r.Text, r.Markup)
}

// handle adapts a service action to a telebot handler.
func handle(fn action) tele.HandlerFunc {
	return func(c tele.Context) error {
		r, err := fn(helpers.BuildContext(c), DestinationOf(c))
		if err != nil {
			return err
		}
		return send(c, r)
	}
}

// RegisterCommands installs every chat command on reg.
func RegisterCommands(reg *tg.Registry, s *Service) error {
	table := []struct {
		name string
		cmd  commands.Command
	}{
		{"/pomodoro", commands.Command{Handler: handle(s.Register), Description: "Initialize your pomodoro", Aliases: []string{"set"}}},
		{"/start", commands.Command{Handler: handle(s.Start), Description: "Start the pomodoro timer", Aliases: []string{"go"}}},
		{"/skip", commands.Command{Handler: handle(s.Skip), Description: "Skip the current timer"}},
		{"/tl", commands.Command{Handler: handle(s.TimeLeft), Description: "Check remaining time", Aliases: []string{"timeleft"}}},
		{"/state", commands.Command{Handler: handle(s.Status), Description: "Show your current phase", Aliases: []string{"status"}}},
		{"/finish", commands.Command{Handler: handle(s.Finish), Description: "Finish your pomodoro", Aliases: []string{"end"}}},
		{"/stats", commands.Command{Handler: handle(s.Stats), Description: "Show your session history"}},
		{"/help", commands.Command{Handler: func(c tele.Context) error { return send(c, s.Help()) }, Description: "List commands"}},
		{"/active", commands.Command{
			Handler:     func(c tele.Context) error { return send(c, s.Active()) },
			Description: "Active pomodoros",
			AdminOnly:   true,
			Hidden:      true,
		}},
	}
	for _, e := range table {
		if err := reg.RegisterCommand(e.name, e.cmd); err != nil {
			return err
		}
	}
	return nil
}

var errNotOwner = errors.New("button pressed by another user")

// buttonOwner checks that the presser owns the pomodoro the button belongs to.
func buttonOwner(c tele.Context) error {
	owner, err := callbacks.PayloadInt64(c)
	if err != nil {
		return fmt.Errorf("callback payload: %w", err)
	}
	if u := c.Sender(); u == nil || u.ID != owner {
		return errNotOwner
	}
	return nil
}

func button(fn action) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := buttonOwner(c); err != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgNotYourTimer})
		}
		r, err := fn(helpers.BuildContext(c), DestinationOf(c))
		if err != nil || r.Text == "" {
			return err
		}
		return helpers.EditOrSendMD(c, r.Text, r.Markup)
	}
}

// RegisterCallbacks installs the notification button handlers on reg.
func RegisterCallbacks(reg *tg.Registry, s *Service) error {
	for key, fn := range map[string]action{
		cbStart:  s.Start,
		cbSkip:   s.Skip,
		cbFinish: s.Finish,
	} {
		if err := reg.RegisterCallback(key, button(fn)); err != nil {
			return err
		}
	}
	return nil
}
