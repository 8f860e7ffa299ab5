package router

import (
	"errors"
	"fmt"
	"testing"

	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type codedErr struct{ code string }

func (e codedErr) Error() string { return "coded" }
func (e codedErr) Code() string  { return e.code }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{codedErr{"unknown user"}, "UNKNOWN_USER"},
		{fmt.Errorf("start: %w", codedErr{"INVALID_INPUT"}), "INVALID_INPUT"},
		{&plainErr{}, "PLAINERR"},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Fatalf("errorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandlerName(t *testing.T) {
	for in, want := range map[string]string{
		"/Start":     "start",
		"":           "unknown",
		" pomo skip": "pomo_skip",
	} {
		if got := handlerName(in); got != want {
			t.Fatalf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func textUpdate(text string) tele.Context {
	user := &tele.User{ID: 3}
	return tele.NewContext(nil, tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: user,
			Chat:   &tele.Chat{ID: 3, Type: tele.ChatPrivate},
			Text:   text,
		},
	})
}

func TestTextRoutesResolveAliases(t *testing.T) {
	reg := tg.NewRegistry()
	var got []string
	reg.RegisterCommand("/start", commands.Command{
		Description: "start",
		Aliases:     []string{"go"},
		Handler:     func(c tele.Context) error { got = append(got, "start:"+c.Text()); return nil },
	})
	reg.RegisterCommand("/active", commands.Command{
		Description: "active",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { got = append(got, "active"); return nil },
	})
	unknown := 0
	routes := TextRoutes(reg, TextOptions{
		UnknownText: func(tele.Context) error { unknown++; return nil },
	})
	text := routes[0].Handler

	for _, msg := range []string{"/go", "/GO@pomobot", "/active", "hello", "/nope"} {
		if err := text(textUpdate(msg)); err != nil {
			t.Fatalf("%s: %v", msg, err)
		}
	}
	if len(got) != 2 || got[0] != "start:/go" {
		t.Fatalf("dispatched = %v", got)
	}
	if unknown != 2 {
		t.Fatalf("unknown = %d, want 2", unknown)
	}
}

func TestCommandRoutesPropagateErrors(t *testing.T) {
	reg := tg.NewRegistry()
	boom := errors.New("boom")
	reg.RegisterCommand("/finish", commands.Command{
		Description: "finish",
		Handler:     func(tele.Context) error { return boom },
	})
	routes := CommandRoutes(reg, CommandRouteOptions{})
	if len(routes) != 1 || routes[0].Endpoint != "/finish" {
		t.Fatalf("routes = %+v", routes)
	}
	if err := routes[0].Handler(textUpdate("/finish")); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
