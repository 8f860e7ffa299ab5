package telegram

import (
	"errors"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/pomobot/core/config"
	"github.com/m3rciful/pomobot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestCommandName(t *testing.T) {
	for in, want := range map[string]string{
		"/start":               "/start",
		"/Start@PomoBot":       "/start",
		"  /tl   extra words ": "/tl",
		"skip":                 "/skip",
		"":                     "",
		"/":                    "",
		"/@bot":                "",
	} {
		if got := CommandName(in); got != want {
			t.Fatalf("CommandName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistryLookupAndList(t *testing.T) {
	reg := NewRegistry()
	for name, cmd := range map[string]commands.Command{
		"/start":  {Description: "Start the next phase", Handler: noop, Aliases: []string{"go"}},
		"/tl":     {Description: "Time left", Handler: noop, Aliases: []string{"/timeleft"}},
		"/active": {Description: "Active sessions", Handler: noop, AdminOnly: true},
	} {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := reg.RegisterCommand("/start", commands.Command{Description: "duplicate", Handler: noop}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if err := reg.RegisterCommand("/begin", commands.Command{Description: "alias clash", Handler: noop, Aliases: []string{"go"}}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate alias err = %v", err)
	}
	if err := reg.RegisterCommand("/go", commands.Command{Description: "name clash", Handler: noop}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("name taken by alias err = %v", err)
	}
	if err := reg.RegisterCommand("nope", commands.Command{Description: "no slash", Handler: noop}); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("no slash err = %v", err)
	}
	if err := reg.RegisterCommand("/empty", commands.Command{Handler: noop}); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("no description err = %v", err)
	}

	if len(reg.Commands()) != 3 {
		t.Fatalf("commands = %d, want 3", len(reg.Commands()))
	}
	if key, cmd, ok := reg.LookupCommand("/go@pomobot"); !ok || key != "/start" || cmd.Description != "Start the next phase" {
		t.Fatalf("alias lookup = %q %v", key, ok)
	}
	if key, _, ok := reg.LookupCommand("/timeleft 5"); !ok || key != "/tl" {
		t.Fatalf("slash alias lookup = %q %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/unknown"); ok {
		t.Fatal("unknown command resolved")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "/start" || visible[1].Text != "/tl" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("pomo_skip", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("pomo_skip", noop); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate callback err = %v", err)
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key accepted")
	}
	if _, ok := reg.GetCallback("pomo_skip"); !ok {
		t.Fatal("callback not found")
	}
	if names := reg.ListCallbacks(); len(names) != 1 || names[0] != "pomo_skip" {
		t.Fatalf("callbacks = %v", names)
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("default not-found handler missing")
	}
}

func TestBuildPoller(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: "WEBHOOK"},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example"},
	}
	wh, ok := BuildPoller(cfg).(*tele.Webhook)
	if !ok || wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example" {
		t.Fatalf("webhook poller = %#v", wh)
	}

	lp, ok := BuildPoller(&coreconfig.Config{}).(*tele.LongPoller)
	if !ok || lp.Timeout != 10*time.Second {
		t.Fatalf("long poller = %#v", lp)
	}
	cfg = &coreconfig.Config{Telegram: coreconfig.TelegramConfig{LongPollTimeoutSeconds: 50}}
	if lp := BuildPoller(cfg).(*tele.LongPoller); lp.Timeout != 50*time.Second {
		t.Fatalf("configured timeout = %s", lp.Timeout)
	}
}
