package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/pomobot/core/logger"
	"github.com/m3rciful/pomobot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidRegistration is returned for empty names, keys or handlers.
	ErrInvalidRegistration = errors.New("telegram: invalid registration")
	// ErrDuplicate is returned when a command, alias or callback key is taken.
	ErrDuplicate = errors.New("telegram: already registered")
)

// Registry maps command names, aliases and callback keys to handlers. It is
// filled during wiring and read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback handler
// answers "Unsupported action".
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
			return nil
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds cmd under name, which must start with "/". Aliases
// may be given with or without the slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if !strings.HasPrefix(name, "/") || len(name) < 2 || cmd.Handler == nil || cmd.Description == "" {
		wireWarn("register.command.skip", slog.String("name", name))
		return fmt.Errorf("%w: command %q", ErrInvalidRegistration, name)
	}
	key := strings.ToLower(name)
	aliases := make([]string, 0, len(cmd.Aliases))
	for _, a := range cmd.Aliases {
		if a = CommandName(a); a != "" && a != key {
			aliases = append(aliases, a)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range append([]string{key}, aliases...) {
		if r.taken(n) {
			wireWarn("register.command.duplicate", slog.String("name", n))
			return fmt.Errorf("%w: command %q", ErrDuplicate, n)
		}
	}
	r.commands[key] = cmd
	for _, a := range aliases {
		r.aliases[a] = key
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.commands[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// LookupCommand resolves message text such as "/go@pomobot now" to the
// canonical command key. The bot mention and arguments are ignored.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name := CommandName(text)
	if name == "" {
		return "", commands.Command{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key, ok := r.aliases[name]; ok {
		name = key
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// CommandName extracts the lower-cased "/command" token from message text.
func CommandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	first, _, _ := strings.Cut(fields[0], "@")
	first = strings.TrimPrefix(strings.ToLower(first), "/")
	if first == "" {
		return ""
	}
	return "/" + first
}

// Commands returns a copy of the registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.commands)
}

// ListCommands returns commands sorted by name. With visibleOnly, hidden and
// admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for _, name := range slices.Sorted(maps.Keys(r.commands)) {
		c := r.commands[name]
		if visibleOnly && (c.Hidden || c.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: c.Description})
	}
	return list
}

// RegisterCallback binds handler to the inline button unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("key", key))
		return fmt.Errorf("%w: callback %q", ErrInvalidRegistration, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[key]; ok {
		wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("%w: callback %q", ErrDuplicate, key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler bound to key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys in sorted order.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.callbacks))
}

// CallbackNotFound returns the handler for presses on unknown keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.notFound
}

// PublishCommands sets the visible commands as the bot's Telegram menu.
func PublishCommands(bot *tele.Bot, reg *Registry) {
	visible := reg.ListCommands(true)
	for i := range visible {
		visible[i].Text = strings.TrimPrefix(visible[i].Text, "/")
	}
	if err := bot.SetCommands(visible); err != nil {
		logger.TWire.Error("set commands failed",
			slog.String("event", "register.commands.set_failed"),
			slog.Any("err", err),
		)
		return
	}
	logger.TWire.Debug("commands published",
		slog.String("event", "register.commands.set"),
		slog.Int("count", len(visible)),
	)
}
