// Package commands defines what a bot command registers with.
package commands

import tele "gopkg.in/telebot.v4"

// Command is one slash command. Hidden commands work but stay out of the
// Telegram menu; AdminOnly ones are also gated to the configured admin.
type Command struct {
	Description string
	Aliases     []string
	Hidden      bool
	AdminOnly   bool

	Handler tele.HandlerFunc
}
