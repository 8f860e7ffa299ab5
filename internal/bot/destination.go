package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/pomobot/core/telegram/format"

	tele "gopkg.in/telebot.v4"
)

// Destination is where a user's notifications go: the chat the pomodoro was
// set in, plus enough about the owner to mention them.
type Destination struct {
	ChatID   int64
	UserID   int64
	Name     string
	Username string
}

// Recipient implements tele.Recipient.
func (d Destination) Recipient() string {
	return strconv.FormatInt(d.ChatID, 10)
}

// Mention renders a Markdown link that pings the owner.
func (d Destination) Mention() string {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = strings.TrimSpace(d.Username)
	}
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", format.EscapeMD(name), d.UserID)
}

// DestinationOf builds the destination for the sender of c.
func DestinationOf(c tele.Context) Destination {
	d := Destination{}
	if chat := c.Chat(); chat != nil {
		d.ChatID = chat.ID
	}
	if u := c.Sender(); u != nil {
		d.UserID = u.ID
		d.Username = u.Username
		d.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		if d.ChatID == 0 {
			d.ChatID = u.ID
		}
	}
	return d
}
