package bot

import (
	"strconv"

	"github.com/m3rciful/pomobot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques for the notification buttons. The payload is the owner's
// user id.
const (
	cbStart  = "pomo_start"
	cbSkip   = "pomo_skip"
	cbFinish = "pomo_finish"
)

func controlsKeyboard(ownerID int64) *tele.ReplyMarkup {
	owner := strconv.FormatInt(ownerID, 10)
	return keyboard.Grid([]keyboard.InlineBtn{
		{Text: "▶ Start", Unique: cbStart, Data: owner},
		{Text: "⏭ Skip", Unique: cbSkip, Data: owner},
		{Text: "■ Finish", Unique: cbFinish, Data: owner},
	}, 3)
}
