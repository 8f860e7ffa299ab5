// Package keyboard builds inline keyboards from plain button descriptions.
package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn is one callback button: its label, unique key and payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// Rows lays out buttons row by row.
func Rows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.InlineKeyboard = make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, *m.Data(b.Text, b.Unique, b.Data).Inline())
		}
		m.InlineKeyboard = append(m.InlineKeyboard, line)
	}
	return m
}

// Grid wraps buttons into rows of at most perRow. perRow below 1 puts each
// button on its own row.
func Grid(buttons []InlineBtn, perRow int) *tele.ReplyMarkup {
	return Rows(slices.Collect(slices.Chunk(buttons, max(perRow, 1)))...)
}
