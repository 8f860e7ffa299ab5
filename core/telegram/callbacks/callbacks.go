// Package callbacks decodes inline button data.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits telebot's "\f<unique>|<payload>" data. When
// telebot already split it, Unique and the remaining Data are returned.
func ParseCallbackData(cb *tele.Callback) (unique, payload string) {
	switch {
	case cb == nil:
		return "", ""
	case cb.Unique != "":
		return cb.Unique, cb.Data
	}
	unique, payload, _ = strings.Cut(strings.TrimPrefix(cb.Data, "\f"), "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey is the unique key of the callback in c.
func CallbackKey(c tele.Context) string {
	unique, _ := ParseCallbackData(c.Callback())
	return unique
}

// PayloadInt64 parses the payload of the callback in c as a decimal id.
func PayloadInt64(c tele.Context) (int64, error) {
	_, payload := ParseCallbackData(c.Callback())
	return strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
}
