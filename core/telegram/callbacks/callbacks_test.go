package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		cb      *tele.Callback
		unique  string
		payload string
	}{
		{"nil", nil, "", ""},
		{"raw encoded", &tele.Callback{Data: "\fpomo_skip|42"}, "pomo_skip", "42"},
		{"raw without payload", &tele.Callback{Data: "\fpomo_start"}, "pomo_start", ""},
		{"payload with separator", &tele.Callback{Data: "\fk|a|b"}, "k", "a|b"},
		{"already split", &tele.Callback{Unique: "pomo_finish", Data: "7"}, "pomo_finish", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, p := ParseCallbackData(tt.cb)
			if u != tt.unique || p != tt.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", u, p, tt.unique, tt.payload)
			}
		})
	}
}

func TestPayloadInt64(t *testing.T) {
	c := tele.NewContext(nil, tele.Update{Callback: &tele.Callback{Data: "\fpomo_skip| 42 "}})
	if id, err := PayloadInt64(c); err != nil || id != 42 {
		t.Fatalf("payload = %d, %v", id, err)
	}
	if CallbackKey(c) != "pomo_skip" {
		t.Fatalf("key = %q", CallbackKey(c))
	}
	bad := tele.NewContext(nil, tele.Update{Callback: &tele.Callback{Data: "\fpomo_skip"}})
	if _, err := PayloadInt64(bad); err == nil {
		t.Fatal("empty payload must not parse")
	}
}
