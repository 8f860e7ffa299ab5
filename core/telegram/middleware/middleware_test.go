package middleware

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func messageFrom(userID int64, text string) tele.Context {
	user := &tele.User{ID: userID}
	return tele.NewContext(nil, tele.Update{
		ID: int(userID),
		Message: &tele.Message{
			Sender: user,
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		},
	})
}

func callbackFrom(userID int64) tele.Context {
	user := &tele.User{ID: userID}
	return tele.NewContext(nil, tele.Update{
		Callback: &tele.Callback{Sender: user, Data: "\fpomo_start|1"},
	})
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var handled, rejected int
	next := func(tele.Context) error { handled++; return nil }
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  99,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(next)

	_ = mw(messageFrom(99, "/active"))
	_ = mw(messageFrom(5, "/active"))
	if handled != 1 || rejected != 1 {
		t.Fatalf("handled=%d rejected=%d, want 1 and 1", handled, rejected)
	}

	locked := AdminOnlyMiddleware(AdminOptions{})(next)
	_ = locked(messageFrom(99, "/active"))
	if handled != 1 {
		t.Fatal("admin-only handler must be locked without a configured admin")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var handled, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { handled++; return nil })

	_ = mw(messageFrom(1, "/start"))
	_ = mw(messageFrom(1, "/skip"))
	_ = mw(messageFrom(2, "/start"))
	_ = mw(callbackFrom(1))
	_ = mw(callbackFrom(1))

	if handled != 4 || limited != 1 {
		t.Fatalf("handled=%d limited=%d, want 4 and 1", handled, limited)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(messageFrom(1, "x")); err != nil {
		t.Fatalf("recovered handler returned %v", err)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := messageFrom(12, "/tl")
	var rid string
	_ = LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})(c)
	if rid != "12:12:12" {
		t.Fatalf("rid = %q", rid)
	}
	if n, kb := GetCounters(c); n != 0 || kb {
		t.Fatalf("counters without metrics middleware = %d, %v", n, kb)
	}
}

func TestSendStatsRecord(t *testing.T) {
	s := &sendStats{}
	s.record(nil)
	s.record([]interface{}{&tele.SendOptions{ParseMode: tele.ModeMarkdown}})
	if n, kb := int(s.messages.Load()), s.keyboard.Load(); n != 2 || kb {
		t.Fatalf("plain sends = %d, %v", n, kb)
	}
	s.record([]interface{}{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}})
	if !s.keyboard.Load() {
		t.Fatal("keyboard flag must be set by reply markup")
	}

	c := messageFrom(4, "/stats")
	_ = MessageMetricsMiddleware(func(inner tele.Context) error {
		if n, _ := GetCounters(inner); n != 0 {
			t.Fatalf("fresh counters = %d", n)
		}
		return nil
	})(c)
}

func TestUpdateKind(t *testing.T) {
	if got := updateKind(messageFrom(1, "x").Update()); got != "message" {
		t.Fatalf("message kind = %q", got)
	}
	if got := updateKind(callbackFrom(1).Update()); got != "callback" {
		t.Fatalf("callback kind = %q", got)
	}
	if got := updateKind(tele.Update{}); got != "other" {
		t.Fatalf("empty kind = %q", got)
	}
}

func TestSeenUpdatesWrapsAround(t *testing.T) {
	var s seenUpdates
	if !s.first(1) || s.first(1) {
		t.Fatal("second sighting of an id must be suppressed")
	}
	for id := 2; id <= len(s.ids)+1; id++ {
		s.first(id)
	}
	if !s.first(1) {
		t.Fatal("evicted id must be logged again")
	}
}
