package logger

import "strings"

// Level names as they appear in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

func levelName(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(level)
}

// statusName lowercases known statuses. Unknown values are kept as given.
func statusName(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "ok", "fail", "skip", "retry", "rate_limited", "cancelled", "drop":
		return s
	}
	return status
}

// outcomeName reports false for values outside the closed outcome set.
func outcomeName(outcome string) (string, bool) {
	o := strings.ToLower(strings.TrimSpace(outcome))
	switch o {
	case "ok", "fail", "cancelled", "rate_limited":
		return o, true
	}
	return "", false
}

// defaultKeyOrder puts identity first, then request correlation, then the
// pomodoro fields, then errors and retry details. Keys not listed follow in
// lexical order.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler",
	"op", "cb_key", "outcome", "duration_ms",
	"messages", "kb", "count", "payload", "username",
	"mode", "listen", "http_code",
	"db", "driver", "host", "port",
	"kind", "state", "from", "to", "cycle", "expiries", "active",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms",
	"pending_count",
}

func keyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}
