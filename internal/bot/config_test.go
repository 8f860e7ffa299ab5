package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	coredatabase "github.com/m3rciful/pomobot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: \"123:abc\"\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	s := cfg.Pomodoro.Settings()
	if s.Work != 25*time.Minute || s.Break != 5*time.Minute || s.LongBreak != 15*time.Minute ||
		s.Standby != time.Minute || s.LongBreakEvery != 4 || s.InactivityLimit != 5 {
		t.Fatalf("settings = %+v", s)
	}
	if cfg.Pomodoro.PollInterval() != time.Second {
		t.Fatalf("poll interval = %s", cfg.Pomodoro.PollInterval())
	}
	if cfg.Database.Enabled() {
		t.Fatal("database must be disabled without a driver")
	}
	if cfg.CoreConfig() != &cfg.Config {
		t.Fatal("core config must point at the embedded section")
	}
}

func TestLoadConfigSections(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pomo.db")
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
pomodoro:
  work_minutes: 50
  break_minutes: 10
  poll_interval_ms: 250
database:
  driver: sqlite
  path: "`+dbPath+`"
`)
	t.Setenv("POMODORO_LONG_BREAK_EVERY", "3")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Fatalf("admin id = %d", cfg.Telegram.AdminID)
	}
	s := cfg.Pomodoro.Settings()
	if s.Work != 50*time.Minute || s.Break != 10*time.Minute || s.LongBreakEvery != 3 {
		t.Fatalf("settings = %+v", s)
	}
	if cfg.Pomodoro.PollInterval() != 250*time.Millisecond {
		t.Fatalf("poll interval = %s", cfg.Pomodoro.PollInterval())
	}
	if cfg.Database.Driver != coredatabase.DriverSQLite || cfg.Database.MaxConnections != 1 {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := map[string]string{
		"negative work":  "telegram:\n  token: x\npomodoro:\n  work_minutes: -1\n",
		"bad run mode":   "telegram:\n  token: x\n  run_mode: carrier-pigeon\n",
		"bad driver":     "telegram:\n  token: x\ndatabase:\n  driver: oracle\n",
		"missing token":  "pomodoro:\n  work_minutes: 10\n",
		"sqlite no path": "telegram:\n  token: x\ndatabase:\n  driver: sqlite\n",
	}
	for name, body := range tests {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil ||
		!strings.Contains(err.Error(), "read config") {
		t.Fatalf("missing file err = %v", err)
	}
}
