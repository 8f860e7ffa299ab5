package bot

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/pomobot/core/config"
	coredatabase "github.com/m3rciful/pomobot/core/database"
	"github.com/m3rciful/pomobot/internal/pomodoro"
)

// PomodoroConfig holds phase lengths and loop timing. Zero values fall back
// to the classic 25/5/15 schedule.
type PomodoroConfig struct {
	WorkMinutes      int `yaml:"work_minutes" envconfig:"POMODORO_WORK_MINUTES"`
	BreakMinutes     int `yaml:"break_minutes" envconfig:"POMODORO_BREAK_MINUTES"`
	LongBreakMinutes int `yaml:"long_break_minutes" envconfig:"POMODORO_LONG_BREAK_MINUTES"`
	StandbyMinutes   int `yaml:"standby_minutes" envconfig:"POMODORO_STANDBY_MINUTES"`
	LongBreakEvery   int `yaml:"long_break_every" envconfig:"POMODORO_LONG_BREAK_EVERY"`
	InactivityLimit  int `yaml:"inactivity_limit" envconfig:"POMODORO_INACTIVITY_LIMIT"`
	PollIntervalMS   int `yaml:"poll_interval_ms" envconfig:"POMODORO_POLL_INTERVAL_MS"`
}

// Config is the bot configuration: the shared core sections plus the
// pomodoro schedule and the optional journal database.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Pomodoro PomodoroConfig      `yaml:"pomodoro"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads path, overlays the environment and normalizes every section.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates all sections and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Pomodoro.normalize(); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	return nil
}

func (p *PomodoroConfig) normalize() error {
	fields := []struct {
		name string
		val  *int
		def  int
	}{
		{"work_minutes", &p.WorkMinutes, 25},
		{"break_minutes", &p.BreakMinutes, 5},
		{"long_break_minutes", &p.LongBreakMinutes, 15},
		{"standby_minutes", &p.StandbyMinutes, 1},
		{"long_break_every", &p.LongBreakEvery, 4},
		{"inactivity_limit", &p.InactivityLimit, 5},
		{"poll_interval_ms", &p.PollIntervalMS, 1000},
	}
	for _, f := range fields {
		if *f.val < 0 {
			return fmt.Errorf("pomodoro.%s must be >= 0", f.name)
		}
		if *f.val == 0 {
			*f.val = f.def
		}
	}
	return nil
}

// Settings converts the schedule into core settings.
func (p PomodoroConfig) Settings() pomodoro.Settings {
	return pomodoro.Settings{
		Work:            time.Duration(p.WorkMinutes) * time.Minute,
		Break:           time.Duration(p.BreakMinutes) * time.Minute,
		LongBreak:       time.Duration(p.LongBreakMinutes) * time.Minute,
		Standby:         time.Duration(p.StandbyMinutes) * time.Minute,
		LongBreakEvery:  p.LongBreakEvery,
		InactivityLimit: p.InactivityLimit,
	}
}

// PollInterval returns the loop tick.
func (p PomodoroConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}
