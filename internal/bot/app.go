package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/pomobot/core/bootstrap"
	corecmd "github.com/m3rciful/pomobot/core/cmd"
	"github.com/m3rciful/pomobot/core/logger"
	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/helpers"
	"github.com/m3rciful/pomobot/core/telegram/router"
	"github.com/m3rciful/pomobot/core/telegram/sender"
	"github.com/m3rciful/pomobot/internal/journal"
	"github.com/m3rciful/pomobot/internal/pomodoro"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired bot.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	pomos    *pomodoro.Handler[Destination]
	recorder *Recorder
	notifier *TelegramNotifier
	loop     *Loop
	service  *Service
}

// Bootstrap initializes logging and the optional journal database, then
// wires the registry, loop and command service.
func Bootstrap(cfg *Config) (*App, error) {
	return bootstrapWith(cfg, bootstrap.Options{})
}

func bootstrapWith(cfg *Config, opts bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	opts.Config = cfg.CoreConfig()
	opts.Database = cfg.Database
	opts.Migrations = journal.Migrations()
	infra, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	var store journal.Store
	if infra.DB != nil {
		store = journal.NewSQLStore(infra.DB)
	}

	app := &App{
		cfg:      cfg,
		infra:    infra,
		recorder: NewRecorder(store),
		notifier: &TelegramNotifier{},
	}
	app.pomos = pomodoro.NewHandler(pomodoro.Options[Destination]{
		Settings: cfg.Pomodoro.Settings(),
		Observer: app.recorder.Observe,
	})
	app.loop = NewLoop(cfg.Pomodoro.PollInterval(), app.pomos, app.notifier)
	app.service = NewService(ServiceOptions{
		Pomodoros: app.pomos,
		Store:     store,
		Loop:      app.loop,
	})

	settings := app.pomos.Settings()
	logger.Pomo.Info("pomodoro ready",
		slog.String("event", "ready"),
		slog.Duration("work", settings.Work),
		slog.Duration("break", settings.Break),
		slog.Duration("long_break", settings.LongBreak),
		slog.Int("long_break_every", settings.LongBreakEvery),
		slog.Int("inactivity_limit", settings.InactivityLimit),
		slog.Bool("journal", store != nil),
	)
	return app, nil
}

// TelegramRunOptions builds routes, middlewares and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := RegisterCommands(reg, a.service); err != nil {
		return tg.RunOptions{}, fmt.Errorf("bot: commands: %w", err)
	}
	if err := RegisterCallbacks(reg, a.service); err != nil {
		return tg.RunOptions{}, fmt.Errorf("bot: callbacks: %w", err)
	}

	textOpts, cbOpts := router.FallbackOptions(Fallbacks{})
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})
	routes = append(routes, router.TextRoutes(reg, textOpts)...)
	routes = append(routes, router.CallbackRoute(reg, cbOpts))

	return tg.RunOptions{
		Config:   a.cfg.CoreConfig(),
		Registry: reg,
		DispatcherOptions: sender.Options{
			QueueSize:  256,
			Workers:    4,
			MaxRetries: 3,
		},
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), onRateLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			if rt.Bot != nil {
				a.notifier.SetSender(rt.Bot)
			}
			a.loop.Bind(ctx)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.loop.Close()
			a.notifier.SetSender(nil)
			a.recorder.Close()
			return a.infra.Close()
		},
	}, nil
}

func onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Slow down a little"})
	}
	return helpers.SendText(c, "Slow down a little")
}

// LoadConfigCarrier adapts LoadConfig to the shared runner.
func LoadConfigCarrier(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// BootstrapApp adapts Bootstrap to the shared runner.
func BootstrapApp(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	c, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", cfg)
	}
	app, err := Bootstrap(c)
	if err != nil {
		return nil, err
	}
	return app, nil
}
