package router

import (
	"log/slog"

	"github.com/m3rciful/pomobot/core/logger"
	tg "github.com/m3rciful/pomobot/core/telegram"
	"github.com/m3rciful/pomobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// guard installs request logging and panic recovery around h.
func guard(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

// CommandRoutes returns one route per registered command. Admin-only
// commands are gated before the handler runs.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for endpoint, def := range cmds {
		name, inner := handlerName(endpoint), def.Handler
		var h tele.HandlerFunc = func(c tele.Context) error {
			return newSummary(name).run(c, func() error { return inner(c) })
		}
		if def.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: endpoint, Handler: guard(h)})
	}

	logger.TWire.Info("routes wired",
		slog.String("event", "complete"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
