// Package bot wires the command registry, conversations and access checks
// into a runnable Telegram application.
package bot

import (
	tg "olympbot/core/telegram"
	"olympbot/core/telegram/commands"
	tghelpers "olympbot/core/telegram/helpers"
	"olympbot/core/telegram/router"
	"olympbot/internal/bot/flows"

	tele "gopkg.in/telebot.v4"
)

// App aggregates everything needed to serve bot updates.
type App struct {
	store    Store
	engine   *flows.Engine
	registry *tg.Registry
}

// NewApp builds the application with its command registry.
func NewApp(store Store, engine *flows.Engine) *App {
	a := &App{
		store:  store,
		engine: engine,
	}
	a.registry = a.buildRegistry()
	return a
}

// Registry exposes the command registry for bot wiring.
func (a *App) Registry() *tg.Registry {
	return a.registry
}

// Routes returns all bot routes: commands plus the text router.
func (a *App) Routes() []tg.Route {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminGuard: AdminGuard(a.store),
	})
	routes = append(routes, router.TextRoutes(
		fsmAdapter{engine: a.engine},
		a.registry,
		router.TextOptions{UnknownText: a.handleUnknownText},
	)...)
	return routes
}

func (a *App) buildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "начать работу с ботом",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "список команд",
	})
	reg.RegisterCommand("/mydata", commands.Command{
		Handler:     a.handleMyData,
		Description: "привязать СНИЛС к аккаунту",
	})
	reg.RegisterCommand("/myresults", commands.Command{
		Handler:     a.handleMyResults,
		Description: "мои результаты олимпиад",
	})
	reg.RegisterCommand("/listolympiads", commands.Command{
		Handler:     a.handleListOlympiads,
		Description: "список олимпиад",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "отменить текущую операцию",
	})
	reg.RegisterCommand("/cancel_admin_op", commands.Command{
		Handler:     a.handleCancel,
		Description: "отменить административную операцию",
		Hidden:      true,
	})

	reg.RegisterCommand("/admin_add_olympiad", commands.Command{
		Handler:     a.handleAddOlympiad,
		Description: "создать олимпиаду",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/admin_add_results", commands.Command{
		Handler:     a.handleAddResults,
		Description: "внести результаты олимпиады",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/admin_edit_result", commands.Command{
		Handler:     a.handleEditResult,
		Description: "изменить результат",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(a.handleUnknownText)
	return reg
}

// fsmAdapter connects the flow engine to the message router.
type fsmAdapter struct {
	engine *flows.Engine
}

func (f fsmAdapter) InProgress(userID int64) bool {
	return f.engine.InProgress(userID)
}

func (f fsmAdapter) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := f.engine.HandleText(ctx, c.Sender().ID, c.Text())
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}
