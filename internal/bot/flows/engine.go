// Package flows implements the guided conversations of the bot: binding a
// SNILS to an account, creating olympiads and recording their results.
package flows

import (
	"context"

	"olympbot/core/logger"
	"olympbot/core/telegram/state"
	"olympbot/internal/storage"
	"olympbot/internal/validate"

	"log/slog"
)

// Store is the persistence surface the conversations need.
type Store interface {
	SetUserSNILS(ctx context.Context, telegramID int64, snils string) error
	InsertOlympiad(ctx context.Context, o storage.Olympiad) (int64, error)
	ListOlympiads(ctx context.Context) ([]storage.Olympiad, error)
	GetOlympiad(ctx context.Context, id int64) (*storage.Olympiad, error)
	InsertResult(ctx context.Context, r storage.Result) (int64, error)
}

// Reply is one outgoing message produced by a conversation step.
type Reply struct {
	Text string
	// Keyboard holds reply keyboard labels by row; empty means no markup.
	Keyboard [][]string
	// RemoveKeyboard hides a previously shown reply keyboard.
	RemoveKeyboard bool
}

func msg(text string) []Reply {
	return []Reply{{Text: text}}
}

func msgPlain(text string) []Reply {
	return []Reply{{Text: text, RemoveKeyboard: true}}
}

// Conversation states.
const (
	stateAskSNILS state.State = "mydata.ask_snils"

	stateOlympiadName        state.State = "olympiad.name"
	stateOlympiadDate        state.State = "olympiad.date"
	stateOlympiadSubject     state.State = "olympiad.subject"
	stateOlympiadDescription state.State = "olympiad.description"

	stateResultsSelect   state.State = "results.select_olympiad"
	stateResultsFullName state.State = "results.full_name"
	stateResultsSNILS    state.State = "results.snils"
	stateResultsScore    state.State = "results.score"
	stateResultsPlace    state.State = "results.place"
	stateResultsDiploma  state.State = "results.diploma_link"
)

type stepFunc func(ctx context.Context, userID int64, text string) ([]Reply, error)

// Engine drives all guided conversations over a shared session manager.
type Engine struct {
	store    Store
	sessions state.Manager
	steps    map[state.State]stepFunc
}

// New builds an Engine on top of the provided store and session manager.
func New(store Store, sessions state.Manager) *Engine {
	e := &Engine{
		store:    store,
		sessions: sessions,
	}
	e.steps = map[state.State]stepFunc{
		stateAskSNILS: e.stepAskSNILS,

		stateOlympiadName:        e.stepOlympiadName,
		stateOlympiadDate:        e.stepOlympiadDate,
		stateOlympiadSubject:     e.stepOlympiadSubject,
		stateOlympiadDescription: e.stepOlympiadDescription,

		stateResultsSelect:   e.stepResultsSelect,
		stateResultsFullName: e.stepResultsFullName,
		stateResultsSNILS:    e.stepResultsSNILS,
		stateResultsScore:    e.stepResultsScore,
		stateResultsPlace:    e.stepResultsPlace,
		stateResultsDiploma:  e.stepResultsDiploma,
	}
	return e
}

// InProgress reports whether the user is inside a conversation.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// HandleText advances the active conversation with the user's message.
// Cancel commands abort the conversation from any step.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) ([]Reply, error) {
	text = validate.NormalizeText(text)

	if isCancel(text) {
		return e.cancel(ctx, userID), nil
	}

	current := e.sessions.GetState(userID)
	step, ok := e.steps[current]
	if !ok {
		// Stale session, drop it.
		e.sessions.Clear(userID)
		return nil, nil
	}

	logger.Debug(ctx, "tg", "flow.step",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)
	return step(ctx, userID, text)
}

func isCancel(text string) bool {
	return text == "/cancel" || text == "/cancel_admin_op"
}

func (e *Engine) cancel(ctx context.Context, userID int64) []Reply {
	e.sessions.Clear(userID)
	logger.Info(ctx, "tg", "flow.cancel",
		slog.String("status", "cancelled"),
		slog.Int64("user_id", userID),
	)
	return msgPlain(textCancelled)
}
