package flows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"olympbot/core/telegram/keyboard"
	"olympbot/internal/storage"
	"olympbot/internal/validate"
)

const (
	tmpResultsOlympiadID   = "results.olympiad_id"
	tmpResultsOlympiadName = "results.olympiad_name"
	tmpResultsFullName     = "results.full_name"
	tmpResultsSNILS        = "results.snils"
	tmpResultsScore        = "results.score"
	tmpResultsPlace        = "results.place"
	tmpResultsAdded        = "results.added"
)

// StartAddResults opens the /admin_add_results conversation listing known olympiads.
func (e *Engine) StartAddResults(ctx context.Context, userID int64) ([]Reply, error) {
	list, err := e.store.ListOlympiads(ctx)
	if err != nil {
		return msg(textResultsListFailed), err
	}
	if len(list) == 0 {
		return msg(textResultsNoOlympiads), nil
	}

	var b strings.Builder
	b.WriteString(textResultsSelectOlympiad)
	b.WriteString("\n")
	labels := make([]string, 0, len(list))
	for _, o := range list {
		fmt.Fprintf(&b, "\n%d. %s (%s)", o.ID, o.Name, o.Date)
		labels = append(labels, strconv.FormatInt(o.ID, 10))
	}

	e.sessions.Clear(userID)
	e.sessions.SetState(userID, stateResultsSelect)
	return []Reply{{
		Text:     b.String(),
		Keyboard: keyboard.ChunkLabels(labels, 3),
	}}, nil
}

func (e *Engine) stepResultsSelect(ctx context.Context, userID int64, text string) ([]Reply, error) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return msg(textResultsSelectInvalid), nil
	}
	o, err := e.store.GetOlympiad(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return msg(textResultsSelectInvalid), nil
	case err != nil:
		return msg(textResultsLookupFailed), err
	}

	e.sessions.SetTemp(userID, tmpResultsOlympiadID, o.ID)
	e.sessions.SetTemp(userID, tmpResultsOlympiadName, o.Name)
	e.sessions.SetState(userID, stateResultsFullName)
	return []Reply{{
		Text:           fmt.Sprintf("Олимпиада «%s».\n%s", o.Name, textResultsAskFullName),
		RemoveKeyboard: true,
	}}, nil
}

func (e *Engine) stepResultsFullName(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if isStop(text) {
		added, _ := e.sessions.GetTempInt64(userID, tmpResultsAdded)
		e.sessions.Clear(userID)
		return msgPlain(fmt.Sprintf("Ввод завершён. Добавлено результатов: %d.", added)), nil
	}
	if text == "" {
		return msg(textResultsAskFullName), nil
	}
	e.sessions.SetTemp(userID, tmpResultsFullName, text)
	e.sessions.SetState(userID, stateResultsSNILS)
	return msg(textResultsAskSNILS), nil
}

func (e *Engine) stepResultsSNILS(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if !validate.SNILS(text) {
		return msg(textSNILSInvalid), nil
	}
	e.sessions.SetTemp(userID, tmpResultsSNILS, text)
	e.sessions.SetState(userID, stateResultsScore)
	return msg(textResultsAskScore), nil
}

func (e *Engine) stepResultsScore(ctx context.Context, userID int64, text string) ([]Reply, error) {
	score, err := strconv.Atoi(text)
	if err != nil {
		return msg(textResultsScoreInvalid), nil
	}
	e.sessions.SetTemp(userID, tmpResultsScore, score)
	e.sessions.SetState(userID, stateResultsPlace)
	return msg(textResultsAskPlace), nil
}

func (e *Engine) stepResultsPlace(ctx context.Context, userID int64, text string) ([]Reply, error) {
	place, err := strconv.Atoi(text)
	if err != nil {
		return msg(textResultsPlaceInvalid), nil
	}
	e.sessions.SetTemp(userID, tmpResultsPlace, place)
	e.sessions.SetState(userID, stateResultsDiploma)
	return msg(textResultsAskDiploma), nil
}

func (e *Engine) stepResultsDiploma(ctx context.Context, userID int64, text string) ([]Reply, error) {
	olympiadID, _ := e.sessions.GetTempInt64(userID, tmpResultsOlympiadID)
	fullName, _ := e.sessions.GetTempString(userID, tmpResultsFullName)
	snils, _ := e.sessions.GetTempString(userID, tmpResultsSNILS)

	r := storage.Result{
		OlympiadID: olympiadID,
		UserSNILS:  snils,
		FullName:   fullName,
	}
	if v, ok := e.sessions.GetTemp(userID, tmpResultsScore); ok {
		if score, isInt := v.(int); isInt {
			r.Score = &score
		}
	}
	if v, ok := e.sessions.GetTemp(userID, tmpResultsPlace); ok {
		if place, isInt := v.(int); isInt {
			r.Place = &place
		}
	}
	if text != "-" {
		r.DiplomaLink = &text
	}

	if _, err := e.store.InsertResult(ctx, r); err != nil {
		e.resetParticipant(userID)
		return msg(textResultsSaveFailed + " " + textResultsRetryRecord), err
	}

	added, _ := e.sessions.GetTempInt64(userID, tmpResultsAdded)
	e.sessions.SetTemp(userID, tmpResultsAdded, added+1)
	e.resetParticipant(userID)

	return msg(textResultsSaved + " " + textResultsNextParticipant), nil
}

// resetParticipant keeps the selected olympiad and the added counter,
// drops the per-participant fields and returns to the full-name prompt.
func (e *Engine) resetParticipant(userID int64) {
	e.sessions.ClearTemp(userID, tmpResultsFullName)
	e.sessions.ClearTemp(userID, tmpResultsSNILS)
	e.sessions.ClearTemp(userID, tmpResultsScore)
	e.sessions.ClearTemp(userID, tmpResultsPlace)
	e.sessions.SetState(userID, stateResultsFullName)
}

func isStop(text string) bool {
	t := strings.ToLower(text)
	return t == "стоп" || t == "stop"
}
