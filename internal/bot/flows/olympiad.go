package flows

import (
	"context"
	"fmt"

	"olympbot/internal/storage"
	"olympbot/internal/validate"
)

const (
	tmpOlympiadName    = "olympiad.name"
	tmpOlympiadDate    = "olympiad.date"
	tmpOlympiadSubject = "olympiad.subject"
)

// StartAddOlympiad opens the /admin_add_olympiad conversation.
func (e *Engine) StartAddOlympiad(ctx context.Context, userID int64) ([]Reply, error) {
	e.sessions.Clear(userID)
	e.sessions.SetState(userID, stateOlympiadName)
	return msg(textOlympiadAskName), nil
}

func (e *Engine) stepOlympiadName(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if text == "" {
		return msg(textOlympiadAskName), nil
	}
	e.sessions.SetTemp(userID, tmpOlympiadName, text)
	e.sessions.SetState(userID, stateOlympiadDate)
	return msg(textOlympiadAskDate), nil
}

func (e *Engine) stepOlympiadDate(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if !validate.Date(text) {
		return msg(textOlympiadDateInvalid), nil
	}
	e.sessions.SetTemp(userID, tmpOlympiadDate, text)
	e.sessions.SetState(userID, stateOlympiadSubject)
	return msg(textOlympiadAskSubject), nil
}

func (e *Engine) stepOlympiadSubject(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if text != "-" {
		e.sessions.SetTemp(userID, tmpOlympiadSubject, text)
	}
	e.sessions.SetState(userID, stateOlympiadDescription)
	return msg(textOlympiadAskDescription), nil
}

func (e *Engine) stepOlympiadDescription(ctx context.Context, userID int64, text string) ([]Reply, error) {
	name, _ := e.sessions.GetTempString(userID, tmpOlympiadName)
	date, _ := e.sessions.GetTempString(userID, tmpOlympiadDate)

	o := storage.Olympiad{
		Name: name,
		Date: date,
	}
	if subject, ok := e.sessions.GetTempString(userID, tmpOlympiadSubject); ok {
		o.Subject = &subject
	}
	if text != "-" {
		o.Description = &text
	}

	// Stay in this state on a storage failure: the collected fields are
	// kept, resending the description retries the insert.
	id, err := e.store.InsertOlympiad(ctx, o)
	if err != nil {
		return msg(textOlympiadSaveFailed), err
	}

	e.sessions.Clear(userID)
	return msg(fmt.Sprintf("Олимпиада «%s» сохранена (ID %d).", name, id)), nil
}
