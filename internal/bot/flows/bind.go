package flows

import (
	"context"
	"errors"

	"olympbot/internal/storage"
	"olympbot/internal/validate"
)

// StartBindSNILS opens the /mydata conversation asking for the user's SNILS.
func (e *Engine) StartBindSNILS(ctx context.Context, userID int64) ([]Reply, error) {
	e.sessions.SetState(userID, stateAskSNILS)
	return msg(textAskSNILS), nil
}

func (e *Engine) stepAskSNILS(ctx context.Context, userID int64, text string) ([]Reply, error) {
	if !validate.SNILS(text) {
		return msg(textSNILSInvalid), nil
	}

	err := e.store.SetUserSNILS(ctx, userID, text)
	switch {
	case errors.Is(err, storage.ErrSNILSTaken):
		e.sessions.Clear(userID)
		return msg(textSNILSTaken), nil
	case err != nil:
		e.sessions.Clear(userID)
		return msg(textSNILSSaveFailed), err
	}

	e.sessions.Clear(userID)
	return msg(textSNILSSaved), nil
}
