package bot

import (
	"context"

	"olympbot/core/logger"
	tghelpers "olympbot/core/telegram/helpers"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const textAdminsOnly = "Эта команда доступна только администраторам."

type adminChecker interface {
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}

// AdminGuard wraps a handler with a database-backed admin check.
// The check runs once at command entry; a conversation started by an admin
// is not re-checked on every step.
func AdminGuard(store adminChecker) func(tele.HandlerFunc) tele.HandlerFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			ctx := tghelpers.BuildContext(c)
			isAdmin, err := store.IsAdmin(ctx, sender.ID)
			if err != nil {
				logger.Error(ctx, "tg", "admin.check",
					slog.String("status", "fail"),
					slog.Int64("user_id", sender.ID),
					slog.String("err", err.Error()),
				)
				return tghelpers.SendText(c, textAdminsOnly)
			}
			if !isAdmin {
				logger.Warn(ctx, "tg", "admin.denied",
					slog.String("status", "skip"),
					slog.Int64("user_id", sender.ID),
				)
				return tghelpers.SendText(c, textAdminsOnly)
			}
			return next(c)
		}
	}
}
