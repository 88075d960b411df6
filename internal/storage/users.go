package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"olympbot/core/logger"

	"github.com/lib/pq"

	"log/slog"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// EnsureUser registers the Telegram account if it is not known yet.
func (s *Store) EnsureUser(ctx context.Context, telegramID int64) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID,
	)
	if err != nil {
		logger.SVCUsers.ErrorContext(ctx, "user.ensure",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.SVCUsers.DebugContext(ctx, "user.ensure",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// GetUser fetches a user row by Telegram ID.
func (s *Store) GetUser(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT telegram_id, snils, is_admin FROM users WHERE telegram_id = $1`,
		telegramID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsAdmin reports whether the Telegram account has the admin flag set.
// Unknown accounts are not admins.
func (s *Store) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var isAdmin bool
	err := s.db.GetContext(ctx, &isAdmin,
		`SELECT is_admin FROM users WHERE telegram_id = $1`,
		telegramID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// SetUserSNILS binds a SNILS to the account, creating the account row when missing.
// Rebinding the same SNILS to the same account succeeds; a SNILS held by a
// different account yields ErrSNILSTaken.
func (s *Store) SetUserSNILS(ctx context.Context, telegramID int64, snils string) error {
	start := time.Now()

	var holder int64
	err := s.db.GetContext(ctx, &holder,
		`SELECT telegram_id FROM users WHERE snils = $1`,
		snils,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case holder != telegramID:
		logger.SVCUsers.WarnContext(ctx, "user.snils.conflict",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
		)
		return ErrSNILSTaken
	default:
		// Already bound to this account.
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, snils) VALUES ($1, $2)
		 ON CONFLICT (telegram_id) DO UPDATE SET snils = EXCLUDED.snils`,
		telegramID, snils,
	)
	if isUniqueViolation(err, "users_snils_key") {
		// Lost the race to another account binding the same SNILS.
		return ErrSNILSTaken
	}
	if err != nil {
		logger.SVCUsers.ErrorContext(ctx, "user.snils.bind",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.SVCUsers.InfoContext(ctx, "user.snils.bind",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
