package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"olympbot/core/logger"

	"log/slog"
)

// InsertOlympiad creates a new olympiad and returns its ID.
func (s *Store) InsertOlympiad(ctx context.Context, o Olympiad) (int64, error) {
	start := time.Now()
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO olympiads (name, date, subject, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		o.Name, o.Date, o.Subject, o.Description,
	)
	if err != nil {
		logger.SVCOlympiads.ErrorContext(ctx, "olympiad.insert",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return 0, err
	}
	logger.SVCOlympiads.InfoContext(ctx, "olympiad.insert",
		slog.String("status", "ok"),
		slog.Int64("olympiad_id", id),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}

// GetOlympiad fetches one olympiad by ID.
func (s *Store) GetOlympiad(ctx context.Context, id int64) (*Olympiad, error) {
	var o Olympiad
	err := s.db.GetContext(ctx, &o,
		`SELECT id, name, date, subject, description FROM olympiads WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOlympiads returns all olympiads, most recent first.
func (s *Store) ListOlympiads(ctx context.Context) ([]Olympiad, error) {
	var list []Olympiad
	err := s.db.SelectContext(ctx, &list,
		`SELECT id, name, date, subject, description
		 FROM olympiads
		 ORDER BY date DESC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	return list, nil
}
