package storage

import (
	"context"
	"errors"
	"time"

	"olympbot/core/logger"

	"github.com/lib/pq"

	"log/slog"
)

// InsertResult stores one participant entry.
func (s *Store) InsertResult(ctx context.Context, r Result) (int64, error) {
	start := time.Now()
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO results (olympiad_id, user_snils, full_name, score, place, diploma_link)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		r.OlympiadID, r.UserSNILS, r.FullName, r.Score, r.Place, r.DiplomaLink,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrNotFound
		}
		logger.SVCResults.ErrorContext(ctx, "result.insert",
			slog.String("status", "fail"),
			slog.Int64("olympiad_id", r.OlympiadID),
			slog.String("err", err.Error()),
		)
		return 0, err
	}
	logger.SVCResults.InfoContext(ctx, "result.insert",
		slog.String("status", "ok"),
		slog.Int64("olympiad_id", r.OlympiadID),
		slog.Int64("result_id", id),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}

// ResultsBySNILS returns all results recorded for the SNILS joined with
// olympiad details, most recent olympiad first.
func (s *Store) ResultsBySNILS(ctx context.Context, snils string) ([]ResultView, error) {
	var list []ResultView
	err := s.db.SelectContext(ctx, &list,
		`SELECT o.name AS olympiad_name, o.date AS olympiad_date, o.subject,
		        r.full_name, r.score, r.place, r.diploma_link
		 FROM results r
		 JOIN olympiads o ON o.id = r.olympiad_id
		 WHERE r.user_snils = $1
		 ORDER BY o.date DESC, o.name ASC, r.id ASC`,
		snils,
	)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// InsertResultsBatch stores all items in one transaction.
// Either every item is inserted and the added count returned, or the
// transaction is rolled back and a *BatchError lists every failed item.
func (s *Store) InsertResultsBatch(ctx context.Context, olympiadID int64, items []Result) (int, error) {
	start := time.Now()

	if _, err := s.GetOlympiad(ctx, olympiadID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var itemErrs []BatchItemError
	added := 0
	for i, r := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (olympiad_id, user_snils, full_name, score, place, diploma_link)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			olympiadID, r.UserSNILS, r.FullName, r.Score, r.Place, r.DiplomaLink,
		)
		if err != nil {
			itemErrs = append(itemErrs, BatchItemError{
				Index:  i,
				Kind:   classifyInsertError(err),
				Detail: err.Error(),
			})
			// A failed statement aborts the Postgres transaction; later
			// items cannot be attempted individually.
			break
		}
		added++
	}

	if len(itemErrs) > 0 {
		logger.SVCResults.WarnContext(ctx, "result.batch",
			slog.String("status", "fail"),
			slog.Int64("olympiad_id", olympiadID),
			slog.Int("results_total", len(items)),
			slog.Int("index", itemErrs[0].Index),
		)
		return 0, &BatchError{Items: itemErrs}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.SVCResults.InfoContext(ctx, "result.batch",
		slog.String("status", "ok"),
		slog.Int64("olympiad_id", olympiadID),
		slog.Int("added_count", added),
		slog.Duration("duration", logger.Took(start)),
	)
	return added, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func classifyInsertError(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "database_error"
	}
	switch pqErr.Code.Class() {
	case "23":
		return "integrity_error"
	case "22":
		return "invalid_value"
	}
	return "database_error"
}
