package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"olympbot/core/logger"
	"olympbot/internal/storage"
	"olympbot/internal/validate"

	"log/slog"
)

// Store is the persistence surface the ingestion endpoint needs.
type Store interface {
	InsertResultsBatch(ctx context.Context, olympiadID int64, items []storage.Result) (int, error)
}

type resultsHandler struct {
	store Store
}

// ServeHTTP ingests a batch of results for one olympiad.
// The batch is atomic: any rejected item rolls back the whole request.
func (h *resultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json"})
		return
	}
	if req.OlympiadID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_olympiad_id"})
		return
	}
	if len(req.Results) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty_results"})
		return
	}

	var itemErrs []itemError
	items := make([]storage.Result, 0, len(req.Results))
	for i, item := range req.Results {
		fullName := validate.NormalizeText(item.FullName)
		if fullName == "" {
			itemErrs = append(itemErrs, itemError{Index: i, Error: "missing_full_name"})
			continue
		}
		if !validate.SNILS(item.SNILS) {
			itemErrs = append(itemErrs, itemError{Index: i, Error: "invalid_snils"})
			continue
		}
		if item.Score == nil {
			itemErrs = append(itemErrs, itemError{Index: i, Error: "missing_score"})
			continue
		}
		if item.Place == nil {
			itemErrs = append(itemErrs, itemError{Index: i, Error: "missing_place"})
			continue
		}
		items = append(items, storage.Result{
			UserSNILS:   item.SNILS,
			FullName:    fullName,
			Score:       item.Score,
			Place:       item.Place,
			DiplomaLink: item.DiplomaLink,
		})
	}
	if len(itemErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: itemErrs})
		return
	}

	added, err := h.store.InsertResultsBatch(r.Context(), req.OlympiadID, items)
	if err != nil {
		var batchErr *storage.BatchError
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "olympiad_not_found"})
		case errors.As(err, &batchErr):
			out := make([]itemError, 0, len(batchErr.Items))
			for _, it := range batchErr.Items {
				out = append(out, itemError{Index: it.Index, Error: it.Kind, Detail: it.Detail})
			}
			writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: out})
		default:
			logger.API.ErrorContext(r.Context(), "results.ingest",
				slog.String("status", "fail"),
				slog.Int64("olympiad_id", req.OlympiadID),
				slog.String("err", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		}
		return
	}

	logger.API.InfoContext(r.Context(), "results.ingest",
		slog.String("status", "ok"),
		slog.Int64("olympiad_id", req.OlympiadID),
		slog.Int("added_count", added),
	)
	writeJSON(w, http.StatusCreated, batchResponse{AddedCount: added})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
