package api

import (
	"crypto/subtle"
	"net/http"
	"runtime/debug"
	"time"

	"olympbot/core/logger"

	"log/slog"
)

// apiKeyHeader carries the shared ingestion secret.
const apiKeyHeader = "X-API-Key"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.API.InfoContext(r.Context(), "http.request",
			slog.String("status", logger.Status(nil)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_code", sw.status),
			slog.Duration("duration", logger.Took(start)),
		)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.API.ErrorContext(r.Context(), "http.panic",
					slog.String("status", "fail"),
					slog.Any("err", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(apiKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.API.WarnContext(r.Context(), "auth.rejected",
					slog.String("status", "skip"),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
