package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"olympbot/core/logger"
	"olympbot/internal/storage"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = logger.Shutdown()
	os.Exit(code)
}

type fakeStore struct {
	knownOlympiad int64
	inserted      []storage.Result
	batchErr      *storage.BatchError
}

func (f *fakeStore) InsertResultsBatch(_ context.Context, olympiadID int64, items []storage.Result) (int, error) {
	if olympiadID != f.knownOlympiad {
		return 0, storage.ErrNotFound
	}
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	f.inserted = append(f.inserted, items...)
	return len(items), nil
}

const testKey = "secret-key"

func postResults(t *testing.T, h http.Handler, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/results", &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(apiKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]any {
	return map[string]any{
		"olympiad_id": 1,
		"results": []map[string]any{
			{"full_name": "Иванов Иван", "snils": "111-222-333 44", "score": 95, "place": 1, "diploma_link": "https://example.org/d/1"},
			{"full_name": "Петров Пётр", "snils": "555-666-777 88", "score": 80, "place": 4},
		},
	}
}

func TestResultsRequiresAPIKey(t *testing.T) {
	h := NewRouter(&fakeStore{knownOlympiad: 1}, testKey)

	rec := postResults(t, h, "", validBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", rec.Code)
	}

	rec = postResults(t, h, "wrong-key", validBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", rec.Code)
	}
}

func TestResultsBatchInserted(t *testing.T) {
	store := &fakeStore{knownOlympiad: 1}
	h := NewRouter(store, testKey)

	rec := postResults(t, h, testKey, validBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		AddedCount int `json:"added_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AddedCount != 2 {
		t.Fatalf("expected added_count 2, got %d", resp.AddedCount)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 stored results, got %d", len(store.inserted))
	}
	first := store.inserted[0]
	if first.Score == nil || *first.Score != 95 {
		t.Fatalf("score not carried over: %+v", first)
	}
	second := store.inserted[1]
	if second.Score == nil || *second.Score != 80 || second.Place == nil || *second.Place != 4 {
		t.Fatalf("score and place not carried over: %+v", second)
	}
	if second.DiplomaLink != nil {
		t.Fatalf("absent diploma link must stay nil: %+v", second)
	}
}

func TestResultsUnknownOlympiad(t *testing.T) {
	h := NewRouter(&fakeStore{knownOlympiad: 7}, testKey)

	rec := postResults(t, h, testKey, validBody())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestResultsInvalidItemsRejectWholeBatch(t *testing.T) {
	store := &fakeStore{knownOlympiad: 1}
	h := NewRouter(store, testKey)

	body := map[string]any{
		"olympiad_id": 1,
		"results": []map[string]any{
			{"full_name": "Иванов Иван", "snils": "111-222-333 44", "score": 95, "place": 1},
			{"full_name": "Петров Пётр", "snils": "не снилс", "score": 80, "place": 4},
			{"full_name": "", "snils": "555-666-777 88", "score": 70, "place": 6},
		},
	}
	rec := postResults(t, h, testKey, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Errors []struct {
			Index int    `json:"index"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("expected 2 item errors, got %+v", resp.Errors)
	}
	if resp.Errors[0].Index != 1 || resp.Errors[0].Error != "invalid_snils" {
		t.Fatalf("unexpected first error: %+v", resp.Errors[0])
	}
	if resp.Errors[1].Index != 2 || resp.Errors[1].Error != "missing_full_name" {
		t.Fatalf("unexpected second error: %+v", resp.Errors[1])
	}
	if len(store.inserted) != 0 {
		t.Fatal("invalid batch must not insert anything")
	}
}

func TestResultsMissingScoreOrPlaceRejected(t *testing.T) {
	store := &fakeStore{knownOlympiad: 1}
	h := NewRouter(store, testKey)

	body := map[string]any{
		"olympiad_id": 1,
		"results": []map[string]any{
			{"full_name": "Иванов Иван", "snils": "111-222-333 44", "place": 1},
			{"full_name": "Петров Пётр", "snils": "555-666-777 88", "score": 80},
		},
	}
	rec := postResults(t, h, testKey, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Errors []struct {
			Index int    `json:"index"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("expected 2 item errors, got %+v", resp.Errors)
	}
	if resp.Errors[0].Index != 0 || resp.Errors[0].Error != "missing_score" {
		t.Fatalf("unexpected first error: %+v", resp.Errors[0])
	}
	if resp.Errors[1].Index != 1 || resp.Errors[1].Error != "missing_place" {
		t.Fatalf("unexpected second error: %+v", resp.Errors[1])
	}
	if len(store.inserted) != 0 {
		t.Fatal("incomplete items must not insert anything")
	}
}

func TestResultsStorageBatchErrorMapsTo400(t *testing.T) {
	store := &fakeStore{
		knownOlympiad: 1,
		batchErr: &storage.BatchError{Items: []storage.BatchItemError{
			{Index: 0, Kind: "integrity_error", Detail: "duplicate"},
		}},
	}
	h := NewRouter(store, testKey)

	rec := postResults(t, h, testKey, validBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("integrity_error")) {
		t.Fatalf("expected integrity_error in body: %s", rec.Body.String())
	}
}

func TestResultsMalformedJSON(t *testing.T) {
	h := NewRouter(&fakeStore{knownOlympiad: 1}, testKey)

	rec := postResults(t, h, testKey, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthNeedsNoKey(t *testing.T) {
	h := NewRouter(&fakeStore{knownOlympiad: 1}, testKey)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
