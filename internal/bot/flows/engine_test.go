package flows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"olympbot/core/telegram/state"
	"olympbot/internal/storage"
)

type fakeStore struct {
	snils     map[int64]string
	olympiads map[int64]storage.Olympiad
	results   []storage.Result
	nextID    int64

	insertErr error // injected into the next insert, cleared after use
	lookupErr error // injected into the next GetOlympiad, cleared after use
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		snils:     make(map[int64]string),
		olympiads: make(map[int64]storage.Olympiad),
		nextID:    1,
	}
}

func (f *fakeStore) SetUserSNILS(_ context.Context, telegramID int64, snils string) error {
	for id, s := range f.snils {
		if s == snils && id != telegramID {
			return storage.ErrSNILSTaken
		}
	}
	f.snils[telegramID] = snils
	return nil
}

func (f *fakeStore) InsertOlympiad(_ context.Context, o storage.Olympiad) (int64, error) {
	if err := f.takeErr(); err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	o.ID = id
	f.olympiads[id] = o
	return id, nil
}

func (f *fakeStore) ListOlympiads(_ context.Context) ([]storage.Olympiad, error) {
	var list []storage.Olympiad
	for _, o := range f.olympiads {
		list = append(list, o)
	}
	return list, nil
}

func (f *fakeStore) GetOlympiad(_ context.Context, id int64) (*storage.Olympiad, error) {
	if err := f.lookupErr; err != nil {
		f.lookupErr = nil
		return nil, err
	}
	o, ok := f.olympiads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &o, nil
}

func (f *fakeStore) InsertResult(_ context.Context, r storage.Result) (int64, error) {
	if err := f.takeErr(); err != nil {
		return 0, err
	}
	f.results = append(f.results, r)
	return int64(len(f.results)), nil
}

func (f *fakeStore) takeErr() error {
	err := f.insertErr
	f.insertErr = nil
	return err
}

func newTestEngine(store Store) *Engine {
	return New(store, state.NewMemoryManager())
}

func repliesText(replies []Reply) string {
	var parts []string
	for _, r := range replies {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

func send(t *testing.T, e *Engine, userID int64, text string) []Reply {
	t.Helper()
	replies, err := e.HandleText(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("HandleText(%q): %v", text, err)
	}
	return replies
}

func TestBindSNILSFlow(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	replies, err := e.StartBindSNILS(context.Background(), 100)
	if err != nil {
		t.Fatalf("StartBindSNILS: %v", err)
	}
	if !strings.Contains(repliesText(replies), "СНИЛС") {
		t.Fatalf("unexpected prompt: %s", repliesText(replies))
	}
	if !e.InProgress(100) {
		t.Fatal("conversation should be in progress")
	}

	replies = send(t, e, 100, "not a snils")
	if repliesText(replies) != textSNILSInvalid {
		t.Fatalf("expected invalid prompt, got %s", repliesText(replies))
	}
	if !e.InProgress(100) {
		t.Fatal("invalid input must keep the conversation open")
	}

	replies = send(t, e, 100, "123-456-789 01")
	if repliesText(replies) != textSNILSSaved {
		t.Fatalf("expected saved message, got %s", repliesText(replies))
	}
	if e.InProgress(100) {
		t.Fatal("conversation should be finished")
	}
	if store.snils[100] != "123-456-789 01" {
		t.Fatalf("snils not persisted: %v", store.snils)
	}
}

func TestBindSNILSConflictEndsConversation(t *testing.T) {
	store := newFakeStore()
	store.snils[200] = "123-456-789 01"
	e := newTestEngine(store)

	if _, err := e.StartBindSNILS(context.Background(), 100); err != nil {
		t.Fatalf("StartBindSNILS: %v", err)
	}
	replies := send(t, e, 100, "123-456-789 01")
	if repliesText(replies) != textSNILSTaken {
		t.Fatalf("expected conflict message, got %s", repliesText(replies))
	}
	if e.InProgress(100) {
		t.Fatal("conflict must end the conversation")
	}
	if _, bound := store.snils[100]; bound {
		t.Fatal("conflicting snils must not be stored")
	}
}

func TestAddOlympiadFlow(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	if _, err := e.StartAddOlympiad(context.Background(), 7); err != nil {
		t.Fatalf("StartAddOlympiad: %v", err)
	}
	send(t, e, 7, "Межрегиональная олимпиада по физике")

	replies := send(t, e, 7, "14-03-2025")
	if repliesText(replies) != textOlympiadDateInvalid {
		t.Fatalf("expected date retry, got %s", repliesText(replies))
	}
	send(t, e, 7, "2025-03-14")
	send(t, e, 7, "Физика")
	replies = send(t, e, 7, "-")

	if !strings.Contains(repliesText(replies), "сохранена") {
		t.Fatalf("expected success message, got %s", repliesText(replies))
	}
	if e.InProgress(7) {
		t.Fatal("conversation should be finished")
	}

	o := store.olympiads[1]
	if o.Name != "Межрегиональная олимпиада по физике" || o.Date != "2025-03-14" {
		t.Fatalf("olympiad stored incorrectly: %+v", o)
	}
	if o.Subject == nil || *o.Subject != "Физика" {
		t.Fatalf("subject not stored: %+v", o)
	}
	if o.Description != nil {
		t.Fatalf("description should be absent: %+v", o)
	}
}

func TestAddResultsLoopRetainsOlympiad(t *testing.T) {
	store := newFakeStore()
	store.olympiads[1] = storage.Olympiad{ID: 1, Name: "Олимпиада по математике", Date: "2025-04-01"}
	e := newTestEngine(store)

	replies, err := e.StartAddResults(context.Background(), 9)
	if err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}
	if len(replies) != 1 || len(replies[0].Keyboard) == 0 {
		t.Fatalf("expected olympiad picker keyboard, got %+v", replies)
	}

	replies = send(t, e, 9, "42")
	if repliesText(replies) != textResultsSelectInvalid {
		t.Fatalf("expected unknown olympiad retry, got %s", repliesText(replies))
	}

	replies = send(t, e, 9, "1")
	if !replies[0].RemoveKeyboard {
		t.Fatal("picker keyboard should be removed after selection")
	}

	// First participant with all optional fields present.
	send(t, e, 9, "Иванов Иван Иванович")
	send(t, e, 9, "111-222-333 44")
	send(t, e, 9, "98")
	send(t, e, 9, "1")
	replies = send(t, e, 9, "https://example.org/diploma/1")
	if !strings.Contains(repliesText(replies), "следующего участника") {
		t.Fatalf("expected loop back to full name, got %s", repliesText(replies))
	}

	// Second participant: score and place are mandatory, a dash re-prompts.
	send(t, e, 9, "Петров Пётр")
	send(t, e, 9, "555-666-777 88")
	replies = send(t, e, 9, "-")
	if repliesText(replies) != textResultsScoreInvalid {
		t.Fatalf("dash must not be accepted as a score, got %s", repliesText(replies))
	}
	send(t, e, 9, "75")
	replies = send(t, e, 9, "-")
	if repliesText(replies) != textResultsPlaceInvalid {
		t.Fatalf("dash must not be accepted as a place, got %s", repliesText(replies))
	}
	send(t, e, 9, "2")
	send(t, e, 9, "-")

	replies = send(t, e, 9, "стоп")
	if !strings.Contains(repliesText(replies), "2") {
		t.Fatalf("expected summary with count 2, got %s", repliesText(replies))
	}
	if e.InProgress(9) {
		t.Fatal("conversation should be finished")
	}

	if len(store.results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(store.results))
	}
	first, second := store.results[0], store.results[1]
	if first.OlympiadID != 1 || second.OlympiadID != 1 {
		t.Fatalf("olympiad must be retained across the loop: %+v %+v", first, second)
	}
	if first.Score == nil || *first.Score != 98 || first.Place == nil || *first.Place != 1 {
		t.Fatalf("first result stored incorrectly: %+v", first)
	}
	if first.DiplomaLink == nil || *first.DiplomaLink != "https://example.org/diploma/1" {
		t.Fatalf("diploma link missing: %+v", first)
	}
	if second.Score == nil || *second.Score != 75 || second.Place == nil || *second.Place != 2 {
		t.Fatalf("second result stored incorrectly: %+v", second)
	}
	if second.DiplomaLink != nil {
		t.Fatalf("dash diploma must store NULL: %+v", second)
	}
}

func TestAddResultsWithoutOlympiads(t *testing.T) {
	e := newTestEngine(newFakeStore())

	replies, err := e.StartAddResults(context.Background(), 5)
	if err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}
	if repliesText(replies) != textResultsNoOlympiads {
		t.Fatalf("expected no-olympiads message, got %s", repliesText(replies))
	}
	if e.InProgress(5) {
		t.Fatal("no conversation should start without olympiads")
	}
}

func TestCancelAbortsAnyFlow(t *testing.T) {
	store := newFakeStore()
	store.olympiads[1] = storage.Olympiad{ID: 1, Name: "Тест", Date: "2025-01-01"}
	e := newTestEngine(store)

	if _, err := e.StartAddResults(context.Background(), 3); err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}
	send(t, e, 3, "1")
	send(t, e, 3, "Иванов")

	replies := send(t, e, 3, "/cancel_admin_op")
	if repliesText(replies) != textCancelled {
		t.Fatalf("expected cancel message, got %s", repliesText(replies))
	}
	if e.InProgress(3) {
		t.Fatal("cancel must clear the conversation")
	}
	if len(store.results) != 0 {
		t.Fatal("cancel must not persist partial results")
	}
}

func TestOlympiadLookupFailureKeepsSelection(t *testing.T) {
	store := newFakeStore()
	store.olympiads[1] = storage.Olympiad{ID: 1, Name: "Тест", Date: "2025-01-01"}
	e := newTestEngine(store)

	if _, err := e.StartAddResults(context.Background(), 2); err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}

	store.lookupErr = errors.New("db down")
	replies, err := e.HandleText(context.Background(), 2, "1")
	if err == nil {
		t.Fatal("storage error must be returned")
	}
	if repliesText(replies) != textResultsLookupFailed {
		t.Fatalf("expected lookup failure message, got %s", repliesText(replies))
	}
	if !e.InProgress(2) {
		t.Fatal("flow must stay at the selection step")
	}

	replies = send(t, e, 2, "1")
	if !strings.Contains(repliesText(replies), "Тест") {
		t.Fatalf("expected selection to succeed on retry, got %s", repliesText(replies))
	}
}

func TestResultInsertFailureLoopsForRetry(t *testing.T) {
	store := newFakeStore()
	store.olympiads[1] = storage.Olympiad{ID: 1, Name: "Тест", Date: "2025-01-01"}
	e := newTestEngine(store)

	if _, err := e.StartAddResults(context.Background(), 6); err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}
	send(t, e, 6, "1")
	send(t, e, 6, "Иванов")
	send(t, e, 6, "111-222-333 44")
	send(t, e, 6, "90")
	send(t, e, 6, "2")

	store.insertErr = errors.New("db down")
	replies, err := e.HandleText(context.Background(), 6, "-")
	if err == nil {
		t.Fatal("storage error must be returned")
	}
	if !strings.Contains(repliesText(replies), textResultsSaveFailed) {
		t.Fatalf("expected failure message, got %s", repliesText(replies))
	}
	if !e.InProgress(6) {
		t.Fatal("flow must stay open for a retry")
	}

	// The record can be re-entered against the same olympiad.
	send(t, e, 6, "Иванов")
	send(t, e, 6, "111-222-333 44")
	send(t, e, 6, "90")
	send(t, e, 6, "2")
	send(t, e, 6, "-")

	replies = send(t, e, 6, "стоп")
	if !strings.Contains(repliesText(replies), "1") {
		t.Fatalf("expected one saved result in summary, got %s", repliesText(replies))
	}
	if len(store.results) != 1 || store.results[0].OlympiadID != 1 {
		t.Fatalf("retried record stored incorrectly: %+v", store.results)
	}
}

func TestOlympiadInsertFailureAllowsRetry(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	if _, err := e.StartAddOlympiad(context.Background(), 8); err != nil {
		t.Fatalf("StartAddOlympiad: %v", err)
	}
	send(t, e, 8, "Тестовая олимпиада")
	send(t, e, 8, "2025-05-01")
	send(t, e, 8, "-")

	store.insertErr = errors.New("db down")
	replies, err := e.HandleText(context.Background(), 8, "-")
	if err == nil {
		t.Fatal("storage error must be returned")
	}
	if repliesText(replies) != textOlympiadSaveFailed {
		t.Fatalf("expected failure message, got %s", repliesText(replies))
	}
	if !e.InProgress(8) {
		t.Fatal("flow must stay open for a retry")
	}

	replies = send(t, e, 8, "-")
	if !strings.Contains(repliesText(replies), "сохранена") {
		t.Fatalf("expected success after retry, got %s", repliesText(replies))
	}
	if len(store.olympiads) != 1 {
		t.Fatalf("expected one olympiad, got %d", len(store.olympiads))
	}
}

func TestScoreValidationLoops(t *testing.T) {
	store := newFakeStore()
	store.olympiads[1] = storage.Olympiad{ID: 1, Name: "Тест", Date: "2025-01-01"}
	e := newTestEngine(store)

	if _, err := e.StartAddResults(context.Background(), 4); err != nil {
		t.Fatalf("StartAddResults: %v", err)
	}
	send(t, e, 4, "1")
	send(t, e, 4, "Иванов")
	send(t, e, 4, "111-222-333 44")

	replies := send(t, e, 4, "девяносто")
	if repliesText(replies) != textResultsScoreInvalid {
		t.Fatalf("expected score retry, got %s", repliesText(replies))
	}
	replies = send(t, e, 4, "90")
	if repliesText(replies) != textResultsAskPlace {
		t.Fatalf("expected place prompt, got %s", repliesText(replies))
	}
}
