package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"flytz/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), ".flytz", "flytz.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func corrupt(t *testing.T, s *Store, key string) {
	t.Helper()
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO documents (key, value, updated_at) VALUES (?, ?, ?)`, key, "{not json", time.Now()); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
}

// =============================================================================
// STORE CREATION AND LIFECYCLE TESTS
// =============================================================================

func TestNewStore(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if filepath.Base(s.Path()) != "flytz.db" {
		t.Errorf("unexpected path %s", s.Path())
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "flytz.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveStrategy(types.SavedStrategy{ID: "a", Name: "Tokyo"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s2.Close() })
	got, err := s2.GetStrategy("a")
	if err != nil {
		t.Fatalf("GetStrategy after reopen: %v", err)
	}
	if got.Name != "Tokyo" {
		t.Errorf("expected Tokyo, got %s", got.Name)
	}
}

// =============================================================================
// SAVED STRATEGY TESTS
// =============================================================================

func TestSaveStrategy_ReplaceOrAppend(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, st := range []types.SavedStrategy{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "second"},
		{ID: "a", Name: "first, renamed"},
	} {
		if err := s.SaveStrategy(st); err != nil {
			t.Fatalf("SaveStrategy: %v", err)
		}
	}

	all, err := s.ListStrategies()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 strategies, got %d", len(all))
	}
	if all[0].ID != "a" || all[0].Name != "first, renamed" {
		t.Errorf("replace should keep position: %+v", all[0])
	}
	if all[1].ID != "b" {
		t.Errorf("expected b second, got %s", all[1].ID)
	}
}

func TestSaveStrategy_RequiresID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if err := s.SaveStrategy(types.SavedStrategy{Name: "nameless"}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestListStrategies_EmptyIsNonNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	all, err := s.ListStrategies()
	if err != nil {
		t.Fatal(err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", all)
	}
}

func TestGetStrategy_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if _, err := s.GetStrategy("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStrategy(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	ok, err := s.DeleteStrategy("a")
	if err != nil || ok {
		t.Errorf("delete on empty store: ok=%v err=%v", ok, err)
	}

	_ = s.SaveStrategy(types.SavedStrategy{ID: "a"})
	_ = s.SaveStrategy(types.SavedStrategy{ID: "b"})

	ok, err = s.DeleteStrategy("a")
	if err != nil || !ok {
		t.Fatalf("delete a: ok=%v err=%v", ok, err)
	}
	ok, _ = s.DeleteStrategy("zzz")
	if !ok {
		t.Error("unknown id in a non-empty collection still succeeds")
	}

	all, _ := s.ListStrategies()
	if len(all) != 1 || all[0].ID != "b" {
		t.Errorf("expected only b, got %+v", all)
	}
}

func TestStrategies_CorruptedDocument(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	corrupt(t, s, KeyStrategies)

	all, err := s.ListStrategies()
	if err != nil {
		t.Fatalf("corruption must not surface as an error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty, got %d", len(all))
	}
	if ok, _ := s.DeleteStrategy("a"); ok {
		t.Error("delete on corrupted collection should report false")
	}

	if err := s.SaveStrategy(types.SavedStrategy{ID: "fresh"}); err != nil {
		t.Fatal(err)
	}
	all, _ = s.ListStrategies()
	if len(all) != 1 || all[0].ID != "fresh" {
		t.Errorf("save should reset corrupted collection, got %+v", all)
	}
}

func TestConcurrentSaves(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := s.SaveStrategy(types.SavedStrategy{ID: id}); err != nil {
				t.Errorf("save %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	all, _ := s.ListStrategies()
	if len(all) != 20 {
		t.Errorf("expected 20 strategies, got %d", len(all))
	}
}

// =============================================================================
// CHAT HISTORY TESTS
// =============================================================================

func TestChatHistory_SeedsGreeting(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	msgs, err := s.ChatHistory("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Role != types.RoleModel || msgs[0].Text != ChatGreeting {
		t.Errorf("expected greeting, got %+v", msgs)
	}
}

func TestAppendAndClearChat(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.AppendChat("s1",
		types.ChatMessage{Role: types.RoleUser, Text: "visa?"},
		types.ChatMessage{Role: types.RoleModel, Text: "no"},
	)
	if err != nil {
		t.Fatal(err)
	}
	msgs, _ := s.ChatHistory("s1")
	if len(msgs) != 3 || msgs[0].Text != ChatGreeting || msgs[2].Text != "no" {
		t.Errorf("unexpected history %+v", msgs)
	}

	other, _ := s.ChatHistory("s2")
	if len(other) != 1 {
		t.Errorf("histories must be per strategy, got %+v", other)
	}

	if err := s.ClearChat("s1"); err != nil {
		t.Fatal(err)
	}
	msgs, _ = s.ChatHistory("s1")
	if len(msgs) != 1 || msgs[0].Text != ChatCleared {
		t.Errorf("expected cleared notice, got %+v", msgs)
	}
}

// =============================================================================
// ALERT, WAITLIST AND SETTINGS TESTS
// =============================================================================

func TestAlerts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if _, err := s.SetAlert("s1", 0); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := s.Alert("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := s.SetAlert("s2", 700); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetAlert("s1", 500); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetAlert("s1", 450); err != nil {
		t.Fatal(err)
	}

	a, err := s.Alert("s1")
	if err != nil {
		t.Fatal(err)
	}
	if a.TargetPrice != 450 || !a.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected alert %+v", a)
	}

	list, _ := s.ListAlerts()
	if len(list) != 2 || list[0].StrategyID != "s1" {
		t.Errorf("unexpected alert list %+v", list)
	}

	if err := s.DeleteAlert("s1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAlert("never"); err != nil {
		t.Errorf("deleting a missing alert: %v", err)
	}
	if _, err := s.Alert("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted, got %v", err)
	}
}

func TestWaitlist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.AddWaitlist("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := s.AddWaitlist("  a@example.com "); err != nil {
		t.Fatal(err)
	}
	e, err := s.AddWaitlist("Jo <jo@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	if e.Email != "jo@example.com" || e.Synced {
		t.Errorf("unexpected entry %+v", e)
	}

	list, _ := s.Waitlist()
	if len(list) != 2 || list[0].Email != "a@example.com" {
		t.Errorf("unexpected waitlist %+v", list)
	}

	if err := s.ClearWaitlist(); err != nil {
		t.Fatal(err)
	}
	list, _ = s.Waitlist()
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil waitlist, got %#v", list)
	}
}

func TestSettings(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.Settings()
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty settings, got %v %v", got, err)
	}

	if err := s.SaveSettings(map[string]string{"API_KEY": "k1", "VITE_AMADEUS_CLIENT_ID": " id "}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSettings(map[string]string{"API_KEY": ""}); err != nil {
		t.Fatal(err)
	}

	got, _ = s.Settings()
	if _, ok := got["API_KEY"]; ok {
		t.Error("empty value should remove the key")
	}
	if got["VITE_AMADEUS_CLIENT_ID"] != "id" {
		t.Errorf("expected trimmed id, got %q", got["VITE_AMADEUS_CLIENT_ID"])
	}
}

func TestRawDocumentRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.RawDocument(KeyStrategies); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.ImportDocument(KeyStrategies, []byte("nope")); err == nil {
		t.Error("expected invalid JSON error")
	}
	if err := s.ImportDocument(KeyStrategies, []byte(`[{"id":"imp","name":"Imported"}]`)); err != nil {
		t.Fatal(err)
	}
	st, err := s.GetStrategy("imp")
	if err != nil || st.Name != "Imported" {
		t.Errorf("imported strategy not readable: %+v %v", st, err)
	}
	raw, err := s.RawDocument(KeyStrategies)
	if err != nil || len(raw) == 0 {
		t.Errorf("RawDocument: %v", err)
	}
}
