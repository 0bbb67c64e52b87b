package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

func fruitSnapshot() scoring.Snapshot {
	return scoring.Snapshot{
		Choices:  []string{"apple", "orange"},
		Criteria: []string{"taste", "color"},
		Weights:  map[string]float64{"taste": 4, "color": 7},
		Ratings:  map[string]map[string]float64{"apple": {"taste": 6}},
		Curves:   map[string][]scoring.Point{},
	}
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sess := &Session{Name: "fruit", Snapshot: fruitSnapshot(), Revision: 1}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Fatal("expected an ID to be assigned")
	}
	if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Name != "fruit" || got.Revision != 1 {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.Snapshot.Ratings["apple"]["taste"] != 6 {
		t.Errorf("expected apple taste 6, got %v", got.Snapshot.Ratings)
	}

	// returned sessions are copies
	got.Snapshot.Ratings["apple"]["taste"] = 1
	got.Snapshot.Choices[0] = "pear"
	again, _ := s.GetSession(ctx, sess.ID)
	if again.Snapshot.Ratings["apple"]["taste"] != 6 || again.Snapshot.Choices[0] != "apple" {
		t.Error("mutating a returned session changed the store")
	}

	// and so are saved ones
	sess.Snapshot.Weights["taste"] = 9
	again, _ = s.GetSession(ctx, sess.ID)
	if again.Snapshot.Weights["taste"] != 4 {
		t.Error("mutating a saved session changed the store")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.GetSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestMemoryStoreUpsertKeepsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	sess := &Session{Name: "a", Snapshot: fruitSnapshot()}
	_ = s.SaveSession(ctx, sess)

	clock = clock.Add(time.Hour)
	sess.Revision = 2
	_ = s.SaveSession(ctx, sess)

	got, _ := s.GetSession(ctx, sess.ID)
	if !got.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt changed on update: %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(clock) {
		t.Errorf("expected UpdatedAt %v, got %v", clock, got.UpdatedAt)
	}
	if got.Revision != 2 {
		t.Errorf("expected revision 2, got %d", got.Revision)
	}
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	names := []string{"first", "second", "third"}
	for _, n := range names {
		clock = clock.Add(time.Minute)
		if err := s.SaveSession(ctx, &Session{Name: n, Snapshot: fruitSnapshot()}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListSessions(ctx, SessionFilter{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].Name != "third" || all[2].Name != "first" {
		t.Errorf("expected most recently updated first, got %s..%s", all[0].Name, all[2].Name)
	}

	page, _ := s.ListSessions(ctx, SessionFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Name != "second" {
		t.Errorf("unexpected page: %+v", page)
	}

	byName, _ := s.ListSessions(ctx, SessionFilter{Name: "first"})
	if len(byName) != 1 {
		t.Errorf("expected 1 session named first, got %d", len(byName))
	}

	past, _ := s.ListSessions(ctx, SessionFilter{Offset: 10})
	if len(past) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(past))
	}
}

func TestMemoryStoreEventsAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sess := &Session{Name: "fruit", Snapshot: fruitSnapshot()}
	_ = s.SaveSession(ctx, sess)

	for i := 1; i <= 5; i++ {
		e := &SessionEvent{SessionID: sess.ID, Event: "rating_set", Revision: int64(i)}
		if err := s.CreateSessionEvent(ctx, e); err != nil {
			t.Fatalf("CreateSessionEvent failed: %v", err)
		}
		if e.ID == uuid.Nil {
			t.Fatal("expected event ID")
		}
	}

	recent, err := s.GetSessionEvents(ctx, sess.ID, 2)
	if err != nil {
		t.Fatalf("GetSessionEvents failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Revision != 4 || recent[1].Revision != 5 {
		t.Errorf("expected the last two events oldest first, got %+v", recent)
	}

	stats, _ := s.GetStats(ctx)
	if stats.TotalSessions != 1 || stats.TotalEvents != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	got, _ := s.GetSession(ctx, sess.ID)
	if got != nil {
		t.Error("expected session to be gone")
	}
	events, _ := s.GetSessionEvents(ctx, sess.ID, 0)
	if len(events) != 0 {
		t.Errorf("expected events to be dropped with the session, got %d", len(events))
	}
}
