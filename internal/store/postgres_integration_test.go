//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE verdict_session_events CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE verdict_sessions CASCADE")
		s.Close()
	})

	return s
}

func TestSaveAndGetSession(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	sess := &Session{
		Name:     "Integration Matrix",
		Snapshot: fruitSnapshot(),
		Revision: 3,
	}
	sess.Snapshot.ContinuousCriteria = []string{"price"}
	sess.Snapshot.Curves = map[string][]scoring.Point{"price": {{Value: 0, Score: 10}, {Value: 100, Score: 0}}}

	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Fatal("expected non-nil session ID after save")
	}
	if sess.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Name != "Integration Matrix" {
		t.Errorf("expected name 'Integration Matrix', got '%s'", got.Name)
	}
	if got.Revision != 3 {
		t.Errorf("expected revision 3, got %d", got.Revision)
	}
	if len(got.Snapshot.Curves["price"]) != 2 {
		t.Errorf("expected 2 curve points, got %v", got.Snapshot.Curves)
	}

	// the stored snapshot restores to the same matrix
	m, err := scoring.FromSnapshot(got.Snapshot)
	if err != nil {
		t.Fatalf("FromSnapshot failed: %v", err)
	}
	p, _ := m.Percentage("apple")
	if p < 21.81 || p > 21.82 {
		t.Errorf("expected apple at 21.82%%, got %g", p)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := setupTestDB(t)

	got, err := s.GetSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != nil {
		t.Fatal("expected nil session for unknown ID")
	}
}

func TestSaveSessionUpserts(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	sess := &Session{Name: "v1", Snapshot: fruitSnapshot()}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	created := sess.CreatedAt

	sess.Name = "v2"
	sess.Revision = 7
	sess.Snapshot.Weights["taste"] = 1
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetSession(ctx, sess.ID)
	if got.Name != "v2" || got.Revision != 7 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Snapshot.Weights["taste"] != 1 {
		t.Errorf("expected weight 1, got %v", got.Snapshot.Weights)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: %v -> %v", created, got.CreatedAt)
	}
}

func TestListAndDeleteSessions(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, n := range []string{"a", "b", "c"} {
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

	named, _ := s.ListSessions(ctx, SessionFilter{Name: "b"})
	if len(named) != 1 {
		t.Fatalf("expected 1 session named b, got %d", len(named))
	}

	if err := s.DeleteSession(ctx, named[0].ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	all, _ = s.ListSessions(ctx, SessionFilter{})
	if len(all) != 2 {
		t.Errorf("expected 2 sessions after delete, got %d", len(all))
	}
}

func TestSessionEvents(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	sess := &Session{Name: "events", Snapshot: fruitSnapshot()}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		e := &SessionEvent{
			SessionID: sess.ID,
			Event:     "weight_set",
			Revision:  int64(i),
			Payload:   map[string]interface{}{"criterion": "taste"},
		}
		if err := s.CreateSessionEvent(ctx, e); err != nil {
			t.Fatalf("CreateSessionEvent failed: %v", err)
		}
	}

	events, err := s.GetSessionEvents(ctx, sess.ID, 2)
	if err != nil {
		t.Fatalf("GetSessionEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Revision != 2 || events[1].Revision != 3 {
		t.Errorf("expected revisions 2,3 got %d,%d", events[0].Revision, events[1].Revision)
	}
	if events[1].Payload["criterion"] != "taste" {
		t.Errorf("expected payload criterion taste, got %v", events[1].Payload)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalSessions != 1 || stats.TotalEvents != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// events cascade with the session
	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	events, _ = s.GetSessionEvents(ctx, sess.ID, 0)
	if len(events) != 0 {
		t.Errorf("expected events to cascade, got %d", len(events))
	}
}
