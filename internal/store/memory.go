package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

// MemoryStore is a process-local Store used when no database is configured.
// Everything it hands out is a copy.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	events   map[uuid.UUID][]*SessionEvent
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*Session),
		events:   make(map[uuid.UUID][]*SessionEvent),
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if existing, ok := m.sessions[s.ID]; ok {
		s.CreatedAt = existing.CreatedAt
	} else if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (m *MemoryStore) ListSessions(_ context.Context, filter SessionFilter) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		out = append(out, copySession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.events, id)
	return nil
}

func (m *MemoryStore) CreateSessionEvent(_ context.Context, e *SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.New()
	e.CreatedAt = m.now().UTC()
	cp := *e
	cp.Payload = maps.Clone(e.Payload)
	m.events[e.SessionID] = append(m.events[e.SessionID], &cp)
	return nil
}

// GetSessionEvents returns the most recent events, oldest first.
func (m *MemoryStore) GetSessionEvents(_ context.Context, sessionID uuid.UUID, limit int) ([]*SessionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.events[sessionID]
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]*SessionEvent, 0, len(events))
	for _, e := range events {
		cp := *e
		cp.Payload = maps.Clone(e.Payload)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) GetStats(_ context.Context) (*SessionStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &SessionStats{TotalSessions: len(m.sessions)}
	for _, evs := range m.events {
		stats.TotalEvents += len(evs)
	}
	return stats, nil
}

func (m *MemoryStore) Close() error { return nil }

func copySession(s *Session) *Session {
	cp := *s
	cp.Snapshot = copySnapshot(s.Snapshot)
	return &cp
}

func copySnapshot(s scoring.Snapshot) scoring.Snapshot {
	out := scoring.Snapshot{
		Choices:            slices.Clone(s.Choices),
		Criteria:           slices.Clone(s.Criteria),
		ContinuousCriteria: slices.Clone(s.ContinuousCriteria),
		Weights:            maps.Clone(s.Weights),
	}
	if s.Ratings != nil {
		out.Ratings = make(map[string]map[string]float64, len(s.Ratings))
		for k, row := range s.Ratings {
			out.Ratings[k] = maps.Clone(row)
		}
	}
	if s.Curves != nil {
		out.Curves = make(map[string][]scoring.Point, len(s.Curves))
		for k, pts := range s.Curves {
			out.Curves[k] = slices.Clone(pts)
		}
	}
	return out
}
