package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/config"
	"github.com/MikeSquared-Agency/Verdict/internal/hermes"
	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
	"github.com/MikeSquared-Agency/Verdict/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager hosts decision matrices. Each live matrix is guarded by its own
// mutex; every successful mutation is persisted to the store, recorded as a
// session event and published to hermes before the refreshed results are
// returned.
type Manager struct {
	store  store.Store
	hermes hermes.Client
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	live    map[uuid.UUID]*entry
	deletes uint64 // bumped by Delete

	watchMu  sync.Mutex
	watchers map[uuid.UUID]map[chan *Results]struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

type entry struct {
	mu             sync.Mutex
	id             uuid.UUID
	name           string
	excludeUnrated bool
	matrix         *scoring.Matrix
	revision       int64
	createdAt      time.Time
	updatedAt      time.Time
	gone           bool // evicted or deleted, holders must reload

	lastUsed atomic.Int64 // unix nanos
}

func (e *entry) touch(t time.Time) { e.lastUsed.Store(t.UnixNano()) }

func (e *entry) idleSince() time.Time { return time.Unix(0, e.lastUsed.Load()) }

func New(s store.Store, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		store:    s,
		hermes:   h,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		live:     make(map[uuid.UUID]*entry),
		watchers: make(map[uuid.UUID]map[chan *Results]struct{}),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the idle sweeper.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.sweepLoop(ctx)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

// CreateRequest describes a new session. A nil Snapshot starts an empty
// matrix; a nil ExcludeUnrated falls back to the configured default.
type CreateRequest struct {
	Name           string
	Snapshot       *scoring.Snapshot
	ExcludeUnrated *bool
}

func (m *Manager) Create(ctx context.Context, req CreateRequest) (*View, error) {
	exclude := m.cfg.Scoring.ExcludeUnrated
	if req.ExcludeUnrated != nil {
		exclude = *req.ExcludeUnrated
	}

	matrix := scoring.NewMatrix(matrixOptions(exclude)...)
	if req.Snapshot != nil {
		restored, err := scoring.FromSnapshot(*req.Snapshot, matrixOptions(exclude)...)
		if err != nil {
			return nil, err
		}
		matrix = restored
	}

	sess := &store.Session{
		ID:             uuid.New(),
		Name:           req.Name,
		ExcludeUnrated: exclude,
		Snapshot:       matrix.Snapshot(),
	}
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	e := &entry{
		id:             sess.ID,
		name:           sess.Name,
		excludeUnrated: exclude,
		matrix:         matrix,
		createdAt:      sess.CreatedAt,
		updatedAt:      sess.UpdatedAt,
	}
	e.touch(m.now())
	m.recordEvent(ctx, e, "created", nil)
	m.insert(e, nil)

	if m.hermes != nil {
		if err := m.hermes.Publish(hermes.SubjectMatrixCreated(e.id.String()), hermes.MatrixCreatedEvent{
			SessionID: e.id.String(),
			Name:      e.name,
			Timestamp: m.now().UTC(),
		}); err != nil {
			m.logger.Warn("failed to publish created event", "session_id", e.id, "error", err)
		}
	}
	sessionsCreated.Inc()
	m.logger.Info("session created", "session_id", e.id, "name", e.name, "exclude_unrated", exclude)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view(), nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	var v *View
	err := m.withEntry(ctx, id, func(e *entry) error {
		v = e.view()
		return nil
	})
	return v, err
}

// List returns stored sessions, live or not.
func (m *Manager) List(ctx context.Context, filter store.SessionFilter) ([]Summary, error) {
	sessions, err := m.store.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		_, live := m.live[s.ID]
		out = append(out, Summary{
			ID:                 s.ID,
			Name:               s.Name,
			Revision:           s.Revision,
			Choices:            len(s.Snapshot.Choices),
			Criteria:           len(s.Snapshot.Criteria),
			ContinuousCriteria: len(s.Snapshot.ContinuousCriteria),
			Live:               live,
			UpdatedAt:          s.UpdatedAt,
		})
	}
	return out, nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	err := m.withEntry(ctx, id, func(e *entry) error {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		e.gone = true
		m.mu.Lock()
		m.deletes++
		m.mu.Unlock()
		m.drop(e)
		return nil
	})
	if err != nil {
		return err
	}
	m.closeWatchers(id)

	if m.hermes != nil {
		if err := m.hermes.Publish(hermes.SubjectMatrixDeleted(id.String()), hermes.MatrixDeletedEvent{
			SessionID: id.String(),
			Timestamp: m.now().UTC(),
		}); err != nil {
			m.logger.Warn("failed to publish deleted event", "session_id", id, "error", err)
		}
	}
	m.logger.Info("session deleted", "session_id", id)
	return nil
}

// Evict drops a live session from memory. Its snapshot stays in the store.
func (m *Manager) Evict(id uuid.UUID) error {
	m.mu.RLock()
	e, ok := m.live[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrSessionNotFound
	}
	m.evictLocked(e, "admin")
	return nil
}

// Stats combines the in-memory and stored session counts.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	stored, err := m.store.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	m.mu.RLock()
	live := len(m.live)
	m.mu.RUnlock()
	return &Stats{
		LiveSessions:   live,
		StoredSessions: stored.TotalSessions,
		TotalEvents:    stored.TotalEvents,
		MaxSessions:    m.cfg.Sessions.MaxSessions,
	}, nil
}

// History returns the most recent mutations of a session, oldest first.
func (m *Manager) History(ctx context.Context, id uuid.UUID, limit int) ([]*store.SessionEvent, error) {
	sess, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	events, err := m.store.GetSessionEvents(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("get session events: %w", err)
	}
	return events, nil
}

// withEntry runs fn with the session's lock held, hydrating it from the
// store when it is not live.
func (m *Manager) withEntry(ctx context.Context, id uuid.UUID, fn func(e *entry) error) error {
	for {
		e, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		e.mu.Lock()
		if e.gone {
			e.mu.Unlock()
			continue
		}
		e.touch(m.now())
		err = fn(e)
		e.mu.Unlock()
		return err
	}
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*entry, error) {
	for {
		m.mu.RLock()
		e, ok := m.live[id]
		gen := m.deletes
		m.mu.RUnlock()
		if ok {
			return e, nil
		}

		sess, err := m.store.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if sess == nil {
			return nil, ErrSessionNotFound
		}
		matrix, err := scoring.FromSnapshot(sess.Snapshot, matrixOptions(sess.ExcludeUnrated)...)
		if err != nil {
			return nil, fmt.Errorf("restore session %s: %w", id, err)
		}

		e = &entry{
			id:             sess.ID,
			name:           sess.Name,
			excludeUnrated: sess.ExcludeUnrated,
			matrix:         matrix,
			revision:       sess.Revision,
			createdAt:      sess.CreatedAt,
			updatedAt:      sess.UpdatedAt,
		}
		e.touch(m.now())
		if live, ok := m.insert(e, &gen); ok {
			m.logger.Debug("session hydrated", "session_id", id, "revision", live.revision)
			return live, nil
		}
		// a delete finished while the row was being read; the store decides again
	}
}

// insert adds e to the live set unless another goroutine won the race, and
// returns whichever entry is live. With a non-nil gen it refuses e when any
// session was deleted after gen was read, as e may hold a deleted row.
func (m *Manager) insert(e *entry, gen *uint64) (*entry, bool) {
	m.mu.Lock()
	if existing, ok := m.live[e.id]; ok {
		m.mu.Unlock()
		return existing, true
	}
	if gen != nil && m.deletes != *gen {
		m.mu.Unlock()
		return nil, false
	}
	m.live[e.id] = e
	over := m.cfg.Sessions.MaxSessions > 0 && len(m.live) > m.cfg.Sessions.MaxSessions
	m.mu.Unlock()
	liveSessions.Inc()

	if over {
		m.evictOldest(e.id)
	}
	return e, true
}

// drop removes e from the live set. Callers hold e.mu.
func (m *Manager) drop(e *entry) {
	m.mu.Lock()
	removed := m.live[e.id] == e
	if removed {
		delete(m.live, e.id)
	}
	m.mu.Unlock()
	if removed {
		liveSessions.Dec()
	}
}

func matrixOptions(excludeUnrated bool) []scoring.Option {
	if excludeUnrated {
		return []scoring.Option{scoring.WithUnratedExcluded()}
	}
	return nil
}
