package session

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/hermes"
)

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	interval := m.cfg.SweepInterval()
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				m.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// sweep evicts sessions idle longer than the configured timeout and returns
// how many it dropped. Sessions busy with a call are skipped.
func (m *Manager) sweep() int {
	timeout := m.cfg.IdleTimeout()
	if timeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-timeout)

	m.mu.RLock()
	var idle []*entry
	for _, e := range m.live {
		if e.idleSince().Before(cutoff) {
			idle = append(idle, e)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, e := range idle {
		if !e.mu.TryLock() {
			continue
		}
		if !e.gone && e.idleSince().Before(cutoff) {
			m.evictLocked(e, "idle")
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// evictOldest drops the least recently used live session other than keep.
func (m *Manager) evictOldest(keep uuid.UUID) {
	m.mu.RLock()
	candidates := make([]*entry, 0, len(m.live))
	for _, e := range m.live {
		if e.id != keep {
			candidates = append(candidates, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastUsed.Load() < candidates[j].lastUsed.Load()
	})
	for _, e := range candidates {
		if !e.mu.TryLock() {
			continue
		}
		if !e.gone {
			m.evictLocked(e, "capacity")
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()
	}
}

// evictLocked drops e from memory. Callers hold e.mu. Every applied mutation
// is already in the store, so nothing is written here.
func (m *Manager) evictLocked(e *entry, reason string) {
	e.gone = true
	m.drop(e)
	evictions.WithLabelValues(reason).Inc()

	idleFor := m.now().Sub(e.idleSince()).Round(time.Second)
	m.logger.Info("session evicted", "session_id", e.id, "reason", reason, "idle_for", idleFor)
	if m.hermes != nil {
		if err := m.hermes.Publish(hermes.SubjectMatrixEvicted(e.id.String()), hermes.MatrixEvictedEvent{
			SessionID: e.id.String(),
			IdleFor:   idleFor.String(),
			Timestamp: m.now().UTC(),
		}); err != nil {
			m.logger.Warn("failed to publish evicted event", "session_id", e.id, "error", err)
		}
	}
}
