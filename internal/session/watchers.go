package session

import (
	"context"

	"github.com/google/uuid"
)

// Watch streams the results of every applied mutation of a session. The
// channel holds at most one pending update; a slow reader only ever sees the
// latest results. The channel is closed when the session is deleted or the
// returned cancel func is called.
func (m *Manager) Watch(ctx context.Context, id uuid.UUID) (<-chan *Results, func(), error) {
	ch := make(chan *Results, 1)
	err := m.withEntry(ctx, id, func(e *entry) error {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		if m.watchers[id] == nil {
			m.watchers[id] = make(map[chan *Results]struct{})
		}
		m.watchers[id][ch] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		if _, ok := m.watchers[id][ch]; !ok {
			return
		}
		delete(m.watchers[id], ch)
		if len(m.watchers[id]) == 0 {
			delete(m.watchers, id)
		}
		close(ch)
	}
	return ch, cancel, nil
}

func (m *Manager) notifyWatchers(id uuid.UUID, res *Results) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for ch := range m.watchers[id] {
		select {
		case <-ch:
		default:
		}
		ch <- res
	}
}

func (m *Manager) closeWatchers(id uuid.UUID) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for ch := range m.watchers[id] {
		close(ch)
	}
	delete(m.watchers, id)
}
