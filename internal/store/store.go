package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

// Session is the persisted form of one decision matrix.
type Session struct {
	ID             uuid.UUID        `json:"session_id"`
	Name           string           `json:"name"`
	ExcludeUnrated bool             `json:"exclude_unrated"`
	Snapshot       scoring.Snapshot `json:"snapshot"`
	Revision       int64            `json:"revision"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type SessionFilter struct {
	Name   string
	Limit  int
	Offset int
}

// SessionEvent records one applied mutation.
type SessionEvent struct {
	ID        uuid.UUID              `json:"id"`
	SessionID uuid.UUID              `json:"session_id"`
	Event     string                 `json:"event"`
	Revision  int64                  `json:"revision"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type SessionStats struct {
	TotalSessions int `json:"total_sessions"`
	TotalEvents   int `json:"total_events"`
}

// Store keeps session snapshots. Lookups of missing sessions return nil, nil.
type Store interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	CreateSessionEvent(ctx context.Context, e *SessionEvent) error
	GetSessionEvents(ctx context.Context, sessionID uuid.UUID, limit int) ([]*SessionEvent, error)

	GetStats(ctx context.Context) (*SessionStats, error)

	Close() error
}

const defaultListLimit = 100
