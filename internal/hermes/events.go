package hermes

import "time"

// MatrixChangedEvent is published after every successful mutation, carrying
// the refreshed percentages so consumers can re-render without a read-back.
type MatrixChangedEvent struct {
	SessionID   string             `json:"session_id"`
	Change      string             `json:"change"`
	Names       []string           `json:"names,omitempty"`
	Revision    int64              `json:"revision"`
	Percentages map[string]float64 `json:"percentages"`
	MaxScore    float64            `json:"max_score"`
	Timestamp   time.Time          `json:"timestamp"`
}

type MatrixCreatedEvent struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type MatrixDeletedEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type MatrixEvictedEvent struct {
	SessionID string    `json:"session_id"`
	IdleFor   string    `json:"idle_for"`
	Timestamp time.Time `json:"timestamp"`
}
