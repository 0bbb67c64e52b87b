package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

// Results is everything a presentation layer needs to re-render after a
// mutation.
type Results struct {
	SessionID    uuid.UUID          `json:"session_id"`
	Revision     int64              `json:"revision"`
	Percentages  map[string]float64 `json:"percentages"`
	MaxScore     float64            `json:"max_score"`
	WeightShares map[string]float64 `json:"weight_shares"`
	Ranking      []scoring.Result   `json:"ranking"`
	Frontier     []string           `json:"frontier"`
}

// View is a full read of one session.
type View struct {
	ID             uuid.UUID        `json:"session_id"`
	Name           string           `json:"name"`
	ExcludeUnrated bool             `json:"exclude_unrated"`
	Revision       int64            `json:"revision"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Snapshot       scoring.Snapshot `json:"snapshot"`
	Results        *Results         `json:"results"`
}

type Summary struct {
	ID                 uuid.UUID `json:"session_id"`
	Name               string    `json:"name"`
	Revision           int64     `json:"revision"`
	Choices            int       `json:"choices"`
	Criteria           int       `json:"criteria"`
	ContinuousCriteria int       `json:"continuous_criteria"`
	Live               bool      `json:"live"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ChoiceResult explains one choice's percentage.
type ChoiceResult struct {
	Choice     string           `json:"choice"`
	Percentage float64          `json:"percentage"`
	Score      float64          `json:"score"`
	MaxScore   float64          `json:"max_score"`
	Factors    []scoring.Factor `json:"factors"`
}

type Stats struct {
	LiveSessions   int `json:"live_sessions"`
	StoredSessions int `json:"stored_sessions"`
	TotalEvents    int `json:"total_events"`
	MaxSessions    int `json:"max_sessions"`
}

// results reads the matrix. Callers hold e.mu.
func (e *entry) results() *Results {
	choices := e.matrix.Choices()
	pct := make(map[string]float64, len(choices))
	for _, c := range choices {
		pct[c], _ = e.matrix.Percentage(c)
	}
	frontier := e.matrix.Frontier()
	if frontier == nil {
		frontier = []string{}
	}
	return &Results{
		SessionID:    e.id,
		Revision:     e.revision,
		Percentages:  pct,
		MaxScore:     e.matrix.MaxScore(),
		WeightShares: e.matrix.WeightShares(),
		Ranking:      e.matrix.Ranking(),
		Frontier:     frontier,
	}
}

// view reads the session. Callers hold e.mu.
func (e *entry) view() *View {
	return &View{
		ID:             e.id,
		Name:           e.name,
		ExcludeUnrated: e.excludeUnrated,
		Revision:       e.revision,
		CreatedAt:      e.createdAt,
		UpdatedAt:      e.updatedAt,
		Snapshot:       e.matrix.Snapshot(),
		Results:        e.results(),
	}
}
