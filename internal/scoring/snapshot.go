package scoring

import (
	"fmt"
	"sort"
)

// Snapshot is the serialisable state of a Matrix. Unset weights and ratings
// are simply absent. Percentages are derived and never stored.
type Snapshot struct {
	Choices            []string                      `json:"choices" yaml:"choices"`
	Criteria           []string                      `json:"criteria" yaml:"criteria"`
	ContinuousCriteria []string                      `json:"continuous_criteria" yaml:"continuous_criteria"`
	Weights            map[string]float64            `json:"weights,omitempty" yaml:"weights,omitempty"`
	Ratings            map[string]map[string]float64 `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	Curves             map[string][]Point            `json:"curves,omitempty" yaml:"curves,omitempty"`
}

// Snapshot captures the matrix state.
func (m *Matrix) Snapshot() Snapshot {
	s := Snapshot{
		Choices:            m.Choices(),
		Criteria:           m.Criteria(),
		ContinuousCriteria: m.ContinuousCriteria(),
		Weights:            make(map[string]float64),
		Ratings:            make(map[string]map[string]float64),
		Curves:             make(map[string][]Point),
	}
	for c, w := range m.weights {
		if w != nil {
			s.Weights[c] = *w
		}
	}
	for choice, row := range m.ratings {
		for c, v := range row {
			if v == nil {
				continue
			}
			if s.Ratings[choice] == nil {
				s.Ratings[choice] = make(map[string]float64)
			}
			s.Ratings[choice][c] = *v
		}
	}
	for c, curve := range m.curves {
		s.Curves[c] = curve.Points()
	}
	return s
}

// FromSnapshot rebuilds a matrix by replaying s through the public
// mutators, so a snapshot that violates any invariant is rejected.
func FromSnapshot(s Snapshot, opts ...Option) (*Matrix, error) {
	m := NewMatrix(opts...)

	for _, c := range s.Criteria {
		if err := m.AddCriterion(c, false); err != nil {
			return nil, fmt.Errorf("restore criterion: %w", err)
		}
	}
	for _, c := range s.ContinuousCriteria {
		if err := m.AddCriterion(c, true); err != nil {
			return nil, fmt.Errorf("restore continuous criterion: %w", err)
		}
	}
	for _, c := range sortedKeys(s.Curves) {
		curve, err := m.Curve(c)
		if err != nil {
			return nil, fmt.Errorf("restore curve: %w", err)
		}
		for _, p := range s.Curves[c] {
			if err := curve.AddPoint(p.Value, p.Score); err != nil {
				return nil, fmt.Errorf("restore curve %q: %w", c, err)
			}
		}
	}
	for _, choice := range s.Choices {
		if err := m.AddChoice(choice); err != nil {
			return nil, fmt.Errorf("restore choice: %w", err)
		}
	}
	for _, c := range sortedKeys(s.Weights) {
		if err := m.SetWeight(c, s.Weights[c]); err != nil {
			return nil, fmt.Errorf("restore weight %q: %w", c, err)
		}
	}
	for _, choice := range sortedKeys(s.Ratings) {
		row := s.Ratings[choice]
		for _, c := range sortedKeys(row) {
			if err := m.SetRating(choice, c, row[c]); err != nil {
				return nil, fmt.Errorf("restore rating %q/%q: %w", choice, c, err)
			}
		}
	}
	return m, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
