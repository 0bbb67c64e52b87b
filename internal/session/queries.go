package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

func (m *Manager) Results(ctx context.Context, id uuid.UUID) (*Results, error) {
	var res *Results
	err := m.withEntry(ctx, id, func(e *entry) error {
		res = e.results()
		return nil
	})
	return res, err
}

// Breakdown explains one choice's percentage criterion by criterion.
func (m *Manager) Breakdown(ctx context.Context, id uuid.UUID, choice string) (*ChoiceResult, error) {
	var res *ChoiceResult
	err := m.withEntry(ctx, id, func(e *entry) error {
		factors, err := e.matrix.Breakdown(choice)
		if err != nil {
			return err
		}
		pct, _ := e.matrix.Percentage(choice)
		score, _ := e.matrix.Score(choice)
		res = &ChoiceResult{
			Choice:     choice,
			Percentage: pct,
			Score:      score,
			MaxScore:   e.matrix.MaxScore(),
			Factors:    factors,
		}
		return nil
	})
	return res, err
}

func (m *Manager) CurvePoints(ctx context.Context, id uuid.UUID, criterion string) ([]scoring.Point, error) {
	var pts []scoring.Point
	err := m.withEntry(ctx, id, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		pts = curve.Points()
		return nil
	})
	return pts, err
}

// Lookup scores a raw measured value through a criterion's curve.
func (m *Manager) Lookup(ctx context.Context, id uuid.UUID, criterion string, value float64) (float64, error) {
	var score float64
	err := m.withEntry(ctx, id, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		score = curve.Lookup(value)
		return nil
	})
	return score, err
}

// ReverseLookup finds the smallest value a criterion's curve maps to score.
func (m *Manager) ReverseLookup(ctx context.Context, id uuid.UUID, criterion string, score float64) (float64, bool, error) {
	var (
		value float64
		ok    bool
	)
	err := m.withEntry(ctx, id, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		value, ok = curve.ReverseLookup(score)
		return nil
	})
	return value, ok, err
}
