package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Verdict/internal/hermes"
	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
	"github.com/MikeSquared-Agency/Verdict/internal/store"
)

// Change kinds recorded in session history and carried on update events.
const (
	ChangeChoiceAdded      = "choice_added"
	ChangeChoiceRemoved    = "choice_removed"
	ChangeCriterionAdded   = "criterion_added"
	ChangeCriterionRemoved = "criterion_removed"
	ChangeWeightSet        = "weight_set"
	ChangeWeightCleared    = "weight_cleared"
	ChangeRatingSet        = "rating_set"
	ChangeRatingCleared    = "rating_cleared"
	ChangeRatingsBulk      = "ratings_set"
	ChangePointAdded       = "point_added"
	ChangePointMoved       = "point_moved"
	ChangePointRemoved     = "point_removed"
)

func (m *Manager) AddChoice(ctx context.Context, id uuid.UUID, name string) (*Results, error) {
	return m.apply(ctx, id, ChangeChoiceAdded, []string{name}, func(e *entry) error {
		return e.matrix.AddChoice(name)
	})
}

func (m *Manager) RemoveChoice(ctx context.Context, id uuid.UUID, name string) (*Results, error) {
	return m.apply(ctx, id, ChangeChoiceRemoved, []string{name}, func(e *entry) error {
		return e.matrix.RemoveChoice(name)
	})
}

func (m *Manager) AddCriterion(ctx context.Context, id uuid.UUID, name string, continuous bool) (*Results, error) {
	return m.apply(ctx, id, ChangeCriterionAdded, []string{name}, func(e *entry) error {
		return e.matrix.AddCriterion(name, continuous)
	})
}

func (m *Manager) RemoveCriterion(ctx context.Context, id uuid.UUID, name string) (*Results, error) {
	return m.apply(ctx, id, ChangeCriterionRemoved, []string{name}, func(e *entry) error {
		return e.matrix.RemoveCriterion(name)
	})
}

func (m *Manager) SetWeight(ctx context.Context, id uuid.UUID, criterion string, weight float64) (*Results, error) {
	return m.apply(ctx, id, ChangeWeightSet, []string{criterion}, func(e *entry) error {
		return e.matrix.SetWeight(criterion, weight)
	})
}

func (m *Manager) ClearWeight(ctx context.Context, id uuid.UUID, criterion string) (*Results, error) {
	return m.apply(ctx, id, ChangeWeightCleared, []string{criterion}, func(e *entry) error {
		return e.matrix.ClearWeight(criterion)
	})
}

func (m *Manager) SetRating(ctx context.Context, id uuid.UUID, choice, criterion string, value float64) (*Results, error) {
	return m.apply(ctx, id, ChangeRatingSet, []string{choice, criterion}, func(e *entry) error {
		return e.matrix.SetRating(choice, criterion, value)
	})
}

func (m *Manager) ClearRating(ctx context.Context, id uuid.UUID, choice, criterion string) (*Results, error) {
	return m.apply(ctx, id, ChangeRatingCleared, []string{choice, criterion}, func(e *entry) error {
		return e.matrix.ClearRating(choice, criterion)
	})
}

// RateChoices sets many ratings at once, keyed choice -> criterion -> value.
// Either every rating is applied or none is.
func (m *Manager) RateChoices(ctx context.Context, id uuid.UUID, ratings map[string]map[string]float64) (*Results, error) {
	choices := make([]string, 0, len(ratings))
	for c := range ratings {
		choices = append(choices, c)
	}
	sort.Strings(choices)

	return m.apply(ctx, id, ChangeRatingsBulk, choices, func(e *entry) error {
		work, err := scoring.FromSnapshot(e.matrix.Snapshot(), matrixOptions(e.excludeUnrated)...)
		if err != nil {
			return fmt.Errorf("copy matrix: %w", err)
		}
		for _, choice := range choices {
			row := ratings[choice]
			criteria := make([]string, 0, len(row))
			for c := range row {
				criteria = append(criteria, c)
			}
			sort.Strings(criteria)
			for _, c := range criteria {
				if err := work.SetRating(choice, c, row[c]); err != nil {
					return err
				}
			}
		}
		e.matrix = work
		return nil
	})
}

func (m *Manager) AddPoint(ctx context.Context, id uuid.UUID, criterion string, value, score float64) (*Results, error) {
	return m.apply(ctx, id, ChangePointAdded, []string{criterion}, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		return curve.AddPoint(value, score)
	})
}

func (m *Manager) MovePoint(ctx context.Context, id uuid.UUID, criterion string, oldValue, newValue, score float64) (*Results, error) {
	return m.apply(ctx, id, ChangePointMoved, []string{criterion}, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		return curve.MovePoint(oldValue, newValue, score)
	})
}

func (m *Manager) RemovePoint(ctx context.Context, id uuid.UUID, criterion string, value float64) (*Results, error) {
	return m.apply(ctx, id, ChangePointRemoved, []string{criterion}, func(e *entry) error {
		curve, err := e.matrix.Curve(criterion)
		if err != nil {
			return err
		}
		return curve.RemovePoint(value)
	})
}

// apply runs one mutation under the session lock. A rejected mutation leaves
// the matrix untouched; a mutation the store refuses is rolled back.
func (m *Manager) apply(ctx context.Context, id uuid.UUID, change string, names []string, fn func(e *entry) error) (*Results, error) {
	var res *Results
	err := m.withEntry(ctx, id, func(e *entry) error {
		before := e.matrix.Snapshot()
		if err := fn(e); err != nil {
			mutations.WithLabelValues(change, "rejected").Inc()
			return err
		}

		sess := &store.Session{
			ID:             e.id,
			Name:           e.name,
			ExcludeUnrated: e.excludeUnrated,
			Snapshot:       e.matrix.Snapshot(),
			Revision:       e.revision + 1,
			CreatedAt:      e.createdAt,
		}
		if err := m.store.SaveSession(ctx, sess); err != nil {
			mutations.WithLabelValues(change, "failed").Inc()
			m.rollback(e, before)
			return fmt.Errorf("save session: %w", err)
		}
		e.revision = sess.Revision
		e.updatedAt = sess.UpdatedAt
		mutations.WithLabelValues(change, "applied").Inc()

		res = e.results()
		m.recordEvent(ctx, e, change, names)
		m.publishUpdate(e, change, names, res)
		m.notifyWatchers(e.id, res)
		return nil
	})
	return res, err
}

func (m *Manager) rollback(e *entry, before scoring.Snapshot) {
	restored, err := scoring.FromSnapshot(before, matrixOptions(e.excludeUnrated)...)
	if err != nil {
		// force the next call to reload from the store
		m.logger.Error("failed to roll back session", "session_id", e.id, "error", err)
		e.gone = true
		m.drop(e)
		return
	}
	e.matrix = restored
}

func (m *Manager) recordEvent(ctx context.Context, e *entry, change string, names []string) {
	payload := map[string]interface{}{}
	if len(names) > 0 {
		payload["names"] = names
	}
	if err := m.store.CreateSessionEvent(ctx, &store.SessionEvent{
		SessionID: e.id,
		Event:     change,
		Revision:  e.revision,
		Payload:   payload,
	}); err != nil {
		m.logger.Warn("failed to record session event", "session_id", e.id, "event", change, "error", err)
	}
}

func (m *Manager) publishUpdate(e *entry, change string, names []string, res *Results) {
	if m.hermes == nil {
		return
	}
	if err := m.hermes.Publish(hermes.SubjectMatrixUpdated(e.id.String()), hermes.MatrixChangedEvent{
		SessionID:   e.id.String(),
		Change:      change,
		Names:       names,
		Revision:    res.Revision,
		Percentages: res.Percentages,
		MaxScore:    res.MaxScore,
		Timestamp:   m.now().UTC(),
	}); err != nil {
		m.logger.Warn("failed to publish update event", "session_id", e.id, "change", change, "error", err)
	}
}
