package scoring

import (
	"slices"
)

// Matrix is a weighted decision matrix: choices rated against manual and
// continuous criteria. Percentages are recomputed eagerly on every mutation,
// so reads never compute.
//
// Matrix does no locking; callers sharing one across goroutines must
// serialise access.
type Matrix struct {
	criteria    []string
	continuous  []string
	choices     []string
	weights     map[string]*float64            // criterion -> weight, nil when unset
	ratings     map[string]map[string]*float64 // choice -> criterion -> raw value, nil when unset
	percentages map[string]float64
	curves      map[string]*Curve

	excludeUnrated bool
}

// Option configures a Matrix.
type Option func(*Matrix)

// WithUnratedExcluded drops a (choice, criterion) pair from both the weighted
// sum and the maximum while its rating is unset, instead of counting it as 0.
func WithUnratedExcluded() Option {
	return func(m *Matrix) { m.excludeUnrated = true }
}

// NewMatrix returns an empty matrix.
func NewMatrix(opts ...Option) *Matrix {
	m := &Matrix{
		weights:     make(map[string]*float64),
		ratings:     make(map[string]map[string]*float64),
		percentages: make(map[string]float64),
		curves:      make(map[string]*Curve),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddChoice appends a choice with every rating unset. Its percentage is 0
// until it is rated.
func (m *Matrix) AddChoice(name string) error {
	if m.hasChoice(name) {
		return &DuplicateNameError{Kind: "choice", Name: name}
	}
	row := make(map[string]*float64, len(m.weights))
	for _, c := range m.columns() {
		row[c] = nil
	}
	m.choices = append(m.choices, name)
	m.ratings[name] = row
	m.percentages[name] = 0
	return nil
}

// RemoveChoice deletes a choice together with its ratings and percentage.
func (m *Matrix) RemoveChoice(name string) error {
	if !m.hasChoice(name) {
		return &NotFoundError{Kind: "choice", Name: name}
	}
	m.choices = slices.DeleteFunc(m.choices, func(s string) bool { return s == name })
	delete(m.ratings, name)
	delete(m.percentages, name)
	return nil
}

// AddCriterion registers a criterion with an unset weight. Continuous
// criteria also get an empty value-score curve. Existing choices get an
// unset rating for it, so no percentage changes.
func (m *Matrix) AddCriterion(name string, continuous bool) error {
	if m.hasCriterion(name) {
		return &DuplicateNameError{Kind: "criterion", Name: name}
	}
	if continuous {
		m.continuous = append(m.continuous, name)
		m.curves[name] = m.attachCurve()
	} else {
		m.criteria = append(m.criteria, name)
	}
	m.weights[name] = nil
	for _, row := range m.ratings {
		row[name] = nil
	}
	return nil
}

// RemoveCriterion deletes a criterion, its weight, every rating on it and,
// for continuous criteria, its curve. All percentages are recomputed.
func (m *Matrix) RemoveCriterion(name string) error {
	if !m.hasCriterion(name) {
		return &NotFoundError{Kind: "criterion", Name: name}
	}
	if curve, ok := m.curves[name]; ok {
		curve.changed = nil
		delete(m.curves, name)
		m.continuous = slices.DeleteFunc(m.continuous, func(s string) bool { return s == name })
	} else {
		m.criteria = slices.DeleteFunc(m.criteria, func(s string) bool { return s == name })
	}
	delete(m.weights, name)
	for _, row := range m.ratings {
		delete(row, name)
	}
	m.recomputeAll()
	return nil
}

// SetWeight assigns a weight in [0, 10] and recomputes every percentage.
func (m *Matrix) SetWeight(criterion string, weight float64) error {
	if err := checkScale("weight", weight); err != nil {
		return err
	}
	if !m.hasCriterion(criterion) {
		return &NotFoundError{Kind: "criterion", Name: criterion}
	}
	m.weights[criterion] = &weight
	m.recomputeAll()
	return nil
}

// ClearWeight returns a criterion's weight to unset.
func (m *Matrix) ClearWeight(criterion string) error {
	if !m.hasCriterion(criterion) {
		return &NotFoundError{Kind: "criterion", Name: criterion}
	}
	m.weights[criterion] = nil
	m.recomputeAll()
	return nil
}

// SetRating stores a rating for one cell and recomputes that choice. Manual
// criteria take a rating in [0, 10]; continuous criteria take any finite
// measured value, scored through the criterion's curve.
func (m *Matrix) SetRating(choice, criterion string, value float64) error {
	if err := m.checkCell(choice, criterion); err != nil {
		return err
	}
	if m.isContinuous(criterion) {
		if err := checkPointValue(value); err != nil {
			return err
		}
	} else if err := checkScale("rating", value); err != nil {
		return err
	}
	m.ratings[choice][criterion] = &value
	m.recompute(choice)
	return nil
}

// ClearRating returns one cell to unset.
func (m *Matrix) ClearRating(choice, criterion string) error {
	if err := m.checkCell(choice, criterion); err != nil {
		return err
	}
	m.ratings[choice][criterion] = nil
	m.recompute(choice)
	return nil
}

// Percentage returns the last computed percentage for a choice.
func (m *Matrix) Percentage(choice string) (float64, error) {
	p, ok := m.percentages[choice]
	if !ok {
		return 0, &NotFoundError{Kind: "choice", Name: choice}
	}
	return p, nil
}

// Weight returns a criterion's weight, nil when unset.
func (m *Matrix) Weight(criterion string) (*float64, error) {
	w, ok := m.weights[criterion]
	if !ok {
		return nil, &NotFoundError{Kind: "criterion", Name: criterion}
	}
	return clonePtr(w), nil
}

// Rating returns the raw stored value of a cell, nil when unset. For
// continuous criteria this is the measured value, not its score.
func (m *Matrix) Rating(choice, criterion string) (*float64, error) {
	if err := m.checkCell(choice, criterion); err != nil {
		return nil, err
	}
	return clonePtr(m.ratings[choice][criterion]), nil
}

// EffectiveScore returns the 0-10 score a cell contributes: the rating for
// manual criteria, the curve lookup for continuous ones, 0 when unset.
func (m *Matrix) EffectiveScore(choice, criterion string) (float64, error) {
	if err := m.checkCell(choice, criterion); err != nil {
		return 0, err
	}
	score, _ := m.effectiveScore(choice, criterion)
	return score, nil
}

// Curve returns the live curve of a continuous criterion. Mutating it
// recomputes every percentage.
func (m *Matrix) Curve(criterion string) (*Curve, error) {
	curve, ok := m.curves[criterion]
	if !ok {
		return nil, &NotFoundError{Kind: "curve", Name: criterion}
	}
	return curve, nil
}

// IsContinuous reports whether criterion is scored through a curve.
func (m *Matrix) IsContinuous(criterion string) (bool, error) {
	if !m.hasCriterion(criterion) {
		return false, &NotFoundError{Kind: "criterion", Name: criterion}
	}
	return m.isContinuous(criterion), nil
}

// Choices returns the choice names in insertion order.
func (m *Matrix) Choices() []string { return slices.Clone(m.choices) }

// Criteria returns the manual criterion names in insertion order.
func (m *Matrix) Criteria() []string { return slices.Clone(m.criteria) }

// ContinuousCriteria returns the continuous criterion names in insertion order.
func (m *Matrix) ContinuousCriteria() []string { return slices.Clone(m.continuous) }

// MaxScore is the highest weighted sum any choice can reach: Σ weight×10
// over criteria with a weight.
func (m *Matrix) MaxScore() float64 {
	var total float64
	for _, c := range m.columns() {
		if w := m.weights[c]; w != nil {
			total += *w * ScaleMax
		}
	}
	return total
}

// Score returns Σ weight×effectiveScore for a choice.
func (m *Matrix) Score(choice string) (float64, error) {
	if !m.hasChoice(choice) {
		return 0, &NotFoundError{Kind: "choice", Name: choice}
	}
	num, _ := m.sums(choice)
	return num, nil
}

// columns lists every criterion in evaluation order: manual, then continuous.
func (m *Matrix) columns() []string {
	cols := make([]string, 0, len(m.criteria)+len(m.continuous))
	cols = append(cols, m.criteria...)
	return append(cols, m.continuous...)
}

func (m *Matrix) recomputeAll() {
	for _, choice := range m.choices {
		m.recompute(choice)
	}
}

func (m *Matrix) recompute(choice string) {
	num, den := m.sums(choice)
	if den == 0 {
		m.percentages[choice] = 0
		return
	}
	m.percentages[choice] = 100 * num / den
}

// sums returns the weighted sum and the maximum achievable sum for a choice.
// Unset weights add nothing to either; unset ratings score 0 unless
// excludeUnrated drops them from both.
func (m *Matrix) sums(choice string) (num, den float64) {
	for _, c := range m.columns() {
		w := m.weights[c]
		if w == nil {
			continue
		}
		score, rated := m.effectiveScore(choice, c)
		if !rated && m.excludeUnrated {
			continue
		}
		num += *w * score
		den += *w * ScaleMax
	}
	return num, den
}

func (m *Matrix) effectiveScore(choice, criterion string) (score float64, rated bool) {
	raw := m.ratings[choice][criterion]
	if raw == nil {
		return 0, false
	}
	if curve, ok := m.curves[criterion]; ok {
		return curve.Lookup(*raw), true
	}
	return *raw, true
}

func (m *Matrix) attachCurve() *Curve {
	c := NewCurve()
	c.changed = m.recomputeAll
	return c
}

func (m *Matrix) checkCell(choice, criterion string) error {
	if !m.hasChoice(choice) {
		return &NotFoundError{Kind: "choice", Name: choice}
	}
	if !m.hasCriterion(criterion) {
		return &NotFoundError{Kind: "criterion", Name: criterion}
	}
	return nil
}

func (m *Matrix) hasChoice(name string) bool {
	_, ok := m.ratings[name]
	return ok
}

func (m *Matrix) hasCriterion(name string) bool {
	_, ok := m.weights[name]
	return ok
}

func (m *Matrix) isContinuous(name string) bool {
	_, ok := m.curves[name]
	return ok
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
