package scoring

import (
	"sort"
)

// Factor captures one criterion's contribution to a choice's percentage.
type Factor struct {
	Criterion  string   `json:"criterion"`
	Continuous bool     `json:"continuous"`
	Weight     *float64 `json:"weight"`
	Raw        *float64 `json:"raw"`
	Score      float64  `json:"score"`
	Weighted   float64  `json:"weighted"`
	Counted    bool     `json:"counted"`
	Reason     string   `json:"reason"`
}

// Result is one row of the ranking.
type Result struct {
	Rank       int     `json:"rank"`
	Choice     string  `json:"choice"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
}

// Breakdown explains a choice's percentage criterion by criterion, in
// evaluation order. Counted reports whether the factor enters the maximum.
func (m *Matrix) Breakdown(choice string) ([]Factor, error) {
	if !m.hasChoice(choice) {
		return nil, &NotFoundError{Kind: "choice", Name: choice}
	}

	cols := m.columns()
	factors := make([]Factor, 0, len(cols))
	for _, c := range cols {
		f := Factor{
			Criterion:  c,
			Continuous: m.isContinuous(c),
			Weight:     clonePtr(m.weights[c]),
			Raw:        clonePtr(m.ratings[choice][c]),
		}
		score, rated := m.effectiveScore(choice, c)
		f.Score = score

		switch {
		case f.Weight == nil:
			f.Reason = "weight unset"
		case !rated && m.excludeUnrated:
			f.Reason = "not rated, excluded"
		case !rated:
			f.Counted = true
			f.Reason = "not rated"
		case f.Continuous:
			f.Counted = true
			f.Weighted = *f.Weight * score
			f.Reason = "from curve"
		default:
			f.Counted = true
			f.Weighted = *f.Weight * score
			f.Reason = "rated"
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// Ranking orders choices by percentage, highest first. Ties keep insertion
// order and share a rank.
func (m *Matrix) Ranking() []Result {
	results := make([]Result, 0, len(m.choices))
	for _, c := range m.choices {
		num, _ := m.sums(c)
		results = append(results, Result{Choice: c, Score: num, Percentage: m.percentages[c]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Percentage > results[j].Percentage
	})
	for i := range results {
		if i > 0 && results[i].Percentage == results[i-1].Percentage {
			results[i].Rank = results[i-1].Rank
			continue
		}
		results[i].Rank = i + 1
	}
	return results
}
