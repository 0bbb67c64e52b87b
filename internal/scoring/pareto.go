package scoring

// Frontier returns the Pareto-optimal choices in insertion order. Only
// criteria with a positive weight are compared, on effective scores.
// A choice is dominated if another choice is >= on every compared criterion
// and strictly better on at least one.
// O(n^2) dominance check, fine for matrices a person fills in by hand.
func (m *Matrix) Frontier() []string {
	var compared []string
	for _, c := range m.columns() {
		if w := m.weights[c]; w != nil && *w > 0 {
			compared = append(compared, c)
		}
	}

	vectors := make([][]float64, len(m.choices))
	for i, choice := range m.choices {
		v := make([]float64, len(compared))
		for j, c := range compared {
			v[j], _ = m.effectiveScore(choice, c)
		}
		vectors[i] = v
	}

	var frontier []string
	for i := range m.choices {
		dominated := false
		for j := range m.choices {
			if i == j {
				continue
			}
			if dominates(vectors[j], vectors[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, m.choices[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b []float64) bool {
	better := false
	for k := range a {
		if a[k] < b[k] {
			return false
		}
		if a[k] > b[k] {
			better = true
		}
	}
	return better
}
