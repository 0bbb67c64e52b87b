package scoring

// WeightSum returns the total of all set weights.
func (m *Matrix) WeightSum() float64 {
	var sum float64
	for _, c := range m.columns() {
		if w := m.weights[c]; w != nil {
			sum += *w
		}
	}
	return sum
}

// WeightShares returns each weighted criterion's share of the total weight,
// so the shares sum to 1.0. Criteria with an unset weight are omitted; the
// map is empty when every weight is unset or zero.
func (m *Matrix) WeightShares() map[string]float64 {
	shares := make(map[string]float64)
	sum := m.WeightSum()
	if sum == 0 {
		return shares
	}
	for _, c := range m.columns() {
		if w := m.weights[c]; w != nil {
			shares[c] = *w / sum
		}
	}
	return shares
}
