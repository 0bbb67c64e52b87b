package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanking(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.AddChoice("banana"))
	require.NoError(t, m.SetRating("apple", "taste", 6))
	require.NoError(t, m.SetRating("apple", "color", 5))
	require.NoError(t, m.SetRating("orange", "taste", 9))
	require.NoError(t, m.SetRating("orange", "color", 3))

	results := m.Ranking()
	require.Len(t, results, 3)

	assert.Equal(t, "apple", results[0].Choice)
	assert.Equal(t, 1, results[0].Rank)
	assert.InDelta(t, 59.0, results[0].Score, eps)
	assert.Equal(t, "orange", results[1].Choice)
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, "banana", results[2].Choice)
	assert.Equal(t, 3, results[2].Rank)
	assert.Equal(t, 0.0, results[2].Percentage)
}

func TestRankingTiesShareRank(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.AddChoice("banana"))
	require.NoError(t, m.AddChoice("kiwi"))
	for _, c := range []string{"apple", "orange", "banana"} {
		require.NoError(t, m.SetRating(c, "taste", 5))
	}

	results := m.Ranking()
	require.Len(t, results, 4)

	var choices []string
	var ranks []int
	for _, r := range results {
		choices = append(choices, r.Choice)
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []string{"apple", "orange", "banana", "kiwi"}, choices)
	assert.Equal(t, []int{1, 1, 1, 4}, ranks)
}

func TestBreakdown(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.AddCriterion("size", false))
	require.NoError(t, m.AddCriterion("price", true))
	require.NoError(t, m.SetWeight("price", 2))
	curve, err := m.Curve("price")
	require.NoError(t, err)
	require.NoError(t, curve.AddPoint(0, 10))
	require.NoError(t, curve.AddPoint(10, 0))

	require.NoError(t, m.SetRating("apple", "taste", 6))
	require.NoError(t, m.SetRating("apple", "price", 4))

	factors, err := m.Breakdown("apple")
	require.NoError(t, err)
	require.Len(t, factors, 4)

	byName := make(map[string]Factor)
	for _, f := range factors {
		byName[f.Criterion] = f
	}

	taste := byName["taste"]
	assert.True(t, taste.Counted)
	assert.Equal(t, "rated", taste.Reason)
	assert.InDelta(t, 24.0, taste.Weighted, eps)

	color := byName["color"]
	assert.True(t, color.Counted)
	assert.Equal(t, "not rated", color.Reason)
	assert.Nil(t, color.Raw)

	size := byName["size"]
	assert.False(t, size.Counted)
	assert.Equal(t, "weight unset", size.Reason)
	assert.Nil(t, size.Weight)

	price := byName["price"]
	assert.True(t, price.Continuous)
	assert.Equal(t, "from curve", price.Reason)
	require.NotNil(t, price.Raw)
	assert.Equal(t, 4.0, *price.Raw)
	assert.InDelta(t, 6.0, price.Score, eps)
	assert.InDelta(t, 12.0, price.Weighted, eps)

	// the factors add up to the stored percentage
	var num, den float64
	for _, f := range factors {
		if f.Counted {
			num += f.Weighted
			den += *f.Weight * ScaleMax
		}
	}
	pct, err := m.Percentage("apple")
	require.NoError(t, err)
	assert.InDelta(t, pct, 100*num/den, eps)

	_, err = m.Breakdown("kiwi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBreakdownExcludedReason(t *testing.T) {
	m := NewMatrix(WithUnratedExcluded())
	require.NoError(t, m.AddChoice("apple"))
	require.NoError(t, m.AddCriterion("taste", false))
	require.NoError(t, m.SetWeight("taste", 3))

	factors, err := m.Breakdown("apple")
	require.NoError(t, err)
	require.Len(t, factors, 1)
	assert.False(t, factors[0].Counted)
	assert.Equal(t, "not rated, excluded", factors[0].Reason)
}

func TestFrontier(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.AddChoice("banana"))
	require.NoError(t, m.SetRating("apple", "taste", 6))
	require.NoError(t, m.SetRating("apple", "color", 5))
	require.NoError(t, m.SetRating("orange", "taste", 9))
	require.NoError(t, m.SetRating("orange", "color", 3))
	require.NoError(t, m.SetRating("banana", "taste", 5))
	require.NoError(t, m.SetRating("banana", "color", 4))

	assert.Equal(t, []string{"apple", "orange"}, m.Frontier())
}

func TestFrontierIgnoresZeroWeights(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.SetWeight("color", 0))
	require.NoError(t, m.SetRating("apple", "taste", 5))
	require.NoError(t, m.SetRating("apple", "color", 10))
	require.NoError(t, m.SetRating("orange", "taste", 6))

	assert.Equal(t, []string{"orange"}, m.Frontier())
}

func TestFrontierIdenticalChoices(t *testing.T) {
	m := fruitMatrix(t)
	assert.Equal(t, []string{"apple", "orange"}, m.Frontier())
}

func TestWeightShares(t *testing.T) {
	m := fruitMatrix(t)
	require.NoError(t, m.AddCriterion("size", false))

	assert.InDelta(t, 11.0, m.WeightSum(), eps)
	shares := m.WeightShares()
	require.Len(t, shares, 2)
	assert.InDelta(t, 4.0/11, shares["taste"], eps)
	assert.InDelta(t, 7.0/11, shares["color"], eps)

	require.NoError(t, m.SetWeight("taste", 0))
	require.NoError(t, m.SetWeight("color", 0))
	assert.Empty(t, m.WeightShares())
}
