package scoring

import (
	"math"
	"slices"
	"sort"
	"strconv"
)

// Bounds of the rating scale shared by weights, manual ratings and curve scores.
const (
	ScaleMin = 0.0
	ScaleMax = 10.0
)

// Point is one breakpoint of a value-score curve.
type Point struct {
	Value float64 `json:"value" yaml:"value"`
	Score float64 `json:"score" yaml:"score"`
}

// Curve maps a raw measured value to a 0-10 score by piecewise linear
// interpolation between breakpoints, clamping outside the breakpoint range.
// Points are kept sorted by value and values are unique.
//
// A Curve obtained from Matrix.Curve notifies its matrix after every
// successful mutation so dependent percentages stay current.
type Curve struct {
	points  []Point
	changed func()
}

// NewCurve returns an empty standalone curve.
func NewCurve() *Curve {
	return &Curve{}
}

// AddPoint inserts a breakpoint, keeping the points sorted by value.
func (c *Curve) AddPoint(value, score float64) error {
	if err := checkPointValue(value); err != nil {
		return err
	}
	if err := checkScale("score", score); err != nil {
		return err
	}
	i, found := c.search(value)
	if found {
		return &DuplicateValueError{Value: value}
	}
	c.points = slices.Insert(c.points, i, Point{Value: value, Score: score})
	c.notify()
	return nil
}

// RemovePoint deletes the breakpoint at value.
func (c *Curve) RemovePoint(value float64) error {
	i, found := c.search(value)
	if !found {
		return &NotFoundError{Kind: "point", Name: formatValue(value)}
	}
	c.points = slices.Delete(c.points, i, i+1)
	c.notify()
	return nil
}

// MovePoint replaces the breakpoint at oldValue with (newValue, score).
// Either the whole replacement happens or nothing does.
func (c *Curve) MovePoint(oldValue, newValue, score float64) error {
	i, found := c.search(oldValue)
	if !found {
		return &NotFoundError{Kind: "point", Name: formatValue(oldValue)}
	}
	if err := checkPointValue(newValue); err != nil {
		return err
	}
	if err := checkScale("score", score); err != nil {
		return err
	}
	if newValue != oldValue {
		if _, taken := c.search(newValue); taken {
			return &DuplicateValueError{Value: newValue}
		}
	}

	c.points = slices.Delete(c.points, i, i+1)
	j, _ := c.search(newValue)
	c.points = slices.Insert(c.points, j, Point{Value: newValue, Score: score})
	c.notify()
	return nil
}

// Lookup returns the score for a raw value:
//
//	0 points  -> 0
//	1 point   -> that point's score
//	outside   -> score of the nearest end point (no extrapolation)
//	otherwise -> linear interpolation between the bounding points
func (c *Curve) Lookup(value float64) float64 {
	n := len(c.points)
	switch {
	case n == 0 || math.IsNaN(value):
		return 0
	case n == 1:
		return c.points[0].Score
	case value <= c.points[0].Value:
		return c.points[0].Score
	case value >= c.points[n-1].Value:
		return c.points[n-1].Score
	}

	i, found := c.search(value)
	hi := c.points[i]
	if found {
		return hi.Score
	}
	lo := c.points[i-1]
	return lo.Score + (hi.Score-lo.Score)*(value-lo.Value)/(hi.Value-lo.Value)
}

// ReverseLookup returns the smallest value inside the breakpoint range whose
// interpolated score equals score. ok is false when the curve never reaches it.
func (c *Curve) ReverseLookup(score float64) (value float64, ok bool) {
	n := len(c.points)
	if n == 0 {
		return 0, false
	}
	for i := 0; i < n-1; i++ {
		lo, hi := c.points[i], c.points[i+1]
		if lo.Score == score {
			return lo.Value, true
		}
		// strictly between the two scores
		if (score-lo.Score)*(score-hi.Score) < 0 {
			return lo.Value + (hi.Value-lo.Value)*(score-lo.Score)/(hi.Score-lo.Score), true
		}
	}
	if last := c.points[n-1]; last.Score == score {
		return last.Value, true
	}
	return 0, false
}

// Points returns a copy of the breakpoints in value order.
func (c *Curve) Points() []Point {
	return slices.Clone(c.points)
}

// Len returns the number of breakpoints.
func (c *Curve) Len() int {
	return len(c.points)
}

func (c *Curve) search(value float64) (int, bool) {
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].Value >= value })
	return i, i < len(c.points) && c.points[i].Value == value
}

func (c *Curve) notify() {
	if c.changed != nil {
		c.changed()
	}
}

func checkScale(field string, v float64) error {
	if math.IsNaN(v) || v < ScaleMin || v > ScaleMax {
		return &RangeError{Field: field, Value: v, Min: ScaleMin, Max: ScaleMax}
	}
	return nil
}

func checkPointValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &RangeError{Field: "value", Value: v, Min: math.Inf(-1), Max: math.Inf(1)}
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
