package scoring

import (
	"math"

	"github.com/CourseCompass/Compass/internal/store"
)

const (
	// maxWeight is the hard ceiling on any computed weight.
	maxWeight = 100.0

	// unknownFloor scales the global minimum when a course has no
	// recorded metrics at all: a deliberate worst-case estimate.
	unknownFloor = 0.7

	// unknownDiscount further discounts unknown-course scores relative
	// to courses with real data.
	unknownDiscount = 0.95
)

// ComputeWeight maps a course's quality metrics to a desirability score
// in [0, 100] under the given preference profile.
//
// A course with no recorded metrics scores a conservative floor derived
// from the smallest of the corpus-wide minimums. A course with partial
// metrics has each missing sub-metric substituted by the corpus median,
// then the weighted sum is scaled by a reliability multiplier keyed off
// the number of ratings behind the data.
func ComputeWeight(m *store.CourseMetrics, agg store.AggregateMetrics, pref PreferenceProfile) float64 {
	if !m.HasAny() {
		floor := math.Min(agg.Min.Liked, math.Min(agg.Min.Easy, agg.Min.Useful))
		v := unknownFloor * floor
		raw := pref.Liked*v + pref.Easy*v + pref.Useful*v
		return math.Min(unknownDiscount*raw, maxWeight)
	}

	liked := orMedian(m.Liked, agg.Median.Liked)
	easy := orMedian(m.Easy, agg.Median.Easy)
	useful := orMedian(m.Useful, agg.Median.Useful)

	raw := pref.Liked*liked + pref.Easy*easy + pref.Useful*useful
	return math.Min(reliabilityMultiplier(m.RatingCount)*raw, maxWeight)
}

func orMedian(v *float64, median float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return median
	}
	return *v
}

// reliabilityMultiplier rewards well-rated courses and discounts thinly
// rated ones: >100 ratings earns 1.1, 50-100 is neutral, fewer than 50
// (including none recorded alongside metrics) costs 0.9. An absent count
// is neutral.
func reliabilityMultiplier(count *int) float64 {
	if count == nil {
		return 1.0
	}
	switch r := *count; {
	case r > 100:
		return 1.1
	case r >= 50:
		return 1.0
	default:
		return 0.9
	}
}
