package face

import (
	"math"

	"github.com/canteen-pay/meal-go/model"
)

// DefaultDistanceThreshold is the match cutoff for L2 embedding distance
const DefaultDistanceThreshold = 0.52

// Distance is the Euclidean distance between two embeddings
func Distance(a, b model.Embedding) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher applies a fixed distance threshold
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a Matcher, falling back to the default threshold
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultDistanceThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match reports whether the frame embedding matches the template and
// returns the observed distance
func (m *Matcher) Match(frame, template model.Embedding) (bool, float64) {
	d := Distance(frame, template)
	return d <= m.Threshold, d
}
