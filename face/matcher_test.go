package face

import (
	"testing"

	"github.com/canteen-pay/meal-go/model"
	"github.com/stretchr/testify/assert"
)

func embeddingWithFirst(v float64) model.Embedding {
	e := make(model.Embedding, model.EmbeddingDim)
	e[0] = v
	return e
}

func TestDistance(t *testing.T) {
	a := embeddingWithFirst(0)
	b := embeddingWithFirst(0.3)
	assert.InDelta(t, 0.3, Distance(a, b), 1e-9)
	assert.InDelta(t, 0, Distance(a, a), 1e-9)
}

func TestMatcherThreshold(t *testing.T) {
	m := NewMatcher(0.52)

	match, dist := m.Match(embeddingWithFirst(0), embeddingWithFirst(0.5))
	assert.True(t, match)
	assert.InDelta(t, 0.5, dist, 1e-9)

	// the cutoff itself still matches
	match, _ = m.Match(embeddingWithFirst(0), embeddingWithFirst(0.52))
	assert.True(t, match)

	match, dist = m.Match(embeddingWithFirst(0), embeddingWithFirst(0.53))
	assert.False(t, match)
	assert.InDelta(t, 0.53, dist, 1e-9)
}

func TestNewMatcherDefault(t *testing.T) {
	assert.Equal(t, DefaultDistanceThreshold, NewMatcher(0).Threshold)
	assert.Equal(t, 0.4, NewMatcher(0.4).Threshold)
}
