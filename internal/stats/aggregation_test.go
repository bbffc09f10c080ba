package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean())
	assert.InDelta(t, 0.6, Mean(0.8, 0.4), 1e-9)
	assert.InDelta(t, 0.25, Mean(0.5, 0), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 3.0, StdDev(9))
	assert.Equal(t, 0.0, StdDev(0))
	assert.Equal(t, 0.0, StdDev(-1e-12))
	assert.Equal(t, 0.0, StdDev(math.NaN()))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}
