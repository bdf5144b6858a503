package compass_test

import (
	"math"
	"testing"

	"github.com/mdouchement/bakuwaki/internal/compass"
	"github.com/stretchr/testify/assert"
)

func TestFromDegrees(t *testing.T) {
	cases := map[float64]string{
		0:      "N",
		11.24:  "N",
		11.25:  "NNE",
		45:     "NE",
		90:     "E",
		180:    "S",
		270:    "W",
		348.7:  "NNW",
		348.75: "N",
		360:    "N",
	}

	for degree, expected := range cases {
		assert.Equal(t, expected, compass.FromDegrees(degree), "degree %v", degree)
	}
	assert.Equal(t, "", compass.FromDegrees(math.NaN()))
}

func TestIndex(t *testing.T) {
	i, ok := compass.Index("SW")
	assert.True(t, ok)
	assert.Equal(t, 10, i)

	_, ok = compass.Index("")
	assert.False(t, ok)

	assert.True(t, math.IsNaN(compass.Radians("X")))
	assert.InDelta(t, math.Pi, compass.Radians("S"), 1e-9)
}

func TestMean(t *testing.T) {
	assert.True(t, math.IsNaN(compass.Mean(nil)))
	assert.True(t, math.IsNaN(compass.Mean([]string{"", "?"})))

	assert.Equal(t, 4.0, compass.Mean([]string{"E", "E", ""}))
	// Wraps around the north.
	assert.Equal(t, 0.0, compass.Mean([]string{"NNW", "NNE"}))
	assert.Equal(t, 15.0, compass.Mean([]string{"NNW", "NNW", "N", "NW"}))
	assert.Equal(t, 2.0, compass.Mean([]string{"N", "E"}))
	// Halfway indexes round to the even point.
	assert.Equal(t, 4.0, compass.Mean([]string{"E", "ESE"}))
	assert.Equal(t, 2.0, compass.Mean([]string{"NNE", "NE"}))
	assert.Equal(t, 0.0, compass.Mean([]string{"N", "NNE"}))
}
