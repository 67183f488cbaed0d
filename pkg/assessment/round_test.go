package assessment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{7.8 * 0.025, 1, 0.2},
		{0.195, 1, 0.2},
		{0.16175, 3, 0.162},
		{0.47502081252106, 3, 0.475},
		{6.24, 1, 6.2},
		{10.14, 1, 10.1},
		{2.5, 0, 3},
		{-0.0001, 3, 0},
		{math.NaN(), 3, 0},
		{math.Inf(1), 1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, round(tt.in, tt.places), "round(%v, %d)", tt.in, tt.places)
	}
}

func TestRoundNormalisesNegativeZero(t *testing.T) {
	assert.False(t, math.Signbit(round(-0.00001, 3)))
}
