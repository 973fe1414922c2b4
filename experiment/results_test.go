package experiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessFromError(t *testing.T) {
	for _, tc := range []struct {
		err, want float64
	}{
		{-0.01, 0},
		{math.NaN(), 0},
		{0.3, 0.7},
		{1.5, 0},
		{0, 1},
		{1, 0},
		{math.Inf(1), 0},
	} {
		got := SuccessFromError(tc.err)
		assert.InDelta(t, tc.want, got, 1e-15, "err=%g", tc.err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestNewResults_Shapes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deltas = []float64{0.2, 0.4, 0.6}
	cfg.Rhos = []float64{0.1, 0.5}
	res := newResults("id", cfg, StandardAlgorithms())

	assert.Equal(t, "id", res.RunID)
	assert.Len(t, res.Independent, 1)
	assert.Len(t, res.Dependent, 3)
	r, c := res.Independent[0].Success.Dims()
	assert.Equal(t, []int{2, 3}, []int{r, c})
	for _, dep := range res.Dependent {
		assert.Len(t, dep.Success, len(cfg.Lambdas))
		for _, m := range dep.Success {
			r, c := m.Dims()
			assert.Equal(t, []int{2, 3}, []int{r, c}, dep.Name)
		}
	}
}
