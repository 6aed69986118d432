package curvefit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinreg(t *testing.T) {
	tests := []struct {
		name          string
		x, y          []float64
		wantIntercept float64
		wantSlope     float64
	}{
		{
			name:          "perfect line",
			x:             []float64{0, 1, 2, 3},
			y:             []float64{2, 5, 8, 11}, // y = 2 + 3x
			wantIntercept: 2, wantSlope: 3,
		},
		{
			name: "single point degenerates",
			x:    []float64{1}, y: []float64{5},
			wantIntercept: 0, wantSlope: 0,
		},
		{
			name: "empty degenerates",
			x:    nil, y: nil,
			wantIntercept: 0, wantSlope: 0,
		},
		{
			name: "constant x degenerates",
			x:    []float64{2, 2, 2}, y: []float64{1, 2, 3},
			wantIntercept: 0, wantSlope: 0,
		},
		{
			name: "flat series",
			x:    []float64{0, 1, 2}, y: []float64{4, 4, 4},
			wantIntercept: 4, wantSlope: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intercept, slope := Linreg(tt.x, tt.y)
			assert.InDelta(t, tt.wantIntercept, intercept, 1e-9)
			assert.InDelta(t, tt.wantSlope, slope, 1e-9)
		})
	}
}

func TestRSquared(t *testing.T) {
	t.Run("perfect prediction", func(t *testing.T) {
		y := []float64{1, 2, 3, 4}
		assert.InDelta(t, 1.0, RSquared(y, y), 1e-9)
	})

	t.Run("mean prediction scores zero", func(t *testing.T) {
		y := []float64{1, 2, 3}
		pred := []float64{2, 2, 2}
		assert.InDelta(t, 0.0, RSquared(y, pred), 1e-9)
	})

	t.Run("flat actual series yields zero", func(t *testing.T) {
		y := []float64{5, 5, 5}
		pred := []float64{1, 2, 3}
		assert.Equal(t, 0.0, RSquared(y, pred))
	})

	t.Run("bad prediction goes negative", func(t *testing.T) {
		y := []float64{1, 2, 3}
		pred := []float64{30, -10, 50}
		assert.Less(t, RSquared(y, pred), 0.0)
	})
}

func TestLogistic(t *testing.T) {
	t.Run("half the asymptote at the midpoint", func(t *testing.T) {
		assert.InDelta(t, 50.0, Logistic(4.0, 100, 0.8, 4.0), 1e-9)
	})

	t.Run("saturates high", func(t *testing.T) {
		assert.Equal(t, 100.0, Logistic(1000, 100, 0.8, 4.0))
	})

	t.Run("saturates low", func(t *testing.T) {
		assert.Equal(t, 0.0, Logistic(-1000, 100, 0.8, 4.0))
	})

	t.Run("monotonically increasing", func(t *testing.T) {
		prev := -1.0
		for ti := -10.0; ti <= 20; ti += 0.5 {
			v := Logistic(ti, 100, 0.8, 4.0)
			assert.GreaterOrEqual(t, v, prev)
			prev = v
		}
	})
}

func TestLogisticDeriv(t *testing.T) {
	t.Run("peaks at the midpoint", func(t *testing.T) {
		// Peak derivative of a logistic is L*r/4.
		assert.InDelta(t, 20.0, LogisticDeriv(4.0, 100, 0.8, 4.0), 1e-9)
	})

	t.Run("symmetric around the midpoint", func(t *testing.T) {
		left := LogisticDeriv(2.0, 100, 0.8, 4.0)
		right := LogisticDeriv(6.0, 100, 0.8, 4.0)
		assert.InDelta(t, left, right, 1e-9)
	})

	t.Run("zero when saturated", func(t *testing.T) {
		assert.Equal(t, 0.0, LogisticDeriv(1000, 100, 0.8, 4.0))
		assert.Equal(t, 0.0, LogisticDeriv(-1000, 100, 0.8, 4.0))
	})
}

func TestFitLogistic(t *testing.T) {
	t.Run("empty span yields nil", func(t *testing.T) {
		fit := FitLogistic([]float64{0, 1}, []float64{1, 2}, Span{Start: 5, Stop: 5}, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
		assert.Nil(t, fit)
	})

	t.Run("recovers synthetic parameters", func(t *testing.T) {
		const l, r, tMid = 100.0, 0.8, 4.0
		var ts, ys []float64
		for i := range 12 {
			ts = append(ts, float64(i))
			ys = append(ys, Logistic(float64(i), l, r, tMid))
		}

		fit := FitLogistic(ts, ys, Span{Start: 90, Stop: 120}, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
		require.NotNil(t, fit)
		assert.InDelta(t, l, fit.L, l*0.3)
		assert.Greater(t, fit.RSquared, 0.90)
		assert.InDelta(t, r, fit.R, 0.3)
		assert.InDelta(t, tMid, fit.TMid, 1.5)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		ts := []float64{0, 1, 2, 3, 4, 5}
		ys := []float64{1, 3, 10, 25, 40, 48}
		first := FitLogistic(ts, ys, Span{Start: 50, Stop: 70}, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
		require.NotNil(t, first)
		for range 3 {
			again := FitLogistic(ts, ys, Span{Start: 50, Stop: 70}, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
			assert.Equal(t, first, again)
		}
	})

	t.Run("ties keep the first grid point", func(t *testing.T) {
		// A flat series scores zero everywhere, so the very first
		// candidate of the grid must win.
		ts := []float64{0, 1, 2}
		ys := []float64{0, 0, 0}
		fit := FitLogistic(ts, ys, Span{Start: 10, Stop: 13}, Span{Start: 3, Stop: 6}, Span{Start: 5, Stop: 8})
		require.NotNil(t, fit)
		assert.Equal(t, 10.0, fit.L)
		assert.Equal(t, 0.3, fit.R)
		assert.Equal(t, 0.5, fit.TMid)
	})

	t.Run("custom step walks the grid sparsely", func(t *testing.T) {
		ts := []float64{0, 1, 2, 3}
		ys := []float64{5, 20, 60, 90}
		fit := FitLogistic(ts, ys, Span{Start: 90, Stop: 140, Step: 10}, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
		require.NotNil(t, fit)
		assert.Zero(t, int(fit.L-90)%10, "L should land on a step multiple")
	})
}
