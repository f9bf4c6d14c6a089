package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriangle(t *testing.T) {
	t.Run("rises and falls linearly", func(t *testing.T) {
		mf := Triangle(0, 0.5, 1)

		assert.InDelta(t, 0.0, mf(0), 1e-9)
		assert.InDelta(t, 0.5, mf(0.25), 1e-9)
		assert.InDelta(t, 1.0, mf(0.5), 1e-9)
		assert.InDelta(t, 0.5, mf(0.75), 1e-9)
		assert.InDelta(t, 0.0, mf(1), 1e-9)
	})

	t.Run("zero outside support", func(t *testing.T) {
		mf := Triangle(0.2, 0.5, 0.8)

		assert.Equal(t, 0.0, mf(0.1))
		assert.Equal(t, 0.0, mf(0.9))
		assert.Equal(t, 0.0, mf(-5))
		assert.Equal(t, 0.0, mf(5))
	})

	t.Run("degenerate left edge acts as step", func(t *testing.T) {
		mf := Triangle(0, 0, 0.4)

		assert.InDelta(t, 1.0, mf(0), 1e-9)
		assert.InDelta(t, 0.5, mf(0.2), 1e-9)
		assert.InDelta(t, 0.0, mf(0.4), 1e-9)
	})

	t.Run("degenerate right edge acts as step", func(t *testing.T) {
		mf := Triangle(0.6, 1, 1)

		assert.InDelta(t, 0.0, mf(0.6), 1e-9)
		assert.InDelta(t, 0.5, mf(0.8), 1e-9)
		assert.InDelta(t, 1.0, mf(1), 1e-9)
	})
}

func TestTrapezoid(t *testing.T) {
	t.Run("plateau holds one", func(t *testing.T) {
		mf := Trapezoid(0, 0.2, 0.8, 1)

		assert.InDelta(t, 0.0, mf(0), 1e-9)
		assert.InDelta(t, 0.5, mf(0.1), 1e-9)
		assert.InDelta(t, 1.0, mf(0.2), 1e-9)
		assert.InDelta(t, 1.0, mf(0.5), 1e-9)
		assert.InDelta(t, 1.0, mf(0.8), 1e-9)
		assert.InDelta(t, 0.5, mf(0.9), 1e-9)
		assert.InDelta(t, 0.0, mf(1), 1e-9)
	})

	t.Run("zero-width ramps do not divide by zero", func(t *testing.T) {
		mf := Trapezoid(0, 0, 1, 1)

		assert.InDelta(t, 1.0, mf(0), 1e-9)
		assert.InDelta(t, 1.0, mf(0.5), 1e-9)
		assert.InDelta(t, 1.0, mf(1), 1e-9)
		assert.Equal(t, 0.0, mf(1.1))
		assert.Equal(t, 0.0, mf(-0.1))
	})

	t.Run("result stays in unit interval", func(t *testing.T) {
		mf := Trapezoid(10, 20, 30, 50)
		for x := -10.0; x <= 70; x += 0.5 {
			v := mf(x)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})
}
