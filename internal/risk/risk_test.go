package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs(traffic, weather, fatigue, deadline, temp float64) map[string]float64 {
	return map[string]float64{
		VarTraffic:  traffic,
		VarWeather:  weather,
		VarFatigue:  fatigue,
		VarDeadline: deadline,
		VarTemp:     temp,
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Equal(t, "speed", engine.Registry().OutputName())
}

func TestDefaultRuleSetProperties(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	t.Run("output stays in the unit interval", func(t *testing.T) {
		grid := []float64{0, 0.25, 0.5, 0.75, 1}
		temps := []float64{-20, -5, 15, 32, 40}
		for _, tr := range grid {
			for _, wx := range grid {
				for _, fa := range grid {
					for _, temp := range temps {
						got, err := engine.Evaluate(inputs(tr, wx, fa, 0, temp))
						require.NoError(t, err)
						assert.GreaterOrEqual(t, got, 0.0)
						assert.LessOrEqual(t, got, 1.0)
					}
				}
			}
		}
	})

	t.Run("all risks low yields near-cruise", func(t *testing.T) {
		got, err := engine.Evaluate(inputs(0, 0, 0, 0, 20))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.8)
	})

	t.Run("all risks high yields a strong reduction", func(t *testing.T) {
		got, err := engine.Evaluate(inputs(1, 1, 1, 0, -10))
		require.NoError(t, err)
		assert.LessOrEqual(t, got, 0.3)
	})

	t.Run("speed factor is non-increasing in traffic risk", func(t *testing.T) {
		prev := 2.0
		for _, tr := range []float64{0, 0.25, 0.5, 0.75, 1} {
			got, err := engine.Evaluate(inputs(tr, 0.5, 0.5, 0, 15))
			require.NoError(t, err)
			assert.LessOrEqual(t, got, prev+1e-9, "traffic=%v", tr)
			prev = got
		}
	})

	t.Run("extreme cold slows an otherwise clear run", func(t *testing.T) {
		mild, err := engine.Evaluate(inputs(0, 0, 0, 0, 15))
		require.NoError(t, err)
		freezing, err := engine.Evaluate(inputs(0, 0, 0, 0, -20))
		require.NoError(t, err)
		assert.Less(t, freezing, mild)
	})

	t.Run("deadline pressure never slows below the unhurried run", func(t *testing.T) {
		unhurried, err := engine.Evaluate(inputs(0.2, 0.2, 0.2, 0, 15))
		require.NoError(t, err)
		hurried, err := engine.Evaluate(inputs(0.2, 0.2, 0.2, 1, 15))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hurried, unhurried-1e-9)
	})
}
