package connector

import (
	"context"
	"fmt"

	"github.com/landigf/MinervaS/internal/domain"
	"github.com/landigf/MinervaS/internal/risk"
)

// SpeedRequest carries the driver-state inputs for a speed-factor query.
// Fatigue and DeadlinePressure are normalized to [0,1].
type SpeedRequest struct {
	Filter           Filter
	Fatigue          float64
	DeadlinePressure float64
}

// Linear-blend coefficients for the degraded mode used when the connector
// has no fuzzy engine. Taken from the reference advisory policy; the fuzzy
// path is the canonical one.
const (
	linearTrafficWeight  = 0.5
	linearWeatherWeight  = 0.3
	linearFatigueWeight  = 0.1
	linearDeadlineWeight = 0.1
)

// SpeedFactor recommends a speed multiplier in [0,1]. It computes the
// traffic risk as the current attention score and the weather risk from
// the cached reading (the neutral default stands in when no reading is
// cached), then runs the fuzzy engine over {traffic, weather, fatigue,
// deadline, temp}. Without an engine it falls back to a clamped linear
// blend of the same signals.
func (c *Connector) SpeedFactor(ctx context.Context, req SpeedRequest) (float64, error) {
	trafficRisk, err := c.AttentionScore(ctx, req.Filter)
	if err != nil {
		return 0, err
	}

	wx := domain.NeutralWeather()
	if cached := c.snapshot().weather; cached != nil {
		wx = *cached
	}
	weatherRisk := wx.Risk()

	var factor float64
	if c.engine != nil {
		start := c.clock.Now()
		factor, err = c.engine.Evaluate(map[string]float64{
			risk.VarTraffic:  trafficRisk,
			risk.VarWeather:  weatherRisk,
			risk.VarFatigue:  req.Fatigue,
			risk.VarDeadline: req.DeadlinePressure,
			risk.VarTemp:     wx.TemperatureC,
		})
		if err != nil {
			return 0, fmt.Errorf("speed inference: %w", err)
		}
		c.metrics.InferenceDuration.Observe(c.clock.Now().Sub(start).Seconds())
	} else {
		factor = 1 -
			(linearTrafficWeight*trafficRisk +
				linearWeatherWeight*weatherRisk +
				linearFatigueWeight*req.Fatigue) +
			linearDeadlineWeight*req.DeadlinePressure
	}

	factor = clamp01(factor)
	c.metrics.SpeedFactor.Set(factor)

	c.logger.Debug("speed factor computed",
		"traffic_risk", trafficRisk,
		"weather_risk", weatherRisk,
		"fatigue", req.Fatigue,
		"deadline_pressure", req.DeadlinePressure,
		"temperature_c", wx.TemperatureC,
		"speed_factor", factor,
	)
	return factor, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
