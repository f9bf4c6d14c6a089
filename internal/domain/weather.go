package domain

// WeatherIndex is a normalized point weather reading. RainIntensity and
// Visibility are in [0,1]; TemperatureC is the raw air temperature.
// FrostRisk is 1 when surface frost is plausible (temperature below zero),
// 0 otherwise.
type WeatherIndex struct {
	RainIntensity float64 `json:"rain_intensity"`
	Visibility    float64 `json:"visibility"`
	TemperatureC  float64 `json:"temperature_c"`
	FrostRisk     float64 `json:"frost_risk"`
}

// NeutralWeather is the documented default used whenever no reading is
// cached: dry, full visibility, mild temperature, no frost. Downstream risk
// computations must use it instead of failing when the weather collaborator
// is unavailable.
func NeutralWeather() WeatherIndex {
	return WeatherIndex{
		RainIntensity: 0,
		Visibility:    1,
		TemperatureC:  15,
		FrostRisk:     0,
	}
}

// Risk collapses a reading into a single normalized weather risk:
// the worse of rain intensity and lack of visibility.
func (w WeatherIndex) Risk() float64 {
	r := w.RainIntensity
	if lack := 1 - w.Visibility; lack > r {
		r = lack
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// PositionWeather pairs a sampling position with its reading, as returned
// by batch weather queries.
type PositionWeather struct {
	Position Position     `json:"position"`
	Weather  WeatherIndex `json:"weather"`
}
