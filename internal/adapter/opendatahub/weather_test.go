package opendatahub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landigf/MinervaS/internal/domain"
)

var testPos = domain.Position{Lat: 46.07, Lon: 11.12}

// liveStationServer serves the three phenomenon endpoints of the mobility
// API with fixed readings.
func liveStationServer(t *testing.T, temp, precip, visibility string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "air-temperature"):
			_, _ = w.Write([]byte(`{"data": [{"mvalue": ` + temp + `}]}`))
		case strings.Contains(r.URL.Path, "precipitation-rate"):
			_, _ = w.Write([]byte(`{"data": [{"mvalue": ` + precip + `}]}`))
		case strings.Contains(r.URL.Path, "visibility"):
			_, _ = w.Write([]byte(`{"data": [{"value": ` + visibility + `}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchWeatherLive(t *testing.T) {
	t.Run("normalizes station readings", func(t *testing.T) {
		mobility := liveStationServer(t, "-5", "25", "5000")
		defer mobility.Close()

		client := NewWeatherClient(mobility.URL, "http://unused.invalid", 10000, 5*time.Second, discardLogger())
		wx, err := client.FetchWeather(context.Background(), testPos)
		require.NoError(t, err)

		assert.InDelta(t, -5, wx.TemperatureC, 1e-9)
		assert.InDelta(t, 0.5, wx.RainIntensity, 1e-9)
		assert.InDelta(t, 0.5, wx.Visibility, 1e-9)
		assert.Equal(t, 1.0, wx.FrostRisk)
	})

	t.Run("readings are clamped to the phenomenon range", func(t *testing.T) {
		mobility := liveStationServer(t, "12", "80", "20000")
		defer mobility.Close()

		client := NewWeatherClient(mobility.URL, "http://unused.invalid", 10000, 5*time.Second, discardLogger())
		wx, err := client.FetchWeather(context.Background(), testPos)
		require.NoError(t, err)

		assert.Equal(t, 1.0, wx.RainIntensity)
		assert.Equal(t, 1.0, wx.Visibility)
		assert.Equal(t, 0.0, wx.FrostRisk)
	})
}

func TestFetchWeatherForecastFallback(t *testing.T) {
	mobility := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no stations", http.StatusInternalServerError)
	}))
	defer mobility.Close()

	tourism := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/Location/District":
			_, _ = w.Write([]byte(`[
				{"Id": 1, "Latitude": 46.07, "Longitude": 11.12},
				{"Id": 2, "Latitude": 47.0, "Longitude": 12.0}
			]`))
		case "/v1/Weather/District":
			_, _ = w.Write([]byte(`[
				{"Id": 2, "BezirksForecast": [{"MinTemp": 0, "MaxTemp": 10, "RainTo": 10, "WeatherDesc": "Sunny"}]},
				{"Id": 1, "BezirksForecast": [{"MinTemp": 10, "MaxTemp": 20, "RainTo": 0, "WeatherDesc": "Partly cloudy"}]}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer tourism.Close()

	client := NewWeatherClient(mobility.URL, tourism.URL, 10000, 5*time.Second, discardLogger())
	wx, err := client.FetchWeather(context.Background(), testPos)
	require.NoError(t, err)

	// The nearest district (Id 1) wins: mild, dry, non-sunny visibility.
	assert.InDelta(t, 15, wx.TemperatureC, 1e-9)
	assert.InDelta(t, 0, wx.RainIntensity, 1e-9)
	assert.InDelta(t, 0.4, wx.Visibility, 1e-9)
	assert.Equal(t, 0.0, wx.FrostRisk)
}

func TestFetchWeatherBothPathsFail(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	client := NewWeatherClient(broken.URL, broken.URL, 10000, 5*time.Second, discardLogger())
	_, err := client.FetchWeather(context.Background(), testPos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch weather")
}

func TestNormalize(t *testing.T) {
	assert.InDelta(t, 0.5, normalize(25, "precipitation-rate"), 1e-9)
	assert.Equal(t, 0.0, normalize(-10, "precipitation-rate"))
	assert.Equal(t, 1.0, normalize(99999, "visibility"))
	assert.Equal(t, 0.0, normalize(1, "unknown-phenomenon"))
}
