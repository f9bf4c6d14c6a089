package opendatahub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/landigf/MinervaS/internal/domain"
)

// phenomenon describes one measurement type fetched from the nearest
// MeteoStation and the range used to normalize it into [0,1].
// Temperature is carried through in °C; its range only bounds plausible
// readings.
type phenomenon struct {
	name string
	lo   float64
	hi   float64
}

var phenomena = []phenomenon{
	{"air-temperature", -20, 40},
	{"precipitation-rate", 0, 50},
	{"visibility", 0, 10000},
}

// WeatherClient fetches live station measurements from the mobility domain
// and falls back to district-level forecasts from the tourism domain when
// live data is unavailable. It implements connector.WeatherSource.
type WeatherClient struct {
	mobilityBase string
	tourismBase  string
	radiusM      int
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewWeatherClient creates a weather client. radiusM bounds the station
// search around the requested position.
func NewWeatherClient(mobilityBase, tourismBase string, radiusM int, timeout time.Duration, logger *slog.Logger) *WeatherClient {
	return &WeatherClient{
		mobilityBase: strings.TrimRight(mobilityBase, "/"),
		tourismBase:  strings.TrimRight(tourismBase, "/"),
		radiusM:      radiusM,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// FetchWeather returns one normalized reading at the position. Live
// station data wins; the district forecast is the fallback. The error is
// returned only when both paths fail.
func (c *WeatherClient) FetchWeather(ctx context.Context, pos domain.Position) (domain.WeatherIndex, error) {
	live, err := c.fetchLive(ctx, pos)
	if err == nil {
		return live, nil
	}
	c.logger.Warn("live weather unavailable, falling back to district forecast", "error", err)

	forecast, ferr := c.fetchForecast(ctx, pos)
	if ferr != nil {
		return domain.WeatherIndex{}, fmt.Errorf("fetch weather: live: %v; forecast: %w", err, ferr)
	}
	return forecast, nil
}

type measurementRow struct {
	MValue *float64 `json:"mvalue"`
	Value  *float64 `json:"value"`
}

type measurementResponse struct {
	Data []measurementRow `json:"data"`
}

// fetchLive queries the latest value of every phenomenon from the nearest
// station inside the radius.
func (c *WeatherClient) fetchLive(ctx context.Context, pos domain.Position) (domain.WeatherIndex, error) {
	raw := make(map[string]float64, len(phenomena))
	for _, p := range phenomena {
		u := fmt.Sprintf("%s/v2/flat,node/MeteoStation/%s/latest?%s", c.mobilityBase, p.name, url.Values{
			"coords": {fmt.Sprintf("%f,%f", pos.Lon, pos.Lat)},
			"radius": {fmt.Sprintf("%d", c.radiusM)},
			"limit":  {"1"},
		}.Encode())

		var resp measurementResponse
		if err := c.getJSON(ctx, u, &resp); err != nil {
			return domain.WeatherIndex{}, fmt.Errorf("latest %s: %w", p.name, err)
		}
		if len(resp.Data) == 0 {
			return domain.WeatherIndex{}, fmt.Errorf("latest %s: no station in radius", p.name)
		}
		row := resp.Data[0]
		switch {
		case row.MValue != nil:
			raw[p.name] = *row.MValue
		case row.Value != nil:
			raw[p.name] = *row.Value
		default:
			return domain.WeatherIndex{}, fmt.Errorf("latest %s: row without value", p.name)
		}
	}
	return makeIndex(raw), nil
}

type district struct {
	ID  int     `json:"Id"`
	Lat float64 `json:"Latitude"`
	Lon float64 `json:"Longitude"`
}

type districtForecast struct {
	ID       int `json:"Id"`
	Forecast []struct {
		MinTemp     float64 `json:"MinTemp"`
		MaxTemp     float64 `json:"MaxTemp"`
		RainTo      float64 `json:"RainTo"`
		WeatherDesc string  `json:"WeatherDesc"`
	} `json:"BezirksForecast"`
}

// fetchForecast collapses the nearest district's forecast for today into a
// single reading.
func (c *WeatherClient) fetchForecast(ctx context.Context, pos domain.Position) (domain.WeatherIndex, error) {
	nearest, err := c.closestDistrict(ctx, pos)
	if err != nil {
		return domain.WeatherIndex{}, err
	}

	var forecasts []districtForecast
	if err := c.getJSON(ctx, c.tourismBase+"/v1/Weather/District?language=en", &forecasts); err != nil {
		return domain.WeatherIndex{}, fmt.Errorf("district forecasts: %w", err)
	}
	if len(forecasts) == 0 {
		return domain.WeatherIndex{}, fmt.Errorf("district forecasts: empty response")
	}

	entry := forecasts[0]
	for _, f := range forecasts {
		if f.ID == nearest.ID {
			entry = f
			break
		}
	}
	if len(entry.Forecast) == 0 {
		return domain.WeatherIndex{}, fmt.Errorf("district %d: no forecast entries", entry.ID)
	}

	today := entry.Forecast[0]
	visibility := 4000.0
	if strings.HasPrefix(strings.ToLower(today.WeatherDesc), "sunny") {
		visibility = 10000.0
	}
	return makeIndex(map[string]float64{
		"air-temperature":    (today.MinTemp + today.MaxTemp) / 2,
		"precipitation-rate": today.RainTo,
		"visibility":         visibility,
	}), nil
}

func (c *WeatherClient) closestDistrict(ctx context.Context, pos domain.Position) (district, error) {
	var districts []district
	if err := c.getJSON(ctx, c.tourismBase+"/v1/Location/District", &districts); err != nil {
		return district{}, fmt.Errorf("district list: %w", err)
	}
	if len(districts) == 0 {
		return district{}, fmt.Errorf("district list: empty response")
	}

	best := districts[0]
	bestDist := domain.Haversine(pos, domain.Position{Lat: best.Lat, Lon: best.Lon})
	for _, d := range districts[1:] {
		if dist := domain.Haversine(pos, domain.Position{Lat: d.Lat, Lon: d.Lon}); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best, nil
}

// makeIndex normalizes raw phenomenon readings into a WeatherIndex.
func makeIndex(raw map[string]float64) domain.WeatherIndex {
	t := raw["air-temperature"]
	frost := 0.0
	if t < 0 {
		frost = 1.0
	}
	return domain.WeatherIndex{
		TemperatureC:  t,
		RainIntensity: normalize(raw["precipitation-rate"], "precipitation-rate"),
		Visibility:    normalize(raw["visibility"], "visibility"),
		FrostRisk:     frost,
	}
}

func normalize(value float64, name string) float64 {
	for _, p := range phenomena {
		if p.name == name {
			n := (value - p.lo) / (p.hi - p.lo)
			if n < 0 {
				return 0
			}
			if n > 1 {
				return 1
			}
			return n
		}
	}
	return 0
}

func (c *WeatherClient) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("opendatahub API error: status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
