// Package connector owns the windowed event cache and the scoring pipeline
// built on top of it. A Connector periodically pulls traffic events and one
// weather reading from its collaborators, annotates events with their
// distance from the vehicle, and serves time/distance-filtered views,
// advisory alerts, attention scores, and fuzzy speed factors.
package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/landigf/MinervaS/internal/domain"
	"github.com/landigf/MinervaS/internal/fuzzy"
	"github.com/landigf/MinervaS/internal/observability"
)

// TrafficSource pulls the full event list for a route segment. The source
// is expected to de-duplicate events by identity.
type TrafficSource interface {
	FetchEvents(ctx context.Context, routeSegment string) ([]domain.Event, error)
}

// WeatherSource fetches one normalized reading at a position. It returns
// an error on transient failure; the connector soft-fails on it.
type WeatherSource interface {
	FetchWeather(ctx context.Context, pos domain.Position) (domain.WeatherIndex, error)
}

// PositionFunc reports the current vehicle position.
type PositionFunc func() domain.Position

// Options configures a Connector. Zero values select the defaults noted on
// each field.
type Options struct {
	RouteSegment string

	TTL           time.Duration // cache time-to-live; 0 → 30s
	DefaultWindow time.Duration // default trailing event window; 0 → 24h

	// DisableAutoRefresh turns off the transparent stale-cache refresh in
	// the getters. Refresh must then be driven explicitly.
	DisableAutoRefresh bool

	Engine  *fuzzy.Engine          // nil → linear speed-factor fallback
	Clock   clockwork.Clock        // nil → real clock
	Logger  *slog.Logger           // nil → slog.Default()
	Metrics *observability.Metrics // nil → unregistered instruments
}

const (
	defaultTTL    = 30 * time.Second
	defaultWindow = 24 * time.Hour
)

// cacheState is replaced wholesale by each refresh so readers never observe
// a half-updated snapshot.
type cacheState struct {
	events      []domain.Event
	weather     *domain.WeatherIndex
	lastRefresh time.Time
}

// Connector is the single logical owner of the cache. Reads may come from
// multiple goroutines; refresh is serialized by refreshMu and the snapshot
// swap is guarded by mu.
type Connector struct {
	traffic  TrafficSource
	weather  WeatherSource
	position PositionFunc

	routeSegment  string
	ttl           time.Duration
	defaultWindow time.Duration
	autoRefresh   bool

	engine  *fuzzy.Engine
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	refreshMu sync.Mutex // serializes Refresh end to end
	mu        sync.RWMutex
	cache     cacheState
}

// New creates a Connector with an empty cache. The first getter call (or an
// explicit Refresh) populates it.
func New(traffic TrafficSource, weather WeatherSource, position PositionFunc, opts Options) (*Connector, error) {
	if traffic == nil {
		return nil, errors.New("connector: traffic source is required")
	}
	if weather == nil {
		return nil, errors.New("connector: weather source is required")
	}
	if position == nil {
		return nil, errors.New("connector: position provider is required")
	}

	c := &Connector{
		traffic:       traffic,
		weather:       weather,
		position:      position,
		routeSegment:  opts.RouteSegment,
		ttl:           opts.TTL,
		defaultWindow: opts.DefaultWindow,
		autoRefresh:   !opts.DisableAutoRefresh,
		engine:        opts.Engine,
		clock:         opts.Clock,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
	if c.ttl == 0 {
		c.ttl = defaultTTL
	}
	if c.defaultWindow == 0 {
		c.defaultWindow = defaultWindow
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetricsForTesting()
	}
	return c, nil
}

// CheckReadiness returns nil once the cache has been populated at least
// once.
func (c *Connector) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache.lastRefresh.IsZero() {
		return errors.New("cache has not been refreshed yet")
	}
	return nil
}

// Refresh downloads the latest traffic events and weather reading and
// replaces the cache atomically. A traffic failure aborts the refresh and
// propagates: traffic data is load-bearing for safety. A weather failure
// only logs a warning and caches the absence of a reading.
func (c *Connector) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	pos := c.position()

	fetched, err := c.traffic.FetchEvents(ctx, c.routeSegment)
	if err != nil {
		c.metrics.RefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch traffic events: %w", err)
	}

	events := make([]domain.Event, len(fetched))
	for i, e := range fetched {
		events[i] = e.WithDistance(pos)
	}

	var weather *domain.WeatherIndex
	wx, werr := c.weather.FetchWeather(ctx, pos)
	if werr != nil {
		c.logger.Warn("weather fetch failed, caching absent reading", "error", werr)
	} else {
		weather = &wx
	}

	now := c.clock.Now()
	c.mu.Lock()
	c.cache = cacheState{events: events, weather: weather, lastRefresh: now}
	c.mu.Unlock()

	c.metrics.RefreshTotal.WithLabelValues("success").Inc()
	c.metrics.RefreshAge.Set(float64(now.Unix()))
	c.metrics.EventsCached.Set(float64(len(events)))
	if weather != nil {
		c.metrics.WeatherOK.Set(1)
	} else {
		c.metrics.WeatherOK.Set(0)
	}

	c.logger.Debug("cache refreshed",
		"events", len(events),
		"weather_available", weather != nil,
		"route_segment", c.routeSegment,
	)
	return nil
}

// maybeRefresh refreshes a stale cache when auto-refresh is enabled. The
// cache is stale when it was never populated or its age exceeds the TTL.
func (c *Connector) maybeRefresh(ctx context.Context) error {
	if !c.autoRefresh {
		return nil
	}

	c.mu.RLock()
	last := c.cache.lastRefresh
	c.mu.RUnlock()

	if !last.IsZero() && c.clock.Now().Sub(last) <= c.ttl {
		return nil
	}
	return c.Refresh(ctx)
}

// snapshot returns the current cache state. The event slice is shared and
// must be treated as read-only; filters build fresh slices.
func (c *Connector) snapshot() cacheState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// Filter restricts event queries. Window is the trailing time span events
// must fall into (0 selects the connector's default window). WithinKm,
// when positive, keeps only events whose refresh-time distance from the
// vehicle is inside the radius. Both filters are conjunctive.
type Filter struct {
	Window   time.Duration
	WithinKm float64
}

// Events returns the cached events passing the filter, refreshing a stale
// cache first when auto-refresh is enabled.
func (c *Connector) Events(ctx context.Context, f Filter) ([]domain.Event, error) {
	if err := c.maybeRefresh(ctx); err != nil {
		return nil, err
	}

	window := f.Window
	if window == 0 {
		window = c.defaultWindow
	}
	cutoff := c.clock.Now().Add(-window)

	snap := c.snapshot()
	out := make([]domain.Event, 0, len(snap.events))
	for _, e := range snap.events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		if f.WithinKm > 0 && (e.DistanceKm == nil || *e.DistanceKm > f.WithinKm) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// EventsSummary returns {category: count} for the filtered events.
func (c *Connector) EventsSummary(ctx context.Context, f Filter) (map[string]int, error) {
	events, err := c.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(events), nil
}

// Incidents returns the filtered events tagged as incidents.
func (c *Connector) Incidents(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsWithKind(ctx, f, domain.KindIncident)
}

// WorkZones returns the filtered events tagged as work zones.
func (c *Connector) WorkZones(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsWithKind(ctx, f, domain.KindWorkZone)
}

func (c *Connector) eventsWithKind(ctx context.Context, f Filter, k domain.Kind) ([]domain.Event, error) {
	events, err := c.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	out := events[:0:0]
	for _, e := range events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out, nil
}

// Queues returns the filtered events in the queue category.
func (c *Connector) Queues(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketQueue)
}

// Closures returns the filtered events in the closure category.
func (c *Connector) Closures(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketClosure)
}

// Manifestations returns the filtered events in the manifestation category.
func (c *Connector) Manifestations(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketManifestation)
}

// SnowWarnings returns the filtered events in the snow category.
func (c *Connector) SnowWarnings(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketSnow)
}

// FogWarnings returns the filtered events in the fog category.
func (c *Connector) FogWarnings(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketFog)
}

// ChainRequirements returns the filtered events in the chain-requirement
// category.
func (c *Connector) ChainRequirements(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketChain)
}

// WildlifeHazards returns the filtered events in the wildlife category.
func (c *Connector) WildlifeHazards(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketWildlife)
}

// FreeFlow returns the filtered events reporting a freely passable road.
func (c *Connector) FreeFlow(ctx context.Context, f Filter) ([]domain.Event, error) {
	return c.eventsIn(ctx, f, domain.BucketFreeFlow)
}

// eventsIn is the shared category post-filter: it never re-refreshes on its
// own beyond the Events call it wraps.
func (c *Connector) eventsIn(ctx context.Context, f Filter, b domain.Bucket) ([]domain.Event, error) {
	events, err := c.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	out := events[:0:0]
	for _, e := range events {
		if e.In(b) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Weather returns the cached reading, refreshing a stale cache first. A nil
// reading means the last weather fetch soft-failed.
func (c *Connector) Weather(ctx context.Context) (*domain.WeatherIndex, error) {
	if err := c.maybeRefresh(ctx); err != nil {
		return nil, err
	}
	return c.snapshot().weather, nil
}

// WeatherAt queries the weather collaborator once per position and returns
// the successful readings paired with their positions. A failing position
// is logged and skipped; it never aborts the batch.
func (c *Connector) WeatherAt(ctx context.Context, positions []domain.Position) []domain.PositionWeather {
	out := make([]domain.PositionWeather, 0, len(positions))
	for _, pos := range positions {
		wx, err := c.weather.FetchWeather(ctx, pos)
		if err != nil {
			c.logger.Warn("weather fetch failed for position",
				"lat", pos.Lat, "lon", pos.Lon, "error", err)
			continue
		}
		out = append(out, domain.PositionWeather{Position: pos, Weather: wx})
	}
	return out
}

// GenerateAlerts derives the current advisories from the filtered events
// and the cached weather reading.
func (c *Connector) GenerateAlerts(ctx context.Context, f Filter) ([]domain.Alert, error) {
	events, err := c.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	alerts := domain.BuildAlerts(events, c.snapshot().weather)
	c.metrics.AlertsGenerated.Add(float64(len(alerts)))
	return alerts, nil
}

// AttentionScore folds the current alerts into one situational-risk scalar
// using the default category weights.
func (c *Connector) AttentionScore(ctx context.Context, f Filter) (float64, error) {
	return c.AttentionScoreWeighted(ctx, f, nil)
}

// AttentionScoreWeighted is AttentionScore with a caller-supplied ordered
// weight table.
func (c *Connector) AttentionScoreWeighted(ctx context.Context, f Filter, weights []domain.CategoryWeight) (float64, error) {
	alerts, err := c.GenerateAlerts(ctx, f)
	if err != nil {
		return 0, err
	}
	score := domain.AttentionScore(alerts, weights)
	c.metrics.AttentionScore.Set(score)
	return score, nil
}
