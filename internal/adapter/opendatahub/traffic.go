// Package opendatahub implements the traffic and weather collaborators
// against the OpenDataHub mobility and tourism APIs.
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

// TrafficClient pulls traffic events from the mobility API's flat
// representation. It implements connector.TrafficSource.
type TrafficClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTrafficClient creates a traffic client. The API key may be empty for
// the open endpoints.
func NewTrafficClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *TrafficClient {
	return &TrafficClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// trafficRow is one record of the flat traffic-event representation.
type trafficRow struct {
	Category    string  `json:"evcategory"`
	Description string  `json:"evdescription"`
	Start       string  `json:"evstart"`
	Lat         float64 `json:"evlatitude"`
	Lon         float64 `json:"evlongitude"`
	Severity    int     `json:"evseverity"`
}

type trafficResponse struct {
	Data []trafficRow `json:"data"`
}

// Timestamp layouts observed on the endpoint, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.000-0700",
	"2006-01-02 15:04:05",
}

// FetchEvents downloads the current events for a route segment and
// normalizes them into domain events, de-duplicated by event identity.
func (c *TrafficClient) FetchEvents(ctx context.Context, routeSegment string) ([]domain.Event, error) {
	u := fmt.Sprintf("%s/v2/flat,node/TrafficEvent/latest?%s", c.baseURL, url.Values{
		"where": {fmt.Sprintf("evroute.eq.%s", routeSegment)},
		"limit": {"-1"},
	}.Encode())

	var resp trafficResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetch traffic events: %w", err)
	}

	seen := make(map[string]struct{}, len(resp.Data))
	events := make([]domain.Event, 0, len(resp.Data))
	for _, row := range resp.Data {
		e, err := eventFromRow(row)
		if err != nil {
			c.logger.Warn("skipping malformed traffic row", "error", err, "category", row.Category)
			continue
		}
		key := identity(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		events = append(events, e)
	}
	return events, nil
}

// incidentKeywords and workzoneKeywords tag the event variant from the
// bilingual category text.
var (
	incidentKeywords = []string{"incidente", "unfall", "incident"}
	workzoneKeywords = []string{"cantiere", "baustelle", "workzone"}
)

func eventFromRow(row trafficRow) (domain.Event, error) {
	ts, err := parseTimestamp(row.Start)
	if err != nil {
		return domain.Event{}, err
	}

	e := domain.Event{
		Kind:        domain.KindGeneric,
		Category:    row.Category,
		Description: row.Description,
		Timestamp:   ts,
		Lat:         row.Lat,
		Lon:         row.Lon,
	}

	cat := strings.ToLower(row.Category)
	switch {
	case containsAny(cat, incidentKeywords):
		e.Kind = domain.KindIncident
		e.Severity = clampSeverity(row.Severity)
	case containsAny(cat, workzoneKeywords):
		e.Kind = domain.KindWorkZone
		e.Active = true
	}
	return e, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// identity is the de-duplication key: two rows describing the same
// occurrence collapse into one event.
func identity(e domain.Event) string {
	return fmt.Sprintf("%s|%s|%d|%.5f|%.5f", e.Category, e.Description, e.Timestamp.Unix(), e.Lat, e.Lon)
}

// clampSeverity forces the upstream severity into the 0-5 scale; unknown
// or out-of-range values become 0.
func clampSeverity(s int) int {
	if s < 0 {
		return 0
	}
	if s > 5 {
		return 5
	}
	return s
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (c *TrafficClient) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
