package domain

import (
	"strings"
	"time"
)

// Kind tags the event variant. Incidents and work zones carry extra fields
// on top of the shared base record; everything else is a generic event.
type Kind int

const (
	KindGeneric Kind = iota
	KindIncident
	KindWorkZone
)

// Event is a traffic or weather-related report on the monitored route.
// Immutable once constructed. DistanceKm is a derived attribute: it is nil
// on ingest and attached by the connector during cache refresh, measured
// from the vehicle position at refresh time.
type Event struct {
	Kind        Kind       `json:"kind"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Timestamp   time.Time  `json:"timestamp"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	DistanceKm  *float64   `json:"distance_km,omitempty"`

	// Incident fields (Kind == KindIncident). Severity uses a 0-5 scale,
	// 0 meaning unknown.
	Severity int `json:"severity,omitempty"`

	// WorkZone fields (Kind == KindWorkZone).
	Active bool `json:"active,omitempty"`
}

// Position is a WGS-84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bucket is a semantic event category used by the alert pipeline.
type Bucket string

const (
	BucketQueue         Bucket = "queue"
	BucketClosure       Bucket = "closure"
	BucketManifestation Bucket = "manifestation"
	BucketSnow          Bucket = "snow"
	BucketFog           Bucket = "fog"
	BucketChain         Bucket = "chain"
	BucketWildlife      Bucket = "wildlife"
	BucketFreeFlow      Bucket = "freeflow"
)

// bucketKeywords maps each bucket to its bilingual (Italian, German) keyword
// pair. Matching is ordered and substring-based on the lowercased category.
var bucketKeywords = map[Bucket][]string{
	BucketQueue:         {"coda", "stau"},
	BucketClosure:       {"chiusura", "sperre"},
	BucketManifestation: {"manifestazione", "veranstaltung"},
	BucketSnow:          {"nevischio", "schneeregen"},
	BucketFog:           {"nebbia", "nebel"},
	BucketChain:         {"catene", "kettenpflicht"},
	BucketWildlife:      {"animali", "tiere"},
	BucketFreeFlow:      {"percorribile", "frei befahrbar"},
}

// In reports whether the event's category places it in the given bucket.
func (e Event) In(b Bucket) bool {
	cat := strings.ToLower(e.Category)
	for _, kw := range bucketKeywords[b] {
		if strings.Contains(cat, kw) {
			return true
		}
	}
	return false
}

// importantKeywords marks the categories that qualify an event for live
// watch notification regardless of severity.
var importantKeywords = []string{"chiusura", "sperre", "incident", "manifest"}

// Important reports whether the event should trigger a live watch callback:
// severity 3 or above, or a closure/incident/manifestation category.
func (e Event) Important() bool {
	if e.Severity >= 3 {
		return true
	}
	cat := strings.ToLower(e.Category)
	for _, kw := range importantKeywords {
		if strings.Contains(cat, kw) {
			return true
		}
	}
	return false
}

// WithDistance returns a copy of the event annotated with its distance from
// the given position. The original event is left untouched.
func (e Event) WithDistance(from Position) Event {
	d := Haversine(from, Position{Lat: e.Lat, Lon: e.Lon})
	e.DistanceKm = &d
	return e
}

// Summarize counts events per raw category string.
func Summarize(events []Event) map[string]int {
	counts := make(map[string]int, len(events))
	for _, e := range events {
		counts[e.Category]++
	}
	return counts
}
