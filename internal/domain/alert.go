package domain

import (
	"fmt"
	"strings"
)

// Alert is an advisory derived from the current event and weather snapshot.
// Alerts are never persisted; they are regenerated on every call.
type Alert struct {
	Message              string  `json:"message"`
	SuggestedSpeedFactor float64 `json:"suggested_speed_factor"` // [0,1] multiplier w.r.t. the limit
	Relevance            float64 `json:"relevance"`              // confidence [0,1]
}

// severeIncidentThreshold is the minimum severity that turns an incident
// into an alert on its own.
const severeIncidentThreshold = 3

// BuildAlerts partitions the given events into semantic buckets and applies
// the fixed advisory thresholds. Severe incidents and closures alert per
// event; the remaining buckets alert once when non-empty. The weather
// reading, when present, contributes rain and visibility alerts.
//
// Closures always yield a stop advisory (factor 0, relevance 1); they are
// never diluted by other alerts.
func BuildAlerts(events []Event, wx *WeatherIndex) []Alert {
	var alerts []Alert

	var queues, workzones, manifestations, snow, fog, chains, wildlife bool
	for _, e := range events {
		switch {
		case e.Kind == KindIncident && e.Severity >= severeIncidentThreshold:
			alerts = append(alerts, Alert{"Severe incident: reduce speed by 50%", 0.5, 0.9})
		case e.In(BucketClosure):
			alerts = append(alerts, Alert{fmt.Sprintf("Closure: %s", e.Description), 0.0, 1.0})
		}
		queues = queues || e.In(BucketQueue)
		workzones = workzones || e.Kind == KindWorkZone
		manifestations = manifestations || e.In(BucketManifestation)
		snow = snow || e.In(BucketSnow)
		fog = fog || e.In(BucketFog)
		chains = chains || e.In(BucketChain)
		wildlife = wildlife || e.In(BucketWildlife)
	}

	if queues {
		alerts = append(alerts, Alert{"Queues on route: consider detour (-20%)", 0.8, 0.7})
	}
	if workzones {
		alerts = append(alerts, Alert{"Workzones nearby: drive carefully (-10%)", 0.9, 0.6})
	}
	if manifestations {
		alerts = append(alerts, Alert{"Manifestations: possible detours (-30%)", 0.7, 0.5})
	}
	if snow {
		alerts = append(alerts, Alert{"Sleet and snow: reduce speed by 30%", 0.7, 0.6})
	}
	if fog {
		alerts = append(alerts, Alert{"Dense fog: reduce speed by 40%", 0.6, 0.6})
	}
	if chains {
		alerts = append(alerts, Alert{"Snow chain requirement in force", 0.5, 0.8})
	}
	if wildlife {
		alerts = append(alerts, Alert{"Wildlife on carriageway: caution", 0.8, 0.7})
	}

	if wx != nil {
		if wx.RainIntensity > 0.5 {
			alerts = append(alerts, Alert{"Heavy rain: reduce speed by 30%", 0.7, 0.7})
		}
		if wx.Visibility < 0.4 {
			alerts = append(alerts, Alert{"Poor visibility: reduce speed by 40%", 0.6, 0.8})
		}
	}

	return alerts
}

// CategoryWeight assigns an attention weight to an alert category keyword.
type CategoryWeight struct {
	Keyword string
	Weight  float64
}

// DefaultWeights is the ordered lookup table mapping alert messages to
// attention categories. An alert belongs to the first entry whose keyword
// appears as a substring of its lowercased message; alerts matching no
// entry fall back to "incident". The message text doubles as the dispatch
// key on purpose: the ordering and first-match-wins semantics are part of
// the contract. "chain" precedes "snow" so that chain-requirement alerts
// are not swallowed by the snow category.
func DefaultWeights() []CategoryWeight {
	return []CategoryWeight{
		{"incident", 3.0},
		{"closure", 2.5},
		{"queue", 2.0},
		{"workzone", 1.5},
		{"manifestation", 1.0},
		{"chain", 1.3},
		{"snow", 1.2},
		{"fog", 1.2},
		{"wildlife", 1.4},
		{"rain", 1.1},
		{"visibility", 1.1},
	}
}

// AttentionScore folds alerts into a single situational-risk scalar in
// [0,1]: the weight-weighted average of alert relevance. With no alerts the
// score is exactly 0.
func AttentionScore(alerts []Alert, weights []CategoryWeight) float64 {
	if len(alerts) == 0 {
		return 0.0
	}
	if len(weights) == 0 {
		weights = DefaultWeights()
	}

	var num, den float64
	for _, a := range alerts {
		num += weightOf(a, weights) * a.Relevance
		den += weightOf(a, weights)
	}
	if den == 0 {
		return 0.0
	}

	score := num / den
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

// weightOf resolves an alert's weight via the ordered keyword table,
// defaulting to the "incident" weight when nothing matches.
func weightOf(a Alert, weights []CategoryWeight) float64 {
	msg := strings.ToLower(a.Message)
	for _, cw := range weights {
		if strings.Contains(msg, cw.Keyword) {
			return cw.Weight
		}
	}
	for _, cw := range weights {
		if cw.Keyword == "incident" {
			return cw.Weight
		}
	}
	return 1.0
}
