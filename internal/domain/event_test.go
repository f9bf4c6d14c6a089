package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventIn(t *testing.T) {
	cases := []struct {
		name     string
		category string
		bucket   Bucket
		want     bool
	}{
		{"italian queue", "Coda tra Bolzano e Trento", BucketQueue, true},
		{"german queue", "Stau auf der A22", BucketQueue, true},
		{"italian closure", "Chiusura notturna", BucketClosure, true},
		{"german closure", "Vollsperre Brennerpass", BucketClosure, true},
		{"italian manifestation", "manifestazione sindacale", BucketManifestation, true},
		{"german manifestation", "Veranstaltung im Zentrum", BucketManifestation, true},
		{"italian sleet", "Nevischio in quota", BucketSnow, true},
		{"german sleet", "Schneeregen erwartet", BucketSnow, true},
		{"italian fog", "nebbia fitta", BucketFog, true},
		{"german fog", "Nebelbank", BucketFog, true},
		{"italian chains", "obbligo catene", BucketChain, true},
		{"german chains", "Kettenpflicht ab km 90", BucketChain, true},
		{"italian wildlife", "animali sulla carreggiata", BucketWildlife, true},
		{"german wildlife", "Tiere auf der Fahrbahn", BucketWildlife, true},
		{"italian free flow", "tratto percorribile", BucketFreeFlow, true},
		{"german free flow", "frei befahrbar", BucketFreeFlow, true},
		{"case insensitive", "CODA", BucketQueue, true},
		{"no match", "lavori in corso", BucketQueue, false},
		{"wrong bucket", "coda", BucketClosure, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Event{Category: tc.category}
			assert.Equal(t, tc.want, e.In(tc.bucket))
		})
	}
}

func TestEventImportant(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{"high severity", Event{Kind: KindIncident, Severity: 4}, true},
		{"threshold severity", Event{Severity: 3}, true},
		{"below threshold", Event{Severity: 2}, false},
		{"closure keyword", Event{Category: "Chiusura A22"}, true},
		{"german closure keyword", Event{Category: "Sperre"}, true},
		{"incident keyword", Event{Category: "incident"}, true},
		{"manifestation keyword", Event{Category: "Manifestazione"}, true},
		{"ordinary event", Event{Category: "coda", Severity: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.event.Important())
		})
	}
}

func TestEventWithDistance(t *testing.T) {
	e := Event{Category: "coda", Lat: 46.5, Lon: 11.35}
	from := Position{Lat: 46.5, Lon: 11.35}

	annotated := e.WithDistance(from)
	require.NotNil(t, annotated.DistanceKm)
	assert.InDelta(t, 0.0, *annotated.DistanceKm, 1e-6)

	// The receiver is untouched.
	assert.Nil(t, e.DistanceKm)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Category: "A", Timestamp: now},
		{Category: "A", Timestamp: now},
		{Category: "A", Timestamp: now},
		{Category: "B", Timestamp: now},
		{Category: "B", Timestamp: now},
	}

	assert.Equal(t, map[string]int{"A": 3, "B": 2}, Summarize(events))
	assert.Empty(t, Summarize(nil))
}

func TestHaversine(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		p := Position{Lat: 46.07, Lon: 11.12}
		assert.InDelta(t, 0.0, Haversine(p, p), 1e-9)
	})

	t.Run("bolzano to trento", func(t *testing.T) {
		bolzano := Position{Lat: 46.4983, Lon: 11.3548}
		trento := Position{Lat: 46.0748, Lon: 11.1217}
		d := Haversine(bolzano, trento)
		assert.InDelta(t, 50, d, 3)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Position{Lat: 46.5, Lon: 11.35}
		b := Position{Lat: 45.44, Lon: 10.99}
		assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a := Position{Lat: 46, Lon: 11}
		b := Position{Lat: 47, Lon: 11}
		assert.InDelta(t, 111.2, Haversine(a, b), 0.5)
	})
}
