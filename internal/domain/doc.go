// Package domain models the traffic and weather records used by the
// speed-advisory connector.
//
// # Event categories
//
// Upstream traffic events carry a free-text category in the bilingual
// Italian/German form used along the A22 corridor, e.g.
//
//	"coda | stau"                    → queue
//	"chiusura | sperre"              → road closure
//	"manifestazione | veranstaltung" → public manifestation
//
// Category membership is decided by substring matching against bilingual
// keyword pairs, not by a type tag. The same event may therefore match more
// than one category when keywords overlap; callers rely on this and it must
// not be "fixed" into exclusive classification.
//
// # Normalized weather
//
// WeatherIndex carries rain intensity and visibility already normalized to
// [0,1] by the weather collaborator, the raw air temperature in °C, and a
// binary frost-risk flag. One reading represents a point measurement at the
// vehicle position, not a spatial field.
package domain
