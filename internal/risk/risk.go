// Package risk provides the default speed-advisory fuzzy rule set.
//
// The membership design follows the intelligent speed advisory literature
// (IEEE 10459507): normalized unit universes for the risk signals, a °C
// universe for ambient temperature, and a unit speed-factor consequent.
package risk

import (
	_ "embed"
	"fmt"

	"github.com/landigf/MinervaS/internal/fuzzy"
)

//go:embed rules.yaml
var defaultRules []byte

// Input variable names expected by the default rule set.
const (
	VarTraffic  = "traffic"
	VarWeather  = "weather"
	VarFatigue  = "fatigue"
	VarDeadline = "deadline"
	VarTemp     = "temp"
)

// NewEngine builds the default speed-advisory engine from the embedded
// rule document. The document goes through the regular loader, so the
// embedded configuration is validated exactly like a user-provided one.
func NewEngine() (*fuzzy.Engine, error) {
	eng, err := fuzzy.Parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("embedded rule set: %w", err)
	}
	return eng, nil
}
