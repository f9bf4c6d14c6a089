package fuzzy

import (
	"fmt"
)

// Engine is an immutable Mamdani inference system: a variable registry plus
// a validated rule set. Evaluation is a pure computation; an Engine is safe
// for concurrent use.
type Engine struct {
	reg   *Registry
	rules []Rule
}

// NewEngine validates the rules against the registry and returns an engine.
// Every antecedent leaf must reference a defined input variable/term and
// every consequent must be a term of the output variable.
func NewEngine(reg *Registry, rules []Rule) (*Engine, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty rule set", ErrConfig)
	}
	out := reg.Output()
	for i, r := range rules {
		if err := r.Antecedent.validate(reg); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if _, ok := out.Terms[r.Consequent]; !ok {
			return nil, fmt.Errorf("rule %d: %w: output variable %q has no term %q",
				i, ErrConfig, out.Name, r.Consequent)
		}
	}
	return &Engine{reg: reg, rules: rules}, nil
}

// Registry exposes the engine's variable registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Infer runs fuzzification, rule evaluation, min-implication, and
// max-aggregation for the given crisp inputs. It returns the aggregated
// membership profile sampled over the output universe. Rules with zero
// activation contribute an all-zero clipped curve; when nothing fires the
// profile is all-zero.
func (e *Engine) Infer(inputs map[string]float64) ([]float64, error) {
	out := e.reg.Output()
	profile := make([]float64, len(out.Universe))

	for i, r := range e.rules {
		activation, err := r.Antecedent.Strength(e.reg, inputs)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if activation <= 0 {
			continue
		}
		mf := out.Terms[r.Consequent]
		for j, x := range out.Universe {
			clipped := mf(x)
			if activation < clipped {
				clipped = activation
			}
			if clipped > profile[j] {
				profile[j] = clipped
			}
		}
	}
	return profile, nil
}

// Evaluate runs inference and collapses the aggregated profile to a crisp
// output via the centroid method. When no rule fires the deterministic
// fallback is 0 (conservative: stop/slow). The result is clamped to the
// output universe bounds.
func (e *Engine) Evaluate(inputs map[string]float64) (float64, error) {
	profile, err := e.Infer(inputs)
	if err != nil {
		return 0, err
	}
	return Centroid(e.reg.Output().Universe, profile), nil
}

// Centroid computes the center of gravity of the membership profile mu
// sampled at the universe points, approximating both integrals with the
// trapezoidal rule. A non-positive denominator (no rule fired) yields the
// fallback 0 instead of dividing by zero. The result is clamped to the
// universe bounds.
func Centroid(universe, mu []float64) float64 {
	if len(universe) != len(mu) || len(universe) < 2 {
		return 0
	}

	var num, den float64
	for i := 1; i < len(universe); i++ {
		dx := universe[i] - universe[i-1]
		num += dx * (universe[i-1]*mu[i-1] + universe[i]*mu[i]) / 2
		den += dx * (mu[i-1] + mu[i]) / 2
	}
	if den <= 0 {
		return 0
	}

	c := num / den
	if lo := universe[0]; c < lo {
		return lo
	}
	if hi := universe[len(universe)-1]; c > hi {
		return hi
	}
	return c
}
