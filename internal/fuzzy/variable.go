package fuzzy

import (
	"errors"
	"fmt"
)

// ErrConfig marks an invalid fuzzy-system configuration. All construction
// and loading failures wrap it, so callers can test with errors.Is.
var ErrConfig = errors.New("fuzzy: invalid configuration")

// DefaultResolution is the number of universe sample points used when a
// variable does not specify one. 101 points over a unit universe keeps the
// centroid error below 1%.
const DefaultResolution = 101

// Variable is one linguistic variable: a sampled universe of discourse and
// its named membership functions.
type Variable struct {
	Name     string
	Universe []float64
	Terms    map[string]Func
}

// NewVariable samples the universe [lo,hi] at n evenly spaced points and
// attaches the given terms. It fails when lo >= hi, n < 2, or no terms are
// given.
func NewVariable(name string, lo, hi float64, n int, terms map[string]Func) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: variable with empty name", ErrConfig)
	}
	if lo >= hi {
		return nil, fmt.Errorf("%w: variable %q universe [%g,%g] has min >= max", ErrConfig, name, lo, hi)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: variable %q needs at least 2 universe samples, got %d", ErrConfig, name, n)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: variable %q has no terms", ErrConfig, name)
	}

	universe := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range universe {
		universe[i] = lo + float64(i)*step
	}
	universe[n-1] = hi // avoid accumulation error on the last sample

	return &Variable{Name: name, Universe: universe, Terms: terms}, nil
}

// Fuzzify returns the degree of membership of the crisp value x in the
// given term.
func (v *Variable) Fuzzify(term string, x float64) (float64, error) {
	mf, ok := v.Terms[term]
	if !ok {
		return 0, fmt.Errorf("%w: variable %q has no term %q", ErrConfig, v.Name, term)
	}
	return mf(x), nil
}

// Registry holds the system's variables and designates exactly one of them
// as the output (consequent); all others are inputs (antecedents).
type Registry struct {
	vars   map[string]*Variable
	output string
}

// NewRegistry builds a registry from the given variables. The named output
// variable must be present.
func NewRegistry(vars []*Variable, output string) (*Registry, error) {
	byName := make(map[string]*Variable, len(vars))
	for _, v := range vars {
		if _, dup := byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrConfig, v.Name)
		}
		byName[v.Name] = v
	}
	if _, ok := byName[output]; !ok {
		return nil, fmt.Errorf("%w: output variable %q is not defined", ErrConfig, output)
	}
	return &Registry{vars: byName, output: output}, nil
}

// Var returns the named variable, or an error wrapping ErrConfig when it
// does not exist.
func (r *Registry) Var(name string) (*Variable, error) {
	v, ok := r.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown variable %q", ErrConfig, name)
	}
	return v, nil
}

// Output returns the consequent variable.
func (r *Registry) Output() *Variable {
	return r.vars[r.output]
}

// OutputName returns the name of the consequent variable.
func (r *Registry) OutputName() string {
	return r.output
}

// IsInput reports whether name refers to a defined antecedent variable.
func (r *Registry) IsInput(name string) bool {
	_, ok := r.vars[name]
	return ok && name != r.output
}
