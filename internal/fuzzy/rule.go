package fuzzy

import (
	"fmt"
	"strings"
)

// Op is the node kind of a predicate tree.
type Op int

const (
	OpLeaf Op = iota
	OpAnd
	OpOr
)

// Predicate is a node of a rule antecedent: either a (variable, term) leaf
// or an AND/OR combination of children. Trees are built once at load time
// and evaluated against crisp inputs per Zadeh fuzzy logic: AND is the
// minimum of the children's degrees, OR the maximum.
type Predicate struct {
	Op       Op
	Var      string
	Term     string
	Children []Predicate
}

// Leaf builds a (variable, term) predicate.
func Leaf(variable, term string) Predicate {
	return Predicate{Op: OpLeaf, Var: variable, Term: term}
}

// And combines predicates with fuzzy intersection (minimum).
func And(children ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Children: children}
}

// Or combines predicates with fuzzy union (maximum).
func Or(children ...Predicate) Predicate {
	return Predicate{Op: OpOr, Children: children}
}

// Strength evaluates the predicate against crisp input values, returning
// the rule activation degree in [0,1]. Missing inputs evaluate the leaf at
// degree 0 so that a rule over an unset variable simply cannot fire.
func (p Predicate) Strength(reg *Registry, inputs map[string]float64) (float64, error) {
	switch p.Op {
	case OpLeaf:
		v, err := reg.Var(p.Var)
		if err != nil {
			return 0, err
		}
		x, ok := inputs[p.Var]
		if !ok {
			return 0, nil
		}
		return v.Fuzzify(p.Term, x)
	case OpAnd:
		degree := 1.0
		for _, c := range p.Children {
			d, err := c.Strength(reg, inputs)
			if err != nil {
				return 0, err
			}
			if d < degree {
				degree = d
			}
		}
		return degree, nil
	case OpOr:
		degree := 0.0
		for _, c := range p.Children {
			d, err := c.Strength(reg, inputs)
			if err != nil {
				return 0, err
			}
			if d > degree {
				degree = d
			}
		}
		return degree, nil
	default:
		return 0, fmt.Errorf("%w: unknown predicate op %d", ErrConfig, p.Op)
	}
}

// validate checks every leaf against the registry: the variable must exist,
// must not be the output, and must define the referenced term.
func (p Predicate) validate(reg *Registry) error {
	switch p.Op {
	case OpLeaf:
		v, err := reg.Var(p.Var)
		if err != nil {
			return err
		}
		if p.Var == reg.OutputName() {
			return fmt.Errorf("%w: antecedent references output variable %q", ErrConfig, p.Var)
		}
		if _, ok := v.Terms[p.Term]; !ok {
			return fmt.Errorf("%w: variable %q has no term %q", ErrConfig, p.Var, p.Term)
		}
		return nil
	case OpAnd, OpOr:
		if len(p.Children) == 0 {
			return fmt.Errorf("%w: %s node with no children", ErrConfig, p.opName())
		}
		for _, c := range p.Children {
			if err := c.validate(reg); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown predicate op %d", ErrConfig, p.Op)
	}
}

func (p Predicate) opName() string {
	switch p.Op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "leaf"
	}
}

// String renders the predicate in a compact prefix form, useful in logs
// and error messages.
func (p Predicate) String() string {
	switch p.Op {
	case OpLeaf:
		return p.Var + "=" + p.Term
	default:
		parts := make([]string, len(p.Children))
		for i, c := range p.Children {
			parts[i] = c.String()
		}
		return p.opName() + "(" + strings.Join(parts, ", ") + ")"
	}
}

// Rule pairs an antecedent predicate with a consequent term of the output
// variable.
type Rule struct {
	Antecedent Predicate
	Consequent string // term of the registry's output variable
}
