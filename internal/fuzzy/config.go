package fuzzy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is the declarative rule-configuration format:
//
//	output: speed
//	memberships:
//	  traffic:
//	    universe: [0, 1]
//	    resolution: 101        # optional, defaults to 101
//	    functions:
//	      low:  [0, 0, 0.6]    # 3 control points → triangle
//	      high: [0.4, 1, 1]    # 4 control points → trapezoid
//	rules:
//	  - if: {traffic: high}
//	    then: {speed: slow}
//	  - if:
//	      or:
//	        - {traffic: high}
//	        - and: [{weather: bad}, {fatigue: tired}]
//	    then: {speed: slow}
//
// A rule's "if" value is a predicate tree: a map whose single "and"/"or"
// key holds a list of child nodes, or a map of variable→term leaves
// (several keys combine as an implicit AND). When "output" is omitted, a
// variable named "speed" is taken as the consequent.
type Document struct {
	Output      string                    `yaml:"output"`
	Memberships map[string]MembershipSpec `yaml:"memberships"`
	Rules       []RuleSpec                `yaml:"rules"`
}

// MembershipSpec declares one variable: universe bounds, sample
// resolution, and named membership-function shapes.
type MembershipSpec struct {
	Universe   []float64            `yaml:"universe"`
	Resolution int                  `yaml:"resolution"`
	Functions  map[string][]float64 `yaml:"functions"`
}

// RuleSpec declares one rule.
type RuleSpec struct {
	If   any               `yaml:"if"`
	Then map[string]string `yaml:"then"`
}

// Parse decodes a YAML rule-configuration document and builds a validated
// engine. All failures wrap ErrConfig.
func Parse(data []byte) (*Engine, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return Build(doc)
}

// LoadFile reads and parses a rule-configuration document from disk.
func LoadFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule configuration: %w", err)
	}
	return Parse(data)
}

// Build constructs an engine from an already-decoded document.
func Build(doc Document) (*Engine, error) {
	if len(doc.Memberships) == 0 {
		return nil, fmt.Errorf("%w: no membership section", ErrConfig)
	}

	output := doc.Output
	if output == "" {
		if _, ok := doc.Memberships["speed"]; !ok {
			return nil, fmt.Errorf("%w: no output variable declared", ErrConfig)
		}
		output = "speed"
	}
	if _, ok := doc.Memberships[output]; !ok {
		return nil, fmt.Errorf("%w: output variable %q is not defined", ErrConfig, output)
	}

	names := make([]string, 0, len(doc.Memberships))
	for name := range doc.Memberships {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]*Variable, 0, len(names))
	for _, name := range names {
		v, err := buildVariable(name, doc.Memberships[name])
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}

	reg, err := NewRegistry(vars, output)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, rs := range doc.Rules {
		r, err := buildRule(rs, output)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}

	return NewEngine(reg, rules)
}

func buildVariable(name string, spec MembershipSpec) (*Variable, error) {
	if len(spec.Universe) != 2 {
		return nil, fmt.Errorf("%w: variable %q universe must be [min, max], got %v",
			ErrConfig, name, spec.Universe)
	}
	resolution := spec.Resolution
	if resolution == 0 {
		resolution = DefaultResolution
	}

	terms := make(map[string]Func, len(spec.Functions))
	for term, pts := range spec.Functions {
		switch len(pts) {
		case 3:
			terms[term] = Triangle(pts[0], pts[1], pts[2])
		case 4:
			terms[term] = Trapezoid(pts[0], pts[1], pts[2], pts[3])
		default:
			return nil, fmt.Errorf("%w: variable %q term %q needs 3 or 4 control points, got %d",
				ErrConfig, name, term, len(pts))
		}
	}
	return NewVariable(name, spec.Universe[0], spec.Universe[1], resolution, terms)
}

func buildRule(rs RuleSpec, output string) (Rule, error) {
	if rs.If == nil {
		return Rule{}, fmt.Errorf("%w: rule has no antecedent", ErrConfig)
	}
	antecedent, err := buildPredicate(rs.If)
	if err != nil {
		return Rule{}, err
	}

	if len(rs.Then) != 1 {
		return Rule{}, fmt.Errorf("%w: rule consequent must set exactly one variable, got %v",
			ErrConfig, rs.Then)
	}
	for outVar, term := range rs.Then {
		if outVar != output {
			return Rule{}, fmt.Errorf("%w: rule consequent targets %q, but the output variable is %q",
				ErrConfig, outVar, output)
		}
		return Rule{Antecedent: antecedent, Consequent: term}, nil
	}
	return Rule{}, fmt.Errorf("%w: rule has no consequent", ErrConfig)
}

// buildPredicate converts a decoded YAML node into a predicate tree.
// Leaf keys of a multi-key map are sorted so the tree shape is
// deterministic regardless of map iteration order.
func buildPredicate(node any) (Predicate, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: predicate node must be a mapping, got %T", ErrConfig, node)
	}
	if len(m) == 0 {
		return Predicate{}, fmt.Errorf("%w: empty predicate node", ErrConfig)
	}

	if list, ok := m["and"]; ok {
		if len(m) != 1 {
			return Predicate{}, fmt.Errorf("%w: 'and' node must be the only key in its mapping", ErrConfig)
		}
		children, err := buildChildren(list)
		if err != nil {
			return Predicate{}, err
		}
		return And(children...), nil
	}
	if list, ok := m["or"]; ok {
		if len(m) != 1 {
			return Predicate{}, fmt.Errorf("%w: 'or' node must be the only key in its mapping", ErrConfig)
		}
		children, err := buildChildren(list)
		if err != nil {
			return Predicate{}, err
		}
		return Or(children...), nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	leaves := make([]Predicate, 0, len(keys))
	for _, variable := range keys {
		term, ok := m[variable].(string)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: term for variable %q must be a string, got %T",
				ErrConfig, variable, m[variable])
		}
		leaves = append(leaves, Leaf(variable, term))
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return And(leaves...), nil
}

func buildChildren(list any) ([]Predicate, error) {
	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: 'and'/'or' value must be a list, got %T", ErrConfig, list)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: 'and'/'or' node with no children", ErrConfig)
	}
	children := make([]Predicate, 0, len(items))
	for _, item := range items {
		c, err := buildPredicate(item)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}
