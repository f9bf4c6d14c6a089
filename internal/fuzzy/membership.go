// Package fuzzy implements a Mamdani-style fuzzy inference engine:
// triangular and trapezoidal membership functions over sampled universes,
// min/max composition of linguistic predicates, min-implication,
// max-aggregation, and centroid defuzzification.
package fuzzy

// Func maps a crisp value to a degree of truth in [0,1] for one
// linguistic term. A membership function returns 0 outside its support.
type Func func(x float64) float64

// Triangle returns a triangular membership function rising from 0 at a to
// 1 at b and falling back to 0 at c. Degenerate shapes with a == b or
// b == c are valid: the zero-width ramp behaves as a step at that boundary.
func Triangle(a, b, c float64) Func {
	return func(x float64) float64 {
		if x < a || x > c {
			return 0
		}
		up := 1.0
		if x < b {
			// a < b here, x >= a
			up = (x - a) / (b - a)
		}
		down := 1.0
		if x > b {
			// b < c here, x <= c
			down = (c - x) / (c - b)
		}
		return clamp01(min(up, down))
	}
}

// Trapezoid returns a trapezoidal membership function rising over [a,b],
// holding 1 over [b,c], and falling over [c,d]. Zero-width ramps (a == b
// or c == d) behave as steps.
func Trapezoid(a, b, c, d float64) Func {
	return func(x float64) float64 {
		if x < a || x > d {
			return 0
		}
		up := 1.0
		if x < b {
			up = (x - a) / (b - a)
		}
		down := 1.0
		if x > c {
			down = (d - x) / (d - c)
		}
		return clamp01(min(up, down))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
