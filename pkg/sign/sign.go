// Package sign implements the finite sign lattice used as the abstract
// value domain of the analysis: Bottom < {Negative, Zero, Positive} < Top.
// The lattice has height two, so repeated joins converge without widening.
package sign

// Sign is the abstract value of a variable.
type Sign int

const (
	Bottom   Sign = iota // unreachable / no value
	Negative             // strictly < 0
	Zero                 // exactly 0
	Positive             // strictly > 0
	Top                  // unknown, any value
)

func (s Sign) String() string {
	switch s {
	case Bottom:
		return "bottom"
	case Negative:
		return "negative"
	case Zero:
		return "zero"
	case Positive:
		return "positive"
	default:
		return "top"
	}
}

// FromInt abstracts a concrete integer.
func FromInt(v int64) Sign {
	switch {
	case v < 0:
		return Negative
	case v == 0:
		return Zero
	default:
		return Positive
	}
}

// Join returns the least upper bound of a and b. Bottom is the identity,
// Top is absorbing, and any two distinct concrete signs join to Top.
func Join(a, b Sign) Sign {
	switch {
	case a == b:
		return a
	case a == Bottom:
		return b
	case b == Bottom:
		return a
	default:
		return Top
	}
}

// Meet returns the greatest lower bound of a and b. Two contradicting
// concrete signs meet to Bottom, which marks an infeasible path.
func Meet(a, b Sign) Sign {
	switch {
	case a == b:
		return a
	case a == Top:
		return b
	case b == Top:
		return a
	default:
		return Bottom
	}
}

// Add is the abstract transfer of integer addition.
func Add(a, b Sign) Sign {
	if a == Bottom || b == Bottom {
		return Bottom
	}
	switch {
	case a == Zero:
		return b
	case b == Zero:
		return a
	case a == b:
		return a // neg+neg, pos+pos
	default:
		return Top
	}
}

// Sub is the abstract transfer of integer subtraction.
func Sub(a, b Sign) Sign {
	return Add(a, Neg(b))
}

// Neg is the abstract transfer of unary negation.
func Neg(a Sign) Sign {
	switch a {
	case Negative:
		return Positive
	case Positive:
		return Negative
	default:
		return a
	}
}

// Mul is the abstract transfer of integer multiplication.
func Mul(a, b Sign) Sign {
	if a == Bottom || b == Bottom {
		return Bottom
	}
	switch {
	case a == Zero || b == Zero:
		return Zero
	case a == Top || b == Top:
		return Top
	case a == b:
		return Positive
	default:
		return Negative
	}
}

// Div is the abstract transfer of integer division. A possibly-zero divisor
// widens to Top; the zero-safety check reports such sites separately.
func Div(a, b Sign) Sign {
	if a == Bottom || b == Bottom {
		return Bottom
	}
	if b == Zero || b == Top {
		return Top
	}
	if a == Zero {
		return Zero
	}
	// integer division can truncate to zero, e.g. 1/2
	return Top
}
