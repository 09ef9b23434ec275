package sign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allSigns = []Sign{Bottom, Negative, Zero, Positive, Top}

func TestJoin_LatticeLaws(t *testing.T) {
	for _, a := range allSigns {
		// Idempotent
		assert.Equal(t, a, Join(a, a), "join(%s, %s)", a, a)
		// Bottom is the identity
		assert.Equal(t, a, Join(Bottom, a))
		assert.Equal(t, a, Join(a, Bottom))
		// Top absorbs
		assert.Equal(t, Top, Join(Top, a))
		assert.Equal(t, Top, Join(a, Top))
		for _, b := range allSigns {
			// Commutative
			assert.Equal(t, Join(a, b), Join(b, a), "join(%s, %s)", a, b)
			for _, c := range allSigns {
				// Associative
				assert.Equal(t, Join(Join(a, b), c), Join(a, Join(b, c)))
			}
		}
	}
}

func TestJoin_DistinctConcreteSigns(t *testing.T) {
	assert.Equal(t, Top, Join(Negative, Positive))
	assert.Equal(t, Top, Join(Negative, Zero))
	assert.Equal(t, Top, Join(Zero, Positive))
}

func TestMeet_Contradiction(t *testing.T) {
	assert.Equal(t, Bottom, Meet(Negative, Positive))
	assert.Equal(t, Bottom, Meet(Zero, Positive))
	assert.Equal(t, Positive, Meet(Top, Positive))
	assert.Equal(t, Positive, Meet(Positive, Top))
	assert.Equal(t, Zero, Meet(Zero, Zero))
}

func TestFromInt(t *testing.T) {
	assert.Equal(t, Negative, FromInt(-7))
	assert.Equal(t, Zero, FromInt(0))
	assert.Equal(t, Positive, FromInt(42))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		a, b, want Sign
	}{
		{Positive, Positive, Positive},
		{Negative, Negative, Negative},
		{Zero, Positive, Positive},
		{Negative, Zero, Negative},
		{Zero, Zero, Zero},
		{Positive, Negative, Top},
		{Top, Positive, Top},
		{Bottom, Positive, Bottom},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Add(tt.a, tt.b), "add(%s, %s)", tt.a, tt.b)
	}
}

func TestSub(t *testing.T) {
	assert.Equal(t, Positive, Sub(Positive, Negative))
	assert.Equal(t, Negative, Sub(Negative, Positive))
	assert.Equal(t, Top, Sub(Positive, Positive))
	assert.Equal(t, Zero, Sub(Zero, Zero))
}

func TestNeg(t *testing.T) {
	assert.Equal(t, Negative, Neg(Positive))
	assert.Equal(t, Positive, Neg(Negative))
	assert.Equal(t, Zero, Neg(Zero))
	assert.Equal(t, Top, Neg(Top))
	assert.Equal(t, Bottom, Neg(Bottom))
}

func TestMul(t *testing.T) {
	tests := []struct {
		a, b, want Sign
	}{
		{Positive, Positive, Positive},
		{Negative, Negative, Positive},
		{Positive, Negative, Negative},
		{Zero, Positive, Zero},
		{Zero, Top, Zero},
		{Top, Positive, Top},
		{Bottom, Zero, Bottom},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mul(tt.a, tt.b), "mul(%s, %s)", tt.a, tt.b)
	}
}

func TestDiv(t *testing.T) {
	// possibly-zero divisors widen to Top
	assert.Equal(t, Top, Div(Positive, Zero))
	assert.Equal(t, Top, Div(Positive, Top))
	// zero dividend with a nonzero divisor stays zero
	assert.Equal(t, Zero, Div(Zero, Positive))
	// truncation: 1/2 == 0, so a positive quotient is not guaranteed
	assert.Equal(t, Top, Div(Positive, Positive))
	assert.Equal(t, Bottom, Div(Bottom, Positive))
}

func TestString(t *testing.T) {
	assert.Equal(t, "bottom", Bottom.String())
	assert.Equal(t, "negative", Negative.String())
	assert.Equal(t, "zero", Zero.String())
	assert.Equal(t, "positive", Positive.String())
	assert.Equal(t, "top", Top.String())
}
