package platform

import (
	"fmt"
	"math/big"
)

// IntBounds returns the inclusive range of an integer builtin on a.
// Platform-sized types resolve through the pointer size first.
func IntBounds(b Builtin, a Arch) (lo, hi *big.Int) {
	r := a.Resolve(b)
	if !r.IsInteger() {
		panic(fmt.Errorf("platform: IntBounds on non-integer %s", b))
	}
	bits := uint(a.Bits(r))
	one := big.NewInt(1)
	if r.Kind() == KindInt {
		hi = new(big.Int).Lsh(one, bits-1)
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, one)
		return lo, hi
	}
	hi = new(big.Int).Lsh(one, bits)
	hi.Sub(hi, one)
	return new(big.Int), hi
}

// FloatMax returns the largest finite magnitude of a float builtin as an exact rational.
func FloatMax(b Builtin) *big.Rat {
	var mantissa, exp uint
	switch b {
	case Float32:
		mantissa, exp = 24, 104 // (2^24-1) * 2^104
	case Float64:
		mantissa, exp = 53, 971 // (2^53-1) * 2^971
	default:
		panic(fmt.Errorf("platform: FloatMax on non-float %s", b))
	}
	m := new(big.Int).Lsh(big.NewInt(1), mantissa)
	m.Sub(m, big.NewInt(1))
	m.Lsh(m, exp)
	return new(big.Rat).SetInt(m)
}

// InRangeInt reports lo <= v <= hi for an integer builtin.
func InRangeInt(v *big.Int, b Builtin, a Arch) bool {
	lo, hi := IntBounds(b, a)
	return v.Cmp(lo) >= 0 && v.Cmp(hi) <= 0
}

// InRangeFloat reports |v| <= max for a float builtin.
func InRangeFloat(v *big.Rat, b Builtin) bool {
	limit := FloatMax(b)
	abs := new(big.Rat).Abs(v)
	return abs.Cmp(limit) <= 0
}

// InRange checks an exact value against any numeric builtin.
// Integer targets additionally require v to be integral.
func InRange(v *big.Rat, b Builtin, a Arch) bool {
	if !b.IsNumeric() {
		panic(fmt.Errorf("platform: InRange on non-numeric %s", b))
	}
	if b.Kind() == KindFloat {
		return InRangeFloat(v, b)
	}
	if !v.IsInt() {
		return false
	}
	return InRangeInt(v.Num(), b, a)
}
