package platform

import (
	"math"
	"math/big"
	"testing"
)

func TestInt8Boundaries(t *testing.T) {
	a := MustParseTarget("x86_64-unknown-linux-gnu")
	cases := []struct {
		v    int64
		want bool
	}{
		{-128, true},
		{-129, false},
		{127, true},
		{128, false},
	}
	for _, c := range cases {
		if got := InRangeInt(big.NewInt(c.v), Int8, a); got != c.want {
			t.Fatalf("int8 inRange(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestUint8Boundaries(t *testing.T) {
	a := MustParseTarget("x86_64-unknown-linux-gnu")
	if !InRangeInt(big.NewInt(255), Uint8, a) {
		t.Fatalf("255 should fit uint8")
	}
	if InRangeInt(big.NewInt(256), Uint8, a) {
		t.Fatalf("256 should not fit uint8")
	}
	if InRangeInt(big.NewInt(-1), Uint8, a) {
		t.Fatalf("-1 should not fit uint8")
	}
}

func TestPlatformIntFollowsPointerSize(t *testing.T) {
	a32 := MustParseTarget("i686-pc-linux-gnu")
	_, hi := IntBounds(Int, a32)
	if hi.Int64() != math.MaxInt32 {
		t.Fatalf("int on i686 max = %s", hi)
	}
	avr := MustParseTarget("avr-unknown-unknown")
	_, hi = IntBounds(Uint, avr)
	if hi.Int64() != math.MaxUint16 {
		t.Fatalf("uint on avr max = %s", hi)
	}
	a64 := MustParseTarget("aarch64-apple-darwin")
	lo, _ := IntBounds(Int, a64)
	if lo.Int64() != math.MinInt64 {
		t.Fatalf("int on aarch64 min = %s", lo)
	}
}

func TestFloatMaxIsExact(t *testing.T) {
	f64 := FloatMax(Float64)
	want := new(big.Rat)
	want.SetFloat64(math.MaxFloat64)
	if f64.Cmp(want) != 0 {
		t.Fatalf("float64 max = %s", f64.FloatString(0))
	}
	f32 := FloatMax(Float32)
	want.SetFloat64(math.MaxFloat32)
	if f32.Cmp(want) != 0 {
		t.Fatalf("float32 max mismatch")
	}
	over := new(big.Rat).Add(f32, big.NewRat(1, 1))
	if InRangeFloat(over, Float32) {
		t.Fatalf("max+1 must not fit float32")
	}
	if !InRangeFloat(new(big.Rat).Neg(f32), Float32) {
		t.Fatalf("-max must fit float32")
	}
}

func TestInRangeRejectsFractionForInts(t *testing.T) {
	a := MustParseTarget("")
	if InRange(big.NewRat(1, 2), Int32, a) {
		t.Fatalf("0.5 is not an int32")
	}
	if !InRange(big.NewRat(1, 2), Float32, a) {
		t.Fatalf("0.5 is a float32")
	}
}

func TestNonNumericPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	IntBounds(Bool, MustParseTarget(""))
}

func TestParseTarget(t *testing.T) {
	a, err := ParseTarget("powerpc64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PtrSize != 8 || a.ByteOrder != BigEndian {
		t.Fatalf("unexpected arch %+v", a)
	}
	if _, err := ParseTarget("z80-none"); err == nil {
		t.Fatalf("expected unknown target error")
	}
	i386 := MustParseTarget("i386-unknown-linux-gnu")
	if i386.CAlignOf(Float64) != 4 || i386.AlignOf(Float64) != 8 {
		t.Fatalf("i386 C alignment of float64 should be 4, natural 8")
	}
}
