package prelude

import (
	"testing"

	"kestrel/internal/opres"
	"kestrel/internal/platform"
)

func TestOperatorsAreUniquePerFixity(t *testing.T) {
	tab := opres.NewTable(Operators()...)
	for _, d := range Operators() {
		if _, err := tab.Lookup(d.Symbol, d.Fixity); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}
	minus, _ := tab.Lookup("-", opres.Infix)
	star, _ := tab.Lookup("*", opres.Infix)
	if minus.Precedence >= star.Precedence {
		t.Fatalf("* must bind tighter than -")
	}
	eq, _ := tab.Lookup("==", opres.Infix)
	if eq.Assoc != opres.AssocNone {
		t.Fatalf("comparisons are non-associative")
	}
}

func TestFuncsCoverFamilies(t *testing.T) {
	var sawFloatShift, sawBoolAdd, sawI32Cmp, sawByteSwap8 bool
	for _, f := range Funcs() {
		b := f.Params[0].Builtin
		switch {
		case f.Op == OpShl && b.Kind() == platform.KindFloat:
			sawFloatShift = true
		case f.Op == OpAdd && b == platform.Bool:
			sawBoolAdd = true
		case f.Op == OpLt && b == platform.Int32:
			sawI32Cmp = f.Result.Builtin == platform.Bool
		case f.Op == OpByteSwap && (b == platform.Int8 || b == platform.Uint8):
			sawByteSwap8 = true
		}
	}
	if sawFloatShift || sawBoolAdd || sawByteSwap8 {
		t.Fatalf("overloads outside their family were generated")
	}
	if !sawI32Cmp {
		t.Fatalf("int32 < int32 -> bool missing")
	}
}
