package lower

import (
	"testing"

	"kestrel/internal/prelude"
)

func TestArithOpcodes(t *testing.T) {
	cases := []struct {
		op     prelude.Op
		flavor int
		want   string
	}{
		{prelude.OpAdd, flavorSigned, "add"},
		{prelude.OpDiv, flavorSigned, "sdiv"},
		{prelude.OpDiv, flavorUnsigned, "udiv"},
		{prelude.OpRem, flavorFloat, "frem"},
		{prelude.OpShr, flavorSigned, "ashr"},
		{prelude.OpShr, flavorUnsigned, "lshr"},
		{prelude.OpBitAnd, flavorFloat, ""},
		{prelude.OpEq, flavorSigned, ""},
	}
	for _, c := range cases {
		if got := arithOpcode(c.op, c.flavor); got != c.want {
			t.Fatalf("arithOpcode(%s, %d) = %q, want %q", c.op, c.flavor, got, c.want)
		}
	}
	if isArith(prelude.OpLt) || !isArith(prelude.OpMul) {
		t.Fatalf("isArith misclassifies")
	}
}

func TestComparePredicates(t *testing.T) {
	cases := []struct {
		op     prelude.Op
		flavor int
		want   string
	}{
		{prelude.OpLe, flavorSigned, "sle"},
		{prelude.OpGe, flavorSigned, "sge"},
		{prelude.OpLe, flavorUnsigned, "ule"},
		{prelude.OpGe, flavorUnsigned, "uge"},
		{prelude.OpLe, flavorFloat, "ole"},
		{prelude.OpNe, flavorFloat, "une"},
		{prelude.OpLt, flavorUnsigned, "ult"},
	}
	for _, c := range cases {
		if got := comparePredicate(c.op, c.flavor); got != c.want {
			t.Fatalf("comparePredicate(%s, %d) = %q, want %q", c.op, c.flavor, got, c.want)
		}
	}
}
