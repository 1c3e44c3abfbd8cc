package lower

import (
	"math/big"
	"strconv"
	"strings"

	"kestrel/internal/hir"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

// intRepr renders v as a bits-wide IR constant. Unsigned values above the
// signed range are printed in two's complement so the backend accepts them.
func intRepr(v *big.Int, bits int) string {
	if bits <= 1 {
		if v.Sign() == 0 {
			return "false"
		}
		return "true"
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if v.Cmp(limit) >= 0 {
		return new(big.Int).Sub(v, new(big.Int).Lsh(limit, 1)).String()
	}
	return v.String()
}

func (ml *moduleLowerer) floatRepr(v *big.Rat, t types.TypeID) string {
	f, _ := v.Float64()
	return ssa.FloatConst(f, ml.bits(t))
}

// constant renders a static initializer. Validation admits only literals,
// aggregates of literals and pointer-shape conversions of them.
func (ml *moduleLowerer) constant(e *hir.Expr) string {
	switch d := e.Data.(type) {
	case hir.IntLitData:
		return intRepr(d.Value, ml.bits(e.Type))
	case hir.FloatLitData:
		return ml.floatRepr(d.Value, e.Type)
	case hir.BoolLitData:
		if d.Value {
			return "true"
		}
		return "false"
	case hir.NullLitData:
		return "null"
	case hir.StringLitData:
		return ssa.GlobalName(ml.pool.Intern(d.Bytes))
	case hir.ConvertData:
		switch d.Conv {
		case hir.ConvNullToPointer:
			return "null"
		case hir.ConvAddConst, hir.ConvArrayPointerToPointer, hir.ConvPointerToBytePointer, hir.ConvNonNullableToNullable:
			return ml.constant(d.X)
		case hir.ConvArrayPointerToSlice:
			return "{ ptr " + ml.constant(d.X) + ", " + ml.intPtr() + " " + ml.arrayLen(d.X.Type) + " }"
		}
	case hir.StructLitData:
		return ml.constAggregate(e.Type, d.Fields)
	case hir.TupleLitData:
		return ml.constAggregate(e.Type, d.Elems)
	case hir.ArrayLitData:
		parts := make([]string, len(d.Elems))
		for i, x := range d.Elems {
			parts[i] = ml.irType(x.Type) + " " + ml.constant(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	invariant("%s is not a constant", e.Kind)
	return ""
}

func (ml *moduleLowerer) constAggregate(t types.TypeID, fields []*hir.Expr) string {
	a := ml.aggregateOf(t)
	parts := make([]string, len(a.parts))
	for i, p := range a.parts {
		parts[i] = p + " zeroinitializer"
	}
	for i, f := range fields {
		if f == nil {
			continue
		}
		j := a.index[i]
		parts[j] = a.parts[j] + " " + ml.constant(f)
	}
	if len(parts) == 0 {
		return "<{}>"
	}
	return "<{ " + strings.Join(parts, ", ") + " }>"
}

// arrayLen is the element count of the array a pointer type points at.
func (ml *moduleLowerer) arrayLen(ptr types.TypeID) string {
	pt := ml.lookup(ptr)
	if pt.Kind != types.KindPointer {
		invariant("%s is not an array pointer", ml.types.TypeString(ptr))
	}
	at := ml.lookup(pt.Elem)
	if at.Kind != types.KindArray {
		invariant("%s is not an array pointer", ml.types.TypeString(ptr))
	}
	return strconv.FormatUint(uint64(at.Count), 10)
}
