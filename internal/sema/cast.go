package sema

import (
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/types"
)

// cast checks an explicit cast. Each cast kind changes exactly one property
// of the value: signedness, width, pointer-ness or numeric domain.
func (c *checker) cast(x *ast.Expr) *hir.Expr {
	to := c.resolveType(x.Type)
	v := c.settle(c.rvalue(x.X, types.NoTypeID), "cast")
	if to == types.NoTypeID || v == nil {
		return nil
	}
	to = c.types.RemoveConst(to)
	op, ok := c.castOp(x.Cast, v.Type, to)
	if !ok {
		c.errorf(diag.SemaInvalidCast, x.Span, fmt.Sprintf("invalid %s cast from %s to %s",
			x.Cast, c.types.TypeString(v.Type), c.types.TypeString(to))).Emit()
		return nil
	}
	return &hir.Expr{Kind: hir.ExprCast, Type: to, Span: x.Span, Data: hir.CastData{Op: op, X: v}}
}

func (c *checker) castOp(kind ast.CastKind, from, to types.TypeID) (hir.CastOp, bool) {
	in := c.types
	fb, fok := in.BuiltinOf(from)
	tb, tok := in.BuiltinOf(to)
	fe, _, fPtr := in.PointerInfo(from)
	te, _, tPtr := in.PointerInfo(to)
	switch kind {
	case ast.CastSign:
		if fok && tok && fb.IsInteger() && tb.IsInteger() && c.arch.Bits(fb) == c.arch.Bits(tb) {
			return hir.CastNoop, true
		}
	case ast.CastWidth:
		if !fok || !tok {
			return 0, false
		}
		if fb.IsInteger() && tb.IsInteger() {
			fw, tw := c.arch.Bits(fb), c.arch.Bits(tb)
			switch {
			case fw == tw:
				return hir.CastNoop, true
			case tw < fw:
				return hir.CastTrunc, true
			case tb.IsSigned():
				return hir.CastSExt, true
			default:
				return hir.CastZExt, true
			}
		}
		if fb.Kind() == platform.KindFloat && tb.Kind() == platform.KindFloat {
			switch fw, tw := c.arch.Bits(fb), c.arch.Bits(tb); {
			case fw == tw:
				return hir.CastNoop, true
			case tw < fw:
				return hir.CastFPTrunc, true
			default:
				return hir.CastFPExt, true
			}
		}
	case ast.CastPointer:
		switch {
		case fPtr && tPtr:
			// only const and nullability may change
			if in.RemoveConst(fe) == in.RemoveConst(te) {
				return hir.CastNoop, true
			}
		case fPtr && tok && tb.IsInteger():
			return hir.CastPtrToInt, true
		case fok && fb.IsInteger() && tPtr:
			return hir.CastIntToPtr, true
		}
	case ast.CastNumeric:
		if !fok || !tok {
			return 0, false
		}
		switch {
		case fb.IsInteger() && tb.Kind() == platform.KindFloat:
			if fb.IsSigned() {
				return hir.CastSIToFP, true
			}
			return hir.CastUIToFP, true
		case fb.Kind() == platform.KindFloat && tb.IsInteger():
			if tb.IsSigned() {
				return hir.CastFPToSI, true
			}
			return hir.CastFPToUI, true
		}
	}
	return 0, false
}
