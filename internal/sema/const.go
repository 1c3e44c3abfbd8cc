package sema

import (
	"math/big"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/prelude"
	"kestrel/internal/types"
)

// constExpr checks a constant expression of type expected, such as an array
// length. Integer arithmetic over literals is folded.
func (c *checker) constExpr(id ast.ExprID, expected types.TypeID) *hir.Expr {
	saved := c.fn
	c.fn = nil
	defer func() { c.fn = saved }()
	e := c.rvalue(id, expected)
	if e == nil {
		return nil
	}
	e = c.fold(e)
	e = c.coerce(e, expected, diag.SemaTypeMismatch, "constant expression")
	if e == nil {
		return nil
	}
	if !c.isConstant(e) {
		c.errorf(diag.SemaNonConstantInitializer, e.Span, "expression is not constant").Emit()
		return nil
	}
	return e
}

// constInit checks a global initializer. t is NoTypeID when the global's
// type is inferred.
func (c *checker) constInit(id ast.ExprID, t types.TypeID) *hir.Expr {
	saved := c.fn
	c.fn = nil
	defer func() { c.fn = saved }()
	e := c.rvalue(id, t)
	if e == nil {
		return nil
	}
	e = c.fold(e)
	if t == types.NoTypeID {
		t = e.Type
		if c.types.IsNull(t) {
			c.errorf(diag.SemaInvalidType, e.Span, "cannot infer a type from null").Emit()
			return nil
		}
	}
	e = c.coerce(e, t, diag.SemaTypeMismatch, "initializer")
	if e == nil {
		return nil
	}
	if !c.isConstant(e) {
		c.errorf(diag.SemaNonConstantInitializer, e.Span, "global initializer must be a constant").Emit()
		return nil
	}
	return e
}

// isConstant reports whether e can be emitted as static data.
func (c *checker) isConstant(e *hir.Expr) bool {
	switch d := e.Data.(type) {
	case hir.IntLitData, hir.FloatLitData, hir.BoolLitData, hir.StringLitData, hir.NullLitData:
		return true
	case hir.ConvertData:
		switch d.Conv {
		case hir.ConvNullToPointer, hir.ConvAddConst, hir.ConvArrayPointerToPointer,
			hir.ConvArrayPointerToSlice, hir.ConvPointerToBytePointer, hir.ConvNonNullableToNullable:
			return c.isConstant(d.X)
		}
		return false
	case hir.StructLitData:
		for _, f := range d.Fields {
			if f != nil && !c.isConstant(f) {
				return false
			}
		}
		return true
	case hir.TupleLitData:
		return c.allConstant(d.Elems)
	case hir.ArrayLitData:
		return c.allConstant(d.Elems)
	}
	return false
}

func (c *checker) allConstant(list []*hir.Expr) bool {
	for _, x := range list {
		if !c.isConstant(x) {
			return false
		}
	}
	return true
}

// fold evaluates builtin integer arithmetic whose operands are literals.
// Results outside the type's range are left unfolded, so they are rejected
// as non-constant rather than silently wrapped.
func (c *checker) fold(e *hir.Expr) *hir.Expr {
	d, ok := e.Data.(hir.BuiltinData)
	if !ok {
		return e
	}
	args := make([]*big.Int, len(d.Args))
	for i, a := range d.Args {
		a = c.fold(a)
		lit, ok := a.Data.(hir.IntLitData)
		if !ok {
			return e
		}
		args[i] = lit.Value
	}
	b, ok := c.types.BuiltinOf(e.Type)
	if !ok || !b.IsInteger() {
		return e
	}
	v := new(big.Int)
	switch {
	case d.Op == prelude.OpNeg && len(args) == 1:
		v.Neg(args[0])
	case d.Op == prelude.OpBitNot && len(args) == 1:
		v.Not(args[0])
	case len(args) != 2:
		return e
	default:
		x, y := args[0], args[1]
		switch d.Op {
		case prelude.OpAdd:
			v.Add(x, y)
		case prelude.OpSub:
			v.Sub(x, y)
		case prelude.OpMul:
			v.Mul(x, y)
		case prelude.OpDiv:
			if y.Sign() == 0 {
				return e
			}
			v.Quo(x, y)
		case prelude.OpRem:
			if y.Sign() == 0 {
				return e
			}
			v.Rem(x, y)
		case prelude.OpBitAnd:
			v.And(x, y)
		case prelude.OpBitOr:
			v.Or(x, y)
		case prelude.OpBitXor:
			v.Xor(x, y)
		case prelude.OpShl, prelude.OpShr:
			if y.Sign() < 0 || !y.IsInt64() || y.Int64() >= int64(c.arch.Bits(b)) {
				return e
			}
			if d.Op == prelude.OpShl {
				v.Lsh(x, uint(y.Int64()))
			} else {
				v.Rsh(x, uint(y.Int64()))
			}
		default:
			return e
		}
	}
	if !platform.InRangeInt(v, b, c.arch) {
		return e
	}
	return &hir.Expr{Kind: hir.ExprIntLit, Type: e.Type, Span: e.Span, Data: hir.IntLitData{Value: v}}
}
