package sema

import (
	"fmt"
	"math/big"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/types"
)

// numericHint is the builtin numeric type a literal should take from its
// context, or NoTypeID.
func (c *checker) numericHint(expected types.TypeID) types.TypeID {
	if expected == types.NoTypeID {
		return types.NoTypeID
	}
	t := c.types.RemoveConst(expected)
	if c.types.IsNumeric(t) {
		return t
	}
	return types.NoTypeID
}

// intLiteral builds an integer literal. Range checks happen where the value
// is finally coerced, so an out-of-range literal can still pick an overload.
func (c *checker) intLiteral(x *ast.Expr, expected types.TypeID, neg bool) *hir.Expr {
	text := strings.ReplaceAll(x.Text, "_", "")
	v, ok := new(big.Int).SetString(text, 0)
	if !ok {
		c.errorf(diag.SemaInvalidType, x.Span, fmt.Sprintf("malformed integer literal %q", x.Text)).Emit()
		return nil
	}
	if neg {
		v.Neg(v)
	}
	t := c.numericHint(expected)
	if t == types.NoTypeID {
		t = c.types.Builtin(types.Int)
	}
	if c.types.IsFloat(t) {
		return &hir.Expr{Kind: hir.ExprFloatLit, Type: t, Span: x.Span, Data: hir.FloatLitData{Value: new(big.Rat).SetInt(v)}}
	}
	return &hir.Expr{Kind: hir.ExprIntLit, Type: t, Span: x.Span, Data: hir.IntLitData{Value: v}}
}

func (c *checker) floatLiteral(x *ast.Expr, expected types.TypeID, neg bool) *hir.Expr {
	text := strings.ReplaceAll(x.Text, "_", "")
	v, ok := new(big.Rat).SetString(text)
	if !ok {
		c.errorf(diag.SemaInvalidType, x.Span, fmt.Sprintf("malformed float literal %q", x.Text)).Emit()
		return nil
	}
	if neg {
		v.Neg(v)
	}
	t := c.numericHint(expected)
	if t == types.NoTypeID || !c.types.IsFloat(t) {
		t = c.types.Builtin(types.Float64)
	}
	return &hir.Expr{Kind: hir.ExprFloatLit, Type: t, Span: x.Span, Data: hir.FloatLitData{Value: v}}
}

// stringLiteral has type *const [N]byte; the terminating NUL is not counted.
func (c *checker) stringLiteral(x *ast.Expr) *hir.Expr {
	b := []byte(x.Text)
	n, ok := lengthOf(len(b))
	if !ok {
		c.errorf(diag.SemaLiteralOutOfRange, x.Span, "string literal too long").Emit()
		return nil
	}
	arr := c.types.AddConst(c.types.Array(c.types.Builtin(types.Byte), n))
	return &hir.Expr{
		Kind: hir.ExprStringLit,
		Type: c.types.Pointer(arr, false),
		Span: x.Span,
		Data: hir.StringLitData{Bytes: b},
	}
}

func (c *checker) uintConst(v uint64, x *ast.Expr) *hir.Expr {
	return &hir.Expr{
		Kind: hir.ExprIntLit,
		Type: c.types.Builtin(types.Uint),
		Span: x.Span,
		Data: hir.IntLitData{Value: new(big.Int).SetUint64(v)},
	}
}

func lengthOf(n int) (uint32, bool) {
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return 0, false
	}
	return uint32(n), true
}
