package sema

import (
	"fmt"
	"math/big"

	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/types"
)

type convResult uint8

const (
	convOK convResult = iota
	convMismatch
	convOutOfRange
)

type convStep struct {
	conv hir.ConvKind
	to   types.TypeID
}

// toRValue loads an lvalue. The loaded value drops top-level const.
func (c *checker) toRValue(e *hir.Expr) *hir.Expr {
	if e == nil || e.Category() == hir.RValue {
		return e
	}
	return &hir.Expr{
		Kind: hir.ExprConvert,
		Type: c.types.RemoveConst(e.Type),
		Span: e.Span,
		Data: hir.ConvertData{Conv: hir.ConvLValueToRValue, X: e},
	}
}

func (c *checker) materialize(e *hir.Expr) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprMaterialize, Type: e.Type, Span: e.Span, Data: hir.MaterializeData{X: e}}
}

func isLiteral(e *hir.Expr) bool {
	return e.Kind == hir.ExprIntLit || e.Kind == hir.ExprFloatLit
}

func (c *checker) isByte(t types.TypeID) bool {
	b, ok := c.types.BuiltinOf(t)
	return ok && b == types.Byte
}

// widens reports implicit integer/float widening: same signedness, or
// unsigned into a strictly wider signed type; float32 into float64.
func (c *checker) widens(from, to platform.Builtin) bool {
	if from.IsInteger() && to.IsInteger() {
		fb, tb := c.arch.Bits(from), c.arch.Bits(to)
		if tb <= fb {
			return false
		}
		return from.IsSigned() == to.IsSigned() || !from.IsSigned() && to.IsSigned()
	}
	return from == platform.Float32 && to == platform.Float64
}

// implicitSteps lists the conversion nodes taking a value of type from to
// type to. Both are unqualified value types.
func (c *checker) implicitSteps(from, to types.TypeID) ([]convStep, bool) {
	if from == to {
		return nil, true
	}
	in := c.types
	ft, ok1 := in.Lookup(from)
	tt, ok2 := in.Lookup(to)
	if !ok1 || !ok2 {
		return nil, false
	}
	switch {
	case ft.Kind == types.KindBuiltin && tt.Kind == types.KindBuiltin:
		if c.widens(ft.Builtin, tt.Builtin) {
			return []convStep{{hir.ConvWiden, to}}, true
		}
	case ft.Kind == types.KindBuiltin && ft.Builtin == types.Null:
		if tt.Kind == types.KindPointer && tt.Nullable {
			return []convStep{{hir.ConvNullToPointer, to}}, true
		}
	case ft.Kind == types.KindPointer && tt.Kind == types.KindPointer:
		return c.pointerSteps(ft, tt, to)
	case ft.Kind == types.KindPointer && tt.Kind == types.KindSlice:
		if elem, _, ok := in.ArrayInfo(ft.Elem); ok && !ft.Nullable && in.ConstCompatible(elem, tt.Elem) {
			return []convStep{{hir.ConvArrayPointerToSlice, to}}, true
		}
	case ft.Kind == types.KindSlice && tt.Kind == types.KindSlice:
		if in.ConstCompatible(ft.Elem, tt.Elem) {
			return []convStep{{hir.ConvAddConst, to}}, true
		}
		if c.isByte(tt.Elem) && (!in.IsConst(ft.Elem) || in.IsConst(tt.Elem)) {
			return []convStep{{hir.ConvSliceToByteSlice, to}}, true
		}
	}
	return nil, false
}

func (c *checker) pointerSteps(ft, tt types.Type, to types.TypeID) ([]convStep, bool) {
	in := c.types
	if ft.Nullable && !tt.Nullable {
		return nil, false
	}
	var steps []convStep
	if a, b := ft.Elem, tt.Elem; a != b {
		mid := in.Pointer(b, ft.Nullable)
		switch elem, _, isArr := in.ArrayInfo(a); {
		case in.ConstCompatible(a, b):
			steps = append(steps, convStep{hir.ConvAddConst, mid})
		case isArr && in.ConstCompatible(elem, b):
			steps = append(steps, convStep{hir.ConvArrayPointerToPointer, mid})
		case c.isByte(b) && (!in.IsConst(a) || in.IsConst(b)):
			steps = append(steps, convStep{hir.ConvPointerToBytePointer, mid})
		default:
			return nil, false
		}
	}
	if !ft.Nullable && tt.Nullable {
		steps = append(steps, convStep{hir.ConvNonNullableToNullable, to})
	}
	return steps, true
}

// literalFits reports whether a numeric literal can take type to exactly.
func (c *checker) literalFits(e *hir.Expr, to types.TypeID) bool {
	b, ok := c.types.BuiltinOf(to)
	if !ok || !b.IsNumeric() {
		return false
	}
	switch d := e.Data.(type) {
	case hir.IntLitData:
		if b.IsInteger() {
			return platform.InRangeInt(d.Value, b, c.arch)
		}
		return platform.InRangeFloat(new(big.Rat).SetInt(d.Value), b)
	case hir.FloatLitData:
		return b.Kind() == platform.KindFloat && platform.InRangeFloat(d.Value, b)
	}
	return false
}

func retypeLiteral(e *hir.Expr, to types.TypeID, toFloat bool) *hir.Expr {
	out := *e
	out.Type = to
	if d, ok := e.Data.(hir.IntLitData); ok && toFloat {
		out.Kind = hir.ExprFloatLit
		out.Data = hir.FloatLitData{Value: new(big.Rat).SetInt(d.Value)}
	}
	return &out
}

// convert produces e as a value of type to, inserting conversion nodes.
// Literals take the target type directly and are range checked, also when
// to is already their type. Poisoned operands pass through.
func (c *checker) convert(e *hir.Expr, to types.TypeID) (*hir.Expr, convResult) {
	rv := c.toRValue(e)
	if rv == nil || rv.Type == types.NoTypeID || to == types.NoTypeID {
		return rv, convOK
	}
	to = c.types.RemoveConst(to)
	if isLiteral(rv) {
		if c.literalFits(rv, to) {
			return retypeLiteral(rv, to, c.types.IsFloat(to)), convOK
		}
		if c.types.IsNumeric(to) && (rv.Kind == hir.ExprIntLit || c.types.IsFloat(to)) {
			return rv, convOutOfRange
		}
	}
	if rv.Type == to {
		return rv, convOK
	}
	steps, ok := c.implicitSteps(rv.Type, to)
	if !ok {
		return rv, convMismatch
	}
	out := rv
	for _, st := range steps {
		out = &hir.Expr{
			Kind: hir.ExprConvert,
			Type: st.to,
			Span: rv.Span,
			Data: hir.ConvertData{Conv: st.conv, X: out},
		}
	}
	return out, convOK
}

// convScore ranks an argument against a parameter type: 2 for an exact
// match, 1 for a literal taking a non-default type, 0 for an implicit
// conversion.
func (c *checker) convScore(e *hir.Expr, to types.TypeID) (int, bool) {
	if e.Type == types.NoTypeID || to == types.NoTypeID {
		return 0, true
	}
	to = c.types.RemoveConst(to)
	if isLiteral(e) {
		if !c.literalFits(e, to) {
			return 0, false
		}
		if e.Type == to {
			return 2, true
		}
		return 1, true
	}
	from := c.types.RemoveConst(e.Type)
	if from == to {
		return 2, true
	}
	if _, ok := c.implicitSteps(from, to); ok {
		return 0, true
	}
	return 0, false
}

// exactScore is convScore for operator operands: only literals and null
// adapt to the parameter type, anything else must already have it.
func (c *checker) exactScore(e *hir.Expr, to types.TypeID) (int, bool) {
	if e.Type == types.NoTypeID || to == types.NoTypeID || isLiteral(e) || c.types.IsNull(e.Type) {
		return c.convScore(e, to)
	}
	if c.types.RemoveConst(e.Type) == c.types.RemoveConst(to) {
		return 2, true
	}
	return 0, false
}

// exact is coerce without implicit conversions. Operator operands and
// assigned values must have the target type after const removal; literals
// and null still take it from context.
func (c *checker) exact(e *hir.Expr, to types.TypeID, code diag.Code, what string) *hir.Expr {
	rv := c.toRValue(e)
	if rv == nil || rv.Type == types.NoTypeID || to == types.NoTypeID {
		return rv
	}
	if isLiteral(rv) || c.types.IsNull(rv.Type) {
		return c.coerce(rv, to, code, what)
	}
	to = c.types.RemoveConst(to)
	if c.types.RemoveConst(rv.Type) != to {
		c.errorf(code, rv.Span, fmt.Sprintf("mismatched types %s and %s in %s",
			c.types.TypeString(rv.Type), c.types.TypeString(to), what)).Emit()
		return nil
	}
	return rv
}

// coerce converts e to to and reports failures under code. what names the
// position in the message.
func (c *checker) coerce(e *hir.Expr, to types.TypeID, code diag.Code, what string) *hir.Expr {
	if e == nil {
		return nil
	}
	out, res := c.convert(e, to)
	switch res {
	case convOutOfRange:
		c.errorf(diag.SemaLiteralOutOfRange, e.Span,
			fmt.Sprintf("constant %s overflows %s", literalText(e), c.types.TypeString(to))).Emit()
		return nil
	case convMismatch:
		c.errorf(code, e.Span, fmt.Sprintf("cannot use %s as %s in %s",
			c.types.TypeString(out.Type), c.types.TypeString(c.types.RemoveConst(to)), what)).Emit()
		return nil
	}
	return out
}

// settle gives a value its own type for good: literals are range checked
// at their current type.
func (c *checker) settle(e *hir.Expr, what string) *hir.Expr {
	if e == nil {
		return nil
	}
	return c.coerce(e, e.Type, diag.SemaTypeMismatch, what)
}

func literalText(e *hir.Expr) string {
	switch d := e.Data.(type) {
	case hir.IntLitData:
		return d.Value.String()
	case hir.FloatLitData:
		return d.Value.FloatString(6)
	}
	return "?"
}
