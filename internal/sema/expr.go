package sema

import (
	"fmt"
	"math/big"
	"strconv"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// operand is a checked expression: a value, or a name that only makes sense
// in some positions (a module before '.', an overload set before a call).
type operand struct {
	expr *hir.Expr
	sym  symbol
	span source.Span
}

func (o operand) isValue() bool { return o.expr != nil }

// value checks id as a value; nil means an error was reported or the
// attempt is suspended.
func (c *checker) value(id ast.ExprID, expected types.TypeID) *hir.Expr {
	op, ok := c.operand(id, expected)
	if !ok {
		return nil
	}
	return c.valueOf(op, expected)
}

func (c *checker) rvalue(id ast.ExprID, expected types.TypeID) *hir.Expr {
	return c.toRValue(c.value(id, expected))
}

func (c *checker) valueOf(op operand, expected types.TypeID) *hir.Expr {
	if op.isValue() {
		return op.expr
	}
	switch op.sym.kind {
	case symModule:
		c.errorf(diag.SemaNotAValue, op.span, fmt.Sprintf("module %s is not a value", op.sym.mod)).Emit()
	case symFuncs:
		var users []*decl
		for _, f := range op.sym.fns {
			if f.decl != nil {
				users = append(users, f.decl)
			}
		}
		if len(users) == 0 {
			c.errorf(diag.SemaNotAValue, op.span, fmt.Sprintf("builtin %s cannot be used as a value", op.sym.name)).Emit()
			return nil
		}
		if len(users) == 1 {
			return c.funcRef(users[0], op.span)
		}
		want := c.types.RemoveConst(expected)
		for _, d := range users {
			if c.need(d.id) && d.typ == want {
				return c.funcRef(d, op.span)
			}
		}
		if !c.suspended() && !c.poisoned {
			c.errorf(diag.SemaAmbiguousSymbol, op.span,
				fmt.Sprintf("%s is overloaded; its type cannot be inferred here", op.sym.name)).Emit()
		}
	}
	return nil
}

func (c *checker) funcRef(d *decl, sp source.Span) *hir.Expr {
	if !c.need(d.id) {
		return nil
	}
	return &hir.Expr{Kind: hir.ExprFuncRef, Type: d.typ, Span: sp, Data: hir.FuncRefData{Func: d.fn}}
}

func (c *checker) operand(id ast.ExprID, expected types.TypeID) (operand, bool) {
	x := c.tree.Expr(id)
	if x == nil {
		panic(fmt.Errorf("sema: missing expression %d", id))
	}
	val := func(e *hir.Expr) (operand, bool) {
		return operand{expr: e, span: x.Span}, e != nil
	}
	switch x.Kind {
	case ast.ExprIdent:
		sym, ok := c.lookup(x.Name, x.Span)
		if !ok {
			return operand{}, false
		}
		return c.symbolOperand(sym, x.Span)
	case ast.ExprIntLit:
		return val(c.intLiteral(x, expected, false))
	case ast.ExprFloatLit:
		return val(c.floatLiteral(x, expected, false))
	case ast.ExprStringLit:
		return val(c.stringLiteral(x))
	case ast.ExprBoolLit:
		return val(&hir.Expr{Kind: hir.ExprBoolLit, Type: c.types.Builtin(types.Bool), Span: x.Span, Data: hir.BoolLitData{Value: x.Bool}})
	case ast.ExprNullLit:
		return val(&hir.Expr{Kind: hir.ExprNullLit, Type: c.types.Builtin(types.Null), Span: x.Span, Data: hir.NullLitData{}})
	case ast.ExprSequence:
		return c.sequence(x, expected)
	case ast.ExprCall:
		return val(c.call(x, expected))
	case ast.ExprIndex:
		return val(c.index(x))
	case ast.ExprMember:
		return c.memberExpr(x)
	case ast.ExprCast:
		return val(c.cast(x))
	case ast.ExprSizeOf, ast.ExprAlignOf:
		return val(c.sizeOf(x))
	case ast.ExprStructLit:
		return val(c.structLit(x))
	case ast.ExprTupleLit:
		return val(c.tupleLit(x, expected))
	case ast.ExprArrayLit:
		return val(c.arrayLit(x, expected))
	}
	panic(fmt.Errorf("sema: unexpected expression kind %d", x.Kind))
}

func (c *checker) symbolOperand(sym symbol, sp source.Span) (operand, bool) {
	switch sym.kind {
	case symLocal:
		v := sym.local
		return operand{expr: &hir.Expr{Kind: hir.ExprLocal, Type: v.Type, Span: sp, Data: hir.LocalData{Var: v}}, span: sp}, true
	case symConst:
		return operand{expr: &hir.Expr{
			Kind: hir.ExprIntLit,
			Type: c.types.Builtin(types.Int64),
			Span: sp,
			Data: hir.IntLitData{Value: big.NewInt(sym.value)},
		}, span: sp}, true
	case symModule, symFuncs:
		return operand{sym: sym, span: sp}, true
	}
	d := sym.decl
	switch d.kind {
	case ast.DeclGlobal:
		if !c.need(d.id) {
			return operand{}, false
		}
		return operand{expr: &hir.Expr{Kind: hir.ExprGlobal, Type: d.typ, Span: sp, Data: hir.GlobalData{Global: d.global}}, span: sp}, true
	case ast.DeclStruct, ast.DeclAlias:
		c.errorf(diag.SemaNotAValue, sp, fmt.Sprintf("%s is a type, not a value", sym.name)).Emit()
	default:
		c.errorf(diag.SemaNotAValue, sp, fmt.Sprintf("%s is not a value", sym.name)).Emit()
	}
	return operand{}, false
}

func (c *checker) memberExpr(x *ast.Expr) (operand, bool) {
	base, ok := c.operand(x.X, types.NoTypeID)
	if !ok {
		return operand{}, false
	}
	if !base.isValue() && base.sym.kind == symModule {
		sym, ok := c.member(base.sym.mod, x.Name, x.Span)
		if !ok {
			return operand{}, false
		}
		return c.symbolOperand(sym, x.Span)
	}
	e := c.valueOf(base, types.NoTypeID)
	if e == nil {
		return operand{}, false
	}
	out := c.field(e, x.Name, x.Span)
	return operand{expr: out, span: x.Span}, out != nil
}

// field selects a struct field, tuple element or slice/array member of e.
func (c *checker) field(e *hir.Expr, name string, sp source.Span) *hir.Expr {
	in := c.types
	t := e.Type
	constBase := in.IsConst(t)
	u := in.Underlying(t)
	proj := func(index int, ft types.TypeID) *hir.Expr {
		if constBase {
			ft = in.AddConst(ft)
		}
		base := e
		if base.Category() == hir.RValue {
			base = c.materialize(base)
		}
		return &hir.Expr{Kind: hir.ExprField, Type: ft, Span: sp, Data: hir.FieldData{X: base, Index: index}}
	}
	switch u.Kind {
	case types.KindStruct:
		if !c.requireComplete(t) {
			return nil
		}
		_, info, _ := in.StructOf(t)
		i, ok := info.FieldIndex(name)
		if !ok {
			c.errorf(diag.SemaUnknownField, sp, fmt.Sprintf("%s has no field %s", in.TypeString(t), name)).
				WithNote(info.Decl, "struct declared here").
				Emit()
			return nil
		}
		return proj(i, info.Fields[i].Type)
	case types.KindTuple:
		info, _ := in.TupleOf(t)
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(info.Elems) {
			return proj(i, info.Elems[i])
		}
	case types.KindSlice:
		switch name {
		case "ptr":
			elem, _ := in.SliceElem(t)
			return &hir.Expr{Kind: hir.ExprSliceMember, Type: in.Pointer(elem, false), Span: sp, Data: hir.SliceMemberData{X: e}}
		case "len":
			return &hir.Expr{Kind: hir.ExprSliceMember, Type: in.Builtin(types.Uint), Span: sp, Data: hir.SliceMemberData{X: e, Len: true}}
		}
	case types.KindArray:
		if name == "len" {
			return &hir.Expr{Kind: hir.ExprIntLit, Type: in.Builtin(types.Uint), Span: sp, Data: hir.IntLitData{Value: new(big.Int).SetUint64(uint64(u.Count))}}
		}
	}
	c.errorf(diag.SemaNoMember, sp, fmt.Sprintf("%s has no member %s", in.TypeString(t), name)).Emit()
	return nil
}

func (c *checker) index(x *ast.Expr) *hir.Expr {
	base := c.value(x.X, types.NoTypeID)
	idx := c.settle(c.rvalue(x.Index, types.NoTypeID), "index")
	if base == nil || idx == nil {
		return nil
	}
	if idx.Type != types.NoTypeID && !c.types.IsInteger(idx.Type) {
		c.errorf(diag.SemaIndexNotInteger, idx.Span, fmt.Sprintf("index must be an integer, got %s", c.types.TypeString(idx.Type))).Emit()
		return nil
	}
	in := c.types
	if elem, _, ok := in.ArrayInfo(in.RemoveConst(base.Type)); ok {
		if in.IsConst(base.Type) {
			elem = in.AddConst(elem)
		}
		if base.Category() == hir.RValue {
			base = c.materialize(base)
		}
		return &hir.Expr{Kind: hir.ExprIndex, Type: elem, Span: x.Span, Data: hir.IndexData{X: base, Index: idx}}
	}
	if elem, ok := in.SliceElem(in.RemoveConst(base.Type)); ok {
		return &hir.Expr{Kind: hir.ExprIndex, Type: elem, Span: x.Span, Data: hir.IndexData{X: c.toRValue(base), Index: idx, Slice: true}}
	}
	c.errorf(diag.SemaNotIndexable, x.Span, fmt.Sprintf("cannot index %s", in.TypeString(base.Type))).Emit()
	return nil
}

func (c *checker) sizeOf(x *ast.Expr) *hir.Expr {
	t := c.resolveType(x.Type)
	if t == types.NoTypeID || !c.requireComplete(t) {
		return nil
	}
	if c.types.IsFunc(t) {
		c.errorf(diag.SemaInvalidType, x.Span, "function types have no size").Emit()
		return nil
	}
	l, err := c.layout.LayoutOf(t)
	if err != nil {
		c.errorf(diag.SemaInvalidType, x.Span, err.Error()).Emit()
		return nil
	}
	if x.Kind == ast.ExprAlignOf {
		return c.uintConst(uint64(l.Align), x)
	}
	return c.uintConst(uint64(l.Size), x)
}

func (c *checker) structLit(x *ast.Expr) *hir.Expr {
	t := c.resolveType(x.Type)
	if t == types.NoTypeID {
		return nil
	}
	t = c.types.RemoveConst(t)
	_, info, ok := c.types.StructOf(t)
	if !ok {
		c.errorf(diag.SemaInvalidStructLiteral, x.Span, fmt.Sprintf("%s is not a struct type", c.types.TypeString(t))).Emit()
		return nil
	}
	if !c.requireComplete(t) {
		return nil
	}
	vals := make([]*hir.Expr, len(info.Fields))
	seen := make(map[string]source.Span, len(x.Fields))
	good := true
	for _, fi := range x.Fields {
		i, ok := info.FieldIndex(fi.Name)
		if !ok {
			c.errorf(diag.SemaUnknownField, fi.Span, fmt.Sprintf("%s has no field %s", c.types.TypeString(t), fi.Name)).Emit()
			good = false
			continue
		}
		if prev, dup := seen[fi.Name]; dup {
			c.errorf(diag.SemaInvalidStructLiteral, fi.Span, fmt.Sprintf("field %s is set twice", fi.Name)).
				WithNote(prev, "first set here").
				Emit()
			good = false
			continue
		}
		seen[fi.Name] = fi.Span
		ft := c.types.RemoveConst(info.Fields[i].Type)
		v := c.coerce(c.rvalue(fi.Value, ft), ft, diag.SemaTypeMismatch, "field "+fi.Name)
		if v == nil {
			good = false
			continue
		}
		vals[i] = v
	}
	if !good {
		return nil
	}
	return &hir.Expr{Kind: hir.ExprStructLit, Type: t, Span: x.Span, Data: hir.StructLitData{Fields: vals}}
}

func (c *checker) tupleLit(x *ast.Expr, expected types.TypeID) *hir.Expr {
	var hints []types.TypeID
	if info, ok := c.types.TupleOf(c.types.RemoveConst(expected)); ok && len(info.Elems) == len(x.Args) {
		hints = info.Elems
	}
	elems := make([]*hir.Expr, len(x.Args))
	tys := make([]types.TypeID, len(x.Args))
	good := true
	for i, a := range x.Args {
		want := types.NoTypeID
		if hints != nil {
			want = c.types.RemoveConst(hints[i])
		}
		v := c.rvalue(a, want)
		if want != types.NoTypeID {
			v = c.coerce(v, want, diag.SemaTypeMismatch, "tuple element")
		} else {
			v = c.settle(v, "tuple element")
		}
		if v == nil {
			good = false
			continue
		}
		if c.types.IsVoid(v.Type) || c.types.IsNull(v.Type) {
			c.errorf(diag.SemaVoidValue, v.Span, fmt.Sprintf("tuple element cannot have type %s", c.types.TypeString(v.Type))).Emit()
			good = false
			continue
		}
		elems[i], tys[i] = v, v.Type
	}
	if !good {
		return nil
	}
	return &hir.Expr{Kind: hir.ExprTupleLit, Type: c.types.Tuple(tys), Span: x.Span, Data: hir.TupleLitData{Elems: elems}}
}

func (c *checker) arrayLit(x *ast.Expr, expected types.TypeID) *hir.Expr {
	elem := types.NoTypeID
	if x.Type.IsValid() {
		elem = c.resolveType(x.Type)
		if elem == types.NoTypeID {
			return nil
		}
	} else if e, _, ok := c.types.ArrayInfo(c.types.RemoveConst(expected)); ok {
		elem = e
	}
	elem = c.types.RemoveConst(elem)
	n, ok := lengthOf(len(x.Args))
	if !ok {
		c.errorf(diag.SemaLiteralOutOfRange, x.Span, "array literal too long").Emit()
		return nil
	}
	vals := make([]*hir.Expr, 0, len(x.Args))
	good := true
	for _, a := range x.Args {
		v := c.rvalue(a, elem)
		if elem == types.NoTypeID {
			v = c.settle(v, "array element")
			if v != nil {
				elem = v.Type
			}
		} else {
			v = c.coerce(v, elem, diag.SemaTypeMismatch, "array element")
		}
		if v == nil {
			good = false
			continue
		}
		vals = append(vals, v)
	}
	if !good {
		return nil
	}
	if elem == types.NoTypeID {
		c.errorf(diag.SemaInvalidType, x.Span, "cannot infer the element type of an empty array literal").Emit()
		return nil
	}
	if c.types.IsVoid(elem) || c.types.IsNull(elem) || c.types.IsFunc(elem) {
		c.errorf(diag.SemaInvalidType, x.Span, fmt.Sprintf("array elements cannot have type %s", c.types.TypeString(elem))).Emit()
		return nil
	}
	return &hir.Expr{Kind: hir.ExprArrayLit, Type: c.types.Array(elem, n), Span: x.Span, Data: hir.ArrayLitData{Elems: vals}}
}
