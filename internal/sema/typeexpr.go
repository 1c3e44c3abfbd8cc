package sema

import (
	"fmt"
	"math"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/types"
)

// resolveType converts written type syntax. NoTypeID means an error was
// reported, the attempt is suspended, or a dependency failed.
func (c *checker) resolveType(id ast.TypeID) types.TypeID {
	te := c.tree.Type(id)
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypeNamed:
		return c.namedType(te)
	case ast.TypeConst:
		inner := c.resolveType(te.Elem)
		if inner == types.NoTypeID {
			return inner
		}
		if c.types.IsFunc(inner) {
			c.errorf(diag.SemaInvalidType, te.Span, "const cannot qualify a function type").Emit()
			return types.NoTypeID
		}
		return c.types.AddConst(inner)
	case ast.TypePointer:
		inner := c.resolveType(te.Elem)
		if inner == types.NoTypeID {
			return inner
		}
		return c.types.Pointer(inner, te.Nullable)
	case ast.TypeArray:
		elem := c.resolveType(te.Elem)
		n, ok := c.constLength(te.Len)
		if elem == types.NoTypeID || !ok {
			return types.NoTypeID
		}
		if c.types.IsFunc(elem) {
			c.errorf(diag.SemaInvalidType, te.Span, "arrays of functions are not allowed").Emit()
			return types.NoTypeID
		}
		return c.types.Array(elem, n)
	case ast.TypeSlice:
		elem := c.resolveType(te.Elem)
		if elem == types.NoTypeID {
			return elem
		}
		return c.types.Slice(elem)
	case ast.TypeTuple:
		elems := make([]types.TypeID, len(te.Elems))
		for i, e := range te.Elems {
			elems[i] = c.resolveType(e)
			if elems[i] == types.NoTypeID {
				return types.NoTypeID
			}
		}
		return c.types.Tuple(elems)
	case ast.TypeFunc:
		params := make([]types.TypeID, len(te.Elems))
		for i, e := range te.Elems {
			params[i] = c.resolveType(e)
			if params[i] == types.NoTypeID {
				return types.NoTypeID
			}
		}
		ret := c.types.Builtin(types.Void)
		if te.Ret.IsValid() {
			ret = c.resolveType(te.Ret)
			if ret == types.NoTypeID {
				return ret
			}
		}
		return c.types.Func(params, te.Variadic, ret)
	}
	panic(fmt.Errorf("sema: unexpected type syntax kind %d", te.Kind))
}

func (c *checker) namedType(te *ast.TypeExpr) types.TypeID {
	if len(te.Path) == 0 {
		c.errorf(diag.SemaInvalidType, te.Span, "empty type name").Emit()
		return types.NoTypeID
	}
	if len(te.Path) == 1 {
		if b, ok := platform.BuiltinByName(te.Path[0]); ok {
			return c.types.Builtin(b)
		}
	}
	// type names never refer to locals
	saved := c.fn
	c.fn = nil
	sym, ok := c.lookup(te.Path[0], te.Span)
	c.fn = saved
	for _, seg := range te.Path[1:] {
		if !ok {
			break
		}
		if sym.kind != symModule {
			c.errorf(diag.SemaNotAType, te.Span, fmt.Sprintf("%s is not a module", sym.name)).Emit()
			return types.NoTypeID
		}
		sym, ok = c.member(sym.mod, seg, te.Span)
	}
	if !ok {
		return types.NoTypeID
	}
	name := strings.Join(te.Path, ".")
	if sym.kind != symDecl {
		c.errorf(diag.SemaNotAType, te.Span, fmt.Sprintf("%s is not a type", name)).Emit()
		return types.NoTypeID
	}
	switch sym.decl.kind {
	case ast.DeclStruct:
		if sym.decl.state == stateFailed {
			c.poisoned = true
			return types.NoTypeID
		}
		return sym.decl.typ
	case ast.DeclAlias:
		if !c.need(sym.decl.id) {
			return types.NoTypeID
		}
		return sym.decl.typ
	}
	c.errorf(diag.SemaNotAType, te.Span, fmt.Sprintf("%s is not a type", name)).Emit()
	return types.NoTypeID
}

// constLength evaluates an array length.
func (c *checker) constLength(id ast.ExprID) (uint32, bool) {
	e := c.constExpr(id, c.types.Builtin(types.Uint))
	if e == nil {
		return 0, false
	}
	d, ok := e.Data.(hir.IntLitData)
	if !ok {
		c.errorf(diag.SemaNonConstantInitializer, e.Span, "array length must be an integer constant").Emit()
		return 0, false
	}
	if d.Value.Sign() < 0 || !d.Value.IsUint64() || d.Value.Uint64() > math.MaxUint32 {
		c.errorf(diag.SemaLiteralOutOfRange, e.Span, fmt.Sprintf("array length %s out of range", d.Value)).Emit()
		return 0, false
	}
	return uint32(d.Value.Uint64()), true
}

// requireComplete makes sure every struct t holds by value is resolved, so
// its layout can be computed.
func (c *checker) requireComplete(t types.TypeID) bool {
	tt, ok := c.types.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindConst, types.KindArray:
		return c.requireComplete(tt.Elem)
	case types.KindTuple:
		info, _ := c.types.TupleInfo(t)
		for _, e := range info.Elems {
			if !c.requireComplete(e) {
				return false
			}
		}
	case types.KindStruct:
		if id, ok := c.structDecl[t]; ok {
			return c.need(id)
		}
	}
	return true
}
