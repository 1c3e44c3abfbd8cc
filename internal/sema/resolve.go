package sema

import (
	"fmt"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/opres"
	"kestrel/internal/types"
)

// resolveAll drives the signature pass. Operator declarations go first:
// they depend on nothing and every operator table is built from them.
func (c *checker) resolveAll() {
	for id := 1; id < len(c.decls); id++ {
		if c.decls[id].kind == ast.DeclOperator {
			c.drive(declID(id))
		}
	}
	for id := 1; id < len(c.decls); id++ {
		c.drive(declID(id))
	}
}

// drive resolves root and everything it depends on without recursion.
// The stack holds declarations in progress; a suspended attempt leaves no
// diagnostics behind.
func (c *checker) drive(root declID) {
	if c.decls[root].state != stateUnvisited {
		return
	}
	c.stack = append(c.stack[:0], root)
	for len(c.stack) > 0 {
		id := c.stack[len(c.stack)-1]
		d := c.decls[id]
		if d.state == stateDone || d.state == stateFailed {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		d.state = stateInProgress
		mark := c.bag.Mark()
		c.pending, c.poisoned = 0, false
		c.cur = d.mod
		ok := c.resolveDecl(d)
		if dep := c.pending; dep != 0 {
			c.bag.Rewind(mark)
			c.pending = 0
			if c.decls[dep].state == stateInProgress {
				c.reportCycle(dep)
				continue
			}
			c.stack = append(c.stack, dep)
			continue
		}
		if ok && !c.poisoned && c.bag.ErrorsSince(mark) == 0 {
			d.state = stateDone
			c.finish(d)
		} else {
			d.state = stateFailed
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.cur = nil
	c.poisoned = false
}

// need reports whether id is resolved. An unresolved declaration suspends
// the current attempt; a failed one poisons it without a diagnostic.
func (c *checker) need(id declID) bool {
	d := c.decls[id]
	switch d.state {
	case stateDone:
		return true
	case stateFailed:
		c.poisoned = true
		return false
	}
	if c.pending == 0 {
		c.pending = id
	}
	return false
}

// suspended reports whether the current attempt waits for a dependency.
func (c *checker) suspended() bool {
	return c.pending != 0
}

func (c *checker) reportCycle(dep declID) {
	start := 0
	for i, id := range c.stack {
		if id == dep {
			start = i
			break
		}
	}
	cycle := c.stack[start:]
	names := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		names = append(names, c.decls[id].label())
	}
	names = append(names, c.decls[dep].label())
	first := c.decls[dep]
	b := c.errorf(diag.SemaCyclicDependency, first.node.Span,
		fmt.Sprintf("cyclic dependency: %s", strings.Join(names, " -> ")))
	for _, id := range cycle[1:] {
		b.WithNote(c.decls[id].node.Span, c.decls[id].label()+" is declared here")
	}
	b.Emit()
	for _, id := range cycle {
		c.decls[id].state = stateFailed
	}
}

func (c *checker) resolveDecl(d *decl) bool {
	switch d.kind {
	case ast.DeclOperator:
		return c.resolveOperatorDecl(d)
	case ast.DeclStruct:
		return c.resolveStruct(d)
	case ast.DeclAlias:
		d.typ = c.resolveType(d.node.Type)
		return d.typ != types.NoTypeID
	case ast.DeclGlobal:
		return c.resolveGlobal(d)
	case ast.DeclFunc:
		return c.resolveFunc(d)
	}
	panic(fmt.Errorf("sema: unexpected declaration kind %s", d.kind))
}

// finish publishes a resolved declaration where later lookups find it.
func (c *checker) finish(d *decl) {
	if d.kind == ast.DeclFunc && d.fn.Operator != nil {
		k := opKey{symbol: opres.Normalize(d.fn.Operator.Symbol), fixity: d.fn.Operator.Fixity}
		d.mod.impls[k] = append(d.mod.impls[k], d.id)
	}
}

func (c *checker) resolveOperatorDecl(d *decl) bool {
	n := d.node
	fix, ok := opres.ParseFixity(n.Operator.Fixity)
	if !ok {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span, fmt.Sprintf("unknown fixity %q", n.Operator.Fixity)).Emit()
		return false
	}
	assoc, ok := opres.ParseAssoc(n.Assoc)
	if !ok {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span, fmt.Sprintf("unknown associativity %q", n.Assoc)).Emit()
		return false
	}
	if n.Operator.Symbol == "" {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span, "operator declaration without a symbol").Emit()
		return false
	}
	if fix == opres.Infix && !opres.ValidPrecedence(n.Precedence) {
		c.errorf(diag.SemaBadPrecedence, n.Span,
			fmt.Sprintf("precedence %d is outside %d..%d", n.Precedence, opres.MinPrecedence, opres.MaxPrecedence)).Emit()
		return false
	}
	sym := opres.Normalize(n.Operator.Symbol)
	for _, b := range opres.BuiltinDecls() {
		if b.Symbol == sym && b.Fixity == fix {
			c.errorf(diag.SemaInvalidOperatorDecl, n.Span,
				fmt.Sprintf("%s operator %s is built into the language", fix, sym)).Emit()
			return false
		}
	}
	d.op = &opres.Decl{
		Symbol:     sym,
		Fixity:     fix,
		Precedence: n.Precedence,
		Assoc:      assoc,
		Module:     d.mod.path,
		Span:       n.Span,
	}
	return true
}

func (c *checker) resolveStruct(d *decl) bool {
	n := d.node
	fields := make([]types.StructField, 0, len(n.Fields))
	seen := make(map[string]int, len(n.Fields))
	ok := true
	for i, f := range n.Fields {
		if prev, dup := seen[f.Name]; dup {
			c.errorf(diag.SemaDuplicateSymbol, f.Span, fmt.Sprintf("duplicate field %s", f.Name)).
				WithNote(n.Fields[prev].Span, "previous field").
				Emit()
			ok = false
			continue
		}
		seen[f.Name] = i
		ft := c.resolveType(f.Type)
		if ft == types.NoTypeID {
			ok = false
			continue
		}
		if c.types.IsFunc(ft) {
			c.errorf(diag.SemaInvalidType, f.Span, "struct fields cannot have function type; use a pointer").Emit()
			ok = false
			continue
		}
		// by-value members must be laid out first; this also catches
		// structs containing themselves
		if !c.requireComplete(ft) {
			ok = false
			continue
		}
		fields = append(fields, types.StructField{Name: f.Name, Type: ft})
	}
	if !ok || c.suspended() {
		return false
	}
	c.types.SetStructFields(d.typ, fields)
	if _, err := c.layout.LayoutOf(d.typ); err != nil {
		c.errorf(diag.SemaCyclicDependency, n.Span, err.Error()).Emit()
		return false
	}
	return true
}

func (c *checker) resolveGlobal(d *decl) bool {
	n := d.node
	t := types.NoTypeID
	if n.Type.IsValid() {
		t = c.resolveType(n.Type)
		if t == types.NoTypeID {
			return false
		}
	}
	if n.Extern {
		if n.Init.IsValid() {
			c.errorf(diag.SemaBadExtern, n.Span, fmt.Sprintf("extern global %s cannot have an initializer", n.Name)).Emit()
			return false
		}
		if t == types.NoTypeID {
			c.errorf(diag.SemaBadExtern, n.Span, fmt.Sprintf("extern global %s needs a type", n.Name)).Emit()
			return false
		}
	}
	var init *hir.Expr
	if n.Init.IsValid() {
		init = c.constInit(n.Init, t)
		if init == nil {
			return false
		}
		if t == types.NoTypeID {
			t = init.Type
		}
	}
	if t == types.NoTypeID {
		c.errorf(diag.SemaInvalidType, n.Span, fmt.Sprintf("cannot infer the type of %s without an initializer", n.Name)).Emit()
		return false
	}
	if c.types.IsVoid(t) || c.types.IsFunc(t) {
		c.errorf(diag.SemaInvalidType, n.Span, fmt.Sprintf("global %s cannot have type %s", n.Name, c.types.TypeString(t))).Emit()
		return false
	}
	if !c.requireComplete(t) {
		return false
	}
	d.typ = t
	d.global = &hir.Global{
		Name:     n.Name,
		Module:   d.mod.path,
		Type:     t,
		Init:     init,
		Exported: n.Exported,
		Extern:   n.Extern,
		LinkName: n.LinkName,
		Span:     n.Span,
	}
	return true
}

func (c *checker) resolveFunc(d *decl) bool {
	n := d.node
	params := make([]types.TypeID, 0, len(n.Params))
	vars := make([]*hir.Var, 0, len(n.Params))
	seen := make(map[string]bool, len(n.Params))
	ok := true
	for i, p := range n.Params {
		pt := c.resolveType(p.Type)
		if pt == types.NoTypeID {
			ok = false
			continue
		}
		if c.types.IsVoid(pt) {
			c.errorf(diag.SemaVoidValue, p.Span, "parameters cannot have type void").Emit()
			ok = false
		}
		if p.Name != "" && seen[p.Name] {
			c.errorf(diag.SemaDuplicateSymbol, p.Span, fmt.Sprintf("duplicate parameter %s", p.Name)).Emit()
			ok = false
		}
		seen[p.Name] = true
		params = append(params, pt)
		vars = append(vars, &hir.Var{Name: p.Name, Type: pt, Param: true, Index: i, Span: p.Span})
	}
	ret := c.types.Builtin(types.Void)
	if n.Ret.IsValid() {
		ret = c.resolveType(n.Ret)
		if ret == types.NoTypeID {
			ok = false
		}
	}
	if !ok || c.suspended() {
		return false
	}
	for _, pt := range params {
		if !c.requireComplete(pt) {
			return false
		}
	}
	if !c.requireComplete(ret) {
		return false
	}

	switch {
	case n.Extern && n.HasBody:
		c.errorf(diag.SemaBadExtern, n.Span, fmt.Sprintf("extern function %s cannot have a body", d.label())).Emit()
		return false
	case !n.Extern && !n.HasBody:
		c.errorf(diag.SemaBadExtern, n.Span, fmt.Sprintf("function %s needs a body or must be extern", d.label())).Emit()
		return false
	case n.Variadic && !n.Extern:
		c.errorf(diag.SemaBadExtern, n.Span, "only extern functions can be variadic").Emit()
		return false
	}

	fn := &hir.Func{
		Name:     n.Name,
		Module:   d.mod.path,
		Params:   vars,
		Ret:      ret,
		Variadic: n.Variadic,
		Exported: n.Exported,
		Extern:   n.Extern,
		LinkName: n.LinkName,
		Span:     n.Span,
		Defined:  n.HasBody,
	}
	if n.Operator.Symbol != "" {
		impl, ok := c.checkOperatorImpl(d, len(params))
		if !ok {
			return false
		}
		fn.Operator = impl
		if fn.Name == "" {
			fn.Name = "op"
		}
	}
	fn.Type = c.types.Func(params, n.Variadic, ret)
	d.fn = fn
	d.typ = fn.Type
	d.params = params
	d.ret = ret
	return true
}

func (c *checker) checkOperatorImpl(d *decl, arity int) (*hir.OperatorImpl, bool) {
	n := d.node
	fix, ok := opres.ParseFixity(n.Operator.Fixity)
	if !ok {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span, fmt.Sprintf("unknown fixity %q", n.Operator.Fixity)).Emit()
		return nil, false
	}
	want := 1
	if fix == opres.Infix {
		want = 2
	}
	if arity != want {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span,
			fmt.Sprintf("%s operator %s takes %d parameters, got %d", fix, n.Operator.Symbol, want, arity)).Emit()
		return nil, false
	}
	sym := opres.Normalize(n.Operator.Symbol)
	od, err := c.opTable(d.mod).Lookup(sym, fix)
	if err != nil {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span,
			fmt.Sprintf("implementation of undeclared %s operator %s", fix, sym)).Emit()
		return nil, false
	}
	if od.Builtin != opres.NotBuiltin {
		c.errorf(diag.SemaInvalidOperatorDecl, n.Span,
			fmt.Sprintf("%s operator %s is built into the language", fix, sym)).Emit()
		return nil, false
	}
	return &hir.OperatorImpl{Symbol: sym, Fixity: fix}, true
}
