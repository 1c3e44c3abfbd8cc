package sema

import (
	"errors"
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/opres"
	"kestrel/internal/prelude"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// opTable is the operator table visible in m: the language builtins, the
// prelude, declarations of m and its ancestors, and exported declarations
// of the modules m imports.
func (c *checker) opTable(m *module) *opres.Table {
	if m.table != nil {
		return m.table
	}
	t := opres.NewTable(opres.BuiltinDecls()...)
	for _, d := range prelude.Operators() {
		t.Add(d)
	}
	for _, vm := range c.opModules(m) {
		for _, id := range vm.opDecls {
			d := c.decls[id]
			if d.state != stateDone || (!vm.encloses(m) && !d.exported()) {
				continue
			}
			t.Add(d.op)
		}
	}
	m.table = t
	return t
}

// opModules lists m, its ancestors and its imports once each.
func (c *checker) opModules(m *module) []*module {
	var out []*module
	seen := make(map[*module]bool)
	for p := m; p != nil; p = p.parent {
		out = append(out, p)
		seen[p] = true
	}
	for _, im := range m.importList {
		if !seen[im] {
			out = append(out, im)
			seen[im] = true
		}
	}
	return out
}

// operatorCandidates pools user implementations visible in the current
// module with the prelude implementations of op.
func (c *checker) operatorCandidates(op *opres.Decl) []callee {
	k := opKey{symbol: opres.Normalize(op.Symbol), fixity: op.Fixity}
	var out []callee
	for _, vm := range c.opModules(c.cur) {
		for _, id := range vm.impls[k] {
			if d := c.decls[id]; vm.encloses(c.cur) || d.exported() {
				out = append(out, callee{decl: d})
			}
		}
	}
	for _, i := range c.preludeOps[k] {
		out = append(out, callee{builtin: i})
	}
	return out
}

// seqNode is an operator application tree before type checking.
type seqNode struct {
	op       *opres.Decl // nil for a leaf
	term     ast.ExprID
	lhs, rhs *seqNode // unary operators use lhs only
	span     source.Span
}

func (c *checker) sequence(x *ast.Expr, expected types.TypeID) (operand, bool) {
	tab := c.opTable(c.cur)
	if len(x.Terms) == 0 || len(x.Terms) != len(x.Ops)+1 {
		c.errorf(diag.SemaUnknownOperator, x.Span, "malformed operator sequence").Emit()
		return operand{}, false
	}
	leaves := make([]*seqNode, len(x.Terms))
	ok := true
	for i, tm := range x.Terms {
		leaf := &seqNode{term: tm.Operand, span: c.tree.Expr(tm.Operand).Span}
		var pre, post []*opres.Decl
		if tm.Prefix.Text != "" {
			var err error
			if pre, err = tab.SplitRun(tm.Prefix.Text, opres.Prefix); err != nil {
				c.reportOpError(err, tm.Prefix.Span)
				ok = false
			}
		}
		if tm.Postfix.Text != "" {
			var err error
			if post, err = tab.SplitRun(tm.Postfix.Text, opres.Postfix); err != nil {
				c.reportOpError(err, tm.Postfix.Span)
				ok = false
			}
		}
		leaves[i] = opres.ApplyUnary(leaf, pre, post, func(op *opres.Decl, n *seqNode) *seqNode {
			return &seqNode{op: op, lhs: n, span: n.span.Cover(unarySpan(tm, op))}
		})
	}
	ops := make([]*opres.Decl, len(x.Ops))
	for i, r := range x.Ops {
		d, err := tab.Lookup(r.Text, opres.Infix)
		if err != nil {
			c.reportOpError(err, r.Span)
			ok = false
			continue
		}
		ops[i] = d
	}
	if !ok {
		return operand{}, false
	}
	root, err := opres.Resolve(leaves, ops, func(op *opres.Decl, _ int, l, r *seqNode) *seqNode {
		return &seqNode{op: op, lhs: l, rhs: r, span: l.span.Cover(r.span)}
	})
	if err != nil {
		var oe *opres.Error
		sp := x.Span
		if errors.As(err, &oe) && oe.Index >= 0 && oe.Index < len(x.Ops) {
			sp = x.Ops[oe.Index].Span
		}
		c.reportOpError(err, sp)
		return operand{}, false
	}
	if root.op == nil {
		return c.operand(root.term, expected)
	}
	e := c.apply(root, expected)
	return operand{expr: e, span: root.span}, e != nil
}

func unarySpan(tm ast.Term, op *opres.Decl) source.Span {
	if op.Fixity == opres.Postfix {
		return tm.Postfix.Span
	}
	return tm.Prefix.Span
}

func (c *checker) reportOpError(err error, sp source.Span) {
	var oe *opres.Error
	if !errors.As(err, &oe) {
		c.errorf(diag.SemaUnknownOperator, sp, err.Error()).Emit()
		return
	}
	code := diag.SemaUnknownOperator
	switch oe.Kind {
	case opres.ErrAmbiguousOperator:
		code = diag.SemaAmbiguousOperator
	case opres.ErrMixedAssociativity:
		code = diag.SemaMixedAssociativity
	case opres.ErrNonAssociative:
		code = diag.SemaNonAssociative
	}
	b := c.errorf(code, sp, oe.Error())
	if oe.Kind == opres.ErrAmbiguousOperator {
		for _, d := range oe.Candidates {
			b.WithNote(d.Span, "candidate "+d.String())
		}
	}
	b.Emit()
}

// seqValue checks a subtree as a value.
func (c *checker) seqValue(n *seqNode, expected types.TypeID) *hir.Expr {
	if n.op == nil {
		return c.value(n.term, expected)
	}
	return c.apply(n, expected)
}

func (c *checker) apply(n *seqNode, expected types.TypeID) *hir.Expr {
	switch n.op.Builtin {
	case opres.BuiltinAddressOf:
		return c.addressOf(n)
	case opres.BuiltinDeref:
		return c.deref(n)
	case opres.BuiltinAssign:
		return c.assign(n)
	}
	// numeric context flows into the operands, so literals in an
	// arithmetic chain take the type of the result
	hint := c.numericHint(expected)
	if n.rhs == nil {
		if lit := c.negatedLiteral(n, expected); lit != nil {
			return lit
		}
		x := c.toRValue(c.seqValue(n.lhs, hint))
		if x == nil {
			return nil
		}
		return c.applyOperator(n.op, []*hir.Expr{x}, expected, n.span)
	}
	l := c.toRValue(c.seqValue(n.lhs, hint))
	r := c.toRValue(c.seqValue(n.rhs, hint))
	if l == nil || r == nil {
		return nil
	}
	if e, handled := c.pointerCompare(n, l, r); handled {
		return e
	}
	return c.applyOperator(n.op, []*hir.Expr{l, r}, expected, n.span)
}

// negatedLiteral folds prefix '-' written directly before a numeric literal,
// so the most negative integer of each type can be spelled.
func (c *checker) negatedLiteral(n *seqNode, expected types.TypeID) *hir.Expr {
	if n.op.Fixity != opres.Prefix || n.op.Symbol != "-" || n.lhs.op != nil {
		return nil
	}
	x := c.tree.Expr(n.lhs.term)
	var e *hir.Expr
	switch x.Kind {
	case ast.ExprIntLit:
		e = c.intLiteral(x, expected, true)
	case ast.ExprFloatLit:
		e = c.floatLiteral(x, expected, true)
	default:
		return nil
	}
	if e != nil {
		e.Span = n.span
	}
	return e
}

func (c *checker) applyOperator(op *opres.Decl, args []*hir.Expr, expected types.TypeID, sp source.Span) *hir.Expr {
	cands := c.operatorCandidates(op)
	name := fmt.Sprintf("%s operator %s", op.Fixity, op.Symbol)
	if len(cands) == 0 {
		c.errorf(diag.SemaNoMatchingOverload, sp, fmt.Sprintf("%s has no implementation for (%s)", name, c.argTypes(args))).
			WithNote(op.Span, "operator declared here").
			Emit()
		return nil
	}
	return c.overload(name, cands, args, expected, sp, true)
}

// pointerCompare handles == and != between pointers and null: both sides
// are compared as nullable pointers.
func (c *checker) pointerCompare(n *seqNode, l, r *hir.Expr) (*hir.Expr, bool) {
	if n.op.Fixity != opres.Infix || (n.op.Symbol != "==" && n.op.Symbol != "!=") {
		return nil, false
	}
	in := c.types
	lp, rp := in.Underlying(l.Type).Kind == types.KindPointer, in.Underlying(r.Type).Kind == types.KindPointer
	ln, rn := in.IsNull(l.Type), in.IsNull(r.Type)
	if !(lp || ln) || !(rp || rn) {
		return nil, false
	}
	var target types.TypeID
	switch {
	case ln && rn:
		c.errorf(diag.SemaTypeMismatch, n.span, "cannot compare null with null").Emit()
		return nil, true
	case lp:
		elem, _, _ := in.PointerInfo(l.Type)
		target = in.Pointer(elem, true)
	default:
		elem, _, _ := in.PointerInfo(r.Type)
		target = in.Pointer(elem, true)
	}
	l = c.coerce(l, target, diag.SemaTypeMismatch, "pointer comparison")
	r = c.coerce(r, target, diag.SemaTypeMismatch, "pointer comparison")
	if l == nil || r == nil {
		return nil, true
	}
	op := prelude.OpEq
	if n.op.Symbol == "!=" {
		op = prelude.OpNe
	}
	return &hir.Expr{Kind: hir.ExprBuiltin, Type: in.Builtin(types.Bool), Span: n.span, Data: hir.BuiltinData{Op: op, Args: []*hir.Expr{l, r}}}, true
}

func (c *checker) addressOf(n *seqNode) *hir.Expr {
	x := c.seqValue(n.lhs, types.NoTypeID)
	if x == nil {
		return nil
	}
	if x.Category() != hir.LValue || x.Root().Kind == hir.ExprMaterialize {
		c.errorf(diag.SemaInvalidAddressOf, n.span, "cannot take the address of a temporary value").Emit()
		return nil
	}
	return &hir.Expr{Kind: hir.ExprAddressOf, Type: c.types.Pointer(x.Type, false), Span: n.span, Data: hir.AddressOfData{X: x}}
}

func (c *checker) deref(n *seqNode) *hir.Expr {
	x := c.toRValue(c.seqValue(n.lhs, types.NoTypeID))
	if x == nil {
		return nil
	}
	elem, nullable, ok := c.types.PointerInfo(x.Type)
	switch {
	case !ok:
		c.errorf(diag.SemaInvalidDereference, n.span, fmt.Sprintf("cannot dereference %s", c.types.TypeString(x.Type))).Emit()
		return nil
	case nullable:
		c.errorf(diag.SemaInvalidDereference, n.span,
			fmt.Sprintf("cannot dereference nullable pointer %s; cast it to a non-nullable pointer first", c.types.TypeString(x.Type))).Emit()
		return nil
	case c.types.IsVoid(elem) || c.types.IsFunc(elem):
		c.errorf(diag.SemaInvalidDereference, n.span, fmt.Sprintf("cannot dereference %s", c.types.TypeString(x.Type))).Emit()
		return nil
	}
	return &hir.Expr{Kind: hir.ExprDeref, Type: elem, Span: n.span, Data: hir.DerefData{X: x}}
}

func (c *checker) assign(n *seqNode) *hir.Expr {
	target := c.seqValue(n.lhs, types.NoTypeID)
	if target == nil {
		return nil
	}
	switch {
	case c.types.IsFunc(target.Type):
		c.errorf(diag.SemaAssignToFunction, target.Span, "cannot assign to a function").Emit()
		return nil
	case target.Category() != hir.LValue || target.Root().Kind == hir.ExprMaterialize:
		c.errorf(diag.SemaNotAnLValue, target.Span, "cannot assign to a temporary value").Emit()
		return nil
	case c.types.IsConst(target.Type):
		c.errorf(diag.SemaAssignToConst, target.Span, fmt.Sprintf("cannot assign through const type %s", c.types.TypeString(target.Type))).Emit()
		return nil
	}
	t := c.types.RemoveConst(target.Type)
	v := c.exact(c.seqValue(n.rhs, t), t, diag.SemaTypeMismatch, "assignment")
	if v == nil {
		return nil
	}
	return &hir.Expr{Kind: hir.ExprAssign, Type: t, Span: n.span, Data: hir.AssignData{Target: target, Value: v}}
}
