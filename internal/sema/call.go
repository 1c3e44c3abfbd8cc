package sema

import (
	"fmt"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/prelude"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// signature is the callable view of a user function or builtin.
type signature struct {
	callee   callee
	params   []types.TypeID
	variadic bool
	ret      types.TypeID
	// exact disables implicit conversions of arguments (operator operands)
	exact bool
}

func (c *checker) builtinParam(p prelude.Param) types.TypeID {
	t := c.types.Builtin(p.Builtin)
	if !p.Pointer {
		return t
	}
	if p.Const {
		t = c.types.AddConst(t)
	}
	return c.types.Pointer(t, false)
}

// signatureOf resolves a callee. False means suspended or poisoned.
func (c *checker) signatureOf(f callee) (signature, bool) {
	if f.decl != nil {
		if !c.need(f.decl.id) {
			return signature{}, false
		}
		return signature{callee: f, params: f.decl.params, variadic: f.decl.fn.Variadic, ret: f.decl.ret}, true
	}
	b := c.prelude[f.builtin]
	params := make([]types.TypeID, len(b.Params))
	for i, p := range b.Params {
		params[i] = c.builtinParam(p)
	}
	return signature{callee: f, params: params, ret: c.builtinParam(b.Result)}, true
}

func (c *checker) call(x *ast.Expr, expected types.TypeID) *hir.Expr {
	fn, ok := c.operand(x.X, types.NoTypeID)
	if !ok {
		return nil
	}
	if !fn.isValue() && fn.sym.kind == symFuncs {
		var hints []types.TypeID
		if len(fn.sym.fns) == 1 {
			if sig, ok := c.signatureOf(fn.sym.fns[0]); ok {
				hints = sig.params
			} else {
				return nil
			}
		}
		args, ok := c.args(x.Args, hints)
		if !ok {
			return nil
		}
		return c.overload(fn.sym.name, fn.sym.fns, args, expected, x.Span, false)
	}
	callee := c.valueOf(fn, types.NoTypeID)
	if callee == nil {
		return nil
	}
	info, ok := c.types.FuncOf(callee.Type)
	if !ok {
		c.errorf(diag.SemaNotCallable, callee.Span, fmt.Sprintf("cannot call a value of type %s", c.types.TypeString(callee.Type))).Emit()
		return nil
	}
	args, ok := c.args(x.Args, info.Params)
	if !ok {
		return nil
	}
	sig := signature{params: info.Params, variadic: info.Variadic, ret: info.Result}
	args, ok = c.applyArgs("call", sig, args, x.Span)
	if !ok {
		return nil
	}
	data := hir.CallData{Args: args}
	if ref, isRef := callee.Data.(hir.FuncRefData); isRef {
		data.Func = ref.Func
	} else {
		data.Callee = c.toRValue(callee)
	}
	return &hir.Expr{Kind: hir.ExprCall, Type: info.Result, Span: x.Span, Data: data}
}

// args checks call arguments, hinting literal types from hints by position.
func (c *checker) args(ids []ast.ExprID, hints []types.TypeID) ([]*hir.Expr, bool) {
	out := make([]*hir.Expr, len(ids))
	ok := true
	for i, id := range ids {
		want := types.NoTypeID
		if i < len(hints) {
			want = hints[i]
		}
		out[i] = c.rvalue(id, want)
		if out[i] == nil {
			ok = false
		}
	}
	return out, ok
}

// applyArgs coerces args to sig. Extra variadic arguments are passed with
// C default promotions.
func (c *checker) applyArgs(name string, sig signature, args []*hir.Expr, sp source.Span) ([]*hir.Expr, bool) {
	if len(args) < len(sig.params) || (!sig.variadic && len(args) > len(sig.params)) {
		c.errorf(diag.SemaArgCountMismatch, sp,
			fmt.Sprintf("%s expects %s, got %d", name, countArgs(len(sig.params), sig.variadic), len(args))).Emit()
		return nil, false
	}
	out := make([]*hir.Expr, len(args))
	ok := true
	for i, a := range args {
		switch {
		case i >= len(sig.params):
			out[i] = c.variadicArg(a)
		case sig.exact:
			out[i] = c.exact(a, sig.params[i], diag.SemaArgTypeMismatch, fmt.Sprintf("operand %d of %s", i+1, name))
		default:
			out[i] = c.coerce(a, sig.params[i], diag.SemaArgTypeMismatch, fmt.Sprintf("argument %d of %s", i+1, name))
		}
		if out[i] == nil {
			ok = false
		}
	}
	return out, ok
}

func (c *checker) variadicArg(a *hir.Expr) *hir.Expr {
	a = c.settle(a, "variadic argument")
	if a == nil {
		return nil
	}
	if c.types.IsVoid(a.Type) || c.types.IsNull(a.Type) {
		c.errorf(diag.SemaVoidValue, a.Span, fmt.Sprintf("cannot pass %s as a variadic argument", c.types.TypeString(a.Type))).Emit()
		return nil
	}
	if b, ok := c.types.BuiltinOf(a.Type); ok && b == types.Float32 {
		return c.coerce(a, c.types.Builtin(types.Float64), diag.SemaArgTypeMismatch, "variadic argument")
	}
	return a
}

func countArgs(n int, variadic bool) string {
	s := fmt.Sprintf("%d argument", n)
	if n != 1 {
		s += "s"
	}
	if variadic {
		s = "at least " + s
	}
	return s
}

// overload picks one callee for args. Each argument scores 2 for an exact
// type, 1 for a literal taking another type, 0 for an implicit conversion;
// a result matching the expected type adds 3. The best unique score wins.
// With exact set, candidates needing an implicit conversion do not match.
func (c *checker) overload(name string, fns []callee, args []*hir.Expr, expected types.TypeID, sp source.Span, exact bool) *hir.Expr {
	sigs := make([]signature, 0, len(fns))
	for _, f := range fns {
		sig, ok := c.signatureOf(f)
		if !ok {
			if c.suspended() {
				return nil
			}
			continue
		}
		sig.exact = exact
		sigs = append(sigs, sig)
	}
	if len(sigs) == 0 {
		return nil
	}
	if len(fns) == 1 {
		return c.emitCall(name, sigs[0], args, sp)
	}
	want := c.types.RemoveConst(expected)
	best, bestScore, ties := -1, -1, 0
	for i, sig := range sigs {
		score, ok := c.score(sig, args)
		if !ok {
			continue
		}
		if want != types.NoTypeID && c.types.RemoveConst(sig.ret) == want {
			score += 3
		}
		switch {
		case score > bestScore:
			best, bestScore, ties = i, score, 1
		case score == bestScore:
			ties++
		}
	}
	switch {
	case best < 0:
		b := c.errorf(diag.SemaNoMatchingOverload, sp, fmt.Sprintf("no overload of %s accepts (%s)", name, c.argTypes(args)))
		c.noteCandidates(b, sigs)
		b.Emit()
		return nil
	case ties > 1:
		b := c.errorf(diag.SemaAmbiguousOverload, sp, fmt.Sprintf("ambiguous call to %s with (%s)", name, c.argTypes(args)))
		var tied []signature
		for _, sig := range sigs {
			if s, ok := c.score(sig, args); ok {
				if want != types.NoTypeID && c.types.RemoveConst(sig.ret) == want {
					s += 3
				}
				if s == bestScore {
					tied = append(tied, sig)
				}
			}
		}
		c.noteCandidates(b, tied)
		b.Emit()
		return nil
	}
	return c.emitCall(name, sigs[best], args, sp)
}

func (c *checker) score(sig signature, args []*hir.Expr) (int, bool) {
	if len(args) < len(sig.params) || (!sig.variadic && len(args) > len(sig.params)) {
		return 0, false
	}
	total := 0
	for i, p := range sig.params {
		score := c.convScore
		if sig.exact {
			score = c.exactScore
		}
		s, ok := score(args[i], p)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

func (c *checker) emitCall(name string, sig signature, args []*hir.Expr, sp source.Span) *hir.Expr {
	args, ok := c.applyArgs(name, sig, args, sp)
	if !ok {
		return nil
	}
	if sig.callee.decl != nil {
		return &hir.Expr{Kind: hir.ExprCall, Type: sig.ret, Span: sp, Data: hir.CallData{Func: sig.callee.decl.fn, Args: args}}
	}
	op := c.prelude[sig.callee.builtin].Op
	return &hir.Expr{Kind: hir.ExprBuiltin, Type: sig.ret, Span: sp, Data: hir.BuiltinData{Op: op, Args: args}}
}

func (c *checker) argTypes(args []*hir.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = c.types.TypeString(a.Type)
	}
	return strings.Join(parts, ", ")
}

func (c *checker) noteCandidates(b *diag.ReportBuilder, sigs []signature) {
	for _, sig := range sigs {
		if sig.callee.decl != nil {
			b.WithNote(sig.callee.decl.node.Span, "candidate "+c.types.TypeString(sig.callee.decl.typ))
		}
	}
}
