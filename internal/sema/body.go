package sema

import (
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/source"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// funcState is the per-body checking state.
type funcState struct {
	fn     *hir.Func
	scopes []map[string]*hir.Var
	used   map[string]int
	labels map[string]*hir.Label
	loops  int
}

func newFuncState(fn *hir.Func) *funcState {
	return &funcState{
		fn:     fn,
		used:   make(map[string]int),
		labels: make(map[string]*hir.Label),
	}
}

func (fs *funcState) push() { fs.scopes = append(fs.scopes, make(map[string]*hir.Var)) }
func (fs *funcState) pop()  { fs.scopes = fs.scopes[:len(fs.scopes)-1] }

func (fs *funcState) lookup(name string) *hir.Var {
	for i := len(fs.scopes) - 1; i >= 0; i-- {
		if v, ok := fs.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

// unique gives every variable of a function a distinct name: x, x.1, x.2.
func (fs *funcState) unique(name string) string {
	n := fs.used[name]
	fs.used[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

// checkBodies runs the body pass over every resolved function.
func (c *checker) checkBodies() {
	for id := 1; id < len(c.decls); id++ {
		d := c.decls[id]
		if d.kind != ast.DeclFunc || d.state != stateDone || !d.node.HasBody {
			continue
		}
		c.cur = d.mod
		sp := trace.Begin(c.tracer, trace.ScopeFunc, d.fn.QualifiedName(), c.span)
		c.checkFunc(d)
		sp.End("")
	}
	c.cur = nil
}

func (c *checker) checkFunc(d *decl) {
	fn := d.fn
	fs := newFuncState(fn)
	fs.push()
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		p.Name = fs.unique(p.Name)
		fs.scopes[0][p.Name] = p
	}
	c.fn = fs
	defer func() { c.fn = nil }()

	c.collectLabels(d.node.Body)
	fn.Body = c.stmts(d.node.Body)
	fs.pop()

	if c.completes(fn.Body) && !c.zeroSized(fn.Ret) {
		c.errorf(diag.SemaMissingReturn, d.node.Span,
			fmt.Sprintf("missing return at end of %s returning %s", d.label(), c.types.TypeString(fn.Ret))).Emit()
	}
}

func (c *checker) zeroSized(t types.TypeID) bool {
	l, err := c.layout.LayoutOf(t)
	return err == nil && l.Size == 0
}

// collectLabels registers every label of the body up front, so a goto may
// jump forward and out of nested blocks.
func (c *checker) collectLabels(list []ast.StmtID) {
	fs := c.fn
	for _, id := range list {
		s := c.tree.Stmt(id)
		switch s.Kind {
		case ast.StmtLabel:
			if prev, dup := fs.labels[s.Name]; dup {
				c.errorf(diag.SemaDuplicateLabel, s.Span, fmt.Sprintf("label %s is already defined", s.Name)).
					WithNote(prev.Span, "previous definition").
					Emit()
				continue
			}
			l := &hir.Label{Name: s.Name, Span: s.Span}
			fs.labels[s.Name] = l
			fs.fn.Labels = append(fs.fn.Labels, l)
		case ast.StmtBlock, ast.StmtWhile, ast.StmtLoop:
			c.collectLabels(s.Body)
		case ast.StmtIf:
			c.collectLabels(s.Body)
			c.collectLabels(s.Else)
		}
	}
}

func (c *checker) block(list []ast.StmtID) []*hir.Stmt {
	c.fn.push()
	defer c.fn.pop()
	return c.stmts(list)
}

func (c *checker) stmts(list []ast.StmtID) []*hir.Stmt {
	out := make([]*hir.Stmt, 0, len(list))
	for _, id := range list {
		if s := c.stmt(c.tree.Stmt(id)); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c *checker) stmt(s *ast.Stmt) *hir.Stmt {
	mk := func(kind hir.StmtKind, data hir.StmtData) *hir.Stmt {
		return &hir.Stmt{Kind: kind, Span: s.Span, Data: data}
	}
	switch s.Kind {
	case ast.StmtBlock:
		return mk(hir.StmtBlock, hir.BlockData{Body: c.block(s.Body)})
	case ast.StmtVar:
		return c.varStmt(s, mk)
	case ast.StmtExpr:
		e := c.value(s.X, types.NoTypeID)
		if e == nil {
			return nil
		}
		if isLiteral(e) {
			e = c.settle(e, "expression statement")
			if e == nil {
				return nil
			}
		}
		return mk(hir.StmtExpr, hir.ExprStmtData{X: e})
	case ast.StmtReturn:
		return c.returnStmt(s, mk)
	case ast.StmtIf:
		cond := c.condition(s.X)
		then := c.block(s.Body)
		els := c.block(s.Else)
		if cond == nil {
			return nil
		}
		return mk(hir.StmtIf, hir.IfData{Cond: cond, Then: then, Else: els})
	case ast.StmtWhile:
		cond := c.condition(s.X)
		c.fn.loops++
		body := c.block(s.Body)
		c.fn.loops--
		if cond == nil {
			return nil
		}
		return mk(hir.StmtWhile, hir.WhileData{Cond: cond, Body: body})
	case ast.StmtLoop:
		c.fn.loops++
		body := c.block(s.Body)
		c.fn.loops--
		return mk(hir.StmtLoop, hir.LoopData{Body: body})
	case ast.StmtBreak, ast.StmtContinue:
		if c.fn.loops == 0 {
			c.errorf(diag.SemaBreakOutsideLoop, s.Span, fmt.Sprintf("%s outside of a loop", stmtWord(s.Kind))).Emit()
			return nil
		}
		if s.Kind == ast.StmtBreak {
			return mk(hir.StmtBreak, hir.BreakData{})
		}
		return mk(hir.StmtContinue, hir.ContinueData{})
	case ast.StmtGoto:
		l, ok := c.fn.labels[s.Name]
		if !ok {
			c.errorf(diag.SemaUnknownLabel, s.Span, fmt.Sprintf("undefined label %s", s.Name)).Emit()
			return nil
		}
		return mk(hir.StmtGoto, hir.GotoData{Label: l})
	case ast.StmtLabel:
		l, ok := c.fn.labels[s.Name]
		if !ok || l.Span != s.Span {
			// duplicate, already reported
			return nil
		}
		return mk(hir.StmtLabel, hir.LabelData{Label: l})
	}
	panic(fmt.Errorf("sema: unexpected statement kind %d", s.Kind))
}

func stmtWord(k ast.StmtKind) string {
	if k == ast.StmtBreak {
		return "break"
	}
	return "continue"
}

func (c *checker) varStmt(s *ast.Stmt, mk func(hir.StmtKind, hir.StmtData) *hir.Stmt) *hir.Stmt {
	t := types.NoTypeID
	if s.Type.IsValid() {
		if t = c.resolveType(s.Type); t == types.NoTypeID {
			return nil
		}
	}
	var init *hir.Expr
	if s.X.IsValid() {
		init = c.rvalue(s.X, t)
		if init == nil {
			return nil
		}
		if t == types.NoTypeID {
			t = init.Type
			if c.types.IsNull(t) {
				c.errorf(diag.SemaInvalidType, init.Span, "cannot infer a variable type from null").Emit()
				return nil
			}
		}
		if init = c.coerce(init, t, diag.SemaTypeMismatch, "variable declaration"); init == nil {
			return nil
		}
	}
	switch {
	case t == types.NoTypeID:
		c.errorf(diag.SemaInvalidType, s.Span, fmt.Sprintf("variable %s needs a type or an initializer", s.Name)).Emit()
		return nil
	case c.types.IsVoid(t):
		c.errorf(diag.SemaVoidValue, s.Span, fmt.Sprintf("variable %s cannot have type void", s.Name)).Emit()
		return nil
	case c.types.IsFunc(t):
		c.errorf(diag.SemaInvalidType, s.Span, fmt.Sprintf("variable %s cannot have function type; use a pointer", s.Name)).Emit()
		return nil
	}
	if !c.requireComplete(t) {
		return nil
	}
	v := c.declareLocal(s.Name, t, s.Span)
	if v == nil {
		return nil
	}
	return mk(hir.StmtVar, hir.VarData{Var: v, Init: init})
}

func (c *checker) declareLocal(name string, t types.TypeID, sp source.Span) *hir.Var {
	fs := c.fn
	top := fs.scopes[len(fs.scopes)-1]
	if prev, dup := top[name]; dup {
		c.errorf(diag.SemaDuplicateSymbol, sp, fmt.Sprintf("%s is already declared in this block", name)).
			WithNote(prev.Span, "previous declaration").
			Emit()
		return nil
	}
	v := &hir.Var{Name: fs.unique(name), Type: t, Index: len(fs.fn.Locals), Span: sp}
	fs.fn.Locals = append(fs.fn.Locals, v)
	top[name] = v
	return v
}

func (c *checker) returnStmt(s *ast.Stmt, mk func(hir.StmtKind, hir.StmtData) *hir.Stmt) *hir.Stmt {
	ret := c.fn.fn.Ret
	if !s.X.IsValid() {
		if !c.types.IsVoid(ret) {
			c.errorf(diag.SemaTypeMismatch, s.Span, fmt.Sprintf("missing return value of type %s", c.types.TypeString(ret))).Emit()
			return nil
		}
		return mk(hir.StmtReturn, hir.ReturnData{})
	}
	v := c.rvalue(s.X, ret)
	if v == nil {
		return nil
	}
	if c.types.IsVoid(ret) && !c.types.IsVoid(v.Type) {
		c.errorf(diag.SemaTypeMismatch, v.Span, "function returning void cannot return a value").Emit()
		return nil
	}
	if v = c.coerce(v, ret, diag.SemaTypeMismatch, "return statement"); v == nil {
		return nil
	}
	return mk(hir.StmtReturn, hir.ReturnData{Value: v})
}

func (c *checker) condition(id ast.ExprID) *hir.Expr {
	boolT := c.types.Builtin(types.Bool)
	e := c.rvalue(id, boolT)
	if e == nil {
		return nil
	}
	if !c.types.IsBool(e.Type) {
		c.errorf(diag.SemaConditionNotBool, e.Span, fmt.Sprintf("condition must be bool, got %s", c.types.TypeString(e.Type))).Emit()
		return nil
	}
	return c.toRValue(e)
}

// completes reports whether control can fall off the end of list. A label
// makes the code after it reachable again.
func (c *checker) completes(list []*hir.Stmt) bool {
	reachable := true
	for _, s := range list {
		if s.Kind == hir.StmtLabel {
			reachable = true
			continue
		}
		if !reachable && hasLabel(s) {
			reachable = true
		}
		if reachable && !c.stmtCompletes(s) {
			reachable = false
		}
	}
	return reachable
}

func (c *checker) stmtCompletes(s *hir.Stmt) bool {
	switch d := s.Data.(type) {
	case hir.ReturnData, hir.GotoData, hir.BreakData, hir.ContinueData:
		return false
	case hir.BlockData:
		return c.completes(d.Body)
	case hir.IfData:
		return c.completes(d.Then) || c.completes(d.Else)
	case hir.LoopData:
		return containsBreak(d.Body)
	}
	return true
}

// containsBreak reports a break leaving this loop (not a nested one).
func containsBreak(list []*hir.Stmt) bool {
	for _, s := range list {
		switch d := s.Data.(type) {
		case hir.BreakData:
			return true
		case hir.BlockData:
			if containsBreak(d.Body) {
				return true
			}
		case hir.IfData:
			if containsBreak(d.Then) || containsBreak(d.Else) {
				return true
			}
		}
	}
	return false
}

func hasLabel(s *hir.Stmt) bool {
	var bodies [][]*hir.Stmt
	switch d := s.Data.(type) {
	case hir.LabelData:
		return true
	case hir.BlockData:
		bodies = append(bodies, d.Body)
	case hir.IfData:
		bodies = append(bodies, d.Then, d.Else)
	case hir.WhileData:
		bodies = append(bodies, d.Body)
	case hir.LoopData:
		bodies = append(bodies, d.Body)
	}
	for _, b := range bodies {
		for _, x := range b {
			if hasLabel(x) {
				return true
			}
		}
	}
	return false
}
