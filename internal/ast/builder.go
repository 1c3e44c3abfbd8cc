package ast

import "kestrel/internal/source"

// Builder helpers construct trees in memory. Nodes get empty spans unless
// the caller fills them in.

// AddFile records a source file and returns the span file number for it.
func (t *Tree) AddFile(path string, content []byte) source.FileID {
	t.Files = append(t.Files, SourceFile{Path: path, Content: content})
	return FileIndex(len(t.Files) - 1)
}

func (t *Tree) NewModule(parent ModuleID, name string) ModuleID {
	return ModuleID(t.Modules.Allocate(Module{Name: name, Parent: parent}))
}

func (t *Tree) AddImport(m ModuleID, alias string, path ...string) {
	mod := t.Module(m)
	mod.Imports = append(mod.Imports, Import{Path: path, Alias: alias})
}

func (t *Tree) AddDecl(m ModuleID, d Decl) DeclID {
	id := DeclID(t.Decls.Allocate(d))
	mod := t.Module(m)
	mod.Decls = append(mod.Decls, id)
	return id
}

func (t *Tree) NewStmt(s Stmt) StmtID     { return StmtID(t.Stmts.Allocate(s)) }
func (t *Tree) NewExpr(e Expr) ExprID     { return ExprID(t.Exprs.Allocate(e)) }
func (t *Tree) NewType(te TypeExpr) TypeID { return TypeID(t.Types.Allocate(te)) }

// types

func (t *Tree) Named(path ...string) TypeID {
	return t.NewType(TypeExpr{Kind: TypeNamed, Path: path})
}

func (t *Tree) ConstOf(elem TypeID) TypeID {
	return t.NewType(TypeExpr{Kind: TypeConst, Elem: elem})
}

func (t *Tree) PointerTo(elem TypeID, nullable bool) TypeID {
	return t.NewType(TypeExpr{Kind: TypePointer, Elem: elem, Nullable: nullable})
}

func (t *Tree) ArrayOf(length string, elem TypeID) TypeID {
	return t.NewType(TypeExpr{Kind: TypeArray, Elem: elem, Len: t.Int(length)})
}

func (t *Tree) SliceOf(elem TypeID) TypeID {
	return t.NewType(TypeExpr{Kind: TypeSlice, Elem: elem})
}

func (t *Tree) TupleOf(elems ...TypeID) TypeID {
	return t.NewType(TypeExpr{Kind: TypeTuple, Elems: elems})
}

// expressions

func (t *Tree) Ident(name string) ExprID {
	return t.NewExpr(Expr{Kind: ExprIdent, Name: name})
}

func (t *Tree) Int(text string) ExprID {
	return t.NewExpr(Expr{Kind: ExprIntLit, Text: text})
}

func (t *Tree) Float(text string) ExprID {
	return t.NewExpr(Expr{Kind: ExprFloatLit, Text: text})
}

func (t *Tree) Str(text string) ExprID {
	return t.NewExpr(Expr{Kind: ExprStringLit, Text: text})
}

func (t *Tree) Bool(v bool) ExprID {
	return t.NewExpr(Expr{Kind: ExprBoolLit, Bool: v})
}

func (t *Tree) Null() ExprID {
	return t.NewExpr(Expr{Kind: ExprNullLit})
}

func (t *Tree) Call(fn ExprID, args ...ExprID) ExprID {
	return t.NewExpr(Expr{Kind: ExprCall, X: fn, Args: args})
}

func (t *Tree) Member(x ExprID, name string) ExprID {
	return t.NewExpr(Expr{Kind: ExprMember, X: x, Name: name})
}

func (t *Tree) IndexOf(x, index ExprID) ExprID {
	return t.NewExpr(Expr{Kind: ExprIndex, X: x, Index: index})
}

func (t *Tree) CastTo(kind CastKind, to TypeID, x ExprID) ExprID {
	return t.NewExpr(Expr{Kind: ExprCast, Cast: kind, Type: to, X: x})
}

// Seq builds an unresolved operator sequence: operands[0] ops[0] operands[1] ...
func (t *Tree) Seq(operands []ExprID, ops ...string) ExprID {
	terms := make([]Term, len(operands))
	for i, o := range operands {
		terms[i] = Term{Operand: o}
	}
	runs := make([]Run, len(ops))
	for i, op := range ops {
		runs[i] = Run{Text: op}
	}
	return t.NewExpr(Expr{Kind: ExprSequence, Terms: terms, Ops: runs})
}

// Binary is Seq with two operands.
func (t *Tree) Binary(lhs ExprID, op string, rhs ExprID) ExprID {
	return t.Seq([]ExprID{lhs, rhs}, op)
}

// Unary wraps x with prefix and postfix operator runs.
func (t *Tree) Unary(prefix string, x ExprID, postfix string) ExprID {
	return t.NewExpr(Expr{Kind: ExprSequence, Terms: []Term{{
		Prefix:  Run{Text: prefix},
		Operand: x,
		Postfix: Run{Text: postfix},
	}}})
}

// statements

func (t *Tree) Block(body ...StmtID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtBlock, Body: body})
}

func (t *Tree) Var(name string, typ TypeID, init ExprID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtVar, Name: name, Type: typ, X: init})
}

func (t *Tree) ExprStmt(x ExprID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtExpr, X: x})
}

func (t *Tree) Return(x ExprID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtReturn, X: x})
}

func (t *Tree) If(cond ExprID, then []StmtID, els []StmtID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtIf, X: cond, Body: then, Else: els})
}

func (t *Tree) While(cond ExprID, body ...StmtID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtWhile, X: cond, Body: body})
}

func (t *Tree) Loop(body ...StmtID) StmtID {
	return t.NewStmt(Stmt{Kind: StmtLoop, Body: body})
}

func (t *Tree) Break() StmtID    { return t.NewStmt(Stmt{Kind: StmtBreak}) }
func (t *Tree) Continue() StmtID { return t.NewStmt(Stmt{Kind: StmtContinue}) }

func (t *Tree) Goto(label string) StmtID {
	return t.NewStmt(Stmt{Kind: StmtGoto, Name: label})
}

func (t *Tree) Label(name string) StmtID {
	return t.NewStmt(Stmt{Kind: StmtLabel, Name: name})
}
