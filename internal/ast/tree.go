// Package ast is the untyped syntax tree handed over by the parser.
//
// Nodes live in per-category arenas and refer to each other by 1-based IDs.
// Spans inside a tree refer to files by their 1-based index in Tree.Files
// until the tree is attached to a source.FileSet.
package ast

import "kestrel/internal/source"

// FormatVersion is bumped whenever the serialized layout changes.
const FormatVersion uint16 = 1

// SourceFile is a file the parser read; kept for diagnostics.
type SourceFile struct {
	Path    string `msgpack:"p"`
	Content []byte `msgpack:"c"`
}

// Import makes another module visible under Alias (default: last path segment).
type Import struct {
	Path  []string    `msgpack:"p"`
	Alias string      `msgpack:"a,omitempty"`
	Span  source.Span `msgpack:"s"`
}

// Name is the identifier the imported module is bound to.
func (im Import) Name() string {
	if im.Alias != "" {
		return im.Alias
	}
	if len(im.Path) == 0 {
		return ""
	}
	return im.Path[len(im.Path)-1]
}

// Module is one named scope. Several Module nodes with the same full path
// (e.g. from different files) denote the same module.
type Module struct {
	Name    string      `msgpack:"n"`
	Parent  ModuleID    `msgpack:"pa,omitempty"`
	Span    source.Span `msgpack:"s"`
	Imports []Import    `msgpack:"i,omitempty"`
	Decls   []DeclID    `msgpack:"d,omitempty"`
}

// Tree is one parsed program fragment.
type Tree struct {
	Version uint16           `msgpack:"v"`
	Files   []SourceFile     `msgpack:"f"`
	Modules *Arena[Module]   `msgpack:"m"`
	Decls   *Arena[Decl]     `msgpack:"d"`
	Stmts   *Arena[Stmt]     `msgpack:"st"`
	Exprs   *Arena[Expr]     `msgpack:"e"`
	Types   *Arena[TypeExpr] `msgpack:"t"`
}

// Hints sizes the arenas of a new tree.
type Hints struct{ Modules, Decls, Stmts, Exprs, Types uint }

// NewTree creates an empty tree.
func NewTree(hints Hints) *Tree {
	if hints.Modules == 0 {
		hints.Modules = 1 << 3
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	return &Tree{
		Version: FormatVersion,
		Modules: NewArena[Module](hints.Modules),
		Decls:   NewArena[Decl](hints.Decls),
		Stmts:   NewArena[Stmt](hints.Stmts),
		Exprs:   NewArena[Expr](hints.Exprs),
		Types:   NewArena[TypeExpr](hints.Types),
	}
}

func (t *Tree) Module(id ModuleID) *Module { return t.Modules.Get(uint32(id)) }
func (t *Tree) Decl(id DeclID) *Decl       { return t.Decls.Get(uint32(id)) }
func (t *Tree) Stmt(id StmtID) *Stmt       { return t.Stmts.Get(uint32(id)) }
func (t *Tree) Expr(id ExprID) *Expr       { return t.Exprs.Get(uint32(id)) }
func (t *Tree) Type(id TypeID) *TypeExpr   { return t.Types.Get(uint32(id)) }

// ModulePath is the full dotted path of a module node.
func (t *Tree) ModulePath(id ModuleID) []string {
	var rev []string
	for id.IsValid() {
		m := t.Module(id)
		if m == nil {
			break
		}
		rev = append(rev, m.Name)
		id = m.Parent
	}
	out := make([]string, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

// ModuleIDs lists every module node in allocation order.
func (t *Tree) ModuleIDs() []ModuleID {
	n := t.Modules.Len()
	out := make([]ModuleID, 0, n)
	for i := uint32(1); i <= n; i++ {
		out = append(out, ModuleID(i))
	}
	return out
}
