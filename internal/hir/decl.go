// Package hir is the typed, validated program produced by semantic
// analysis. Every implicit conversion is an explicit node, so consumers
// never infer types on their own.
package hir

import (
	"strings"

	"kestrel/internal/opres"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// Var is a local variable or parameter; Name is unique within its function.
type Var struct {
	Name  string
	Type  types.TypeID
	Param bool
	Index int // parameter position or local slot
	Span  source.Span
}

// Label is a goto target; Name is unique within its function.
type Label struct {
	Name string
	Span source.Span
}

// OperatorImpl marks a function implementing an operator.
type OperatorImpl struct {
	Symbol string
	Fixity opres.Fixity
}

type Func struct {
	Name     string
	Module   []string
	Type     types.TypeID // function type
	Params   []*Var
	Ret      types.TypeID
	Variadic bool
	Exported bool
	Extern   bool
	LinkName string
	Operator *OperatorImpl
	Span     source.Span

	Defined bool
	Body    []*Stmt
	Locals  []*Var
	Labels  []*Label
}

// QualifiedName is module.path.name.
func (f *Func) QualifiedName() string {
	return qualify(f.Module, f.Name)
}

// Global is a module-level variable; Init is a constant literal or nil.
type Global struct {
	Name     string
	Module   []string
	Type     types.TypeID
	Init     *Expr
	Exported bool
	Extern   bool
	LinkName string
	Span     source.Span
}

func (g *Global) QualifiedName() string {
	return qualify(g.Module, g.Name)
}

type Module struct {
	Path    []string
	Funcs   []*Func
	Globals []*Global
	Structs []types.TypeID
}

func (m *Module) Name() string {
	return strings.Join(m.Path, ".")
}

// Program is a fully validated compilation.
type Program struct {
	Types   *types.Interner
	Modules []*Module
	// Root is the module whose `main` keeps its plain link name.
	Root []string
}

func qualify(module []string, name string) string {
	if len(module) == 0 {
		return name
	}
	return strings.Join(module, ".") + "." + name
}
