package sema

import (
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
)

type fixture struct {
	tree *ast.Tree
	main ast.ModuleID
}

func newFixture() *fixture {
	tree := ast.NewTree(ast.Hints{})
	return &fixture{tree: tree, main: tree.NewModule(ast.NoModuleID, "main")}
}

func (f *fixture) fn(m ast.ModuleID, name string, params []ast.Param, ret ast.TypeID, body ...ast.StmtID) ast.DeclID {
	return f.tree.AddDecl(m, ast.Decl{
		Kind:     ast.DeclFunc,
		Name:     name,
		Params:   params,
		Ret:      ret,
		Body:     body,
		HasBody:  true,
		Exported: true,
	})
}

func (f *fixture) param(name string, typ string) ast.Param {
	return ast.Param{Name: name, Type: f.tree.Named(typ)}
}

func (f *fixture) check(t *testing.T) (*hir.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	prog, _ := Check(f.tree, Options{
		Arch: platform.MustParseTarget("x86_64-unknown-linux-gnu").WithConstants(map[string]int64{"DEBUG": 1}),
		Bag:  bag,
	})
	return prog, bag
}

func expectClean(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", dump(bag))
	}
}

func expectCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got:\n%s", code.ID(), dump(bag))
	return diag.Diagnostic{}
}

func dump(bag *diag.Bag) string {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(d.Code.ID())
		sb.WriteString(": ")
		sb.WriteString(d.Message)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func findFunc(prog *hir.Program, name string) *hir.Func {
	for _, m := range prog.Modules {
		for _, fn := range m.Funcs {
			if fn.QualifiedName() == name {
				return fn
			}
		}
	}
	return nil
}
