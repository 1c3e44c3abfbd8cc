// Package lower translates a validated program into SSA modules, one per
// source module.
//
// Lowering assumes its input passed validation. A tree that violates a
// validation invariant makes lowering panic with an error value; callers
// that must not crash recover it (see driver).
package lower

import (
	"fmt"
	"slices"

	"kestrel/internal/hir"
	"kestrel/internal/layout"
	"kestrel/internal/mangle"
	"kestrel/internal/platform"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

// Lowerer holds what every module of one program shares. It is read-only
// after New, so Module may run concurrently for different modules.
type Lowerer struct {
	prog *hir.Program
	arch platform.Arch

	// shared lists declarations referenced from outside their own module;
	// they keep external linkage even when not exported.
	shared map[any]bool
}

// New prepares lowering of prog for arch.
func New(prog *hir.Program, arch platform.Arch) *Lowerer {
	l := &Lowerer{prog: prog, arch: arch, shared: make(map[any]bool)}
	l.scanShared()
	return l
}

// All lowers every module in program order.
func (l *Lowerer) All() []*ssa.Module {
	out := make([]*ssa.Module, 0, len(l.prog.Modules))
	for _, m := range l.prog.Modules {
		out = append(out, l.Module(m))
	}
	return out
}

// Module lowers one module of the program.
func (l *Lowerer) Module(m *hir.Module) *ssa.Module {
	ml := &moduleLowerer{
		Lowerer: l,
		mod:     m,
		types:   l.prog.Types,
		layout:  layout.New(l.arch, l.prog.Types),
		mangle:  mangle.New(l.prog.Types),
		pool:    mangle.NewStringPool(),
		out:     &ssa.Module{Name: m.Name(), Triple: l.arch.Triple},
		aggs:    make(map[types.TypeID]*aggregate),
		named:   make(map[types.TypeID]bool),
		decls:   make(map[string]bool),
		externs: make(map[string]bool),
	}
	return ml.run()
}

type moduleLowerer struct {
	*Lowerer
	mod    *hir.Module
	types  *types.Interner
	layout *layout.LayoutEngine
	mangle mangle.Mangler
	pool   *mangle.StringPool
	out    *ssa.Module

	aggs       map[types.TypeID]*aggregate
	named      map[types.TypeID]bool
	namedOrder []types.TypeID
	decls      map[string]bool
	externs    map[string]bool
	externList []ssa.Global
}

func (ml *moduleLowerer) run() *ssa.Module {
	for _, g := range ml.mod.Globals {
		ml.global(g)
	}
	for _, fn := range ml.mod.Funcs {
		if !fn.Defined {
			continue
		}
		ml.out.Funcs = append(ml.out.Funcs, ml.lowerFunc(fn))
	}
	ml.out.Globals = append(ml.out.Globals, ml.externList...)
	for _, s := range ml.pool.Entries() {
		ml.out.Globals = append(ml.out.Globals, ssa.Global{
			Name:        s.Name,
			Ty:          fmt.Sprintf("[%d x i8]", len(s.Data)),
			Init:        ssa.Bytes(s.Data),
			Internal:    true,
			Constant:    true,
			UnnamedAddr: true,
			Align:       1,
		})
	}
	ml.emitTypes()
	return ml.out
}

// emitTypes writes the bodies of every named struct type used. Bodies may
// name further structs, so the list grows while it is walked.
func (ml *moduleLowerer) emitTypes() {
	for i := 0; i < len(ml.namedOrder); i++ {
		st := ml.namedOrder[i]
		info, _ := ml.types.StructInfo(st)
		ml.out.Types = append(ml.out.Types, ssa.TypeDef{
			Name: info.QualifiedName(),
			Body: ml.aggregateOf(st).body,
		})
	}
}

func (ml *moduleLowerer) local(module []string) bool {
	return slices.Equal(module, ml.mod.Path)
}

// funcName is the link name of fn.
func (ml *moduleLowerer) funcName(fn *hir.Func) string {
	switch {
	case fn.LinkName != "":
		return fn.LinkName
	case fn.Extern:
		return fn.Name
	case fn.Operator != nil:
		return ml.mangle.Operator(fn.Module, fn.Operator.Fixity, fn.Operator.Symbol, paramTypes(fn))
	case fn.Name == "main" && slices.Equal(fn.Module, ml.prog.Root):
		return "main"
	}
	return ml.mangle.Func(fn.Module, fn.Name, paramTypes(fn))
}

func (ml *moduleLowerer) globalName(g *hir.Global) string {
	switch {
	case g.LinkName != "":
		return g.LinkName
	case g.Extern:
		return g.Name
	}
	return ml.mangle.Global(g.Module, g.Name)
}

func paramTypes(fn *hir.Func) []types.TypeID {
	out := make([]types.TypeID, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = p.Type
	}
	return out
}

// internalFunc reports functions no other object file needs to see.
func (ml *moduleLowerer) internalFunc(fn *hir.Func, name string) bool {
	return !fn.Exported && !fn.Extern && name != "main" && fn.LinkName == "" && !ml.shared[fn]
}

// retType is the IR return type; zero-sized results return void.
func (ml *moduleLowerer) retType(fn *hir.Func) string {
	if ml.zero(fn.Ret) {
		return "void"
	}
	return ml.irType(fn.Ret)
}

// signature lists the IR parameter types of fn; zero-sized ones are dropped.
func (ml *moduleLowerer) signature(fn *hir.Func) []string {
	out := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		if ml.zero(p.Type) {
			continue
		}
		out = append(out, ml.irType(p.Type))
	}
	return out
}

// reference returns the symbol for fn, declaring it when it is defined in
// another object.
func (ml *moduleLowerer) reference(fn *hir.Func) (name string, decl ssa.Decl) {
	name = ml.funcName(fn)
	decl = ssa.Decl{Name: name, Ret: ml.retType(fn), Params: ml.signature(fn), Variadic: fn.Variadic}
	if fn.Defined && ml.local(fn.Module) {
		return name, decl
	}
	ml.declare(decl)
	return name, decl
}

func (ml *moduleLowerer) declare(d ssa.Decl) {
	if ml.decls[d.Name] {
		return
	}
	ml.decls[d.Name] = true
	ml.out.Decls = append(ml.out.Decls, d)
}

// globalRef returns the address of g, adding an external declaration for
// globals owned by other objects.
func (ml *moduleLowerer) globalRef(g *hir.Global) ssa.Value {
	name := ml.globalName(g)
	if !g.Extern && ml.local(g.Module) {
		return ssa.Value{Ty: "ptr", Repr: ssa.GlobalName(name)}
	}
	if !ml.externs[name] {
		ml.externs[name] = true
		ml.externList = append(ml.externList, ssa.Global{
			Name:  name,
			Ty:    ml.irType(g.Type),
			Align: ml.layoutOf(g.Type).Align,
		})
	}
	return ssa.Value{Ty: "ptr", Repr: ssa.GlobalName(name)}
}

func (ml *moduleLowerer) global(g *hir.Global) {
	if g.Extern {
		ml.globalRef(g)
		return
	}
	init := "zeroinitializer"
	if g.Init != nil {
		init = ml.constant(g.Init)
	}
	ml.out.Globals = append(ml.out.Globals, ssa.Global{
		Name:     ml.globalName(g),
		Ty:       ml.irType(g.Type),
		Init:     init,
		Internal: !g.Exported && g.LinkName == "" && !ml.shared[g],
		Align:    ml.layoutOf(g.Type).Align,
	})
}

func (ml *moduleLowerer) layoutOf(t types.TypeID) layout.TypeLayout {
	return ml.layout.MustLayoutOf(t)
}

func (ml *moduleLowerer) zero(t types.TypeID) bool {
	return ml.layoutOf(t).Zero()
}

func invariant(format string, args ...any) {
	panic(fmt.Errorf("lower: "+format, args...))
}
