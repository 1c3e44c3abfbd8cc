// Package sema validates a syntax tree and produces the typed program.
//
// Checking runs in three passes. The declare pass builds the module tree and
// registers every declaration name. The signature pass resolves types of all
// declarations through an explicit worklist; a declaration that needs another
// one still unresolved is suspended, its diagnostics rewound, and retried once
// the dependency is done. Revisiting a declaration that is in progress is a
// cyclic dependency. The body pass then checks function bodies, which only
// ever see finished signatures.
package sema

import (
	"slices"
	"strconv"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/layout"
	"kestrel/internal/platform"
	"kestrel/internal/prelude"
	"kestrel/internal/source"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Options configures one check.
type Options struct {
	Arch platform.Arch
	// Bag receives diagnostics. Required.
	Bag *diag.Bag
	// Types is reused when set, otherwise a fresh interner is created.
	Types *types.Interner
	// Root is the program's main module; defaults to the first top-level
	// module of the tree.
	Root []string
	// Tracer receives one span per pass and per checked body; nil disables
	// tracing. Spans nest under Parent.
	Tracer trace.Tracer
	Parent uint64
}

// Check validates tree. The returned program is usable for lowering only
// when ok is true.
func Check(tree *ast.Tree, opts Options) (prog *hir.Program, ok bool) {
	c := newChecker(tree, opts)
	c.pass("declare", c.declare)
	c.pass("resolve", c.resolveAll)
	c.pass("bodies", c.checkBodies)
	prog = c.assemble()
	return prog, !c.bag.HasErrors()
}

type checker struct {
	tree   *ast.Tree
	arch   platform.Arch
	types  *types.Interner
	layout *layout.LayoutEngine
	bag    *diag.Bag
	rep    diag.Reporter

	modules    []*module
	roots      map[string]*module
	rootOrder  []*module
	build      *module
	decls      []*decl // index 0 unused
	structDecl map[types.TypeID]declID

	prelude       []prelude.Func
	preludeByName map[string][]int
	preludeOps    map[opKey][]int

	// signature pass
	stack    []declID
	pending  declID
	poisoned bool

	cur *module
	fn  *funcState

	root []string

	tracer trace.Tracer
	parent uint64
	span   uint64 // current pass
}

func newChecker(tree *ast.Tree, opts Options) *checker {
	in := opts.Types
	if in == nil {
		in = types.NewInterner()
	}
	c := &checker{
		tree:          tree,
		arch:          opts.Arch,
		types:         in,
		layout:        layout.New(opts.Arch, in),
		bag:           opts.Bag,
		rep:           diag.BagReporter{Bag: opts.Bag},
		roots:         make(map[string]*module),
		decls:         make([]*decl, 1, 64),
		structDecl:    make(map[types.TypeID]declID),
		prelude:       prelude.Funcs(),
		preludeByName: make(map[string][]int),
		preludeOps:    make(map[opKey][]int),
		root:          slices.Clone(opts.Root),
		tracer:        opts.Tracer,
		parent:        opts.Parent,
	}
	if c.tracer == nil {
		c.tracer = trace.Nop
	}
	for i, f := range c.prelude {
		if f.Name != "" {
			c.preludeByName[f.Name] = append(c.preludeByName[f.Name], i)
			continue
		}
		k := opKey{symbol: f.Symbol, fixity: f.Fixity}
		c.preludeOps[k] = append(c.preludeOps[k], i)
	}
	return c
}

func (c *checker) pass(name string, run func()) {
	sp := trace.Begin(c.tracer, trace.ScopePhase, name, c.parent)
	c.span = sp.ID()
	errs := c.bag.ErrorCount()
	run()
	sp.WithExtra("errors", strconv.Itoa(c.bag.ErrorCount()-errs)).End("")
	c.span = 0
}

func (c *checker) errorf(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(c.rep, code, sp, msg)
}

// assemble collects the typed declarations into modules, in declaration order.
func (c *checker) assemble() *hir.Program {
	prog := &hir.Program{Types: c.types, Root: c.root}
	for _, m := range c.modules {
		if m == c.build {
			continue
		}
		out := &hir.Module{Path: slices.Clone(m.path)}
		for _, id := range m.order {
			d := c.decls[id]
			if d.state != stateDone {
				continue
			}
			switch d.kind {
			case ast.DeclFunc:
				out.Funcs = append(out.Funcs, d.fn)
			case ast.DeclGlobal:
				out.Globals = append(out.Globals, d.global)
			case ast.DeclStruct:
				out.Structs = append(out.Structs, d.typ)
			}
		}
		prog.Modules = append(prog.Modules, out)
	}
	return prog
}
