package sema

import (
	"fmt"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/opres"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

type declID uint32

type declState uint8

const (
	stateUnvisited declState = iota
	stateInProgress
	stateDone
	stateFailed
)

// decl is one arena entry. Payload fields are filled by the signature pass.
type decl struct {
	id    declID
	kind  ast.DeclKind
	name  string
	mod   *module
	node  *ast.Decl
	state declState

	typ    types.TypeID // struct type, alias target, global or function type
	fn     *hir.Func
	global *hir.Global
	op     *opres.Decl
	params []types.TypeID
	ret    types.TypeID
}

// label is what cycle diagnostics print for d.
func (d *decl) label() string {
	name := d.name
	if d.kind == ast.DeclOperator || (d.kind == ast.DeclFunc && d.node.Operator.Symbol != "") {
		name = "operator " + d.node.Operator.Symbol
	}
	if len(d.mod.path) == 0 {
		return name
	}
	return strings.Join(d.mod.path, ".") + "." + name
}

func (d *decl) exported() bool {
	return d.node != nil && d.node.Exported
}

type opKey struct {
	symbol string
	fixity opres.Fixity
}

type module struct {
	name     string
	path     []string
	parent   *module
	children map[string]*module
	span     source.Span

	names   map[string][]declID
	order   []declID
	opDecls []declID
	impls   map[opKey][]declID

	imports    map[string]*module
	importList []*module

	consts map[string]int64 // build module only

	table *opres.Table
}

func newModule(name string, parent *module) *module {
	m := &module{
		name:     name,
		parent:   parent,
		children: make(map[string]*module),
		names:    make(map[string][]declID),
		impls:    make(map[opKey][]declID),
		imports:  make(map[string]*module),
	}
	if parent != nil {
		m.path = append(append([]string(nil), parent.path...), name)
	} else {
		m.path = []string{name}
	}
	return m
}

func (m *module) String() string {
	return strings.Join(m.path, ".")
}

// encloses reports whether m is other or one of its ancestors.
func (m *module) encloses(other *module) bool {
	for o := other; o != nil; o = o.parent {
		if o == m {
			return true
		}
	}
	return false
}

func (c *checker) module(path []string, span source.Span) *module {
	var cur *module
	for i, seg := range path {
		var next *module
		if i == 0 {
			next = c.roots[seg]
		} else {
			next = cur.children[seg]
		}
		if next == nil {
			next = newModule(seg, cur)
			next.span = span
			if cur == nil {
				c.roots[seg] = next
				c.rootOrder = append(c.rootOrder, next)
			} else {
				cur.children[seg] = next
			}
			c.modules = append(c.modules, next)
		}
		cur = next
	}
	return cur
}

func (c *checker) findModule(path []string) *module {
	if len(path) == 0 {
		return nil
	}
	m := c.roots[path[0]]
	for _, seg := range path[1:] {
		if m == nil {
			return nil
		}
		m = m.children[seg]
	}
	return m
}

func (c *checker) newDecl(m *module, node *ast.Decl) *decl {
	id := declID(len(c.decls))
	d := &decl{id: id, kind: node.Kind, name: node.Name, mod: m, node: node}
	c.decls = append(c.decls, d)
	return d
}

// declare builds the module tree and registers declaration names.
func (c *checker) declare() {
	modIDs := c.tree.ModuleIDs()
	for _, mid := range modIDs {
		node := c.tree.Module(mid)
		m := c.module(c.tree.ModulePath(mid), node.Span)
		for _, did := range node.Decls {
			c.declareOne(m, c.tree.Decl(did))
		}
	}
	c.declareBuild()
	for _, mid := range modIDs {
		node := c.tree.Module(mid)
		m := c.findModule(c.tree.ModulePath(mid))
		for _, im := range node.Imports {
			target := c.findModule(im.Path)
			if target == nil {
				c.errorf(diag.SemaUnresolvedSymbol, im.Span,
					fmt.Sprintf("unknown module %s", strings.Join(im.Path, "."))).Emit()
				continue
			}
			alias := im.Name()
			if prev, dup := m.imports[alias]; dup && prev != target {
				c.errorf(diag.SemaDuplicateSymbol, im.Span,
					fmt.Sprintf("import name %s already refers to module %s", alias, prev)).Emit()
				continue
			}
			if _, dup := m.imports[alias]; !dup {
				m.imports[alias] = target
				m.importList = append(m.importList, target)
			}
		}
	}
	if len(c.root) == 0 && len(c.rootOrder) > 0 {
		c.root = c.rootOrder[0].path
	}
}

func (c *checker) declareOne(m *module, node *ast.Decl) {
	d := c.newDecl(m, node)
	m.order = append(m.order, d.id)
	switch node.Kind {
	case ast.DeclOperator:
		m.opDecls = append(m.opDecls, d.id)
		return
	case ast.DeclFunc:
		if node.Operator.Symbol != "" {
			// registered in impls once the fixity is validated
			return
		}
	case ast.DeclStruct:
		d.typ = c.types.RegisterStruct(m.path, node.Name, node.Span, node.ABI)
		c.structDecl[d.typ] = d.id
	}
	if node.Name == "" {
		c.errorf(diag.SemaInvalidType, node.Span, fmt.Sprintf("%s declaration without a name", node.Kind)).Emit()
		d.state = stateFailed
		return
	}
	if prev := m.names[node.Name]; len(prev) > 0 {
		first := c.decls[prev[0]]
		if node.Kind != ast.DeclFunc || first.kind != ast.DeclFunc {
			c.errorf(diag.SemaDuplicateSymbol, node.Span, fmt.Sprintf("%s is already declared in %s", node.Name, m)).
				WithNote(first.node.Span, "previous declaration").
				Emit()
			d.state = stateFailed
			return
		}
	}
	m.names[node.Name] = append(m.names[node.Name], d.id)
}

// declareBuild creates the build module holding the target's constants.
func (c *checker) declareBuild() {
	if prev, ok := c.roots["build"]; ok {
		c.errorf(diag.SemaDuplicateSymbol, prev.span, "module name build is reserved for build constants").Emit()
		return
	}
	b := newModule("build", nil)
	b.consts = make(map[string]int64, len(c.arch.Constants))
	for k, v := range c.arch.Constants {
		b.consts[k] = v
	}
	c.build = b
	c.roots[b.name] = b
	c.modules = append(c.modules, b)
}
