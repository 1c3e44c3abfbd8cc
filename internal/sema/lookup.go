package sema

import (
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/source"
)

type symKind uint8

const (
	symLocal symKind = iota + 1
	symDecl          // one non-function declaration
	symFuncs         // overload set
	symModule
	symConst // build constant
)

type symbol struct {
	kind  symKind
	name  string
	local *hir.Var
	decl  *decl
	fns   []callee
	mod   *module
	value int64
}

// callee is one member of an overload set: a user function or a named
// builtin (index into the prelude).
type callee struct {
	decl    *decl
	builtin int
}

type candidate struct {
	decl *decl
	mod  *module
}

// lookup resolves an unqualified name: function scopes first, then each
// module level up the parent chain, then top-level modules, then the
// prelude. At the innermost module level, imported modules' exported names
// are pooled with the module's own.
func (c *checker) lookup(name string, sp source.Span) (symbol, bool) {
	if c.fn != nil {
		if v := c.fn.lookup(name); v != nil {
			return symbol{kind: symLocal, name: name, local: v}, true
		}
	}
	for level := c.cur; level != nil; level = level.parent {
		if cands := c.levelCandidates(level, name, level == c.cur); len(cands) > 0 {
			return c.pick(name, sp, cands)
		}
	}
	if r, ok := c.roots[name]; ok {
		return symbol{kind: symModule, name: name, mod: r}, true
	}
	if idx := c.preludeByName[name]; len(idx) > 0 {
		fns := make([]callee, len(idx))
		for i, x := range idx {
			fns[i] = callee{builtin: x}
		}
		return symbol{kind: symFuncs, name: name, fns: fns}, true
	}
	c.errorf(diag.SemaUnresolvedSymbol, sp, fmt.Sprintf("undefined: %s", name)).Emit()
	return symbol{}, false
}

func (c *checker) levelCandidates(level *module, name string, innermost bool) []candidate {
	var out []candidate
	for _, id := range level.names[name] {
		out = append(out, candidate{decl: c.decls[id]})
	}
	var mods []*module
	if child, ok := level.children[name]; ok {
		mods = append(mods, child)
	}
	if innermost {
		if im, ok := level.imports[name]; ok && (len(mods) == 0 || mods[0] != im) {
			mods = append(mods, im)
		}
		for _, im := range level.importList {
			if im == level {
				continue
			}
			for _, id := range im.names[name] {
				if d := c.decls[id]; d.exported() {
					out = append(out, candidate{decl: d})
				}
			}
		}
	}
	for _, m := range mods {
		out = append(out, candidate{mod: m})
	}
	return out
}

// pick turns candidates into one symbol. Functions pool into an overload
// set; anything else must be unique.
func (c *checker) pick(name string, sp source.Span, cands []candidate) (symbol, bool) {
	if len(cands) == 1 {
		cd := cands[0]
		switch {
		case cd.mod != nil:
			return symbol{kind: symModule, name: name, mod: cd.mod}, true
		case cd.decl.kind == ast.DeclFunc:
			return symbol{kind: symFuncs, name: name, fns: []callee{{decl: cd.decl}}}, true
		default:
			return symbol{kind: symDecl, name: name, decl: cd.decl}, true
		}
	}
	fns := make([]callee, 0, len(cands))
	for _, cd := range cands {
		if cd.decl == nil || cd.decl.kind != ast.DeclFunc {
			fns = nil
			break
		}
		fns = append(fns, callee{decl: cd.decl})
	}
	if fns != nil {
		return symbol{kind: symFuncs, name: name, fns: fns}, true
	}
	b := c.errorf(diag.SemaAmbiguousSymbol, sp, fmt.Sprintf("%s is ambiguous: %d candidates", name, len(cands)))
	for _, cd := range cands {
		if cd.decl != nil {
			b.WithNote(cd.decl.node.Span, "candidate "+cd.decl.label())
		} else {
			b.WithNote(cd.mod.span, "candidate module "+cd.mod.String())
		}
	}
	b.Emit()
	return symbol{}, false
}

// member resolves mod.name. Non-exported declarations are reachable only
// from inside their own module tree.
func (c *checker) member(mod *module, name string, sp source.Span) (symbol, bool) {
	if mod == c.build {
		if v, ok := mod.consts[name]; ok {
			return symbol{kind: symConst, name: name, value: v}, true
		}
		c.errorf(diag.SemaBuildConstant, sp, fmt.Sprintf("unknown build constant %s", name)).Emit()
		return symbol{}, false
	}
	var cands []candidate
	hidden := 0
	for _, id := range mod.names[name] {
		d := c.decls[id]
		if d.exported() || d.mod.encloses(c.cur) {
			cands = append(cands, candidate{decl: d})
		} else {
			hidden++
		}
	}
	if child, ok := mod.children[name]; ok {
		cands = append(cands, candidate{mod: child})
	}
	if len(cands) == 0 {
		if hidden > 0 {
			c.errorf(diag.SemaNotExported, sp, fmt.Sprintf("%s is not exported by module %s", name, mod)).Emit()
		} else {
			c.errorf(diag.SemaNoMember, sp, fmt.Sprintf("module %s has no member %s", mod, name)).Emit()
		}
		return symbol{}, false
	}
	return c.pick(name, sp, cands)
}
