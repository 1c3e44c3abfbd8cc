package ast

import (
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/source"
)

// Attach registers the tree's files in fs and rewrites every span from a
// tree-local file index to the FileSet's FileID. Call once per tree.
func (t *Tree) Attach(fs *source.FileSet) {
	ids := make([]source.FileID, len(t.Files)+1)
	for i, f := range t.Files {
		ids[i+1] = fs.Add(f.Path, f.Content)
	}
	t.walkSpans(func(sp *source.Span) {
		if int(sp.File) < len(ids) {
			sp.File = ids[sp.File]
		} else {
			sp.File = source.NoFileID
		}
	})
}

// Append moves every node of src into t, renumbering IDs. src must not be
// used afterwards. Spans are copied as is, so both trees should already be
// attached to the same FileSet.
func (t *Tree) Append(src *Tree) {
	modOff := t.Modules.Len()
	declOff := t.Decls.Len()
	stmtOff := t.Stmts.Len()
	exprOff := t.Exprs.Len()
	typeOff := t.Types.Len()

	mod := func(id ModuleID) ModuleID {
		if !id.IsValid() {
			return id
		}
		return ModuleID(uint32(id) + modOff)
	}
	decl := func(id DeclID) DeclID {
		if !id.IsValid() {
			return id
		}
		return DeclID(uint32(id) + declOff)
	}
	stmt := func(id StmtID) StmtID {
		if !id.IsValid() {
			return id
		}
		return StmtID(uint32(id) + stmtOff)
	}
	expr := func(id ExprID) ExprID {
		if !id.IsValid() {
			return id
		}
		return ExprID(uint32(id) + exprOff)
	}
	typ := func(id TypeID) TypeID {
		if !id.IsValid() {
			return id
		}
		return TypeID(uint32(id) + typeOff)
	}
	stmts := func(ids []StmtID) []StmtID {
		out := make([]StmtID, len(ids))
		for i, id := range ids {
			out[i] = stmt(id)
		}
		return out
	}

	for _, m := range src.Modules.Slice() {
		m.Parent = mod(m.Parent)
		ds := make([]DeclID, len(m.Decls))
		for i, d := range m.Decls {
			ds[i] = decl(d)
		}
		m.Decls = ds
		t.Modules.Allocate(m)
	}
	for _, d := range src.Decls.Slice() {
		ps := make([]Param, len(d.Params))
		for i, p := range d.Params {
			p.Type = typ(p.Type)
			ps[i] = p
		}
		d.Params = ps
		fs := make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			f.Type = typ(f.Type)
			fs[i] = f
		}
		d.Fields = fs
		d.Ret = typ(d.Ret)
		d.Body = stmts(d.Body)
		d.Type = typ(d.Type)
		d.Init = expr(d.Init)
		t.Decls.Allocate(d)
	}
	for _, s := range src.Stmts.Slice() {
		s.Type = typ(s.Type)
		s.X = expr(s.X)
		s.Body = stmts(s.Body)
		s.Else = stmts(s.Else)
		t.Stmts.Allocate(s)
	}
	for _, e := range src.Exprs.Slice() {
		e.X = expr(e.X)
		e.Index = expr(e.Index)
		e.Type = typ(e.Type)
		args := make([]ExprID, len(e.Args))
		for i, a := range e.Args {
			args[i] = expr(a)
		}
		e.Args = args
		fields := make([]FieldInit, len(e.Fields))
		for i, f := range e.Fields {
			f.Value = expr(f.Value)
			fields[i] = f
		}
		e.Fields = fields
		terms := make([]Term, len(e.Terms))
		for i, tm := range e.Terms {
			tm.Operand = expr(tm.Operand)
			terms[i] = tm
		}
		e.Terms = terms
		t.Exprs.Allocate(e)
	}
	for _, te := range src.Types.Slice() {
		te.Elem = typ(te.Elem)
		te.Len = expr(te.Len)
		te.Ret = typ(te.Ret)
		elems := make([]TypeID, len(te.Elems))
		for i, el := range te.Elems {
			elems[i] = typ(el)
		}
		te.Elems = elems
		t.Types.Allocate(te)
	}
	t.Files = append(t.Files, src.Files...)
}

func (t *Tree) walkSpans(fn func(*source.Span)) {
	for i := range t.Modules.Slice() {
		m := &t.Modules.Slice()[i]
		fn(&m.Span)
		for j := range m.Imports {
			fn(&m.Imports[j].Span)
		}
	}
	for i := range t.Decls.Slice() {
		d := &t.Decls.Slice()[i]
		fn(&d.Span)
		for j := range d.Params {
			fn(&d.Params[j].Span)
		}
		for j := range d.Fields {
			fn(&d.Fields[j].Span)
		}
	}
	for i := range t.Stmts.Slice() {
		fn(&t.Stmts.Slice()[i].Span)
	}
	for i := range t.Exprs.Slice() {
		e := &t.Exprs.Slice()[i]
		fn(&e.Span)
		for j := range e.Fields {
			fn(&e.Fields[j].Span)
		}
		for j := range e.Terms {
			fn(&e.Terms[j].Prefix.Span)
			fn(&e.Terms[j].Postfix.Span)
		}
		for j := range e.Ops {
			fn(&e.Ops[j].Span)
		}
	}
	for i := range t.Types.Slice() {
		fn(&t.Types.Slice()[i].Span)
	}
}

// FileIndex converts a position in Files to the span file number used
// inside an unattached tree.
func FileIndex(i int) source.FileID {
	n, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("file index overflow: %w", err))
	}
	return source.FileID(n)
}
