package lower

import (
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/sema"
	"kestrel/internal/ssa"
)

type fixture struct {
	tree *ast.Tree
	main ast.ModuleID
}

func newFixture() *fixture {
	tree := ast.NewTree(ast.Hints{})
	return &fixture{tree: tree, main: tree.NewModule(ast.NoModuleID, "main")}
}

func (f *fixture) fn(m ast.ModuleID, name string, params []ast.Param, ret ast.TypeID, body ...ast.StmtID) {
	f.tree.AddDecl(m, ast.Decl{Kind: ast.DeclFunc, Name: name, Params: params, Ret: ret, Body: body, HasBody: true, Exported: true})
}

func (f *fixture) param(name, typ string) ast.Param {
	return ast.Param{Name: name, Type: f.tree.Named(typ)}
}

func (f *fixture) point() {
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "Point", Exported: true, Fields: []ast.Field{
		{Name: "x", Type: f.tree.Named("int32")},
		{Name: "y", Type: f.tree.Named("int32")},
	}})
}

// lower checks the tree and lowers every module.
func (f *fixture) lower(t *testing.T) map[string]*ssa.Module {
	t.Helper()
	arch := platform.MustParseTarget("x86_64-unknown-linux-gnu")
	bag := diag.NewBag(0)
	prog, ok := sema.Check(f.tree, sema.Options{Arch: arch, Bag: bag})
	if !ok {
		var sb strings.Builder
		for _, d := range bag.Items() {
			sb.WriteString(d.Code.ID() + ": " + d.Message + "\n")
		}
		t.Fatalf("validation failed:\n%s", sb.String())
	}
	out := make(map[string]*ssa.Module)
	for _, m := range New(prog, arch).All() {
		out[m.Name] = m
	}
	return out
}

func funcNamed(t *testing.T, m *ssa.Module, name string) *ssa.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no function %s in:\n%s", name, m)
	return nil
}

func ops(f *ssa.Func) []ssa.Op {
	out := make([]ssa.Op, 0, len(f.Body))
	for _, in := range f.Body {
		out = append(out, in.Op)
	}
	return out
}

// checkTerminators asserts well-formed blocks: every label is entered by a
// terminator, the body ends in one, and no block is an empty hop repeated.
func checkTerminators(t *testing.T, f *ssa.Func) {
	t.Helper()
	body := f.Body
	if len(body) == 0 || !body[len(body)-1].Op.IsTerminator() {
		t.Fatalf("%s does not end in a terminator:\n%v", f.Name, ops(f))
	}
	for i := 1; i < len(body); i++ {
		prev, cur := body[i-1], body[i]
		if cur.Op == ssa.OpLabel && !prev.Op.IsTerminator() {
			t.Fatalf("%s: label %s entered by fallthrough", f.Name, cur.Label)
		}
		if prev.Op == ssa.OpBr && cur.Op == ssa.OpBr && prev.Label == cur.Label {
			t.Fatalf("%s: duplicate branch to %s", f.Name, cur.Label)
		}
		if prev.Op.IsTerminator() && cur.Op != ssa.OpLabel {
			t.Fatalf("%s: instruction after terminator at %d", f.Name, i)
		}
	}
}

func TestFieldOfCallResult(t *testing.T) {
	f := newFixture()
	f.point()
	lit := f.tree.NewExpr(ast.Expr{Kind: ast.ExprStructLit, Type: f.tree.Named("Point"), Fields: []ast.FieldInit{
		{Name: "x", Value: f.tree.Int("1")},
		{Name: "y", Value: f.tree.Int("2")},
	}})
	f.fn(f.main, "get", nil, f.tree.Named("Point"), f.tree.Return(lit))
	f.fn(f.main, "main", nil, f.tree.Named("int32"),
		f.tree.Return(f.tree.Member(f.tree.Call(f.tree.Ident("get")), "y")))

	m := f.lower(t)["main"]
	fn := funcNamed(t, m, "main")
	want := []ssa.Op{ssa.OpCall, ssa.OpStore, ssa.OpFieldAddr, ssa.OpLoad, ssa.OpRet}
	got := ops(fn)
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v, want %v", got, want)
		}
	}
	if len(fn.Prologue) != 1 || fn.Prologue[0].Op != ssa.OpAlloca || fn.Prologue[0].Ty != "%main.Point" {
		t.Fatalf("prologue = %v", fn.Prologue)
	}
	if gep := fn.Body[2]; gep.Index != 4 {
		t.Fatalf("field offset = %d, want 4", gep.Index)
	}
	if fn.Body[3].Ty != "i32" {
		t.Fatalf("load type = %s", fn.Body[3].Ty)
	}
	text := m.String()
	for _, s := range []string{
		"%main.Point = type <{ i32, i32 }>",
		"define %main.Point @main.get() {",
		"ret i32 %r",
	} {
		if !strings.Contains(text, s) {
			t.Fatalf("missing %q in:\n%s", s, text)
		}
	}
}

func TestControlFlowKeepsBlocksWellFormed(t *testing.T) {
	f := newFixture()
	tr := f.tree
	i := tr.Ident("i")
	f.fn(f.main, "count", []ast.Param{f.param("n", "int32")}, tr.Named("int32"),
		tr.Var("i", tr.Named("int32"), tr.Int("0")),
		tr.While(tr.Binary(tr.Ident("i"), "<", tr.Ident("n")),
			tr.If(tr.Binary(tr.Ident("i"), "==", tr.Int("10")), []ast.StmtID{tr.Break()}, nil),
			tr.ExprStmt(tr.Binary(i, "=", tr.Binary(tr.Ident("i"), "+", tr.Int("1"))))),
		tr.If(tr.Binary(tr.Ident("i"), ">", tr.Int("3")),
			[]ast.StmtID{tr.Return(tr.Int("1"))},
			[]ast.StmtID{tr.Return(tr.Int("2"))}))
	f.fn(f.main, "spin", nil, ast.NoTypeID,
		tr.Loop(tr.Goto("out")),
		tr.Label("out"))
	f.fn(f.main, "empty", nil, ast.NoTypeID)

	m := f.lower(t)["main"]
	for _, fn := range m.Funcs {
		checkTerminators(t, fn)
	}
	empty := funcNamed(t, m, "main.empty")
	if len(empty.Body) != 1 || empty.Body[0].Op != ssa.OpRet {
		t.Fatalf("empty body = %v", ops(empty))
	}
	count := funcNamed(t, m, "main.count$i32")
	if last := count.Body[len(count.Body)-1]; last.Op != ssa.OpUnreachable {
		t.Fatalf("count ends in %s", last.Op)
	}
}

func TestStringsArePooledOncePerModule(t *testing.T) {
	f := newFixture()
	cstr := f.tree.PointerTo(f.tree.ConstOf(f.tree.Named("byte")), false)
	f.tree.AddDecl(f.main, ast.Decl{
		Kind:     ast.DeclFunc,
		Name:     "puts",
		Params:   []ast.Param{{Name: "s", Type: cstr}},
		Ret:      f.tree.Named("int32"),
		Extern:   true,
		LinkName: "puts",
	})
	say := func(s string) ast.StmtID {
		return f.tree.ExprStmt(f.tree.Call(f.tree.Ident("puts"), f.tree.Str(s)))
	}
	f.fn(f.main, "greet", nil, ast.NoTypeID, say("hi"), say("yo"), say("hi"))

	m := f.lower(t)["main"]
	if len(m.Globals) != 2 {
		t.Fatalf("globals = %v", m.Globals)
	}
	if m.Globals[0].Name != ".str.0" || m.Globals[1].Name != ".str.1" {
		t.Fatalf("pool order = %s, %s", m.Globals[0].Name, m.Globals[1].Name)
	}
	text := m.String()
	for _, s := range []string{
		"declare i32 @puts(ptr)",
		"@.str.0 = private unnamed_addr constant [3 x i8] c\"\\68\\69\\00\", align 1",
		"call i32 @puts(ptr @.str.0)",
	} {
		if !strings.Contains(text, s) {
			t.Fatalf("missing %q in:\n%s", s, text)
		}
	}
	if strings.Count(text, "declare i32 @puts") != 1 {
		t.Fatalf("puts declared more than once:\n%s", text)
	}
}

func TestLinkNamesAndLinkage(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "g", []ast.Param{f.param("x", "int32")}, f.tree.Named("int32"), f.tree.Return(f.tree.Ident("x")))
	f.fn(f.main, "g", []ast.Param{f.param("x", "int64")}, f.tree.Named("int64"), f.tree.Return(f.tree.Ident("x")))
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclFunc, Name: "private", HasBody: true})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclFunc, Name: "helper", HasBody: true})
	sub := f.tree.NewModule(f.main, "sub")
	f.fn(sub, "use", nil, ast.NoTypeID, f.tree.ExprStmt(f.tree.Call(f.tree.Ident("helper"))))

	mods := f.lower(t)
	m := mods["main"]
	funcNamed(t, m, "main.g$i32")
	funcNamed(t, m, "main.g$i64")
	if !funcNamed(t, m, "main.private").Internal {
		t.Fatalf("unused private function should be internal")
	}
	if funcNamed(t, m, "main.helper").Internal {
		t.Fatalf("helper is used by main.sub and must stay visible")
	}
	if text := mods["main.sub"].String(); !strings.Contains(text, "declare void @main.helper()") {
		t.Fatalf("missing declaration in:\n%s", text)
	}
}

func TestShortCircuitBranches(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "both", []ast.Param{f.param("a", "bool"), f.param("b", "bool")}, f.tree.Named("bool"),
		f.tree.Return(f.tree.Binary(f.tree.Ident("a"), "&&", f.tree.Ident("b"))))

	fn := funcNamed(t, f.lower(t)["main"], "main.both$z$z")
	checkTerminators(t, fn)
	var condBr, loads int
	for _, in := range fn.Body {
		switch in.Op {
		case ssa.OpCondBr:
			condBr++
		case ssa.OpLoad:
			if in.Ty == "i1" {
				loads++
			}
		}
	}
	if condBr != 1 {
		t.Fatalf("expected one conditional branch, got %d:\n%v", condBr, ops(fn))
	}
	// a, b, and the spilled result
	if loads != 3 {
		t.Fatalf("expected 3 bool loads, got %d", loads)
	}
}

func TestArrayPointerToSlice(t *testing.T) {
	f := newFixture()
	tr := f.tree
	arr := ast.Param{Name: "p", Type: tr.PointerTo(tr.ArrayOf("4", tr.Named("int32")), false)}
	f.fn(f.main, "length", []ast.Param{arr}, tr.Named("uint"),
		tr.Var("s", tr.SliceOf(tr.Named("int32")), tr.Ident("p")),
		tr.Return(tr.Member(tr.Ident("s"), "len")))

	text := f.lower(t)["main"].String()
	for _, s := range []string{
		"insertvalue { ptr, i64 } undef, ptr %r",
		", i64 4, 1",
		"getelementptr inbounds i8, ptr %r",
		"load i64, ptr %r",
	} {
		if !strings.Contains(text, s) {
			t.Fatalf("missing %q in:\n%s", s, text)
		}
	}
}

func TestGlobalInitializers(t *testing.T) {
	f := newFixture()
	f.point()
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclGlobal, Name: "limit", Type: f.tree.Named("uint8"), Init: f.tree.Int("255")})
	origin := f.tree.NewExpr(ast.Expr{Kind: ast.ExprStructLit, Type: f.tree.Named("Point"), Fields: []ast.FieldInit{
		{Name: "y", Value: f.tree.Int("3")},
	}})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclGlobal, Name: "origin", Exported: true, Type: f.tree.Named("Point"), Init: origin})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclGlobal, Name: "errno", Type: f.tree.Named("int32"), Extern: true})

	text := f.lower(t)["main"].String()
	for _, s := range []string{
		"@main.limit = internal global i8 -1, align 1",
		"@main.origin = global %main.Point <{ i32 zeroinitializer, i32 3 }>, align 4",
		"@errno = external global i32, align 4",
	} {
		if !strings.Contains(text, s) {
			t.Fatalf("missing %q in:\n%s", s, text)
		}
	}
}

func TestInvalidTreePanics(t *testing.T) {
	arch := platform.MustParseTarget("x86_64-unknown-linux-gnu")
	f := newFixture()
	f.fn(f.main, "ok", nil, ast.NoTypeID)
	prog, ok := sema.Check(f.tree, sema.Options{Arch: arch, Bag: diag.NewBag(0)})
	if !ok {
		t.Fatalf("validation failed")
	}
	fn := prog.Modules[0].Funcs[0]
	fn.Body = append(fn.Body, &hir.Stmt{Kind: hir.StmtBreak, Data: hir.BreakData{}})
	defer func() {
		r := recover()
		err, isErr := r.(error)
		if !isErr || !strings.HasPrefix(err.Error(), "lower: ") {
			t.Fatalf("expected a lowering invariant error, got %v", r)
		}
	}()
	New(prog, arch).All()
}

func funcWithPrefix(t *testing.T, m *ssa.Module, prefix string) *ssa.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if strings.HasPrefix(f.Name, prefix) {
			return f
		}
	}
	t.Fatalf("no function %s* in:\n%s", prefix, m)
	return nil
}

func declared(m *ssa.Module, name string) bool {
	for _, d := range m.Decls {
		if d.Name == name {
			return true
		}
	}
	return false
}

func TestBuiltinsUseIntrinsics(t *testing.T) {
	f := newFixture()
	tr := f.tree
	f.fn(f.main, "bits", []ast.Param{f.param("x", "uint32")}, tr.Named("uint32"),
		tr.Return(tr.Call(tr.Ident("popcount"), tr.Call(tr.Ident("bswap"), tr.Ident("x")))))
	bytePtr := tr.PointerTo(tr.Named("byte"), false)
	constBytePtr := tr.PointerTo(tr.ConstOf(tr.Named("byte")), false)
	f.fn(f.main, "copy", []ast.Param{
		{Name: "dst", Type: bytePtr},
		{Name: "src", Type: constBytePtr},
		f.param("n", "uint"),
	}, ast.NoTypeID,
		tr.ExprStmt(tr.Call(tr.Ident("memcpy"), tr.Ident("dst"), tr.Ident("src"), tr.Ident("n"))))

	m := f.lower(t)["main"]
	for _, name := range []string{"llvm.ctpop.i32", "llvm.bswap.i32", "llvm.memcpy.p0.p0.i64"} {
		if !declared(m, name) {
			t.Fatalf("%s not declared:\n%s", name, m)
		}
	}

	var callees []string
	for _, in := range funcWithPrefix(t, m, "main.bits$").Body {
		if in.Op == ssa.OpCall {
			callees = append(callees, in.Callee)
		}
	}
	if len(callees) != 2 || callees[0] != ssa.GlobalName("llvm.bswap.i32") || callees[1] != ssa.GlobalName("llvm.ctpop.i32") {
		t.Fatalf("unexpected calls %v", callees)
	}

	cp := funcWithPrefix(t, m, "main.copy$")
	checkTerminators(t, cp)
	for _, in := range cp.Body {
		if in.Op != ssa.OpCall {
			continue
		}
		if in.Ty != "void" || len(in.Args) != 4 || in.Args[3].Repr != "false" {
			t.Fatalf("memcpy call = %+v", in)
		}
		return
	}
	t.Fatalf("no memcpy call in:\n%v", ops(cp))
}
