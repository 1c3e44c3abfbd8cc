package sema

import (
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

func TestAliasCycleIsReportedOnce(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclAlias, Name: "A", Type: f.tree.Named("B")})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclAlias, Name: "B", Type: f.tree.Named("A")})

	_, bag := f.check(t)
	d := expectCode(t, bag, diag.SemaCyclicDependency)
	if d.Message != "cyclic dependency: main.A -> main.B -> main.A" {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if n := bag.ErrorCount(); n != 1 {
		t.Fatalf("expected exactly one error, got %d:\n%s", n, dump(bag))
	}
}

func TestStructContainingItselfIsCyclic(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "S", Fields: []ast.Field{
		{Name: "next", Type: f.tree.Named("S")},
	}})

	_, bag := f.check(t)
	d := expectCode(t, bag, diag.SemaCyclicDependency)
	if d.Message != "cyclic dependency: main.S -> main.S" {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestStructThroughPointerIsFine(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "Node", Fields: []ast.Field{
		{Name: "value", Type: f.tree.Named("int32")},
		{Name: "next", Type: f.tree.PointerTo(f.tree.Named("Node"), true)},
	}})
	_, bag := f.check(t)
	expectClean(t, bag)
}

func TestDeclarationOrderDoesNotMatter(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "use", nil, f.tree.Named("Pair"),
		f.tree.Return(f.tree.Ident("origin")))
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclGlobal, Name: "origin", Type: f.tree.Named("Pair")})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclAlias, Name: "Pair", Type: f.tree.Named("P")})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "P", Fields: []ast.Field{
		{Name: "x", Type: f.tree.Named("int32")},
	}})
	_, bag := f.check(t)
	expectClean(t, bag)
}

func TestLiteralRange(t *testing.T) {
	f := newFixture()
	int8T := f.tree.Named("int8")
	f.fn(f.main, "ok", nil, ast.NoTypeID,
		f.tree.Var("lo", int8T, f.tree.Unary("-", f.tree.Int("128"), "")),
		f.tree.Var("hi", int8T, f.tree.Int("127")))
	_, bag := f.check(t)
	expectClean(t, bag)

	f = newFixture()
	f.fn(f.main, "bad", nil, ast.NoTypeID,
		f.tree.Var("x", f.tree.Named("int8"), f.tree.Int("300")))
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaLiteralOutOfRange)
}

func TestDefaultLiteralTypeIsChecked(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "f", nil, ast.NoTypeID,
		f.tree.Var("x", ast.NoTypeID, f.tree.Int("100000000000000000000")))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaLiteralOutOfRange)
}

func TestOverloadPrefersExpectedResult(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "g", []ast.Param{f.param("x", "int32")}, f.tree.Named("int32"),
		f.tree.Return(f.tree.Ident("x")))
	f.fn(f.main, "g", []ast.Param{f.param("x", "int64")}, f.tree.Named("int64"),
		f.tree.Return(f.tree.Ident("x")))
	f.fn(f.main, "use", nil, ast.NoTypeID,
		f.tree.Var("a", f.tree.Named("int64"), f.tree.Call(f.tree.Ident("g"), f.tree.Int("1"))))

	prog, bag := f.check(t)
	expectClean(t, bag)
	use := findFunc(prog, "main.use")
	init := use.Body[0].Data.(hir.VarData).Init
	call, ok := init.Data.(hir.CallData)
	if !ok {
		t.Fatalf("expected a call, got %s", init.Kind)
	}
	if got := prog.Types.TypeString(call.Func.Params[0].Type); got != "int64" {
		t.Fatalf("picked overload taking %s", got)
	}
	if got := prog.Types.TypeString(call.Args[0].Type); got != "int64" {
		t.Fatalf("literal argument has type %s", got)
	}
}

func TestOverloadTieIsAmbiguous(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "h", []ast.Param{f.param("x", "int16")}, ast.NoTypeID)
	f.fn(f.main, "h", []ast.Param{f.param("x", "int32")}, ast.NoTypeID)
	f.fn(f.main, "use", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("h"), f.tree.Int("1"))))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaAmbiguousOverload)
}

func TestSingleCandidateReportsArgument(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "k", []ast.Param{f.param("x", "bool")}, ast.NoTypeID)
	f.fn(f.main, "use", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("k"), f.tree.Int("1"))),
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("k"))))
	_, bag := f.check(t)
	d := expectCode(t, bag, diag.SemaArgTypeMismatch)
	if d.Message != "cannot use int as bool in argument 1 of k" {
		t.Fatalf("unexpected message %q", d.Message)
	}
	expectCode(t, bag, diag.SemaArgCountMismatch)
}

func TestMissingReturn(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "f", nil, f.tree.Named("int32"))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaMissingReturn)

	f = newFixture()
	f.fn(f.main, "spin", nil, f.tree.Named("int32"), f.tree.Loop())
	f.fn(f.main, "branch", []ast.Param{f.param("c", "bool")}, f.tree.Named("int32"),
		f.tree.If(f.tree.Ident("c"),
			[]ast.StmtID{f.tree.Return(f.tree.Int("1"))},
			[]ast.StmtID{f.tree.Return(f.tree.Int("2"))}))
	_, bag = f.check(t)
	expectClean(t, bag)
}

func TestLoopWithBreakCompletes(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "f", nil, f.tree.Named("int32"), f.tree.Loop(f.tree.Break()))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaMissingReturn)
}

func TestLabels(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "fwd", nil, ast.NoTypeID,
		f.tree.Goto("end"),
		f.tree.Block(f.tree.Label("end")))
	_, bag := f.check(t)
	expectClean(t, bag)

	f = newFixture()
	f.fn(f.main, "f", nil, ast.NoTypeID, f.tree.Goto("nowhere"))
	f.fn(f.main, "g", nil, ast.NoTypeID, f.tree.Label("l"), f.tree.Label("l"))
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaUnknownLabel)
	expectCode(t, bag, diag.SemaDuplicateLabel)
}

func TestBreakOutsideLoop(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "f", nil, ast.NoTypeID, f.tree.Break())
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaBreakOutsideLoop)
}

func pointStruct(f *fixture) {
	i32 := f.tree.Named("int32")
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "P", Fields: []ast.Field{
		{Name: "x", Type: i32},
		{Name: "y", Type: i32},
	}})
	lit := f.tree.NewExpr(ast.Expr{Kind: ast.ExprStructLit, Type: f.tree.Named("P"), Fields: []ast.FieldInit{
		{Name: "x", Value: f.tree.Int("1")},
		{Name: "y", Value: f.tree.Int("2")},
	}})
	f.fn(f.main, "mk", nil, f.tree.Named("P"), f.tree.Return(lit))
}

func TestFieldOfTemporaryIsMaterialized(t *testing.T) {
	f := newFixture()
	pointStruct(f)
	mkY := f.tree.Member(f.tree.Call(f.tree.Ident("mk")), "y")
	f.fn(f.main, "get", nil, f.tree.Named("int32"), f.tree.Return(mkY))

	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.get").Body[0].Data.(hir.ReturnData).Value
	conv, ok := ret.Data.(hir.ConvertData)
	if !ok || conv.Conv != hir.ConvLValueToRValue {
		t.Fatalf("expected a load, got %s", ret.Kind)
	}
	field := conv.X.Data.(hir.FieldData)
	if field.Index != 1 || field.X.Kind != hir.ExprMaterialize {
		t.Fatalf("expected field 1 of a materialized value, got %d of %s", field.Index, field.X.Kind)
	}
}

func TestTemporaryIsNotAssignable(t *testing.T) {
	f := newFixture()
	pointStruct(f)
	member := func() ast.ExprID { return f.tree.Member(f.tree.Call(f.tree.Ident("mk")), "y") }
	f.fn(f.main, "bad", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Binary(member(), "=", f.tree.Int("3"))),
		f.tree.ExprStmt(f.tree.Unary("&", member(), "")))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaNotAnLValue)
	expectCode(t, bag, diag.SemaInvalidAddressOf)
}

func TestStructLiteralErrors(t *testing.T) {
	f := newFixture()
	pointStruct(f)
	lit := f.tree.NewExpr(ast.Expr{Kind: ast.ExprStructLit, Type: f.tree.Named("P"), Fields: []ast.FieldInit{
		{Name: "x", Value: f.tree.Int("1")},
		{Name: "x", Value: f.tree.Int("2")},
		{Name: "z", Value: f.tree.Int("3")},
	}})
	f.fn(f.main, "bad", nil, ast.NoTypeID, f.tree.Var("p", ast.NoTypeID, lit))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaInvalidStructLiteral)
	expectCode(t, bag, diag.SemaUnknownField)
}

func TestNotExportedAcrossModules(t *testing.T) {
	f := newFixture()
	lib := f.tree.NewModule(ast.NoModuleID, "lib")
	f.tree.AddDecl(lib, ast.Decl{Kind: ast.DeclFunc, Name: "secret", HasBody: true})
	f.tree.AddDecl(lib, ast.Decl{Kind: ast.DeclFunc, Name: "open", HasBody: true, Exported: true})
	f.tree.AddImport(f.main, "", "lib")
	f.fn(f.main, "use", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Member(f.tree.Ident("lib"), "open"))),
		f.tree.ExprStmt(f.tree.Call(f.tree.Member(f.tree.Ident("lib"), "secret"))))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaNotExported)
	if n := bag.ErrorCount(); n != 1 {
		t.Fatalf("expected one error, got:\n%s", dump(bag))
	}
}

func TestChildModuleSeesParentPrivates(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclFunc, Name: "helper", HasBody: true})
	sub := f.tree.NewModule(f.main, "sub")
	f.fn(sub, "use", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("helper"))),
		f.tree.ExprStmt(f.tree.Call(f.tree.Member(f.tree.Ident("main"), "helper"))))
	_, bag := f.check(t)
	expectClean(t, bag)
}

func TestAssignThroughConst(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{
		Kind: ast.DeclGlobal,
		Name: "limit",
		Type: f.tree.ConstOf(f.tree.Named("int32")),
		Init: f.tree.Int("1"),
	})
	f.fn(f.main, "f", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Binary(f.tree.Ident("limit"), "=", f.tree.Int("2"))))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaAssignToConst)
}

func TestGlobalInitializerMustBeConstant(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "seven", nil, f.tree.Named("int32"), f.tree.Return(f.tree.Int("7")))
	f.tree.AddDecl(f.main, ast.Decl{
		Kind: ast.DeclGlobal,
		Name: "g",
		Init: f.tree.Call(f.tree.Ident("seven")),
	})
	f.tree.AddDecl(f.main, ast.Decl{
		Kind: ast.DeclGlobal,
		Name: "folded",
		Type: f.tree.Named("uint8"),
		Init: f.tree.Binary(f.tree.Int("200"), "+", f.tree.Int("55")),
	})
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaNonConstantInitializer)
	if n := bag.ErrorCount(); n != 1 {
		t.Fatalf("expected one error, got:\n%s", dump(bag))
	}
}

func TestBuildConstants(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "debug", nil, f.tree.Named("int64"),
		f.tree.Return(f.tree.Member(f.tree.Ident("build"), "DEBUG")))
	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.debug").Body[0].Data.(hir.ReturnData).Value
	if lit, ok := ret.Data.(hir.IntLitData); !ok || lit.Value.Int64() != 1 {
		t.Fatalf("expected constant 1, got %s", ret.Kind)
	}

	f = newFixture()
	f.fn(f.main, "nope", nil, f.tree.Named("int64"),
		f.tree.Return(f.tree.Member(f.tree.Ident("build"), "NOPE")))
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaBuildConstant)
}

func TestUserOperator(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{
		Kind:       ast.DeclOperator,
		Operator:   ast.OperatorRef{Symbol: "<>", Fixity: "infix"},
		Precedence: 500,
		Assoc:      "left",
	})
	f.tree.AddDecl(f.main, ast.Decl{Kind: ast.DeclStruct, Name: "V", Fields: []ast.Field{
		{Name: "n", Type: f.tree.Named("int32")},
	}})
	f.tree.AddDecl(f.main, ast.Decl{
		Kind:     ast.DeclFunc,
		Name:     "combine",
		Params:   []ast.Param{f.param("a", "V"), f.param("b", "V")},
		Ret:      f.tree.Named("V"),
		Body:     []ast.StmtID{f.tree.Return(f.tree.Ident("a"))},
		HasBody:  true,
		Operator: ast.OperatorRef{Symbol: "<>", Fixity: "infix"},
	})
	f.fn(f.main, "use", []ast.Param{f.param("a", "V"), f.param("b", "V")}, f.tree.Named("V"),
		f.tree.Return(f.tree.Binary(f.tree.Ident("a"), "<>", f.tree.Ident("b"))))

	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.use").Body[0].Data.(hir.ReturnData).Value
	call, ok := ret.Data.(hir.CallData)
	if !ok || call.Func.Name != "combine" {
		t.Fatalf("expected a call to combine, got %s", ret.Kind)
	}
}

func TestMixedAssociativity(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{
		Kind:       ast.DeclOperator,
		Operator:   ast.OperatorRef{Symbol: "<+", Fixity: "infix"},
		Precedence: 800,
		Assoc:      "right",
	})
	seq := f.tree.Seq([]ast.ExprID{f.tree.Int("1"), f.tree.Int("2"), f.tree.Int("3")}, "+", "<+")
	f.fn(f.main, "f", nil, ast.NoTypeID, f.tree.ExprStmt(seq))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaMixedAssociativity)
}

func TestBadPrecedence(t *testing.T) {
	f := newFixture()
	f.tree.AddDecl(f.main, ast.Decl{
		Kind:       ast.DeclOperator,
		Operator:   ast.OperatorRef{Symbol: "%%", Fixity: "infix"},
		Precedence: 5000,
	})
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaBadPrecedence)
}

func TestPrecedenceShapesTree(t *testing.T) {
	f := newFixture()
	seq := f.tree.Seq([]ast.ExprID{f.tree.Int("1"), f.tree.Int("2"), f.tree.Int("3")}, "+", "*")
	f.fn(f.main, "f", nil, f.tree.Named("int32"), f.tree.Return(seq))
	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.f").Body[0].Data.(hir.ReturnData).Value
	add := ret.Data.(hir.BuiltinData)
	if add.Args[1].Kind != hir.ExprBuiltin {
		t.Fatalf("expected 1 + (2 * 3), right operand is %s", add.Args[1].Kind)
	}
	if got := prog.Types.TypeString(ret.Type); got != "int32" {
		t.Fatalf("expected int32 arithmetic, got %s", got)
	}
}

func TestConditionMustBeBool(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "f", nil, ast.NoTypeID, f.tree.If(f.tree.Int("1"), nil, nil))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaConditionNotBool)
}

func TestPointerComparisonWithNull(t *testing.T) {
	f := newFixture()
	ptr := ast.Param{Name: "p", Type: f.tree.PointerTo(f.tree.Named("int32"), false)}
	f.fn(f.main, "isNull", []ast.Param{ptr}, f.tree.Named("bool"),
		f.tree.Return(f.tree.Binary(f.tree.Ident("p"), "==", f.tree.Null())))
	_, bag := f.check(t)
	expectClean(t, bag)
}

func TestNullableDereferenceIsRejected(t *testing.T) {
	f := newFixture()
	ptr := ast.Param{Name: "p", Type: f.tree.PointerTo(f.tree.Named("int32"), true)}
	f.fn(f.main, "load", []ast.Param{ptr}, f.tree.Named("int32"),
		f.tree.Return(f.tree.Unary("*", f.tree.Ident("p"), "")))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaInvalidDereference)
}

func TestStringLiteralConvertsToBytePointer(t *testing.T) {
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
	f.fn(f.main, "hello", nil, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("puts"), f.tree.Str("hi"))))
	prog, bag := f.check(t)
	expectClean(t, bag)
	call := findFunc(prog, "main.hello").Body[0].Data.(hir.ExprStmtData).X.Data.(hir.CallData)
	conv, ok := call.Args[0].Data.(hir.ConvertData)
	if !ok || conv.Conv != hir.ConvArrayPointerToPointer {
		t.Fatalf("expected an array-pointer decay, got %s", call.Args[0].Kind)
	}
}

func TestCasts(t *testing.T) {
	f := newFixture()
	x := ast.Param{Name: "x", Type: f.tree.Named("int32")}
	f.fn(f.main, "widen", []ast.Param{x}, f.tree.Named("int64"),
		f.tree.Return(f.tree.CastTo(ast.CastWidth, f.tree.Named("int64"), f.tree.Ident("x"))))
	f.fn(f.main, "bad", []ast.Param{x}, f.tree.Named("uint64"),
		f.tree.Return(f.tree.CastTo(ast.CastSign, f.tree.Named("uint64"), f.tree.Ident("x"))))
	prog, bag := f.check(t)
	expectCode(t, bag, diag.SemaInvalidCast)
	ret := findFunc(prog, "main.widen").Body[0].Data.(hir.ReturnData).Value
	if c := ret.Data.(hir.CastData); c.Op != hir.CastSExt {
		t.Fatalf("expected sext, got %s", c.Op)
	}
}

func TestIndexing(t *testing.T) {
	f := newFixture()
	i32 := f.tree.Named("int32")
	arr := ast.Param{Name: "a", Type: f.tree.ArrayOf("4", i32)}
	f.fn(f.main, "at", []ast.Param{arr, f.param("i", "int32")}, i32,
		f.tree.Return(f.tree.IndexOf(f.tree.Ident("a"), f.tree.Ident("i"))))
	_, bag := f.check(t)
	expectClean(t, bag)

	f = newFixture()
	i32 = f.tree.Named("int32")
	arr = ast.Param{Name: "a", Type: f.tree.ArrayOf("4", i32)}
	f.fn(f.main, "f", []ast.Param{arr}, i32,
		f.tree.Return(f.tree.IndexOf(f.tree.Ident("a"), f.tree.Bool(true))))
	f.fn(f.main, "g", []ast.Param{f.param("n", "int32")}, i32,
		f.tree.Return(f.tree.IndexOf(f.tree.Ident("n"), f.tree.Int("0"))))
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaIndexNotInteger)
	expectCode(t, bag, diag.SemaNotIndexable)
}

func TestContinue(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "spin", nil, ast.NoTypeID, f.tree.While(f.tree.Bool(true), f.tree.Continue()))
	_, bag := f.check(t)
	expectClean(t, bag)

	f = newFixture()
	f.fn(f.main, "f", nil, ast.NoTypeID, f.tree.Continue())
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaBreakOutsideLoop)
}

func TestAssignmentNeedsIdenticalTypes(t *testing.T) {
	f := newFixture()
	tr := f.tree
	f.fn(f.main, "f", []ast.Param{f.param("a", "int8")}, ast.NoTypeID,
		tr.Var("b", tr.Named("int32"), tr.Int("0")),
		tr.ExprStmt(tr.Binary(tr.Ident("b"), "=", tr.Ident("a"))))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaTypeMismatch)

	f = newFixture()
	tr = f.tree
	f.fn(f.main, "f", []ast.Param{f.param("a", "int8")}, ast.NoTypeID,
		tr.Var("b", tr.Named("int8"), tr.Int("0")),
		tr.ExprStmt(tr.Binary(tr.Ident("b"), "=", tr.Ident("a"))),
		tr.ExprStmt(tr.Binary(tr.Ident("b"), "=", tr.Int("5"))))
	_, bag = f.check(t)
	expectClean(t, bag)
}

func TestBinaryOperandsMustMatch(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "sum", []ast.Param{f.param("a", "int8"), f.param("b", "int32")}, f.tree.Named("int32"),
		f.tree.Return(f.tree.Binary(f.tree.Ident("a"), "+", f.tree.Ident("b"))))
	_, bag := f.check(t)
	expectCode(t, bag, diag.SemaNoMatchingOverload)

	// literals still adapt to the other operand
	f = newFixture()
	f.fn(f.main, "inc", []ast.Param{f.param("a", "int8")}, f.tree.Named("int8"),
		f.tree.Return(f.tree.Binary(f.tree.Ident("a"), "+", f.tree.Int("1"))))
	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.inc").Body[0].Data.(hir.ReturnData).Value
	if ret.Kind != hir.ExprBuiltin || ret.Type != prog.Types.Builtin(types.Int8) {
		t.Fatalf("a + 1 = %s of %s", ret.Kind, prog.Types.TypeString(ret.Type))
	}
}

func TestCallArgumentsStillWiden(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "take", []ast.Param{f.param("x", "int32")}, ast.NoTypeID)
	f.fn(f.main, "f", []ast.Param{f.param("a", "int8")}, ast.NoTypeID,
		f.tree.ExprStmt(f.tree.Call(f.tree.Ident("take"), f.tree.Ident("a"))))
	_, bag := f.check(t)
	expectClean(t, bag)
}

func TestPointerCasts(t *testing.T) {
	f := newFixture()
	tr := f.tree
	i32 := tr.Named("int32")
	f.fn(f.main, "strip", []ast.Param{{Name: "p", Type: tr.PointerTo(tr.ConstOf(i32), true)}}, tr.PointerTo(i32, false),
		tr.Return(tr.CastTo(ast.CastPointer, tr.PointerTo(i32, false), tr.Ident("p"))))
	f.fn(f.main, "addr", []ast.Param{{Name: "p", Type: tr.PointerTo(i32, false)}}, tr.Named("uint"),
		tr.Return(tr.CastTo(ast.CastPointer, tr.Named("uint"), tr.Ident("p"))))
	prog, bag := f.check(t)
	expectClean(t, bag)
	ret := findFunc(prog, "main.addr").Body[0].Data.(hir.ReturnData).Value
	if c := ret.Data.(hir.CastData); c.Op != hir.CastPtrToInt {
		t.Fatalf("expected ptrtoint, got %s", c.Op)
	}

	f = newFixture()
	tr = f.tree
	f.fn(f.main, "pun", []ast.Param{{Name: "p", Type: tr.PointerTo(tr.Named("int32"), false)}}, tr.PointerTo(tr.Named("float32"), false),
		tr.Return(tr.CastTo(ast.CastPointer, tr.PointerTo(tr.Named("float32"), false), tr.Ident("p"))))
	_, bag = f.check(t)
	expectCode(t, bag, diag.SemaInvalidCast)
}

func TestPassesAreTraced(t *testing.T) {
	f := newFixture()
	f.fn(f.main, "tick", nil, ast.NoTypeID)
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	bag := diag.NewBag(0)
	_, ok := Check(f.tree, Options{
		Arch:   platform.MustParseTarget("x86_64-unknown-linux-gnu"),
		Bag:    bag,
		Tracer: ring,
		Parent: 7,
	})
	if !ok {
		t.Fatalf("unexpected diagnostics:\n%s", dump(bag))
	}

	parents := make(map[string]uint64)
	ids := make(map[string]uint64)
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			parents[ev.Name] = ev.ParentID
			ids[ev.Name] = ev.SpanID
		}
	}
	for _, name := range []string{"declare", "resolve", "bodies"} {
		if p, ok := parents[name]; !ok || p != 7 {
			t.Fatalf("pass %s: parent %d, present %v", name, p, ok)
		}
	}
	if p, ok := parents["main.tick"]; !ok || p != ids["bodies"] {
		t.Fatalf("body span not under bodies pass: %v", parents)
	}
}
