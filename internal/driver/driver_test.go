package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/platform"
)

var x86 = platform.MustParseTarget("x86_64-unknown-linux-gnu")

func appTree() *ast.Tree {
	t := ast.NewTree(ast.Hints{})
	m := t.NewModule(ast.NoModuleID, "app")
	t.AddImport(m, "", "util")
	call := t.Call(t.Member(t.Ident("util"), "add"), t.Int("1"), t.Int("2"))
	t.AddDecl(m, ast.Decl{Kind: ast.DeclFunc, Name: "main", Exported: true, Ret: t.Named("int32"),
		Body: []ast.StmtID{t.Return(call)}, HasBody: true})
	return t
}

func utilTree() *ast.Tree {
	t := ast.NewTree(ast.Hints{})
	m := t.NewModule(ast.NoModuleID, "util")
	sum := t.Binary(t.Ident("a"), "+", t.Ident("b"))
	t.AddDecl(m, ast.Decl{Kind: ast.DeclFunc, Name: "add", Exported: true,
		Params: []ast.Param{{Name: "a", Type: t.Named("int32")}, {Name: "b", Type: t.Named("int32")}},
		Ret:    t.Named("int32"), Body: []ast.StmtID{t.Return(sum)}, HasBody: true})
	return t
}

func writeTrees(t *testing.T, trees ...*ast.Tree) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(trees))
	for i, tr := range trees {
		paths[i] = filepath.Join(dir, "t"+itoa(i)+".kstree")
		if err := ast.WriteFile(paths[i], tr); err != nil {
			t.Fatalf("write tree: %v", err)
		}
	}
	return paths
}

func moduleText(t *testing.T, res *Result, name string) string {
	t.Helper()
	for _, m := range res.Modules {
		if m.Name == name {
			return m.Text
		}
	}
	t.Fatalf("no module %s among %d outputs", name, len(res.Modules))
	return ""
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestBuildMergesTreesAndLowersEachModule(t *testing.T) {
	sink := &recordingSink{}
	res, err := Build(context.Background(), Options{Trees: writeTrees(t, appTree(), utilTree()), Arch: x86, Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !res.OK() {
		t.Fatalf("diagnostics: %v", res.Bag.Items())
	}
	if len(res.Modules) != 2 || res.Modules[0].Name != "app" || res.Modules[1].Name != "util" {
		t.Fatalf("modules = %+v", res.Modules)
	}
	app := moduleText(t, res, "app")
	for _, s := range []string{"define i32 @main() {", "declare i32 @util.add$i32$i32(i32, i32)"} {
		if !strings.Contains(app, s) {
			t.Fatalf("missing %q in:\n%s", s, app)
		}
	}
	if !strings.Contains(moduleText(t, res, "util"), "define i32 @util.add$i32$i32(i32 %") {
		t.Fatalf("util does not define add:\n%s", moduleText(t, res, "util"))
	}
	var lowered int
	for _, ev := range sink.events {
		if ev.Stage == StageEmit && ev.Status == StatusDone && ev.File != "" {
			lowered++
		}
	}
	if lowered != 2 {
		t.Fatalf("expected 2 module completions, got %+v", sink.events)
	}
	if len(res.Timings.Phases) < 3 {
		t.Fatalf("timings = %+v", res.Timings)
	}
}

func TestCheckOnlySkipsLowering(t *testing.T) {
	tr := appTree()
	tr.Append(utilTree())
	res, err := Build(context.Background(), Options{Tree: tr, Arch: x86, CheckOnly: true})
	if err != nil || !res.OK() {
		t.Fatalf("check: %v %v", err, res.Bag.Items())
	}
	if len(res.Modules) != 0 {
		t.Fatalf("check produced %d modules", len(res.Modules))
	}
	if res.Program == nil {
		t.Fatalf("check kept no program")
	}
	var sb strings.Builder
	if err := hir.Dump(&sb, res.Program); err != nil {
		t.Fatalf("dump: %v", err)
	}
	for _, want := range []string{"module app", "module util"} {
		if !strings.Contains(sb.String(), want) {
			t.Fatalf("dump lacks %q:\n%s", want, sb.String())
		}
	}
}

func TestValidationErrorsStopTheBuild(t *testing.T) {
	// util is missing, so util.add does not resolve
	res, err := Build(context.Background(), Options{Tree: appTree(), Arch: x86})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.OK() || len(res.Modules) != 0 {
		t.Fatalf("expected a failed build without output")
	}
}

func TestUnreadableTreeIsADiagnostic(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.kstree")
	if err := os.WriteFile(bad, []byte("not msgpack"), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := Build(context.Background(), Options{Trees: []string{bad, filepath.Join(dir, "missing.kstree")}, Arch: x86})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	codes := map[diag.Code]bool{}
	for _, d := range res.Bag.Items() {
		codes[d.Code] = true
	}
	if !codes[diag.IODecode] || !codes[diag.IOLoadFailed] {
		t.Fatalf("diagnostics = %v", res.Bag.Items())
	}
}

func TestCacheHitSkipsValidation(t *testing.T) {
	cache, err := OpenDiskCache("kestrel", t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := Options{Trees: writeTrees(t, appTree(), utilTree()), Arch: x86, Cache: cache}
	first, err := Build(context.Background(), opts)
	if err != nil || !first.OK() || first.Cached {
		t.Fatalf("first build: %v cached=%v", err, first.Cached)
	}
	second, err := Build(context.Background(), opts)
	if err != nil || !second.Cached {
		t.Fatalf("second build: %v cached=%v", err, second.Cached)
	}
	if moduleText(t, second, "app") != moduleText(t, first, "app") {
		t.Fatalf("cached text differs")
	}

	other := opts
	other.Arch = platform.MustParseTarget("i686-unknown-linux-gnu")
	third, err := Build(context.Background(), other)
	if err != nil || third.Cached {
		t.Fatalf("another target must miss: %v cached=%v", err, third.Cached)
	}
}

func TestCacheKeyCoversConstants(t *testing.T) {
	trees := [][]byte{[]byte("a")}
	a := CacheKey(x86.WithConstants(map[string]int64{"DEBUG": 0}), nil, trees)
	b := CacheKey(x86.WithConstants(map[string]int64{"DEBUG": 1}), nil, trees)
	if a == b {
		t.Fatalf("constants do not change the key")
	}
	if a != CacheKey(x86.WithConstants(map[string]int64{"DEBUG": 0}), nil, trees) {
		t.Fatalf("key is not deterministic")
	}
}

func TestWriteOutputs(t *testing.T) {
	res := &Result{Modules: []Output{{Name: "app.io", Text: "; io\n"}}}
	paths, err := res.WriteOutputs(t.TempDir())
	if err != nil || len(paths) != 1 || filepath.Base(paths[0]) != "app_io.ll" {
		t.Fatalf("WriteOutputs = %v, %v", paths, err)
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("lower: bad tree")
	err := error(newInternalError("lower", "app", cause))
	var ie *InternalError
	if !errors.As(err, &ie) || !errors.Is(err, cause) {
		t.Fatalf("unexpected wrapping: %v", err)
	}
	if !strings.Contains(err.Error(), "lower of app") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestNoInputs(t *testing.T) {
	if _, err := Build(context.Background(), Options{Arch: x86}); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}
