package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kestrel/internal/diag"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.kstree", "b.kstree"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func codeOf(t *testing.T, err error) diag.Code {
	t.Helper()
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *project.Error, got %v", err)
	}
	return pe.Code
}

const sample = `
[package]
name = "app"

[build]
target = "aarch64-unknown-linux-gnu"
output = "out"
jobs = 2

[build.constants]
DEBUG = 1

[inputs]
trees = ["*.kstree"]
`

func TestDiscoverWalksUp(t *testing.T) {
	dir := writeManifest(t, sample)
	sub := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := Discover(sub)
	if err != nil || !ok {
		t.Fatalf("Discover = %v, %v", ok, err)
	}
	if m.Root != dir || m.Config.Package.Name != "app" || !m.Config.Build.Cache {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestResolveFromManifest(t *testing.T) {
	dir := writeManifest(t, sample)
	m, err := Load(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := Resolve(m, Overrides{}, MapEnv{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Arch.PtrSize != 8 || s.Arch.Constants["DEBUG"] != 1 || s.Jobs != 2 {
		t.Fatalf("settings = %+v", s)
	}
	if len(s.Trees) != 2 || filepath.Base(s.Trees[0]) != "a.kstree" {
		t.Fatalf("trees = %v", s.Trees)
	}
	if s.Output != filepath.Join(dir, "out") || s.MaxDiagnostics != defaultMaxDiagnostics {
		t.Fatalf("settings = %+v", s)
	}
}

func TestPrecedenceFlagsOverEnvOverManifest(t *testing.T) {
	dir := writeManifest(t, sample)
	m, err := Load(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	e := MapEnv{EnvTarget: "i686-unknown-linux-gnu", EnvJobs: "7", EnvNoCache: "1", EnvTrace: "phase"}
	s, err := Resolve(m, Overrides{}, e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Arch.PtrSize != 4 || s.Jobs != 7 || s.Cache || s.Trace != "phase" {
		t.Fatalf("env not applied: %+v", s)
	}
	zero := 0
	s, err = Resolve(m, Overrides{Target: "avr", Jobs: 1, MaxDiagnostics: &zero, Constants: map[string]int64{"DEBUG": 0}}, e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Arch.PtrSize != 2 || s.Jobs != 1 || s.MaxDiagnostics != 0 || s.Arch.Constants["DEBUG"] != 0 {
		t.Fatalf("flags not applied: %+v", s)
	}
}

func TestManifestErrors(t *testing.T) {
	cases := []struct {
		body string
		code diag.Code
	}{
		{"[build]\njobs = 1\n", diag.ProjManifest},
		{"[package]\nname = \"\"\n", diag.ProjManifest},
		{"[package]\nname = \"x\"\n[build]\ntypo = 1\n", diag.ProjManifest},
		{"[package]\nname = \"x\"\n[build.constants]\n\"1bad\" = 1\n", diag.ProjBadConstant},
		{"[package\n", diag.ProjManifest},
	}
	for _, c := range cases {
		dir := writeManifest(t, c.body)
		_, err := Load(filepath.Join(dir, ManifestName))
		if err == nil {
			t.Fatalf("expected error for %q", c.body)
		}
		if got := codeOf(t, err); got != c.code {
			t.Fatalf("%q: code %s, want %s", c.body, got.ID(), c.code.ID())
		}
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := Resolve(nil, Overrides{}, MapEnv{}); codeOf(t, err) != diag.ProjNoInputs {
		t.Fatalf("expected no-inputs error, got %v", err)
	}
	_, err := Resolve(nil, Overrides{Target: "z80-none", Trees: []string{"a.kstree"}}, MapEnv{})
	if codeOf(t, err) != diag.ProjUnknownTarget {
		t.Fatalf("expected unknown target, got %v", err)
	}
	dir := writeManifest(t, "[package]\nname = \"x\"\n[inputs]\ntrees = [\"missing.kstree\"]\n")
	m, err := Load(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Resolve(m, Overrides{}, MapEnv{}); codeOf(t, err) != diag.ProjManifest {
		t.Fatalf("expected bad inputs, got %v", err)
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := Sum([]byte("a")), Sum([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("Combine ignores order")
	}
}
