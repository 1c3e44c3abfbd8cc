// Package project reads kestrel.toml and turns it, together with the
// environment, into build settings.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"kestrel/internal/diag"
)

// ManifestName is the file searched for by Find.
const ManifestName = "kestrel.toml"

// Error is a manifest or settings problem, carrying the diagnostic code it
// is reported under.
type Error struct {
	Code diag.Code
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(code diag.Code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Config mirrors kestrel.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Inputs  InputsConfig  `toml:"inputs"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Target         string           `toml:"target"`
	Output         string           `toml:"output"`
	Jobs           int              `toml:"jobs"`
	MaxDiagnostics int              `toml:"max_diagnostics"`
	Cache          bool             `toml:"cache"`
	Constants      map[string]int64 `toml:"constants"`
}

type InputsConfig struct {
	// Trees are paths or glob patterns relative to the manifest.
	Trees []string `toml:"trees"`
}

// Manifest is a decoded kestrel.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir to locate kestrel.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest above startDir. ok is false when
// there is none.
func Discover(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = Load(path)
	return m, true, err
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	cfg := Config{Build: BuildConfig{Cache: true}}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, &Error{Code: diag.ProjManifest, Path: path, Msg: "failed to parse TOML", Err: err}
	}
	if !meta.IsDefined("package") {
		return nil, errorf(diag.ProjManifest, path, "missing [package]")
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, errorf(diag.ProjManifest, path, "missing [package].name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errorf(diag.ProjManifest, path, "unknown key %s", undecoded[0])
	}
	if cfg.Build.Jobs < 0 {
		return nil, errorf(diag.ProjManifest, path, "[build].jobs must not be negative")
	}
	if cfg.Build.MaxDiagnostics < 0 {
		return nil, errorf(diag.ProjManifest, path, "[build].max_diagnostics must not be negative")
	}
	for name := range cfg.Build.Constants {
		if !isIdent(name) {
			return nil, errorf(diag.ProjBadConstant, path, "build constant %q is not an identifier", name)
		}
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
