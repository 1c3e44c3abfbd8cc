package project

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"kestrel/internal/diag"
	"kestrel/internal/platform"
)

// Overrides come from the command line; zero values mean "not given".
type Overrides struct {
	Target         string
	Output         string
	Jobs           int
	MaxDiagnostics *int
	NoCache        bool
	Trace          string
	Trees          []string
	Constants      map[string]int64
}

// Settings is the resolved configuration of one build.
type Settings struct {
	Name           string
	Arch           platform.Arch
	Output         string
	Jobs           int
	MaxDiagnostics int
	Cache          bool
	CacheDir       string // empty = default location
	Trace          string // trace level name
	Trees          []string
}

const defaultMaxDiagnostics = 100

// Resolve merges command-line overrides, environment and manifest, in that
// order of precedence. m may be nil when no manifest was found.
func Resolve(m *Manifest, o Overrides, e Environment) (Settings, error) {
	if e == nil {
		e = Process
	}
	s := Settings{
		Name:           "main",
		Output:         "build",
		MaxDiagnostics: defaultMaxDiagnostics,
		Cache:          true,
	}
	target := ""
	constants := map[string]int64{}
	var where string
	if m != nil {
		where = m.Path
		c := m.Config.Build
		s.Name = m.Config.Package.Name
		target = c.Target
		if c.Output != "" {
			s.Output = filepath.Join(m.Root, filepath.FromSlash(c.Output))
		}
		s.Jobs = c.Jobs
		if c.MaxDiagnostics > 0 {
			s.MaxDiagnostics = c.MaxDiagnostics
		}
		s.Cache = c.Cache
		maps.Copy(constants, c.Constants)
		trees, err := expand(m.Root, m.Config.Inputs.Trees)
		if err != nil {
			return Settings{}, &Error{Code: diag.ProjManifest, Path: m.Path, Msg: "bad [inputs].trees", Err: err}
		}
		s.Trees = trees
	}

	target = e.Str(EnvTarget, target)
	s.Jobs = e.Int(EnvJobs, s.Jobs)
	s.CacheDir = e.Str(EnvCacheDir, "")
	s.Trace = e.Str(EnvTrace, "")
	if e.Bool(EnvNoCache) {
		s.Cache = false
	}

	if o.Target != "" {
		target = o.Target
	}
	if o.Output != "" {
		s.Output = o.Output
	}
	if o.Jobs != 0 {
		s.Jobs = o.Jobs
	}
	if o.MaxDiagnostics != nil {
		s.MaxDiagnostics = *o.MaxDiagnostics
	}
	if o.NoCache {
		s.Cache = false
	}
	if o.Trace != "" {
		s.Trace = o.Trace
	}
	maps.Copy(constants, o.Constants)
	if len(o.Trees) > 0 {
		s.Trees = slices.Clone(o.Trees)
	}

	arch, err := platform.ParseTarget(target)
	if err != nil {
		return Settings{}, &Error{Code: diag.ProjUnknownTarget, Path: where, Msg: "cannot use target", Err: err}
	}
	s.Arch = arch.WithConstants(constants)
	if s.Jobs < 0 {
		return Settings{}, errorf(diag.ProjManifest, where, "jobs must not be negative, got %d", s.Jobs)
	}
	if len(s.Trees) == 0 {
		return Settings{}, errorf(diag.ProjNoInputs, where, "no syntax trees given")
	}
	return s, nil
}

// expand resolves patterns relative to root. A pattern without glob
// characters must name an existing file.
func expand(root string, patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		full := p
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, filepath.FromSlash(p))
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(full); err != nil {
				return nil, fmt.Errorf("%q matches nothing", p)
			}
			matches = []string{full}
		}
		slices.Sort(matches)
		for _, f := range matches {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}
