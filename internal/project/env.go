package project

import (
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"
)

// Environment variables read by Resolve.
const (
	EnvTarget   = "KESTREL_TARGET"
	EnvJobs     = "KESTREL_JOBS"
	EnvCacheDir = "KESTREL_CACHE_DIR"
	EnvTrace    = "KESTREL_TRACE"
	EnvNoCache  = "KESTREL_NO_CACHE"
)

// Environment is the variable source for overrides.
type Environment interface {
	Str(name, def string) string
	Int(name string, def int) int
	Bool(name string) bool
}

type processEnv struct{}

func (processEnv) Str(name, def string) string  { return env.Str(name, def) }
func (processEnv) Int(name string, def int) int { return env.Int(name, def) }
func (processEnv) Bool(name string) bool        { return env.Bool(name) }

// Process reads the real process environment.
var Process Environment = processEnv{}

// MapEnv is a fixed environment, mostly for tests.
type MapEnv map[string]string

func (m MapEnv) Str(name, def string) string {
	if v, ok := m[name]; ok && v != "" {
		return v
	}
	return def
}

func (m MapEnv) Int(name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(m[name]))
	if err != nil {
		return def
	}
	return n
}

func (m MapEnv) Bool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(m[name])) {
	case "1", "true", "yes", "y", "on", "enabled":
		return true
	}
	return false
}
