package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputFile is the file name of a module's IR: dots become underscores.
func OutputFile(module string) string {
	if module == "" {
		module = "main"
	}
	return strings.ReplaceAll(module, ".", "_") + ".ll"
}

// WriteOutputs writes every module to dir and returns the written paths.
func (r *Result) WriteOutputs(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(r.Modules))
	for _, m := range r.Modules {
		p := filepath.Join(dir, OutputFile(m.Name))
		if err := os.WriteFile(p, []byte(m.Text), 0o600); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
