package diagfmt

import (
	"path/filepath"
	"strings"

	"kestrel/internal/source"
)

func displayPath(fs *source.FileSet, span source.Span, mode PathMode, base string) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(span.File)
	if f == nil {
		return ""
	}
	p := f.Path
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			p = filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base != "" {
			if rel, err := filepath.Rel(base, filepath.FromSlash(p)); err == nil && !strings.HasPrefix(rel, "..") {
				p = filepath.ToSlash(rel)
			}
		}
	case PathModeBasename:
		p = filepath.Base(p)
	}
	return p
}
