package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kestrel/internal/diag"
	"kestrel/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints every diagnostic of bag in order:
//
//	path:line:col: error SEM3004: message
//	   3 | let x: int8 = 300;
//	     |               ^~~
//	note: path:line:col: ...
//
// Diagnostics without a known span print only the header line. A summary
// line closes the output when anything was printed.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	for _, d := range items {
		sev := p.severity(d.Severity)
		loc := location(fs, d.Primary, opts)
		if loc != "" {
			loc += ": "
		}
		fmt.Fprintf(w, "%s%s %s: %s\n", loc, sev.Sprint(strings.ToLower(d.Severity.String())), p.code.Sprint(d.Code.ID()), d.Message)
		snippet(w, fs, d.Primary, opts.Context, p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc := location(fs, n.Span, opts)
			if nloc != "" {
				nloc += ": "
			}
			fmt.Fprintf(w, "%s %s%s\n", p.note.Sprint("note:"), nloc, n.Msg)
			snippet(w, fs, n.Span, 0, p)
		}
	}
	if len(items) > 0 {
		summary(w, bag, p)
	}
}

func location(fs *source.FileSet, sp source.Span, opts PrettyOpts) string {
	if !sp.Known() || fs == nil {
		return ""
	}
	start, _, ok := fs.Resolve(sp)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, sp, opts.PathMode, opts.BaseDir), start.Line, start.Col)
}

// snippet prints the primary line with `context` lines around it and marks
// the span with ^~~~. Columns are measured in display cells.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, context int8, p palette) {
	if !sp.Known() || fs == nil {
		return
	}
	f := fs.Get(sp.File)
	start, end, ok := fs.Resolve(sp)
	if f == nil || !ok {
		return
	}
	first := start.Line
	if c := uint32(max(context, 0)); first > c {
		first -= c
	} else {
		first = 1
	}
	last := start.Line + uint32(max(context, 0))
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.Line(ln)
		if ln != start.Line && text == "" {
			continue
		}
		gutter := p.gutter.Sprintf("%*d |", width, ln)
		fmt.Fprintf(w, "%s %s\n", gutter, expandTabs(text))
		if ln != start.Line {
			continue
		}
		lead := cells(text, int(start.Col)-1)
		span := 1
		if end.Line == start.Line && end.Col > start.Col {
			span = max(cells(text, int(end.Col)-1)-lead, 1)
		} else if end.Line > start.Line {
			span = max(runewidth.StringWidth(expandTabs(text))-lead, 1)
		}
		marker := "^" + strings.Repeat("~", span-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", lead), p.caret.Sprint(marker))
	}
}

// cells is the display width of the first n bytes of line.
func cells(line string, n int) int {
	n = min(max(n, 0), len(line))
	return runewidth.StringWidth(expandTabs(line[:n]))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func summary(w io.Writer, bag *diag.Bag, p palette) {
	errs := bag.ErrorCount()
	warns := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			warns++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, p.err.Sprint(plural(errs, "error")))
	}
	if warns > 0 {
		parts = append(parts, p.warn.Sprint(plural(warns, "warning")))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "%s\n", strings.Join(parts, ", "))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
