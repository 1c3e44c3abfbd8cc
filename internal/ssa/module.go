package ssa

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// TypeDef is a named aggregate type: %name = type body.
type TypeDef struct {
	Name string
	Body string
}

// Global is a module-level variable or constant. An empty Init declares an
// external global defined elsewhere.
type Global struct {
	Name        string
	Ty          string
	Init        string
	Internal    bool
	Constant    bool
	UnnamedAddr bool
	Align       int
}

// Decl is a function declared but defined in another module or library.
type Decl struct {
	Name     string
	Ret      string
	Params   []string
	Variadic bool
}

// FnType renders the IR function type (used for variadic call sites).
func (d Decl) FnType() string {
	params := append([]string(nil), d.Params...)
	if d.Variadic {
		params = append(params, "...")
	}
	return d.Ret + " (" + strings.Join(params, ", ") + ")"
}

// Module is one emitted compilation unit.
type Module struct {
	Name    string
	Triple  string
	Types   []TypeDef
	Globals []Global
	Decls   []Decl
	Funcs   []*Func
}

// String renders the module: target triple, type definitions, globals,
// declarations, then definitions.
func (m *Module) String() string {
	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.Name)
	}
	fmt.Fprintf(&sb, "target triple = %q\n", m.Triple)

	if len(m.Types) > 0 {
		sb.WriteByte('\n')
		defs := append([]TypeDef(nil), m.Types...)
		sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
		for _, td := range defs {
			fmt.Fprintf(&sb, "%s = type %s\n", LocalName(td.Name), td.Body)
		}
	}

	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
		for _, g := range m.Globals {
			sb.WriteString(g.String())
			sb.WriteByte('\n')
		}
	}

	if len(m.Decls) > 0 {
		sb.WriteByte('\n')
		for _, d := range m.Decls {
			params := append([]string(nil), d.Params...)
			if d.Variadic {
				params = append(params, "...")
			}
			fmt.Fprintf(&sb, "declare %s %s(%s)\n", d.Ret, GlobalName(d.Name), strings.Join(params, ", "))
		}
	}

	for _, f := range m.Funcs {
		sb.WriteByte('\n')
		writeFunc(&sb, f)
	}
	return sb.String()
}

func (g Global) String() string {
	var sb strings.Builder
	sb.WriteString(GlobalName(g.Name))
	sb.WriteString(" = ")
	switch {
	case g.Init == "":
		sb.WriteString("external ")
	case g.Internal:
		if g.Constant && g.UnnamedAddr {
			sb.WriteString("private unnamed_addr ")
		} else {
			sb.WriteString("internal ")
		}
	}
	if g.Constant {
		sb.WriteString("constant ")
	} else {
		sb.WriteString("global ")
	}
	sb.WriteString(g.Ty)
	if g.Init != "" {
		sb.WriteByte(' ')
		sb.WriteString(g.Init)
	}
	writeAlign(&sb, g.Align)
	return sb.String()
}

func writeFunc(sb *strings.Builder, f *Func) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Ty + " " + p.Name
	}
	linkage := ""
	if f.Internal {
		linkage = "internal "
	}
	fmt.Fprintf(sb, "define %s%s %s(%s) {\n", linkage, f.RetTy, GlobalName(f.Name), strings.Join(params, ", "))
	sb.WriteString("entry:\n")
	for _, in := range f.Prologue {
		sb.WriteString("  ")
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	for _, in := range f.Body {
		if in.Op == OpLabel {
			sb.WriteString(in.String())
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
}

func isIdentChar(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c == '$' || c == '.' || c == '_' || c == '-':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func quoteName(sigil byte, name string) string {
	bare := name != ""
	for i := 0; i < len(name) && bare; i++ {
		bare = isIdentChar(name[i], i == 0)
	}
	if bare {
		return string(sigil) + name
	}
	var sb strings.Builder
	sb.WriteByte(sigil)
	sb.WriteByte('"')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '"' || c == '\\' || c < 0x20 || c >= 0x7f {
			fmt.Fprintf(&sb, "\\%02X", c)
			continue
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}

// GlobalName renders @name, quoting when name is not a bare identifier.
func GlobalName(name string) string {
	return quoteName('@', name)
}

// LocalName renders %name for named types.
func LocalName(name string) string {
	return quoteName('%', name)
}

// Bytes renders a c"..." initializer with every byte escaped.
func Bytes(data []byte) string {
	var sb strings.Builder
	sb.WriteString("c\"")
	for _, b := range data {
		fmt.Fprintf(&sb, "\\%02X", b)
	}
	sb.WriteString("\"")
	return sb.String()
}

// FloatConst renders a float constant in the hexadecimal double form the
// backend parses exactly. float values are widened from their float32 value.
func FloatConst(v float64, bits int) string {
	if bits == 32 {
		v = float64(float32(v))
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(v))
}
