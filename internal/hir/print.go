package hir

import (
	"fmt"
	"io"
	"strings"

	"kestrel/internal/types"
)

// Printer dumps typed trees in an indented s-expression form.
type Printer struct {
	w        io.Writer
	interner *types.Interner
	indent   int
	err      error
}

func NewPrinter(w io.Writer, interner *types.Interner) *Printer {
	return &Printer{w: w, interner: interner}
}

// Dump writes every module of p.
func Dump(w io.Writer, p *Program) error {
	pr := NewPrinter(w, p.Types)
	for _, m := range p.Modules {
		pr.Module(m)
	}
	return pr.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", p.indent)}, args...)...)
}

func (p *Printer) typ(t types.TypeID) string {
	return p.interner.TypeString(t)
}

func (p *Printer) Module(m *Module) {
	p.printf("module %s", m.Name())
	p.indent++
	defer func() { p.indent-- }()
	for _, st := range m.Structs {
		p.printf("struct %s", p.typ(st))
	}
	for _, g := range m.Globals {
		p.printf("global %s: %s", g.Name, p.typ(g.Type))
		if g.Init != nil {
			p.indent++
			p.Expr(g.Init)
			p.indent--
		}
	}
	for _, f := range m.Funcs {
		p.Func(f)
	}
}

func (p *Printer) Func(f *Func) {
	params := make([]string, len(f.Params))
	for i, v := range f.Params {
		params[i] = v.Name + ": " + p.typ(v.Type)
	}
	head := fmt.Sprintf("fn %s(%s) -> %s", f.Name, strings.Join(params, ", "), p.typ(f.Ret))
	if !f.Defined {
		p.printf("%s extern", head)
		return
	}
	p.printf("%s", head)
	p.indent++
	for _, s := range f.Body {
		p.Stmt(s)
	}
	p.indent--
}

func (p *Printer) Stmt(s *Stmt) {
	switch d := s.Data.(type) {
	case BlockData:
		p.printf("block")
		p.block(d.Body)
	case VarData:
		p.printf("var %s: %s", d.Var.Name, p.typ(d.Var.Type))
		if d.Init != nil {
			p.indent++
			p.Expr(d.Init)
			p.indent--
		}
	case ExprStmtData:
		p.Expr(d.X)
	case ReturnData:
		p.printf("return")
		if d.Value != nil {
			p.indent++
			p.Expr(d.Value)
			p.indent--
		}
	case IfData:
		p.printf("if")
		p.indent++
		p.Expr(d.Cond)
		p.indent--
		p.block(d.Then)
		if len(d.Else) > 0 {
			p.printf("else")
			p.block(d.Else)
		}
	case WhileData:
		p.printf("while")
		p.indent++
		p.Expr(d.Cond)
		p.indent--
		p.block(d.Body)
	case LoopData:
		p.printf("loop")
		p.block(d.Body)
	case BreakData:
		p.printf("break")
	case ContinueData:
		p.printf("continue")
	case GotoData:
		p.printf("goto %s", d.Label.Name)
	case LabelData:
		p.printf("label %s", d.Label.Name)
	}
}

func (p *Printer) block(body []*Stmt) {
	p.indent++
	for _, s := range body {
		p.Stmt(s)
	}
	p.indent--
}

func (p *Printer) Expr(e *Expr) {
	head := fmt.Sprintf("%s %s [%s]", e.Kind, p.typ(e.Type), e.Category())
	var kids []*Expr
	switch d := e.Data.(type) {
	case LocalData:
		head += " " + d.Var.Name
	case GlobalData:
		head += " " + d.Global.QualifiedName()
	case FuncRefData:
		head += " " + d.Func.QualifiedName()
	case IntLitData:
		head += " " + d.Value.String()
	case FloatLitData:
		head += " " + d.Value.FloatString(6)
	case BoolLitData:
		head += fmt.Sprintf(" %t", d.Value)
	case StringLitData:
		head += fmt.Sprintf(" %q", d.Bytes)
	case CallData:
		if d.Func != nil {
			head += " " + d.Func.QualifiedName()
		} else {
			kids = append(kids, d.Callee)
		}
		kids = append(kids, d.Args...)
	case BuiltinData:
		head += " " + d.Op.String()
		kids = d.Args
	case AssignData:
		kids = []*Expr{d.Target, d.Value}
	case AddressOfData:
		kids = []*Expr{d.X}
	case DerefData:
		kids = []*Expr{d.X}
	case FieldData:
		head += fmt.Sprintf(" #%d", d.Index)
		kids = []*Expr{d.X}
	case IndexData:
		kids = []*Expr{d.X, d.Index}
	case SliceMemberData:
		if d.Len {
			head += " len"
		} else {
			head += " ptr"
		}
		kids = []*Expr{d.X}
	case CastData:
		head += " " + d.Op.String()
		kids = []*Expr{d.X}
	case ConvertData:
		head += " " + d.Conv.String()
		kids = []*Expr{d.X}
	case MaterializeData:
		kids = []*Expr{d.X}
	case StructLitData:
		kids = d.Fields
	case TupleLitData:
		kids = d.Elems
	case ArrayLitData:
		kids = d.Elems
	}
	p.printf("%s", head)
	p.indent++
	for _, k := range kids {
		if k == nil {
			p.printf("zero")
			continue
		}
		p.Expr(k)
	}
	p.indent--
}
