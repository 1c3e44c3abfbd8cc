package ast

import "kestrel/internal/source"

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprBoolLit
	ExprNullLit
	// ExprSequence is an operator sequence left unresolved by the parser.
	ExprSequence
	ExprCall
	ExprIndex
	ExprMember
	ExprCast
	ExprSizeOf
	ExprAlignOf
	ExprStructLit
	ExprTupleLit
	ExprArrayLit
)

type CastKind uint8

const (
	CastSign CastKind = iota
	CastWidth
	CastPointer
	CastNumeric
)

func (k CastKind) String() string {
	switch k {
	case CastSign:
		return "sign"
	case CastWidth:
		return "width"
	case CastPointer:
		return "pointer"
	default:
		return "numeric"
	}
}

// Run is a contiguous run of operator characters.
type Run struct {
	Text string      `msgpack:"t"`
	Span source.Span `msgpack:"s"`
}

// Term is an operand with the prefix and postfix runs glued to it.
type Term struct {
	Prefix  Run    `msgpack:"pr,omitempty"`
	Operand ExprID `msgpack:"o"`
	Postfix Run    `msgpack:"po,omitempty"`
}

type FieldInit struct {
	Name  string      `msgpack:"n"`
	Value ExprID      `msgpack:"v"`
	Span  source.Span `msgpack:"s"`
}

// Expr is an untyped expression. Fields are used according to Kind:
//
//	ExprIdent:     Name
//	ExprIntLit, ExprFloatLit: Text (source spelling)
//	ExprStringLit: Text (decoded bytes)
//	ExprBoolLit:   Bool
//	ExprSequence:  Terms, Ops (len(Terms) == len(Ops)+1)
//	ExprCall:      X, Args
//	ExprIndex:     X, Index
//	ExprMember:    X, Name
//	ExprCast:      Cast, Type, X
//	ExprSizeOf, ExprAlignOf: Type
//	ExprStructLit: Type, Fields
//	ExprTupleLit:  Args
//	ExprArrayLit:  Type (element, optional), Args
type Expr struct {
	Kind   ExprKind    `msgpack:"k"`
	Span   source.Span `msgpack:"s"`
	Name   string      `msgpack:"n,omitempty"`
	Text   string      `msgpack:"t,omitempty"`
	Bool   bool        `msgpack:"b,omitempty"`
	X      ExprID      `msgpack:"x,omitempty"`
	Index  ExprID      `msgpack:"i,omitempty"`
	Args   []ExprID    `msgpack:"a,omitempty"`
	Type   TypeID      `msgpack:"ty,omitempty"`
	Cast   CastKind    `msgpack:"c,omitempty"`
	Fields []FieldInit `msgpack:"f,omitempty"`
	Terms  []Term      `msgpack:"tr,omitempty"`
	Ops    []Run       `msgpack:"o,omitempty"`
}
