package ast

import (
	"fmt"

	"kestrel/internal/source"
)

type DeclKind uint8

const (
	DeclFunc DeclKind = iota
	DeclStruct
	DeclGlobal
	DeclAlias
	DeclOperator
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "function"
	case DeclStruct:
		return "struct"
	case DeclGlobal:
		return "global"
	case DeclAlias:
		return "alias"
	case DeclOperator:
		return "operator"
	default:
		return fmt.Sprintf("DeclKind(%d)", k)
	}
}

type Param struct {
	Name string      `msgpack:"n"`
	Type TypeID      `msgpack:"t"`
	Span source.Span `msgpack:"s"`
}

type Field struct {
	Name string      `msgpack:"n"`
	Type TypeID      `msgpack:"t"`
	Span source.Span `msgpack:"s"`
}

// OperatorRef ties a function to the operator it implements, or names an
// operator being declared. Fixity is "infix", "prefix" or "postfix".
type OperatorRef struct {
	Symbol string `msgpack:"y,omitempty"`
	Fixity string `msgpack:"x,omitempty"`
}

// Decl is a module-level declaration. Fields are used according to Kind:
//
//	DeclFunc:     Params, Variadic, Ret, Body/HasBody, Extern, LinkName, Operator
//	DeclStruct:   Fields, ABI
//	DeclGlobal:   Type (optional), Init (optional), Extern, LinkName
//	DeclAlias:    Type
//	DeclOperator: Operator, Precedence, Assoc
type Decl struct {
	Kind     DeclKind    `msgpack:"k"`
	Span     source.Span `msgpack:"s"`
	Name     string      `msgpack:"n"`
	Exported bool        `msgpack:"x,omitempty"`

	Params   []Param  `msgpack:"pa,omitempty"`
	Variadic bool     `msgpack:"va,omitempty"`
	Ret      TypeID   `msgpack:"r,omitempty"`
	Body     []StmtID `msgpack:"b,omitempty"`
	HasBody  bool     `msgpack:"hb,omitempty"`
	Extern   bool     `msgpack:"ex,omitempty"`
	LinkName string   `msgpack:"ln,omitempty"`

	Fields []Field `msgpack:"fi,omitempty"`
	ABI    bool    `msgpack:"abi,omitempty"`

	Type TypeID `msgpack:"t,omitempty"`
	Init ExprID `msgpack:"i,omitempty"`

	Operator   OperatorRef `msgpack:"op,omitempty"`
	Precedence int         `msgpack:"pr,omitempty"`
	Assoc      string      `msgpack:"as,omitempty"`
}
