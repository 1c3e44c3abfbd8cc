package ast

import "kestrel/internal/source"

type TypeKind uint8

const (
	TypeNamed TypeKind = iota
	TypeConst
	TypePointer
	TypeArray
	TypeSlice
	TypeTuple
	TypeFunc
)

// TypeExpr is written type syntax.
//
//	TypeNamed:   Path (`int32`, `geo.Point`)
//	TypeConst:   Elem
//	TypePointer: Elem, Nullable
//	TypeArray:   Elem, Len (constant expression)
//	TypeSlice:   Elem
//	TypeTuple:   Elems
//	TypeFunc:    Elems (params), Variadic, Ret (NoTypeID is void)
type TypeExpr struct {
	Kind     TypeKind    `msgpack:"k"`
	Span     source.Span `msgpack:"s"`
	Path     []string    `msgpack:"p,omitempty"`
	Elem     TypeID      `msgpack:"e,omitempty"`
	Nullable bool        `msgpack:"n,omitempty"`
	Len      ExprID      `msgpack:"l,omitempty"`
	Elems    []TypeID    `msgpack:"es,omitempty"`
	Ret      TypeID      `msgpack:"r,omitempty"`
	Variadic bool        `msgpack:"va,omitempty"`
}
