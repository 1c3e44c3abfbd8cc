package ast

import "kestrel/internal/source"

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtVar
	StmtExpr
	StmtReturn
	StmtIf
	StmtWhile
	StmtLoop
	StmtBreak
	StmtContinue
	StmtGoto
	StmtLabel
)

// Stmt is an untyped statement.
//
//	StmtBlock:  Body
//	StmtVar:    Name, Type (optional), X (optional init)
//	StmtExpr:   X
//	StmtReturn: X (optional)
//	StmtIf:     X, Body, Else
//	StmtWhile:  X, Body
//	StmtLoop:   Body
//	StmtGoto, StmtLabel: Name
type Stmt struct {
	Kind StmtKind    `msgpack:"k"`
	Span source.Span `msgpack:"s"`
	Name string      `msgpack:"n,omitempty"`
	Type TypeID      `msgpack:"t,omitempty"`
	X    ExprID      `msgpack:"x,omitempty"`
	Body []StmtID    `msgpack:"b,omitempty"`
	Else []StmtID    `msgpack:"e,omitempty"`
}
