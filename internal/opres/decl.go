// Package opres turns flat operand/operator sequences into expression trees
// once every visible operator declaration is known.
package opres

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"kestrel/internal/source"
)

// Fixity is the syntactic position of an operator.
type Fixity uint8

const (
	Infix Fixity = iota
	Prefix
	Postfix
)

func (f Fixity) String() string {
	switch f {
	case Infix:
		return "infix"
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	default:
		return fmt.Sprintf("Fixity(%d)", f)
	}
}

// ParseFixity maps the source keyword to a Fixity.
func ParseFixity(s string) (Fixity, bool) {
	switch s {
	case "infix":
		return Infix, true
	case "prefix":
		return Prefix, true
	case "postfix":
		return Postfix, true
	}
	return 0, false
}

type Assoc uint8

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNone:
		return "none"
	default:
		return fmt.Sprintf("Assoc(%d)", a)
	}
}

// ParseAssoc maps the source keyword to an Assoc.
func ParseAssoc(s string) (Assoc, bool) {
	switch s {
	case "left", "":
		return AssocLeft, true
	case "right":
		return AssocRight, true
	case "none":
		return AssocNone, true
	}
	return 0, false
}

// Precedence bounds. Lower numbers bind looser.
const (
	MinPrecedence = 0
	MaxPrecedence = 1000
)

// Builtin identifies operators whose meaning is fixed by the language.
type Builtin uint8

const (
	NotBuiltin Builtin = iota
	BuiltinAddressOf
	BuiltinDeref
	BuiltinAssign
)

// Decl is one operator declaration. Prefix and postfix declarations carry no
// meaningful precedence: they always bind tighter than any infix operator.
type Decl struct {
	Symbol     string
	Fixity     Fixity
	Precedence int
	Assoc      Assoc
	Builtin    Builtin
	Module     []string // declaring module, nil for builtins
	Span       source.Span
}

func (d *Decl) String() string {
	if d.Fixity == Infix {
		return fmt.Sprintf("%s %s (%d, %s)", d.Fixity, d.Symbol, d.Precedence, d.Assoc)
	}
	return fmt.Sprintf("%s %s", d.Fixity, d.Symbol)
}

// Normalize returns the canonical spelling of an operator symbol.
func Normalize(sym string) string {
	return norm.NFC.String(sym)
}

// BuiltinDecls returns fresh declarations of the language-defined operators:
// prefix & (address-of), prefix * (dereference) and infix = (assignment).
func BuiltinDecls() []*Decl {
	return []*Decl{
		{Symbol: "&", Fixity: Prefix, Builtin: BuiltinAddressOf},
		{Symbol: "*", Fixity: Prefix, Builtin: BuiltinDeref},
		{Symbol: "=", Fixity: Infix, Precedence: 0, Assoc: AssocRight, Builtin: BuiltinAssign},
	}
}

// ValidPrecedence reports whether p is inside the declarable range.
func ValidPrecedence(p int) bool {
	return p >= MinPrecedence && p <= MaxPrecedence
}
