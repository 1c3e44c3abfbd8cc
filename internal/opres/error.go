package opres

import (
	"fmt"
	"strings"
)

type ErrorKind uint8

const (
	ErrUnknownOperator ErrorKind = iota + 1
	ErrAmbiguousOperator
	ErrMixedAssociativity
	ErrNonAssociative
	ErrMalformedSequence
)

// Error describes a failed lookup or resolution. Index is the position of
// the offending operator in the sequence, or -1 when it does not apply.
type Error struct {
	Kind       ErrorKind
	Symbol     string
	Fixity     Fixity
	Index      int
	Candidates []*Decl
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownOperator:
		return fmt.Sprintf("unknown %s operator %q", e.Fixity, e.Symbol)
	case ErrAmbiguousOperator:
		return fmt.Sprintf("ambiguous %s operator %q: %d visible declarations", e.Fixity, e.Symbol, len(e.Candidates))
	case ErrMixedAssociativity:
		parts := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			parts = append(parts, c.Symbol+" ("+c.Assoc.String()+")")
		}
		return fmt.Sprintf("mixed associativity at equal precedence: %s", strings.Join(parts, ", "))
	case ErrNonAssociative:
		return fmt.Sprintf("non-associative operator %q cannot be chained", e.Symbol)
	case ErrMalformedSequence:
		return "malformed operator sequence"
	default:
		return fmt.Sprintf("operator error kind=%d", e.Kind)
	}
}
