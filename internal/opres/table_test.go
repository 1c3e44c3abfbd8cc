package opres

import (
	"errors"
	"testing"
)

func prefixDecl(sym string) *Decl {
	return &Decl{Symbol: sym, Fixity: Prefix}
}

func symbols(ds []*Decl) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Symbol
	}
	return out
}

func TestSplitRunGreedyLongest(t *testing.T) {
	tab := NewTable(prefixDecl("-"), prefixDecl("--"), prefixDecl("!"))
	got, err := tab.SplitRun("--!-", Prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := symbols(got)
	if len(s) != 3 || s[0] != "--" || s[1] != "!" || s[2] != "-" {
		t.Fatalf("split = %v", s)
	}
}

func TestSplitRunBacktracks(t *testing.T) {
	// "-->" must not take "--" first: ">" alone is undeclared.
	tab := NewTable(prefixDecl("-"), prefixDecl("--"), prefixDecl("->"))
	got, err := tab.SplitRun("-->", Prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := symbols(got)
	if len(s) != 2 || s[0] != "-" || s[1] != "->" {
		t.Fatalf("split = %v", s)
	}
}

func TestSplitRunUnknown(t *testing.T) {
	tab := NewTable(prefixDecl("-"))
	_, err := tab.SplitRun("-?", Prefix)
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != ErrUnknownOperator {
		t.Fatalf("expected unknown operator, got %v", err)
	}
}

func TestAmbiguousDeclarationIsHardError(t *testing.T) {
	a := &Decl{Symbol: "<>", Fixity: Infix, Precedence: 400, Module: []string{"a"}}
	b := &Decl{Symbol: "<>", Fixity: Infix, Precedence: 450, Module: []string{"b"}}
	tab := NewTable(a, b, a)
	_, err := tab.Lookup("<>", Infix)
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != ErrAmbiguousOperator || len(oerr.Candidates) != 2 {
		t.Fatalf("expected ambiguity between 2 declarations, got %v", err)
	}
	if _, err := tab.Lookup("<>", Prefix); err == nil {
		t.Fatalf("fixity is part of the key")
	}
}

func TestNormalizedSymbols(t *testing.T) {
	// U+2260 (≠) vs "=" + U+0338 (combining long solidus overlay)
	tab := NewTable(&Decl{Symbol: "≠", Fixity: Infix, Precedence: 400})
	if _, err := tab.Lookup("=\u0338", Infix); err != nil {
		t.Fatalf("decomposed spelling should match: %v", err)
	}
}

func TestApplyUnaryOrder(t *testing.T) {
	neg := prefixDecl("-")
	not := prefixDecl("!")
	bang := &Decl{Symbol: "?", Fixity: Postfix}
	got := ApplyUnary("x", []*Decl{neg, not}, []*Decl{bang, bang}, func(op *Decl, x string) string {
		if op.Fixity == Postfix {
			return "(" + x + op.Symbol + ")"
		}
		return "(" + op.Symbol + x + ")"
	})
	if got != "(-(!((x?)?)))" {
		t.Fatalf("got %s", got)
	}
}
