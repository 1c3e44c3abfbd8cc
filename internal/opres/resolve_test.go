package opres

import (
	"errors"
	"testing"
)

func render(op *Decl, _ int, lhs, rhs string) string {
	return "(" + lhs + " " + op.Symbol + " " + rhs + ")"
}

func infix(sym string, prec int, assoc Assoc) *Decl {
	return &Decl{Symbol: sym, Fixity: Infix, Precedence: prec, Assoc: assoc}
}

func TestPrecedenceShapesTree(t *testing.T) {
	plus := infix("+", 800, AssocLeft)
	star := infix("*", 900, AssocLeft)
	got, err := Resolve([]string{"a", "b", "c"}, []*Decl{plus, star}, render)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "(a + (b * c))" {
		t.Fatalf("got %s", got)
	}
}

func TestLeftAssociativeChain(t *testing.T) {
	minus := infix("-", 800, AssocLeft)
	got, err := Resolve([]string{"a", "b", "c"}, []*Decl{minus, minus}, render)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "((a - b) - c)" {
		t.Fatalf("got %s", got)
	}
}

func TestRightAssociativeChain(t *testing.T) {
	assign := BuiltinDecls()[2]
	plus := infix("+", 800, AssocLeft)
	got, err := Resolve([]string{"a", "b", "c", "d"}, []*Decl{assign, assign, plus}, render)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "(a = (b = (c + d)))" {
		t.Fatalf("got %s", got)
	}
}

func TestSameLevelDistinctOperatorsFoldInOrder(t *testing.T) {
	minus := infix("-", 800, AssocLeft)
	plus := infix("+", 800, AssocLeft)
	star := infix("*", 900, AssocLeft)
	got, err := Resolve([]string{"a", "b", "c", "d"}, []*Decl{minus, plus, star}, render)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "((a - b) + (c * d))" {
		t.Fatalf("got %s", got)
	}
}

func TestMixedAssociativityFails(t *testing.T) {
	l := infix("<+", 500, AssocLeft)
	r := infix("+>", 500, AssocRight)
	_, err := Resolve([]string{"a", "b", "c"}, []*Decl{l, r}, render)
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != ErrMixedAssociativity {
		t.Fatalf("expected mixed associativity error, got %v", err)
	}
}

func TestNonAssociativeChainFails(t *testing.T) {
	lt := infix("<", 400, AssocNone)
	if _, err := Resolve([]string{"a", "b"}, []*Decl{lt}, render); err != nil {
		t.Fatalf("single comparison must resolve: %v", err)
	}
	_, err := Resolve([]string{"a", "b", "c"}, []*Decl{lt, lt}, render)
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != ErrNonAssociative || oerr.Index != 1 {
		t.Fatalf("expected non-associative error at 1, got %v", err)
	}
}

func TestMalformedSequence(t *testing.T) {
	if _, err := Resolve([]string{"a", "b"}, nil, render); err == nil {
		t.Fatalf("expected error for operand/operator count mismatch")
	}
}

func TestBuilderSeesOriginalIndex(t *testing.T) {
	plus := infix("+", 800, AssocLeft)
	star := infix("*", 900, AssocLeft)
	var seen []int
	_, err := Resolve([]int{0, 1, 2, 3}, []*Decl{star, plus, star}, func(_ *Decl, idx int, _, _ int) int {
		seen = append(seen, idx)
		return 0
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 || seen[0] != 0 || seen[1] != 2 || seen[2] != 1 {
		t.Fatalf("indices = %v", seen)
	}
}
