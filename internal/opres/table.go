package opres

import (
	"slices"
	"unicode/utf8"
)

type tableKey struct {
	symbol string
	fixity Fixity
}

// Table is the set of operator declarations visible from one scope.
// It is built explicitly by the caller; there is no global registry.
type Table struct {
	decls  map[tableKey][]*Decl
	maxLen [3]int // longest symbol per fixity, in runes
}

// NewTable creates a table holding decls.
func NewTable(decls ...*Decl) *Table {
	t := &Table{decls: make(map[tableKey][]*Decl, len(decls))}
	for _, d := range decls {
		t.Add(d)
	}
	return t
}

// Add makes d visible. Adding the same declaration twice is a no-op, so a
// declaration reachable through several import paths counts once.
func (t *Table) Add(d *Decl) {
	if d == nil {
		return
	}
	sym := Normalize(d.Symbol)
	key := tableKey{symbol: sym, fixity: d.Fixity}
	if slices.Contains(t.decls[key], d) {
		return
	}
	t.decls[key] = append(t.decls[key], d)
	if n := utf8.RuneCountInString(sym); n > t.maxLen[d.Fixity] {
		t.maxLen[d.Fixity] = n
	}
}

// Has reports whether at least one declaration exists for symbol and fixity.
func (t *Table) Has(symbol string, fixity Fixity) bool {
	return len(t.decls[tableKey{symbol: Normalize(symbol), fixity: fixity}]) > 0
}

// Lookup returns the single visible declaration of symbol with fixity.
// More than one visible declaration is an error, never resolved by shadowing.
func (t *Table) Lookup(symbol string, fixity Fixity) (*Decl, error) {
	sym := Normalize(symbol)
	found := t.decls[tableKey{symbol: sym, fixity: fixity}]
	switch len(found) {
	case 0:
		return nil, &Error{Kind: ErrUnknownOperator, Symbol: sym, Fixity: fixity, Index: -1}
	case 1:
		return found[0], nil
	default:
		return nil, &Error{Kind: ErrAmbiguousOperator, Symbol: sym, Fixity: fixity, Index: -1, Candidates: slices.Clone(found)}
	}
}

// SplitRun breaks a separator-free run of operator characters into declared
// symbols. At each position the longest declared symbol is tried first; on
// failure of the remainder the match shrinks one character at a time.
func (t *Table) SplitRun(run string, fixity Fixity) ([]*Decl, error) {
	runes := []rune(Normalize(run))
	if len(runes) == 0 {
		return nil, &Error{Kind: ErrUnknownOperator, Symbol: run, Fixity: fixity, Index: -1}
	}
	out, err := t.splitFrom(runes, fixity)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Table) splitFrom(runes []rune, fixity Fixity) ([]*Decl, *Error) {
	if len(runes) == 0 {
		return nil, nil
	}
	var firstErr *Error
	longest := min(len(runes), t.maxLen[fixity])
	for n := longest; n > 0; n-- {
		sym := string(runes[:n])
		if !t.Has(sym, fixity) {
			continue
		}
		d, err := t.Lookup(sym, fixity)
		if err != nil {
			// ambiguity is a hard error, not a reason to backtrack
			return nil, err.(*Error)
		}
		rest, restErr := t.splitFrom(runes[n:], fixity)
		if restErr == nil {
			return append([]*Decl{d}, rest...), nil
		}
		if restErr.Kind == ErrAmbiguousOperator {
			return nil, restErr
		}
		if firstErr == nil {
			firstErr = restErr
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, &Error{Kind: ErrUnknownOperator, Symbol: string(runes), Fixity: fixity, Index: -1}
}

// Decls returns every declaration in the table, in no particular order.
func (t *Table) Decls() []*Decl {
	var out []*Decl
	for _, ds := range t.decls {
		out = append(out, ds...)
	}
	return out
}
