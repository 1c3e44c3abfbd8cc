package types

// AddConst qualifies t. Arrays are const through their element; function
// types are never qualified. AddConst is idempotent.
func (in *Interner) AddConst(t TypeID) TypeID {
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindConst, KindFunc:
		return t
	case KindArray:
		return in.Array(in.AddConst(tt.Elem), tt.Count)
	default:
		return in.Intern(makeConst(t))
	}
}

// RemoveConst strips the top-level qualifier (through arrays).
func (in *Interner) RemoveConst(t TypeID) TypeID {
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindConst:
		return tt.Elem
	case KindArray:
		elem := in.RemoveConst(tt.Elem)
		if elem == tt.Elem {
			return t
		}
		return in.Array(elem, tt.Count)
	default:
		return t
	}
}

// IsConst reports whether values of t are not assignable through t.
func (in *Interner) IsConst(t TypeID) bool {
	tt, ok := in.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindConst:
		return true
	case KindArray:
		return in.IsConst(tt.Elem)
	}
	return false
}

// Equal is structural type equality. Interning makes it handle equality.
func Equal(a, b TypeID) bool {
	return a == b
}

// SameUnqualified compares a and b after removing top-level const.
func (in *Interner) SameUnqualified(a, b TypeID) bool {
	return in.RemoveConst(a) == in.RemoveConst(b)
}

// ConstCompatible reports whether a value viewed through from may be viewed
// through to: equal after const removal, without dropping a qualifier.
func (in *Interner) ConstCompatible(from, to TypeID) bool {
	if from == to {
		return true
	}
	if !in.SameUnqualified(from, to) {
		return false
	}
	return !in.IsConst(from) || in.IsConst(to)
}
