package types

import "kestrel/internal/platform"

// Underlying drops const qualifiers without touching arrays.
func (in *Interner) Underlying(t TypeID) Type {
	tt, ok := in.Lookup(t)
	for ok && tt.Kind == KindConst {
		tt, ok = in.Lookup(tt.Elem)
	}
	return tt
}

// BuiltinOf returns the primitive behind t (ignoring const).
func (in *Interner) BuiltinOf(t TypeID) (Builtin, bool) {
	tt := in.Underlying(t)
	if tt.Kind != KindBuiltin {
		return 0, false
	}
	return tt.Builtin, true
}

func (in *Interner) isBuiltinKind(t TypeID, kinds ...platform.Kind) bool {
	b, ok := in.BuiltinOf(t)
	if !ok {
		return false
	}
	k := b.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// IsInteger reports int, uint and byte types.
func (in *Interner) IsInteger(t TypeID) bool {
	return in.isBuiltinKind(t, platform.KindInt, platform.KindUint, platform.KindByte)
}

// IsFloat reports float32 and float64.
func (in *Interner) IsFloat(t TypeID) bool {
	return in.isBuiltinKind(t, platform.KindFloat)
}

// IsNumeric reports integers and floats.
func (in *Interner) IsNumeric(t TypeID) bool {
	return in.IsInteger(t) || in.IsFloat(t)
}

// IsBool reports the bool type.
func (in *Interner) IsBool(t TypeID) bool {
	return in.isBuiltinKind(t, platform.KindBool)
}

// IsVoid reports the void type.
func (in *Interner) IsVoid(t TypeID) bool {
	return in.isBuiltinKind(t, platform.KindVoid)
}

// IsNull reports the type of the null literal.
func (in *Interner) IsNull(t TypeID) bool {
	return in.isBuiltinKind(t, platform.KindNull)
}

// IsFunc reports function types.
func (in *Interner) IsFunc(t TypeID) bool {
	return in.Underlying(t).Kind == KindFunc
}

// PointerInfo returns the pointee and nullability of a pointer type.
func (in *Interner) PointerInfo(t TypeID) (elem TypeID, nullable, ok bool) {
	tt := in.Underlying(t)
	if tt.Kind != KindPointer {
		return NoTypeID, false, false
	}
	return tt.Elem, tt.Nullable, true
}

// ArrayInfo returns element and length of an array type.
func (in *Interner) ArrayInfo(t TypeID) (elem TypeID, count uint32, ok bool) {
	tt, found := in.Lookup(t)
	if !found || tt.Kind != KindArray {
		return NoTypeID, 0, false
	}
	return tt.Elem, tt.Count, true
}

// SliceElem returns the element type of a slice.
func (in *Interner) SliceElem(t TypeID) (TypeID, bool) {
	tt := in.Underlying(t)
	if tt.Kind != KindSlice {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// IsStruct reports nominal struct types.
func (in *Interner) IsStruct(t TypeID) bool {
	return in.Underlying(t).Kind == KindStruct
}

// StructOf resolves the struct info behind a possibly const type.
func (in *Interner) StructOf(t TypeID) (TypeID, *StructInfo, bool) {
	id := in.RemoveConst(t)
	info, ok := in.StructInfo(id)
	return id, info, ok
}

// TupleOf resolves the tuple info behind a possibly const type.
func (in *Interner) TupleOf(t TypeID) (*TupleInfo, bool) {
	return in.TupleInfo(in.RemoveConst(t))
}

// FuncOf resolves the function signature behind t.
func (in *Interner) FuncOf(t TypeID) (*FnInfo, bool) {
	return in.FnInfo(in.RemoveConst(t))
}
