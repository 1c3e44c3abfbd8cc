package types

import (
	"fmt"

	"kestrel/internal/platform"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Builtin is the primitive type enumeration shared with platform numerics.
type Builtin = platform.Builtin

const (
	Void    = platform.Void
	Byte    = platform.Byte
	Bool    = platform.Bool
	Int8    = platform.Int8
	Int16   = platform.Int16
	Int32   = platform.Int32
	Int64   = platform.Int64
	Int     = platform.Int
	Uint8   = platform.Uint8
	Uint16  = platform.Uint16
	Uint32  = platform.Uint32
	Uint64  = platform.Uint64
	Uint    = platform.Uint
	Float32 = platform.Float32
	Float64 = platform.Float64
	Null    = platform.Null
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBuiltin
	KindConst
	KindPointer
	KindArray
	KindSlice
	KindStruct
	KindTuple
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBuiltin:
		return "builtin"
	case KindConst:
		return "const"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindFunc:
		return "func"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind     Kind
	Builtin  Builtin // for KindBuiltin
	Elem     TypeID  // const inner, pointee, array/slice element
	Count    uint32  // array length
	Nullable bool    // for pointers
	Payload  uint32  // struct/tuple/func info slot
}

// Descriptor helpers ---------------------------------------------------------

// MakeBuiltin describes a primitive.
func MakeBuiltin(b Builtin) Type {
	return Type{Kind: KindBuiltin, Builtin: b}
}

// MakePointer describes *T or ?*T.
func MakePointer(elem TypeID, nullable bool) Type {
	return Type{Kind: KindPointer, Elem: elem, Nullable: nullable}
}

// MakeArray describes [count]T.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes []T.
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

func makeConst(inner TypeID) Type {
	return Type{Kind: KindConst, Elem: inner}
}
