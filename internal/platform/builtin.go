package platform

import "fmt"

// Builtin enumerates the primitive types of the language.
type Builtin uint8

const (
	Void Builtin = iota
	Byte
	Bool
	Int8
	Int16
	Int32
	Int64
	Int
	Uint8
	Uint16
	Uint32
	Uint64
	Uint
	Float32
	Float64
	Null

	builtinCount
)

// Kind is the coarse classification of a builtin.
type Kind uint8

const (
	KindVoid Kind = iota
	KindByte
	KindBool
	KindInt
	KindUint
	KindFloat
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindByte:
		return "byte"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

var builtinNames = [builtinCount]string{
	Void:    "void",
	Byte:    "byte",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Int:     "int",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Uint:    "uint",
	Float32: "float32",
	Float64: "float64",
	Null:    "null",
}

func (b Builtin) String() string {
	if b < builtinCount {
		return builtinNames[b]
	}
	return fmt.Sprintf("Builtin(%d)", b)
}

// Kind returns the coarse kind of b.
func (b Builtin) Kind() Kind {
	switch b {
	case Void:
		return KindVoid
	case Byte:
		return KindByte
	case Bool:
		return KindBool
	case Int8, Int16, Int32, Int64, Int:
		return KindInt
	case Uint8, Uint16, Uint32, Uint64, Uint:
		return KindUint
	case Float32, Float64:
		return KindFloat
	case Null:
		return KindNull
	}
	panic(fmt.Errorf("platform: unknown builtin %d", b))
}

// IsInteger reports int, uint and byte.
func (b Builtin) IsInteger() bool {
	switch b.Kind() {
	case KindInt, KindUint, KindByte:
		return true
	}
	return false
}

// IsSigned reports signed integers and floats.
func (b Builtin) IsSigned() bool {
	k := b.Kind()
	return k == KindInt || k == KindFloat
}

// IsNumeric reports integers and floats.
func (b Builtin) IsNumeric() bool {
	return b.IsInteger() || b.Kind() == KindFloat
}

// IsPlatformSized reports int and uint.
func (b Builtin) IsPlatformSized() bool {
	return b == Int || b == Uint
}

// BuiltinByName maps a source spelling to a builtin. null has no spelling.
func BuiltinByName(name string) (Builtin, bool) {
	for i := Void; i < builtinCount; i++ {
		if i == Null {
			continue
		}
		if builtinNames[i] == name {
			return i, true
		}
	}
	return 0, false
}

// Builtins lists every builtin in declaration order.
func Builtins() []Builtin {
	out := make([]Builtin, 0, builtinCount)
	for i := Void; i < builtinCount; i++ {
		out = append(out, i)
	}
	return out
}
