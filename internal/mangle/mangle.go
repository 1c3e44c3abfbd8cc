// Package mangle produces deterministic link names for functions, operators
// and globals, and pools string constants per module.
//
// A mangled function name is the dotted module path and the function name,
// followed by one '$'-prefixed code per parameter type. Type codes are
// prefix-free, so distinct parameter lists never mangle alike:
//
//	void v   byte b   bool z   null n
//	int8..int64 i8..i64   int i   uint8..uint64 u8..u64   uint u
//	float32 f32   float64 f64
//	const T     C<T>
//	*T / ?*T    P<T> / N<T>
//	[n]T        A<n>_<T>
//	[]T         S<T>
//	struct      R<len><qualified name>
//	tuple       T<n><T1>...<Tn>
//	fn          F<n><P1>...<Pn>(V|_)<R>
package mangle

import (
	"strconv"
	"strings"

	"kestrel/internal/opres"
	"kestrel/internal/platform"
	"kestrel/internal/types"
)

// Mangler renders names against one interner. It keeps no mutable state.
type Mangler struct {
	Types *types.Interner
}

func New(in *types.Interner) Mangler {
	return Mangler{Types: in}
}

// Func mangles a plain function.
func (m Mangler) Func(module []string, name string, params []types.TypeID) string {
	var sb strings.Builder
	writeQualified(&sb, module, name)
	m.writeParams(&sb, params)
	return sb.String()
}

// Operator mangles an operator implementation. The symbol is spelled with
// alphabetic tokens so the result stays a bare identifier.
func (m Mangler) Operator(module []string, fixity opres.Fixity, symbol string, params []types.TypeID) string {
	var sb strings.Builder
	writeQualified(&sb, module, "op")
	sb.WriteByte('$')
	sb.WriteString(fixity.String())
	sb.WriteByte('$')
	sb.WriteString(EscapeSymbol(symbol))
	m.writeParams(&sb, params)
	return sb.String()
}

// Global mangles a module-level variable.
func (m Mangler) Global(module []string, name string) string {
	var sb strings.Builder
	writeQualified(&sb, module, name)
	return sb.String()
}

// TypeCode returns the structural code of t.
func (m Mangler) TypeCode(t types.TypeID) string {
	var sb strings.Builder
	m.writeType(&sb, t)
	return sb.String()
}

func writeQualified(sb *strings.Builder, module []string, name string) {
	for _, seg := range module {
		sb.WriteString(seg)
		sb.WriteByte('.')
	}
	sb.WriteString(name)
}

func (m Mangler) writeParams(sb *strings.Builder, params []types.TypeID) {
	for _, p := range params {
		sb.WriteByte('$')
		m.writeType(sb, p)
	}
}

func (m Mangler) writeType(sb *strings.Builder, t types.TypeID) {
	tt, ok := m.Types.Lookup(t)
	if !ok {
		panic("mangle: invalid type")
	}
	switch tt.Kind {
	case types.KindBuiltin:
		sb.WriteString(builtinCode(tt.Builtin))
	case types.KindConst:
		sb.WriteByte('C')
		m.writeType(sb, tt.Elem)
	case types.KindPointer:
		if tt.Nullable {
			sb.WriteByte('N')
		} else {
			sb.WriteByte('P')
		}
		m.writeType(sb, tt.Elem)
	case types.KindArray:
		sb.WriteByte('A')
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		sb.WriteByte('_')
		m.writeType(sb, tt.Elem)
	case types.KindSlice:
		sb.WriteByte('S')
		m.writeType(sb, tt.Elem)
	case types.KindStruct:
		info, _ := m.Types.StructInfo(t)
		name := info.QualifiedName()
		sb.WriteByte('R')
		sb.WriteString(strconv.Itoa(len(name)))
		sb.WriteString(name)
	case types.KindTuple:
		info, _ := m.Types.TupleInfo(t)
		sb.WriteByte('T')
		sb.WriteString(strconv.Itoa(len(info.Elems)))
		for _, e := range info.Elems {
			m.writeType(sb, e)
		}
	case types.KindFunc:
		info, _ := m.Types.FnInfo(t)
		sb.WriteByte('F')
		sb.WriteString(strconv.Itoa(len(info.Params)))
		for _, p := range info.Params {
			m.writeType(sb, p)
		}
		if info.Variadic {
			sb.WriteByte('V')
		} else {
			sb.WriteByte('_')
		}
		m.writeType(sb, info.Result)
	default:
		panic("mangle: unexpected type kind " + tt.Kind.String())
	}
}

func builtinCode(b platform.Builtin) string {
	switch b {
	case platform.Void:
		return "v"
	case platform.Byte:
		return "b"
	case platform.Bool:
		return "z"
	case platform.Null:
		return "n"
	case platform.Int:
		return "i"
	case platform.Uint:
		return "u"
	case platform.Int8:
		return "i8"
	case platform.Int16:
		return "i16"
	case platform.Int32:
		return "i32"
	case platform.Int64:
		return "i64"
	case platform.Uint8:
		return "u8"
	case platform.Uint16:
		return "u16"
	case platform.Uint32:
		return "u32"
	case platform.Uint64:
		return "u64"
	case platform.Float32:
		return "f32"
	case platform.Float64:
		return "f64"
	}
	panic("mangle: unknown builtin " + b.String())
}
