package prelude

import (
	"kestrel/internal/opres"
	"kestrel/internal/platform"
)

// Family is a set of builtin types an operation is defined over.
type Family uint8

const (
	FamilySigned Family = 1 << iota
	FamilyUnsigned
	FamilyFloat
	FamilyBool
	FamilyByte
)

const (
	FamilyInteger = FamilySigned | FamilyUnsigned | FamilyByte
	FamilyNumeric = FamilyInteger | FamilyFloat
)

func (f Family) has(b platform.Builtin) bool {
	switch b.Kind() {
	case platform.KindInt:
		return f&FamilySigned != 0
	case platform.KindUint:
		return f&FamilyUnsigned != 0
	case platform.KindFloat:
		return f&FamilyFloat != 0
	case platform.KindBool:
		return f&FamilyBool != 0
	case platform.KindByte:
		return f&FamilyByte != 0
	}
	return false
}

// Param is a builtin parameter or result type.
type Param struct {
	Builtin platform.Builtin
	Pointer bool // *Builtin
	Const   bool // const pointee
}

// Func is one concrete builtin overload.
type Func struct {
	Name   string // named builtins; empty for operators
	Symbol string // operator symbol; empty for named builtins
	Fixity opres.Fixity
	Op     Op
	Params []Param
	Result Param
}

type operatorSpec struct {
	symbol string
	fixity opres.Fixity
	prec   int
	assoc  opres.Assoc
	op     Op
	family Family
}

// Precedences. Lower binds looser.
const (
	PrecLogicalOr  = 200
	PrecLogicalAnd = 300
	PrecCompare    = 400
	PrecBitOr      = 500
	PrecBitXor     = 550
	PrecBitAnd     = 600
	PrecShift      = 700
	PrecAdditive   = 800
	PrecMultiply   = 900
)

var operatorSpecs = []operatorSpec{
	{"||", opres.Infix, PrecLogicalOr, opres.AssocLeft, OpLogicalOr, FamilyBool},
	{"&&", opres.Infix, PrecLogicalAnd, opres.AssocLeft, OpLogicalAnd, FamilyBool},
	{"==", opres.Infix, PrecCompare, opres.AssocNone, OpEq, FamilyNumeric | FamilyBool},
	{"!=", opres.Infix, PrecCompare, opres.AssocNone, OpNe, FamilyNumeric | FamilyBool},
	{"<", opres.Infix, PrecCompare, opres.AssocNone, OpLt, FamilyNumeric},
	{"<=", opres.Infix, PrecCompare, opres.AssocNone, OpLe, FamilyNumeric},
	{">", opres.Infix, PrecCompare, opres.AssocNone, OpGt, FamilyNumeric},
	{">=", opres.Infix, PrecCompare, opres.AssocNone, OpGe, FamilyNumeric},
	{"|", opres.Infix, PrecBitOr, opres.AssocLeft, OpBitOr, FamilyInteger | FamilyBool},
	{"^", opres.Infix, PrecBitXor, opres.AssocLeft, OpBitXor, FamilyInteger | FamilyBool},
	{"&", opres.Infix, PrecBitAnd, opres.AssocLeft, OpBitAnd, FamilyInteger | FamilyBool},
	{"<<", opres.Infix, PrecShift, opres.AssocLeft, OpShl, FamilyInteger},
	{">>", opres.Infix, PrecShift, opres.AssocLeft, OpShr, FamilyInteger},
	{"+", opres.Infix, PrecAdditive, opres.AssocLeft, OpAdd, FamilyNumeric},
	{"-", opres.Infix, PrecAdditive, opres.AssocLeft, OpSub, FamilyNumeric},
	{"*", opres.Infix, PrecMultiply, opres.AssocLeft, OpMul, FamilyNumeric},
	{"/", opres.Infix, PrecMultiply, opres.AssocLeft, OpDiv, FamilyNumeric},
	{"%", opres.Infix, PrecMultiply, opres.AssocLeft, OpRem, FamilyNumeric},
	{"-", opres.Prefix, 0, opres.AssocLeft, OpNeg, FamilySigned | FamilyFloat},
	{"~", opres.Prefix, 0, opres.AssocLeft, OpBitNot, FamilyInteger},
	{"!", opres.Prefix, 0, opres.AssocLeft, OpLogicalNot, FamilyBool},
}

// Operators returns fresh operator declarations for the prelude, one per
// symbol and fixity.
func Operators() []*opres.Decl {
	seen := make(map[string]bool, len(operatorSpecs))
	out := make([]*opres.Decl, 0, len(operatorSpecs))
	for _, s := range operatorSpecs {
		key := s.fixity.String() + " " + s.symbol
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, &opres.Decl{
			Symbol:     s.symbol,
			Fixity:     s.fixity,
			Precedence: s.prec,
			Assoc:      s.assoc,
		})
	}
	return out
}

var valueTypes = []platform.Builtin{
	platform.Bool, platform.Byte,
	platform.Int8, platform.Int16, platform.Int32, platform.Int64, platform.Int,
	platform.Uint8, platform.Uint16, platform.Uint32, platform.Uint64, platform.Uint,
	platform.Float32, platform.Float64,
}

// Funcs returns every builtin overload: operator implementations over each
// member of their family, then the named intrinsics.
func Funcs() []Func {
	var out []Func
	for _, s := range operatorSpecs {
		for _, b := range valueTypes {
			if !s.family.has(b) {
				continue
			}
			p := Param{Builtin: b}
			f := Func{Symbol: s.symbol, Fixity: s.fixity, Op: s.op, Result: p}
			if s.fixity == opres.Infix {
				f.Params = []Param{p, p}
			} else {
				f.Params = []Param{p}
			}
			if s.op.IsComparison() {
				f.Result = Param{Builtin: platform.Bool}
			}
			out = append(out, f)
		}
	}
	for _, b := range valueTypes {
		if FamilyInteger.has(b) {
			out = append(out, Func{Name: "popcount", Op: OpPopCount, Params: []Param{{Builtin: b}}, Result: Param{Builtin: b}})
		}
		if b.Kind() == platform.KindInt || b.Kind() == platform.KindUint {
			if b != platform.Int8 && b != platform.Uint8 {
				out = append(out, Func{Name: "bswap", Op: OpByteSwap, Params: []Param{{Builtin: b}}, Result: Param{Builtin: b}})
			}
		}
	}
	bytePtr := Param{Builtin: platform.Byte, Pointer: true}
	constBytePtr := Param{Builtin: platform.Byte, Pointer: true, Const: true}
	size := Param{Builtin: platform.Uint}
	void := Param{Builtin: platform.Void}
	out = append(out,
		Func{Name: "memcpy", Op: OpMemCopy, Params: []Param{bytePtr, constBytePtr, size}, Result: void},
		Func{Name: "memmove", Op: OpMemMove, Params: []Param{bytePtr, constBytePtr, size}, Result: void},
		Func{Name: "memset", Op: OpMemSet, Params: []Param{bytePtr, {Builtin: platform.Byte}, size}, Result: void},
	)
	return out
}
