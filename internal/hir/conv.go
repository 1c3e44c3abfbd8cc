package hir

import "fmt"

// ConvKind enumerates implicit conversions. Every change of category,
// width, nullability or pointer shape that validation accepts without a
// written cast appears as one of these.
type ConvKind uint8

const (
	ConvLValueToRValue ConvKind = iota
	// *[N]T -> *T
	ConvArrayPointerToPointer
	// *[N]T -> []T
	ConvArrayPointerToSlice
	// []T -> []byte
	ConvSliceToByteSlice
	// *T -> *byte
	ConvPointerToBytePointer
	// *T -> ?*T
	ConvNonNullableToNullable
	// integer or float widening
	ConvWiden
	// null -> ?*T
	ConvNullToPointer
	// T -> const T and *T -> *const T; qualifier only
	ConvAddConst
)

var convNames = [...]string{
	ConvLValueToRValue:        "lvalue-to-rvalue",
	ConvArrayPointerToPointer: "array-ptr-to-ptr",
	ConvArrayPointerToSlice:   "array-ptr-to-slice",
	ConvSliceToByteSlice:      "slice-to-byte-slice",
	ConvPointerToBytePointer:  "ptr-to-byte-ptr",
	ConvNonNullableToNullable: "to-nullable",
	ConvWiden:                 "widen",
	ConvNullToPointer:         "null-to-ptr",
	ConvAddConst:              "add-const",
}

func (k ConvKind) String() string {
	if int(k) < len(convNames) {
		return convNames[k]
	}
	return fmt.Sprintf("ConvKind(%d)", k)
}

// CastOp is the machine-level operation an explicit cast performs.
type CastOp uint8

const (
	// CastNoop keeps the bit pattern (sign casts, const-only pointer casts).
	CastNoop CastOp = iota
	CastSExt
	CastZExt
	CastFPExt
	CastTrunc
	CastFPTrunc
	CastPtrToInt
	CastIntToPtr
	CastSIToFP
	CastUIToFP
	CastFPToSI
	CastFPToUI
)

var castNames = [...]string{
	CastNoop:     "noop",
	CastSExt:     "sext",
	CastZExt:     "zext",
	CastFPExt:    "fpext",
	CastTrunc:    "trunc",
	CastFPTrunc:  "fptrunc",
	CastPtrToInt: "ptrtoint",
	CastIntToPtr: "inttoptr",
	CastSIToFP:   "sitofp",
	CastUIToFP:   "uitofp",
	CastFPToSI:   "fptosi",
	CastFPToUI:   "fptoui",
}

// String is also the IR opcode, except for CastNoop.
func (op CastOp) String() string {
	if int(op) < len(castNames) {
		return castNames[op]
	}
	return fmt.Sprintf("CastOp(%d)", op)
}
