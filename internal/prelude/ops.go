// Package prelude describes the builtin operators and functions every
// module sees: their declarations, precedences and concrete overloads.
package prelude

import "fmt"

// Op is the enumerated identity of a builtin operation. Lowering selects an
// instruction or intrinsic from it without further resolution.
type Op uint8

const (
	OpInvalid Op = iota

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpBitNot

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpLogicalAnd
	OpLogicalOr
	OpLogicalNot

	OpPopCount
	OpByteSwap
	OpMemCopy
	OpMemMove
	OpMemSet
)

var opNames = map[Op]string{
	OpInvalid:    "invalid",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpDiv:        "div",
	OpRem:        "rem",
	OpNeg:        "neg",
	OpBitAnd:     "bitand",
	OpBitOr:      "bitor",
	OpBitXor:     "bitxor",
	OpShl:        "shl",
	OpShr:        "shr",
	OpBitNot:     "bitnot",
	OpEq:         "eq",
	OpNe:         "ne",
	OpLt:         "lt",
	OpLe:         "le",
	OpGt:         "gt",
	OpGe:         "ge",
	OpLogicalAnd: "and",
	OpLogicalOr:  "or",
	OpLogicalNot: "not",
	OpPopCount:   "popcount",
	OpByteSwap:   "bswap",
	OpMemCopy:    "memcpy",
	OpMemMove:    "memmove",
	OpMemSet:     "memset",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", op)
}

// IsComparison reports ops producing bool from two equal operands.
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// ShortCircuit reports ops whose right operand is evaluated conditionally.
func (op Op) ShortCircuit() bool {
	return op == OpLogicalAnd || op == OpLogicalOr
}
