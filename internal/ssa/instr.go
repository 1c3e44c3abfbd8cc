// Package ssa models the textual register IR handed to the native backend
// and prints it in LLVM assembly syntax.
package ssa

import (
	"fmt"
	"strconv"
	"strings"
)

// Op enumerates instruction kinds.
type Op uint8

const (
	OpLabel Op = iota
	OpAlloca
	OpLoad
	OpStore
	// OpFieldAddr is byte-offset addressing: base + Index bytes.
	OpFieldAddr
	// OpElemAddr is scaled addressing: base + Args[1] * sizeof(Ty).
	OpElemAddr
	OpBinary
	OpFNeg
	OpICmp
	OpFCmp
	OpCast
	OpCall
	OpInsertValue
	OpExtractValue
	OpBr
	OpCondBr
	OpRet
	OpUnreachable
)

func (op Op) String() string {
	switch op {
	case OpLabel:
		return "label"
	case OpAlloca:
		return "alloca"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpFieldAddr, OpElemAddr:
		return "getelementptr"
	case OpBinary:
		return "binary"
	case OpFNeg:
		return "fneg"
	case OpICmp:
		return "icmp"
	case OpFCmp:
		return "fcmp"
	case OpCast:
		return "cast"
	case OpCall:
		return "call"
	case OpInsertValue:
		return "insertvalue"
	case OpExtractValue:
		return "extractvalue"
	case OpBr, OpCondBr:
		return "br"
	case OpRet:
		return "ret"
	case OpUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// IsTerminator reports instructions that end a basic block.
func (op Op) IsTerminator() bool {
	switch op {
	case OpBr, OpCondBr, OpRet, OpUnreachable:
		return true
	}
	return false
}

// Value is a typed operand: a register, a global, or a constant literal.
type Value struct {
	Ty   string
	Repr string
}

func (v Value) String() string {
	return v.Ty + " " + v.Repr
}

// Instr is one IR instruction. Which fields matter depends on Op.
type Instr struct {
	Op     Op
	Result string // destination register, empty for bare instructions
	Ty     string // result type; element type for addressing; target type for casts
	Opcode string // binary opcode, compare predicate or cast opcode
	Args   []Value
	Callee string // call target
	Sig    string // explicit callee function type for variadic calls
	Label  string // label name, branch target, true target
	Else   string // false target
	Index  int    // aggregate index or byte offset
	Align  int
}

func (in Instr) String() string {
	var sb strings.Builder
	if in.Result != "" {
		sb.WriteString(in.Result)
		sb.WriteString(" = ")
	}
	switch in.Op {
	case OpLabel:
		return in.Label + ":"
	case OpAlloca:
		fmt.Fprintf(&sb, "alloca %s", in.Ty)
		writeAlign(&sb, in.Align)
	case OpLoad:
		fmt.Fprintf(&sb, "load %s, %s", in.Ty, in.Args[0])
		writeAlign(&sb, in.Align)
	case OpStore:
		fmt.Fprintf(&sb, "store %s, %s", in.Args[0], in.Args[1])
		writeAlign(&sb, in.Align)
	case OpFieldAddr:
		fmt.Fprintf(&sb, "getelementptr inbounds i8, %s, i64 %d", in.Args[0], in.Index)
	case OpElemAddr:
		fmt.Fprintf(&sb, "getelementptr inbounds %s, %s, %s", in.Ty, in.Args[0], in.Args[1])
	case OpBinary:
		fmt.Fprintf(&sb, "%s %s %s, %s", in.Opcode, in.Ty, in.Args[0].Repr, in.Args[1].Repr)
	case OpFNeg:
		fmt.Fprintf(&sb, "fneg %s", in.Args[0])
	case OpICmp, OpFCmp:
		fmt.Fprintf(&sb, "%s %s %s %s, %s", in.Op, in.Opcode, in.Args[0].Ty, in.Args[0].Repr, in.Args[1].Repr)
	case OpCast:
		fmt.Fprintf(&sb, "%s %s to %s", in.Opcode, in.Args[0], in.Ty)
	case OpCall:
		sb.WriteString("call ")
		if in.Sig != "" {
			sb.WriteString(in.Sig)
		} else {
			sb.WriteString(in.Ty)
		}
		sb.WriteByte(' ')
		sb.WriteString(in.Callee)
		sb.WriteByte('(')
		for i, a := range in.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte(')')
	case OpInsertValue:
		fmt.Fprintf(&sb, "insertvalue %s, %s, %d", in.Args[0], in.Args[1], in.Index)
	case OpExtractValue:
		fmt.Fprintf(&sb, "extractvalue %s, %d", in.Args[0], in.Index)
	case OpBr:
		fmt.Fprintf(&sb, "br label %%%s", in.Label)
	case OpCondBr:
		fmt.Fprintf(&sb, "br %s, label %%%s, label %%%s", in.Args[0], in.Label, in.Else)
	case OpRet:
		if len(in.Args) == 0 {
			sb.WriteString("ret void")
		} else {
			fmt.Fprintf(&sb, "ret %s", in.Args[0])
		}
	case OpUnreachable:
		sb.WriteString("unreachable")
	default:
		panic(fmt.Errorf("ssa: cannot print %s", in.Op))
	}
	return sb.String()
}

// ResultType is the IR type of the value an instruction defines.
func (in Instr) ResultType() string {
	switch in.Op {
	case OpAlloca, OpFieldAddr, OpElemAddr:
		return "ptr"
	case OpICmp, OpFCmp:
		return "i1"
	case OpFNeg, OpInsertValue:
		return in.Args[0].Ty
	default:
		return in.Ty
	}
}

func writeAlign(sb *strings.Builder, align int) {
	if align > 0 {
		sb.WriteString(", align ")
		sb.WriteString(strconv.Itoa(align))
	}
}
