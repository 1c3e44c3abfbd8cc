package lower

import (
	"fmt"
	"strconv"

	"kestrel/internal/hir"
	"kestrel/internal/prelude"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Flavors index opcode choices: signed, unsigned, float.
const (
	flavorSigned = iota
	flavorUnsigned
	flavorFloat
)

// arithOpcode is the binary instruction for op; "" when op is not
// arithmetic or has no form for the flavor.
func arithOpcode(op prelude.Op, flavor int) string {
	var forms [3]string
	switch op {
	case prelude.OpAdd:
		forms = [3]string{"add", "add", "fadd"}
	case prelude.OpSub:
		forms = [3]string{"sub", "sub", "fsub"}
	case prelude.OpMul:
		forms = [3]string{"mul", "mul", "fmul"}
	case prelude.OpDiv:
		forms = [3]string{"sdiv", "udiv", "fdiv"}
	case prelude.OpRem:
		forms = [3]string{"srem", "urem", "frem"}
	case prelude.OpBitAnd:
		forms = [3]string{"and", "and", ""}
	case prelude.OpBitOr:
		forms = [3]string{"or", "or", ""}
	case prelude.OpBitXor:
		forms = [3]string{"xor", "xor", ""}
	case prelude.OpShl:
		forms = [3]string{"shl", "shl", ""}
	case prelude.OpShr:
		forms = [3]string{"ashr", "lshr", ""}
	}
	return forms[flavor]
}

func isArith(op prelude.Op) bool {
	return arithOpcode(op, flavorSigned) != ""
}

// comparePredicate is the icmp/fcmp predicate for op. Float comparisons are
// ordered except !=, which must hold for NaN.
func comparePredicate(op prelude.Op, flavor int) string {
	var forms [3]string
	switch op {
	case prelude.OpEq:
		forms = [3]string{"eq", "eq", "oeq"}
	case prelude.OpNe:
		forms = [3]string{"ne", "ne", "une"}
	case prelude.OpLt:
		forms = [3]string{"slt", "ult", "olt"}
	case prelude.OpLe:
		forms = [3]string{"sle", "ule", "ole"}
	case prelude.OpGt:
		forms = [3]string{"sgt", "ugt", "ogt"}
	case prelude.OpGe:
		forms = [3]string{"sge", "uge", "oge"}
	}
	return forms[flavor]
}

func (ml *moduleLowerer) flavor(t types.TypeID) int {
	switch {
	case ml.isFloat(t):
		return flavorFloat
	case ml.isSigned(t):
		return flavorSigned
	}
	return flavorUnsigned
}

func (fl *funcLowerer) builtin(e *hir.Expr, d hir.BuiltinData) *ssa.Value {
	ml := fl.ml
	if d.Op.ShortCircuit() {
		return fl.shortCircuit(d.Op, d.Args[0], d.Args[1])
	}
	args := make([]ssa.Value, len(d.Args))
	for i, a := range d.Args {
		args[i] = fl.value(a)
	}
	operand := d.Args[0].Type
	var out ssa.Value
	switch op := d.Op; {
	case isArith(op):
		opcode := arithOpcode(op, ml.flavor(operand))
		if opcode == "" {
			invariant("%s: %s on %s", fl.fn.QualifiedName(), op, ml.types.TypeString(operand))
		}
		out = fl.f.Value(ssa.Instr{Op: ssa.OpBinary, Opcode: opcode, Ty: args[0].Ty, Args: args})

	case op.IsComparison():
		// pointers compare unsigned
		f := ml.flavor(operand)
		in := ssa.Instr{Op: ssa.OpICmp, Opcode: comparePredicate(op, f), Args: args}
		if f == flavorFloat {
			in.Op = ssa.OpFCmp
		}
		out = fl.f.Value(in)

	case op == prelude.OpNeg:
		if ml.isFloat(operand) {
			out = fl.f.Value(ssa.Instr{Op: ssa.OpFNeg, Args: args})
			break
		}
		zero := ssa.Value{Ty: args[0].Ty, Repr: "0"}
		out = fl.f.Value(ssa.Instr{Op: ssa.OpBinary, Opcode: "sub", Ty: args[0].Ty, Args: []ssa.Value{zero, args[0]}})

	case op == prelude.OpBitNot || op == prelude.OpLogicalNot:
		ones := ssa.Value{Ty: args[0].Ty, Repr: "-1"}
		if args[0].Ty == "i1" {
			ones.Repr = "true"
		}
		out = fl.f.Value(ssa.Instr{Op: ssa.OpBinary, Opcode: "xor", Ty: args[0].Ty, Args: []ssa.Value{args[0], ones}})

	case op == prelude.OpPopCount || op == prelude.OpByteSwap:
		name := "llvm.ctpop." + args[0].Ty
		if op == prelude.OpByteSwap {
			name = "llvm.bswap." + args[0].Ty
		}
		ml.declare(ssa.Decl{Name: name, Ret: args[0].Ty, Params: []string{args[0].Ty}})
		out = fl.f.Value(ssa.Instr{Op: ssa.OpCall, Ty: args[0].Ty, Callee: ssa.GlobalName(name), Args: args})

	case op == prelude.OpMemCopy || op == prelude.OpMemMove || op == prelude.OpMemSet:
		fl.memIntrinsic(op, args)
		return nil

	default:
		invariant("%s: unexpected builtin %s", fl.fn.QualifiedName(), op)
	}
	return &out
}

// memIntrinsic calls llvm.memcpy/memmove/memset with a non-volatile flag.
func (fl *funcLowerer) memIntrinsic(op prelude.Op, args []ssa.Value) {
	size := args[2].Ty
	var name string
	var params []string
	switch op {
	case prelude.OpMemCopy:
		name, params = "llvm.memcpy.p0.p0."+size, []string{"ptr", "ptr", size, "i1"}
	case prelude.OpMemMove:
		name, params = "llvm.memmove.p0.p0."+size, []string{"ptr", "ptr", size, "i1"}
	default:
		name, params = "llvm.memset.p0."+size, []string{"ptr", "i8", size, "i1"}
	}
	fl.ml.declare(ssa.Decl{Name: name, Ret: "void", Params: params})
	fl.f.Emit(ssa.Instr{
		Op:     ssa.OpCall,
		Ty:     "void",
		Callee: ssa.GlobalName(name),
		Args:   append(args, ssa.Value{Ty: "i1", Repr: "false"}),
	})
}

// shortCircuit evaluates rhs only when lhs does not decide the result. The
// running result lives in a stack slot, so no phi is needed.
func (fl *funcLowerer) shortCircuit(op prelude.Op, lhs, rhs *hir.Expr) *ssa.Value {
	f := fl.f
	slot := f.Alloca("i1", 1)
	l := fl.value(lhs)
	f.Emit(ssa.Instr{Op: ssa.OpStore, Args: []ssa.Value{l, {Ty: "ptr", Repr: slot}}, Align: 1})
	more, done := f.NewLabel(), f.NewLabel()
	switch op {
	case prelude.OpLogicalAnd:
		f.CondBr(l, more, done)
	case prelude.OpLogicalOr:
		f.CondBr(l, done, more)
	default:
		panic(fmt.Errorf("lower: %s does not short-circuit", op))
	}
	f.PlaceLabel(more)
	r := fl.value(rhs)
	f.Emit(ssa.Instr{Op: ssa.OpStore, Args: []ssa.Value{r, {Ty: "ptr", Repr: slot}}, Align: 1})
	f.PlaceLabel(done)
	v := f.Value(ssa.Instr{Op: ssa.OpLoad, Ty: "i1", Args: []ssa.Value{{Ty: "ptr", Repr: slot}}, Align: 1})
	return &v
}
