package lower

import (
	"kestrel/internal/hir"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

func (fl *funcLowerer) call(e *hir.Expr, d hir.CallData) *ssa.Value {
	ml := fl.ml
	in := ssa.Instr{Op: ssa.OpCall}
	var variadic bool
	var sig ssa.Decl
	if d.Func != nil {
		name, decl := ml.reference(d.Func)
		in.Callee = ssa.GlobalName(name)
		variadic, sig = d.Func.Variadic, decl
	} else {
		callee := fl.value(d.Callee)
		in.Callee = callee.Repr
		info, ok := ml.types.FnInfo(ml.unqualified(d.Callee.Type))
		if !ok {
			invariant("%s: call through %s", fl.fn.QualifiedName(), ml.types.TypeString(d.Callee.Type))
		}
		variadic, sig = info.Variadic, ml.fnSignature(info)
	}
	for _, a := range d.Args {
		if v := fl.expr(a); v != nil {
			in.Args = append(in.Args, *v)
		}
	}
	in.Ty = sig.Ret
	if variadic {
		in.Sig = sig.FnType()
	}
	if in.Ty == "void" {
		fl.f.Emit(in)
		return nil
	}
	v := fl.f.Value(in)
	return &v
}

// fnSignature is the IR signature of a function type.
func (ml *moduleLowerer) fnSignature(info *types.FnInfo) ssa.Decl {
	d := ssa.Decl{Ret: "void", Variadic: info.Variadic}
	if !ml.zero(info.Result) {
		d.Ret = ml.irType(info.Result)
	}
	for _, p := range info.Params {
		if !ml.zero(p) {
			d.Params = append(d.Params, ml.irType(p))
		}
	}
	return d
}

func (fl *funcLowerer) cast(e *hir.Expr, d hir.CastData) *ssa.Value {
	ml := fl.ml
	v := fl.value(d.X)
	ty := ml.irType(e.Type)
	if d.Op == hir.CastNoop {
		return &ssa.Value{Ty: ty, Repr: v.Repr}
	}
	out := fl.f.Value(ssa.Instr{Op: ssa.OpCast, Opcode: d.Op.String(), Ty: ty, Args: []ssa.Value{v}})
	return &out
}

func (fl *funcLowerer) convert(e *hir.Expr, d hir.ConvertData) *ssa.Value {
	ml := fl.ml
	switch d.Conv {
	case hir.ConvLValueToRValue:
		return fl.load(fl.addr(d.X), e.Type)

	case hir.ConvAddConst, hir.ConvArrayPointerToPointer, hir.ConvPointerToBytePointer, hir.ConvNonNullableToNullable:
		// same representation
		return fl.expr(d.X)

	case hir.ConvNullToPointer:
		return &ssa.Value{Ty: "ptr", Repr: "null"}

	case hir.ConvArrayPointerToSlice:
		p := fl.value(d.X)
		n := ssa.Value{Ty: ml.intPtr(), Repr: ml.arrayLen(d.X.Type)}
		return fl.slice(p, n)

	case hir.ConvSliceToByteSlice:
		s := fl.value(d.X)
		size := ml.layoutOf(ml.lookup(d.X.Type).Elem).Size
		if size == 1 {
			return &s
		}
		p := fl.f.Value(ssa.Instr{Op: ssa.OpExtractValue, Ty: "ptr", Args: []ssa.Value{s}, Index: 0})
		n := fl.f.Value(ssa.Instr{Op: ssa.OpExtractValue, Ty: ml.intPtr(), Args: []ssa.Value{s}, Index: 1})
		n = fl.f.Value(ssa.Instr{Op: ssa.OpBinary, Opcode: "mul", Ty: ml.intPtr(), Args: []ssa.Value{n, {Ty: ml.intPtr(), Repr: itoa(size)}}})
		return fl.slice(p, n)

	case hir.ConvWiden:
		v := fl.value(d.X)
		ty := ml.irType(e.Type)
		if ty == v.Ty {
			return &v
		}
		op := "zext"
		switch {
		case ml.isFloat(d.X.Type):
			op = "fpext"
		case ml.isSigned(d.X.Type):
			op = "sext"
		}
		out := fl.f.Value(ssa.Instr{Op: ssa.OpCast, Opcode: op, Ty: ty, Args: []ssa.Value{v}})
		return &out
	}
	invariant("%s: unexpected conversion %s", fl.fn.QualifiedName(), d.Conv)
	return nil
}

// slice builds the two-element slice value from a pointer and a length.
func (fl *funcLowerer) slice(p, n ssa.Value) *ssa.Value {
	s := ssa.Value{Ty: fl.ml.sliceType(), Repr: "undef"}
	s = fl.f.Value(ssa.Instr{Op: ssa.OpInsertValue, Args: []ssa.Value{s, p}, Index: 0})
	s = fl.f.Value(ssa.Instr{Op: ssa.OpInsertValue, Args: []ssa.Value{s, n}, Index: 1})
	return &s
}
