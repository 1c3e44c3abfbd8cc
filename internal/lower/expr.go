package lower

import (
	"kestrel/internal/hir"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

// expr lowers e and returns its value, or nil when e's type is zero-sized.
func (fl *funcLowerer) expr(e *hir.Expr) *ssa.Value {
	ml := fl.ml
	switch d := e.Data.(type) {
	case hir.IntLitData:
		return &ssa.Value{Ty: ml.irType(e.Type), Repr: intRepr(d.Value, ml.bits(e.Type))}
	case hir.FloatLitData:
		return &ssa.Value{Ty: ml.irType(e.Type), Repr: ml.floatRepr(d.Value, e.Type)}
	case hir.BoolLitData:
		if d.Value {
			return &ssa.Value{Ty: "i1", Repr: "true"}
		}
		return &ssa.Value{Ty: "i1", Repr: "false"}
	case hir.NullLitData:
		return &ssa.Value{Ty: "ptr", Repr: "null"}
	case hir.StringLitData:
		return &ssa.Value{Ty: "ptr", Repr: ssa.GlobalName(ml.pool.Intern(d.Bytes))}
	case hir.FuncRefData:
		name, _ := ml.reference(d.Func)
		return &ssa.Value{Ty: "ptr", Repr: ssa.GlobalName(name)}

	case hir.CallData:
		return fl.call(e, d)
	case hir.BuiltinData:
		return fl.builtin(e, d)

	case hir.AssignData:
		dst := fl.addr(d.Target)
		v := fl.expr(d.Value)
		if v != nil {
			fl.store(*v, dst.Repr, d.Target.Type)
		}
		return v

	case hir.AddressOfData:
		p := fl.addr(d.X)
		return &p

	case hir.CastData:
		return fl.cast(e, d)
	case hir.ConvertData:
		return fl.convert(e, d)

	case hir.StructLitData:
		return fl.aggregate(e.Type, ml.aggregateOf(e.Type).index, d.Fields)
	case hir.TupleLitData:
		return fl.aggregate(e.Type, ml.aggregateOf(e.Type).index, d.Elems)
	case hir.ArrayLitData:
		index := make([]int, len(d.Elems))
		for i := range index {
			index[i] = i
		}
		return fl.aggregate(e.Type, index, d.Elems)

	case hir.SliceMemberData:
		if d.X.Category() == hir.RValue {
			s := fl.value(d.X)
			idx := 0
			if d.Len {
				idx = 1
			}
			v := fl.f.Value(ssa.Instr{Op: ssa.OpExtractValue, Ty: ml.irType(e.Type), Args: []ssa.Value{s}, Index: idx})
			return &v
		}
		return fl.load(fl.addr(e), e.Type)

	case hir.LocalData, hir.GlobalData, hir.DerefData, hir.MaterializeData, hir.FieldData, hir.IndexData:
		// storage read outside an explicit lvalue-to-rvalue node
		return fl.load(fl.addr(e), e.Type)
	}
	invariant("%s: unexpected expression %s", fl.fn.QualifiedName(), e.Kind)
	return nil
}

// value is expr for operands that must carry a value.
func (fl *funcLowerer) value(e *hir.Expr) ssa.Value {
	v := fl.expr(e)
	if v == nil {
		invariant("%s: %s of type %s has no value", fl.fn.QualifiedName(), e.Kind, fl.ml.types.TypeString(e.Type))
	}
	return *v
}

// addr returns the address of the storage e denotes. An rvalue is first
// spilled into a fresh stack slot.
func (fl *funcLowerer) addr(e *hir.Expr) ssa.Value {
	ml := fl.ml
	switch d := e.Data.(type) {
	case hir.LocalData:
		return ssa.Value{Ty: "ptr", Repr: fl.slot(d.Var)}
	case hir.GlobalData:
		return ml.globalRef(d.Global)
	case hir.DerefData:
		return fl.value(d.X)
	case hir.MaterializeData:
		return fl.spill(d.X)

	case hir.FieldData:
		base := fl.addr(d.X)
		l := ml.layoutOf(d.X.Type)
		if d.Index < 0 || d.Index >= len(l.FieldOffsets) {
			invariant("%s: field %d out of range", fl.fn.QualifiedName(), d.Index)
		}
		return fl.offset(base, l.FieldOffsets[d.Index])

	case hir.IndexData:
		var base ssa.Value
		var elem types.TypeID
		if d.Slice {
			s := fl.value(d.X)
			base = fl.f.Value(ssa.Instr{Op: ssa.OpExtractValue, Ty: "ptr", Args: []ssa.Value{s}, Index: 0})
			elem = ml.lookup(d.X.Type).Elem
		} else {
			base = fl.addr(d.X)
			elem = ml.lookup(d.X.Type).Elem
		}
		idx := fl.index(d.Index)
		return fl.f.Value(ssa.Instr{Op: ssa.OpElemAddr, Ty: ml.irType(elem), Args: []ssa.Value{base, idx}})

	case hir.SliceMemberData:
		base := fl.addr(d.X)
		if d.Len {
			return fl.offset(base, ml.arch.PtrSize)
		}
		return base
	}
	if e.Category() == hir.RValue {
		return fl.spill(e)
	}
	invariant("%s: cannot address %s", fl.fn.QualifiedName(), e.Kind)
	return ssa.Value{}
}

// spill stores an rvalue in a fresh stack slot and returns the slot.
func (fl *funcLowerer) spill(e *hir.Expr) ssa.Value {
	ml := fl.ml
	slot := fl.f.Alloca(ml.irType(e.Type), ml.layoutOf(e.Type).Align)
	if v := fl.expr(e); v != nil {
		fl.store(*v, slot, e.Type)
	}
	return ssa.Value{Ty: "ptr", Repr: slot}
}

func (fl *funcLowerer) offset(base ssa.Value, off int) ssa.Value {
	if off == 0 {
		return base
	}
	return fl.f.Value(ssa.Instr{Op: ssa.OpFieldAddr, Ty: "ptr", Args: []ssa.Value{base}, Index: off})
}

// index converts an array index to the pointer-sized integer type.
func (fl *funcLowerer) index(e *hir.Expr) ssa.Value {
	ml := fl.ml
	ip := ml.intPtr()
	if lit, ok := e.Data.(hir.IntLitData); ok {
		return ssa.Value{Ty: ip, Repr: intRepr(lit.Value, ml.arch.PtrBits())}
	}
	v := fl.value(e)
	from, to := ml.bits(e.Type), ml.arch.PtrBits()
	switch {
	case from == to:
		return v
	case from > to:
		return fl.f.Value(ssa.Instr{Op: ssa.OpCast, Opcode: "trunc", Ty: ip, Args: []ssa.Value{v}})
	case ml.isSigned(e.Type):
		return fl.f.Value(ssa.Instr{Op: ssa.OpCast, Opcode: "sext", Ty: ip, Args: []ssa.Value{v}})
	default:
		return fl.f.Value(ssa.Instr{Op: ssa.OpCast, Opcode: "zext", Ty: ip, Args: []ssa.Value{v}})
	}
}

// load reads t from p; zero-sized types read nothing.
func (fl *funcLowerer) load(p ssa.Value, t types.TypeID) *ssa.Value {
	ml := fl.ml
	if ml.zero(t) {
		return nil
	}
	v := fl.f.Value(ssa.Instr{Op: ssa.OpLoad, Ty: ml.irType(t), Args: []ssa.Value{p}, Align: ml.layoutOf(t).Align})
	return &v
}

func (fl *funcLowerer) store(v ssa.Value, slot string, t types.TypeID) {
	ml := fl.ml
	if ml.zero(t) {
		return
	}
	fl.f.Emit(ssa.Instr{Op: ssa.OpStore, Args: []ssa.Value{v, {Ty: "ptr", Repr: slot}}, Align: ml.layoutOf(t).Align})
}

// aggregate builds a struct, tuple or array value element by element;
// index maps element positions to IR indices. nil elements are zero.
func (fl *funcLowerer) aggregate(t types.TypeID, index []int, elems []*hir.Expr) *ssa.Value {
	ml := fl.ml
	if ml.zero(t) {
		for _, x := range elems {
			if x != nil {
				fl.expr(x)
			}
		}
		return nil
	}
	ty := ml.irType(t)
	agg := ssa.Value{Ty: ty, Repr: "zeroinitializer"}
	if len(elems) > 0 && !hasNil(elems) {
		agg.Repr = "undef"
	}
	for i, x := range elems {
		if x == nil {
			continue
		}
		v := fl.expr(x)
		if v == nil {
			continue
		}
		agg = fl.f.Value(ssa.Instr{Op: ssa.OpInsertValue, Args: []ssa.Value{agg, *v}, Index: index[i]})
	}
	return &agg
}

func hasNil(list []*hir.Expr) bool {
	for _, x := range list {
		if x == nil {
			return true
		}
	}
	return false
}
