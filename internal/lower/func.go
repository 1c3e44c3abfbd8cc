package lower

import (
	"kestrel/internal/hir"
	"kestrel/internal/ssa"
)

type loopTargets struct {
	brk, cont string
}

// funcLowerer emits one function body.
type funcLowerer struct {
	ml     *moduleLowerer
	fn     *hir.Func
	f      *ssa.Func
	slots  map[*hir.Var]string
	labels map[*hir.Label]string
	loops  []loopTargets
}

func (ml *moduleLowerer) lowerFunc(fn *hir.Func) *ssa.Func {
	name := ml.funcName(fn)
	fl := &funcLowerer{
		ml:     ml,
		fn:     fn,
		f:      ssa.NewFunc(name, ml.retType(fn), ml.internalFunc(fn, name)),
		slots:  make(map[*hir.Var]string, len(fn.Params)+len(fn.Locals)),
		labels: make(map[*hir.Label]string, len(fn.Labels)),
	}
	// Parameters are spilled so they are addressable like any local.
	for _, p := range fn.Params {
		ty := ml.irType(p.Type)
		if ml.zero(p.Type) {
			fl.slots[p] = fl.f.Alloca(ty, ml.layoutOf(p.Type).Align)
			continue
		}
		reg := fl.f.AddParam(ty)
		slot := fl.f.Alloca(ty, ml.layoutOf(p.Type).Align)
		fl.slots[p] = slot
		fl.store(ssa.Value{Ty: ty, Repr: reg}, slot, p.Type)
	}
	for _, v := range fn.Locals {
		fl.slots[v] = fl.f.Alloca(ml.irType(v.Type), ml.layoutOf(v.Type).Align)
	}
	fl.stmts(fn.Body)
	if !fl.f.Terminated() {
		if ml.zero(fn.Ret) {
			fl.f.Ret(nil)
		} else {
			// validation rejected bodies that can fall off the end
			fl.f.Unreachable()
		}
	}
	return fl.f
}

func (fl *funcLowerer) label(l *hir.Label) string {
	if name, ok := fl.labels[l]; ok {
		return name
	}
	name := fl.f.NewLabel()
	fl.labels[l] = name
	return name
}

func (fl *funcLowerer) slot(v *hir.Var) string {
	s, ok := fl.slots[v]
	if !ok {
		invariant("%s: variable %s has no storage", fl.fn.QualifiedName(), v.Name)
	}
	return s
}

func (fl *funcLowerer) stmts(list []*hir.Stmt) {
	for _, s := range list {
		fl.stmt(s)
	}
}

func (fl *funcLowerer) stmt(s *hir.Stmt) {
	switch d := s.Data.(type) {
	case hir.BlockData:
		fl.stmts(d.Body)

	case hir.VarData:
		slot := fl.slot(d.Var)
		if d.Init != nil {
			if v := fl.expr(d.Init); v != nil {
				fl.store(*v, slot, d.Var.Type)
			}
			return
		}
		if !fl.ml.zero(d.Var.Type) {
			fl.store(ssa.Value{Ty: fl.ml.irType(d.Var.Type), Repr: "zeroinitializer"}, slot, d.Var.Type)
		}

	case hir.ExprStmtData:
		fl.expr(d.X)

	case hir.ReturnData:
		var v *ssa.Value
		if d.Value != nil {
			v = fl.expr(d.Value)
		}
		fl.f.Ret(v)

	case hir.IfData:
		cond := fl.value(d.Cond)
		then, end := fl.f.NewLabel(), fl.f.NewLabel()
		els := end
		if len(d.Else) > 0 {
			els = fl.f.NewLabel()
		}
		fl.f.CondBr(cond, then, els)
		fl.f.PlaceLabel(then)
		fl.stmts(d.Then)
		if len(d.Else) > 0 {
			fl.f.Br(end)
			fl.f.PlaceLabel(els)
			fl.stmts(d.Else)
		}
		fl.f.PlaceLabel(end)

	case hir.WhileData:
		// loop { if !cond { goto end } body }
		head, body, end := fl.f.NewLabel(), fl.f.NewLabel(), fl.f.NewLabel()
		fl.f.PlaceLabel(head)
		cond := fl.value(d.Cond)
		neg := fl.f.Value(ssa.Instr{Op: ssa.OpBinary, Opcode: "xor", Ty: "i1", Args: []ssa.Value{cond, {Ty: "i1", Repr: "true"}}})
		fl.f.CondBr(neg, end, body)
		fl.f.PlaceLabel(body)
		fl.loop(d.Body, head, end)
		fl.f.PlaceLabel(end)

	case hir.LoopData:
		head, end := fl.f.NewLabel(), fl.f.NewLabel()
		fl.f.PlaceLabel(head)
		fl.loop(d.Body, head, end)
		fl.f.PlaceLabel(end)

	case hir.BreakData:
		fl.f.Br(fl.innermost().brk)

	case hir.ContinueData:
		fl.f.Br(fl.innermost().cont)

	case hir.GotoData:
		fl.f.Br(fl.label(d.Label))

	case hir.LabelData:
		fl.f.PlaceLabel(fl.label(d.Label))

	default:
		invariant("%s: unexpected statement %s", fl.fn.QualifiedName(), s.Kind)
	}
}

// loop lowers body and jumps back to head; break leaves to end.
func (fl *funcLowerer) loop(body []*hir.Stmt, head, end string) {
	fl.loops = append(fl.loops, loopTargets{brk: end, cont: head})
	fl.stmts(body)
	fl.loops = fl.loops[:len(fl.loops)-1]
	fl.f.Br(head)
}

func (fl *funcLowerer) innermost() loopTargets {
	if len(fl.loops) == 0 {
		invariant("%s: break or continue outside a loop", fl.fn.QualifiedName())
	}
	return fl.loops[len(fl.loops)-1]
}
