package ssa

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Param is one formal parameter of a defined function.
type Param struct {
	Ty   string
	Name string
}

// Func is a function definition under construction.
//
// Registers (%rN) and labels (LN) share one counter that only grows, so no
// name is ever reused within a function.
type Func struct {
	Name     string
	RetTy    string
	Params   []Param
	Internal bool

	Prologue []Instr // allocas, printed right after entry:
	Body     []Instr

	next       uint32
	terminated bool
}

// NewFunc starts a function. The entry block is open.
func NewFunc(name, ret string, internal bool) *Func {
	return &Func{Name: name, RetTy: ret, Internal: internal}
}

func (f *Func) nextID() string {
	id := strconv.FormatUint(uint64(f.next), 10)
	if f.next == ^uint32(0) {
		panic(fmt.Errorf("ssa: %s: counter overflow", f.Name))
	}
	f.next++
	return id
}

// NewReg allocates a fresh register name.
func (f *Func) NewReg() string {
	return "%r" + f.nextID()
}

// NewLabel allocates a fresh label name.
func (f *Func) NewLabel() string {
	return "L" + f.nextID()
}

// AddParam declares a parameter and returns its register.
func (f *Func) AddParam(ty string) string {
	reg := f.NewReg()
	f.Params = append(f.Params, Param{Ty: ty, Name: reg})
	return reg
}

// Alloca reserves stack storage in the prologue and returns its address.
func (f *Func) Alloca(ty string, align int) string {
	reg := f.NewReg()
	f.Prologue = append(f.Prologue, Instr{Op: OpAlloca, Result: reg, Ty: ty, Align: align})
	return reg
}

// Terminated reports whether the current block already ended.
func (f *Func) Terminated() bool {
	return f.terminated
}

// Emit appends an instruction. Code following a terminator opens a fresh,
// unreachable label so every block stays well formed.
func (f *Func) Emit(in Instr) {
	if in.Op == OpLabel {
		f.PlaceLabel(in.Label)
		return
	}
	if f.terminated {
		f.PlaceLabel(f.NewLabel())
	}
	f.Body = append(f.Body, in)
	f.terminated = in.Op.IsTerminator()
}

// PlaceLabel starts block name. If control could fall through into it, an
// explicit branch is inserted first; after a terminator none is added.
func (f *Func) PlaceLabel(name string) {
	if !f.terminated {
		f.Body = append(f.Body, Instr{Op: OpBr, Label: name})
	}
	f.Body = append(f.Body, Instr{Op: OpLabel, Label: name})
	f.terminated = false
}

// Br jumps to target unless the block already ended.
func (f *Func) Br(target string) {
	if f.terminated {
		return
	}
	f.Emit(Instr{Op: OpBr, Label: target})
}

// CondBr branches on an i1 value.
func (f *Func) CondBr(cond Value, then, els string) {
	f.Emit(Instr{Op: OpCondBr, Args: []Value{cond}, Label: then, Else: els})
}

// Ret returns v, or void when v is nil.
func (f *Func) Ret(v *Value) {
	if v == nil {
		f.Emit(Instr{Op: OpRet})
		return
	}
	f.Emit(Instr{Op: OpRet, Args: []Value{*v}})
}

// Unreachable marks a point control never reaches.
func (f *Func) Unreachable() {
	f.Emit(Instr{Op: OpUnreachable})
}

// Value emits a value-producing instruction into a fresh register.
func (f *Func) Value(in Instr) Value {
	in.Result = f.NewReg()
	f.Emit(in)
	return Value{Ty: in.ResultType(), Repr: in.Result}
}

// Len is the number of body instructions, labels included.
func (f *Func) Len() int {
	return len(f.Body)
}

// Counter is the next unallocated register/label number.
func (f *Func) Counter() int {
	n, err := safecast.Conv[int](f.next)
	if err != nil {
		panic(fmt.Errorf("ssa counter overflow: %w", err))
	}
	return n
}
