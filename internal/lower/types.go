package lower

import (
	"fmt"
	"strings"

	"kestrel/internal/platform"
	"kestrel/internal/ssa"
	"kestrel/internal/types"
)

// Lowering never interns new types: modules are lowered concurrently over
// one interner. Qualifiers are stripped by walking descriptors instead.

func (ml *moduleLowerer) lookup(t types.TypeID) types.Type {
	tt, ok := ml.types.Lookup(t)
	for ok && tt.Kind == types.KindConst {
		tt, ok = ml.types.Lookup(tt.Elem)
	}
	if !ok {
		invariant("unknown type %d", t)
	}
	return tt
}

// unqualified strips top-level const without interning.
func (ml *moduleLowerer) unqualified(t types.TypeID) types.TypeID {
	for {
		tt, ok := ml.types.Lookup(t)
		if !ok || tt.Kind != types.KindConst {
			return t
		}
		t = tt.Elem
	}
}

// irType renders the IR spelling of t.
func (ml *moduleLowerer) irType(t types.TypeID) string {
	tt := ml.lookup(t)
	switch tt.Kind {
	case types.KindBuiltin:
		return ml.builtinType(tt.Builtin)
	case types.KindPointer, types.KindFunc:
		return "ptr"
	case types.KindArray:
		return fmt.Sprintf("[%d x %s]", tt.Count, ml.irType(tt.Elem))
	case types.KindSlice:
		return ml.sliceType()
	case types.KindStruct:
		st := ml.unqualified(t)
		if !ml.named[st] {
			ml.named[st] = true
			ml.namedOrder = append(ml.namedOrder, st)
		}
		info, _ := ml.types.StructInfo(st)
		return ssa.LocalName(info.QualifiedName())
	case types.KindTuple:
		return ml.aggregateOf(t).body
	}
	invariant("no IR type for %s", ml.types.TypeString(t))
	return ""
}

func (ml *moduleLowerer) builtinType(b platform.Builtin) string {
	switch b.Kind() {
	case platform.KindVoid:
		return "void"
	case platform.KindBool:
		return "i1"
	case platform.KindNull:
		return "ptr"
	case platform.KindFloat:
		if b == platform.Float32 {
			return "float"
		}
		return "double"
	}
	return fmt.Sprintf("i%d", ml.arch.Bits(b))
}

func (ml *moduleLowerer) sliceType() string {
	return "{ ptr, " + ml.intPtr() + " }"
}

// intPtr is the pointer-sized integer type.
func (ml *moduleLowerer) intPtr() string {
	return fmt.Sprintf("i%d", ml.arch.PtrBits())
}

// aggregate is the packed IR form of a struct or tuple. Padding is spelled
// out as byte arrays, so index maps source fields to IR element indices.
type aggregate struct {
	body  string
	parts []string
	index []int
}

func (ml *moduleLowerer) aggregateOf(t types.TypeID) *aggregate {
	t = ml.unqualified(t)
	if a, ok := ml.aggs[t]; ok {
		return a
	}
	var fields []types.TypeID
	switch tt := ml.lookup(t); tt.Kind {
	case types.KindStruct:
		info, _ := ml.types.StructInfo(t)
		for _, f := range info.Fields {
			fields = append(fields, f.Type)
		}
	case types.KindTuple:
		info, _ := ml.types.TupleInfo(t)
		fields = info.Elems
	default:
		invariant("%s is not an aggregate", ml.types.TypeString(t))
	}
	l := ml.layoutOf(t)
	a := &aggregate{index: make([]int, len(fields))}
	at := 0
	for i, f := range fields {
		if off := l.FieldOffsets[i]; off > at {
			a.parts = append(a.parts, padding(off-at))
			at = off
		}
		a.index[i] = len(a.parts)
		a.parts = append(a.parts, ml.irType(f))
		at += ml.layoutOf(f).Size
	}
	if l.Size > at {
		a.parts = append(a.parts, padding(l.Size-at))
	}
	if len(a.parts) == 0 {
		a.body = "<{}>"
	} else {
		a.body = "<{ " + strings.Join(a.parts, ", ") + " }>"
	}
	ml.aggs[t] = a
	return a
}

func padding(n int) string {
	return fmt.Sprintf("[%d x i8]", n)
}

func (ml *moduleLowerer) isSigned(t types.TypeID) bool {
	tt := ml.lookup(t)
	return tt.Kind == types.KindBuiltin && tt.Builtin.Kind() == platform.KindInt
}

func (ml *moduleLowerer) isFloat(t types.TypeID) bool {
	tt := ml.lookup(t)
	return tt.Kind == types.KindBuiltin && tt.Builtin.Kind() == platform.KindFloat
}

// bits is the value width of a builtin or pointer type.
func (ml *moduleLowerer) bits(t types.TypeID) int {
	tt := ml.lookup(t)
	if tt.Kind == types.KindBuiltin {
		return ml.arch.Bits(tt.Builtin)
	}
	return ml.arch.PtrBits()
}
