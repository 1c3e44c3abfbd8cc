package layout

import (
	"fortio.org/safecast"

	"kestrel/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	switch tt.Kind {
	case types.KindBuiltin:
		return TypeLayout{Size: e.Arch.SizeOf(tt.Builtin), Align: e.Arch.AlignOf(tt.Builtin)}, nil

	case types.KindConst:
		return e.layoutOf(tt.Elem, state)

	case types.KindPointer, types.KindFunc:
		return e.ptrLayout(), nil

	case types.KindSlice:
		p := e.ptrLayout()
		return TypeLayout{
			Size:         2 * p.Size,
			Align:        p.Align,
			FieldOffsets: []int{0, p.Size},
		}, nil

	case types.KindArray:
		return e.arrayLayout(id, tt.Elem, tt.Count, state)

	case types.KindStruct:
		info, ok := e.Types.StructInfo(id)
		if !ok || len(info.Fields) == 0 {
			return TypeLayout{Size: 0, Align: 1}, nil
		}
		fields := make([]types.TypeID, len(info.Fields))
		for i := range info.Fields {
			fields[i] = info.Fields[i].Type
		}
		return e.sequential(fields, info.ABI, state)

	case types.KindTuple:
		info, ok := e.Types.TupleInfo(id)
		if !ok || len(info.Elems) == 0 {
			return TypeLayout{Size: 0, Align: 1}, nil
		}
		return e.sequential(info.Elems, false, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	size := e.Arch.PtrSize
	if size <= 0 {
		size = 8
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayLayout(id, elem types.TypeID, length uint32, state *layoutState) (TypeLayout, *LayoutError) {
	el, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	align := max(el.Align, 1)
	stride := roundUp(el.Size, align)
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: id, Err: convErr}
	}
	return TypeLayout{Size: stride * n, Align: align}, nil
}

// sequential lays fields out in order, each at the next offset aligned to
// the field's alignment, and pads the total to the largest alignment.
// cabi applies the target's C aggregate alignment to each field.
func (e *LayoutEngine) sequential(fields []types.TypeID, cabi bool, state *layoutState) (TypeLayout, *LayoutError) {
	offsets := make([]int, len(fields))
	size := 0
	align := 1
	for i, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fAlign := max(fl.Align, 1)
		if cabi {
			fAlign = e.Arch.CAlign(fAlign)
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		size += fl.Size
		align = max(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{Size: size, Align: align, FieldOffsets: offsets}, nil
}
