package layout

import (
	"errors"
	"testing"

	"kestrel/internal/platform"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

func pointStruct(in *types.Interner, abi bool) types.TypeID {
	id := in.RegisterStruct([]string{"geo"}, "Point", source.Span{}, abi)
	i32 := in.Builtin(platform.Int32)
	in.SetStructFields(id, []types.StructField{{Name: "x", Type: i32}, {Name: "y", Type: i32}})
	return id
}

func TestPointLayout(t *testing.T) {
	in := types.NewInterner()
	p := pointStruct(in, false)
	le := New(platform.MustParseTarget("x86_64-unknown-linux-gnu"), in)
	l, err := le.LayoutOf(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Size != 8 || l.Align != 4 {
		t.Fatalf("Point size/align = %d/%d, want 8/4", l.Size, l.Align)
	}
	if l.FieldOffsets[0] != 0 || l.FieldOffsets[1] != 4 {
		t.Fatalf("offsets = %v", l.FieldOffsets)
	}
}

func TestPaddingAndTailAlignment(t *testing.T) {
	in := types.NewInterner()
	s := in.RegisterStruct(nil, "S", source.Span{}, false)
	in.SetStructFields(s, []types.StructField{
		{Name: "a", Type: in.Builtin(platform.Byte)},
		{Name: "b", Type: in.Builtin(platform.Int64)},
		{Name: "c", Type: in.Builtin(platform.Int16)},
	})
	le := New(platform.MustParseTarget("x86_64-unknown-linux-gnu"), in)
	l, _ := le.LayoutOf(s)
	if l.FieldOffsets[1] != 8 || l.FieldOffsets[2] != 16 || l.Size != 24 || l.Align != 8 {
		t.Fatalf("unexpected layout %+v", l)
	}
}

func TestABIStructUsesCAlignment(t *testing.T) {
	in := types.NewInterner()
	mk := func(abi bool) types.TypeID {
		s := in.RegisterStruct(nil, "S", source.Span{}, abi)
		in.SetStructFields(s, []types.StructField{
			{Name: "a", Type: in.Builtin(platform.Int32)},
			{Name: "b", Type: in.Builtin(platform.Float64)},
		})
		return s
	}
	le := New(platform.MustParseTarget("i686-unknown-linux-gnu"), in)
	natural, _ := le.LayoutOf(mk(false))
	cabi, _ := le.LayoutOf(mk(true))
	if natural.FieldOffsets[1] != 8 || natural.Size != 16 {
		t.Fatalf("natural layout %+v", natural)
	}
	if cabi.FieldOffsets[1] != 4 || cabi.Size != 12 || cabi.Align != 4 {
		t.Fatalf("C layout %+v", cabi)
	}
}

func TestSliceArrayAndEmpty(t *testing.T) {
	in := types.NewInterner()
	le := New(platform.MustParseTarget("wasm32-unknown-unknown"), in)
	sl, _ := le.LayoutOf(in.Slice(in.Builtin(platform.Int64)))
	if sl.Size != 8 || sl.Align != 4 {
		t.Fatalf("slice on wasm32 = %+v", sl)
	}
	arr, _ := le.LayoutOf(in.Array(in.Builtin(platform.Int16), 5))
	if arr.Size != 10 || arr.Align != 2 {
		t.Fatalf("array = %+v", arr)
	}
	empty := in.RegisterStruct(nil, "E", source.Span{}, false)
	el, _ := le.LayoutOf(empty)
	if !el.Zero() {
		t.Fatalf("empty struct should be zero-sized")
	}
}

func TestRecursiveStructReportsCycle(t *testing.T) {
	in := types.NewInterner()
	node := in.RegisterStruct(nil, "Node", source.Span{}, false)
	in.SetStructFields(node, []types.StructField{{Name: "next", Type: node}})
	le := New(platform.MustParseTarget(""), in)
	_, err := le.LayoutOf(node)
	var lerr *LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != LayoutErrRecursive {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
	if len(lerr.Cycle) != 2 {
		t.Fatalf("cycle = %v", lerr.Cycle)
	}
}
