package types

import (
	"testing"

	"kestrel/internal/platform"
	"kestrel/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtin(platform.Int32)
	if i32 == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	tt, _ := in.Lookup(i32)
	if tt.Kind != KindBuiltin || tt.Builtin != platform.Int32 {
		t.Fatalf("unexpected descriptor %+v", tt)
	}
	if in.Intern(MakeBuiltin(platform.Int32)) != i32 {
		t.Fatalf("builtin must be interned once")
	}
}

func TestStructuralEquality(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtin(platform.Int32)
	a := in.Array(i32, 3)
	b := in.Array(i32, 3)
	c := in.Array(i32, 4)
	if !Equal(a, a) || !Equal(a, b) || !Equal(b, a) {
		t.Fatalf("[3]int32 should equal itself")
	}
	if Equal(a, c) {
		t.Fatalf("[3]int32 must differ from [4]int32")
	}
	if in.Pointer(i32, true) == in.Pointer(i32, false) {
		t.Fatalf("nullability must affect identity")
	}
	t1 := in.Tuple([]TypeID{i32, a})
	t2 := in.Tuple([]TypeID{i32, b})
	if t1 != t2 {
		t.Fatalf("tuples should be deduplicated")
	}
	f1 := in.Func([]TypeID{i32}, false, i32)
	f2 := in.Func([]TypeID{i32}, true, i32)
	if f1 == f2 || f1 != in.Func([]TypeID{i32}, false, i32) {
		t.Fatalf("function identity must include variadic flag")
	}
}

func TestStructIdentityIsNominal(t *testing.T) {
	in := NewInterner()
	a := in.RegisterStruct([]string{"m"}, "P", source.Span{}, false)
	b := in.RegisterStruct([]string{"m"}, "P", source.Span{}, false)
	if a == b {
		t.Fatalf("distinct declarations must yield distinct struct types")
	}
	in.SetStructFields(a, []StructField{{Name: "x", Type: in.Builtin(platform.Int32)}})
	info, ok := in.StructInfo(a)
	if !ok || len(info.Fields) != 1 || info.QualifiedName() != "m.P" {
		t.Fatalf("unexpected struct info %+v", info)
	}
}

func TestConstIdempotence(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtin(platform.Int32)
	ptr := in.Pointer(i32, false)
	for _, ty := range []TypeID{i32, ptr, in.Slice(i32)} {
		once := in.AddConst(ty)
		if in.AddConst(once) != once {
			t.Fatalf("AddConst not idempotent for %s", in.TypeString(ty))
		}
		if in.RemoveConst(once) != ty {
			t.Fatalf("RemoveConst(AddConst(%s)) mismatch", in.TypeString(ty))
		}
	}
	arr := in.Array(i32, 4)
	if in.AddConst(arr) != in.Array(in.AddConst(i32), 4) {
		t.Fatalf("const must distribute into array elements")
	}
	if !in.IsConst(in.AddConst(arr)) {
		t.Fatalf("const array should report const")
	}
	fn := in.Func(nil, false, in.Builtin(platform.Void))
	if in.AddConst(fn) != fn {
		t.Fatalf("const must never wrap a function type")
	}
}

func TestConstCompatible(t *testing.T) {
	in := NewInterner()
	b := in.Builtin(platform.Byte)
	cb := in.AddConst(b)
	if !in.ConstCompatible(b, cb) {
		t.Fatalf("adding const is allowed")
	}
	if in.ConstCompatible(cb, b) {
		t.Fatalf("dropping const is not allowed")
	}
}

func TestTypeString(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtin(platform.Int32)
	cases := map[TypeID]string{
		in.Pointer(in.AddConst(in.Array(in.Builtin(platform.Byte), 5)), false): "*[5]const byte",
		in.Pointer(i32, true):                                   "?*int32",
		in.Slice(i32):                                           "[]int32",
		in.Tuple([]TypeID{i32}):                                 "(int32,)",
		in.Func([]TypeID{i32}, true, in.Builtin(platform.Void)): "fn(int32, ...) -> void",
	}
	for id, want := range cases {
		if got := in.TypeString(id); got != want {
			t.Fatalf("TypeString = %q, want %q", got, want)
		}
	}
}
