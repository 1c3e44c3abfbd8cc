package types

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/platform"
)

// Interner provides stable TypeIDs by hashing structural descriptors.
// Two types are structurally equal iff their TypeIDs are equal.
//
// Constructors mutate the interner; lookups are safe for concurrent readers
// once no constructor runs.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins [len(builtinOrder)]TypeID

	structs []StructInfo
	tuples  []TupleInfo
	fns     []FnInfo

	tupleIndex map[string]TypeID
	fnIndex    map[string]TypeID
}

var builtinOrder = [...]Builtin{
	platform.Void, platform.Byte, platform.Bool,
	platform.Int8, platform.Int16, platform.Int32, platform.Int64, platform.Int,
	platform.Uint8, platform.Uint16, platform.Uint32, platform.Uint64, platform.Uint,
	platform.Float32, platform.Float64, platform.Null,
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[typeKey]TypeID, 64),
		tupleIndex: make(map[string]TypeID, 16),
		fnIndex:    make(map[string]TypeID, 32),
	}
	in.types = append(in.types, Type{}) // reserve 0 as NoTypeID
	in.structs = append(in.structs, StructInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.fns = append(in.fns, FnInfo{})
	for _, b := range builtinOrder {
		in.builtins[b] = in.Intern(MakeBuiltin(b))
	}
	return in
}

// Builtin returns the TypeID of a primitive.
func (in *Interner) Builtin(b Builtin) TypeID {
	return in.builtins[b]
}

// Intern ensures the provided descriptor has a stable TypeID.
// Struct, tuple and function descriptors must go through their Register helpers.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("types: invalid TypeID %d", id))
	}
	return tt
}

// Len is the number of interned types including the reserved slot.
func (in *Interner) Len() int {
	return len(in.types)
}

// Pointer interns *elem or ?*elem.
func (in *Interner) Pointer(elem TypeID, nullable bool) TypeID {
	return in.Intern(MakePointer(elem, nullable))
}

// Array interns [count]elem.
func (in *Interner) Array(elem TypeID, count uint32) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// Slice interns []elem.
func (in *Interner) Slice(elem TypeID) TypeID {
	return in.Intern(MakeSlice(elem))
}

type typeKey struct {
	Kind     Kind
	Builtin  Builtin
	Elem     TypeID
	Count    uint32
	Nullable bool
	Payload  uint32
}

func listKey(ids []TypeID, extra ...uint32) string {
	buf := make([]byte, 0, 4*(len(ids)+len(extra)))
	for _, e := range extra {
		buf = binary.LittleEndian.AppendUint32(buf, e)
	}
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	}
	return string(buf)
}

func cloneTypeArgs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}
