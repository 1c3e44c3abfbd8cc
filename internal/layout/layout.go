package layout

import (
	"kestrel/internal/platform"
	"kestrel/internal/types"
)

// TypeLayout is the memory layout of a type for a specific target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct and tuple only:
	FieldOffsets []int
}

// Zero reports zero-sized types. They produce no value when lowered.
func (l TypeLayout) Zero() bool {
	return l.Size == 0
}

// LayoutEngine computes memory layout for types.
// An engine caches results and is not safe for concurrent use; the
// interner it reads must not be mutated while it runs.
type LayoutEngine struct {
	Arch  platform.Arch
	Types *types.Interner

	cache map[types.TypeID]cacheEntry
}

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// New creates a new LayoutEngine for the specified target.
func New(arch platform.Arch, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		Arch:  arch,
		Types: typesIn,
		cache: make(map[types.TypeID]cacheEntry, 128),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	state := &layoutState{index: make(map[types.TypeID]int, 8)}
	l, err := e.layoutOf(t, state)
	if err != nil {
		return l, err
	}
	return l, nil
}

// MustLayoutOf is LayoutOf for callers that already ruled out recursive
// value types, such as lowering.
func (e *LayoutEngine) MustLayoutOf(t types.TypeID) TypeLayout {
	l, err := e.LayoutOf(t)
	if err != nil {
		panic(err)
	}
	return l
}

func (e *LayoutEngine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache[t]; ok {
		return cached.Layout, cached.Err
	}
	if idx, ok := state.index[t]; ok {
		cycle := append([]types.TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, t)
		err := &LayoutError{Kind: LayoutErrRecursive, Type: t, Cycle: cycle}
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache[t] = cacheEntry{Layout: l, Err: err}
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct or tuple field.
func (e *LayoutEngine) FieldOffset(t types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, &LayoutError{Kind: LayoutErrNoField, Type: t, Field: fieldIdx}
	}
	return l.FieldOffsets[fieldIdx], nil
}
