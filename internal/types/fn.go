package types

import (
	"fmt"

	"fortio.org/safecast"
)

// FnInfo stores metadata for function types.
type FnInfo struct {
	Params   []TypeID // Parameter types (in order)
	Variadic bool     // C-style trailing varargs, extern functions only
	Result   TypeID   // Return type
}

// Func creates or finds a function type.
func (in *Interner) Func(params []TypeID, variadic bool, result TypeID) TypeID {
	v := uint32(0)
	if variadic {
		v = 1
	}
	key := listKey(params, v, uint32(result))
	if id, ok := in.fnIndex[key]; ok {
		return id
	}
	slot := in.appendFnInfo(FnInfo{
		Params:   cloneTypeArgs(params),
		Variadic: variadic,
		Result:   result,
	})
	id := in.internRaw(Type{Kind: KindFunc, Payload: slot})
	in.fnIndex[key] = id
	return id
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	in.fns = append(in.fns, info)
	slot, err := safecast.Conv[uint32](len(in.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}
