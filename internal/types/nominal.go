package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"kestrel/internal/source"
)

// StructField describes a single field inside a nominal struct type.
type StructField struct {
	Name string
	Type TypeID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string   // unqualified
	Module []string // owning module path
	Decl   source.Span
	ABI    bool // layout follows the platform C ABI
	Fields []StructField
}

// QualifiedName is the dotted module path plus the struct name.
func (s *StructInfo) QualifiedName() string {
	return qualify(s.Module, s.Name)
}

// FieldIndex returns the index of a named field.
func (s *StructInfo) FieldIndex(name string) (int, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
// Every call yields a distinct type: struct identity is the declaration.
func (in *Interner) RegisterStruct(module []string, name string, decl source.Span, abi bool) TypeID {
	slot := in.appendStructInfo(StructInfo{
		Name:   name,
		Module: slices.Clone(module),
		Decl:   decl,
		ABI:    abi,
	})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []StructField) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, info)
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}
