package hir

import (
	"fmt"
	"math/big"

	"kestrel/internal/prelude"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// ExprKind enumerates typed expression kinds.
type ExprKind uint8

const (
	// ExprLocal reads a local variable or parameter.
	ExprLocal ExprKind = iota
	// ExprGlobal reads a module-level variable.
	ExprGlobal
	// ExprFuncRef denotes a function as a value.
	ExprFuncRef
	ExprIntLit
	ExprFloatLit
	ExprBoolLit
	ExprNullLit
	// ExprStringLit is a pointer to a pooled constant byte array.
	ExprStringLit
	// ExprCall calls a resolved function (direct) or a function value.
	ExprCall
	// ExprBuiltin applies a builtin operation to concrete operands.
	ExprBuiltin
	ExprAssign
	ExprAddressOf
	ExprDeref
	ExprField
	ExprIndex
	// ExprSliceMember reads the pointer or length of a slice.
	ExprSliceMember
	// ExprCast is an explicit cast written in source.
	ExprCast
	// ExprConvert is an implicit conversion inserted by validation.
	ExprConvert
	// ExprMaterialize gives an rvalue a temporary storage location.
	ExprMaterialize
	ExprStructLit
	ExprTupleLit
	ExprArrayLit
)

var exprKindNames = [...]string{
	ExprLocal:       "local",
	ExprGlobal:      "global",
	ExprFuncRef:     "funcref",
	ExprIntLit:      "int",
	ExprFloatLit:    "float",
	ExprBoolLit:     "bool",
	ExprNullLit:     "null",
	ExprStringLit:   "string",
	ExprCall:        "call",
	ExprBuiltin:     "builtin",
	ExprAssign:      "assign",
	ExprAddressOf:   "addr",
	ExprDeref:       "deref",
	ExprField:       "field",
	ExprIndex:       "index",
	ExprSliceMember: "slicemember",
	ExprCast:        "cast",
	ExprConvert:     "convert",
	ExprMaterialize: "materialize",
	ExprStructLit:   "structlit",
	ExprTupleLit:    "tuplelit",
	ExprArrayLit:    "arraylit",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return fmt.Sprintf("ExprKind(%d)", k)
}

// Category says whether an expression denotes storage or a transient value.
type Category uint8

const (
	RValue Category = iota
	LValue
)

func (c Category) String() string {
	if c == LValue {
		return "lvalue"
	}
	return "rvalue"
}

// Expr is a typed expression node.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload; the set of implementations is closed.
type ExprData interface {
	exprData()
}

type LocalData struct{ Var *Var }
type GlobalData struct{ Global *Global }
type FuncRefData struct{ Func *Func }
type IntLitData struct{ Value *big.Int }
type FloatLitData struct{ Value *big.Rat }
type BoolLitData struct{ Value bool }
type NullLitData struct{}
type StringLitData struct{ Bytes []byte }

// CallData: exactly one of Func (direct) or Callee (function value) is set.
type CallData struct {
	Func   *Func
	Callee *Expr
	Args   []*Expr
}

type BuiltinData struct {
	Op   prelude.Op
	Args []*Expr
}

type AssignData struct{ Target, Value *Expr }
type AddressOfData struct{ X *Expr }
type DerefData struct{ X *Expr }

// FieldData addresses struct field or tuple element Index of X.
type FieldData struct {
	X     *Expr
	Index int
}

// IndexData indexes an array (X is the array) or a slice (X is the slice
// value, Slice set).
type IndexData struct {
	X, Index *Expr
	Slice    bool
}

type SliceMemberData struct {
	X   *Expr
	Len bool // false: pointer
}

type CastData struct {
	Op CastOp
	X  *Expr
}

type ConvertData struct {
	Conv ConvKind
	X    *Expr
}

type MaterializeData struct{ X *Expr }

// StructLitData lists one value per field; nil entries are zero-initialised.
type StructLitData struct{ Fields []*Expr }
type TupleLitData struct{ Elems []*Expr }
type ArrayLitData struct{ Elems []*Expr }

func (LocalData) exprData()       {}
func (GlobalData) exprData()      {}
func (FuncRefData) exprData()     {}
func (IntLitData) exprData()      {}
func (FloatLitData) exprData()    {}
func (BoolLitData) exprData()     {}
func (NullLitData) exprData()     {}
func (StringLitData) exprData()   {}
func (CallData) exprData()        {}
func (BuiltinData) exprData()     {}
func (AssignData) exprData()      {}
func (AddressOfData) exprData()   {}
func (DerefData) exprData()       {}
func (FieldData) exprData()       {}
func (IndexData) exprData()       {}
func (SliceMemberData) exprData() {}
func (CastData) exprData()        {}
func (ConvertData) exprData()     {}
func (MaterializeData) exprData() {}
func (StructLitData) exprData()   {}
func (TupleLitData) exprData()    {}
func (ArrayLitData) exprData()    {}

// Category is structural: projections take the category of their base.
func (e *Expr) Category() Category {
	switch e.Kind {
	case ExprLocal, ExprGlobal, ExprDeref, ExprMaterialize:
		return LValue
	case ExprField:
		return e.Data.(FieldData).X.Category()
	case ExprSliceMember:
		return e.Data.(SliceMemberData).X.Category()
	case ExprIndex:
		d := e.Data.(IndexData)
		if d.Slice {
			// slice elements always live in memory
			return LValue
		}
		return d.X.Category()
	default:
		return RValue
	}
}

// Root is the storage an lvalue chain is rooted at (the innermost base).
func (e *Expr) Root() *Expr {
	for {
		switch d := e.Data.(type) {
		case FieldData:
			e = d.X
		case IndexData:
			if d.Slice {
				return e
			}
			e = d.X
		case SliceMemberData:
			e = d.X
		default:
			return e
		}
	}
}
