package hir

import (
	"fmt"

	"kestrel/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtVar
	StmtExpr
	StmtReturn
	StmtIf
	StmtWhile
	StmtLoop
	StmtBreak
	StmtContinue
	StmtGoto
	StmtLabel
)

var stmtKindNames = [...]string{
	StmtBlock:    "block",
	StmtVar:      "var",
	StmtExpr:     "expr",
	StmtReturn:   "return",
	StmtIf:       "if",
	StmtWhile:    "while",
	StmtLoop:     "loop",
	StmtBreak:    "break",
	StmtContinue: "continue",
	StmtGoto:     "goto",
	StmtLabel:    "label",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return fmt.Sprintf("StmtKind(%d)", k)
}

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload; the set of implementations is closed.
type StmtData interface {
	stmtData()
}

type BlockData struct{ Body []*Stmt }

// VarData declares Var; a nil Init zero-initialises it.
type VarData struct {
	Var  *Var
	Init *Expr
}

type ExprStmtData struct{ X *Expr }

// ReturnData.Value is nil for a bare return.
type ReturnData struct{ Value *Expr }

type IfData struct {
	Cond       *Expr
	Then, Else []*Stmt
}

type WhileData struct {
	Cond *Expr
	Body []*Stmt
}

type LoopData struct{ Body []*Stmt }
type BreakData struct{}
type ContinueData struct{}
type GotoData struct{ Label *Label }
type LabelData struct{ Label *Label }

func (BlockData) stmtData()    {}
func (VarData) stmtData()      {}
func (ExprStmtData) stmtData() {}
func (ReturnData) stmtData()   {}
func (IfData) stmtData()       {}
func (WhileData) stmtData()    {}
func (LoopData) stmtData()     {}
func (BreakData) stmtData()    {}
func (ContinueData) stmtData() {}
func (GotoData) stmtData()     {}
func (LabelData) stmtData()    {}
