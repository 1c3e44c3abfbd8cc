package ast

type (
	ModuleID uint32
	DeclID   uint32
	StmtID   uint32
	ExprID   uint32
	TypeID   uint32
)

const (
	NoModuleID ModuleID = 0
	NoDeclID   DeclID   = 0
	NoStmtID   StmtID   = 0
	NoExprID   ExprID   = 0
	NoTypeID   TypeID   = 0
)

func (id ModuleID) IsValid() bool { return id != NoModuleID }
func (id DeclID) IsValid() bool   { return id != NoDeclID }
func (id StmtID) IsValid() bool   { return id != NoStmtID }
func (id ExprID) IsValid() bool   { return id != NoExprID }
func (id TypeID) IsValid() bool   { return id != NoTypeID }
