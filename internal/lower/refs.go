package lower

import (
	"slices"

	"kestrel/internal/hir"
)

// scanShared marks functions and globals used from a module other than
// their own. Child modules may reach their parents' private declarations,
// so those cannot get internal linkage.
func (l *Lowerer) scanShared() {
	for _, m := range l.prog.Modules {
		for _, fn := range m.Funcs {
			visit := func(e *hir.Expr) {
				switch d := e.Data.(type) {
				case hir.FuncRefData:
					l.markShared(m, d.Func, d.Func.Module)
				case hir.CallData:
					if d.Func != nil {
						l.markShared(m, d.Func, d.Func.Module)
					}
				case hir.GlobalData:
					l.markShared(m, d.Global, d.Global.Module)
				}
			}
			for _, s := range fn.Body {
				walkStmt(s, visit)
			}
		}
	}
}

func (l *Lowerer) markShared(from *hir.Module, decl any, owner []string) {
	if !slices.Equal(from.Path, owner) {
		l.shared[decl] = true
	}
}

func walkStmt(s *hir.Stmt, visit func(*hir.Expr)) {
	switch d := s.Data.(type) {
	case hir.BlockData:
		walkStmts(d.Body, visit)
	case hir.VarData:
		walkExpr(d.Init, visit)
	case hir.ExprStmtData:
		walkExpr(d.X, visit)
	case hir.ReturnData:
		walkExpr(d.Value, visit)
	case hir.IfData:
		walkExpr(d.Cond, visit)
		walkStmts(d.Then, visit)
		walkStmts(d.Else, visit)
	case hir.WhileData:
		walkExpr(d.Cond, visit)
		walkStmts(d.Body, visit)
	case hir.LoopData:
		walkStmts(d.Body, visit)
	}
}

func walkStmts(list []*hir.Stmt, visit func(*hir.Expr)) {
	for _, s := range list {
		walkStmt(s, visit)
	}
}

// walkExpr calls visit on e and every expression below it, parents first.
func walkExpr(e *hir.Expr, visit func(*hir.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch d := e.Data.(type) {
	case hir.CallData:
		walkExpr(d.Callee, visit)
		walkExprs(d.Args, visit)
	case hir.BuiltinData:
		walkExprs(d.Args, visit)
	case hir.AssignData:
		walkExpr(d.Target, visit)
		walkExpr(d.Value, visit)
	case hir.AddressOfData:
		walkExpr(d.X, visit)
	case hir.DerefData:
		walkExpr(d.X, visit)
	case hir.FieldData:
		walkExpr(d.X, visit)
	case hir.IndexData:
		walkExpr(d.X, visit)
		walkExpr(d.Index, visit)
	case hir.SliceMemberData:
		walkExpr(d.X, visit)
	case hir.CastData:
		walkExpr(d.X, visit)
	case hir.ConvertData:
		walkExpr(d.X, visit)
	case hir.MaterializeData:
		walkExpr(d.X, visit)
	case hir.StructLitData:
		walkExprs(d.Fields, visit)
	case hir.TupleLitData:
		walkExprs(d.Elems, visit)
	case hir.ArrayLitData:
		walkExprs(d.Elems, visit)
	}
}

func walkExprs(list []*hir.Expr, visit func(*hir.Expr)) {
	for _, e := range list {
		walkExpr(e, visit)
	}
}
