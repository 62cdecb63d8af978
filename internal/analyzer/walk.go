package analyzer

import "github.com/painless-lang/painless/internal/ast"

// collectStmtIdents and collectExprIdents walk a not-yet-analyzed lambda
// body looking for free variables: names referenced but not bound by a
// parameter, declaration, catch clause or nested lambda within that same
// body (spec.md §4.2 "Lambda handling" — capture discovery runs before the
// synthetic function itself is analyzed). bound is threaded by value at
// each nested scope so a shadowing declaration in one branch never hides a
// capture needed by a sibling branch.

func cloneSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func collectStmtIdents(s ast.Statement, bound, free map[string]bool) {
	switch st := s.(type) {
	case *ast.Block:
		local := cloneSet(bound)
		for _, inner := range st.Stmts {
			collectStmtIdents(inner, local, free)
		}
	case *ast.IfStmt:
		collectExprIdents(st.Cond, bound, free)
		collectStmtIdents(st.Then, bound, free)
		if st.Else != nil {
			collectStmtIdents(st.Else, bound, free)
		}
	case *ast.WhileStmt:
		collectExprIdents(st.Cond, bound, free)
		collectStmtIdents(st.Body, bound, free)
	case *ast.DoWhileStmt:
		collectStmtIdents(st.Body, bound, free)
		collectExprIdents(st.Cond, bound, free)
	case *ast.ForStmt:
		local := cloneSet(bound)
		if st.Init != nil {
			collectStmtIdents(st.Init, local, free)
		}
		if st.Cond != nil {
			collectExprIdents(st.Cond, local, free)
		}
		if st.Post != nil {
			collectStmtIdents(st.Post, local, free)
		}
		collectStmtIdents(st.Body, local, free)
	case *ast.ForEachStmt:
		local := cloneSet(bound)
		local[st.VarName] = true
		collectExprIdents(st.Iterand, bound, free)
		collectStmtIdents(st.Body, local, free)
	case *ast.DeclBlock:
		for _, d := range st.Decls {
			if d.Init != nil {
				collectExprIdents(d.Init, bound, free)
			}
			bound[d.Name] = true
		}
	case *ast.ExprStmt:
		collectExprIdents(st.X, bound, free)
	case *ast.ReturnStmt:
		if st.X != nil {
			collectExprIdents(st.X, bound, free)
		}
	case *ast.ThrowStmt:
		collectExprIdents(st.X, bound, free)
	case *ast.TryStmt:
		collectStmtIdents(st.Body, bound, free)
		for _, c := range st.Catches {
			local := cloneSet(bound)
			local[c.VarName] = true
			collectStmtIdents(c.Body, local, free)
		}
		if st.Finally != nil {
			collectStmtIdents(st.Finally, bound, free)
		}
	}
}

func collectExprIdents(e ast.Expression, bound, free map[string]bool) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ast.Ident:
		if ex.Name != "this" && !bound[ex.Name] {
			free[ex.Name] = true
		}
	case *ast.Unary:
		collectExprIdents(ex.X, bound, free)
	case *ast.Binary:
		collectExprIdents(ex.L, bound, free)
		collectExprIdents(ex.R, bound, free)
	case *ast.Ternary:
		collectExprIdents(ex.Cond, bound, free)
		collectExprIdents(ex.Then, bound, free)
		collectExprIdents(ex.Else, bound, free)
	case *ast.InstanceOf:
		collectExprIdents(ex.X, bound, free)
	case *ast.Assign:
		collectExprIdents(ex.Target, bound, free)
		if ex.Value != nil {
			collectExprIdents(ex.Value, bound, free)
		}
	case *ast.Chain:
		collectExprIdents(ex.Primary, bound, free)
		for _, l := range ex.Links {
			switch lk := l.(type) {
			case *ast.IndexLink:
				collectExprIdents(lk.Index, bound, free)
			case *ast.CallLink:
				for _, arg := range lk.Args {
					collectExprIdents(arg, bound, free)
				}
			}
		}
	case *ast.Lambda:
		inner := cloneSet(bound)
		for _, p := range ex.Params {
			inner[p.Name] = true
		}
		for _, s := range ex.Body {
			collectStmtIdents(s, inner, free)
		}
	case *ast.FuncRef:
		if ex.Receiver != nil {
			collectExprIdents(ex.Receiver, bound, free)
		}
	case *ast.ListInit:
		for _, el := range ex.Elems {
			collectExprIdents(el, bound, free)
		}
	case *ast.MapInit:
		for _, en := range ex.Entries {
			collectExprIdents(en.Key, bound, free)
			collectExprIdents(en.Value, bound, free)
		}
	case *ast.ArrayInit:
		for _, el := range ex.Elems {
			collectExprIdents(el, bound, free)
		}
	case *ast.NewObjectExpr:
		for _, arg := range ex.Args {
			collectExprIdents(arg, bound, free)
		}
	case *ast.NewArrayExpr:
		for _, d := range ex.Dims {
			collectExprIdents(d, bound, free)
		}
	}
}
