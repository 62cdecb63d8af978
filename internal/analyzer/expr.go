package analyzer

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/token"
)

// analyzeExpr is the single entry point every expression position calls
// through: it dispatches to analyzeExprInner for the type-specific work,
// records Expected/Actual on the node, then inserts an explicit-cast
// wrapper when the inner type doesn't already satisfy expected (spec.md
// §4.2 "top-down expected type, bottom-up actual type").
func (a *Analyzer) analyzeExpr(e ast.Expression, expected *registry.Type) ast.Expression {
	if e == nil {
		return nil
	}
	out, actual := a.analyzeExprInner(e, expected)
	if out == nil {
		return nil
	}
	out.Meta().Expected = expected
	out.Meta().Actual = actual
	_, isNull := e.(*ast.NullLit)
	dynamic := actual != nil && actual.Equals(a.reg.DefType())
	if expected != nil && actual != nil && !actual.Equals(expected) && !isNull && !dynamic {
		return a.cast(out, actual, expected)
	}
	return out
}

func (a *Analyzer) analyzeExprInner(e ast.Expression, expected *registry.Type) (ast.Expression, *registry.Type) {
	switch n := e.(type) {
	case *ast.NumberLit:
		v, t := a.parseNumberLit(n)
		n.Constant = &ast.Constant{Type: t, Value: v}
		return n, t
	case *ast.BoolLit:
		n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: n.Value}
		return n, a.reg.BoolType()
	case *ast.NullLit:
		t := expected
		if t == nil || t.IsPrimitive() {
			t = a.reg.ObjectType()
		}
		return n, t
	case *ast.StringLit:
		t := a.reg.LookupType("String")
		n.Constant = &ast.Constant{Type: t, Value: n.Value}
		return n, t
	case *ast.RegexLit:
		// Pattern isn't a modeled host struct; a regex literal's running
		// type stays dynamic so it flows through def-typed chain calls
		// like matcher/split the same as any other host object would.
		return n, a.reg.DefType()
	case *ast.Ident:
		return a.analyzeIdent(n)
	case *ast.Unary:
		return a.analyzeUnary(n, expected)
	case *ast.Binary:
		return a.analyzeBinary(n)
	case *ast.Ternary:
		return a.analyzeTernary(n, expected)
	case *ast.InstanceOf:
		return a.analyzeInstanceOf(n)
	case *ast.Assign:
		return a.analyzeAssign(n)
	case *ast.Chain:
		return a.analyzeChain(n, expected)
	case *ast.Lambda:
		return a.analyzeLambda(n, expected)
	case *ast.FuncRef:
		return a.analyzeFuncRef(n, expected)
	case *ast.ListInit:
		for i, el := range n.Elems {
			n.Elems[i] = a.analyzeExpr(el, a.reg.DefType())
		}
		return n, a.reg.LookupType("List")
	case *ast.MapInit:
		for i := range n.Entries {
			n.Entries[i].Key = a.analyzeExpr(n.Entries[i].Key, a.reg.DefType())
			n.Entries[i].Value = a.analyzeExpr(n.Entries[i].Value, a.reg.DefType())
		}
		return n, a.reg.LookupType("HashMap")
	case *ast.ArrayInit:
		elemType := a.resolveTypeName(n.ElemType)
		if elemType == nil {
			a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown array element type %q", n.ElemType)
			elemType = a.reg.DefType()
		}
		for i, el := range n.Elems {
			n.Elems[i] = a.analyzeExpr(el, elemType)
		}
		return n, a.reg.DefineArrayType(elemType, 1)
	case *ast.NewObjectExpr:
		return a.analyzeNewObject(n)
	case *ast.NewArrayExpr:
		return a.analyzeNewArray(n)
	default:
		a.errf(diag.Type, "unhandled-expr", e.Pos(), "internal: unhandled expression %T", e)
		return e, a.reg.DefType()
	}
}

func (a *Analyzer) analyzeIdent(n *ast.Ident) (ast.Expression, *registry.Type) {
	if n.Name == "this" {
		return n, a.reg.DefType()
	}
	if v, ok := a.scopes.lookup(n.Name); ok {
		n.Slot = v.Slot
		return n, v.Type
	}
	a.errf(diag.Resolution, "unknown-var", n.Pos(), "variable %q is not defined", n.Name)
	return n, a.reg.DefType()
}

func (a *Analyzer) analyzeUnary(n *ast.Unary, expected *registry.Type) (ast.Expression, *registry.Type) {
	if n.CastType != "" {
		target := a.resolveTypeName(n.CastType)
		if target == nil {
			a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown cast target type %q", n.CastType)
			target = a.reg.DefType()
		}
		n.X = a.analyzeExpr(n.X, nil)
		xt := n.X.Meta().Actual
		if t := a.reg.LookupCast(xt, target, true); t == nil && xt != nil && !xt.Equals(target) {
			a.errf(diag.Type, "no-cast", n.Pos(), "cannot cast %s to %s", xt, target)
		}
		return n, target
	}

	switch n.Op {
	case token.NOT:
		n.X = a.analyzeExpr(n.X, a.reg.BoolType())
		if c := n.X.Meta().Constant; c != nil {
			if b, ok := c.Value.(bool); ok {
				n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: !b}
			}
		}
		return n, a.reg.BoolType()
	case token.BIT_NOT, token.MINUS, token.PLUS:
		n.X = a.analyzeExpr(n.X, nil)
		t := a.reg.Promote(n.X.Meta().Actual)
		a.foldUnaryArith(n, t)
		return n, t
	default:
		a.errf(diag.Type, "unhandled-unary", n.Pos(), "internal: unhandled unary operator")
		return n, a.reg.DefType()
	}
}

func (a *Analyzer) analyzeBinary(n *ast.Binary) (ast.Expression, *registry.Type) {
	switch n.Op {
	case token.AND, token.OR:
		n.L = a.analyzeExpr(n.L, a.reg.BoolType())
		n.R = a.analyzeExpr(n.R, a.reg.BoolType())
		a.foldLogical(n)
		return n, a.reg.BoolType()
	case token.EQ, token.NEQ, token.EQR, token.NEQR, token.LT, token.LTE, token.GT, token.GTE:
		n.L = a.analyzeExpr(n.L, nil)
		lt := n.L.Meta().Actual
		n.R = a.analyzeExpr(n.R, promoteForCompare(a.reg, lt))
		a.foldComparison(n)
		return n, a.reg.BoolType()
	case token.MATCHES, token.FINDS:
		n.L = a.analyzeExpr(n.L, a.reg.LookupType("String"))
		n.R = a.analyzeExpr(n.R, a.reg.DefType())
		return n, a.reg.BoolType()
	default:
		n.L = a.analyzeExpr(n.L, nil)
		n.R = a.analyzeExpr(n.R, nil)
		t := a.reg.PromoteBinary(n.L.Meta().Actual, n.R.Meta().Actual)
		if n.Op == token.PLUS && isStringOperand(a.reg, n.L.Meta().Actual, n.R.Meta().Actual) {
			t = a.reg.LookupType("String")
		}
		a.foldBinaryArith(n, t)
		return n, t
	}
}

func isStringOperand(reg *registry.Registry, l, r *registry.Type) bool {
	str := reg.LookupType("String")
	return l.Equals(str) || r.Equals(str)
}

func promoteForCompare(reg *registry.Registry, lt *registry.Type) *registry.Type {
	if lt != nil && lt.IsPrimitive() {
		return lt
	}
	return nil
}

func (a *Analyzer) analyzeTernary(n *ast.Ternary, expected *registry.Type) (ast.Expression, *registry.Type) {
	n.Cond = a.analyzeExpr(n.Cond, a.reg.BoolType())
	n.Then = a.analyzeExpr(n.Then, expected)
	n.Else = a.analyzeExpr(n.Else, expected)
	t := n.Then.Meta().Actual
	if expected == nil {
		t = a.reg.PromoteBinary(n.Then.Meta().Actual, n.Else.Meta().Actual)
	}
	return n, t
}

func (a *Analyzer) analyzeInstanceOf(n *ast.InstanceOf) (ast.Expression, *registry.Type) {
	n.X = a.analyzeExpr(n.X, nil)
	if a.resolveTypeName(n.TypeName) == nil {
		a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown type %q in instanceof", n.TypeName)
	}
	return n, a.reg.BoolType()
}

// analyzeAssign handles both `target = value` / compound forms and
// pre/post increment-decrement (Value is nil, Op is INC/DEC).
func (a *Analyzer) analyzeAssign(n *ast.Assign) (ast.Expression, *registry.Type) {
	n.Target = a.analyzeExpr(n.Target, nil)
	targetType := n.Target.Meta().Actual
	if chain, ok := n.Target.(*ast.Chain); ok && len(chain.Links) > 0 {
		last := chain.Links[len(chain.Links)-1].LinkMeta()
		last.Store = true
		last.Load = false
	}

	if n.Op == token.INC || n.Op == token.DEC {
		return n, targetType
	}

	if n.Op == token.ASSIGN {
		n.Value = a.analyzeExpr(n.Value, targetType)
		return n, targetType
	}

	// Compound assignment: `target op= value` behaves like
	// `target = target op value`; the promoted arithmetic result narrows
	// back down to the target's own type, an implicit narrowing this
	// operator form alone permits.
	n.Value = a.analyzeExpr(n.Value, nil)
	return n, targetType
}
