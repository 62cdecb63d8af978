package analyzer

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/token"
)

// Constant folding runs opportunistically alongside type analysis: a node
// is only folded when every operand already carries a Constant, and any
// operand that isn't constant simply leaves the result unfolded rather
// than erroring (spec.md §4.2 "constant propagation").

func (a *Analyzer) foldUnaryArith(n *ast.Unary, result *registry.Type) {
	c := n.X.Meta().Constant
	if c == nil {
		return
	}
	v, ok := toFloat(c.Value)
	if !ok {
		return
	}
	switch n.Op {
	case token.MINUS:
		n.Constant = &ast.Constant{Type: result, Value: narrowTo(result, -v)}
	case token.PLUS:
		n.Constant = &ast.Constant{Type: result, Value: narrowTo(result, v)}
	case token.BIT_NOT:
		if iv, ok := toInt(c.Value); ok {
			n.Constant = &ast.Constant{Type: result, Value: narrowTo(result, float64(^iv))}
		}
	}
}

func (a *Analyzer) foldLogical(n *ast.Binary) {
	lc, rc := n.L.Meta().Constant, n.R.Meta().Constant
	if lc == nil {
		return
	}
	lb, ok := lc.Value.(bool)
	if !ok {
		return
	}
	if n.Op == token.AND && !lb {
		n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: false}
		return
	}
	if n.Op == token.OR && lb {
		n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: true}
		return
	}
	if rc == nil {
		return
	}
	rb, ok := rc.Value.(bool)
	if !ok {
		return
	}
	if n.Op == token.AND {
		n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: lb && rb}
	} else {
		n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: lb || rb}
	}
}

func (a *Analyzer) foldComparison(n *ast.Binary) {
	lc, rc := n.L.Meta().Constant, n.R.Meta().Constant
	if lc == nil || rc == nil {
		return
	}
	lv, lok := toFloat(lc.Value)
	rv, rok := toFloat(rc.Value)
	if !lok || !rok {
		return
	}
	var result bool
	switch n.Op {
	case token.EQ, token.EQR:
		result = lv == rv
	case token.NEQ, token.NEQR:
		result = lv != rv
	case token.LT:
		result = lv < rv
	case token.LTE:
		result = lv <= rv
	case token.GT:
		result = lv > rv
	case token.GTE:
		result = lv >= rv
	default:
		return
	}
	n.Constant = &ast.Constant{Type: a.reg.BoolType(), Value: result}
}

func (a *Analyzer) foldBinaryArith(n *ast.Binary, result *registry.Type) {
	lc, rc := n.L.Meta().Constant, n.R.Meta().Constant
	if lc == nil || rc == nil {
		return
	}
	if s, ok := lc.Value.(string); ok && n.Op == token.PLUS {
		if rs, ok := rc.Value.(string); ok {
			n.Constant = &ast.Constant{Type: result, Value: s + rs}
		}
		return
	}
	lv, lok := toFloat(lc.Value)
	rv, rok := toFloat(rc.Value)
	if !lok || !rok {
		return
	}
	var out float64
	switch n.Op {
	case token.PLUS:
		out = lv + rv
	case token.MINUS:
		out = lv - rv
	case token.STAR:
		out = lv * rv
	case token.SLASH:
		if rv == 0 {
			a.errf(diag.Constant, "div-by-zero", n.Pos(), "division by constant zero")
			return
		}
		out = lv / rv
	case token.PERCENT:
		if rv == 0 {
			a.errf(diag.Constant, "div-by-zero", n.Pos(), "modulo by constant zero")
			return
		}
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li % ri)
	case token.BIT_AND:
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li & ri)
	case token.BIT_OR:
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li | ri)
	case token.BIT_XOR:
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li ^ ri)
	case token.SHL:
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li << uint(ri))
	case token.SHR, token.USHR:
		li, _ := toInt(lc.Value)
		ri, _ := toInt(rc.Value)
		out = float64(li >> uint(ri))
	default:
		return
	}
	n.Constant = &ast.Constant{Type: result, Value: narrowTo(result, out)}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func narrowTo(t *registry.Type, v float64) any {
	if t == nil {
		return v
	}
	switch t.Sort {
	case registry.Long:
		return int64(v)
	case registry.Float:
		return float32(v)
	case registry.Double:
		return v
	default:
		return int32(v)
	}
}
