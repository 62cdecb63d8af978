package analyzer

import (
	"strconv"
	"strings"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/token"
)

// parseNumberLit converts a NumberLit's raw source text (suffix included)
// into a Go value and its static Type: an integer literal defaults to int
// unless suffixed L/l (long); a literal written with a decimal point or
// exponent defaults to double unless suffixed f/F (float) (spec.md §8 R1).
func (a *Analyzer) parseNumberLit(n *ast.NumberLit) (any, *registry.Type) {
	text := n.Text
	isFloat := strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x")
	last := text[len(text)-1]

	switch {
	case last == 'l' || last == 'L':
		v, err := strconv.ParseInt(text[:len(text)-1], 0, 64)
		if err != nil {
			a.errf(diag.Constant, "bad-literal", n.Pos(), "invalid long literal %q", text)
			return int64(0), a.reg.LookupType("long")
		}
		return v, a.reg.LookupType("long")
	case last == 'f' || last == 'F':
		v, err := strconv.ParseFloat(text[:len(text)-1], 32)
		if err != nil {
			a.errf(diag.Constant, "bad-literal", n.Pos(), "invalid float literal %q", text)
			return float32(0), a.reg.LookupType("float")
		}
		return float32(v), a.reg.LookupType("float")
	case last == 'd' || last == 'D':
		v, err := strconv.ParseFloat(text[:len(text)-1], 64)
		if err != nil {
			a.errf(diag.Constant, "bad-literal", n.Pos(), "invalid double literal %q", text)
			return float64(0), a.reg.LookupType("double")
		}
		return v, a.reg.LookupType("double")
	case isFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			a.errf(diag.Constant, "bad-literal", n.Pos(), "invalid double literal %q", text)
			return float64(0), a.reg.LookupType("double")
		}
		return v, a.reg.LookupType("double")
	default:
		v, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			a.errf(diag.Constant, "bad-literal", n.Pos(), "invalid int literal %q", text)
			return int32(0), a.reg.LookupType("int")
		}
		return int32(v), a.reg.LookupType("int")
	}
}

// cast wraps e in an implicit-coercion Unary node converting it from `from`
// to `to`, or returns e unchanged if the types already match or `to` is the
// dynamic type (anything widens implicitly into def). This path may only
// consume an explicit=false registry entry (spec.md §4.1 "implicit
// analyze-time insertions may only consume explicit=false entries") — a
// narrowing conversion the source never spelled out as an explicit cast is
// a Type error, not a silently inserted narrowing cast.
func (a *Analyzer) cast(e ast.Expression, from, to *registry.Type) ast.Expression {
	if from == nil || to == nil || from.Equals(to) || to.Equals(a.reg.DefType()) {
		return e
	}
	if a.reg.LookupCast(from, to, false) != nil {
		u := &ast.Unary{Token: token.Token{Type: token.ILLEGAL, Pos: e.Pos()}, Op: token.ILLEGAL, CastType: to.String(), X: e}
		u.Actual = to
		return u
	}
	a.errf(diag.Type, "no-cast", e.Pos(), "cannot cast %s to %s", from, to)
	return e
}
