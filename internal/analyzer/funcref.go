package analyzer

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
)

// analyzeFuncRef resolves one of the four function-reference flavors
// spec.md §4.2 names. The parser can't tell `Type::method` from
// `localVar::method` without scope information, so it always emits
// FuncRefStaticOrVirtual for a bare `Name::method`; the first thing this
// does is check whether Name is actually a local, and reclassify.
func (a *Analyzer) analyzeFuncRef(n *ast.FuncRef, expected *registry.Type) (ast.Expression, *registry.Type) {
	if n.Kind == ast.FuncRefStaticOrVirtual {
		if _, ok := a.scopes.lookup(n.TypeName); ok {
			n.Kind = ast.FuncRefCapturing
			n.Receiver = &ast.Ident{Token: n.Token, Name: n.TypeName}
		}
	}

	switch n.Kind {
	case ast.FuncRefStaticOrVirtual:
		t := a.resolveTypeName(n.TypeName)
		if t == nil || t.Struct == nil {
			a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown type %q", n.TypeName)
			return n, a.reg.DefType()
		}
		if findMethodByName(t.Struct, n.MethodName) == nil {
			a.errf(diag.Resolution, "unknown-method", n.Pos(), "%s has no method %q", t, n.MethodName)
		}
		return n, a.reg.DefType()
	case ast.FuncRefConstructor:
		t := a.resolveTypeName(n.TypeName)
		if t == nil || t.Struct == nil {
			a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown type %q", n.TypeName)
		}
		return n, a.reg.DefType()
	case ast.FuncRefCapturing:
		return a.analyzeCapturingFuncRef(n)
	case ast.FuncRefLocal:
		if a.lookupFunctionAnyArity(n.MethodName) == nil {
			a.errf(diag.Resolution, "unknown-function", n.Pos(), "function %q is not defined", n.MethodName)
		}
		return n, a.reg.DefType()
	default:
		return n, a.reg.DefType()
	}
}

// analyzeCapturingFuncRef handles both a user-written `var::method`
// reference (Receiver set to the captured variable) and a lambda-desugared
// reference to one of this script's own synthetic functions (Receiver
// nil, TypeName holding the synthetic function's name).
func (a *Analyzer) analyzeCapturingFuncRef(n *ast.FuncRef) (ast.Expression, *registry.Type) {
	for i, c := range n.Captures {
		n.Captures[i] = a.analyzeExpr(c, a.reg.DefType())
	}
	if n.Receiver != nil {
		n.Receiver = a.analyzeExpr(n.Receiver, nil)
		recvType := n.Receiver.Meta().Actual
		if recvType != nil && recvType.Struct != nil {
			if findMethodByName(recvType.Struct, n.MethodName) == nil {
				a.errf(diag.Resolution, "unknown-method", n.Pos(), "%s has no method %q", recvType, n.MethodName)
			}
		}
		return n, a.reg.DefType()
	}
	if a.lookupFunctionAnyArity(n.TypeName) == nil {
		a.errf(diag.Resolution, "unknown-function", n.Pos(), "internal: synthetic function %q not registered", n.TypeName)
	}
	return n, a.reg.DefType()
}

// findMethodByName ignores arity — a function reference names a method, not
// a call, so the arity comes from whichever functional interface the
// reference is eventually assigned to, which this registry does not model.
func findMethodByName(s *registry.Struct, name string) *registry.Method {
	for k, m := range s.Methods {
		if k.Name == name {
			return m
		}
	}
	for k, m := range s.StaticMethods {
		if k.Name == name {
			return m
		}
	}
	return nil
}

func (a *Analyzer) lookupFunctionAnyArity(name string) *ast.FunctionDecl {
	for k, fn := range a.funcs {
		if k.Name == name {
			return fn
		}
	}
	return nil
}
