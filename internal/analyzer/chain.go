package analyzer

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
)

// analyzeChain walks a Chain's Primary expression and its trailing Links in
// source order, threading a "running type" through each step the way
// spec.md §4.2 describes field/index/call resolution: def at any point
// switches the rest of the chain to dynamic dispatch, since nothing further
// can be resolved statically.
func (a *Analyzer) analyzeChain(n *ast.Chain, expected *registry.Type) (ast.Expression, *registry.Type) {
	// `foo(args)` with foo not a visible local is a top-level function
	// call, not a variable followed by a dynamic invocation (spec.md §2 —
	// a script's own function declarations are called unqualified).
	if ident, ok := n.Primary.(*ast.Ident); ok && ident.Name != "this" {
		if _, isVar := a.scopes.lookup(ident.Name); !isVar {
			if len(n.Links) > 0 {
				if call, ok := n.Links[0].(*ast.CallLink); ok && call.Name == "" {
					return a.analyzeTopLevelCall(n, ident, call)
				}
			}
		}
	}

	n.Primary = a.analyzeExpr(n.Primary, nil)
	running := n.Primary.Meta().Actual
	if running == nil {
		running = a.reg.DefType()
	}

	for _, link := range n.Links {
		link.LinkMeta().Before = running
		link.LinkMeta().Load = true
		running = a.analyzeLink(link, running)
		link.LinkMeta().After = running
	}
	return n, running
}

// analyzeTopLevelCall resolves `name(args)` against this script's own
// function table. The chain's Primary is dropped (there is no receiver for
// a script-level call) and the consumed CallLink's Name is filled in, so
// the emitter sees exactly the same shape a `.method(args)` chain produces,
// just with an empty Primary meaning "call the script directly".
func (a *Analyzer) analyzeTopLevelCall(n *ast.Chain, ident *ast.Ident, call *ast.CallLink) (ast.Expression, *registry.Type) {
	fn := a.lookupFunction(ident.Name, len(call.Args))
	call.Name = ident.Name
	n.Primary = nil
	// call itself stays at n.Links[0] — only the links after it (e.g.
	// `compute(x).toString()`'s ".toString()") still need threading.
	rest := n.Links[1:]

	if fn == nil {
		a.errf(diag.Resolution, "unknown-function", ident.Pos(), "function %s/%d is not defined", ident.Name, len(call.Args))
		for i, arg := range call.Args {
			call.Args[i] = a.analyzeExpr(arg, a.reg.DefType())
		}
		return a.chainFromCallResult(n, rest, a.reg.DefType())
	}

	call.Method = fn
	for i, arg := range call.Args {
		var want *registry.Type
		if i < len(fn.Params) {
			want = a.resolveTypeName(fn.Params[i].TypeName)
		}
		call.Args[i] = a.analyzeExpr(arg, want)
	}
	return a.chainFromCallResult(n, rest, a.resolveReturnType(fn.ReturnTypeName))
}

// chainFromCallResult walks any links left after the consumed call (e.g.
// `compute(x).toString()`), threading the call's return type as the
// running type the same way analyzeChain does for an ordinary chain.
func (a *Analyzer) chainFromCallResult(n *ast.Chain, links []ast.Link, running *registry.Type) (ast.Expression, *registry.Type) {
	for _, link := range links {
		link.LinkMeta().Before = running
		link.LinkMeta().Load = true
		running = a.analyzeLink(link, running)
		link.LinkMeta().After = running
	}
	return n, running
}

func (a *Analyzer) analyzeLink(link ast.Link, running *registry.Type) *registry.Type {
	switch l := link.(type) {
	case *ast.FieldLink:
		return a.analyzeFieldLink(l, running)
	case *ast.IndexLink:
		return a.analyzeIndexLink(l, running)
	case *ast.CallLink:
		return a.analyzeCallLink(l, running)
	default:
		return a.reg.DefType()
	}
}

func (a *Analyzer) analyzeFieldLink(l *ast.FieldLink, running *registry.Type) *registry.Type {
	if running.Equals(a.reg.DefType()) {
		return a.reg.DefType()
	}
	if running.Sort == registry.Array {
		if l.Name == "length" {
			return a.reg.IntType()
		}
		a.errf(diag.Resolution, "unknown-field", l.Pos(), "array has no field %q", l.Name)
		return a.reg.DefType()
	}
	if running.Struct == nil {
		a.errf(diag.Resolution, "unknown-field", l.Pos(), "%s has no field %q", running, l.Name)
		return a.reg.DefType()
	}
	f := running.Struct.LookupField(l.Name)
	if f == nil {
		a.errf(diag.Resolution, "unknown-field", l.Pos(), "%s has no field %q", running, l.Name)
		return a.reg.DefType()
	}
	return f.Type
}

func (a *Analyzer) analyzeIndexLink(l *ast.IndexLink, running *registry.Type) *registry.Type {
	if running.Equals(a.reg.DefType()) {
		l.Index = a.analyzeExpr(l.Index, a.reg.DefType())
		return a.reg.DefType()
	}
	if running.Sort == registry.Array {
		l.Index = a.analyzeExpr(l.Index, a.reg.IntType())
		return running.Elem
	}
	// List/Map index shortcuts desugar to get/put against a def result;
	// the emitter is the one that picks get vs put based on Store (spec.md
	// §4.2 "map/list index shortcuts").
	if running.Struct != nil {
		l.Index = a.analyzeExpr(l.Index, a.reg.DefType())
		return a.reg.DefType()
	}
	a.errf(diag.Resolution, "not-indexable", l.Pos(), "%s cannot be indexed", running)
	return a.reg.DefType()
}

func (a *Analyzer) analyzeCallLink(l *ast.CallLink, running *registry.Type) *registry.Type {
	if running.Equals(a.reg.DefType()) || l.Name == "" {
		for i, arg := range l.Args {
			l.Args[i] = a.analyzeExpr(arg, a.reg.DefType())
		}
		return a.reg.DefType()
	}
	if running.Struct == nil {
		a.errf(diag.Resolution, "unknown-method", l.Pos(), "%s has no method %q", running, l.Name)
		return a.reg.DefType()
	}
	key := registry.MethodKey{Name: l.Name, Arity: len(l.Args)}
	m := running.Struct.LookupMethod(key)
	if m == nil {
		m = running.Struct.LookupStaticMethod(key)
	}
	if m == nil {
		a.errf(diag.Resolution, "unknown-method", l.Pos(), "%s has no method %s", running, key)
		for i, arg := range l.Args {
			l.Args[i] = a.analyzeExpr(arg, a.reg.DefType())
		}
		return a.reg.DefType()
	}
	l.Method = m
	for i, arg := range l.Args {
		var want *registry.Type
		if i < len(m.Params) {
			want = m.Params[i]
		}
		l.Args[i] = a.analyzeExpr(arg, want)
	}
	return m.Return
}

func (a *Analyzer) analyzeNewObject(n *ast.NewObjectExpr) (ast.Expression, *registry.Type) {
	t := a.resolveTypeName(n.TypeName)
	if t == nil || t.Struct == nil {
		a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown type %q", n.TypeName)
		for i, arg := range n.Args {
			n.Args[i] = a.analyzeExpr(arg, a.reg.DefType())
		}
		return n, a.reg.DefType()
	}
	ctor := t.Struct.LookupCtor(len(n.Args))
	if ctor == nil {
		a.errf(diag.Resolution, "unknown-ctor", n.Pos(), "%s has no constructor of arity %d", t, len(n.Args))
		for i, arg := range n.Args {
			n.Args[i] = a.analyzeExpr(arg, a.reg.DefType())
		}
		return n, t
	}
	for i, arg := range n.Args {
		var want *registry.Type
		if i < len(ctor.Params) {
			want = ctor.Params[i]
		}
		n.Args[i] = a.analyzeExpr(arg, want)
	}
	return n, t
}

func (a *Analyzer) analyzeNewArray(n *ast.NewArrayExpr) (ast.Expression, *registry.Type) {
	elem := a.resolveTypeName(n.ElemType)
	if elem == nil {
		a.errf(diag.Resolution, "unknown-type", n.Pos(), "unknown array element type %q", n.ElemType)
		elem = a.reg.DefType()
	}
	for i, d := range n.Dims {
		n.Dims[i] = a.analyzeExpr(d, a.reg.IntType())
	}
	dims := len(n.Dims)
	if dims == 0 {
		dims = 1
	}
	return n, a.reg.DefineArrayType(elem, dims)
}
