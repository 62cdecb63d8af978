package analyzer

import (
	"sort"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/registry"
)

// analyzeLambda desugars a Lambda expression into a synthetic top-level
// function plus a FuncRef at the use site, the transformation spec.md
// §4.2 describes: free variables referenced in the lambda body become
// leading captured parameters of the synthetic function, evaluated in the
// enclosing scope at the reference site and threaded through as the
// FuncRef's Captures.
func (a *Analyzer) analyzeLambda(n *ast.Lambda, expected *registry.Type) (ast.Expression, *registry.Type) {
	bound := map[string]bool{}
	for _, p := range n.Params {
		bound[p.Name] = true
	}
	free := map[string]bool{}
	for _, s := range n.Body {
		collectStmtIdents(s, bound, free)
	}

	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names) // stable capture order regardless of map iteration

	var captures []ast.Param
	var captureArgs []ast.Expression
	for _, name := range names {
		v, ok := a.scopes.lookup(name)
		if !ok {
			continue // not a visible local; the synthetic body will report it unresolved
		}
		captures = append(captures, ast.Param{Name: name, TypeName: typeNameOf(v.Type)})
		captureArgs = append(captureArgs, &ast.Ident{Token: n.Token, Name: name})
	}

	params := make([]ast.Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = ast.Param{Name: p.Name, TypeName: p.TypeName}
	}

	fn := &ast.FunctionDecl{
		Token:     n.Token,
		Name:      a.nextSyntheticName(),
		Params:    params,
		Body:      &ast.Block{Token: n.Token, Stmts: n.Body},
		Synthetic: true,
		Captures:  captures,
	}
	a.registerSignature(fn)
	a.synthetic = append(a.synthetic, fn)

	// The lambda's body is still raw parser output (unresolved idents, no
	// slots); analyze it now, in its own fresh scope, before returning to
	// the enclosing expression's analysis.
	savedFunc, savedScopes := a.currentFunc, a.scopes
	a.analyzeFunctionBody(fn)
	a.currentFunc, a.scopes = savedFunc, savedScopes

	ref := &ast.FuncRef{
		Token:      n.Token,
		Kind:       ast.FuncRefCapturing,
		TypeName:   fn.Name,
		MethodName: fn.Name,
		Captures:   captureArgs,
	}
	return a.analyzeFuncRef(ref, expected)
}

func typeNameOf(t *registry.Type) string {
	if t == nil || t.Sort == registry.Def {
		return ""
	}
	return t.String()
}
