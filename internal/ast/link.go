package ast

import "github.com/painless-lang/painless/internal/token"

// FieldLink is `.name` — resolved by the analyzer to a field access, an
// array-length access, a def-field access, or a map/list get/set shortcut
// depending on the chain's running type (spec.md §4.2).
type FieldLink struct {
	LinkMeta
	Token token.Token
	Name  string
}

func (l *FieldLink) linkNode()          {}
func (l *FieldLink) Pos() token.Position { return l.Token.Pos }

// IndexLink is `[idx]` — an array index, a def-array index, or a map/list
// shortcut per the chain's runtime class.
type IndexLink struct {
	LinkMeta
	Token token.Token
	Index Expression
}

func (l *IndexLink) linkNode()          {}
func (l *IndexLink) Pos() token.Position { return l.Token.Pos }

// CallLink is `(args)` — a method or constructor invocation on the running
// chain type.
type CallLink struct {
	LinkMeta
	Token  token.Token
	Name   string // method name; empty when this call targets a def value
	Args   []Expression
	Method any // *registry.Method, resolved during analysis
}

func (l *CallLink) linkNode()          {}
func (l *CallLink) Pos() token.Position { return l.Token.Pos }

// Note on "variable"/"new-object"/"new-array" links: spec.md §3 groups
// these with the other chain segments under one ALink hierarchy. Here the
// head of a chain is instead modeled as the Chain's Primary Expression
// (an *Ident for a variable, a *NewObjectExpr/*NewArrayExpr for `new ...`)
// rather than as a Link value — Go's interface-based sum type already gives
// "head of chain" and "trailing chain step" distinct shapes, so only the
// trailing `.field`/`[idx]`/`(args)` steps need their own Link variants.
