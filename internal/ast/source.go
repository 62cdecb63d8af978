package ast

import "github.com/painless-lang/painless/internal/token"

// Source is the root node of a compiled script: its top-level function
// declarations (including any synthetic ones the analyzer adds while
// desugaring lambdas) plus the top-level statements that run as the
// script's implicit main body (spec.md §2).
type Source struct {
	Token     token.Token
	Functions []*FunctionDecl
	Body      []Statement
	LocalCount int // local slots the top-level body's frame needs, set during analysis
}

func (n *Source) Pos() token.Position { return n.Token.Pos }
