// Package parser implements a Pratt parser for Painless source, producing
// the internal/ast tree from an internal/lexer token stream. The grammar is
// an input contract, not something under redesign here: the job is to
// recognize exactly the surface spec.md §2/§3 describes and attach accurate
// source positions so later diagnostics (spec.md §7) can point at them.
package parser

import (
	"fmt"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/lexer"
	"github.com/painless-lang/painless/internal/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= ...
	TERNARY     // ?:
	COND_OR     // ||
	COND_AND    // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALITY    // == != === !==
	RELATIONAL  // < > <= >= instanceof
	SHIFT       // << >> >>>
	ADDITIVE    // + -
	MULTIPLY    // * / %
	UNARY       // ! ~ - + (Type) ++x --x
	POSTFIX     // x++ x--
	CALLCHAIN   // . [ (
)

var precedences = map[token.Type]int{
	token.ASSIGN: ASSIGN, token.PLUS_EQ: ASSIGN, token.MINUS_EQ: ASSIGN,
	token.STAR_EQ: ASSIGN, token.SLASH_EQ: ASSIGN, token.PCT_EQ: ASSIGN,
	token.AND_EQ: ASSIGN, token.OR_EQ: ASSIGN, token.XOR_EQ: ASSIGN,
	token.SHL_EQ: ASSIGN, token.SHR_EQ: ASSIGN, token.USHR_EQ: ASSIGN,
	token.QUESTION: TERNARY,
	token.OR:        COND_OR,
	token.AND:       COND_AND,
	token.BIT_OR:    BIT_OR,
	token.BIT_XOR:   BIT_XOR,
	token.BIT_AND:   BIT_AND,
	token.EQ: EQUALITY, token.NEQ: EQUALITY, token.EQR: EQUALITY, token.NEQR: EQUALITY,
	token.MATCHES: EQUALITY, token.FINDS: EQUALITY,
	token.LT: RELATIONAL, token.GT: RELATIONAL, token.LTE: RELATIONAL, token.GTE: RELATIONAL,
	token.INSTANCEOF: RELATIONAL,
	token.SHL:        SHIFT, token.SHR: SHIFT, token.USHR: SHIFT,
	token.PLUS: ADDITIVE, token.MINUS: ADDITIVE,
	token.STAR: MULTIPLY, token.SLASH: MULTIPLY, token.PERCENT: MULTIPLY,
	token.INC: POSTFIX, token.DEC: POSTFIX,
	token.DOT: CALLCHAIN, token.LBRACKET: CALLCHAIN, token.LPAREN: CALLCHAIN,
}

// Parser holds a buffered token cursor and accumulated errors for one
// parse. Tokens are pulled from the lexer into toks lazily and never
// discarded, so mark/resetTo can rewind the cursor to retry a speculative
// parse (casts, lambda parameter lists, for-each headers) without losing
// any lookahead already performed — the same backtracking shape the
// teacher's cursor.go gives a from-scratch token buffer rather than a
// stateful two-token window.
type Parser struct {
	l      *lexer.Lexer
	toks   []token.Token
	idx    int
	cur    token.Token
	peek   token.Token
	errors []*Error
}

// New creates a Parser reading from l, priming the two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.sync()
	return p
}

// Errors returns every syntax error accumulated during the parse.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) at(i int) token.Token {
	for len(p.toks) <= i {
		p.toks = append(p.toks, p.l.Next())
	}
	return p.toks[i]
}

func (p *Parser) sync() {
	p.cur = p.at(p.idx)
	p.peek = p.at(p.idx + 1)
}

func (p *Parser) next() {
	p.idx++
	p.sync()
}

// mark/resetTo bracket a speculative parse: mark records the cursor
// position, resetTo rewinds to it (discarding any errors recorded in
// between, since a failed speculative attempt isn't a real syntax error).
func (p *Parser) mark() (idx, errLen int) { return p.idx, len(p.errors) }

func (p *Parser) resetTo(idx, errLen int) {
	p.idx = idx
	p.errors = p.errors[:errLen]
	p.sync()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// expect advances past cur if it matches t, else records a syntax error and
// leaves the cursor in place so the caller can attempt recovery.
func (p *Parser) expect(t token.Type, code, what string) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, code, "expected %s, found %q", what, p.cur.Literal)
	return false
}

func (p *Parser) errorf(pos token.Position, code, format string, args ...any) {
	p.errors = append(p.errors, newError(pos, code, fmt.Sprintf(format, args...)))
}

// ParseSource parses a complete script: zero or more function declarations
// interleaved with top-level statements, exactly as they appear in source
// (spec.md §2 — a script is function declarations plus an implicit main
// body, not segregated into two sections).
func ParseSource(l *lexer.Lexer) (*ast.Source, []*Error) {
	p := New(l)
	src := &ast.Source{Token: p.cur}
	for !p.curIs(token.EOF) {
		if p.looksLikeFunctionDecl() {
			if fn := p.parseFunctionDecl(); fn != nil {
				src.Functions = append(src.Functions, fn)
			}
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			src.Body = append(src.Body, stmt)
		}
		if stmt == nil && !p.curIs(token.EOF) {
			p.next() // avoid an infinite loop on an unparsable token
		}
	}
	return src, p.errors
}
