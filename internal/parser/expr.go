package parser

import (
	"strings"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/token"
)

// parseExpression implements Pratt's precedence-climbing algorithm: a
// prefix parser produces the left operand, then infix/postfix parsers
// consume operators whose precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.curIs(token.SEMI) && precedence < p.curPrecedence() {
		switch {
		case p.curIs(token.DOT) || p.curIs(token.LBRACKET) || p.curIs(token.LPAREN):
			left = p.parseChainTail(left)
		case p.curIs(token.QUESTION):
			left = p.parseTernary(left)
		case p.curIs(token.INSTANCEOF):
			left = p.parseInstanceOf(left)
		case p.curIs(token.INC) || p.curIs(token.DEC):
			left = p.parsePostfix(left)
		case isAssignOp(p.cur.Type):
			left = p.parseAssign(left)
		default:
			left = p.parseBinary(left)
		}
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func isAssignOp(t token.Type) bool {
	switch t {
	case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PCT_EQ,
		token.AND_EQ, token.OR_EQ, token.XOR_EQ, token.SHL_EQ, token.SHR_EQ, token.USHR_EQ:
		return true
	}
	return false
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case token.INT, token.FLOAT:
		return p.parseNumberLit()
	case token.TRUE, token.FALSE:
		return p.parseBoolLit()
	case token.NULL_:
		n := &ast.NullLit{Token: p.cur}
		p.next()
		return n
	case token.STRING:
		n := &ast.StringLit{Token: p.cur, Value: p.cur.Literal}
		p.next()
		return n
	case token.REGEX:
		return p.parseRegexLit()
	case token.IDENT, token.THIS:
		return p.parseIdentOrLambda()
	case token.NEW:
		return p.parseNew()
	case token.LPAREN:
		return p.parseParenOrCast()
	case token.NOT, token.BIT_NOT, token.MINUS, token.PLUS:
		return p.parseUnary()
	case token.INC, token.DEC:
		return p.parsePrefixIncDec()
	case token.LBRACKET:
		return p.parseListOrMapInit()
	default:
		p.errorf(p.cur.Pos, ErrNoPrefixParse, "unexpected token %q", p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseNumberLit() ast.Expression {
	n := &ast.NumberLit{Token: p.cur, Text: p.cur.Literal}
	p.next()
	return n
}

func (p *Parser) parseBoolLit() ast.Expression {
	n := &ast.BoolLit{Token: p.cur, Value: p.cur.Type == token.TRUE}
	p.next()
	return n
}

func (p *Parser) parseRegexLit() ast.Expression {
	tok := p.cur
	pattern, flags := tok.Literal, ""
	if i := strings.LastIndexByte(tok.Literal, '\x00'); i >= 0 {
		pattern, flags = tok.Literal[:i], tok.Literal[i+1:]
	}
	n := &ast.RegexLit{Token: tok, Pattern: pattern, Flags: flags}
	p.next()
	return n
}

// parseIdentOrLambda disambiguates a bare identifier from the start of a
// lambda parameter list: `x -> ...` and `(a, b) -> ...` both begin with
// tokens an identifier-prefix parser alone can't tell apart without
// lookahead, so a single `IDENT ->` is handled here directly.
func (p *Parser) parseIdentOrLambda() ast.Expression {
	tok := p.cur
	if p.peekIs(token.ARROW) {
		param := ast.LambdaParam{Name: tok.Literal}
		p.next() // consume ident
		p.next() // consume ->
		return p.finishLambda(tok, []ast.LambdaParam{param})
	}
	if p.peekIs(token.COLONCOLON) {
		return p.parseFuncRef(tok)
	}
	n := &ast.Ident{Token: tok, Name: tok.Literal}
	p.next()
	return n
}

// parseFuncRef parses `Name::method` / `Name::new`. Whether Name denotes a
// type (static-or-virtual / constructor reference) or a local variable
// (capturing reference) isn't decidable without scope information, so the
// parser emits FuncRefStaticOrVirtual / FuncRefConstructor here (except
// `this::m`, which becomes FuncRefLocal); the analyzer reclassifies to
// FuncRefCapturing when Name resolves to a variable (spec.md §4.2).
func (p *Parser) parseFuncRef(tok token.Token) ast.Expression {
	name := tok.Literal
	p.next() // consume name
	p.next() // consume ::
	if !p.curIs(token.IDENT) && !p.curIs(token.NEW) {
		p.errorf(p.cur.Pos, ErrExpectedIdent, "expected method name or 'new' after '::'")
		return nil
	}
	if p.curIs(token.NEW) {
		p.next()
		return &ast.FuncRef{Token: tok, Kind: ast.FuncRefConstructor, TypeName: name, MethodName: "new"}
	}
	method := p.cur.Literal
	p.next()
	kind := ast.FuncRefStaticOrVirtual
	if tok.Type == token.THIS {
		kind = ast.FuncRefLocal
	}
	return &ast.FuncRef{Token: tok, Kind: kind, TypeName: name, MethodName: method}
}

func (p *Parser) finishLambda(tok token.Token, params []ast.LambdaParam) ast.Expression {
	lam := &ast.Lambda{Token: tok, Params: params}
	if p.curIs(token.LBRACE) {
		lam.Body = p.parseBlockStatements()
	} else {
		x := p.parseExpression(ASSIGN)
		lam.Body = []ast.Statement{&ast.ReturnStmt{Token: tok, X: x}}
	}
	return lam
}

// parseParenOrCast distinguishes a parenthesized sub-expression, an
// explicit cast `(Type) x`, and a parenthesized lambda parameter list
// `(a, b) -> ...` — all three begin with `(`.
func (p *Parser) parseParenOrCast() ast.Expression {
	tok := p.cur
	if lam := p.tryParseLambdaParams(tok); lam != nil {
		return lam
	}
	if cast := p.tryParseCast(tok); cast != nil {
		return cast
	}
	p.next() // consume (
	x := p.parseExpression(LOWEST)
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	return x
}

func (p *Parser) tryParseLambdaParams(tok token.Token) ast.Expression {
	mIdx, mErr := p.mark()
	p.next() // consume (
	var params []ast.LambdaParam
	for !p.curIs(token.RPAREN) {
		if !p.curIs(token.IDENT) {
			p.resetTo(mIdx, mErr)
			return nil
		}
		params = append(params, ast.LambdaParam{Name: p.cur.Literal})
		p.next()
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.curIs(token.RPAREN) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	p.next() // consume )
	if !p.curIs(token.ARROW) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	p.next() // consume ->
	return p.finishLambda(tok, params)
}

// tryParseCast speculatively parses `(Ident[])` followed by a token that
// can start a unary expression; on failure it rewinds so the caller falls
// back to ordinary grouping.
func (p *Parser) tryParseCast(tok token.Token) ast.Expression {
	mIdx, mErr := p.mark()
	p.next() // consume (
	if !p.curIs(token.IDENT) && !p.curIs(token.DEF) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	typeName := p.cur.Literal
	p.next()
	for p.curIs(token.LBRACKET) && p.peekIs(token.RBRACKET) {
		typeName += "[]"
		p.next()
		p.next()
	}
	if !p.curIs(token.RPAREN) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	p.next() // consume )
	if !startsUnary(p.cur.Type) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	x := p.parseExpression(UNARY)
	return &ast.Unary{Token: tok, Op: token.ILLEGAL, CastType: typeName, X: x}
}

func startsUnary(t token.Type) bool {
	switch t {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL_,
		token.THIS, token.NEW, token.LPAREN, token.NOT, token.BIT_NOT, token.MINUS, token.PLUS,
		token.INC, token.DEC, token.LBRACKET, token.REGEX:
		return true
	}
	return false
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur
	op := p.cur.Type
	p.next()
	x := p.parseExpression(UNARY)
	return &ast.Unary{Token: tok, Op: op, X: x}
}

func (p *Parser) parsePrefixIncDec() ast.Expression {
	tok := p.cur
	op := p.cur.Type
	p.next()
	target := p.parseExpression(UNARY)
	return &ast.Assign{Token: tok, Target: target, Op: op, Prefix: true}
}

func (p *Parser) parsePostfix(left ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Type
	p.next()
	return &ast.Assign{Token: tok, Target: left, Op: op, Prefix: false}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Type
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	return &ast.Binary{Token: tok, Op: op, L: left, R: right}
}

func (p *Parser) parseTernary(cond ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume ?
	then := p.parseExpression(ASSIGN)
	p.expect(token.COLON, ErrInvalidSyntax, ":")
	els := p.parseExpression(TERNARY)
	return &ast.Ternary{Token: tok, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseInstanceOf(x ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume instanceof
	typeName := p.parseTypeName()
	return &ast.InstanceOf{Token: tok, X: x, TypeName: typeName}
}

func (p *Parser) parseAssign(target ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Type
	p.next()
	value := p.parseExpression(ASSIGN - 1) // right-associative
	return &ast.Assign{Token: tok, Target: target, Op: op, Value: value}
}

func (p *Parser) parseTypeName() string {
	name := p.cur.Literal
	p.next()
	for p.curIs(token.LBRACKET) && p.peekIs(token.RBRACKET) {
		name += "[]"
		p.next()
		p.next()
	}
	return name
}

// parseChainTail consumes one `.field`, `.method(args)` or `[idx]` step and
// wraps primary (or an existing Chain) in a Chain node — spec.md §3's
// "primary + trailing links" shape.
func (p *Parser) parseChainTail(primary ast.Expression) ast.Expression {
	chain, ok := primary.(*ast.Chain)
	if !ok {
		chain = &ast.Chain{Token: p.cur, Primary: primary}
	}
	switch p.cur.Type {
	case token.DOT:
		p.next()
		if !p.curIs(token.IDENT) {
			p.errorf(p.cur.Pos, ErrExpectedIdent, "expected member name, found %q", p.cur.Literal)
			return chain
		}
		name := p.cur.Literal
		tok := p.cur
		p.next()
		if p.curIs(token.LPAREN) {
			args := p.parseArgs()
			chain.Links = append(chain.Links, &ast.CallLink{Token: tok, Name: name, Args: args})
		} else {
			chain.Links = append(chain.Links, &ast.FieldLink{Token: tok, Name: name})
		}
	case token.LBRACKET:
		tok := p.cur
		p.next()
		idx := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET, ErrMissingRBracket, "]")
		chain.Links = append(chain.Links, &ast.IndexLink{Token: tok, Index: idx})
	case token.LPAREN:
		// a bare `(args)` only applies directly to a def-typed chain value
		// (dynamic invocation); Name stays empty and the analyzer resolves
		// the call against the chain's running `def` type.
		tok := p.cur
		args := p.parseArgs()
		chain.Links = append(chain.Links, &ast.CallLink{Token: tok, Args: args})
	}
	return chain
}

func (p *Parser) parseArgs() []ast.Expression {
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpression(ASSIGN))
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	return args
}

// parseNew handles `new Type(args)`, `new Type[dim]...` and
// `new Type[]{elems}` — each becomes the head of a Chain.
func (p *Parser) parseNew() ast.Expression {
	tok := p.cur
	p.next() // consume new
	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Pos, ErrExpectedType, "expected type name after 'new'")
		return nil
	}
	typeName := p.cur.Literal
	p.next()
	if p.curIs(token.LPAREN) {
		args := p.parseArgs()
		return &ast.NewObjectExpr{Token: tok, TypeName: typeName, Args: args}
	}
	var dims []ast.Expression
	sawEmptyDim := false
	for p.curIs(token.LBRACKET) {
		p.next()
		if p.curIs(token.RBRACKET) {
			sawEmptyDim = true
			p.next()
			continue
		}
		dims = append(dims, p.parseExpression(LOWEST))
		p.expect(token.RBRACKET, ErrMissingRBracket, "]")
	}
	if sawEmptyDim && p.curIs(token.LBRACE) {
		elems := p.parseBraceList()
		return &ast.ArrayInit{Token: tok, ElemType: typeName, Elems: elems}
	}
	return &ast.NewArrayExpr{Token: tok, ElemType: typeName, Dims: dims}
}

func (p *Parser) parseBraceList() []ast.Expression {
	p.expect(token.LBRACE, ErrUnexpectedToken, "{")
	var elems []ast.Expression
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		elems = append(elems, p.parseExpression(ASSIGN))
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RBRACE, ErrMissingRBrace, "}")
	return elems
}

// parseListOrMapInit handles `[a, b, c]` and `[k1: v1, k2: v2]`, and the
// empty-map form `[:]`.
func (p *Parser) parseListOrMapInit() ast.Expression {
	tok := p.cur
	p.next() // consume [
	if p.curIs(token.COLON) && p.peekIs(token.RBRACKET) {
		p.next()
		p.next()
		return &ast.MapInit{Token: tok}
	}
	if p.curIs(token.RBRACKET) {
		p.next()
		return &ast.ListInit{Token: tok}
	}
	first := p.parseExpression(ASSIGN)
	if p.curIs(token.COLON) {
		p.next()
		val := p.parseExpression(ASSIGN)
		entries := []ast.MapEntry{{Key: first, Value: val}}
		for p.curIs(token.COMMA) {
			p.next()
			k := p.parseExpression(ASSIGN)
			p.expect(token.COLON, ErrInvalidSyntax, ":")
			v := p.parseExpression(ASSIGN)
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}
		p.expect(token.RBRACKET, ErrMissingRBracket, "]")
		return &ast.MapInit{Token: tok, Entries: entries}
	}
	elems := []ast.Expression{first}
	for p.curIs(token.COMMA) {
		p.next()
		elems = append(elems, p.parseExpression(ASSIGN))
	}
	p.expect(token.RBRACKET, ErrMissingRBracket, "]")
	return &ast.ListInit{Token: tok, Elems: elems}
}
