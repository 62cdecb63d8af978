package parser

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/token"
)

// parseStatement dispatches on the leading token of a statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		n := &ast.BreakStmt{Token: p.cur}
		p.next()
		p.consumeSemi()
		return n
	case token.CONTINUE:
		n := &ast.ContinueStmt{Token: p.cur}
		p.next()
		p.consumeSemi()
		return n
	case token.RETURN:
		return p.parseReturn()
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.DEF:
		return p.parseDeclBlock("")
	case token.SEMI:
		p.next()
		return nil
	default:
		return p.parseDeclOrExprStatement()
	}
}

// consumeSemi swallows a trailing `;` if present. A missing `;` is not
// reported, so any statement, not only the last of a block, may omit it.
func (p *Parser) consumeSemi() {
	if p.curIs(token.SEMI) {
		p.next()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	blk := &ast.Block{Token: p.cur}
	blk.Stmts = p.parseBlockStatements()
	return blk
}

func (p *Parser) parseBlockStatements() []ast.Statement {
	p.expect(token.LBRACE, ErrUnexpectedToken, "{")
	var stmts []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBRACE, ErrMissingRBrace, "}")
	return stmts
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.cur
	p.next() // consume if
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	then := p.parseStatement()
	var els ast.Statement
	if p.curIs(token.ELSE) {
		p.next()
		els = p.parseStatement()
	}
	return &ast.IfStmt{Token: tok, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.cur
	p.next() // consume while
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	body := p.parseStatement()
	return &ast.WhileStmt{Token: tok, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Statement {
	tok := p.cur
	p.next() // consume do
	body := p.parseStatement()
	p.expect(token.WHILE, ErrUnexpectedToken, "while")
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	p.consumeSemi()
	return &ast.DoWhileStmt{Token: tok, Body: body, Cond: cond}
}

// parseFor disambiguates the C-style and for-each forms by scanning past a
// leading `Type name` (or `def name`) for a following `:`.
func (p *Parser) parseFor() ast.Statement {
	tok := p.cur
	p.next() // consume for
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	if fe := p.tryParseForEachHeader(tok); fe != nil {
		fe.Body = p.parseStatement()
		return fe
	}
	var init ast.Statement
	if !p.curIs(token.SEMI) {
		init = p.parseDeclOrExprStatement()
	} else {
		p.next()
	}
	var cond ast.Expression
	if !p.curIs(token.SEMI) {
		cond = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMI, ErrMissingSemicolon, ";")
	var post ast.Statement
	if !p.curIs(token.RPAREN) {
		x := p.parseExpression(LOWEST)
		post = &ast.ExprStmt{Token: tok, X: x}
	}
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	body := p.parseStatement()
	return &ast.ForStmt{Token: tok, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) tryParseForEachHeader(tok token.Token) *ast.ForEachStmt {
	mIdx, mErr := p.mark()
	typeName := ""
	if p.curIs(token.DEF) {
		p.next()
	} else if p.curIs(token.IDENT) {
		typeName = p.cur.Literal
		p.next()
		for p.curIs(token.LBRACKET) && p.peekIs(token.RBRACKET) {
			typeName += "[]"
			p.next()
			p.next()
		}
	} else {
		p.resetTo(mIdx, mErr)
		return nil
	}
	if !p.curIs(token.IDENT) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	varName := p.cur.Literal
	p.next()
	if !p.curIs(token.COLON) {
		p.resetTo(mIdx, mErr)
		return nil
	}
	p.next() // consume :
	iterand := p.parseExpression(LOWEST)
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	return &ast.ForEachStmt{Token: tok, TypeName: typeName, VarName: varName, Iterand: iterand}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.cur
	p.next() // consume return
	var x ast.Expression
	if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) {
		x = p.parseExpression(LOWEST)
	}
	p.consumeSemi()
	return &ast.ReturnStmt{Token: tok, X: x}
}

func (p *Parser) parseThrow() ast.Statement {
	tok := p.cur
	p.next() // consume throw
	x := p.parseExpression(LOWEST)
	p.consumeSemi()
	return &ast.ThrowStmt{Token: tok, X: x}
}

func (p *Parser) parseTry() ast.Statement {
	tok := p.cur
	p.next() // consume try
	body := p.parseBlock()
	n := &ast.TryStmt{Token: tok, Body: body}
	for p.curIs(token.CATCH) {
		p.next()
		p.expect(token.LPAREN, ErrUnexpectedToken, "(")
		typeName := p.cur.Literal
		p.expect(token.IDENT, ErrExpectedType, "exception type")
		varName := p.cur.Literal
		p.expect(token.IDENT, ErrExpectedIdent, "exception variable")
		p.expect(token.RPAREN, ErrMissingRParen, ")")
		cbody := p.parseBlock()
		n.Catches = append(n.Catches, ast.CatchClause{Token: tok, TypeName: typeName, VarName: varName, Body: cbody})
	}
	if p.curIs(token.FINALLY) {
		p.next()
		n.Finally = p.parseBlock()
	}
	return n
}

// parseDeclOrExprStatement disambiguates `Type name = init;` from a bare
// expression statement by a bounded lookahead: `IDENT IDENT` (or
// `IDENT IDENT '['...']'*`) starts a declaration.
func (p *Parser) parseDeclOrExprStatement() ast.Statement {
	if p.curIs(token.IDENT) && (p.peekIs(token.IDENT) || p.peekTypeArrayMarksDecl()) {
		typeName := p.parseTypeName()
		return p.parseDeclBlock(typeName)
	}
	tok := p.cur
	x := p.parseExpression(LOWEST)
	p.consumeSemi()
	if x == nil {
		return nil
	}
	return &ast.ExprStmt{Token: tok, X: x}
}

func (p *Parser) peekTypeArrayMarksDecl() bool {
	return p.peekIs(token.LBRACKET) && p.at(p.idx+2).Type == token.RBRACKET
}

func (p *Parser) parseDeclBlock(typeName string) ast.Statement {
	tok := p.cur
	blk := &ast.DeclBlock{Token: tok}
	if p.curIs(token.DEF) {
		p.next()
	}
	for {
		if !p.curIs(token.IDENT) {
			p.errorf(p.cur.Pos, ErrExpectedIdent, "expected variable name")
			break
		}
		decl := &ast.VarDecl{Name: p.cur.Literal, TypeName: typeName}
		p.next()
		if p.curIs(token.ASSIGN) {
			p.next()
			decl.Init = p.parseExpression(ASSIGN)
		}
		blk.Decls = append(blk.Decls, decl)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.consumeSemi()
	return blk
}

// looksLikeFunctionDecl recognizes `Type name(` / `def name(` at top level,
// the only place a function declaration can start (spec.md §2).
func (p *Parser) looksLikeFunctionDecl() bool {
	if p.curIs(token.DEF) {
		return p.peekIs(token.IDENT) && p.at(p.idx+2).Type == token.LPAREN
	}
	if !p.curIs(token.IDENT) {
		return false
	}
	mIdx, mErr := p.mark()
	defer func() { p.resetTo(mIdx, mErr) }()
	p.parseTypeName()
	if !p.curIs(token.IDENT) {
		return false
	}
	p.next()
	return p.curIs(token.LPAREN)
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	tok := p.cur
	returnType := ""
	if p.curIs(token.DEF) {
		p.next()
	} else {
		returnType = p.parseTypeName()
	}
	name := p.cur.Literal
	p.expect(token.IDENT, ErrExpectedIdent, "function name")
	p.expect(token.LPAREN, ErrUnexpectedToken, "(")
	var params []ast.Param
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pt := ""
		if p.curIs(token.DEF) {
			p.next()
		} else {
			pt = p.parseTypeName()
		}
		pname := p.cur.Literal
		p.expect(token.IDENT, ErrExpectedIdent, "parameter name")
		params = append(params, ast.Param{Name: pname, TypeName: pt})
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN, ErrMissingRParen, ")")
	body := p.parseBlock()
	return &ast.FunctionDecl{Token: tok, Name: name, ReturnTypeName: returnType, Params: params, Body: body}
}
