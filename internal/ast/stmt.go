package ast

import "github.com/painless-lang/painless/internal/token"

// Block is a `{ ... }` sequence of statements and is itself a Statement,
// so it can appear as a loop or function body without a separate node kind.
type Block struct {
	StmtMeta
	Token token.Token
	Stmts []Statement
}

func (n *Block) stmtNode()           {}
func (n *Block) Pos() token.Position { return n.Token.Pos }

// IfStmt is `if (cond) then [else else]`.
type IfStmt struct {
	StmtMeta
	Token      token.Token
	Cond       Expression
	Then, Else Statement // Else is nil when absent
}

func (n *IfStmt) stmtNode()           {}
func (n *IfStmt) Pos() token.Position { return n.Token.Pos }

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	StmtMeta
	Token token.Token
	Cond  Expression
	Body  Statement
}

func (n *WhileStmt) stmtNode()           {}
func (n *WhileStmt) Pos() token.Position { return n.Token.Pos }

// DoWhileStmt is `do body while (cond);` — the condition is evaluated after
// the first iteration, so the loop-counter tick the emitter inserts goes at
// the bottom of the body rather than the top (spec.md §4.3).
type DoWhileStmt struct {
	StmtMeta
	Token token.Token
	Body  Statement
	Cond  Expression
}

func (n *DoWhileStmt) stmtNode()           {}
func (n *DoWhileStmt) Pos() token.Position { return n.Token.Pos }

// ForStmt is the C-style `for (init; cond; post) body`. Any of Init, Cond
// and Post may be nil.
type ForStmt struct {
	StmtMeta
	Token token.Token
	Init  Statement
	Cond  Expression
	Post  Statement
	Body  Statement
}

func (n *ForStmt) stmtNode()           {}
func (n *ForStmt) Pos() token.Position { return n.Token.Pos }

// ForEachStmt is `for (Type? name : iterand) body`. TypeName is empty when
// the loop variable's type is `def`. The analyzer resolves Iterand's actual
// type to decide whether iteration is a bare array index loop or an index
// loop over def-typed dynamic size/get calls (spec.md §4.2).
type ForEachStmt struct {
	StmtMeta
	Token    token.Token
	TypeName string
	VarName  string
	Iterand  Expression
	Body     Statement
	Slot     int // local-variable slot assigned to VarName during analysis
}

func (n *ForEachStmt) stmtNode()           {}
func (n *ForEachStmt) Pos() token.Position { return n.Token.Pos }

// VarDecl is one `Type name [= init]` declarator. TypeName is empty for a
// `def` declaration.
type VarDecl struct {
	Name     string
	TypeName string
	Init     Expression // nil when absent
	Slot     int        // local-variable slot assigned during analysis
}

// DeclBlock is `Type a = 1, b = 2;` — one or more declarators sharing a
// declared type, as produced by a single declaration statement.
type DeclBlock struct {
	StmtMeta
	Token token.Token
	Decls []*VarDecl
}

func (n *DeclBlock) stmtNode()           {}
func (n *DeclBlock) Pos() token.Position { return n.Token.Pos }

// ExprStmt is a bare expression used as a statement (an assignment or a
// call, typically).
type ExprStmt struct {
	StmtMeta
	Token token.Token
	X     Expression
}

func (n *ExprStmt) stmtNode()           {}
func (n *ExprStmt) Pos() token.Position { return n.Token.Pos }

// BreakStmt is `break;`.
type BreakStmt struct {
	StmtMeta
	Token token.Token
}

func (n *BreakStmt) stmtNode()           {}
func (n *BreakStmt) Pos() token.Position { return n.Token.Pos }

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	StmtMeta
	Token token.Token
}

func (n *ContinueStmt) stmtNode()           {}
func (n *ContinueStmt) Pos() token.Position { return n.Token.Pos }

// ReturnStmt is `return [expr];`. X is nil for a bare `return;` inside a
// void-returning function.
type ReturnStmt struct {
	StmtMeta
	Token token.Token
	X     Expression
}

func (n *ReturnStmt) stmtNode()           {}
func (n *ReturnStmt) Pos() token.Position { return n.Token.Pos }

// ThrowStmt is `throw expr;`.
type ThrowStmt struct {
	StmtMeta
	Token token.Token
	X     Expression
}

func (n *ThrowStmt) stmtNode()           {}
func (n *ThrowStmt) Pos() token.Position { return n.Token.Pos }

// CatchClause is one `catch (Type name) block` arm of a TryStmt.
type CatchClause struct {
	Token    token.Token
	TypeName string
	VarName  string
	Body     *Block
	Slot     int // local-variable slot assigned to VarName during analysis
}

// TryStmt is `try block catch(...)... [finally block]`. Finally is nil when
// absent.
type TryStmt struct {
	StmtMeta
	Token   token.Token
	Body    *Block
	Catches []CatchClause
	Finally *Block
}

func (n *TryStmt) stmtNode()           {}
func (n *TryStmt) Pos() token.Position { return n.Token.Pos }

// Param is one declared parameter of a FunctionDecl. TypeName is empty for
// a `def` parameter.
type Param struct {
	Name     string
	TypeName string
	Slot     int
}

// FunctionDecl is a top-level function declaration. Synthetic is true for
// the functions the analyzer generates when it desugars a Lambda
// expression (spec.md §4.2); Captures then holds the extra leading
// parameters that carry the lambda's captured variables, prepended ahead
// of Params in emission order.
type FunctionDecl struct {
	StmtMeta
	Token          token.Token
	Name           string
	ReturnTypeName string // empty for `def`, "void" for a void function
	Params         []Param
	Body           *Block
	Synthetic      bool
	Captures       []Param
	LocalCount     int // local slots this function's frame needs, set during analysis
}

func (n *FunctionDecl) stmtNode()           {}
func (n *FunctionDecl) Pos() token.Position { return n.Token.Pos }
