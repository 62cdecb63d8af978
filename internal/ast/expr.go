package ast

import "github.com/painless-lang/painless/internal/token"

// NumberLit is an integer or floating literal (spec.md §8 R1: all integer
// widths with their declared suffixes round-trip through evaluation).
type NumberLit struct {
	ExprMeta
	Token token.Token
	Text  string // source text, suffix included, for diagnostics
}

func (n *NumberLit) exprNode()          {}
func (n *NumberLit) Pos() token.Position { return n.Token.Pos }

// BoolLit is the `true`/`false` literal.
type BoolLit struct {
	ExprMeta
	Token token.Token
	Value bool
}

func (n *BoolLit) exprNode()          {}
func (n *BoolLit) Pos() token.Position { return n.Token.Pos }

// NullLit is the `null` literal.
type NullLit struct {
	ExprMeta
	Token token.Token
}

func (n *NullLit) exprNode()          {}
func (n *NullLit) Pos() token.Position { return n.Token.Pos }

// StringLit is a single- or double-quoted string literal.
type StringLit struct {
	ExprMeta
	Token token.Token
	Value string
}

func (n *StringLit) exprNode()          {}
func (n *StringLit) Pos() token.Position { return n.Token.Pos }

// RegexLit is a `/pattern/flags` literal.
type RegexLit struct {
	ExprMeta
	Token   token.Token
	Pattern string
	Flags   string
}

func (n *RegexLit) exprNode()          {}
func (n *RegexLit) Pos() token.Position { return n.Token.Pos }

// Ident is a bare name reference resolved against the scope stack (a
// variable) or used as the head of a Chain. Slot is the local-variable slot
// the analyzer resolved Name to; it is meaningless when Name is "this" or
// analysis failed to resolve the name at all.
type Ident struct {
	ExprMeta
	Token token.Token
	Name  string
	Slot  int
}

func (n *Ident) exprNode()          {}
func (n *Ident) Pos() token.Position { return n.Token.Pos }

// Unary covers `! ~ - +` and cast-expressions `(Type) x`.
type Unary struct {
	ExprMeta
	Token    token.Token
	Op       token.Type
	CastType string // non-empty iff this is an explicit-cast expression
	X        Expression
}

func (n *Unary) exprNode()          {}
func (n *Unary) Pos() token.Position { return n.Token.Pos }

// Binary covers arithmetic, shift, compare, bitwise and logical operators.
type Binary struct {
	ExprMeta
	Token token.Token
	Op    token.Type
	L, R  Expression
}

func (n *Binary) exprNode()          {}
func (n *Binary) Pos() token.Position { return n.Token.Pos }

// Ternary is `cond ? then : else`.
type Ternary struct {
	ExprMeta
	Token            token.Token
	Cond, Then, Else Expression
}

func (n *Ternary) exprNode()          {}
func (n *Ternary) Pos() token.Position { return n.Token.Pos }

// InstanceOf is `x instanceof Type`.
type InstanceOf struct {
	ExprMeta
	Token    token.Token
	X        Expression
	TypeName string
}

func (n *InstanceOf) exprNode()          {}
func (n *InstanceOf) Pos() token.Position { return n.Token.Pos }

// Assign covers simple (`=`) and compound (`+= -= *= ...`) assignment, as
// well as pre/post increment-decrement (Op is INC/DEC, Value is nil).
type Assign struct {
	ExprMeta
	Token  token.Token
	Target Expression // an Ident or a Chain whose terminal link has Store=true
	Op     token.Type
	Value  Expression // nil for ++/--
	Prefix bool        // true for ++x/--x, false for x++/x--
}

func (n *Assign) exprNode()          {}
func (n *Assign) Pos() token.Position { return n.Token.Pos }

// Chain is `primary (.field | [idx] | (args))*` (spec.md §4.2).
type Chain struct {
	ExprMeta
	Token   token.Token
	Primary Expression
	Links   []Link
}

func (n *Chain) exprNode()          {}
func (n *Chain) Pos() token.Position { return n.Token.Pos }

// LambdaParam is one declared parameter of a lambda expression.
type LambdaParam struct {
	Name     string
	TypeName string // empty when the type is inferred from context
}

// Lambda is `(params) -> expr` or `(params) -> { stmts }`. It is desugared
// away entirely by the analyzer (spec.md §4.2 "Lambda handling"); by the
// time the emitter runs, every Lambda node in the tree has been replaced by
// a FuncRef targeting a synthetic top-level function.
type Lambda struct {
	ExprMeta
	Token  token.Token
	Params []LambdaParam
	Body   []Statement // a single-expression lambda is wrapped as [ReturnStmt]
}

func (n *Lambda) exprNode()          {}
func (n *Lambda) Pos() token.Position { return n.Token.Pos }

// FuncRefKind distinguishes the four function-reference flavors spec.md
// §4.2 names.
type FuncRefKind int

const (
	FuncRefStaticOrVirtual FuncRefKind = iota // Type::method
	FuncRefConstructor                        // Type::new
	FuncRefCapturing                          // var::method
	FuncRefLocal                              // this::method
)

// FuncRef is a function-reference expression, and is also what every
// desugared Lambda becomes.
type FuncRef struct {
	ExprMeta
	Token      token.Token
	Kind       FuncRefKind
	TypeName   string     // Type::method / Type::new
	MethodName string     // method / "new"
	Receiver   Expression // var::method's capturing variable, else nil
	// Captures holds the invocation-time argument expressions a desugared
	// lambda's synthetic function is called with (its captured variables,
	// evaluated in the enclosing scope at the reference site).
	Captures []Expression
}

func (n *FuncRef) exprNode()          {}
func (n *FuncRef) Pos() token.Position { return n.Token.Pos }

// ListInit is a `[a, b, c]` list-literal expression.
type ListInit struct {
	ExprMeta
	Token token.Token
	Elems []Expression
}

func (n *ListInit) exprNode()          {}
func (n *ListInit) Pos() token.Position { return n.Token.Pos }

// MapEntry is one `key: value` pair of a MapInit.
type MapEntry struct {
	Key, Value Expression
}

// MapInit is a `[key: value, ...]` map-literal expression.
type MapInit struct {
	ExprMeta
	Token   token.Token
	Entries []MapEntry
}

func (n *MapInit) exprNode()          {}
func (n *MapInit) Pos() token.Position { return n.Token.Pos }

// ArrayInit is a `new Type[]{a, b, c}` array-literal expression.
type ArrayInit struct {
	ExprMeta
	Token    token.Token
	ElemType string
	Elems    []Expression
}

func (n *ArrayInit) exprNode()          {}
func (n *ArrayInit) Pos() token.Position { return n.Token.Pos }

// NewObjectExpr is `new Type(args)` used as the head of a Chain — the
// "new-object" link spec.md §3 lists, represented here as a Primary
// Expression rather than a Link (see the note in link.go).
type NewObjectExpr struct {
	ExprMeta
	Token    token.Token
	TypeName string
	Args     []Expression
}

func (n *NewObjectExpr) exprNode()          {}
func (n *NewObjectExpr) Pos() token.Position { return n.Token.Pos }

// NewArrayExpr is `new Type[dim]...` used as the head of a Chain — the
// "new-array" link spec.md §3 lists. The bracketed `new Type[]{...}`
// initializer form parses as an ArrayInit instead.
type NewArrayExpr struct {
	ExprMeta
	Token    token.Token
	ElemType string
	Dims     []Expression
}

func (n *NewArrayExpr) exprNode()          {}
func (n *NewArrayExpr) Pos() token.Position { return n.Token.Pos }
