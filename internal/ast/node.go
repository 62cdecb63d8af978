// Package ast defines the sum-type AST for Painless scripts: expressions,
// statements and chain links, each carrying the analysis decorations
// spec.md §3 describes (expected/actual type, folded constant, short-circuit
// labels, escape flags).
//
// Each variant is a concrete struct implementing one of the Expression,
// Statement or Link marker interfaces; the analyzer and emitter walk the
// tree with type switches rather than a virtual Accept method. Go does not
// check those switches for exhaustiveness: in the analyzer and emitter a
// variant a switch does not list falls to its default branch, which
// reports an internal "unhandled" diagnostic.
package ast

import "github.com/painless-lang/painless/internal/token"
import "github.com/painless-lang/painless/internal/registry"

// Node is the common base every AST node satisfies.
type Node interface {
	Pos() token.Position
}

// Expression is any node that produces a value. Every concrete expression
// type embeds ExprMeta, which holds the four analysis-time annotations
// spec.md §3 assigns to expression nodes.
type Expression interface {
	Node
	exprNode()
	Meta() *ExprMeta
}

// Link is one trailing step of a Chain: field, index or call (the chain's
// head — a variable or a `new` — is its Primary expression, see link.go).
type Link interface {
	Node
	linkNode()
	LinkMeta() *LinkMeta
}

// Statement performs an action but produces no value. Every concrete
// statement type embeds StmtMeta, which holds the escape-analysis flags
// spec.md §3 assigns to statement nodes.
type Statement interface {
	Node
	stmtNode()
	Meta() *StmtMeta
}

// Label is an emission-time jump target, the type of ExprMeta's Tru/Fals
// fields. The analyzer does not set Tru/Fals and the emitter does not read
// them: `&&`/`||` are emitted with peek-and-jump instructions
// (emitter/expr.go's emitBinary), so no Label is allocated for them.
type Label struct {
	name string
}

// NewLabel returns a fresh, as-yet-unplaced label.
func NewLabel(name string) *Label { return &Label{name: name} }

func (l *Label) String() string {
	if l == nil {
		return "<nil label>"
	}
	return l.name
}

// Constant is a folded compile-time value, set on an Expression node when
// constant propagation (spec.md §4.2) succeeds for it.
type Constant struct {
	Type  *registry.Type
	Value any
}

// ExprMeta is the analysis-time decoration every Expression carries.
type ExprMeta struct {
	Expected *registry.Type // target type imposed by the parent, set top-down
	Actual   *registry.Type // type after analysis, set bottom-up; def (plus a diagnostic) when analysis of the node failed
	Constant *Constant      // folded value, if constant propagation succeeded
	Tru      *Label         // short-circuit "true" target; not set by the analyzer (see Label)
	Fals     *Label         // short-circuit "false" target; not set by the analyzer (see Label)
}

func (m *ExprMeta) Meta() *ExprMeta { return m }

// LinkMeta decorates a chain Link with the two flags its parent chain sets:
// Load (the value is consumed) and Store (it is the assignment target).
type LinkMeta struct {
	Before *registry.Type // the chain's running type before this link
	After  *registry.Type // the chain's running type after this link
	Load   bool
	Store  bool
}

func (m *LinkMeta) LinkMeta() *LinkMeta { return m }

// StmtMeta is the escape-analysis decoration every Statement carries
// (spec.md §3, §4.2).
type StmtMeta struct {
	MethodEscape   bool // every path leaves via return/throw
	LoopEscape     bool // every path leaves the enclosing loop (break/continue/return/throw)
	AllEscape      bool // MethodEscape || LoopEscape, folded per-block
	AnyContinue    bool
	AnyBreak       bool
	LastSource     bool // true for the last statement directly in the script body
	LastLoop       bool // true for the last statement directly in a loop body
	InLoop         bool
	BeginLoop      bool // true for a loop statement itself
	StatementCount int  // not read by the loop counter: each LoopTick counts one iteration
}

func (m *StmtMeta) Meta() *StmtMeta { return m }
