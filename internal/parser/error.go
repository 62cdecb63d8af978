package parser

import "github.com/painless-lang/painless/internal/token"

// Error is one syntax error the parser recorded while recovering and
// continuing, so a single parse can surface more than one mistake.
type Error struct {
	Message string
	Code    string
	Pos     token.Position
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Message
}

func newError(pos token.Position, code, message string) *Error {
	return &Error{Message: message, Code: code, Pos: pos}
}

// Error codes a caller can switch on without string-matching Message.
const (
	ErrUnexpectedToken  = "unexpected-token"
	ErrMissingSemicolon = "missing-semicolon"
	ErrMissingRParen    = "missing-rparen"
	ErrMissingRBracket  = "missing-rbracket"
	ErrMissingRBrace    = "missing-rbrace"
	ErrNoPrefixParse    = "no-prefix-parse"
	ErrExpectedIdent    = "expected-ident"
	ErrExpectedType     = "expected-type"
	ErrInvalidSyntax    = "invalid-syntax"
)
