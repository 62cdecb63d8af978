// Package painless is the embedding API: Compile turns source text into a
// vm.Executable, Execute compiles and runs one against a parameter
// map. This is the same shape the teacher's internal/interp package exposes
// to cmd/dwscript, narrowed to the three-stage pipeline spec.md §4 defines
// (parse, analyze, emit) instead of a tree-walking interpreter.
package painless

import (
	"fmt"

	"github.com/painless-lang/painless/internal/analyzer"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/emitter"
	"github.com/painless-lang/painless/internal/lexer"
	"github.com/painless-lang/painless/internal/parser"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/settings"
	"github.com/painless-lang/painless/internal/vm"
)

// CompileError wraps every diagnostic a failed Compile produced — syntax
// errors from the parser alongside type/resolution errors from the
// analyzer, in one value so a caller only needs one error check.
type CompileError struct {
	Parse  []*parser.Error
	Report *diag.Report
}

func (e *CompileError) Error() string {
	n := len(e.Parse)
	if e.Report != nil {
		n += len(e.Report.Diagnostics)
	}
	return fmt.Sprintf("painless: %d compile error(s)", n)
}

// NewRegistry builds the default whitelist registry (spec.md §2's Type
// Definition Registry) every Compile call resolves names against.
func NewRegistry() *registry.Registry {
	return registry.NewBuiltins()
}

// Compile runs source through the full pipeline — lex, parse, analyze,
// emit — against reg, returning a ready-to-run Executable or a
// *CompileError describing every diagnostic collected along the way.
// scriptName is carried through to the Executable purely for diagnostics
// and disassembly output.
func Compile(source, scriptName string, reg *registry.Registry, s settings.Settings) (*vm.Executable, error) {
	l := lexer.New(source)
	src, parseErrs := parser.ParseSource(l)
	for _, le := range l.Errors() {
		parseErrs = append(parseErrs, &parser.Error{Message: le.Message, Code: parser.ErrInvalidSyntax, Pos: le.Pos})
	}
	if len(parseErrs) > 0 {
		return nil, &CompileError{Parse: parseErrs}
	}

	analyzed, diags := analyzer.Analyze(src, reg, s)
	report := &diag.Report{Diagnostics: diags}
	report.Sort()
	if report.HasErrors() {
		return nil, &CompileError{Report: report}
	}

	exe, emitDiags := emitter.Emit(analyzed, scriptName, reg, s)
	if len(emitDiags) > 0 {
		report.Diagnostics = append(report.Diagnostics, emitDiags...)
		report.Sort()
		return nil, &CompileError{Report: report}
	}
	return exe, nil
}

// Execute compiles source and immediately runs it against params, a
// one-shot convenience (a search-time script never compiles once and runs many times within a
// single request the way a long-lived service would).
func Execute(source string, reg *registry.Registry, s settings.Settings, params map[string]any) (any, error) {
	exe, err := Compile(source, "<inline>", reg, s)
	if err != nil {
		return nil, err
	}
	return vm.Execute(exe, params)
}
