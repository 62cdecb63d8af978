// Package diag formats compile diagnostics: the source-excerpt-with-caret
// rendering a human reads, and a JSON report a host process can log or
// forward (spec.md §7).
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/painless-lang/painless/internal/token"
)

// Category groups a diagnostic by the kind of problem spec.md §7 names.
type Category string

const (
	Syntax      Category = "syntax"
	Resolution  Category = "resolution"
	Type        Category = "type"
	ControlFlow Category = "control-flow"
	Constant    Category = "constant"
	Limit       Category = "limit"
)

// Diagnostic is one compile error or warning, located at a source position
// and classified by Category.
type Diagnostic struct {
	Category Category
	Code     string
	Message  string
	Pos      token.Position
	Warning  bool
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s at %s", d.Category, d.Message, d.Pos)
}

// Format renders a one-error, line-numbered source excerpt with a caret
// under the offending column (grounded on the teacher's CompilerError
// rendering), in color when color is true.
func (d *Diagnostic) Format(source string, color bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s error [%s] at %s\n", d.Category, d.Code, d.Pos)

	lines := strings.Split(source, "\n")
	if d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(lines[d.Pos.Line-1])
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(d.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteByte('^')
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteByte('\n')
	}
	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Report is a full compile's diagnostics, ordered for stable display.
type Report struct {
	Diagnostics []*Diagnostic
}

// Sort orders diagnostics by line, then column, then by a natural
// (digit-aware) compare of their code so "E2" sorts before "E10" — the ordering a human scanning
// a long diagnostic list expects, rather than ASCII "E10" < "E2".
func (r *Report) Sort() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return naturalLess(a.Code, b.Code)
	})
}

// HasErrors reports whether the report contains any non-warning diagnostic.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if !d.Warning {
			return true
		}
	}
	return false
}
