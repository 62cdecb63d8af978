package analyzer

import (
	"strings"

	"github.com/painless-lang/painless/internal/registry"
)

// resolveTypeName maps a parsed type name — empty string or "def" for the
// dynamic type, "Foo", "Foo[]", "Foo[][]" — to the frozen Registry's Type,
// recursing through LookupType's own array handling.
func (a *Analyzer) resolveTypeName(name string) *registry.Type {
	if name == "" || name == "def" {
		return a.reg.DefType()
	}
	if t := a.reg.LookupType(name); t != nil {
		return t
	}
	return nil
}

func isArrayName(name string) bool { return strings.HasSuffix(name, "[]") }
