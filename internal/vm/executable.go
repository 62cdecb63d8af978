package vm

import (
	"strconv"

	"github.com/painless-lang/painless/internal/registry"
)

// Function is one compiled function body: its Chunk plus enough metadata
// for the interpreter to bind parameters and captures into locals before
// running it (spec.md §9 "Lambda closure representation" — a synthetic
// function's captures are its leading parameters).
type Function struct {
	Name     string
	Chunk    *Chunk
	Arity    int // declared parameters, not counting captures
	Captures int // leading parameter count that are captured variables
}

// Executable is the Code Emitter's output for one compiled script: the
// script's own top-level statements (the implicit "execute" method
// spec.md §4.3 describes) plus every top-level and lambda-synthesized
// function it calls into.
type Executable struct {
	ScriptName string
	Entry      *Chunk
	Functions  map[string]*Function // keyed by "name/arity"
	NeedsScore bool                 // true iff the script body referenced `_score`
	Reg        *registry.Registry
	MaxLoopCounter int
}

func FuncKey(name string, arity int) string {
	return name + "/" + strconv.Itoa(arity)
}

func (fn *Function) String() string {
	return FuncKey(fn.Name, fn.Arity) + "#" + strconv.Itoa(fn.Captures)
}
