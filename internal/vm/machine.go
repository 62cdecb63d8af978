package vm

import "github.com/painless-lang/painless/internal/registry"

// BoundFunc is the runtime value a FuncRef expression produces: a function
// plus any captured-variable arguments already bound as its leading
// parameters (spec.md §9 "Lambda closure representation" — small struct of
// impl-descriptor and captured values).
type BoundFunc struct {
	Fn       *Function
	Captures []any
}

// Machine is the interpreter: one Machine runs one Execute call against one
// Executable, the "single compile owns one emit buffer, no suspension
// points" concurrency model spec.md §5 describes carried into execution —
// nothing here is shared across concurrent Execute calls.
type Machine struct {
	exe           *Executable
	loopRemaining int
	loopEnabled   bool
}

// Execute runs the script's top-level body (the Executable's Entry chunk),
// first running the one-time prelude spec.md §2's reserved names describe:
// `params` itself, then `ctx`/`doc`/`_score` extracted out of params by the
// well-known keys the host convention for those names uses. Slot assignment
// here must track analyzer.reservedScriptSlots exactly.
func Execute(exe *Executable, params map[string]any) (any, error) {
	m := &Machine{exe: exe}
	if exe.MaxLoopCounter > 0 {
		m.loopEnabled = true
		m.loopRemaining = exe.MaxLoopCounter
	}
	frame := newFrame(exe.Entry, nil)
	pm := NewPMapFromStringMap(params)
	frame.locals[0] = pm
	if len(frame.locals) > 1 {
		frame.locals[1] = pm.Get("ctx")
	}
	if len(frame.locals) > 2 {
		frame.locals[2] = pm.Get("doc")
	}
	if len(frame.locals) > 3 {
		score := pm.Get("_score")
		if score == nil {
			score = float64(0)
		}
		frame.locals[3] = score
	}
	v, _, err := m.run(frame)
	if t, ok := err.(*thrown); ok {
		err = &RuntimeError{Kind: "uncaught-exception", Message: toDisplayString(t.value), Script: t.value}
	}
	return v, err
}

// call invokes fn with the given already-bound-and-evaluated arguments
// (captures first, then declared parameters), the shape a synthetic
// lambda function and an ordinary top-level function call share.
func (m *Machine) call(fn *Function, args []any) (any, error) {
	frame := newFrame(fn.Chunk, nil)
	for i, a := range args {
		if i < len(frame.locals) {
			frame.locals[i] = a
		}
	}
	v, _, err := m.run(frame)
	return v, err
}

// callBound invokes a BoundFunc, prepending its captured values ahead of
// the caller-supplied arguments.
func (m *Machine) callBound(bf *BoundFunc, args []any) (any, error) {
	full := make([]any, 0, len(bf.Captures)+len(args))
	full = append(full, bf.Captures...)
	full = append(full, args...)
	return m.call(bf.Fn, full)
}

func (m *Machine) registry() *registry.Registry { return m.exe.Reg }

// tickLoop decrements the loop-counter budget, raising spec.md §6's
// loop-counter error once it reaches zero; disabled entirely when the
// compile's Settings.MaxLoopCounter is zero.
func (m *Machine) tickLoop() error {
	if !m.loopEnabled {
		return nil
	}
	m.loopRemaining--
	if m.loopRemaining <= 0 {
		return newRuntimeError("loop-counter-exceeded", "script exceeded its maximum loop iteration budget")
	}
	return nil
}
