package vm

import "testing"

// newTestChunk builds a Chunk with the four reserved script-level slots
// (params, ctx, doc, _score) plus extraLocals working locals, mirroring
// the layout analyzer.reservedScriptSlots assigns real scripts.
func newTestChunk(extraLocals int) *Chunk {
	c := NewChunk("<test>")
	c.LocalCount = 4 + extraLocals
	c.Params = 4
	return c
}

func execChunk(t *testing.T, c *Chunk) any {
	t.Helper()
	exe := &Executable{ScriptName: "<test>", Entry: c, Functions: map[string]*Function{}}
	v, err := Execute(exe, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return v
}

func TestExecuteArithmeticPrecedenceByEmissionOrder(t *testing.T) {
	// 2 + 3 * 4 == 14, compiled as PushConst 2; PushConst 3; PushConst 4; Mul; Add; Return
	c := newTestChunk(0)
	two := c.AddConstant(int64(2))
	three := c.AddConstant(int64(3))
	four := c.AddConstant(int64(4))
	c.Emit(PushConst, 0, two, 1)
	c.Emit(PushConst, 0, three, 1)
	c.Emit(PushConst, 0, four, 1)
	c.EmitSimple(Mul, 1)
	c.EmitSimple(Add, 1)
	c.EmitSimple(Return, 1)

	got := execChunk(t, c)
	if got != int64(14) {
		t.Fatalf("got %v (%T), want int64(14)", got, got)
	}
}

func TestExecuteLoadStoreRoundTrip(t *testing.T) {
	// local 4 = 7; return local 4
	c := newTestChunk(1)
	seven := c.AddConstant(int64(7))
	c.Emit(PushConst, 0, seven, 1)
	c.Emit(Store, 0, 4, 1)
	c.Emit(Load, 0, 4, 1)
	c.EmitSimple(Return, 1)

	got := execChunk(t, c)
	if got != int64(7) {
		t.Fatalf("got %v, want int64(7)", got)
	}
}

func TestExecuteJumpIfFalseSkipsThenBranch(t *testing.T) {
	// if (false) return 1; else return 2;
	c := newTestChunk(0)
	one := c.AddConstant(int64(1))
	two := c.AddConstant(int64(2))
	c.EmitSimple(PushFalse, 1)
	jmp := c.EmitJump(JumpIfFalse, 1)
	c.Emit(PushConst, 0, one, 1)
	c.EmitSimple(Return, 1)
	c.PatchJump(jmp)
	c.Emit(PushConst, 0, two, 1)
	c.EmitSimple(Return, 1)

	got := execChunk(t, c)
	if got != int64(2) {
		t.Fatalf("got %v, want int64(2) (condition was false)", got)
	}
}

func TestExecuteShortCircuitAndLeavesOneValue(t *testing.T) {
	// false && (anything) short-circuits to false without evaluating the RHS;
	// mirrors emitter.emitBinary's JumpIfFalseNP + Pop pattern.
	c := newTestChunk(0)
	c.EmitSimple(PushFalse, 1)
	jmp := c.EmitJump(JumpIfFalseNP, 1)
	c.Emit(Pop, 1, 0, 1)
	c.EmitSimple(PushTrue, 1) // would push true's RHS were it reached
	c.PatchJump(jmp)
	c.EmitSimple(Return, 1)

	got := execChunk(t, c)
	if got != false {
		t.Fatalf("got %v, want false", got)
	}
}

func TestExecuteLoopCounterExceededIsUncaughtRuntimeError(t *testing.T) {
	// an infinite loop: jump back to self, ticking every iteration.
	c := newTestChunk(0)
	top := c.Emit(LoopTick, 0, 0, 1)
	c.Emit(Jump, 0, 0, 1)
	c.PatchJumpTo(top+1, top)

	exe := &Executable{ScriptName: "<test>", Entry: c, Functions: map[string]*Function{}, MaxLoopCounter: 5}
	_, err := Execute(exe, nil)
	if err == nil {
		t.Fatal("expected the loop-counter guard to raise an error")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError (never catchable by a script try/catch)", err)
	}
}

func TestExecuteReservedScoreSlotDefaultsToZero(t *testing.T) {
	c := newTestChunk(0)
	c.Emit(Load, 0, 3, 1) // slot 3 is _score
	c.EmitSimple(Return, 1)

	exe := &Executable{ScriptName: "<test>", Entry: c, Functions: map[string]*Function{}}
	got, err := Execute(exe, map[string]any{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != float64(0) {
		t.Fatalf("default _score = %v, want float64(0)", got)
	}
}

func TestExecuteReservedDocBinding(t *testing.T) {
	c := newTestChunk(0)
	c.Emit(Load, 0, 2, 1) // slot 2 is doc
	c.EmitSimple(Return, 1)

	exe := &Executable{ScriptName: "<test>", Entry: c, Functions: map[string]*Function{}}
	doc := map[string]any{"title": "hello"}
	got, err := Execute(exe, map[string]any{"doc": doc})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got == nil {
		t.Fatal("expected doc binding to be non-nil")
	}
}
