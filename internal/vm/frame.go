package vm

// frame is one call's execution state: its Chunk, instruction pointer,
// local-variable slots and operand stack. Slots are never reclaimed across
// lexical blocks within the same function (spec.md §5 "Resource policy"),
// so LocalCount already accounts for every block's declarations.
type frame struct {
	chunk  *Chunk
	ip     int
	locals []any
	stack  []any
}

func newFrame(c *Chunk, locals []any) *frame {
	f := &frame{chunk: c, locals: make([]any, c.LocalCount)}
	copy(f.locals, locals)
	return f
}

func (f *frame) push(v any) { f.stack = append(f.stack, v) }

func (f *frame) pop() any {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *frame) peek() any { return f.stack[len(f.stack)-1] }

func (f *frame) popN(n int) []any {
	out := make([]any, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}
