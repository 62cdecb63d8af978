package vm

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler prints a Chunk's instructions in human-readable form,
// grounded on the teacher's internal/bytecode.Disassembler, with one switch
// over the opcode choosing how each instruction's operands are printed.
type Disassembler struct {
	writer io.Writer
	chunk  *Chunk
}

func NewDisassembler(chunk *Chunk, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, chunk: chunk}
}

func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "== %s ==\n", d.chunk.Name)
	fmt.Fprintf(d.writer, "instructions: %d, constants: %d, tries: %d\n\n",
		len(d.chunk.Code), len(d.chunk.Constants), len(d.chunk.Tries))

	if len(d.chunk.Constants) > 0 {
		fmt.Fprintf(d.writer, "constants:\n")
		for i, c := range d.chunk.Constants {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, describeConstant(c))
		}
		fmt.Fprintf(d.writer, "\n")
	}

	for offset := 0; offset < len(d.chunk.Code); offset++ {
		d.DisassembleInstruction(offset)
	}
}

func (d *Disassembler) DisassembleInstruction(offset int) {
	if offset < 0 || offset >= len(d.chunk.Code) {
		fmt.Fprintf(d.writer, "invalid offset: %d\n", offset)
		return
	}
	inst := d.chunk.Code[offset]
	op := inst.OpCode()

	d.printHeader(offset)

	switch op {
	case PushConst:
		idx := int(inst.B())
		fmt.Fprintf(d.writer, "%-16s %4d '%s'\n", op, idx, describeConstant(d.chunk.Constants[idx]))
	case NewInstance, GetField, PutField, Invoke, InvokeDynamic, MakeClosure, InstanceOf, Coerce, CastCheck:
		idx := int(inst.B())
		extra := ""
		if idx < len(d.chunk.Constants) {
			extra = describeConstant(d.chunk.Constants[idx])
		}
		fmt.Fprintf(d.writer, "%-16s args=%-2d %4d '%s'\n", op, inst.A(), idx, extra)
	case Load, Store:
		fmt.Fprintf(d.writer, "%-16s slot=%d\n", op, inst.B())
	case NewArray:
		fmt.Fprintf(d.writer, "%-16s dims=%d\n", op, inst.A())
	case MakeArray, MakeList, MakeMap:
		fmt.Fprintf(d.writer, "%-16s count=%d\n", op, inst.A())
	case Pop:
		fmt.Fprintf(d.writer, "%-16s count=%d\n", op, inst.A())
	case Jump, JumpIfFalse, JumpIfTrue, JumpIfFalseNP, JumpIfTrueNP:
		target := offset + 1 + int(inst.Offset())
		fmt.Fprintf(d.writer, "%-16s %+d -> %04d\n", op, inst.Offset(), target)
	case Line:
		fmt.Fprintf(d.writer, "%-16s line=%d\n", op, inst.B())
	default:
		fmt.Fprintf(d.writer, "%s\n", op)
	}
}

func (d *Disassembler) printHeader(offset int) {
	line := d.chunk.LineAt(offset)
	if offset > 0 && line == d.chunk.LineAt(offset-1) {
		fmt.Fprintf(d.writer, "%04d    | ", offset)
	} else {
		fmt.Fprintf(d.writer, "%04d %4d ", offset, line)
	}
}

func describeConstant(c any) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", c)
}

// Disassemble returns a chunk's full disassembly as a string, the
// convenience entry point the CLI's `compile --disassemble` uses.
func Disassemble(chunk *Chunk) string {
	var sb strings.Builder
	NewDisassembler(chunk, &sb).Disassemble()
	return sb.String()
}
