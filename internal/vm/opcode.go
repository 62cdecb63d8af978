// Package vm implements the target stack machine the Code Emitter compiles
// into: a fixed instruction set (spec.md §4.3's ASM-like primitives),
// the executable shape a compile produces, the invokedynamic-style
// bootstrap contract for `def` dispatch, a reference interpreter able to
// run the fixed bootstrap contract end to end, and a disassembler.
//
// Instruction encoding is grounded on the teacher's bytecode package: a
// fixed 32-bit word of [8-bit opcode][8-bit A][16-bit B], the same
// switch-friendly layout internal/bytecode/instruction.go uses.
package vm

// OpCode is one instruction's operation.
type OpCode byte

const (
	// Stack/constants
	PushConst OpCode = iota // B: constant index. [] -> [const]
	PushNull                // [] -> [null]
	PushTrue                // [] -> [true]
	PushFalse               // [] -> [false]
	Dup                     // [a] -> [a, a]
	Pop                     // A: count. [..n] -> []

	// Locals
	Load  // B: slot. [] -> [local[slot]]
	Store // B: slot. [value] -> []

	// Arrays
	NewArray   // B: element-type constant index, A: dimension count. [dims...] -> [array]
	ArrayLoad  // [array, index] -> [elem]
	ArrayStore // [array, index, value] -> []
	ArrayLen   // [array] -> [int]
	MakeArray  // A: element count. [elems...] -> [array], a fixed-size literal array

	// Collections (the `def`-typed List/Map literal forms)
	MakeList // A: element count. [elems...] -> [list]
	MakeMap  // A: entry count. [k1, v1, k2, v2, ...] -> [map]

	// Objects
	NewInstance // B: constructor constant index. [args...] -> [obj]
	GetField    // B: field constant index. [obj] -> [value]
	PutField    // B: field constant index. [obj, value] -> []

	// Calls
	Invoke        // B: method constant index, A: arg count. [recv?, args...] -> [result?]
	InvokeDynamic // B: call-site constant index, A: arg count. [args...] -> [result]
	MakeClosure   // B: function constant index, A: capture count. [captures...] -> [BoundFunc]

	// Arithmetic (operand Go types decide the concrete numeric kind at
	// runtime; the analyzer has already picked the static width via casts)
	Add
	Sub
	Mul
	Div
	Rem
	Neg
	Pos
	BitAnd
	BitOr
	BitXor
	BitNot
	Shl
	Shr
	Ushr

	// Comparison
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
	Not
	InstanceOf // B: type constant index. [value] -> [bool]

	// Casts
	Coerce    // B: target-type constant index. direct numeric/widening coercion
	CastCheck // B: target-type constant index. checked reference downcast

	// Control flow
	Jump          // B: signed relative offset
	JumpIfFalse   // [bool] -> []; B: offset
	JumpIfTrue    // [bool] -> []; B: offset
	JumpIfFalseNP // peek, no pop; B: offset
	JumpIfTrueNP  // peek, no pop; B: offset
	LoopTick      // decrements the script's loop counter, raises a runtime error at zero when enabled

	// Function return / exceptions
	Return    // [value] -> (frame pops, value pushed to caller)
	ReturnVoid
	Throw // [exc] -> (unwinds to nearest handler)

	// Debug
	Line // B: source line number, no stack effect
)

var opcodeNames = [...]string{
	PushConst: "push_const", PushNull: "push_null", PushTrue: "push_true", PushFalse: "push_false",
	Dup: "dup", Pop: "pop",
	Load: "load", Store: "store",
	NewArray: "new_array", ArrayLoad: "array_load", ArrayStore: "array_store", ArrayLen: "array_len",
	MakeArray: "make_array", MakeList: "make_list", MakeMap: "make_map",
	NewInstance: "new_instance", GetField: "get_field", PutField: "put_field",
	Invoke: "invoke", InvokeDynamic: "invoke_dynamic", MakeClosure: "make_closure",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Rem: "rem", Neg: "neg", Pos: "pos",
	BitAnd: "bit_and", BitOr: "bit_or", BitXor: "bit_xor", BitNot: "bit_not",
	Shl: "shl", Shr: "shr", Ushr: "ushr",
	CmpEq: "cmp_eq", CmpNe: "cmp_ne", CmpLt: "cmp_lt", CmpLe: "cmp_le", CmpGt: "cmp_gt", CmpGe: "cmp_ge",
	Not: "not", InstanceOf: "instanceof",
	Coerce: "coerce", CastCheck: "cast_check",
	Jump: "jump", JumpIfFalse: "jump_if_false", JumpIfTrue: "jump_if_true",
	JumpIfFalseNP: "jump_if_false_np", JumpIfTrueNP: "jump_if_true_np", LoopTick: "loop_tick",
	Return: "return", ReturnVoid: "return_void", Throw: "throw",
	Line: "line",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "unknown"
}
