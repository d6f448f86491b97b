package compiler

// Opcode is a single bytecode instruction's tag byte. Multibyte inline
// operands, where present, are encoded big-endian immediately after the
// opcode byte.
type Opcode byte

const (
	// OpLoadConstant k8 pushes Program.Constants[k].
	OpLoadConstant Opcode = iota
	// OpGetLocal s8 pushes the value at locals_base+s. OpSetLocal s8 writes
	// the stack top into locals_base+s without popping it: unlike the
	// heap-addressed Set* opcodes below, a local has no separate address
	// operand on the stack to consume, so the value simply stays in place
	// as the assignment expression's result.
	OpGetLocal
	OpSetLocal
	// OpStructAlloc size32 reserves size bytes on the VM heap and pushes a
	// heap-offset value pointing at the start of the reservation.
	OpStructAlloc
	// OpGetField off32 size32 type8 pops a base heap-offset and pushes the
	// size bytes at (base+off) reconstituted as a Value of the given
	// ValueTag. OpSetField off32 size32 pops a base heap-offset (with the
	// value to store directly above it on the stack) and writes the
	// value's own encoding at (base+off); the value's own tag selects the
	// encoding, so no type8 operand is needed. Like every Set* opcode
	// below, OpSetField is a peeking store: it consumes the base but
	// leaves the value on the stack, since an assignment is itself an
	// expression whose result is the assigned value. Unlike the rest of
	// this set, type8 on OpGetField is an addition this implementation
	// makes over the bare instruction list: reading raw bytes back into a
	// tagged Value is ambiguous without it, the same reason arithmetic and
	// Print opcodes already carry a trailing type8.
	OpGetField
	OpSetField
	// OpGetFieldStruct off32 size32 pops a base heap-offset and pushes a
	// heap-offset value pointing at the nested struct field (base+off)
	// without copying - nested structs are referred to in place until
	// assigned. OpSetFieldStruct off32 size32 pops a destination base
	// heap-offset (with a source heap-offset directly above it) and copies
	// size bytes from the source into (dest+off); like OpSetField it peeks
	// rather than pops, leaving the source heap-offset as the expression's
	// result.
	OpGetFieldStruct
	OpSetFieldStruct
	// OpGetIndex elemSize32 type8 / OpSetIndex elemSize32 are the array
	// counterparts of OpGetField/OpSetField: they pop a base heap-offset
	// and an i32 index (index above base), compute base+index*elemSize,
	// and read/write one element. OpSetIndex peeks the value the same way
	// OpSetField does. OpGetIndexStruct/OpSetIndexStruct mirror
	// OpGetFieldStruct/OpSetFieldStruct for arrays of structs.
	OpGetIndex
	OpSetIndex
	OpGetIndexStruct
	OpSetIndexStruct
	// OpFieldAddr off32 pops a base heap-offset and pushes (base+off) as a
	// heap-offset value, with no memory access. This is an addition this
	// implementation makes over the bare instruction list, needed to
	// lower `&s.field` for a scalar field: the field's own value isn't a
	// pointer, so taking its address needs a dedicated address-computing
	// instruction rather than a load.
	OpFieldAddr
	// OpDup pushes a copy of the stack top. Used when lowering the address-
	// of operator over a scalar local: the freshly allocated box's
	// heap-offset is needed both to store the initial value through and to
	// remain as the declared local's own slot value.
	OpDup
	// Arithmetic and comparison: pop two, push one; type8 selects i32 vs
	// f32 decoding (Equal/NotEqual also accept bool and heap-offset tags).
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpEqual
	OpNotEqual
	// OpNegate type8 / OpNot type8: unary, pop one push one.
	OpNegate
	OpNot
	// OpCast from8 to8 converts the stack top from one ValueTag to
	// another among {i32, f32, bool}.
	OpCast
	// OpPop discards the top of stack.
	OpPop
	// OpJmp off16, OpJmpIfFalse off16, OpJmpIfTrue off16: off16 is a
	// signed 16-bit distance from the instruction pointer just past the
	// operand. JmpIfFalse/JmpIfTrue read, but do not consume, the top of
	// stack - the lowering that uses them always follows with an explicit
	// OpPop on every path.
	OpJmp
	OpJmpIfFalse
	OpJmpIfTrue
	// OpLoop off16 is an unconditional backward jump: off16 is subtracted
	// from the instruction pointer just past the operand.
	OpLoop
	// OpCall argc8: the callee value sits at stack position
	// (top-argc-1); installs a new frame whose locals_base = top-argc.
	OpCall
	// OpReturn pops the return value, tears down the current frame, and
	// pushes the return value on the caller's stack.
	OpReturn
	// OpPrint type8 pops one value and prints its textual form.
	OpPrint
)

func (op Opcode) String() string {
	switch op {
	case OpLoadConstant:
		return "LoadConstant"
	case OpGetLocal:
		return "GetLocal"
	case OpSetLocal:
		return "SetLocal"
	case OpStructAlloc:
		return "StructAlloc"
	case OpGetField:
		return "GetField"
	case OpSetField:
		return "SetField"
	case OpGetFieldStruct:
		return "GetFieldStruct"
	case OpSetFieldStruct:
		return "SetFieldStruct"
	case OpGetIndex:
		return "GetIndex"
	case OpSetIndex:
		return "SetIndex"
	case OpGetIndexStruct:
		return "GetIndexStruct"
	case OpSetIndexStruct:
		return "SetIndexStruct"
	case OpFieldAddr:
		return "FieldAddr"
	case OpDup:
		return "Dup"
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpGreater:
		return "Greater"
	case OpLess:
		return "Less"
	case OpGreaterEqual:
		return "GreaterEqual"
	case OpLessEqual:
		return "LessEqual"
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpNegate:
		return "Negate"
	case OpNot:
		return "Not"
	case OpCast:
		return "Cast"
	case OpPop:
		return "Pop"
	case OpJmp:
		return "Jmp"
	case OpJmpIfFalse:
		return "JmpIfFalse"
	case OpJmpIfTrue:
		return "JmpIfTrue"
	case OpLoop:
		return "Loop"
	case OpCall:
		return "Call"
	case OpReturn:
		return "Return"
	case OpPrint:
		return "Print"
	default:
		return "?"
	}
}
