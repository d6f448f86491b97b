// Package machine implements the virtual machine that executes a compiled
// Program: a value stack, a call-frame stack, and a byte-addressed heap
// arena for struct and array storage.
package machine

import (
	"fmt"
	"io"

	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/compiler"
	"github.com/mna/toylang/lang/types"
)

// State is the virtual machine's lifecycle: Ready -> Running ->
// {Halted, Trapped}.
type State uint8

const (
	Ready State = iota
	Running
	Halted
	Trapped
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Trapped:
		return "trapped"
	default:
		return "?"
	}
}

// VM owns everything one execution of a Program needs: the operand stack,
// the call-frame stack, and the struct/array heap. It borrows Program
// immutably for the duration of the run.
type VM struct {
	prog   *compiler.Program
	limits config.Limits
	stdout io.Writer

	stack  []types.Value
	frames []Frame
	heap   []byte

	state State
	steps int
}

// New creates a VM ready to execute prog, writing `print` output to stdout.
func New(prog *compiler.Program, limits config.Limits, stdout io.Writer) *VM {
	return &VM{prog: prog, limits: limits, stdout: stdout, state: Ready}
}

// State returns the VM's current lifecycle state.
func (vm *VM) State() State { return vm.state }

// Run executes the program's <main> function to completion, returning its
// final value and entering the Halted state, or returning a *Trap and
// entering the Trapped state.
func (vm *VM) Run() (types.Value, error) {
	vm.state = Running
	vm.frames = append(vm.frames, Frame{fn: vm.prog.Main, localsBase: 0})

	for {
		fr := &vm.frames[len(vm.frames)-1]

		vm.steps++
		if vm.limits.MaxSteps > 0 && vm.steps > vm.limits.MaxSteps {
			vm.state = Trapped
			return types.Nil, vm.trap(fr, StepBudgetExceeded)
		}

		halted, result, err := vm.step(fr)
		if err != nil {
			vm.state = Trapped
			return types.Nil, err
		}
		if halted {
			vm.state = Halted
			return result, nil
		}
	}
}

func (vm *VM) trap(fr *Frame, kind TrapKind) *Trap {
	return &Trap{Kind: kind, Fn: fr.fn.Name, IP: fr.ip, Line: fr.line()}
}

// push appends v to the operand stack, trapping on overflow.
func (vm *VM) push(fr *Frame, v types.Value) error {
	if vm.limits.MaxStack > 0 && len(vm.stack) >= vm.limits.MaxStack {
		return vm.trap(fr, StackOverflow)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

// pop removes and returns the operand stack's top value, trapping on
// underflow (which indicates a code generator bug, since a well-typed
// program never pops past its own pushes).
func (vm *VM) pop(fr *Frame) (types.Value, error) {
	if len(vm.stack) == 0 {
		return types.Nil, vm.trap(fr, StackUnderflow)
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) u8(fr *Frame) int {
	b := fr.fn.Code[fr.ip]
	fr.ip++
	return int(b)
}

func (vm *VM) u32(fr *Frame) uint32 {
	code := fr.fn.Code
	v := uint32(code[fr.ip])<<24 | uint32(code[fr.ip+1])<<16 | uint32(code[fr.ip+2])<<8 | uint32(code[fr.ip+3])
	fr.ip += 4
	return v
}

// i16 reads a signed 16-bit big-endian jump distance and advances ip past
// it.
func (vm *VM) i16(fr *Frame) int {
	code := fr.fn.Code
	v := int16(uint16(code[fr.ip])<<8 | uint16(code[fr.ip+1]))
	fr.ip += 2
	return int(v)
}

// step decodes and executes exactly one instruction of fr. It returns
// (true, result, nil) when this instruction was the OpReturn that unwound
// the outermost frame, ending the run.
func (vm *VM) step(fr *Frame) (bool, types.Value, error) {
	op := compiler.Opcode(fr.fn.Code[fr.ip])
	fr.ip++

	switch op {
	case compiler.OpLoadConstant:
		k := vm.u8(fr)
		return false, types.Nil, vm.push(fr, vm.prog.Constants[k])

	case compiler.OpGetLocal:
		s := vm.u8(fr)
		return false, types.Nil, vm.push(fr, vm.stack[fr.localsBase+s])

	case compiler.OpSetLocal:
		s := vm.u8(fr)
		vm.stack[fr.localsBase+s] = vm.stack[len(vm.stack)-1]
		return false, types.Nil, nil

	case compiler.OpStructAlloc:
		size := int(vm.u32(fr))
		off := vm.alloc(size)
		return false, types.Nil, vm.push(fr, types.MakeHeap(off))

	case compiler.OpGetField:
		off := int(vm.u32(fr))
		size := int(vm.u32(fr))
		tag := types.ValueTag(vm.u8(fr))
		base, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		addr := base.Heap + off
		v := decodeScalar(vm.heap[addr:addr+size], tag)
		return false, types.Nil, vm.push(fr, v)

	case compiler.OpSetField:
		off := int(vm.u32(fr))
		size := int(vm.u32(fr))
		n := len(vm.stack)
		value := vm.stack[n-1]
		base := vm.stack[n-2]
		addr := base.Heap + off
		encodeScalar(vm.heap[addr:addr+size], value)
		vm.stack[n-2] = value
		vm.stack = vm.stack[:n-1]
		return false, types.Nil, nil

	case compiler.OpGetFieldStruct:
		off := int(vm.u32(fr))
		_ = vm.u32(fr) // size: unused, the pointer is returned unread
		base, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		return false, types.Nil, vm.push(fr, types.MakeHeap(base.Heap+off))

	case compiler.OpSetFieldStruct:
		off := int(vm.u32(fr))
		size := int(vm.u32(fr))
		n := len(vm.stack)
		src := vm.stack[n-1]
		dest := vm.stack[n-2]
		addr := dest.Heap + off
		copy(vm.heap[addr:addr+size], vm.heap[src.Heap:src.Heap+size])
		vm.stack[n-2] = src
		vm.stack = vm.stack[:n-1]
		return false, types.Nil, nil

	case compiler.OpGetIndex:
		elemSize := int(vm.u32(fr))
		tag := types.ValueTag(vm.u8(fr))
		n := len(vm.stack)
		idx := int(vm.stack[n-1].I32)
		base := vm.stack[n-2]
		addr := base.Heap + idx*elemSize
		v := decodeScalar(vm.heap[addr:addr+elemSize], tag)
		vm.stack = vm.stack[:n-2]
		return false, types.Nil, vm.push(fr, v)

	case compiler.OpSetIndex:
		elemSize := int(vm.u32(fr))
		n := len(vm.stack)
		value := vm.stack[n-1]
		idx := int(vm.stack[n-2].I32)
		base := vm.stack[n-3]
		addr := base.Heap + idx*elemSize
		encodeScalar(vm.heap[addr:addr+elemSize], value)
		vm.stack[n-3] = value
		vm.stack = vm.stack[:n-2]
		return false, types.Nil, nil

	case compiler.OpGetIndexStruct:
		elemSize := int(vm.u32(fr))
		n := len(vm.stack)
		idx := int(vm.stack[n-1].I32)
		base := vm.stack[n-2]
		addr := base.Heap + idx*elemSize
		vm.stack = vm.stack[:n-2]
		return false, types.Nil, vm.push(fr, types.MakeHeap(addr))

	case compiler.OpSetIndexStruct:
		elemSize := int(vm.u32(fr))
		n := len(vm.stack)
		src := vm.stack[n-1]
		idx := int(vm.stack[n-2].I32)
		dest := vm.stack[n-3]
		addr := dest.Heap + idx*elemSize
		copy(vm.heap[addr:addr+elemSize], vm.heap[src.Heap:src.Heap+elemSize])
		vm.stack[n-3] = src
		vm.stack = vm.stack[:n-2]
		return false, types.Nil, nil

	case compiler.OpFieldAddr:
		off := int(vm.u32(fr))
		base, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		return false, types.Nil, vm.push(fr, types.MakeHeap(base.Heap+off))

	case compiler.OpDup:
		return false, types.Nil, vm.push(fr, vm.stack[len(vm.stack)-1])

	case compiler.OpAdd, compiler.OpSubtract, compiler.OpMultiply, compiler.OpDivide,
		compiler.OpGreater, compiler.OpLess, compiler.OpGreaterEqual, compiler.OpLessEqual:
		tag := types.ValueTag(vm.u8(fr))
		right, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		left, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		v, err := vm.arith(fr, op, tag, left, right)
		if err != nil {
			return false, types.Nil, err
		}
		return false, types.Nil, vm.push(fr, v)

	case compiler.OpEqual, compiler.OpNotEqual:
		_ = vm.u8(fr) // type tag: Value.Equal dispatches on the values' own tags
		right, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		left, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		eq := left.Equal(right)
		if op == compiler.OpNotEqual {
			eq = !eq
		}
		return false, types.Nil, vm.push(fr, types.MakeBool(eq))

	case compiler.OpNegate:
		tag := types.ValueTag(vm.u8(fr))
		v, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		if tag == types.F32Value {
			return false, types.Nil, vm.push(fr, types.MakeF32(-v.F32))
		}
		return false, types.Nil, vm.push(fr, types.MakeI32(-v.I32))

	case compiler.OpNot:
		_ = vm.u8(fr)
		v, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		return false, types.Nil, vm.push(fr, types.MakeBool(!v.Bool))

	case compiler.OpCast:
		from := types.ValueTag(vm.u8(fr))
		to := types.ValueTag(vm.u8(fr))
		v, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		cv, ok := castValue(v, from, to)
		if !ok {
			return false, types.Nil, vm.trap(fr, InvalidCast)
		}
		return false, types.Nil, vm.push(fr, cv)

	case compiler.OpPop:
		_, err := vm.pop(fr)
		return false, types.Nil, err

	case compiler.OpJmp:
		off := vm.i16(fr)
		fr.ip += off
		return false, types.Nil, nil

	case compiler.OpJmpIfFalse:
		off := vm.i16(fr)
		if !vm.stack[len(vm.stack)-1].Bool {
			fr.ip += off
		}
		return false, types.Nil, nil

	case compiler.OpJmpIfTrue:
		off := vm.i16(fr)
		if vm.stack[len(vm.stack)-1].Bool {
			fr.ip += off
		}
		return false, types.Nil, nil

	case compiler.OpLoop:
		off := vm.i16(fr)
		fr.ip -= off
		return false, types.Nil, nil

	case compiler.OpCall:
		return false, types.Nil, vm.call(fr)

	case compiler.OpReturn:
		return vm.doReturn(fr)

	case compiler.OpPrint:
		tag := types.ValueTag(vm.u8(fr))
		v, err := vm.pop(fr)
		if err != nil {
			return false, types.Nil, err
		}
		_ = tag // the value's own Tag already selects its String() rendering
		fmt.Fprintln(vm.stdout, v.String())
		return false, types.Nil, nil

	default:
		return false, types.Nil, vm.trap(fr, InvalidOpcode)
	}
}

// arith computes one of +, -, *, /, <, <=, >, >= over left and right,
// selecting i32 or f32 decoding by tag. Division by zero, integer or
// float, traps rather than producing an IEEE-754 infinity or NaN.
func (vm *VM) arith(fr *Frame, op compiler.Opcode, tag types.ValueTag, left, right types.Value) (types.Value, error) {
	if tag == types.F32Value {
		l, r := left.F32, right.F32
		switch op {
		case compiler.OpAdd:
			return types.MakeF32(l + r), nil
		case compiler.OpSubtract:
			return types.MakeF32(l - r), nil
		case compiler.OpMultiply:
			return types.MakeF32(l * r), nil
		case compiler.OpDivide:
			if r == 0 {
				return types.Nil, vm.trap(fr, DivisionByZero)
			}
			return types.MakeF32(l / r), nil
		case compiler.OpGreater:
			return types.MakeBool(l > r), nil
		case compiler.OpLess:
			return types.MakeBool(l < r), nil
		case compiler.OpGreaterEqual:
			return types.MakeBool(l >= r), nil
		case compiler.OpLessEqual:
			return types.MakeBool(l <= r), nil
		}
	}

	l, r := left.I32, right.I32
	switch op {
	case compiler.OpAdd:
		return types.MakeI32(l + r), nil
	case compiler.OpSubtract:
		return types.MakeI32(l - r), nil
	case compiler.OpMultiply:
		return types.MakeI32(l * r), nil
	case compiler.OpDivide:
		if r == 0 {
			return types.Nil, vm.trap(fr, DivisionByZero)
		}
		return types.MakeI32(l / r), nil
	case compiler.OpGreater:
		return types.MakeBool(l > r), nil
	case compiler.OpLess:
		return types.MakeBool(l < r), nil
	case compiler.OpGreaterEqual:
		return types.MakeBool(l >= r), nil
	case compiler.OpLessEqual:
		return types.MakeBool(l <= r), nil
	}
	return types.Nil, vm.trap(fr, InvalidOpcode)
}

// castValue converts v from one ValueTag to another among {i32, f32, bool},
// mirroring the checker's compile-time foldCastValue so a constant cast and
// an equivalent runtime cast always agree.
func castValue(v types.Value, from, to types.ValueTag) (types.Value, bool) {
	switch to {
	case types.I32Value:
		switch from {
		case types.I32Value:
			return v, true
		case types.F32Value:
			return types.MakeI32(int32(v.F32)), true
		case types.BoolValue:
			if v.Bool {
				return types.MakeI32(1), true
			}
			return types.MakeI32(0), true
		}
	case types.F32Value:
		switch from {
		case types.F32Value:
			return v, true
		case types.I32Value:
			return types.MakeF32(float32(v.I32)), true
		case types.BoolValue:
			if v.Bool {
				return types.MakeF32(1), true
			}
			return types.MakeF32(0), true
		}
	case types.BoolValue:
		switch from {
		case types.BoolValue:
			return v, true
		case types.I32Value:
			return types.MakeBool(v.I32 != 0), true
		case types.F32Value:
			return types.MakeBool(v.F32 != 0), true
		}
	}
	return types.Nil, false
}

// call lowers OpCall: argc arguments sit atop the callee value; the new
// frame's locals_base is the callee's own stack position, so slot 0 is the
// callee and slots 1..argc are the arguments.
func (vm *VM) call(fr *Frame) error {
	argc := vm.u8(fr)
	n := len(vm.stack)
	calleeIdx := n - argc - 1
	callee := vm.stack[calleeIdx]
	if callee.Tag != types.FuncValue {
		return vm.trap(fr, InvalidOpcode)
	}
	fn := vm.prog.Functions[callee.Func]

	if vm.limits.MaxFrames > 0 && len(vm.frames) >= vm.limits.MaxFrames {
		return vm.trap(fr, StackOverflow)
	}
	vm.frames = append(vm.frames, Frame{fn: fn, ip: 0, localsBase: calleeIdx})
	return nil
}

// doReturn lowers OpReturn: pop the return value, tear down the current
// frame back to its locals_base, and either push the value on the caller's
// stack or, for the outermost frame, report it as the run's final result.
func (vm *VM) doReturn(fr *Frame) (bool, types.Value, error) {
	retVal, err := vm.pop(fr)
	if err != nil {
		return false, types.Nil, err
	}
	vm.stack = vm.stack[:fr.localsBase]
	vm.stack = append(vm.stack, retVal)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		return true, retVal, nil
	}
	return false, types.Nil, nil
}
