package compiler

import "github.com/mna/toylang/lang/token"

// emitter accumulates one Function's bytecode and tracks the compile-time
// locals stack used to resolve identifiers to slot indices: entering a
// scope pushes names, leaving it pops them back off, so a later lookup by
// name finds the innermost, i.e. most recently pushed, match.
type emitter struct {
	fn      *Function
	locals  []string
	curLine int
}

func newEmitter(fn *Function) *emitter {
	return &emitter{fn: fn}
}

func (e *emitter) setLine(pos token.Pos) {
	e.curLine = pos.Line
}

func (e *emitter) emit(b byte) int {
	pos := len(e.fn.Code)
	e.fn.Code = append(e.fn.Code, b)
	e.fn.Lines = append(e.fn.Lines, e.curLine)
	return pos
}

func (e *emitter) emitOp(op Opcode) int {
	return e.emit(byte(op))
}

func (e *emitter) emitU8(v int) {
	e.emit(byte(v))
}

func (e *emitter) emitU32(v uint32) {
	e.emit(byte(v >> 24))
	e.emit(byte(v >> 16))
	e.emit(byte(v >> 8))
	e.emit(byte(v))
}

// emitI16Placeholder reserves a 2-byte big-endian slot for a jump offset
// and returns its position, to be patched later by patchJump.
func (e *emitter) emitI16Placeholder() int {
	pos := len(e.fn.Code)
	e.emit(0)
	e.emit(0)
	return pos
}

// patchJump computes the signed distance from just past the 2-byte operand
// at operandPos to the current end of the instruction stream, and writes it
// big-endian over the placeholder.
func (e *emitter) patchJump(operandPos int) {
	dist := len(e.fn.Code) - operandPos - 2
	e.fn.Code[operandPos] = byte(int16(dist) >> 8)
	e.fn.Code[operandPos+1] = byte(int16(dist))
}

// here returns the current end position of the instruction stream, used as
// a backward jump target for OpLoop.
func (e *emitter) here() int {
	return len(e.fn.Code)
}

// emitLoop emits OpLoop with the backward distance from the current
// position to target.
func (e *emitter) emitLoop(target int) {
	e.emitOp(OpLoop)
	pos := e.emitI16Placeholder()
	dist := pos + 2 - target
	e.fn.Code[pos] = byte(int16(dist) >> 8)
	e.fn.Code[pos+1] = byte(int16(dist))
}

// push installs name as the next local slot and returns its index.
func (e *emitter) push(name string) int {
	e.locals = append(e.locals, name)
	return len(e.locals) - 1
}

// popTo truncates the locals stack back to n entries, used when leaving a
// block scope.
func (e *emitter) popTo(n int) {
	e.locals = e.locals[:n]
}

// resolve searches the locals stack from the top down so an inner
// declaration shadows an outer one with the same name.
func (e *emitter) resolve(name string) (int, bool) {
	for i := len(e.locals) - 1; i >= 0; i-- {
		if e.locals[i] == name {
			return i, true
		}
	}
	return 0, false
}
