package machine

import "github.com/mna/toylang/lang/compiler"

// Frame is the runtime record bound to one in-flight call: the function
// executing, its instruction pointer, and the base index into the value
// stack where its locals begin (slot 0 is the callee itself, slots
// 1..argc are its arguments).
type Frame struct {
	fn         *compiler.Function
	ip         int
	localsBase int
}

// line returns the source line the frame's current instruction pointer maps
// to, via the function's parallel per-byte line table.
func (f *Frame) line() int {
	if f.ip >= 0 && f.ip < len(f.fn.Lines) {
		return f.fn.Lines[f.ip]
	}
	if len(f.fn.Lines) > 0 {
		return f.fn.Lines[len(f.fn.Lines)-1]
	}
	return 0
}
