// Package compiler implements the code generator: it lowers a type-checked
// AST into a Program of flat bytecode functions plus a shared constant
// table, ready for the virtual machine to execute.
package compiler

import "github.com/mna/toylang/lang/types"

// Function is one compiled function's flat instruction stream, with a
// parallel per-byte line table for diagnostics and disassembly.
type Function struct {
	Name      string
	NumParams int
	Code      []byte
	Lines     []int
}

// Program is the output of code generation: a constant table shared by
// every function, and the functions themselves. Main is the synthesized
// top-level function holding the program's free statements; the virtual
// machine's initial frame executes it.
type Program struct {
	Constants []types.Value
	Functions []*Function
	Main      *Function
}
