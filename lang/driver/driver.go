// Package driver orchestrates the compiler pipeline end to end: Tokenize ->
// Parse -> Collect -> TypeCheck -> (if zero errors) CodeGen, short-
// circuiting code generation whenever an earlier stage has recorded an
// error. Run is a separate entry point into the virtual machine, kept apart
// from compilation so callers can compile once and execute many times.
package driver

import (
	"io"

	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/check"
	"github.com/mna/toylang/lang/compiler"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/lexer"
	"github.com/mna/toylang/lang/machine"
	"github.com/mna/toylang/lang/parser"
	"github.com/mna/toylang/lang/resolve"
	"github.com/mna/toylang/lang/types"
)

// Options toggles the driver's optional per-stage debug dumps.
type Options struct {
	PrintAST      bool
	PrintBytecode bool
}

// Session carries the state shared by every stage of one file's
// compilation: its source, and the error accumulator every stage appends
// to. A fresh Session is created per input; nothing it owns outlives the
// compilation call that created it, so everything is released wholesale by
// the garbage collector once the Session falls out of scope.
type Session struct {
	Filename string
	Source   []byte
	Errs     *errs.State
}

// NewSession creates a Session over src, ready for Tokenize or CompileCode.
func NewSession(filename string, src []byte) *Session {
	return &Session{
		Filename: filename,
		Source:   src,
		Errs:     &errs.State{Filename: filename, Source: src},
	}
}

// Tokenize runs only the lexer stage, for the `tokenize` CLI command and
// debug tooling.
func (s *Session) Tokenize() []lexer.TokenValue {
	return lexer.Tokenize(s.Source, s.Errs)
}

// Parse runs the lexer and parser stages, for the `parse` CLI command.
func (s *Session) Parse() *ast.Block {
	return parser.Parse(s.Source, s.Errs)
}

// CompileCode runs the full pipeline: Parse -> Collect -> TypeCheck ->
// CodeGen. CodeGen only runs if the error state is still empty after type
// checking. dump, if non-nil, receives the AST/bytecode debug output
// opts.PrintAST/PrintBytecode requests, each written right after the stage
// that produces it.
func (s *Session) CompileCode(opts Options, dump io.Writer) (*compiler.Program, error) {
	block := s.Parse()
	if opts.PrintAST && dump != nil {
		ast.Fprint(dump, block)
	}

	resolve.Collect(block, s.Errs)
	reg := check.Check(block, s.Errs)
	if !s.Errs.OK() {
		return nil, s.Errs.Err()
	}

	prog := compiler.Generate(block, reg, s.Errs)
	if !s.Errs.OK() {
		return nil, s.Errs.Err()
	}
	if opts.PrintBytecode && dump != nil {
		compiler.Disassemble(dump, prog)
	}
	return prog, nil
}

// Run executes prog's <main> function on a fresh virtual machine, writing
// `print` output to stdout and enforcing limits' resource bounds.
func Run(prog *compiler.Program, limits config.Limits, stdout io.Writer) (types.Value, error) {
	vm := machine.New(prog, limits, stdout)
	return vm.Run()
}
