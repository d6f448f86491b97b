// Package errs implements the shared, append-only error accumulator used by
// every compiler stage (lexer, parser, collector, checker). It wraps
// go/scanner's Error and ErrorList instead of reimplementing positioned,
// sortable, multi-error accumulation from scratch.
package errs

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"

	"github.com/mna/toylang/lang/token"
)

type (
	// Error is a single positioned error message.
	Error = scanner.Error
	// List is an append-only, sortable list of positioned errors.
	List = scanner.ErrorList
)

// PrintError prints err to w; if err is a List, one error per line.
var PrintError = scanner.PrintError

// State is the shared error accumulator threaded through every compiler
// stage. It never panics or returns early on error: callers append and keep
// going, relying on sentinel AST nodes and the Resolved/invalid type to
// suppress cascades.
type State struct {
	Filename string
	Source   []byte

	list List
}

// Add appends a positioned error built from pos and a formatted message.
func (s *State) Add(pos token.Pos, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.list.Add(gotoken.Position{
		Filename: s.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Col(),
	}, msg)
}

// Len returns the number of accumulated errors.
func (s *State) Len() int {
	return len(s.list)
}

// OK reports whether compilation is successful so far, i.e. zero errors.
func (s *State) OK() bool {
	return len(s.list) == 0
}

// Err returns the accumulated errors as an error (nil if none), sorted by
// position.
func (s *State) Err() error {
	if len(s.list) == 0 {
		return nil
	}
	s.list.Sort()
	return s.list.Err()
}

// Report renders every accumulated error as filename:line:col, the source
// line it occurred on, a caret under the offending column, and the message.
func (s *State) Report() string {
	s.list.Sort()

	var sb strings.Builder
	lines := strings.Split(string(s.Source), "\n")
	for _, e := range s.list {
		fmt.Fprintf(&sb, "%s: %s\n", e.Pos, e.Msg)
		if e.Pos.Line >= 1 && e.Pos.Line <= len(lines) {
			line := lines[e.Pos.Line-1]
			sb.WriteString(line)
			sb.WriteByte('\n')
			col := e.Pos.Column
			if col < 1 {
				col = 1
			}
			sb.WriteString(strings.Repeat(" ", col-1))
			sb.WriteString("^\n")
		}
	}
	return sb.String()
}
