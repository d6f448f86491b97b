package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/driver"
)

// Parse runs the lexer and parser over each file and prints the resulting
// AST.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		s := driver.NewSession(f, src)
		block := s.Parse()
		ast.Fprint(stdio.Stdout, block)
		if !s.Errs.OK() {
			fmt.Fprint(stdio.Stderr, s.Errs.Report())
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("parse: one or more files failed")
	}
	return nil
}
