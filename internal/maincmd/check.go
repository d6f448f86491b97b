package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/check"
	"github.com/mna/toylang/lang/driver"
	"github.com/mna/toylang/lang/resolve"
)

// Check runs the parser, collector and type checker over each file,
// printing errors (if any) or an ok line per file, preceded by the
// type-annotated AST dump when PrintAST is set.
func (c *Cmd) Check(_ context.Context, stdio mainer.Stdio, files []string) error {
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
		resolve.Collect(block, s.Errs)
		check.Check(block, s.Errs)

		if !s.Errs.OK() {
			fmt.Fprint(stdio.Stderr, s.Errs.Report())
			failed = true
			continue
		}
		if c.PrintAST {
			ast.Fprint(stdio.Stdout, block)
		}
		fmt.Fprintf(stdio.Stdout, "%s: ok\n", f)
	}
	if failed {
		return fmt.Errorf("check: one or more files failed")
	}
	return nil
}
