package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/toylang/lang/compiler"
	"github.com/mna/toylang/lang/driver"
)

// Compile runs the full front end over each file and prints the compiled
// program's disassembly.
func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		s := driver.NewSession(f, src)
		prog, err := s.CompileCode(driver.Options{PrintAST: c.PrintAST}, stdio.Stdout)
		if err != nil {
			fmt.Fprint(stdio.Stderr, s.Errs.Report())
			failed = true
			continue
		}
		compiler.Disassemble(stdio.Stdout, prog)
	}
	if failed {
		return fmt.Errorf("compile: one or more files failed")
	}
	return nil
}
