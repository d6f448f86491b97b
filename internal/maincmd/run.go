package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/driver"
)

// Run compiles each file and executes it on the virtual machine.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, files []string) error {
	limits, err := config.Load(c.ConfigFile)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	var failed bool
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		s := driver.NewSession(f, src)
		prog, err := s.CompileCode(driver.Options{PrintAST: c.PrintAST, PrintBytecode: c.PrintBytecode}, stdio.Stdout)
		if err != nil {
			fmt.Fprint(stdio.Stderr, s.Errs.Report())
			failed = true
			continue
		}
		if _, err := driver.Run(prog, limits, stdio.Stdout); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", f, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("run: one or more files failed")
	}
	return nil
}
