package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/toylang/lang/driver"
	"github.com/mna/toylang/lang/token"
)

// Tokenize runs the lexer over each file and prints its token stream.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		s := driver.NewSession(f, src)
		toks := s.Tokenize()
		for _, tv := range toks {
			fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", f, tv.Pos.Line, tv.Pos.Col(), tv.Tok)
			if tv.Tok == token.IDENT || tv.Tok == token.STRING {
				fmt.Fprintf(stdio.Stdout, " %q", tv.Str)
			} else if tv.Tok == token.INT {
				fmt.Fprintf(stdio.Stdout, " %d", tv.Int)
			} else if tv.Tok == token.FLOAT {
				fmt.Fprintf(stdio.Stdout, " %g", tv.Float)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if !s.Errs.OK() {
			fmt.Fprint(stdio.Stderr, s.Errs.Report())
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tokenize: one or more files failed")
	}
	return nil
}
