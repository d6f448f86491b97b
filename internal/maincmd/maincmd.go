// Package maincmd implements the toylang command-line tool: tokenize,
// parse, check, compile and run subcommands over one or more input files,
// built on the mna/mainer command harness.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "toylang"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

The <command> can be one of:
       tokenize                  Run the lexer and print the resulting
                                  token stream.
       parse                     Run the parser and print the resulting
                                  abstract syntax tree.
       check                     Run the parser, collector and type
                                  checker, printing any errors.
       compile                   Run the full front end and print the
                                  compiled bytecode's disassembly.
       run                       Compile and execute the program on the
                                  virtual machine.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --print-ast               Dump the AST during compile/run.
       --print-bytecode          Dump the disassembled bytecode during
                                  compile/run.
       --config <path>           YAML file overriding the virtual
                                  machine's resource limits.

More information on the %[1]s repository:
       https://github.com/mna/toylang
`, binName)
)

// Cmd is the CLI's flag-bound command object: mainer parses os.Args into
// its exported fields (by `flag` tag) and then dispatches to the
// lower-cased subcommand method matching args[0].
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help          bool   `flag:"h,help"`
	Version       bool   `flag:"v,version"`
	PrintAST      bool   `flag:"print-ast"`
	PrintBytecode bool   `flag:"print-bytecode"`
	ConfigFile    string `flag:"config"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands take a context, a mainer.Stdio and the remaining file
// arguments, and return an error.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
