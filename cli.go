// Completion: 100% - Utility module complete
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/xyproto/expjit/internal/engine"
)

// cli.go - Command-line interface for expjit
//
//	expjit [flags] [expression]
//
// Compiles the expression (or the built-in example), runs the generated code
// and prints the rewritten expression, the instruction count and the value.

// DefaultExpression exercises every rewrite rule and the sharing of a whole product operand
const DefaultExpression = "(1 + x*3 + 4*(5 + y)) * (1 + x*3 + 4*(5 + y))"

// CommandContext holds the execution context for a CLI command
type CommandContext struct {
	Config     Config
	Env        Environment
	Stdout     io.Writer
	Stderr     io.Writer
	Asm        bool
	Pool       bool
	PoolFormat string
	Check      bool
}

// cliFlags are the raw flag values, applied on top of the environment config
type cliFlags struct {
	arch       string
	verbose    bool
	emulate    bool
	noColor    bool
	asm        bool
	pool       bool
	poolFormat string
	check      bool
	env        map[string]int64
}

// RunCLI runs the command line and returns the process exit code
func RunCLI(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ce *CompilerError
	if errors.As(err, &ce) {
		fmt.Fprint(stderr, ce.Format(useColor(stderr, cmd)))
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

// NewRootCommand builds the expjit command tree
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "expjit [flags] [expression]",
		Short: "Compile an arithmetic expression to machine code and run it",
		Long: `expjit compiles expressions over integers, single letter variables, '+', '*'
and parentheses into x86_64 or aarch64 machine code, then runs it.

The rewritten expression is printed with every binary operation in
parentheses and a '!' after the '(' of each shared subexpression.

Environment variables (overridden by flags):
  EXPJIT_ARCH, EXPJIT_VERBOSE, EXPJIT_EMULATE, EXPJIT_NO_COLOR,
  EXPJIT_MAX_NODES, EXPJIT_CODE_SIZE, EXPJIT_MAX_STACK,
  EXPJIT_REGISTERS, EXPJIT_CACHE_SLOTS`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCommandContext(cmd, flags, stdout, stderr)
			if err != nil {
				return err
			}
			src := DefaultExpression
			if len(args) == 1 {
				src = args[0]
			}
			return cmdCompile(ctx, src)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	f := rootCmd.Flags()
	f.StringVar(&flags.arch, "arch", "", "target architecture: amd64 or arm64 (default: host)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "trace the pipeline and every emitted instruction on stderr")
	f.BoolVar(&flags.emulate, "emulate", false, "run in the built-in emulator even when the host could run the code")
	f.BoolVar(&flags.noColor, "no-color", false, "disable colored diagnostics")
	f.BoolVar(&flags.asm, "asm", false, "print a disassembly listing on stderr")
	f.BoolVar(&flags.pool, "pool", false, "dump the node pool on stderr")
	f.StringVar(&flags.poolFormat, "pool-format", "table", "node pool dump format: table or yaml")
	f.BoolVar(&flags.check, "check", false, "compile for every architecture and compare the results with the evaluator")
	f.StringToInt64Var(&flags.env, "env", nil, "variable values, e.g. x=5,y=7 (default x=2,y=3)")

	rootCmd.AddCommand(versionCmd(stdout))
	return rootCmd
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, versionString)
		},
	}
}

// newCommandContext merges the environment config with the flags that were set
func newCommandContext(cmd *cobra.Command, flags *cliFlags, stdout, stderr io.Writer) (*CommandContext, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("arch") {
		arch, err := engine.ParseArch(flags.arch)
		if err != nil {
			return nil, err
		}
		cfg.Arch = arch
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("emulate") {
		cfg.Emulate = flags.emulate
	}
	if changed("no-color") {
		cfg.NoColor = flags.noColor
	}
	if flags.poolFormat != "table" && flags.poolFormat != "yaml" {
		return nil, fmt.Errorf("unknown pool format %q (supported: table, yaml)", flags.poolFormat)
	}

	ctx := &CommandContext{
		Config:     cfg,
		Env:        DefaultEnvironment(),
		Stdout:     stdout,
		Stderr:     stderr,
		Asm:        flags.asm,
		Pool:       flags.pool,
		PoolFormat: flags.poolFormat,
		Check:      flags.check,
	}
	if err := ctx.Env.Apply(flags.env); err != nil {
		return nil, err
	}
	return ctx, nil
}

// useColor reports whether diagnostics on w should be colored
func useColor(w io.Writer, cmd *cobra.Command) bool {
	if color.NoColor {
		return false
	}
	if f := cmd.Flags().Lookup("no-color"); f != nil && f.Changed {
		return f.Value.String() == "false"
	}
	if cfg, err := LoadConfig(); err == nil && cfg.NoColor {
		return false
	}
	file, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
}

// cmdCompile compiles src, runs it and prints the three result lines
func cmdCompile(ctx *CommandContext, src string) error {
	prog, err := Compile(ctx.Config, src, ctx.Stderr)
	if err != nil {
		return err
	}
	defer prog.Close()

	if ctx.Pool {
		if err := WritePool(ctx.Stderr, ctx.PoolFormat, prog.Pool, prog.Root); err != nil {
			return err
		}
	}
	if ctx.Asm {
		if err := prog.WriteListing(ctx.Stderr); err != nil {
			return err
		}
	}

	var value int64
	if ctx.Config.Emulate {
		value, err = prog.Emulate(&ctx.Env)
	} else {
		value, err = prog.Run(&ctx.Env)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, prog.Unparse())
	fmt.Fprintf(ctx.Stdout, "%d instructions\n", prog.Instructions())
	fmt.Fprintf(ctx.Stdout, "value %d\n", value)

	if ctx.Check {
		return cmdCheck(ctx, src, value)
	}
	return nil
}

// cmdCheck compiles src for every architecture and compares each result with
// the evaluator and with the value already printed
func cmdCheck(ctx *CommandContext, src string, printed int64) error {
	var want int64
	for i, arch := range engine.All() {
		cfg := ctx.Config
		cfg.Arch = arch
		cfg.Verbose = false
		prog, err := Compile(cfg, src, nil)
		if err != nil {
			return err
		}
		if i == 0 {
			want = prog.Evaluate(&ctx.Env)
		}
		got, err := prog.Run(&ctx.Env)
		mode := "emulated"
		if prog.Native() {
			mode = "native"
		}
		prog.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stderr, "check: %-8s %-14s %-9s %d instructions, value %d\n",
			arch, arch.Discipline(), mode, prog.Instructions(), got)
		if got != want {
			return FatalError(fmt.Sprintf("%s code computes %d, the evaluator %d", arch, got, want))
		}
	}
	if printed != want {
		return FatalError(fmt.Sprintf("printed value %d, the evaluator computes %d", printed, want))
	}
	fmt.Fprintf(ctx.Stderr, "check: evaluator %d, all architectures agree\n", want)
	return nil
}
