// cmd/hemlock is the CLI host for Hemlock's execution core: spec §6's
// external interface, "hemlock <file.hml> [args...]". Grounded on the
// teacher's cmd/sentra/main.go (command-alias map, VERSION/BuildDate/
// GitCommit build variables), scoped down to the subcommands this core
// actually needs — run/repl/version — since build/fmt/lint/lsp/debug/
// watch belong to collaborators spec.md §1 explicitly places out of
// scope for the core.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Schneewolf-Labs/hemlock/internal/builtins"
	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/eval"
	"github.com/Schneewolf-Labs/hemlock/internal/herrors"
	"github.com/Schneewolf-Labs/hemlock/internal/parser"
	"github.com/Schneewolf-Labs/hemlock/internal/repl"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

const Version = "0.1.0"

var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		startREPL()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-version", "version":
		showVersion()
	case "repl":
		startREPL()
	case "run":
		runFile(args[1:])
	default:
		// Bare `hemlock script.hml [args...]` without an explicit "run".
		runFile(args)
	}
}

func showUsage() {
	fmt.Println(`Hemlock - a small dynamically-typed, manually-managed scripting language

Usage:
  hemlock <file.hml> [args...]    Run a script
  hemlock run <file.hml> [args...]
  hemlock repl                    Start the interactive REPL
  hemlock version                 Print version information`)
}

func showVersion() {
	fmt.Printf("hemlock %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
}

func startREPL() {
	rt := runtime.New()
	tty := isatty.IsTerminal(os.Stdin.Fd())
	repl.Start(rt, os.Stdin, os.Stdout, os.Stderr, tty)
}

// runFile implements spec §6's non-REPL interface: parse and lex errors
// print the parser's or lexer's own "line N: <message>" text and exit
// non-zero (no "[line N] Error at '<token>'" form; the token is not
// printed); evaluator errors print "Runtime error: <message>" and exit
// non-zero.
func runFile(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "hemlock: missing script file")
		os.Exit(1)
	}
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, herrors.Wrap(err, "reading "+path))
		os.Exit(1)
	}

	stmts, err := parser.ParseSource(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	rt := runtime.New()
	globalEnv := env.New(rt.Reg)
	builtins.Install(rt, globalEnv)
	bindScriptArgs(rt, globalEnv, args[1:])

	interp := eval.New(rt, globalEnv)
	if err := interp.Run(stmts); err != nil {
		fmt.Fprintln(os.Stderr, herrors.Runtime(err))
		os.Exit(1)
	}
}

// bindScriptArgs exposes the script's trailing os.Args as a global "args"
// array, mirroring the teacher's convention of passing CLI args through to
// running programs without adding dedicated interpreter API surface for it.
func bindScriptArgs(rt *runtime.Runtime, globalEnv *env.Environment, scriptArgs []string) {
	arr := value.NewArray(rt.Reg)
	for _, a := range scriptArgs {
		s := value.NewString(a)
		v := value.FromHeap(value.KindString, s)
		value.Retain(v)
		arr.Push(v)
		value.Release(rt.Reg, v)
	}
	out := value.FromHeap(value.KindArray, arr)
	value.Retain(out)
	_ = globalEnv.Define("args", out, true)
}
