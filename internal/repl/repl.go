// Package repl implements Hemlock's interactive prompt (spec §6's CLI
// surface, "out of scope" per spec.md §1 as a core concern but required
// for a runnable collaborator). Grounded on the teacher's
// internal/repl/repl.go line-at-a-time loop, swapped from lex→parse→
// compile→VM-run to lex→parse→tree-walk since the core here is a
// tree-walking evaluator, not a bytecode VM.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Schneewolf-Labs/hemlock/internal/builtins"
	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/eval"
	"github.com/Schneewolf-Labs/hemlock/internal/herrors"
	"github.com/Schneewolf-Labs/hemlock/internal/parser"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
)

// Start runs the read-eval-print loop against in, printing prompts and
// results to out/errOut. Bindings persist across lines in one global
// environment, so a function defined on one line is callable on the next.
func Start(rt *runtime.Runtime, in io.Reader, out, errOut io.Writer, prompt bool) {
	scanner := bufio.NewScanner(in)
	globalEnv := env.New(rt.Reg)
	builtins.Install(rt, globalEnv)
	interp := eval.New(rt, globalEnv)

	if prompt {
		fmt.Fprintln(out, "Hemlock REPL | type 'exit' to quit")
	}
	for {
		if prompt {
			fmt.Fprint(out, ">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		stmts, err := parser.ParseSource(line)
		if err != nil {
			fmt.Fprintln(errOut, err.Error())
			continue
		}
		if err := interp.Run(stmts); err != nil {
			fmt.Fprintln(errOut, herrors.Runtime(err))
		}
	}
}
