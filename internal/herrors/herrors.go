// Package herrors formats Hemlock's two surfaced error shapes (spec §6):
// a parse-time "[line N] Error at 'token': message" and a runtime
// "Runtime error: message". Grounded on the teacher's internal/errors
// (SentraError: Type/Message/SourceLocation/CallStack), trimmed to the
// two shapes spec.md actually specifies and built on github.com/pkg/errors
// for the stack-trace wrapping the teacher's VM/compiler errors use.
package herrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseDiagnostic is one parser or lexer failure: spec §6's
// "[line N] Error at '<token>': <message>" shape.
type ParseDiagnostic struct {
	Line    int
	Token   string
	Message string
}

func (d *ParseDiagnostic) Error() string {
	if d.Token == "" {
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", d.Line, d.Token, d.Message)
}

// Runtime formats an evaluator-surfaced error per spec §6's
// "Runtime error: <message>" shape.
func Runtime(err error) string {
	return fmt.Sprintf("Runtime error: %s", err.Error())
}

// Wrap attaches a stack trace at a collaborator boundary (CLI, REPL) the
// way the teacher's main.go wraps VM/compiler failures before reporting
// them, via github.com/pkg/errors.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

// Stack renders the wrapped error's stack trace, or "" if err carries
// none. The CLI has no flag that prints it.
func Stack(err error) string {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := err.(stackTracer); ok {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}
