// Package builtins is the concrete demonstration of spec §6's builtin
// registration interface: "(name, arity, variadic_flag,
// implementation_pointer)". spec.md §1 places standard-library modules
// out of scope for the execution core; this package is the minimal,
// collaborator-side example of something registering through that
// interface — print/clock/sleep/free/channel and other core builtins
// (JSON is the serialize/deserialize methods, not a builtin) plus the
// domain-stack builtins
// (SPEC_FULL.md DOMAIN STACK) that exercise the teacher corpus's
// third-party dependencies the execution core itself has no use for.
//
// Grounded on the teacher's vmregister.RegisterStdlib (sentra/internal/
// vmregister/stdlib.go): one registerGlobal call per builtin, module
// structs constructed up front and captured by closures. Adapted from
// NativeFnObj/registerGlobal onto value.BuiltinFn bound into the global
// Environment (this core's calling convention has no opcode table to
// register against).
package builtins

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Schneewolf-Labs/hemlock/internal/concurrency"
	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// reg binds name as a global BuiltinFn in both the interpreter's global
// environment (so calls resolve it) and the runtime's introspection
// registry (so a REPL ":builtins" style command, or a test, can list it).
func reg(rt *runtime.Runtime, globalEnv *env.Environment, name string, arity int, variadic bool, impl func(args []value.Value) (value.Value, error)) {
	bfn := &value.BuiltinFn{Name: name, Arity: arity, Variadic: variadic, Impl: impl}
	rt.Builtins.Register(&runtime.Builtin{
		Name: name, Arity: arity, Variadic: variadic,
		Impl: func(_ *runtime.Runtime, args []value.Value) (value.Value, error) { return impl(args) },
	})
	v := value.Builtin(bfn)
	// Globals are never reassigned or released out from under the program;
	// define once at install time and leak the single reference for the
	// process lifetime, same as the teacher's package-level NativeFnObj table.
	_ = globalEnv.Define(name, v, true)
}

// Install registers every builtin this repository provides. Called once
// at interpreter startup (cmd/hemlock, the REPL, and tests) against a
// fresh global Environment.
func Install(rt *runtime.Runtime, globalEnv *env.Environment) {
	installCore(rt, globalEnv)
	installFormat(rt, globalEnv)
	installTime(rt, globalEnv)
	installCrypto(rt, globalEnv)
	installNet(rt, globalEnv)
	installDB(rt, globalEnv)
}

func installCore(rt *runtime.Runtime, globalEnv *env.Environment) {
	out := bufio.NewWriter(rt.Stdout)

	reg(rt, globalEnv, "print", 1, true, func(args []value.Value) (value.Value, error) {
		for idx, a := range args {
			if idx > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(value.ToString(a))
		}
		out.WriteByte('\n')
		out.Flush()
		return value.Null, nil
	})

	reg(rt, globalEnv, "type_of", 1, false, func(args []value.Value) (value.Value, error) {
		return wrap(value.NewString(args[0].Kind.String())), nil
	})

	reg(rt, globalEnv, "assert", 1, true, func(args []value.Value) (value.Value, error) {
		if !value.Truthy(args[0]) {
			msg := "assertion failed"
			if len(args) > 1 && args[1].Kind == value.KindString {
				msg = args[1].Heap().(*value.StringObj).String()
			}
			return value.Null, fmt.Errorf("%s", msg)
		}
		return value.Null, nil
	})

	reg(rt, globalEnv, "free", 1, false, func(args []value.Value) (value.Value, error) {
		if err := value.Free(rt.Reg, args[0]); err != nil {
			return value.Null, err
		}
		return value.Null, nil
	})

	reg(rt, globalEnv, "channel", 0, true, func(args []value.Value) (value.Value, error) {
		capacity := 0
		if len(args) > 0 && args[0].Kind.IsNumeric() {
			capacity = int(args[0].Int())
		}
		ch := concurrency.NewChannel(rt.Reg, capacity)
		v := value.FromHeap(value.KindChannel, ch)
		value.Retain(v)
		return v, nil
	})

	reg(rt, globalEnv, "sleep", 1, false, func(args []value.Value) (value.Value, error) {
		if !args[0].Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "sleep expects a number of seconds"}
		}
		time.Sleep(time.Duration(asSeconds(args[0]) * float64(time.Second)))
		return value.Null, nil
	})

	reg(rt, globalEnv, "clock", 0, false, func(args []value.Value) (value.Value, error) {
		return value.F64(float64(time.Now().UnixNano()) / 1e9), nil
	})

	reg(rt, globalEnv, "join_all", 1, false, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindArray {
			return value.Null, &value.TypeError{Msg: "join_all expects an array of tasks"}
		}
		elems := args[0].Heap().(*value.ArrayObj).Elements()
		tasks := make([]*concurrency.TaskObj, len(elems))
		for i, e := range elems {
			if e.Kind != value.KindTask {
				return value.Null, &value.TypeError{Msg: "join_all expects an array of tasks"}
			}
			tasks[i] = e.Heap().(*concurrency.TaskObj)
		}
		results, err := concurrency.JoinAll(tasks)
		if err != nil {
			return value.Null, err
		}
		out := value.NewArray(rt.Reg)
		for _, r := range results {
			value.Retain(r)
			out.Push(r)
			value.Release(rt.Reg, r)
		}
		outVal := value.FromHeap(value.KindArray, out)
		value.Retain(outVal)
		return outVal, nil
	})

	reg(rt, globalEnv, "uuid", 0, false, func(args []value.Value) (value.Value, error) {
		return wrap(value.NewString(uuid.NewString())), nil
	})

	reg(rt, globalEnv, "read_line", 0, false, func(args []value.Value) (value.Value, error) {
		r := bufio.NewReader(os.Stdin)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return value.Null, nil
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return wrap(value.NewString(line)), nil
	})
}

func wrap(s *value.StringObj) value.Value {
	v := value.FromHeap(value.KindString, s)
	value.Retain(v)
	return v
}

func asSeconds(v value.Value) float64 {
	if v.Kind.IsFloat() {
		return v.Float()
	}
	return float64(v.Int())
}
