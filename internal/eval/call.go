package eval

import (
	"github.com/Schneewolf-Labs/hemlock/internal/ast"
	"github.com/Schneewolf-Labs/hemlock/internal/concurrency"
	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// evalArgs evaluates a defer call's arguments: positional and array-spread
// only (spec §4.8 doesn't call for named arguments on a deferred call).
func (i *Interp) evalArgs(args []ast.Argument) ([]value.Value, error) {
	out := make([]value.Value, 0, len(args))
	for _, a := range args {
		if a.Name != "" {
			return nil, rtErr("defer does not support named arguments")
		}
		v, err := a.Value.Accept(i)
		if err != nil {
			for _, o := range out {
				value.Release(i.RT.Reg, o)
			}
			return nil, err
		}
		if a.Spread {
			if v.Kind != value.KindArray {
				value.Release(i.RT.Reg, v)
				for _, o := range out {
					value.Release(i.RT.Reg, o)
				}
				return nil, &value.TypeError{Msg: "spread argument must be an array"}
			}
			for _, e := range v.Heap().(*value.ArrayObj).Elements() {
				value.Retain(e)
				out = append(out, e)
			}
			value.Release(i.RT.Reg, v)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// evalCallArgs is the full call-site evaluator: positional, named, and
// array-spread arguments (spec §4.5 "named and spread call arguments").
func (i *Interp) evalCallArgs(args []ast.Argument) (positional []value.Value, named map[string]value.Value, err error) {
	cleanup := func() {
		for _, v := range positional {
			value.Release(i.RT.Reg, v)
		}
		for _, v := range named {
			value.Release(i.RT.Reg, v)
		}
	}
	for _, a := range args {
		v, verr := a.Value.Accept(i)
		if verr != nil {
			cleanup()
			return nil, nil, verr
		}
		switch {
		case a.Spread:
			if v.Kind != value.KindArray {
				value.Release(i.RT.Reg, v)
				cleanup()
				return nil, nil, &value.TypeError{Msg: "spread argument must be an array"}
			}
			for _, e := range v.Heap().(*value.ArrayObj).Elements() {
				value.Retain(e)
				positional = append(positional, e)
			}
			value.Release(i.RT.Reg, v)
		case a.Name != "":
			if named == nil {
				named = make(map[string]value.Value)
			}
			named[a.Name] = v
		default:
			positional = append(positional, v)
		}
	}
	return positional, named, nil
}

// callValue is the simple positional-only call entry point used by defer
// and by method callbacks (array map/filter/reduce).
func (i *Interp) callValue(callee value.Value, args []value.Value) (value.Value, error) {
	return i.invoke(callee, args, nil)
}

func (i *Interp) invoke(callee value.Value, positional []value.Value, named map[string]value.Value) (value.Value, error) {
	switch callee.Kind {
	case value.KindFunction:
		return i.callFunction(callee.Heap().(*value.FunctionObj), positional, named)
	case value.KindBuiltinFn:
		bfn := callee.BuiltinVal()
		if len(positional) < bfn.Arity {
			return value.Null, rtErr("'%s' expects at least %d argument(s), got %d", bfn.Name, bfn.Arity, len(positional))
		}
		if !bfn.Variadic && len(positional) > bfn.Arity {
			return value.Null, rtErr("'%s' expects %d argument(s), got %d", bfn.Name, bfn.Arity, len(positional))
		}
		return bfn.Impl(positional)
	default:
		return value.Null, &value.TypeError{Msg: "value of kind " + callee.Kind.String() + " is not callable"}
	}
}

// callFunction binds positional/named/default/rest parameters into a new
// scope rooted at the closure's captured environment (spec §4.3 "closures
// capture their defining environment"; §4.5 "parameter binding"), then
// executes the body under a fresh defer frame.
func (i *Interp) callFunction(fn *value.FunctionObj, positional []value.Value, named map[string]value.Value) (value.Value, error) {
	body, _ := fn.Body.([]ast.Stmt)
	captured, _ := fn.Captured.(*env.Environment)
	if captured == nil {
		captured = i.Env
	}
	if fn.RestParam == "" && len(positional) > len(fn.Params) {
		return value.Null, rtErr("function '%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(positional))
	}

	callEnv := captured.Child()
	for idx, p := range fn.Params {
		var v value.Value
		switch {
		case idx < len(positional):
			v = positional[idx]
		case named != nil:
			if nv, ok := named[p.Name]; ok {
				v = nv
				break
			}
			fallthrough
		default:
			if p.Default != nil {
				defExpr, ok := p.Default.(ast.Expr)
				if !ok {
					return value.Null, rtErr("malformed default expression for parameter '%s'", p.Name)
				}
				prev := i.Env
				i.Env = callEnv
				dv, err := defExpr.Accept(i)
				i.Env = prev
				if err != nil {
					callEnv.Pop()
					return value.Null, err
				}
				v = dv
			} else {
				v = value.Null
			}
		}
		if err := callEnv.Define(p.Name, v, false); err != nil {
			callEnv.Pop()
			return value.Null, err
		}
	}
	if fn.RestParam != "" {
		rest := value.NewArray(i.RT.Reg)
		if len(positional) > len(fn.Params) {
			for _, v := range positional[len(fn.Params):] {
				rest.Push(v)
			}
		}
		restVal := value.FromHeap(value.KindArray, rest)
		value.Retain(restVal)
		if err := callEnv.Define(fn.RestParam, restVal, false); err != nil {
			value.Release(i.RT.Reg, restVal)
			callEnv.Pop()
			return value.Null, err
		}
		value.Release(i.RT.Reg, restVal)
	}

	prevEnv := i.Env
	i.Env = callEnv
	i.pushFrame()
	sig, execErr := i.execStmts(body)
	deferErr := i.popFrame()
	i.Env = prevEnv
	callEnv.Pop()

	if execErr != nil {
		return value.Null, execErr
	}
	if deferErr != nil {
		return value.Null, deferErr
	}
	switch sig.Kind {
	case ast.SignalReturn:
		return sig.Value, nil
	case ast.SignalThrow:
		return value.Null, &ThrownValue{Value: sig.Value}
	default:
		return value.Null, nil
	}
}

// spawnTask runs fn on a fresh goroutine with its own Interp (env + frame
// stack), the idiomatic-Go reading of spec §5's "each task has its own
// stack and its own evaluator context". Grounded on the teacher's
// WorkerPool.spawn (sentra/internal/concurrency/concurrency.go), adapted
// from a pooled worker pulling Jobs off a channel to one goroutine per
// spawned task.
func (i *Interp) spawnTask(fn *value.FunctionObj, args []value.Value) value.Value {
	task := concurrency.NewTask(i.RT.Reg, func() (value.Value, error) {
		sub := i.child(nil) // callFunction roots the call scope at fn.Captured
		return sub.callFunction(fn, args, nil)
	})
	out := value.FromHeap(value.KindTask, task)
	value.Retain(out)
	return out
}

func (i *Interp) joinTask(v value.Value) (value.Value, error) {
	if v.Kind != value.KindTask {
		return value.Null, &value.TypeError{Msg: "join requires a task"}
	}
	task := v.Heap().(*concurrency.TaskObj)
	result, err := task.Join()
	if err != nil {
		return value.Null, err
	}
	return result, nil
}

// VisitCall dispatches a call expression: a Property callee is a method
// call on its receiver (spec §4.5); spawn/join/detach are reserved call
// forms over the concurrency primitives (spec §4.6); anything else
// evaluates to a Function or BuiltinFn value and is invoked generically.
func (i *Interp) VisitCall(n *ast.Call) (value.Value, error) {
	if prop, ok := n.Callee.(*ast.Property); ok {
		recv, err := prop.Object.Accept(i)
		if err != nil {
			return value.Null, err
		}
		defer value.Release(i.RT.Reg, recv)
		positional, named, err := i.evalCallArgs(n.Args)
		defer releaseAll(i, positional, named)
		if err != nil {
			return value.Null, err
		}
		if len(named) > 0 {
			return value.Null, rtErr("method '%s' does not accept named arguments", prop.Name)
		}
		return i.methodCall(recv, prop.Name, positional)
	}

	if ident, ok := n.Callee.(*ast.Identifier); ok && !ident.Resolved {
		switch ident.Name {
		case "spawn":
			return i.evalSpawn(n.Args)
		case "join":
			return i.evalSingleArgTaskOp(n.Args, i.joinTask)
		case "detach":
			return i.evalSingleArgTaskOp(n.Args, func(v value.Value) (value.Value, error) {
				if v.Kind != value.KindTask {
					return value.Null, &value.TypeError{Msg: "detach requires a task"}
				}
				v.Heap().(*concurrency.TaskObj).Detach()
				return value.Null, nil
			})
		}
	}

	callee, err := n.Callee.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, callee)
	positional, named, err := i.evalCallArgs(n.Args)
	defer releaseAll(i, positional, named)
	if err != nil {
		return value.Null, err
	}
	return i.invoke(callee, positional, named)
}

func releaseAll(i *Interp, positional []value.Value, named map[string]value.Value) {
	for _, v := range positional {
		value.Release(i.RT.Reg, v)
	}
	for _, v := range named {
		value.Release(i.RT.Reg, v)
	}
}

func (i *Interp) evalSpawn(args []ast.Argument) (value.Value, error) {
	if len(args) == 0 {
		return value.Null, rtErr("spawn requires a function argument")
	}
	fnVal, err := args[0].Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, fnVal)
	if fnVal.Kind != value.KindFunction {
		return value.Null, &value.TypeError{Msg: "spawn requires a function value"}
	}
	fn := fnVal.Heap().(*value.FunctionObj)
	if !fn.IsAsync {
		return value.Null, rtErr("spawn requires an async function")
	}
	rest, _, err := i.evalCallArgs(args[1:])
	if err != nil {
		return value.Null, err
	}
	defer func() {
		for _, v := range rest {
			value.Release(i.RT.Reg, v)
		}
	}()
	// Each argument crosses into the new task's goroutine; retain once more
	// so the task owns its own copy independent of this frame's release.
	taskArgs := make([]value.Value, len(rest))
	for idx, v := range rest {
		value.Retain(v)
		taskArgs[idx] = v
	}
	return i.spawnTask(fn, taskArgs), nil
}

func (i *Interp) evalSingleArgTaskOp(args []ast.Argument, op func(value.Value) (value.Value, error)) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, rtErr("expects exactly one task argument")
	}
	v, err := args[0].Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, v)
	return op(v)
}
