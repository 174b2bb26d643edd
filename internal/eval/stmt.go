package eval

import (
	"github.com/Schneewolf-Labs/hemlock/internal/ast"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func (i *Interp) VisitLet(n *ast.Let) (ast.Signal, error) {
	v := value.Null
	if n.Value != nil {
		var err error
		v, err = n.Value.Accept(i)
		if err != nil {
			return ast.None, err
		}
	}
	if err := i.Env.Define(n.Name, v, n.IsConst); err != nil {
		value.Release(i.RT.Reg, v)
		return ast.None, err
	}
	value.Release(i.RT.Reg, v)
	return ast.None, nil
}

func (i *Interp) VisitBlock(n *ast.Block) (ast.Signal, error) {
	return i.execBlock(n.Stmts)
}

func (i *Interp) VisitIf(n *ast.If) (ast.Signal, error) {
	cond, err := n.Cond.Accept(i)
	if err != nil {
		return ast.None, err
	}
	truthy := value.Truthy(cond)
	value.Release(i.RT.Reg, cond)
	if truthy {
		return i.execBlock(n.Then)
	}
	if n.Else != nil {
		return i.execBlock(n.Else)
	}
	return ast.None, nil
}

func (i *Interp) VisitWhile(n *ast.While) (ast.Signal, error) {
	for {
		cond, err := n.Cond.Accept(i)
		if err != nil {
			return ast.None, err
		}
		truthy := value.Truthy(cond)
		value.Release(i.RT.Reg, cond)
		if !truthy {
			return ast.None, nil
		}
		sig, err := i.execBlock(n.Body)
		if err != nil {
			return ast.None, err
		}
		switch sig.Kind {
		case ast.SignalBreak:
			return ast.None, nil
		case ast.SignalContinue:
			continue
		case ast.SignalReturn, ast.SignalThrow:
			return sig, nil
		}
	}
}

func (i *Interp) VisitFor(n *ast.For) (ast.Signal, error) {
	// The initializer lives in a scope that wraps the whole loop (§4.3).
	parent := i.Env
	i.Env = parent.Child()
	defer func() {
		i.Env.Pop()
		i.Env = parent
	}()

	if n.Init != nil {
		if _, err := n.Init.Accept(i); err != nil {
			return ast.None, err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := n.Cond.Accept(i)
			if err != nil {
				return ast.None, err
			}
			truthy := value.Truthy(cond)
			value.Release(i.RT.Reg, cond)
			if !truthy {
				return ast.None, nil
			}
		}
		sig, err := i.execBlock(n.Body)
		if err != nil {
			return ast.None, err
		}
		if sig.Kind == ast.SignalBreak {
			return ast.None, nil
		}
		if sig.Kind == ast.SignalReturn || sig.Kind == ast.SignalThrow {
			return sig, nil
		}
		// sig.Kind is SignalNone or SignalContinue: fall through to update.
		if n.Update != nil {
			if _, err := n.Update.Accept(i); err != nil {
				return ast.None, err
			}
		}
	}
}

func (i *Interp) VisitForIn(n *ast.ForIn) (ast.Signal, error) {
	coll, err := n.Collection.Accept(i)
	if err != nil {
		return ast.None, err
	}
	defer value.Release(i.RT.Reg, coll)

	run := func(item value.Value) (ast.Signal, bool, error) {
		parent := i.Env
		i.Env = parent.Child()
		defer func() {
			i.Env.Pop()
			i.Env = parent
		}()
		if err := i.Env.Define(n.VarName, item, false); err != nil {
			return ast.None, false, err
		}
		sig, err := i.execStmts(n.Body)
		if err != nil {
			return ast.None, false, err
		}
		switch sig.Kind {
		case ast.SignalBreak:
			return ast.None, true, nil
		case ast.SignalReturn, ast.SignalThrow:
			return sig, true, nil
		default:
			return ast.None, false, nil
		}
	}

	switch coll.Kind {
	case value.KindArray:
		arr := coll.Heap().(*value.ArrayObj)
		for _, item := range append([]value.Value{}, arr.Elements()...) {
			sig, stop, err := run(item)
			if err != nil {
				return ast.None, err
			}
			if stop {
				return sig, nil
			}
		}
	case value.KindObject:
		obj := coll.Heap().(*value.ObjectObj)
		for _, name := range append([]string{}, obj.Names()...) {
			item := value.FromHeap(value.KindString, value.NewString(name))
			sig, stop, err := run(item)
			value.Release(i.RT.Reg, item)
			if err != nil {
				return ast.None, err
			}
			if stop {
				return sig, nil
			}
		}
	case value.KindString:
		s := coll.Heap().(*value.StringObj)
		for _, r := range s.String() {
			item := value.FromHeap(value.KindString, value.NewString(string(r)))
			sig, stop, err := run(item)
			value.Release(i.RT.Reg, item)
			if err != nil {
				return ast.None, err
			}
			if stop {
				return sig, nil
			}
		}
	default:
		return ast.None, rtErr("for-in requires an array, object, or string, got %s", coll.Kind)
	}
	return ast.None, nil
}

func (i *Interp) VisitReturn(n *ast.Return) (ast.Signal, error) {
	v := value.Null
	if n.Value != nil {
		var err error
		v, err = n.Value.Accept(i)
		if err != nil {
			return ast.None, err
		}
	}
	return ast.Signal{Kind: ast.SignalReturn, Value: v}, nil
}

func (i *Interp) VisitBreak(n *ast.Break) (ast.Signal, error) {
	return ast.Signal{Kind: ast.SignalBreak}, nil
}

func (i *Interp) VisitContinue(n *ast.Continue) (ast.Signal, error) {
	return ast.Signal{Kind: ast.SignalContinue}, nil
}

func (i *Interp) VisitSwitch(n *ast.Switch) (ast.Signal, error) {
	subject, err := n.Value.Accept(i)
	if err != nil {
		return ast.None, err
	}
	defer value.Release(i.RT.Reg, subject)

	for _, c := range n.Cases {
		pattern, err := c.Pattern.Accept(i)
		if err != nil {
			return ast.None, err
		}
		matched := value.Equal(subject, pattern)
		value.Release(i.RT.Reg, pattern)
		if matched {
			sig, err := i.execBlock(c.Body)
			if sig.Kind == ast.SignalBreak {
				return ast.None, err
			}
			return sig, err
		}
	}
	if n.HasDefault {
		sig, err := i.execBlock(n.Default)
		if sig.Kind == ast.SignalBreak {
			return ast.None, err
		}
		return sig, err
	}
	return ast.None, nil
}

// toThrowable converts a Go error from expression/statement evaluation
// into the Value a catch clause receives: the original thrown Value for a
// user `throw`, or a String carrying the message for any host-detected
// runtime error (spec §7: "all runtime errors to be catchable").
func toThrowable(err error) value.Value {
	if tv, ok := err.(*ThrownValue); ok {
		return tv.Value
	}
	out := value.FromHeap(value.KindString, value.NewString(err.Error()))
	value.Retain(out)
	return out
}

func (i *Interp) VisitTry(n *ast.Try) (ast.Signal, error) {
	sig, err := i.execBlock(n.TryBlock)

	var thrown value.Value
	isThrown := false
	if err != nil {
		thrown = toThrowable(err)
		isThrown = true
	} else if sig.Kind == ast.SignalThrow {
		thrown = sig.Value
		isThrown = true
	}

	var finalSig ast.Signal
	var finalErr error
	switch {
	case isThrown && n.HasCatch:
		parent := i.Env
		i.Env = parent.Child()
		if defErr := i.Env.Define(n.CatchVar, thrown, false); defErr != nil {
			i.Env.Pop()
			i.Env = parent
			return ast.None, defErr
		}
		value.Release(i.RT.Reg, thrown)
		csig, cerr := i.execStmts(n.CatchBlock)
		i.Env.Pop()
		i.Env = parent
		finalSig, finalErr = csig, cerr
	case isThrown:
		finalSig, finalErr = ast.Signal{Kind: ast.SignalThrow, Value: thrown}, nil
	default:
		finalSig, finalErr = sig, err
	}

	if n.HasFinally {
		fsig, ferr := i.execBlock(n.FinallyBlock)
		// A finally that itself returns/throws/breaks overrides the prior
		// outcome entirely (spec §4.8).
		if ferr != nil || fsig.Kind != ast.SignalNone {
			finalSig, finalErr = fsig, ferr
		}
	}
	return finalSig, finalErr
}

func (i *Interp) VisitThrow(n *ast.Throw) (ast.Signal, error) {
	v, err := n.Value.Accept(i)
	if err != nil {
		return ast.None, err
	}
	return ast.Signal{Kind: ast.SignalThrow, Value: v}, nil
}

func (i *Interp) VisitDefer(n *ast.Defer) (ast.Signal, error) {
	call, ok := n.Call.(*ast.Call)
	if !ok {
		return ast.None, rtErr("defer requires a call expression")
	}
	callee, err := call.Callee.Accept(i)
	if err != nil {
		return ast.None, err
	}
	args, err := i.evalArgs(call.Args)
	if err != nil {
		value.Release(i.RT.Reg, callee)
		return ast.None, err
	}
	i.registerDefer(deferredCall{callee: callee, args: args})
	return ast.None, nil
}

func (i *Interp) VisitExpressionStmt(n *ast.ExpressionStmt) (ast.Signal, error) {
	v, err := n.Expr.Accept(i)
	if err != nil {
		return ast.None, err
	}
	value.Release(i.RT.Reg, v)
	return ast.None, nil
}

func (i *Interp) VisitFunctionDecl(n *ast.FunctionDecl) (ast.Signal, error) {
	fnVal, err := n.Fn.Accept(i)
	if err != nil {
		return ast.None, err
	}
	if err := i.Env.Define(n.Fn.Name, fnVal, false); err != nil {
		value.Release(i.RT.Reg, fnVal)
		return ast.None, err
	}
	value.Release(i.RT.Reg, fnVal)
	return ast.None, nil
}
