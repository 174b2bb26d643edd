package eval

import (
	"strings"

	"github.com/Schneewolf-Labs/hemlock/internal/ast"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// Evaluation convention: every ExprVisitor method returns a Value the
// caller owns one reference to (retained once on the interpreter's
// behalf, mirroring "returned from a call: caller takes ownership at 1"
// in spec §3 "Lifecycles"). Callers release it once consumed, or hand
// ownership onward (e.g. into Env.Define, which retains its own copy).

func (i *Interp) VisitLiteral(n *ast.Literal) (value.Value, error) {
	value.Retain(n.Value)
	return n.Value, nil
}

func (i *Interp) VisitRuneLit(n *ast.RuneLit) (value.Value, error) {
	return value.NewRune(n.Value)
}

func (i *Interp) VisitIdentifier(n *ast.Identifier) (value.Value, error) {
	var v value.Value
	var err error
	if n.Resolved {
		v, err = i.Env.AtSlot(n.Depth, n.Slot)
		if err != nil {
			// Fall back to name lookup so the two paths can be verified
			// equivalent under test even when resolution is stale.
			v, err = i.Env.Lookup(n.Name)
		}
	} else {
		v, err = i.Env.Lookup(n.Name)
	}
	if err != nil {
		return value.Null, err
	}
	value.Retain(v)
	return v, nil
}

func (i *Interp) VisitBinary(n *ast.Binary) (value.Value, error) {
	l, err := n.Left.Accept(i)
	if err != nil {
		return value.Null, err
	}
	r, err := n.Right.Accept(i)
	if err != nil {
		value.Release(i.RT.Reg, l)
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, l)
	defer value.Release(i.RT.Reg, r)

	switch n.Op {
	case "+":
		if l.Kind == value.KindString || r.Kind == value.KindString {
			return i.concatString(l, r)
		}
		return value.Arithmetic("+", l, r)
	case "-", "*", "/", "%":
		return value.Arithmetic(n.Op, l, r)
	case "&", "|", "^", "<<", ">>":
		return value.Bitwise(n.Op, l, r)
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		if l.Kind.IsNumeric() && r.Kind.IsNumeric() || (l.Kind == value.KindString && r.Kind == value.KindString) {
			c, err := value.Compare(l, r)
			if err != nil {
				return value.Null, err
			}
			switch n.Op {
			case "<":
				return value.Bool(c < 0), nil
			case "<=":
				return value.Bool(c <= 0), nil
			case ">":
				return value.Bool(c > 0), nil
			default:
				return value.Bool(c >= 0), nil
			}
		}
		return value.Bool(false), &value.TypeError{Msg: "values are not ordered"}
	default:
		return value.Null, rtErr("unknown binary operator %q", n.Op)
	}
}

func (i *Interp) concatString(l, r value.Value) (value.Value, error) {
	s := value.ToString(l) + value.ToString(r)
	out := value.FromHeap(value.KindString, value.NewString(s))
	value.Retain(out)
	return out, nil
}

func (i *Interp) VisitLogical(n *ast.Logical) (value.Value, error) {
	l, err := n.Left.Accept(i)
	if err != nil {
		return value.Null, err
	}
	lt := value.Truthy(l)
	if n.Op == "&&" && !lt {
		return l, nil
	}
	if n.Op == "||" && lt {
		return l, nil
	}
	value.Release(i.RT.Reg, l)
	return n.Right.Accept(i)
}

func (i *Interp) VisitUnary(n *ast.Unary) (value.Value, error) {
	v, err := n.Operand.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, v)
	switch n.Op {
	case "-":
		if !v.Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "unary - requires a numeric operand"}
		}
		if v.Kind.IsFloat() {
			neg := -asFloatHelper(v)
			return value.F64(neg), nil
		}
		return value.I64(-asIntHelper(v)), nil
	case "!":
		return value.Bool(!value.Truthy(v)), nil
	case "~":
		return value.BitwiseNot(v)
	default:
		return value.Null, rtErr("unknown unary operator %q", n.Op)
	}
}

// asFloatHelper/asIntHelper re-derive the numeric payload without
// exporting value's internal accessors beyond what's already public.
func asFloatHelper(v value.Value) float64 {
	if v.Kind.IsFloat() {
		return v.Float()
	}
	if v.Kind.IsUnsigned() {
		return float64(v.Uint())
	}
	return float64(v.Int())
}

func asIntHelper(v value.Value) int64 {
	if v.Kind.IsUnsigned() {
		return int64(v.Uint())
	}
	return v.Int()
}

func (i *Interp) VisitAssign(n *ast.Assign) (value.Value, error) {
	v, err := n.Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if n.Resolved {
		if err := i.Env.AssignSlot(n.Depth, n.Slot, v); err != nil {
			value.Release(i.RT.Reg, v)
			return value.Null, err
		}
	} else if err := i.Env.Assign(n.Name, v); err != nil {
		value.Release(i.RT.Reg, v)
		return value.Null, err
	}
	return v, nil
}

func (i *Interp) VisitIndexAssign(n *ast.IndexAssign) (value.Value, error) {
	obj, err := n.Object.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, obj)
	idx, err := n.Index.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, idx)
	v, err := n.Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if err := i.setIndex(obj, idx, v); err != nil {
		value.Release(i.RT.Reg, v)
		return value.Null, err
	}
	return v, nil
}

func (i *Interp) setIndex(obj, idx, v value.Value) error {
	switch obj.Kind {
	case value.KindArray:
		arr := obj.Heap().(*value.ArrayObj)
		if idx.Kind.IsInteger() {
			return arr.Set(int(asIntHelper(idx)), v)
		}
		return &value.TypeError{Msg: "array index must be an integer"}
	case value.KindBuffer:
		buf := obj.Heap().(*value.BufferObj)
		if !idx.Kind.IsInteger() || !v.Kind.IsInteger() {
			return &value.TypeError{Msg: "buffer index/value must be integers"}
		}
		return buf.Set(int(asIntHelper(idx)), asIntHelper(v))
	case value.KindString:
		str := obj.Heap().(*value.StringObj)
		if !idx.Kind.IsInteger() || !v.Kind.IsInteger() {
			return &value.TypeError{Msg: "string byte assignment requires integer index and value"}
		}
		return str.SetByte(int(asIntHelper(idx)), byte(asIntHelper(v)))
	case value.KindObject:
		obj := obj.Heap().(*value.ObjectObj)
		if idx.Kind != value.KindString {
			return &value.TypeError{Msg: "object key must be a string"}
		}
		obj.Set(idx.Heap().(*value.StringObj).String(), v)
		return nil
	default:
		return &value.TypeError{Msg: "value of kind " + obj.Kind.String() + " does not support indexed assignment"}
	}
}

func (i *Interp) VisitPropertyAssign(n *ast.PropertyAssign) (value.Value, error) {
	obj, err := n.Object.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, obj)
	v, err := n.Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if obj.Kind != value.KindObject {
		value.Release(i.RT.Reg, v)
		return value.Null, &value.TypeError{Msg: "property assignment requires an object"}
	}
	obj.Heap().(*value.ObjectObj).Set(n.Name, v)
	return v, nil
}

func (i *Interp) VisitTernary(n *ast.Ternary) (value.Value, error) {
	c, err := n.Cond.Accept(i)
	if err != nil {
		return value.Null, err
	}
	truthy := value.Truthy(c)
	value.Release(i.RT.Reg, c)
	if truthy {
		return n.Then.Accept(i)
	}
	return n.Else.Accept(i)
}

func (i *Interp) VisitNullCoalesce(n *ast.NullCoalesce) (value.Value, error) {
	l, err := n.Left.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if !l.IsNull() {
		return l, nil
	}
	value.Release(i.RT.Reg, l)
	return n.Right.Accept(i)
}

func (i *Interp) VisitIncDec(n *ast.IncDec) (value.Value, error) {
	old, err := n.Target.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if !old.Kind.IsNumeric() {
		value.Release(i.RT.Reg, old)
		return value.Null, &value.TypeError{Msg: "++/-- require a numeric target"}
	}
	delta := int64(1)
	if n.Op == "--" {
		delta = -1
	}
	var next value.Value
	if old.Kind.IsFloat() {
		next = value.F64(asFloatHelper(old) + float64(delta))
	} else if old.Kind.IsUnsigned() {
		next = value.U64(uint64(int64(old.Uint()) + delta))
	} else {
		next = value.I64(old.Int() + delta)
	}
	if err := i.assignTarget(n.Target, next); err != nil {
		value.Release(i.RT.Reg, old)
		return value.Null, err
	}
	if n.Prefix {
		value.Release(i.RT.Reg, old)
		return next, nil
	}
	return old, nil
}

// assignTarget writes v back to an lvalue expression (Identifier, Index,
// or Property), used by IncDec's read-modify-write.
func (i *Interp) assignTarget(target ast.Expr, v value.Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if t.Resolved {
			return i.Env.AssignSlot(t.Depth, t.Slot, v)
		}
		return i.Env.Assign(t.Name, v)
	case *ast.Index:
		obj, err := t.Object.Accept(i)
		if err != nil {
			return err
		}
		defer value.Release(i.RT.Reg, obj)
		idx, err := t.IndexExpr.Accept(i)
		if err != nil {
			return err
		}
		defer value.Release(i.RT.Reg, idx)
		return i.setIndex(obj, idx, v)
	case *ast.Property:
		obj, err := t.Object.Accept(i)
		if err != nil {
			return err
		}
		defer value.Release(i.RT.Reg, obj)
		if obj.Kind != value.KindObject {
			return &value.TypeError{Msg: "property assignment requires an object"}
		}
		obj.Heap().(*value.ObjectObj).Set(t.Name, v)
		return nil
	default:
		return rtErr("invalid assignment target")
	}
}

func (i *Interp) VisitArrayLit(n *ast.ArrayLit) (value.Value, error) {
	arr := value.NewArray(i.RT.Reg)
	for _, elemExpr := range n.Elements {
		v, err := elemExpr.Accept(i)
		if err != nil {
			return value.Null, err
		}
		err = arr.Push(v)
		value.Release(i.RT.Reg, v)
		if err != nil {
			return value.Null, err
		}
	}
	out := value.FromHeap(value.KindArray, arr)
	value.Retain(out)
	return out, nil
}

func (i *Interp) VisitObjectLit(n *ast.ObjectLit) (value.Value, error) {
	obj := value.NewObject(i.RT.Reg, n.TypeName)
	for idx, name := range n.Names {
		v, err := n.Values[idx].Accept(i)
		if err != nil {
			return value.Null, err
		}
		obj.Set(name, v)
		value.Release(i.RT.Reg, v)
	}
	out := value.FromHeap(value.KindObject, obj)
	value.Retain(out)
	return out, nil
}

func (i *Interp) VisitFunctionLit(n *ast.FunctionLit) (value.Value, error) {
	params := make([]value.Param, len(n.Params))
	for idx, p := range n.Params {
		var def interface{}
		if p.Default != nil {
			def = p.Default
		}
		params[idx] = value.Param{Name: p.Name, Default: def}
	}
	fn := value.NewFunction(n.Body, i.Env)
	fn.Name = n.Name
	fn.Params = params
	fn.RestParam = n.RestParam
	fn.IsAsync = n.IsAsync
	out := value.FromHeap(value.KindFunction, fn)
	value.Retain(out)
	return out, nil
}

func (i *Interp) VisitProperty(n *ast.Property) (value.Value, error) {
	obj, err := n.Object.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, obj)
	return i.getProperty(obj, n.Name)
}

func (i *Interp) getProperty(obj value.Value, name string) (value.Value, error) {
	if v, ok, err := i.pseudoProperty(obj, name); ok || err != nil {
		return v, err
	}
	if obj.Kind == value.KindObject {
		o := obj.Heap().(*value.ObjectObj)
		if v, ok := o.Get(name); ok {
			value.Retain(v)
			return v, nil
		}
	}
	return value.Null, rtErr("no property '%s' on a %s value", name, obj.Kind)
}

// pseudoProperty handles the built-in read-only properties of spec §4.4
// ("length on arrays/strings/buffers") and object-literal type name.
func (i *Interp) pseudoProperty(obj value.Value, name string) (value.Value, bool, error) {
	switch obj.Kind {
	case value.KindString:
		s := obj.Heap().(*value.StringObj)
		switch name {
		case "length":
			return value.I64(int64(s.ByteLength())), true, nil
		case "char_length":
			return value.I64(int64(s.CharLength())), true, nil
		}
	case value.KindArray:
		a := obj.Heap().(*value.ArrayObj)
		if name == "length" {
			return value.I64(int64(a.Length())), true, nil
		}
	case value.KindBuffer:
		b := obj.Heap().(*value.BufferObj)
		if name == "length" {
			return value.I64(int64(b.Length())), true, nil
		}
	case value.KindObject:
		o := obj.Heap().(*value.ObjectObj)
		if name == "type" {
			out := value.FromHeap(value.KindString, value.NewString(o.TypeName))
			value.Retain(out)
			return out, true, nil
		}
	}
	return value.Null, false, nil
}

func (i *Interp) VisitIndex(n *ast.Index) (value.Value, error) {
	obj, err := n.Object.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, obj)
	idx, err := n.IndexExpr.Accept(i)
	if err != nil {
		return value.Null, err
	}
	defer value.Release(i.RT.Reg, idx)
	return i.getIndex(obj, idx)
}

func (i *Interp) getIndex(obj, idx value.Value) (value.Value, error) {
	switch obj.Kind {
	case value.KindArray:
		if !idx.Kind.IsInteger() {
			return value.Null, &value.TypeError{Msg: "array index must be an integer"}
		}
		v, err := obj.Heap().(*value.ArrayObj).Get(int(asIntHelper(idx)))
		if err != nil {
			return value.Null, err
		}
		value.Retain(v)
		return v, nil
	case value.KindBuffer:
		if !idx.Kind.IsInteger() {
			return value.Null, &value.TypeError{Msg: "buffer index must be an integer"}
		}
		n, err := obj.Heap().(*value.BufferObj).Get(int(asIntHelper(idx)))
		if err != nil {
			return value.Null, err
		}
		return value.I64(n), nil
	case value.KindString:
		if !idx.Kind.IsInteger() {
			return value.Null, &value.TypeError{Msg: "string index must be an integer"}
		}
		b, err := obj.Heap().(*value.StringObj).ByteAt(int(asIntHelper(idx)))
		if err != nil {
			return value.Null, err
		}
		return value.I64(int64(b)), nil
	case value.KindObject:
		if idx.Kind != value.KindString {
			return value.Null, &value.TypeError{Msg: "object index must be a string"}
		}
		return i.getProperty(obj, idx.Heap().(*value.StringObj).String())
	default:
		return value.Null, &value.TypeError{Msg: "value of kind " + obj.Kind.String() + " is not indexable"}
	}
}

func (i *Interp) VisitInterpolation(n *ast.Interpolation) (value.Value, error) {
	var sb strings.Builder
	for _, part := range n.Parts {
		v, err := part.Accept(i)
		if err != nil {
			return value.Null, err
		}
		sb.WriteString(value.ToString(v))
		value.Release(i.RT.Reg, v)
	}
	out := value.FromHeap(value.KindString, value.NewString(sb.String()))
	value.Retain(out)
	return out, nil
}

func (i *Interp) VisitAwait(n *ast.Await) (value.Value, error) {
	v, err := n.Value.Accept(i)
	if err != nil {
		return value.Null, err
	}
	if v.Kind != value.KindTask {
		// "await expr is sugar for join(expr) when expr evaluates to a
		// Task, otherwise returns expr unchanged" (spec §4.6).
		return v, nil
	}
	defer value.Release(i.RT.Reg, v)
	return i.joinTask(v)
}
