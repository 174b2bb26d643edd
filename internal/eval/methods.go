package eval

import (
	"time"

	"github.com/Schneewolf-Labs/hemlock/internal/concurrency"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func wrapString(s *value.StringObj) value.Value {
	v := value.FromHeap(value.KindString, s)
	value.Retain(v)
	return v
}

func wrapArray(a *value.ArrayObj) value.Value {
	v := value.FromHeap(value.KindArray, a)
	value.Retain(v)
	return v
}

func wrapBuffer(b *value.BufferObj) value.Value {
	v := value.FromHeap(value.KindBuffer, b)
	value.Retain(v)
	return v
}

func argStr(reg *value.FreedRegistry, args []value.Value, idx int) (string, error) {
	if idx >= len(args) || args[idx].Kind != value.KindString {
		return "", &value.TypeError{Msg: "expected a string argument"}
	}
	return args[idx].Heap().(*value.StringObj).String(), nil
}

func argInt(args []value.Value, idx int, def int64) int64 {
	if idx >= len(args) || !args[idx].Kind.IsNumeric() {
		return def
	}
	return asIntHelper(args[idx])
}

// methodCall dispatches a `receiver.name(args...)` expression to the
// built-in method table for receiver's Kind (spec §4.5). Grounded on the
// teacher's VM opcode handlers for string/array builtins (sentra/internal/
// vm/vm.go OpCall* family), generalized into one table per heap Kind
// instead of bytecode opcodes.
func (i *Interp) methodCall(recv value.Value, name string, args []value.Value) (value.Value, error) {
	if name == "serialize" {
		text, err := value.Serialize(recv)
		if err != nil {
			return value.Null, err
		}
		return wrapString(value.NewString(text)), nil
	}
	switch recv.Kind {
	case value.KindString:
		return i.stringMethod(recv.Heap().(*value.StringObj), name, args)
	case value.KindArray:
		return i.arrayMethod(recv.Heap().(*value.ArrayObj), name, args)
	case value.KindBuffer:
		return i.bufferMethod(recv.Heap().(*value.BufferObj), name, args)
	case value.KindObject:
		return i.objectMethod(recv.Heap().(*value.ObjectObj), name, args)
	case value.KindFile:
		return i.fileMethod(recv.Heap().(*value.FileObj), name, args)
	case value.KindChannel:
		return i.channelMethod(recv.Heap().(*concurrency.ChannelObj), name, args)
	case value.KindTask:
		return i.taskMethod(recv.Heap().(*concurrency.TaskObj), name, args)
	default:
		return value.Null, rtErr("no method '%s' on a %s value", name, recv.Kind)
	}
}

func (i *Interp) stringMethod(s *value.StringObj, name string, args []value.Value) (value.Value, error) {
	reg := i.RT.Reg
	switch name {
	case "length":
		return value.I64(int64(s.ByteLength())), nil
	case "char_length":
		return value.I64(int64(s.CharLength())), nil
	case "substr":
		return wrapString(s.Substr(int(argInt(args, 0, 0)), int(argInt(args, 1, -1)))), nil
	case "slice":
		return wrapString(s.Slice(int(argInt(args, 0, 0)), int(argInt(args, 1, int64(s.ByteLength()))))), nil
	case "byte_at":
		b, err := s.ByteAt(int(argInt(args, 0, 0)))
		return value.I64(int64(b)), err
	case "char_at":
		r, err := s.CharAt(int(argInt(args, 0, 0)))
		return wrapString(value.NewString(string(r))), err
	case "split":
		sep, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		parts := s.Split(sep)
		out := value.NewArray(reg)
		for _, p := range parts {
			elem := wrapString(p)
			out.Push(elem)
			value.Release(reg, elem)
		}
		return wrapArray(out), nil
	case "find":
		needle, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.I64(int64(s.Find(needle))), nil
	case "contains":
		needle, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(s.Contains(needle)), nil
	case "starts_with":
		p, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(s.StartsWith(p)), nil
	case "ends_with":
		p, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(s.EndsWith(p)), nil
	case "trim":
		return wrapString(s.Trim()), nil
	case "to_upper":
		return wrapString(s.ToUpper()), nil
	case "to_lower":
		return wrapString(s.ToLower()), nil
	case "replace":
		oldS, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		newS, err := argStr(reg, args, 1)
		if err != nil {
			return value.Null, err
		}
		return wrapString(s.Replace(oldS, newS)), nil
	case "repeat":
		return wrapString(s.Repeat(int(argInt(args, 0, 0)))), nil
	case "to_bytes":
		return wrapBuffer(s.ToBytes(reg)), nil
	case "deserialize":
		return value.Deserialize(reg, s.String())
	default:
		return value.Null, rtErr("no method '%s' on string", name)
	}
}

func (i *Interp) arrayMethod(a *value.ArrayObj, name string, args []value.Value) (value.Value, error) {
	reg := i.RT.Reg
	switch name {
	case "length":
		return value.I64(int64(a.Length())), nil
	case "push":
		for _, v := range args {
			if err := a.Push(v); err != nil {
				return value.Null, err
			}
		}
		return value.Null, nil
	case "pop":
		return a.Pop()
	case "shift":
		return a.Shift()
	case "unshift":
		for idx := len(args) - 1; idx >= 0; idx-- {
			if err := a.Unshift(args[idx]); err != nil {
				return value.Null, err
			}
		}
		return value.Null, nil
	case "insert":
		if len(args) < 2 {
			return value.Null, rtErr("insert requires an index and a value")
		}
		return value.Null, a.Insert(int(argInt(args, 0, 0)), args[1])
	case "remove":
		return value.Null, a.Remove(int(argInt(args, 0, 0)))
	case "get":
		v, err := a.Get(int(argInt(args, 0, 0)))
		if err != nil {
			return value.Null, err
		}
		value.Retain(v)
		return v, nil
	case "first":
		v, err := a.First()
		if err != nil {
			return value.Null, err
		}
		value.Retain(v)
		return v, nil
	case "last":
		v, err := a.Last()
		if err != nil {
			return value.Null, err
		}
		value.Retain(v)
		return v, nil
	case "contains":
		if len(args) == 0 {
			return value.Bool(false), nil
		}
		return value.Bool(a.Contains(args[0])), nil
	case "set":
		if len(args) < 2 {
			return value.Null, rtErr("set requires an index and a value")
		}
		return value.Null, a.Set(int(argInt(args, 0, 0)), args[1])
	case "clear":
		a.Clear()
		return value.Null, nil
	case "reverse":
		a.Reverse()
		return value.Null, nil
	case "slice":
		return wrapArray(a.SliceNew(int(argInt(args, 0, 0)), int(argInt(args, 1, int64(a.Length()))))), nil
	case "concat":
		if len(args) == 0 || args[0].Kind != value.KindArray {
			return value.Null, &value.TypeError{Msg: "concat requires an array argument"}
		}
		return wrapArray(a.Concat(args[0].Heap().(*value.ArrayObj))), nil
	case "join":
		sep := ""
		if len(args) > 0 {
			var err error
			sep, err = argStr(reg, args, 0)
			if err != nil {
				return value.Null, err
			}
		}
		out := ""
		for idx, v := range a.Elements() {
			if idx > 0 {
				out += sep
			}
			out += value.ToString(v)
		}
		return wrapString(value.NewString(out)), nil
	case "includes":
		if len(args) == 0 {
			return value.Bool(false), nil
		}
		for _, v := range a.Elements() {
			if value.Equal(v, args[0]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case "index_of":
		if len(args) == 0 {
			return value.I64(-1), nil
		}
		for idx, v := range a.Elements() {
			if value.Equal(v, args[0]) {
				return value.I64(int64(idx)), nil
			}
		}
		return value.I64(-1), nil
	case "map":
		return i.arrayMap(a, name, args)
	case "filter":
		return i.arrayFilter(a, args)
	case "reduce":
		return i.arrayReduce(a, args)
	case "for_each":
		return value.Null, i.arrayForEach(a, args)
	case "find":
		if len(args) == 0 {
			return value.Null, nil
		}
		for _, v := range a.Elements() {
			if value.Equal(v, args[0]) {
				value.Retain(v)
				return v, nil
			}
		}
		return value.Null, nil
	default:
		return value.Null, rtErr("no method '%s' on array", name)
	}
}

func (i *Interp) requireCallback(args []value.Value, idx int) (value.Value, error) {
	if idx >= len(args) {
		return value.Null, rtErr("missing callback argument")
	}
	cb := args[idx]
	if cb.Kind != value.KindFunction && cb.Kind != value.KindBuiltinFn {
		return value.Null, &value.TypeError{Msg: "callback argument must be a function"}
	}
	return cb, nil
}

func (i *Interp) arrayMap(a *value.ArrayObj, _ string, args []value.Value) (value.Value, error) {
	cb, err := i.requireCallback(args, 0)
	if err != nil {
		return value.Null, err
	}
	out := value.NewArray(i.RT.Reg)
	for idx, elem := range a.Elements() {
		result, err := i.callValue(cb, []value.Value{elem, value.I64(int64(idx))})
		if err != nil {
			return value.Null, err
		}
		out.Push(result)
		value.Release(i.RT.Reg, result)
	}
	return wrapArray(out), nil
}

func (i *Interp) arrayFilter(a *value.ArrayObj, args []value.Value) (value.Value, error) {
	cb, err := i.requireCallback(args, 0)
	if err != nil {
		return value.Null, err
	}
	out := value.NewArray(i.RT.Reg)
	for idx, elem := range a.Elements() {
		keep, err := i.callValue(cb, []value.Value{elem, value.I64(int64(idx))})
		if err != nil {
			return value.Null, err
		}
		if value.Truthy(keep) {
			out.Push(elem)
		}
		value.Release(i.RT.Reg, keep)
	}
	return wrapArray(out), nil
}

func (i *Interp) arrayReduce(a *value.ArrayObj, args []value.Value) (value.Value, error) {
	cb, err := i.requireCallback(args, 0)
	if err != nil {
		return value.Null, err
	}
	elems := a.Elements()
	var acc value.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
		value.Retain(acc)
	} else {
		if len(elems) == 0 {
			return value.Null, rtErr("reduce of empty array with no initial value")
		}
		acc = elems[0]
		value.Retain(acc)
		start = 1
	}
	for idx := start; idx < len(elems); idx++ {
		next, err := i.callValue(cb, []value.Value{acc, elems[idx], value.I64(int64(idx))})
		value.Release(i.RT.Reg, acc)
		if err != nil {
			return value.Null, err
		}
		acc = next
	}
	return acc, nil
}

func (i *Interp) arrayForEach(a *value.ArrayObj, args []value.Value) error {
	cb, err := i.requireCallback(args, 0)
	if err != nil {
		return err
	}
	for idx, elem := range a.Elements() {
		result, err := i.callValue(cb, []value.Value{elem, value.I64(int64(idx))})
		if err != nil {
			return err
		}
		value.Release(i.RT.Reg, result)
	}
	return nil
}

func (i *Interp) bufferMethod(b *value.BufferObj, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "length":
		return value.I64(int64(b.Length())), nil
	case "get":
		n, err := b.Get(int(argInt(args, 0, 0)))
		return value.I64(n), err
	case "set":
		if len(args) < 2 {
			return value.Null, rtErr("set requires an index and a value")
		}
		return value.Null, b.Set(int(argInt(args, 0, 0)), argInt(args, 1, 0))
	case "slice":
		return wrapBuffer(b.SliceNew(int(argInt(args, 0, 0)), int(argInt(args, 1, int64(b.Length()))))), nil
	default:
		return value.Null, rtErr("no method '%s' on buffer", name)
	}
}

func (i *Interp) objectMethod(o *value.ObjectObj, name string, args []value.Value) (value.Value, error) {
	reg := i.RT.Reg
	switch name {
	case "get":
		key, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		v, ok := o.Get(key)
		if !ok {
			return value.Null, nil
		}
		value.Retain(v)
		return v, nil
	case "set":
		key, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		if len(args) < 2 {
			return value.Null, rtErr("set requires a key and a value")
		}
		o.Set(key, args[1])
		return value.Null, nil
	case "has":
		key, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(o.Has(key)), nil
	case "delete":
		key, err := argStr(reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(o.Delete(key)), nil
	case "keys":
		out := value.NewArray(reg)
		for _, n := range o.Names() {
			elem := wrapString(value.NewString(n))
			out.Push(elem)
			value.Release(reg, elem)
		}
		return wrapArray(out), nil
	case "values":
		out := value.NewArray(reg)
		for _, v := range o.Values() {
			out.Push(v)
		}
		return wrapArray(out), nil
	default:
		// Method-on-object fallback (spec §4.5): no builtin matched, so
		// check for a same-named field holding a callable before erroring.
		if field, ok := o.Get(name); ok {
			if field.Kind == value.KindFunction || field.Kind == value.KindBuiltinFn {
				return i.callValue(field, args)
			}
		}
		return value.Null, rtErr("no method '%s' on object", name)
	}
}

func (i *Interp) fileMethod(f *value.FileObj, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "read":
		s, err := f.Read()
		if err != nil {
			return value.Null, err
		}
		return wrapString(value.NewString(s)), nil
	case "read_bytes":
		b, err := f.ReadBytes(int(argInt(args, 0, 0)))
		if err != nil {
			return value.Null, err
		}
		return wrapBuffer(value.NewBufferBytes(b)), nil
	case "write":
		s, err := argStr(i.RT.Reg, args, 0)
		if err != nil {
			return value.Null, err
		}
		n, err := f.Write(s)
		return value.I64(int64(n)), err
	case "seek":
		return value.Null, f.Seek(argInt(args, 0, 0))
	case "close":
		return value.Null, f.Close()
	default:
		return value.Null, rtErr("no method '%s' on file", name)
	}
}

func (i *Interp) channelMethod(c *concurrency.ChannelObj, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "send":
		if len(args) == 0 {
			return value.Null, rtErr("send requires a value")
		}
		return value.Null, c.Send(args[0])
	case "recv":
		return c.Recv()
	case "recv_timeout":
		ms := argInt(args, 0, 0)
		v, ok, err := c.RecvTimeout(time.Duration(ms) * time.Millisecond)
		if err != nil {
			return value.Null, err
		}
		if !ok {
			return value.Bool(false), nil
		}
		return v, nil
	case "try_send":
		if len(args) == 0 {
			return value.Null, rtErr("try_send requires a value")
		}
		ok, err := c.TrySend(args[0])
		if err != nil {
			return value.Null, err
		}
		return value.Bool(ok), nil
	case "try_recv":
		v, ok, err := c.TryRecv()
		if err != nil {
			return value.Null, err
		}
		if !ok {
			return value.Bool(false), nil
		}
		return v, nil
	case "close":
		c.Close()
		return value.Null, nil
	case "is_closed":
		return value.Bool(c.IsClosed()), nil
	case "len":
		return value.I64(int64(c.Len())), nil
	case "cap":
		return value.I64(int64(c.Cap())), nil
	default:
		return value.Null, rtErr("no method '%s' on channel", name)
	}
}

func (i *Interp) taskMethod(t *concurrency.TaskObj, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "join":
		return t.Join()
	case "detach":
		t.Detach()
		return value.Null, nil
	case "state":
		switch t.State() {
		case concurrency.TaskRunning:
			return wrapString(value.NewString("running")), nil
		case concurrency.TaskCompleted:
			return wrapString(value.NewString("completed")), nil
		default:
			return wrapString(value.NewString("failed")), nil
		}
	default:
		return value.Null, rtErr("no method '%s' on task", name)
	}
}
