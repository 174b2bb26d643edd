// Package value implements Hemlock's runtime value representation: a tagged
// union over inline primitives and reference-counted heap handles.
package value

import "fmt"

// Kind tags the variant a Value currently holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindRune
	KindType
	KindPtr
	KindString
	KindBuffer
	KindArray
	KindObject
	KindFunction
	KindTask
	KindChannel
	KindFile
	KindBuiltinFn
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindRune:
		return "rune"
	case KindType:
		return "type"
	case KindPtr:
		return "ptr"
	case KindString:
		return "string"
	case KindBuffer:
		return "buffer"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindTask:
		return "task"
	case KindChannel:
		return "channel"
	case KindFile:
		return "file"
	case KindBuiltinFn:
		return "builtin"
	default:
		return "unknown"
	}
}

// isHeap reports the variants backed by a reference-counted HeapObject.
func (k Kind) isHeap() bool {
	switch k {
	case KindString, KindBuffer, KindArray, KindObject, KindFunction, KindTask, KindChannel, KindFile:
		return true
	default:
		return false
	}
}

// Ptr is the payload for the raw, manually-managed Ptr variant.
type Ptr struct {
	Addr uintptr
	Size int
}

// BuiltinFn is a host-implemented function: name, arity, variadic flag and
// implementation, plus an optional captured environment handle (opaque to
// this package; stored as interface{} to avoid an import cycle on env).
type BuiltinFn struct {
	Name     string
	Arity    int
	Variadic bool
	Impl     func(args []Value) (Value, error)
	Captured interface{}
}

// Value is the tagged union described in spec §3. Exactly one of the inline
// payload fields or Obj is meaningful, selected by Kind. Primitives never
// share storage with handles (invariant T1).
type Value struct {
	Kind Kind

	b    bool
	i    int64
	u    uint64
	f    float64
	r    int32
	ptr  Ptr
	typ  Kind // payload for KindType: the type it denotes
	obj  HeapObject
	bfn  *BuiltinFn
}

// Null is the singleton null value.
var Null = Value{Kind: KindNull}

func Bool(b bool) Value { return Value{Kind: KindBool, b: b} }

func I8(v int8) Value   { return Value{Kind: KindI8, i: int64(v)} }
func I16(v int16) Value { return Value{Kind: KindI16, i: int64(v)} }
func I32(v int32) Value { return Value{Kind: KindI32, i: int64(v)} }
func I64(v int64) Value { return Value{Kind: KindI64, i: v} }

func U8(v uint8) Value   { return Value{Kind: KindU8, u: uint64(v)} }
func U16(v uint16) Value { return Value{Kind: KindU16, u: uint64(v)} }
func U32(v uint32) Value { return Value{Kind: KindU32, u: uint64(v)} }
func U64(v uint64) Value { return Value{Kind: KindU64, u: v} }

func F32(v float32) Value { return Value{Kind: KindF32, f: float64(v)} }
func F64(v float64) Value { return Value{Kind: KindF64, f: v} }

func Rune(r int32) Value { return Value{Kind: KindRune, r: r} }

func TypeValue(k Kind) Value { return Value{Kind: KindType, typ: k} }

func RawPtr(addr uintptr, size int) Value {
	return Value{Kind: KindPtr, ptr: Ptr{Addr: addr, Size: size}}
}

func Builtin(fn *BuiltinFn) Value { return Value{Kind: KindBuiltinFn, bfn: fn} }

// FromHeap wraps a heap object handle in a Value of the matching Kind.
// Caller is responsible for the reference count: this does not retain.
func FromHeap(k Kind, obj HeapObject) Value {
	if !k.isHeap() {
		panic(fmt.Sprintf("value: FromHeap called with non-heap kind %s", k))
	}
	return Value{Kind: k, obj: obj}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }
func (v Value) IsHeap() bool { return v.Kind.isHeap() }

// Heap returns the underlying heap object handle. Panics if v is not a heap
// variant; callers must check Kind first.
func (v Value) Heap() HeapObject {
	if !v.Kind.isHeap() {
		panic(fmt.Sprintf("value: Heap() called on non-heap kind %s", v.Kind))
	}
	return v.obj
}

func (v Value) Bool() bool       { return v.b }
func (v Value) Int() int64       { return v.i }
func (v Value) Uint() uint64     { return v.u }
func (v Value) Float() float64   { return v.f }
func (v Value) RuneVal() int32   { return v.r }
func (v Value) TypeTag() Kind    { return v.typ }
func (v Value) PtrVal() Ptr      { return v.ptr }
func (v Value) BuiltinVal() *BuiltinFn { return v.bfn }

// IsInteger reports whether Kind is one of the fixed-width integer tags.
func (k Kind) IsInteger() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64:
		return true
	default:
		return false
	}
}

func (k Kind) IsUnsigned() bool {
	switch k {
	case KindU8, KindU16, KindU32, KindU64:
		return true
	default:
		return false
	}
}

func (k Kind) IsFloat() bool { return k == KindF32 || k == KindF64 }
func (k Kind) IsNumeric() bool { return k.IsInteger() || k.IsFloat() }

// Truthiness implements spec §4.1: false for Null, Bool(false), numeric
// zero, empty string, empty array, empty object; true otherwise.
func Truthy(v Value) bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindI8, KindI16, KindI32, KindI64:
		return v.i != 0
	case KindU8, KindU16, KindU32, KindU64:
		return v.u != 0
	case KindF32, KindF64:
		return v.f != 0
	case KindRune:
		return v.r != 0
	case KindString:
		return v.obj.(*StringObj).ByteLength() != 0
	case KindArray:
		return v.obj.(*ArrayObj).Length() != 0
	case KindObject:
		return v.obj.(*ObjectObj).Len() != 0
	default:
		return true
	}
}
