package value

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString implements the total to_string conversion and the "value
// printing" shapes of spec §6.
func ToString(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindI8, KindI16, KindI32, KindI64:
		return strconv.FormatInt(v.i, 10)
	case KindU8, KindU16, KindU32, KindU64:
		return strconv.FormatUint(v.u, 10)
	case KindF32:
		return strconv.FormatFloat(float64(float32(v.f)), 'g', -1, 32)
	case KindF64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindRune:
		return string(rune(v.r))
	case KindType:
		return "<type>"
	case KindPtr:
		return fmt.Sprintf("<ptr 0x%x size=%d>", v.ptr.Addr, v.ptr.Size)
	case KindString:
		return v.obj.(*StringObj).String()
	case KindArray:
		a := v.obj.(*ArrayObj)
		parts := make([]string, len(a.elements))
		for i, e := range a.elements {
			parts[i] = ToString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		o := v.obj.(*ObjectObj)
		if o.TypeName != "" {
			return "<object:" + o.TypeName + ">"
		}
		return "<object>"
	case KindFunction:
		return "<function>"
	case KindTask:
		return "<task>"
	case KindChannel:
		return "<channel>"
	case KindBuiltinFn:
		return "<function>"
	case KindBuffer:
		b := v.obj.(*BufferObj)
		return fmt.Sprintf("<buffer %p length=%d capacity=%d>", b, len(b.bytes), cap(b.bytes))
	case KindFile:
		f := v.obj.(*FileObj)
		if f.Closed {
			return "<file (closed)>"
		}
		return fmt.Sprintf("<file '%s' mode='%s'>", f.Path, f.Mode)
	default:
		return "<unknown>"
	}
}
