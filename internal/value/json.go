package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSONError is the parse/deserialization error kind of spec §7.
type JSONError struct{ Msg string }

func (e *JSONError) Error() string { return e.Msg }

// Serialize produces RFC 8259 JSON text for null/bool/number/string/
// array/object values (spec §6). Cycles fail with a circular-reference
// error instead of looping forever; functions/tasks/channels/files/ptrs
// have no JSON shape and are rejected.
func Serialize(v Value) (string, error) {
	var sb strings.Builder
	seen := map[HeapObject]bool{}
	if err := serializeInto(&sb, v, seen); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func serializeInto(sb *strings.Builder, v Value, seen map[HeapObject]bool) error {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindI8, KindI16, KindI32, KindI64:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindU8, KindU16, KindU32, KindU64:
		sb.WriteString(strconv.FormatUint(v.u, 10))
	case KindF32, KindF64:
		sb.WriteString(strconv.FormatFloat(asFloat(v), 'g', -1, 64))
	case KindString:
		b, err := json.Marshal(v.obj.(*StringObj).String())
		if err != nil {
			return &JSONError{Msg: err.Error()}
		}
		sb.Write(b)
	case KindArray:
		arr := v.obj.(*ArrayObj)
		if seen[arr] {
			return &JSONError{Msg: "circular reference detected during serialize"}
		}
		seen[arr] = true
		defer delete(seen, arr)
		sb.WriteByte('[')
		for i, e := range arr.elements {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := serializeInto(sb, e, seen); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case KindObject:
		obj := v.obj.(*ObjectObj)
		if seen[obj] {
			return &JSONError{Msg: "circular reference detected during serialize"}
		}
		seen[obj] = true
		defer delete(seen, obj)
		sb.WriteByte('{')
		for i, name := range obj.names {
			if i > 0 {
				sb.WriteByte(',')
			}
			kb, err := json.Marshal(name)
			if err != nil {
				return &JSONError{Msg: err.Error()}
			}
			sb.Write(kb)
			sb.WriteByte(':')
			if err := serializeInto(sb, obj.values[i], seen); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return &JSONError{Msg: fmt.Sprintf("cannot serialize a %s value", v.Kind)}
	}
	return nil
}

// Deserialize parses JSON text into a Value tree, the inverse of
// Serialize. Arrays and objects are allocated through reg so their
// lifetimes participate in the usual refcounting (spec §6). Object
// fields are decoded via json.Decoder's token stream rather than into a
// Go map, so field order matches the source text (spec §3's Object
// insertion-order invariant) instead of being lost to map iteration.
func Deserialize(reg *FreedRegistry, text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(reg, dec)
	if err != nil {
		return Null, &JSONError{Msg: err.Error()}
	}
	return v, nil
}

func decodeValue(reg *FreedRegistry, dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	return decodeToken(reg, dec, tok)
}

func decodeToken(reg *FreedRegistry, dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return I64(i), nil
		}
		f, _ := t.Float64()
		return F64(f), nil
	case string:
		s := FromHeap(KindString, NewString(t))
		Retain(s)
		return s, nil
	case json.Delim:
		switch t {
		case '[':
			arr := NewArray(reg)
			for dec.More() {
				v, err := decodeValue(reg, dec)
				if err != nil {
					return Null, err
				}
				arr.Push(v)
				Release(reg, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Null, err
			}
			out := FromHeap(KindArray, arr)
			Retain(out)
			return out, nil
		case '{':
			obj := NewObject(reg, "")
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null, err
				}
				key, _ := keyTok.(string)
				v, err := decodeValue(reg, dec)
				if err != nil {
					return Null, err
				}
				obj.Set(key, v)
				Release(reg, v)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Null, err
			}
			out := FromHeap(KindObject, obj)
			Retain(out)
			return out, nil
		}
	}
	return Null, fmt.Errorf("unexpected JSON token %v", tok)
}
