package value

import (
	"unicode/utf8"
)

// StringObj holds mutable UTF-8 bytes with a lazily-recomputed code point
// count (spec §3, §9 "string mutability and char_length cache"): any
// byte-level write must mark charLength stale (-1); readers recompute on
// demand.
type StringObj struct {
	Header
	bytes      []byte
	charLength int // -1 if stale
}

func NewString(s string) *StringObj {
	return &StringObj{
		Header:     NewHeader(),
		bytes:      []byte(s),
		charLength: -1,
	}
}

func NewStringBytes(b []byte) *StringObj {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &StringObj{Header: NewHeader(), bytes: cp, charLength: -1}
}

func (s *StringObj) Destroy() {}

func (s *StringObj) Bytes() []byte     { return s.bytes }
func (s *StringObj) String() string    { return string(s.bytes) }
func (s *StringObj) ByteLength() int   { return len(s.bytes) }

// CharLength returns the cached code point count, recomputing if stale.
func (s *StringObj) CharLength() int {
	if s.charLength < 0 {
		s.charLength = utf8.RuneCount(s.bytes)
	}
	return s.charLength
}

func (s *StringObj) invalidate() { s.charLength = -1 }

// SetByte assigns a single byte at index i, invalidating the char cache.
func (s *StringObj) SetByte(i int, b byte) error {
	if i < 0 || i >= len(s.bytes) {
		return &RangeError{Msg: "string byte index out of range"}
	}
	s.bytes[i] = b
	s.invalidate()
	return nil
}

func (s *StringObj) ByteAt(i int) (byte, error) {
	if i < 0 || i >= len(s.bytes) {
		return 0, &RangeError{Msg: "string byte index out of range"}
	}
	return s.bytes[i], nil
}

// CharAt returns the rune starting at the given code-point index.
func (s *StringObj) CharAt(i int) (rune, error) {
	if i < 0 {
		return 0, &RangeError{Msg: "string char index out of range"}
	}
	idx := 0
	for _, r := range string(s.bytes) {
		if idx == i {
			return r, nil
		}
		idx++
	}
	return 0, &RangeError{Msg: "string char index out of range"}
}

// Slice clamps [start,end) to [0, ByteLength()] per spec's clamping policy
// for non-index-style string methods.
func (s *StringObj) Slice(start, end int) *StringObj {
	n := len(s.bytes)
	start = clamp(start, 0, n)
	end = clamp(end, 0, n)
	if end < start {
		end = start
	}
	return NewStringBytes(s.bytes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RangeError indicates an out-of-bounds index or out-of-width numeric value.
type RangeError struct{ Msg string }

func (e *RangeError) Error() string { return e.Msg }

// TypeError indicates an operation applied to an incompatible type.
type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return e.Msg }
