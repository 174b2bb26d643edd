package value

import "strings"

// The remaining String methods of spec §4.5 that don't need to call back
// into the evaluator (split/find/contains/trim/case conversion/replace/
// repeat/to_bytes/substr). slice/substr clamp; char_at/byte_at (string.go)
// are the deliberate index-style exception that errors instead.

func (s *StringObj) Substr(start, count int) *StringObj {
	n := len(s.bytes)
	start = clamp(start, 0, n)
	end := start + count
	if count < 0 {
		end = start
	}
	end = clamp(end, 0, n)
	return NewStringBytes(s.bytes[start:end])
}

func (s *StringObj) Split(sep string) []*StringObj {
	parts := strings.Split(s.String(), sep)
	out := make([]*StringObj, len(parts))
	for i, p := range parts {
		out[i] = NewString(p)
	}
	return out
}

func (s *StringObj) Find(needle string) int {
	return strings.Index(s.String(), needle)
}

func (s *StringObj) Contains(needle string) bool {
	return strings.Contains(s.String(), needle)
}

func (s *StringObj) StartsWith(prefix string) bool {
	return strings.HasPrefix(s.String(), prefix)
}

func (s *StringObj) EndsWith(suffix string) bool {
	return strings.HasSuffix(s.String(), suffix)
}

func (s *StringObj) Trim() *StringObj {
	return NewString(strings.TrimSpace(s.String()))
}

func (s *StringObj) ToUpper() *StringObj {
	return NewString(strings.ToUpper(s.String()))
}

func (s *StringObj) ToLower() *StringObj {
	return NewString(strings.ToLower(s.String()))
}

func (s *StringObj) Replace(old, new string) *StringObj {
	return NewString(strings.ReplaceAll(s.String(), old, new))
}

func (s *StringObj) Repeat(n int) *StringObj {
	if n < 0 {
		n = 0
	}
	return NewString(strings.Repeat(s.String(), n))
}

func (s *StringObj) ToBytes(reg *FreedRegistry) *BufferObj {
	return NewBufferBytes(s.bytes)
}
