package value

import "testing"

func TestRetainReleaseBalance(t *testing.T) {
	reg := NewFreedRegistry()
	s := NewString("hello")
	v := FromHeap(KindString, s)
	Retain(v) // master reference, as every constructor's caller must hold

	Retain(v)
	if got := Refcount(s); got != 2 {
		t.Fatalf("after one extra Retain, refcount = %d, want 2", got)
	}
	Release(reg, v)
	if got := Refcount(s); got != 1 {
		t.Fatalf("after matching Release, refcount = %d, want 1", got)
	}
	Release(reg, v)
	if got := Refcount(s); got != 0 {
		t.Fatalf("after final Release, refcount = %d, want 0", got)
	}
}

func TestFreeRejectsSharedHandle(t *testing.T) {
	reg := NewFreedRegistry()
	s := NewString("shared")
	v := FromHeap(KindString, s)
	Retain(v)
	Retain(v) // second owner, e.g. two array slots both holding v

	if err := Free(reg, v); err == nil {
		t.Fatal("Free on a refcount=2 handle should error, got nil")
	}
}

func TestFreeThenDoubleReleaseIsNoop(t *testing.T) {
	reg := NewFreedRegistry()
	s := NewString("owned")
	v := FromHeap(KindString, s)
	Retain(v)

	if err := Free(reg, v); err != nil {
		t.Fatalf("Free on sole owner failed: %v", err)
	}
	// A later Release of an alias that still points at the freed address
	// must not re-destroy it or panic.
	Release(reg, v)
}

func TestFreeDoubleFreeErrors(t *testing.T) {
	reg := NewFreedRegistry()
	s := NewString("owned")
	v := FromHeap(KindString, s)
	Retain(v)

	if err := Free(reg, v); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if err := Free(reg, v); err == nil {
		t.Fatal("second Free on the same handle should error, got nil")
	}
}

func TestFreeRejectsPrimitive(t *testing.T) {
	reg := NewFreedRegistry()
	if err := Free(reg, I64(5)); err == nil {
		t.Fatal("Free on a primitive value should error, got nil")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero int", I64(0), false},
		{"nonzero int", I64(1), true},
		{"zero float", F64(0), false},
		{"empty string", stringVal("", t), false},
		{"nonempty string", stringVal("x", t), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Truthy(c.v); got != c.want {
				t.Errorf("Truthy(%v) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func stringVal(s string, t *testing.T) Value {
	t.Helper()
	v := FromHeap(KindString, NewString(s))
	Retain(v)
	return v
}
