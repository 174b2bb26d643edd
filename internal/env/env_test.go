package env

import (
	"testing"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func TestDefineAndLookup(t *testing.T) {
	e := New(value.NewFreedRegistry())
	if err := e.Define("x", value.I64(1), false); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	v, err := e.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if v.Int() != 1 {
		t.Errorf("Lookup(x) = %d, want 1", v.Int())
	}
}

func TestDefineRejectsDuplicateInSameScope(t *testing.T) {
	e := New(value.NewFreedRegistry())
	if err := e.Define("x", value.I64(1), false); err != nil {
		t.Fatalf("first Define failed: %v", err)
	}
	if err := e.Define("x", value.I64(2), false); err == nil {
		t.Fatal("second Define of the same name in one scope should error, got nil")
	}
}

func TestChildShadowsParent(t *testing.T) {
	parent := New(value.NewFreedRegistry())
	_ = parent.Define("x", value.I64(1), false)
	child := parent.Child()
	_ = child.Define("x", value.I64(2), false)

	v, err := child.Lookup("x")
	if err != nil || v.Int() != 2 {
		t.Fatalf("child Lookup(x) = %v, %v; want 2, nil", v, err)
	}
	v, err = parent.Lookup("x")
	if err != nil || v.Int() != 1 {
		t.Fatalf("parent Lookup(x) = %v, %v; want 1, nil (shadowing must not leak upward)", v, err)
	}
}

func TestLookupUndefinedErrors(t *testing.T) {
	e := New(value.NewFreedRegistry())
	if _, err := e.Lookup("missing"); err == nil {
		t.Fatal("Lookup of an undefined name should error, got nil")
	}
}

func TestAssignToConstErrors(t *testing.T) {
	e := New(value.NewFreedRegistry())
	_ = e.Define("x", value.I64(1), true)
	if err := e.Assign("x", value.I64(2)); err == nil {
		t.Fatal("Assign to a const binding should error, got nil")
	}
}

func TestAssignWalksParentChain(t *testing.T) {
	parent := New(value.NewFreedRegistry())
	_ = parent.Define("x", value.I64(1), false)
	child := parent.Child()

	if err := child.Assign("x", value.I64(9)); err != nil {
		t.Fatalf("Assign from child scope failed: %v", err)
	}
	v, _ := parent.Lookup("x")
	if v.Int() != 9 {
		t.Errorf("parent Lookup(x) after child Assign = %d, want 9", v.Int())
	}
}

func TestAssignImplicitlyDefinesWhenAbsent(t *testing.T) {
	e := New(value.NewFreedRegistry())
	if err := e.Assign("y", value.I64(5)); err != nil {
		t.Fatalf("Assign of an undefined name should implicitly define, got error: %v", err)
	}
	v, err := e.Lookup("y")
	if err != nil || v.Int() != 5 {
		t.Fatalf("Lookup(y) after implicit-define Assign = %v, %v; want 5, nil", v, err)
	}
}

func TestAtSlotMatchesLookup(t *testing.T) {
	parent := New(value.NewFreedRegistry())
	_ = parent.Define("a", value.I64(10), false)
	child := parent.Child()
	_ = child.Define("b", value.I64(20), false)

	// b is slot 0 of depth 0 (child itself); a is slot 0 of depth 1 (parent).
	v, err := child.AtSlot(0, 0)
	if err != nil || v.Int() != 20 {
		t.Fatalf("AtSlot(0,0) = %v, %v; want 20, nil", v, err)
	}
	v, err = child.AtSlot(1, 0)
	if err != nil || v.Int() != 10 {
		t.Fatalf("AtSlot(1,0) = %v, %v; want 10, nil", v, err)
	}
}

func TestPopReleasesBindings(t *testing.T) {
	reg := value.NewFreedRegistry()
	e := New(reg)
	s := value.FromHeap(value.KindString, value.NewString("owned"))
	value.Retain(s)
	_ = e.Define("x", s, false) // Define retains its own copy

	if got := value.Refcount(s.Heap()); got != 2 {
		t.Fatalf("refcount after Define = %d, want 2 (caller's + env's)", got)
	}
	e.Pop()
	if got := value.Refcount(s.Heap()); got != 1 {
		t.Fatalf("refcount after Pop = %d, want 1 (env's copy released)", got)
	}
}
