package value

import "testing"

func TestArrayFirstAndLast(t *testing.T) {
	reg := NewFreedRegistry()
	a := NewArray(reg)
	a.Push(I64(1))
	a.Push(I64(2))
	a.Push(I64(3))

	first, err := a.First()
	if err != nil || first.Int() != 1 {
		t.Fatalf("First() = %v, %v; want 1, nil", first, err)
	}
	last, err := a.Last()
	if err != nil || last.Int() != 3 {
		t.Fatalf("Last() = %v, %v; want 3, nil", last, err)
	}
}

func TestArrayFirstLastOnEmptyErrors(t *testing.T) {
	a := NewArray(NewFreedRegistry())
	if _, err := a.First(); err == nil {
		t.Fatal("First() on empty array should error, got nil")
	}
	if _, err := a.Last(); err == nil {
		t.Fatal("Last() on empty array should error, got nil")
	}
}

func TestArrayContains(t *testing.T) {
	reg := NewFreedRegistry()
	a := NewArray(reg)
	a.Push(I64(1))
	a.Push(I64(2))

	if !a.Contains(I64(2)) {
		t.Error("Contains(2) = false, want true")
	}
	if a.Contains(I64(99)) {
		t.Error("Contains(99) = true, want false")
	}
}
