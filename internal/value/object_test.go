package value

import "testing"

func TestObjectSetPreservesInsertionOrder(t *testing.T) {
	reg := NewFreedRegistry()
	o := NewObject(reg, "")
	o.Set("b", I64(2))
	o.Set("a", I64(1))
	o.Set("b", I64(20)) // overwrite in place, order unchanged

	names := o.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("Names() = %v, want [b a]", names)
	}
	v, ok := o.Get("b")
	if !ok || v.Int() != 20 {
		t.Fatalf("Get(b) = %v, %v; want 20, true", v, ok)
	}
}

func TestObjectDeleteRemovesField(t *testing.T) {
	reg := NewFreedRegistry()
	o := NewObject(reg, "")
	o.Set("x", I64(1))
	if !o.Delete("x") {
		t.Fatal("Delete(x) = false, want true")
	}
	if o.Has("x") {
		t.Error("Has(x) after Delete should be false")
	}
	if o.Delete("x") {
		t.Error("second Delete(x) should return false")
	}
}

func TestObjectGetMissingReturnsFalse(t *testing.T) {
	o := NewObject(NewFreedRegistry(), "")
	if _, ok := o.Get("missing"); ok {
		t.Error("Get(missing) should return ok=false")
	}
}
