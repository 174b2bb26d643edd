package value

import "testing"

func TestSerializePrimitives(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "null"},
		{Bool(true), "true"},
		{I64(42), "42"},
		{F64(1.5), "1.5"},
	}
	for _, c := range cases {
		got, err := Serialize(c.v)
		if err != nil {
			t.Fatalf("Serialize(%v) error: %v", c.v, err)
		}
		if got != c.want {
			t.Errorf("Serialize(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSerializeArrayAndObject(t *testing.T) {
	reg := NewFreedRegistry()
	arr := NewArray(reg)
	arr.Push(I64(1))
	arr.Push(stringVal("a", t))
	got, err := Serialize(FromHeap(KindArray, arr))
	if err != nil {
		t.Fatalf("Serialize(array) error: %v", err)
	}
	if got != `[1,"a"]` {
		t.Errorf("Serialize(array) = %q, want %q", got, `[1,"a"]`)
	}

	obj := NewObject(reg, "")
	obj.Set("x", I64(1))
	got, err = Serialize(FromHeap(KindObject, obj))
	if err != nil {
		t.Fatalf("Serialize(object) error: %v", err)
	}
	if got != `{"x":1}` {
		t.Errorf("Serialize(object) = %q, want %q", got, `{"x":1}`)
	}
}

func TestSerializeCircularArrayErrors(t *testing.T) {
	reg := NewFreedRegistry()
	arr := NewArray(reg)
	selfVal := FromHeap(KindArray, arr)
	arr.Push(selfVal)
	if _, err := Serialize(selfVal); err == nil {
		t.Fatal("Serialize of a self-referencing array should error, got nil")
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	reg := NewFreedRegistry()
	v, err := Deserialize(reg, `{"name":"hemlock","nums":[1,2,3],"ok":true,"empty":null}`)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if v.Kind != KindObject {
		t.Fatalf("Deserialize result Kind = %s, want object", v.Kind)
	}
	obj := v.Heap().(*ObjectObj)
	name, ok := obj.Get("name")
	if !ok || name.Heap().(*StringObj).String() != "hemlock" {
		t.Errorf("name field = %v, %v; want 'hemlock', true", name, ok)
	}
	nums, ok := obj.Get("nums")
	if !ok || nums.Kind != KindArray || nums.Heap().(*ArrayObj).Length() != 3 {
		t.Errorf("nums field = %v, %v; want a 3-element array", nums, ok)
	}
	empty, ok := obj.Get("empty")
	if !ok || !empty.IsNull() {
		t.Errorf("empty field = %v, %v; want Null, true", empty, ok)
	}
}

func TestDeserializeInvalidJSONErrors(t *testing.T) {
	if _, err := Deserialize(NewFreedRegistry(), `{not valid`); err == nil {
		t.Fatal("Deserialize of invalid JSON should error, got nil")
	}
}

func TestDeserializePreservesSourceKeyOrder(t *testing.T) {
	reg := NewFreedRegistry()
	v, err := Deserialize(reg, `{"b":1,"a":2}`)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	obj := v.Heap().(*ObjectObj)
	names := obj.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("Names() = %v, want [b a] (source order)", names)
	}
}
