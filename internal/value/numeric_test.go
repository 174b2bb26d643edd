package value

import "testing"

func TestNewIntRejectsOutOfWidth(t *testing.T) {
	if _, err := NewInt(KindI8, 200); err == nil {
		t.Fatal("NewInt(i8, 200) should error, got nil")
	}
	v, err := NewInt(KindI8, -100)
	if err != nil {
		t.Fatalf("NewInt(i8, -100) unexpected error: %v", err)
	}
	if v.Int() != -100 {
		t.Errorf("NewInt(i8, -100).Int() = %d, want -100", v.Int())
	}
}

func TestNewRuneRejectsOutOfUnicodeRange(t *testing.T) {
	if _, err := NewRune(0x110000); err == nil {
		t.Fatal("NewRune(0x110000) should error, got nil")
	}
	if _, err := NewRune(-1); err == nil {
		t.Fatal("NewRune(-1) should error, got nil")
	}
	v, err := NewRune('A')
	if err != nil || v.RuneVal() != 'A' {
		t.Fatalf("NewRune('A') = %v, %v", v, err)
	}
}

func TestArithmeticIntegerFloatPromotion(t *testing.T) {
	sum, err := Arithmetic("+", I64(2), F64(1.5))
	if err != nil {
		t.Fatalf("2 + 1.5 error: %v", err)
	}
	if sum.Kind != KindF64 || sum.Float() != 3.5 {
		t.Errorf("2 + 1.5 = %v (%s), want 3.5 (f64)", sum.Float(), sum.Kind)
	}
}

func TestArithmeticIntDivisionByZero(t *testing.T) {
	if _, err := Arithmetic("/", I64(1), I64(0)); err == nil {
		t.Fatal("1 / 0 should error, got nil")
	}
}

func TestArithmeticFloatDivisionByZeroErrorsNotInf(t *testing.T) {
	// spec: float division by zero fails rather than producing NaN/Inf.
	if _, err := Arithmetic("/", F64(1), F64(0)); err == nil {
		t.Fatal("1.0 / 0.0 should error, got nil")
	}
}

func TestArithmeticModuloFollowsDividendSign(t *testing.T) {
	r, err := Arithmetic("%", I64(-7), I64(3))
	if err != nil {
		t.Fatalf("-7 %% 3 error: %v", err)
	}
	if r.Int() != -1 {
		t.Errorf("-7 %% 3 = %d, want -1 (dividend sign)", r.Int())
	}
}

func TestArithmeticRejectsNonNumeric(t *testing.T) {
	s := stringVal("x", t)
	if _, err := Arithmetic("+", s, I64(1)); err == nil {
		t.Fatal("string + int should error, got nil")
	}
}

func TestBitwiseRejectsFloat(t *testing.T) {
	if _, err := Bitwise("&", F64(1), I64(1)); err == nil {
		t.Fatal("float & int should error, got nil")
	}
}

func TestBitwiseNot(t *testing.T) {
	v, err := BitwiseNot(I64(0))
	if err != nil {
		t.Fatalf("~0 error: %v", err)
	}
	if v.Int() != -1 {
		t.Errorf("~0 = %d, want -1", v.Int())
	}
}

func TestCompareNumericCrossKind(t *testing.T) {
	cmp, err := Compare(I64(3), F64(3.5))
	if err != nil {
		t.Fatalf("Compare(3, 3.5) error: %v", err)
	}
	if cmp >= 0 {
		t.Errorf("Compare(3, 3.5) = %d, want negative", cmp)
	}
}

func TestCompareDisjointTypesErrors(t *testing.T) {
	if _, err := Compare(stringVal("a", t), I64(1)); err == nil {
		t.Fatal("Compare(string, int) should error, got nil")
	}
}

func TestEqualArraysDeep(t *testing.T) {
	reg := NewFreedRegistry()
	a := NewArray(reg)
	a.Push(I64(1))
	a.Push(I64(2))
	b := NewArray(reg)
	b.Push(I64(1))
	b.Push(I64(2))

	av := FromHeap(KindArray, a)
	bv := FromHeap(KindArray, b)
	if !Equal(av, bv) {
		t.Error("two arrays with identical elements should be Equal")
	}

	b.Push(I64(3))
	if Equal(av, bv) {
		t.Error("arrays of different length should not be Equal")
	}
}

func TestEqualNullOnlyEqualsNull(t *testing.T) {
	if !Equal(Null, Null) {
		t.Error("Null should equal Null")
	}
	if Equal(Null, I64(0)) {
		t.Error("Null should not equal zero")
	}
}
