package parser

import (
	"testing"

	"github.com/Schneewolf-Labs/hemlock/internal/ast"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func TestParseLetDecl(t *testing.T) {
	stmts, err := ParseSource("let x = 1 + 2;")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	let, ok := stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("stmt[0] is %T, want *ast.Let", stmts[0])
	}
	if let.Name != "x" || let.IsConst {
		t.Errorf("let = {Name:%q IsConst:%v}, want {x false}", let.Name, let.IsConst)
	}
	if _, ok := let.Value.(*ast.Binary); !ok {
		t.Errorf("let.Value is %T, want *ast.Binary", let.Value)
	}
}

func TestParseConstDecl(t *testing.T) {
	stmts, err := ParseSource("const pi = 3;")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	let := stmts[0].(*ast.Let)
	if !let.IsConst {
		t.Error("const declaration should set IsConst")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	stmts, err := ParseSource("fn add(a, b) { return a + b; }")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	decl, ok := stmts[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("stmt[0] is %T, want *ast.FunctionDecl", stmts[0])
	}
	if len(decl.Fn.Params) != 2 {
		t.Errorf("got %d params, want 2", len(decl.Fn.Params))
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), i.e. the top-level Binary op is '+'
	// with a nested Binary '*' on the right.
	stmts, err := ParseSource("let x = 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	let := stmts[0].(*ast.Let)
	top, ok := let.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("top-level expr is %T, want *ast.Binary", let.Value)
	}
	if top.Op != "+" {
		t.Fatalf("top-level op = %q, want '+'", top.Op)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Fatalf("right-hand side = %#v, want a '*' Binary", top.Right)
	}
}

func TestParseIfElseChain(t *testing.T) {
	stmts, err := ParseSource(`
		if (x == 1) {
			print(1);
		} else if (x == 2) {
			print(2);
		} else {
			print(3);
		}
	`)
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("stmt[0] is %T, want *ast.If", stmts[0])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseForIn(t *testing.T) {
	_, err := ParseSource("for (item in items) { print(item); }")
	if err != nil {
		t.Fatalf("for-in parse error: %v", err)
	}
}

func TestParseCStyleFor(t *testing.T) {
	_, err := ParseSource("for (let i = 0; i < 10; i = i + 1) { print(i); }")
	if err != nil {
		t.Fatalf("C-style for parse error: %v", err)
	}
}

func TestParseInvalidAssignmentTargetErrors(t *testing.T) {
	if _, err := ParseSource("1 = 2;"); err == nil {
		t.Fatal("assigning to a literal should be a parse error")
	}
}

func TestParseCallWithNamedAndSpreadArgs(t *testing.T) {
	stmts, err := ParseSource("f(1, name: 2, ...rest);")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	exprStmt := stmts[0].(*ast.ExpressionStmt)
	call, ok := exprStmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Call", exprStmt.Expr)
	}
	if len(call.Args) != 3 {
		t.Fatalf("got %d args, want 3", len(call.Args))
	}
	if call.Args[1].Name != "name" {
		t.Errorf("args[1].Name = %q, want 'name'", call.Args[1].Name)
	}
	if !call.Args[2].Spread {
		t.Error("args[2].Spread = false, want true")
	}
}

func TestParseStringInterpolation(t *testing.T) {
	stmts, err := ParseSource(`let s = "hi ${1 + 2}";`)
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	let := stmts[0].(*ast.Let)
	if _, ok := let.Value.(*ast.Interpolation); !ok {
		t.Fatalf("interpolated string parsed as %T, want *ast.Interpolation", let.Value)
	}
}

func TestParseWidthSuffixedIntLiteral(t *testing.T) {
	stmts, err := ParseSource("let x = 42i8;")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	let := stmts[0].(*ast.Let)
	lit, ok := let.Value.(*ast.Literal)
	if !ok {
		t.Fatalf("let.Value is %T, want *ast.Literal", let.Value)
	}
	if lit.Value.Kind != value.KindI8 {
		t.Errorf("literal Kind = %s, want %s", lit.Value.Kind, value.KindI8)
	}
	if lit.Value.Int() != 42 {
		t.Errorf("literal value = %d, want 42", lit.Value.Int())
	}
}

func TestParseWidthSuffixedIntLiteralOutOfRangeErrors(t *testing.T) {
	if _, err := ParseSource("let x = 200i8;"); err == nil {
		t.Fatal("200i8 overflows i8 and should be a parse error")
	}
}

func TestParseWidthSuffixedFloatLiteral(t *testing.T) {
	stmts, err := ParseSource("let x = 3.5f32;")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	let := stmts[0].(*ast.Let)
	lit, ok := let.Value.(*ast.Literal)
	if !ok {
		t.Fatalf("let.Value is %T, want *ast.Literal", let.Value)
	}
	if lit.Value.Kind != value.KindF32 {
		t.Errorf("literal Kind = %s, want %s", lit.Value.Kind, value.KindF32)
	}
}

func TestParseTryCatchRequiresHandler(t *testing.T) {
	if _, err := ParseSource("try { f(); }"); err == nil {
		t.Fatal("try with neither catch nor finally should be a parse error")
	}
	_, err := ParseSource("try { f(); } catch (e) { print(e); }")
	if err != nil {
		t.Fatalf("try/catch parse error: %v", err)
	}
}
