package eval_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Schneewolf-Labs/hemlock/internal/builtins"
	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/eval"
	"github.com/Schneewolf-Labs/hemlock/internal/parser"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
)

// run parses and evaluates source against a fresh interpreter, returning
// whatever was written to stdout via print().
func run(t *testing.T, source string) string {
	t.Helper()
	stmts, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	rt := runtime.New()
	var out bytes.Buffer
	rt.Stdout = &out

	globalEnv := env.New(rt.Reg)
	builtins.Install(rt, globalEnv)
	interp := eval.New(rt, globalEnv)
	if err := interp.Run(stmts); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return out.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	got := run(t, `print(1 + 2 * 3);`)
	if strings.TrimSpace(got) != "7" {
		t.Errorf("output = %q, want %q", got, "7")
	}
}

func TestIfElse(t *testing.T) {
	got := run(t, `
		let x = 5;
		if (x > 3) { print("big"); } else { print("small"); }
	`)
	if strings.TrimSpace(got) != "big" {
		t.Errorf("output = %q, want %q", got, "big")
	}
}

func TestWhileLoop(t *testing.T) {
	got := run(t, `
		let i = 0;
		let sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print(sum);
	`)
	if strings.TrimSpace(got) != "10" {
		t.Errorf("output = %q, want %q", got, "10")
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	got := run(t, `
		fn add(a, b) { return a + b; }
		print(add(3, 4));
	`)
	if strings.TrimSpace(got) != "7" {
		t.Errorf("output = %q, want %q", got, "7")
	}
}

func TestRecursiveFunction(t *testing.T) {
	got := run(t, `
		fn fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		print(fib(10));
	`)
	if strings.TrimSpace(got) != "55" {
		t.Errorf("output = %q, want %q", got, "55")
	}
}

func TestArrayIndexAndMutation(t *testing.T) {
	got := run(t, `
		let arr = [1, 2, 3];
		arr[1] = 99;
		print(arr[1]);
	`)
	if strings.TrimSpace(got) != "99" {
		t.Errorf("output = %q, want %q", got, "99")
	}
}

func TestObjectLiteralAndProperty(t *testing.T) {
	got := run(t, `
		let o = { name: "hemlock", version: 1 };
		print(o.name);
	`)
	if strings.TrimSpace(got) != "hemlock" {
		t.Errorf("output = %q, want %q", got, "hemlock")
	}
}

func TestTryCatchCatchesThrow(t *testing.T) {
	got := run(t, `
		try {
			throw "boom";
		} catch (e) {
			print(e);
		}
	`)
	if strings.TrimSpace(got) != "boom" {
		t.Errorf("output = %q, want %q", got, "boom")
	}
}

func TestStringInterpolation(t *testing.T) {
	got := run(t, `
		let name = "world";
		print("hello ${name}!");
	`)
	if strings.TrimSpace(got) != "hello world!" {
		t.Errorf("output = %q, want %q", got, "hello world!")
	}
}

func TestForInLoopOverArray(t *testing.T) {
	got := run(t, `
		let total = 0;
		for (x in [1, 2, 3, 4]) {
			total = total + x;
		}
		print(total);
	`)
	if strings.TrimSpace(got) != "10" {
		t.Errorf("output = %q, want %q", got, "10")
	}
}

func TestDeferRunsAtFrameExitLIFO(t *testing.T) {
	got := run(t, `
		fn work() {
			defer print("first");
			defer print("second");
			print("body");
		}
		work();
	`)
	want := "body\nsecond\nfirst\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestArrayFirstLastContainsFind(t *testing.T) {
	got := run(t, `
		let a = [10, 20, 30];
		print(a.first());
		print(a.last());
		print(a.contains(20));
		print(a.contains(99));
		print(a.find(30));
		print(a.find(99));
	`)
	want := "10\n30\ntrue\nfalse\n30\nnull\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestObjectMethodFallsBackToCallableField(t *testing.T) {
	got := run(t, `
		let o = {f: fn() { return 1; }};
		print(o.f());
	`)
	if strings.TrimSpace(got) != "1" {
		t.Errorf("output = %q, want %q", got, "1")
	}
}

func TestStringLiteralEvaluatedRepeatedlyInLoop(t *testing.T) {
	// Regression: a string literal's backing Value is shared across every
	// evaluation of its ast.Literal node (VisitLiteral retains it each
	// time), so evaluating the same literal many times in a loop must not
	// corrupt or free it out from under later iterations.
	got := run(t, `
		let i = 0;
		while (i < 3) {
			print("x");
			i = i + 1;
		}
	`)
	want := "x\nx\nx\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
