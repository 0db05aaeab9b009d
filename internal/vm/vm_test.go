package vm

import (
	"testing"

	"github.com/kr/pretty"

	"gridlang/internal/builtins"
	"gridlang/internal/compiler"
	"gridlang/internal/lexer"
	"gridlang/internal/parser"
	"gridlang/internal/value"
)

func run(t *testing.T, src string) value.Value {
	t.Helper()
	toks, err := lexer.New(src).ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	chunk, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	globals := value.NewScope(nil)
	builtins.InstallPure(globals)
	result, err := New(globals).Run(chunk)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.New(src).ScanTokens()
	if err != nil {
		return err
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return err
	}
	chunk, err := compiler.Compile(prog)
	if err != nil {
		return err
	}
	globals := value.NewScope(nil)
	builtins.InstallPure(globals)
	_, err = New(globals).Run(chunk)
	return err
}

func TestArithmeticPrecedence(t *testing.T) {
	got := run(t, "2 + 3 * 4")
	if got != float64(14) {
		t.Fatalf("got %v", got)
	}
}

func TestFibonacciRecursive(t *testing.T) {
	src := `
func fib(n) {
    if n < 2 { return n }
    return fib(n - 1) + fib(n - 2)
}
fib(10)
`
	got := run(t, src)
	if got != float64(55) {
		t.Fatalf("got %v, want 55", got)
	}
}

func TestRangeForLoopAccumulates(t *testing.T) {
	src := `
total = 0
for i in range(5) {
    total = total + i
}
total
`
	got := run(t, src)
	if got != float64(10) {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestMapTwoVarForLoop(t *testing.T) {
	src := `
m = {"a": 1, "b": 2, "c": 3}
total = 0
for k, v in m {
    total = total + v
}
total
`
	got := run(t, src)
	if got != float64(6) {
		t.Fatalf("got %v, want 6", got)
	}
}

func TestClosureCapturesCounter(t *testing.T) {
	src := `
func make_counter() {
    n = 0
    return func() {
        n = n + 1
        return n
    }
}
c = make_counter()
c()
c()
c()
`
	got := run(t, src)
	if got != float64(3) {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestSortReturnsNewArraySortedAscending(t *testing.T) {
	src := `
a = [3, 1, 2]
b = sort(a)
out = [a[0], b[0], b[1], b[2]]
`
	got, ok := run(t, src).(*value.Array)
	if !ok {
		t.Fatalf("expected array, got %T", got)
	}
	want := []float64{3, 1, 2, 3}
	for i, w := range want {
		if got.Elements[i] != w {
			for _, d := range pretty.Diff(got.Elements, toValues(want)) {
				t.Log(d)
			}
			t.Fatalf("index %d: got %v want %v", i, got.Elements[i], w)
		}
	}
}

func toValues(fs []float64) []value.Value {
	out := make([]value.Value, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestShortCircuitAndSkipsSideEffect(t *testing.T) {
	src := `
count = 0
func bump() {
    count = count + 1
    return true
}
false and bump()
count
`
	got := run(t, src)
	if got != float64(0) {
		t.Fatalf("got %v, want 0 (bump must not run)", got)
	}
}

func TestShortCircuitOrSkipsSideEffect(t *testing.T) {
	src := `
count = 0
func bump() {
    count = count + 1
    return true
}
true or bump()
count
`
	got := run(t, src)
	if got != float64(0) {
		t.Fatalf("got %v, want 0 (bump must not run)", got)
	}
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	err := runErr(t, "break")
	if err == nil {
		t.Fatalf("expected compile error for bare break")
	}
}

func TestWhileLoopBreak(t *testing.T) {
	src := `
i = 0
while true {
    i = i + 1
    if i == 5 { break }
}
i
`
	got := run(t, src)
	if got != float64(5) {
		t.Fatalf("got %v, want 5", got)
	}
}

func TestContinueSkipsRemainder(t *testing.T) {
	src := `
total = 0
for i in range(5) {
    if i == 2 { continue }
    total = total + i
}
total
`
	got := run(t, src)
	if got != float64(8) {
		t.Fatalf("got %v, want 8 (0+1+3+4)", got)
	}
}
