package evaluator

import (
	"testing"

	"gridlang/internal/builtins"
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
	globals := value.NewScope(nil)
	builtins.InstallPure(globals)
	result, err := New(globals).Eval(prog)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
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

func TestRegexNamedGroups(t *testing.T) {
	src := `
re = r"(?<year>\d{4})-(?<month>\d{2})"
g = re.groups("2024-07")
out = [g["year"], g["month"]]
`
	got, ok := run(t, src).(*value.Array)
	if !ok {
		t.Fatalf("expected array result")
	}
	if got.Elements[0] != "2024" || got.Elements[1] != "07" {
		t.Fatalf("got %v", got.Elements)
	}
}

func TestSortReturnsNewArray(t *testing.T) {
	src := `
a = [3, 1, 2]
b = sort(a)
out = [a[0], b[0], b[1], b[2]]
`
	got, ok := run(t, src).(*value.Array)
	if !ok {
		t.Fatalf("expected array result")
	}
	want := []float64{3, 1, 2, 3}
	for i, w := range want {
		if got.Elements[i] != w {
			t.Fatalf("index %d: got %v want %v", i, got.Elements[i], w)
		}
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
		t.Fatalf("got %v, want 0", got)
	}
}

func TestBreakOutsideLoopBecomesRuntimeError(t *testing.T) {
	toks, err := lexer.New("break").ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	globals := value.NewScope(nil)
	builtins.InstallPure(globals)
	_, err = New(globals).Eval(prog)
	if err == nil {
		t.Fatalf("expected runtime error for bare break, got nil")
	}
}

func TestContinueOutsideLoopBecomesRuntimeError(t *testing.T) {
	toks, err := lexer.New("continue").ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	globals := value.NewScope(nil)
	builtins.InstallPure(globals)
	_, err = New(globals).Eval(prog)
	if err == nil {
		t.Fatalf("expected runtime error for bare continue, got nil")
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
		t.Fatalf("got %v, want 8", got)
	}
}
