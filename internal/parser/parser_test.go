package parser

import (
	"testing"

	"gridlang/internal/ast"
	"gridlang/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestPrecedenceAdditiveOverMultiplicative(t *testing.T) {
	prog := parseSource(t, "2 + 3 * 4")
	es, ok := prog.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Stmts[0])
	}
	bin, ok := es.Expr.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", es.Expr)
	}
	right, ok := bin.Right.(*ast.BinaryOp)
	if !ok || right.Op != "*" {
		t.Fatalf("expected '*' nested on the right, got %#v", bin.Right)
	}
}

func TestAssignmentRightAssociates(t *testing.T) {
	prog := parseSource(t, "a = b = c")
	es := prog.Stmts[0].(*ast.ExprStmt)
	outer, ok := es.Expr.(*ast.Assignment)
	if !ok || outer.Target != "a" {
		t.Fatalf("expected outer assignment to 'a', got %#v", es.Expr)
	}
	inner, ok := outer.Value.(*ast.Assignment)
	if !ok || inner.Target != "b" {
		t.Fatalf("expected inner assignment to 'b', got %#v", outer.Value)
	}
}

func TestPowerIsRightAssociative(t *testing.T) {
	prog := parseSource(t, "2 ** 3 ** 2")
	es := prog.Stmts[0].(*ast.ExprStmt)
	outer, ok := es.Expr.(*ast.BinaryOp)
	if !ok || outer.Op != "**" {
		t.Fatalf("expected '**', got %#v", es.Expr)
	}
	if _, ok := outer.Left.(*ast.NumberLit); !ok {
		t.Fatalf("expected left operand to be a literal, got %#v", outer.Left)
	}
	inner, ok := outer.Right.(*ast.BinaryOp)
	if !ok || inner.Op != "**" {
		t.Fatalf("expected right-nested '**', got %#v", outer.Right)
	}
}

func TestForInTwoShapes(t *testing.T) {
	prog := parseSource(t, "for v in a { print(v) }")
	fs := prog.Stmts[0].(*ast.ForStmt)
	if len(fs.Names) != 1 || fs.Names[0] != "v" {
		t.Fatalf("expected single-var for, got %#v", fs.Names)
	}

	prog2 := parseSource(t, "for k, v in m { print(k, v) }")
	fs2 := prog2.Stmts[0].(*ast.ForStmt)
	if len(fs2.Names) != 2 || fs2.Names[0] != "k" || fs2.Names[1] != "v" {
		t.Fatalf("expected two-var for, got %#v", fs2.Names)
	}
}

func TestInvalidAssignmentTargetIsParseError(t *testing.T) {
	toks, err := lexer.New("1 = 2").ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := New(toks).Parse(); err == nil {
		t.Fatalf("expected parse error for invalid assignment target")
	}
}

func TestFuncDefAndCall(t *testing.T) {
	prog := parseSource(t, "func fib(n){if n<=1 {return n} return fib(n-1)+fib(n-2)}")
	fd, ok := prog.Stmts[0].(*ast.FuncDef)
	if !ok || fd.Name != "fib" || len(fd.Params) != 1 {
		t.Fatalf("expected FuncDef fib(n), got %#v", prog.Stmts[0])
	}
}

func TestMultiAssignment(t *testing.T) {
	prog := parseSource(t, "a, b = pair")
	ma, ok := prog.Stmts[0].(*ast.ExprStmt).Expr.(*ast.MultiAssignment)
	if !ok || len(ma.Names) != 2 {
		t.Fatalf("expected multi-assignment, got %#v", prog.Stmts[0])
	}
}

func TestMethodCallMemberAndIndex(t *testing.T) {
	prog := parseSource(t, "g = p.groups(\"2025-12\")\nprint(g.y, g[\"m\"])")
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected two statements, got %d", len(prog.Stmts))
	}
}
