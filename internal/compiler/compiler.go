// Package compiler lowers a GridLang AST into a bytecode Chunk: one
// visitor method per AST node kind, emitting straight into a Chunk via
// its Emit*/AddConstant/AddName helpers, with jump targets patched once
// the target address is known. GridLang's instruction set has no
// local-slot addressing — every chunk shares one Scope lookup, so the
// compiler itself carries no symbol table beyond the constant/name pools
// already owned by Chunk.
package compiler

import (
	"gridlang/internal/ast"
	"gridlang/internal/bytecode"
	gerrors "gridlang/internal/errors"
	"gridlang/internal/value"
)

// loopCtx tracks the pending jump-patch sites for one enclosing while/for
// loop, patched once the loop's start/end addresses are known.
type loopCtx struct {
	continueTarget int
	breakJumps     []int // offsets of the 2-byte operand to patch to the loop's end
}

// Compiler turns one AST node tree into one Chunk. A fresh Compiler is used
// per function body (see compileFunction), so nested FuncDef/FuncExpr
// compile their own child chunk recursively.
type Compiler struct {
	chunk *bytecode.Chunk
	loops []*loopCtx
}

// Compile compiles a full program into a Chunk named "<program>".
func Compile(prog *ast.Program) (chunk *bytecode.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*gerrors.GridError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()
	c := &Compiler{chunk: bytecode.NewChunk("<program>")}
	c.compileStmts(prog.Stmts, false)
	c.chunk.EmitOp(bytecode.OpHalt, lastLine(prog.Stmts), 0)
	return c.chunk, nil
}

func lastLine(stmts []ast.Stmt) int {
	if len(stmts) == 0 {
		return 0
	}
	l, _ := stmts[len(stmts)-1].Position()
	return l
}

func (c *Compiler) errorf(line, col int, format string, args ...interface{}) {
	panic(gerrors.New(gerrors.CompileError, line, col, format, args...))
}

// ---- statement lists ----

// compileStmts compiles an ordered statement list. An expression
// statement's value is popped when inBlock is true and another statement
// follows it, or when the block sits inside a loop body (so FOR_ITER
// always finds its iterator on top of the stack). Otherwise the last
// statement of a list gets no trailing POP, and its value survives on the
// stack (HALT returns it at program end).
func (c *Compiler) compileStmts(stmts []ast.Stmt, inBlock bool) {
	for i, stmt := range stmts {
		isLast := i == len(stmts)-1
		if es, ok := stmt.(*ast.ExprStmt); ok {
			es.Expr.Accept(c)
			if inBlock && (!isLast || len(c.loops) > 0) {
				line, col := es.Position()
				c.chunk.EmitOp(bytecode.OpPop, line, col)
			}
			continue
		}
		stmt.Accept(c)
	}
}

func (c *Compiler) compileBlock(b *ast.Block) {
	c.compileStmts(b.Stmts, true)
}

// ---- statements ----

func (c *Compiler) VisitBlock(n *ast.Block) interface{} {
	c.compileBlock(n)
	return nil
}

func (c *Compiler) VisitExprStmt(n *ast.ExprStmt) interface{} {
	n.Expr.Accept(c)
	c.chunk.EmitOp(bytecode.OpPop, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitIfStmt(n *ast.IfStmt) interface{} {
	n.Cond.Accept(c)
	jumpElse := c.emitJumpPlaceholder(bytecode.OpJumpIfFalse, n.Line, n.Col)
	c.compileBlock(n.Then)
	jumpEnd := c.emitJumpPlaceholder(bytecode.OpJump, n.Line, n.Col)
	c.patchJumpHere(jumpElse)
	if n.Else != nil {
		n.Else.Accept(c)
	}
	c.patchJumpHere(jumpEnd)
	return nil
}

func (c *Compiler) VisitWhileStmt(n *ast.WhileStmt) interface{} {
	loopStart := len(c.chunk.Code)
	n.Cond.Accept(c)
	jumpEnd := c.emitJumpPlaceholder(bytecode.OpJumpIfFalse, n.Line, n.Col)

	c.loops = append(c.loops, &loopCtx{continueTarget: loopStart})
	c.compileBlock(n.Body)
	c.chunk.EmitUint16At(bytecode.OpJump, uint16(loopStart), n.Line, n.Col)

	c.patchJumpHere(jumpEnd)
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, site := range loop.breakJumps {
		c.chunk.PatchUint16(site, uint16(len(c.chunk.Code)))
	}
	return nil
}

// VisitForStmt lowers `for [k,] v in iter { body }`/: GET_ITER
// once, then a loop headed by FOR_ITER that jumps past a trailing POP
// (which discards the iterator) on exhaustion. continue targets FOR_ITER;
// break targets the trailing POP.
func (c *Compiler) VisitForStmt(n *ast.ForStmt) interface{} {
	n.Iterable.Accept(c)
	c.chunk.EmitOp(bytecode.OpGetIter, n.Line, n.Col)

	loopStart := len(c.chunk.Code)
	c.chunk.EmitOp(bytecode.OpForIter, n.Line, n.Col)
	jumpEndPos := c.chunk.EmitUint16(0, n.Line, n.Col)
	twoVar := byte(0)
	if len(n.Names) == 2 {
		twoVar = 1
	}
	c.chunk.EmitByte(twoVar, n.Line, n.Col)

	if len(n.Names) == 2 {
		c.chunk.EmitOp(bytecode.OpStoreVar, n.Line, n.Col)
		c.chunk.EmitByte(byte(c.chunk.AddName(n.Names[1])), n.Line, n.Col)
	}
	c.chunk.EmitOp(bytecode.OpStoreVar, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Names[0])), n.Line, n.Col)

	c.loops = append(c.loops, &loopCtx{continueTarget: loopStart})
	c.compileBlock(n.Body)
	c.chunk.EmitUint16At(bytecode.OpJump, uint16(loopStart), n.Line, n.Col)

	c.chunk.PatchUint16(jumpEndPos, uint16(len(c.chunk.Code)))
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, site := range loop.breakJumps {
		c.chunk.PatchUint16(site, uint16(len(c.chunk.Code)))
	}
	c.chunk.EmitOp(bytecode.OpPop, n.Line, n.Col) // discard iterator
	return nil
}

func (c *Compiler) VisitReturnStmt(n *ast.ReturnStmt) interface{} {
	if n.Value != nil {
		n.Value.Accept(c)
	} else {
		c.chunk.EmitOp(bytecode.OpLoadNull, n.Line, n.Col)
	}
	c.chunk.EmitOp(bytecode.OpReturn, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitBreakStmt(n *ast.BreakStmt) interface{} {
	if len(c.loops) == 0 {
		c.errorf(n.Line, n.Col, "'break' outside loop")
	}
	loop := c.loops[len(c.loops)-1]
	pos := c.emitJumpPlaceholder(bytecode.OpJump, n.Line, n.Col)
	loop.breakJumps = append(loop.breakJumps, pos)
	return nil
}

func (c *Compiler) VisitContinueStmt(n *ast.ContinueStmt) interface{} {
	if len(c.loops) == 0 {
		c.errorf(n.Line, n.Col, "'continue' outside loop")
	}
	loop := c.loops[len(c.loops)-1]
	c.chunk.EmitUint16At(bytecode.OpJump, uint16(loop.continueTarget), n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitFuncDef(n *ast.FuncDef) interface{} {
	c.emitFunction(n.Name, n.Params, n.Body, n.Line, n.Col)
	c.chunk.EmitOp(bytecode.OpStoreVar, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Name)), n.Line, n.Col)
	return nil
}

// ---- expressions ----

func (c *Compiler) VisitNumberLit(n *ast.NumberLit) interface{} {
	c.loadConst(n.Value, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitStringLit(n *ast.StringLit) interface{} {
	c.loadConst(n.Value, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitBooleanLit(n *ast.BooleanLit) interface{} {
	if n.Value {
		c.chunk.EmitOp(bytecode.OpLoadTrue, n.Line, n.Col)
	} else {
		c.chunk.EmitOp(bytecode.OpLoadFalse, n.Line, n.Col)
	}
	return nil
}

func (c *Compiler) VisitNullLit(n *ast.NullLit) interface{} {
	c.chunk.EmitOp(bytecode.OpLoadNull, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitRegexLit(n *ast.RegexLit) interface{} {
	re, err := value.CompileRegex(n.Pattern)
	if err != nil {
		c.errorf(n.Line, n.Col, "invalid regex literal: %s", err)
	}
	c.loadConst(re, n.Line, n.Col)
	return nil
}

// VisitFStringLit lowers to a left-fold of ADDs: literal parts become
// LOAD_CONST, interpolated parts resolve the dotted path then call the
// global `str` builtin to stringify it.
func (c *Compiler) VisitFStringLit(n *ast.FStringLit) interface{} {
	if len(n.Parts) == 0 {
		c.loadConst("", n.Line, n.Col)
		return nil
	}
	for i, part := range n.Parts {
		if part.Path == nil {
			c.loadConst(part.Lit, n.Line, n.Col)
		} else {
			c.emitPathAsString(part.Path, n.Line, n.Col)
		}
		if i > 0 {
			c.chunk.EmitOp(bytecode.OpAdd, n.Line, n.Col)
		}
	}
	return nil
}

// emitPathAsString emits LOAD_VAR path[0]; GET_MEMBER path[1..]; then calls
// the global `str` conversion function on the result.
func (c *Compiler) emitPathAsString(path []string, line, col int) {
	c.chunk.EmitOp(bytecode.OpLoadVar, line, col)
	c.chunk.EmitByte(byte(c.chunk.AddName("str")), line, col)
	c.chunk.EmitOp(bytecode.OpLoadVar, line, col)
	c.chunk.EmitByte(byte(c.chunk.AddName(path[0])), line, col)
	for _, seg := range path[1:] {
		c.chunk.EmitOp(bytecode.OpGetMember, line, col)
		c.chunk.EmitByte(byte(c.chunk.AddName(seg)), line, col)
	}
	c.chunk.EmitOp(bytecode.OpCall, line, col)
	c.chunk.EmitByte(1, line, col)
}

func (c *Compiler) VisitArrayLit(n *ast.ArrayLit) interface{} {
	for _, e := range n.Elements {
		e.Accept(c)
	}
	c.chunk.EmitOp(bytecode.OpBuildArray, n.Line, n.Col)
	c.chunk.EmitByte(byte(len(n.Elements)), n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitMapLit(n *ast.MapLit) interface{} {
	for i, k := range n.Keys {
		c.loadConst(k, n.Line, n.Col)
		n.Values[i].Accept(c)
	}
	c.chunk.EmitOp(bytecode.OpBuildMap, n.Line, n.Col)
	c.chunk.EmitByte(byte(len(n.Keys)), n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitIdentifier(n *ast.Identifier) interface{} {
	c.chunk.EmitOp(bytecode.OpLoadVar, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Name)), n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitIndex(n *ast.Index) interface{} {
	n.Object.Accept(c)
	n.Index.Accept(c)
	c.chunk.EmitOp(bytecode.OpIndex, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitMemberAccess(n *ast.MemberAccess) interface{} {
	n.Object.Accept(c)
	c.chunk.EmitOp(bytecode.OpGetMember, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Name)), n.Line, n.Col)
	return nil
}

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod, "**": bytecode.OpPow,
	"==": bytecode.OpEq, "!=": bytecode.OpNeq,
	"<": bytecode.OpLt, "<=": bytecode.OpLte, ">": bytecode.OpGt, ">=": bytecode.OpGte,
	"in": bytecode.OpIn,
}

// VisitBinaryOp compiles every binary operator except `and`/`or`, which get
// the short-circuit DUP/JUMP/POP sequence documented in 
func (c *Compiler) VisitBinaryOp(n *ast.BinaryOp) interface{} {
	switch n.Op {
	case "and":
		n.Left.Accept(c)
		c.chunk.EmitOp(bytecode.OpDup, n.Line, n.Col)
		endJump := c.emitJumpPlaceholder(bytecode.OpJumpIfFalse, n.Line, n.Col)
		c.chunk.EmitOp(bytecode.OpPop, n.Line, n.Col)
		n.Right.Accept(c)
		c.patchJumpHere(endJump)
		return nil
	case "or":
		n.Left.Accept(c)
		c.chunk.EmitOp(bytecode.OpDup, n.Line, n.Col)
		endJump := c.emitJumpPlaceholder(bytecode.OpJumpIfTrue, n.Line, n.Col)
		c.chunk.EmitOp(bytecode.OpPop, n.Line, n.Col)
		n.Right.Accept(c)
		c.patchJumpHere(endJump)
		return nil
	}
	op, ok := binaryOps[n.Op]
	if !ok {
		c.errorf(n.Line, n.Col, "unknown binary operator %q", n.Op)
	}
	n.Left.Accept(c)
	n.Right.Accept(c)
	c.chunk.EmitOp(op, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitUnaryOp(n *ast.UnaryOp) interface{} {
	n.Operand.Accept(c)
	switch n.Op {
	case "-":
		c.chunk.EmitOp(bytecode.OpNeg, n.Line, n.Col)
	case "not":
		c.chunk.EmitOp(bytecode.OpNot, n.Line, n.Col)
	default:
		c.errorf(n.Line, n.Col, "unknown unary operator %q", n.Op)
	}
	return nil
}

// VisitAssignment: RHS, DUP, STORE_VAR — assignment is an expression whose
// value is the assigned RHS.
func (c *Compiler) VisitAssignment(n *ast.Assignment) interface{} {
	n.Value.Accept(c)
	c.chunk.EmitOp(bytecode.OpDup, n.Line, n.Col)
	c.chunk.EmitOp(bytecode.OpStoreVar, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Target)), n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitIndexAssignment(n *ast.IndexAssignment) interface{} {
	n.Object.Accept(c)
	n.Index.Accept(c)
	n.Value.Accept(c)
	c.chunk.EmitOp(bytecode.OpStoreIndex, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitMemberAssignment(n *ast.MemberAssignment) interface{} {
	n.Object.Accept(c)
	n.Value.Accept(c)
	c.chunk.EmitOp(bytecode.OpStoreMember, n.Line, n.Col)
	c.chunk.EmitByte(byte(c.chunk.AddName(n.Name)), n.Line, n.Col)
	return nil
}

// VisitMultiAssignment: RHS once, then for each target DUP; LOAD_CONST i;
// INDEX; STORE_VAR target, leaving the original RHS as the result.
func (c *Compiler) VisitMultiAssignment(n *ast.MultiAssignment) interface{} {
	n.Value.Accept(c)
	for i, name := range n.Names {
		c.chunk.EmitOp(bytecode.OpDup, n.Line, n.Col)
		c.loadConst(float64(i), n.Line, n.Col)
		c.chunk.EmitOp(bytecode.OpIndex, n.Line, n.Col)
		c.chunk.EmitOp(bytecode.OpStoreVar, n.Line, n.Col)
		c.chunk.EmitByte(byte(c.chunk.AddName(name)), n.Line, n.Col)
	}
	return nil
}

func (c *Compiler) VisitTernary(n *ast.Ternary) interface{} {
	n.Cond.Accept(c)
	jumpElse := c.emitJumpPlaceholder(bytecode.OpJumpIfFalse, n.Line, n.Col)
	n.Then.Accept(c)
	jumpEnd := c.emitJumpPlaceholder(bytecode.OpJump, n.Line, n.Col)
	c.patchJumpHere(jumpElse)
	n.Else.Accept(c)
	c.patchJumpHere(jumpEnd)
	return nil
}

// VisitElvis: `left ?: right` keeps left if truthy, else right, evaluating
// left exactly once via DUP + JUMP_IF_TRUE (mirror of the `or` sequence).
func (c *Compiler) VisitElvis(n *ast.Elvis) interface{} {
	n.Left.Accept(c)
	c.chunk.EmitOp(bytecode.OpDup, n.Line, n.Col)
	endJump := c.emitJumpPlaceholder(bytecode.OpJumpIfTrue, n.Line, n.Col)
	c.chunk.EmitOp(bytecode.OpPop, n.Line, n.Col)
	n.Right.Accept(c)
	c.patchJumpHere(endJump)
	return nil
}

func (c *Compiler) VisitFuncExpr(n *ast.FuncExpr) interface{} {
	c.emitFunction("", n.Params, n.Body, n.Line, n.Col)
	return nil
}

func (c *Compiler) VisitCall(n *ast.Call) interface{} {
	n.Callee.Accept(c)
	for _, a := range n.Args {
		a.Accept(c)
	}
	c.chunk.EmitOp(bytecode.OpCall, n.Line, n.Col)
	c.chunk.EmitByte(byte(len(n.Args)), n.Line, n.Col)
	return nil
}

// ---- helpers ----

func (c *Compiler) loadConst(v value.Value, line, col int) {
	idx := c.chunk.AddConstant(v)
	c.chunk.EmitOp(bytecode.OpLoadConst, line, col)
	c.chunk.EmitByte(byte(idx), line, col)
}

// emitJumpPlaceholder emits op followed by a 2-byte placeholder address,
// returning the operand's offset for later patching.
func (c *Compiler) emitJumpPlaceholder(op bytecode.OpCode, line, col int) int {
	c.chunk.EmitOp(op, line, col)
	return c.chunk.EmitUint16(0, line, col)
}

func (c *Compiler) patchJumpHere(operandPos int) {
	c.chunk.PatchUint16(operandPos, uint16(len(c.chunk.Code)))
}

// emitFunction compiles body into a new child chunk whose names[0:len(params)]
// are exactly the parameter names, wraps it in a template
// *value.Function constant, and emits LOAD_CONST/MAKE_FUNCTION so the VM
// captures the enclosing scope at the point of execution.
func (c *Compiler) emitFunction(name string, params []string, body *ast.Block, line, col int) {
	fc := &Compiler{chunk: bytecode.NewChunk(functionLabel(name))}
	for _, p := range params {
		fc.chunk.AddName(p)
	}
	fc.compileBlock(body)
	fc.chunk.EmitOp(bytecode.OpLoadNull, line, col)
	fc.chunk.EmitOp(bytecode.OpReturn, line, col)

	fn := &value.Function{Name: name, Params: params, Chunk: fc.chunk}
	idx := c.chunk.AddConstant(fn)
	c.chunk.EmitOp(bytecode.OpLoadConst, line, col)
	c.chunk.EmitByte(byte(idx), line, col)
	c.chunk.EmitOp(bytecode.OpMakeFunction, line, col)
	c.chunk.EmitByte(byte(len(params)), line, col)
}

func functionLabel(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}
