// Package bytecode defines the compiled chunk format GridLang's bytecode
// compiler emits and the stack VM executes: a byte-code stream, a
// deduplicated constant pool, a deduplicated name pool used for variables
// and members, and a parallel line/column table for diagnostics.
package bytecode

import (
	"encoding/binary"

	"gridlang/internal/value"
)

// DebugInfo carries the source position an instruction byte originated
// from, mirrored one-for-one against Chunk.Code.
type DebugInfo struct {
	Line int
	Col  int
}

// Chunk is a compiled unit: either the top-level program or one function
// body.
type Chunk struct {
	Name      string
	Code      []byte
	Constants []value.Value
	Names     []string
	Lines     []DebugInfo
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

func (c *Chunk) emit(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, DebugInfo{Line: line, Col: col})
}

// EmitOp appends a bare opcode byte.
func (c *Chunk) EmitOp(op OpCode, line, col int) int {
	pos := len(c.Code)
	c.emit(byte(op), line, col)
	return pos
}

// EmitByte appends a raw one-byte operand (index or count).
func (c *Chunk) EmitByte(b byte, line, col int) {
	c.emit(b, line, col)
}

// EmitUint16 appends a big-endian two-byte operand, returning the offset of
// its first byte (used by jump-patching call sites).
func (c *Chunk) EmitUint16(v uint16, line, col int) int {
	pos := len(c.Code)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	c.emit(buf[0], line, col)
	c.emit(buf[1], line, col)
	return pos
}

// EmitUint16At emits an opcode immediately followed by a known 2-byte
// big-endian operand — used for backward jumps, whose target address is
// already known at emit time.
func (c *Chunk) EmitUint16At(op OpCode, v uint16, line, col int) {
	c.EmitOp(op, line, col)
	c.EmitUint16(v, line, col)
}

// PatchUint16 overwrites the two-byte operand starting at pos — used once
// a jump's target address is known.
func (c *Chunk) PatchUint16(pos int, v uint16) {
	binary.BigEndian.PutUint16(c.Code[pos:pos+2], v)
}

func (c *Chunk) ReadUint16(pos int) uint16 {
	return binary.BigEndian.Uint16(c.Code[pos : pos+2])
}

// AddConstant interns a constant, deduplicating by structural equality for
// primitive kinds (number, string, bool, null). Complex constants —
// compiled functions, regexes — are never deduplicated, since two textually
// identical function literals are still distinct closures at runtime.
func (c *Chunk) AddConstant(v value.Value) int {
	if isPrimitive(v) {
		for i, existing := range c.Constants {
			if isPrimitive(existing) && value.Equals(existing, v) {
				return i
			}
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func isPrimitive(v value.Value) bool {
	switch v.(type) {
	case float64, string, bool:
		return true
	default:
		return value.IsNull(v) || value.IsUndefined(v)
	}
}

// AddName interns a name (variable or member) in the name pool, deduplicated
// by string equality.
func (c *Chunk) AddName(name string) int {
	for i, n := range c.Names {
		if n == name {
			return i
		}
	}
	c.Names = append(c.Names, name)
	return len(c.Names) - 1
}

func (c *Chunk) LineAt(ip int) (int, int) {
	if ip >= 0 && ip < len(c.Lines) {
		return c.Lines[ip].Line, c.Lines[ip].Col
	}
	return 0, 0
}
