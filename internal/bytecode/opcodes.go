package bytecode

// OpCode is a single one-byte instruction tag. Operand widths are
// fixed per opcode: 1 byte for a pool index or count, 2 bytes big-endian for
// jump targets.
type OpCode byte

const (
	OpLoadConst OpCode = iota
	OpLoadNull
	OpLoadTrue
	OpLoadFalse
	OpLoadUndefined

	OpLoadVar
	OpStoreVar

	OpPop
	OpDup
	OpSwap

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg

	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn

	OpNot

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	OpBuildArray
	OpBuildMap
	OpIndex
	OpStoreIndex
	OpGetMember
	OpStoreMember

	OpGetIter
	OpForIter

	OpMakeFunction
	OpCall
	OpReturn

	OpHalt
)

var names = map[OpCode]string{
	OpLoadConst:     "LOAD_CONST",
	OpLoadNull:      "LOAD_NULL",
	OpLoadTrue:      "LOAD_TRUE",
	OpLoadFalse:     "LOAD_FALSE",
	OpLoadUndefined: "LOAD_UNDEFINED",
	OpLoadVar:       "LOAD_VAR",
	OpStoreVar:      "STORE_VAR",
	OpPop:           "POP",
	OpDup:           "DUP",
	OpSwap:          "SWAP",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpPow:           "POW",
	OpNeg:           "NEG",
	OpEq:            "EQ",
	OpNeq:           "NEQ",
	OpLt:            "LT",
	OpLte:           "LTE",
	OpGt:            "GT",
	OpGte:           "GTE",
	OpIn:            "IN",
	OpNot:           "NOT",
	OpJump:          "JUMP",
	OpJumpIfFalse:   "JUMP_IF_FALSE",
	OpJumpIfTrue:    "JUMP_IF_TRUE",
	OpBuildArray:    "BUILD_ARRAY",
	OpBuildMap:      "BUILD_MAP",
	OpIndex:         "INDEX",
	OpStoreIndex:    "STORE_INDEX",
	OpGetMember:     "GET_MEMBER",
	OpStoreMember:   "STORE_MEMBER",
	OpGetIter:       "GET_ITER",
	OpForIter:       "FOR_ITER",
	OpMakeFunction:  "MAKE_FUNCTION",
	OpCall:          "CALL",
	OpReturn:        "RETURN",
	OpHalt:          "HALT",
}

func (op OpCode) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return "UNKNOWN"
}
