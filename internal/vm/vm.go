// Package vm implements the GridLang stack-based bytecode VM: a
// fetch-decode dispatch loop over a *bytecode.Chunk, an operand stack, and
// a chained value.Scope for variable binding. GridLang's instruction set
// addresses variables purely by name through the Scope chain, so one VM
// frame is exactly one (chunk, ip, scope) triple; CALL recurses through
// Go's own call stack instead of maintaining an explicit frame array.
package vm

import (
	"gridlang/internal/builtins"
	"gridlang/internal/bytecode"
	"gridlang/internal/debughook"
	gerrors "gridlang/internal/errors"
	"gridlang/internal/value"
)

// VM executes one or more chunks sharing a global scope. A fresh VM is
// constructed per interpreter instance: globals, print buffer and
// renderer state are owned by the interpreter instance, never shared.
type VM struct {
	Globals *value.Scope
	Debug   debughook.Hook

	// callDepth guards against runaway recursion in user GridLang programs.
	callDepth int
}

const maxCallDepth = 2048

// New constructs a VM whose root scope is globals, already populated with
// built-ins by the caller.
func New(globals *value.Scope) *VM {
	return &VM{Globals: globals}
}

// Run executes chunk (normally the top-level program chunk, compiled with a
// trailing HALT) against the VM's global scope and returns the final
// stack-top value, or the first GridError encountered.
func (vm *VM) Run(chunk *bytecode.Chunk) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*gerrors.GridError); ok {
				if vm.Debug != nil {
					vm.Debug.OnError(ge)
				}
				err = ge
				return
			}
			panic(r)
		}
	}()
	v, halted := vm.exec(chunk, vm.Globals)
	_ = halted
	return v, nil
}

// Call implements value.Caller so builtins (sort comparators, grid
// callbacks, animate) can invoke a GridLang function value through the VM.
func (vm *VM) Call(fn value.Value, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*gerrors.GridError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()
	return vm.call(fn, args, 0, 0), nil
}

// frame carries one function activation's execution state.
type frame struct {
	chunk *bytecode.Chunk
	ip    int
	scope *value.Scope
	stack []value.Value
}

// exec runs chunk to completion (HALT or, for a function chunk, its
// implicit trailing LOAD_NULL/RETURN) under scope, returning the final
// stack value and whether a HALT (vs RETURN) ended it.
func (vm *VM) exec(chunk *bytecode.Chunk, scope *value.Scope) (value.Value, bool) {
	f := &frame{chunk: chunk, scope: scope}
	for {
		instrIP := f.ip
		op := bytecode.OpCode(chunk.Code[f.ip])
		f.ip++
		line, col := chunk.LineAt(instrIP)
		if vm.Debug != nil {
			vm.Debug.OnInstruction(op.String(), line, col)
		}

		switch op {
		case bytecode.OpLoadConst:
			idx := vm.readByte(f)
			f.push(chunk.Constants[idx])
		case bytecode.OpLoadNull:
			f.push(value.Null)
		case bytecode.OpLoadTrue:
			f.push(true)
		case bytecode.OpLoadFalse:
			f.push(false)
		case bytecode.OpLoadUndefined:
			f.push(value.Undefined)

		case bytecode.OpLoadVar:
			name := chunk.Names[vm.readByte(f)]
			v, ok := f.scope.Get(name)
			if !ok {
				vm.runtimeErr(line, col, "undefined variable %q", name)
			}
			f.push(v)
		case bytecode.OpStoreVar:
			name := chunk.Names[vm.readByte(f)]
			f.scope.Set(name, f.pop())

		case bytecode.OpPop:
			f.pop()
		case bytecode.OpDup:
			f.push(f.peek(0))
		case bytecode.OpSwap:
			a, b := f.pop(), f.pop()
			f.push(a)
			f.push(b)

		case bytecode.OpAdd:
			r, l := f.pop(), f.pop()
			f.push(value.Add(l, r))
		case bytecode.OpSub:
			r, l := f.pop(), f.pop()
			f.push(value.ToNumber(l) - value.ToNumber(r))
		case bytecode.OpMul:
			r, l := f.pop(), f.pop()
			f.push(value.ToNumber(l) * value.ToNumber(r))
		case bytecode.OpDiv:
			r, l := f.pop(), f.pop()
			f.push(value.ToNumber(l) / value.ToNumber(r))
		case bytecode.OpMod:
			r, l := f.pop(), f.pop()
			f.push(value.Mod(l, r))
		case bytecode.OpPow:
			r, l := f.pop(), f.pop()
			f.push(value.Pow(l, r))
		case bytecode.OpNeg:
			f.push(-value.ToNumber(f.pop()))

		case bytecode.OpEq:
			r, l := f.pop(), f.pop()
			f.push(value.Equals(l, r))
		case bytecode.OpNeq:
			r, l := f.pop(), f.pop()
			f.push(!value.Equals(l, r))
		case bytecode.OpLt:
			r, l := f.pop(), f.pop()
			f.push(value.Compare(l, r) < 0)
		case bytecode.OpLte:
			r, l := f.pop(), f.pop()
			f.push(value.Compare(l, r) <= 0)
		case bytecode.OpGt:
			r, l := f.pop(), f.pop()
			f.push(value.Compare(l, r) > 0)
		case bytecode.OpGte:
			r, l := f.pop(), f.pop()
			f.push(value.Compare(l, r) >= 0)
		case bytecode.OpIn:
			r, l := f.pop(), f.pop()
			f.push(value.Membership(l, r))

		case bytecode.OpNot:
			f.push(!value.Truthy(f.pop()))

		case bytecode.OpJump:
			f.ip = int(vm.readUint16(f))
		case bytecode.OpJumpIfFalse:
			target := vm.readUint16(f)
			if !value.Truthy(f.pop()) {
				f.ip = int(target)
			}
		case bytecode.OpJumpIfTrue:
			target := vm.readUint16(f)
			if value.Truthy(f.pop()) {
				f.ip = int(target)
			}

		case bytecode.OpBuildArray:
			n := int(vm.readByte(f))
			elems := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = f.pop()
			}
			f.push(value.NewArray(elems))
		case bytecode.OpBuildMap:
			n := int(vm.readByte(f))
			pairs := make([][2]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				v := f.pop()
				k := f.pop()
				pairs[i] = [2]value.Value{k, v}
			}
			m := value.NewMap()
			for _, p := range pairs {
				m.Set(value.ToString(p[0]), p[1])
			}
			f.push(m)

		case bytecode.OpIndex:
			idx, obj := f.pop(), f.pop()
			v, err := value.IndexGet(obj, idx)
			if err != nil {
				vm.runtimeErr(line, col, "%s", err)
			}
			f.push(v)
		case bytecode.OpStoreIndex:
			v, idx, obj := f.pop(), f.pop(), f.pop()
			if err := value.IndexSet(obj, idx, v); err != nil {
				vm.runtimeErr(line, col, "%s", err)
			}
			f.push(v)
		case bytecode.OpGetMember:
			name := chunk.Names[vm.readByte(f)]
			obj := f.pop()
			v, err := builtins.GetMember(obj, name)
			if err != nil {
				vm.runtimeErr(line, col, "%s", err)
			}
			f.push(v)
		case bytecode.OpStoreMember:
			name := chunk.Names[vm.readByte(f)]
			v, obj := f.pop(), f.pop()
			if err := builtins.SetMember(obj, name, v); err != nil {
				vm.runtimeErr(line, col, "%s", err)
			}
			f.push(v)

		case bytecode.OpGetIter:
			v := f.pop()
			it := newIterator(v)
			if it == nil {
				vm.runtimeErr(line, col, "cannot iterate over a %s", value.TypeName(v))
			}
			f.push(it)
		case bytecode.OpForIter:
			target := vm.readUint16(f)
			twoVar := vm.readByte(f) != 0
			it, _ := f.peek(0).(*iterator)
			if it == nil || !it.advance(f, twoVar) {
				f.ip = int(target)
			}

		case bytecode.OpMakeFunction:
			vm.readByte(f) // param count: carried for disassembly only, arity comes from tmpl.Params
			tmpl := f.pop().(*value.Function)
			f.push(&value.Function{Name: tmpl.Name, Params: tmpl.Params, Chunk: tmpl.Chunk, Captured: f.scope})
		case bytecode.OpCall:
			n := int(vm.readByte(f))
			args := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = f.pop()
			}
			callee := f.pop()
			f.push(vm.call(callee, args, line, col))

		case bytecode.OpReturn:
			return f.pop(), false

		case bytecode.OpHalt:
			if len(f.stack) == 0 {
				return value.Null, true
			}
			return f.peek(0), true

		default:
			vm.runtimeErr(line, col, "unknown opcode %v", op)
		}
	}
}

func (vm *VM) readByte(f *frame) byte {
	b := f.chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16(f *frame) uint16 {
	v := f.chunk.ReadUint16(f.ip)
	f.ip += 2
	return v
}

func (f *frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() value.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *frame) peek(fromTop int) value.Value {
	return f.stack[len(f.stack)-1-fromTop]
}

// call dispatches CALL n and VM.Call alike: native/bound-method calls run
// directly, user functions recurse into exec under a fresh child scope
// parented by the function's captured scope.
func (vm *VM) call(callee value.Value, args []value.Value, line, col int) value.Value {
	if vm.Debug != nil {
		vm.Debug.OnCall(callableName(callee), line, col)
	}
	switch fn := callee.(type) {
	case *value.Function:
		vm.callDepth++
		if vm.callDepth > maxCallDepth {
			vm.callDepth--
			vm.runtimeErr(line, col, "call stack overflow")
		}
		chunk, ok := fn.Chunk.(*bytecode.Chunk)
		if !ok {
			vm.callDepth--
			vm.runtimeErr(line, col, "function %q has no compiled body", fn.Name)
		}
		child := value.NewScope(fn.Captured)
		for i, p := range fn.Params {
			if i < len(args) {
				child.Define(p, args[i])
			} else {
				child.Define(p, value.Null)
			}
		}
		v, _ := vm.exec(chunk, child)
		vm.callDepth--
		if vm.Debug != nil {
			vm.Debug.OnReturn(callableName(callee), line, col)
		}
		return v
	default:
		v, ok, err := builtins.Invoke(vm, callee, args)
		if err != nil {
			if msg, isAssert := assertMessage(err); isAssert {
				panic(gerrors.New(gerrors.AssertionError, line, col, "%s", msg))
			}
			vm.runtimeErr(line, col, "%s", err)
		}
		if !ok {
			vm.runtimeErr(line, col, "value is not callable")
		}
		if vm.Debug != nil {
			vm.Debug.OnReturn(callableName(callee), line, col)
		}
		return v
	}
}

func callableName(v value.Value) string {
	switch fn := v.(type) {
	case *value.Function:
		if fn.Name != "" {
			return fn.Name
		}
		return "<anonymous>"
	case *value.NativeFunction:
		return fn.Name
	case *value.BoundMethod:
		return fn.Method.Name
	default:
		return value.TypeName(v)
	}
}

func (vm *VM) runtimeErr(line, col int, format string, args ...interface{}) {
	panic(gerrors.New(gerrors.RuntimeError, line, col, format, args...))
}

// assertMessage recognizes the builtins package's sentinel assert failure,
// mirroring the tree-walk evaluator's handling.
func assertMessage(err error) (string, bool) {
	return builtins.IsAssertionFailure(err)
}
