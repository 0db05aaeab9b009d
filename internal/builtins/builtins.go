// Package builtins implements the built-in function table installed into
// the root scope at interpreter construction: one Go function per
// builtin, registered into a scope by name at startup, shared verbatim
// by both execution backends.
//
// Pure, host-independent builtins (math, string, array, set, type
// conversions) live in a package-level table so member access can resolve
// `"abc".upper()`/`arr.sort()` against the very same functions that back
// the free-function form `upper("abc")`/`sort(arr)`. Builtins that need
// host collaboration (print, rendering, input, timing, animation) are
// built per-interpreter by Host.Install, since each interpreter instance
// owns its own output buffer, renderer state and input bag.
package builtins

import (
	"gridlang/internal/value"
)

// Caller is an alias of value.Caller for readability within this package;
// it lets a builtin invoke a GridLang function value (a callback argument
// to sort/visit/find/count/benchmark/animate) without builtins depending
// on either execution backend. Both internal/vm.VM and
// internal/evaluator.Evaluator implement it.
type Caller = value.Caller

func native(name string, fn value.NativeFunc) *value.NativeFunction {
	return &value.NativeFunction{Name: name, Fn: fn}
}

// pureTable holds every builtin that has no host dependency: it backs both
// the global name table and the method-dispatch lookup used by
// GET_MEMBER on strings/arrays. Grid and regex methods come from
// gridMethods and regexMethods instead.
var pureTable = map[string]*value.NativeFunction{}

func register(name string, fn value.NativeFunc) {
	pureTable[name] = native(name, fn)
}

// Lookup resolves a pure builtin by name, used by GET_MEMBER's
// method-vs-function unification.
func Lookup(name string) (*value.NativeFunction, bool) {
	f, ok := pureTable[name]
	return f, ok
}

// InstallPure registers every host-independent builtin into scope. Host.Install
// (host.go) calls this and then layers the host-bound builtins on top.
func InstallPure(scope *value.Scope) {
	for name, fn := range pureTable {
		scope.Define(name, fn)
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null
	}
	return args[i]
}

func argOr(args []value.Value, i int, def value.Value) value.Value {
	if i < 0 || i >= len(args) || value.IsUndefined(args[i]) || args[i] == nil {
		return def
	}
	return args[i]
}

func num(v value.Value) float64 { return value.ToNumber(v) }
func str(v value.Value) string  { return value.ToString(v) }
