// Package value implements the GridLang runtime value universe: the
// tagged dynamic values shared by the bytecode VM and the tree-walk
// evaluator, plus the chained-scope abstraction both backends use for
// variable binding.
package value

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gridlang/internal/ast"
)

// Value is the dynamic type of every GridLang runtime datum. Concrete Go
// types double as the tag: bool, float64, string, and the pointer types
// below. nullType and undefinedType are distinct singleton sentinels.
type Value interface{}

type nullType struct{}
type undefinedType struct{}

func (nullType) String() string      { return "null" }
func (undefinedType) String() string { return "undefined" }

// Null and Undefined are the two falsy sentinel values; a missing map key
// yields Undefined, an explicit literal yields Null, and the two never
// compare equal.
var (
	Null      Value = nullType{}
	Undefined Value = undefinedType{}
)

func IsNull(v Value) bool      { _, ok := v.(nullType); return ok }
func IsUndefined(v Value) bool { _, ok := v.(undefinedType); return ok }

// Array is the ordered, mutable, reference-semantic array value.
type Array struct {
	Elements []Value
}

func NewArray(elems []Value) *Array {
	return &Array{Elements: elems}
}

// Map is the ordered string-keyed, mutable, reference-semantic map value.
// Insertion order is preserved for iteration regardless of subsequent
// overwrites.
type Map struct {
	keys []string
	vals map[string]Value
}

func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *Map) Set(key string, v Value) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *Map) Delete(key string) {
	if _, exists := m.vals[key]; !exists {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int { return len(m.keys) }

// Caller lets a native function invoke a GridLang function value (e.g. the
// comparator passed to `sort`, or the callback passed to `Grid.visit`/
// `animate`) without depending on either execution backend. Both the
// bytecode VM and the tree-walk evaluator implement it.
type Caller interface {
	Call(fn Value, args []Value) (Value, error)
}

// NativeFunc is the Go function shape behind every host-provided built-in.
// Callers pass exactly the arguments given at the call site, without
// padding; builtins read a missing position as Null (see the builtins
// package's arg helper). call is the active backend, used only by builtins that accept a
// GridLang function argument; most builtins ignore it.
type NativeFunc func(call Caller, args []Value) (Value, error)

type NativeFunction struct {
	Name string
	Fn   NativeFunc
}

// BoundMethod unifies `"abc".upper()` with `upper("abc")` (
// GET_MEMBER): it is a native function with `Self` already bound as the
// implicit first argument.
type BoundMethod struct {
	Self   Value
	Method *NativeFunction
}

// Function is a user-defined GridLang function value. Body serves the
// tree-walk evaluator; Chunk (set by the compiler, type *bytecode.Chunk)
// serves the VM. Keeping Chunk as interface{} here avoids an import cycle
// between value and bytecode, since bytecode.Chunk.Constants holds Values.
type Function struct {
	Name     string
	Params   []string
	Body     *ast.Block
	Chunk    interface{}
	Captured *Scope
}

// Regex is a compiled pattern value exposing test/match/groups/find_all/
// replace/split (see internal/builtins). GridLang named groups are written
// `(?<name>...)`; Go's regexp wants `(?P<name>...)`, translated once here.
type Regex struct {
	Pattern  string
	Compiled *regexp.Regexp
	Named    bool
}

var namedGroupPat = regexp.MustCompile(`\(\?<([A-Za-z_][A-Za-z0-9_]*)>`)

func CompileRegex(pattern string) (*Regex, error) {
	named := namedGroupPat.MatchString(pattern)
	goPattern := namedGroupPat.ReplaceAllString(pattern, "(?P<$1>")
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, Compiled: re, Named: named}, nil
}

// Grid is the 2-D array wrapper described in /: fixed attribute set
// plus get/set/inBounds/neighbors/visit/find/count/draw, implemented in
// internal/builtins/grid.go.
type Grid struct {
	Width    int
	Height   int
	CellSize int
	Diags    bool
	ColorMap Value
	Rows     []*Array // Rows[r].Elements[c]
}

func NewGrid(width, height int) *Grid {
	rows := make([]*Array, height)
	for r := range rows {
		elems := make([]Value, width)
		for c := range elems {
			elems[c] = Undefined
		}
		rows[r] = &Array{Elements: elems}
	}
	return &Grid{Width: width, Height: height, CellSize: 20, ColorMap: Undefined, Rows: rows}
}

func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.Height && c >= 0 && c < g.Width
}

func (g *Grid) Get(r, c int) Value {
	if !g.InBounds(r, c) {
		return Undefined
	}
	return g.Rows[r].Elements[c]
}

func (g *Grid) Set(r, c int, v Value) {
	if !g.InBounds(r, c) {
		return
	}
	g.Rows[r].Elements[c] = v
}

// Scope is the chained name→value map shared by the VM and evaluator:
// lookup walks from innermost to outermost; Set mutates the binding in
// the nearest enclosing scope that already defines
// the name, or creates a new local binding if none does.
type Scope struct {
	vars   map[string]Value
	parent *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

func (s *Scope) Get(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define creates or overwrites a binding in this scope specifically,
// regardless of whether an outer scope already binds the name. Used for
// function parameters and for installing builtins into a scope.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Set implements the "assign where defined, else define locally" rule.
func (s *Scope) Set(name string, v Value) {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[name]; ok {
			sc.vars[name] = v
			return
		}
	}
	s.vars[name] = v
}

// ---- shared value semantics ----

// Truthy implements : null, undefined, false, 0, and "" are false;
// everything else (including empty array/map) is true.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nullType, undefinedType:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// Equals implements strict equality: no implicit cross-type coercion, and
// Null never equals Undefined.
func Equals(a, b Value) bool {
	switch av := a.(type) {
	case nullType:
		_, ok := b.(nullType)
		return ok
	case undefinedType:
		_, ok := b.(undefinedType)
		return ok
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Array:
		bv, ok := b.(*Array)
		return ok && av == bv
	case *Map:
		bv, ok := b.(*Map)
		return ok && av == bv
	case *Grid:
		bv, ok := b.(*Grid)
		return ok && av == bv
	case *Function, *NativeFunction, *BoundMethod:
		return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
	default:
		return false
	}
}

func TypeName(v Value) string {
	switch v.(type) {
	case nullType:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case *Array:
		return "array"
	case *Map:
		return "map"
	case *Function, *NativeFunction, *BoundMethod:
		return "function"
	case *Regex:
		return "regex"
	case *Grid:
		return "grid"
	default:
		return "unknown"
	}
}

// Len implements : defined for string/array/map, 0 elsewhere.
func Len(v Value) int {
	switch t := v.(type) {
	case string:
		return len(t)
	case *Array:
		return len(t.Elements)
	case *Map:
		return t.Len()
	default:
		return 0
	}
}

// ToString renders a value the way print/str/f-string interpolation do.
func ToString(v Value) string {
	switch t := v.(type) {
	case nullType:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(t)
	case string:
		return t
	case *Array:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = quoteIfString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Map:
		parts := make([]string, 0, t.Len())
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			parts = append(parts, k+": "+quoteIfString(v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Function:
		if t.Name != "" {
			return "<function " + t.Name + ">"
		}
		return "<function>"
	case *NativeFunction:
		return "<native function " + t.Name + ">"
	case *BoundMethod:
		return "<bound method " + t.Method.Name + ">"
	case *Regex:
		return "/" + t.Pattern + "/"
	case *Grid:
		return fmt.Sprintf("<grid %dx%d>", t.Width, t.Height)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteIfString(v Value) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return ToString(v)
}

func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToNumber coerces for arithmetic contexts: bool gives 1 or 0, null gives
// 0, strings are parsed, and non-numeric strings and other values yield NaN.
func ToNumber(v Value) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case nullType:
		return 0
	default:
		return math.NaN()
	}
}
