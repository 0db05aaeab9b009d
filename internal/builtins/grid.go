package builtins

import (
	"gridlang/internal/value"
)

func init() {
	register("Grid", biGridCtor)
}

// biGridCtor implements the `Grid(data)` constructor: data is either
// [rows, cols] (an empty grid of undefined cells) or a 2-D array literal
// whose rows become the grid's rows directly.
func biGridCtor(call value.Caller, a []value.Value) (value.Value, error) {
	data := arg(a, 0)
	arr, ok := data.(*value.Array)
	if !ok || len(arr.Elements) == 0 {
		return value.NewGrid(0, 0), nil
	}
	if w, ok := arr.Elements[0].(float64); ok && len(arr.Elements) == 2 {
		if _, isArr := arr.Elements[1].(*value.Array); !isArr {
			rows, cols := int(w), int(num(arr.Elements[1]))
			return value.NewGrid(cols, rows), nil
		}
	}
	g := &value.Grid{Height: len(arr.Elements), ColorMap: value.Undefined, CellSize: 20}
	rows := make([]*value.Array, len(arr.Elements))
	maxW := 0
	for i, rv := range arr.Elements {
		rowArr, ok := rv.(*value.Array)
		if !ok {
			rowArr = value.NewArray(nil)
		}
		elems := make([]value.Value, len(rowArr.Elements))
		copy(elems, rowArr.Elements)
		rows[i] = &value.Array{Elements: elems}
		if len(elems) > maxW {
			maxW = len(elems)
		}
	}
	g.Rows = rows
	g.Width = maxW
	return g, nil
}

// gridMethods backs GET_MEMBER for grid-objects (/): get, set,
// inBounds, neighbors, visit, find, count, draw. Every method expects
// the receiver grid as args[0] via the BoundMethod calling convention.
var gridMethods = map[string]*value.NativeFunction{}

func registerGridMethod(name string, fn value.NativeFunc) {
	gridMethods[name] = &value.NativeFunction{Name: "Grid." + name, Fn: fn}
}

func init() {
	registerGridMethod("get", gridGet)
	registerGridMethod("set", gridSet)
	registerGridMethod("inBounds", gridInBounds)
	registerGridMethod("neighbors", gridNeighbors)
	registerGridMethod("visit", gridVisit)
	registerGridMethod("find", gridFind)
	registerGridMethod("count", gridCount)
	registerGridMethod("draw", gridDraw)
}

func gridMember(g *value.Grid, name string) (value.Value, error) {
	switch name {
	case "width":
		return float64(g.Width), nil
	case "height":
		return float64(g.Height), nil
	case "cellSize":
		return float64(g.CellSize), nil
	case "diags":
		return g.Diags, nil
	case "colorMap":
		return g.ColorMap, nil
	}
	if fn, ok := gridMethods[name]; ok {
		return &value.BoundMethod{Self: g, Method: fn}, nil
	}
	return value.Undefined, nil
}

func asGrid(v value.Value) *value.Grid {
	g, _ := v.(*value.Grid)
	return g
}

func gridGet(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	if g == nil {
		return value.Undefined, nil
	}
	return g.Get(int(num(arg(a, 1))), int(num(arg(a, 2)))), nil
}

func gridSet(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	if g == nil {
		return value.Null, nil
	}
	g.Set(int(num(arg(a, 1))), int(num(arg(a, 2))), arg(a, 3))
	return value.Null, nil
}

func gridInBounds(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	if g == nil {
		return false, nil
	}
	return g.InBounds(int(num(arg(a, 1))), int(num(arg(a, 2)))), nil
}

var straightDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
var diagDirs = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// gridNeighbors returns [row, col] pairs for in-bounds neighbors of
// (r, c), 4-directional unless the grid's diags attribute is set.
func gridNeighbors(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	if g == nil {
		return value.NewArray(nil), nil
	}
	r, c := int(num(arg(a, 1))), int(num(arg(a, 2)))
	var out []value.Value
	dirs := straightDirs[:]
	if g.Diags {
		dirs = append(append([][2]int{}, straightDirs[:]...), diagDirs[:]...)
	}
	for _, d := range dirs {
		nr, nc := r+d[0], c+d[1]
		if g.InBounds(nr, nc) {
			out = append(out, value.NewArray([]value.Value{float64(nr), float64(nc)}))
		}
	}
	return value.NewArray(out), nil
}

// gridVisit calls fn(value, row, col) for every cell in row-major order.
func gridVisit(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	fn := arg(a, 1)
	if g == nil || call == nil {
		return value.Null, nil
	}
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			if _, err := call.Call(fn, []value.Value{g.Get(r, c), float64(r), float64(c)}); err != nil {
				return nil, err
			}
		}
	}
	return value.Null, nil
}

// gridFind returns the first [row, col] where fn(value, row, col) is
// truthy, or null if no cell matches.
func gridFind(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	fn := arg(a, 1)
	if g == nil || call == nil {
		return value.Null, nil
	}
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			res, err := call.Call(fn, []value.Value{g.Get(r, c), float64(r), float64(c)})
			if err != nil {
				return nil, err
			}
			if value.Truthy(res) {
				return value.NewArray([]value.Value{float64(r), float64(c)}), nil
			}
		}
	}
	return value.Null, nil
}

// gridCount counts cells where fn(value, row, col) is truthy.
func gridCount(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	fn := arg(a, 1)
	if g == nil || call == nil {
		return 0.0, nil
	}
	n := 0
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			res, err := call.Call(fn, []value.Value{g.Get(r, c), float64(r), float64(c)})
			if err != nil {
				return nil, err
			}
			if value.Truthy(res) {
				n++
			}
		}
	}
	return float64(n), nil
}

// DrawHook lets the host layer (host.go) install a renderer for
// `grid.draw()` without this package depending on internal/hostbridge.
var DrawHook func(g *value.Grid) error

func gridDraw(call value.Caller, a []value.Value) (value.Value, error) {
	g := asGrid(arg(a, 0))
	if g == nil || DrawHook == nil {
		return value.Null, nil
	}
	if err := DrawHook(g); err != nil {
		return nil, err
	}
	return value.Null, nil
}
