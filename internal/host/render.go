package host

import (
	"fmt"
	"math"

	"gridlang/internal/value"
)

// drawGrid is installed as builtins.DrawHook: grid.draw() emits a single
// draw_grid frame holding every row, each cell converted by cellJSON to a
// number, bool, null or string so the bridge payload stays plain JSON.
func (h *Host) drawGrid(g *value.Grid) error {
	rows := make([]interface{}, g.Height)
	for r := 0; r < g.Height; r++ {
		cells := make([]interface{}, g.Width)
		for c := 0; c < g.Width; c++ {
			cells[c] = cellJSON(g.Get(r, c))
		}
		rows[r] = cells
	}
	h.emit("draw_grid", rows, g.CellSize)
	return nil
}

func cellJSON(v value.Value) interface{} {
	switch value.TypeName(v) {
	case "null", "undefined":
		return nil
	case "number":
		return value.ToNumber(v)
	case "bool":
		return value.Truthy(v)
	default:
		return value.ToString(v)
	}
}

func (h *Host) biInit2D(call value.Caller, args []value.Value) (value.Value, error) {
	size := argAt(args, 0)
	cell := 20.0
	if c, ok := argAt(args, 1).(float64); ok {
		cell = c
	}
	var rows, cols float64
	if arr, ok := size.(*value.Array); ok && len(arr.Elements) == 2 {
		rows = value.ToNumber(arr.Elements[0])
		cols = value.ToNumber(arr.Elements[1])
	} else {
		rows = value.ToNumber(size)
		cols = rows
	}
	h.canvasRows, h.canvasCols = int(rows), int(cols)
	h.cellSizePx = int(cell)
	h.canvasCell = make(map[[2]int]string)
	h.emit("init_2d", rows, cols, cell)
	return value.Null, nil
}

func (h *Host) biSetCell(call value.Caller, args []value.Value) (value.Value, error) {
	r, c := int(value.ToNumber(argAt(args, 0))), int(value.ToNumber(argAt(args, 1)))
	color := value.ToString(argAt(args, 2))
	h.canvasCell[[2]int{r, c}] = color
	h.emit("set_cell", r, c, color)
	return value.Null, nil
}

func (h *Host) biClearCanvas(call value.Caller, args []value.Value) (value.Value, error) {
	h.canvasCell = make(map[[2]int]string)
	h.emit("clear_canvas")
	return value.Null, nil
}

// canvasSnapshot captures the current 2-D cell colors as a row-major
// array of arrays of hex color strings (blank cells are "").
func (h *Host) canvasSnapshot() *value.Array {
	rows := make([]value.Value, h.canvasRows)
	for r := 0; r < h.canvasRows; r++ {
		cells := make([]value.Value, h.canvasCols)
		for c := 0; c < h.canvasCols; c++ {
			if color, ok := h.canvasCell[[2]int{r, c}]; ok {
				cells[c] = color
			} else {
				cells[c] = ""
			}
		}
		rows[r] = value.NewArray(cells)
	}
	return value.NewArray(rows)
}

func (h *Host) biSetPixel(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("set_pixel", value.ToNumber(argAt(args, 0)), value.ToNumber(argAt(args, 1)), value.ToString(argAt(args, 2)))
	return value.Null, nil
}

func (h *Host) biDrawLine(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("draw_line",
		value.ToNumber(argAt(args, 0)), value.ToNumber(argAt(args, 1)),
		value.ToNumber(argAt(args, 2)), value.ToNumber(argAt(args, 3)),
		value.ToString(argAt(args, 4)))
	return value.Null, nil
}

func (h *Host) biDrawCircle(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("draw_circle",
		value.ToNumber(argAt(args, 0)), value.ToNumber(argAt(args, 1)),
		value.ToNumber(argAt(args, 2)), value.ToString(argAt(args, 3)))
	return value.Null, nil
}

func (h *Host) biDrawRect(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("draw_rect",
		value.ToNumber(argAt(args, 0)), value.ToNumber(argAt(args, 1)),
		value.ToNumber(argAt(args, 2)), value.ToNumber(argAt(args, 3)),
		value.ToString(argAt(args, 4)))
	return value.Null, nil
}

func (h *Host) biRGB(call value.Caller, args []value.Value) (value.Value, error) {
	r := clampByte(value.ToNumber(argAt(args, 0)))
	g := clampByte(value.ToNumber(argAt(args, 1)))
	b := clampByte(value.ToNumber(argAt(args, 2)))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), nil
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}

// biHSL converts hue (degrees), saturation and lightness (0-1) to a hex
// RGB string, the same representation rgb() returns.
func (h *Host) biHSL(call value.Caller, args []value.Value) (value.Value, error) {
	hue := math.Mod(value.ToNumber(argAt(args, 0)), 360)
	if hue < 0 {
		hue += 360
	}
	sat := value.ToNumber(argAt(args, 1))
	light := value.ToNumber(argAt(args, 2))

	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := light - c/2

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return fmt.Sprintf("#%02x%02x%02x",
		clampByte((r+m)*255), clampByte((g+m)*255), clampByte((b+m)*255)), nil
}

func (h *Host) biInit3D(call value.Caller, args []value.Value) (value.Value, error) {
	h.voxels = make(map[[3]int]value.Value)
	h.emit("init_3d", value.ToNumber(argAt(args, 0)), value.ToNumber(argAt(args, 1)), value.ToNumber(argAt(args, 2)))
	return value.Null, nil
}

func voxelKey(args []value.Value) [3]int {
	return [3]int{int(value.ToNumber(argAt(args, 0))), int(value.ToNumber(argAt(args, 1))), int(value.ToNumber(argAt(args, 2)))}
}

func (h *Host) biSetVoxel(call value.Caller, args []value.Value) (value.Value, error) {
	k := voxelKey(args)
	color := argAt(args, 3)
	h.voxels[k] = color
	h.emit("set_voxel", k[0], k[1], k[2], value.ToString(color))
	return value.Null, nil
}

func (h *Host) biRemoveVoxel(call value.Caller, args []value.Value) (value.Value, error) {
	k := voxelKey(args)
	delete(h.voxels, k)
	h.emit("remove_voxel", k[0], k[1], k[2])
	return value.Null, nil
}

func (h *Host) biGetVoxel(call value.Caller, args []value.Value) (value.Value, error) {
	k := voxelKey(args)
	if v, ok := h.voxels[k]; ok {
		return v, nil
	}
	return value.Undefined, nil
}

func (h *Host) biClear3D(call value.Caller, args []value.Value) (value.Value, error) {
	h.voxels = make(map[[3]int]value.Value)
	h.emit("clear_3d")
	return value.Null, nil
}

func (h *Host) biBegin3DBatch(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("begin_3d_batch")
	return value.Null, nil
}

func (h *Host) biEnd3DBatch(call value.Caller, args []value.Value) (value.Value, error) {
	h.emit("end_3d_batch")
	return value.Null, nil
}
