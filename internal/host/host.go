// Package host builds the per-interpreter set of host-provided builtins:
// print/debug, 2-D and 3-D rendering, input-bag access, and
// timing/animation. Each Host owns its own output buffer, renderer state
// and input bag, matching the single-threaded, non-shared resource model
// of the interpreter itself.
package host

import (
	"fmt"
	"io"
	"time"

	"gridlang/internal/builtins"
	"gridlang/internal/hostbridge"
	"gridlang/internal/hostio"
	"gridlang/internal/value"
)

// Options configures a Host at construction.
type Options struct {
	// Stdout receives print() output. Defaults to io.Discard if nil.
	Stdout io.Writer
	// Bridge, if set, receives every rendering call as a frame. A Host
	// with no Bridge still runs rendering builtins, updating its canvas
	// and voxel state and returning their usual values; only the frame
	// emission is skipped.
	Bridge *hostbridge.Bridge
	// Input backs input_string/input_lines/input_grid.
	Input *hostio.InputBag
	// Seed reseeds random()'s generator; zero leaves it at its default
	// fixed seed, so Seed is only needed to pick a *different*
	// deterministic sequence, not to get one at all.
	Seed int64
	// DefaultGifPath is where save_animation_gif() writes when the script
	// calls it with no path argument. Empty defaults to "animation.gif".
	DefaultGifPath string
}

// Host is the mutable, per-interpreter state behind the host-provided
// builtins. It is never shared between interpreter instances.
type Host struct {
	stdout io.Writer
	bridge *hostbridge.Bridge
	input  *hostio.InputBag

	debug          bool
	start          time.Time
	defaultGifPath string

	voxels map[[3]int]value.Value

	canvasRows, canvasCols int
	cellSizePx             int
	canvasCell             map[[2]int]string

	recording    bool
	recordFrames []value.Value
	animRunning  bool
}

// New constructs a Host ready to Install into a root scope.
func New(opts Options) *Host {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	if opts.Seed != 0 {
		builtins.SeedRandom(opts.Seed)
	}
	input := opts.Input
	if input == nil {
		input = hostio.Empty()
	}
	return &Host{
		stdout:         stdout,
		bridge:         opts.Bridge,
		input:          input,
		start:          time.Now(),
		defaultGifPath: opts.DefaultGifPath,
		voxels:         make(map[[3]int]value.Value),
		canvasCell:     make(map[[2]int]string),
		cellSizePx:     20,
	}
}

// SetDebug toggles the debug()/set_debug() output gate.
func (h *Host) SetDebug(on bool) { h.debug = on }

func (h *Host) emit(op string, args ...interface{}) {
	if h.bridge != nil {
		h.bridge.Emit(op, args...)
	}
}

func native(name string, fn value.NativeFunc) *value.NativeFunction {
	return &value.NativeFunction{Name: name, Fn: fn}
}

// Install registers every host builtin into scope, plus wires
// builtins.DrawHook so grid-object .draw() reaches this Host's renderer.
func (h *Host) Install(scope *value.Scope) {
	builtins.DrawHook = h.drawGrid

	reg := func(name string, fn value.NativeFunc) {
		scope.Define(name, native(name, fn))
	}

	reg("print", h.biPrint)
	reg("debug", h.biDebug)
	reg("set_debug", h.biSetDebug)

	reg("init_2d", h.biInit2D)
	reg("set_cell", h.biSetCell)
	reg("clear_canvas", h.biClearCanvas)
	reg("set_pixel", h.biSetPixel)
	reg("draw_line", h.biDrawLine)
	reg("draw_circle", h.biDrawCircle)
	reg("draw_rect", h.biDrawRect)
	reg("rgb", h.biRGB)
	reg("hsl", h.biHSL)

	reg("init_3d", h.biInit3D)
	reg("set_voxel", h.biSetVoxel)
	reg("remove_voxel", h.biRemoveVoxel)
	reg("get_voxel", h.biGetVoxel)
	reg("clear_3d", h.biClear3D)
	reg("begin_3d_batch", h.biBegin3DBatch)
	reg("end_3d_batch", h.biEnd3DBatch)

	reg("input_string", h.biInputString)
	reg("input_lines", h.biInputLines)
	reg("input_grid", h.biInputGrid)

	reg("time", h.biTime)
	reg("clock", h.biClock)
	reg("benchmark", h.biBenchmark)
	reg("animate", h.biAnimate)
	reg("stop_animation", h.biStopAnimation)
	reg("record_animation", h.biRecordAnimation)
	reg("save_animation_gif", h.biSaveAnimationGif)
	reg("stop_recording", h.biStopRecording)
	reg("clear_recording", h.biClearRecording)
	reg("get_animation_frames", h.biGetAnimationFrames)
}

func (h *Host) biPrint(call value.Caller, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToString(a)
	}
	line := ""
	for i, p := range parts {
		if i > 0 {
			line += " "
		}
		line += p
	}
	fmt.Fprintln(h.stdout, line)
	return value.Null, nil
}

func (h *Host) biDebug(call value.Caller, args []value.Value) (value.Value, error) {
	if !h.debug {
		return value.Null, nil
	}
	return h.biPrint(call, args)
}

func (h *Host) biSetDebug(call value.Caller, args []value.Value) (value.Value, error) {
	h.debug = value.Truthy(arg0(args))
	return value.Null, nil
}

func arg0(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Null
	}
	return args[0]
}

func argAt(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null
	}
	return args[i]
}
