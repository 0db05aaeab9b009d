package host

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"gridlang/internal/value"
)

// biTime returns wall-clock seconds since the Unix epoch, matching other
// scripting-language `time()` builtins.
func (h *Host) biTime(call value.Caller, args []value.Value) (value.Value, error) {
	return float64(time.Now().UnixNano()) / 1e9, nil
}

// biClock returns seconds elapsed since this Host was constructed, a
// monotonic clock suitable for measuring script-internal durations.
func (h *Host) biClock(call value.Caller, args []value.Value) (value.Value, error) {
	return time.Since(h.start).Seconds(), nil
}

// biBenchmark calls fn n times (default 1) and returns a map describing
// the timing, with a human-readable summary via go-humanize.
func (h *Host) biBenchmark(call value.Caller, args []value.Value) (value.Value, error) {
	fn := argAt(args, 0)
	n := 1
	if nv, ok := argAt(args, 1).(float64); ok && nv > 0 {
		n = int(nv)
	}
	if call == nil {
		return value.Null, nil
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		if _, err := call.Call(fn, nil); err != nil {
			return nil, err
		}
	}
	total := time.Since(start)

	out := value.NewMap()
	out.Set("iterations", float64(n))
	out.Set("total_ms", float64(total.Microseconds())/1000)
	if n > 0 {
		out.Set("avg_ms", float64(total.Microseconds())/1000/float64(n))
	}
	out.Set("human", humanize.RelTime(start, start.Add(total), "", ""))
	return out, nil
}

// animOpts reads the optional second argument to animate(): {frames=300}
// bounds the number of ticks since there is no real display loop driving
// this backend.
type animOpts struct {
	maxFrames int
}

func parseAnimOpts(v value.Value) animOpts {
	opts := animOpts{maxFrames: 300}
	m, ok := v.(*value.Map)
	if !ok {
		return opts
	}
	if fv, ok := m.Get("frames"); ok {
		if n := value.ToNumber(fv); n > 0 {
			opts.maxFrames = int(n)
		}
	}
	return opts
}

// biAnimate runs fn(frameIndex) repeatedly, the host's cooperative
// scheduler stand-in: it ticks synchronously up to opts.frames times,
// stopping early when fn returns a falsy value or stop_animation() is
// called. Recording, when active, captures a canvas snapshot per tick.
func (h *Host) biAnimate(call value.Caller, args []value.Value) (value.Value, error) {
	fn := argAt(args, 0)
	opts := parseAnimOpts(argAt(args, 1))
	if call == nil {
		return value.Null, nil
	}
	h.animRunning = true
	frame := 0
	for h.animRunning && frame < opts.maxFrames {
		res, err := call.Call(fn, []value.Value{float64(frame)})
		if err != nil {
			h.animRunning = false
			return nil, err
		}
		if h.recording {
			h.recordFrames = append(h.recordFrames, h.canvasSnapshot())
		}
		if !value.Truthy(res) {
			break
		}
		frame++
	}
	h.animRunning = false
	return float64(frame), nil
}

func (h *Host) biStopAnimation(call value.Caller, args []value.Value) (value.Value, error) {
	h.animRunning = false
	return value.Null, nil
}

func (h *Host) biRecordAnimation(call value.Caller, args []value.Value) (value.Value, error) {
	h.recording = true
	return value.Null, nil
}

func (h *Host) biStopRecording(call value.Caller, args []value.Value) (value.Value, error) {
	h.recording = false
	return value.Null, nil
}

func (h *Host) biClearRecording(call value.Caller, args []value.Value) (value.Value, error) {
	h.recordFrames = nil
	return value.Null, nil
}

func (h *Host) biGetAnimationFrames(call value.Caller, args []value.Value) (value.Value, error) {
	frames := make([]value.Value, len(h.recordFrames))
	copy(frames, h.recordFrames)
	return value.NewArray(frames), nil
}

// biSaveAnimationGif rasterizes the recorded canvas snapshots into a
// looping GIF at the given path. Cells with no assigned color render as
// white. Returns the number of frames written.
func (h *Host) biSaveAnimationGif(call value.Caller, args []value.Value) (value.Value, error) {
	path := h.defaultGifPath
	if path == "" {
		path = "animation.gif"
	}
	if p := argAt(args, 0); p != value.Null && p != value.Undefined {
		path = value.ToString(p)
	}
	if len(h.recordFrames) == 0 {
		return 0.0, nil
	}

	cell := h.cellSizePx
	if cell <= 0 {
		cell = 20
	}
	width, height := h.canvasCols*cell, h.canvasRows*cell
	if width <= 0 || height <= 0 {
		return 0.0, nil
	}

	g := &gif.GIF{}
	for _, fv := range h.recordFrames {
		rowsArr, ok := fv.(*value.Array)
		if !ok {
			continue
		}
		img := image.NewPaletted(image.Rect(0, 0, width, height), defaultPalette)
		for r, rowV := range rowsArr.Elements {
			row, ok := rowV.(*value.Array)
			if !ok {
				continue
			}
			for c, cv := range row.Elements {
				col := parseHexColor(value.ToString(cv))
				fillCell(img, r, c, cell, col)
			}
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating animation file %s", path)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, g); err != nil {
		return nil, errors.Wrap(err, "encoding animation gif")
	}
	return float64(len(g.Image)), nil
}

var defaultPalette = color.Palette{
	color.White,
	color.Black,
	color.RGBA{0xff, 0, 0, 0xff},
	color.RGBA{0, 0xff, 0, 0xff},
	color.RGBA{0, 0, 0xff, 0xff},
	color.RGBA{0xff, 0xff, 0, 0xff},
	color.RGBA{0, 0xff, 0xff, 0xff},
	color.RGBA{0xff, 0, 0xff, 0xff},
}

func fillCell(img *image.Paletted, r, c, cell int, col color.Color) {
	x0, y0 := c*cell, r*cell
	for y := y0; y < y0+cell; y++ {
		for x := x0; x < x0+cell; x++ {
			img.Set(x, y, col)
		}
	}
}

func parseHexColor(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return color.White
	}
	var r, g, b int
	if _, err := fhexScan(s[1:3], &r); err != nil {
		return color.White
	}
	if _, err := fhexScan(s[3:5], &g); err != nil {
		return color.White
	}
	if _, err := fhexScan(s[5:7], &b); err != nil {
		return color.White
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 0xff}
}

func fhexScan(s string, out *int) (int, error) {
	v := 0
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0, errors.Errorf("invalid hex digit %q", c)
		}
	}
	*out = v
	return v, nil
}
