package main

import (
	"fmt"
	"io"
)

// traceHook implements debughook.Hook by printing one line per event to
// w, the -debug step trace.
type traceHook struct {
	w io.Writer
}

func newTraceHook(w io.Writer) *traceHook {
	return &traceHook{w: w}
}

func (t *traceHook) OnInstruction(label string, line, col int) {
	fmt.Fprintf(t.w, "%d:%d  %s\n", line, col, label)
}

func (t *traceHook) OnCall(name string, line, col int) {
	fmt.Fprintf(t.w, "%d:%d  call %s\n", line, col, name)
}

func (t *traceHook) OnReturn(name string, line, col int) {
	fmt.Fprintf(t.w, "%d:%d  return %s\n", line, col, name)
}

func (t *traceHook) OnError(err error) {
	fmt.Fprintf(t.w, "error: %s\n", err)
}
