// Package interp assembles the lexer, parser, and one of the two
// execution backends (bytecode VM or tree-walk evaluator) into a single
// Interpreter, installing the pure and host-provided built-in tables into
// a fresh root scope at construction.
package interp

import (
	"io"

	"gridlang/internal/builtins"
	"gridlang/internal/bytecode"
	"gridlang/internal/compiler"
	"gridlang/internal/debughook"
	"gridlang/internal/evaluator"
	"gridlang/internal/host"
	"gridlang/internal/hostbridge"
	"gridlang/internal/hostio"
	"gridlang/internal/lexer"
	"gridlang/internal/parser"
	"gridlang/internal/value"
	"gridlang/internal/vm"
)

// Backend selects which execution strategy Run uses. Both reach the same
// built-in table and the same observable output for any well-defined
// program.
type Backend int

const (
	BackendVM Backend = iota
	BackendTree
)

// Interpreter owns one root scope, one Host, and the backend selected at
// construction. Nothing here is shared across Interpreter instances.
type Interpreter struct {
	backend Backend
	globals *value.Scope
	host    *host.Host
	debug   debughook.Hook
}

// Option configures an Interpreter at construction.
type Option func(*config)

type config struct {
	backend Backend
	debug   debughook.Hook
	hostOpts host.Options
}

// WithBackend selects the VM (default) or the tree-walk evaluator.
func WithBackend(b Backend) Option {
	return func(c *config) { c.backend = b }
}

// WithDebugHook installs a hook invoked on every instruction/call/return/
// error, used by the CLI's -debug flag.
func WithDebugHook(h debughook.Hook) Option {
	return func(c *config) { c.debug = h }
}

// WithStdout sets where print()/debug() write.
func WithStdout(w io.Writer) Option {
	return func(c *config) { c.hostOpts.Stdout = w }
}

// WithBridge wires a hostbridge.Bridge so rendering builtins stream
// frames to any connected client.
func WithBridge(b *hostbridge.Bridge) Option {
	return func(c *config) { c.hostOpts.Bridge = b }
}

// WithInput supplies the named input-text bag backing
// input_string/input_lines/input_grid.
func WithInput(bag *hostio.InputBag) Option {
	return func(c *config) { c.hostOpts.Input = bag }
}

// WithSeed reseeds random() for deterministic test runs.
func WithSeed(seed int64) Option {
	return func(c *config) { c.hostOpts.Seed = seed }
}

// WithGifPath sets where save_animation_gif() writes when the script
// calls it with no path argument.
func WithGifPath(path string) Option {
	return func(c *config) { c.hostOpts.DefaultGifPath = path }
}

// New constructs an Interpreter with a fresh root scope, pure and host
// builtins installed, ready to Run source text.
func New(opts ...Option) *Interpreter {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	globals := value.NewScope(nil)
	builtins.InstallPure(globals)

	h := host.New(c.hostOpts)
	h.Install(globals)

	return &Interpreter{
		backend: c.backend,
		globals: globals,
		host:    h,
		debug:   c.debug,
	}
}

// SetDebug toggles runtime debug()/set_debug() output independent of the
// -debug step-trace hook.
func (i *Interpreter) SetDebug(on bool) { i.host.SetDebug(on) }

// Run lexes, parses, and executes source under the selected backend,
// returning the program's final value.
func (i *Interpreter) Run(source string) (value.Value, error) {
	tokens, err := lexer.New(source).ScanTokens()
	if err != nil {
		return nil, err
	}
	prog, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}

	switch i.backend {
	case BackendTree:
		ev := evaluator.New(i.globals)
		ev.Debug = i.debug
		return ev.Eval(prog)
	default:
		chunk, err := compiler.Compile(prog)
		if err != nil {
			return nil, err
		}
		return i.runChunk(chunk)
	}
}

func (i *Interpreter) runChunk(chunk *bytecode.Chunk) (value.Value, error) {
	machine := vm.New(i.globals)
	machine.Debug = i.debug
	return machine.Run(chunk)
}
