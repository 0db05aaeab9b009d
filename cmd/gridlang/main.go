// Command gridlang runs a GridLang script file, printing its output to
// stdout and exiting 0 on success or 1 on any parse/compile/runtime
// error.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"

	"gridlang/internal/hostbridge"
	"gridlang/internal/hostio"
	"gridlang/internal/interp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gridlang", flag.ContinueOnError)
	inputPath := fs.String("input", "", "path to an input-text file made available to input_string/input_lines/input_grid")
	debug := fs.Bool("debug", false, "print a step trace of every instruction/call as the script runs")
	backendFlag := fs.String("backend", "vm", "execution backend: vm or tree")
	gifPath := fs.String("gif", "", "path to write a recorded animation as a GIF")
	serveAddr := fs.String("serve", "", "address to serve a live /ws render feed on, e.g. :8080")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: gridlang [flags] <script.gl>")
		return 2
	}
	scriptPath := fs.Arg(0)

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		printErr(err)
		return 1
	}

	backend := interp.BackendVM
	if *backendFlag == "tree" {
		backend = interp.BackendTree
	}

	opts := []interp.Option{
		interp.WithBackend(backend),
		interp.WithStdout(os.Stdout),
	}

	if *debug {
		opts = append(opts, interp.WithDebugHook(newTraceHook(os.Stderr)))
	}

	var bridge *hostbridge.Bridge
	if *serveAddr != "" || *gifPath != "" {
		bridge = hostbridge.New()
		opts = append(opts, interp.WithBridge(bridge))
	}
	if *gifPath != "" {
		opts = append(opts, interp.WithGifPath(*gifPath))
	}

	if *inputPath != "" {
		bag, err := hostio.LoadFiles(context.Background(), map[string]string{"": *inputPath})
		if err != nil {
			printErr(err)
			return 1
		}
		opts = append(opts, interp.WithInput(bag))
	}

	var server *http.Server
	if *serveAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", bridge.Handler())
		server = &http.Server{Addr: *serveAddr, Handler: mux}
		go func() {
			_ = server.ListenAndServe()
		}()
	}

	it := interp.New(opts...)
	_, runErr := it.Run(string(source))
	if runErr != nil {
		printErr(runErr)
		if server == nil {
			return 1
		}
	}

	if server != nil {
		fmt.Fprintf(os.Stderr, "serving recorded frames on %s/ws (ctrl-c to exit)\n", *serveAddr)
		select {}
	}
	if runErr != nil {
		return 1
	}
	return 0
}

func printErr(err error) {
	msg := err.Error()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}
