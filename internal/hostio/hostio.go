// Package hostio loads the named input-text bag that backs the
// input_string/input_lines/input_grid built-ins. Each interpreter
// instance owns one InputBag; nothing here is shared across instances.
package hostio

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// InputBag is an immutable, name-addressable set of input texts. The
// empty name ("") is the default input, used when a builtin's name
// argument is omitted.
type InputBag struct {
	values map[string]string
}

// Empty returns a bag with no named inputs; every lookup falls through to
// the zero value.
func Empty() *InputBag {
	return &InputBag{values: map[string]string{}}
}

// LoadFiles reads each named path concurrently and returns the populated
// bag, or the first read failure wrapped with the offending name.
func LoadFiles(ctx context.Context, paths map[string]string) (*InputBag, error) {
	bag := &InputBag{values: make(map[string]string, len(paths))}
	if len(paths) == 0 {
		return bag, nil
	}
	var g errgroup.Group
	type result struct {
		name, text string
	}
	results := make([]result, 0, len(paths))
	resultsCh := make(chan result, len(paths))
	for name, path := range paths {
		name, path := name, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "loading input %q from %s", name, path)
			}
			resultsCh <- result{name: name, text: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(resultsCh)
	for r := range resultsCh {
		results = append(results, r)
	}
	for _, r := range results {
		bag.values[r.name] = r.text
	}
	return bag, nil
}

// String returns the raw text registered under name (empty string if
// absent).
func (b *InputBag) String(name string) string {
	if b == nil {
		return ""
	}
	return b.values[name]
}

// Lines splits the named input on newlines, dropping a trailing blank
// line left by a final "\n".
func (b *InputBag) Lines(name string) []string {
	text := b.String(name)
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return lines
}

// Grid splits the named input into a rectangular grid of string cells.
// kind "char" splits each line into individual runes; kind "word" (or any
// other value) splits each line on sep, defaulting to a single space.
func (b *InputBag) Grid(kind, sep, name string) [][]string {
	lines := b.Lines(name)
	rows := make([][]string, len(lines))
	for i, line := range lines {
		if kind == "char" {
			cells := make([]string, 0, len(line))
			for _, r := range line {
				cells = append(cells, string(r))
			}
			rows[i] = cells
			continue
		}
		if sep == "" {
			sep = " "
		}
		rows[i] = strings.Split(line, sep)
	}
	return rows
}
