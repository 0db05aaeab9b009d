package host

import "gridlang/internal/value"

func inputName(args []value.Value, i int) string {
	n := argAt(args, i)
	if n == value.Null || n == value.Undefined {
		return ""
	}
	return value.ToString(n)
}

func (h *Host) biInputString(call value.Caller, args []value.Value) (value.Value, error) {
	return h.input.String(inputName(args, 0)), nil
}

func (h *Host) biInputLines(call value.Caller, args []value.Value) (value.Value, error) {
	lines := h.input.Lines(inputName(args, 0))
	elems := make([]value.Value, len(lines))
	for i, l := range lines {
		elems[i] = l
	}
	return value.NewArray(elems), nil
}

func (h *Host) biInputGrid(call value.Caller, args []value.Value) (value.Value, error) {
	kind := "char"
	if k := argAt(args, 0); k != value.Null && k != value.Undefined {
		kind = value.ToString(k)
	}
	sep := ""
	if s := argAt(args, 1); s != value.Null && s != value.Undefined {
		sep = value.ToString(s)
	}
	name := inputName(args, 2)

	rows := h.input.Grid(kind, sep, name)
	elems := make([]value.Value, len(rows))
	for i, row := range rows {
		cells := make([]value.Value, len(row))
		for j, c := range row {
			cells[j] = c
		}
		elems[i] = value.NewArray(cells)
	}
	return value.NewArray(elems), nil
}
