package vm

import "gridlang/internal/value"

// iterator is the VM-internal cursor created by GET_ITER and advanced by
// FOR_ITER. It is never visible to GridLang code — it only ever sits on
// the operand stack between GET_ITER and the trailing POP that discards
// it once the loop ends.
type iterator struct {
	kind  string // "array", "string", "map", "grid"
	arr   *value.Array
	str   string
	keys  []string
	m     *value.Map
	g     *value.Grid
	index int
}

func newIterator(v value.Value) *iterator {
	switch t := v.(type) {
	case *value.Array:
		return &iterator{kind: "array", arr: t}
	case string:
		return &iterator{kind: "string", str: t}
	case *value.Map:
		return &iterator{kind: "map", m: t, keys: t.Keys()}
	case *value.Grid:
		return &iterator{kind: "grid", g: t}
	default:
		return nil
	}
}

// advance pushes the next element(s) onto f per FOR_ITER contract
// and returns true, or returns false once exhausted (leaving the stack
// untouched so the caller can jump past the loop). twoVar selects
// (index, value) for array/string or (key, value) for map; single-var
// yields the value (array/string) or the key (map).
func (it *iterator) advance(f *frame, twoVar bool) bool {
	switch it.kind {
	case "array":
		if it.index >= len(it.arr.Elements) {
			return false
		}
		i := it.index
		v := it.arr.Elements[i]
		it.index++
		if twoVar {
			f.push(float64(i))
		}
		f.push(v)
		return true
	case "string":
		if it.index >= len(it.str) {
			return false
		}
		i := it.index
		v := string(it.str[i])
		it.index++
		if twoVar {
			f.push(float64(i))
		}
		f.push(v)
		return true
	case "map":
		if it.index >= len(it.keys) {
			return false
		}
		k := it.keys[it.index]
		it.index++
		if twoVar {
			val, _ := it.m.Get(k)
			f.push(k)
			f.push(val)
		} else {
			f.push(k)
		}
		return true
	case "grid":
		total := it.g.Width * it.g.Height
		if it.index >= total {
			return false
		}
		r, c := it.index/it.g.Width, it.index%it.g.Width
		v := it.g.Get(r, c)
		it.index++
		if twoVar {
			f.push(value.NewArray([]value.Value{float64(r), float64(c)}))
		}
		f.push(v)
		return true
	default:
		return false
	}
}
