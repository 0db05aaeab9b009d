package builtins

import (
	"sort"
	"strings"

	"gridlang/internal/value"
)

func init() {
	register("substr", biSubstr)
	register("substring", biSubstring)
	register("slice", biSlice)
	register("split", biSplit)
	register("join", biJoin)
	register("upper", func(call value.Caller, a []value.Value) (value.Value, error) { return strings.ToUpper(str(arg(a, 0))), nil })
	register("lower", func(call value.Caller, a []value.Value) (value.Value, error) { return strings.ToLower(str(arg(a, 0))), nil })
	register("trim", func(call value.Caller, a []value.Value) (value.Value, error) { return strings.TrimSpace(str(arg(a, 0))), nil })
	register("replace", func(call value.Caller, a []value.Value) (value.Value, error) {
		return strings.ReplaceAll(str(arg(a, 0)), str(arg(a, 1)), str(arg(a, 2))), nil
	})
	register("starts_with", func(call value.Caller, a []value.Value) (value.Value, error) {
		return strings.HasPrefix(str(arg(a, 0)), str(arg(a, 1))), nil
	})
	register("ends_with", func(call value.Caller, a []value.Value) (value.Value, error) {
		return strings.HasSuffix(str(arg(a, 0)), str(arg(a, 1))), nil
	})
	register("contains", biContains)
	register("index_of", biIndexOf)
	register("char_at", biCharAt)
	register("char_code", biCharCode)
	register("from_char_code", func(call value.Caller, a []value.Value) (value.Value, error) {
		return string(rune(int(num(arg(a, 0))))), nil
	})
	register("repeat", func(call value.Caller, a []value.Value) (value.Value, error) {
		n := int(num(arg(a, 1)))
		if n < 0 {
			n = 0
		}
		return strings.Repeat(str(arg(a, 0)), n), nil
	})
	register("reverse", biReverse)
	register("sort", biSort)
}

// biContains and biIndexOf double as string substring search and array
// membership search, matching the source's overloaded usage.
func biContains(call value.Caller, a []value.Value) (value.Value, error) {
	switch s := arg(a, 0).(type) {
	case string:
		return strings.Contains(s, str(arg(a, 1))), nil
	case *value.Array:
		needle := arg(a, 1)
		for _, e := range s.Elements {
			if value.Equals(e, needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func biIndexOf(call value.Caller, a []value.Value) (value.Value, error) {
	switch s := arg(a, 0).(type) {
	case string:
		return float64(strings.Index(s, str(arg(a, 1)))), nil
	case *value.Array:
		needle := arg(a, 1)
		for i, e := range s.Elements {
			if value.Equals(e, needle) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	default:
		return -1.0, nil
	}
}

func biCharAt(call value.Caller, a []value.Value) (value.Value, error) {
	s := str(arg(a, 0))
	i := int(num(arg(a, 1)))
	if i < 0 || i >= len(s) {
		return "", nil
	}
	return string(s[i]), nil
}

func biCharCode(call value.Caller, a []value.Value) (value.Value, error) {
	s := str(arg(a, 0))
	i := 0
	if len(a) > 1 {
		i = int(num(a[1]))
	}
	if i < 0 || i >= len(s) {
		return value.NewArray(nil), nil
	}
	return float64(s[i]), nil
}

func biReverse(call value.Caller, a []value.Value) (value.Value, error) {
	switch s := arg(a, 0).(type) {
	case string:
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	case *value.Array:
		n := len(s.Elements)
		out := make([]value.Value, n)
		for i, e := range s.Elements {
			out[n-1-i] = e
		}
		return value.NewArray(out), nil
	default:
		return s, nil
	}
}

// biSort implements `sort(arr, cmp?)`: returns a NEW array, leaving the
// original untouched. cmp, if given, is a GridLang
// function called back via the shared Caller.
func biSort(call value.Caller, a []value.Value) (value.Value, error) {
	return sortWith(a, call)
}

// sortWith takes the Caller explicitly; biSort passes it through so a
// comparator callback can be invoked.
func sortWith(a []value.Value, call Caller) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return value.NewArray(nil), nil
	}
	out := make([]value.Value, len(arr.Elements))
	copy(out, arr.Elements)

	var cmpErr error
	cmpFn := arg(a, 1)
	less := func(i, j int) bool {
		if cmpErr != nil {
			return false
		}
		if call != nil && !value.IsUndefined(cmpFn) && !value.IsNull(cmpFn) {
			res, err := call.Call(cmpFn, []value.Value{out[i], out[j]})
			if err != nil {
				cmpErr = err
				return false
			}
			return value.ToNumber(res) < 0
		}
		return defaultLess(out[i], out[j])
	}
	sort.SliceStable(out, less)
	if cmpErr != nil {
		return nil, cmpErr
	}
	return value.NewArray(out), nil
}

func defaultLess(a, b value.Value) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs
		}
	}
	return value.ToNumber(a) < value.ToNumber(b)
}

func biSubstr(call value.Caller, a []value.Value) (value.Value, error) {
	s := str(arg(a, 0))
	start := clampIdx(int(num(arg(a, 1))), len(s))
	length := len(s) - start
	if len(a) > 2 && !value.IsUndefined(a[2]) && !value.IsNull(a[2]) {
		length = int(num(a[2]))
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	if end < start {
		end = start
	}
	return s[start:end], nil
}

func biSubstring(call value.Caller, a []value.Value) (value.Value, error) {
	s := str(arg(a, 0))
	start := clampIdx(int(num(arg(a, 1))), len(s))
	end := len(s)
	if len(a) > 2 && !value.IsUndefined(a[2]) && !value.IsNull(a[2]) {
		end = clampIdx(int(num(a[2])), len(s))
	}
	if end < start {
		start, end = end, start
	}
	return s[start:end], nil
}

// biSlice works on both strings and arrays (`slice(s|arr,start,end?)`).
func biSlice(call value.Caller, a []value.Value) (value.Value, error) {
	switch s := arg(a, 0).(type) {
	case string:
		start := clampIdx(int(num(arg(a, 1))), len(s))
		end := len(s)
		if len(a) > 2 && !value.IsUndefined(a[2]) && !value.IsNull(a[2]) {
			end = clampIdx(int(num(a[2])), len(s))
		}
		if end < start {
			end = start
		}
		return s[start:end], nil
	case *value.Array:
		start := clampIdx(int(num(arg(a, 1))), len(s.Elements))
		end := len(s.Elements)
		if len(a) > 2 && !value.IsUndefined(a[2]) && !value.IsNull(a[2]) {
			end = clampIdx(int(num(a[2])), len(s.Elements))
		}
		if end < start {
			end = start
		}
		out := make([]value.Value, end-start)
		copy(out, s.Elements[start:end])
		return value.NewArray(out), nil
	default:
		return value.Null, nil
	}
}

func clampIdx(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func biSplit(call value.Caller, a []value.Value) (value.Value, error) {
	s := str(arg(a, 0))
	sep := " "
	if len(a) > 1 && !value.IsUndefined(a[1]) {
		sep = str(a[1])
	}
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = p
	}
	return value.NewArray(elems), nil
}

func biJoin(call value.Caller, a []value.Value) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return "", nil
	}
	sep := ""
	if len(a) > 1 && !value.IsUndefined(a[1]) {
		sep = str(a[1])
	}
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = value.ToString(e)
	}
	return strings.Join(parts, sep), nil
}
