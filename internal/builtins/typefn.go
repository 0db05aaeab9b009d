package builtins

import (
	"math"
	"strconv"
	"strings"

	"gridlang/internal/value"
)

func init() {
	register("str", func(call value.Caller, a []value.Value) (value.Value, error) { return value.ToString(arg(a, 0)), nil })
	register("int", biInt)
	register("float", func(call value.Caller, a []value.Value) (value.Value, error) { return value.ToNumber(arg(a, 0)), nil })
	register("bool", func(call value.Caller, a []value.Value) (value.Value, error) { return value.Truthy(arg(a, 0)), nil })
}

func biInt(call value.Caller, a []value.Value) (value.Value, error) {
	v := arg(a, 0)
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return float64(n), nil
		}
	}
	n := value.ToNumber(v)
	if math.IsNaN(n) {
		return n, nil
	}
	return math.Trunc(n), nil
}
