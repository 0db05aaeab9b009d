package builtins

import (
	"math"
	"math/rand"

	"gridlang/internal/value"
)

func init() {
	register("abs", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Abs(num(arg(a, 0))), nil })
	register("sqrt", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Sqrt(num(arg(a, 0))), nil })
	register("pow", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Pow(num(arg(a, 0)), num(arg(a, 1))), nil })
	register("floor", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Floor(num(arg(a, 0))), nil })
	register("ceil", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Ceil(num(arg(a, 0))), nil })
	register("round", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Round(num(arg(a, 0))), nil })
	register("sin", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Sin(num(arg(a, 0))), nil })
	register("cos", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Cos(num(arg(a, 0))), nil })
	register("tan", func(call value.Caller, a []value.Value) (value.Value, error) { return math.Tan(num(arg(a, 0))), nil })
	register("sign", func(call value.Caller, a []value.Value) (value.Value, error) {
		n := num(arg(a, 0))
		switch {
		case n > 0:
			return 1.0, nil
		case n < 0:
			return -1.0, nil
		default:
			return 0.0, nil
		}
	})
	register("min", biMin)
	register("max", biMax)
	register("clamp", func(call value.Caller, a []value.Value) (value.Value, error) {
		v, lo, hi := num(arg(a, 0)), num(arg(a, 1)), num(arg(a, 2))
		if v < lo {
			return lo, nil
		}
		if v > hi {
			return hi, nil
		}
		return v, nil
	})
	register("lerp", func(call value.Caller, a []value.Value) (value.Value, error) {
		x, y, t := num(arg(a, 0)), num(arg(a, 1)), num(arg(a, 2))
		return x + (y-x)*t, nil
	})
	register("random", biRandom)
}

// biRandom implements random(): no args returns [0,1); one arg returns
// [0,n); two args return [lo,hi). Package-level so it is deterministic
// within a process run up to the seed the host chose with SeedRandom;
// scripts using random() are exempt from the byte-identical-rerun
// guarantee that holds for the rest of the language.
var sharedRand = rand.New(rand.NewSource(1))

// SeedRandom reseeds the shared random() source. host.New calls it when
// Options.Seed is nonzero; otherwise the source keeps the seed of 1 it
// was created with at package initialisation.
func SeedRandom(seed int64) {
	sharedRand = rand.New(rand.NewSource(seed))
}

func biRandom(call value.Caller, a []value.Value) (value.Value, error) {
	switch len(a) {
	case 0:
		return sharedRand.Float64(), nil
	case 1:
		return sharedRand.Float64() * num(a[0]), nil
	default:
		lo, hi := num(a[0]), num(a[1])
		return lo + sharedRand.Float64()*(hi-lo), nil
	}
}

func biMin(call value.Caller, a []value.Value) (value.Value, error) {
	if len(a) == 0 {
		return math.Inf(1), nil
	}
	m := num(a[0])
	for _, v := range a[1:] {
		if n := num(v); n < m {
			m = n
		}
	}
	return m, nil
}

func biMax(call value.Caller, a []value.Value) (value.Value, error) {
	if len(a) == 0 {
		return math.Inf(-1), nil
	}
	m := num(a[0])
	for _, v := range a[1:] {
		if n := num(v); n > m {
			m = n
		}
	}
	return m, nil
}
