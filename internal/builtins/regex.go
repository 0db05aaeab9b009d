package builtins

import (
	"gridlang/internal/value"
)

// regexMethods backs GET_MEMBER for regex values: test, match,
// groups, find_all, replace, split. Every method expects the receiver regex
// as args[0] via the BoundMethod calling convention.
var regexMethods = map[string]*value.NativeFunction{}

func registerRegexMethod(name string, fn value.NativeFunc) {
	regexMethods[name] = &value.NativeFunction{Name: "Regex." + name, Fn: fn}
}

func init() {
	registerRegexMethod("test", regexTest)
	registerRegexMethod("match", regexMatch)
	registerRegexMethod("groups", regexGroups)
	registerRegexMethod("find_all", regexFindAll)
	registerRegexMethod("replace", regexReplace)
	registerRegexMethod("split", regexSplit)
}

func regexMember(re *value.Regex, name string) (value.Value, error) {
	switch name {
	case "pattern":
		return re.Pattern, nil
	}
	if fn, ok := regexMethods[name]; ok {
		return &value.BoundMethod{Self: re, Method: fn}, nil
	}
	return value.Undefined, nil
}

func asRegex(v value.Value) *value.Regex {
	re, _ := v.(*value.Regex)
	return re
}

// regexTest implements `re.test(s)`: whether the pattern matches anywhere
// in s.
func regexTest(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	if re == nil {
		return false, nil
	}
	return re.Compiled.MatchString(str(arg(a, 1))), nil
}

// regexMatch implements `re.match(s)`: the first match's full text and
// positional capture groups as an array, or null if no match.
func regexMatch(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	if re == nil {
		return value.Null, nil
	}
	m := re.Compiled.FindStringSubmatch(str(arg(a, 1)))
	if m == nil {
		return value.Null, nil
	}
	elems := make([]value.Value, len(m))
	for i, g := range m {
		elems[i] = g
	}
	return value.NewArray(elems), nil
}

// regexGroups implements `re.groups(s)`: for a named-group pattern, a
// string->string map; for a positional pattern, an array of captures
// (excluding the full match).
func regexGroups(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	if re == nil {
		return value.Null, nil
	}
	m := re.Compiled.FindStringSubmatch(str(arg(a, 1)))
	if m == nil {
		return value.Null, nil
	}
	if re.Named {
		names := re.Compiled.SubexpNames()
		out := value.NewMap()
		for i, n := range names {
			if i == 0 || n == "" {
				continue
			}
			out.Set(n, m[i])
		}
		return out, nil
	}
	elems := make([]value.Value, 0, len(m)-1)
	for _, g := range m[1:] {
		elems = append(elems, g)
	}
	return value.NewArray(elems), nil
}

// regexFindAll implements `re.find_all(s)`: every non-overlapping match's
// full text, in order.
func regexFindAll(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	if re == nil {
		return value.NewArray(nil), nil
	}
	ms := re.Compiled.FindAllString(str(arg(a, 1)), -1)
	elems := make([]value.Value, len(ms))
	for i, m := range ms {
		elems[i] = m
	}
	return value.NewArray(elems), nil
}

// regexReplace implements `re.replace(s, repl)`: every match replaced by
// repl, which may reference captures with Go's `$1`/`${name}` syntax.
func regexReplace(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	if re == nil {
		return arg(a, 1), nil
	}
	return re.Compiled.ReplaceAllString(str(arg(a, 1)), str(arg(a, 2))), nil
}

// regexSplit implements `re.split(s)`: s cut at every match of the pattern.
func regexSplit(call value.Caller, a []value.Value) (value.Value, error) {
	re := asRegex(arg(a, 0))
	s := str(arg(a, 1))
	if re == nil {
		return value.NewArray([]value.Value{s}), nil
	}
	parts := re.Compiled.Split(s, -1)
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = p
	}
	return value.NewArray(elems), nil
}
