package coerce

import (
	"math"
	"strconv"
	"strings"

	"github.com/nektos/coerce/pkg/value"
)

// Inspect renders v the way an interactive console echoes it: strings are
// quoted, big integers carry an n suffix, negative zero keeps its sign and
// lists show their elements. It never invokes object hooks.
func Inspect(v value.Value) string {
	return inspect(v, nil)
}

func inspect(v value.Value, seen []*value.Object) string {
	switch v.Kind() {
	case value.KindUndefined:
		return "undefined"
	case value.KindNull:
		return "null"
	case value.KindBoolean:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case value.KindNumber:
		f, _ := v.AsNumber()
		if f == 0 && math.Signbit(f) {
			return "-0"
		}
		return NumberToString(f)
	case value.KindBigInt:
		i, _ := v.AsBigInt()
		return i.String() + "n"
	case value.KindString:
		s, _ := v.AsString()
		return strconv.Quote(s)
	case value.KindAtom:
		a, _ := v.AsAtom()
		return AtomString(a)
	case value.KindObject:
		obj, _ := v.AsObject()
		if prim, ok := obj.Boxed(); ok {
			return "[" + wrapperName(prim) + ": " + inspect(prim, seen) + "]"
		}
		if !obj.IsList() {
			var hooks []string
			if obj.ToPrimitive != nil {
				hooks = append(hooks, "[Symbol.toPrimitive]: [Function]")
			}
			if obj.ValueOf != nil {
				hooks = append(hooks, "valueOf: [Function]")
			}
			if obj.ToString != nil {
				hooks = append(hooks, "toString: [Function]")
			}
			if len(hooks) == 0 {
				return "{}"
			}
			return "{ " + strings.Join(hooks, ", ") + " }"
		}
		if isJoining(seen, obj) {
			return "[Circular]"
		}
		seen = append(seen[:len(seen):len(seen)], obj)
		parts := make([]string, len(obj.Items()))
		for i, item := range obj.Items() {
			parts[i] = inspect(item, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "<invalid>"
}

// wrapperName is the constructor that boxes prim.
func wrapperName(prim value.Value) string {
	switch prim.Kind() {
	case value.KindBoolean:
		return "Boolean"
	case value.KindNumber:
		return "Number"
	case value.KindString:
		return "String"
	case value.KindBigInt:
		return "BigInt"
	case value.KindAtom:
		return "Symbol"
	}
	return "Object"
}
