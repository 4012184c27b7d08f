package exprparser

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/robertkrimen/otto/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/value"
)

// constructors are the builtins that new turns into wrapper objects.
var constructors = map[string]bool{
	"Number":  true,
	"String":  true,
	"Boolean": true,
}

func (e *evaluation) evaluateNew(node *ast.NewExpression, s *scope) (value.Value, error) {
	callee, ok := node.Callee.(*ast.Identifier)
	if !ok {
		return value.Undefined(), fmt.Errorf("%w: new with a computed constructor", ErrUnsupported)
	}
	if _, shadowed := s.lookup(callee.Name); !shadowed {
		if _, ok := builtins[callee.Name]; ok {
			if !constructors[callee.Name] {
				return value.Undefined(), fmt.Errorf("%w: %s is not a constructor", ErrType, callee.Name)
			}
			args, err := e.evaluateArgs(node.ArgumentList, s)
			if err != nil {
				return value.Undefined(), err
			}
			prim, err := builtins[callee.Name](e, args)
			if err != nil {
				return value.Undefined(), err
			}
			return box(prim), nil
		}
	}
	if _, err := e.evaluateIdentifier(callee, s); err != nil {
		return value.Undefined(), err
	}
	return value.Undefined(), fmt.Errorf("%w: %s is not a constructor", ErrType, callee.Name)
}

// box wraps a primitive in an object whose valueOf yields the primitive.
// Like any object it is truthy, so new Boolean(false) passes a condition.
func box(prim value.Value) value.Value {
	obj := value.NewBoxed(prim)
	obj.ValueOf = func() (value.Value, error) { return prim, nil }
	obj.ToString = func() (value.Value, error) { return coerce.ExplicitString(prim) }
	return value.ObjectValue(obj)
}

type stringMethod func(units []uint16, args []value.Value) (value.Value, error)

// stringMethods work on UTF-16 code units, so indexes match length.
var stringMethods = map[string]stringMethod{
	"toUpperCase": func(units []uint16, _ []value.Value) (value.Value, error) {
		return value.String(cases.Upper(language.Und).String(unitsText(units))), nil
	},
	"toLowerCase": func(units []uint16, _ []value.Value) (value.Value, error) {
		return value.String(cases.Lower(language.Und).String(unitsText(units))), nil
	},
	"trim": func(units []uint16, _ []value.Value) (value.Value, error) {
		return value.StringFromUnits(trimEnd(trimStart(units))), nil
	},
	"trimStart": func(units []uint16, _ []value.Value) (value.Value, error) {
		return value.StringFromUnits(trimStart(units)), nil
	},
	"trimEnd": func(units []uint16, _ []value.Value) (value.Value, error) {
		return value.StringFromUnits(trimEnd(units)), nil
	},
	"charAt": func(units []uint16, args []value.Value) (value.Value, error) {
		pos, err := integerArg(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		if pos < 0 || pos >= float64(len(units)) {
			return value.String(""), nil
		}
		i := int(pos)
		return value.StringFromUnits(units[i : i+1]), nil
	},
	"indexOf": func(units []uint16, args []value.Value) (value.Value, error) {
		i, err := indexOf(units, args)
		return value.Number(float64(i)), err
	},
	"includes": func(units []uint16, args []value.Value) (value.Value, error) {
		i, err := indexOf(units, args)
		return value.Bool(i >= 0), err
	},
	"startsWith": func(units []uint16, args []value.Value) (value.Value, error) {
		search, err := unitsArg(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		from, err := clampedArg(args, 1, len(units))
		if err != nil {
			return value.Undefined(), err
		}
		rest := units[from:]
		return value.Bool(len(search) <= len(rest) && slices.Equal(rest[:len(search)], search)), nil
	},
}

func unitsText(units []uint16) string {
	s, _ := value.StringFromUnits(units).AsString()
	return s
}

func trimStart(units []uint16) []uint16 {
	for len(units) > 0 && coerce.IsWhitespace(units[0]) {
		units = units[1:]
	}
	return units
}

func trimEnd(units []uint16) []uint16 {
	for len(units) > 0 && coerce.IsWhitespace(units[len(units)-1]) {
		units = units[:len(units)-1]
	}
	return units
}

// integerArg converts the i-th argument to an integer, truncating toward
// zero. NaN and a missing argument become 0.
func integerArg(args []value.Value, i int) (float64, error) {
	f, err := coerce.ToNumber(arg(args, i))
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return math.Trunc(f), nil
}

// clampedArg is integerArg limited to [0, n].
func clampedArg(args []value.Value, i int, n int) (int, error) {
	f, err := integerArg(args, i)
	if err != nil {
		return 0, err
	}
	return int(math.Max(0, math.Min(f, float64(n)))), nil
}

func unitsArg(args []value.Value, i int) ([]uint16, error) {
	s, err := coerce.ToString(arg(args, i))
	if err != nil {
		return nil, err
	}
	units, _ := s.AsUnits()
	return units, nil
}

// indexOf finds args[0] in units starting at args[1], or returns -1.
func indexOf(units []uint16, args []value.Value) (int, error) {
	search, err := unitsArg(args, 0)
	if err != nil {
		return -1, err
	}
	from, err := clampedArg(args, 1, len(units))
	if err != nil {
		return -1, err
	}
	for i := from; i+len(search) <= len(units); i++ {
		if slices.Equal(units[i:i+len(search)], search) {
			return i, nil
		}
	}
	return -1, nil
}

// numberToString is Number.prototype.toString with an explicit radix.
// Only integers are formatted in radixes other than 10.
func numberToString(recv value.Value, radixArg value.Value) (value.Value, error) {
	radix, err := integerArg([]value.Value{radixArg}, 0)
	if err != nil {
		return value.Undefined(), err
	}
	if radix < 2 || radix > 36 {
		return value.Undefined(), fmt.Errorf("%w: toString() radix must be between 2 and 36", coerce.ErrRange)
	}
	f, _ := recv.AsNumber()
	if radix == 10 || math.IsNaN(f) || math.IsInf(f, 0) {
		return coerce.ExplicitString(recv)
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return value.Undefined(), fmt.Errorf("%w: toString(%d) of %s", ErrUnsupported, int(radix), coerce.NumberToString(f))
	}
	return value.String(strconv.FormatInt(int64(f), int(radix))), nil
}

// mathMethods are the Math functions. Each coerces its arguments with
// ToNumber, so big integers are rejected.
var mathMethods = map[string]builtin{
	"sign": mathUnary(func(f float64) float64 {
		switch {
		case math.IsNaN(f), f == 0:
			return f
		case f > 0:
			return 1
		}
		return -1
	}),
	"abs":   mathUnary(math.Abs),
	"floor": mathUnary(math.Floor),
	"ceil":  mathUnary(math.Ceil),
	"trunc": mathUnary(math.Trunc),
	"max": func(_ *evaluation, args []value.Value) (value.Value, error) {
		return extremum(args, true)
	},
	"min": func(_ *evaluation, args []value.Value) (value.Value, error) {
		return extremum(args, false)
	},
}

func mathUnary(fn func(float64) float64) builtin {
	return func(_ *evaluation, args []value.Value) (value.Value, error) {
		f, err := coerce.ToNumber(arg(args, 0))
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(fn(f)), nil
	}
}

// extremum is Math.max or Math.min. Every argument is converted before a NaN
// is reported, and +0 is larger than -0.
func extremum(args []value.Value, larger bool) (value.Value, error) {
	result := math.Inf(1)
	if larger {
		result = math.Inf(-1)
	}
	nan := false
	for _, a := range args {
		f, err := coerce.ToNumber(a)
		if err != nil {
			return value.Undefined(), err
		}
		switch {
		case math.IsNaN(f):
			nan = true
		case f == 0 && result == 0:
			if math.Signbit(f) != larger {
				result = f
			}
		case larger && f > result, !larger && f < result:
			result = f
		}
	}
	if nan {
		return value.NaN(), nil
	}
	return value.Number(result), nil
}
