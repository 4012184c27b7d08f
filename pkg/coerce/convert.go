// Package coerce implements the conversion rules of a dynamically typed
// runtime: ToBoolean, ToNumber, ToString, ToPrimitive, list stringification
// and the strict, abstract and same-value equality relations built on them.
//
// Every function in this package is pure apart from invoking the hooks of the
// objects it is given. There is no package state; all functions are safe for
// concurrent use.
package coerce

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/nektos/coerce/pkg/value"
)

// ToBoolean reports whether v is truthy. Objects are always truthy and their
// hooks are never consulted.
func ToBoolean(v value.Value) bool {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return false
	case value.KindBoolean:
		b, _ := v.AsBool()
		return b
	case value.KindNumber:
		f, _ := v.AsNumber()
		return f != 0 && !math.IsNaN(f)
	case value.KindBigInt:
		i, _ := v.AsBigInt()
		return i.Sign() != 0
	case value.KindString:
		return v.Len() > 0
	case value.KindAtom, value.KindObject:
		return true
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", v.Kind()))
}

// ToNumber converts v to a number. Atoms and big integers are not
// convertible; strings that are not numeric literals become NaN.
func ToNumber(v value.Value) (float64, error) {
	switch v.Kind() {
	case value.KindUndefined:
		return math.NaN(), nil
	case value.KindNull:
		return 0, nil
	case value.KindBoolean:
		if b, _ := v.AsBool(); b {
			return 1, nil
		}
		return 0, nil
	case value.KindNumber:
		f, _ := v.AsNumber()
		return f, nil
	case value.KindBigInt, value.KindAtom:
		return math.NaN(), conversionError("ToNumber", v.Kind(), ErrNotConvertible)
	case value.KindString:
		return ParseNumericString(v), nil
	case value.KindObject:
		prim, err := ToPrimitive(v, value.HintNumber)
		if err != nil {
			return math.NaN(), err
		}
		return ToNumber(prim)
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", v.Kind()))
}

// ToNumeric converts v to either a number or a big integer, leaving big
// integers intact.
func ToNumeric(v value.Value) (value.Value, error) {
	prim, err := ToPrimitive(v, value.HintNumber)
	if err != nil {
		return value.Undefined(), err
	}
	if prim.Kind() == value.KindBigInt {
		return prim, nil
	}
	f, err := ToNumber(prim)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Number(f), nil
}

// ToString converts v to a string value.
func ToString(v value.Value) (value.Value, error) {
	return toString(v, nil)
}

// ToGoString converts v to a string and decodes it to Go text.
func ToGoString(v value.Value) (string, error) {
	s, err := ToString(v)
	if err != nil {
		return "", err
	}
	text, _ := s.AsString()
	return text, nil
}

// toString carries the set of lists currently being joined so that a list
// containing itself terminates.
func toString(v value.Value, joining []*value.Object) (value.Value, error) {
	switch v.Kind() {
	case value.KindUndefined:
		return value.String("undefined"), nil
	case value.KindNull:
		return value.String("null"), nil
	case value.KindBoolean:
		if b, _ := v.AsBool(); b {
			return value.String("true"), nil
		}
		return value.String("false"), nil
	case value.KindNumber:
		f, _ := v.AsNumber()
		return value.String(NumberToString(f)), nil
	case value.KindBigInt:
		i, _ := v.AsBigInt()
		return value.String(i.String()), nil
	case value.KindString:
		return v, nil
	case value.KindAtom:
		return value.Undefined(), conversionError("ToString", v.Kind(), ErrNotConvertible)
	case value.KindObject:
		prim, err := toPrimitive(v, value.HintString, joining)
		if err != nil {
			return value.Undefined(), err
		}
		return toString(prim, joining)
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", v.Kind()))
}

// ListToString joins items with commas. Undefined and null items contribute
// the empty string.
func ListToString(items []value.Value) (value.Value, error) {
	return listToString(items, nil)
}

func listToString(items []value.Value, joining []*value.Object) (value.Value, error) {
	var units []uint16
	for i, item := range items {
		if i > 0 {
			units = append(units, ',')
		}
		if item.IsNullish() {
			continue
		}
		if obj, ok := item.AsObject(); ok && obj.IsList() && isJoining(joining, obj) {
			continue
		}
		s, err := toString(item, joining)
		if err != nil {
			return value.Undefined(), err
		}
		part, _ := s.AsUnits()
		units = append(units, part...)
	}
	return value.StringFromUnits(units), nil
}

func isJoining(joining []*value.Object, obj *value.Object) bool {
	for _, o := range joining {
		if o == obj {
			return true
		}
	}
	return false
}

// NumberToString formats f as the shortest decimal string that round-trips,
// using exponent notation when the decimal exponent is at least 21 or at
// most -7.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// 'e' with precision -1 yields the shortest round-trip digits as d.ddde±x
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	k := len(digits)
	n := e + 1

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if n-1 >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(n - 1))
	}
	return b.String()
}

// bigIntToFloat converts i to the nearest number.
func bigIntToFloat(i *big.Int) float64 {
	f, _ := new(big.Float).SetInt(i).Float64()
	return f
}
