package coerce

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/nektos/coerce/pkg/value"
)

// TypeOf returns the name the typeof operator reports for v.
func TypeOf(v value.Value) string {
	switch v.Kind() {
	case value.KindUndefined:
		return "undefined"
	case value.KindNull, value.KindObject:
		return "object"
	case value.KindBoolean:
		return "boolean"
	case value.KindNumber:
		return "number"
	case value.KindBigInt:
		return "bigint"
	case value.KindString:
		return "string"
	case value.KindAtom:
		return "symbol"
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", v.Kind()))
}

// ExplicitBoolean is Boolean(x).
func ExplicitBoolean(v value.Value) value.Value {
	return value.Bool(ToBoolean(v))
}

// ExplicitNumber is Number(x). Unlike ToNumber it accepts big integers.
func ExplicitNumber(v value.Value) (value.Value, error) {
	n, err := ToNumeric(v)
	if err != nil {
		return value.Undefined(), err
	}
	if i, ok := n.AsBigInt(); ok {
		return value.Number(bigIntToFloat(i)), nil
	}
	return n, nil
}

// ExplicitString is String(x). Unlike ToString it accepts atoms and renders
// them as Symbol(description).
func ExplicitString(v value.Value) (value.Value, error) {
	if a, ok := v.AsAtom(); ok {
		return value.String(AtomString(a)), nil
	}
	return ToString(v)
}

// AtomString renders an atom for display.
func AtomString(a *value.Atom) string {
	desc, _ := a.Description()
	return "Symbol(" + desc + ")"
}

// ExplicitBigInt is BigInt(x): integral numbers, booleans and integer
// strings convert; everything else fails.
func ExplicitBigInt(v value.Value) (value.Value, error) {
	prim, err := ToPrimitive(v, value.HintNumber)
	if err != nil {
		return value.Undefined(), err
	}
	switch prim.Kind() {
	case value.KindNumber:
		f, _ := prim.AsNumber()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return value.Undefined(), conversionError("BigInt", value.KindNumber,
				fmt.Errorf("%w: %s is not an integer", ErrRange, NumberToString(f)))
		}
		i, _ := big.NewFloat(f).Int(nil)
		return value.BigInt(i), nil
	case value.KindBoolean:
		if b, _ := prim.AsBool(); b {
			return value.BigIntFromInt64(1), nil
		}
		return value.BigIntFromInt64(0), nil
	case value.KindBigInt:
		return prim, nil
	case value.KindString:
		i, ok := StringToBigInt(prim)
		if !ok {
			return value.Undefined(), conversionError("BigInt", value.KindString,
				fmt.Errorf("%w: cannot parse %q as an integer", ErrNotConvertible, mustGoString(prim)))
		}
		return value.BigInt(i), nil
	case value.KindUndefined, value.KindNull, value.KindAtom, value.KindObject:
		return value.Undefined(), conversionError("BigInt", prim.Kind(), ErrNotConvertible)
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", prim.Kind()))
}

func mustGoString(v value.Value) string {
	s, _ := v.AsString()
	return s
}

// IsNaN is the global isNaN: the argument is converted to a number first.
func IsNaN(v value.Value) (bool, error) {
	f, err := ToNumber(v)
	if err != nil {
		return false, err
	}
	return math.IsNaN(f), nil
}

// NumberIsNaN is Number.isNaN: true only for the number NaN, no coercion.
func NumberIsNaN(v value.Value) bool {
	f, ok := v.AsNumber()
	return ok && math.IsNaN(f)
}

// ObjectIs is Object.is, which is SameValue.
func ObjectIs(x, y value.Value) bool {
	return SameValue(x, y)
}

// ParseFloat is parseFloat: leading white space is skipped and the longest
// decimal literal prefix (or Infinity) is converted. No prefix yields NaN.
func ParseFloat(v value.Value) (float64, error) {
	s, err := ToString(v)
	if err != nil {
		return math.NaN(), err
	}
	units, _ := s.AsUnits()
	units = trimLeftUnits(units)

	// only the ASCII prefix can be part of a literal
	end := 0
	for end < len(units) && units[end] <= 0x7f {
		end++
	}
	text, _ := asciiText(units[:end])

	for _, inf := range []struct {
		prefix string
		value  float64
	}{
		{"Infinity", math.Inf(1)},
		{"+Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	} {
		if len(text) >= len(inf.prefix) && text[:len(inf.prefix)] == inf.prefix {
			return inf.value, nil
		}
	}

	n := decimalLiteralLength(text)
	if n == 0 {
		return math.NaN(), nil
	}
	f, _ := strconv.ParseFloat(text[:n], 64)
	return f, nil
}

// ParseInt is parseInt: leading white space and an optional sign are
// skipped, the radix defaults to 10 (16 with a 0x prefix) and digits are
// consumed until the first one invalid for the radix.
func ParseInt(v value.Value, radix value.Value) (float64, error) {
	s, err := ToString(v)
	if err != nil {
		return math.NaN(), err
	}
	r, err := ToNumber(radix)
	if err != nil {
		return math.NaN(), err
	}
	base := toInt32(r)

	units, _ := s.AsUnits()
	units = trimLeftUnits(units)
	negative := false
	if len(units) > 0 && (units[0] == '+' || units[0] == '-') {
		negative = units[0] == '-'
		units = units[1:]
	}

	stripPrefix := true
	switch {
	case base == 0:
		base = 10
	case base < 2 || base > 36:
		return math.NaN(), nil
	case base != 16:
		stripPrefix = false
	}
	if stripPrefix && len(units) >= 2 && units[0] == '0' && (units[1] == 'x' || units[1] == 'X') {
		units = units[2:]
		base = 16
	}

	end := 0
	for end < len(units) && units[end] <= 0x7f && digitValue(byte(units[end])) < int(base) {
		end++
	}
	if end == 0 {
		return math.NaN(), nil
	}
	digits, _ := asciiText(units[:end])
	n, _ := new(big.Int).SetString(digits, int(base))
	f := bigIntToFloat(n)
	if negative {
		f = -f
	}
	return f, nil
}

// toInt32 truncates f modulo 2^32 into the signed 32-bit range.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(f), 1<<32))))
}

// Interpolate builds a template string: literal parts interleaved with the
// string conversion of each value. len(parts) must be len(values)+1.
func Interpolate(parts []string, values ...value.Value) (value.Value, error) {
	if len(parts) != len(values)+1 {
		return value.Undefined(), fmt.Errorf("interpolate: %d parts for %d values", len(parts), len(values))
	}
	var units []uint16
	units = append(units, unitsOf(parts[0])...)
	for i, v := range values {
		s, err := ToString(v)
		if err != nil {
			return value.Undefined(), err
		}
		part, _ := s.AsUnits()
		units = append(units, part...)
		units = append(units, unitsOf(parts[i+1])...)
	}
	return value.StringFromUnits(units), nil
}
