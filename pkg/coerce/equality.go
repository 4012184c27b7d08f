package coerce

import (
	"fmt"
	"math"
	"math/big"

	"github.com/nektos/coerce/pkg/value"
)

// StrictEquals is the === relation: no coercion, NaN is unequal to
// everything and +0 equals -0.
func StrictEquals(x, y value.Value) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	if x.Kind() == value.KindNumber {
		a, _ := x.AsNumber()
		b, _ := y.AsNumber()
		return a == b
	}
	return value.Identical(x, y)
}

// SameValue is StrictEquals except that NaN equals NaN and +0 does not
// equal -0.
func SameValue(x, y value.Value) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	if x.Kind() == value.KindNumber {
		a, _ := x.AsNumber()
		b, _ := y.AsNumber()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b && math.Signbit(a) == math.Signbit(b)
	}
	return value.Identical(x, y)
}

// SameValueZero is SameValue except that +0 equals -0. It is the relation
// used for membership tests on lists.
func SameValueZero(x, y value.Value) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	if x.Kind() == value.KindNumber {
		a, _ := x.AsNumber()
		b, _ := y.AsNumber()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b
	}
	return value.Identical(x, y)
}

// AbstractEquals is the == relation. Rules are tried in order and the first
// that applies decides:
//
//  1. same kind: StrictEquals
//  2. null and undefined equal each other
//  3. number and string: the string is converted to a number
//  4. big integer and string: the string is parsed as an integer
//  5. a boolean is converted to a number
//  6. number, string or big integer against an object: the object is
//     converted with ToPrimitive and the default hint
//  7. big integer and number: exact mathematical comparison
//  8. anything else is unequal
func AbstractEquals(x, y value.Value) (bool, error) {
	xk, yk := x.Kind(), y.Kind()

	if xk == yk {
		return StrictEquals(x, y), nil
	}

	if x.IsNullish() && y.IsNullish() {
		return true, nil
	}

	if xk == value.KindNumber && yk == value.KindString {
		return AbstractEquals(x, value.Number(ParseNumericString(y)))
	}
	if xk == value.KindString && yk == value.KindNumber {
		return AbstractEquals(value.Number(ParseNumericString(x)), y)
	}

	if xk == value.KindBigInt && yk == value.KindString {
		return bigIntEqualsString(x, y), nil
	}
	if xk == value.KindString && yk == value.KindBigInt {
		return bigIntEqualsString(y, x), nil
	}

	if xk == value.KindBoolean {
		n, _ := ToNumber(x)
		return AbstractEquals(value.Number(n), y)
	}
	if yk == value.KindBoolean {
		n, _ := ToNumber(y)
		return AbstractEquals(x, value.Number(n))
	}

	if isNumberStringOrBigInt(xk) && yk == value.KindObject {
		prim, err := ToPrimitive(y, value.HintDefault)
		if err != nil {
			return false, err
		}
		return AbstractEquals(x, prim)
	}
	if xk == value.KindObject && isNumberStringOrBigInt(yk) {
		prim, err := ToPrimitive(x, value.HintDefault)
		if err != nil {
			return false, err
		}
		return AbstractEquals(prim, y)
	}

	if xk == value.KindBigInt && yk == value.KindNumber {
		return bigIntEqualsNumber(x, y), nil
	}
	if xk == value.KindNumber && yk == value.KindBigInt {
		return bigIntEqualsNumber(y, x), nil
	}

	return false, nil
}

func isNumberStringOrBigInt(k value.Kind) bool {
	switch k {
	case value.KindNumber, value.KindString, value.KindBigInt:
		return true
	case value.KindUndefined, value.KindNull, value.KindBoolean, value.KindAtom, value.KindObject:
		return false
	}
	panic(fmt.Sprintf("coerce: unknown value kind %d", k))
}

func bigIntEqualsString(b, s value.Value) bool {
	parsed, ok := StringToBigInt(s)
	if !ok {
		return false
	}
	i, _ := b.AsBigInt()
	return i.Cmp(parsed) == 0
}

func bigIntEqualsNumber(b, n value.Value) bool {
	i, _ := b.AsBigInt()
	f, _ := n.AsNumber()
	c, ok := compareBigIntNumber(i, f)
	return ok && c == 0
}

// compareBigIntNumber compares i and f exactly. ok is false when f is NaN.
// Infinities compare beyond every integer.
func compareBigIntNumber(i *big.Int, f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case math.IsInf(f, 1):
		return -1, true
	case math.IsInf(f, -1):
		return 1, true
	}
	return new(big.Float).SetInt(i).Cmp(big.NewFloat(f)), true
}
