package coerce

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/nektos/coerce/pkg/value"
)

// BigIntPolicy decides what arithmetic does when one operand is a big
// integer and the other a number.
type BigIntPolicy int

const (
	// BigIntStrict rejects mixed arithmetic with ErrNotConvertible.
	BigIntStrict BigIntPolicy = iota
	// BigIntLossy converts the big integer operand to a number.
	BigIntLossy
)

func (p BigIntPolicy) String() string {
	switch p {
	case BigIntStrict:
		return "strict"
	case BigIntLossy:
		return "lossy"
	}
	return fmt.Sprintf("BigIntPolicy(%d)", int(p))
}

// ParseBigIntPolicy maps "strict" and "lossy" to a policy.
func ParseBigIntPolicy(s string) (BigIntPolicy, error) {
	switch strings.ToLower(s) {
	case "strict", "":
		return BigIntStrict, nil
	case "lossy":
		return BigIntLossy, nil
	}
	return BigIntStrict, fmt.Errorf("unknown bigint policy %q (expected strict or lossy)", s)
}

// ArithmeticOp is a binary numeric operator.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
)

func (op ArithmeticOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpRemainder:
		return "%"
	}
	return "?"
}

// RelationalOp is a binary ordering operator.
type RelationalOp int

const (
	OpLess RelationalOp = iota
	OpGreater
	OpLessOrEqual
	OpGreaterOrEqual
)

func (op RelationalOp) String() string {
	switch op {
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessOrEqual:
		return "<="
	case OpGreaterOrEqual:
		return ">="
	}
	return "?"
}

// Operators applies the binary and unary operators of the host language
// under a big integer policy. The zero value uses BigIntStrict.
type Operators struct {
	Policy BigIntPolicy
}

// Add is the + operator: if either operand reduces to a string under the
// default hint, both are stringified and concatenated; otherwise the
// operands are added numerically.
func (o Operators) Add(x, y value.Value) (value.Value, error) {
	px, err := ToPrimitive(x, value.HintDefault)
	if err != nil {
		return value.Undefined(), err
	}
	py, err := ToPrimitive(y, value.HintDefault)
	if err != nil {
		return value.Undefined(), err
	}
	if px.Kind() == value.KindString || py.Kind() == value.KindString {
		sx, err := ToString(px)
		if err != nil {
			return value.Undefined(), err
		}
		sy, err := ToString(py)
		if err != nil {
			return value.Undefined(), err
		}
		return Concat(sx, sy), nil
	}
	return o.Arithmetic(OpAdd, px, py)
}

// Concat joins two string values.
func Concat(x, y value.Value) value.Value {
	a, _ := x.AsUnits()
	b, _ := y.AsUnits()
	return value.StringFromUnits(slices.Concat(a, b))
}

func (o Operators) Subtract(x, y value.Value) (value.Value, error) {
	return o.Arithmetic(OpSubtract, x, y)
}

func (o Operators) Multiply(x, y value.Value) (value.Value, error) {
	return o.Arithmetic(OpMultiply, x, y)
}

func (o Operators) Divide(x, y value.Value) (value.Value, error) {
	return o.Arithmetic(OpDivide, x, y)
}

func (o Operators) Remainder(x, y value.Value) (value.Value, error) {
	return o.Arithmetic(OpRemainder, x, y)
}

// Arithmetic converts both operands with ToNumeric and applies op. Two big
// integers produce a big integer; mixing a big integer with a number is
// governed by the policy.
func (o Operators) Arithmetic(op ArithmeticOp, x, y value.Value) (value.Value, error) {
	nx, err := ToNumeric(x)
	if err != nil {
		return value.Undefined(), err
	}
	ny, err := ToNumeric(y)
	if err != nil {
		return value.Undefined(), err
	}

	bx, xBig := nx.AsBigInt()
	by, yBig := ny.AsBigInt()
	switch {
	case xBig && yBig:
		return bigArithmetic(op, bx, by)
	case xBig || yBig:
		if o.Policy != BigIntLossy {
			return value.Undefined(), conversionError(op.String(), value.KindBigInt,
				fmt.Errorf("%w: cannot mix bigint and number", ErrNotConvertible))
		}
		if xBig {
			nx = value.Number(bigIntToFloat(bx))
		} else {
			ny = value.Number(bigIntToFloat(by))
		}
	}

	a, _ := nx.AsNumber()
	b, _ := ny.AsNumber()
	switch op {
	case OpAdd:
		return value.Number(a + b), nil
	case OpSubtract:
		return value.Number(a - b), nil
	case OpMultiply:
		return value.Number(a * b), nil
	case OpDivide:
		return value.Number(a / b), nil
	case OpRemainder:
		return value.Number(math.Mod(a, b)), nil
	}
	return value.Undefined(), fmt.Errorf("unknown arithmetic operator %d", op)
}

func bigArithmetic(op ArithmeticOp, a, b *big.Int) (value.Value, error) {
	z := new(big.Int)
	switch op {
	case OpAdd:
		z.Add(a, b)
	case OpSubtract:
		z.Sub(a, b)
	case OpMultiply:
		z.Mul(a, b)
	case OpDivide, OpRemainder:
		if b.Sign() == 0 {
			return value.Undefined(), conversionError(op.String(), value.KindBigInt,
				fmt.Errorf("%w: division by zero", ErrRange))
		}
		// truncating division, remainder takes the sign of the dividend
		if op == OpDivide {
			z.Quo(a, b)
		} else {
			z.Rem(a, b)
		}
	default:
		return value.Undefined(), fmt.Errorf("unknown arithmetic operator %d", op)
	}
	return value.BigInt(z), nil
}

// Compare applies a relational operator. Two strings compare by code unit;
// everything else compares numerically, and any comparison involving NaN is
// false.
func (o Operators) Compare(op RelationalOp, x, y value.Value) (bool, error) {
	px, err := ToPrimitive(x, value.HintNumber)
	if err != nil {
		return false, err
	}
	py, err := ToPrimitive(y, value.HintNumber)
	if err != nil {
		return false, err
	}

	var c int
	var ok bool
	if px.Kind() == value.KindString && py.Kind() == value.KindString {
		a, _ := px.AsUnits()
		b, _ := py.AsUnits()
		c, ok = slices.Compare(a, b), true
	} else {
		c, ok, err = compareNumeric(px, py)
		if err != nil {
			return false, err
		}
	}
	if !ok {
		return false, nil
	}

	switch op {
	case OpLess:
		return c < 0, nil
	case OpGreater:
		return c > 0, nil
	case OpLessOrEqual:
		return c <= 0, nil
	case OpGreaterOrEqual:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown relational operator %d", op)
}

// compareNumeric orders two primitives numerically. ok is false when the
// result is undefined (NaN, or a string that is not an integer compared to
// a big integer).
func compareNumeric(x, y value.Value) (int, bool, error) {
	if bx, ok := x.AsBigInt(); ok {
		if y.Kind() == value.KindString {
			by, ok := StringToBigInt(y)
			if !ok {
				return 0, false, nil
			}
			return bx.Cmp(by), true, nil
		}
	}
	if by, ok := y.AsBigInt(); ok {
		if x.Kind() == value.KindString {
			bx, ok := StringToBigInt(x)
			if !ok {
				return 0, false, nil
			}
			return bx.Cmp(by), true, nil
		}
	}

	nx, err := ToNumeric(x)
	if err != nil {
		return 0, false, err
	}
	ny, err := ToNumeric(y)
	if err != nil {
		return 0, false, err
	}

	bx, xBig := nx.AsBigInt()
	by, yBig := ny.AsBigInt()
	switch {
	case xBig && yBig:
		return bx.Cmp(by), true, nil
	case xBig:
		f, _ := ny.AsNumber()
		c, ok := compareBigIntNumber(bx, f)
		return c, ok, nil
	case yBig:
		f, _ := nx.AsNumber()
		c, ok := compareBigIntNumber(by, f)
		return -c, ok, nil
	}

	a, _ := nx.AsNumber()
	b, _ := ny.AsNumber()
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, false, nil
	case a < b:
		return -1, true, nil
	case a > b:
		return 1, true, nil
	}
	return 0, true, nil
}

// Equals is the == operator.
func (o Operators) Equals(x, y value.Value) (bool, error) {
	return AbstractEquals(x, y)
}

// NotEquals is the != operator.
func (o Operators) NotEquals(x, y value.Value) (bool, error) {
	eq, err := AbstractEquals(x, y)
	return !eq, err
}

// StrictNotEquals is the !== operator.
func (o Operators) StrictNotEquals(x, y value.Value) bool {
	return !StrictEquals(x, y)
}

// UnaryPlus is the unary + operator.
func (o Operators) UnaryPlus(x value.Value) (value.Value, error) {
	f, err := ToNumber(x)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Number(f), nil
}

// Negate is the unary - operator. Big integers stay big integers.
func (o Operators) Negate(x value.Value) (value.Value, error) {
	n, err := ToNumeric(x)
	if err != nil {
		return value.Undefined(), err
	}
	if i, ok := n.AsBigInt(); ok {
		return value.BigInt(i.Neg(i)), nil
	}
	f, _ := n.AsNumber()
	return value.Number(-f), nil
}

// Not is the ! operator.
func (o Operators) Not(x value.Value) value.Value {
	return value.Bool(!ToBoolean(x))
}

// And is the && operator applied to evaluated operands: it yields x when x
// is falsy and y otherwise.
func (o Operators) And(x, y value.Value) value.Value {
	if !ToBoolean(x) {
		return x
	}
	return y
}

// Or is the || operator applied to evaluated operands: it yields x when x is
// truthy and y otherwise.
func (o Operators) Or(x, y value.Value) value.Value {
	if ToBoolean(x) {
		return x
	}
	return y
}
