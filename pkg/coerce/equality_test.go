package coerce

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nektos/coerce/pkg/value"
)

func TestNaNLaw(t *testing.T) {
	nan := value.NaN()
	assert.False(t, StrictEquals(nan, nan))
	eq, err := AbstractEquals(nan, nan)
	assert.Nil(t, err)
	assert.False(t, eq)
	assert.True(t, SameValue(nan, nan))
	assert.True(t, SameValueZero(nan, nan))
}

func TestSignedZeroLaw(t *testing.T) {
	pos, neg := value.Number(0), value.Number(negativeZero)
	assert.True(t, StrictEquals(pos, neg))
	assert.False(t, SameValue(pos, neg))
	assert.True(t, SameValueZero(pos, neg))
	eq, err := AbstractEquals(pos, neg)
	assert.Nil(t, err)
	assert.True(t, eq)
}

func TestNullUndefinedLaw(t *testing.T) {
	for _, pair := range [][2]value.Value{
		{value.Null(), value.Undefined()},
		{value.Undefined(), value.Null()},
	} {
		eq, err := AbstractEquals(pair[0], pair[1])
		assert.Nil(t, err)
		assert.True(t, eq)
		assert.False(t, StrictEquals(pair[0], pair[1]))
	}
}

func TestStrictEquals(t *testing.T) {
	atom := value.NewAtom("a")
	obj := value.NewObject()

	table := []struct {
		x, y     value.Value
		expected bool
		name     string
	}{
		{value.String("5"), value.Number(5), false, "string-number"},
		{value.Number(5), value.Number(5), true, "numbers"},
		{value.String("ab"), value.String("ab"), true, "strings"},
		{value.Bool(true), value.Number(1), false, "boolean-number"},
		{value.BigIntFromInt64(1), value.Number(1), false, "bigint-number"},
		{value.BigIntFromInt64(1), value.BigIntFromInt64(1), true, "bigints"},
		{value.AtomValue(atom), value.AtomValue(atom), true, "same-atom"},
		{value.AtomValue(value.NewAtom("a")), value.AtomValue(value.NewAtom("a")), false, "distinct-atoms"},
		{value.ObjectValue(obj), value.ObjectValue(obj), true, "same-object"},
		{value.List(), value.List(), false, "distinct-lists"},
		{value.Undefined(), value.Undefined(), true, "undefined"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StrictEquals(tt.x, tt.y))
			assert.Equal(t, tt.expected, StrictEquals(tt.y, tt.x))
		})
	}
}

func TestAbstractEquals(t *testing.T) {
	huge, _ := new(big.Int).SetString("9007199254740993", 10)
	obj := value.NewObject()
	valueOf42 := value.NewObject()
	valueOf42.ValueOf = returning(value.Number(42))
	atom := value.NewAtom("a")
	wrapsAtom := value.NewObject()
	wrapsAtom.ValueOf = returning(value.AtomValue(atom))

	table := []struct {
		x, y     value.Value
		expected bool
		name     string
	}{
		{value.String("5"), value.Number(5), true, "string-number"},
		{value.String(""), value.Number(0), true, "empty-string-zero"},
		{value.String(" \n"), value.Number(0), true, "whitespace-zero"},
		{value.String("abc"), value.NaN(), false, "nan-string"},
		{value.String("0x10"), value.Number(16), true, "hex-string"},
		{value.Bool(true), value.Number(1), true, "true-one"},
		{value.Bool(false), value.String("0"), true, "false-string-zero"},
		{value.Bool(true), value.String("2"), false, "true-string-two"},
		{value.Null(), value.Number(0), false, "null-zero"},
		{value.Undefined(), value.Bool(false), false, "undefined-false"},
		{value.Null(), value.Bool(false), false, "null-false"},
		{value.BigIntFromInt64(10), value.String("10"), true, "bigint-string"},
		{value.BigIntFromInt64(10), value.String("1e1"), false, "bigint-exponent-string"},
		{value.BigIntFromInt64(0), value.String(""), true, "bigint-empty-string"},
		{value.BigIntFromInt64(1), value.Bool(true), true, "bigint-true"},
		{value.BigIntFromInt64(2), value.Number(2), true, "bigint-number"},
		{value.BigIntFromInt64(2), value.Number(2.5), false, "bigint-fraction"},
		{value.BigInt(huge), value.Number(9007199254740992), false, "bigint-beyond-double"},
		{value.BigIntFromInt64(1), value.NaN(), false, "bigint-nan"},
		{value.BigIntFromInt64(1), value.Number(math.Inf(1)), false, "bigint-infinity"},
		{value.ObjectValue(valueOf42), value.Number(42), true, "object-value-of"},
		{value.ObjectValue(valueOf42), value.String("42"), true, "object-string"},
		{value.ObjectValue(valueOf42), value.BigIntFromInt64(42), true, "object-bigint"},
		{value.ObjectValue(valueOf42), value.Bool(false), false, "object-boolean"},
		{value.ObjectValue(obj), value.String("[object Object]"), true, "plain-object-string"},
		{value.List(), value.String(""), true, "empty-list-empty-string"},
		{value.List(), value.Number(0), true, "empty-list-zero"},
		{value.List(), value.Bool(false), true, "empty-list-false"},
		{value.List(value.Number(1), value.Number(2)), value.String("1,2"), true, "list-string"},
		{value.ObjectValue(obj), value.ObjectValue(obj), true, "same-object"},
		{value.List(), value.List(), false, "distinct-lists"},
		{value.ObjectValue(obj), value.Null(), false, "object-null"},
		{value.ObjectValue(wrapsAtom), value.AtomValue(atom), false, "object-atom-not-coerced"},
		{value.AtomValue(atom), value.AtomValue(atom), true, "same-atom"},
		{value.AtomValue(atom), value.String("a"), false, "atom-string"},
		{value.Undefined(), value.NaN(), false, "undefined-nan"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AbstractEquals(tt.x, tt.y)
			assert.Nil(t, err)
			assert.Equal(t, tt.expected, got)

			got, err = AbstractEquals(tt.y, tt.x)
			assert.Nil(t, err)
			assert.Equal(t, tt.expected, got, "reversed")
		})
	}
}

func TestAbstractEqualsPropagatesErrors(t *testing.T) {
	bad := value.NewObject()
	bad.ValueOf = returning(value.ObjectValue(value.NewObject()))
	bad.ToString = returning(value.ObjectValue(value.NewObject()))

	_, err := AbstractEquals(value.ObjectValue(bad), value.Number(1))
	assert.ErrorIs(t, err, ErrNotAPrimitive)

	// rule 1 and rule 8 never touch the hooks
	eq, err := AbstractEquals(value.ObjectValue(bad), value.Null())
	assert.Nil(t, err)
	assert.False(t, eq)
}

func TestSameValueIsObjectIs(t *testing.T) {
	assert.True(t, ObjectIs(value.NaN(), value.NaN()))
	assert.False(t, ObjectIs(value.Number(0), value.Number(negativeZero)))
	assert.True(t, ObjectIs(value.String("a"), value.String("a")))
	assert.False(t, ObjectIs(value.String("1"), value.Number(1)))
}
