// Package value defines the closed set of runtime values the coercion engine
// operates on.
//
// A Value is an immutable tagged union. The zero Value is Undefined. Strings
// are sequences of UTF-16 code units, numbers are IEEE-754 doubles, big
// integers are a separate kind, atoms are unforgeable identity tokens and
// objects are composites that can reduce themselves to a primitive through
// caller-supplied hooks.
package value

import (
	"math"
	"math/big"
	"slices"
	"unicode/utf16"
)

// Kind describes which variant a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindAtom
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindAtom:
		return "atom"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// Value is a single runtime value. Values are passed by value and never
// mutated after construction.
type Value struct {
	kind Kind
	num  float64
	ref  any
}

var (
	undefinedValue = Value{kind: KindUndefined}
	nullValue      = Value{kind: KindNull}
)

// Undefined returns the undefined value.
func Undefined() Value { return undefinedValue }

// Null returns the null value.
func Null() Value { return nullValue }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBoolean, num: 1}
	}
	return Value{kind: KindBoolean}
}

// Number returns a number value. NaN, infinities and negative zero are kept
// as given.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// NaN returns the number value NaN.
func NaN() Value { return Number(math.NaN()) }

// BigInt returns a big integer value holding a copy of i.
func BigInt(i *big.Int) Value {
	return Value{kind: KindBigInt, ref: new(big.Int).Set(i)}
}

// BigIntFromInt64 returns a big integer value.
func BigIntFromInt64(i int64) Value {
	return Value{kind: KindBigInt, ref: big.NewInt(i)}
}

// String returns a string value holding the UTF-16 encoding of s.
func String(s string) Value {
	return Value{kind: KindString, ref: utf16.Encode([]rune(s))}
}

// StringFromUnits returns a string value holding a copy of the given code
// units. Unpaired surrogates are preserved.
func StringFromUnits(units []uint16) Value {
	return Value{kind: KindString, ref: slices.Clone(units)}
}

// AtomValue wraps an atom.
func AtomValue(a *Atom) Value {
	return Value{kind: KindAtom, ref: a}
}

// ObjectValue wraps an object.
func ObjectValue(o *Object) Value {
	return Value{kind: KindObject, ref: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsObject() bool    { return v.kind == KindObject }

// IsPrimitive reports whether v is anything but an object.
func (v Value) IsPrimitive() bool { return v.kind != KindObject }

// AsBool returns the boolean payload and whether v is a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.num != 0, true
}

// AsNumber returns the number payload and whether v is a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsBigInt returns a copy of the big integer payload and whether v is a big
// integer.
func (v Value) AsBigInt() (*big.Int, bool) {
	if v.kind != KindBigInt {
		return nil, false
	}
	return new(big.Int).Set(v.ref.(*big.Int)), true
}

// AsUnits returns the UTF-16 code units of a string value. The returned slice
// must not be modified.
func (v Value) AsUnits() ([]uint16, bool) {
	if v.kind != KindString {
		return nil, false
	}
	return v.ref.([]uint16), true
}

// AsString decodes a string value to Go text. Unpaired surrogates decode to
// U+FFFD.
func (v Value) AsString() (string, bool) {
	units, ok := v.AsUnits()
	if !ok {
		return "", false
	}
	return string(utf16.Decode(units)), true
}

// Len returns the number of UTF-16 code units of a string value, or 0.
func (v Value) Len() int {
	units, _ := v.AsUnits()
	return len(units)
}

// AsAtom returns the atom payload and whether v is an atom.
func (v Value) AsAtom() (*Atom, bool) {
	if v.kind != KindAtom {
		return nil, false
	}
	return v.ref.(*Atom), true
}

// AsObject returns the object payload and whether v is an object.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.ref.(*Object), true
}

// Identical reports whether a and b are the same value without any numeric
// special-casing: strings compare by content, objects and atoms by identity,
// numbers by bit pattern.
func Identical(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.num == b.num
	case KindNumber:
		return math.Float64bits(a.num) == math.Float64bits(b.num)
	case KindBigInt:
		return a.ref.(*big.Int).Cmp(b.ref.(*big.Int)) == 0
	case KindString:
		return slices.Equal(a.ref.([]uint16), b.ref.([]uint16))
	case KindAtom:
		return a.ref.(*Atom) == b.ref.(*Atom)
	case KindObject:
		return a.ref.(*Object) == b.ref.(*Object)
	}
	return false
}
