package coerce

import (
	"github.com/nektos/coerce/pkg/value"
)

// ObjectString is what an object without a ToString hook stringifies to.
const ObjectString = "[object Object]"

// ToPrimitive reduces v to a primitive. Primitives are returned unchanged.
// An object's hint-aware hook takes precedence; otherwise the default hint
// behaves like the number hint and OrdinaryToPrimitive decides the order in
// which the ValueOf and ToString hooks are tried.
func ToPrimitive(v value.Value, hint value.Hint) (value.Value, error) {
	return toPrimitive(v, hint, nil)
}

func toPrimitive(v value.Value, hint value.Hint, joining []*value.Object) (value.Value, error) {
	obj, ok := v.AsObject()
	if !ok {
		return v, nil
	}
	if obj.ToPrimitive != nil {
		result, err := obj.ToPrimitive(hint)
		if err != nil {
			return value.Undefined(), err
		}
		if result.IsObject() {
			return value.Undefined(), conversionError("ToPrimitive", value.KindObject, ErrNotAPrimitive)
		}
		return result, nil
	}
	if hint == value.HintDefault {
		hint = value.HintNumber
	}
	return ordinaryToPrimitive(obj, hint, joining)
}

// OrdinaryToPrimitive tries the object's ValueOf and ToString hooks in the
// order given by hint (ToString first only for the string hint) and returns
// the first primitive result. Absent hooks fall back to the implicit
// defaults: ValueOf yields the object itself, ToString yields
// "[object Object]" or, for lists, the joined elements.
func OrdinaryToPrimitive(obj *value.Object, hint value.Hint) (value.Value, error) {
	return ordinaryToPrimitive(obj, hint, nil)
}

func ordinaryToPrimitive(obj *value.Object, hint value.Hint, joining []*value.Object) (value.Value, error) {
	valueOf := func() (value.Value, error) {
		if obj.ValueOf != nil {
			return obj.ValueOf()
		}
		return value.ObjectValue(obj), nil
	}
	toString := func() (value.Value, error) {
		if obj.ToString != nil {
			return obj.ToString()
		}
		if obj.IsList() {
			return listToString(obj.Items(), append(joining[:len(joining):len(joining)], obj))
		}
		return value.String(ObjectString), nil
	}

	order := []value.Hook{valueOf, toString}
	if hint == value.HintString {
		order = []value.Hook{toString, valueOf}
	}
	for _, hook := range order {
		result, err := hook()
		if err != nil {
			return value.Undefined(), err
		}
		if !result.IsObject() {
			return result, nil
		}
	}
	return value.Undefined(), conversionError("OrdinaryToPrimitive", value.KindObject, ErrNotAPrimitive)
}
