package value

import "slices"

// Atom is a unique identity token. Two atoms are equal only if they are the
// same pointer, regardless of description.
type Atom struct {
	description string
	described   bool
}

// NewAtom creates a fresh atom with the given description.
func NewAtom(description string) *Atom {
	return &Atom{description: description, described: true}
}

// NewAnonymousAtom creates a fresh atom without a description.
func NewAnonymousAtom() *Atom {
	return &Atom{}
}

// Description returns the description and whether one was given.
func (a *Atom) Description() (string, bool) {
	return a.description, a.described
}

// Hint is the preferred result type passed to a primitive conversion.
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

func (h Hint) String() string {
	switch h {
	case HintNumber:
		return "number"
	case HintString:
		return "string"
	}
	return "default"
}

// ParseHint maps "default", "number" and "string" to a Hint.
func ParseHint(s string) (Hint, bool) {
	switch s {
	case "default", "":
		return HintDefault, true
	case "number":
		return HintNumber, true
	case "string":
		return HintString, true
	}
	return HintDefault, false
}

// Hook is a conversion hook attached to an object. It may return any value,
// including another object.
type Hook func() (Value, error)

// PrimitiveHook is a hint-aware conversion hook. When present it replaces
// the ValueOf and ToString hooks entirely.
type PrimitiveHook func(hint Hint) (Value, error)

// Object is a composite value. The zero Object has no hooks and is not a
// list; it converts to "[object Object]".
type Object struct {
	ValueOf     Hook
	ToString    Hook
	ToPrimitive PrimitiveHook

	items  []Value
	isList bool

	boxed   Value
	isBoxed bool
}

// NewObject returns an object with no hooks.
func NewObject() *Object {
	return &Object{}
}

// NewList returns a list object holding a copy of items.
func NewList(items ...Value) *Object {
	return &Object{items: slices.Clone(items), isList: true}
}

// NewBoxed returns a wrapper object around a primitive, as built by
// new Number(1). The caller sets the hooks.
func NewBoxed(prim Value) *Object {
	return &Object{boxed: prim, isBoxed: true}
}

// Boxed returns the primitive held by a wrapper object.
func (o *Object) Boxed() (Value, bool) { return o.boxed, o.isBoxed }

// List returns a list value holding a copy of items.
func List(items ...Value) Value {
	return ObjectValue(NewList(items...))
}

// IsList reports whether o is an ordered list.
func (o *Object) IsList() bool { return o.isList }

// Items returns the list elements. The returned slice must not be modified.
func (o *Object) Items() []Value { return o.items }

// Push appends items to a list. A list may be pushed onto itself; the
// conversions treat such cycles as empty.
func (o *Object) Push(items ...Value) {
	o.items = append(o.items, items...)
}

// HasHooks reports whether any conversion hook is set.
func (o *Object) HasHooks() bool {
	return o.ValueOf != nil || o.ToString != nil || o.ToPrimitive != nil
}
