package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nektos/coerce/pkg/value"
)

func TestInspect(t *testing.T) {
	hooked := value.NewObject()
	hooked.ValueOf = returning(value.Number(1))
	hooked.ToPrimitive = func(value.Hint) (value.Value, error) { return value.Null(), nil }

	table := []struct {
		input    value.Value
		expected string
		name     string
	}{
		{value.Undefined(), "undefined", "undefined"},
		{value.Null(), "null", "null"},
		{value.Bool(false), "false", "false"},
		{value.Number(1.5), "1.5", "number"},
		{value.Number(negativeZero), "-0", "negative-zero"},
		{value.NaN(), "NaN", "nan"},
		{value.BigIntFromInt64(10), "10n", "bigint"},
		{value.String("a\"b"), `"a\"b"`, "string"},
		{value.AtomValue(value.NewAtom("id")), "Symbol(id)", "atom"},
		{value.ObjectValue(value.NewObject()), "{}", "plain-object"},
		{value.ObjectValue(hooked), "{ [Symbol.toPrimitive]: [Function], valueOf: [Function] }", "hooked-object"},
		{value.List(value.Number(1), value.String("x"), value.Null()), `[1, "x", null]`, "list"},
		{value.List(), "[]", "empty-list"},
		{value.ObjectValue(value.NewBoxed(value.Bool(false))), "[Boolean: false]", "boxed-boolean"},
		{value.ObjectValue(value.NewBoxed(value.Number(negativeZero))), "[Number: -0]", "boxed-number"},
		{value.ObjectValue(value.NewBoxed(value.String("a"))), `[String: "a"]`, "boxed-string"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Inspect(tt.input))
		})
	}
}

func TestInspectCycle(t *testing.T) {
	l := value.NewList(value.Number(1))
	l.Push(value.ObjectValue(l))
	assert.Equal(t, "[1, [Circular]]", Inspect(value.ObjectValue(l)))
}

func TestInspectNeverInvokesHooks(t *testing.T) {
	obj := value.NewObject()
	obj.ToString = func() (value.Value, error) {
		t.Fatal("hook invoked")
		return value.Undefined(), nil
	}
	assert.Equal(t, "{ toString: [Function] }", Inspect(value.ObjectValue(obj)))
}
