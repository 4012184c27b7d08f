package exprparser

import (
	"fmt"
	"sort"

	"github.com/robertkrimen/otto/ast"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/value"
)

type builtin func(e *evaluation, args []value.Value) (value.Value, error)

// arg returns the i-th argument or undefined.
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined()
}

var builtins = map[string]builtin{
	"Number": func(_ *evaluation, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		return coerce.ExplicitNumber(args[0])
	},
	"String": func(_ *evaluation, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.String(""), nil
		}
		return coerce.ExplicitString(args[0])
	},
	"Boolean": func(_ *evaluation, args []value.Value) (value.Value, error) {
		return coerce.ExplicitBoolean(arg(args, 0)), nil
	},
	"BigInt": func(_ *evaluation, args []value.Value) (value.Value, error) {
		return coerce.ExplicitBigInt(arg(args, 0))
	},
	"Symbol": func(_ *evaluation, args []value.Value) (value.Value, error) {
		desc := arg(args, 0)
		if desc.IsUndefined() {
			return value.AtomValue(value.NewAnonymousAtom()), nil
		}
		s, err := coerce.ToGoString(desc)
		if err != nil {
			return value.Undefined(), err
		}
		return value.AtomValue(value.NewAtom(s)), nil
	},
	"isNaN": func(_ *evaluation, args []value.Value) (value.Value, error) {
		nan, err := coerce.IsNaN(arg(args, 0))
		return value.Bool(nan), err
	},
	"parseInt": func(_ *evaluation, args []value.Value) (value.Value, error) {
		f, err := coerce.ParseInt(arg(args, 0), arg(args, 1))
		return value.Number(f), err
	},
	"parseFloat": func(_ *evaluation, args []value.Value) (value.Value, error) {
		f, err := coerce.ParseFloat(arg(args, 0))
		return value.Number(f), err
	},
}

// staticMethods are the namespaced builtins, keyed by receiver then name.
var staticMethods = map[string]map[string]builtin{
	"Number": {
		"isNaN": func(_ *evaluation, args []value.Value) (value.Value, error) {
			return value.Bool(coerce.NumberIsNaN(arg(args, 0))), nil
		},
		"parseInt":   builtins["parseInt"],
		"parseFloat": builtins["parseFloat"],
	},
	"Object": {
		"is": func(_ *evaluation, args []value.Value) (value.Value, error) {
			return value.Bool(coerce.ObjectIs(arg(args, 0), arg(args, 1))), nil
		},
	},
	"Math": mathMethods,
}

// BuiltinNames lists the callable globals in sorted order, for completion
// and help text.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins)+len(staticMethods)*4)
	for name := range builtins {
		names = append(names, name)
	}
	for recv, methods := range staticMethods {
		for name := range methods {
			names = append(names, recv+"."+name)
		}
	}
	sort.Strings(names)
	return names
}

func (e *evaluation) evaluateArgs(exprs []ast.Expression, s *scope) ([]value.Value, error) {
	args := make([]value.Value, 0, len(exprs))
	for _, expr := range exprs {
		v, err := e.evaluateNode(expr, s)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (e *evaluation) evaluateFuncCall(funcCallNode *ast.CallExpression, s *scope) (value.Value, error) {
	switch callee := funcCallNode.Callee.(type) {
	case *ast.Identifier:
		if _, shadowed := s.lookup(callee.Name); !shadowed {
			if fn, ok := builtins[callee.Name]; ok {
				args, err := e.evaluateArgs(funcCallNode.ArgumentList, s)
				if err != nil {
					return value.Undefined(), err
				}
				return fn(e, args)
			}
		}
	case *ast.DotExpression:
		if ns, ok := callee.Left.(*ast.Identifier); ok {
			if fn, ok := staticMethods[ns.Name][callee.Identifier.Name]; ok {
				args, err := e.evaluateArgs(funcCallNode.ArgumentList, s)
				if err != nil {
					return value.Undefined(), err
				}
				return fn(e, args)
			}
		}
		recv, err := e.evaluateNode(callee.Left, s)
		if err != nil {
			return value.Undefined(), err
		}
		args, err := e.evaluateArgs(funcCallNode.ArgumentList, s)
		if err != nil {
			return value.Undefined(), err
		}
		return e.callMethod(recv, callee.Identifier.Name, args)
	case *ast.BracketExpression:
		recv, err := e.evaluateNode(callee.Left, s)
		if err != nil {
			return value.Undefined(), err
		}
		key, err := e.evaluateNode(callee.Member, s)
		if err != nil {
			return value.Undefined(), err
		}
		name, err := coerce.ToGoString(key)
		if err != nil {
			return value.Undefined(), err
		}
		args, err := e.evaluateArgs(funcCallNode.ArgumentList, s)
		if err != nil {
			return value.Undefined(), err
		}
		return e.callMethod(recv, name, args)
	}
	return value.Undefined(), fmt.Errorf("%w: callee is not a function", ErrType)
}

// callMethod invokes recv.name(args...). Object methods defined in the
// literal win; otherwise the implicit valueOf and toString apply.
func (e *evaluation) callMethod(recv value.Value, name string, args []value.Value) (value.Value, error) {
	if recv.IsNullish() {
		return value.Undefined(), fmt.Errorf("%w: cannot read property %q of %s", ErrType, name, recv.Kind())
	}

	if obj, ok := recv.AsObject(); ok {
		if m, ok := e.props[obj][name]; ok {
			if m.fn == nil {
				return value.Undefined(), fmt.Errorf("%w: %s is not a function", ErrType, name)
			}
			return e.call(m, recv, args)
		}
		if prim, ok := obj.Boxed(); ok {
			if name == "valueOf" {
				return prim, nil
			}
			return e.callMethod(prim, name, args)
		}
		switch name {
		case "valueOf":
			return recv, nil
		case "toString":
			if obj.IsList() {
				return coerce.ListToString(obj.Items())
			}
			return value.String(coerce.ObjectString), nil
		}
		return value.Undefined(), fmt.Errorf("%w: %s is not a function", ErrType, name)
	}

	switch name {
	case "valueOf":
		return recv, nil
	case "toString":
		if recv.Kind() == value.KindNumber && !arg(args, 0).IsUndefined() {
			return numberToString(recv, args[0])
		}
		return coerce.ExplicitString(recv)
	case "concat":
		if recv.Kind() == value.KindString {
			// String.prototype.concat stringifies each argument in turn
			parts := make([]string, len(args)+1)
			text, _ := recv.AsString()
			parts[0] = text
			return coerce.Interpolate(parts, args...)
		}
	}
	if method, ok := stringMethods[name]; ok && recv.Kind() == value.KindString {
		units, _ := recv.AsUnits()
		return method(units, args)
	}
	return value.Undefined(), fmt.Errorf("%w: %s.%s is not a function", ErrType, coerce.TypeOf(recv), name)
}
