package exprparser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/parser"
	"github.com/robertkrimen/otto/token"
	log "github.com/sirupsen/logrus"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/value"
)

var (
	// ErrSyntax is returned when the input does not parse as a single
	// expression.
	ErrSyntax = errors.New("syntax error")

	// ErrNotDefined is returned for a reference to an unknown identifier.
	ErrNotDefined = errors.New("not defined")

	// ErrUnsupported is returned for constructs outside the evaluated
	// subset, such as assignments or loops.
	ErrUnsupported = errors.New("unsupported")

	// ErrType is returned for operations on values of the wrong kind, such
	// as reading a property of undefined or calling a non-function.
	ErrType = errors.New("type error")

	// ErrCallDepth is returned when hooks recurse too deeply.
	ErrCallDepth = errors.New("maximum call depth exceeded")
)

const maxCallDepth = 200

type EvaluationEnvironment struct {
	Vars map[string]value.Value
}

type Config struct {
	// Policy decides how mixed big integer and number arithmetic behaves.
	Policy coerce.BigIntPolicy
	Logger log.FieldLogger
}

type Interpreter interface {
	Evaluate(input string) (value.Value, error)
}

type interperterImpl struct {
	env    *EvaluationEnvironment
	config Config
	logger log.FieldLogger
}

func NewInterpreter(env *EvaluationEnvironment, config Config) Interpreter {
	if env == nil {
		env = &EvaluationEnvironment{}
	}
	logger := config.Logger
	if logger == nil {
		discard := log.New()
		discard.Out = io.Discard
		logger = discard
	}
	return &interperterImpl{
		env:    env,
		config: config,
		logger: logger,
	}
}

// evaluation holds the state of a single Evaluate call. Objects created by
// the expression keep a reference to it through their hooks, so it outlives
// the call when such an object is returned.
type evaluation struct {
	impl   *interperterImpl
	ops    coerce.Operators
	props  map[*value.Object]map[string]member
	depth  int
	source string
}

// member is an object property: either a plain value or a method.
type member struct {
	val   value.Value
	fn    *ast.FunctionLiteral
	scope *scope
}

type scope struct {
	this   value.Value
	locals map[string]value.Value
	parent *scope
}

func (s *scope) lookup(name string) (value.Value, bool) {
	for ; s != nil; s = s.parent {
		if v, ok := s.locals[name]; ok {
			return v, true
		}
	}
	return value.Undefined(), false
}

func (impl *interperterImpl) Evaluate(input string) (value.Value, error) {
	impl.logger.Debugf("evaluating %q", input)

	// parenthesised so that a leading brace is an object literal, not a block
	source := "(" + input + "\n)"
	program, err := parser.ParseFile(nil, "", source, 0)
	if err != nil {
		return value.Undefined(), fmt.Errorf("%w: %s", ErrSyntax, err.Error())
	}
	if len(program.Body) != 1 {
		return value.Undefined(), fmt.Errorf("%w: expected a single expression", ErrSyntax)
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return value.Undefined(), fmt.Errorf("%w: expected an expression", ErrSyntax)
	}

	e := &evaluation{
		impl:   impl,
		ops:    coerce.Operators{Policy: impl.config.Policy},
		props:  map[*value.Object]map[string]member{},
		source: source,
	}
	result, err := e.evaluateNode(stmt.Expression, &scope{})
	if err != nil {
		impl.logger.Debugf("evaluation failed: %v", err)
		return value.Undefined(), err
	}
	impl.logger.WithField("kind", result.Kind()).Debugf("result %s", coerce.Inspect(result))
	return result, nil
}

func (e *evaluation) evaluateNode(exprNode ast.Expression, s *scope) (value.Value, error) {
	switch node := exprNode.(type) {
	case *ast.Identifier:
		return e.evaluateIdentifier(node, s)
	case *ast.BooleanLiteral:
		return value.Bool(node.Value), nil
	case *ast.NullLiteral:
		return value.Null(), nil
	case *ast.NumberLiteral:
		return evaluateNumber(node)
	case *ast.StringLiteral:
		return value.String(node.Value), nil
	case *ast.ThisExpression:
		return s.this, nil
	case *ast.ArrayLiteral:
		return e.evaluateArray(node, s)
	case *ast.ObjectLiteral:
		return e.evaluateObject(node, s)
	case *ast.DotExpression:
		left, err := e.evaluateNode(node.Left, s)
		if err != nil {
			return value.Undefined(), err
		}
		return e.getProperty(left, node.Identifier.Name)
	case *ast.BracketExpression:
		return e.evaluateBracket(node, s)
	case *ast.UnaryExpression:
		return e.evaluateUnary(node, s)
	case *ast.BinaryExpression:
		return e.evaluateBinary(node, s)
	case *ast.ConditionalExpression:
		return e.evaluateConditional(node, s)
	case *ast.SequenceExpression:
		result := value.Undefined()
		for _, expr := range node.Sequence {
			v, err := e.evaluateNode(expr, s)
			if err != nil {
				return value.Undefined(), err
			}
			result = v
		}
		return result, nil
	case *ast.CallExpression:
		return e.evaluateFuncCall(node, s)
	case *ast.NewExpression:
		return e.evaluateNew(node, s)
	case *ast.FunctionLiteral:
		return value.Undefined(), fmt.Errorf("%w: functions are only allowed as object methods", ErrUnsupported)
	default:
		return value.Undefined(), fmt.Errorf("%w: %s", ErrUnsupported, reflect.TypeOf(exprNode).Elem().Name())
	}
}

func evaluateNumber(node *ast.NumberLiteral) (value.Value, error) {
	switch n := node.Value.(type) {
	case int64:
		return value.Number(float64(n)), nil
	case float64:
		return value.Number(n), nil
	}
	return value.Undefined(), fmt.Errorf("%w: number literal %s", ErrSyntax, node.Literal)
}

func (e *evaluation) evaluateIdentifier(node *ast.Identifier, s *scope) (value.Value, error) {
	if v, ok := s.lookup(node.Name); ok {
		return v, nil
	}
	if v, ok := e.impl.env.Vars[node.Name]; ok {
		return v, nil
	}
	switch node.Name {
	case "undefined":
		return value.Undefined(), nil
	case "NaN":
		return value.NaN(), nil
	case "Infinity":
		return value.Number(math.Inf(1)), nil
	}
	if _, ok := builtins[node.Name]; ok {
		return value.Undefined(), fmt.Errorf("%w: %s can only be called", ErrUnsupported, node.Name)
	}
	return value.Undefined(), fmt.Errorf("%s is %w", node.Name, ErrNotDefined)
}

func (e *evaluation) evaluateArray(node *ast.ArrayLiteral, s *scope) (value.Value, error) {
	items := make([]value.Value, len(node.Value))
	for i, expr := range node.Value {
		if _, hole := expr.(*ast.EmptyExpression); hole || expr == nil {
			continue
		}
		v, err := e.evaluateNode(expr, s)
		if err != nil {
			return value.Undefined(), err
		}
		items[i] = v
	}
	return value.List(items...), nil
}

// evaluateObject builds an object. Function-valued valueOf, toString and
// "Symbol.toPrimitive" properties become the object's conversion hooks.
func (e *evaluation) evaluateObject(node *ast.ObjectLiteral, s *scope) (value.Value, error) {
	obj := value.NewObject()
	self := value.ObjectValue(obj)
	props := map[string]member{}

	for _, prop := range node.Value {
		if prop.Kind != "value" {
			return value.Undefined(), fmt.Errorf("%w: %s accessor for %q", ErrUnsupported, prop.Kind, prop.Key)
		}

		var m member
		if fn, ok := prop.Value.(*ast.FunctionLiteral); ok {
			m = member{fn: fn, scope: s}
		} else {
			v, err := e.evaluateNode(prop.Value, s)
			if err != nil {
				return value.Undefined(), err
			}
			m = member{val: v}
		}
		props[prop.Key] = m

		switch prop.Key {
		case "valueOf":
			obj.ValueOf = e.hook(self, m)
		case "toString":
			obj.ToString = e.hook(self, m)
		case "Symbol.toPrimitive":
			obj.ToPrimitive = e.primitiveHook(self, m)
		}
	}
	e.props[obj] = props
	return self, nil
}

// hook adapts a property to a conversion hook. A property that is not a
// method yields the object itself, which the conversion skips.
func (e *evaluation) hook(self value.Value, m member) value.Hook {
	if m.fn == nil {
		return func() (value.Value, error) { return self, nil }
	}
	return func() (value.Value, error) {
		return e.call(m, self, nil)
	}
}

func (e *evaluation) primitiveHook(self value.Value, m member) value.PrimitiveHook {
	if m.fn == nil {
		if m.val.IsNullish() {
			return nil
		}
		return func(value.Hint) (value.Value, error) {
			return value.Undefined(), fmt.Errorf("%w: Symbol.toPrimitive is not a function", ErrType)
		}
	}
	return func(hint value.Hint) (value.Value, error) {
		return e.call(m, self, []value.Value{value.String(hint.String())})
	}
}

func (e *evaluation) evaluateBracket(node *ast.BracketExpression, s *scope) (value.Value, error) {
	left, err := e.evaluateNode(node.Left, s)
	if err != nil {
		return value.Undefined(), err
	}
	key, err := e.evaluateNode(node.Member, s)
	if err != nil {
		return value.Undefined(), err
	}
	name, err := coerce.ToGoString(key)
	if err != nil {
		return value.Undefined(), err
	}
	return e.getProperty(left, name)
}

func (e *evaluation) getProperty(recv value.Value, name string) (value.Value, error) {
	switch recv.Kind() {
	case value.KindUndefined, value.KindNull:
		return value.Undefined(), fmt.Errorf("%w: cannot read property %q of %s", ErrType, name, recv.Kind())
	case value.KindString:
		units, _ := recv.AsUnits()
		if name == "length" {
			return value.Number(float64(len(units))), nil
		}
		if i, ok := arrayIndex(name); ok && i < len(units) {
			return value.StringFromUnits(units[i : i+1]), nil
		}
	case value.KindAtom:
		if name == "description" {
			a, _ := recv.AsAtom()
			if desc, ok := a.Description(); ok {
				return value.String(desc), nil
			}
		}
	case value.KindObject:
		obj, _ := recv.AsObject()
		if prim, ok := obj.Boxed(); ok {
			return e.getProperty(prim, name)
		}
		if obj.IsList() {
			items := obj.Items()
			if name == "length" {
				return value.Number(float64(len(items))), nil
			}
			if i, ok := arrayIndex(name); ok && i < len(items) {
				return items[i], nil
			}
		}
		if m, ok := e.props[obj][name]; ok {
			if m.fn != nil {
				return value.Undefined(), fmt.Errorf("%w: method %s can only be called", ErrUnsupported, name)
			}
			return m.val, nil
		}
	case value.KindBoolean, value.KindNumber, value.KindBigInt:
	}
	return value.Undefined(), nil
}

// arrayIndex accepts only canonical non-negative integers, so "01" is a
// plain property name.
func arrayIndex(name string) (int, bool) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || strconv.Itoa(i) != name {
		return 0, false
	}
	return i, true
}

func (e *evaluation) evaluateUnary(node *ast.UnaryExpression, s *scope) (value.Value, error) {
	if node.Operator == token.TYPEOF {
		// typeof tolerates undeclared identifiers
		if ident, ok := node.Operand.(*ast.Identifier); ok {
			v, err := e.evaluateIdentifier(ident, s)
			if errors.Is(err, ErrNotDefined) {
				return value.String("undefined"), nil
			}
			if err != nil {
				return value.Undefined(), err
			}
			return value.String(coerce.TypeOf(v)), nil
		}
	}

	operand, err := e.evaluateNode(node.Operand, s)
	if err != nil {
		return value.Undefined(), err
	}

	switch node.Operator {
	case token.PLUS:
		return e.ops.UnaryPlus(operand)
	case token.MINUS:
		return e.ops.Negate(operand)
	case token.NOT:
		return e.ops.Not(operand), nil
	case token.TYPEOF:
		return value.String(coerce.TypeOf(operand)), nil
	case token.VOID:
		return value.Undefined(), nil
	default:
		return value.Undefined(), fmt.Errorf("%w: unary operator %s", ErrUnsupported, node.Operator)
	}
}

func (e *evaluation) evaluateBinary(node *ast.BinaryExpression, s *scope) (value.Value, error) {
	node = e.leftAssociate(node)
	left, err := e.evaluateNode(node.Left, s)
	if err != nil {
		return value.Undefined(), err
	}

	switch node.Operator {
	case token.LOGICAL_AND:
		if !coerce.ToBoolean(left) {
			return left, nil
		}
		return e.evaluateNode(node.Right, s)
	case token.LOGICAL_OR:
		if coerce.ToBoolean(left) {
			return left, nil
		}
		return e.evaluateNode(node.Right, s)
	}

	right, err := e.evaluateNode(node.Right, s)
	if err != nil {
		return value.Undefined(), err
	}

	switch node.Operator {
	case token.PLUS:
		return e.ops.Add(left, right)
	case token.MINUS:
		return e.ops.Subtract(left, right)
	case token.MULTIPLY:
		return e.ops.Multiply(left, right)
	case token.SLASH:
		return e.ops.Divide(left, right)
	case token.REMAINDER:
		return e.ops.Remainder(left, right)
	case token.LESS:
		return e.compare(coerce.OpLess, left, right)
	case token.GREATER:
		return e.compare(coerce.OpGreater, left, right)
	case token.LESS_OR_EQUAL:
		return e.compare(coerce.OpLessOrEqual, left, right)
	case token.GREATER_OR_EQUAL:
		return e.compare(coerce.OpGreaterOrEqual, left, right)
	case token.EQUAL:
		eq, err := e.ops.Equals(left, right)
		return value.Bool(eq), err
	case token.NOT_EQUAL:
		ne, err := e.ops.NotEquals(left, right)
		return value.Bool(ne), err
	case token.STRICT_EQUAL:
		return value.Bool(coerce.StrictEquals(left, right)), nil
	case token.STRICT_NOT_EQUAL:
		return value.Bool(e.ops.StrictNotEquals(left, right)), nil
	default:
		return value.Undefined(), fmt.Errorf("%w: binary operator %s", ErrUnsupported, node.Operator)
	}
}

func isRelational(tkn token.Token) bool {
	switch tkn {
	case token.LESS, token.GREATER, token.LESS_OR_EQUAL, token.GREATER_OR_EQUAL:
		return true
	}
	return false
}

// leftAssociate regroups a relational chain. The parser nests a < b < c as
// a < (b < c), but the comparisons bind to the left: (a < b) < c.
func (e *evaluation) leftAssociate(node *ast.BinaryExpression) *ast.BinaryExpression {
	for isRelational(node.Operator) {
		right, ok := node.Right.(*ast.BinaryExpression)
		if !ok || !isRelational(right.Operator) || e.parenthesised(right) {
			break
		}
		node = &ast.BinaryExpression{
			Operator: right.Operator,
			Left: &ast.BinaryExpression{
				Operator:   node.Operator,
				Left:       node.Left,
				Right:      right.Left,
				Comparison: true,
			},
			Right:      right.Right,
			Comparison: true,
		}
	}
	return node
}

// parenthesised reports whether node was written inside its own parentheses.
// Parentheses leave no trace in the tree, so the source is scanned: one of
// the opening parentheses directly before node must close after the start of
// its right operand.
func (e *evaluation) parenthesised(node *ast.BinaryExpression) bool {
	// offsets are 1-based
	start := int(node.Idx0()) - 1
	rightStart := int(node.Right.Idx0()) - 1
	if start > len(e.source) || rightStart < 0 {
		return false
	}
	for i := start - 1; i >= 0; i-- {
		switch e.source[i] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		case '(':
			if closingParen(e.source, i) > rightStart {
				return true
			}
			continue
		}
		return false
	}
	return false
}

// closingParen returns the offset of the parenthesis matching the one at
// open, skipping string literals, or len(src) when it is unbalanced.
func closingParen(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '\'', '"':
			for i++; i < len(src) && src[i] != c; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		}
	}
	return len(src)
}

func (e *evaluation) compare(op coerce.RelationalOp, left, right value.Value) (value.Value, error) {
	result, err := e.ops.Compare(op, left, right)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Bool(result), nil
}

func (e *evaluation) evaluateConditional(node *ast.ConditionalExpression, s *scope) (value.Value, error) {
	test, err := e.evaluateNode(node.Test, s)
	if err != nil {
		return value.Undefined(), err
	}
	if coerce.ToBoolean(test) {
		return e.evaluateNode(node.Consequent, s)
	}
	return e.evaluateNode(node.Alternate, s)
}

// call runs a method body with this bound to self and the parameters bound
// to args. Missing arguments are undefined.
func (e *evaluation) call(m member, self value.Value, args []value.Value) (value.Value, error) {
	if e.depth >= maxCallDepth {
		return value.Undefined(), ErrCallDepth
	}
	e.depth++
	defer func() { e.depth-- }()

	locals := map[string]value.Value{}
	if m.fn.ParameterList != nil {
		for i, param := range m.fn.ParameterList.List {
			if i < len(args) {
				locals[param.Name] = args[i]
			} else {
				locals[param.Name] = value.Undefined()
			}
		}
	}
	s := &scope{this: self, locals: locals, parent: m.scope}

	result, _, err := e.execute(m.fn.Body, s)
	if err != nil {
		return value.Undefined(), err
	}
	return result, nil
}

// execute runs a statement and reports whether it returned.
func (e *evaluation) execute(stmt ast.Statement, s *scope) (value.Value, bool, error) {
	switch node := stmt.(type) {
	case *ast.BlockStatement:
		for _, inner := range node.List {
			result, returned, err := e.execute(inner, s)
			if err != nil || returned {
				return result, returned, err
			}
		}
		return value.Undefined(), false, nil
	case *ast.ReturnStatement:
		if node.Argument == nil {
			return value.Undefined(), true, nil
		}
		result, err := e.evaluateNode(node.Argument, s)
		return result, err == nil, err
	case *ast.ExpressionStatement:
		_, err := e.evaluateNode(node.Expression, s)
		return value.Undefined(), false, err
	case *ast.IfStatement:
		test, err := e.evaluateNode(node.Test, s)
		if err != nil {
			return value.Undefined(), false, err
		}
		if coerce.ToBoolean(test) {
			return e.execute(node.Consequent, s)
		}
		if node.Alternate != nil {
			return e.execute(node.Alternate, s)
		}
		return value.Undefined(), false, nil
	case *ast.VariableStatement:
		for _, expr := range node.List {
			decl, ok := expr.(*ast.VariableExpression)
			if !ok {
				return value.Undefined(), false, fmt.Errorf("%w: variable declaration", ErrUnsupported)
			}
			v := value.Undefined()
			if decl.Initializer != nil {
				var err error
				if v, err = e.evaluateNode(decl.Initializer, s); err != nil {
					return value.Undefined(), false, err
				}
			}
			s.locals[decl.Name] = v
		}
		return value.Undefined(), false, nil
	case *ast.EmptyStatement:
		return value.Undefined(), false, nil
	default:
		return value.Undefined(), false, fmt.Errorf("%w: %s", ErrUnsupported, reflect.TypeOf(stmt).Elem().Name())
	}
}

// ErrorName classifies err by the name a script would see it thrown as.
func ErrorName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, coerce.ErrNotConvertible):
		return "NotConvertible"
	case errors.Is(err, coerce.ErrNotAPrimitive):
		return "NotAPrimitive"
	case errors.Is(err, coerce.ErrRange), errors.Is(err, ErrCallDepth):
		return "RangeError"
	case errors.Is(err, ErrSyntax):
		return "SyntaxError"
	case errors.Is(err, ErrNotDefined):
		return "ReferenceError"
	case errors.Is(err, ErrType):
		return "TypeError"
	case errors.Is(err, ErrUnsupported):
		return "Unsupported"
	}
	return "Error"
}
