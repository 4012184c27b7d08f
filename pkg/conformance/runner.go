package conformance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/value"
)

// TestResult is the outcome of running a single case
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
	Duration   time.Duration
}

// Runner evaluates conformance cases
type Runner struct {
	// Policy applies to cases whose suite and case leave it unset
	Policy coerce.BigIntPolicy
	// Parallel is the number of workers; below one means one
	Parallel int
}

// Run executes a single case
func (r *Runner) Run(ctx context.Context, test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{Test: test, Skipped: true, SkipReason: reason}
	}
	if err := ctx.Err(); err != nil {
		return TestResult{Test: test, Skipped: true, SkipReason: err.Error()}
	}

	start := time.Now()
	result := TestResult{Test: test}

	policy, err := r.policy(test)
	if err != nil {
		result.Error = err
		return result
	}

	vars := map[string]value.Value{}
	if test.Suite != nil {
		for name, v := range test.Suite.Vars {
			vars[name] = value.String(v)
		}
	}
	interpreter := exprparser.NewInterpreter(
		&exprparser.EvaluationEnvironment{Vars: vars},
		exprparser.Config{Policy: policy, Logger: common.Logger(ctx)},
	)

	v, evalErr := interpreter.Evaluate(test.Test.Code)
	result.Passed, result.Error = checkExpectation(test.Test.Expect, v, evalErr)
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) policy(test LoadedTest) (coerce.BigIntPolicy, error) {
	name := test.Test.Policy
	if name == "" && test.Suite != nil {
		name = test.Suite.Policy
	}
	if name == "" {
		return r.Policy, nil
	}
	return coerce.ParseBigIntPolicy(name)
}

// RunAll executes tests on r.Parallel workers. Results keep the order of
// tests. The error is only set when ctx ends the run early.
func (r *Runner) RunAll(ctx context.Context, tests []LoadedTest) ([]TestResult, error) {
	results := make([]TestResult, len(tests))
	executors := make([]common.Executor, len(tests))
	for i, test := range tests {
		i, test := i, test
		executors[i] = common.NewFieldExecutor("test", test.ID(), func(ctx context.Context) error {
			results[i] = r.Run(ctx, test)
			logger := common.Logger(ctx)
			switch {
			case results[i].Skipped:
				logger.Debugf("skipped: %s", results[i].SkipReason)
			case results[i].Passed:
				logger.Debugf("passed in %s", results[i].Duration)
			default:
				logger.Debugf("failed: %v", results[i].Error)
			}
			return nil
		})
	}
	err := common.NewParallelExecutor(r.Parallel, executors...)(ctx)
	return results, err
}

// checkExpectation reports whether v (or err) satisfies expect
func checkExpectation(expect Expectation, v value.Value, err error) (bool, error) {
	if expect.empty() {
		return false, fmt.Errorf("no expectation specified")
	}

	if expect.Error != "" {
		if err == nil {
			return false, fmt.Errorf("expected error %s, got value: %s", expect.Error, coerce.Inspect(v))
		}
		if name := exprparser.ErrorName(err); name != expect.Error {
			return false, fmt.Errorf("expected error %s, got %s: %v", expect.Error, name, err)
		}
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("unexpected error %s: %v", exprparser.ErrorName(err), err)
	}

	if expect.NaN {
		if f, ok := v.AsNumber(); !ok || !math.IsNaN(f) {
			return false, fmt.Errorf("expected NaN, got %s", coerce.Inspect(v))
		}
	}

	if expect.NegZero {
		if f, ok := v.AsNumber(); !ok || f != 0 || !math.Signbit(f) {
			return false, fmt.Errorf("expected -0, got %s", coerce.Inspect(v))
		}
	}

	if expect.Type != "" {
		if got := coerce.TypeOf(v); got != expect.Type {
			return false, fmt.Errorf("expected type %s, got %s", expect.Type, got)
		}
	}

	if expect.Repr != "" {
		if got := coerce.Inspect(v); got != expect.Repr {
			return false, fmt.Errorf("expected %s, got %s", expect.Repr, got)
		}
	}

	if expect.Value != nil {
		expected, err := convertYAMLValue(expect.Value)
		if err != nil {
			return false, fmt.Errorf("failed to convert expected value: %w", err)
		}
		if !sameValueDeep(expected, v) {
			return false, fmt.Errorf("expected %s, got %s", coerce.Inspect(expected), coerce.Inspect(v))
		}
	}

	return true, nil
}

// convertYAMLValue maps a decoded YAML scalar or sequence onto a value
func convertYAMLValue(v interface{}) (value.Value, error) {
	switch val := v.(type) {
	case int:
		return value.Number(float64(val)), nil
	case int64:
		return value.Number(float64(val)), nil
	case uint64:
		return value.Number(float64(val)), nil
	case float64:
		return value.Number(val), nil
	case string:
		return value.String(val), nil
	case bool:
		return value.Bool(val), nil
	case []interface{}:
		items := make([]value.Value, len(val))
		for i, elem := range val {
			item, err := convertYAMLValue(elem)
			if err != nil {
				return value.Undefined(), err
			}
			items[i] = item
		}
		return value.List(items...), nil
	default:
		return value.Undefined(), fmt.Errorf("unsupported YAML type: %T", v)
	}
}

// sameValueDeep is SameValue, extended to compare lists item by item
func sameValueDeep(expected, actual value.Value) bool {
	eo, ok := expected.AsObject()
	if !ok || !eo.IsList() {
		return coerce.SameValue(expected, actual)
	}
	ao, ok := actual.AsObject()
	if !ok || !ao.IsList() || len(eo.Items()) != len(ao.Items()) {
		return false
	}
	for i, item := range eo.Items() {
		if !sameValueDeep(item, ao.Items()[i]) {
			return false
		}
	}
	return true
}
