package conformance

import (
	"context"
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/value"
)

func TestBuiltinSuites(t *testing.T) {
	tests, err := LoadBuiltin()
	require.NoError(t, err)
	require.NotEmpty(t, tests)

	runner := &Runner{Parallel: 4}
	results, err := runner.RunAll(context.Background(), tests)
	require.NoError(t, err)

	groups := map[string][]TestResult{}
	for _, result := range results {
		groups[result.Test.File] = append(groups[result.Test.File], result)
	}

	for file, fileResults := range groups {
		t.Run(file, func(t *testing.T) {
			for _, result := range fileResults {
				t.Run(result.Test.Test.Name, func(t *testing.T) {
					if result.Skipped {
						t.Skipf("skipped: %s", result.SkipReason)
					}
					assert.True(t, result.Passed, "%s: %v", result.Test.Test.Code, result.Error)
				})
			}
		})
	}

	stats := ComputeStats(results)
	t.Logf("%s", FormatStats(stats))
	assert.True(t, stats.OK())
}

func TestLoadDir(t *testing.T) {
	tests, err := LoadDir("testdata/good")
	require.NoError(t, err)
	require.Len(t, tests, 4)

	assert.Equal(t, "basic.yaml/add", tests[0].ID())
	assert.Equal(t, "nested/vars.yml", tests[3].File)
	assert.Equal(t, "lossy", tests[3].Suite.Policy)
	assert.Equal(t, "42", tests[3].Suite.Vars["answer"])
}

func TestLoadDirErrors(t *testing.T) {
	_, err := LoadDir("testdata/missing")
	assert.ErrorContains(t, err, "failed to read conformance directory testdata/missing")

	_, err = LoadDir("testdata/good/basic.yaml")
	assert.ErrorContains(t, err, "is not a directory")

	_, err = LoadDir("testdata/bad")
	assert.ErrorContains(t, err, "failed to parse broken.yaml")

	_, err = LoadDir("testdata/dup")
	assert.ErrorContains(t, err, `duplicate test "same"`)
}

func TestLoadFSRequiresNames(t *testing.T) {
	fsys := fstest.MapFS{
		"suites/anon.yaml":    {Data: []byte("tests: []\n")},
		"suites/unnamed.yaml": {Data: []byte("name: x\ntests:\n  - code: '1'\n")},
	}
	_, err := LoadFS(fsys, "suites")
	assert.ErrorContains(t, err, "anon.yaml: suite has no name")

	delete(fsys, "suites/anon.yaml")
	_, err = LoadFS(fsys, "suites")
	assert.ErrorContains(t, err, "unnamed.yaml: test #1 has no name")
}

func TestRunAllStats(t *testing.T) {
	tests, err := LoadDir("testdata/good")
	require.NoError(t, err)

	results, err := (&Runner{}).RunAll(context.Background(), tests)
	require.NoError(t, err)

	stats := ComputeStats(results)
	assert.Equal(t, SummaryStats{Total: 4, Passed: 2, Failed: 1, Skipped: 1}, stats)
	assert.False(t, stats.OK())
	assert.Equal(t, "2 passed, 1 failed, 1 skipped (4 total)", FormatStats(stats))
	assert.Equal(t, []string{`basic.yaml/wrong: expected 2, got "11"`}, Failures(results))
	assert.Equal(t, "not ready", results[2].SkipReason)
}

func TestRunAllCanceled(t *testing.T) {
	tests, err := LoadDir("testdata/good")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := (&Runner{}).RunAll(ctx, tests)
	assert.ErrorIs(t, err, context.Canceled)
	for _, result := range results {
		assert.True(t, result.Skipped)
	}
}

func TestRunnerPolicy(t *testing.T) {
	suite := &TestSuite{Name: "policy"}
	test := LoadedTest{File: "x.yaml", Suite: suite, Test: TestCase{
		Name:   "mixed",
		Code:   "BigInt(1) + 1",
		Expect: Expectation{Value: 2},
	}}

	result := (&Runner{}).Run(context.Background(), test)
	assert.False(t, result.Passed)
	assert.ErrorContains(t, result.Error, "unexpected error NotConvertible")

	result = (&Runner{Policy: coerce.BigIntLossy}).Run(context.Background(), test)
	assert.True(t, result.Passed, "%v", result.Error)

	test.Test.Policy = "sloppy"
	result = (&Runner{}).Run(context.Background(), test)
	assert.ErrorContains(t, result.Error, "unknown bigint policy")
}

func TestCheckExpectation(t *testing.T) {
	negZero := value.Number(math.Copysign(0, -1))

	table := []struct {
		expect Expectation
		v      value.Value
		err    error
		failed string
		name   string
	}{
		{Expectation{}, value.Null(), nil, "no expectation specified", "empty"},
		{Expectation{Error: "TypeError"}, value.Null(), nil, "expected error TypeError, got value: null", "missing-error"},
		{Expectation{Error: "RangeError"}, value.Undefined(), coerce.ErrRange, "", "error"},
		{Expectation{Error: "TypeError"}, value.Undefined(), coerce.ErrRange, "expected error TypeError, got RangeError", "wrong-error"},
		{Expectation{NaN: true}, value.NaN(), nil, "", "nan"},
		{Expectation{NaN: true}, value.String("NaN"), nil, `expected NaN, got "NaN"`, "nan-string"},
		{Expectation{NegZero: true}, negZero, nil, "", "negative-zero"},
		{Expectation{NegZero: true}, value.Number(0), nil, "expected -0, got 0", "positive-zero"},
		{Expectation{Value: 0}, negZero, nil, "expected 0, got -0", "value-uses-same-value"},
		{Expectation{Type: "bigint"}, value.BigIntFromInt64(1), nil, "", "type"},
		{Expectation{Repr: "[1]"}, value.List(value.Number(1)), nil, "", "repr"},
		{Expectation{Value: []interface{}{1, "a"}}, value.List(value.Number(1), value.String("a")), nil, "", "list"},
		{Expectation{Value: []interface{}{1}}, value.List(value.String("1")), nil, `expected [1], got ["1"]`, "list-item-kind"},
		{Expectation{Value: map[string]interface{}{}}, value.Null(), nil, "failed to convert expected value", "unsupported"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			passed, err := checkExpectation(tt.expect, tt.v, tt.err)
			if tt.failed == "" {
				assert.True(t, passed)
				assert.NoError(t, err)
			} else {
				assert.False(t, passed)
				assert.ErrorContains(t, err, tt.failed)
			}
		})
	}
}

func TestIsSkipped(t *testing.T) {
	for _, skip := range []interface{}{nil, false, ""} {
		skipped, _ := (&TestCase{Skip: skip}).IsSkipped()
		assert.False(t, skipped)
	}
	skipped, reason := (&TestCase{Skip: true}).IsSkipped()
	assert.True(t, skipped)
	assert.Equal(t, "skipped", reason)
}
