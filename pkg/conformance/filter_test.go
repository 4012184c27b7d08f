package conformance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatch(t *testing.T) {
	kases := []struct {
		patterns []string
		ids      map[string]bool
	}{
		{
			patterns: nil,
			ids:      map[string]bool{"bigint.yaml/add": true},
		},
		{
			patterns: []string{"bigint.yaml/*"},
			ids: map[string]bool{
				"bigint.yaml/add":       true,
				"equality.yaml/nan":     false,
				"nested/bigint.yaml/ok": false,
			},
		},
		{
			patterns: []string{"**/add"},
			ids: map[string]bool{
				"bigint.yaml/add":        true,
				"nested/more/x.yaml/add": true,
				"bigint.yaml/added":      false,
			},
		},
		{
			patterns: []string{"!*/mixed-*"},
			ids: map[string]bool{
				"bigint.yaml/mixed-strict": false,
				"bigint.yaml/negate":       true,
			},
		},
		{
			patterns: []string{"bigint.yaml/*", "!*/mixed-*", "*/mixed-lossy"},
			ids: map[string]bool{
				"bigint.yaml/mixed-strict": false,
				"bigint.yaml/mixed-lossy":  true,
				"bigint.yaml/negate":       true,
				"lists.yaml/mixed-lossy":   true,
				"lists.yaml/cycle":         false,
			},
		},
		{
			patterns: []string{"*/case-?", "*/[a-c]x", "*/[!0-9]y"},
			ids: map[string]bool{
				"s.yaml/case-1":  true,
				"s.yaml/case-12": false,
				"s.yaml/bx":      true,
				"s.yaml/dx":      false,
				"s.yaml/zy":      true,
				"s.yaml/7y":      false,
			},
		},
		{
			patterns: []string{"\\!bang.yaml/\\*"},
			ids: map[string]bool{
				"!bang.yaml/*":   true,
				"!bang.yaml/any": false,
			},
		},
	}

	for _, kase := range kases {
		t.Run(strings.Join(kase.patterns, ","), func(t *testing.T) {
			filter, err := NewFilter(nil, kase.patterns...)
			require.NoError(t, err)
			for id, want := range kase.ids {
				assert.Equal(t, want, filter.Match(id), id)
			}
		})
	}
}

func TestCompilePatternErrors(t *testing.T) {
	table := []struct {
		pattern string
		err     string
	}{
		{"a[]", "invalid pattern 'a[]': position 2: unexpected empty brackets '[]'"},
		{"a[bc", "invalid pattern 'a[bc': position 4: missing closing bracket ']' after '['"},
		{"a[b.]", "invalid pattern 'a[b.]': position 3: classes can only hold letters, digits, '-' and '_'"},
		{"a\\", "invalid pattern 'a\\': position 1: missing symbol after \\"},
		{"[]x[", "invalid pattern '[]x[': position 1: unexpected empty brackets '[]', position 4: missing closing bracket ']' after '['"},
	}

	for _, tt := range table {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := CompilePattern(tt.pattern)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestFilterSelect(t *testing.T) {
	tests, err := LoadDir("testdata/good")
	require.NoError(t, err)

	filter, err := NewFilter(nil, "basic.yaml/*", "!*/wrong")
	require.NoError(t, err)
	selected := filter.Select(tests)
	require.Len(t, selected, 2)
	assert.Equal(t, "basic.yaml/add", selected[0].ID())
	assert.Equal(t, "basic.yaml/disabled", selected[1].ID())

	var none *Filter
	assert.Len(t, none.Select(tests), len(tests))
}
