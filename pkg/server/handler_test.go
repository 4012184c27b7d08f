package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/history"
	"github.com/nektos/coerce/pkg/value"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) *Result {
	t.Helper()
	res := &Result{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))
	return res
}

func TestEval(t *testing.T) {
	h := NewHandler(Options{})

	table := []struct {
		expr string
		repr string
		kind string
		typ  string
		name string
	}{
		{"'18' + { valueOf: function() { return 42 } }", `"1842"`, "string", "string", "scenario-e"},
		{"[] + {}", `"[object Object]"`, "string", "string", "list-plus-object"},
		{"[] == ![]", "true", "boolean", "boolean", "empty-list-equals-not"},
		{"null", "null", "null", "object", "null"},
		{"-0", "-0", "number", "number", "negative-zero"},
		{"BigInt(10) * BigInt(10)", "100n", "bigint", "bigint", "bigint"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(EvalRequest{Expr: tt.expr})
			rec := do(t, h, "POST", "/v1/eval", string(body))
			require.Equal(t, 200, rec.Code, rec.Body.String())
			res := decodeResult(t, rec)
			assert.Equal(t, tt.expr, res.Expr)
			assert.Equal(t, tt.repr, res.Repr)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.typ, res.Type)
			assert.Empty(t, res.Error)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	h := NewHandler(Options{})

	rec := do(t, h, "POST", "/v1/eval", `{"expr": "+Symbol('x')"}`)
	assert.Equal(t, 422, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "NotConvertible", res.ErrorName)
	assert.NotEmpty(t, res.Error)

	rec = do(t, h, "POST", "/v1/eval", `{"expr": "1 +"}`)
	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "SyntaxError", decodeResult(t, rec).ErrorName)

	rec = do(t, h, "POST", "/v1/eval", `invalid json`)
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestEvalUsesEnvironmentAndPolicy(t *testing.T) {
	h := NewHandler(Options{
		Env:    &exprparser.EvaluationEnvironment{Vars: map[string]value.Value{"port": value.String("8080")}},
		Config: exprparser.Config{Policy: coerce.BigIntLossy},
	})

	rec := do(t, h, "POST", "/v1/eval", `{"expr": "port * 1 + BigInt(1)"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	assert.Equal(t, "8081", decodeResult(t, rec).Repr)
}

func TestConvert(t *testing.T) {
	h := NewHandler(Options{})

	table := []struct {
		body string
		repr string
		name string
	}{
		{`{"expr": "[]", "to": "number"}`, "0", "empty-list-number"},
		{`{"expr": "[null]", "to": "string"}`, `""`, "null-list-string"},
		{`{"expr": "'0'", "to": "boolean"}`, "true", "zero-string-boolean"},
		{`{"expr": "({ valueOf: function() { return 1 }, toString: function() { return 'one' } })", "to": "primitive", "hint": "string"}`, `"one"`, "primitive-string-hint"},
		{`{"expr": "({ valueOf: function() { return 1 }, toString: function() { return 'one' } })", "to": "primitive"}`, "1", "primitive-default-hint"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/v1/convert", tt.body)
			require.Equal(t, 200, rec.Code, rec.Body.String())
			assert.Equal(t, tt.repr, decodeResult(t, rec).Repr)
		})
	}

	rec := do(t, h, "POST", "/v1/convert", `{"expr": "1", "to": "symbol"}`)
	assert.Equal(t, 400, rec.Code)
	rec = do(t, h, "POST", "/v1/convert", `{"expr": "1", "to": "number", "hint": "integer"}`)
	assert.Equal(t, 400, rec.Code)
	rec = do(t, h, "POST", "/v1/convert", `{"expr": "BigInt(1)", "to": "number"}`)
	assert.Equal(t, 422, rec.Code)
}

func TestEquals(t *testing.T) {
	h := NewHandler(Options{})

	rec := do(t, h, "POST", "/v1/equals", `{"left": "0", "right": "-0"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	res := &EqualsResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))
	assert.Equal(t, &EqualsResult{
		Left:          "0",
		Right:         "-0",
		Strict:        true,
		Abstract:      true,
		SameValue:     false,
		SameValueZero: true,
	}, res)

	rec = do(t, h, "POST", "/v1/equals", `{"left": "NaN", "right": "NaN"}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))
	assert.False(t, res.Strict)
	assert.False(t, res.Abstract)
	assert.True(t, res.SameValue)
	assert.True(t, res.SameValueZero)

	rec = do(t, h, "POST", "/v1/equals", `{"left": "({ valueOf: function() { return {} }, toString: function() { return {} } })", "right": "1"}`)
	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "NotAPrimitive", decodeResult(t, rec).ErrorName)
}

func TestHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	h := NewHandler(Options{History: store})

	for i := 0; i < 3; i++ {
		do(t, h, "POST", "/v1/eval", fmt.Sprintf(`{"expr": "%d + '1'"}`, i))
	}
	do(t, h, "POST", "/v1/eval", `{"expr": "undefinedThing"}`)

	rec := do(t, h, "GET", "/v1/history?limit=2", "")
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var entries []*history.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "undefinedThing", entries[0].Expr)
	assert.NotEmpty(t, entries[0].Error)
	assert.Equal(t, "2 + '1'", entries[1].Expr)
	assert.Equal(t, `"21"`, entries[1].Result)
	assert.Equal(t, history.SourceServer, entries[1].Source)

	rec = do(t, h, "GET", "/v1/history?limit=-1", "")
	assert.Equal(t, 400, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	rec := do(t, NewHandler(Options{}), "GET", "/v1/history", "")
	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error": "history is disabled"}`, rec.Body.String())
}

func TestBuiltins(t *testing.T) {
	rec := do(t, NewHandler(Options{}), "GET", "/v1/builtins", "")
	require.Equal(t, 200, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Contains(t, names, "Object.is")
}

func TestStartHandler(t *testing.T) {
	h, err := StartHandler("127.0.0.1:0", Options{})
	require.NoError(t, err)

	base := h.URL()
	resp, err := http.Post(base+"/v1/eval", "application/json", bytes.NewReader([]byte(`{"expr": "'b' + 'a' + +'a' + 'a'"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	res := &Result{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(res))
	assert.Equal(t, `"baNaNa"`, res.Repr)

	require.NoError(t, h.Close())
	assert.Equal(t, "", h.URL())
	_, err = http.Post(base+"/v1/eval", "application/json", nil)
	assert.Error(t, err)
}

func TestExecutorShutsDownOnCancel(t *testing.T) {
	h, err := StartHandler("127.0.0.1:0", Options{})
	require.NoError(t, err)
	base := h.URL()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Executor()(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	_, err = http.Get(base + "/v1/builtins")
	assert.Error(t, err)
}
