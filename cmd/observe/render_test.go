package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil))
	assert.Equal(t, `"a\"b"`, formatValue(`a"b`))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t,
		`{"count": 2, "list": [1, "x", {"ok": false}]}`,
		formatValue(map[string]any{
			"list":  []any{1, "x", map[string]any{"ok": false}},
			"count": 2,
		}),
	)
}

func TestFormatValueCycle(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	assert.Contains(t, formatValue(m), "…")
}

func TestUpTo(t *testing.T) {
	assert.Equal(t, []int{1, 10, 100}, upTo(100))
	assert.Equal(t, []int{1}, upTo(0))
}

// should run every chain link once per write
func TestBenchmarkPropagate(t *testing.T) {
	res, err := benchmarkPropagate(3, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3*4*5), res.recomputes)

	res, err = benchmarkPush(2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2*5), res.recomputes)
}
