package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// StateFloat returns a scalar from the final state of a successful run.
func StateFloat(t *testing.T, result *HarnessResult, process, name string) float64 {
	t.Helper()
	require.NoError(t, result.Err)
	require.NotNil(t, result.Document, "run wrote no document")

	vars, ok := result.Document.State[process]
	require.True(t, ok, "process %q not in final state", process)
	v, ok := vars[name]
	require.True(t, ok, "variable %s.%s not in final state", process, name)
	f, ok := v.(float64)
	require.True(t, ok, "variable %s.%s is not a scalar: %#v", process, name, v)
	return f
}

// AssertStateNear checks a scalar of the final state against want.
func AssertStateNear(t *testing.T, result *HarnessResult, process, name string, want, delta float64) {
	t.Helper()
	require.InDelta(t, want, StateFloat(t, result, process, name), delta, "%s.%s", process, name)
}
