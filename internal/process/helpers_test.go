package process

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/phydrago/internal/array"
)

// mapScope is a minimal Scope over a plain map.
type mapScope struct {
	values map[string]array.Array
}

func (m *mapScope) Process() string { return "test" }
func (m *mapScope) Step() int { return 1 }

func (m *mapScope) Value(name string) (array.Array, error) {
	v, ok := m.values[name]
	if !ok {
		return array.Array{}, fmt.Errorf("no variable %q", name)
	}
	return v, nil
}

func (m *mapScope) Float(name string) (float64, error) {
	v, err := m.Value(name)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (m *mapScope) Int(name string) (int, error) {
	f, err := m.Float(name)
	return int(f), err
}

func (m *mapScope) Set(name string, v array.Array) error {
	m.values[name] = v
	return nil
}

func (m *mapScope) SetIndex(string, int) error { return nil }
func (m *mapScope) DimSize(string) (int, bool) { return 0, false }

func TestCommitDelta(t *testing.T) {
	s := &mapScope{values: map[string]array.Array{
		"state": array.Scalar(1.0),
		"delta": array.Scalar(0.1),
	}}
	require.NoError(t, CommitDelta(s, "state", "delta"))
	v, err := s.Float("state")
	require.NoError(t, err)
	assert.InDelta(t, 1.1, v, 1e-12)

	t.Run("missing delta", func(t *testing.T) {
		s := &mapScope{values: map[string]array.Array{"state": array.Scalar(1)}}
		assert.ErrorContains(t, CommitDelta(s, "state", "delta"), `no variable "delta"`)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		a, err := array.New([]string{"P"}, []int{2}, []float64{1, 2})
		require.NoError(t, err)
		b, err := array.New([]string{"P"}, []int{3}, []float64{1, 2, 3})
		require.NoError(t, err)
		s := &mapScope{values: map[string]array.Array{"state": a, "delta": b}}
		assert.ErrorContains(t, CommitDelta(s, "state", "delta"), "commit state += delta")
	})
}

func TestSumFluxes(t *testing.T) {
	s := &mapScope{values: map[string]array.Array{"fluxes": array.Scalar(0.4)}}
	require.NoError(t, SumFluxes(s, "fluxes", "delta", 0.5))
	v, err := s.Float("delta")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, v, 1e-12)
}
