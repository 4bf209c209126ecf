package hcl_adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/phydrago/internal/variable"
)

func TestConverter_ToArray(t *testing.T) {
	state := variable.State("state", "").WithDims([]string{}, []string{"env", "P"})
	num := cty.NumberFloatVal

	t.Run("scalar", func(t *testing.T) {
		a, err := NewConverter().ToArray(num(1.5), variable.Input("mu", ""))
		require.NoError(t, err)
		assert.True(t, a.IsScalar())
		assert.Equal(t, []float64{1.5}, a.Values())
	})

	t.Run("scalar for a gridded state", func(t *testing.T) {
		a, err := NewConverter().ToArray(num(2), state)
		require.NoError(t, err)
		assert.True(t, a.IsScalar())
	})

	t.Run("nested tuple names dims by rank", func(t *testing.T) {
		v := cty.TupleVal([]cty.Value{cty.TupleVal([]cty.Value{num(1), num(2), num(3)})})
		a, err := NewConverter().ToArray(v, state)
		require.NoError(t, err)
		assert.Equal(t, []string{"env", "P"}, a.Dims())
		assert.Equal(t, []int{1, 3}, a.Shape())
		assert.Equal(t, []float64{1, 2, 3}, a.Values())
	})

	t.Run("list", func(t *testing.T) {
		v := cty.ListVal([]cty.Value{num(4), num(5)})
		a, err := NewConverter().ToArray(v, variable.Input("x", "").WithDims([]string{"cell"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"cell"}, a.Dims())
		assert.Equal(t, []float64{4, 5}, a.Values())
	})

	tests := []struct {
		name    string
		value   cty.Value
		decl    variable.Var
		wantErr string
	}{
		{
			name:    "rank not accepted",
			value:   cty.TupleVal([]cty.Value{num(1)}),
			decl:    state,
			wantErr: `variable "state" does not accept values of rank 1`,
		},
		{
			name: "ragged",
			value: cty.TupleVal([]cty.Value{
				cty.TupleVal([]cty.Value{num(1), num(2)}),
				cty.TupleVal([]cty.Value{num(3)}),
			}),
			decl:    state,
			wantErr: "ragged nesting",
		},
		{
			name:    "string",
			value:   cty.StringVal("high"),
			decl:    variable.Input("mu", ""),
			wantErr: "expected a number or a list, got string",
		},
		{
			name:    "null",
			value:   cty.NullVal(cty.Number),
			decl:    variable.Input("mu", ""),
			wantErr: "known, non-null",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConverter().ToArray(tc.value, tc.decl)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
