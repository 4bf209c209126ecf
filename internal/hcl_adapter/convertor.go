package hcl_adapter

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/variable"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToArray converts a number or a rectangular nest of lists of numbers into
// an array. The nesting depth picks the declaration's dims alternative of
// that rank: a scalar for a plain number, ("env", "P") for [[1, 2]].
func (c *Converter) ToArray(v cty.Value, decl variable.Var) (array.Array, error) {
	if !v.IsWhollyKnown() || v.IsNull() {
		return array.Array{}, fmt.Errorf("value must be a known, non-null number")
	}
	shape, data, err := flatten(v)
	if err != nil {
		return array.Array{}, err
	}

	dims, ok := decl.DimsForRank(len(shape))
	if !ok {
		return array.Array{}, fmt.Errorf("variable %q does not accept values of rank %d", decl.Name, len(shape))
	}
	return array.New(dims, shape, data)
}

// flatten returns the shape and row-major data of a nested value.
func flatten(v cty.Value) ([]int, []float64, error) {
	ty := v.Type()
	if ty == cty.Number {
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, nil, err
		}
		return nil, []float64{f}, nil
	}
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, nil, fmt.Errorf("expected a number or a list, got %s", ty.FriendlyName())
	}

	n := v.LengthInt()
	shape := []int{n}
	data := []float64{}
	var inner []int
	for i, it := 0, v.ElementIterator(); it.Next(); i++ {
		_, elem := it.Element()
		elemShape, elemData, err := flatten(elem)
		if err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", i, err)
		}
		if i == 0 {
			inner = elemShape
		} else if !slices.Equal(inner, elemShape) {
			return nil, nil, fmt.Errorf("element %d: ragged nesting, shape %v differs from %v", i, elemShape, inner)
		}
		data = append(data, elemData...)
	}
	return append(shape, inner...), data, nil
}
