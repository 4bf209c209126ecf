package array

import (
	"fmt"
	"strings"
)

// Array is an immutable n-dimensional float64 array with named dimensions.
// The zero value is not usable; build arrays with Scalar, New, Zeros, Full
// or Range.
type Array struct {
	dims  []string
	shape []int
	data  []float64
}

// ShapeError reports incompatible dimensions between operands or between
// a shape and its data.
type ShapeError struct {
	Op     string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("array %s: %s", e.Op, e.Reason)
}

// Scalar returns a zero-dimensional array holding v.
func Scalar(v float64) Array {
	return Array{data: []float64{v}}
}

// New builds an array from dims, shape and row-major data. The data slice
// is copied.
func New(dims []string, shape []int, data []float64) (Array, error) {
	if err := validateShape("new", dims, shape); err != nil {
		return Array{}, err
	}
	if n := product(shape); n != len(data) {
		return Array{}, &ShapeError{Op: "new", Reason: fmt.Sprintf("shape %v needs %d values, got %d", shape, n, len(data))}
	}
	return Array{
		dims:  append([]string(nil), dims...),
		shape: append([]int(nil), shape...),
		data:  copyFloats(data),
	}, nil
}

// Full returns an array of the given dims and shape with every element set to v.
func Full(dims []string, shape []int, v float64) (Array, error) {
	if err := validateShape("full", dims, shape); err != nil {
		return Array{}, err
	}
	data := make([]float64, product(shape))
	for i := range data {
		data[i] = v
	}
	return Array{
		dims:  append([]string(nil), dims...),
		shape: append([]int(nil), shape...),
		data:  data,
	}, nil
}

// Zeros returns a zero-filled array of the given dims and shape.
func Zeros(dims []string, shape []int) (Array, error) {
	return Full(dims, shape, 0)
}

// Range returns the one-dimensional array 0, 1, ..., n-1 along dim.
func Range(dim string, n int) (Array, error) {
	if n < 0 {
		return Array{}, &ShapeError{Op: "range", Reason: fmt.Sprintf("negative size %d for dimension %q", n, dim)}
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return Array{dims: []string{dim}, shape: []int{n}, data: data}, nil
}

// Dims returns a copy of the dimension names.
func (a Array) Dims() []string { return append([]string(nil), a.dims...) }

// Shape returns a copy of the dimension sizes.
func (a Array) Shape() []int { return append([]int(nil), a.shape...) }

// Values returns a copy of the row-major data.
func (a Array) Values() []float64 { return append([]float64(nil), a.data...) }

// Rank is the number of dimensions.
func (a Array) Rank() int { return len(a.dims) }

// Size is the number of elements.
func (a Array) Size() int { return len(a.data) }

// IsScalar reports whether a has no dimensions.
func (a Array) IsScalar() bool { return len(a.dims) == 0 && len(a.data) == 1 }

// Valid reports whether a was built by one of the package constructors.
func (a Array) Valid() bool { return a.data != nil }

// Len returns the size of dim and whether a has that dimension.
func (a Array) Len(dim string) (int, bool) {
	if i := indexOf(a.dims, dim); i >= 0 {
		return a.shape[i], true
	}
	return 0, false
}

// Float returns the value of a scalar array.
func (a Array) Float() (float64, error) {
	if !a.IsScalar() {
		return 0, &ShapeError{Op: "float", Reason: fmt.Sprintf("array with dims %v is not a scalar", a.dims)}
	}
	return a.data[0], nil
}

// At returns the element at the given per-dimension indices.
func (a Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, &ShapeError{Op: "at", Reason: fmt.Sprintf("got %d indices for rank %d", len(idx), len(a.shape))}
	}
	off := 0
	strides := rowMajorStrides(a.shape)
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			return 0, &ShapeError{Op: "at", Reason: fmt.Sprintf("index %d out of range for dimension %q of size %d", i, a.dims[d], a.shape[d])}
		}
		off += i * strides[d]
	}
	return a.data[off], nil
}

// HasDims reports whether a has exactly the given dimensions, in order.
func (a Array) HasDims(dims []string) bool {
	if len(dims) != len(a.dims) {
		return false
	}
	for i := range dims {
		if dims[i] != a.dims[i] {
			return false
		}
	}
	return true
}

// Equal reports whether a and b have the same dims, shape and bit-identical data.
func (a Array) Equal(b Array) bool {
	if !a.HasDims(b.dims) || len(a.data) != len(b.data) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func (a Array) String() string {
	if a.IsScalar() {
		return fmt.Sprintf("%g", a.data[0])
	}
	parts := make([]string, len(a.dims))
	for i, d := range a.dims {
		parts[i] = fmt.Sprintf("%s: %d", d, a.shape[i])
	}
	return fmt.Sprintf("<array (%s) %v>", strings.Join(parts, ", "), a.data)
}

func validateShape(op string, dims []string, shape []int) error {
	if len(dims) != len(shape) {
		return &ShapeError{Op: op, Reason: fmt.Sprintf("%d dims but %d sizes", len(dims), len(shape))}
	}
	seen := make(map[string]struct{}, len(dims))
	for i, d := range dims {
		if d == "" {
			return &ShapeError{Op: op, Reason: "empty dimension name"}
		}
		if _, dup := seen[d]; dup {
			return &ShapeError{Op: op, Reason: fmt.Sprintf("dimension %q repeated", d)}
		}
		seen[d] = struct{}{}
		if shape[i] < 0 {
			return &ShapeError{Op: op, Reason: fmt.Sprintf("negative size %d for dimension %q", shape[i], d)}
		}
	}
	return nil
}

func copyFloats(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

func indexOf(dims []string, d string) int {
	for i, x := range dims {
		if x == d {
			return i
		}
	}
	return -1
}
