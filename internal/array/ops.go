package array

import "fmt"

// Add returns a + b with named-dimension broadcasting.
func Add(a, b Array) (Array, error) {
	return broadcast("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b with named-dimension broadcasting.
func Sub(a, b Array) (Array, error) {
	return broadcast("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns the element-wise product a * b with named-dimension broadcasting.
func Mul(a, b Array) (Array, error) {
	return broadcast("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Scale returns k * a.
func (a Array) Scale(k float64) Array {
	out := a.clone()
	for i := range out.data {
		out.data[i] *= k
	}
	return out
}

// Neg returns -a.
func (a Array) Neg() Array {
	return a.Scale(-1)
}

// Sum folds Add over arrays left to right. The sum of no arrays is the
// scalar zero.
func Sum(arrays ...Array) (Array, error) {
	if len(arrays) == 0 {
		return Scalar(0), nil
	}
	acc := arrays[0]
	for i, next := range arrays[1:] {
		var err error
		acc, err = Add(acc, next)
		if err != nil {
			return Array{}, fmt.Errorf("sum term %d: %w", i+1, err)
		}
	}
	return acc, nil
}

func (a Array) clone() Array {
	return Array{
		dims:  append([]string(nil), a.dims...),
		shape: append([]int(nil), a.shape...),
		data:  copyFloats(a.data),
	}
}

func broadcast(op string, a, b Array, fn func(x, y float64) float64) (Array, error) {
	if !a.Valid() || !b.Valid() {
		return Array{}, &ShapeError{Op: op, Reason: "uninitialized operand"}
	}

	dims := append([]string(nil), a.dims...)
	shape := append([]int(nil), a.shape...)
	for i, d := range b.dims {
		if j := indexOf(a.dims, d); j >= 0 {
			if a.shape[j] != b.shape[i] {
				return Array{}, &ShapeError{Op: op, Reason: fmt.Sprintf("dimension %q has size %d on the left and %d on the right", d, a.shape[j], b.shape[i])}
			}
			continue
		}
		dims = append(dims, d)
		shape = append(shape, b.shape[i])
	}

	aStrides := stridesWithin(dims, a)
	bStrides := stridesWithin(dims, b)
	data := make([]float64, product(shape))
	idx := make([]int, len(dims))
	for k := range data {
		ai, bi := 0, 0
		for d := range dims {
			ai += idx[d] * aStrides[d]
			bi += idx[d] * bStrides[d]
		}
		data[k] = fn(a.data[ai], b.data[bi])

		for d := len(dims) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return Array{dims: dims, shape: shape, data: data}, nil
}

// stridesWithin maps each result dimension to its stride inside arr, or 0
// when arr does not carry that dimension.
func stridesWithin(dims []string, arr Array) []int {
	own := rowMajorStrides(arr.shape)
	out := make([]int, len(dims))
	for i, d := range dims {
		if j := indexOf(arr.dims, d); j >= 0 {
			out[i] = own[j]
		}
	}
	return out
}
