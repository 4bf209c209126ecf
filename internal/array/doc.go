// Package array provides the small numeric container the engine passes
// between processes: an immutable, row-major float64 array whose axes are
// named by grid dimensions.
//
// Binary operations broadcast by dimension name rather than by position.
// The result carries the dimensions of the left operand followed by any
// dimensions only the right operand has; dimensions present on both sides
// must agree in size. A scalar (zero dimensions) broadcasts against
// anything.
//
// Arrays are values. Every operation returns a new array and no accessor
// exposes the backing slice, so an Array can be shared by reference across
// processes without copying.
package array
