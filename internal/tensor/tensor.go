// Package tensor implements the fixed-layout numeric interchange with the
// inference backend: the tensor value type, the encoding of a numeric
// series into the model's batched input layout, and the decoding of the
// model's output back into predicted points.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports a tensor whose buffer length does not match its
// declared shape. It indicates a model/configuration contract violation
// rather than a transient backend fault.
var ErrShapeMismatch = errors.New("tensor shape mismatch")

// Tensor is a flat float32 buffer plus its shape descriptor.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// New creates a Tensor after checking that the buffer length matches the
// product of the shape dimensions.
func New(data []float32, shape ...int64) (*Tensor, error) {
	want := NumElements(shape)
	if int64(len(data)) != want {
		return nil, fmt.Errorf("%w: buffer has %d elements, shape %v wants %d",
			ErrShapeMismatch, len(data), shape, want)
	}
	return &Tensor{Data: data, Shape: shape}, nil
}

// NumElements returns the element count implied by a shape.
func NumElements(shape []int64) int64 {
	n := int64(1)
	for _, dim := range shape {
		n *= dim
	}
	return n
}
