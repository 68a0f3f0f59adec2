package inference

import (
	"context"
	"fmt"

	"github.com/seriesml/forecast-service/internal/tensor"
)

// Mock is a deterministic Engine for tests and --mock runs. It answers
// every requested output name with a configured tensor, without requiring
// the onnxruntime shared library.
type Mock struct {
	// Output is the tensor returned for each requested output name.
	Output *tensor.Tensor
	// ShouldError if true, Run will return an error
	ShouldError bool
	// ErrorMessage is the error message to return when ShouldError is true
	ErrorMessage string
	// CallCount tracks the number of times Run was called
	CallCount int
	// LastInputs holds the inputs of the most recent Run call
	LastInputs map[string]*tensor.Tensor
}

// NewMock creates a Mock whose output has shape
// [batchCount, predictionLength, 1] with every batch holding the ramp
// 1.0, 2.0, ... predictionLength.
func NewMock(batchCount, predictionLength int) *Mock {
	data := make([]float32, batchCount*predictionLength)
	for b := 0; b < batchCount; b++ {
		for i := 0; i < predictionLength; i++ {
			data[b*predictionLength+i] = float32(i + 1)
		}
	}
	return &Mock{
		Output: &tensor.Tensor{
			Data:  data,
			Shape: []int64{int64(batchCount), int64(predictionLength), 1},
		},
	}
}

// NewMockWithOutput creates a Mock returning the given tensor.
func NewMockWithOutput(out *tensor.Tensor) *Mock {
	return &Mock{Output: out}
}

// Run records the call and returns the configured output for every
// requested name.
func (m *Mock) Run(ctx context.Context, inputs map[string]*tensor.Tensor, outputNames []string) (map[string]*tensor.Tensor, error) {
	m.CallCount++
	m.LastInputs = inputs

	if m.ShouldError {
		if m.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvocation, m.ErrorMessage)
		}
		return nil, fmt.Errorf("%w: mock inference error", ErrInvocation)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no input tensors bound", ErrInvocation)
	}
	if len(outputNames) == 0 {
		return nil, fmt.Errorf("%w: no output tensors requested", ErrInvocation)
	}

	outputs := make(map[string]*tensor.Tensor, len(outputNames))
	for _, name := range outputNames {
		outputs[name] = m.Output
	}
	return outputs, nil
}

// Close is a no-op for the mock implementation
func (m *Mock) Close() error {
	return nil
}

// SetError configures the mock to return an error on the next Run call
func (m *Mock) SetError(msg string) {
	m.ShouldError = true
	m.ErrorMessage = msg
}

// ClearError clears any configured error
func (m *Mock) ClearError() {
	m.ShouldError = false
	m.ErrorMessage = ""
}

// Ensure Mock implements Engine at compile time
var _ Engine = (*Mock)(nil)
