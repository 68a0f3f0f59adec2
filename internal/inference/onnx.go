package inference

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/seriesml/forecast-service/internal/tensor"
)

// ONNX runs a single-input, single-output ONNX model through the
// onnxruntime shared library. It implements the Engine interface.
//
// The session is created once and reused for the lifetime of the process;
// the mutex serializes invocations so concurrent requests never share
// tensor bindings. Reusing the session is a performance optimization only,
// each Run is observably stateless.
type ONNX struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputName  string
	outputShape []int64
}

// NewONNX loads the model at modelPath and prepares a session binding the
// given input and output tensor names. outputShape is the full output
// shape, e.g. [16, 24, 1]; the backend needs it up front to allocate the
// result buffer.
func NewONNX(modelPath, inputName, outputName string, outputShape []int64) (*ONNX, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: initializing onnxruntime environment: %v", ErrGraphBuild, err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		nil, // default session options, CPU execution
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating session for %s: %v", ErrModelLoad, modelPath, err)
	}

	return &ONNX{
		session:     session,
		inputName:   inputName,
		outputName:  outputName,
		outputShape: outputShape,
	}, nil
}

// Run executes the model. Exactly one input bound to the configured input
// name is accepted, and exactly the configured output name may be
// requested; anything else is a binding error.
func (e *ONNX) Run(ctx context.Context, inputs map[string]*tensor.Tensor, outputNames []string) (map[string]*tensor.Tensor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, fmt.Errorf("%w: session is closed", ErrInvocation)
	}

	in, ok := inputs[e.inputName]
	if !ok || len(inputs) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one input named %q", ErrInvocation, e.inputName)
	}
	if len(outputNames) != 1 || outputNames[0] != e.outputName {
		return nil, fmt.Errorf("%w: expected exactly one output named %q", ErrInvocation, e.outputName)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(in.Shape...), in.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: creating input tensor: %v", ErrInvocation, err)
	}
	defer inputTensor.Destroy()

	outputData := make([]float32, tensor.NumElements(e.outputShape))
	outputTensor, err := ort.NewTensor(ort.NewShape(e.outputShape...), outputData)
	if err != nil {
		return nil, fmt.Errorf("%w: creating output tensor: %v", ErrInvocation, err)
	}
	defer outputTensor.Destroy()

	if err := e.session.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}

	// Copy out before the backing tensor is destroyed.
	result := make([]float32, len(outputData))
	copy(result, outputTensor.GetData())

	out, err := tensor.New(result, append([]int64(nil), e.outputShape...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	return map[string]*tensor.Tensor{e.outputName: out}, nil
}

// Close destroys the session and tears down the onnxruntime environment.
func (e *ONNX) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		if err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return ort.DestroyEnvironment()
}

// Ensure ONNX implements Engine at compile time
var _ Engine = (*ONNX)(nil)
