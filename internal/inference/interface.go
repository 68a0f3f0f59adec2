// Package inference abstracts the model execution backend behind a narrow
// named-tensor contract so the forecast pipeline stays backend-agnostic and
// unit-testable with a fake engine.
package inference

import (
	"context"
	"errors"

	"github.com/seriesml/forecast-service/internal/tensor"
)

// Error kinds surfaced by engines. Callers distinguish them with errors.Is.
var (
	// ErrModelLoad covers a missing, unreadable or malformed model artifact.
	ErrModelLoad = errors.New("model load failed")
	// ErrGraphBuild covers backend environment or execution-context setup
	// failures.
	ErrGraphBuild = errors.New("graph build failed")
	// ErrInvocation covers failures while executing the loaded graph,
	// including bad tensor bindings.
	ErrInvocation = errors.New("inference invocation failed")
)

// Engine executes a loaded model graph against named input tensors and
// returns the requested named output tensors.
//
// Run is synchronous and all-or-nothing: it either returns every requested
// output or an error, never a partial result. Implementations must be safe
// for concurrent use; concurrent requests must never interleave writes into
// the same tensor buffers.
type Engine interface {
	Run(ctx context.Context, inputs map[string]*tensor.Tensor, outputNames []string) (map[string]*tensor.Tensor, error)

	// Close releases any resources held by the engine.
	Close() error
}
