// Package pipeline wires the forecast stages for one request: normalize
// the observation window, encode it into the model's input layout, invoke
// the engine and decode the output tensor into predicted points.
package pipeline

import (
	"context"
	"fmt"

	"github.com/seriesml/forecast-service/internal/inference"
	"github.com/seriesml/forecast-service/internal/tensor"
	"github.com/seriesml/forecast-service/internal/window"
)

// Model describes the fixed contract of the loaded forecasting model. The
// five fields are the system's only tunables and must change together when
// the underlying model changes.
type Model struct {
	InputName        string
	OutputName       string
	BatchCount       int
	HistoryLength    int
	PredictionLength int
}

// InputShape returns the model's input tensor shape.
func (m Model) InputShape() []int64 {
	return []int64{int64(m.BatchCount), int64(m.HistoryLength), 1}
}

// OutputShape returns the model's output tensor shape.
func (m Model) OutputShape() []int64 {
	return []int64{int64(m.BatchCount), int64(m.PredictionLength), 1}
}

// Pipeline runs the window-to-forecast transformation against a fixed
// model contract. It holds no per-request state; every Handle call is
// self-contained.
type Pipeline struct {
	engine inference.Engine
	model  Model
	policy tensor.EncodePolicy
}

// New creates a Pipeline over the given engine, model contract and
// encoding policy.
func New(engine inference.Engine, model Model, policy tensor.EncodePolicy) *Pipeline {
	return &Pipeline{
		engine: engine,
		model:  model,
		policy: policy,
	}
}

// Model returns the model contract the pipeline was built with.
func (p *Pipeline) Model() Model {
	return p.model
}

// Handle transforms one observation window into a forecast. Stages run
// strictly sequentially and the first failure short-circuits the rest; no
// partial result is ever returned.
func (p *Pipeline) Handle(ctx context.Context, w window.DataWindow) (window.InferenceResult, error) {
	if p.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", inference.ErrGraphBuild)
	}

	series := window.Normalize(w)

	input, err := tensor.Encode(series, p.model.HistoryLength, p.model.BatchCount, p.policy)
	if err != nil {
		return nil, err
	}

	outputs, err := p.engine.Run(ctx,
		map[string]*tensor.Tensor{p.model.InputName: input},
		[]string{p.model.OutputName},
	)
	if err != nil {
		return nil, err
	}

	output, ok := outputs[p.model.OutputName]
	if !ok {
		return nil, fmt.Errorf("%w: engine returned no tensor named %q",
			inference.ErrInvocation, p.model.OutputName)
	}

	return tensor.Decode(output, p.model.BatchCount, p.model.PredictionLength)
}
