package tensor

import (
	"fmt"

	"github.com/seriesml/forecast-service/internal/window"
)

// Decode projects the model's output tensor onto an InferenceResult.
//
// The flat buffer is reinterpreted as [batchCount][predictionLength]; a
// buffer whose length does not match fails with ErrShapeMismatch. Only
// batch index 0 is read: all batches are replicas of the same input, so
// the rest carry no information. Each selected value becomes a
// PredictedPoint without timestamp or quality annotation.
func Decode(output *Tensor, batchCount, predictionLength int) (window.InferenceResult, error) {
	want := batchCount * predictionLength
	if len(output.Data) != want {
		return nil, fmt.Errorf("%w: output has %d elements, expected %d (%d batches x %d steps)",
			ErrShapeMismatch, len(output.Data), want, batchCount, predictionLength)
	}

	result := make(window.InferenceResult, 0, predictionLength)
	for _, v := range output.Data[:predictionLength] {
		result = append(result, window.PredictedPoint{
			Value: window.NumberValue(float64(v)),
		})
	}
	return result, nil
}
