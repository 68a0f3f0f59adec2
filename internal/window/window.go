// Package window defines the time-series data model exchanged with the
// transport layer: the observation window submitted by a caller and the
// forecast returned to it.
package window

import (
	"encoding/json"
	"fmt"
)

// Value is a scalar observation value. On the wire it is either a JSON
// number or a JSON string; only numeric values participate in forecasting.
type Value struct {
	number float64
	text   string
	isText bool
}

// NumberValue creates a numeric Value.
func NumberValue(n float64) Value {
	return Value{number: n}
}

// StringValue creates a text Value.
func StringValue(s string) Value {
	return Value{text: s, isText: true}
}

// Number returns the numeric value and true if the Value is numeric.
func (v Value) Number() (float64, bool) {
	if v.isText {
		return 0, false
	}
	return v.number, true
}

// Text returns the string value and true if the Value is text.
func (v Value) Text() (string, bool) {
	if !v.isText {
		return "", false
	}
	return v.text, true
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	return fmt.Errorf("value must be a number or a string, got %s", data)
}

// MarshalJSON emits the value in its wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isText {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.number)
}

// Observation is a single timestamped data point. The timestamp is an
// ordered scalar (epoch milliseconds by convention, but only its ordering
// matters); it and the quality annotation are optional.
type Observation struct {
	Timestamp *int64  `json:"timestamp,omitempty"`
	Value     Value   `json:"value"`
	Quality   *string `json:"quality,omitempty"`
}

// DataWindow is the unordered observation collection submitted in one
// request, keyed by an opaque identifier. Chronological order is derived
// from the timestamps, never from the map itself.
type DataWindow map[string]Observation

// NumericSeries is a chronologically ascending sequence of numeric values
// with the timestamps stripped. Its length is unconstrained; the encoder
// forces it to the model's history length later.
type NumericSeries []float32

// PredictedPoint is one forecast step. The model carries no time axis, so
// predictions have no timestamp and no quality annotation.
type PredictedPoint struct {
	Timestamp *int64  `json:"timestamp,omitempty"`
	Value     Value   `json:"value"`
	Quality   *string `json:"quality,omitempty"`
}

// InferenceResult is the ordered sequence of predicted points returned for
// one request.
type InferenceResult []PredictedPoint
