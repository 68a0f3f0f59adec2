// internal/window/window_test.go
package window

import (
	"encoding/json"
	"fmt"
	"testing"
)

func ts(v int64) *int64 {
	return &v
}

func TestNormalizeSortsByTimestamp(t *testing.T) {
	w := DataWindow{
		"c": {Timestamp: ts(30), Value: NumberValue(3.0)},
		"a": {Timestamp: ts(10), Value: NumberValue(1.0)},
		"b": {Timestamp: ts(20), Value: NumberValue(2.0)},
	}

	series := Normalize(w)

	expected := []float32{1.0, 2.0, 3.0}
	if len(series) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(series))
	}
	for i, v := range expected {
		if series[i] != v {
			t.Errorf("series[%d] = %f, expected %f", i, series[i], v)
		}
	}
}

func TestNormalizeDropsStringValues(t *testing.T) {
	w := DataWindow{
		"k1": {Timestamp: ts(1), Value: NumberValue(1.0)},
		"k2": {Timestamp: ts(2), Value: StringValue("bad reading")},
		"k3": {Timestamp: ts(3), Value: NumberValue(3.0)},
		"k4": {Timestamp: ts(4), Value: StringValue("offline")},
		"k5": {Timestamp: ts(5), Value: NumberValue(5.0)},
		"k6": {Timestamp: ts(6), Value: NumberValue(6.0)},
		"k7": {Timestamp: ts(7), Value: StringValue("n/a")},
		"k8": {Timestamp: ts(8), Value: NumberValue(8.0)},
	}

	series := Normalize(w)

	// 5 numeric values survive, string values leave no gaps
	expected := []float32{1.0, 3.0, 5.0, 6.0, 8.0}
	if len(series) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(series))
	}
	for i, v := range expected {
		if series[i] != v {
			t.Errorf("series[%d] = %f, expected %f", i, series[i], v)
		}
	}
}

func TestNormalizeEmptyWindow(t *testing.T) {
	series := Normalize(DataWindow{})
	if len(series) != 0 {
		t.Errorf("Expected empty series, got %d values", len(series))
	}
}

func TestNormalizeAllStringWindow(t *testing.T) {
	w := DataWindow{
		"a": {Timestamp: ts(1), Value: StringValue("x")},
		"b": {Timestamp: ts(2), Value: StringValue("y")},
	}
	series := Normalize(w)
	if len(series) != 0 {
		t.Errorf("Expected empty series, got %d values", len(series))
	}
}

func TestNormalizeEqualTimestampsKeepKeyOrder(t *testing.T) {
	w := DataWindow{
		"d": {Timestamp: ts(5), Value: NumberValue(4.0)},
		"b": {Timestamp: ts(5), Value: NumberValue(2.0)},
		"a": {Timestamp: ts(5), Value: NumberValue(1.0)},
		"c": {Timestamp: ts(5), Value: NumberValue(3.0)},
	}

	// Map iteration order is randomized; the tie-break must not be.
	for run := 0; run < 10; run++ {
		series := Normalize(w)
		expected := []float32{1.0, 2.0, 3.0, 4.0}
		for i, v := range expected {
			if series[i] != v {
				t.Fatalf("run %d: series[%d] = %f, expected %f", run, i, series[i], v)
			}
		}
	}
}

func TestNormalizeMissingTimestampsSortFirst(t *testing.T) {
	w := DataWindow{
		"a": {Timestamp: ts(10), Value: NumberValue(1.0)},
		"b": {Value: NumberValue(99.0)},
		"c": {Timestamp: ts(20), Value: NumberValue(2.0)},
	}

	series := Normalize(w)

	expected := []float32{99.0, 1.0, 2.0}
	if len(series) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(series))
	}
	for i, v := range expected {
		if series[i] != v {
			t.Errorf("series[%d] = %f, expected %f", i, series[i], v)
		}
	}
}

func TestNormalizeLargeWindow(t *testing.T) {
	w := DataWindow{}
	for i := 1; i <= 130; i++ {
		w[fmt.Sprintf("obs-%03d", i)] = Observation{
			Timestamp: ts(int64(i)),
			Value:     NumberValue(float64(i)),
		}
	}

	series := Normalize(w)

	if len(series) != 130 {
		t.Fatalf("Expected 130 values, got %d", len(series))
	}
	for i := 0; i < 130; i++ {
		if series[i] != float32(i+1) {
			t.Errorf("series[%d] = %f, expected %f", i, series[i], float32(i+1))
		}
	}
}

func TestValueUnmarshalNumber(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("42.5"), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	n, ok := v.Number()
	if !ok {
		t.Fatal("Expected numeric value")
	}
	if n != 42.5 {
		t.Errorf("Expected 42.5, got %f", n)
	}
}

func TestValueUnmarshalString(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`"sensor offline"`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	s, ok := v.Text()
	if !ok {
		t.Fatal("Expected text value")
	}
	if s != "sensor offline" {
		t.Errorf("Expected 'sensor offline', got %q", s)
	}
	if _, ok := v.Number(); ok {
		t.Error("Text value must not report as numeric")
	}
}

func TestValueUnmarshalRejectsOtherTypes(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("true"), &v); err == nil {
		t.Error("Expected error for boolean value")
	}
	if err := json.Unmarshal([]byte(`{"x":1}`), &v); err == nil {
		t.Error("Expected error for object value")
	}
}

func TestObservationJSONDecoding(t *testing.T) {
	raw := `{"timestamp": 1700000000000, "value": 21.5, "quality": "good"}`

	var obs Observation
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if obs.Timestamp == nil || *obs.Timestamp != 1700000000000 {
		t.Errorf("Unexpected timestamp: %v", obs.Timestamp)
	}
	if n, ok := obs.Value.Number(); !ok || n != 21.5 {
		t.Errorf("Unexpected value: %v", obs.Value)
	}
	if obs.Quality == nil || *obs.Quality != "good" {
		t.Errorf("Unexpected quality: %v", obs.Quality)
	}
}

func TestPredictedPointJSONOmitsAbsentFields(t *testing.T) {
	p := PredictedPoint{Value: NumberValue(1.5)}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != `{"value":1.5}` {
		t.Errorf("Unexpected JSON: %s", data)
	}
}
