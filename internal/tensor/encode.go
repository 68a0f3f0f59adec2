package tensor

import (
	"errors"
	"fmt"

	"github.com/seriesml/forecast-service/internal/window"
)

// ErrSeriesTooShort is returned by Encode under PadError when the series
// carries fewer values than the model's history length.
var ErrSeriesTooShort = errors.New("series shorter than history length")

// TruncatePolicy selects which values to discard when a series is longer
// than the model's history length.
type TruncatePolicy string

const (
	// TruncateNewest drops the values beyond historyLength, discarding the
	// most recent observations.
	TruncateNewest TruncatePolicy = "newest"
	// TruncateOldest keeps the most recent historyLength values.
	TruncateOldest TruncatePolicy = "oldest"
)

// PadPolicy selects what happens when a series is shorter than the model's
// history length.
type PadPolicy string

const (
	// PadZero right-pads the series with zeros.
	PadZero PadPolicy = "zero"
	// PadError rejects the series with ErrSeriesTooShort.
	PadError PadPolicy = "error"
)

// EncodePolicy bundles the truncation and padding tunables. Both materially
// affect forecast quality, so they live here in one place instead of being
// hard-coded in the pipeline.
type EncodePolicy struct {
	Truncate TruncatePolicy
	Pad      PadPolicy
}

// DefaultEncodePolicy matches the trained model's conventions: overflow is
// cut from the tail (most recent values discarded) and short series are
// right-padded with zeros.
func DefaultEncodePolicy() EncodePolicy {
	return EncodePolicy{Truncate: TruncateNewest, Pad: PadZero}
}

// Validate checks that both policy values are known.
func (p EncodePolicy) Validate() error {
	switch p.Truncate {
	case TruncateNewest, TruncateOldest:
	default:
		return fmt.Errorf("unknown truncate policy %q", p.Truncate)
	}
	switch p.Pad {
	case PadZero, PadError:
	default:
		return fmt.Errorf("unknown pad policy %q", p.Pad)
	}
	return nil
}

// Encode forces series to exactly historyLength elements according to
// policy, replicates it batchCount times and returns the batched input
// tensor of shape [batchCount, historyLength, 1]. The model requires
// batchCount batches but only one real series exists per request, so every
// batch slice is an identical copy.
func Encode(series window.NumericSeries, historyLength, batchCount int, policy EncodePolicy) (*Tensor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	fixed := make([]float32, historyLength)
	switch {
	case len(series) >= historyLength:
		if policy.Truncate == TruncateOldest {
			copy(fixed, series[len(series)-historyLength:])
		} else {
			copy(fixed, series[:historyLength])
		}
	default:
		if policy.Pad == PadError {
			return nil, fmt.Errorf("%w: got %d values, need %d",
				ErrSeriesTooShort, len(series), historyLength)
		}
		copy(fixed, series)
	}

	data := make([]float32, 0, historyLength*batchCount)
	for i := 0; i < batchCount; i++ {
		data = append(data, fixed...)
	}
	return New(data, int64(batchCount), int64(historyLength), 1)
}
