// Package duration implements the Duration Engine (§4.5): it converts a
// segment's samples/millis/beats/bars/hz duration into an integer sample
// count, carrying fractional residue across invocations of the same
// segment instance.
package duration

import (
	"fmt"

	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/script"
)

// Scale carries the timeline's optional time-scale, already defaulted.
type Scale struct {
	SampleRate int // 0 means "use the actual rate, no scaling"
	Bpm        int // 0 means "beats unavailable"
	Bpb        int // 0 means "bars unavailable"
}

// Engine accumulates fractional drift across repeated computations for one
// segment instance. A fresh Engine must be used per segment instance.
type Engine struct {
	drift float64
}

// Compute returns the integer sample count for this invocation. Durations
// never fall below 1 sample; the remaining fractional residue is folded
// into e.drift for the next call.
func (e *Engine) Compute(d *resolve.Duration, ev *evalx.Evaluator, actualRate float64, scale Scale) (int64, error) {
	raw, err := e.rawSamples(d, ev, actualRate, scale)
	if err != nil {
		return 0, err
	}

	total := raw + e.drift
	samples := int64(total)
	if samples < 1 {
		samples = 1
	}
	e.drift = total - float64(samples)
	return samples, nil
}

func (e *Engine) rawSamples(d *resolve.Duration, ev *evalx.Evaluator, actualRate float64, scale Scale) (float64, error) {
	switch {
	case d.Samples != nil || d.SamplesValue != nil:
		n, err := intOrValue(ev, d.Samples, d.SamplesValue)
		if err != nil {
			return 0, err
		}
		if scale.SampleRate > 0 {
			n = n * actualRate / float64(scale.SampleRate)
		}
		return n, nil

	case d.Millis != nil || d.MillisValue != nil:
		n, err := floatOrValue(ev, d.Millis, d.MillisValue)
		if err != nil {
			return 0, err
		}
		return n * actualRate / 1000, nil

	case d.Hz != nil || d.HzValue != nil:
		n, err := floatOrValue(ev, d.Hz, d.HzValue)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("duration hz is zero")
		}
		return actualRate / n, nil

	case d.Beats != nil || d.BeatsValue != nil:
		if scale.Bpm == 0 {
			return 0, fmt.Errorf("duration uses beats but timeline has no bpm")
		}
		beats, err := floatOrValue(ev, d.Beats, d.BeatsValue)
		if err != nil {
			return 0, err
		}
		totalBeats := beats
		if d.Bars != nil {
			if scale.Bpb == 0 {
				return 0, fmt.Errorf("duration uses bars but timeline has no bpb")
			}
			totalBeats += float64(*d.Bars) * float64(scale.Bpb)
		}
		return totalBeats * 60 * actualRate / float64(scale.Bpm), nil

	default:
		return 0, fmt.Errorf("duration has no unit set")
	}
}

func intOrValue(ev *evalx.Evaluator, literal *int64, value *script.Value) (float64, error) {
	if value != nil {
		return ev.Eval(value)
	}
	return float64(*literal), nil
}

func floatOrValue(ev *evalx.Evaluator, literal *float64, value *script.Value) (float64, error) {
	if value != nil {
		return ev.Eval(value)
	}
	return *literal, nil
}
