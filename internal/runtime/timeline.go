package runtime

import (
	"github.com/not-things-modular/timeseq/internal/duration"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/script"
)

// TimelineRuntime drives every lane in declaration order and implements the
// loop-lock barrier of §4.8.
type TimelineRuntime struct {
	def   *resolve.Timeline
	Lanes []*LaneRuntime
}

// ComputeScale defaults a timeline's optional time-scale into the zero-
// valued "unset" Scale the duration engine expects.
func ComputeScale(ts *script.TimeScale) duration.Scale {
	if ts == nil {
		return duration.Scale{}
	}
	var scale duration.Scale
	if ts.SampleRate != nil {
		scale.SampleRate = *ts.SampleRate
	}
	if ts.Bpm != nil {
		scale.Bpm = *ts.Bpm
	}
	if ts.Bpb != nil {
		scale.Bpb = *ts.Bpb
	}
	return scale
}

func NewTimelineRuntime(def *resolve.Timeline, sampleRate float64) *TimelineRuntime {
	scale := ComputeScale(def.TimeScale)
	lanes := make([]*LaneRuntime, len(def.Lanes))
	for i := range def.Lanes {
		lanes[i] = NewLaneRuntime(&def.Lanes[i], sampleRate, scale)
	}
	return &TimelineRuntime{def: def, Lanes: lanes}
}

func (tr *TimelineRuntime) Reset() {
	for _, lr := range tr.Lanes {
		lr.Reset()
	}
}

// Step advances every lane by one sample in declaration order, then runs
// the loop-lock barrier if this timeline has one.
func (tr *TimelineRuntime) Step(d *Deps, fired func(name string) bool) (pauseRequested bool, err error) {
	for _, lr := range tr.Lanes {
		p, err := lr.Step(d, fired, tr.def.LoopLock)
		if err != nil {
			return false, err
		}
		if p {
			pauseRequested = true
		}
	}

	if tr.def.LoopLock {
		any := false
		allReady := true
		for _, lr := range tr.Lanes {
			if lr.Looping() && lr.Running() {
				any = true
				if !lr.PendingWrap() {
					allReady = false
				}
			}
		}
		if any && allReady {
			for _, lr := range tr.Lanes {
				if lr.Looping() && lr.PendingWrap() {
					lr.ReleaseLoop(d)
				}
			}
		}
	}

	return pauseRequested, nil
}
