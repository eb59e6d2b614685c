package runtime

import (
	"github.com/not-things-modular/timeseq/internal/duration"
	"github.com/not-things-modular/timeseq/internal/resolve"
)

// LaneRuntime walks one lane's flat expanded segment list, per §4.7.
type LaneRuntime struct {
	def   *resolve.Lane
	rate  float64
	scale duration.Scale

	running          bool
	idx              int
	remainingRepeats int
	current          *SegmentRuntime
	pendingWrap      bool
}

func NewLaneRuntime(def *resolve.Lane, rate float64, scale duration.Scale) *LaneRuntime {
	lr := &LaneRuntime{def: def, rate: rate, scale: scale}
	lr.Reset()
	return lr
}

// Reset returns the lane to its pre-start configuration, per the engine's
// reset operation.
func (lr *LaneRuntime) Reset() {
	lr.running = lr.def.AutoStart
	lr.idx = 0
	lr.remainingRepeats = lr.def.Repeat
	lr.current = nil
	lr.pendingWrap = false
}

func (lr *LaneRuntime) Looping() bool { return lr.def.Loop }
func (lr *LaneRuntime) Running() bool { return lr.running }
func (lr *LaneRuntime) PendingWrap() bool { return lr.pendingWrap }

// ReleaseLoop performs the deferred wrap to segment 0 that a loop-locked
// timeline withheld until every looping lane reached its own end.
func (lr *LaneRuntime) ReleaseLoop(d *Deps) {
	lr.pendingWrap = false
	if !lr.def.DisableUi {
		d.Listener.LaneLooped()
	}
}

// Step advances the lane by one sample. loopLocked tells the lane to defer
// its own wrap-to-zero notification to the timeline's barrier instead of
// firing it immediately.
func (lr *LaneRuntime) Step(d *Deps, fired func(name string) bool, loopLocked bool) (pauseRequested bool, err error) {
	if len(lr.def.Segments) == 0 {
		return false, nil
	}

	stopPending := false
	if lr.def.RestartTrigger != "" && fired(lr.def.RestartTrigger) {
		lr.idx = 0
		lr.current = nil
		lr.pendingWrap = false
		lr.running = true
	} else if lr.def.StartTrigger != "" && !lr.running && fired(lr.def.StartTrigger) {
		lr.running = true
	}
	if lr.def.StopTrigger != "" && fired(lr.def.StopTrigger) {
		stopPending = true
	}

	if !lr.running || lr.pendingWrap {
		if stopPending {
			lr.running = false
		}
		return false, nil
	}

	if lr.current == nil {
		seg := lr.def.Segments[lr.idx]
		lr.current = NewSegmentRuntime(seg, lr.rate, lr.scale)
		if !seg.DisableUi && !lr.def.DisableUi {
			d.Listener.SegmentStarted()
		}
	}

	done, pause, err := lr.current.Step(d)
	if err != nil {
		return false, err
	}
	if done {
		lr.current = nil
		lr.idx++
		if lr.idx >= len(lr.def.Segments) {
			lr.idx = 0
			switch {
			case lr.def.Loop:
				if loopLocked {
					lr.pendingWrap = true
				} else if !lr.def.DisableUi {
					d.Listener.LaneLooped()
				}
			case lr.remainingRepeats > 0:
				lr.remainingRepeats--
			default:
				lr.running = false
			}
		}
	}

	if stopPending {
		lr.running = false
	}
	return pause, nil
}
