package runtime

import (
	"math"

	"github.com/not-things-modular/timeseq/internal/cond"
	"github.com/not-things-modular/timeseq/internal/duration"
	"github.com/not-things-modular/timeseq/internal/ease"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/script"
)

type glideState struct {
	action *resolve.Action
	active bool
	start  float64
	end    float64
}

type gateState struct {
	action   *resolve.Action
	active   bool
	switchAt int64
}

// SegmentRuntime steps one instance of a resolved segment one sample at a
// time, per §4.7. A fresh SegmentRuntime must be used per segment
// instance/visit so its duration drift and glide/gate state never leak
// across visits.
type SegmentRuntime struct {
	def   *resolve.Segment
	rate  float64
	scale duration.Scale
	dur   duration.Engine

	startIdx, endIdx, glideIdx, gateIdx []int

	length  int64
	idx     int64
	started bool

	glides []glideState
	gates  []gateState
}

func NewSegmentRuntime(def *resolve.Segment, rate float64, scale duration.Scale) *SegmentRuntime {
	sr := &SegmentRuntime{def: def, rate: rate, scale: scale}
	for i := range def.Actions {
		switch def.Actions[i].Timing {
		case script.TimingStart:
			sr.startIdx = append(sr.startIdx, i)
		case script.TimingEnd:
			sr.endIdx = append(sr.endIdx, i)
		case script.TimingGlide:
			sr.glideIdx = append(sr.glideIdx, i)
		case script.TimingGate:
			sr.gateIdx = append(sr.gateIdx, i)
		}
	}
	return sr
}

// DisableUi reports whether this segment's own disable-ui flag is set.
func (sr *SegmentRuntime) DisableUi() bool { return sr.def.DisableUi }

// Step advances the segment by one sample. done is true once this call
// processed the segment's last sample; the caller then moves on to the
// next segment in the lane. pauseRequested mirrors a failed stop-on-fail
// assertion.
func (sr *SegmentRuntime) Step(d *Deps) (done bool, pauseRequested bool, err error) {
	if !sr.started {
		sr.started = true
		for _, i := range sr.startIdx {
			p, err := RunAction(d, &sr.def.Actions[i])
			if err != nil {
				return false, false, err
			}
			if p {
				pauseRequested = true
			}
		}

		sr.length, err = sr.dur.Compute(&sr.def.Duration, d.Eval, sr.rate, sr.scale)
		if err != nil {
			return false, false, err
		}

		if err := sr.armGlides(d); err != nil {
			return false, false, err
		}
		if err := sr.armGates(d); err != nil {
			return false, false, err
		}
	}

	sr.stepGlides(d)
	sr.stepGates(d)

	if sr.idx == sr.length-1 {
		for _, i := range sr.endIdx {
			p, err := RunAction(d, &sr.def.Actions[i])
			if err != nil {
				return false, false, err
			}
			if p {
				pauseRequested = true
			}
		}
	}

	sr.idx++
	done = sr.idx >= sr.length
	return done, pauseRequested, nil
}

func (sr *SegmentRuntime) armGlides(d *Deps) error {
	sr.glides = make([]glideState, 0, len(sr.glideIdx))
	for _, i := range sr.glideIdx {
		a := &sr.def.Actions[i]
		gs := glideState{action: a}
		if a.Condition != nil {
			ok, _, err := cond.Eval(d.Eval, a.Condition)
			if err != nil {
				return err
			}
			gs.active = ok
		} else {
			gs.active = true
		}
		if gs.active {
			if a.StartValue != nil {
				v, err := d.Eval.Eval(a.StartValue)
				if err != nil {
					return err
				}
				gs.start = v
			}
			if a.EndValue != nil {
				v, err := d.Eval.Eval(a.EndValue)
				if err != nil {
					return err
				}
				gs.end = v
			}
		}
		sr.glides = append(sr.glides, gs)
	}
	return nil
}

func (sr *SegmentRuntime) armGates(d *Deps) error {
	sr.gates = make([]gateState, 0, len(sr.gateIdx))
	for _, i := range sr.gateIdx {
		a := &sr.def.Actions[i]
		gs := gateState{action: a}
		if a.Condition != nil {
			ok, _, err := cond.Eval(d.Eval, a.Condition)
			if err != nil {
				return err
			}
			gs.active = ok
		} else {
			gs.active = true
		}
		switchAt := int64(math.Floor(a.GateHighRatio * float64(sr.length)))
		if switchAt < 1 {
			switchAt = 1
		}
		gs.switchAt = switchAt
		sr.gates = append(sr.gates, gs)
	}
	return nil
}

func (sr *SegmentRuntime) stepGlides(d *Deps) {
	for _, gs := range sr.glides {
		if !gs.active {
			continue
		}
		var v float64
		if sr.idx == sr.length-1 {
			// the last sample of a glide always lands exactly on its end value,
			// regardless of the easing curve's rounding at that phase.
			v = gs.end
		} else {
			t := ease.Phase(int(sr.idx), int(sr.length))
			algorithm := string(script.EasePow)
			if gs.action.EaseAlgorithm != nil {
				algorithm = string(*gs.action.EaseAlgorithm)
			}
			factor := 0.0
			if gs.action.EaseFactor != nil {
				factor = *gs.action.EaseFactor
			}
			tp := ease.Apply(algorithm, factor, t)
			v = gs.start + (gs.end-gs.start)*tp
		}
		writeTarget(d, gs.action, v)
	}
}

func (sr *SegmentRuntime) stepGates(d *Deps) {
	for _, gs := range sr.gates {
		if !gs.active || gs.action.Output == nil {
			continue
		}
		v := 10.0
		if sr.idx >= gs.switchAt {
			v = 0
		}
		d.Ports.SetOutputPortVoltage(gs.action.Output.Index-1, gs.action.Output.ChannelOrDefault()-1, v)
	}
}
