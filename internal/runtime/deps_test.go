package runtime

import (
	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/internal/hostiface"
	"github.com/not-things-modular/timeseq/script"
)

// countingPorts records every call it receives, directly analogous to a
// call-counting fake dependency: nothing here computes real port behavior,
// it only remembers what the runtime asked of it.
type countingPorts struct {
	in, out           map[[2]int]float64
	channelsSet       map[int]int
	labelsSet         map[int]string
}

func newCountingPorts() *countingPorts {
	return &countingPorts{
		in:          map[[2]int]float64{},
		out:         map[[2]int]float64{},
		channelsSet: map[int]int{},
		labelsSet:   map[int]string{},
	}
}

func (p *countingPorts) GetInputPortVoltage(index, channel int) float64 {
	return p.in[[2]int{index, channel}]
}
func (p *countingPorts) GetOutputPortVoltage(index, channel int) float64 {
	return p.out[[2]int{index, channel}]
}
func (p *countingPorts) SetOutputPortVoltage(index, channel int, v float64) {
	p.out[[2]int{index, channel}] = v
}
func (p *countingPorts) SetOutputPortChannels(index, channels int) { p.channelsSet[index] = channels }
func (p *countingPorts) SetOutputPortLabel(index int, label string) { p.labelsSet[index] = label }

// countingListener records which lifecycle notifications fired and how
// many times, the same shape as the teacher's call-counting engine fake.
type countingListener struct {
	resets, segmentStarts, laneLoops, triggers int
	asserts                                    []assertCall
}

type assertCall struct {
	name, message string
	stop          bool
}

func (l *countingListener) ScriptReset()      { l.resets++ }
func (l *countingListener) SegmentStarted()   { l.segmentStarts++ }
func (l *countingListener) LaneLooped()       { l.laneLoops++ }
func (l *countingListener) TriggerTriggered() { l.triggers++ }
func (l *countingListener) AssertFailed(name, message string, stop bool) {
	l.asserts = append(l.asserts, assertCall{name, message, stop})
}

type fakeVariables map[string]float64

func (v fakeVariables) Variable(name string) float64 { return v[name] }

type fakeTunings struct{}

func (fakeTunings) Tuning(id string) (*script.Tuning, bool) { return nil, false }

type fixedRNG struct{}

func (fixedRNG) Float64() float64 { return 0 }

// testState collects the mutable side-channels a Deps closure writes into,
// so a test can inspect them after exercising the runtime.
type testState struct {
	vars     map[string]float64
	triggers []string
}

func newTestDeps() (*Deps, *countingPorts, *countingListener, *testState) {
	ports := newCountingPorts()
	listener := &countingListener{}
	st := &testState{vars: map[string]float64{}}
	d := &Deps{
		Eval: &evalx.Evaluator{
			Ports:     ports,
			RNG:       fixedRNG{},
			Variables: fakeVariables{},
			Tunings:   fakeTunings{},
		},
		Ports:       ports,
		Listener:    listener,
		SetVariable: func(name string, value float64) { st.vars[name] = value },
		SetTrigger:  func(name string) { st.triggers = append(st.triggers, name) },
	}
	return d, ports, listener, st
}

var _ hostiface.Listener = (*countingListener)(nil)
var _ hostiface.Ports = (*countingPorts)(nil)
