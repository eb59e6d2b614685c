// Package hostiface defines the narrow set of callbacks the engine pulls
// from and pushes to its host. They mirror the original core's PortReader/
// PortWriter boundary: the engine never touches audio hardware, UI, or the
// JSON layer directly, only these interfaces.
package hostiface

// Ports is pulled by the engine every tick to read port voltages and pushed
// to when an action writes an output. Indexes and channels are 0-based at
// this boundary; the script layer's 1-based indices are translated before
// reaching here.
type Ports interface {
	GetInputPortVoltage(index, channel int) float64
	GetOutputPortVoltage(index, channel int) float64
	SetOutputPortVoltage(index, channel int, voltage float64)
	SetOutputPortChannels(index, channels int)
	SetOutputPortLabel(index int, label string)
}

// SampleRate is pulled once per process call.
type SampleRate interface {
	GetSampleRate() uint32
}

// RNG supplies the uniform draws behind `rand` values. Pluggable so tests
// can inject a deterministic source.
type RNG interface {
	Float64() float64 // uniform in [0,1)
}

// Listener receives the engine's pushed lifecycle notifications. All
// methods must return promptly: they are invoked synchronously from inside
// process().
type Listener interface {
	ScriptReset()
	SegmentStarted()
	LaneLooped()
	TriggerTriggered()
	AssertFailed(name, message string, stop bool)
}

// NopListener implements Listener with no-ops, so callers that only care
// about a subset of events can embed it.
type NopListener struct{}

func (NopListener) ScriptReset()                                 {}
func (NopListener) SegmentStarted()                              {}
func (NopListener) LaneLooped()                                  {}
func (NopListener) TriggerTriggered()                            {}
func (NopListener) AssertFailed(name, message string, stop bool) {}
