// Package consolehost is a standalone hostiface.Ports/hostiface.SampleRate
// implementation for driving the engine outside of a real module host, used
// by cmd/timeseqctl's run subcommand. It keeps every port's voltage in a
// plain in-memory slice and optionally logs every write.
package consolehost

import "log"

const portCount = 16

// Host is an in-memory stand-in for a module's port rack.
type Host struct {
	sampleRate uint32
	inputs     [portCount][16]float64
	outputs    [portCount][16]float64
	channels   [portCount]int
	labels     [portCount]string
	verbose    bool
}

// New builds a Host at the given sample rate. When verbose is set, every
// output write is logged.
func New(sampleRate uint32, verbose bool) *Host {
	h := &Host{sampleRate: sampleRate, verbose: verbose}
	for i := range h.channels {
		h.channels[i] = 1
	}
	return h
}

func (h *Host) GetSampleRate() uint32 { return h.sampleRate }

func (h *Host) GetInputPortVoltage(index, channel int) float64 {
	if index < 0 || index >= portCount || channel < 0 || channel >= 16 {
		return 0
	}
	return h.inputs[index][channel]
}

func (h *Host) GetOutputPortVoltage(index, channel int) float64 {
	if index < 0 || index >= portCount || channel < 0 || channel >= 16 {
		return 0
	}
	return h.outputs[index][channel]
}

func (h *Host) SetOutputPortVoltage(index, channel int, voltage float64) {
	if index < 0 || index >= portCount || channel < 0 || channel >= 16 {
		return
	}
	h.outputs[index][channel] = voltage
	if h.verbose {
		log.Printf("out[%d][%d] = %g", index, channel, voltage)
	}
}

func (h *Host) SetOutputPortChannels(index, channels int) {
	if index < 0 || index >= portCount {
		return
	}
	h.channels[index] = channels
	if h.verbose {
		log.Printf("out[%d] channels = %d", index, channels)
	}
}

func (h *Host) SetOutputPortLabel(index int, label string) {
	if index < 0 || index >= portCount {
		return
	}
	h.labels[index] = label
	if h.verbose {
		log.Printf("out[%d] label = %q", index, label)
	}
}

// SetInputPortVoltage sets the voltage that GetInputPortVoltage reports for
// an input port; an out-of-range index or channel is ignored.
func (h *Host) SetInputPortVoltage(index, channel int, voltage float64) {
	if index < 0 || index >= portCount || channel < 0 || channel >= 16 {
		return
	}
	h.inputs[index][channel] = voltage
}
