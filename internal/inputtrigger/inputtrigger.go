// Package inputtrigger implements the Input-Trigger Runtime (§4.9):
// edge-detecting configured input ports into named triggers.
package inputtrigger

import (
	"github.com/not-things-modular/timeseq/internal/hostiface"
	"github.com/not-things-modular/timeseq/internal/resolve"
)

type watch struct {
	name  string
	input *resolve.InputTrigger
	above bool // last tick's voltage was >= 1.0V
}

// Runtime tracks rising-edge state for every input-trigger binding, per
// instance, reset by the engine's reset operation.
type Runtime struct {
	watches []*watch
}

func New(triggers []resolve.InputTrigger) *Runtime {
	r := &Runtime{}
	for i := range triggers {
		r.watches = append(r.watches, &watch{name: triggers[i].Id, input: &triggers[i]})
	}
	return r
}

// Reset clears edge-detection state: every input is treated as having been
// below 1.0V, so an input that is already high fires its trigger on the
// first Step after a reset.
func (r *Runtime) Reset() {
	for _, w := range r.watches {
		w.above = false
	}
}

// Step reads every bound input port and raises setTrigger for each rising
// edge (<1.0V -> >=1.0V) it detects this tick.
func (r *Runtime) Step(ports hostiface.Ports, setTrigger func(name string)) {
	for _, w := range r.watches {
		v := ports.GetInputPortVoltage(w.input.Input.Index-1, w.input.Input.ChannelOrDefault()-1)
		now := v >= 1.0
		if now && !w.above {
			setTrigger(w.name)
		}
		w.above = now
	}
}
