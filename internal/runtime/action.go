package runtime

import (
	"github.com/not-things-modular/timeseq/internal/cond"
	"github.com/not-things-modular/timeseq/internal/resolve"
)

// RunAction executes the non-continuous action kinds (everything but
// glide/gate, which get their own per-sample handling in segment.go).
// Returns pauseRequested when a failed assertion has stop-on-fail set.
func RunAction(d *Deps, a *resolve.Action) (pauseRequested bool, err error) {
	if a.Condition != nil {
		ok, _, err := cond.Eval(d.Eval, a.Condition)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	switch {
	case a.SetValue != nil:
		v, err := d.Eval.Eval(&a.SetValue.Value)
		if err != nil {
			return false, err
		}
		d.Ports.SetOutputPortVoltage(a.SetValue.Output.Index-1, a.SetValue.Output.ChannelOrDefault()-1, v)

	case a.SetVariable != nil:
		v, err := d.Eval.Eval(&a.SetVariable.Value)
		if err != nil {
			return false, err
		}
		d.SetVariable(a.SetVariable.Name, v)

	case a.SetPolyphony != nil:
		d.Ports.SetOutputPortChannels(a.SetPolyphony.Index-1, a.SetPolyphony.Channels)

	case a.SetLabel != nil:
		d.Ports.SetOutputPortLabel(a.SetLabel.Index-1, a.SetLabel.Label)

	case a.Trigger != nil:
		d.SetTrigger(*a.Trigger)

	case a.Assert != nil:
		ok, msg, err := cond.Eval(d.Eval, &a.Assert.Expect)
		if err != nil {
			return false, err
		}
		if !ok {
			stop := a.Assert.StopOnFailOrDefault()
			d.Listener.AssertFailed(a.Assert.Name, msg, stop)
			return stop, nil
		}
	}
	return false, nil
}

// writeTarget writes a glide/gate output value to its configured output
// port or variable.
func writeTarget(d *Deps, a *resolve.Action, v float64) {
	if a.Output != nil {
		d.Ports.SetOutputPortVoltage(a.Output.Index-1, a.Output.ChannelOrDefault()-1, v)
	}
	if a.Variable != nil {
		d.SetVariable(*a.Variable, v)
	}
}
