package resolve

import (
	"fmt"

	"github.com/not-things-modular/timeseq/script"
)

// Action is a ref-free action: every nested value/if has been chased to a
// concrete, self-contained copy, and Timing carries the effective timing
// (the script's default-to-"end" rule already applied).
type Action struct {
	Timing    script.ActionTiming
	Condition *script.If

	SetValue     *script.SetValue
	SetVariable  *script.SetVariable
	SetPolyphony *script.SetPolyphony
	SetLabel     *script.SetLabel
	Assert       *script.Assert
	Trigger      *string

	StartValue    *script.Value
	EndValue      *script.Value
	EaseFactor    *float64
	EaseAlgorithm *script.EaseAlgorithm
	Output        *script.Output
	Variable      *string

	GateHighRatio float64
}

// effectiveTiming applies the action's default timing: glide/gate keep
// their explicit timing, everything else defaults to "end" per §4.6.
func effectiveTiming(a script.Action) script.ActionTiming {
	if a.Timing != "" {
		return a.Timing
	}
	return script.TimingEnd
}

func (p *Pool) resolveAction(path *script.Path, a script.Action, g *resolveGuards) (*Action, []script.ValidationError) {
	if a.Ref != "" {
		target, ok := p.actions[a.Ref]
		if !ok {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced action with id '%s'", a.Ref),
			}}
		}
		leave, err := g.actions.enter(a.Ref)
		if err != nil {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveAction(path, *target, g)
	}

	out := &Action{
		Timing:        effectiveTiming(a),
		SetPolyphony:  a.SetPolyphony,
		SetLabel:      a.SetLabel,
		Trigger:       a.Trigger,
		EaseFactor:    a.EaseFactor,
		EaseAlgorithm: a.EaseAlgorithm,
		Variable:      a.Variable,
		GateHighRatio: a.GateHighRatioOrDefault(),
	}

	if a.Condition != nil {
		cond, errs := p.resolveIf(path, *a.Condition, g)
		if len(errs) > 0 {
			return nil, errs
		}
		out.Condition = &cond
	}
	if a.SetValue != nil {
		v, errs := p.resolveValue(path, a.SetValue.Value, g)
		if len(errs) > 0 {
			return nil, errs
		}
		o, errs := p.Output(path, a.SetValue.Output)
		if len(errs) > 0 {
			return nil, errs
		}
		out.SetValue = &script.SetValue{Output: o, Value: v}
	}
	if a.SetVariable != nil {
		v, errs := p.resolveValue(path, a.SetVariable.Value, g)
		if len(errs) > 0 {
			return nil, errs
		}
		out.SetVariable = &script.SetVariable{Name: a.SetVariable.Name, Value: v}
	}
	if a.Assert != nil {
		expect, errs := p.resolveIf(path, a.Assert.Expect, g)
		if len(errs) > 0 {
			return nil, errs
		}
		stop := a.Assert.StopOnFailOrDefault()
		out.Assert = &script.Assert{Name: a.Assert.Name, Expect: expect, StopOnFail: &stop}
	}
	if a.StartValue != nil {
		v, errs := p.resolveValue(path, *a.StartValue, g)
		if len(errs) > 0 {
			return nil, errs
		}
		out.StartValue = &v
	}
	if a.EndValue != nil {
		v, errs := p.resolveValue(path, *a.EndValue, g)
		if len(errs) > 0 {
			return nil, errs
		}
		out.EndValue = &v
	}
	if a.Output != nil {
		o, errs := p.Output(path, *a.Output)
		if len(errs) > 0 {
			return nil, errs
		}
		out.Output = &o
	}

	return out, nil
}
