package resolve

import "github.com/not-things-modular/timeseq/script"

// Duration is a ref-free duration: exactly one unit is set, same shape as
// script.Duration but with its value-expression resolved.
type Duration struct {
	Samples      *int64
	SamplesValue *script.Value
	Millis       *float64
	MillisValue  *script.Value
	Bars         *int64
	Beats        *float64
	BeatsValue   *script.Value
	Hz           *float64
	HzValue      *script.Value
}

func (p *Pool) resolveDuration(path *script.Path, d script.Duration, g *resolveGuards) (Duration, []script.ValidationError) {
	out := Duration{
		Samples: d.Samples,
		Millis:  d.Millis,
		Bars:    d.Bars,
		Beats:   d.Beats,
		Hz:      d.Hz,
	}
	if d.SamplesValue != nil {
		v, errs := p.resolveValue(path, *d.SamplesValue, g)
		if len(errs) > 0 {
			return Duration{}, errs
		}
		out.SamplesValue = &v
	}
	if d.MillisValue != nil {
		v, errs := p.resolveValue(path, *d.MillisValue, g)
		if len(errs) > 0 {
			return Duration{}, errs
		}
		out.MillisValue = &v
	}
	if d.BeatsValue != nil {
		v, errs := p.resolveValue(path, *d.BeatsValue, g)
		if len(errs) > 0 {
			return Duration{}, errs
		}
		out.BeatsValue = &v
	}
	if d.HzValue != nil {
		v, errs := p.resolveValue(path, *d.HzValue, g)
		if len(errs) > 0 {
			return Duration{}, errs
		}
		out.HzValue = &v
	}
	return out, nil
}
