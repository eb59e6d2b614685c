package resolve

import (
	"fmt"

	"github.com/not-things-modular/timeseq/script"
)

// Value resolves a (possibly ref'd) value into a ref-free copy: Ref is
// always empty on the result, and every nested value/calc is itself
// ref-free.
func (p *Pool) Value(path *script.Path, v script.Value) (script.Value, []script.ValidationError) {
	return p.resolveValue(path, v, newResolveGuards())
}

func (p *Pool) resolveValue(path *script.Path, v script.Value, g *resolveGuards) (script.Value, []script.ValidationError) {
	if v.Ref != "" {
		target, ok := p.values[v.Ref]
		if !ok {
			return script.Value{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced value with id '%s'", v.Ref),
			}}
		}
		leave, err := g.values.enter(v.Ref)
		if err != nil {
			return script.Value{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveValue(path, *target, g)
	}

	out := v
	out.Ref = ""
	if v.Rand != nil {
		rand := &script.Rand{}
		if v.Rand.Lower != nil {
			lower, errs := p.resolveValue(path, *v.Rand.Lower, g)
			if len(errs) > 0 {
				return script.Value{}, errs
			}
			rand.Lower = &lower
		}
		if v.Rand.Upper != nil {
			upper, errs := p.resolveValue(path, *v.Rand.Upper, g)
			if len(errs) > 0 {
				return script.Value{}, errs
			}
			rand.Upper = &upper
		}
		out.Rand = rand
	}
	if len(v.Calc) > 0 {
		calcs := make([]script.Calc, 0, len(v.Calc))
		for _, calc := range v.Calc {
			resolved, errs := p.resolveCalc(path, calc, g)
			if len(errs) > 0 {
				return script.Value{}, errs
			}
			calcs = append(calcs, resolved)
		}
		out.Calc = calcs
	}
	return out, nil
}

func (p *Pool) resolveCalc(path *script.Path, c script.Calc, g *resolveGuards) (script.Calc, []script.ValidationError) {
	if c.Ref != "" {
		target, ok := p.calcs[c.Ref]
		if !ok {
			return script.Calc{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced calc with id '%s'", c.Ref),
			}}
		}
		leave, err := g.calcs.enter(c.Ref)
		if err != nil {
			return script.Calc{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveCalc(path, *target, g)
	}
	out := c
	out.Ref = ""
	if c.Value != nil {
		v, errs := p.resolveValue(path, *c.Value, g)
		if len(errs) > 0 {
			return script.Calc{}, errs
		}
		out.Value = &v
	}
	return out, nil
}

// If resolves a (possibly ref'd) if-tree into a ref-free copy.
func (p *Pool) If(path *script.Path, i script.If) (script.If, []script.ValidationError) {
	return p.resolveIf(path, i, newResolveGuards())
}

func (p *Pool) resolveIf(path *script.Path, i script.If, g *resolveGuards) (script.If, []script.ValidationError) {
	if i.Ref != "" {
		target, ok := p.ifs[i.Ref]
		if !ok {
			return script.If{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced if with id '%s'", i.Ref),
			}}
		}
		leave, err := g.ifs.enter(i.Ref)
		if err != nil {
			return script.If{}, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveIf(path, *target, g)
	}
	out := i
	out.Ref = ""
	if i.Operator.IsLeaf() {
		if i.Values != nil {
			var resolved [2]script.Value
			for idx := range i.Values {
				v, errs := p.resolveValue(path, i.Values[idx], g)
				if len(errs) > 0 {
					return script.If{}, errs
				}
				resolved[idx] = v
			}
			out.Values = &resolved
		}
	} else if i.Ifs != nil {
		var resolved [2]script.If
		for idx := range i.Ifs {
			sub, errs := p.resolveIf(path, i.Ifs[idx], g)
			if len(errs) > 0 {
				return script.If{}, errs
			}
			resolved[idx] = sub
		}
		out.Ifs = &resolved
	}
	return out, nil
}

// Input resolves a (possibly ref'd) input/output port. There is no cycle
// risk here: inputs/outputs do not nest other refs.
func (p *Pool) Input(path *script.Path, in script.Input) (script.Input, []script.ValidationError) {
	if in.Ref == "" {
		return in, nil
	}
	target, ok := p.inputs[in.Ref]
	if !ok {
		return script.Input{}, []script.ValidationError{{
			Location: path.String(),
			Code:     script.ErrRefNotFound,
			Message:  fmt.Sprintf("could not find referenced input with id '%s'", in.Ref),
		}}
	}
	return *target, nil
}

func (p *Pool) Output(path *script.Path, out script.Output) (script.Output, []script.ValidationError) {
	if out.Ref == "" {
		return out, nil
	}
	target, ok := p.outputs[out.Ref]
	if !ok {
		return script.Output{}, []script.ValidationError{{
			Location: path.String(),
			Code:     script.ErrRefNotFound,
			Message:  fmt.Sprintf("could not find referenced output with id '%s'", out.Ref),
		}}
	}
	return *target, nil
}
