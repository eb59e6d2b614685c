// Package evalx implements the Value Evaluator: it turns any value-kind
// (voltage/note/variable/input/output/rand) plus its calc pipeline into a
// single float, per §4.3.
package evalx

import (
	"fmt"
	"math"

	"github.com/not-things-modular/timeseq/internal/hostiface"
	"github.com/not-things-modular/timeseq/script"
)

var noteOffsets = map[byte]int{
	'A': 9, 'B': 11, 'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7,
}

// Variables is the narrow variable-store read surface the evaluator needs;
// the engine's variable store implements it.
type Variables interface {
	Variable(name string) float64
}

// Tunings resolves a tuning id to its definition for the quantize calc.
type Tunings interface {
	Tuning(id string) (*script.Tuning, bool)
}

// Evaluator evaluates resolved (ref-free) values against one tick's state.
type Evaluator struct {
	Ports     hostiface.Ports
	RNG       hostiface.RNG
	Variables Variables
	Tunings   Tunings
}

// CalcOp applies one calc pipeline step to a running value.
type CalcOp interface {
	Apply(x float64) (float64, error)
}

type calcStep struct {
	e *Evaluator
	c *script.Calc
}

func (s calcStep) Apply(x float64) (float64, error) { return s.e.calc(x, s.c) }

// Chain applies an ordered sequence of CalcOps, mirroring the teacher's
// effects.Chain/Effector pipeline.
type Chain struct {
	ops []CalcOp
}

func NewChain(ops ...CalcOp) *Chain { return &Chain{ops: ops} }

func (c *Chain) Apply(x float64) (float64, error) {
	for i, op := range c.ops {
		y, err := op.Apply(x)
		if err != nil {
			return 0, fmt.Errorf("calc[%d]: %w", i, err)
		}
		x = y
	}
	return x, nil
}

// Eval evaluates a ref-free value to a float, applying its calc pipeline and
// quantize flag in order.
func (e *Evaluator) Eval(v *script.Value) (float64, error) {
	x, err := e.base(v)
	if err != nil {
		return 0, err
	}

	ops := make([]CalcOp, len(v.Calc))
	for i := range v.Calc {
		ops[i] = calcStep{e: e, c: &v.Calc[i]}
	}
	x, err = NewChain(ops...).Apply(x)
	if err != nil {
		return 0, err
	}

	if v.Quantize {
		x = quantizeSemitone(x)
	}
	return x, nil
}

func (e *Evaluator) base(v *script.Value) (float64, error) {
	switch {
	case v.Voltage != nil:
		return *v.Voltage, nil
	case v.Note != nil:
		return noteToVoltage(*v.Note)
	case v.Variable != nil:
		return e.Variables.Variable(*v.Variable), nil
	case v.Input != nil:
		return e.Ports.GetInputPortVoltage(v.Input.Index-1, v.Input.ChannelOrDefault()-1), nil
	case v.Output != nil:
		return e.Ports.GetOutputPortVoltage(v.Output.Index-1, v.Output.ChannelOrDefault()-1), nil
	case v.Rand != nil:
		return e.rand(v.Rand)
	}
	return 0, fmt.Errorf("value has no recognized kind")
}

func (e *Evaluator) rand(r *script.Rand) (float64, error) {
	lower, upper := 0.0, 0.0
	if r.Lower != nil {
		v, err := e.Eval(r.Lower)
		if err != nil {
			return 0, err
		}
		lower = v
	}
	if r.Upper != nil {
		v, err := e.Eval(r.Upper)
		if err != nil {
			return 0, err
		}
		upper = v
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return lower + e.RNG.Float64()*(upper-lower), nil
}

// noteToVoltage parses a letter[+octave digit][accidental] note per §4.3:
// letter maps via the fixed table, octave digit n contributes (n-4) volts,
// an accidental +/- adds/subtracts 1/12 V.
func noteToVoltage(note string) (float64, error) {
	if len(note) < 2 || len(note) > 3 {
		return 0, fmt.Errorf("invalid note %q", note)
	}
	letter := note[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	offset, ok := noteOffsets[letter]
	if !ok {
		return 0, fmt.Errorf("invalid note letter %q", note[0])
	}
	octave := int(note[1] - '0')
	if octave < 0 || octave > 9 {
		return 0, fmt.Errorf("invalid note octave %q", note)
	}
	v := float64(offset)/12 + float64(octave-4)
	if len(note) == 3 {
		switch note[2] {
		case '+':
			v += 1.0 / 12
		case '-':
			v -= 1.0 / 12
		default:
			return 0, fmt.Errorf("invalid note accidental %q", note)
		}
	}
	return v, nil
}

// quantizeSemitone snaps to the nearest 1/12 V, half-semitone rounding to
// nearest.
func quantizeSemitone(x float64) float64 {
	return math.Round(x*12) / 12
}
