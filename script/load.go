package script

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Load parses raw JSON bytes into a Script and runs structural validation
// (field-shape checks only — id/ref resolution and cycle detection happen
// later, in internal/resolve, once the full component pool is available).
// Load never returns a partially valid Script: if any validation error is
// found the returned *Script is nil.
func Load(data []byte) (*Script, []ValidationError) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, []ValidationError{{
			Location: "/",
			Code:     ErrJsonMalformed,
			Message:  fmt.Sprintf("script is not valid JSON: %v", err),
		}}
	}

	c := &Collector{}
	path := NewPath()
	validateRoot(&s, c, path)

	if c.HasErrors() {
		return nil, c.Errors()
	}
	return &s, nil
}

func validateRoot(s *Script, c *Collector, path *Path) {
	if s.Type == "" {
		c.Add(path, ErrScriptTypeUnknown, "script is missing a 'type' field")
	}
	switch s.Version {
	case "1.0.0", "1.1.0":
	default:
		c.Add(path, ErrScriptVersionUnknown, fmt.Sprintf("unsupported script version %q", s.Version))
	}

	path.With("global-actions", func() {
		for i, a := range s.GlobalActions {
			path.With(strconv.Itoa(i), func() {
				if a.Timing != "" && a.Timing != TimingStart {
					c.Add(path, ErrScriptGlobalActionTiming, "global actions must have timing 'start' (or be left unset)")
				}
				validateAction(a, c, path, s.SupportsV11Calcs())
			})
		}
	})

	path.With("timelines", func() {
		for i, t := range s.Timelines {
			path.With(strconv.Itoa(i), func() {
				validateTimeline(t, c, path, s.SupportsV11Calcs())
			})
		}
	})

	path.With("input-triggers", func() {
		for i, it := range s.InputTriggers {
			path.With(strconv.Itoa(i), func() {
				if it.Id == "" {
					c.Add(path, ErrRefNotFound, "input-trigger is missing an 'id'")
				}
			})
		}
	})

	path.With("component-pool", func() {
		validatePool(s.ComponentPool, c, path, s.SupportsV11Calcs())
	})
}

func validateTimeline(t Timeline, c *Collector, path *Path, v11 bool) {
	if t.TimeScale != nil {
		ts := t.TimeScale
		_ = ts // bpm/bpb presence is not checked at load; the duration engine returns an error for beats without bpm or bars without bpb when the segment starts.
	}
	path.With("lanes", func() {
		for i, l := range t.Lanes {
			path.With(strconv.Itoa(i), func() {
				validateLane(l, c, path, v11)
			})
		}
	})
}

func validateLane(l Lane, c *Collector, path *Path, v11 bool) {
	path.With("segments", func() {
		for i, se := range l.Segments {
			path.With(strconv.Itoa(i), func() {
				validateSegmentEntity(se, c, path, v11)
			})
		}
	})
}

func validateSegmentEntity(se SegmentEntity, c *Collector, path *Path, v11 bool) {
	if se.Segment != nil {
		path.With("segment", func() {
			validateSegment(*se.Segment, c, path, v11)
		})
	}
	if se.SegmentBlock != nil {
		path.With("segment-block", func() {
			validateSegmentBlock(*se.SegmentBlock, c, path, v11)
		})
	}
}

func validateSegment(sg Segment, c *Collector, path *Path, v11 bool) {
	if sg.Ref == "" {
		validateDuration(sg.Duration, c, path)
		path.With("actions", func() {
			for i, a := range sg.Actions {
				path.With(strconv.Itoa(i), func() {
					validateAction(a, c, path, v11)
				})
			}
		})
	}
}

func validateSegmentBlock(sb SegmentBlock, c *Collector, path *Path, v11 bool) {
	if sb.Ref == "" {
		path.With("segments", func() {
			for i, se := range sb.Segments {
				path.With(strconv.Itoa(i), func() {
					validateSegmentEntity(se, c, path, v11)
				})
			}
		})
	}
}

func validateDuration(d Duration, c *Collector, path *Path) {
	path.With("duration", func() {
		units := 0
		if d.Samples != nil || d.SamplesValue != nil {
			units++
			if d.Samples != nil && d.SamplesValue != nil {
				c.Add(path, ErrDurationLiteralAndValue, "duration sets both 'samples' and 'samples-value'")
			}
		}
		if d.Millis != nil || d.MillisValue != nil {
			units++
			if d.Millis != nil && d.MillisValue != nil {
				c.Add(path, ErrDurationLiteralAndValue, "duration sets both 'millis' and 'millis-value'")
			}
		}
		if d.Beats != nil || d.BeatsValue != nil {
			units++
			if d.Beats != nil && d.BeatsValue != nil {
				c.Add(path, ErrDurationLiteralAndValue, "duration sets both 'beats' and 'beats-value'")
			}
		}
		if d.Hz != nil || d.HzValue != nil {
			units++
			if d.Hz != nil && d.HzValue != nil {
				c.Add(path, ErrDurationLiteralAndValue, "duration sets both 'hz' and 'hz-value'")
			}
		}
		if units == 0 {
			c.Add(path, ErrDurationMissing, "duration does not set samples/millis/beats/hz")
		} else if units > 1 {
			c.Add(path, ErrDurationMultipleUnits, "duration sets more than one of samples/millis/beats/hz")
		}
		if d.Bars != nil && d.Beats == nil && d.BeatsValue == nil {
			c.Add(path, ErrDurationBarsButNoBpb, "duration sets 'bars' without 'beats'")
		}
	})
}

func validateAction(a Action, c *Collector, path *Path, v11 bool) {
	if a.Ref != "" {
		return
	}
	switch a.Timing {
	case "", TimingStart, TimingEnd, TimingGlide, TimingGate:
	default:
		c.Add(path, ErrActionTimingEnum, fmt.Sprintf("unknown action timing %q", a.Timing))
	}

	kinds := 0
	if a.SetValue != nil {
		kinds++
	}
	if a.SetVariable != nil {
		kinds++
	}
	if a.SetPolyphony != nil {
		kinds++
	}
	if a.SetLabel != nil {
		kinds++
	}
	if a.Assert != nil {
		kinds++
	}
	if a.Trigger != nil {
		kinds++
	}
	isGlide := a.Timing == TimingGlide
	isGate := a.Timing == TimingGate
	if isGlide {
		kinds++
	}
	if isGate {
		kinds++
	}
	if kinds == 0 {
		c.Add(path, ErrActionKindMissing, "action does not set any of set-value/set-variable/set-polyphony/set-label/assert/trigger, and timing is not glide/gate")
	} else if kinds > 1 {
		c.Add(path, ErrActionKindMultiple, "action sets more than one action kind")
	}

	if isGlide {
		if a.Output == nil && a.Variable == nil {
			c.Add(path, ErrActionGlideTarget, "glide action has neither 'output' nor 'variable'")
		}
		if a.StartValue != nil {
			path.With("start-value", func() { validateValue(*a.StartValue, c, path, v11) })
		}
		if a.EndValue != nil {
			path.With("end-value", func() { validateValue(*a.EndValue, c, path, v11) })
		}
	}
	if isGate && a.Output == nil {
		c.Add(path, ErrActionGateOutput, "gate action has no 'output'")
	}
	if a.SetValue != nil {
		path.With("set-value", func() {
			path.With("value", func() { validateValue(a.SetValue.Value, c, path, v11) })
		})
	}
	if a.SetVariable != nil {
		path.With("set-variable", func() {
			path.With("value", func() { validateValue(a.SetVariable.Value, c, path, v11) })
		})
	}
	if a.Assert != nil {
		path.With("assert", func() {
			path.With("expect", func() { validateIf(a.Assert.Expect, c, path, v11) })
		})
	}
	if a.Condition != nil {
		path.With("if", func() { validateIf(*a.Condition, c, path, v11) })
	}
}

func validateValue(v Value, c *Collector, path *Path, v11 bool) {
	if v.Ref != "" {
		return
	}
	kinds := 0
	if v.Voltage != nil {
		kinds++
	}
	if v.Note != nil {
		kinds++
		if !isValidNote(*v.Note) {
			c.Add(path, ErrValueNoteFormat, fmt.Sprintf("invalid note format %q", *v.Note))
		}
	}
	if v.Variable != nil {
		kinds++
	}
	if v.Input != nil {
		kinds++
	}
	if v.Output != nil {
		kinds++
	}
	if v.Rand != nil {
		kinds++
	}
	if kinds == 0 {
		c.Add(path, ErrValueKindMissing, "value does not set any of voltage/note/variable/input/output/rand")
	} else if kinds > 1 {
		c.Add(path, ErrValueKindMultiple, "value sets more than one value kind")
	}
	if v.Rand != nil {
		path.With("rand", func() {
			if v.Rand.Lower != nil {
				path.With("lower", func() { validateValue(*v.Rand.Lower, c, path, v11) })
			}
			if v.Rand.Upper != nil {
				path.With("upper", func() { validateValue(*v.Rand.Upper, c, path, v11) })
			}
		})
	}
	path.With("calc", func() {
		for i, calc := range v.Calc {
			path.With(strconv.Itoa(i), func() {
				validateCalc(calc, c, path, v11)
			})
		}
	})
}

func validateCalc(calc Calc, c *Collector, path *Path, v11 bool) {
	if calc.Ref != "" {
		return
	}
	switch calc.Operation {
	case CalcAdd, CalcSub, CalcMult, CalcDiv:
		if calc.Value == nil {
			c.Add(path, ErrCalcValueMissing, fmt.Sprintf("calc %q requires 'value'", calc.Operation))
		}
	case CalcMax, CalcMin, CalcRemain:
		if !v11 {
			c.Add(path, ErrCalcRequiresV11, fmt.Sprintf("calc %q requires script version 1.1.0", calc.Operation))
		}
		if calc.Value == nil {
			c.Add(path, ErrCalcValueMissing, fmt.Sprintf("calc %q requires 'value'", calc.Operation))
		}
	case CalcTrunc, CalcFrac, CalcVtoF:
		if !v11 {
			c.Add(path, ErrCalcRequiresV11, fmt.Sprintf("calc %q requires script version 1.1.0", calc.Operation))
		}
	case CalcRound:
		if !v11 {
			c.Add(path, ErrCalcRequiresV11, "calc \"round\" requires script version 1.1.0")
		}
	case CalcSign:
		if !v11 {
			c.Add(path, ErrCalcRequiresV11, "calc \"sign\" requires script version 1.1.0")
		}
	case CalcQuantize:
		if !v11 {
			c.Add(path, ErrCalcRequiresV11, "calc \"quantize\" requires script version 1.1.0")
		}
		if calc.Tuning == "" {
			c.Add(path, ErrCalcTuningMissing, "calc \"quantize\" requires 'tuning'")
		}
	default:
		c.Add(path, ErrCalcOperationEnum, fmt.Sprintf("unknown calc operation %q", calc.Operation))
	}
	if calc.Value != nil {
		path.With("value", func() { validateValue(*calc.Value, c, path, v11) })
	}
}

func validateIf(i If, c *Collector, path *Path, v11 bool) {
	if i.Ref != "" {
		return
	}
	switch i.Operator {
	case IfEq, IfNe, IfGt, IfGte, IfLt, IfLte, IfAnd, IfOr:
	default:
		c.Add(path, ErrIfOperatorEnum, fmt.Sprintf("unknown if operator %q", i.Operator))
		return
	}
	if i.Operator.IsLeaf() {
		if i.Values == nil {
			c.Add(path, ErrIfValuesMissing, "leaf if is missing 'values'")
		} else {
			path.With("values", func() {
				path.With("0", func() { validateValue(i.Values[0], c, path, v11) })
				path.With("1", func() { validateValue(i.Values[1], c, path, v11) })
			})
		}
		if i.Tolerance != nil && i.Operator != IfEq && i.Operator != IfNe {
			c.Add(path, ErrIfToleranceNotAllowed, "'tolerance' is only allowed on eq/ne")
		}
	} else {
		if i.Ifs == nil {
			c.Add(path, ErrIfIfsMissing, "compound if is missing 'ifs'")
		} else {
			path.With("ifs", func() {
				path.With("0", func() { validateIf(i.Ifs[0], c, path, v11) })
				path.With("1", func() { validateIf(i.Ifs[1], c, path, v11) })
			})
		}
	}
}

func validatePool(p ComponentPool, c *Collector, path *Path, v11 bool) {
	path.With("segments", func() {
		for i, sg := range p.Segments {
			path.With(strconv.Itoa(i), func() { validateSegment(sg, c, path, v11) })
		}
	})
	path.With("segment-blocks", func() {
		for i, sb := range p.SegmentBlocks {
			path.With(strconv.Itoa(i), func() { validateSegmentBlock(sb, c, path, v11) })
		}
	})
	path.With("actions", func() {
		for i, a := range p.Actions {
			path.With(strconv.Itoa(i), func() { validateAction(a, c, path, v11) })
		}
	})
	path.With("values", func() {
		for i, v := range p.Values {
			path.With(strconv.Itoa(i), func() { validateValue(v, c, path, v11) })
		}
	})
	path.With("calcs", func() {
		for i, calc := range p.Calcs {
			path.With(strconv.Itoa(i), func() { validateCalc(calc, c, path, v11) })
		}
	})
	path.With("ifs", func() {
		for i, iff := range p.Ifs {
			path.With(strconv.Itoa(i), func() { validateIf(iff, c, path, v11) })
		}
	})
	path.With("tunings", func() {
		for i, t := range p.Tunings {
			path.With(strconv.Itoa(i), func() {
				if len(t.Notes) == 0 {
					c.Add(path, ErrTuningNotesEmpty, "tuning has no notes")
				}
			})
		}
	})
}

func isValidNote(note string) bool {
	if len(note) < 2 || len(note) > 3 {
		return false
	}
	letter := note[0]
	if letter < 'A' || letter > 'G' {
		if letter < 'a' || letter > 'g' {
			return false
		}
	}
	octave := note[1]
	if octave < '0' || octave > '9' {
		return false
	}
	if len(note) == 3 && note[2] != '+' && note[2] != '-' {
		return false
	}
	return true
}
