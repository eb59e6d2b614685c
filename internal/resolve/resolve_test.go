package resolve

import (
	"testing"

	"github.com/not-things-modular/timeseq/script"
)

func voltage(v float64) script.Value { return script.Value{Voltage: &v} }

func samplesDuration(n int64) script.Duration { return script.Duration{Samples: &n} }

func TestResolveGlobalActionsAndInputTriggers(t *testing.T) {
	s := &script.Script{
		Version: "1.0.0",
		GlobalActions: []script.Action{
			{SetVariable: &script.SetVariable{Name: "x", Value: voltage(1)}},
		},
		InputTriggers: []script.InputTrigger{
			{Id: "gate", Input: script.Input{Port: script.Port{Index: 1}}},
		},
	}
	out, errs := Resolve(s)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(out.GlobalActions) != 1 || out.GlobalActions[0].SetVariable.Name != "x" {
		t.Errorf("got %+v, want one global action setting 'x'", out.GlobalActions)
	}
	if len(out.InputTriggers) != 1 || out.InputTriggers[0].Id != "gate" {
		t.Errorf("got %+v, want one input-trigger 'gate'", out.InputTriggers)
	}
}

func TestResolveLaneFlattensSegmentsAndBlocks(t *testing.T) {
	s := &script.Script{
		Version: "1.0.0",
		Timelines: []script.Timeline{
			{Lanes: []script.Lane{
				{Segments: []script.SegmentEntity{
					{Segment: &script.Segment{Duration: samplesDuration(1)}},
					{SegmentBlock: &script.SegmentBlock{Segments: []script.SegmentEntity{
						{Segment: &script.Segment{Duration: samplesDuration(2)}},
					}}},
				}},
			}},
		},
	}
	out, errs := Resolve(s)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	lane := out.Timelines[0].Lanes[0]
	if len(lane.Segments) != 2 {
		t.Fatalf("got %d flattened segments, want 2", len(lane.Segments))
	}
	if *lane.Segments[0].Duration.Samples != 1 || *lane.Segments[1].Duration.Samples != 2 {
		t.Errorf("unexpected segment durations: %d, %d", *lane.Segments[0].Duration.Samples, *lane.Segments[1].Duration.Samples)
	}
}

func TestResolveSegmentBlockRepeatsFlatList(t *testing.T) {
	repeat := 3
	s := &script.Script{
		Version: "1.0.0",
		Timelines: []script.Timeline{
			{Lanes: []script.Lane{
				{Segments: []script.SegmentEntity{
					{SegmentBlock: &script.SegmentBlock{Repeat: &repeat, Segments: []script.SegmentEntity{
						{Segment: &script.Segment{Duration: samplesDuration(1)}},
						{Segment: &script.Segment{Duration: samplesDuration(2)}},
					}}},
				}},
			}},
		},
	}
	out, errs := Resolve(s)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	segs := out.Timelines[0].Lanes[0].Segments
	if len(segs) != 6 {
		t.Fatalf("got %d segments, want 6 (2 segments x 3 repeats)", len(segs))
	}
	for i, want := range []int64{1, 2, 1, 2, 1, 2} {
		if *segs[i].Duration.Samples != want {
			t.Errorf("segment %d duration = %d, want %d", i, *segs[i].Duration.Samples, want)
		}
	}
}

func TestResolveSegmentRefResolvesToPooledDefinition(t *testing.T) {
	s := &script.Script{
		Version: "1.0.0",
		ComponentPool: script.ComponentPool{
			Segments: []script.Segment{
				{RefObject: script.RefObject{Id: "seg1"}, Duration: samplesDuration(5)},
			},
		},
		Timelines: []script.Timeline{
			{Lanes: []script.Lane{
				{Segments: []script.SegmentEntity{
					{Segment: &script.Segment{RefObject: script.RefObject{Ref: "seg1"}}},
				}},
			}},
		},
	}
	out, errs := Resolve(s)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	segs := out.Timelines[0].Lanes[0].Segments
	if len(segs) != 1 || *segs[0].Duration.Samples != 5 {
		t.Fatalf("got %+v, want one segment with duration 5", segs)
	}
}

func TestResolveSegmentRefNotFound(t *testing.T) {
	s := &script.Script{
		Version: "1.0.0",
		Timelines: []script.Timeline{
			{Lanes: []script.Lane{
				{Segments: []script.SegmentEntity{
					{Segment: &script.Segment{RefObject: script.RefObject{Ref: "missing"}}},
				}},
			}},
		},
	}
	_, errs := Resolve(s)
	if len(errs) != 1 || errs[0].Code != script.ErrRefNotFound {
		t.Fatalf("got %+v, want a single ErrRefNotFound", errs)
	}
}

func TestResolveActionCircularRefDetected(t *testing.T) {
	s := &script.Script{
		Version: "1.0.0",
		ComponentPool: script.ComponentPool{
			Actions: []script.Action{
				{RefObject: script.RefObject{Id: "a1", Ref: "a2"}},
				{RefObject: script.RefObject{Id: "a2", Ref: "a1"}},
			},
		},
		GlobalActions: []script.Action{
			{RefObject: script.RefObject{Ref: "a1"}},
		},
	}
	_, errs := Resolve(s)
	if len(errs) != 1 || errs[0].Code != script.ErrRefCircularFound {
		t.Fatalf("got %+v, want a single ErrRefCircularFound", errs)
	}
}

func TestResolveValueRefChasesToConcreteValue(t *testing.T) {
	p := NewPool(script.ComponentPool{
		Values: []script.Value{
			{RefObject: script.RefObject{Id: "v1"}, Voltage: float64p(2.5)},
		},
	})
	resolved, errs := p.Value(script.NewPath(), script.Value{RefObject: script.RefObject{Ref: "v1"}})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if resolved.Voltage == nil || *resolved.Voltage != 2.5 {
		t.Fatalf("got %+v, want voltage 2.5", resolved)
	}
	if resolved.Ref != "" {
		t.Errorf("resolved value must have an empty Ref, got %q", resolved.Ref)
	}
}

func float64p(v float64) *float64 { return &v }

func TestResolveValueCircularRefDetected(t *testing.T) {
	p := NewPool(script.ComponentPool{
		Values: []script.Value{
			{RefObject: script.RefObject{Id: "v1", Ref: "v2"}},
			{RefObject: script.RefObject{Id: "v2", Ref: "v1"}},
		},
	})
	_, errs := p.Value(script.NewPath(), script.Value{RefObject: script.RefObject{Ref: "v1"}})
	if len(errs) != 1 || errs[0].Code != script.ErrRefCircularFound {
		t.Fatalf("got %+v, want a single ErrRefCircularFound", errs)
	}
}

func TestResolveIfLeafResolvesValues(t *testing.T) {
	p := NewPool(script.ComponentPool{})
	out, errs := p.If(script.NewPath(), script.If{
		Operator: script.IfGt,
		Values:   &[2]script.Value{voltage(2), voltage(1)},
	})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out.Values == nil || *out.Values[0].Voltage != 2 {
		t.Errorf("got %+v, want resolved leaf values", out)
	}
}

func TestResolveIfCompoundResolvesNestedIfs(t *testing.T) {
	p := NewPool(script.ComponentPool{})
	left := script.If{Operator: script.IfGt, Values: &[2]script.Value{voltage(2), voltage(1)}}
	right := script.If{Operator: script.IfLt, Values: &[2]script.Value{voltage(1), voltage(2)}}
	out, errs := p.If(script.NewPath(), script.If{Operator: script.IfAnd, Ifs: &[2]script.If{left, right}})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out.Ifs == nil || out.Ifs[0].Operator != script.IfGt || out.Ifs[1].Operator != script.IfLt {
		t.Errorf("got %+v, want both nested ifs resolved", out)
	}
}

func TestResolveOutputRefChasesToConcreteOutput(t *testing.T) {
	p := NewPool(script.ComponentPool{
		Outputs: []script.Output{
			{RefObject: script.RefObject{Id: "o1"}, Port: script.Port{Index: 3}},
		},
	})
	out, errs := p.Output(script.NewPath(), script.Output{RefObject: script.RefObject{Ref: "o1"}})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out.Index != 3 {
		t.Errorf("got index %d, want 3", out.Index)
	}
}

func TestResolveOutputRefNotFound(t *testing.T) {
	p := NewPool(script.ComponentPool{})
	_, errs := p.Output(script.NewPath(), script.Output{RefObject: script.RefObject{Ref: "missing"}})
	if len(errs) != 1 || errs[0].Code != script.ErrRefNotFound {
		t.Fatalf("got %+v, want a single ErrRefNotFound", errs)
	}
}

func TestResolveDurationSamplesValueResolved(t *testing.T) {
	p := NewPool(script.ComponentPool{})
	v := voltage(128)
	d, errs := p.resolveDuration(script.NewPath(), script.Duration{SamplesValue: &v}, newResolveGuards())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if d.SamplesValue == nil || *d.SamplesValue.Voltage != 128 {
		t.Errorf("got %+v, want resolved samples-value", d)
	}
}

func TestPoolTuningLookup(t *testing.T) {
	p := NewPool(script.ComponentPool{
		Tunings: []script.Tuning{{Id: "major", Notes: []float64{0, 2.0 / 12}}},
	})
	tuning, ok := p.Tuning("major")
	if !ok || len(tuning.Notes) != 2 {
		t.Fatalf("got %+v, %v, want the 'major' tuning with 2 notes", tuning, ok)
	}
	if _, ok := p.Tuning("missing"); ok {
		t.Error("expected lookup of an unknown tuning id to fail")
	}
}
