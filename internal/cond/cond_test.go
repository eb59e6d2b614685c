package cond

import (
	"testing"

	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/script"
)

type fakeVariables map[string]float64

func (v fakeVariables) Variable(name string) float64 { return v[name] }

type fakeTunings struct{}

func (fakeTunings) Tuning(id string) (*script.Tuning, bool) { return nil, false }

type fakePorts struct{}

func (fakePorts) GetInputPortVoltage(index, channel int) float64  { return 0 }
func (fakePorts) GetOutputPortVoltage(index, channel int) float64 { return 0 }
func (fakePorts) SetOutputPortVoltage(index, channel int, v float64) {}
func (fakePorts) SetOutputPortChannels(index, channels int)   {}
func (fakePorts) SetOutputPortLabel(index int, label string) {}

type fixedRNG struct{}

func (fixedRNG) Float64() float64 { return 0 }

func newEval() *evalx.Evaluator {
	return &evalx.Evaluator{Ports: fakePorts{}, RNG: fixedRNG{}, Variables: fakeVariables{}, Tunings: fakeTunings{}}
}

func voltage(v float64) script.Value { return script.Value{Voltage: &v} }

func leaf(op script.IfOperator, a, b float64, tol *float64) *script.If {
	values := [2]script.Value{voltage(a), voltage(b)}
	return &script.If{Operator: op, Values: &values, Tolerance: tol}
}

func compound(op script.IfOperator, left, right *script.If) *script.If {
	ifs := [2]script.If{*left, *right}
	return &script.If{Operator: op, Ifs: &ifs}
}

func TestLeafComparisons(t *testing.T) {
	e := newEval()
	cases := []struct {
		op   script.IfOperator
		a, b float64
		want bool
	}{
		{script.IfGt, 2, 1, true},
		{script.IfGt, 1, 2, false},
		{script.IfGte, 2, 2, true},
		{script.IfLt, 1, 2, true},
		{script.IfLte, 2, 2, true},
		{script.IfEq, 2, 2, true},
		{script.IfNe, 2, 3, true},
		{script.IfNe, 2, 2, false},
	}
	for _, c := range cases {
		got, _, err := Eval(e, leaf(c.op, c.a, c.b, nil))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.op, err)
		}
		if got != c.want {
			t.Errorf("%s(%v,%v) = %v, want %v", c.op, c.a, c.b, got, c.want)
		}
	}
}

func TestEqWithinTolerance(t *testing.T) {
	e := newEval()
	tol := 0.1
	got, _, err := Eval(e, leaf(script.IfEq, 1.0, 1.05, &tol))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("expected eq within tolerance to hold")
	}
	got, _, err = Eval(e, leaf(script.IfEq, 1.0, 1.2, &tol))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected eq outside tolerance to fail")
	}
}

func TestAndShortCircuits(t *testing.T) {
	e := newEval()
	left := leaf(script.IfGt, 1, 2, nil) // false
	right := leaf(script.IfGt, 5, 0, nil)
	got, msg, err := Eval(e, compound(script.IfAnd, left, right))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected and to be false")
	}
	if msg == "" {
		t.Error("expected a formatted message even on short-circuit")
	}
}

func TestOrShortCircuits(t *testing.T) {
	e := newEval()
	left := leaf(script.IfGt, 5, 0, nil) // true
	right := leaf(script.IfGt, 1, 2, nil)
	got, _, err := Eval(e, compound(script.IfOr, left, right))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("expected or to be true")
	}
}

func TestMessageFormatting(t *testing.T) {
	e := newEval()
	_, msg, err := Eval(e, leaf(script.IfGt, 2, 1, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(2 gt 1)"
	if msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}
}

func TestCompoundMessageFormatting(t *testing.T) {
	e := newEval()
	left := leaf(script.IfGt, 5, 0, nil)
	right := leaf(script.IfLt, 1, 2, nil)
	_, msg, err := Eval(e, compound(script.IfAnd, left, right))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "((5 gt 0) and (1 lt 2))"
	if msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}
}

func TestUnknownCompoundOperatorErrors(t *testing.T) {
	e := newEval()
	left := leaf(script.IfGt, 5, 0, nil)
	right := leaf(script.IfGt, 5, 0, nil)
	if _, _, err := Eval(e, compound("bogus", left, right)); err == nil {
		t.Fatal("expected error for unknown compound operator")
	}
}
