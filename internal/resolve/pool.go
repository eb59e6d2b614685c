// Package resolve turns the raw component pool of a loaded script into a
// ref-free IR: every `ref` is chased to its concrete definition, segment and
// segment-block entities are flattened into flat per-lane segment lists, and
// a repeat visit of the same id while chasing a ref chain is reported as a
// circular reference instead of recursing forever.
//
// This mirrors ProcessorScriptParser in the original C++ core, which threads
// a location stack through the same recursive descent and raises
// Ref_NotFound / Ref_CircularFound at the point of failure.
package resolve

import (
	"fmt"

	"github.com/not-things-modular/timeseq/script"
)

// Pool indexes a script's component pool by id, once, for O(1) ref lookups.
type Pool struct {
	segments      map[string]*script.Segment
	segmentBlocks map[string]*script.SegmentBlock
	actions       map[string]*script.Action
	values        map[string]*script.Value
	calcs         map[string]*script.Calc
	ifs           map[string]*script.If
	inputs        map[string]*script.Input
	outputs       map[string]*script.Output
	tunings       map[string]*script.Tuning
}

func NewPool(cp script.ComponentPool) *Pool {
	p := &Pool{
		segments:      map[string]*script.Segment{},
		segmentBlocks: map[string]*script.SegmentBlock{},
		actions:       map[string]*script.Action{},
		values:        map[string]*script.Value{},
		calcs:         map[string]*script.Calc{},
		ifs:           map[string]*script.If{},
		inputs:        map[string]*script.Input{},
		outputs:       map[string]*script.Output{},
		tunings:       map[string]*script.Tuning{},
	}
	for i := range cp.Segments {
		p.segments[cp.Segments[i].Id] = &cp.Segments[i]
	}
	for i := range cp.SegmentBlocks {
		p.segmentBlocks[cp.SegmentBlocks[i].Id] = &cp.SegmentBlocks[i]
	}
	for i := range cp.Actions {
		p.actions[cp.Actions[i].Id] = &cp.Actions[i]
	}
	for i := range cp.Values {
		p.values[cp.Values[i].Id] = &cp.Values[i]
	}
	for i := range cp.Calcs {
		p.calcs[cp.Calcs[i].Id] = &cp.Calcs[i]
	}
	for i := range cp.Ifs {
		p.ifs[cp.Ifs[i].Id] = &cp.Ifs[i]
	}
	for i := range cp.Inputs {
		p.inputs[cp.Inputs[i].Id] = &cp.Inputs[i]
	}
	for i := range cp.Outputs {
		p.outputs[cp.Outputs[i].Id] = &cp.Outputs[i]
	}
	for i := range cp.Tunings {
		p.tunings[cp.Tunings[i].Id] = &cp.Tunings[i]
	}
	return p
}

func (p *Pool) Tuning(id string) (*script.Tuning, bool) {
	t, ok := p.tunings[id]
	return t, ok
}

// guard tracks the ids currently being chased for one reference kind, so a
// repeat visit (the definition currently being resolved referring back to
// itself, directly or transitively) is caught instead of looping forever.
type guard struct {
	kind     string
	visiting map[string]bool
}

func newGuard(kind string) *guard {
	return &guard{kind: kind, visiting: map[string]bool{}}
}

// enter returns an error if id is already on the stack (a cycle), otherwise
// marks it visiting and returns a func that must be deferred to leave it.
func (g *guard) enter(id string) (leave func(), err error) {
	if g.visiting[id] {
		return func() {}, fmt.Errorf("circular %s reference at id '%s'", g.kind, id)
	}
	g.visiting[id] = true
	return func() { delete(g.visiting, id) }, nil
}

// resolveGuards bundles one guard per cyclable kind for a single top-level
// expansion (one global action, one lane, or one Value/If call).
type resolveGuards struct {
	values        *guard
	calcs         *guard
	ifs           *guard
	actions       *guard
	segments      *guard
	segmentBlocks *guard
}

func newResolveGuards() *resolveGuards {
	return &resolveGuards{
		values:        newGuard("value"),
		calcs:         newGuard("calc"),
		ifs:           newGuard("if"),
		actions:       newGuard("action"),
		segments:      newGuard("segment"),
		segmentBlocks: newGuard("segment-block"),
	}
}
