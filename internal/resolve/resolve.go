package resolve

import (
	"strconv"

	"github.com/not-things-modular/timeseq/script"
)

// Lane is a ref-free lane: its segments and segment-blocks have been
// flattened into one ordered []*Segment, exactly as the lane runtime walks
// it tick by tick.
type Lane struct {
	AutoStart      bool
	Loop           bool
	DisableUi      bool
	Repeat         int
	StartTrigger   string
	RestartTrigger string
	StopTrigger    string
	Segments       []*Segment
}

type Timeline struct {
	TimeScale *script.TimeScale
	LoopLock  bool
	Lanes     []Lane
}

type InputTrigger struct {
	Id    string
	Input script.Input
}

// Script is the fully ref-free runtime graph built from a loaded
// script.Script: every ref has been chased to a concrete definition and
// every segment-block has been flattened into its owning lane's segment
// list.
type Script struct {
	Version       string
	Timelines     []Timeline
	GlobalActions []Action
	InputTriggers []InputTrigger
	Tunings       *Pool
}

// Resolve builds the ref-free runtime graph for a validated script.Script.
// Load must have already run its structural validation; Resolve only deals
// with id/ref resolution and cycle detection (§4.2).
func Resolve(s *script.Script) (*Script, []script.ValidationError) {
	p := NewPool(s.ComponentPool)
	path := script.NewPath()

	var errs []script.ValidationError
	out := &Script{Version: s.Version, Tunings: p}

	path.Push("global-actions")
	for i, a := range s.GlobalActions {
		path.Push(strconv.Itoa(i))
		resolved, aErrs := p.resolveAction(path, a, newResolveGuards())
		if len(aErrs) > 0 {
			errs = append(errs, aErrs...)
		} else {
			out.GlobalActions = append(out.GlobalActions, *resolved)
		}
		path.Pop()
	}
	path.Pop()

	path.Push("input-triggers")
	for i, it := range s.InputTriggers {
		path.Push(strconv.Itoa(i))
		in, iErrs := p.Input(path, it.Input)
		if len(iErrs) > 0 {
			errs = append(errs, iErrs...)
		} else {
			out.InputTriggers = append(out.InputTriggers, InputTrigger{Id: it.Id, Input: in})
		}
		path.Pop()
	}
	path.Pop()

	path.Push("timelines")
	for i, t := range s.Timelines {
		path.Push(strconv.Itoa(i))
		resolved, tErrs := p.resolveTimeline(path, t)
		if len(tErrs) > 0 {
			errs = append(errs, tErrs...)
		} else {
			out.Timelines = append(out.Timelines, *resolved)
		}
		path.Pop()
	}
	path.Pop()

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (p *Pool) resolveTimeline(path *script.Path, t script.Timeline) (*Timeline, []script.ValidationError) {
	var errs []script.ValidationError
	out := &Timeline{TimeScale: t.TimeScale, LoopLock: t.LoopLock}

	path.Push("lanes")
	for i, l := range t.Lanes {
		path.Push(strconv.Itoa(i))
		resolved, lErrs := p.resolveLane(path, l)
		if len(lErrs) > 0 {
			errs = append(errs, lErrs...)
		} else {
			out.Lanes = append(out.Lanes, *resolved)
		}
		path.Pop()
	}
	path.Pop()

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (p *Pool) resolveLane(path *script.Path, l script.Lane) (*Lane, []script.ValidationError) {
	var segments []*Segment
	var errs []script.ValidationError
	path.With("segments", func() {
		segments, errs = p.resolveEntities(path, l.Segments, newResolveGuards())
	})
	if len(errs) > 0 {
		return nil, errs
	}

	return &Lane{
		AutoStart:      l.AutoStartOrDefault(),
		Loop:           l.Loop,
		DisableUi:      l.DisableUi,
		Repeat:         l.Repeat,
		StartTrigger:   l.StartTrigger,
		RestartTrigger: l.RestartTrigger,
		StopTrigger:    l.StopTrigger,
		Segments:       segments,
	}, nil
}
