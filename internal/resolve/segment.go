package resolve

import (
	"fmt"
	"strconv"

	"github.com/not-things-modular/timeseq/script"
)

// Segment is a ref-free segment definition. It is shared by pointer across
// every lane position that resolves to it; per-use runtime state (sample
// counter, drift accumulator, ...) lives one layer up, in internal/runtime.
type Segment struct {
	Id        string
	Duration  Duration
	Actions   []Action
	DisableUi bool
}

func (p *Pool) resolveSegment(path *script.Path, s script.Segment, g *resolveGuards) (*Segment, []script.ValidationError) {
	if s.Ref != "" {
		target, ok := p.segments[s.Ref]
		if !ok {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced segment with id '%s'", s.Ref),
			}}
		}
		leave, err := g.segments.enter(s.Ref)
		if err != nil {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveSegment(path, *target, g)
	}

	dur, errs := p.resolveDuration(path, s.Duration, g)
	if len(errs) > 0 {
		return nil, errs
	}

	actions := make([]Action, 0, len(s.Actions))
	var allErrs []script.ValidationError
	path.With("actions", func() {
		for i, a := range s.Actions {
			path.With(strconv.Itoa(i), func() {
				resolved, aErrs := p.resolveAction(path, a, g)
				if len(aErrs) > 0 {
					allErrs = append(allErrs, aErrs...)
					return
				}
				actions = append(actions, *resolved)
			})
		}
	})
	if len(allErrs) > 0 {
		return nil, allErrs
	}

	return &Segment{Id: s.Id, Duration: dur, Actions: actions, DisableUi: s.DisableUi}, nil
}

// resolveSegmentBlock expands a segment-block (chasing its own ref chain
// first) into a flat list of segments, repeated RepeatOrDefault times.
func (p *Pool) resolveSegmentBlock(path *script.Path, sb script.SegmentBlock, g *resolveGuards) ([]*Segment, []script.ValidationError) {
	if sb.Ref != "" {
		target, ok := p.segmentBlocks[sb.Ref]
		if !ok {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefNotFound,
				Message:  fmt.Sprintf("could not find referenced segment-block with id '%s'", sb.Ref),
			}}
		}
		leave, err := g.segmentBlocks.enter(sb.Ref)
		if err != nil {
			return nil, []script.ValidationError{{
				Location: path.String(),
				Code:     script.ErrRefCircularFound,
				Message:  err.Error(),
			}}
		}
		defer leave()
		return p.resolveSegmentBlock(path, *target, g)
	}

	var flat []*Segment
	var errs []script.ValidationError
	path.With("segments", func() {
		flat, errs = p.resolveEntities(path, sb.Segments, g)
	})
	if len(errs) > 0 {
		return nil, errs
	}

	repeat := sb.RepeatOrDefault()
	if repeat <= 0 {
		return nil, nil
	}
	out := make([]*Segment, 0, len(flat)*repeat)
	for r := 0; r < repeat; r++ {
		out = append(out, flat...)
	}
	return out, nil
}

// resolveEntities flattens an ordered segment/segment-block list (a lane's
// or a segment-block's `segments`) into one flat []*Segment.
func (p *Pool) resolveEntities(path *script.Path, entities []script.SegmentEntity, g *resolveGuards) ([]*Segment, []script.ValidationError) {
	var flat []*Segment
	var errs []script.ValidationError
	for i, se := range entities {
		path.Push(strconv.Itoa(i))
		if se.Segment != nil {
			path.Push("segment")
			seg, sErrs := p.resolveSegment(path, *se.Segment, g)
			path.Pop()
			if len(sErrs) > 0 {
				errs = append(errs, sErrs...)
			} else {
				flat = append(flat, seg)
			}
		}
		if se.SegmentBlock != nil {
			path.Push("segment-block")
			segs, sErrs := p.resolveSegmentBlock(path, *se.SegmentBlock, g)
			path.Pop()
			if len(sErrs) > 0 {
				errs = append(errs, sErrs...)
			} else {
				flat = append(flat, segs...)
			}
		}
		path.Pop()
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return flat, nil
}
