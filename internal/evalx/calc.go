package evalx

import (
	"fmt"
	"math"

	"github.com/not-things-modular/timeseq/script"
)

// calc applies one calc operation to x per §4.3.
func (e *Evaluator) calc(x float64, c *script.Calc) (float64, error) {
	operand := func() (float64, error) {
		if c.Value == nil {
			return 0, fmt.Errorf("calc %q requires a value", c.Operation)
		}
		return e.Eval(c.Value)
	}

	switch c.Operation {
	case script.CalcAdd:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		return x + y, nil
	case script.CalcSub:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		return x - y, nil
	case script.CalcMult:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		return x * y, nil
	case script.CalcDiv:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		if y == 0 {
			return 0, nil
		}
		return x / y, nil
	case script.CalcMax:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		return math.Max(x, y), nil
	case script.CalcMin:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		return math.Min(x, y), nil
	case script.CalcRemain:
		y, err := operand()
		if err != nil {
			return 0, err
		}
		if y == 0 {
			return 0, nil
		}
		return math.Mod(x, y), nil
	case script.CalcTrunc:
		return math.Trunc(x), nil
	case script.CalcFrac:
		return x - math.Trunc(x), nil
	case script.CalcRound:
		switch script.RoundDirection(c.Direction) {
		case script.RoundUp:
			return math.Ceil(x), nil
		case script.RoundDown:
			return math.Floor(x), nil
		case script.RoundNear, "":
			return roundHalfAwayFromZero(x), nil
		default:
			return 0, fmt.Errorf("unknown round direction %q", c.Direction)
		}
	case script.CalcSign:
		switch script.SignDirection(c.Direction) {
		case script.SignPos, "":
			return math.Abs(x), nil
		case script.SignNeg:
			return -math.Abs(x), nil
		default:
			return 0, fmt.Errorf("unknown sign direction %q", c.Direction)
		}
	case script.CalcQuantize:
		t, ok := e.Tunings.Tuning(c.Tuning)
		if !ok {
			return 0, fmt.Errorf("unknown tuning %q", c.Tuning)
		}
		return quantizeTuning(x, t.Notes), nil
	case script.CalcVtoF:
		return 440 * math.Pow(2, x-0.75), nil
	default:
		return 0, fmt.Errorf("unknown calc operation %q", c.Operation)
	}
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return math.Floor(x + 0.5)
	}
	return math.Ceil(x - 0.5)
}

// quantizeTuning decomposes x into octave+frac and snaps frac to the
// tuning note with the smallest circular distance (wrap-around considered),
// carrying the octave over on wrap.
func quantizeTuning(x float64, notes []float64) float64 {
	octave := math.Floor(x)
	frac := x - octave

	best := notes[0]
	bestDist := circularDist(frac, notes[0])
	for _, n := range notes[1:] {
		d := circularDist(frac, n)
		if d < bestDist {
			bestDist = d
			best = n
		}
	}

	result := octave + best
	// Wrapping to the note nearest 1.0 (the note closest to 0 approached
	// from below) can push the chosen note above the original octave's
	// span; keep the nearest-distance choice by also trying it one octave
	// up/down and picking whichever lands closest to x.
	candidates := []float64{result, result - 1, result + 1}
	closest := candidates[0]
	closestDist := math.Abs(x - closest)
	for _, cnd := range candidates[1:] {
		if d := math.Abs(x - cnd); d < closestDist {
			closestDist = d
			closest = cnd
		}
	}
	return closest
}

// circularDist is the shortest distance between two points on a [0,1)
// circle.
func circularDist(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 0.5 {
		d = 1 - d
	}
	return d
}
