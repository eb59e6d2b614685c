// Package ease implements the glide action's easing curves (§4.6): pow and
// sig, each taking a normalized phase t in [0,1] and a factor in [-1,1].
package ease

import "math"

// Apply maps t through the named algorithm at the given factor. Unknown
// algorithms fall back to linear (identity).
func Apply(algorithm string, factor, t float64) float64 {
	switch algorithm {
	case "pow":
		return Pow(factor, t)
	case "sig":
		return Sig(factor, t)
	default:
		return t
	}
}

// Pow implements the pow curve: t^(2^-f) for f>0, 1-(1-t)^(2^f) for f<0,
// identity for f=0.
func Pow(f, t float64) float64 {
	switch {
	case f == 0:
		return t
	case f > 0:
		return math.Pow(t, math.Pow(2, -f))
	default:
		return 1 - math.Pow(1-t, math.Pow(2, f))
	}
}

// Sig implements a symmetric S-curve: f=0 is linear; |f| scales steepness
// around the midpoint, symmetric under t -> 1-t, f -> f.
func Sig(f, t float64) float64 {
	if f == 0 {
		return t
	}
	// Steepness grows with |f|; keep the curve anchored at (0,0) and (1,1).
	k := f * 8
	mid := 0.5
	num := 1/(1+math.Exp(-k*(t-mid))) - 1/(1+math.Exp(k*mid))
	den := 1/(1+math.Exp(-k*(1-mid))) - 1/(1+math.Exp(k*mid))
	return num / den
}

// Phase returns the 0-based sample index's normalized position in [0,1)
// within an N-sample span: t=0 when N<=1, t=i/N otherwise. The final sample
// of a glide is clamped to exactly its end value by the caller rather than
// by this function reaching t=1.
func Phase(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n)
}
