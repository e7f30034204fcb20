// Package trust maps raw trust scores attached to generated answers onto a
// percentage and a display tier.
//
// Upstream producers emit the score either as a 0-1 fraction or as a 0-100
// percentage, without a unit flag. Normalize resolves this by magnitude.
package trust

import "math"

// Normalize converts a raw trust score into an integer percentage in [0, 100].
//
// Values above 1 are taken as percentages; everything else (including exactly
// 1) is taken as a fraction. The boundary at 1 is an ambiguity in the score
// contract of the backend, not a choice made here.
func Normalize(raw float64) int {
	switch {
	case math.IsNaN(raw):
		return 0
	case math.IsInf(raw, 1):
		return 100
	case math.IsInf(raw, -1):
		return 0
	}

	var pct float64
	if raw > 1 {
		pct = math.Round(raw)
	} else {
		pct = math.Round(raw * 100)
	}
	return clamp(pct)
}

// clamp bounds pct before the integer conversion so huge finite scores
// cannot overflow.
func clamp(pct float64) int {
	if pct >= 100 {
		return 100
	}
	if pct <= 0 {
		return 0
	}
	return int(pct)
}

// Badge is the annotation rendered next to a question row.
type Badge struct {
	Percent int  `json:"percent"`
	Tier    Tier `json:"tier"`
}

// Annotate normalizes raw and classifies it against t.
func Annotate(raw float64, t Thresholds) Badge {
	pct := Normalize(raw)
	return Badge{Percent: pct, Tier: Classify(pct, t)}
}
