package latency

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultNormalizeScale is the multiplier applied when converting raw
// durations to cycle counts relative to the fastest non-zero duration.
const DefaultNormalizeScale = 2

// ErrNoDurations indicates the device carries no usable timing data:
// either no duration records exist or every duration is zero.
var ErrNoDurations = errors.New("durations must be specified for the target")

// NormalizeDurations converts raw durations into integer cycle counts by
// scaling against the fastest non-zero duration:
//
//	cycles = round(d * scale / min)
//
// Zero durations stay zero. All inputs must share one unit; only ratios
// matter. Returns ErrNoDurations when no duration is positive.
func NormalizeDurations(durations []float64, scale int) ([]int, error) {
	if scale < 1 {
		return nil, fmt.Errorf("normalize scale must be positive, got %d", scale)
	}

	min := 0.0
	for _, d := range durations {
		if d < 0 {
			return nil, fmt.Errorf("negative duration %g", d)
		}
		if d > 0 && (min == 0 || d < min) {
			min = d
		}
	}
	if min == 0 {
		return nil, ErrNoDurations
	}

	out := make([]int, len(durations))
	for i, d := range durations {
		out[i] = int(math.Round(d * float64(scale) / min))
	}
	return out, nil
}

// CycleLimit computes the smallest cycle ceiling that keeps distinct
// durations distinguishable after interpolation, clamped to maxCycles.
// Zero participates as an implicit fastest duration. When every gap
// between neighboring durations is too fine for the cap, the cap itself
// is returned and nearby durations may collide. All-zero input yields 0;
// empty input is an error.
func CycleLimit(durations []float64, maxCycles int) (int, error) {
	if maxCycles < 1 {
		return 0, fmt.Errorf("cycle cap must be positive, got %d", maxCycles)
	}
	if len(durations) == 0 {
		return 0, fmt.Errorf("empty durations: %w", ErrNoDurations)
	}

	distinct := make([]float64, 0, len(durations)+1)
	distinct = append(distinct, 0)
	for _, d := range durations {
		if d < 0 {
			return 0, fmt.Errorf("negative duration %g", d)
		}
		distinct = append(distinct, d)
	}
	sort.Float64s(distinct)

	uniq := distinct[:1]
	for _, d := range distinct[1:] {
		if d != uniq[len(uniq)-1] {
			uniq = append(uniq, d)
		}
	}

	max := uniq[len(uniq)-1]
	if max == 0 {
		return 0, nil
	}

	// The smallest gap still representable under the cap sets the
	// resolution: one cycle per gap-sized slice of the range.
	threshold := max / float64(maxCycles)
	gap := 0.0
	for i := 1; i < len(uniq); i++ {
		g := uniq[i] - uniq[i-1]
		if g >= threshold && (gap == 0 || g < gap) {
			gap = g
		}
	}
	if gap == 0 {
		return maxCycles, nil
	}

	limit := int(math.Ceil(max / gap))
	if limit > maxCycles {
		limit = maxCycles
	}
	return limit, nil
}

// InterpolateDurations maps durations onto [0, limit] cycles by linear
// interpolation from [0, max], rounding up, where limit is the CycleLimit
// for the same cap.
func InterpolateDurations(durations []float64, maxCycles int) ([]int, error) {
	limit, err := CycleLimit(durations, maxCycles)
	if err != nil {
		return nil, err
	}

	max := 0.0
	for _, d := range durations {
		if d > max {
			max = d
		}
	}

	out := make([]int, len(durations))
	if max == 0 {
		return out, nil
	}
	for i, d := range durations {
		out[i] = int(math.Ceil(d * float64(limit) / max))
	}
	return out, nil
}
