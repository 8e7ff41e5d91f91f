package dice

import "math"

// LuckScale maps one standard-normal unit of luck to this fraction of the pool's
// total span when swing is 1.
const LuckScale = 0.16

// Roll simulates rolling every group and returns the aggregate Result.
//
// Roll is total: it never panics and has no error path. A request that counts no dice
// returns the neutral zero Result without consuming entropy; otherwise exactly two
// standard-normal draws (four uniforms) are taken from src, the first for the luck
// bias and the second for the sum.
//
// swing is expected in [0, 1] and is not clamped; 0 disables the luck bias. A NaN or
// infinite swing is treated as 0.
//
// Precondition: src must be non-nil.
// Pools whose bounds saturate (see Moments.Overflow) still roll, against the
// saturated bounds; Validate rejects them before they reach a service.
//
// Postcondition: MinSum <= Sum <= MaxSum of Aggregate(groups) when any die counted.
func Roll(groups []Group, swing float64, src Source) Result {
	m := Aggregate(groups)
	if m.Dice == 0 {
		return Result{Narrative: NoDiceNarrative, Tier: TierNeutral}
	}
	if math.IsNaN(swing) || math.IsInf(swing, 0) {
		swing = 0
	}
	lo, hi := float64(m.MinSum), float64(m.MaxSum)

	luckShift := StandardNormal(src) * m.Span * LuckScale * swing
	target := clamp(m.Mean+luckShift, lo, hi)

	raw := target + StandardNormal(src)*math.Sqrt(m.Variance)
	sum := toSum(clamp(math.Round(raw), lo, hi), m)

	var devRatio float64
	if m.Span > 0 {
		devRatio = (float64(sum) - m.Mean) / m.Span
	}
	tier, narrative := Classify(devRatio)

	return Result{
		Sum:       sum,
		Average:   float64(sum) / float64(m.Dice),
		Narrative: narrative,
		Tier:      tier,
	}
}

// RollExpr parses expr as a dice pool and rolls it with src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a Result or a parse error.
func RollExpr(expr string, swing float64, src Source) (Result, error) {
	groups, err := ParsePool(expr)
	if err != nil {
		return Result{}, err
	}
	return Roll(groups, swing, src), nil
}

// toSum converts a clamped float sum back to an int inside [m.MinSum, m.MaxSum].
// Above 2^53 the float bounds are rounded, so the int result is clamped again.
func toSum(v float64, m Moments) int {
	var sum int
	if v >= maxIntFloat {
		sum = m.MaxSum
	} else {
		sum = int(v)
	}
	if sum < m.MinSum {
		return m.MinSum
	}
	if sum > m.MaxSum {
		return m.MaxSum
	}
	return sum
}

// maxIntFloat is math.MaxInt as a float64. On 64-bit platforms it rounds up to 2^63,
// which int cannot hold.
const maxIntFloat = float64(math.MaxInt)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
