// Package dice provides the randomness abstraction, dice-pool expressions and the
// aggregate swing roll engine for swingdice.
//
// The engine never rolls individual dice. It aggregates the per-die moments of every
// group and samples one plausible total from a normal approximation, biased by a
// single "luck" draw whose reach is scaled by the caller's swing.
package dice

import "fmt"

// Group is one homogeneous batch of dice rolled together.
//
// A roll request is an ordered slice of Groups; groups with Count <= 0 are ignored.
type Group struct {
	Count int // number of dice in the group
	Sides int // faces per die, each of 1..Sides equally likely
}

// String returns the group in "NdS" form, e.g. "1000000d6".
func (g Group) String() string {
	return fmt.Sprintf("%dd%d", g.Count, g.Sides)
}

// Result is the aggregate outcome of one roll request.
//
// Invariant: when at least one die was counted, Aggregate(groups).MinSum <= Sum <=
// Aggregate(groups).MaxSum and Average == Sum / Aggregate(groups).Dice.
type Result struct {
	Sum       int     // simulated total across every die of every group
	Average   float64 // Sum divided by the number of dice; 0 when no dice were rolled
	Narrative string  // fixed descriptive sentence for Tier
	Tier      Tier    // luck classification of the deviation from the unbiased mean
}

// Source is the randomness provider for the roll engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}
