package dice

import "math"

// Moments holds the additive statistics of a dice pool. Dice are independent, so
// every field is the sum of the per-group contributions.
type Moments struct {
	Dice     int     // total number of counted dice
	MinSum   int     // every die shows 1
	MaxSum   int     // every die shows its highest face
	Mean     float64 // sum of count*(sides+1)/2
	Variance float64 // sum of count*(sides²-1)/12
	Span     float64 // sum of count*(sides-1), the unit of deviation
	// Overflow reports that Dice, MinSum or MaxSum saturated at math.MaxInt.
	Overflow bool
}

// Aggregate accumulates the moments of groups in order.
//
// Groups with Count <= 0 or Sides <= 0 contribute nothing. A one-sided die counts
// toward Dice, MinSum and MaxSum but adds no variance and no span.
//
// Postcondition: Dice, MinSum and MaxSum never wrap; they stop at math.MaxInt and
// Overflow is set. MinSum <= MaxSum always holds.
func Aggregate(groups []Group) Moments {
	var m Moments
	for _, g := range groups {
		if g.Count <= 0 || g.Sides <= 0 {
			continue
		}
		n := float64(g.Count)
		s := float64(g.Sides)

		m.Dice = m.addSat(m.Dice, g.Count)
		m.MinSum = m.addSat(m.MinSum, g.Count)
		m.MaxSum = m.addSat(m.MaxSum, m.mulSat(g.Count, g.Sides))
		m.Mean += n * (s + 1) / 2
		m.Variance += n * (s*s - 1) / 12
		m.Span += n * (s - 1)
	}
	return m
}

// addSat adds two non-negative ints, saturating at math.MaxInt.
func (m *Moments) addSat(a, b int) int {
	if a > math.MaxInt-b {
		m.Overflow = true
		return math.MaxInt
	}
	return a + b
}

// mulSat multiplies two positive ints, saturating at math.MaxInt.
func (m *Moments) mulSat(a, b int) int {
	if a > math.MaxInt/b {
		m.Overflow = true
		return math.MaxInt
	}
	return a * b
}
