package dice

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoGroups indicates a request carried no dice groups.
	ErrNoGroups = errors.New("dice: at least one group is required")
	// ErrInvalidGroup indicates a group has a count or side count outside the limits.
	ErrInvalidGroup = errors.New("dice: invalid group")
	// ErrTooManyGroups indicates a request exceeded Limits.MaxGroups.
	ErrTooManyGroups = errors.New("dice: too many groups")
	// ErrPoolTooLarge indicates the pool's highest possible sum exceeds MaxExactSum.
	ErrPoolTooLarge = errors.New("dice: pool too large")
	// ErrInvalidSwing indicates swing is not a finite value in [0, 1].
	ErrInvalidSwing = errors.New("dice: swing must be in [0, 1]")
)

// MaxExactSum is the largest sum a float64 (and so a protobuf number) carries exactly.
// Validate rejects pools that could exceed it regardless of Limits.
const MaxExactSum = 1 << 53

// Limits bounds what a caller may request. A zero field means unlimited.
type Limits struct {
	MaxGroups int
	MaxCount  int
	MaxSides  int
}

// Validate checks a request before it reaches the engine. Roll itself accepts any
// input; Validate is for surfaces that take user-entered pools.
//
// Postcondition: Returns nil, or an error wrapping one of the package sentinels.
func Validate(groups []Group, swing float64, limits Limits) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}
	if limits.MaxGroups > 0 && len(groups) > limits.MaxGroups {
		return fmt.Errorf("%w: %d groups, limit %d", ErrTooManyGroups, len(groups), limits.MaxGroups)
	}
	for i, g := range groups {
		if g.Count < 1 || (limits.MaxCount > 0 && g.Count > limits.MaxCount) {
			return fmt.Errorf("%w: groups[%d] count %d out of range", ErrInvalidGroup, i, g.Count)
		}
		if g.Sides < 2 || (limits.MaxSides > 0 && g.Sides > limits.MaxSides) {
			return fmt.Errorf("%w: groups[%d] sides %d out of range", ErrInvalidGroup, i, g.Sides)
		}
	}
	if m := Aggregate(groups); m.Overflow || int64(m.MaxSum) > MaxExactSum {
		return fmt.Errorf("%w: highest sum exceeds %d", ErrPoolTooLarge, int64(MaxExactSum))
	}
	if math.IsNaN(swing) || swing < 0 || swing > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSwing, swing)
	}
	return nil
}
