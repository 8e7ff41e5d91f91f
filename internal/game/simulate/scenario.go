package simulate

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// Level grades a verification finding.
type Level string

const (
	LevelPass Level = "PASS"
	LevelFail Level = "FAIL"
	LevelWarn Level = "WARN"
)

// Finding is one graded observation about a run.
type Finding struct {
	Level   Level
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Level, f.Message)
}

// DefaultScenarios returns the standard verification suite: a million d6 with no
// swing, a million d6 at full swing, and a million d20 at full swing.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:   "0% swing (1,000,000 d6)",
			Groups: []dice.Group{{Count: 1000000, Sides: 6}},
			Swing:  0,
			Trials: 10,
			Expect: Expectation{Mean: 3.5, Tolerance: 0.01},
		},
		{
			Name:   "100% swing (1,000,000 d6)",
			Groups: []dice.Group{{Count: 1000000, Sides: 6}},
			Swing:  1,
			Trials: 10,
			Expect: Expectation{MinSpread: 0.5},
		},
		{
			Name:   "100% swing (1,000,000 d20)",
			Groups: []dice.Group{{Count: 1000000, Sides: 20}},
			Swing:  1,
			Trials: 5,
		},
	}
}

// Check grades stats against sc.Expect. A mean outside tolerance fails; a spread
// below MinSpread only warns, since a short run at full swing can cluster by chance.
// A scenario with no expectations yields no findings.
func Check(sc Scenario, stats Stats) []Finding {
	var out []Finding
	if sc.Expect.Tolerance > 0 {
		diff := math.Abs(stats.MeanAverage - sc.Expect.Mean)
		if diff > sc.Expect.Tolerance {
			out = append(out, Finding{LevelFail, fmt.Sprintf("mean of averages %.4f deviates from %.4f by more than %.4f",
				stats.MeanAverage, sc.Expect.Mean, sc.Expect.Tolerance)})
		} else {
			out = append(out, Finding{LevelPass, fmt.Sprintf("mean of averages %.4f within %.4f of %.4f",
				stats.MeanAverage, sc.Expect.Tolerance, sc.Expect.Mean)})
		}
	}
	if sc.Expect.MinSpread > 0 {
		if stats.Spread < sc.Expect.MinSpread {
			out = append(out, Finding{LevelWarn, fmt.Sprintf("spread %.4f below %.4f; swing may be too weak (or an unlucky sample)",
				stats.Spread, sc.Expect.MinSpread)})
		} else {
			out = append(out, Finding{LevelPass, fmt.Sprintf("spread %.4f to %.4f shows significant variance",
				stats.MinAverage, stats.MaxAverage)})
		}
	}
	return out
}

// Failed reports whether any finding is a failure.
func Failed(findings []Finding) bool {
	for _, f := range findings {
		if f.Level == LevelFail {
			return true
		}
	}
	return false
}
