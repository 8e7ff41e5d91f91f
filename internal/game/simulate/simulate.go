// Package simulate repeatedly invokes the swing roll engine and summarizes the
// distribution of the reported averages.
package simulate

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// Expectation describes what a verification run should observe.
type Expectation struct {
	// Mean is the expected mean of the per-trial averages; checked when Tolerance > 0.
	Mean      float64
	Tolerance float64
	// MinSpread is the smallest acceptable max-min spread of the averages; checked when > 0.
	MinSpread float64
}

// Scenario is one verification configuration.
type Scenario struct {
	Name   string
	Groups []dice.Group
	Swing  float64
	Trials int
	Expect Expectation
}

// Stats summarizes a simulation run.
type Stats struct {
	Trials      int
	MeanAverage float64
	StdDev      float64
	MinAverage  float64
	MaxAverage  float64
	Spread      float64
	P50         float64
	P90         float64
	P99         float64
	Tiers       map[dice.Tier]int
	// Averages holds the per-trial averages in trial order.
	Averages []float64
}

// SourceFactory returns the Source a worker rolls with. Each worker calls it once.
type SourceFactory func(worker int) dice.Source

// Run executes sc.Trials rolls spread over workers goroutines and returns their
// summary. Trial i always runs on worker i % workers, so a per-worker seeded factory
// reproduces the same Stats.
//
// Precondition: newSource must be non-nil.
// Postcondition: Returns zero Stats for sc.Trials <= 0, ctx.Err() wrapped on cancellation.
func Run(ctx context.Context, sc Scenario, newSource SourceFactory, workers int) (Stats, error) {
	if sc.Trials <= 0 {
		return Stats{}, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > sc.Trials {
		workers = sc.Trials
	}

	results := make([]dice.Result, sc.Trials)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		src := newSource(w)
		g.Go(func() error {
			for i := w; i < sc.Trials; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = dice.Roll(sc.Groups, sc.Swing, src)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("simulating %q: %w", sc.Name, err)
	}
	return summarize(results), nil
}

// summarize computes mean, population standard deviation, extremes and
// linearly interpolated percentiles of the averages.
func summarize(results []dice.Result) Stats {
	n := len(results)
	averages := make([]float64, n)
	tiers := make(map[dice.Tier]int)
	var sum float64
	for i, r := range results {
		averages[i] = r.Average
		tiers[r.Tier]++
		sum += r.Average
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range averages {
		d := v - mean
		acc += d * d
	}

	sorted := append([]float64(nil), averages...)
	sort.Float64s(sorted)
	percentile := func(p float64) float64 {
		if n == 1 {
			return sorted[0]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return sorted[n-1]
		}
		f := pos - float64(i)
		return sorted[i]*(1-f) + sorted[i+1]*f
	}

	return Stats{
		Trials:      n,
		MeanAverage: mean,
		StdDev:      math.Sqrt(acc / float64(n)),
		MinAverage:  sorted[0],
		MaxAverage:  sorted[n-1],
		Spread:      sorted[n-1] - sorted[0],
		P50:         percentile(0.50),
		P90:         percentile(0.90),
		P99:         percentile(0.99),
		Tiers:       tiers,
		Averages:    averages,
	}
}
