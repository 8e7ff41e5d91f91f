package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged swing rolls.
// Every roll is logged at debug level with pool, swing, sum, average and tier.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the randomness provider backing r.
func (r *Roller) Source() Source {
	return r.src
}

// Roll rolls groups at swing and logs the result at debug level.
//
// Postcondition: result logged; returns the same Result as Roll(groups, swing, r.Source()).
func (r *Roller) Roll(groups []Group, swing float64) Result {
	result := Roll(groups, swing, r.src)
	r.logger.Debug("swing roll",
		zap.String("pool", FormatPool(groups)),
		zap.Float64("swing", swing),
		zap.Int("sum", result.Sum),
		zap.Float64("average", result.Average),
		zap.String("tier", string(result.Tier)),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Precondition: expr must be a valid pool expression string.
// Postcondition: Returns a Result or a parse error.
func (r *Roller) RollExpr(expr string, swing float64) (Result, error) {
	groups, err := ParsePool(expr)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(groups, swing), nil
}
