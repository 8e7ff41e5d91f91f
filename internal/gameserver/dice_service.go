// Package gameserver provides the gRPC DiceService backed by the swing roll
// engine, the preset registry and the effect scripts.
package gameserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
	"github.com/cory-johannsen/swingdice/internal/game/preset"
	"github.com/cory-johannsen/swingdice/internal/game/simulate"
	dicev1 "github.com/cory-johannsen/swingdice/internal/gameserver/dicev1"
	"github.com/cory-johannsen/swingdice/internal/scripting"
)

// ServiceOptions bounds what clients may request.
type ServiceOptions struct {
	Limits       dice.Limits
	DefaultSwing float64
	// MaxTrials caps Simulate requests.
	MaxTrials int
	// Workers is the simulator goroutine count.
	Workers int
}

// DiceServiceServer implements the gRPC DiceService.
type DiceServiceServer struct {
	dicev1.UnimplementedDiceServiceServer
	roller  *dice.Roller
	presets *preset.Registry
	scripts *scripting.Manager
	opts    ServiceOptions
	logger  *zap.Logger
	newID   func() string
}

// NewDiceServiceServer creates a DiceServiceServer with the given dependencies.
//
// Precondition: roller, presets and logger must be non-nil. scripts may be nil
// (every roll then gets the built-in effect).
// Postcondition: Returns a fully initialised DiceServiceServer.
func NewDiceServiceServer(
	roller *dice.Roller,
	presets *preset.Registry,
	scripts *scripting.Manager,
	opts ServiceOptions,
	logger *zap.Logger,
) *DiceServiceServer {
	return &DiceServiceServer{
		roller:  roller,
		presets: presets,
		scripts: scripts,
		opts:    opts,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// Roll rolls the requested pool once.
func (s *DiceServiceServer) Roll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pr, err := s.decode(req)
	if err != nil {
		return nil, err
	}

	rollID := s.newID()
	res := s.roller.Roll(pr.groups, pr.swing)
	effect := s.scripts.Effect(pr.scriptSet, res)
	m := dice.Aggregate(pr.groups)
	pool := dice.FormatPool(pr.groups)

	s.logger.Info("roll",
		zap.String("roll_id", rollID),
		zap.String("pool", pool),
		zap.Float64("swing", pr.swing),
		zap.Int("sum", res.Sum),
		zap.String("tier", string(res.Tier)),
		zap.String("effect", effect),
	)

	return encode(map[string]interface{}{
		"roll_id":    rollID,
		"pool":       pool,
		"swing":      pr.swing,
		"sum":        res.Sum,
		"average":    res.Average,
		"narrative":  res.Narrative,
		"luck_tier":  string(res.Tier),
		"rank":       res.Tier.Rank(),
		"emphasized": res.Tier.Emphasized(),
		"effect":     effect,
		"min_sum":    m.MinSum,
		"max_sum":    m.MaxSum,
		"mean":       m.Mean,
	})
}

// Simulate rolls the requested pool trials times and returns the summary.
func (s *DiceServiceServer) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pr, err := s.decode(req)
	if err != nil {
		return nil, err
	}
	if pr.trials < 1 || (s.opts.MaxTrials > 0 && pr.trials > s.opts.MaxTrials) {
		return nil, status.Errorf(codes.InvalidArgument, "trials must be in [1, %d], got %d", s.opts.MaxTrials, pr.trials)
	}

	pool := dice.FormatPool(pr.groups)
	sc := simulate.Scenario{Name: pool, Groups: pr.groups, Swing: pr.swing, Trials: pr.trials}
	src := s.roller.Source()
	stats, err := simulate.Run(ctx, sc, func(int) dice.Source { return src }, s.opts.Workers)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info("simulate",
		zap.String("pool", pool),
		zap.Float64("swing", pr.swing),
		zap.Int("trials", stats.Trials),
		zap.Float64("mean_average", stats.MeanAverage),
		zap.Float64("spread", stats.Spread),
	)

	tiers := make(map[string]interface{}, len(stats.Tiers))
	for t, n := range stats.Tiers {
		tiers[string(t)] = n
	}
	return encode(map[string]interface{}{
		"pool":         pool,
		"swing":        pr.swing,
		"trials":       stats.Trials,
		"mean_average": stats.MeanAverage,
		"std_dev":      stats.StdDev,
		"min_average":  stats.MinAverage,
		"max_average":  stats.MaxAverage,
		"spread":       stats.Spread,
		"p50":          stats.P50,
		"p90":          stats.P90,
		"p99":          stats.P99,
		"tiers":        tiers,
	})
}

// ListPresets returns every registered preset sorted by ID.
func (s *DiceServiceServer) ListPresets(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	all := s.presets.All()
	list := make([]interface{}, 0, len(all))
	for _, p := range all {
		item := map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"pool":        p.Pool,
		}
		if p.Swing != nil {
			item["swing"] = *p.Swing
		}
		list = append(list, item)
	}
	return encode(map[string]interface{}{"presets": list})
}

// decode resolves req and validates it against the configured limits.
func (s *DiceServiceServer) decode(req *structpb.Struct) (poolRequest, error) {
	pr, err := decodePool(req, s.presets, s.opts.DefaultSwing)
	if err != nil {
		return pr, toStatus(err)
	}
	if err := dice.Validate(pr.groups, pr.swing, s.opts.Limits); err != nil {
		return pr, toStatus(err)
	}
	return pr, nil
}

// toStatus maps domain errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, preset.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		// Everything else stems from the request: parse and validation failures.
		return status.Error(codes.InvalidArgument, err.Error())
	}
}

func encode(m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encoding response: %v", err))
	}
	return out, nil
}
