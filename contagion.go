// Package contagion projects the spread of an epidemic through a closed
// population, day by day, from a handful of epidemiological parameters.
//
// Example usage:
//
//	engine, err := contagion.New(
//	    contagion.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state, err := engine.Run(ctx, contagion.DefaultParameters())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state.Summary().Caption())
//
//	rows, err := contagion.Project(state, contagion.TotalsView)
package contagion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/discochess/contagion/internal/cache"
	"github.com/discochess/contagion/internal/cache/lru"
	"github.com/discochess/contagion/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidParameter indicates a parameter set the recurrence cannot run.
	ErrInvalidParameter = errors.New("contagion: invalid parameter")

	// ErrUnknownField indicates a projection asked for a series that does not exist.
	ErrUnknownField = errors.New("contagion: unknown field")
)

// runKey identifies a run for the result cache.
type runKey struct {
	params Parameters
	seed   Seed
}

// Engine computes projections. It adds logging, metrics and an optional
// result cache around Simulate.
// An Engine is safe for concurrent use by multiple goroutines.
type Engine struct {
	seed   Seed
	cache  cache.Strategy[runKey, *State]
	stats  stats.Collector
	logger *zap.Logger
}

// New creates a new Engine with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	e := &Engine{
		seed:   cfg.seed,
		stats:  cfg.stats,
		logger: cfg.logger,
	}

	if cfg.cacheSize > 0 {
		c, err := lru.New[runKey, *State](cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = c
	}

	e.logger.Debug("engine initialized",
		zap.Int("cacheSize", cfg.cacheSize),
		zap.Int64("seedIll", e.seed.Ill),
	)

	return e, nil
}

// Run computes the projection for p.
// Returns an error wrapping ErrInvalidParameter if p fails validation, or
// the context error if ctx is cancelled part way through a long horizon.
// The returned State belongs to the caller.
func (e *Engine) Run(ctx context.Context, p Parameters) (*State, error) {
	return e.RunWithSeed(ctx, p, e.seed)
}

// RunWithSeed is Run starting from seed instead of the engine's seed.
func (e *Engine) RunWithSeed(ctx context.Context, p Parameters, seed Seed) (*State, error) {
	key := runKey{params: p, seed: seed}
	if e.cache != nil {
		if s, ok := e.cache.Get(key); ok {
			e.stats.IncCounter(stats.MetricResultCacheHits, 1)
			return s.Clone(), nil
		}
		e.stats.IncCounter(stats.MetricResultCacheMisses, 1)
	}

	runID := uuid.NewString()
	start := time.Now()

	s, err := simulate(ctx, p, seed)
	if err != nil {
		e.stats.IncCounter(stats.MetricRunErrors, 1)
		if errors.Is(err, ErrInvalidParameter) {
			e.logger.Warn("rejected parameters", zap.String("run", runID), zap.Error(err))
		}
		return nil, err
	}

	elapsed := time.Since(start)
	breach := s.CapacityExceededDay(p.TotalAvailableBeds)

	e.stats.IncCounter(stats.MetricRuns, 1)
	e.stats.IncCounter(stats.MetricDaysSimulated, int64(p.TimespanDays))
	e.stats.ObserveHistogram(stats.MetricRunDuration, elapsed.Seconds())
	if breach >= 0 {
		e.stats.IncCounter(stats.MetricCapacityBreaches, 1)
	}

	e.logger.Debug("projection computed",
		zap.String("run", runID),
		zap.Int("days", p.TimespanDays),
		zap.Int("capacityExceededDay", breach),
		zap.Duration("elapsed", elapsed),
	)

	if e.cache != nil {
		e.cache.Add(key, s.Clone())
	}
	return s, nil
}

// Views is what a presentation layer needs to draw one projection.
type Views struct {
	Summary Summary  `json:"summary"`
	Totals  []Record `json:"totals"`
	Daily   []Record `json:"daily"`
}

// Views runs p and projects the result onto TotalsView and DailyView.
func (e *Engine) Views(ctx context.Context, p Parameters) (*Views, error) {
	s, err := e.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	totals, err := e.Project(s, TotalsView)
	if err != nil {
		return nil, err
	}
	daily, err := e.Project(s, DailyView)
	if err != nil {
		return nil, err
	}

	return &Views{
		Summary: s.Summary(),
		Totals:  totals,
		Daily:   daily,
	}, nil
}

// Project is Project with metrics.
func (e *Engine) Project(s *State, fields []Field) ([]Record, error) {
	records, err := Project(s, fields)
	if err != nil {
		return nil, err
	}
	e.stats.IncCounter(stats.MetricProjections, 1)
	return records, nil
}

// Seed returns the initial conditions used by this engine.
func (e *Engine) Seed() Seed {
	return e.seed
}
