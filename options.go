package contagion

import (
	"go.uber.org/zap"

	"github.com/discochess/contagion/internal/stats"
)

// Option configures an Engine.
type Option interface {
	apply(*options)
}

// options holds the engine configuration.
type options struct {
	seed      Seed
	cacheSize int
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		seed:   DefaultSeed(),
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithSeed overrides the day-0 values.
// If not set, DefaultSeed is used.
func WithSeed(s Seed) Option {
	return optionFunc(func(o *options) {
		o.seed = s
	})
}

// WithCacheSize keeps the results of the last n distinct parameter sets.
// Zero, the default, disables caching.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
