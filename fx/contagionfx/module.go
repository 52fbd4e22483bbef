// Package contagionfx provides an fx module for the projection engine.
package contagionfx

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/config"
	"github.com/discochess/contagion/internal/stats"
	"github.com/discochess/contagion/internal/stats/logger"
	promstats "github.com/discochess/contagion/internal/stats/prometheus"
)

// Module provides a *contagion.Engine and the stats.Collector it reports to.
// Requires a *zap.Logger and a config.Engine to be provided. When a
// prometheus.Registerer is also provided, metrics are exported through it;
// otherwise they are logged at debug level.
var Module = fx.Module("contagion",
	fx.Provide(
		newStatsCollector,
		newEngine,
	),
)

// CollectorParams holds dependencies for creating the stats collector.
type CollectorParams struct {
	fx.In

	Logger     *zap.Logger
	Registerer prometheus.Registerer `optional:"true"`
}

func newStatsCollector(p CollectorParams) stats.Collector {
	if p.Registerer != nil {
		return promstats.New(p.Registerer)
	}
	return logger.New(p.Logger.Named("contagion.stats"))
}

// Params holds dependencies for creating the engine.
type Params struct {
	fx.In

	Config    config.Engine
	Logger    *zap.Logger
	Collector stats.Collector
}

func newEngine(p Params) (*contagion.Engine, error) {
	return contagion.New(
		contagion.WithCacheSize(p.Config.ResultCacheSize),
		contagion.WithStats(p.Collector),
		contagion.WithLogger(p.Logger.Named("contagion")),
	)
}
