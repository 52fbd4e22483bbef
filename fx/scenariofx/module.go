// Package scenariofx provides an fx module for the scenario store.
package scenariofx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/contagion/internal/cache/lru"
	"github.com/discochess/contagion/internal/codec/registry"
	"github.com/discochess/contagion/internal/config"
	"github.com/discochess/contagion/internal/scenario"
	"github.com/discochess/contagion/internal/stats"
	"github.com/discochess/contagion/internal/store"
	"github.com/discochess/contagion/internal/store/cachedstore"
	"github.com/discochess/contagion/internal/store/cachedstore/memory"
	"github.com/discochess/contagion/internal/store/diskstore"
	"github.com/discochess/contagion/internal/store/gcsstore"
	"github.com/discochess/contagion/internal/store/s3store"
)

// Module provides a store.Store built from a config.Store.
// Requires a *zap.Logger and a stats.Collector to be provided.
var Module = fx.Module("scenario",
	fx.Provide(newStore),
)

// Params holds dependencies for creating the store.
type Params struct {
	fx.In

	Config    config.Store
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newStore(p Params) (store.Store, error) {
	st, err := NewStore(context.Background(), p.Config, p.Collector)
	if err != nil {
		return nil, err
	}

	p.Logger.Info("scenario store opened",
		zap.String("kind", p.Config.Kind),
		zap.Int("cacheSize", p.Config.CacheSize),
	)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return st.Close()
		},
	})
	return st, nil
}

// NewStore opens the store cfg describes, wrapped in an LRU cache of
// cfg.CacheSize documents when that is positive.
func NewStore(ctx context.Context, cfg config.Store, collector stats.Collector) (store.Store, error) {
	c, err := registry.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	var base store.Store
	switch cfg.Kind {
	case config.StoreBuiltin, "":
		base, err = scenario.Builtin()
	case config.StoreDisk:
		base, err = diskstore.New(cfg.Dir, c)
	case config.StoreS3:
		base, err = s3store.New(ctx, cfg.Bucket, c,
			s3store.WithPrefix(cfg.Prefix),
			s3store.WithRegion(cfg.Region),
			s3store.WithEndpoint(cfg.Endpoint),
		)
	case config.StoreGCS:
		base, err = gcsstore.New(ctx, cfg.Bucket, c, gcsstore.WithPrefix(cfg.Prefix))
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Kind, err)
	}

	if cfg.CacheSize <= 0 {
		return base, nil
	}
	strategy, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		base.Close()
		return nil, fmt.Errorf("creating LRU strategy: %w", err)
	}
	return cachedstore.New(base, memory.New(strategy, collector)), nil
}
