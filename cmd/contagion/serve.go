package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/fx/contagionfx"
	"github.com/discochess/contagion/fx/scenariofx"
	"github.com/discochess/contagion/internal/api"
	"github.com/discochess/contagion/internal/config"
	"github.com/discochess/contagion/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  GET  /healthz
  GET  /metrics
  POST /v1/projections
  GET  /v1/scenarios
  GET  /v1/scenarios/{name}
  GET  /v1/scenarios/{name}/projection

Examples:
  # Listen on the configured address (default :8080)
  contagion serve

  # Scenarios from a local directory
  CONTAGION_STORE=disk CONTAGION_STORE_DIR=./data contagion serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr    string
	serveTimeout time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 30*time.Second, "per-request timeout, 0 disables")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	app := fx.New(
		fx.Supply(log, cfg.HTTP, cfg.Store, cfg.Engine),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(newRegistry, newRouter, newServer),
		contagionfx.Module,
		scenariofx.Module,
		fx.Invoke(func(*http.Server) {}),
	)

	startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-cmd.Context().Done()
	log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}

// RegistryResult exposes one registry as both Registerer and Gatherer.
type RegistryResult struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func newRegistry() RegistryResult {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return RegistryResult{Registerer: reg, Gatherer: reg}
}

// RouterParams holds dependencies for creating the HTTP handler.
type RouterParams struct {
	fx.In

	Config   config.HTTP
	Engine   *contagion.Engine
	Store    store.Store
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer
}

func newRouter(p RouterParams) http.Handler {
	h := api.NewHandler(api.HandlerDeps{
		Engine: p.Engine,
		Store:  p.Store,
		Logger: p.Logger.Named("api"),
	})
	return api.NewRouter(h, api.RouterOptions{
		AllowedOrigins: p.Config.AllowedOrigins,
		Gatherer:       p.Gatherer,
		Timeout:        serveTimeout,
	})
}

// ServerParams holds dependencies for creating the HTTP server.
type ServerParams struct {
	fx.In

	Config    config.HTTP
	Handler   http.Handler
	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
}

func newServer(p ServerParams) *http.Server {
	srv := &http.Server{
		Addr:              p.Config.Addr,
		Handler:           p.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			p.Logger.Info("listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
