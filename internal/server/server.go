// Package server exposes the cached snapshots over HTTP. Every data route is
// a constant-time read of the snapshot store; upstream trouble shows up as
// stale or empty data, never as a 5xx.
package server

import (
	"context"
	"net"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/hydrolink/internal/clock"
	"github.com/smallbiznis/hydrolink/internal/config"
	"github.com/smallbiznis/hydrolink/internal/observability/logger"
	"github.com/smallbiznis/hydrolink/internal/observability/metrics"
	"github.com/smallbiznis/hydrolink/internal/observability/tracing"
	"github.com/smallbiznis/hydrolink/internal/query"
	"github.com/smallbiznis/hydrolink/internal/refresh"
)

// Version is the build version injected from main.
type Version string

// EngineParams collects the middleware dependencies for the gin engine.
type EngineParams struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	Node        *snowflake.Node      `optional:"true"`
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

// NewEngine builds the gin engine with recovery, request logging and HTTP
// metrics middleware.
func NewEngine(p EngineParams) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Log:  p.Log,
		Node: p.Node,
	}))
	engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	return engine
}

// Params collects the server dependencies.
type Params struct {
	fx.In

	Config     config.Config
	Engine     *gin.Engine
	Query      *query.Service
	RefreshCfg refresh.Config
	Clock      clock.Clock
	Registry   *prometheus.Registry `optional:"true"`
	Version    Version              `optional:"true"`
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg        config.Config
	engine     *gin.Engine
	query      *query.Service
	refreshCfg refresh.Config
	clock      clock.Clock
	registry   *prometheus.Registry
	version    string
}

func NewServer(p Params) *Server {
	version := string(p.Version)
	if version == "" {
		version = "dev"
	}
	return &Server{
		cfg:        p.Config,
		engine:     p.Engine,
		query:      p.Query,
		refreshCfg: p.RefreshCfg,
		clock:      p.Clock,
		registry:   p.Registry,
		version:    version,
	}
}

// RegisterRoutes mounts the health, data and metrics routes.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/", s.Health)

	api := s.engine.Group("/api")
	api.GET("/peak-events", s.PeakEvents)
	api.GET("/customers", s.Customers)
	api.GET("/consumption/current", s.ConsumptionCurrent)
	api.GET("/balance", s.Balance)

	if s.registry != nil {
		handler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
		s.engine.GET("/metrics", gin.WrapH(handler))
	}
}

// RunHTTP binds the listener during startup so a bad address fails the app
// instead of a background goroutine.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
