// Package server wires the broker together: config, logging, metrics,
// registry bring-up, and the HTTP/WebSocket surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/orbitalos/backend/internal/api/http"
	"github.com/orbitalos/backend/internal/api/middleware"
	"github.com/orbitalos/backend/internal/api/ws"
	"github.com/orbitalos/backend/internal/infrastructure/config"
	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/infrastructure/monitoring"
	"github.com/orbitalos/backend/internal/sm"
)

// Server owns the broker's long-lived components and its listener.
type Server struct {
	router   *gin.Engine
	registry *sm.ServiceRegistry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	httpSrv  *http.Server
}

// New builds a fully wired broker from configuration. Bring-up installs
// the root dispatcher and pre-registers any seeded services.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing service manager",
		zap.String("port", cfg.Server.Port),
		zap.String("well_known_name", cfg.Broker.WellKnownName),
	)

	metrics := monitoring.NewMetrics()

	registry := sm.NewServiceRegistry(logger, metrics)
	if err := registry.InstallInterfaces(cfg.Broker.WellKnownName, cfg.Broker.MaxSessions); err != nil {
		return nil, fmt.Errorf("bring-up failed: %w", err)
	}
	if err := seedServices(registry, cfg.Broker, logger); err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	handlers := apihttp.NewHandlers(registry)
	wsHandler := ws.NewHandler(registry, cfg.Broker.WellKnownName, logger, metrics)

	router.GET("/health", handlers.Health)
	router.GET("/services", handlers.ListServices)
	router.GET("/services/:name", handlers.GetService)
	router.GET("/stats", handlers.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", wsHandler.HandleConnection)

	return &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Registry exposes the registry for in-process callers and tests.
func (s *Server) Registry() *sm.ServiceRegistry { return s.registry }

// Run serves the API until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.Info("service manager listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the listener and flushes logs.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	_ = s.logger.Sync()
	return err
}

// seedServices pre-registers configured names so the daemon answers
// lookups at boot. The acceptor halves are dropped: seeded entries have
// no in-process handler behind them.
func seedServices(registry *sm.ServiceRegistry, cfg config.BrokerConfig, logger *logging.Logger) error {
	for _, seed := range cfg.Seeds() {
		if _, err := registry.Register(seed.Name, seed.MaxSessions); err != nil {
			return fmt.Errorf("seeding %q failed: %w", seed.Name, err)
		}
		logger.Info("seeded service",
			zap.String("service", seed.Name),
			zap.Uint32("max_sessions", seed.MaxSessions),
		)
	}
	return nil
}
