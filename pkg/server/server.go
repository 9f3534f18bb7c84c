package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/aggregate"
	"rollcall-hq/attendance/pkg/attendance/checkin"
	"rollcall-hq/attendance/pkg/attendance/retention"
	"rollcall-hq/attendance/pkg/attendance/store"
	"rollcall-hq/attendance/pkg/attendance/uploads"
	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/roster"
	"rollcall-hq/attendance/pkg/telemetry"
	"rollcall-hq/attendance/pkg/telemetry/health"
)

// Dependencies are the components the handlers call into. Roster and
// Telemetry may be nil.
type Dependencies struct {
	Store      *store.Store
	Checkins   *checkin.Service
	Aggregator *aggregate.Aggregator
	Sweeper    *retention.Sweeper
	Roster     *roster.Roster
	Uploads    *uploads.Dir
	Clock      *attendance.Clock
	Telemetry  *telemetry.Telemetry
}

func (d Dependencies) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("store is required")
	case d.Checkins == nil:
		return errors.New("check-in service is required")
	case d.Aggregator == nil:
		return errors.New("aggregator is required")
	case d.Sweeper == nil:
		return errors.New("sweeper is required")
	case d.Uploads == nil:
		return errors.New("upload directory is required")
	case d.Clock == nil:
		return errors.New("clock is required")
	}
	return nil
}

// Server is the attendance HTTP server.
type Server struct {
	config     *config.Config
	deps       Dependencies
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server and builds its routes.
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid server dependencies: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}

	engine, err := s.setupRoutes()
	if err != nil {
		return nil, err
	}
	s.engine = engine

	return s, nil
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.engine,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting attendance server",
			"address", s.config.Server.ListenAddress,
			"mode", s.config.Server.Mode,
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		srv := s.httpServer
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("attendance server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRoutes configures the middleware chain and routes.
func (s *Server) setupRoutes() (*gin.Engine, error) {
	engine := gin.New()
	engine.MaxMultipartMemory = s.config.Server.MaxUploadBytes

	if err := engine.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// Recovery is outermost so panics in the other middleware are caught.
	engine.Use(RecoveryMiddleware())
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware())
	if t := s.deps.Telemetry; t != nil {
		engine.Use(MetricsMiddleware(t.Metrics))
	}
	engine.Use(CORSMiddleware(&s.config.Server.CORS))

	api := engine.Group("/api")
	{
		api.POST("/checkins", s.handleCheckin)
		api.GET("/logs", s.handleLogs)
		api.GET("/summary", s.handleSummary)
		api.GET("/stats", s.handleStats)
		api.DELETE("/records/:id", s.handleDeleteRecord)
		api.POST("/sweep", s.handleSweep)
		api.GET("/sweep/status", s.handleSweepStatus)
		api.GET("/export", s.handleExport)
		api.GET("/roster", s.handleRoster)
		api.POST("/roster/reload", s.handleRosterReload)
		api.GET("/consistency", s.handleConsistency)
	}

	engine.Static(s.deps.Uploads.URLPrefix(), s.deps.Uploads.Root())

	if t := s.deps.Telemetry; t != nil {
		hc := &s.config.Telemetry.Health
		engine.GET(hc.LivenessPath, gin.WrapF(t.Health.LivenessHandler()))
		engine.GET(hc.ReadinessPath, gin.WrapF(t.Health.ReadinessHandler()))
		engine.GET(hc.VersionPath, gin.WrapF(
			health.VersionHandler(t.Build.Version, t.Build.Commit, t.Build.BuildTime),
		))

		if s.config.Telemetry.Metrics.Enabled {
			engine.GET(s.config.Telemetry.Metrics.Path, gin.WrapH(t.Metrics.Handler()))
		}
	}

	return engine, nil
}
