package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/api/http"
	"github.com/GriffinCanCode/webterm/internal/api/middleware"
	"github.com/GriffinCanCode/webterm/internal/api/ws"
	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
	"github.com/GriffinCanCode/webterm/internal/domain/session"
	"github.com/GriffinCanCode/webterm/internal/infrastructure/config"
	"github.com/GriffinCanCode/webterm/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webterm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webterm/internal/providers/terminal"
)

const readHeaderTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *nethttp.Server
	registry   *interpreter.Registry
	executor   *terminal.Executor
	sessions   *session.Manager
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance. cfg must already be resolved.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing webterm server",
		zap.String("addr", cfg.Addr()),
		zap.String("work_dir", cfg.Workspace.WorkDir),
		zap.String("public_dir", cfg.Workspace.PublicDir),
		zap.String("logs_dir", cfg.Workspace.LogsDir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	executor := terminal.NewExecutor(logger.Named("executor"), metrics)

	var extra []interpreter.Profile
	if cfg.Shell.Catalog != "" {
		extra, err = interpreter.LoadCatalog(cfg.Shell.Catalog)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded shell catalog",
			zap.String("path", cfg.Shell.Catalog),
			zap.Int("profiles", len(extra)),
		)
	}

	registry := interpreter.NewRegistry(cfg.Shell.Default, extra...).WithProber(executor, cfg.Shell.ProbeTTL)
	if cfg.Shell.Default != "" && registry.Default().Name != cfg.Shell.Default {
		logger.Warn("Unknown DEFAULT_SHELL, using platform default",
			zap.String("requested", cfg.Shell.Default),
			zap.String("shell", registry.Default().Name),
		)
	}
	logger.Info("Shell registry ready",
		zap.Strings("shells", registry.Names()),
		zap.String("default", registry.Default().Name),
	)

	sessions := session.NewManager(logger.Named("sessions"), metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	limited := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		limited = append(limited, middleware.RateLimit(limit))
	}

	// Create handlers
	handlers := http.NewHandlers(
		http.Config{WorkDir: cfg.Workspace.WorkDir},
		registry, executor, sessions, metrics,
		logger.Named("http"),
	)
	wsHandler := ws.NewHandler(
		ws.Config{WorkDir: cfg.Workspace.WorkDir, ReadLimit: cfg.Server.WSReadLimit},
		registry, executor, sessions,
		logger.Named("ws"), metrics,
	)

	// Register routes
	router.GET("/status", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/shells", handlers.ListShells)
	router.POST("/execute", append(limited, handlers.Execute)...)
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.POST("/client-logs", handlers.StreamLogs)

	// WebSocket
	router.GET("/socket", append(limited, wsHandler.HandleConnection)...)
	router.GET("/socket/:shell", append(limited, wsHandler.HandleConnection)...)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Log files and the terminal page
	router.GET("/logs/*filepath", gin.WrapH(nethttp.StripPrefix("/logs", staticHandler(cfg.Workspace.LogsDir))))
	router.NoRoute(serveStatic(staticHandler(cfg.Workspace.PublicDir)))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &nethttp.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		registry: registry,
		executor: executor,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" && !cfg.Logging.Development {
		logCfg.Level = cfg.Logging.Level
	}

	logCfg, err := logCfg.WithFile(cfg.LogFile())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// staticHandler serves dir with gzip compression for clients that accept it.
func staticHandler(dir string) nethttp.Handler {
	return gzhttp.GzipHandler(nethttp.FileServer(nethttp.Dir(filepath.Clean(dir))))
}

// serveStatic answers unmatched GET and HEAD requests from h.
func serveStatic(h nethttp.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != nethttp.MethodGet && c.Request.Method != nethttp.MethodHead {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Logger returns the server logger.
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// after Shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, closes live terminal sessions and
// waits for them until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}

	// hijacked WebSocket connections are not tracked by http.Server
	if err := s.sessions.Shutdown(ctx); err != nil {
		s.logger.Warn("Sessions did not finish in time", zap.Error(err))
		errs = append(errs, err)
	}

	s.logger.Info("Server stopped", zap.Uint64("sessions_served", s.sessions.Stats().Total))

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
