package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
	"github.com/GriffinCanCode/webterm/internal/domain/session"
	"github.com/GriffinCanCode/webterm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webterm/internal/shared/id"
)

// Version is reported by the root and health endpoints.
const Version = "0.3.0"

// DefaultMaxCommandBytes bounds the body of POST /execute.
const DefaultMaxCommandBytes = 64 * 1024

// Config holds handler settings.
type Config struct {
	WorkDir         string
	MaxCommandBytes int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	cfg      Config
	registry *interpreter.Registry
	executor session.Executor
	sessions *session.Manager
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(
	cfg Config,
	registry *interpreter.Registry,
	executor session.Executor,
	sessions *session.Manager,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if cfg.MaxCommandBytes <= 0 {
		cfg.MaxCommandBytes = DefaultMaxCommandBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cfg:      cfg,
		registry: registry,
		executor: executor,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		started:  time.Now(),
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webterm",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":        "healthy",
		"version":       Version,
		"uptime":        time.Since(h.started).Round(time.Second).String(),
		"default_shell": h.registry.Default().Name,
		"shells":        h.registry.Names(),
		"sessions":      h.sessions.Stats(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// ListShells returns the names of the interpreters installed on the host.
func (h *Handlers) ListShells(c *gin.Context) {
	available := h.registry.Available()

	names := make([]string, 0, len(available))
	for _, p := range available {
		names = append(names, p.Name)
	}
	c.JSON(http.StatusOK, names)
}

// Execute runs the request body as one command in the work directory and
// returns the normalized output as plain text. The shell query parameter
// selects the interpreter; unknown or missing names use the default.
func (h *Handlers) Execute(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxCommandBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "command too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read command"})
		return
	}
	if !utf8.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command must be UTF-8 text"})
		return
	}

	command := string(body)
	if strings.TrimSpace(command) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty command"})
		return
	}

	requested := c.Query("shell")
	profile := h.registry.Resolve(requested)

	h.logger.Debug("> "+command,
		zap.String("shell", profile.Name),
		zap.String("requested", requested),
		zap.String("dir", h.cfg.WorkDir),
	)
	output := h.executor.Execute(profile, h.cfg.WorkDir, command)

	c.Header("X-Shell", profile.Name)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(output))
}

// ListSessions lists the live WebSocket sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.sessions.List(),
		"stats":    h.sessions.Stats(),
	})
}

// GetSession returns one live session
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	if !id.IsValid(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	info, ok := h.sessions.Get(id.SessionID(sessionID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}
