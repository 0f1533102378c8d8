package ws

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
	"github.com/GriffinCanCode/webterm/internal/domain/session"
)

const (
	writeWait = 10 * time.Second

	directionIn  = "in"
	directionOut = "out"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // the terminal page may be served from another origin
	},
}

// Recorder receives WebSocket metrics.
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// Config holds per-connection limits and the directory sessions start in.
type Config struct {
	WorkDir   string
	ReadLimit int64
}

// Handler upgrades HTTP requests to terminal sessions.
type Handler struct {
	cfg      Config
	registry *interpreter.Registry
	executor session.Executor
	manager  *session.Manager
	logger   *zap.Logger
	metrics  Recorder
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(cfg Config, registry *interpreter.Registry, executor session.Executor, manager *session.Manager, logger *zap.Logger, metrics Recorder) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:      cfg,
		registry: registry,
		executor: executor,
		manager:  manager,
		logger:   logger,
		metrics:  metrics,
	}
}

// HandleConnection upgrades the request and runs a session for the shell
// named by the :shell path parameter. Without one the default is used.
func (h *Handler) HandleConnection(c *gin.Context) {
	shell := c.Param("shell")

	sess, err := session.New(session.Config{
		Shell:      shell,
		WorkDir:    h.cfg.WorkDir,
		RemoteAddr: c.ClientIP(),
	}, h.registry, h.executor, h.logger.Named("session"))
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	if h.cfg.ReadLimit > 0 {
		wsConn.SetReadLimit(h.cfg.ReadLimit)
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	log := h.logger.With(
		zap.String("session_id", sess.ID().String()),
		zap.String("shell", sess.Profile().Name),
	)
	log.Info("WebSocket connected",
		zap.String("requested", shell),
		zap.String("remote_addr", c.ClientIP()),
	)

	err = h.manager.Serve(sess, newConn(wsConn, h.metrics))

	switch {
	case err == nil:
		log.Info("WebSocket session ended")
	case errors.Is(err, session.ErrProbeFailed):
		log.Warn("Interpreter unavailable, connection closed", zap.Error(err))
	case errors.Is(err, session.ErrShuttingDown):
		log.Debug("Rejected connection during shutdown")
	case websocket.IsUnexpectedCloseError(errors.Unwrap(err), websocket.CloseNormalClosure, websocket.CloseGoingAway):
		log.Warn("WebSocket closed unexpectedly", zap.Error(err))
	default:
		log.Debug("WebSocket session ended", zap.Error(err))
	}
}

// conn adapts a gorilla connection to session.Conn.
type conn struct {
	ws      *websocket.Conn
	metrics Recorder

	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, metrics Recorder) *conn {
	return &conn{ws: ws, metrics: metrics}
}

// Receive returns the next data frame. Text frames that are not valid UTF-8
// are reported as binary. A close frame from the peer yields io.EOF.
func (c *conn) Receive() (session.Frame, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return session.Frame{}, io.EOF
		}
		return session.Frame{}, err
	}

	binary := kind != websocket.TextMessage || !utf8.Valid(data)
	c.record(directionIn, binary)
	return session.Frame{Text: string(data), Binary: binary}, nil
}

func (c *conn) Send(text string) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(strings.ToValidUTF8(text, "\uFFFD"))); err != nil {
		return err
	}
	c.record(directionOut, false)
	return nil
}

// Close sends a normal close frame and closes the connection. It is safe to
// call more than once and concurrently with Receive and Send.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *conn) record(direction string, binary bool) {
	if c.metrics == nil {
		return
	}
	kind := "text"
	if binary {
		kind = "binary"
	}
	c.metrics.RecordWSMessage(direction, kind)
}
