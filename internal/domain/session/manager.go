package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/shared/id"
)

// ErrShuttingDown is returned by Serve once Shutdown has been called.
var ErrShuttingDown = errors.New("session manager is shutting down")

// Info is the public metadata of a live session.
type Info struct {
	ID         id.SessionID `json:"id"`
	Shell      string       `json:"shell"`
	Requested  string       `json:"requested,omitempty"`
	RemoteAddr string       `json:"remote_addr,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
}

// Stats summarizes manager activity.
type Stats struct {
	Active      int        `json:"active"`
	Total       uint64     `json:"total"`
	LastStarted *time.Time `json:"last_started,omitempty"`
}

type entry struct {
	info Info
	conn Conn
}

// Manager tracks live sessions so they can be listed and closed on shutdown.
// Session state itself stays with the goroutine running the session.
type Manager struct {
	sessions sync.Map // id.SessionID -> *entry
	logger   *zap.Logger
	metrics  Recorder

	mu          sync.Mutex
	closing     bool
	wg          sync.WaitGroup
	lastStarted *time.Time

	total atomic.Uint64
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(logger *zap.Logger, metrics Recorder) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:  logger,
		metrics: metrics,
	}
}

// Serve registers s, runs it over conn and unregisters it when it ends.
// It blocks for the lifetime of the session.
func (m *Manager) Serve(s *Session, conn Conn) error {
	info := s.Info()

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		conn.Close()
		return ErrShuttingDown
	}
	m.wg.Add(1)
	started := info.StartedAt
	m.lastStarted = &started
	m.mu.Unlock()
	defer m.wg.Done()

	m.sessions.Store(info.ID, &entry{info: info, conn: conn})
	m.total.Add(1)
	if m.metrics != nil {
		m.metrics.SessionOpened(info.Shell)
		s.WithMetrics(m.metrics)
	}

	defer func() {
		m.sessions.Delete(info.ID)
		if m.metrics != nil {
			m.metrics.SessionClosed(info.Shell, time.Since(info.StartedAt))
		}
	}()

	return s.Run(conn)
}

// List returns the live sessions ordered by start time.
func (m *Manager) List() []Info {
	list := make([]Info, 0)

	m.sessions.Range(func(_, value interface{}) bool {
		list = append(list, value.(*entry).info)
		return true
	})

	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartedAt.Before(list[j].StartedAt)
	})
	return list
}

// Get returns the metadata of a live session.
func (m *Manager) Get(sessionID id.SessionID) (Info, bool) {
	value, ok := m.sessions.Load(sessionID)
	if !ok {
		return Info{}, false
	}
	return value.(*entry).info, true
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	var active int
	m.sessions.Range(func(_, _ interface{}) bool {
		active++
		return true
	})

	m.mu.Lock()
	lastStarted := m.lastStarted
	m.mu.Unlock()

	return Stats{
		Active:      active,
		Total:       m.total.Load(),
		LastStarted: lastStarted,
	}
}

// Shutdown stops accepting sessions, closes every live connection and waits
// for the sessions to return. A session blocked on a running command only
// returns once that command exits, so ctx bounds the wait.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	var closed int
	m.sessions.Range(func(_, value interface{}) bool {
		if err := value.(*entry).conn.Close(); err != nil {
			m.logger.Debug("Close during shutdown failed", zap.Error(err))
		}
		closed++
		return true
	})
	m.logger.Info("Closing sessions", zap.Int("count", closed))

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sessions still running at shutdown: %w", ctx.Err())
	}
}
