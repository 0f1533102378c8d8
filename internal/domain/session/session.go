package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
	"github.com/GriffinCanCode/webterm/internal/shared/id"
)

const (
	exitCommand = "exit"
	cdPrefix    = "cd "
)

// ErrProbeFailed is returned by Run when the interpreter's version probe
// fails and the session ends before accepting commands.
var ErrProbeFailed = errors.New("version probe failed")

// Phase is a step of the session lifecycle.
type Phase int32

const (
	PhaseAwaitingProfile Phase = iota
	PhaseAwaitingVersionAck
	PhaseReceivingCommand
	PhaseExecuting
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingProfile:
		return "awaiting_profile"
	case PhaseAwaitingVersionAck:
		return "awaiting_version_ack"
	case PhaseReceivingCommand:
		return "receiving_command"
	case PhaseExecuting:
		return "executing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Frame is one inbound message.
type Frame struct {
	Text   string
	Binary bool
}

// Conn is the bidirectional message channel a session runs over.
// Receive returns io.EOF when the peer closes the channel cleanly.
type Conn interface {
	Receive() (Frame, error)
	Send(text string) error
	Close() error
}

// Executor runs commands and version probes.
type Executor interface {
	Execute(profile interpreter.Profile, workDir, command string) string
	Probe(profile interpreter.Profile) (string, error)
}

// Recorder receives session metrics.
type Recorder interface {
	RecordDirChange(ok bool)
	SessionOpened(shell string)
	SessionClosed(shell string, duration time.Duration)
}

// Config seeds a session.
type Config struct {
	ID         id.SessionID
	Shell      string
	WorkDir    string
	RemoteAddr string
}

// Session drives one connection: it probes the interpreter, sends the
// version banner, then handles one command at a time until the peer sends
// "exit" or the connection fails.
type Session struct {
	id         id.SessionID
	requested  string
	remoteAddr string
	startedAt  time.Time

	state    *State
	executor Executor
	logger   *zap.Logger
	metrics  Recorder

	phase atomic.Int32
}

// New resolves the requested interpreter and prepares a session. Unknown
// interpreter names fall back to the registry default.
func New(cfg Config, registry *interpreter.Registry, executor Executor, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ID == "" {
		cfg.ID = id.NewSessionID()
	}

	s := &Session{
		id:         cfg.ID,
		requested:  cfg.Shell,
		remoteAddr: cfg.RemoteAddr,
		startedAt:  time.Now(),
		executor:   executor,
		logger:     logger.With(zap.String("session_id", string(cfg.ID))),
	}
	s.setPhase(PhaseAwaitingProfile)

	profile := registry.Resolve(cfg.Shell)
	if cfg.Shell != "" && profile.Name != cfg.Shell {
		s.logger.Info("Unknown shell, using default",
			zap.String("requested", cfg.Shell),
			zap.String("shell", profile.Name),
		)
	}

	state, err := NewState(profile, cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	s.state = state
	s.setPhase(PhaseAwaitingVersionAck)
	return s, nil
}

// WithMetrics attaches a metrics recorder.
func (s *Session) WithMetrics(metrics Recorder) *Session {
	s.metrics = metrics
	return s
}

// ID returns the session identifier.
func (s *Session) ID() id.SessionID {
	return s.id
}

// Profile returns the interpreter the session runs commands through.
func (s *Session) Profile() interpreter.Profile {
	return s.state.Profile
}

// Phase reports the current lifecycle step. Safe for concurrent use.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// Info returns the session's public metadata.
func (s *Session) Info() Info {
	return Info{
		ID:         s.id,
		Shell:      s.state.Profile.Name,
		Requested:  s.requested,
		RemoteAddr: s.remoteAddr,
		StartedAt:  s.startedAt,
	}
}

// Run sends the version banner and serves commands until the session ends.
// It closes conn before returning. A clean end (the "exit" command or the
// peer closing the channel) returns nil.
func (s *Session) Run(conn Conn) error {
	defer s.setPhase(PhaseClosed)
	defer conn.Close()

	profile := s.state.Profile

	banner, err := s.executor.Probe(profile)
	if err != nil {
		s.logger.Warn("Version probe failed, closing session",
			zap.String("shell", profile.Name),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	if err := conn.Send(banner); err != nil {
		return fmt.Errorf("failed to send version banner: %w", err)
	}

	s.logger.Info("Session started",
		zap.String("shell", profile.Name),
		zap.String("dir", s.state.WorkDir),
	)

	for {
		s.setPhase(PhaseReceivingCommand)

		frame, err := conn.Receive()
		if errors.Is(err, io.EOF) {
			s.logger.Info("Session closed by peer")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to receive command: %w", err)
		}

		if frame.Binary {
			s.logger.Warn("Ignoring non-text message", zap.Int("bytes", len(frame.Text)))
			continue
		}
		if frame.Text == exitCommand {
			s.logger.Info("Exit command received")
			return nil
		}

		s.setPhase(PhaseExecuting)
		reply := s.handle(frame.Text)

		if err := conn.Send(reply); err != nil {
			return fmt.Errorf("failed to send output: %w", err)
		}
	}
}

// handle runs one command and returns the text to send back.
func (s *Session) handle(command string) string {
	if target, ok := strings.CutPrefix(command, cdPrefix); ok {
		return s.changeDir(target)
	}

	s.logger.Debug("> "+command,
		zap.String("shell", s.state.Profile.Name),
		zap.String("dir", s.state.WorkDir),
	)
	output := s.executor.Execute(s.state.Profile, s.state.WorkDir, command)
	s.logger.Debug("Command output", zap.Int("length", len(output)))
	return output
}

func (s *Session) changeDir(target string) string {
	dir, err := s.state.ChangeDir(target)
	if s.metrics != nil {
		s.metrics.RecordDirChange(err == nil)
	}
	if err != nil {
		s.logger.Debug("Directory change failed", zap.Error(err))
		return err.Error()
	}

	s.logger.Debug("Changed directory", zap.String("dir", dir))
	return "Changed directory to " + dir
}

func (s *Session) setPhase(p Phase) {
	s.phase.Store(int32(p))
}
