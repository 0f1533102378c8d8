package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
)

// Command outcomes reported to the Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeExitError   = "exit_error"
	OutcomeLaunchError = "launch_error"
)

// Recorder receives execution metrics.
type Recorder interface {
	RecordCommand(shell, outcome string, duration time.Duration)
	RecordProbe(shell string, ok bool)
}

// Executor runs one command per process through an interpreter.
type Executor struct {
	logger  *zap.Logger
	metrics Recorder
}

// NewExecutor creates an executor. A nil logger discards log output and a
// nil recorder disables metrics.
func NewExecutor(logger *zap.Logger, metrics Recorder) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger, metrics: metrics}
}

// Execute runs command through profile with workDir as the process working
// directory and waits for it to exit. Standard output followed by standard
// error is decoded and stripped of control sequences. A non-zero exit status
// is not reported separately. A process that cannot be started yields an
// error message as output instead of an error.
//
// There is no timeout: a command that never exits blocks the caller.
func (e *Executor) Execute(profile interpreter.Profile, workDir, command string) string {
	start := time.Now()

	cmd := exec.Command(profile.Program, profile.Command(command)...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	raw := make([]byte, 0, stdout.Len()+stderr.Len())
	raw = append(raw, stdout.Bytes()...)
	raw = append(raw, stderr.Bytes()...)
	output := Normalize(raw, profile.Encoding)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		e.record(profile.Name, OutcomeOK, duration)
	case errors.As(err, &exitErr):
		e.logger.Debug("Command exited with non-zero status",
			zap.String("shell", profile.Name),
			zap.Int("exit_code", exitErr.ExitCode()),
		)
		e.record(profile.Name, OutcomeExitError, duration)
	default:
		e.logger.Error("Failed to execute command",
			zap.String("shell", profile.Name),
			zap.String("program", profile.Program),
			zap.String("dir", workDir),
			zap.Error(err),
		)
		e.record(profile.Name, OutcomeLaunchError, duration)
		msg := fmt.Sprintf("failed to execute command: %v", err)
		if output == "" {
			return msg
		}
		return output + "\n" + msg
	}

	e.logger.Debug("Command finished",
		zap.String("shell", profile.Name),
		zap.String("dir", workDir),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Int("stderr_bytes", stderr.Len()),
		zap.Duration("duration", duration),
	)
	return output
}

// Probe runs the interpreter's version command and returns its banner.
// A missing executable or a non-zero exit is an error.
func (e *Executor) Probe(profile interpreter.Profile) (string, error) {
	out, err := exec.Command(profile.Program, profile.Version...).Output()
	if e.metrics != nil {
		e.metrics.RecordProbe(profile.Name, err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("version probe for %s failed: %w", profile.Name, err)
	}

	banner := strings.TrimRight(Normalize(out, profile.Encoding), " \t\r\n")
	if banner == "" {
		banner = profile.Name
	}
	return banner, nil
}

func (e *Executor) record(shell, outcome string, duration time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordCommand(shell, outcome, duration)
	}
}
