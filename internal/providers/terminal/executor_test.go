package terminal

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
)

type recorded struct {
	shell   string
	outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	commands []recorded
	probes   map[string]bool
}

func (f *fakeRecorder) RecordCommand(shell, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, recorded{shell, outcome})
}

func (f *fakeRecorder) RecordProbe(shell string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.probes == nil {
		f.probes = make(map[string]bool)
	}
	f.probes[shell] = ok
}

func shProfile(t *testing.T) interpreter.Profile {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	p, ok := interpreter.NewRegistry("").Lookup(interpreter.Sh)
	require.True(t, ok)
	return p
}

func TestExecuteStdoutThenStderr(t *testing.T) {
	sh := shProfile(t)
	exec := NewExecutor(nil, nil)

	out := exec.Execute(sh, t.TempDir(), "echo err 1>&2; echo out")
	assert.Equal(t, "out\nerr\n", out)
}

func TestExecuteNonZeroExitIsNotSignalled(t *testing.T) {
	sh := shProfile(t)
	rec := &fakeRecorder{}
	exec := NewExecutor(nil, rec)

	out := exec.Execute(sh, t.TempDir(), "echo partial; exit 3")

	assert.Equal(t, "partial\n", out)
	require.Len(t, rec.commands, 1)
	assert.Equal(t, recorded{interpreter.Sh, OutcomeExitError}, rec.commands[0])
}

func TestExecuteEmptyOutput(t *testing.T) {
	sh := shProfile(t)
	rec := &fakeRecorder{}

	out := NewExecutor(nil, rec).Execute(sh, t.TempDir(), "true")

	assert.Equal(t, "", out)
	require.Len(t, rec.commands, 1)
	assert.Equal(t, OutcomeOK, rec.commands[0].outcome)
}

func TestExecuteUsesWorkDir(t *testing.T) {
	sh := shProfile(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), nil, 0o644))

	out := NewExecutor(nil, nil).Execute(sh, dir, "ls")
	assert.Contains(t, out, "marker.txt")
}

func TestExecuteLaunchFailure(t *testing.T) {
	rec := &fakeRecorder{}
	missing := interpreter.Profile{Name: "ghost", Program: "webterm-no-such-shell", Argument: "-c"}

	out := NewExecutor(nil, rec).Execute(missing, t.TempDir(), "echo hi")

	assert.True(t, strings.HasPrefix(out, "failed to execute command: "), out)
	require.Len(t, rec.commands, 1)
	assert.Equal(t, recorded{"ghost", OutcomeLaunchError}, rec.commands[0])
}

func TestExecuteMissingWorkDir(t *testing.T) {
	sh := shProfile(t)

	out := NewExecutor(nil, nil).Execute(sh, filepath.Join(t.TempDir(), "gone"), "echo hi")
	assert.True(t, strings.HasPrefix(out, "failed to execute command: "), out)
}

func TestExecuteNormalizesOutput(t *testing.T) {
	sh := shProfile(t)

	out := NewExecutor(nil, nil).Execute(sh, t.TempDir(), `printf '\377\033[31mok\033[0m\n'`)

	assert.True(t, utf8.ValidString(out))
	assert.NotContains(t, out, "\x1b")
	assert.Contains(t, out, "ok\n")
	assert.True(t, strings.HasSuffix(out, "ok\n"))
}

func TestProbe(t *testing.T) {
	sh := shProfile(t)
	rec := &fakeRecorder{}

	banner, err := NewExecutor(nil, rec).Probe(sh)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(banner, "sh "), banner)
	assert.Equal(t, strings.TrimSpace(banner), banner)
	assert.True(t, rec.probes[interpreter.Sh])
}

func TestProbeFailures(t *testing.T) {
	sh := shProfile(t)
	rec := &fakeRecorder{}
	exec := NewExecutor(nil, rec)

	_, err := exec.Probe(interpreter.Profile{Name: "ghost", Program: "webterm-no-such-shell"})
	assert.Error(t, err)

	failing := sh
	failing.Name = "failing"
	failing.Version = []string{"-c", "echo nope; exit 1"}
	_, err = exec.Probe(failing)
	assert.Error(t, err)

	assert.False(t, rec.probes["ghost"])
	assert.False(t, rec.probes["failing"])
}

func TestProbeEmptyBannerUsesName(t *testing.T) {
	sh := shProfile(t)
	quiet := sh
	quiet.Version = []string{"-c", "true"}

	banner, err := NewExecutor(nil, nil).Probe(quiet)
	require.NoError(t, err)
	assert.Equal(t, interpreter.Sh, banner)
}

func TestExecutorImplementsProber(t *testing.T) {
	var _ interpreter.Prober = NewExecutor(nil, nil)
}
