package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/webterm/internal/domain/interpreter"
)

// ErrNotDirectory is returned when a cd target exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// State is the mutable part of one session. It is owned by the goroutine
// running the session and never shared.
type State struct {
	Profile interpreter.Profile
	WorkDir string
}

// NewState seeds a session state. workDir is made absolute.
func NewState(profile interpreter.Profile, workDir string) (*State, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("invalid work dir %q: %w", workDir, err)
	}
	return &State{Profile: profile, WorkDir: abs}, nil
}

// DirError describes a failed directory change.
type DirError struct {
	Target string
	Err    error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("cd: %s: %s", e.Target, reason(e.Err))
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// ChangeDir moves the working directory to target, resolved against the
// current one. Symlinks and dot segments are resolved and the result must
// be an existing directory. On failure WorkDir is left unchanged.
//
// An empty target or a leading "~" refers to the user's home directory.
func (s *State) ChangeDir(target string) (string, error) {
	target = strings.TrimSpace(target)

	path, err := expandHome(target)
	if err != nil {
		return "", &DirError{Target: target, Err: err}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.WorkDir, path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", &DirError{Target: target, Err: err}
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", &DirError{Target: target, Err: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &DirError{Target: target, Err: err}
	}
	if !info.IsDir() {
		return "", &DirError{Target: target, Err: ErrNotDirectory}
	}

	s.WorkDir = resolved
	return resolved, nil
}

func expandHome(path string) (string, error) {
	if path != "" && path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if len(path) <= 1 {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// reason renders err the way a shell would, without the path prefix that
// fs.PathError adds.
func reason(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "no such file or directory"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, ErrNotDirectory), errors.Is(err, syscall.ENOTDIR):
		return "not a directory"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
