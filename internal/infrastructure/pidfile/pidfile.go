package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// PIDFile keeps a single calculator daemon per pid path
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the pid file location
func (p *PIDFile) Path() string { return p.path }

// Acquire records this process in the pid file. Stale or unreadable pid
// files are replaced; a live owner is an error.
func (p *PIDFile) Acquire() error {
	if pid, running := p.Running(); running {
		return fmt.Errorf("daemon is already running (PID %d)", pid)
	}
	_ = os.Remove(p.path)

	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the pid file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Running returns the recorded pid and whether that process is alive
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.read()
	if err != nil {
		return 0, false
	}
	return pid, isProcessRunning(pid)
}

// KillExisting sends SIGTERM to the recorded daemon and waits up to timeout
// for it to exit, then removes the pid file
func (p *PIDFile) KillExisting(timeout time.Duration) error {
	pid, running := p.Running()
	if !running {
		return p.Release()
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find daemon process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop daemon process %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for isProcessRunning(pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon process %d did not exit within %s", pid, timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return p.Release()
}

func (p *PIDFile) read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// isProcessRunning probes pid with signal 0
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// Exists, owned by someone else
		return true
	default:
		return false
	}
}
