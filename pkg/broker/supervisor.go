package broker

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/plotbroker/plotbroker/pkg/plog"
)

// ErrSpawnFailure is returned when neither the sibling-binary path nor
// the system search path yields a usable renderer executable, or the
// spawn syscall itself fails.
var ErrSpawnFailure = errors.New("broker: failed to spawn renderer")

// childEntry is the supervisor's bookkeeping for one spawned renderer
// process: which window (if any) it was spawned for, and whether it's
// still believed alive.
type childEntry struct {
	windowID uint64
	alive    bool
}

// supervisor tracks spawned renderer child processes: resolving the
// binary, launching it, and non-blockingly reaping finished children.
type supervisor struct {
	rendererPath string // explicit override, or "" to auto-resolve
	log          plog.Logger

	children map[int]*childEntry
}

func newSupervisor(rendererPath string, log plog.Logger) *supervisor {
	return &supervisor{rendererPath: rendererPath, log: log, children: make(map[int]*childEntry)}
}

// resolveRendererPath prefers a binary named "plotrenderer" sitting
// next to the broker's own executable, falling back to the system
// search path.
func resolveRendererPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "plotrenderer")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	return exec.LookPath("plotrenderer")
}

// Spawn launches a renderer with `--socket socketPath`, recording it
// against windowID for later reaping/termination. Returns the pid, or
// ErrSpawnFailure.
func (s *supervisor) Spawn(socketPath string, windowID uint64) (int, error) {
	path, err := resolveRendererPath(s.rendererPath)
	if err != nil {
		s.log.Log(plog.LogLevelError, "renderer binary not found", "err", err)
		return 0, ErrSpawnFailure
	}

	cmd := exec.Command(path, "--socket", socketPath)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		s.log.Log(plog.LogLevelError, "renderer spawn failed", "path", path, "err", err)
		return 0, ErrSpawnFailure
	}

	pid := cmd.Process.Pid
	s.children[pid] = &childEntry{windowID: windowID, alive: true}
	// Detach: we reap via waitpid ourselves rather than cmd.Wait, so the
	// process handle doesn't need to stay around past Start.
	s.log.Log(plog.LogLevelInfo, "spawned renderer", "pid", pid, "window_id", windowID)
	return pid, nil
}

// Reap performs one non-blocking waitpid pass over every tracked child,
// dropping any that have exited.
func (s *supervisor) Reap() {
	for pid, entry := range s.children {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		if err != nil {
			if errors.Is(err, unix.ECHILD) {
				delete(s.children, pid)
			}
			continue
		}
		if wpid == pid {
			entry.alive = false
			delete(s.children, pid)
			s.log.Log(plog.LogLevelInfo, "renderer exited", "pid", pid, "window_id", entry.windowID)
		}
	}
}

// TerminateAll sends SIGTERM to every still-tracked child, for clean
// broker shutdown.
func (s *supervisor) TerminateAll() {
	for pid := range s.children {
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}
}
