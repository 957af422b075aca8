package broker

import (
	"fmt"
	"os"
	"path/filepath"
)

const socketPrefix = "plotbroker"

// defaultSocketPath follows $XDG_RUNTIME_DIR/<prefix>-<pid>.sock when
// set, falling back to /tmp.
func defaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%d.sock", socketPrefix, os.Getpid()))
}
