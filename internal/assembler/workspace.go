package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelforge/internal/services"
)

// Workspace is the transient directory a run owns: every intermediate
// artifact lands under it, and a lock file keeps concurrent runs from
// sharing it. Cleanup removes the whole tree.
type Workspace struct {
	Root string
	lock *flock.Flock
}

// NewWorkspace creates a uniquely named run directory under tempRoot and
// takes its lock.
func NewWorkspace(tempRoot string) (*Workspace, error) {
	if err := os.MkdirAll(tempRoot, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "create",
			fmt.Sprintf("creating temp root %s", tempRoot), err)
	}
	root := filepath.Join(tempRoot, "run-"+uuid.NewString())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "create",
			fmt.Sprintf("creating workspace %s", root), err)
	}
	lock := flock.New(filepath.Join(root, ".lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		os.RemoveAll(root)
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "lock",
			fmt.Sprintf("locking workspace %s", root), err)
	}
	return &Workspace{Root: root, lock: lock}, nil
}

// Path joins parts under the workspace root.
func (w *Workspace) Path(parts ...string) string {
	return filepath.Join(append([]string{w.Root}, parts...)...)
}

// Cleanup releases the lock and removes the workspace. Removal failures are
// logged and swallowed; a leftover run directory is harmless.
func (w *Workspace) Cleanup(logger *slog.Logger) {
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil && logger != nil {
			logger.Warn("unlocking workspace", "path", w.Root, "error", err)
		}
	}
	if err := os.RemoveAll(w.Root); err != nil && logger != nil {
		logger.Warn("removing workspace", "path", w.Root, "error", err)
	}
}
