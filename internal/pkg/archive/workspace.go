package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const workspacePrefix = "renamer-"

// Workspace is a temporary directory owned by exactly one processing request.
type Workspace struct {
	Dir  string
	once sync.Once
	err  error
}

// NewWorkspace creates a uniquely named directory under root ("" means os.TempDir()).
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create temp root %s: %w", root, err)
	}

	dir := filepath.Join(root, workspacePrefix+uuid.New().String())
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Close removes the workspace tree. Safe to call more than once.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.Dir)
	})
	return w.err
}

// IsArtifact reports whether name is archiver metadata that never reaches the output.
func IsArtifact(name string) bool {
	return strings.HasPrefix(name, "__MACOSX") || strings.HasPrefix(name, "._")
}
