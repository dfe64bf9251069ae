package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Manager handles one staging directory.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager creates a manager whose staging directory lives in baseDir.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates the timestamped staging directory.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	pattern := fmt.Sprintf(".docnav-%s-*", time.Now().Format("20060102-150405"))
	tempDir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the staging directory, empty before Create.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Promote replaces target with the staging directory. The manager is empty
// afterwards, so a deferred Cleanup is a no-op.
func (m *Manager) Promote(target string) error {
	if m.tempDir == "" {
		return fmt.Errorf("workspace not created")
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to remove previous output: %w", err)
	}
	if err := os.Rename(m.tempDir, target); err != nil {
		return fmt.Errorf("failed to promote workspace: %w", err)
	}
	slog.Debug("Promoted workspace", logfields.Path(target))
	m.tempDir = ""
	return nil
}

// Cleanup removes a staging directory that was not promoted.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}

// StagingBase returns the directory a staging area for output should live
// in: the output's parent, so Promote is a rename on the same filesystem.
func StagingBase(output string) string {
	abs, err := filepath.Abs(output)
	if err != nil {
		return filepath.Dir(output)
	}
	return filepath.Dir(abs)
}
