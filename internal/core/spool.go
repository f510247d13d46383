package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// spoolFileName is the single file inside each job's spool directory.
const spoolFileName = "upload"

// Spool holds uploaded bytes on disk between submission and analysis.
// Each job gets its own directory named by job id.
type Spool struct {
	root string
}

// NewSpool creates the spool directory if needed. An empty root means
// <os temp dir>/fileparser. A non-empty scope adds a subdirectory so
// processes sharing a root never see each other's jobs.
func NewSpool(root, scope string) (*Spool, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "fileparser")
	}
	if scope != "" {
		root = filepath.Join(root, scope)
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create spool root: %w", err)
	}
	return &Spool{root: root}, nil
}

// Root returns the spool root directory.
func (s *Spool) Root() string {
	return s.root
}

// Write stores content for a job and returns the file path.
func (s *Spool) Write(jobID string, content []byte) (string, error) {
	dir := filepath.Join(s.root, jobID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}
	path := filepath.Join(dir, spoolFileName)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	return path, nil
}

// Release removes a job's spool directory. Missing directories are not an error.
func (s *Spool) Release(jobID string) error {
	if err := os.RemoveAll(filepath.Join(s.root, jobID)); err != nil {
		return fmt.Errorf("release spool %s: %w", jobID, err)
	}
	return nil
}

// SpoolEntry describes one job directory found under the root.
type SpoolEntry struct {
	JobID   string
	ModTime time.Time
}

// Entries lists the job directories currently in the spool. Anything not
// named by a job id belongs to someone else and is skipped.
func (s *Spool) Entries() ([]SpoolEntry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read spool root: %w", err)
	}

	entries := make([]SpoolEntry, 0, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		if _, err := uuid.Parse(d.Name()); err != nil {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, SpoolEntry{JobID: d.Name(), ModTime: info.ModTime()})
	}
	return entries, nil
}
