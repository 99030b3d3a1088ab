// Package fs provides file-based persistence for crawl checkpoints.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/icscrawl"
)

// DefaultCheckpointPath is the checkpoint file used when none is configured.
const DefaultCheckpointPath = "crawler_log.json"

// Ensure CheckpointStore implements icscrawl.CheckpointStore at compile time.
var _ icscrawl.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore keeps a checkpoint in a single JSON file.
// Saves write a temporary file next to the target and rename it into place,
// so readers never observe a partially written checkpoint.
type CheckpointStore struct {
	mu   sync.Mutex
	path string
}

// NewCheckpointStore creates a CheckpointStore backed by path.
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{path: path}
}

// Path returns the checkpoint file path.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Load reads and decodes the checkpoint file.
func (s *CheckpointStore) Load(ctx context.Context) (*icscrawl.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, icscrawl.Errorf(icscrawl.ENOTFOUND, "checkpoint %q not found", s.path)
	} else if err != nil {
		return nil, err
	}

	var cp icscrawl.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, icscrawl.Errorf(icscrawl.EINVALID, "checkpoint %q is corrupt: %v", s.path, err)
	}
	if cp.WordCounts == nil {
		cp.WordCounts = make(map[string]int)
	}
	if cp.Subdomains == nil {
		cp.Subdomains = make(map[string]int)
	}
	return &cp, nil
}

// Save encodes cp and atomically replaces the checkpoint file.
func (s *CheckpointStore) Save(ctx context.Context, cp *icscrawl.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
