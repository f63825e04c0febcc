package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FileSnapshotStore implements SnapshotStore using JSON files.
// Snapshots are named snapshot-<captured_unix_nano>.json; Load returns the
// newest one.
type FileSnapshotStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileSnapshotStore creates a new file-based snapshot store
func NewFileSnapshotStore(baseDir string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileSnapshotStore{
		baseDir: baseDir,
	}, nil
}

// Save saves a snapshot of the full ledger state
func (s *FileSnapshotStore) Save(ctx context.Context, snapshot *LedgerSnapshot) error {
	if snapshot == nil || snapshot.State == nil {
		return fmt.Errorf("snapshot state required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filename := fmt.Sprintf("snapshot-%d.json", snapshot.CapturedAt.UnixNano())
	filePath := filepath.Join(s.baseDir, filename)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Write to temporary file first, then atomic rename
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	return nil
}

// Load loads the latest snapshot, or nil if none exists
func (s *FileSnapshotStore) Load(ctx context.Context) (*LedgerSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var stamps []int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stamp, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		stamps = append(stamps, stamp)
	}

	if len(stamps) == 0 {
		return nil, nil
	}

	sort.Slice(stamps, func(i, j int) bool { return stamps[i] > stamps[j] })

	filePath := filepath.Join(s.baseDir, fmt.Sprintf("snapshot-%d.json", stamps[0]))
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot LedgerSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// parseSnapshotName extracts the capture timestamp from a snapshot filename
func parseSnapshotName(name string) (int64, bool) {
	if !strings.HasPrefix(name, "snapshot-") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	stamp, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "snapshot-"), ".json"), 10, 64)
	if err != nil {
		return 0, false
	}
	return stamp, true
}
