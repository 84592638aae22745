package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
)

// Export writes a pretty-printed snapshot of the dataset for external
// backup. Snapshots are side effects only; nothing reads them back.
func (s *BadgerStore) Export(d *schedule.Dataset) (string, error) {
	dir := s.cfg.ExportDir
	if dir == "" {
		dir = s.cfg.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: create export dir: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: encode snapshot: %w", err)
	}

	name := fmt.Sprintf("schedule-%s-%s.json",
		time.Now().Format("20060102-150405"),
		uuid.New().String()[:8])
	path := filepath.Join(dir, name)

	// Write to temp file first, then rename (atomic write)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("store: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store: finalize snapshot: %w", err)
	}

	s.log.Info("dataset exported", "path", path, "bytes", len(data))
	return path, nil
}
