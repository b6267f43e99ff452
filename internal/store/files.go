// Package store persists normalized records to two sinks: timestamped JSON
// documents on disk and an upsert-capable SQLite record store keyed by URL.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/pkg/models"
)

// FileStore writes each cycle's output as an array-of-objects JSON document
// under a date-structured path, plus a rolling per-source file holding only
// the latest cycle.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore rooted at dir (created on first write).
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "output"
	}
	return &FileStore{root: dir}
}

// Write persists records for one source. The timestamped path is
// <root>/<source>/<year>/<month>/<day>/<source>_<timestamp>.json; the
// rolling path is <root>/<source>.json. A failure on either sink is
// returned but does not affect the other.
func (f *FileStore) Write(source string, records []models.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records for %s: %w", source, err)
	}

	now := time.Now().UTC()
	dir := filepath.Join(f.root, source, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stamped := filepath.Join(dir, fmt.Sprintf("%s_%s.json", source, now.Format("20060102T150405Z")))
	var firstErr error
	if err := os.WriteFile(stamped, payload, 0o644); err != nil {
		firstErr = fmt.Errorf("write %s: %w", stamped, err)
		log.Warn().Err(err).Str("path", stamped).Msg("Timestamped output write failed")
	}

	rolling := filepath.Join(f.root, source+".json")
	if err := os.WriteFile(rolling, payload, 0o644); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("write %s: %w", rolling, err)
		}
		log.Warn().Err(err).Str("path", rolling).Msg("Rolling output write failed")
	}

	if firstErr == nil {
		log.Debug().Str("source", source).Int("records", len(records)).Str("path", stamped).Msg("Output files written")
	}
	return firstErr
}
