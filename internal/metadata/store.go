package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xaenox/sticker-bot/internal/models"
)

const (
	recordExt   = ".json"
	staticExt   = "webp"
	animatedExt = "tgs"
	itemPrefix  = "item_"
)

// ErrIncompleteRecord is returned when a record parses but carries no file id.
var ErrIncompleteRecord = errors.New("metadata record has no file_id")

// Store reads and writes sticker metadata records.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Write stores the record as indented JSON. The file is written to a temporary
// sibling first and renamed into place, so readers never see a partial record.
func (s *Store) Write(path string, record models.StoredItem) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

func (s *Store) Read(path string) (models.StoredItem, error) {
	var record models.StoredItem

	data, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parse %s: %w", path, err)
	}
	if record.FileID == "" {
		return record, fmt.Errorf("%s: %w", path, ErrIncompleteRecord)
	}
	return record, nil
}

// Extension returns the payload extension for a sticker.
func Extension(animated bool) string {
	if animated {
		return animatedExt
	}
	return staticExt
}

// RecordPath returns the metadata path of the n-th (1-based) item in dir.
func RecordPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d%s", itemPrefix, n, recordExt))
}

// PayloadPath returns the payload path of the n-th (1-based) item in dir.
func PayloadPath(dir string, n int, animated bool) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.%s", itemPrefix, n, Extension(animated)))
}

// IsRecord reports whether path names a metadata record.
func IsRecord(path string) bool {
	return strings.HasSuffix(path, recordExt)
}

// Candidates lists the payload paths that may accompany a record, in the
// order they should be tried.
func Candidates(recordPath string) []string {
	stem := strings.TrimSuffix(recordPath, recordExt)
	return []string{
		stem + "." + staticExt,
		stem + "." + animatedExt,
	}
}
