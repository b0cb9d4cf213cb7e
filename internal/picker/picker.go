package picker

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xaenox/sticker-bot/internal/metadata"
	"github.com/xaenox/sticker-bot/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNoCollection means the user has never downloaded anything.
	ErrNoCollection = errors.New("no sticker collection")
	// ErrEmptyCollection means the user's root holds no metadata records.
	ErrEmptyCollection = errors.New("sticker collection is empty")
	// ErrItemUnavailable means neither the record nor a payload of the chosen item is usable.
	ErrItemUnavailable = errors.New("sticker file not found")
)

// RecordReader loads a metadata record.
type RecordReader interface {
	Read(path string) (models.StoredItem, error)
}

// Choice is a randomly picked sticker. Exactly one of Record and FilePath is
// set: Record when the sticker can be re-sent by file id, FilePath when the
// raw payload has to be uploaded instead.
type Choice struct {
	RecordPath string
	Record     *models.StoredItem
	FilePath   string
}

type Picker struct {
	records RecordReader
	intn    func(n int) int
	logger  *zap.Logger
}

func New(records RecordReader, logger *zap.Logger) *Picker {
	return &Picker{
		records: records,
		intn:    lockedIntn(rand.New(rand.NewSource(time.Now().UnixNano()))),
		logger:  logger,
	}
}

// lockedIntn serialises access to rng, which is not safe for concurrent use.
// One Picker serves every user's worker.
func lockedIntn(rng *rand.Rand) func(n int) int {
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Intn(n)
	}
}

// Pick chooses one record under root with uniform probability.
func (p *Picker) Pick(root string) (Choice, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Choice{}, ErrNoCollection
		}
		return Choice{}, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return Choice{}, ErrNoCollection
	}

	paths, err := listRecords(root)
	if err != nil {
		return Choice{}, err
	}
	if len(paths) == 0 {
		return Choice{}, ErrEmptyCollection
	}

	path := paths[p.intn(len(paths))]
	record, err := p.records.Read(path)
	if err == nil {
		return Choice{RecordPath: path, Record: &record}, nil
	}

	p.logger.Warn("Failed to read sticker metadata, falling back to file",
		zap.Error(err),
		zap.String("path", path))

	file, err := p.Fallback(path)
	if err != nil {
		return Choice{RecordPath: path}, err
	}
	return Choice{RecordPath: path, FilePath: file}, nil
}

// Fallback returns the first existing payload that accompanies recordPath.
func (p *Picker) Fallback(recordPath string) (string, error) {
	for _, candidate := range metadata.Candidates(recordPath) {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", ErrItemUnavailable
}

func listRecords(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && metadata.IsRecord(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}
