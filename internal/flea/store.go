package flea

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Store persists the price lookup table between runs. Load failures fall
// back to full regeneration; save failures are logged and non-fatal.
type Store interface {
	Load() (map[string]float64, error)
	Save(prices map[string]float64) error
}

// tableFile is the on-disk cache format.
type tableFile struct {
	Prices map[string]float64 `json:"itemPriceTable"`
}

// FileStore persists the table as a JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed table store.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the persisted table.
func (s *FileStore) Load() (map[string]float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read price table cache: %w", err)
	}

	var file tableFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("decode price table cache: %w", err)
	}
	if file.Prices == nil {
		return nil, fmt.Errorf("decode price table cache: empty mapping")
	}

	s.logger.Info("price-table-cache-loaded",
		zap.String("path", s.path),
		zap.Int("templates", len(file.Prices)))

	return file.Prices, nil
}

// Save writes the table, creating the cache directory when needed.
func (s *FileStore) Save(prices map[string]float64) error {
	data, err := json.Marshal(tableFile{Prices: prices})
	if err != nil {
		return fmt.Errorf("encode price table cache: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0o755)
	if err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	err = os.WriteFile(s.path, data, 0o644)
	if err != nil {
		return fmt.Errorf("write price table cache: %w", err)
	}

	s.logger.Info("price-table-cache-saved",
		zap.String("path", s.path),
		zap.Int("templates", len(prices)))

	return nil
}
