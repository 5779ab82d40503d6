package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// FileListingIndex serves historical market listings grouped by the root
// item's template id.
type FileListingIndex struct {
	byTemplate map[string][]*types.Listing
}

type listingsFile struct {
	Listings []*types.Listing `json:"listings"`
}

// LoadListings reads a listings snapshot from path.
func LoadListings(path string, logger *zap.Logger) (*FileListingIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}

	var file listingsFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("unmarshal listings file: %w", err)
	}

	byTemplate := make(map[string][]*types.Listing)
	for _, l := range file.Listings {
		root := l.First()
		if root == nil {
			continue
		}
		byTemplate[root.TemplateID] = append(byTemplate[root.TemplateID], l)
	}

	logger.Info("listings-loaded",
		zap.String("path", path),
		zap.Int("listings", len(file.Listings)),
		zap.Int("templates", len(byTemplate)))

	return &FileListingIndex{byTemplate: byTemplate}, nil
}

// ListingsForTemplate returns all listings whose root item has the given
// template id.
func (i *FileListingIndex) ListingsForTemplate(id string) []*types.Listing {
	return i.byTemplate[id]
}

// DefaultListingsPath returns the listings snapshot path under a data
// directory.
func DefaultListingsPath(dataDir string) string {
	return filepath.Join(dataDir, "listings.json")
}
