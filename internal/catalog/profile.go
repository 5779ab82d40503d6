package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// LoadProfile reads the selling profile snapshot from path.
func LoadProfile(path string, logger *zap.Logger) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	var profile types.Profile
	err = json.Unmarshal(data, &profile)
	if err != nil {
		return nil, fmt.Errorf("unmarshal profile file: %w", err)
	}

	logger.Info("profile-loaded",
		zap.String("path", path),
		zap.String("profile-id", profile.ID),
		zap.Int("items", len(profile.Items)))

	return &profile, nil
}

// DefaultProfilePath returns the profile snapshot path under a data
// directory.
func DefaultProfilePath(dataDir string) string {
	return filepath.Join(dataDir, "profile.json")
}
