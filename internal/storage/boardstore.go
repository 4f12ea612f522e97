package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patchkit/patchboard/pkg/models"
)

// LoadBoard reads the board configuration and returns both the raw decoded
// document (for schema validation) and the typed form (for display).
func LoadBoard(basePath string) (*models.Board, any, error) {
	path := BoardPath(basePath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("missing board config: %s", path)
		}
		return nil, nil, fmt.Errorf("reading board config %s: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("invalid board config %s: %w", path, err)
	}
	var board models.Board
	if err := yaml.Unmarshal(data, &board); err != nil {
		return nil, nil, fmt.Errorf("invalid board config %s: %w", path, err)
	}
	return &board, raw, nil
}
