package scanstation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"go-handover/internal/common/handoverprotocol"
)

// ReadDataset reads a dataset document. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func ReadDataset(path string) (handoverprotocol.LoadRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return handoverprotocol.LoadRequest{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	var request handoverprotocol.LoadRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &request)
	default:
		err = json.Unmarshal(raw, &request)
	}
	if err != nil {
		return handoverprotocol.LoadRequest{}, fmt.Errorf("failed to parse dataset %s: %w", filepath.Base(path), err)
	}
	return request, nil
}
