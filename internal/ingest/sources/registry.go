package sources

import (
	"encoding/json"
	"fmt"
	"os"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
)

// Registry reads the configured feed list. The file is a JSON array of
// {name, url} objects and is re-read on every ingestion run, so edits
// take effect without a restart.
type Registry struct {
	path   string
	logger *core.Logger
}

// NewRegistry creates a registry backed by the given JSON file
func NewRegistry(path string, logger *core.Logger) *Registry {
	return &Registry{
		path:   path,
		logger: logger,
	}
}

// Load returns the configured sources in file order. A missing or
// malformed file is reported to the caller; the pipeline treats it as
// "zero sources" and returns cleanly.
func (r *Registry) Load() ([]models.SourceConfig, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, core.NewConfigurationError(fmt.Sprintf("sources file not readable: %s", r.path), err)
	}

	var sources []models.SourceConfig
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, core.NewConfigurationError(fmt.Sprintf("sources file is not valid JSON: %s", r.path), err)
	}

	r.logger.Info("Loaded source registry", "path", r.path, "count", len(sources))
	return sources, nil
}
