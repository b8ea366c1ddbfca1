package stations

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"subwayroute.dev/engine/internal/models"
)

type fileFormat struct {
	Stations []models.Station `yaml:"stations" validate:"required,min=1,dive"`
}

// LoadFile reads a station list from YAML.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid stations: %w", err)
	}
	return NewRegistry(f.Stations)
}
