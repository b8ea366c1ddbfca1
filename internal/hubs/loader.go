package hubs

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"subwayroute.dev/engine/internal/models"
)

type fileFormat struct {
	Hubs []hubEntry `yaml:"hubs" validate:"required,min=1,dive"`
}

type hubEntry struct {
	Name         string          `yaml:"name" validate:"required"`
	Location     models.Location `yaml:"location"`
	Priority     int             `yaml:"priority" validate:"min=0,max=10"`
	UserPriority bool            `yaml:"userPriority"`
	Transfers    []transferEntry `yaml:"transfers" validate:"required,min=1,dive"`
}

type transferEntry struct {
	Lines   []string `yaml:"lines" validate:"len=2,dive,required"`
	Seconds int      `yaml:"seconds" validate:"min=0"`
}

// LoadFile reads a hub catalog from YAML.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hubs %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML hub catalog.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode hubs: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid hubs: %w", err)
	}

	hubs := make([]models.TransferHub, 0, len(f.Hubs))
	for _, e := range f.Hubs {
		h := models.TransferHub{
			Name:         e.Name,
			Location:     e.Location,
			Priority:     e.Priority,
			UserPriority: e.UserPriority,
			Transfers:    make(map[models.LinePair]int, len(e.Transfers)),
		}
		for _, t := range e.Transfers {
			h.Transfers[models.NewLinePair(t.Lines[0], t.Lines[1])] = t.Seconds
		}
		hubs = append(hubs, h)
	}
	return New(hubs), nil
}
