// Package stations holds the read-only station registry and resolves
// stations by id, name or coordinates.
package stations

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/utils"
)

var ErrStationNotFound = errors.New("station not found")

// Registry is built once at startup and never mutated.
type Registry struct {
	stations []models.Station
	byID     map[string]int
	names    []string // normalized names, parallel to stations
}

func NewRegistry(stations []models.Station) (*Registry, error) {
	r := &Registry{
		stations: make([]models.Station, 0, len(stations)),
		byID:     make(map[string]int, len(stations)),
		names:    make([]string, 0, len(stations)),
	}
	for _, s := range stations {
		if s.ID == "" {
			return nil, fmt.Errorf("station %q has no id", s.Name)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %q", s.ID)
		}
		r.byID[s.ID] = len(r.stations)
		r.stations = append(r.stations, s)
		r.names = append(r.names, normalize(s.Name))
	}
	return r, nil
}

// All returns every station in registry order.
func (r *Registry) All() []models.Station {
	return slices.Clone(r.stations)
}

func (r *Registry) Len() int {
	return len(r.stations)
}

func (r *Registry) ByID(id string) (models.Station, error) {
	i, ok := r.byID[id]
	if !ok {
		return models.Station{}, fmt.Errorf("%w: id %q", ErrStationNotFound, id)
	}
	return r.stations[i], nil
}

// FindByName tries an exact case-insensitive name match first, then a
// normalized substring match in either direction.
func (r *Registry) FindByName(name string) (models.Station, error) {
	for _, s := range r.stations {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}

	q := normalize(name)
	if q != "" {
		for i, n := range r.names {
			if n == "" {
				continue
			}
			if strings.Contains(n, q) || strings.Contains(q, n) {
				return r.stations[i], nil
			}
		}
	}
	return models.Station{}, fmt.Errorf("%w: name %q", ErrStationNotFound, name)
}

// Lookup resolves a known id or, failing that, a station name.
func (r *Registry) Lookup(query string) (models.Station, error) {
	if s, err := r.ByID(query); err == nil {
		return s, nil
	}
	return r.FindByName(query)
}

// Search lists stations whose normalized name contains the query. An empty
// query returns every station.
func (r *Registry) Search(query string, limit int) []models.Station {
	q := normalize(query)
	var out []models.Station
	for i, s := range r.stations {
		if q != "" && !strings.Contains(r.names[i], q) {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Nearest returns up to limit stations within maxMeters of the point,
// closest first. maxMeters <= 0 disables the radius.
func (r *Registry) Nearest(lat, lon float64, limit int, maxMeters float64) []models.StationMatch {
	origin := models.Location{Lat: lat, Lon: lon}
	var matches []models.StationMatch
	for _, s := range r.stations {
		if s.Location.IsZero() {
			continue
		}
		d := utils.Distance(origin, s.Location)
		if maxMeters > 0 && d > maxMeters {
			continue
		}
		matches = append(matches, models.StationMatch{Station: s, DistanceMeters: d})
	}
	slices.SortStableFunc(matches, func(a, b models.StationMatch) int {
		switch {
		case a.DistanceMeters < b.DistanceMeters:
			return -1
		case a.DistanceMeters > b.DistanceMeters:
			return 1
		}
		return 0
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
