package models

import "slices"

// Station is a physical subway station served by one or more lines.
type Station struct {
	ID       string            `json:"id" yaml:"id" validate:"required"`
	Name     string            `json:"name" yaml:"name" validate:"required"`
	Lines    []string          `json:"lines" yaml:"lines" validate:"required,min=1,dive,required"`
	Location Location          `json:"location" yaml:"location"`
	StopIDs  map[string]string `json:"stopIds,omitempty" yaml:"stopIds,omitempty"`
}

// BaseStopID returns the feed stop id (without direction suffix) used for the
// station on the given line. Stations without a per-line override use their id.
func (s Station) BaseStopID(line string) string {
	if id, ok := s.StopIDs[line]; ok && id != "" {
		return id
	}
	return s.ID
}

// Serves reports whether the line stops at the station.
func (s Station) Serves(line string) bool {
	return slices.Contains(s.Lines, line)
}

// SharedLines returns the lines serving both stations, in s's order.
func (s Station) SharedLines(other Station) []string {
	var shared []string
	for _, line := range s.Lines {
		if other.Serves(line) {
			shared = append(shared, line)
		}
	}
	return shared
}

// StationMatch is a station resolved for a query together with its distance
// from the queried point. Distance is zero for id and name lookups.
type StationMatch struct {
	Station        Station `json:"station"`
	DistanceMeters float64 `json:"distanceMeters"`
}
