package models

import "time"

// SourceEstimate tags departures and steps that were not read from a live feed.
const SourceEstimate = "estimate"

// Departure is a projected departure of a line from a station.
type Departure struct {
	Line      string    `json:"line"`
	Direction Direction `json:"direction"`
	Time      time.Time `json:"time"`
	Label     string    `json:"label"`
	Source    string    `json:"source"`
	TripID    string    `json:"tripId,omitempty"`
}

// Live reports whether the departure was read from a feed.
func (d Departure) Live() bool {
	return d.Source != "" && d.Source != SourceEstimate
}
