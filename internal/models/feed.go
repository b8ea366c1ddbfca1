package models

import (
	"slices"
	"time"
)

// Feed is one decoded realtime snapshot. It only lives for a single poll.
type Feed struct {
	Group     string       `json:"group"`
	URL       string       `json:"url"`
	FetchedAt time.Time    `json:"fetchedAt"`
	Timestamp time.Time    `json:"timestamp"`
	Entities  []FeedEntity `json:"entities"`
}

// FeedEntity carries either a trip update, a service alert, or neither.
type FeedEntity struct {
	ID         string      `json:"id"`
	TripUpdate *TripUpdate `json:"tripUpdate,omitempty"`
	Alert      *Alert      `json:"alert,omitempty"`
}

// TripUpdate is one vehicle's remaining stops with live timing.
type TripUpdate struct {
	TripID          string           `json:"tripId"`
	RouteID         string           `json:"routeId"`
	StopTimeUpdates []StopTimeUpdate `json:"stopTimeUpdates"`
}

// StopTimeUpdate is a single stop prediction. Times are epoch seconds.
type StopTimeUpdate struct {
	StopID    string `json:"stopId"`
	Sequence  uint32 `json:"sequence"`
	Arrival   *int64 `json:"arrival,omitempty"`
	Departure *int64 `json:"departure,omitempty"`
	Delay     *int32 `json:"delay,omitempty"`
}

// DepartureTime prefers the departure prediction and falls back to arrival.
func (u StopTimeUpdate) DepartureTime() (time.Time, bool) {
	switch {
	case u.Departure != nil:
		return time.Unix(*u.Departure, 0).UTC(), true
	case u.Arrival != nil:
		return time.Unix(*u.Arrival, 0).UTC(), true
	}
	return time.Time{}, false
}

// SortedBySequence returns a copy of the trip with stops ordered by stop sequence.
func (t TripUpdate) SortedBySequence() TripUpdate {
	sorted := t
	sorted.StopTimeUpdates = slices.Clone(t.StopTimeUpdates)
	slices.SortStableFunc(sorted.StopTimeUpdates, func(a, b StopTimeUpdate) int {
		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		}
		return 0
	})
	return sorted
}

// Consistent reports whether every departure is no later than the next stop's
// arrival, in the order the stops are carried.
func (t TripUpdate) Consistent() bool {
	for i := 0; i+1 < len(t.StopTimeUpdates); i++ {
		dep := t.StopTimeUpdates[i].Departure
		arr := t.StopTimeUpdates[i+1].Arrival
		if dep != nil && arr != nil && *dep > *arr {
			return false
		}
	}
	return true
}

// Alert is a service alert attached to a feed.
type Alert struct {
	Header      string   `json:"header"`
	Description string   `json:"description,omitempty"`
	RouteIDs    []string `json:"routeIds,omitempty"`
}

// TripUpdates returns the trip updates carried by the feed in feed order.
func (f *Feed) TripUpdates() []TripUpdate {
	if f == nil {
		return nil
	}
	trips := make([]TripUpdate, 0, len(f.Entities))
	for _, e := range f.Entities {
		if e.TripUpdate != nil {
			trips = append(trips, *e.TripUpdate)
		}
	}
	return trips
}

// AlertsForLine returns alerts whose informed entities name the line.
func (f *Feed) AlertsForLine(line string) []Alert {
	if f == nil {
		return nil
	}
	var alerts []Alert
	for _, e := range f.Entities {
		if e.Alert != nil && slices.Contains(e.Alert.RouteIDs, line) {
			alerts = append(alerts, *e.Alert)
		}
	}
	return alerts
}

// FeedStatus records whether a feed group could be used in a pass.
type FeedStatus struct {
	Group     string        `json:"group"`
	URL       string        `json:"url"`
	Working   bool          `json:"working"`
	Error     string        `json:"error,omitempty"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Duration  time.Duration `json:"duration"`
}

// FeedGroup is one realtime endpoint and the lines it publishes.
type FeedGroup struct {
	Name  string   `json:"name" yaml:"name" validate:"required"`
	URL   string   `json:"url" yaml:"url" validate:"required,url"`
	Lines []string `json:"lines" yaml:"lines" validate:"required,min=1"`
}
