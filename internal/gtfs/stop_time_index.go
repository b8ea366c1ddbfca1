package gtfs

import (
	"strings"

	"subwayroute.dev/engine/internal/models"
)

// DefaultMaxTrips bounds TripsForLines for callers that only need the next few trips.
const DefaultMaxTrips = 4

type IndexOptions struct {
	// MaxTrips caps the number of trips returned; zero means no cap.
	MaxTrips int
	// SortBySequence orders each trip's stops by stop sequence. Otherwise the
	// feed order is kept.
	SortBySequence bool
}

// TripsForLines returns the trip updates of the feed whose route id is one of lines.
func TripsForLines(feed *models.Feed, lines []string, opts IndexOptions) []models.TripUpdate {
	if feed == nil || len(lines) == 0 {
		return nil
	}

	var trips []models.TripUpdate
	for _, trip := range feed.TripUpdates() {
		if !routeIn(trip.RouteID, lines) {
			continue
		}
		if opts.SortBySequence {
			trip = trip.SortedBySequence()
		}
		trips = append(trips, trip)
		if opts.MaxTrips > 0 && len(trips) == opts.MaxTrips {
			break
		}
	}
	return trips
}

// StopIDs lists the distinct stop ids of the trips, in first-seen order.
func StopIDs(trips []models.TripUpdate) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, trip := range trips {
		for _, u := range trip.StopTimeUpdates {
			if _, ok := seen[u.StopID]; ok {
				continue
			}
			seen[u.StopID] = struct{}{}
			ids = append(ids, u.StopID)
		}
	}
	return ids
}

func routeIn(routeID string, lines []string) bool {
	for _, l := range lines {
		if strings.EqualFold(routeID, l) {
			return true
		}
	}
	return false
}
