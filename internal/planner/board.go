package planner

import (
	"context"
	"time"

	"subwayroute.dev/engine/internal/models"
)

// Board lists upcoming departures per line at a station. Lines without live
// data carry estimated departures and are listed in Estimated.
type Board struct {
	Station      models.Station                `json:"station"`
	Direction    models.Direction              `json:"direction"`
	Lines        map[string][]models.Departure `json:"lines"`
	Alerts       map[string][]models.Alert     `json:"alerts,omitempty"`
	Estimated    []string                      `json:"estimated,omitempty"`
	FeedStatuses []models.FeedStatus           `json:"feedStatuses"`
	GeneratedAt  time.Time                     `json:"generatedAt"`
}

// Departures projects every line of the station in one direction. It fails
// only when the station cannot be resolved.
func (s *Synthesizer) Departures(ctx context.Context, query string, dir models.Direction) (*Board, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestDeadline)
	defer cancel()

	station, err := s.Stations.Lookup(query)
	if err != nil {
		return nil, err
	}

	set := s.loadFeedsForLines(ctx, station.Lines)
	projected := s.Projector.ProjectStation(ctx, station, dir, set)

	board := &Board{
		Station:      station,
		Direction:    dir,
		Lines:        projected.Lines,
		Alerts:       projected.Alerts,
		FeedStatuses: set.Statuses,
		GeneratedAt:  s.Clock.Now(),
	}
	for _, line := range station.Lines {
		if len(board.Lines[line]) > 0 {
			continue
		}
		board.Lines[line] = s.Fallback.Departures(line, dir)
		board.Estimated = append(board.Estimated, line)
	}
	return board, nil
}
