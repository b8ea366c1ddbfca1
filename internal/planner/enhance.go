package planner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jinzhu/copier"

	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/models"
)

// Enhance walks the route with a time cursor and replaces each estimated
// wait with the first live departure at or after the cursor. Steps without
// live data keep their estimate. The route is reported as real-time only
// when every boarding used a live departure; otherwise all steps are tagged
// as estimates and LiveSteps counts the live ones.
func (s *Synthesizer) Enhance(ctx context.Context, route models.SubwayRoute, feeds *gtfs.FeedSet) models.SubwayRoute {
	var out models.SubwayRoute
	if err := copier.CopyWithOption(&out, &route, copier.Option{DeepCopy: true}); err != nil {
		s.logger.Warn("route copy failed", slog.String("error", err.Error()))
		return route
	}

	now := s.Clock.Now()
	cursor := now
	boards, live := 0, 0
	for i := range out.Steps {
		step := &out.Steps[i]
		if !step.Boards() {
			continue
		}
		boards++
		cursor = cursor.Add(minutes(step.WalkMinutes))
		if step.TransferMinutes != nil {
			cursor = cursor.Add(minutes(*step.TransferMinutes))
		}

		if dep, ok := s.liveDeparture(ctx, *step, cursor, feeds); ok {
			step.WaitMinutes = models.IntPtr(int(dep.Time.Sub(cursor) / time.Minute))
			step.NextDeparture = &dep.Time
			step.DepartureSource = dep.Source
			cursor = dep.Time
			live++
		} else {
			wait := 0
			if step.WaitMinutes != nil {
				wait = *step.WaitMinutes
			}
			cursor = cursor.Add(minutes(wait))
			next := cursor
			step.NextDeparture = &next
			step.DepartureSource = models.SourceEstimate
		}
		cursor = cursor.Add(minutes(step.RideMinutes))
	}

	out.LiveSteps = live
	out.IsRealTimeData = boards > 0 && live == boards
	if !out.IsRealTimeData {
		for i := range out.Steps {
			if out.Steps[i].Boards() {
				out.Steps[i].DepartureSource = models.SourceEstimate
			}
		}
	}
	out.TotalMinutes = int(math.Ceil(cursor.Sub(now).Minutes()))
	arrival := cursor
	out.ProjectedArrival = &arrival
	return out
}

func (s *Synthesizer) liveDeparture(ctx context.Context, step models.RouteStep, cursor time.Time, feeds *gtfs.FeedSet) (models.Departure, bool) {
	lineFeeds := feeds.ForLine(step.Line)
	if len(lineFeeds) == 0 {
		return models.Departure{}, false
	}

	query := step.StationID
	if query == "" {
		query = step.Station
	}
	station, err := s.Stations.Lookup(query)
	if err != nil {
		s.logger.Debug("no station for step",
			slog.String("station", step.Station),
			slog.String("error", err.Error()))
		return models.Departure{}, false
	}

	deps, err := s.Projector.ProjectFrom(ctx, station, step.Line, step.Direction, lineFeeds, cursor)
	if err != nil {
		s.logger.Debug("no live departures for step",
			slog.String("station", station.ID),
			slog.String("line", step.Line),
			slog.String("error", err.Error()))
		return models.Departure{}, false
	}
	for _, d := range deps {
		if d.Live() && !d.Time.Before(cursor) {
			return d, true
		}
	}
	return models.Departure{}, false
}
