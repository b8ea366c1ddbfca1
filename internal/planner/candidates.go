package planner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"subwayroute.dev/engine/internal/hubs"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/utils"
)

// Candidates builds every direct and one-transfer route between the matched
// stations and returns the best ones, fastest first. Waits and ride times are
// estimates; use Enhance to refine them with live departures.
func (s *Synthesizer) Candidates(origins, destinations []models.StationMatch) []models.SubwayRoute {
	now := s.Clock.Now()
	var routes []models.SubwayRoute
	for _, o := range origins {
		for _, d := range destinations {
			if o.Station.ID == d.Station.ID {
				continue
			}
			routes = append(routes, s.directRoutes(now, o, d)...)
			routes = append(routes, s.transferRoutes(now, o, d)...)
		}
	}

	ranked := models.RankRoutes(routes, s.opts.MaxRoutes)
	s.logger.Debug("candidates built",
		slog.Int("origins", len(origins)),
		slog.Int("destinations", len(destinations)),
		slog.Int("candidates", len(routes)),
		slog.Int("returned", len(ranked)))
	return ranked
}

func (s *Synthesizer) directRoutes(now time.Time, o, d models.StationMatch) []models.SubwayRoute {
	var routes []models.SubwayRoute
	walk := s.walkMinutes(o.DistanceMeters)
	for _, line := range o.Station.SharedLines(d.Station) {
		wait := s.Fallback.Wait(line)
		ride := s.rideMinutes(line, o.Station.Location, d.Station.Location)
		dir := utils.TravelDirection(o.Station.Location, d.Station.Location)
		next := now.Add(minutes(walk + wait))
		total := walk + wait + ride
		arrival := now.Add(minutes(total))

		routes = append(routes, models.SubwayRoute{
			Steps: []models.RouteStep{
				{
					Kind:            models.StepBoard,
					Station:         o.Station.Name,
					StationID:       o.Station.ID,
					Line:            line,
					Direction:       dir,
					WalkMinutes:     walk,
					WaitMinutes:     models.IntPtr(wait),
					RideMinutes:     ride,
					Instruction:     fmt.Sprintf("Take the %s train %s from %s", line, dir, o.Station.Name),
					NextDeparture:   &next,
					DepartureSource: models.SourceEstimate,
				},
				arriveStep(d.Station),
			},
			TotalMinutes:     total,
			Confidence:       DirectConfidence,
			ConfidenceLevel:  models.ConfidenceLevelFor(DirectConfidence),
			Lines:            []string{line},
			ProjectedArrival: &arrival,
			Source:           models.SourceSynthesized,
		})
	}
	return routes
}

func (s *Synthesizer) transferRoutes(now time.Time, o, d models.StationMatch) []models.SubwayRoute {
	var routes []models.SubwayRoute
	walk := s.walkMinutes(o.DistanceMeters)
	for _, first := range o.Station.Lines {
		for _, second := range d.Station.Lines {
			if first == second {
				continue
			}
			conns := s.Hubs.Connections(first, second)
			taken := 0
			for _, c := range conns {
				if taken == s.opts.MaxHubsPerPair {
					break
				}
				// Changing trains at either end is not a transfer route.
				if c.Hub.Name == o.Station.Name || c.Hub.Name == d.Station.Name {
					continue
				}
				taken++
				routes = append(routes, s.transferRoute(now, walk, o.Station, d.Station, first, second, c))
			}
		}
	}
	return routes
}

func (s *Synthesizer) transferRoute(now time.Time, walk int, from, to models.Station, first, second string, c hubs.Connection) models.SubwayRoute {
	hub := c.Hub
	wait1 := s.Fallback.Wait(first)
	ride1 := s.rideMinutes(first, from.Location, hub.Location)
	transfer := c.TransferMinutes()
	wait2 := s.Fallback.Wait(second)
	ride2 := s.rideMinutes(second, hub.Location, to.Location)
	dir1 := utils.TravelDirection(from.Location, hub.Location)
	dir2 := utils.TravelDirection(hub.Location, to.Location)

	next1 := now.Add(minutes(walk + wait1))
	next2 := next1.Add(minutes(ride1 + transfer + wait2))
	total := walk + wait1 + ride1 + transfer + wait2 + ride2
	arrival := now.Add(minutes(total))
	confidence := TransferScore(c)

	return models.SubwayRoute{
		Steps: []models.RouteStep{
			{
				Kind:            models.StepBoard,
				Station:         from.Name,
				StationID:       from.ID,
				Line:            first,
				Direction:       dir1,
				WalkMinutes:     walk,
				WaitMinutes:     models.IntPtr(wait1),
				RideMinutes:     ride1,
				Instruction:     fmt.Sprintf("Take the %s train %s from %s to %s", first, dir1, from.Name, hub.Name),
				NextDeparture:   &next1,
				DepartureSource: models.SourceEstimate,
			},
			{
				Kind:            models.StepTransfer,
				Station:         hub.Name,
				Line:            second,
				Direction:       dir2,
				WaitMinutes:     models.IntPtr(wait2),
				TransferMinutes: models.IntPtr(transfer),
				RideMinutes:     ride2,
				Instruction:     transferInstruction(hub.Name, second, dir2, c.TransferSeconds),
				NextDeparture:   &next2,
				DepartureSource: models.SourceEstimate,
			},
			arriveStep(to),
		},
		TotalMinutes:     total,
		Transfers:        1,
		Confidence:       confidence,
		ConfidenceLevel:  models.ConfidenceLevelFor(confidence),
		Lines:            []string{first, second},
		ProjectedArrival: &arrival,
		Source:           models.SourceSynthesized,
	}
}

// TransferScore is the confidence of a route changing trains at the hub.
func TransferScore(c hubs.Connection) int {
	score := TransferConfidence
	if c.UserPriority {
		score += UserPriorityBonus
	}
	if c.TransferSeconds == 0 {
		score += SamePlatformBonus
	}
	if c.Hub.Priority >= HighPriorityThreshold {
		score += HighPriorityBonus
	}
	return min(score, MaxConfidence)
}

func transferInstruction(hub, line string, dir models.Direction, seconds int) string {
	if seconds == 0 {
		return fmt.Sprintf("Transfer across the platform at %s to the %s train %s", hub, line, dir)
	}
	return fmt.Sprintf("Transfer at %s to the %s train %s", hub, line, dir)
}

func arriveStep(st models.Station) models.RouteStep {
	return models.RouteStep{
		Kind:        models.StepArrive,
		Station:     st.Name,
		StationID:   st.ID,
		Instruction: "Arrive at " + st.Name,
	}
}

// rideMinutes estimates in-train time from straight-line distance, the
// average subway speed and the line's multiplier. Never below one minute.
func (s *Synthesizer) rideMinutes(line string, from, to models.Location) int {
	km := utils.Distance(from, to) / 1000
	m := km / s.opts.SubwaySpeedKmh * 60 * s.Lines.Line(line).TransitMultiplier
	return max(1, int(math.Round(m)))
}

// walkMinutes is the walk to a station found by coordinates. Stations
// resolved by id or name have no distance and no walk.
func (s *Synthesizer) walkMinutes(meters float64) int {
	speed := s.Lines.WalkingSpeedMetersPerMinute()
	if meters <= 0 || speed <= 0 {
		return 0
	}
	return int(math.Ceil(meters / speed))
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
