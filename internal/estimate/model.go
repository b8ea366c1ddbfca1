// Package estimate builds frequency-based itineraries and departures for
// lines without usable live data. Everything it returns is tagged as an
// estimate and never claims to be real-time.
package estimate

import (
	"fmt"
	"log/slog"
	"time"

	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/departures"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/utils"
)

// Confidence reported for every fallback route.
const Confidence = 40

// DepartureCount is the number of synthetic departures listed per line.
const DepartureCount = 3

// LineConfig supplies per-line service constants.
type LineConfig interface {
	Line(id string) appconf.LineSettings
	JitterBounds() (lo, hi int)
}

type Options struct {
	FinalWalkMinutes int
	MaxRoutes        int
}

type Model struct {
	lines  LineConfig
	jitter *Jitter
	clock  clock.Clock
	opts   Options
	logger *slog.Logger
}

func NewModel(lines LineConfig, jitter *Jitter, clk clock.Clock, opts Options, logger *slog.Logger) *Model {
	if clk == nil {
		clk = clock.System{}
	}
	return &Model{
		lines:  lines,
		jitter: jitter,
		clock:  clk,
		opts:   opts,
		logger: logging.OrDiscard(logger).With(slog.String("component", "estimation_fallback")),
	}
}

// Wait is the estimated wait for a line: half its frequency rounded down,
// plus jitter.
func (m *Model) Wait(line string) int {
	lo, hi := m.lines.JitterBounds()
	return m.lines.Line(line).FrequencyMinutes/2 + m.jitter.Minutes(lo, hi)
}

// Routes builds a direct-shaped route for every line leaving each origin,
// preferring lines shared with the destination. Routes are ranked and capped
// like synthesized ones.
func (m *Model) Routes(origins, destinations []models.StationMatch) []models.SubwayRoute {
	now := m.clock.Now()
	var routes []models.SubwayRoute
	for _, o := range origins {
		for _, d := range destinations {
			if o.Station.ID == d.Station.ID {
				continue
			}
			lines := o.Station.SharedLines(d.Station)
			if len(lines) == 0 {
				lines = o.Station.Lines
			}
			for _, line := range lines {
				routes = append(routes, m.route(now, o.Station, d.Station, line))
			}
		}
	}

	ranked := models.RankRoutes(routes, m.opts.MaxRoutes)
	m.logger.Debug("fallback routes built",
		slog.Int("candidates", len(routes)),
		slog.Int("returned", len(ranked)))
	return ranked
}

func (m *Model) route(now time.Time, from, to models.Station, line string) models.SubwayRoute {
	wait := m.Wait(line)
	ride := m.lines.Line(line).TransitMinutes
	dir := utils.TravelDirection(from.Location, to.Location)
	next := now.Add(time.Duration(wait) * time.Minute)
	total := wait + ride + m.opts.FinalWalkMinutes
	arrival := now.Add(time.Duration(total) * time.Minute)

	return models.SubwayRoute{
		Steps: []models.RouteStep{
			{
				Kind:            models.StepBoard,
				Station:         from.Name,
				StationID:       from.ID,
				Line:            line,
				Direction:       dir,
				WaitMinutes:     models.IntPtr(wait),
				RideMinutes:     ride,
				Instruction:     fmt.Sprintf("Take the %s train %s from %s", line, dir, from.Name),
				NextDeparture:   &next,
				DepartureSource: models.SourceEstimate,
			},
			{
				Kind:            models.StepArrive,
				Station:         to.Name,
				StationID:       to.ID,
				Instruction:     fmt.Sprintf("Arrive at %s, about %d min walk to your destination", to.Name, m.opts.FinalWalkMinutes),
				DepartureSource: models.SourceEstimate,
			},
		},
		TotalMinutes:     total,
		Confidence:       Confidence,
		ConfidenceLevel:  models.ConfidenceLow,
		Lines:            []string{line},
		IsRealTimeData:   false,
		ProjectedArrival: &arrival,
		Source:           models.SourceFallback,
	}
}

// Departures lists synthetic departures at now+wait, then one and two
// headways later.
func (m *Model) Departures(line string, dir models.Direction) []models.Departure {
	now := m.clock.Now()
	freq := time.Duration(m.lines.Line(line).FrequencyMinutes) * time.Minute
	first := now.Add(time.Duration(m.Wait(line)) * time.Minute)

	out := make([]models.Departure, 0, DepartureCount)
	for i := range DepartureCount {
		at := first.Add(time.Duration(i) * freq)
		out = append(out, models.Departure{
			Line:      line,
			Direction: dir,
			Time:      at,
			Label:     departures.Label(at.Sub(now)),
			Source:    models.SourceEstimate,
		})
	}
	return out
}
