// Package planner synthesizes direct and one-transfer subway itineraries,
// ranks them and refines them with live departures.
package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/departures"
	"subwayroute.dev/engine/internal/estimate"
	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/hubs"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

var (
	// ErrNoRouteFound means no candidate could be built between the stations.
	ErrNoRouteFound = errors.New("no route found")
	// ErrNoDataAvailable means neither synthesis nor the fallback produced a route.
	ErrNoDataAvailable = errors.New("no route data available")
	// ErrNoStationNearby means no station lies within the search radius.
	ErrNoStationNearby = errors.New("no station nearby")
)

// Route confidence scores.
const (
	DirectConfidence      = 90
	TransferConfidence    = 70
	UserPriorityBonus     = 15
	SamePlatformBonus     = 10
	HighPriorityBonus     = 5
	HighPriorityThreshold = 8
	MaxConfidence         = 95
)

// LineConfig is the configuration provider consulted per line.
type LineConfig interface {
	estimate.LineConfig
	WalkingSpeedMetersPerMinute() float64
}

// StationLocator resolves stations by id or name and finds stations near a
// coordinate.
type StationLocator interface {
	Lookup(query string) (models.Station, error)
	Nearest(lat, lon float64, limit int, maxMeters float64) []models.StationMatch
}

// FeedSource loads the realtime feeds publishing a set of lines.
type FeedSource interface {
	GroupsForLines(lines []string) []models.FeedGroup
	Load(ctx context.Context, groups []models.FeedGroup) *gtfs.FeedSet
}

// DefaultNearestRadiusMeters bounds coordinate resolution when no radius is set.
const DefaultNearestRadiusMeters = 1500

type Options struct {
	MaxRoutes           int
	MaxHubsPerPair      int
	SubwaySpeedKmh      float64
	NearestStations     int
	NearestRadiusMeters float64
	RequestDeadline     time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxRoutes <= 0 || o.MaxRoutes > 5 {
		o.MaxRoutes = 5
	}
	if o.MaxHubsPerPair <= 0 {
		o.MaxHubsPerPair = 3
	}
	if o.SubwaySpeedKmh <= 0 {
		o.SubwaySpeedKmh = 28
	}
	if o.NearestStations <= 0 {
		o.NearestStations = 3
	}
	if o.NearestRadiusMeters <= 0 {
		o.NearestRadiusMeters = DefaultNearestRadiusMeters
	}
	if o.RequestDeadline <= 0 {
		o.RequestDeadline = 20 * time.Second
	}
}

// Deps are the collaborators of a Synthesizer.
type Deps struct {
	Lines     LineConfig
	Stations  StationLocator
	Hubs      *hubs.Catalog
	Feeds     FeedSource
	Projector *departures.Projector
	Fallback  *estimate.Model
	Clock     clock.Clock
}

type Synthesizer struct {
	Deps
	opts   Options
	logger *slog.Logger
}

func NewSynthesizer(deps Deps, opts Options, logger *slog.Logger) *Synthesizer {
	opts.applyDefaults()
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	logger = logging.OrDiscard(logger)
	if deps.Projector == nil {
		deps.Projector = departures.NewProjector(nil, deps.Clock, departures.Options{
			ProcessingDelay: departures.DefaultProcessingDelay,
			StalenessBuffer: departures.DefaultStalenessBuffer,
		}, logger)
	}
	if deps.Fallback == nil {
		deps.Fallback = estimate.NewModel(deps.Lines, nil, deps.Clock, estimate.Options{MaxRoutes: opts.MaxRoutes}, logger)
	}
	return &Synthesizer{
		Deps:   deps,
		opts:   opts,
		logger: logger.With(slog.String("component", "route_synthesizer")),
	}
}
