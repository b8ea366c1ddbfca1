package planner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

// Endpoint is one end of a trip: a station id or name, or a coordinate.
type Endpoint struct {
	Query    string
	Location *models.Location
}

func (e Endpoint) String() string {
	if e.Location != nil {
		return fmt.Sprintf("%.6f,%.6f", e.Location.Lat, e.Location.Lon)
	}
	return e.Query
}

type Request struct {
	From Endpoint
	To   Endpoint
}

type PlanResult struct {
	Routes       []models.SubwayRoute  `json:"routes"`
	Origins      []models.StationMatch `json:"origins"`
	Destinations []models.StationMatch `json:"destinations"`
	FeedStatuses []models.FeedStatus   `json:"feedStatuses"`
	// Fallback is set when the routes come from the estimation model.
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Plan resolves both endpoints, synthesizes candidates and refines them with
// whatever live feeds load before the request deadline. Feed failures are
// reported in the result, never returned. When no live feed works or no
// candidate exists the estimation model answers instead.
func (s *Synthesizer) Plan(ctx context.Context, req Request) (*PlanResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestDeadline)
	defer cancel()

	origins, err := s.resolve(req.From)
	if err != nil {
		return nil, fmt.Errorf("resolve origin: %w", err)
	}
	destinations, err := s.resolve(req.To)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	result := &PlanResult{
		Origins:      origins,
		Destinations: destinations,
		GeneratedAt:  s.Clock.Now(),
	}

	candidates := s.Candidates(origins, destinations)
	if len(candidates) == 0 {
		s.logger.Info("no synthesized route, using estimates",
			slog.String("from", req.From.String()),
			slog.String("to", req.To.String()))
		return s.fallback(result, origins, destinations, ErrNoRouteFound)
	}

	feeds := s.loadFeeds(ctx, candidates)
	result.FeedStatuses = feeds.Statuses
	if feeds.AllFailed() {
		s.logger.Warn("all feeds failed, using estimates",
			slog.Int("groups", len(feeds.Statuses)))
		return s.fallback(result, origins, destinations, ErrNoDataAvailable)
	}

	enhanced := make([]models.SubwayRoute, 0, len(candidates))
	for _, c := range candidates {
		if ctx.Err() != nil {
			// Deadline hit: keep what remains as estimated.
			enhanced = append(enhanced, c)
			continue
		}
		enhanced = append(enhanced, s.Enhance(ctx, c, feeds))
	}
	result.Routes = models.RankRoutes(enhanced, s.opts.MaxRoutes)

	logging.LogTiming(s.logger, "plan", start,
		slog.Int("routes", len(result.Routes)),
		slog.Int("working_feeds", feeds.Working()),
		slog.Int("feed_groups", len(feeds.Statuses)))
	return result, nil
}

func (s *Synthesizer) fallback(result *PlanResult, origins, destinations []models.StationMatch, cause error) (*PlanResult, error) {
	result.Routes = s.Fallback.Routes(origins, destinations)
	result.Fallback = true
	if len(result.Routes) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoDataAvailable, cause)
	}
	return result, nil
}

func (s *Synthesizer) loadFeeds(ctx context.Context, routes []models.SubwayRoute) *gtfs.FeedSet {
	var lines []string
	for _, r := range routes {
		for _, l := range r.Lines {
			if !slices.Contains(lines, l) {
				lines = append(lines, l)
			}
		}
	}
	return s.loadFeedsForLines(ctx, lines)
}

func (s *Synthesizer) loadFeedsForLines(ctx context.Context, lines []string) *gtfs.FeedSet {
	if s.Feeds == nil {
		return &gtfs.FeedSet{}
	}
	return s.Feeds.Load(ctx, s.Feeds.GroupsForLines(lines))
}

func (s *Synthesizer) resolve(e Endpoint) ([]models.StationMatch, error) {
	if e.Location != nil {
		matches := s.Stations.Nearest(e.Location.Lat, e.Location.Lon, s.opts.NearestStations, s.opts.NearestRadiusMeters)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoStationNearby, e)
		}
		return matches, nil
	}
	st, err := s.Stations.Lookup(e.Query)
	if err != nil {
		return nil, err
	}
	return []models.StationMatch{{Station: st}}, nil
}
