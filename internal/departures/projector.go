// Package departures projects upcoming departures of a line at a station from
// decoded realtime feeds.
package departures

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"

	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/stopmatch"
)

// ErrNoLiveData means no working feed publishes the line.
var ErrNoLiveData = errors.New("no live feed for line")

const (
	DefaultProcessingDelay = 30 * time.Second
	DefaultStalenessBuffer = 15 * time.Second
	DefaultMaxPerLine      = 5
)

type Options struct {
	ProcessingDelay time.Duration
	StalenessBuffer time.Duration
	MaxPerLine      int
}

type Projector struct {
	resolver *stopmatch.Resolver
	clock    clock.Clock
	opts     Options
	logger   *slog.Logger
}

func NewProjector(resolver *stopmatch.Resolver, clk clock.Clock, opts Options, logger *slog.Logger) *Projector {
	if resolver == nil {
		resolver = stopmatch.NewResolver(logger)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if opts.MaxPerLine <= 0 {
		opts.MaxPerLine = DefaultMaxPerLine
	}
	return &Projector{
		resolver: resolver,
		clock:    clk,
		opts:     opts,
		logger:   logging.OrDiscard(logger).With(slog.String("component", "departure_projector")),
	}
}

// Now is the projector's notion of the current time.
func (p *Projector) Now() time.Time {
	return p.clock.Now()
}

// Project returns the next departures of line at station in direction dir,
// drift compensated, sorted ascending and capped at the configured maximum.
func (p *Projector) Project(ctx context.Context, station models.Station, line string, dir models.Direction, feeds []*models.Feed) ([]models.Departure, error) {
	return p.project(ctx, station, line, dir, feeds, time.Time{})
}

// ProjectFrom is Project restricted to departures at or after from. The
// filter is applied before the per-line cap.
func (p *Projector) ProjectFrom(ctx context.Context, station models.Station, line string, dir models.Direction, feeds []*models.Feed, from time.Time) ([]models.Departure, error) {
	return p.project(ctx, station, line, dir, feeds, from)
}

func (p *Projector) project(ctx context.Context, station models.Station, line string, dir models.Direction, feeds []*models.Feed, from time.Time) ([]models.Departure, error) {
	if len(feeds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLiveData, line)
	}

	now := p.clock.Now()
	base := station.BaseStopID(line)
	seen := make(map[string]struct{})
	var departures []models.Departure
	var resolveErr error
	matched := false

	for _, feed := range feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trips := gtfs.TripsForLines(feed, []string{line}, gtfs.IndexOptions{})
		res, err := p.resolver.Resolve(base, dir, gtfs.StopIDs(trips))
		if err != nil {
			resolveErr = err
			continue
		}
		matched = true

		drift := p.drift(feed, now)
		for _, trip := range trips {
			for _, u := range trip.StopTimeUpdates {
				if !res.Accepts(u.StopID) || !stopmatch.Eligible(u, now) {
					continue
				}
				raw, ok := u.DepartureTime()
				if !ok {
					continue
				}
				compensated := raw.Add(-drift)
				if !compensated.After(now) || compensated.Before(from) {
					continue
				}
				key := trip.TripID + "|" + u.StopID
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				departures = append(departures, models.Departure{
					Line:      line,
					Direction: dir,
					Time:      compensated,
					Label:     Label(compensated.Sub(now)),
					Source:    sourceTag(feed),
					TripID:    trip.TripID,
				})
			}
		}
	}

	if !matched {
		return nil, resolveErr
	}

	slices.SortStableFunc(departures, func(a, b models.Departure) int {
		return a.Time.Compare(b.Time)
	})
	if len(departures) > p.opts.MaxPerLine {
		departures = departures[:p.opts.MaxPerLine]
	}
	return departures, nil
}

// drift is the amount subtracted from raw feed times: the fixed processing
// delay and staleness buffer plus the snapshot age when it is known.
func (p *Projector) drift(feed *models.Feed, now time.Time) time.Duration {
	d := p.opts.ProcessingDelay + p.opts.StalenessBuffer
	if !feed.FetchedAt.IsZero() {
		if age := now.Sub(feed.FetchedAt); age > 0 {
			d += age
		}
	}
	return d
}

// Label renders the time until a departure: "Now" within 30 seconds, "1"
// within 90 seconds, otherwise whole minutes rounded down.
func Label(delta time.Duration) string {
	switch {
	case delta <= 30*time.Second:
		return "Now"
	case delta <= 90*time.Second:
		return "1"
	}
	return strconv.Itoa(int(delta / time.Minute))
}

func sourceTag(feed *models.Feed) string {
	return cmp.Or(feed.Group, feed.URL, "feed")
}

// StationDepartures holds per-line projections for one station. A line that
// failed has an entry in Errors and none in Lines.
type StationDepartures struct {
	Station   models.Station
	Direction models.Direction
	Lines     map[string][]models.Departure
	Alerts    map[string][]models.Alert
	Errors    map[string]error
}

type lineResult struct {
	line       string
	departures []models.Departure
	alerts     []models.Alert
	err        error
}

// ProjectStation projects every line of the station concurrently. A failure
// on one line does not affect the others.
func (p *Projector) ProjectStation(ctx context.Context, station models.Station, dir models.Direction, feeds *gtfs.FeedSet) StationDepartures {
	start := time.Now()

	rp := pool.NewWithResults[lineResult]()
	for _, line := range station.Lines {
		rp.Go(func() lineResult {
			lineFeeds := feeds.ForLine(line)
			deps, err := p.Project(ctx, station, line, dir, lineFeeds)
			var alerts []models.Alert
			for _, f := range lineFeeds {
				alerts = append(alerts, f.AlertsForLine(line)...)
			}
			return lineResult{line: line, departures: deps, alerts: alerts, err: err}
		})
	}

	out := StationDepartures{
		Station:   station,
		Direction: dir,
		Lines:     make(map[string][]models.Departure),
		Alerts:    make(map[string][]models.Alert),
		Errors:    make(map[string]error),
	}
	for _, r := range rp.Wait() {
		if len(r.alerts) > 0 {
			out.Alerts[r.line] = r.alerts
		}
		if r.err != nil {
			out.Errors[r.line] = r.err
			p.logger.Debug("line projection failed",
				slog.String("station", station.ID),
				slog.String("line", r.line),
				slog.String("error", r.err.Error()))
			continue
		}
		out.Lines[r.line] = r.departures
	}

	logging.LogTiming(p.logger, "project_station", start,
		slog.String("station", station.ID),
		slog.Int("lines", len(out.Lines)),
		slog.Int("failed_lines", len(out.Errors)))
	return out
}
