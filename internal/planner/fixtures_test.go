package planner

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/estimate"
	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/hubs"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/stations"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

var (
	bergen  = models.Station{ID: "F20", Name: "Bergen St", Lines: []string{"F", "G"}, Location: models.Location{Lat: 40.686145, Lon: -73.990862}}
	carroll = models.Station{ID: "F21", Name: "Carroll St", Lines: []string{"F", "G"}, Location: models.Location{Lat: 40.680303, Lon: -73.995048}}
	jay     = models.Station{ID: "A41", Name: "Jay St-MetroTech", Lines: []string{"A", "C", "F", "R"}, Location: models.Location{Lat: 40.692338, Lon: -73.987342}}
	clinton = models.Station{ID: "A44", Name: "Clinton-Washington Avs", Lines: []string{"C"}, Location: models.Location{Lat: 40.683263, Lon: -73.965838}}
	remote  = models.Station{ID: "Z99", Name: "Remote Terminal", Lines: []string{"Z"}, Location: models.Location{Lat: 40.70, Lon: -73.80}}
	ghost   = models.Station{ID: "X00", Name: "Ghost Station", Location: models.Location{Lat: 40.69, Lon: -73.98}}
)

var testGroups = []models.FeedGroup{
	{Name: "ACE", URL: "http://feeds.test/ace", Lines: []string{"A", "C", "E"}},
	{Name: "BDFM", URL: "http://feeds.test/bdfm", Lines: []string{"B", "D", "F", "M"}},
	{Name: "G", URL: "http://feeds.test/g", Lines: []string{"G"}},
}

func testCatalog() *hubs.Catalog {
	return hubs.New([]models.TransferHub{
		{
			Name:         "Jay St-MetroTech",
			Location:     jay.Location,
			Priority:     9,
			UserPriority: true,
			Transfers: map[models.LinePair]int{
				models.NewLinePair("F", "C"): 0,
				models.NewLinePair("F", "A"): 0,
			},
		},
		{
			Name:      "Other Hub",
			Location:  models.Location{Lat: 40.70, Lon: -73.98},
			Priority:  3,
			Transfers: map[models.LinePair]int{models.NewLinePair("F", "C"): 180},
		},
	})
}

// stubFeeds serves prepared feeds by group name. Groups without a feed fail.
type stubFeeds struct {
	feeds     map[string]*models.Feed
	requested []string
}

func (s *stubFeeds) GroupsForLines(lines []string) []models.FeedGroup {
	var out []models.FeedGroup
	for _, g := range testGroups {
		for _, l := range lines {
			if slices.Contains(g.Lines, l) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func (s *stubFeeds) Load(_ context.Context, groups []models.FeedGroup) *gtfs.FeedSet {
	var working []*models.Feed
	var failed []models.FeedStatus
	for _, g := range groups {
		s.requested = append(s.requested, g.Name)
		if f, ok := s.feeds[g.Name]; ok {
			working = append(working, f)
			continue
		}
		failed = append(failed, models.FeedStatus{Group: g.Name, URL: g.URL, Error: "feed unavailable"})
	}
	set := gtfs.NewFeedSet(groups, working...)
	set.Statuses = append(set.Statuses, failed...)
	return set
}

func feed(group string, trips ...models.TripUpdate) *models.Feed {
	f := &models.Feed{Group: group, FetchedAt: now}
	for i := range trips {
		f.Entities = append(f.Entities, models.FeedEntity{ID: trips[i].TripID, TripUpdate: &trips[i]})
	}
	return f
}

// departing is a trip leaving stopID at the given raw feed time.
func departing(tripID, route, stopID string, raw time.Time) models.TripUpdate {
	return models.TripUpdate{
		TripID:  tripID,
		RouteID: route,
		StopTimeUpdates: []models.StopTimeUpdate{
			{StopID: stopID, Departure: proto.Int64(raw.Unix())},
		},
	}
}

// drift is the default processing delay plus staleness buffer.
const drift = 45 * time.Second

func newSynthesizer(t *testing.T, feeds FeedSource) *Synthesizer {
	t.Helper()
	cfg, err := appconf.Parse([]byte("planner:\n  finalWalkMinutes: 5\n"))
	require.NoError(t, err)

	reg, err := stations.NewRegistry([]models.Station{bergen, carroll, jay, clinton, remote, ghost})
	require.NoError(t, err)

	clk := clock.Fixed(now)
	return NewSynthesizer(Deps{
		Lines:    cfg,
		Stations: reg,
		Hubs:     testCatalog(),
		Feeds:    feeds,
		Fallback: estimate.NewModel(cfg, nil, clk, estimate.Options{FinalWalkMinutes: 5, MaxRoutes: 5}, nil),
		Clock:    clk,
	}, Options{}, nil)
}

func matchOf(st models.Station) []models.StationMatch {
	return []models.StationMatch{{Station: st}}
}

// jayRoute is the F to C transfer through Jay St between Bergen St and
// Clinton-Washington Avs.
func jayRoute(t *testing.T, s *Synthesizer) models.SubwayRoute {
	t.Helper()
	for _, r := range s.Candidates(matchOf(bergen), matchOf(clinton)) {
		if r.Transfers == 1 && r.Steps[1].Station == "Jay St-MetroTech" && slices.Equal(r.Lines, []string{"F", "C"}) {
			return r
		}
	}
	t.Fatal("no F to C route through Jay St")
	return models.SubwayRoute{}
}
