package estimate

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/models"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *appconf.Config {
	t.Helper()
	cfg, err := appconf.Parse([]byte(`
planner:
  minJitterMinutes: 0
  maxJitterMinutes: 2
  finalWalkMinutes: 5
lines:
  F: {frequencyMinutes: 8, transitMinutes: 20}
  G: {frequencyMinutes: 11, transitMinutes: 25}
`))
	require.NoError(t, err)
	return cfg
}

func match(id, name string, lat, lon float64, lines ...string) models.StationMatch {
	return models.StationMatch{Station: models.Station{
		ID: id, Name: name, Lines: lines, Location: models.Location{Lat: lat, Lon: lon},
	}}
}

var (
	bergen = match("F20", "Bergen St", 40.686145, -73.990862, "F", "G")
	jay    = match("A41", "Jay St-MetroTech", 40.692338, -73.987342, "A", "C", "F", "R")
	w4     = match("A32", "W 4 St-Washington Sq", 40.732338, -74.000495, "A", "C", "E", "B", "D", "F", "M")
)

func TestJitterBounds(t *testing.T) {
	j := NewSeededJitter(7)
	for range 500 {
		v := j.Minutes(1, 3)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 3)
	}
	assert.Equal(t, 2, j.Minutes(2, 2))
	assert.Equal(t, 4, j.Minutes(4, 1), "inverted bounds return lo")

	var none *Jitter
	assert.Equal(t, 1, none.Minutes(1, 5))
}

func TestSeededJitterIsDeterministic(t *testing.T) {
	a, b := NewSeededJitter(42), NewSeededJitter(42)
	for range 50 {
		assert.Equal(t, a.Minutes(0, 10), b.Minutes(0, 10))
	}
}

func TestJitterConcurrentUse(t *testing.T) {
	j := NewJitter(rand.NewPCG(1, 2))
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				j.Minutes(0, 5)
			}
		}()
	}
	wg.Wait()
}

func TestWait(t *testing.T) {
	cfg := testConfig(t)

	m := NewModel(cfg, nil, clock.Fixed(now), Options{}, nil)
	assert.Equal(t, 4, m.Wait("F"), "floor(8/2) without jitter")
	assert.Equal(t, 5, m.Wait("G"), "floor(11/2) without jitter")

	seeded := NewModel(cfg, NewSeededJitter(3), clock.Fixed(now), Options{}, nil)
	for range 100 {
		w := seeded.Wait("F")
		assert.GreaterOrEqual(t, w, 4)
		assert.LessOrEqual(t, w, 6)
	}

	assert.Equal(t, 4, m.Wait("X"), "unknown line uses the default frequency")
}

func TestRoutes(t *testing.T) {
	cfg := testConfig(t)
	m := NewModel(cfg, nil, clock.Fixed(now), Options{FinalWalkMinutes: 5, MaxRoutes: 5}, nil)

	routes := m.Routes([]models.StationMatch{bergen}, []models.StationMatch{jay})
	require.Len(t, routes, 1, "only the shared F line")

	r := routes[0]
	assert.False(t, r.IsRealTimeData)
	assert.Equal(t, Confidence, r.Confidence)
	assert.Equal(t, models.ConfidenceLow, r.ConfidenceLevel)
	assert.Equal(t, models.SourceFallback, r.Source)
	assert.Equal(t, []string{"F"}, r.Lines)
	assert.Equal(t, 4+20+5, r.TotalMinutes)
	require.NotNil(t, r.ProjectedArrival)
	assert.Equal(t, now.Add(29*time.Minute), *r.ProjectedArrival)

	require.Len(t, r.Steps, 2)
	board := r.Steps[0]
	assert.Equal(t, models.StepBoard, board.Kind)
	assert.Equal(t, models.Northbound, board.Direction)
	require.NotNil(t, board.WaitMinutes)
	assert.Equal(t, 4, *board.WaitMinutes)
	assert.Equal(t, 20, board.RideMinutes)
	require.NotNil(t, board.NextDeparture)
	assert.Equal(t, now.Add(4*time.Minute), *board.NextDeparture)
	assert.Equal(t, models.StepArrive, r.Steps[1].Kind)
	assert.Equal(t, "Jay St-MetroTech", r.Steps[1].Station)

	for _, s := range r.Steps {
		assert.Equal(t, models.SourceEstimate, s.DepartureSource)
	}
}

func TestRoutesWithoutSharedLine(t *testing.T) {
	cfg := testConfig(t)
	m := NewModel(cfg, nil, clock.Fixed(now), Options{FinalWalkMinutes: 5, MaxRoutes: 5}, nil)

	origin := match("X1", "Nowhere", 40.6, -73.9, "G")
	routes := m.Routes([]models.StationMatch{origin}, []models.StationMatch{w4})
	require.Len(t, routes, 1)
	assert.Equal(t, []string{"G"}, routes[0].Lines)
	assert.Equal(t, 5+25+5, routes[0].TotalMinutes)
}

func TestRoutesRankedAndCapped(t *testing.T) {
	cfg := testConfig(t)
	m := NewModel(cfg, nil, clock.Fixed(now), Options{MaxRoutes: 5}, nil)

	routes := m.Routes([]models.StationMatch{jay, w4}, []models.StationMatch{w4, jay, bergen})
	assert.LessOrEqual(t, len(routes), 5)
	for i := 1; i < len(routes); i++ {
		assert.LessOrEqual(t, routes[i-1].TotalMinutes, routes[i].TotalMinutes)
	}
	for _, r := range routes {
		assert.NotEqual(t, r.Steps[0].Station, r.Steps[1].Station)
	}

	assert.Empty(t, m.Routes(nil, []models.StationMatch{jay}))
}

func TestDepartures(t *testing.T) {
	cfg := testConfig(t)
	m := NewModel(cfg, nil, clock.Fixed(now), Options{}, nil)

	deps := m.Departures("F", models.Southbound)
	require.Len(t, deps, DepartureCount)

	want := []time.Duration{4 * time.Minute, 12 * time.Minute, 20 * time.Minute}
	for i, d := range deps {
		assert.Equal(t, now.Add(want[i]), d.Time)
		assert.Equal(t, models.SourceEstimate, d.Source)
		assert.False(t, d.Live())
		assert.Equal(t, models.Southbound, d.Direction)
		assert.Empty(t, d.TripID)
	}
	assert.Equal(t, "4", deps[0].Label)
	assert.Equal(t, "20", deps[2].Label)
}
