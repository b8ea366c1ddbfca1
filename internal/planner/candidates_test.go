package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subwayroute.dev/engine/internal/hubs"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/stations"
)

func TestTransferScore(t *testing.T) {
	tests := []struct {
		name     string
		conn     hubs.Connection
		expected int
	}{
		{"plain", hubs.Connection{Hub: models.TransferHub{Priority: 3}, TransferSeconds: 120}, 70},
		{"user priority", hubs.Connection{Hub: models.TransferHub{Priority: 3}, TransferSeconds: 120, UserPriority: true}, 85},
		{"same platform", hubs.Connection{Hub: models.TransferHub{Priority: 3}}, 80},
		{"high priority", hubs.Connection{Hub: models.TransferHub{Priority: 8}, TransferSeconds: 60}, 75},
		{"everything capped", hubs.Connection{Hub: models.TransferHub{Priority: 9}, UserPriority: true}, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TransferScore(tt.conn))
		})
	}
}

func TestJayStreetTransferConfidence(t *testing.T) {
	s := newSynthesizer(t, nil)
	r := jayRoute(t, s)

	assert.Equal(t, 95, r.Confidence)
	assert.Equal(t, models.ConfidenceHigh, r.ConfidenceLevel)
	assert.Equal(t, models.SourceSynthesized, r.Source)
	assert.False(t, r.IsRealTimeData)

	require.Len(t, r.Steps, 3)
	assert.Equal(t, models.StepBoard, r.Steps[0].Kind)
	assert.Equal(t, models.StepTransfer, r.Steps[1].Kind)
	assert.Equal(t, models.StepArrive, r.Steps[2].Kind)
	assert.Equal(t, models.Northbound, r.Steps[0].Direction)
	assert.Equal(t, models.Southbound, r.Steps[1].Direction)
	require.NotNil(t, r.Steps[1].TransferMinutes)
	assert.Equal(t, 0, *r.Steps[1].TransferMinutes)

	wait1, wait2 := *r.Steps[0].WaitMinutes, *r.Steps[1].WaitMinutes
	assert.Equal(t, 4, wait1, "half the default 8 minute headway")
	assert.Equal(t, wait1+r.Steps[0].RideMinutes+0+wait2+r.Steps[1].RideMinutes, r.TotalMinutes)
}

func TestTransferConfidenceRange(t *testing.T) {
	s := newSynthesizer(t, nil)
	routes := s.Candidates(matchOf(bergen), matchOf(clinton))
	require.Len(t, routes, 2)

	for _, r := range routes {
		assert.Equal(t, 1, r.Transfers)
		assert.GreaterOrEqual(t, r.Confidence, 70)
		assert.LessOrEqual(t, r.Confidence, 95)
	}
	assert.Equal(t, "Jay St-MetroTech", routes[0].Steps[1].Station, "same-platform hub is faster")
	assert.Equal(t, 70, routes[1].Confidence)
}

func TestDirectRoutes(t *testing.T) {
	s := newSynthesizer(t, nil)
	routes := s.Candidates(matchOf(bergen), matchOf(carroll))
	require.Len(t, routes, 2, "one per shared line, no hub joins F and G")

	var lines []string
	for _, r := range routes {
		assert.Equal(t, 90, r.Confidence)
		assert.Equal(t, 0, r.Transfers)
		assert.Len(t, r.Steps, 2)
		assert.Equal(t, models.Southbound, r.Steps[0].Direction)
		assert.GreaterOrEqual(t, r.Steps[0].RideMinutes, 1)
		require.NotNil(t, r.ProjectedArrival)
		assert.Equal(t, now.Add(minutes(r.TotalMinutes)), *r.ProjectedArrival)
		lines = append(lines, r.Lines...)
	}
	assert.ElementsMatch(t, []string{"F", "G"}, lines)
}

func TestHubAtEndpointIsSkipped(t *testing.T) {
	s := newSynthesizer(t, nil)
	for _, r := range s.Candidates(matchOf(jay), matchOf(clinton)) {
		if r.Transfers == 1 {
			assert.NotEqual(t, "Jay St-MetroTech", r.Steps[1].Station)
		}
	}
}

func TestCandidatesRankedAndCapped(t *testing.T) {
	reg := stations.Default()
	origins := reg.Nearest(40.6905, -73.9885, 3, 1500)
	destinations := reg.Nearest(40.7527, -73.9877, 3, 1500)
	require.NotEmpty(t, origins)
	require.NotEmpty(t, destinations)

	s := newSynthesizer(t, nil)
	s.Hubs = hubs.Default()
	routes := s.Candidates(origins, destinations)

	require.NotEmpty(t, routes)
	assert.LessOrEqual(t, len(routes), 5)
	seen := map[string]bool{}
	for i, r := range routes {
		assert.False(t, seen[r.Key()], "duplicate route")
		seen[r.Key()] = true
		if r.Transfers == 0 {
			assert.Equal(t, 90, r.Confidence)
		} else {
			assert.GreaterOrEqual(t, r.Confidence, 70)
			assert.LessOrEqual(t, r.Confidence, 95)
		}
		if i > 0 {
			prev := routes[i-1]
			assert.True(t, prev.TotalMinutes < r.TotalMinutes ||
				(prev.TotalMinutes == r.TotalMinutes && prev.Transfers <= r.Transfers))
		}
	}
}

func TestWalkToCoordinateMatches(t *testing.T) {
	s := newSynthesizer(t, nil)
	origin := []models.StationMatch{{Station: bergen, DistanceMeters: 200}}
	routes := s.Candidates(origin, matchOf(carroll))
	require.NotEmpty(t, routes)

	r := routes[0]
	assert.Equal(t, 3, r.Steps[0].WalkMinutes, "200m at 80m/min")
	assert.Equal(t, 3+*r.Steps[0].WaitMinutes+r.Steps[0].RideMinutes, r.TotalMinutes)
}

func TestNoCandidatesWithoutSharedLineOrHub(t *testing.T) {
	s := newSynthesizer(t, nil)
	assert.Empty(t, s.Candidates(matchOf(bergen), matchOf(remote)))
	assert.Empty(t, s.Candidates(matchOf(bergen), matchOf(bergen)))
}
