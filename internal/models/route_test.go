package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func route(total, transfers int, stations ...string) SubwayRoute {
	r := SubwayRoute{TotalMinutes: total, Transfers: transfers}
	for _, s := range stations {
		r.Steps = append(r.Steps, RouteStep{Kind: StepBoard, Station: s, Line: "F"})
	}
	return r
}

func TestRankRoutes(t *testing.T) {
	routes := []SubwayRoute{
		route(20, 1, "a"),
		route(15, 0, "b"),
		route(20, 0, "c"),
		route(15, 0, "b"),
		route(30, 0, "d"),
		route(25, 1, "e"),
		route(10, 1, "f"),
	}

	ranked := RankRoutes(routes, 5)
	assert.Len(t, ranked, 5)

	var got []string
	for _, r := range ranked {
		got = append(got, r.Steps[0].Station)
	}
	assert.Equal(t, []string{"f", "b", "c", "a", "e"}, got)

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		assert.True(t, prev.TotalMinutes < cur.TotalMinutes ||
			(prev.TotalMinutes == cur.TotalMinutes && prev.Transfers <= cur.Transfers))
	}

	assert.Equal(t, "b", routes[1].Steps[0].Station, "input is not reordered")
	assert.Len(t, RankRoutes(routes, 0), 6)
}

func TestConfidenceLevelFor(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceLevelFor(95))
	assert.Equal(t, ConfidenceHigh, ConfidenceLevelFor(90))
	assert.Equal(t, ConfidenceMedium, ConfidenceLevelFor(70))
	assert.Equal(t, ConfidenceLow, ConfidenceLevelFor(40))
}
