package models

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

type StepKind string

const (
	StepBoard    StepKind = "board"
	StepTransfer StepKind = "transfer"
	StepArrive   StepKind = "arrive"
)

// Route sources.
const (
	SourceSynthesized = "synthesized"
	SourceFallback    = "fallback"
)

// Confidence levels reported next to the numeric score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// RouteStep is one chronological step of an itinerary.
type RouteStep struct {
	Kind            StepKind   `json:"kind"`
	Station         string     `json:"station"`
	StationID       string     `json:"stationId,omitempty"`
	Line            string     `json:"line,omitempty"`
	Direction       Direction  `json:"direction,omitempty"`
	WalkMinutes     int        `json:"walkMinutes,omitempty"`
	WaitMinutes     *int       `json:"waitMinutes,omitempty"`
	TransferMinutes *int       `json:"transferMinutes,omitempty"`
	RideMinutes     int        `json:"rideMinutes,omitempty"`
	Instruction     string     `json:"instruction"`
	NextDeparture   *time.Time `json:"nextDeparture,omitempty"`
	DepartureSource string     `json:"departureSource,omitempty"`
}

// Boards reports whether the step waits for a train.
func (s RouteStep) Boards() bool {
	return s.Kind == StepBoard || s.Kind == StepTransfer
}

// SubwayRoute is a ranked itinerary candidate.
type SubwayRoute struct {
	Steps            []RouteStep `json:"steps"`
	TotalMinutes     int         `json:"totalMinutes"`
	Transfers        int         `json:"transfers"`
	Confidence       int         `json:"confidence"`
	ConfidenceLevel  string      `json:"confidenceLevel"`
	Lines            []string    `json:"lines"`
	IsRealTimeData   bool        `json:"isRealTimeData"`
	ProjectedArrival *time.Time  `json:"projectedArrival,omitempty"`
	Source           string      `json:"source"`
	LiveSteps        int         `json:"liveSteps"`
}

// IntPtr is a helper for optional minute fields.
func IntPtr(v int) *int {
	return &v
}

// ConfidenceLevelFor maps a confidence score to its reported level.
func ConfidenceLevelFor(score int) string {
	switch {
	case score >= 85:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// Key identifies a route by its stations and lines, so that the same
// itinerary produced twice can be dropped.
func (r SubwayRoute) Key() string {
	var b strings.Builder
	for _, s := range r.Steps {
		b.WriteString(string(s.Kind))
		b.WriteByte(':')
		b.WriteString(s.Station)
		b.WriteByte(':')
		b.WriteString(s.Line)
		b.WriteByte('|')
	}
	return b.String()
}

// RankRoutes orders routes by total minutes then transfer count, drops
// duplicates keeping the first occurrence and truncates to limit (0 keeps all).
func RankRoutes(routes []SubwayRoute, limit int) []SubwayRoute {
	ranked := slices.Clone(routes)
	slices.SortStableFunc(ranked, func(a, b SubwayRoute) int {
		if c := cmp.Compare(a.TotalMinutes, b.TotalMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.Transfers, b.Transfers)
	})

	seen := make(map[string]bool, len(ranked))
	out := ranked[:0]
	for _, r := range ranked {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
