// Package stopmatch pairs a station's base stop id and travel direction with
// the concrete stop ids found in realtime feeds.
package stopmatch

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

// ErrNoMatchingStop means no feed stop id matched under any rule.
var ErrNoMatchingStop = errors.New("no matching stop")

// Rule identifies which matching rule accepted a feed stop id. Lower values
// are more precise.
type Rule int

const (
	RuleNone Rule = iota
	RuleDirectional
	RuleBase
	RuleSeparated
	RulePrefixDirection
	RuleDegraded
)

var ruleNames = map[Rule]string{
	RuleNone:            "none",
	RuleDirectional:     "directional",
	RuleBase:            "base",
	RuleSeparated:       "separated",
	RulePrefixDirection: "prefix_direction",
	RuleDegraded:        "degraded",
}

func (r Rule) String() string {
	return ruleNames[r]
}

// Degraded reports whether the rule accepted an id without direction evidence.
func (r Rule) Degraded() bool {
	return r == RuleDegraded
}

var orderedRules = []Rule{RuleDirectional, RuleBase, RuleSeparated, RulePrefixDirection, RuleDegraded}

// Resolution is the outcome of resolving a station against a feed.
type Resolution struct {
	Rule    Rule
	StopIDs map[string]struct{}
}

// Accepts reports whether a feed stop id belongs to the resolved platform.
func (r Resolution) Accepts(stopID string) bool {
	_, ok := r.StopIDs[stopID]
	return ok
}

type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logging.OrDiscard(logger).With(slog.String("component", "stop_resolver"))}
}

// Match evaluates the rules in priority order and returns the first that
// accepts feedStopID.
func (r *Resolver) Match(base string, dir models.Direction, feedStopID string) (Rule, bool) {
	for _, rule := range orderedRules {
		if matches(rule, base, dir, feedStopID) {
			return rule, true
		}
	}
	return RuleNone, false
}

// Resolve finds the most precise rule matched by any of the observed ids and
// accepts every id matching at that rule. Ids matching only a weaker rule
// are ignored.
func (r *Resolver) Resolve(base string, dir models.Direction, observed []string) (Resolution, error) {
	if base == "" {
		return Resolution{}, fmt.Errorf("%w: empty base stop id", ErrNoMatchingStop)
	}

	best := RuleNone
	var accepted map[string]struct{}
	for _, id := range observed {
		rule, ok := r.Match(base, dir, id)
		if !ok || (best != RuleNone && rule > best) {
			continue
		}
		if rule != best {
			best = rule
			accepted = make(map[string]struct{})
		}
		accepted[id] = struct{}{}
	}

	if best != RuleNone {
		for id := range accepted {
			logging.LogMatch(r.logger, base, dir.Letter(), id, best.String(), best.Degraded())
		}
		return Resolution{Rule: best, StopIDs: accepted}, nil
	}

	return Resolution{}, fmt.Errorf("%w: %s%s", ErrNoMatchingStop, base, dir.Letter())
}

func matches(rule Rule, base string, dir models.Direction, id string) bool {
	letter := dir.Letter()
	switch rule {
	case RuleDirectional:
		return letter != "" && strings.EqualFold(id, base+letter)
	case RuleBase:
		return strings.EqualFold(id, base)
	case RuleSeparated:
		if letter == "" {
			return false
		}
		for _, sep := range []string{"_", "-", " "} {
			if strings.EqualFold(id, base+sep+letter) {
				return true
			}
		}
		return false
	case RulePrefixDirection:
		rest, ok := remainder(base, id)
		return ok && letter != "" && strings.Contains(strings.ToUpper(rest), letter)
	case RuleDegraded:
		_, ok := remainder(base, id)
		return ok
	}
	return false
}

// remainder returns what follows base in id. A digit right after the base
// means a different stop (F2 vs F20), so it does not count as a prefix.
func remainder(base, id string) (string, bool) {
	if len(id) <= len(base) || !strings.EqualFold(id[:len(base)], base) {
		return "", false
	}
	rest := id[len(base):]
	if c := rest[0]; c >= '0' && c <= '9' {
		return "", false
	}
	return rest, true
}

// Eligible reports whether a stop time is still ahead: its departure or
// arrival must be strictly after now.
func Eligible(u models.StopTimeUpdate, now time.Time) bool {
	nowUnix := now.Unix()
	if u.Departure != nil && *u.Departure > nowUnix {
		return true
	}
	return u.Arrival != nil && *u.Arrival > nowUnix
}
