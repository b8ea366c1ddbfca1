// Package hubs is the static catalog of interchange stations.
package hubs

import (
	"cmp"
	"slices"
	"strings"

	"subwayroute.dev/engine/internal/models"
)

// Connection is a hub offering a transfer between two specific lines.
type Connection struct {
	Hub             models.TransferHub
	TransferSeconds int
	UserPriority    bool
}

// TransferMinutes rounds the transfer time up to whole minutes.
func (c Connection) TransferMinutes() int {
	return (c.TransferSeconds + 59) / 60
}

// Catalog answers which hubs connect two lines. It is immutable once built.
type Catalog struct {
	hubs  []models.TransferHub
	index map[models.LinePair][]Connection
}

func New(hubs []models.TransferHub) *Catalog {
	c := &Catalog{
		hubs:  slices.Clone(hubs),
		index: make(map[models.LinePair][]Connection),
	}
	for _, h := range c.hubs {
		for pair, seconds := range h.Transfers {
			if pair.A == pair.B {
				continue
			}
			key := models.NewLinePair(strings.ToUpper(pair.A), strings.ToUpper(pair.B))
			c.index[key] = append(c.index[key], Connection{Hub: h, TransferSeconds: seconds, UserPriority: h.UserPriority})
		}
	}
	for _, conns := range c.index {
		slices.SortFunc(conns, func(a, b Connection) int {
			if a.Hub.Priority != b.Hub.Priority {
				return cmp.Compare(b.Hub.Priority, a.Hub.Priority)
			}
			return cmp.Compare(a.Hub.Name, b.Hub.Name)
		})
	}
	return c
}

// Connections returns the hubs connecting lineA and lineB, highest priority
// first with ties broken by name. The order of the two lines does not matter.
func (c *Catalog) Connections(lineA, lineB string) []Connection {
	if c == nil {
		return nil
	}
	key := models.NewLinePair(strings.ToUpper(lineA), strings.ToUpper(lineB))
	return slices.Clone(c.index[key])
}

// Hubs returns every hub in the catalog.
func (c *Catalog) Hubs() []models.TransferHub {
	if c == nil {
		return nil
	}
	return slices.Clone(c.hubs)
}
