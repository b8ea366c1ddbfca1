package hubs

import "subwayroute.dev/engine/internal/models"

type hubDef struct {
	name     string
	lat, lon float64
	priority int
	user     bool
	links    []link
}

// link connects every line in from with every line in to.
type link struct {
	from, to []string
	seconds  int
}

func lines(ls ...string) []string { return ls }

var nycHubs = []hubDef{
	{"Jay St-MetroTech", 40.692338, -73.987342, 9, true, []link{
		{lines("A", "C"), lines("F"), 0},
		{lines("A", "C", "F"), lines("R"), 180},
	}},
	{"W 4 St-Washington Sq", 40.732338, -74.000495, 8, true, []link{
		{lines("A", "C", "E"), lines("B", "D", "F", "M"), 120},
	}},
	{"Atlantic Av-Barclays Ctr", 40.684359, -73.977666, 8, false, []link{
		{lines("2", "3", "4", "5"), lines("B", "Q", "D", "N", "R"), 240},
		{lines("2", "3"), lines("4", "5"), 60},
		{lines("B", "Q"), lines("D", "N", "R"), 180},
	}},
	{"34 St-Herald Sq", 40.749567, -73.98795, 7, false, []link{
		{lines("B", "D", "F", "M"), lines("N", "Q", "R", "W"), 120},
	}},
	{"14 St-Union Sq", 40.735736, -73.990568, 7, false, []link{
		{lines("4", "5", "6"), lines("L", "N", "Q", "R", "W"), 180},
		{lines("L"), lines("N", "Q", "R", "W"), 180},
	}},
	{"Times Sq-42 St", 40.75529, -73.987495, 7, false, []link{
		{lines("1", "2", "3"), lines("7", "N", "Q", "R", "W", "GS"), 240},
		{lines("7"), lines("N", "Q", "R", "W", "GS"), 240},
		{lines("A", "C", "E"), lines("1", "2", "3", "7", "N", "Q", "R", "W"), 360},
	}},
	{"Fulton St", 40.710374, -74.007582, 6, false, []link{
		{lines("2", "3", "4", "5"), lines("A", "C", "J", "Z"), 240},
		{lines("A", "C"), lines("J", "Z"), 180},
	}},
	{"Hoyt-Schermerhorn Sts", 40.688484, -73.985001, 6, false, []link{
		{lines("A", "C"), lines("G"), 60},
	}},
	{"Lexington Av/59 St", 40.76266, -73.967258, 6, false, []link{
		{lines("4", "5", "6"), lines("N", "R", "W"), 180},
	}},
	{"Court Sq", 40.747023, -73.945264, 5, false, []link{
		{lines("7"), lines("E", "M", "G"), 300},
		{lines("E", "M"), lines("G"), 240},
	}},
	{"Broadway Junction", 40.678334, -73.905316, 5, false, []link{
		{lines("A", "C"), lines("J", "Z", "L"), 240},
		{lines("J", "Z"), lines("L"), 180},
	}},
	{"Bergen St", 40.686145, -73.990862, 3, false, []link{
		{lines("F"), lines("G"), 0},
	}},
}

// Default is the built-in NYC subway hub catalog.
func Default() *Catalog {
	hubs := make([]models.TransferHub, 0, len(nycHubs))
	for _, d := range nycHubs {
		h := models.TransferHub{
			Name:         d.name,
			Location:     models.Location{Lat: d.lat, Lon: d.lon},
			Priority:     d.priority,
			UserPriority: d.user,
			Transfers:    make(map[models.LinePair]int),
		}
		for _, l := range d.links {
			for _, a := range l.from {
				for _, b := range l.to {
					if a != b {
						h.Transfers[models.NewLinePair(a, b)] = l.seconds
					}
				}
			}
		}
		hubs = append(hubs, h)
	}
	return New(hubs)
}
