package stations

import "subwayroute.dev/engine/internal/models"

func station(id, name string, lat, lon float64, lines []string, stopIDs map[string]string) models.Station {
	return models.Station{
		ID:       id,
		Name:     name,
		Lines:    lines,
		Location: models.Location{Lat: lat, Lon: lon},
		StopIDs:  stopIDs,
	}
}

// nycStations covers the transfer hubs plus a handful of terminals. Complexes
// list the per-line platform id under StopIDs.
var nycStations = []models.Station{
	station("A41", "Jay St-MetroTech", 40.692338, -73.987342, []string{"A", "C", "F", "R"}, map[string]string{"R": "R29"}),
	station("F20", "Bergen St", 40.686145, -73.990862, []string{"F", "G"}, nil),
	station("F21", "Carroll St", 40.680303, -73.995048, []string{"F", "G"}, nil),
	station("F24", "7 Av", 40.666271, -73.980305, []string{"F", "G"}, nil),
	station("F27", "Church Av", 40.644041, -73.979678, []string{"F", "G"}, nil),
	station("A42", "Hoyt-Schermerhorn Sts", 40.688484, -73.985001, []string{"A", "C", "G"}, nil),
	station("A32", "W 4 St-Washington Sq", 40.732338, -74.000495, []string{"A", "C", "E", "B", "D", "F", "M"},
		map[string]string{"B": "D20", "D": "D20", "F": "D20", "M": "D20"}),
	station("D17", "34 St-Herald Sq", 40.749567, -73.98795, []string{"B", "D", "F", "M", "N", "Q", "R", "W"},
		map[string]string{"N": "R17", "Q": "R17", "R": "R17", "W": "R17"}),
	station("127", "Times Sq-42 St", 40.75529, -73.987495, []string{"1", "2", "3", "7", "N", "Q", "R", "W", "GS"},
		map[string]string{"7": "725", "N": "R16", "Q": "R16", "R": "R16", "W": "R16", "GS": "902"}),
	station("A27", "42 St-Port Authority Bus Terminal", 40.757308, -73.989735, []string{"A", "C", "E"}, nil),
	station("635", "14 St-Union Sq", 40.735736, -73.990568, []string{"4", "5", "6", "L", "N", "Q", "R", "W"},
		map[string]string{"L": "L03", "N": "R20", "Q": "R20", "R": "R20", "W": "R20"}),
	station("235", "Atlantic Av-Barclays Ctr", 40.684359, -73.977666, []string{"2", "3", "4", "5", "B", "Q", "D", "N", "R"},
		map[string]string{"4": "423", "5": "423", "B": "D24", "Q": "D24", "D": "R31", "N": "R31", "R": "R31"}),
	station("A38", "Fulton St", 40.710374, -74.007582, []string{"A", "C", "2", "3", "4", "5", "J", "Z"},
		map[string]string{"2": "229", "3": "229", "4": "418", "5": "418", "J": "M22", "Z": "M22"}),
	station("629", "Lexington Av/59 St", 40.76266, -73.967258, []string{"4", "5", "6", "N", "R", "W"},
		map[string]string{"N": "R11", "R": "R11", "W": "R11"}),
	station("G22", "Court Sq", 40.747023, -73.945264, []string{"G", "7", "E", "M"},
		map[string]string{"7": "719", "E": "F09", "M": "F09"}),
	station("A51", "Broadway Junction", 40.678334, -73.905316, []string{"A", "C", "J", "Z", "L"},
		map[string]string{"J": "J27", "Z": "J27", "L": "L22"}),
	station("A24", "59 St-Columbus Circle", 40.768247, -73.981929, []string{"A", "B", "C", "D", "1"}, map[string]string{"1": "125"}),
	station("A09", "168 St-Washington Hts", 40.840719, -73.939561, []string{"A", "C", "1"}, map[string]string{"1": "112"}),
	station("G05", "Jamaica Center-Parsons/Archer", 40.702147, -73.801109, []string{"E", "J", "Z"}, map[string]string{"J": "G06", "Z": "G06"}),
	station("D43", "Coney Island-Stillwell Av", 40.577422, -73.981233, []string{"D", "F", "N", "Q"}, nil),
}

// Default is the built-in NYC registry used when no station file is configured.
func Default() *Registry {
	r, err := NewRegistry(nycStations)
	if err != nil {
		panic(err)
	}
	return r
}
