package restapi

import (
	"net/http"
	"strconv"

	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/utils"
)

const (
	defaultStationLimit = 20
	maxStationLimit     = 100
)

// stationsHandler searches by name, or lists the stations closest to lat/lon
// when a coordinate is given.
func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	fieldErrors := make(map[string][]string)

	limit := defaultStationLimit
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStationLimit {
			fieldErrors["limit"] = []string{"limit must be between 1 and 100"}
		}
		limit = n
	}

	lat, lon, byLocation := utils.ParseLocationParams(params, "lat", "lon", fieldErrors)

	query, err := utils.ValidateAndSanitizeQuery(params.Get("query"))
	if err != nil {
		fieldErrors["query"] = []string{err.Error()}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if byLocation {
		matches := api.Stations.Nearest(lat, lon, limit, api.Config.Planner.NearestRadiusMeters)
		if matches == nil {
			matches = []models.StationMatch{}
		}
		api.sendResponse(w, r, models.NewListResponse(matches, len(matches) == limit))
		return
	}

	found := api.Stations.Search(query, limit+1)
	limitExceeded := len(found) > limit
	if limitExceeded {
		found = found[:limit]
	}
	if found == nil {
		found = []models.Station{}
	}
	api.sendResponse(w, r, models.NewListResponse(found, limitExceeded))
}

func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.StationIDParam(r)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	station, err := api.Stations.ByID(id)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(station))
}
