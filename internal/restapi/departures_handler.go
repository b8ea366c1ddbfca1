package restapi

import (
	"net/http"

	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/utils"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := make(map[string][]string)
	id, err := utils.StationIDParam(r)
	if err != nil {
		fieldErrors["id"] = []string{err.Error()}
	}

	dir, err := models.ParseDirection(r.URL.Query().Get("direction"))
	switch {
	case err != nil:
		fieldErrors["direction"] = []string{err.Error()}
	case dir == models.AnyDirection:
		fieldErrors["direction"] = []string{`Missing field "direction".`}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if _, err := api.Stations.ByID(id); err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	board, err := api.Planner.Departures(r.Context(), id, dir)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(board))
}
