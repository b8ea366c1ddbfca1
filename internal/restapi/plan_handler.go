package restapi

import (
	"fmt"
	"net/http"
	"net/url"

	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/planner"
	"subwayroute.dev/engine/internal/utils"
)

func (api *RestAPI) planHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	fieldErrors := make(map[string][]string)

	from := endpointParam(params, "from", "fromLat", "fromLon", fieldErrors)
	to := endpointParam(params, "to", "toLat", "toLon", fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	result, err := api.Planner.Plan(r.Context(), planner.Request{From: from, To: to})
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(result))
}

// endpointParam reads one end of a trip. Coordinates win over a name.
func endpointParam(params url.Values, name, latKey, lonKey string, fieldErrors map[string][]string) planner.Endpoint {
	if lat, lon, ok := utils.ParseLocationParams(params, latKey, lonKey, fieldErrors); ok {
		return planner.Endpoint{Location: &models.Location{Lat: lat, Lon: lon}}
	}

	query, err := utils.ValidateAndSanitizeQuery(params.Get(name))
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], err.Error())
		return planner.Endpoint{}
	}
	if query == "" {
		fieldErrors[name] = append(fieldErrors[name], fmt.Sprintf("Missing field %q.", name))
	}
	return planner.Endpoint{Query: query}
}
