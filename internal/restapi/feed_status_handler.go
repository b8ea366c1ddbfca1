package restapi

import (
	"net/http"

	"subwayroute.dev/engine/internal/models"
)

// feedStatusHandler lists the last known status of each feed group. With
// refresh=true every group is fetched first.
func (api *RestAPI) feedStatusHandler(w http.ResponseWriter, r *http.Request) {
	var statuses []models.FeedStatus
	if r.URL.Query().Get("refresh") == "true" {
		statuses = api.Feeds.Refresh(r.Context()).Statuses
	} else {
		statuses = api.Feeds.Statuses()
	}
	if statuses == nil {
		statuses = []models.FeedStatus{}
	}

	api.sendResponse(w, r, models.NewListResponse(statuses, false))
}
