package restapi

import (
	"net/http"

	"subwayroute.dev/engine/internal/models"
)

// currentTimeHandler reports the engine's trusted time and the offset applied
// to the host clock.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	timeData := models.NewCurrentTime(api.Clock.Now(), api.Clock.Offset())
	api.sendResponse(w, r, models.NewEntryResponse(timeData))
}
