package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func registerPprofHandlers(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/pprof/*item", pprof.Index)
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/v1/current-time", validateAPIKey(api, api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/v1/plan", validateAPIKey(api, api.planHandler))
	router.Handler(http.MethodGet, "/api/v1/stations", validateAPIKey(api, api.stationsHandler))
	router.Handler(http.MethodGet, "/api/v1/stations/:id", validateAPIKey(api, api.stationHandler))
	router.Handler(http.MethodGet, "/api/v1/stations/:id/departures", validateAPIKey(api, api.departuresHandler))
	router.Handler(http.MethodGet, "/api/v1/feeds/status", validateAPIKey(api, api.feedStatusHandler))
	router.NotFound = http.HandlerFunc(api.sendNotFound)
}
