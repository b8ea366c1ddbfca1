package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"subwayroute.dev/engine/internal/app"
	"subwayroute.dev/engine/internal/appconf"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Server.RateLimit, app.Config.Server.Burst, time.Second),
	}
}

// Handler returns the routed API wrapped in the middleware chain. Extra
// routes, such as the debug pages, can be registered through mount.
func (api *RestAPI) Handler(mount ...func(*httprouter.Router)) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	if api.Config.Env != appconf.Production {
		registerPprofHandlers(router)
		for _, m := range mount {
			m(router)
		}
	}

	var handler http.Handler = router
	handler = api.rateLimiter.Handler(handler)
	handler = CompressionMiddleware(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return api.WithSecurityHeaders(handler)
}

// Shutdown stops the rate limiter's cleanup loop.
func (api *RestAPI) Shutdown() {
	api.rateLimiter.Stop()
}
