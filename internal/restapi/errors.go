package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/planner"
	"subwayroute.dev/engine/internal/stations"
)

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewResponse(http.StatusUnauthorized, nil, "permission denied"))
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("path", r.URL.Path))
	api.sendResponse(w, r, models.NewResponse(http.StatusInternalServerError, nil, "internal server error"))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	api.sendResponse(w, r, models.NewResponse(http.StatusBadRequest, map[string]interface{}{
		"fieldErrors": fieldErrors,
	}, "validation error"))
}

// plannerErrorResponse maps engine failures onto HTTP statuses.
func (api *RestAPI) plannerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, stations.ErrStationNotFound), errors.Is(err, planner.ErrNoStationNearby):
		api.sendResponse(w, r, models.NewResponse(http.StatusNotFound, nil, err.Error()))
	case errors.Is(err, planner.ErrNoDataAvailable):
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable, nil, err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		api.sendResponse(w, r, models.NewResponse(http.StatusGatewayTimeout, nil, "request deadline exceeded"))
	default:
		api.serverErrorResponse(w, r, err)
	}
}
