package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// StationIDParam reads the :id route parameter and validates it as a station id.
func StationIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}
