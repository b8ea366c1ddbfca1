package app

import (
	"net/http"
	"slices"
)

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidAPIKey(key)
}

// IsInvalidAPIKey reports whether key is rejected. With no keys configured
// the API is open.
func (app *Application) IsInvalidAPIKey(key string) bool {
	validKeys := app.Config.Server.APIKeys
	if len(validKeys) == 0 {
		return false
	}
	if key == "" {
		return true
	}
	return !slices.Contains(validKeys, key)
}
