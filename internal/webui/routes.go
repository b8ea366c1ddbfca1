// Package webui serves debug pages that dump the engine's loaded data.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"subwayroute.dev/engine/internal/app"
)

type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
