package webui

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/jinzhu/copier"

	"subwayroute.dev/engine/internal/appconf"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"stations", "hubs", "feeds", "groups", "config"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       dumper.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	switch r.URL.Query().Get("dataType") {
	case "stations":
		data = webUI.Stations.All()
		title = "Stations"
	case "hubs":
		data = webUI.Hubs.Hubs()
		title = "Transfer Hubs"
	case "feeds":
		data = webUI.Feeds.Statuses()
		title = "Realtime Feeds - Last Status"
	case "groups":
		data = webUI.Config.Feeds.Groups
		title = "Realtime Feeds - Groups"
	case "config":
		cfg, err := redactedConfig(webUI.Config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data = cfg
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: " + strings.Join(dataTypes, ", ") + ".",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}

// redactedConfig deep copies the configuration with credentials masked.
func redactedConfig(cfg *appconf.Config) (*appconf.Config, error) {
	out := &appconf.Config{}
	if err := copier.CopyWithOption(out, cfg, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	out.Server.APIKeys = make([]string, len(cfg.Server.APIKeys))
	for i := range out.Server.APIKeys {
		out.Server.APIKeys[i] = "***"
	}
	if out.Feeds.APIKey != "" {
		out.Feeds.APIKey = "***"
	}
	return out, nil
}
