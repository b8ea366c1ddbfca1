package stations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/jamespfennell/gtfs"

	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

func rawGtfsData(ctx context.Context, source string, client *http.Client, logger *slog.Logger) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error building GTFS request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logger, "close_gtfs_static_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading GTFS data: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return b, nil
}

// ImportGTFS builds a registry from a GTFS static zip, read from a local path
// or downloaded from a URL. Parent stations become registry entries; their
// lines come from the scheduled trips stopping at any child platform.
func ImportGTFS(ctx context.Context, source string, client *http.Client, logger *slog.Logger) (*Registry, error) {
	logger = logging.OrDiscard(logger)
	if client == nil {
		client = http.DefaultClient
	}

	b, err := rawGtfsData(ctx, source, client, logger)
	if err != nil {
		return nil, err
	}
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	stations := FromStatic(static)
	logging.LogOperation(logger, "gtfs_static_imported",
		slog.String("source", source),
		slog.Int("stops", len(static.Stops)),
		slog.Int("stations", len(stations)))
	return NewRegistry(stations)
}

// FromStatic converts parsed GTFS static data into stations. Stops that no
// trip serves are left out.
func FromStatic(static *gtfs.Static) []models.Station {
	lines := make(map[string][]string)
	for _, trip := range static.Trips {
		if trip.Route == nil {
			continue
		}
		line := trip.Route.ShortName
		if line == "" {
			line = trip.Route.Id
		}
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			root := st.Stop.Root().Id
			if !slices.Contains(lines[root], line) {
				lines[root] = append(lines[root], line)
			}
		}
	}

	var out []models.Station
	for i := range static.Stops {
		stop := &static.Stops[i]
		if stop.Parent != nil {
			continue
		}
		served := lines[stop.Id]
		if len(served) == 0 {
			continue
		}
		slices.Sort(served)

		s := models.Station{ID: stop.Id, Name: stop.Name, Lines: served}
		if stop.Latitude != nil && stop.Longitude != nil {
			s.Location = models.Location{Lat: *stop.Latitude, Lon: *stop.Longitude}
		}
		out = append(out, s)
	}
	return out
}
