package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"subwayroute.dev/engine/internal/app"
	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// stubFetcher serves prepared feeds by group name; other groups are unavailable.
type stubFetcher map[string]*models.Feed

func (s stubFetcher) Fetch(_ context.Context, g models.FeedGroup) (*models.Feed, error) {
	if f, ok := s[g.Name]; ok {
		return f, nil
	}
	return nil, &gtfs.FeedError{Kind: gtfs.ErrFeedUnavailable, URL: g.URL, StatusCode: http.StatusBadGateway}
}

// bdfmFeed has one northbound F train leaving Bergen St ten minutes from now.
func bdfmFeed() *models.Feed {
	trip := models.TripUpdate{
		TripID:  "F-north-1",
		RouteID: "F",
		StopTimeUpdates: []models.StopTimeUpdate{
			{StopID: "F20N", Sequence: 1, Departure: proto.Int64(now.Add(10 * time.Minute).Unix())},
			{StopID: "A41N", Sequence: 2, Arrival: proto.Int64(now.Add(13 * time.Minute).Unix())},
		},
	}
	return &models.Feed{
		Group:     "BDFM",
		FetchedAt: now,
		Timestamp: now,
		Entities:  []models.FeedEntity{{ID: trip.TripID, TripUpdate: &trip}},
	}
}

// createTestApi builds a RestAPI over the built-in NYC data, a fixed clock and
// the given feeds.
func createTestApi(t *testing.T, feeds stubFetcher, apiKeys ...string) *RestAPI {
	cfg := appconf.Default()
	cfg.Env = appconf.Test
	cfg.Server.APIKeys = apiKeys

	application, err := app.New(context.Background(), cfg, nil, app.Options{
		BaseClock:  clock.Fixed(now),
		JitterSeed: 1,
		Fetcher:    feeds,
	})
	require.NoError(t, err)

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

// decodeData re-decodes the generic response payload into dst.
func decodeData(t *testing.T, model models.ResponseModel, dst interface{}) {
	raw, err := json.Marshal(model.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}
