// Package app wires the engine components into one Application shared by the
// HTTP handlers, the debug pages and the CLI commands.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/departures"
	"subwayroute.dev/engine/internal/estimate"
	"subwayroute.dev/engine/internal/gtfs"
	"subwayroute.dev/engine/internal/hubs"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/planner"
	"subwayroute.dev/engine/internal/stations"
	"subwayroute.dev/engine/internal/stopmatch"
)

const userAgent = "subwayroute-engine/1"

// Application holds the dependencies for our HTTP handlers, helpers,
// middleware and commands.
type Application struct {
	Config   *appconf.Config
	Logger   *slog.Logger
	Clock    *clock.Offset
	Stations *stations.Registry
	Hubs     *hubs.Catalog
	Feeds    *gtfs.Manager
	Planner  *planner.Synthesizer
}

// Options override collaborators that are normally built from the config.
type Options struct {
	HTTPClient *http.Client
	// BaseClock is corrected by the application's offset clock.
	BaseClock clock.Clock
	// JitterSeed seeds the estimation jitter. Zero seeds from the wall clock.
	JitterSeed uint64
	Stations   *stations.Registry
	Hubs       *hubs.Catalog
	Fetcher    gtfs.Fetcher
}

// New builds every component from the configuration. Station and hub data
// come from the configured files, or the built-in NYC tables when none is set.
func New(ctx context.Context, cfg *appconf.Config, logger *slog.Logger, opts Options) (*Application, error) {
	logger = logging.OrDiscard(logger)
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	clk := clock.NewOffset(opts.BaseClock)
	clk.SetOffset(cfg.Planner.ClockOffset)

	registry := opts.Stations
	if registry == nil {
		var err error
		registry, err = loadStations(ctx, cfg.Data, opts.HTTPClient, logger)
		if err != nil {
			return nil, err
		}
	}
	catalog := opts.Hubs
	if catalog == nil {
		var err error
		catalog, err = loadHubs(cfg.Data)
		if err != nil {
			return nil, err
		}
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = gtfs.NewFeedClient(feedClientConfig(cfg.Feeds), opts.HTTPClient, clk, logger)
	}
	manager := gtfs.NewManager(fetcher, cfg.Feeds.Groups, gtfs.ManagerOptions{
		MaxAge:          cfg.Feeds.MaxAge,
		RefreshInterval: cfg.Feeds.RefreshInterval,
		RefreshTimeout:  2 * cfg.Feeds.FetchTimeout,
		Clock:           clk,
		Logger:          logger,
	})

	projector := departures.NewProjector(stopmatch.NewResolver(logger), clk, departures.Options{
		ProcessingDelay: cfg.Planner.ProcessingDelay,
		StalenessBuffer: cfg.Planner.StalenessBuffer,
		MaxPerLine:      cfg.Planner.MaxDeparturesPerLine,
	}, logger)

	seed := opts.JitterSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	fallback := estimate.NewModel(cfg, estimate.NewSeededJitter(seed), clk, estimate.Options{
		FinalWalkMinutes: cfg.Planner.FinalWalkMinutes,
		MaxRoutes:        cfg.Planner.MaxRoutes,
	}, logger)

	synth := planner.NewSynthesizer(planner.Deps{
		Lines:     cfg,
		Stations:  registry,
		Hubs:      catalog,
		Feeds:     manager,
		Projector: projector,
		Fallback:  fallback,
		Clock:     clk,
	}, planner.Options{
		MaxRoutes:           cfg.Planner.MaxRoutes,
		MaxHubsPerPair:      cfg.Planner.MaxHubsPerPair,
		SubwaySpeedKmh:      cfg.Planner.SubwaySpeedKmh,
		NearestStations:     cfg.Planner.NearestStations,
		NearestRadiusMeters: cfg.Planner.NearestRadiusMeters,
		RequestDeadline:     cfg.Planner.RequestDeadline,
	}, logger)

	logging.LogOperation(logger, "application_initialized",
		slog.String("env", cfg.Env.String()),
		slog.Int("stations", registry.Len()),
		slog.Int("hubs", len(catalog.Hubs())),
		slog.Int("feed_groups", len(cfg.Feeds.Groups)))

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Clock:    clk,
		Stations: registry,
		Hubs:     catalog,
		Feeds:    manager,
		Planner:  synth,
	}, nil
}

// Shutdown stops background feed refreshes.
func (app *Application) Shutdown() {
	if app.Feeds != nil {
		app.Feeds.Shutdown()
	}
}

func feedClientConfig(feeds appconf.FeedsConfig) gtfs.ClientConfig {
	cc := gtfs.ClientConfig{
		Timeout:    feeds.FetchTimeout,
		RetryDelay: feeds.RetryDelay,
		UserAgent:  userAgent,
	}
	if feeds.APIKey != "" {
		cc.Headers = map[string]string{feeds.APIKeyHeader: feeds.APIKey}
	}
	return cc
}

// loadStations prefers a GTFS static archive over a station file.
func loadStations(ctx context.Context, data appconf.DataConfig, client *http.Client, logger *slog.Logger) (*stations.Registry, error) {
	switch {
	case data.GTFSStaticFile != "":
		reg, err := stations.ImportGTFS(ctx, data.GTFSStaticFile, client, logger)
		if err != nil {
			return nil, fmt.Errorf("import stations: %w", err)
		}
		return reg, nil
	case data.StationsFile != "":
		return stations.LoadFile(data.StationsFile)
	}
	return stations.Default(), nil
}

func loadHubs(data appconf.DataConfig) (*hubs.Catalog, error) {
	if data.HubsFile != "" {
		return hubs.LoadFile(data.HubsFile)
	}
	return hubs.Default(), nil
}
