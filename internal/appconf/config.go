// Package appconf loads the engine configuration: HTTP server settings, the
// realtime feed groups, planner constants and per-line service settings.
package appconf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"subwayroute.dev/engine/internal/models"
)

type Config struct {
	EnvName string                  `yaml:"env"`
	Env     Environment             `yaml:"-"`
	Server  ServerConfig            `yaml:"server"`
	Feeds   FeedsConfig             `yaml:"feeds"`
	Planner PlannerConfig           `yaml:"planner"`
	Lines   map[string]LineSettings `yaml:"lines" validate:"dive"`
	Data    DataConfig              `yaml:"data"`
}

type ServerConfig struct {
	Port      int      `yaml:"port" validate:"min=1,max=65535"`
	RateLimit int      `yaml:"rateLimit" validate:"min=1"`
	Burst     int      `yaml:"burst" validate:"gte=0"`
	// APIKeys restricts the HTTP API to the listed keys. Empty leaves it open.
	APIKeys   []string `yaml:"apiKeys"`
}

type FeedsConfig struct {
	Groups          []models.FeedGroup `yaml:"groups" validate:"required,min=1,dive"`
	APIKeyHeader    string             `yaml:"apiKeyHeader"`
	APIKey          string             `yaml:"apiKey"`
	FetchTimeout    time.Duration      `yaml:"fetchTimeout" validate:"gt=0"`
	RetryDelay      time.Duration      `yaml:"retryDelay" validate:"gte=0"`
	RefreshInterval time.Duration      `yaml:"refreshInterval" validate:"gte=0"`
	MaxAge          time.Duration      `yaml:"maxAge" validate:"gte=0"`
}

type PlannerConfig struct {
	ProcessingDelay      time.Duration `yaml:"processingDelay" validate:"gte=0"`
	StalenessBuffer      time.Duration `yaml:"stalenessBuffer" validate:"gte=0"`
	MaxDeparturesPerLine int           `yaml:"maxDeparturesPerLine" validate:"min=1"`
	MaxRoutes            int           `yaml:"maxRoutes" validate:"min=1,max=5"`
	MaxHubsPerPair       int           `yaml:"maxHubsPerPair" validate:"min=1"`
	RequestDeadline      time.Duration `yaml:"requestDeadline" validate:"gt=0"`
	// WalkingSpeed is in meters per minute.
	WalkingSpeed             float64 `yaml:"walkingSpeed" validate:"gt=0"`
	SubwaySpeedKmh           float64 `yaml:"subwaySpeedKmh" validate:"gt=0"`
	MinJitterMinutes         int     `yaml:"minJitterMinutes" validate:"gte=0"`
	MaxJitterMinutes         int     `yaml:"maxJitterMinutes" validate:"gtefield=MinJitterMinutes"`
	DefaultFrequencyMinutes  int     `yaml:"defaultFrequencyMinutes" validate:"min=1"`
	DefaultTransitMultiplier float64 `yaml:"defaultTransitMultiplier" validate:"gt=0"`
	DefaultTransitMinutes    int     `yaml:"defaultTransitMinutes" validate:"min=1"`
	FinalWalkMinutes         int     `yaml:"finalWalkMinutes" validate:"gte=0"`
	NearestStations          int     `yaml:"nearestStations" validate:"min=1"`
	NearestRadiusMeters      float64 `yaml:"nearestRadiusMeters" validate:"gt=0"`
	// ClockOffset is added to the local clock, as measured against the feed
	// publisher's time.
	ClockOffset time.Duration `yaml:"clockOffset"`
}

// LineSettings are per-line service constants. Zero fields fall back to the
// planner defaults.
type LineSettings struct {
	FrequencyMinutes  int     `yaml:"frequencyMinutes" validate:"gte=0"`
	TransitMultiplier float64 `yaml:"transitMultiplier" validate:"gte=0"`
	TransitMinutes    int     `yaml:"transitMinutes" validate:"gte=0"`
}

type DataConfig struct {
	StationsFile   string `yaml:"stationsFile"`
	GTFSStaticFile string `yaml:"gtfsStaticFile"`
	HubsFile       string `yaml:"hubsFile"`
}

const feedBaseURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs"

// DefaultFeedGroups are the NYC subway realtime endpoints.
func DefaultFeedGroups() []models.FeedGroup {
	return []models.FeedGroup{
		{Name: "1234567S", URL: feedBaseURL, Lines: []string{"1", "2", "3", "4", "5", "6", "6X", "7", "7X", "GS"}},
		{Name: "ACE", URL: feedBaseURL + "-ace", Lines: []string{"A", "C", "E", "H", "FS"}},
		{Name: "BDFM", URL: feedBaseURL + "-bdfm", Lines: []string{"B", "D", "F", "FX", "M"}},
		{Name: "G", URL: feedBaseURL + "-g", Lines: []string{"G"}},
		{Name: "JZ", URL: feedBaseURL + "-jz", Lines: []string{"J", "Z"}},
		{Name: "L", URL: feedBaseURL + "-l", Lines: []string{"L"}},
		{Name: "NQRW", URL: feedBaseURL + "-nqrw", Lines: []string{"N", "Q", "R", "W"}},
		{Name: "SI", URL: feedBaseURL + "-si", Lines: []string{"SI"}},
	}
}

// Default returns a configuration usable without a file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file, fills unset values with defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Env = EnvFlagToEnvironment(c.EnvName)
	c.EnvName = c.Env.String()

	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = c.Server.RateLimit
	}

	if len(c.Feeds.Groups) == 0 {
		c.Feeds.Groups = DefaultFeedGroups()
	}
	if c.Feeds.APIKeyHeader == "" && c.Feeds.APIKey != "" {
		c.Feeds.APIKeyHeader = "x-api-key"
	}
	setDuration(&c.Feeds.FetchTimeout, 10*time.Second)
	setDuration(&c.Feeds.RetryDelay, time.Second)
	setDuration(&c.Feeds.RefreshInterval, 30*time.Second)
	setDuration(&c.Feeds.MaxAge, 30*time.Second)

	p := &c.Planner
	setDuration(&p.ProcessingDelay, 30*time.Second)
	setDuration(&p.StalenessBuffer, 15*time.Second)
	setDuration(&p.RequestDeadline, 20*time.Second)
	setInt(&p.MaxDeparturesPerLine, 5)
	setInt(&p.MaxRoutes, 5)
	setInt(&p.MaxHubsPerPair, 3)
	setInt(&p.MaxJitterMinutes, 2)
	setInt(&p.DefaultFrequencyMinutes, 8)
	setInt(&p.DefaultTransitMinutes, 20)
	setInt(&p.FinalWalkMinutes, 5)
	setInt(&p.NearestStations, 3)
	setFloat(&p.WalkingSpeed, 80)
	setFloat(&p.SubwaySpeedKmh, 28)
	setFloat(&p.DefaultTransitMultiplier, 1.0)
	setFloat(&p.NearestRadiusMeters, 1500)
}

// Line returns the settings for a line, filling missing values from the
// planner defaults. Unknown lines get the defaults.
func (c *Config) Line(id string) LineSettings {
	s, ok := c.Lines[id]
	if !ok {
		s = c.Lines[strings.ToUpper(id)]
	}
	setInt(&s.FrequencyMinutes, c.Planner.DefaultFrequencyMinutes)
	setFloat(&s.TransitMultiplier, c.Planner.DefaultTransitMultiplier)
	setInt(&s.TransitMinutes, c.Planner.DefaultTransitMinutes)
	return s
}

// WalkingSpeedMetersPerMinute is the global walking speed constant.
func (c *Config) WalkingSpeedMetersPerMinute() float64 {
	return c.Planner.WalkingSpeed
}

// JitterBounds returns the inclusive wait-time jitter range in minutes.
func (c *Config) JitterBounds() (lo, hi int) {
	return c.Planner.MinJitterMinutes, c.Planner.MaxJitterMinutes
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
