package gtfs

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

// Fetcher downloads one feed group.
type Fetcher interface {
	Fetch(ctx context.Context, group models.FeedGroup) (*models.Feed, error)
}

type ManagerOptions struct {
	// MaxAge is how long a snapshot is served from memory. Zero disables caching.
	MaxAge time.Duration
	// RefreshInterval enables the background refresh loop started by Start.
	RefreshInterval time.Duration
	// RefreshTimeout bounds one background refresh pass and each shared
	// group fetch.
	RefreshTimeout time.Duration
	Clock          clock.Clock
	Logger         *slog.Logger
}

// Manager keeps the latest snapshot of every feed group and fetches groups
// concurrently on demand.
type Manager struct {
	fetcher Fetcher
	groups  []models.FeedGroup
	opts    ManagerOptions
	logger  *slog.Logger

	flight singleflight.Group

	mu        sync.RWMutex
	snapshots map[string]*models.Feed
	statuses  map[string]models.FeedStatus

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

func NewManager(fetcher Fetcher, groups []models.FeedGroup, opts ManagerOptions) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 15 * time.Second
	}
	return &Manager{
		fetcher:      fetcher,
		groups:       groups,
		opts:         opts,
		logger:       logging.OrDiscard(opts.Logger).With(slog.String("component", "feed_manager")),
		snapshots:    make(map[string]*models.Feed),
		statuses:     make(map[string]models.FeedStatus),
		shutdownChan: make(chan struct{}),
	}
}

// Groups returns every configured feed group.
func (m *Manager) Groups() []models.FeedGroup {
	return m.groups
}

// GroupsForLines returns the groups publishing any of the lines.
func (m *Manager) GroupsForLines(lines []string) []models.FeedGroup {
	var groups []models.FeedGroup
	for _, g := range m.groups {
		for _, l := range lines {
			if routeIn(l, g.Lines) {
				groups = append(groups, g)
				break
			}
		}
	}
	return groups
}

// Load returns a feed set for the groups, serving fresh cached snapshots and
// fetching the rest concurrently. Failed groups are reported in the statuses
// and left out of the set.
func (m *Manager) Load(ctx context.Context, groups []models.FeedGroup) *FeedSet {
	return m.load(ctx, groups, false)
}

// Refresh fetches every group regardless of cache age.
func (m *Manager) Refresh(ctx context.Context) *FeedSet {
	return m.load(ctx, m.groups, true)
}

type groupResult struct {
	group  models.FeedGroup
	feed   *models.Feed
	status models.FeedStatus
	fresh  bool
}

func (m *Manager) load(ctx context.Context, groups []models.FeedGroup, force bool) *FeedSet {
	set := &FeedSet{}
	if len(groups) == 0 {
		return set
	}

	p := pool.NewWithResults[groupResult]().WithMaxGoroutines(len(groups))
	for _, g := range groups {
		p.Go(func() groupResult {
			return m.loadGroup(ctx, g, force)
		})
	}
	results := p.Wait()

	m.mu.Lock()
	for _, r := range results {
		m.statuses[r.group.Name] = r.status
		if r.fresh && r.feed != nil {
			m.snapshots[r.group.Name] = r.feed
		}
	}
	m.mu.Unlock()

	for _, r := range results {
		set.add(r.group, r.feed, r.status)
	}
	return set
}

func (m *Manager) loadGroup(ctx context.Context, g models.FeedGroup, force bool) groupResult {
	if !force {
		if feed, ok := m.cached(g.Name); ok {
			return groupResult{
				group:  g,
				feed:   feed,
				status: models.FeedStatus{Group: g.Name, URL: g.URL, Working: true, FetchedAt: feed.FetchedAt},
			}
		}
	}

	start := time.Now()
	v, err := m.fetchShared(ctx, g)
	duration := time.Since(start)
	logging.LogFeedStatus(m.logger, g.Name, g.URL, err, duration)

	status := models.FeedStatus{Group: g.Name, URL: g.URL, Duration: duration}
	if err != nil {
		status.Error = err.Error()
		return groupResult{group: g, status: status}
	}

	feed := v.(*models.Feed)
	status.Working = true
	status.FetchedAt = feed.FetchedAt
	return groupResult{group: g, feed: feed, status: status, fresh: true}
}

// fetchShared coalesces concurrent fetches of a group. The shared fetch is
// detached from any one caller's cancellation; each caller still stops
// waiting when its own context ends.
func (m *Manager) fetchShared(ctx context.Context, g models.FeedGroup) (interface{}, error) {
	ch := m.flight.DoChan(g.Name, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.RefreshTimeout)
		defer cancel()
		return m.fetcher.Fetch(fetchCtx, g)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) cached(name string) (*models.Feed, bool) {
	if m.opts.MaxAge <= 0 {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	feed, ok := m.snapshots[name]
	if !ok || m.opts.Clock.Now().Sub(feed.FetchedAt) >= m.opts.MaxAge {
		return nil, false
	}
	return feed, true
}

// Statuses returns the last known status of every group that has been loaded.
func (m *Manager) Statuses() []models.FeedStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	statuses := make([]models.FeedStatus, 0, len(m.statuses))
	for _, g := range m.groups {
		if s, ok := m.statuses[g.Name]; ok {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// Start launches the background refresh loop when a refresh interval is set.
func (m *Manager) Start() {
	if m.opts.RefreshInterval <= 0 {
		return
	}
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.refreshPeriodically()
	})
}

func (m *Manager) refreshPeriodically() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), m.opts.RefreshTimeout)
			ctx = logging.WithLogger(ctx, m.logger)
			set := m.Refresh(ctx)
			cancel()
			logging.LogOperation(m.logger, "feeds_refreshed",
				slog.Int("working", set.Working()),
				slog.Int("failed", len(set.Statuses)-set.Working()))
		case <-m.shutdownChan:
			logging.LogOperation(m.logger, "shutting_down_feed_refresh")
			return
		}
	}
}

// Shutdown stops the refresh loop and waits for it to exit.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()
	})
}

// FeedSet is the outcome of loading feed groups for one pass.
type FeedSet struct {
	entries  []feedEntry
	Statuses []models.FeedStatus
}

type feedEntry struct {
	group models.FeedGroup
	feed  *models.Feed
}

// NewFeedSet builds a set from already decoded feeds, all marked working.
func NewFeedSet(groups []models.FeedGroup, feeds ...*models.Feed) *FeedSet {
	set := &FeedSet{}
	for _, f := range feeds {
		for _, g := range groups {
			if g.Name == f.Group {
				set.add(g, f, models.FeedStatus{Group: g.Name, URL: g.URL, Working: true, FetchedAt: f.FetchedAt})
			}
		}
	}
	return set
}

func (s *FeedSet) add(g models.FeedGroup, feed *models.Feed, status models.FeedStatus) {
	s.Statuses = append(s.Statuses, status)
	if feed != nil {
		s.entries = append(s.entries, feedEntry{group: g, feed: feed})
	}
}

// ForLine returns the working feeds whose group publishes the line.
func (s *FeedSet) ForLine(line string) []*models.Feed {
	if s == nil {
		return nil
	}
	var feeds []*models.Feed
	for _, e := range s.entries {
		for _, l := range e.group.Lines {
			if strings.EqualFold(l, line) {
				feeds = append(feeds, e.feed)
				break
			}
		}
	}
	return feeds
}

// Feeds returns every working feed.
func (s *FeedSet) Feeds() []*models.Feed {
	if s == nil {
		return nil
	}
	feeds := make([]*models.Feed, 0, len(s.entries))
	for _, e := range s.entries {
		feeds = append(feeds, e.feed)
	}
	return feeds
}

// Working counts the groups that produced a feed.
func (s *FeedSet) Working() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// AllFailed reports whether groups were requested and none produced a feed.
func (s *FeedSet) AllFailed() bool {
	return s == nil || len(s.entries) == 0
}
