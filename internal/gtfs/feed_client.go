package gtfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"subwayroute.dev/engine/internal/clock"
	"subwayroute.dev/engine/internal/logging"
	"subwayroute.dev/engine/internal/models"
)

const defaultMaxBodyBytes = 32 << 20

// ClientConfig controls how feeds are downloaded.
type ClientConfig struct {
	Timeout      time.Duration
	RetryDelay   time.Duration
	Headers      map[string]string
	UserAgent    string
	MaxBodyBytes int64
}

// FeedClient downloads and decodes realtime feeds.
type FeedClient struct {
	http   *http.Client
	config ClientConfig
	clock  clock.Clock
	logger *slog.Logger
}

func NewFeedClient(config ClientConfig, httpClient *http.Client, clk clock.Clock, logger *slog.Logger) *FeedClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if clk == nil {
		clk = clock.System{}
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &FeedClient{
		http:   httpClient,
		config: config,
		clock:  clk,
		logger: logging.OrDiscard(logger).With(slog.String("component", "feed_client")),
	}
}

// Fetch downloads one feed group. Unavailable and malformed responses are
// retried once after the configured delay; the result is either a fully
// decoded feed or a *FeedError.
func (c *FeedClient) Fetch(ctx context.Context, group models.FeedGroup) (*models.Feed, error) {
	var feed *models.Feed
	attempt := 0

	op := func() error {
		attempt++
		f, err := c.fetchOnce(ctx, group)
		if err == nil {
			feed = f
			return nil
		}
		if errors.Is(err, ErrEmptyFeed) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if attempt == 1 {
			c.logger.Info("retrying feed fetch",
				slog.String("group", group.Name),
				slog.String("error", err.Error()))
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.config.RetryDelay), 1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		var feedErr *FeedError
		if !errors.As(err, &feedErr) {
			err = unavailable(group.URL, 0, err)
		}
		return nil, err
	}
	return feed, nil
}

func (c *FeedClient) fetchOnce(ctx context.Context, group models.FeedGroup) (*models.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, group.URL, nil)
	if err != nil {
		return nil, unavailable(group.URL, 0, err)
	}
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(group.URL, 0, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "feed_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(group.URL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, unavailable(group.URL, resp.StatusCode, err)
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, formatError(group.URL, fmt.Errorf("body exceeds %d bytes", c.config.MaxBodyBytes))
	}
	if len(body) == 0 {
		return nil, &FeedError{Kind: ErrEmptyFeed, URL: group.URL}
	}
	if reason, ok := markupReason(resp.Header.Get("Content-Type"), body); ok {
		return nil, formatError(group.URL, errors.New(reason))
	}

	feed, err := decodeFeed(body)
	if err != nil {
		return nil, formatError(group.URL, err)
	}
	feed.Group = group.Name
	feed.URL = group.URL
	feed.FetchedAt = c.clock.Now()

	inconsistent := 0
	for _, trip := range feed.TripUpdates() {
		if !trip.Consistent() {
			inconsistent++
		}
	}
	if inconsistent > 0 {
		c.logger.Debug("trips with out of order stop times",
			slog.String("group", group.Name),
			slog.Int("trips", inconsistent))
	}
	return feed, nil
}

var markupContentTypes = []string{"text/html", "text/xml", "application/xml", "application/json"}

var markupPrefixes = []string{"<html", "<?xml", "<!doctype", "<error"}

// markupReason reports whether a body is a textual error page rather than a
// binary feed, judged by declared content type and leading bytes.
func markupReason(contentType string, body []byte) (string, bool) {
	ct := strings.ToLower(contentType)
	for _, t := range markupContentTypes {
		if strings.HasPrefix(ct, t) {
			return "unexpected content type " + contentType, true
		}
	}

	head := bytes.TrimLeft(body[:min(len(body), 64)], " \t\r\n\ufeff")
	head = bytes.ToLower(head)
	for _, p := range markupPrefixes {
		if bytes.HasPrefix(head, []byte(p)) {
			return "body starts with " + p, true
		}
	}
	return "", false
}
