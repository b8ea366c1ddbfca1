package gtfs

import (
	"errors"
	"fmt"
)

// Failure classes of a feed fetch. Match them with errors.Is.
var (
	ErrFeedUnavailable = errors.New("feed unavailable")
	ErrFeedFormat      = errors.New("feed format error")
	ErrEmptyFeed       = errors.New("empty feed")
)

// FeedError is the typed failure returned by FeedClient.
type FeedError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *FeedError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FeedError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(url string, status int, err error) *FeedError {
	return &FeedError{Kind: ErrFeedUnavailable, URL: url, StatusCode: status, Err: err}
}

func formatError(url string, err error) *FeedError {
	return &FeedError{Kind: ErrFeedFormat, URL: url, Err: err}
}
