package fetcher

import (
	"context"
	"fmt"
	"time"
)

// fakeResponse is one scripted entry for fakeSession.
type fakeResponse struct {
	status int
	text   string
	delay  time.Duration
}

// fakeSession is an in-memory Session backend for tests; no real sockets
// involved. Requests not present in the script raise an error.
type fakeSession struct {
	responses map[string]fakeResponse
}

func newFakeSession(scripted map[string]fakeResponse) *fakeSession {
	return &fakeSession{responses: scripted}
}

func (s *fakeSession) Get(ctx context.Context, url string) (*Response, error) {
	entry, ok := s.responses[url]
	if !ok {
		return nil, fmt.Errorf("requested url %q is not present in scripted responses", url)
	}
	if entry.delay > 0 {
		select {
		case <-time.After(entry.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	text := entry.text
	return &Response{
		URL:    url,
		Status: entry.status,
		Text:   &text,
		Ok:     entry.status >= 200 && entry.status < 300,
	}, nil
}
