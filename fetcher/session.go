package fetcher

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

// Session is the minimum capability the fetchers consume: a single GET that
// returns a fully-read Response. A Session is reusable across many calls and
// safe to share among concurrent fetches; the crawler creates one per Get()
// call and hands it to every response hook so hooks can issue follow-up
// requests on the same connection pool.
type Session interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// httpSession is the default Session, backed by net/http.Client. It applies
// an optional rate limiter to smooth bursts within a single fetch and
// transparently decodes gzip/brotli response bodies; neither changes the
// ordering guarantees the fetchers themselves are responsible for.
type httpSession struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

// SessionOption configures a Session built with NewSession.
type SessionOption func(*httpSession)

// WithTimeout bounds each individual GET.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *httpSession) { s.client.Timeout = d }
}

// WithRateLimit attaches a token-bucket limiter so bursts of concurrent
// fetches (ParallelFetcher) don't all hit the wire at once. burst is the
// bucket size; requestsPerSecond <= 0 disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) SessionOption {
	return func(s *httpSession) {
		if requestsPerSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithHeader sets a header sent on every request issued by the session, e.g.
// User-Agent.
func WithHeader(key, value string) SessionOption {
	return func(s *httpSession) { s.headers[key] = value }
}

// WithHTTPClient overrides the underlying *http.Client entirely.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(s *httpSession) { s.client = client }
}

// NewSession builds the default Session. Defaults to a 30s per-request
// timeout and no rate limiting.
func NewSession(opts ...SessionOption) Session {
	s := &httpSession{
		client:  &http.Client{Timeout: 30 * time.Second},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *httpSession) Get(ctx context.Context, url string) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait for %s: %w", url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s failed: %w", url, err)
	}
	defer res.Body.Close()

	body, err := decodeBody(res.Header.Get("Content-Encoding"), res.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding response body from %s: %w", url, err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response body from %s: %w", url, err)
	}

	text := string(raw)
	headers := make(map[string]string, len(res.Header))
	for key := range res.Header {
		headers[key] = res.Header.Get(key)
	}

	resp := &Response{
		URL:     url,
		Status:  res.StatusCode,
		Text:    &text,
		Headers: headers,
		Ok:      res.StatusCode >= 200 && res.StatusCode < 300,
	}

	if strings.Contains(strings.ToLower(res.Header.Get("Content-Type")), "json") {
		var decoded any
		// Decode error is non-fatal: Text stays populated, JSON stays nil.
		if jsonErr := json.Unmarshal(raw, &decoded); jsonErr == nil {
			resp.JSON = decoded
		}
	}

	return resp, nil
}

func decodeBody(contentEncoding string, body io.Reader) (io.Reader, error) {
	switch strings.ToLower(contentEncoding) {
	case "br":
		return brotli.NewReader(body), nil
	case "gzip":
		return gzip.NewReader(body)
	default:
		return body, nil
	}
}
