package arccrawler

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codepr/arccrawler/fetcher"
	"github.com/codepr/arccrawler/internal/htmlbody"
	"github.com/codepr/arccrawler/internal/namehash"
	"github.com/codepr/arccrawler/internal/urlset"
	"github.com/codepr/arccrawler/reader"
)

// ResponseProcessor turns a fetched Response into the value that gets
// written as a content record, or (nil, nil) to skip the write entirely
// (e.g. to silently drop 404s while still letting the batch continue).
type ResponseProcessor func(ctx context.Context, response *fetcher.Response, session fetcher.Session) (reader.Record, error)

// IndexRecordSetter derives extra index fields from a just-written record.
// On a live write, "url" and "line" are always set on top of whatever this
// returns. When a missing index is rebuilt from the content file, its fields
// are merged over the url recovered from the record; "line" is still set by
// the store.
type IndexRecordSetter func(record reader.Record) map[string]any

// WriteEvent is published on the configured messaging.Producer, one per
// successful store append. RunID correlates every event from a single Get
// call for downstream log correlation.
type WriteEvent struct {
	RunID string `json:"run_id"`
	URL   string `json:"url"`
	Line  int    `json:"line"`
}

// GetOption configures a single Get call.
type GetOption func(*getConfig)

type getConfig struct {
	outFileName       string
	requestDelay      time.Duration
	responseProcessor ResponseProcessor
	indexRecordSetter IndexRecordSetter
	requestProcessor  fetcher.RequestHook
	session           fetcher.Session
}

// WithOutFileName pins the store's base filename instead of deriving one
// from the URL set. Supplying the same name across calls is another way to
// resume a crawl, independent of whether the URL set matches exactly.
func WithOutFileName(name string) GetOption {
	return func(g *getConfig) { g.outFileName = name }
}

// WithRequestDelay sets the minimum spacing between consecutive
// request starts (see fetcher.SequentialFetcher / fetcher.ParallelFetcher).
func WithRequestDelay(d time.Duration) GetOption {
	return func(g *getConfig) { g.requestDelay = d }
}

// WithResponseProcessor overrides the identity response processor.
func WithResponseProcessor(p ResponseProcessor) GetOption {
	return func(g *getConfig) { g.responseProcessor = p }
}

// WithIndexRecordSetter contributes extra index fields per write, merged
// under the orchestrator-forced "url" and "line".
func WithIndexRecordSetter(s IndexRecordSetter) GetOption {
	return func(g *getConfig) { g.indexRecordSetter = s }
}

// WithRequestProcessor installs a hook invoked with each URL right before
// it's fetched.
func WithRequestProcessor(p fetcher.RequestHook) GetOption {
	return func(g *getConfig) { g.requestProcessor = p }
}

// WithSession overrides the default fetcher.NewSession(), e.g. to attach a
// custom rate limit or headers.
func WithSession(s fetcher.Session) GetOption {
	return func(g *getConfig) { g.session = s }
}

func identityResponseProcessor(_ context.Context, resp *fetcher.Response, _ fetcher.Session) (reader.Record, error) {
	return resp, nil
}

// Get fetches urls (deduplicated, first-occurrence order), resuming against
// any existing store for the same derived (or explicit) filename, and
// returns the IndexReader backing the result.
func (c *Crawler) Get(ctx context.Context, urls []string, opts ...GetOption) (*reader.IndexReader, error) {
	cfg := &getConfig{
		responseProcessor: identityResponseProcessor,
		requestDelay:      c.requestDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	runID := uuid.NewString()
	c.logf("arccrawler: run %s starting over %d urls", runID, len(urls))

	deduped := urlset.Dedup(urls)

	base := cfg.outFileName
	if base == "" {
		base = namehash.Derive(deduped)
	}
	storePath := filepath.Join(c.outFilePath, base+".jsonl")

	rebuild := func(record reader.Record) map[string]any {
		fields := map[string]any{}
		if m, ok := record.(map[string]any); ok {
			if u, ok := m["url"].(string); ok {
				fields["url"] = u
			}
		}
		if cfg.indexRecordSetter != nil {
			for k, v := range cfg.indexRecordSetter(record) {
				fields[k] = v
			}
		}
		return fields
	}

	readerOpts := []reader.Option{reader.WithRebuildFieldsFunc(rebuild)}
	if c.console != nil {
		readerOpts = append(readerOpts, reader.WithConsole(c.console))
	}

	idx, err := reader.Open(storePath, readerOpts...)
	if err != nil {
		return nil, fmt.Errorf("arccrawler: opening store: %w", err)
	}

	existing := urlset.New()
	for _, entry := range idx.IndexData() {
		if u := entry.URL(); u != "" {
			existing.Add(u)
		}
	}

	var workset []string
	for _, u := range deduped {
		if !existing.Contains(u) {
			workset = append(workset, u)
		}
	}

	if len(workset) == 0 {
		c.logf("arccrawler: nothing to fetch, %d urls already in store %s", len(deduped), storePath)
		return idx, nil
	}

	session := cfg.session
	if session == nil {
		session = fetcher.NewSession()
	}

	onResponse := func(ctx context.Context, resp *fetcher.Response, session fetcher.Session) error {
		record, err := cfg.responseProcessor(ctx, resp, session)
		if err != nil {
			return fmt.Errorf("arccrawler: processing response for %s: %w", resp.URL, err)
		}
		if record == nil {
			return nil
		}

		fields := map[string]any{}
		if cfg.indexRecordSetter != nil {
			for k, v := range cfg.indexRecordSetter(record) {
				fields[k] = v
			}
		}
		fields["url"] = resp.URL

		entry, err := idx.Write(record, fields)
		if err != nil {
			return fmt.Errorf("arccrawler: writing record for %s: %w", resp.URL, err)
		}

		if c.producer != nil {
			payload, marshalErr := json.Marshal(WriteEvent{RunID: runID, URL: entry.URL(), Line: entry.Line()})
			if marshalErr == nil {
				_ = c.producer.Produce(payload)
			}
		}
		return nil
	}

	f := c.newFetcher()
	if err := f.Get(ctx, workset, cfg.requestProcessor, onResponse, cfg.requestDelay, session); err != nil {
		return idx, fmt.Errorf("arccrawler: crawl aborted: %w", err)
	}

	return idx, nil
}

// HTMLBodyProcessor is the stock response processor: it stores the inner
// HTML of the response's <body> element for HTML responses, and the
// response unchanged for anything else.
func HTMLBodyProcessor(_ context.Context, resp *fetcher.Response, _ fetcher.Session) (reader.Record, error) {
	if resp.Text == nil {
		return resp, nil
	}
	contentType := resp.Headers["Content-Type"]
	if !strings.Contains(strings.ToLower(contentType), "html") {
		return resp, nil
	}
	return htmlbody.Extract(contentType, *resp.Text), nil
}
