// Package arccrawler implements a resumable, rate-limited web crawler: it
// fetches a caller-supplied list of URLs, writes one JSON record per response
// to an append-only content file, and maintains a sibling index so a second
// Get() call over an overlapping URL set picks up exactly where the first
// left off.
package arccrawler

import (
	"context"
	"time"

	"github.com/codepr/arccrawler/config"
	"github.com/codepr/arccrawler/fetcher"
	"github.com/codepr/arccrawler/internal/console"
	"github.com/codepr/arccrawler/messaging"
)

// Mode selects which fetcher engine Get uses.
type Mode string

const (
	// ModeAsync runs fetches concurrently, staggered by request_delay.
	ModeAsync Mode = "async"
	// ModeSync runs fetches one at a time, spaced by request_delay.
	ModeSync Mode = "sync"
)

// Crawler is the orchestrator tying together a Session, a fetcher, and an
// IndexReader-backed store. A zero Crawler is not usable; build one with New
// or NewFromConfig.
type Crawler struct {
	outFilePath  string
	mode         Mode
	termination  fetcher.TerminationPolicy
	console      console.Console
	producer     messaging.Producer
	requestDelay time.Duration
}

// Option configures a Crawler at construction time.
type Option func(*Crawler)

// WithMode overrides the default ModeAsync.
func WithMode(m Mode) Option {
	return func(c *Crawler) { c.mode = m }
}

// WithTerminationCriteria installs a policy evaluated against every response
// of every Get call. Without one, a batch never aborts on status code alone.
func WithTerminationCriteria(p fetcher.TerminationPolicy) Option {
	return func(c *Crawler) { c.termination = p }
}

// WithConsole overrides the confirmation/log capability. Without one, Get
// creates a missing store unconditionally and logs nowhere.
func WithConsole(cons console.Console) Option {
	return func(c *Crawler) { c.console = cons }
}

// WithProducer attaches a messaging.Producer that receives one WriteEvent per
// successful store append, decoupling persistence from anything downstream
// that wants to observe it.
func WithProducer(p messaging.Producer) Option {
	return func(c *Crawler) { c.producer = p }
}

// WithDefaultRequestDelay sets the request_delay every Get call uses unless
// it supplies its own WithRequestDelay GetOption.
func WithDefaultRequestDelay(d time.Duration) Option {
	return func(c *Crawler) { c.requestDelay = d }
}

// WithLogLevel builds a Console backed by a zap logger at the given level
// (debug|info|warn|error). Mutually exclusive with WithConsole; whichever is
// applied last wins.
func WithLogLevel(level string) Option {
	return func(c *Crawler) {
		logger, err := console.NewLogger(level)
		if err != nil {
			// Fall back silently to an info logger: an invalid
			// log_level must not prevent construction here, only
			// config.Load validates it strictly.
			logger, _ = console.NewLogger("info")
		}
		c.console = console.New(logger)
	}
}

// New builds a Crawler writing into outFilePath, defaulting to ModeAsync
// with no termination criteria, no console, and no producer.
func New(outFilePath string, opts ...Option) *Crawler {
	c := &Crawler{
		outFilePath: outFilePath,
		mode:        ModeAsync,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a Crawler from a loaded config.CrawlerConfig, wiring
// its log_level into a Console automatically. opts can still override any of
// it, applied after the config-derived options.
func NewFromConfig(cfg *config.CrawlerConfig, opts ...Option) *Crawler {
	base := []Option{
		WithMode(Mode(cfg.Mode)),
		WithLogLevel(cfg.LogLevel),
		WithDefaultRequestDelay(time.Duration(cfg.RequestDelay * float64(time.Second))),
	}
	return New(cfg.OutFilePath, append(base, opts...)...)
}

func (c *Crawler) logf(format string, args ...any) {
	if c.console == nil {
		return
	}
	if logger := c.console.Logger(); logger != nil {
		logger.Infof(format, args...)
	}
}

// batchFetcher is the common shape of SequentialFetcher and ParallelFetcher,
// letting Get pick an engine from Mode without a type switch at call time.
type batchFetcher interface {
	Get(ctx context.Context, urls []string, onRequest fetcher.RequestHook, onResponse fetcher.ResponseHook, minRequestDelay time.Duration, session fetcher.Session) error
}

func (c *Crawler) newFetcher() batchFetcher {
	if c.mode == ModeSync {
		return fetcher.NewSequential(c.termination)
	}
	return fetcher.NewParallel(c.termination)
}
