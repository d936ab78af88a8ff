package fetcher

import (
	"context"
	"time"
)

// RequestHook observes an outgoing request before it is sent.
type RequestHook func(url string)

// ResponseHook processes a completed response. Session is the same session
// the fetcher used, so the hook can issue follow-up requests on the same
// connection pool. A returned error aborts the batch, same as a
// TerminationPolicy match.
type ResponseHook func(ctx context.Context, response *Response, session Session) error

// SequentialFetcher issues URLs one at a time, in list order, spaced by a
// minimum delay between the start of consecutive requests.
type SequentialFetcher struct {
	termination TerminationPolicy
}

// NewSequential builds a SequentialFetcher. A nil policy never terminates.
func NewSequential(termination TerminationPolicy) *SequentialFetcher {
	if termination == nil {
		termination = NewMatchPolicy()
	}
	return &SequentialFetcher{termination: termination}
}

// Get fetches urls in order, invoking onRequest before each call and
// onResponse after each. If session is nil, a default one is created scoped
// to this call. Response hooks run in input order; the delay between the
// start of consecutive requests is at least minRequestDelay.
func (f *SequentialFetcher) Get(
	ctx context.Context,
	urls []string,
	onRequest RequestHook,
	onResponse ResponseHook,
	minRequestDelay time.Duration,
	session Session,
) error {
	if session == nil {
		session = NewSession()
	}

	for i, url := range urls {
		if onRequest != nil {
			onRequest(url)
		}

		resp, err := session.Get(ctx, url)
		if err != nil {
			return err
		}

		if err := f.termination.Check(resp.Status, url); err != nil {
			return err
		}

		if onResponse != nil {
			if err := onResponse(ctx, resp, session); err != nil {
				return err
			}
		}

		if i < len(urls)-1 && minRequestDelay > 0 {
			time.Sleep(minRequestDelay)
		}
	}
	return nil
}
