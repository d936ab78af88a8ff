package fetcher

import (
	"context"
	"sync"
	"time"
)

// ParallelFetcher schedules all URL fetches as concurrent tasks, staggering
// the start of consecutive tasks by a minimum delay. Request hooks fire in
// input order (task-start order); response hooks fire in completion order.
// A TerminationPolicy match cancels any still-inflight tasks and surfaces
// the first triggering error.
type ParallelFetcher struct {
	termination TerminationPolicy
}

// NewParallel builds a ParallelFetcher. A nil policy never terminates.
func NewParallel(termination TerminationPolicy) *ParallelFetcher {
	if termination == nil {
		termination = NewMatchPolicy()
	}
	return &ParallelFetcher{termination: termination}
}

type parallelResult struct {
	index int
	url   string
	resp  *Response
	err   error
}

// Get fetches urls concurrently. See ParallelFetcher for ordering guarantees.
func (f *ParallelFetcher) Get(
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan parallelResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		if i > 0 && minRequestDelay > 0 {
			time.Sleep(minRequestDelay)
		}
		if ctx.Err() != nil {
			break
		}

		if onRequest != nil {
			onRequest(url)
		}

		wg.Add(1)
		go func(index int, url string) {
			defer wg.Done()
			resp, err := session.Get(ctx, url)
			results <- parallelResult{index: index, url: url, resp: resp, err: err}
		}(i, url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for r := range results {
		if firstErr != nil {
			// Drain remaining completions without running hooks; a
			// termination has already been decided.
			continue
		}
		if r.err != nil {
			firstErr = r.err
			cancel()
			continue
		}
		if err := f.termination.Check(r.resp.Status, r.url); err != nil {
			firstErr = err
			cancel()
			continue
		}
		if onResponse != nil {
			if err := onResponse(ctx, r.resp, session); err != nil {
				firstErr = err
				cancel()
				continue
			}
		}
	}
	return firstErr
}
