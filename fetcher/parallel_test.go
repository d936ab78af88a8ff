package fetcher

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func TestParallelFetcher_RequestOrderMatchesInput(t *testing.T) {
	urls, responses := delayedURLs(5)
	session := newFakeSession(responses)

	var mu sync.Mutex
	var requestOrder []string

	fetcher := NewParallel(nil)
	err := fetcher.Get(context.Background(), urls,
		func(url string) {
			mu.Lock()
			requestOrder = append(requestOrder, url)
			mu.Unlock()
		},
		nil,
		10*time.Millisecond, session,
	)

	require.NoError(t, err)
	assert.Equal(t, urls, requestOrder)
}

func TestParallelFetcher_ResponseOrderIsReversedForDecreasingDelays(t *testing.T) {
	urls, responses := delayedURLs(5)
	session := newFakeSession(responses)

	var mu sync.Mutex
	var responseOrder []string

	fetcher := NewParallel(nil)
	err := fetcher.Get(context.Background(), urls, nil,
		func(_ context.Context, resp *Response, _ Session) error {
			mu.Lock()
			responseOrder = append(responseOrder, *resp.Text)
			mu.Unlock()
			return nil
		},
		10*time.Millisecond, session,
	)

	require.NoError(t, err)
	assert.Equal(t, reversed(urls), responseOrder)
}

func TestParallelFetcher_MinRequestDelayStaggersLaunches(t *testing.T) {
	urls := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	responses := map[string]fakeResponse{
		urls[0]: {status: 200, text: "a"},
		urls[1]: {status: 200, text: "b"},
		urls[2]: {status: 200, text: "c"},
	}
	session := newFakeSession(responses)

	var mu sync.Mutex
	var timestamps []time.Time

	fetcher := NewParallel(nil)
	start := time.Now()
	err := fetcher.Get(context.Background(), urls,
		func(string) {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		},
		nil, 30*time.Millisecond, session,
	)
	require.NoError(t, err)
	require.Len(t, timestamps, 3)
	assert.GreaterOrEqual(t, timestamps[1].Sub(timestamps[0]), 30*time.Millisecond)
	assert.GreaterOrEqual(t, timestamps[2].Sub(timestamps[1]), 30*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestParallelFetcher_TerminationCancelsInFlight(t *testing.T) {
	urls := []string{"https://a.io", "https://b.io", "https://c.io"}
	responses := map[string]fakeResponse{
		urls[0]: {status: 200, text: "a"},
		urls[1]: {status: 500, text: "b", delay: 10 * time.Millisecond},
		urls[2]: {status: 200, text: "c", delay: 200 * time.Millisecond},
	}
	session := newFakeSession(responses)
	policy := NewFuncPolicy(func(status int, _ string) error {
		if status == 500 {
			return fmt.Errorf("custom exception")
		}
		return nil
	})
	fetcher := NewParallel(policy)

	var requested []string
	err := fetcher.Get(context.Background(), urls,
		func(url string) { requested = append(requested, url) },
		nil, 0, session,
	)

	require.Error(t, err)
	assert.Equal(t, urls, requested)
}
