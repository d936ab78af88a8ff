package fetcher

import (
	"errors"
	"fmt"
)

// ErrTerminated wraps every error a TerminationPolicy produces, letting
// callers distinguish a policy-triggered abort from a transport failure via
// errors.Is(err, fetcher.ErrTerminated).
var ErrTerminated = errors.New("termination criteria met")

// TerminationPolicy classifies a response's status code as fatal to the
// current batch. A fetcher evaluates it once per received response, before
// the response hook runs; a non-nil error aborts the whole crawl.
type TerminationPolicy interface {
	Check(statusCode int, url string) error
}

// Matcher is either a single status code or a half-open range [Lo, Hi).
type Matcher struct {
	code    int
	isRange bool
	lo, hi  int
}

// Code matches a single HTTP status code.
func Code(code int) Matcher {
	return Matcher{code: code}
}

// Range matches any status code in [lo, hi).
func Range(lo, hi int) Matcher {
	return Matcher{isRange: true, lo: lo, hi: hi}
}

func (m Matcher) matches(status int) bool {
	if m.isRange {
		return status >= m.lo && status < m.hi
	}
	return status == m.code
}

type matchPolicy struct {
	matchers []Matcher
}

// NewMatchPolicy builds a TerminationPolicy from an ordered list of Code/Range
// matchers. A response matching any of them aborts the batch with a
// synthesized "termination criteria met" error. Called with no matchers it
// never terminates, the default for fetchers that don't care.
func NewMatchPolicy(matchers ...Matcher) TerminationPolicy {
	return &matchPolicy{matchers: matchers}
}

func (p *matchPolicy) Check(status int, _ string) error {
	for _, m := range p.matchers {
		if m.matches(status) {
			return fmt.Errorf("%w: %d", ErrTerminated, status)
		}
	}
	return nil
}

type funcPolicy struct {
	fn func(statusCode int, url string) error
}

// NewFuncPolicy adapts a callback returning a non-nil error on a fatal
// response into a TerminationPolicy.
func NewFuncPolicy(fn func(statusCode int, url string) error) TerminationPolicy {
	return &funcPolicy{fn: fn}
}

func (p *funcPolicy) Check(status int, url string) error {
	if err := p.fn(status, url); err != nil {
		return fmt.Errorf("%w: %w", ErrTerminated, err)
	}
	return nil
}
