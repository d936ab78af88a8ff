// Package fetcher implements the downloading side of arccrawler: a reusable
// HTTP session abstraction, two interchangeable URL fetchers (sequential and
// parallel) and the termination-criteria policy that can abort a batch
// midway through.
package fetcher

// Response is the value passed to response hooks after a single GET.
// The default Session always populates Text with the full body; JSON is
// only set when the body decoded as JSON and the Content-Type header
// advertised it.
type Response struct {
	URL     string            `json:"url"`
	Status  int               `json:"status"`
	Text    *string           `json:"text,omitempty"`
	JSON    any               `json:"json,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Ok      bool              `json:"ok"`
}
