// Package htmlbody extracts the <body> contents of an HTML response using
// goquery, falling through unchanged for anything that isn't HTML.
package htmlbody

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract returns the inner HTML of the first <body> element in body, or
// body unchanged when contentType isn't HTML, or when parsing fails, or when
// no <body> element is found.
func Extract(contentType, body string) string {
	if !strings.Contains(strings.ToLower(contentType), "html") {
		return body
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	sel := doc.Find("body").First()
	if sel.Length() == 0 {
		return body
	}

	extracted, err := sel.Html()
	if err != nil {
		return body
	}
	return extracted
}
