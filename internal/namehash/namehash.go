// Package namehash derives the deterministic output base filename for a
// crawl from its URL set: the same URLs, in any order, always hash to the
// same name, which is what lets a second Crawler.Get on an overlapping set
// resume against the same store.
package namehash

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// prefixLen is the number of hex characters kept from the 64-bit digest.
const prefixLen = 12

// Derive hashes the sorted URL list into a short, stable hex name. An empty
// list still yields a stable (non-empty) name, since sorting and hashing the
// empty slice is itself deterministic.
func Derive(urls []string) string {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)

	digest := xxhash.New()
	for _, u := range sorted {
		_, _ = digest.WriteString(u)
		_, _ = digest.Write([]byte{0})
	}

	full := fmt.Sprintf("%016x", digest.Sum64())
	return full[:prefixLen]
}
