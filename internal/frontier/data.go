// Package frontier provides the generic FIFO queue and dedup set used
// by the crawler's breadth-first traversal, plus the CrawlToken value
// that pairs a URL with its discovery depth.
package frontier

import "net/url"

// CrawlToken is a queued URL paired with the depth at which it was
// discovered. It carries no policy: only same-origin links are enqueued,
// and the crawler applies the depth budget and robots rules when it
// dequeues a token.
type CrawlToken struct {
	url   url.URL
	depth int
}

// NewCrawlToken builds a CrawlToken for u at depth.
func NewCrawlToken(u url.URL, depth int) CrawlToken {
	return CrawlToken{url: u, depth: depth}
}

func (c CrawlToken) URL() url.URL { return c.url }
func (c CrawlToken) Depth() int   { return c.depth }
