package crawler

import (
	"net/url"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/extractor"
	"github.com/marcosalmeida/siteauditor/internal/robots"
)

// BrokenLink is one internal link whose verification found it
// unreachable: a 4xx/5xx status, or 0 for a transport failure.
type BrokenLink struct {
	URL    string
	Status int
}

// FetchErr pairs a URL with the human-readable transport or extraction
// failure that kept it out of the page set.
type FetchErr struct {
	URL   string
	Error string
}

// Result is the complete outcome of one bounded crawl: the page set,
// link-health data, and the budgets that were (or weren't) tripped.
type Result struct {
	SeedURL     url.URL
	GeneratedAt time.Time

	Pages []extractor.PageRecord

	StatusCache         map[string]int
	BrokenInternalLinks []BrokenLink
	FetchErrors         []FetchErr

	LinksChecked          int
	AllInternalLinksCount int
	SkippedByRobots       int
	NonHTMLURLs           int

	RobotsInfo robots.Info
	LimitNotes []string

	RuntimeSeconds float64
}
