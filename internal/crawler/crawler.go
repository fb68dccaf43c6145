// Package crawler performs the audit engine's bounded, breadth-first
// site traversal: phase 1 fetches and extracts pages under the page,
// depth and wall-clock budgets; phase 2 verifies internal-link
// reachability under the link-check budget. Robots.txt is consulted for
// every URL, seed included, when it is dequeued and before it is fetched.
package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/config"
	"github.com/marcosalmeida/siteauditor/internal/extractor"
	"github.com/marcosalmeida/siteauditor/internal/fetch"
	"github.com/marcosalmeida/siteauditor/internal/frontier"
	"github.com/marcosalmeida/siteauditor/internal/robots"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/limiter"
	"github.com/marcosalmeida/siteauditor/pkg/timeutil"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

const (
	noteMaxRuntime          = "MAX_RUNTIME_SECONDS reached during crawl."
	noteMaxPages            = "MAX_PAGES reached."
	noteMaxLinkChecks       = "MAX_LINK_CHECKS reached while checking internal links."
	noteMaxRuntimeLinkCheck = "MAX_RUNTIME_SECONDS reached while checking internal links."
)

// Crawler owns the fetchers, extractor and robots prober shared across
// one audit's crawl. It holds no state between Crawl calls.
type Crawler struct {
	fetcher     *fetch.Fetcher
	linkChecker *fetch.LinkChecker
	extractor   *extractor.PageExtractor
	prober      *robots.Prober
	recorder    *telemetry.Recorder
	rateLimiter limiter.RateLimiter
	sleeper     timeutil.Sleeper
}

// New builds a Crawler. sleeper defaults to a no-op if nil, so callers
// that don't care about crawl-delay politeness (most tests) don't pay
// for it.
func New(userAgent string, recorder *telemetry.Recorder, sleeper timeutil.Sleeper) *Crawler {
	if sleeper == nil {
		sleeper = timeutil.NewNoOpSleeper()
	}
	return &Crawler{
		fetcher:     fetch.New(userAgent, recorder),
		linkChecker: fetch.NewLinkChecker(userAgent),
		extractor:   extractor.NewPageExtractor(recorder),
		prober:      robots.NewProber(userAgent, fetch.New(userAgent, recorder), recorder),
		recorder:    recorder,
		rateLimiter: limiter.NewConcurrentRateLimiter(),
		sleeper:     sleeper,
	}
}

// Crawl runs one bounded BFS crawl of cfg.SeedURL() under cfg's budgets.
func (c *Crawler) Crawl(ctx context.Context, cfg config.Config) Result {
	start := time.Now()
	seed := cfg.SeedURL()
	origin := url.URL{Scheme: seed.Scheme, Host: seed.Host}

	robotsInfo, ruleset := c.prober.Probe(ctx, origin, cfg.PerPageTimeout())
	c.rateLimiter.SetBaseDelay(0)
	if robotsInfo.CrawlDelay > 0 {
		c.rateLimiter.SetCrawlDelay(seed.Host, robotsInfo.CrawlDelay)
	}

	st := &crawlState{
		statusCache:      make(map[string]int),
		allInternalLinks: make(map[string]url.URL),
		queued:           frontier.NewSet[string](),
		visited:          frontier.NewSet[string](),
		queue:            frontier.NewFIFOQueue[frontier.CrawlToken](),
		notesSeen:        make(map[string]bool),
	}

	seedKey := urlutil.String(seed)
	st.queued.Add(seedKey)
	st.queue.Enqueue(frontier.NewCrawlToken(seed, 0))

	c.runBFS(ctx, cfg, ruleset, start, st)

	linksChecked, broken := c.verifyLinks(ctx, cfg, ruleset, start, st)

	return Result{
		SeedURL:               seed,
		GeneratedAt:           time.Now().UTC().Truncate(time.Second),
		Pages:                 st.pages,
		StatusCache:           st.statusCache,
		BrokenInternalLinks:   broken,
		FetchErrors:           st.fetchErrors,
		LinksChecked:          linksChecked,
		AllInternalLinksCount: len(st.allInternalLinks),
		SkippedByRobots:       st.skippedByRobots,
		NonHTMLURLs:           st.nonHTMLURLs,
		RobotsInfo:            robotsInfo,
		LimitNotes:            st.limitNotes,
		RuntimeSeconds:        time.Since(start).Seconds(),
	}
}

type crawlState struct {
	pages            []extractor.PageRecord
	statusCache      map[string]int
	allInternalLinks map[string]url.URL
	fetchErrors      []FetchErr
	skippedByRobots  int
	nonHTMLURLs      int
	limitNotes       []string
	notesSeen        map[string]bool

	queued  frontier.Set[string]
	visited frontier.Set[string]
	queue   *frontier.FIFOQueue[frontier.CrawlToken]
}

func (st *crawlState) addNote(note string) {
	if st.notesSeen[note] {
		return
	}
	st.notesSeen[note] = true
	st.limitNotes = append(st.limitNotes, note)
}

func (c *Crawler) runBFS(ctx context.Context, cfg config.Config, ruleset interface {
	Allowed(string) bool
}, start time.Time, st *crawlState) {
	seed := cfg.SeedURL()
	origin := url.URL{Scheme: seed.Scheme, Host: seed.Host}
	for {
		if time.Since(start) >= cfg.MaxRuntime() {
			st.addNote(noteMaxRuntime)
			return
		}
		if len(st.pages) >= cfg.MaxPages() {
			st.addNote(noteMaxPages)
			return
		}

		token, ok := st.queue.Dequeue()
		if !ok {
			return
		}

		key := urlutil.String(token.URL())
		if st.visited.Contains(key) {
			continue
		}
		if token.Depth() > cfg.MaxDepth() {
			continue
		}
		st.visited.Add(key)

		if !ruleset.Allowed(token.URL().Path) {
			st.skippedByRobots++
			continue
		}

		c.politenessDelay(token.URL().Host)
		result := c.fetcher.Fetch(ctx, token.URL(), cfg.PerPageTimeout())
		c.rateLimiter.MarkLastFetchAsNow(token.URL().Host)

		finalKey := urlutil.String(result.FinalURL())
		st.statusCache[key] = result.Status()
		st.statusCache[finalKey] = result.Status()

		isHTML := strings.Contains(strings.ToLower(result.ContentType()), "text/html")
		if !isHTML {
			st.nonHTMLURLs++
			if result.Status() == 0 {
				st.fetchErrors = append(st.fetchErrors, FetchErr{URL: key, Error: result.Err()})
			}
			continue
		}

		record, extractErr := c.extractor.Extract(result.FinalURL(), origin, result.Body())
		if extractErr != nil {
			st.nonHTMLURLs++
			st.fetchErrors = append(st.fetchErrors, FetchErr{URL: key, Error: extractErr.Error()})
			continue
		}

		record.URL = token.URL()
		record.FinalURL = result.FinalURL()
		record.Depth = token.Depth()
		record.Status = result.Status()
		record.ContentType = result.ContentType()
		record.IsHTML = true
		record.RedirectHops = result.RedirectHops()
		record.HTMLSizeBytes = result.BodySize()
		record.TTFBMs = result.TTFBMs()

		st.pages = append(st.pages, record)

		for _, link := range record.InternalLinks {
			linkKey := urlutil.String(link)
			st.allInternalLinks[linkKey] = link
			if st.visited.Contains(linkKey) || st.queued.Contains(linkKey) {
				continue
			}
			st.queued.Add(linkKey)
			st.queue.Enqueue(frontier.NewCrawlToken(link, token.Depth()+1))
		}
	}
}

func (c *Crawler) politenessDelay(host string) {
	delay := c.rateLimiter.ResolveDelay(host)
	c.sleeper.Sleep(delay)
}

// verifyLinks is the crawler's phase 2: reachability verification over
// every internal link discovered in phase 1, in lexicographic order
// for determinism.
func (c *Crawler) verifyLinks(ctx context.Context, cfg config.Config, ruleset interface {
	Allowed(string) bool
}, start time.Time, st *crawlState) (int, []BrokenLink) {
	if cfg.MaxLinkChecks() == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(st.allInternalLinks))
	for k := range st.allInternalLinks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var broken []BrokenLink
	checked := 0

	for _, key := range keys {
		if checked >= cfg.MaxLinkChecks() {
			st.addNote(noteMaxLinkChecks)
			break
		}
		if time.Since(start) >= cfg.MaxRuntime() {
			st.addNote(noteMaxRuntimeLinkCheck)
			break
		}

		target := st.allInternalLinks[key]
		if !ruleset.Allowed(target.Path) {
			continue
		}

		checked++
		status, cached := st.statusCache[key]
		if !cached {
			result := c.linkChecker.Check(ctx, target, cfg.PerPageTimeout())
			status = result.Status
			st.statusCache[key] = status
		}

		if status >= http.StatusBadRequest || status == 0 {
			broken = append(broken, BrokenLink{URL: key, Status: status})
		}
	}

	return checked, broken
}
