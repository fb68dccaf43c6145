// Package robots performs the audit engine's one-shot robots.txt and
// sitemap.xml probe, and evaluates per-URL allow/disallow decisions
// against the resulting ruleSet.
//
// Responsibilities:
//   - Fetch robots.txt and classify its presence
//   - Detect a sitemap, either referenced from robots.txt or present
//     at the conventional /sitemap.xml location
//   - Cache the parsed ruleSet per host for the lifetime of the
//     process, bounded by a short TTL, so back-to-back audits of the
//     same host do not refetch robots.txt
package robots

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/cache"
	"github.com/marcosalmeida/siteauditor/internal/fetch"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
)

// rulesetTTL bounds how long a parsed robots.txt ruleset is reused
// across audits of the same host (SUPPLEMENTED FEATURES #1).
const rulesetTTL = 300 * time.Second

// maxRobotsBodyBytes caps how much of robots.txt is parsed, matching
// real crawlers' tolerance for oversized files.
const maxRobotsBodyBytes = 500 * 1024

type cachedRuleset struct {
	info    Info
	ruleSet ruleSet
}

// rulesetCache is shared by every Prober in the process, so
// back-to-back audits of the same host reuse one robots.txt fetch
// even though each audit constructs its own Prober.
var rulesetCache = cache.New[cachedRuleset](rulesetTTL)

// Prober performs the robots.txt/sitemap fetch and exposes per-URL
// allow decisions.
type Prober struct {
	fetcher   *fetch.Fetcher
	recorder  *telemetry.Recorder
	userAgent string
	cache     *cache.TTLCache[cachedRuleset]
}

// NewProber builds a Prober sharing fetcher and recorder with the rest
// of the audit. All Probers share the process-wide ruleset cache.
func NewProber(userAgent string, fetcher *fetch.Fetcher, recorder *telemetry.Recorder) *Prober {
	return &Prober{
		fetcher:   fetcher,
		recorder:  recorder,
		userAgent: userAgent,
		cache:     rulesetCache,
	}
}

// Probe fetches and parses robots.txt and detects a sitemap for
// origin's host, reusing a cached ruleset within rulesetTTL. It never
// returns an error: any fetch failure is folded into Info{Present: false}.
func (p *Prober) Probe(ctx context.Context, origin url.URL, timeout time.Duration) (Info, ruleSet) {
	if cached, ok := p.cache.Get(origin.Host); ok {
		return cached.info, cached.ruleSet
	}

	info, rs := p.probeFresh(ctx, origin, timeout)
	p.cache.Put(origin.Host, cachedRuleset{info: info, ruleSet: rs})
	return info, rs
}

func (p *Prober) probeFresh(ctx context.Context, origin url.URL, timeout time.Duration) (Info, ruleSet) {
	robotsURL := origin
	robotsURL.Path = "/robots.txt"
	robotsURL.RawQuery = ""

	result := p.fetcher.Fetch(ctx, robotsURL, timeout)

	info := Info{}
	var response RobotsResponse
	var rawBody string

	switch {
	case result.Status() == 200:
		info.Present = true
		info.Status = result.Status()
		body := result.Body()
		if len(body) > maxRobotsBodyBytes {
			body = body[:maxRobotsBodyBytes]
		}
		rawBody = string(body)
		response = ParseRobotsTxt(rawBody, origin.Host)
	case result.Status() > 0:
		info.Present = false
		info.Status = result.Status()
	default:
		info.Present = false
		info.Status = 0
		p.recorder.RecordError("robots", "Probe", mapCauseToTelemetry(ErrCauseFetchFailure), result.Err(),
			telemetry.NewAttr(telemetry.AttrURL, robotsURL.String()))
	}

	rs := MapResponseToRuleSet(response, p.userAgent, time.Now().UTC())
	if delay := rs.CrawlDelay(); delay != nil {
		info.CrawlDelay = *delay
	}

	info.SitemapPresent = p.detectSitemap(ctx, origin, rawBody, timeout)
	return info, rs
}

// detectSitemap is true when the robots.txt body mentions a sitemap
// directive, or a fallback GET of /sitemap.xml returns 200.
func (p *Prober) detectSitemap(ctx context.Context, origin url.URL, robotsBody string, timeout time.Duration) bool {
	if sitemapMentioned(robotsBody) {
		return true
	}

	sitemapURL := origin
	sitemapURL.Path = "/sitemap.xml"
	sitemapURL.RawQuery = ""
	result := p.fetcher.Fetch(ctx, sitemapURL, timeout)
	return result.Status() == 200
}

// Allowed reports whether target is permitted to be crawled per rs.
func Allowed(rs ruleSet, target url.URL) bool {
	return rs.Allowed(target.Path)
}

// sitemapMentioned reports whether a raw robots.txt body carries any
// sitemap directive, case-insensitively.
func sitemapMentioned(body string) bool {
	return strings.Contains(strings.ToLower(body), "sitemap:")
}
