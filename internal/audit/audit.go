// Package audit orchestrates one complete SimpleSiteAudit run: crawl,
// evaluate, score, narrate, and cache. It is the only package that
// wires crawler, findings, report and narrator together; every other
// package stays independently testable.
package audit

import (
	"context"
	"net/url"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/cache"
	"github.com/marcosalmeida/siteauditor/internal/cachekey"
	"github.com/marcosalmeida/siteauditor/internal/config"
	"github.com/marcosalmeida/siteauditor/internal/crawler"
	"github.com/marcosalmeida/siteauditor/internal/findings"
	"github.com/marcosalmeida/siteauditor/internal/narrator"
	"github.com/marcosalmeida/siteauditor/internal/report"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/timeutil"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

const (
	auditCacheTTL   = 900 * time.Second
	summaryCacheTTL = 600 * time.Second
)

// Narrator is the subset of *narrator.Narrator the orchestrator needs,
// so tests can stub the LLM without a network round trip.
type Narrator interface {
	Narrate(ctx context.Context, sections map[string]narrator.SectionInput) (map[string]string, error)
}

// Outcome is one full-report call's result: the scored report and
// whether it came out of the audit cache.
type Outcome struct {
	Report    report.Report
	FromCache bool
}

// Orchestrator owns the crawler, the two process-wide TTL caches, and
// an optional narrator.
type Orchestrator struct {
	crawlerMaker func(recorder *telemetry.Recorder) *crawler.Crawler
	narrator     Narrator

	auditCache   *cache.TTLCache[report.Report]
	summaryCache *cache.TTLCache[map[string]string]
}

// New builds an Orchestrator. narr may be nil, meaning no LLM is
// configured: RunSummary then fails with *narrator.UnavailableError,
// while RunFullReport (which never narrates) is unaffected.
func New(userAgent string, narr Narrator) *Orchestrator {
	return &Orchestrator{
		crawlerMaker: func(recorder *telemetry.Recorder) *crawler.Crawler {
			return crawler.New(userAgent, recorder, timeutil.NewRealSleeper())
		},
		narrator:     narr,
		auditCache:   cache.New[report.Report](auditCacheTTL),
		summaryCache: cache.New[map[string]string](summaryCacheTTL),
	}
}

// RunFullReport runs (or reuses a cached) full-profile audit of rawURL.
func (o *Orchestrator) RunFullReport(ctx context.Context, rawURL string) (Outcome, error) {
	seed, invalidErr := urlutil.Validate(rawURL)
	if invalidErr != nil {
		return Outcome{}, invalidErr
	}
	return o.runProfile(ctx, seed, config.ProfileFull)
}

// RunSummary produces the seven-sentence executive narration of rawURL.
// Per the cache fallback chain: a fresh summary-cache hit is returned
// first; failing that, a fresh full-profile report is narrated instead
// of re-crawling; only when neither cache has a fresh entry does this
// run a summary-profile audit. Any narrator failure, including no
// narrator being configured at all, is fatal here; the HTTP layer maps
// it to a 503.
func (o *Orchestrator) RunSummary(ctx context.Context, rawURL string) (map[string]string, error) {
	seed, invalidErr := urlutil.Validate(rawURL)
	if invalidErr != nil {
		return nil, invalidErr
	}
	normalized := urlutil.String(seed)

	if narration, ok := o.summaryCache.Get(cachekey.ForSummary(normalized)); ok {
		return copyNarration(narration), nil
	}

	rep, ok := o.auditCache.Get(cachekey.ForAudit(config.ProfileFull, normalized))
	if !ok {
		outcome, err := o.runProfile(ctx, seed, config.ProfileSummary)
		if err != nil {
			return nil, err
		}
		rep = outcome.Report
	}

	if o.narrator == nil {
		return nil, &narrator.UnavailableError{Reason: "LLM_API_KEY is missing"}
	}
	narration, err := o.narrator.Narrate(ctx, sectionInputs(rep))
	if err != nil {
		return nil, err
	}

	o.summaryCache.Put(cachekey.ForSummary(normalized), copyNarration(narration))
	return narration, nil
}

func (o *Orchestrator) runProfile(ctx context.Context, seed url.URL, profile config.Profile) (Outcome, error) {
	normalized := urlutil.String(seed)
	key := cachekey.ForAudit(profile, normalized)

	if cached, ok := o.auditCache.Get(key); ok {
		return Outcome{Report: cached, FromCache: true}, nil
	}

	cfg, err := config.ForProfile(profile, seed)
	if err != nil {
		return Outcome{}, err
	}

	recorder := telemetry.NewRecorder()
	c := o.crawlerMaker(recorder)
	result := c.Crawl(ctx, cfg)

	meta := findings.Meta{
		SeedOrigin:           findings.Origin(seed),
		RobotsPresent:        result.RobotsInfo.Present,
		SitemapPresent:       result.RobotsInfo.SitemapPresent,
		BrokenLinks:          toFindingsBrokenLinks(result.BrokenInternalLinks),
		FetchErrors:          toFindingsFetchErrors(result.FetchErrors),
		LimitNotes:           result.LimitNotes,
		IncludeLimitFindings: cfg.IncludeLimitFindings(),
	}

	rep := report.Build(report.BuildInput{
		Pages:                 result.Pages,
		Meta:                  meta,
		SeedURL:               seed,
		GeneratedAt:           result.GeneratedAt,
		LinksChecked:          result.LinksChecked,
		AllInternalLinksCount: result.AllInternalLinksCount,
		NonHTMLURLs:           result.NonHTMLURLs,
		SkippedByRobots:       result.SkippedByRobots,
		HashConteudo:          cachekey.ContentHash(normalized, result.StatusCache),
	})

	o.auditCache.Put(key, rep)
	return Outcome{Report: rep, FromCache: false}, nil
}

func sectionInputs(rep report.Report) map[string]narrator.SectionInput {
	inputs := make(map[string]narrator.SectionInput, len(narrator.SectionKeys))
	for _, key := range narrator.SectionKeys {
		sec := rep.Overall
		if key != "overall" {
			sec = rep.Sections[key]
		}
		inputs[key] = narrator.SectionInput{
			Key:            key,
			Status:         sec.Status,
			Summary:        sec.Summary,
			TopFindings:    findingTitles(sec, 3),
			TopNextActions: capStrings(sec.NextActions, 3),
		}
	}
	return inputs
}

func findingTitles(sec report.Section, max int) []string {
	titles := make([]string, 0, max)
	for i, f := range sec.Findings {
		if i >= max {
			break
		}
		titles = append(titles, f.Title)
	}
	return titles
}

func capStrings(in []string, max int) []string {
	if len(in) <= max {
		return in
	}
	return in[:max]
}

func copyNarration(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toFindingsBrokenLinks(in []crawler.BrokenLink) []findings.BrokenLink {
	out := make([]findings.BrokenLink, len(in))
	for i, b := range in {
		out[i] = findings.BrokenLink{URL: b.URL, Status: b.Status}
	}
	return out
}

func toFindingsFetchErrors(in []crawler.FetchErr) []findings.FetchError {
	out := make([]findings.FetchError, len(in))
	for i, f := range in {
		out[i] = findings.FetchError{URL: f.URL}
	}
	return out
}
