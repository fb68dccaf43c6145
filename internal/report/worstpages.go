package report

import (
	"sort"
	"strings"

	"github.com/marcosalmeida/siteauditor/internal/extractor"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

// rankWorstPages scores each HTML page with one 0/1 counter per
// category, keeps pages with at least one issue, and returns the top
// 20 by total_issues descending. Ties keep discovery order.
func rankWorstPages(pages []extractor.PageRecord) []WorstPage {
	var ranked []WorstPage
	for _, p := range pages {
		wp := WorstPage{
			URL:    urlutil.String(p.URL),
			Status: p.Status,
		}
		if seoPageIssue(p) {
			wp.SEOIssues = 1
		}
		if a11yPageIssue(p) {
			wp.A11yIssues = 1
		}
		if contentPageIssue(p) {
			wp.ContentIssues = 1
		}
		if performancePageIssue(p) {
			wp.PerfIssues = 1
		}
		if indexacaoPageIssue(p) {
			wp.IndexacaoIssues = 1
		}
		if criticalPageIssue(p) {
			wp.CriticalIssues = 1
		}
		wp.TotalIssues = wp.SEOIssues + wp.A11yIssues + wp.ContentIssues +
			wp.PerfIssues + wp.IndexacaoIssues + wp.CriticalIssues
		if wp.TotalIssues > 0 {
			ranked = append(ranked, wp)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalIssues > ranked[j].TotalIssues
	})
	if len(ranked) > 20 {
		ranked = ranked[:20]
	}
	return ranked
}

func seoPageIssue(p extractor.PageRecord) bool {
	return strings.TrimSpace(p.Title) == "" ||
		strings.TrimSpace(p.MetaDescription) == "" || p.H1Count != 1
}

func a11yPageIssue(p extractor.PageRecord) bool {
	return p.ImagesMissingAlt > 0 || p.InputsMissingLabel > 0 ||
		strings.TrimSpace(p.Lang) == ""
}

func contentPageIssue(p extractor.PageRecord) bool {
	return p.WordCount < 120
}

func performancePageIssue(p extractor.PageRecord) bool {
	return p.TTFBMs > 1200 || p.HTMLSizeBytes > 512_000 || p.RenderBlockingCount > 5
}

func indexacaoPageIssue(p extractor.PageRecord) bool {
	return strings.Contains(strings.ToLower(p.RobotsMeta), "noindex")
}

func criticalPageIssue(p extractor.PageRecord) bool {
	return p.Status >= 400 || p.RedirectHops >= 3 || p.MixedContentCount > 0
}
