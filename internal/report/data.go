// Package report builds the six-section scored report from a crawl's
// page set and its findings: per-section scoring, status thresholds,
// next-action extraction, worst-page ranking, and the overall roll-up.
package report

import (
	"time"

	"github.com/marcosalmeida/siteauditor/internal/findings"
)

// Section keys, matching the report's six categories plus the overall
// roll-up.
const (
	KeyOverall     = "overall"
	KeySEO         = "seo"
	KeyA11y        = "a11y"
	KeyContent     = "content"
	KeyPerformance = "performance"
	KeyIndexacao   = "indexacao"
	KeyCritical    = "erros_criticos"
)

// sectionOrder fixes iteration order wherever section output must be
// deterministic.
var sectionOrder = []string{KeySEO, KeyA11y, KeyContent, KeyPerformance, KeyIndexacao, KeyCritical}

// SectionOrder returns the six category keys in the report's fixed,
// deterministic iteration order (overall is reported separately).
func SectionOrder() []string {
	out := make([]string, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

const monitoringSentinel = "Manter monitoramento recorrente e validar regressao semanal."

var measuredChecklists = map[string][]string{
	KeyOverall:     {"crawl coverage", "severity roll-up", "status via category-score mean"},
	KeySEO:         {"title & meta-desc", "canonical & h1", "broken internal links", "sitemap/robots"},
	KeyA11y:        {"img-alt", "input-label", "html-lang", "document title"},
	KeyContent:     {"words-per-page", "presence of main heading"},
	KeyPerformance: {"TTFB proxy", "HTML size", "resource count", "render-blocking resources"},
	KeyIndexacao:   {"robots.txt & sitemap.xml", "noindex pages", "canonical conflicts"},
	KeyCritical:    {"4xx/5xx", "redirect chains", "mixed content", "crawl-limit hit"},
}

// Section is one category view of the report: score, status, retained
// findings, recommended actions, and the fixed checklist it measures.
type Section struct {
	Key         string
	Score       int
	Status      string
	Summary     string
	Findings    []findings.Finding
	NextActions []string
	Measured    []string
}

// WorstPage is one HTML page ranked by how many of the six categories
// it triggers at least one page-level issue in. Each category counter
// is 0 or 1.
type WorstPage struct {
	URL             string
	Status          int
	TotalIssues     int
	SEOIssues       int
	A11yIssues      int
	ContentIssues   int
	PerfIssues      int
	IndexacaoIssues int
	CriticalIssues  int
}

// Appendix is the report's numeric summary, also carrying the
// determinism-check content hash.
type Appendix struct {
	PagesScanned                int
	LinksChecked                int
	AllInternalLinksCount       int
	BrokenLinksCount            int
	HTTPErrorPagesCount         int
	NoindexPagesCount           int
	MissingMetaDescriptionCount int
	MissingTitleCount           int
	MissingLangCount            int
	ImagesMissingAltTotal       int
	InputsMissingLabelTotal     int
	RedirectChainPagesCount     int
	NonHTMLURLs                 int
	SkippedByRobots             int
	RobotsPresent               bool
	SitemapEncontrado           bool
	MixedContentPagesCount      int
	CrawlParcial                bool
	HashConteudo                string
}

// Report is the complete audit output for one URL.
type Report struct {
	URL         string
	GeneratedAt time.Time
	Sections    map[string]Section
	Overall     Section
	WorstPages  []WorstPage
	Appendix    Appendix
}
