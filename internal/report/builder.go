package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/extractor"
	"github.com/marcosalmeida/siteauditor/internal/findings"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

var severityPenalty = map[findings.Severity]int{
	findings.SeverityCritical: 35,
	findings.SeverityHigh:     20,
	findings.SeverityMedium:   10,
	findings.SeverityLow:      4,
}

// BuildInput carries everything the report builder needs beyond the
// findings themselves: page set, crawl metadata, and the counters that
// land in the appendix verbatim.
type BuildInput struct {
	Pages       []extractor.PageRecord
	Meta        findings.Meta
	SeedURL     url.URL
	GeneratedAt time.Time

	LinksChecked          int
	AllInternalLinksCount int
	NonHTMLURLs           int
	SkippedByRobots       int
	HashConteudo          string
}

// Build assembles the complete Report from in.
func Build(in BuildInput) Report {
	grouped := findings.Evaluate(in.Pages, in.Meta)

	pageCount := len(in.Pages)
	sections := make(map[string]Section, len(sectionOrder))
	var unionFindings []findings.Finding
	for _, key := range sectionOrder {
		candidates := grouped[categoryForKey(key)]
		sec := buildSection(key, sectionSummary(key, pageCount, len(candidates)), candidates)
		sections[key] = sec
		unionFindings = append(unionFindings, sec.Findings...)
	}

	overall := buildSection(KeyOverall, overallSummary(pageCount, len(unionFindings)), unionFindings)
	if len(in.Pages) > 0 {
		sum := 0
		for _, key := range sectionOrder {
			sum += sections[key].Score
		}
		overall.Score = sum / len(sectionOrder)
		overall.Status = statusForScore(overall.Score, hasCritical(overall.Findings))
	}

	appendix := buildAppendix(in)

	return Report{
		URL:         urlutil.String(in.SeedURL),
		GeneratedAt: in.GeneratedAt,
		Sections:    sections,
		Overall:     overall,
		WorstPages:  rankWorstPages(in.Pages),
		Appendix:    appendix,
	}
}

func buildAppendix(in BuildInput) Appendix {
	a := Appendix{
		PagesScanned:          len(in.Pages),
		LinksChecked:          in.LinksChecked,
		AllInternalLinksCount: in.AllInternalLinksCount,
		BrokenLinksCount:      len(in.Meta.BrokenLinks),
		NonHTMLURLs:           in.NonHTMLURLs,
		SkippedByRobots:       in.SkippedByRobots,
		RobotsPresent:         in.Meta.RobotsPresent,
		SitemapEncontrado:     in.Meta.SitemapPresent,
		CrawlParcial:          len(in.Meta.LimitNotes) > 0,
		HashConteudo:          in.HashConteudo,
	}
	for _, p := range in.Pages {
		if p.Status >= 400 || p.Status == 0 {
			a.HTTPErrorPagesCount++
		}
		if strings.Contains(strings.ToLower(p.RobotsMeta), "noindex") {
			a.NoindexPagesCount++
		}
		if strings.TrimSpace(p.MetaDescription) == "" {
			a.MissingMetaDescriptionCount++
		}
		if strings.TrimSpace(p.Title) == "" {
			a.MissingTitleCount++
		}
		if strings.TrimSpace(p.Lang) == "" {
			a.MissingLangCount++
		}
		a.ImagesMissingAltTotal += p.ImagesMissingAlt
		a.InputsMissingLabelTotal += p.InputsMissingLabel
		if p.MixedContentCount > 0 {
			a.MixedContentPagesCount++
		}
		if p.RedirectHops >= 3 {
			a.RedirectChainPagesCount++
		}
	}
	return a
}

func categoryForKey(key string) findings.Category {
	switch key {
	case KeySEO:
		return findings.CategorySEO
	case KeyA11y:
		return findings.CategoryA11y
	case KeyContent:
		return findings.CategoryContent
	case KeyPerformance:
		return findings.CategoryPerformance
	case KeyIndexacao:
		return findings.CategoryIndexacao
	case KeyCritical:
		return findings.CategoryCritical
	default:
		return ""
	}
}

func buildSection(key, summary string, candidates []findings.Finding) Section {
	sorted := make([]findings.Finding, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity > sorted[j].Severity
		}
		return sorted[i].Title < sorted[j].Title
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}

	score := 100
	for _, f := range sorted {
		score -= severityPenalty[f.Severity]
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := statusForScore(score, hasCritical(sorted))

	return Section{
		Key:         key,
		Score:       score,
		Status:      status,
		Summary:     summary,
		Findings:    sorted,
		NextActions: nextActions(sorted),
		Measured:    measuredChecklists[key],
	}
}

// sectionSummary composes one category's headline sentence. Counts are
// the category's fired findings, before the per-section truncation.
func sectionSummary(key string, pageCount, findingCount int) string {
	if pageCount == 0 {
		switch key {
		case KeyCritical:
			if findingCount == 0 {
				return "Nenhum erro critico identificado."
			}
		case KeySEO:
			return "Nenhuma pagina HTML analisada para SEO."
		case KeyA11y:
			return "Nenhuma pagina HTML analisada para acessibilidade."
		case KeyContent:
			return "Nenhuma pagina HTML analisada para conteudo."
		case KeyPerformance:
			return "Nenhuma pagina HTML analisada para performance."
		case KeyIndexacao:
			return "Nenhuma pagina HTML analisada para indexacao."
		}
	}
	switch key {
	case KeySEO:
		return fmt.Sprintf("%d achados SEO em %d paginas HTML analisadas.", findingCount, pageCount)
	case KeyA11y:
		return fmt.Sprintf("%d achados de acessibilidade em verificacoes basicas.", findingCount)
	case KeyContent:
		return fmt.Sprintf("%d achados de conteudo com foco em cobertura e estrutura.", findingCount)
	case KeyPerformance:
		return fmt.Sprintf("%d achados de performance por proxies leves (TTFB, tamanho HTML e recursos).", findingCount)
	case KeyIndexacao:
		return fmt.Sprintf("%d achados de indexacao com base em robots, sitemap, noindex e canonical.", findingCount)
	case KeyCritical:
		return fmt.Sprintf("%d achados criticos relacionados a erro HTTP, redirect chain, mixed content e limites.", findingCount)
	default:
		return fmt.Sprintf("%d achados em %s.", findingCount, key)
	}
}

func overallSummary(pageCount, retainedFindings int) string {
	if pageCount == 0 {
		return "Nenhuma pagina HTML rastreada. Verifique disponibilidade e robots."
	}
	return fmt.Sprintf("Crawl em %d paginas HTML; %d achados relevantes.", pageCount, retainedFindings)
}

func hasCritical(list []findings.Finding) bool {
	for _, f := range list {
		if f.Severity == findings.SeverityCritical {
			return true
		}
	}
	return false
}

func statusForScore(score int, critical bool) string {
	switch {
	case critical || score < 60:
		return "critical"
	case score < 85:
		return "attention"
	default:
		return "ok"
	}
}

func nextActions(list []findings.Finding) []string {
	seen := make(map[string]bool)
	var actions []string
	for _, f := range list {
		if f.HowToFix == "" || seen[f.HowToFix] {
			continue
		}
		seen[f.HowToFix] = true
		actions = append(actions, f.HowToFix)
		if len(actions) == 5 {
			break
		}
	}
	if len(actions) == 0 {
		return []string{monitoringSentinel}
	}
	return actions
}
