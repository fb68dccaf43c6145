package findings

import "github.com/marcosalmeida/siteauditor/internal/extractor"

// catalogue is the fixed rule list, evaluated in this order. Order
// matters only for LimitNotes-style determinism in tests; the section
// builder re-sorts within each category.
var catalogue = []ruleFunc{
	ruleSEOTitleMissing,
	ruleSEOTitleLength,
	ruleSEOMetaDescriptionMissing,
	ruleSEOMetaDescriptionLength,
	ruleSEOCanonicalMissing,
	ruleSEOH1Count,
	ruleSEOBrokenInternalLinks,
	ruleA11yImgAltMissing,
	ruleA11yInputLabelMissing,
	ruleA11yLangMissing,
	ruleA11yTitleMissing,
	ruleContentThinPages,
	ruleContentMissingH1,
	rulePerfSlowTTFB,
	rulePerfHeavyHTML,
	rulePerfManyRequests,
	rulePerfRenderBlocking,
	ruleIndexacaoRobotsMissing,
	ruleIndexacaoSitemapMissing,
	ruleIndexacaoNoindexPages,
	ruleIndexacaoCanonicalConflict,
	ruleCriticalHTTPErrors,
	ruleCriticalRedirectChains,
	ruleCriticalMixedContent,
	ruleCriticalPartialCrawl,
}

// Evaluate runs every rule in the catalogue over pages and meta,
// grouping the findings that fired by category.
func Evaluate(pages []extractor.PageRecord, meta Meta) map[Category][]Finding {
	out := make(map[Category][]Finding, len(AllCategories))
	for _, cat := range AllCategories {
		out[cat] = nil
	}

	for _, rule := range catalogue {
		finding := rule(pages, meta)
		if finding == nil {
			continue
		}
		out[finding.Category] = append(out[finding.Category], *finding)
	}

	return out
}
