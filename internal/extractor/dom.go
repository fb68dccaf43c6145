// Package extractor turns one fetched HTML page into a PageRecord: the
// typed signal bag the rule engine evaluates. Responsibilities:
//   - Parse HTML into a DOM tree
//   - Read the SEO/structure/a11y/performance signals spec'd for a page
//   - Collect and normalize internal links for the crawl frontier
//
// The extractor never decides whether a signal is "good" or "bad"; that
// judgment belongs to the rule engine. It only observes and counts.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

// nonLabelableInputTypes are input types that never need an accessible
// label (they either carry their own visible text or carry no meaning
// to assistive technology as a form control).
var nonLabelableInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"image":  true,
	"reset":  true,
}

type PageExtractor struct {
	recorder *telemetry.Recorder
}

func NewPageExtractor(recorder *telemetry.Recorder) *PageExtractor {
	return &PageExtractor{recorder: recorder}
}

// Extract parses htmlByte and populates the content-derived fields of a
// PageRecord for pageURL. Links are resolved against pageURL (the final
// URL after redirects) but kept only when same-origin with seedOrigin,
// the crawl's seed. Transport fields (status, timing, redirects) are the
// caller's responsibility to fill in afterward; Extract never sees them.
func (e *PageExtractor) Extract(pageURL, seedOrigin url.URL, htmlByte []byte) (PageRecord, *ExtractionError) {
	record, err := e.extract(pageURL, seedOrigin, htmlByte)
	if err != nil {
		e.recorder.RecordError("extractor", "PageExtractor.Extract",
			mapExtractionErrorToTelemetryCause(err), err.Error(),
			telemetry.NewAttr(telemetry.AttrURL, pageURL.String()))
		return PageRecord{}, err
	}
	return record, nil
}

func (e *PageExtractor) extract(pageURL, seedOrigin url.URL, htmlByte []byte) (PageRecord, *ExtractionError) {
	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return PageRecord{}, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseParseFail,
		}
	}

	if !hasMarkup(htmlByte) {
		return PageRecord{}, &ExtractionError{
			Message:   "input is not an HTML document",
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	gqDoc := goquery.NewDocumentFromNode(doc)

	record := PageRecord{
		URL:             pageURL,
		IsHTML:          true,
		Title:           collapseSpace(gqDoc.Find("title").First().Text()),
		MetaDescription: metaContent(gqDoc, "description"),
		Canonical:       canonicalHref(gqDoc, pageURL),
		RobotsMeta:      strings.ToLower(metaContent(gqDoc, "robots")),
		H1Count:         gqDoc.Find("h1").Length(),
		Lang:            strings.ToLower(strings.TrimSpace(gqDoc.Find("html").First().AttrOr("lang", ""))),
		WordCount:       countWords(gqDoc),
	}

	record.ImagesTotal, record.ImagesMissingAlt = auditImages(gqDoc)
	record.InputsTotal, record.InputsMissingLabel = auditInputs(gqDoc)

	resources := collectResources(gqDoc, pageURL)
	record.ResourceCount = len(resources)
	record.RenderBlockingCount = countRenderBlocking(gqDoc)
	record.MixedContentCount = countMixedContent(resources, pageURL)

	record.InternalLinks = collectInternalLinks(gqDoc, pageURL, seedOrigin)

	return record, nil
}

// hasMarkup reports whether src contains at least one doctype or start
// tag. The parsed tree cannot answer this: html.Parse synthesizes
// <html>, <head> and <body> for any input, even plain text or JSON.
func hasMarkup(src []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.DoctypeToken:
			return true
		}
	}
}

// metaContent returns the first <meta> whose name matches
// case-insensitively, with its content whitespace-collapsed.
func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name) {
			content = s.AttrOr("content", "")
			return false
		}
		return true
	})
	return collapseSpace(content)
}

// collapseSpace trims and folds internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// canonicalHref finds the first <link> whose rel attribute, split on
// whitespace and lowercased, contains the "canonical" token, then
// resolves its href absolutely against base and normalizes it.
func canonicalHref(doc *goquery.Document, base url.URL) string {
	var href string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, ok := s.Attr("rel")
		if !ok {
			return true
		}
		for _, token := range strings.Fields(strings.ToLower(rel)) {
			if token == "canonical" {
				href, _ = s.Attr("href")
				return false
			}
		}
		return true
	})
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	resolved, err := resolveRef(base, href)
	if err != nil {
		return ""
	}
	return urlutil.String(urlutil.Normalize(resolved))
}

// countWords strips script/style/noscript subtrees and counts whitespace-
// delimited tokens in the document's remaining text.
func countWords(doc *goquery.Document) int {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript").Remove()
	return len(strings.Fields(clone.Text()))
}

func auditImages(doc *goquery.Document) (total, missingAlt int) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		alt, exists := s.Attr("alt")
		if !exists || strings.TrimSpace(alt) == "" {
			missingAlt++
		}
	})
	return total, missingAlt
}

// auditInputs counts form inputs that need an accessible label and
// flags those lacking one. A label is present if any of:
//   - a non-empty aria-label
//   - a non-empty aria-labelledby
//   - a non-empty id referenced by some <label for="...">
//   - the input is a descendant of a <label>
func auditInputs(doc *goquery.Document) (total, missingLabel int) {
	labelFor := make(map[string]bool)
	doc.Find("label").Each(func(_ int, s *goquery.Selection) {
		if forID, exists := s.Attr("for"); exists && strings.TrimSpace(forID) != "" {
			labelFor[forID] = true
		}
	})

	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		typ := strings.ToLower(s.AttrOr("type", "text"))
		if nonLabelableInputTypes[typ] {
			return
		}
		total++

		if v, ok := s.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
			return
		}
		if v, ok := s.Attr("aria-labelledby"); ok && strings.TrimSpace(v) != "" {
			return
		}
		if id, ok := s.Attr("id"); ok && labelFor[id] {
			return
		}
		if s.Closest("label").Length() > 0 {
			return
		}
		missingLabel++
	})
	return total, missingLabel
}

// collectResources resolves every resource reference to an absolute URL,
// without deduplication: script/img/iframe/source references first, then
// <link href> references, each group in document order. Repeated resources cost
// repeated requests in a real browser and count as such here. A lazy
// data-src is the fallback when the element carries no src.
func collectResources(doc *goquery.Document, base url.URL) []url.URL {
	var resources []url.URL
	add := func(raw string) {
		if strings.TrimSpace(raw) == "" {
			return
		}
		resolved, err := resolveRef(base, raw)
		if err != nil {
			return
		}
		resources = append(resources, resolved)
	}

	doc.Find("script, img, iframe, source").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		add(src)
	})
	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("href", ""))
	})
	return resources
}

// countRenderBlocking counts <head> scripts with a src but no
// async/defer, and <head> stylesheet links: both force the browser to
// pause parsing.
func countRenderBlocking(doc *goquery.Document) int {
	count := 0
	head := doc.Find("head")

	head.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, hasSrc := s.Attr("src"); !hasSrc {
			return
		}
		if _, async := s.Attr("async"); async {
			return
		}
		if _, deferAttr := s.Attr("defer"); deferAttr {
			return
		}
		count++
	})

	head.Find("link").Each(func(_ int, s *goquery.Selection) {
		if rel := strings.ToLower(s.AttrOr("rel", "")); rel == "stylesheet" {
			count++
		}
	})

	return count
}

// countMixedContent counts resources loaded over plain HTTP from a page
// served over HTTPS.
func countMixedContent(resources []url.URL, pageURL url.URL) int {
	if !strings.EqualFold(pageURL.Scheme, "https") {
		return 0
	}
	count := 0
	for _, r := range resources {
		if strings.EqualFold(r.Scheme, "http") {
			count++
		}
	}
	return count
}

// collectInternalLinks resolves every <a href> against pageURL, keeps
// only http(s) links same-origin with the crawl seed, normalizes them,
// and dedups while preserving the order in which each link was first
// seen.
func collectInternalLinks(doc *goquery.Document, pageURL, seedOrigin url.URL) []url.URL {
	var links []url.URL
	seen := make(map[string]bool)

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		raw, exists := s.Attr("href")
		if !exists {
			return
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			hasSchemePrefix(trimmed, "mailto:") || hasSchemePrefix(trimmed, "tel:") || hasSchemePrefix(trimmed, "javascript:") {
			return
		}
		resolved, err := resolveRef(pageURL, raw)
		if err != nil {
			return
		}
		if !urlutil.IsHTTPURL(resolved) {
			return
		}
		if !urlutil.SameOrigin(resolved, seedOrigin) {
			return
		}
		normalized := urlutil.Normalize(resolved)
		key := urlutil.String(normalized)
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, normalized)
	})

	return links
}

// hasSchemePrefix reports whether s starts with prefix, case-insensitively.
func hasSchemePrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func resolveRef(base url.URL, ref string) (url.URL, error) {
	parsedRef, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return url.URL{}, err
	}
	resolved := base.ResolveReference(parsedRef)
	return *resolved, nil
}
