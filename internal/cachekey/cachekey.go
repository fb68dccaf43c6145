// Package cachekey builds the stable keys used by the audit
// orchestrator's two TTL caches, and the determinism-check content
// hash carried in the report appendix.
package cachekey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcosalmeida/siteauditor/internal/config"
	"github.com/marcosalmeida/siteauditor/pkg/hashutil"
)

// ForAudit builds AUDIT_CACHE's key: "<profile>|<normalized_url>".
func ForAudit(profile config.Profile, normalizedURL string) string {
	return fmt.Sprintf("%s|%s", profile, normalizedURL)
}

// ForSummary builds SUMMARY_CACHE's key: the normalized URL alone.
func ForSummary(normalizedURL string) string {
	return normalizedURL
}

// ContentHash hashes the seed URL together with every url=status pair
// of the crawl's status cache (fetched pages and link checks), giving
// callers a cheap way to tell whether two audit runs saw the same URLs
// with the same statuses. Page bodies are not part of the hash.
func ContentHash(seedURL string, statusCache map[string]int) string {
	urls := make([]string, 0, len(statusCache))
	for u := range statusCache {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var b strings.Builder
	b.WriteString(seedURL)
	for _, u := range urls {
		b.WriteByte('\n')
		b.WriteString(u)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(statusCache[u]))
	}

	return hashutil.HashBytes([]byte(b.String()))
}
