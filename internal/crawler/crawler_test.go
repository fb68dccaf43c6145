package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosalmeida/siteauditor/internal/config"
	"github.com/marcosalmeida/siteauditor/internal/crawler"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/timeutil"
)

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func testHarnessConfig(seed url.URL, maxPages, maxDepth, maxLinkChecks int, maxRuntime time.Duration) config.Config {
	return config.NewForTest(seed, maxPages, maxDepth, maxRuntime, maxLinkChecks, 2*time.Second, true, "SimpleSiteAuditBot/1.0")
}

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/about">About</a><a href="/contact">Contact</a></body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>About</title></head><body><a href="/deep">Deep</a></body></html>`)
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Contact</title></head><body>no links here</body></html>`)
	})
	mux.HandleFunc("/deep", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Deep</title></head><body>leaf page</body></html>`)
	})
	return httptest.NewServer(mux)
}

func TestCrawl_MaxPagesBoundary(t *testing.T) {
	srv := newSiteServer(t)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 1, 0, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Home", result.Pages[0].Title)
	assert.Contains(t, result.LimitNotes, "MAX_PAGES reached.")
}

func TestCrawl_BFSOrderingByDepth(t *testing.T) {
	srv := newSiteServer(t)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 2, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	depths := make([]int, len(result.Pages))
	for i, p := range result.Pages {
		depths[i] = p.Depth
	}
	for i := 1; i < len(depths); i++ {
		assert.LessOrEqual(t, depths[i-1], depths[i], "pages must be ordered by non-decreasing depth")
	}
}

func TestCrawl_MaxDepthExcludesDeeperPages(t *testing.T) {
	srv := newSiteServer(t)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 1, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	titles := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		titles[i] = p.Title
	}
	assert.Contains(t, titles, "Home")
	assert.Contains(t, titles, "About")
	assert.Contains(t, titles, "Contact")
	assert.NotContains(t, titles, "Deep")
}

func TestCrawl_LinkVerificationFindsBrokenLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/missing">Missing</a></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 2, 10, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	require.Len(t, result.BrokenInternalLinks, 1)
	assert.Equal(t, 404, result.BrokenInternalLinks[0].Status)
}

func TestCrawl_ZeroLinkChecksSkipsVerification(t *testing.T) {
	srv := newSiteServer(t)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 2, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	assert.Equal(t, 0, result.LinksChecked)
	assert.Empty(t, result.BrokenInternalLinks)
}

func TestCrawl_RobotsDisallowSkipsPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/private">Private</a><a href="/public">Public</a></body></html>`)
	})
	mux.HandleFunc("/private", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Private</title></head><body>secret</body></html>`)
	})
	mux.HandleFunc("/public", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Public</title></head><body>ok</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 2, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	titles := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		titles[i] = p.Title
	}
	assert.NotContains(t, titles, "Private")
	assert.Contains(t, titles, "Public")
	assert.Equal(t, 1, result.SkippedByRobots)
}

func TestCrawl_HTMLErrorPageIsExtractedWithRealStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(500)
		fmt.Fprint(w, `<html><head><title>Error</title></head><body>oops</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 0, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, 500, result.Pages[0].Status)
}

func TestCrawl_NonHTMLResponseExcludedFromPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := telemetry.NewRecorder()
	cr := crawler.New("SimpleSiteAuditBot/1.0", rec, timeutil.NewNoOpSleeper())

	seed := mustParseURL(t, srv.URL+"/")
	cfg := testHarnessConfig(seed, 10, 0, 0, 10*time.Second)

	result := cr.Crawl(context.Background(), cfg)

	assert.Empty(t, result.Pages)
	assert.Equal(t, 1, result.NonHTMLURLs)
}
