package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosalmeida/siteauditor/internal/audit"
	"github.com/marcosalmeida/siteauditor/internal/httpapi"
	"github.com/marcosalmeida/siteauditor/internal/narrator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body>hi</body></html>`)
	})
	return httptest.NewServer(mux)
}

type fallbackNarrator struct{}

func (fallbackNarrator) Narrate(_ context.Context, sections map[string]narrator.SectionInput) (map[string]string, error) {
	return narrator.Fallback(sections), nil
}

func newTestServer(t *testing.T, narr audit.Narrator) (*httptest.Server, string) {
	t.Helper()
	orch := audit.New("SimpleSiteAuditBot/1.0", narr)
	s := httpapi.NewServer(orch, "test-token")
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, "test-token"
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-API-Token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestReport_MissingTokenIs401(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/report", "", map[string]string{"url": "https://example.test/"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReport_WrongTokenIs401(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/report", "wrong", map[string]string{"url": "https://example.test/"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReport_InvalidURLIs400(t *testing.T) {
	srv, token := newTestServer(t, nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/report", token, map[string]string{"url": "not a url"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReport_SuccessReturnsTranslatedReport(t *testing.T) {
	site := newSiteServer(t)
	defer site.Close()
	srv, token := newTestServer(t, nil)

	resp := doRequest(t, http.MethodPost, srv.URL+"/report", token, map[string]string{"url": site.URL + "/"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "resumo_executivo")
	assert.Contains(t, body, "secoes")
	assert.Contains(t, body, "apendice")
}

func TestAnalyzeSummary_SuccessReturnsSevenKeys(t *testing.T) {
	site := newSiteServer(t)
	defer site.Close()
	srv, token := newTestServer(t, fallbackNarrator{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/analyze_summary", token, map[string]string{"url": site.URL + "/"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 7)
}

func TestAnalyzeSummary_NoNarratorIs503(t *testing.T) {
	site := newSiteServer(t)
	defer site.Close()
	srv, token := newTestServer(t, nil)

	resp := doRequest(t, http.MethodPost, srv.URL+"/analyze_summary", token, map[string]string{"url": site.URL + "/"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
