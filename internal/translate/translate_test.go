package translate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosalmeida/siteauditor/internal/findings"
	"github.com/marcosalmeida/siteauditor/internal/report"
	"github.com/marcosalmeida/siteauditor/internal/translate"
)

func sampleReport() report.Report {
	finding := findings.Finding{
		ID:           "seo_title_missing",
		Category:     findings.CategorySEO,
		Severity:     findings.SeverityHigh,
		Title:        "Missing title",
		Description:  "desc",
		Impact:       "impact",
		HowToFix:     "add a title",
		Evidence:     []findings.Evidence{{URL: "https://example.test/", Selector: "title", Value: ""}},
		AffectedURLs: []string{"https://example.test/"},
	}
	seoSection := report.Section{
		Key: report.KeySEO, Score: 80, Status: "attention", Summary: "1 problema(s)",
		Findings: []findings.Finding{finding}, NextActions: []string{"add a title"},
		Measured: []string{"title & meta-desc"},
	}
	sections := map[string]report.Section{report.KeySEO: seoSection}
	for _, key := range []string{report.KeyA11y, report.KeyContent, report.KeyPerformance, report.KeyIndexacao, report.KeyCritical} {
		sections[key] = report.Section{Key: key, Score: 100, Status: "ok", Summary: "ok"}
	}

	return report.Report{
		URL:         "https://example.test/",
		GeneratedAt: time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC),
		Sections:    sections,
		Overall:     report.Section{Key: report.KeyOverall, Score: 96, Status: "ok", Summary: "tudo bem"},
		WorstPages:  []report.WorstPage{{URL: "https://example.test/", Status: 200, TotalIssues: 1, SEOIssues: 1}},
		Appendix: report.Appendix{
			PagesScanned: 2, LinksChecked: 3, AllInternalLinksCount: 3,
			BrokenLinksCount: 0, NonHTMLURLs: 0, SkippedByRobots: 0,
			RobotsPresent: true, SitemapEncontrado: false,
			MixedContentPagesCount: 0, CrawlParcial: false, HashConteudo: "abc123",
		},
	}
}

func TestReport_TranslatesSectionKeys(t *testing.T) {
	out := translate.Report(sampleReport(), translate.OrigemProcessamentoNovo)

	labels := make(map[string]bool)
	for _, sec := range out.Secoes {
		labels[sec.Chave] = true
	}
	assert.True(t, labels["seo"])
	assert.True(t, labels["acessibilidade"])
	assert.True(t, labels["conteudo"])
	assert.True(t, labels["indexacao"])
	assert.True(t, labels["erros_criticos"])
	assert.Equal(t, translate.OrigemProcessamentoNovo, out.OrigemDados)
}

func TestReport_TranslatesSeverityAndStatus(t *testing.T) {
	out := translate.Report(sampleReport(), translate.OrigemCache)

	var seoSection *translate.Secao
	for i := range out.Secoes {
		if out.Secoes[i].Chave == "seo" {
			seoSection = &out.Secoes[i]
		}
	}
	require.NotNil(t, seoSection)
	assert.Equal(t, "atencao", seoSection.Status)
	require.Len(t, seoSection.Achados, 1)
	assert.Equal(t, "alta", seoSection.Achados[0].Severidade)
	assert.Equal(t, "add a title", seoSection.Achados[0].ComoCorrigir)
}

func TestReport_PontuacoesKeyedByPortugueseLabel(t *testing.T) {
	out := translate.Report(sampleReport(), translate.OrigemCache)
	_, ok := out.ResumoExecutivo.Pontuacoes["seo"]
	assert.True(t, ok)
	_, ok = out.ResumoExecutivo.Pontuacoes["acessibilidade"]
	assert.True(t, ok)
}

func TestReport_AppendixFieldsCarryThrough(t *testing.T) {
	out := translate.Report(sampleReport(), translate.OrigemCache)
	assert.Equal(t, 2, out.Apendice.PaginasHTMLAnalisadas)
	assert.Equal(t, 3, out.Apendice.LinksInternosVerificados)
	assert.Equal(t, "abc123", out.Apendice.HashConteudo)
	assert.True(t, out.Apendice.RobotsEncontrado)
}

func TestReport_WorstPagesTranslated(t *testing.T) {
	out := translate.Report(sampleReport(), translate.OrigemCache)
	require.Len(t, out.PioresPaginas, 1)
	assert.Equal(t, 1, out.PioresPaginas[0].TotalAchados)
	assert.Equal(t, 1, out.PioresPaginas[0].AchadosSEO)
	assert.Equal(t, 200, out.PioresPaginas[0].StatusHTTP)
}
