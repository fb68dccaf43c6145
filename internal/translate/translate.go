// Package translate renders the internal, English-keyed report.Report
// into the Portuguese JSON shape the HTTP API and CLI expose: section
// keys, severities, statuses and finding fields are all relabeled;
// nothing about scoring or ordering changes.
package translate

import (
	"time"

	"github.com/marcosalmeida/siteauditor/internal/findings"
	"github.com/marcosalmeida/siteauditor/internal/report"
)

// Origin values for resumo_executivo.origem_dados.
const (
	OrigemCache             = "cache"
	OrigemProcessamentoNovo = "processamento_novo"
)

var sectionKeyLabels = map[string]string{
	report.KeyOverall:     "visao_geral",
	report.KeySEO:         "seo",
	report.KeyA11y:        "acessibilidade",
	report.KeyContent:     "conteudo",
	report.KeyPerformance: "performance",
	report.KeyIndexacao:   "indexacao",
	report.KeyCritical:    "erros_criticos",
}

var severityLabels = map[findings.Severity]string{
	findings.SeverityCritical: "critica",
	findings.SeverityHigh:     "alta",
	findings.SeverityMedium:   "media",
	findings.SeverityLow:      "baixa",
}

var statusLabels = map[string]string{
	"ok":        "ok",
	"attention": "atencao",
	"critical":  "critico",
}

// Evidencia is a translated findings.Evidence.
type Evidencia struct {
	URL     string `json:"url,omitempty"`
	Seletor string `json:"seletor,omitempty"`
	Valor   string `json:"valor,omitempty"`
	Metrica string `json:"metrica,omitempty"`
}

// Achado is a translated findings.Finding.
type Achado struct {
	ID           string      `json:"id"`
	Categoria    string      `json:"categoria"`
	Severidade   string      `json:"severidade"`
	Titulo       string      `json:"titulo"`
	Descricao    string      `json:"descricao"`
	Impacto      string      `json:"impacto"`
	ComoCorrigir string      `json:"como_corrigir"`
	Evidencias   []Evidencia `json:"evidencias,omitempty"`
	URLsAfetadas []string    `json:"urls_afetadas,omitempty"`
}

// Secao is a translated report.Section.
type Secao struct {
	Chave         string   `json:"chave"`
	Score         int      `json:"score"`
	Status        string   `json:"status"`
	Resumo        string   `json:"resumo"`
	Achados       []Achado `json:"achados"`
	ProximasAcoes []string `json:"proximas_acoes"`
	Medido        []string `json:"medido"`
}

// PaginaRuim is a translated report.WorstPage.
type PaginaRuim struct {
	URL                   string `json:"url"`
	StatusHTTP            int    `json:"status_http"`
	TotalAchados          int    `json:"total_achados"`
	AchadosSEO            int    `json:"achados_seo"`
	AchadosAcessibilidade int    `json:"achados_acessibilidade"`
	AchadosConteudo       int    `json:"achados_conteudo"`
	AchadosPerformance    int    `json:"achados_performance"`
	AchadosIndexacao      int    `json:"achados_indexacao"`
	AchadosCriticos       int    `json:"achados_criticos"`
}

// Apendice is the translated report.Appendix.
type Apendice struct {
	PaginasHTMLAnalisadas     int    `json:"paginas_html_analisadas"`
	LinksInternosQuebrados    int    `json:"links_internos_quebrados"`
	PaginasComErroHTTP        int    `json:"paginas_com_erro_http"`
	PaginasNoindex            int    `json:"paginas_noindex"`
	PaginasSemMetaDescription int    `json:"paginas_sem_meta_description"`
	PaginasSemTitle           int    `json:"paginas_sem_title"`
	PaginasSemLang            int    `json:"paginas_sem_lang"`
	ImagensSemAlt             int    `json:"imagens_sem_alt"`
	InputsSemLabel            int    `json:"inputs_sem_label"`
	PaginasComMixedContent    int    `json:"paginas_com_mixed_content"`
	PaginasComRedirectChain   int    `json:"paginas_com_redirect_chain"`
	RobotsEncontrado          bool   `json:"robots_encontrado"`
	SitemapEncontrado         bool   `json:"sitemap_encontrado"`
	LinksInternosVerificados  int    `json:"links_internos_verificados"`
	TotalLinksInternos        int    `json:"total_links_internos"`
	URLsNaoHTML               int    `json:"urls_nao_html"`
	PulosPorRobots            int    `json:"pulos_por_robots"`
	CrawlParcial              bool   `json:"crawl_parcial"`
	HashConteudo              string `json:"hash_conteudo"`
}

// Pontuacao is one category's score/status pair inside resumo_executivo.
type Pontuacao struct {
	Score  int    `json:"score"`
	Status string `json:"status"`
}

// ResumoExecutivo is the report's headline roll-up.
type ResumoExecutivo struct {
	ScoreGeral    int                  `json:"score_geral"`
	StatusGeral   string               `json:"status_geral"`
	MensagemGeral string               `json:"mensagem_geral"`
	Pontuacoes    map[string]Pontuacao `json:"pontuacoes"`
}

// Relatorio is the complete, Portuguese-keyed audit report served by
// the HTTP API and printed by the CLI.
type Relatorio struct {
	URL             string          `json:"url"`
	GeradoEm        time.Time       `json:"gerado_em"`
	OrigemDados     string          `json:"origem_dados"`
	ResumoExecutivo ResumoExecutivo `json:"resumo_executivo"`
	Secoes          []Secao         `json:"secoes"`
	PioresPaginas   []PaginaRuim    `json:"piores_paginas"`
	Apendice        Apendice        `json:"apendice"`
}

// Report translates rep into its Portuguese JSON shape. origin must be
// OrigemCache or OrigemProcessamentoNovo.
func Report(rep report.Report, origin string) Relatorio {
	pontuacoes := make(map[string]Pontuacao, len(report.SectionOrder()))
	var secoes []Secao
	for _, key := range report.SectionOrder() {
		sec := rep.Sections[key]
		label := sectionKeyLabels[key]
		pontuacoes[label] = Pontuacao{Score: sec.Score, Status: statusLabel(sec.Status)}
		secoes = append(secoes, translateSection(label, sec))
	}

	return Relatorio{
		URL:         rep.URL,
		GeradoEm:    rep.GeneratedAt,
		OrigemDados: origin,
		ResumoExecutivo: ResumoExecutivo{
			ScoreGeral:    rep.Overall.Score,
			StatusGeral:   statusLabel(rep.Overall.Status),
			MensagemGeral: rep.Overall.Summary,
			Pontuacoes:    pontuacoes,
		},
		Secoes:        secoes,
		PioresPaginas: translateWorstPages(rep.WorstPages),
		Apendice:      translateAppendix(rep.Appendix),
	}
}

func translateSection(label string, sec report.Section) Secao {
	return Secao{
		Chave:         label,
		Score:         sec.Score,
		Status:        statusLabel(sec.Status),
		Resumo:        sec.Summary,
		Achados:       translateFindings(sec.Findings),
		ProximasAcoes: sec.NextActions,
		Medido:        sec.Measured,
	}
}

func translateFindings(list []findings.Finding) []Achado {
	out := make([]Achado, len(list))
	for i, f := range list {
		out[i] = Achado{
			ID:           f.ID,
			Categoria:    string(f.Category),
			Severidade:   severityLabels[f.Severity],
			Titulo:       f.Title,
			Descricao:    f.Description,
			Impacto:      f.Impact,
			ComoCorrigir: f.HowToFix,
			Evidencias:   translateEvidence(f.Evidence),
			URLsAfetadas: f.AffectedURLs,
		}
	}
	return out
}

func translateEvidence(list []findings.Evidence) []Evidencia {
	if len(list) == 0 {
		return nil
	}
	out := make([]Evidencia, len(list))
	for i, e := range list {
		out[i] = Evidencia{URL: e.URL, Seletor: e.Selector, Valor: e.Value, Metrica: e.Metric}
	}
	return out
}

func translateWorstPages(list []report.WorstPage) []PaginaRuim {
	out := make([]PaginaRuim, len(list))
	for i, p := range list {
		out[i] = PaginaRuim{
			URL:                   p.URL,
			StatusHTTP:            p.Status,
			TotalAchados:          p.TotalIssues,
			AchadosSEO:            p.SEOIssues,
			AchadosAcessibilidade: p.A11yIssues,
			AchadosConteudo:       p.ContentIssues,
			AchadosPerformance:    p.PerfIssues,
			AchadosIndexacao:      p.IndexacaoIssues,
			AchadosCriticos:       p.CriticalIssues,
		}
	}
	return out
}

func translateAppendix(a report.Appendix) Apendice {
	return Apendice{
		PaginasHTMLAnalisadas:     a.PagesScanned,
		LinksInternosQuebrados:    a.BrokenLinksCount,
		PaginasComErroHTTP:        a.HTTPErrorPagesCount,
		PaginasNoindex:            a.NoindexPagesCount,
		PaginasSemMetaDescription: a.MissingMetaDescriptionCount,
		PaginasSemTitle:           a.MissingTitleCount,
		PaginasSemLang:            a.MissingLangCount,
		ImagensSemAlt:             a.ImagesMissingAltTotal,
		InputsSemLabel:            a.InputsMissingLabelTotal,
		PaginasComMixedContent:    a.MixedContentPagesCount,
		PaginasComRedirectChain:   a.RedirectChainPagesCount,
		RobotsEncontrado:          a.RobotsPresent,
		SitemapEncontrado:         a.SitemapEncontrado,
		LinksInternosVerificados:  a.LinksChecked,
		TotalLinksInternos:        a.AllInternalLinksCount,
		URLsNaoHTML:               a.NonHTMLURLs,
		PulosPorRobots:            a.SkippedByRobots,
		CrawlParcial:              a.CrawlParcial,
		HashConteudo:              a.HashConteudo,
	}
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
