package findings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/marcosalmeida/siteauditor/internal/extractor"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

// ruleFunc evaluates one rule over the page set and crawl metadata,
// returning nil when the rule does not fire.
type ruleFunc func(pages []extractor.PageRecord, meta Meta) *Finding

// pagesMatching returns the subset of pages for which pred holds, in
// pages' original (BFS discovery) order.
func pagesMatching(pages []extractor.PageRecord, pred func(extractor.PageRecord) bool) []extractor.PageRecord {
	var out []extractor.PageRecord
	for _, p := range pages {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func affectedURLs(matched []extractor.PageRecord) []string {
	urls := make([]string, 0, len(matched))
	for i, p := range matched {
		if i >= maxAffectedURLs {
			break
		}
		urls = append(urls, urlutil.String(p.URL))
	}
	return urls
}

func pageFinding(id string, category Category, severity Severity, title, description, impact, howToFix string, matched []extractor.PageRecord, evidence func(extractor.PageRecord) Evidence) *Finding {
	if len(matched) == 0 {
		return nil
	}
	return &Finding{
		ID:           id,
		Category:     category,
		Severity:     severity,
		Title:        title,
		Description:  description,
		Impact:       impact,
		HowToFix:     howToFix,
		Evidence:     []Evidence{evidence(matched[0])},
		AffectedURLs: affectedURLs(matched),
	}
}

func ruleSEOTitleMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.TrimSpace(p.Title) == ""
	})
	return pageFinding("seo_title_missing", CategorySEO, SeverityHigh,
		"Paginas sem titulo", "Uma ou mais paginas nao definem a tag <title>.",
		"Paginas sem titulo prejudicam a relevancia nos resultados de busca.",
		"Defina um <title> descritivo e unico para cada pagina.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "title", Value: "", Metric: "title_length=0"}
		})
}

func ruleSEOTitleLength(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(p.Title))
		return n > 0 && (n < 15 || n > 60)
	})
	return pageFinding("seo_title_length", CategorySEO, SeverityMedium,
		"Titulo fora do tamanho ideal", "O titulo de uma ou mais paginas esta curto demais ou longo demais.",
		"Titulos mal dimensionados sao truncados ou pouco descritivos nos resultados de busca.",
		"Ajuste o titulo para entre 15 e 60 caracteres.",
		matched, func(p extractor.PageRecord) Evidence {
			n := utf8.RuneCountInString(strings.TrimSpace(p.Title))
			return Evidence{URL: urlutil.String(p.URL), Selector: "title", Value: p.Title, Metric: fmt.Sprintf("title_length=%d", n)}
		})
}

func ruleSEOMetaDescriptionMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.TrimSpace(p.MetaDescription) == ""
	})
	return pageFinding("seo_meta_description_missing", CategorySEO, SeverityMedium,
		"Meta description ausente", "Uma ou mais paginas nao definem meta description.",
		"Sem meta description, buscadores geram um resumo proprio, muitas vezes pouco atraente.",
		"Escreva uma meta description unica resumindo o conteudo da pagina.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "meta[name=description]", Metric: "meta_description_length=0"}
		})
}

func ruleSEOMetaDescriptionLength(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(p.MetaDescription))
		return n > 0 && (n < 70 || n > 160)
	})
	return pageFinding("seo_meta_description_length", CategorySEO, SeverityLow,
		"Meta description fora do tamanho ideal", "A meta description de uma ou mais paginas esta curta ou longa demais.",
		"Descricoes mal dimensionadas sao truncadas nos resultados de busca.",
		"Ajuste a meta description para entre 70 e 160 caracteres.",
		matched, func(p extractor.PageRecord) Evidence {
			n := utf8.RuneCountInString(strings.TrimSpace(p.MetaDescription))
			return Evidence{URL: urlutil.String(p.URL), Value: p.MetaDescription, Metric: fmt.Sprintf("meta_description_length=%d", n)}
		})
}

func ruleSEOCanonicalMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.TrimSpace(p.Canonical) == ""
	})
	return pageFinding("seo_canonical_missing", CategorySEO, SeverityMedium,
		"Canonical ausente", "Uma ou mais paginas nao definem link rel=canonical.",
		"Sem canonical, conteudo duplicado pode dividir a relevancia entre URLs.",
		"Adicione <link rel=\"canonical\"> apontando para a URL preferida da pagina.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "link[rel=canonical]"}
		})
}

func ruleSEOH1Count(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.H1Count != 1
	})
	return pageFinding("seo_h1_count", CategorySEO, SeverityMedium,
		"Quantidade incorreta de H1", "Uma ou mais paginas nao possuem exatamente um <h1>.",
		"Multiplos ou nenhum H1 confunde a hierarquia de conteudo para buscadores.",
		"Garanta exatamente um <h1> por pagina, descrevendo o topico principal.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "h1", Metric: fmt.Sprintf("h1_count=%d", p.H1Count)}
		})
}

func ruleSEOBrokenInternalLinks(_ []extractor.PageRecord, meta Meta) *Finding {
	if len(meta.BrokenLinks) == 0 {
		return nil
	}
	severity := SeverityHigh
	if len(meta.BrokenLinks) >= 10 {
		severity = SeverityCritical
	}
	urls := make([]string, 0, len(meta.BrokenLinks))
	for i, bl := range meta.BrokenLinks {
		if i >= maxAffectedURLs {
			break
		}
		urls = append(urls, bl.URL)
	}
	first := meta.BrokenLinks[0]
	return &Finding{
		ID:          "seo_broken_internal_links",
		Category:    CategorySEO,
		Severity:    severity,
		Title:       "Links internos quebrados",
		Description: fmt.Sprintf("%d link(s) interno(s) apontam para paginas inacessiveis.", len(meta.BrokenLinks)),
		Impact:      "Links quebrados prejudicam a navegacao e desperdicam orcamento de rastreamento.",
		HowToFix:    "Corrija ou remova os links internos quebrados.",
		Evidence:    []Evidence{{URL: first.URL, Metric: "status=" + strconv.Itoa(first.Status)}},
		AffectedURLs: urls,
	}
}

func ruleA11yImgAltMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.ImagesMissingAlt > 0
	})
	if len(matched) == 0 {
		return nil
	}
	total := 0
	for _, p := range matched {
		total += p.ImagesMissingAlt
	}
	severity := SeverityMedium
	if total >= 20 {
		severity = SeverityHigh
	}
	return &Finding{
		ID:          "a11y_img_alt_missing",
		Category:    CategoryA11y,
		Severity:    severity,
		Title:       "Imagens sem texto alternativo",
		Description: fmt.Sprintf("%d imagem(ns) sem atributo alt em %d pagina(s).", total, len(matched)),
		Impact:      "Usuarios de leitores de tela nao recebem descricao do conteudo visual.",
		HowToFix:    "Adicione um atributo alt descritivo a cada imagem com significado.",
		Evidence:    []Evidence{{URL: urlutil.String(matched[0].URL), Selector: "img", Metric: fmt.Sprintf("images_missing_alt=%d", matched[0].ImagesMissingAlt)}},
		AffectedURLs: affectedURLs(matched),
	}
}

func ruleA11yInputLabelMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.InputsMissingLabel > 0
	})
	return pageFinding("a11y_input_label_missing", CategoryA11y, SeverityHigh,
		"Campos de formulario sem rotulo", "Um ou mais campos de formulario nao possuem rotulo acessivel.",
		"Usuarios de tecnologia assistiva nao conseguem identificar o proposito do campo.",
		"Associe cada campo a um <label>, aria-label ou aria-labelledby.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "input", Metric: fmt.Sprintf("inputs_missing_label=%d", p.InputsMissingLabel)}
		})
}

func ruleA11yLangMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.TrimSpace(p.Lang) == ""
	})
	return pageFinding("a11y_lang_missing", CategoryA11y, SeverityMedium,
		"Idioma da pagina nao declarado", "Uma ou mais paginas nao definem o atributo lang em <html>.",
		"Sem lang, leitores de tela podem pronunciar o conteudo no idioma errado.",
		"Defina <html lang=\"...\"> com o codigo de idioma correto.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "html"}
		})
}

func ruleA11yTitleMissing(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.TrimSpace(p.Title) == ""
	})
	return pageFinding("a11y_title_missing", CategoryA11y, SeverityMedium,
		"Paginas sem titulo de documento", "Uma ou mais paginas nao definem a tag <title>.",
		"O titulo do documento e o primeiro conteudo anunciado por leitores de tela.",
		"Defina um <title> descritivo para cada pagina.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "title"}
		})
}

func ruleContentThinPages(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.WordCount < 120
	})
	return pageFinding("content_thin_pages", CategoryContent, SeverityMedium,
		"Paginas com pouco conteudo", "Uma ou mais paginas possuem menos de 120 palavras.",
		"Conteudo raso tende a ranquear pior e agregar menos valor ao visitante.",
		"Amplie o conteudo textual da pagina com informacao relevante.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("word_count=%d", p.WordCount)}
		})
}

func ruleContentMissingH1(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.H1Count == 0
	})
	return pageFinding("content_missing_h1", CategoryContent, SeverityMedium,
		"Paginas sem cabecalho principal", "Uma ou mais paginas nao possuem nenhum <h1>.",
		"A ausencia de um cabecalho principal prejudica a leitura e a hierarquia do conteudo.",
		"Adicione um <h1> que resuma o topico central da pagina.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "h1", Metric: "h1_count=0"}
		})
}

func rulePerfSlowTTFB(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.TTFBMs > 1200
	})
	return pageFinding("perf_slow_ttfb", CategoryPerformance, SeverityHigh,
		"Tempo ate o primeiro byte elevado", "Uma ou mais paginas demoram mais de 1200ms para responder o primeiro byte.",
		"TTFB alto atrasa toda a renderizacao da pagina e prejudica a experiencia do usuario.",
		"Investigue o tempo de resposta do servidor e camadas de cache.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("ttfb_ms=%d", p.TTFBMs)}
		})
}

func rulePerfHeavyHTML(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.HTMLSizeBytes > 512_000
	})
	return pageFinding("perf_heavy_html", CategoryPerformance, SeverityMedium,
		"HTML pesado", "Uma ou mais paginas retornam um documento HTML maior que 500KB.",
		"Documentos HTML grandes atrasam o parsing inicial da pagina.",
		"Reduza marcacao redundante e considere paginacao ou carregamento sob demanda.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("html_size_bytes=%d", p.HTMLSizeBytes)}
		})
}

func rulePerfManyRequests(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.ResourceCount > 80
	})
	return pageFinding("perf_many_requests", CategoryPerformance, SeverityMedium,
		"Excesso de recursos por pagina", "Uma ou mais paginas carregam mais de 80 recursos.",
		"Muitas requisicoes aumentam o tempo total de carregamento.",
		"Combine, comprima ou remova recursos desnecessarios.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("resource_count=%d", p.ResourceCount)}
		})
}

func rulePerfRenderBlocking(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.RenderBlockingCount > 5
	})
	return pageFinding("perf_render_blocking", CategoryPerformance, SeverityMedium,
		"Recursos bloqueando renderizacao", "Uma ou mais paginas carregam mais de 5 recursos que bloqueiam a renderizacao.",
		"Scripts e folhas de estilo bloqueantes atrasam a primeira pintura da pagina.",
		"Adie ou torne assincronos scripts nao essenciais e minimize CSS bloqueante.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("render_blocking_count=%d", p.RenderBlockingCount)}
		})
}

func ruleIndexacaoRobotsMissing(_ []extractor.PageRecord, meta Meta) *Finding {
	if meta.RobotsPresent {
		return nil
	}
	return &Finding{
		ID:          "indexacao_robots_missing",
		Category:    CategoryIndexacao,
		Severity:    SeverityHigh,
		Title:       "robots.txt ausente",
		Description: "O site nao possui um arquivo robots.txt acessivel.",
		Impact:      "Sem robots.txt, buscadores nao recebem diretrizes explicitas de rastreamento.",
		HowToFix:    "Publique um robots.txt na raiz do dominio.",
	}
}

func ruleIndexacaoSitemapMissing(_ []extractor.PageRecord, meta Meta) *Finding {
	if meta.SitemapPresent {
		return nil
	}
	return &Finding{
		ID:          "indexacao_sitemap_missing",
		Category:    CategoryIndexacao,
		Severity:    SeverityMedium,
		Title:       "Sitemap ausente",
		Description: "Nao foi encontrado um sitemap.xml referenciado ou no caminho padrao.",
		Impact:      "Sem sitemap, a descoberta de novas paginas pelos buscadores pode ser mais lenta.",
		HowToFix:    "Publique um sitemap.xml e referencie-o no robots.txt.",
	}
}

func ruleIndexacaoNoindexPages(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return strings.Contains(strings.ToLower(p.RobotsMeta), "noindex")
	})
	return pageFinding("indexacao_noindex_pages", CategoryIndexacao, SeverityMedium,
		"Paginas marcadas como noindex", "Uma ou mais paginas possuem meta robots noindex.",
		"Paginas com noindex sao removidas ou nunca entram no indice dos buscadores.",
		"Revise se o noindex e intencional; remova-o das paginas que devem ser indexadas.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "meta[name=robots]", Value: p.RobotsMeta}
		})
}

func ruleIndexacaoCanonicalConflict(pages []extractor.PageRecord, meta Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		if strings.TrimSpace(p.Canonical) == "" {
			return false
		}
		canonicalURL, err := parseOrigin(p.Canonical)
		if err != nil {
			return false
		}
		return canonicalURL != meta.SeedOrigin
	})
	return pageFinding("indexacao_canonical_conflict", CategoryIndexacao, SeverityHigh,
		"Canonical aponta para outra origem", "Uma ou mais paginas declaram canonical para um dominio diferente do site auditado.",
		"Canonicals cruzados podem transferir relevancia para o dominio errado.",
		"Aponte o canonical para uma URL da mesma origem, ou remova-o se nao for intencional.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Selector: "link[rel=canonical]", Value: p.Canonical}
		})
}

func ruleCriticalHTTPErrors(pages []extractor.PageRecord, _ Meta) *Finding {
	type entry struct {
		url    string
		status int
	}
	var entries []entry
	for _, p := range pages {
		if p.Status >= 400 || p.Status == 0 {
			entries = append(entries, entry{urlutil.String(p.URL), p.Status})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	severity := SeverityHigh
	for _, e := range entries {
		if e.status >= 500 {
			severity = SeverityCritical
			break
		}
	}
	urls := make([]string, 0, len(entries))
	for i, e := range entries {
		if i >= maxAffectedURLs {
			break
		}
		urls = append(urls, e.url)
	}
	return &Finding{
		ID:          "critical_http_errors",
		Category:    CategoryCritical,
		Severity:    severity,
		Title:       "Erros HTTP criticos",
		Description: fmt.Sprintf("%d URL(s) retornaram erro de transporte ou status 4xx/5xx.", len(entries)),
		Impact:      "Paginas com erro sao inacessiveis para visitantes e buscadores.",
		HowToFix:    "Corrija o servidor ou redirecione as URLs com erro para conteudo valido.",
		Evidence:    []Evidence{{URL: entries[0].url, Metric: fmt.Sprintf("status=%d", entries[0].status)}},
		AffectedURLs: urls,
	}
}

func ruleCriticalRedirectChains(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.RedirectHops >= 3
	})
	return pageFinding("critical_redirect_chains", CategoryCritical, SeverityHigh,
		"Cadeias de redirecionamento longas", "Uma ou mais paginas passam por 3 ou mais redirecionamentos.",
		"Cadeias longas atrasam o carregamento e desperdicam orcamento de rastreamento.",
		"Reduza a cadeia para um unico redirecionamento direto ao destino final.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("redirect_hops=%d", p.RedirectHops)}
		})
}

func ruleCriticalMixedContent(pages []extractor.PageRecord, _ Meta) *Finding {
	matched := pagesMatching(pages, func(p extractor.PageRecord) bool {
		return p.MixedContentCount > 0
	})
	return pageFinding("critical_mixed_content", CategoryCritical, SeverityHigh,
		"Conteudo misto", "Uma ou mais paginas HTTPS carregam recursos via HTTP.",
		"Conteudo misto e bloqueado ou sinalizado como inseguro pelos navegadores.",
		"Sirva todos os recursos via HTTPS.",
		matched, func(p extractor.PageRecord) Evidence {
			return Evidence{URL: urlutil.String(p.URL), Metric: fmt.Sprintf("mixed_content_count=%d", p.MixedContentCount)}
		})
}

func ruleCriticalPartialCrawl(_ []extractor.PageRecord, meta Meta) *Finding {
	if !meta.IncludeLimitFindings || len(meta.LimitNotes) == 0 {
		return nil
	}
	return &Finding{
		ID:          "critical_partial_crawl",
		Category:    CategoryCritical,
		Severity:    SeverityCritical,
		Title:       "Rastreamento parcial",
		Description: "Um ou mais limites do rastreamento foram atingidos antes de cobrir todo o site: " + strings.Join(meta.LimitNotes, " "),
		Impact:      "O relatorio pode nao refletir o site inteiro.",
		HowToFix:    "Aumente os limites de rastreamento ou execute o audit novamente focando nas secoes nao cobertas.",
	}
}

// parseOrigin returns "scheme://host" for an absolute URL string.
func parseOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return Origin(*u), nil
}

// Origin returns u's "scheme://host" form, used to compare canonical
// links against the seed's origin.
func Origin(u url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + u.Host
}
