package narrator

import (
	"regexp"
	"strings"
)

var (
	urlPattern         = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	numericPattern     = regexp.MustCompile(`\d+(?:[.,]\d+)?%?`)
	dotPattern         = regexp.MustCompile(`\.`)
	sentenceEndPattern = regexp.MustCompile(`[!?]`)
	spacePattern       = regexp.MustCompile(`\s+`)
	bannedPattern      = regexp.MustCompile(`(?i)an[áa]lise completa`)
)

// glossary translates a small set of English technical terms the LLM
// tends to echo back into the report's Portuguese vocabulary. Matching
// is case-insensitive; the rest of the sentence keeps its casing.
var glossary = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)mixed content`), "conteudo misto"},
	{regexp.MustCompile(`(?i)render blocking`), "bloqueio de renderizacao"},
	{regexp.MustCompile(`(?i)title`), "titulo"},
	{regexp.MustCompile(`(?i)heading`), "cabecalho"},
}

const bannedPhraseReplacement = "aprofundamento estrategico"

// sanitize strips URLs, HTML tags, numeric tokens, and punctuation
// that would otherwise leak machine-generated noise into the report,
// translates the glossary, and replaces the banned phrase. Every "."
// is replaced with a space (not removed) before any sentence split, so
// a multi-clause sentence survives as one joined clause instead of
// being truncated at its first period; only "!"/"?" are treated as
// hard sentence delimiters.
func sanitize(raw string) string {
	s := urlPattern.ReplaceAllString(raw, "")
	s = tagPattern.ReplaceAllString(s, "")
	for _, g := range glossary {
		s = g.pattern.ReplaceAllString(s, g.replacement)
	}
	s = bannedPattern.ReplaceAllString(s, bannedPhraseReplacement)
	s = numericPattern.ReplaceAllString(s, "")
	s = dotPattern.ReplaceAllString(s, " ")
	s = firstSentence(s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return s + "."
}

// firstSentence returns the text up to (not including) the first "!"
// or "?", or the whole string if neither appears. Periods are never a
// split point here: they are replaced with spaces by sanitize before
// this runs, so a multi-clause sentence is not truncated.
func firstSentence(s string) string {
	if loc := sentenceEndPattern.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

// fallbackSentence builds a rule-based sentence from a section's
// category and status when the LLM's sentence came back empty after
// sanitization, and for every key in Fallback.
func fallbackSentence(key, status string) string {
	focus := categoryFocus[key]
	if focus == "" {
		focus = "o site"
	}
	var verdict string
	switch status {
	case "critical":
		verdict = "exige atencao imediata"
	case "attention":
		verdict = "precisa de ajustes"
	default:
		verdict = "esta em boa forma"
	}
	return sanitize(focus + " " + verdict)
}

var categoryFocus = map[string]string{
	"overall":        "O panorama geral do site",
	"seo":            "A otimizacao para buscadores",
	"a11y":           "A acessibilidade do site",
	"content":        "O conteudo das paginas",
	"performance":    "A performance do site",
	"indexacao":      "A indexacao do site",
	"erros_criticos": "Os erros criticos encontrados",
}
