// Package narrator requests a one-sentence-per-section executive
// summary from a remote chat-completion endpoint and sanitizes the
// result. A sentence that is empty after sanitization is replaced by a
// rule-based one; any failure to get a usable completion is returned
// as an *UnavailableError.
package narrator

// SectionKeys are the exact seven keys every narration must contain,
// in the order the payload presents them to the model.
var SectionKeys = []string{"overall", "seo", "a11y", "content", "performance", "indexacao", "erros_criticos"}

// SectionInput is the narrow view of a report section the narrator is
// allowed to see: no URLs, no raw numeric metrics, nothing that could
// leak into the sanitized sentence unfiltered.
type SectionInput struct {
	Key            string
	Status         string
	Summary        string
	TopFindings    []string
	TopNextActions []string
}

// UnavailableError means the narrator could not obtain a usable
// completion for at least one outer attempt; the caller maps this to
// a 503 on /analyze_summary. It never affects /report.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "narrator unavailable: " + e.Reason
}
