// Package urlutil provides deterministic URL validation and normalization
// shared by the validator, extractor and crawler.
package urlutil

import (
	"net"
	"net/url"
	"strings"
)

// Normalize applies the canonical form required by the audit engine:
// scheme lowercased, userinfo and fragment removed, empty path defaulted
// to "/", query preserved verbatim.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(u)) == Normalize(u)
func Normalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.User = nil
	canonical.Fragment = ""
	canonical.RawFragment = ""

	if canonical.Path == "" {
		canonical.Path = "/"
	}

	return canonical
}

// String renders u in the grammar <scheme>://<host>[:port]<path>?<query>.
func String(u url.URL) string {
	n := Normalize(u)
	s := n.Scheme + "://" + n.Host + n.Path
	if n.RawQuery != "" {
		s += "?" + n.RawQuery
	}
	return s
}

// SameOrigin reports whether a and b share scheme and network authority
// (host plus optional port).
func SameOrigin(a, b url.URL) bool {
	return lowerASCII(a.Scheme) == lowerASCII(b.Scheme) && a.Host == b.Host
}

// IsHTTPURL reports whether the scheme is http or https.
func IsHTTPURL(u url.URL) bool {
	s := lowerASCII(u.Scheme)
	return s == "http" || s == "https"
}

// Validate parses raw and returns the normalized URL, per the rules:
// trim whitespace; prepend https:// when no scheme is present; scheme
// must be http/https; host must be non-empty; a non-localhost,
// non-IP-literal host must contain at least one dot.
func Validate(raw string) (url.URL, *InvalidURLError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return url.URL{}, &InvalidURLError{Reason: "empty url"}
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return url.URL{}, &InvalidURLError{Reason: "malformed url: " + err.Error()}
	}

	scheme := lowerASCII(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return url.URL{}, &InvalidURLError{Reason: "scheme must be http or https"}
	}
	parsed.Scheme = scheme

	host := parsed.Hostname()
	if host == "" {
		return url.URL{}, &InvalidURLError{Reason: "host must not be empty"}
	}

	if host != "localhost" && net.ParseIP(host) == nil {
		if !strings.Contains(host, ".") {
			return url.URL{}, &InvalidURLError{Reason: "host must be localhost, an IP literal, or contain a dot"}
		}
	}

	return Normalize(*parsed), nil
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
