// Package classify implements the accept/skip gate that decides whether
// a fetched page warrants field extraction. The gate is deliberately
// cheap: false positives cost one wasted extraction pass (extractors
// degrade to empty fields), false negatives drop the page silently.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// Decision reasons returned by Classify.
const (
	ReasonURLKeyword = "url_keyword"
	ReasonTextMarker = "text_marker"
	ReasonNone       = "none"
)

// productPathRe matches URL paths that commonly host product pages.
var productPathRe = regexp.MustCompile(`(?i)(product|loan|bnpl|pay-later|offer|plan)`)

// textMarkers are literal substrings of the normalized page text that
// indicate rate or payment content.
var textMarkers = []string{"apr", "interest rate", "monthly payment"}

// IsProductPage reports whether a page is worth extracting, given its
// resolved URL and normalized (lower-cased) text.
func IsProductPage(rawURL, normalizedText string) bool {
	accept, _ := Classify(rawURL, normalizedText)
	return accept
}

// Classify returns the gate decision plus the signal that fired. The URL
// path is checked first; the text markers only run when the URL gives no
// signal. A URL that fails to parse contributes no signal but does not
// fail the page — the text check still runs.
func Classify(rawURL, normalizedText string) (accept bool, reason string) {
	if p := pathOf(rawURL); p != "" && productPathRe.MatchString(p) {
		return true, ReasonURLKeyword
	}
	for _, marker := range textMarkers {
		if strings.Contains(normalizedText, marker) {
			return true, ReasonTextMarker
		}
	}
	return false, ReasonNone
}

// pathOf extracts the path portion of a URL, falling back to the raw
// string when parsing fails so keyword matching still has a chance.
func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
