package extract

import (
	"regexp"
	"strings"
)

// Rate, term, and payment extraction over the normalized page text.
// Every pattern allows up to 20 filler characters between the keyword and
// the number so label/value markup ("APR: from 9.9%") still matches, but
// unrelated figures further away do not.

var (
	// aprAfterRe: rate indicator followed by a 1-3 digit number with an
	// optional decimal and optional percent sign.
	aprAfterRe = regexp.MustCompile(`(?:apr|interest rate|annual percentage rate)[^0-9]{0,20}(\d{1,3}(?:\.\d+)?%?)`)

	// aprBeforeRe: the figure precedes the indicator, as in "0% APR".
	aprBeforeRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?%?)[^0-9]{0,20}(?:apr|interest rate|annual percentage rate)`)

	// termNumberRe: a number with a duration unit anywhere in the text.
	termNumberRe = regexp.MustCompile(`(\d{1,3})[\s\-]*(month|week|year)s?\b`)

	// termKeywordRe: bare fallback when no number+unit pair exists.
	termKeywordRe = regexp.MustCompile(`\b(term|months|weeks)\b`)

	// paymentRe: a currency-formatted figure near a payment phrase.
	paymentRe = regexp.MustCompile(`(?:monthly payment|pay per month|per month)[^0-9$€£]{0,20}([$€£]?\s?\d[\d,]*(?:\.\d{1,2})?)`)
)

// APR returns the first rate-like figure found near a rate indicator in
// the normalized text, or "". A figure directly in front of the indicator
// wins over one after it, so "0% APR for 6 months" yields "0%" rather
// than "6". No aggregation: first match wins.
func APR(normalizedText string) string {
	if m := aprBeforeRe.FindStringSubmatch(normalizedText); m != nil {
		return m[1]
	}
	if m := aprAfterRe.FindStringSubmatch(normalizedText); m != nil {
		return m[1]
	}
	return ""
}

// Term returns the first duration reference ("6 months"), falling back to
// the bare keyword when the text mentions terms without a number.
func Term(normalizedText string) string {
	if m := termNumberRe.FindStringSubmatch(normalizedText); m != nil {
		return m[1] + " " + m[2] + pluralSuffix(m[0])
	}
	if m := termKeywordRe.FindString(normalizedText); m != "" {
		return m
	}
	return ""
}

// pluralSuffix preserves the plural "s" from the matched source text.
func pluralSuffix(match string) string {
	if strings.HasSuffix(match, "s") {
		return "s"
	}
	return ""
}

// SampleMonthlyPayment captures the advertised payment figure verbatim.
// It is only meaningful on pages where a rate and a term were found; the
// caller gates on that precondition, this function just runs the search.
func SampleMonthlyPayment(normalizedText string) string {
	if m := paymentRe.FindStringSubmatch(normalizedText); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
