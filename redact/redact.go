// Package redact removes personally identifiable information from
// extracted text before it reaches any sink or log output.
package redact

import (
	"regexp"
	"strings"
)

// Placeholder tokens substituted for detected PII. The tokens contain no
// digits or "@", so re-running the redactor over already-redacted text is
// a no-op.
const (
	EmailToken = "[REDACTED_EMAIL]"
	PhoneToken = "[REDACTED_PHONE]"
	SSNToken   = "[REDACTED_SSN]"
)

var (
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)

	// phoneRe over-matches on purpose; candidates are confirmed by digit
	// count in Redact so that short numbers ("call ext. 1234") survive.
	phoneRe = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{5,}\d`)

	// dashedSSN is the exact DDD-DD-DDDD layout. Candidates with this
	// shape are left for the SSN pass even though their digit count would
	// satisfy the phone heuristic.
	dashedSSN = regexp.MustCompile(`\A\d{3}-\d{2}-\d{4}\z`)

	ssnRe = regexp.MustCompile(`\b\d{3}[\s\-]?\d{2}[\s\-]?\d{4}\b`)
)

// Redactor applies the PII substitution passes. The zero value is a
// disabled redactor; use New. Safe for concurrent use.
type Redactor struct {
	enabled bool
}

// New returns a Redactor. When enabled is false, Redact passes text
// through unchanged.
func New(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Enabled reports whether the redaction passes run.
func (r *Redactor) Enabled() bool {
	return r.enabled
}

// Redact replaces all email, phone-like, and SSN-like substrings with
// their placeholder tokens. Passes run in that fixed order; text consumed
// by an earlier pass is not re-matched by a later one.
func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}

	text = emailRe.ReplaceAllString(text, EmailToken)

	text = phoneRe.ReplaceAllStringFunc(text, func(m string) string {
		if countDigits(m) < 8 {
			return m
		}
		if dashedSSN.MatchString(strings.TrimSpace(m)) {
			return m
		}
		return PhoneToken
	})

	return ssnRe.ReplaceAllString(text, SSNToken)
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n++
		}
	}
	return n
}
