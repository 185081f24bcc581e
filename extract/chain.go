package extract

// candidate produces one possible value for a field. Candidates are
// evaluated lazily so cheap sources short-circuit expensive ones.
type candidate func() string

// firstNonEmpty evaluates candidates in priority order and returns the
// first trimmed, non-empty result. Later candidates are never evaluated
// once a value is found.
func firstNonEmpty(candidates ...candidate) string {
	for _, c := range candidates {
		if v := c(); v != "" {
			return v
		}
	}
	return ""
}
