// Package simhash provides locality-sensitive fingerprints of page text.
// The crawler uses them to skip near-duplicate product pages (print
// views, tracking-parameter variants, A/B copies) without storing full
// page text.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash of the given text. Tokens are
// overlapping word bigrams hashed with FNV-64a and accumulated into a
// bit vector; bigrams keep small wording changes from flipping too many
// bits while still separating genuinely different pages.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int

	token := func(s string) {
		h := fnv.New64a()
		h.Write([]byte(s))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	if len(words) == 1 {
		token(words[0])
	}
	for i := 0; i+1 < len(words); i++ {
		token(words[i] + " " + words[i+1])
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
