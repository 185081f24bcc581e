package simhash

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	text := "personal loan with a representative apr of 9.9 percent"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("identical texts produced different fingerprints")
	}
}

func TestFingerprint_SimilarTexts(t *testing.T) {
	a := Fingerprint("personal loan with a representative apr of 9.9 percent over 24 months")
	b := Fingerprint("personal loan with a representative apr of 7.9 percent over 24 months")

	if d := Distance(a, b); d > 16 {
		t.Errorf("near-identical texts have distance %d", d)
	}
}

func TestFingerprint_DifferentTexts(t *testing.T) {
	a := Fingerprint("personal loan with a representative apr of 9.9 percent over 24 months")
	b := Fingerprint("quarterly investor relations report and corporate governance disclosures archive")

	if d := Distance(a, b); d < 5 {
		t.Errorf("unrelated texts have distance %d", d)
	}
}

func TestFingerprint_EmptyAndWhitespace(t *testing.T) {
	if Fingerprint("") != 0 {
		t.Error("empty input should produce fingerprint 0")
	}
	if Fingerprint(" \t\n ") != 0 {
		t.Error("whitespace-only input should produce fingerprint 0")
	}
}

func TestFingerprint_SingleWord(t *testing.T) {
	if Fingerprint("loan") == 0 {
		t.Error("single word should produce a non-zero fingerprint")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Fingerprint("six month plan")
	b := Fingerprint("twelve month plan")
	if Distance(a, b) != Distance(b, a) {
		t.Error("distance is not symmetric")
	}
}

func TestSimilar(t *testing.T) {
	a := Fingerprint("zero percent apr for six months")
	if !Similar(a, a, 0) {
		t.Error("identical fingerprints should be similar at threshold 0")
	}

	b := Fingerprint("a wholly unrelated paragraph describing office furniture deliveries")
	d := Distance(a, b)
	if d > 0 && Similar(a, b, d-1) {
		t.Errorf("should not be similar below the actual distance %d", d)
	}
	if !Similar(a, b, d) {
		t.Errorf("should be similar at threshold equal to distance %d", d)
	}
}
