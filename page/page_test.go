package page

import (
	"strings"
	"testing"
)

func TestText_LowercasesAndCollapses(t *testing.T) {
	p, err := New("https://example.com/loans", `<html><body>
		<h1>Personal   Loan</h1>
		<p>From 9.9% APR</p>
		<script>var x = "HIDDEN";</script>
	</body></html>`)
	if err != nil {
		t.Fatal(err)
	}

	got := p.Text()
	if !strings.Contains(got, "personal loan") {
		t.Errorf("text not lower-cased/collapsed: %q", got)
	}
	if !strings.Contains(got, "9.9% apr") {
		t.Errorf("visible text missing: %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("script content leaked into text: %q", got)
	}
}

func TestText_Memoised(t *testing.T) {
	p, err := New("https://example.com", `<html><body><p>Once</p></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Text() != p.Text() {
		t.Error("Text() not stable across calls")
	}
}

func TestHost_MalformedURL(t *testing.T) {
	p, err := New("://not a url", `<html><body></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if h := p.Host(); h != "" {
		t.Errorf("expected empty host for malformed URL, got %q", h)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Mixed\tCase \n Text ", "mixed case text"},
		{"", ""},
		{"already normal", "already normal"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplySelector(t *testing.T) {
	rawHTML := `<html><body><main><p>keep</p></main><footer>drop</footer></body></html>`

	got, err := ApplySelector(rawHTML, "main")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "keep") || strings.Contains(got, "drop") {
		t.Errorf("selector scoping failed: %q", got)
	}
}

func TestApplySelector_NoMatchFallsBack(t *testing.T) {
	rawHTML := `<html><body><p>content</p></body></html>`
	got, err := ApplySelector(rawHTML, ".does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	if got != rawHTML {
		t.Errorf("expected original HTML on no match, got %q", got)
	}
}

func TestApplySelector_BadSelector(t *testing.T) {
	if _, err := ApplySelector("<p>x</p>", "]["); err == nil {
		t.Error("expected error for invalid selector")
	}
}
