package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

func mustPage(t *testing.T, url, html string) *page.Page {
	t.Helper()
	p, err := page.New(url, html)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFees_ClassAttribute(t *testing.T) {
	p := mustPage(t, "https://bank.example/loans", `<html><body>
		<div class="fee-schedule">Late fee: $25. Origination fee: 3%.</div>
	</body></html>`)

	got := Fees(p)
	if !strings.Contains(got, "Late fee: $25") {
		t.Errorf("Fees() = %q, want fee schedule text", got)
	}
}

func TestFees_TextFallback(t *testing.T) {
	p := mustPage(t, "https://bank.example/loans", `<html><body>
		<p>No hidden costs.</p>
		<p>A monthly service fee of $5 applies.</p>
	</body></html>`)

	got := Fees(p)
	if !strings.Contains(got, "service fee of $5") {
		t.Errorf("Fees() = %q, want the fee paragraph", got)
	}
}

func TestFees_ClassWithoutFeeTextIgnored(t *testing.T) {
	// Element has a fee-ish class but its text never mentions fees; the
	// confirmation filter must reject it.
	p := mustPage(t, "https://bank.example/loans", `<html><body>
		<div class="fee-banner">Limited time offer!</div>
	</body></html>`)

	if got := Fees(p); got != "" {
		t.Errorf("Fees() = %q, want empty", got)
	}
}

func TestFees_TruncatedTo400(t *testing.T) {
	long := strings.Repeat("fee details ", 100) // ~1200 chars
	p := mustPage(t, "https://bank.example/loans",
		`<html><body><p class="fees">`+long+`</p></body></html>`)

	got := Fees(p)
	if utf8.RuneCountInString(got) > models.MaxFeesLen {
		t.Errorf("fees snippet exceeds %d chars: %d", models.MaxFeesLen, utf8.RuneCountInString(got))
	}
}

func TestEligibility(t *testing.T) {
	p := mustPage(t, "https://bank.example/loans", `<html><body>
		<h2>Eligibility</h2>
		<p>Applicants must be 18 or older and a permanent resident.</p>
	</body></html>`)

	got := Eligibility(p)
	if !strings.Contains(strings.ToLower(got), "eligibility") {
		t.Errorf("Eligibility() = %q, want the eligibility heading element", got)
	}
}

func TestEligibility_Markers(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"requirements", `<p>Requirements: a valid bank account.</p>`, "Requirements"},
		{"who can apply", `<li>Who can apply? Anyone over 18.</li>`, "Who can apply"},
		{"absent", `<p>Nothing relevant.</p>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPage(t, "https://bank.example/x", "<html><body>"+tt.html+"</body></html>")
			got := Eligibility(p)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Eligibility() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Eligibility() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestEligibility_TruncatedTo800(t *testing.T) {
	long := "Eligibility: " + strings.Repeat("be employed and solvent, ", 100)
	p := mustPage(t, "https://bank.example/loans",
		`<html><body><p>`+long+`</p></body></html>`)

	got := Eligibility(p)
	if utf8.RuneCountInString(got) > models.MaxEligibilityLen {
		t.Errorf("eligibility snippet exceeds %d chars: %d",
			models.MaxEligibilityLen, utf8.RuneCountInString(got))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this is"},
		{"héllo wörld", 5, "héllo"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
