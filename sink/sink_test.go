package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/finsift/finsift/models"
)

func sampleRecord(sourceURL string) *models.ProductRecord {
	return &models.ProductRecord{
		Provider:             "ShopPay",
		ProductName:          "SplitPay Purchase Plan",
		ProductType:          models.ProductTypeBNPL,
		APR:                  "0%",
		Fees:                 "No late fees",
		Term:                 "6 months",
		Eligibility:          "Must be 18 or older",
		SampleMonthlyPayment: "$50",
		SourceURL:            sourceURL,
		ExtractedAt:          "2026-08-25T10:00:00Z",
	}
}

func TestJSONLSinkAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	s, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("NewJSONL: %v", err)
	}

	ctx := context.Background()
	urls := []string{
		"https://shoppay.example/products/splitpay",
		"https://shoppay.example/products/flexloan",
	}
	for _, u := range urls {
		if err := s.Put(ctx, sampleRecord(u)); err != nil {
			t.Fatalf("Put(%s): %v", u, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	var got []models.ProductRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec models.ProductRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	for i, u := range urls {
		if got[i].SourceURL != u {
			t.Errorf("line %d source_url = %q, want %q", i, got[i].SourceURL, u)
		}
	}
	if got[0].ProductType != models.ProductTypeBNPL {
		t.Errorf("product_type = %q, want %q", got[0].ProductType, models.ProductTypeBNPL)
	}
}

func TestJSONLSinkSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.jsonl")
	s, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("NewJSONL: %v", err)
	}

	if err := s.PutSnapshot(context.Background(), "https://shoppay.example/products/splitpay", "# SplitPay\n\n0% APR"); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "records.snapshots.jsonl"))
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	var entry snapshotEntry
	if err := json.Unmarshal(data[:len(data)-1], &entry); err != nil {
		t.Fatalf("snapshot line not valid JSON: %v", err)
	}
	if entry.SourceURL != "https://shoppay.example/products/splitpay" {
		t.Errorf("source_url = %q", entry.SourceURL)
	}
	if entry.Markdown == "" || entry.StoredAt == "" {
		t.Errorf("incomplete snapshot entry: %+v", entry)
	}
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rec := sampleRecord("https://shoppay.example/products/splitpay")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.PutSnapshot(ctx, rec.SourceURL, "# SplitPay"); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	var provider, productType, extractedAt string
	row := s.db.QueryRowContext(ctx,
		`SELECT provider, product_type, extracted_at FROM records WHERE source_url = ?`, rec.SourceURL)
	if err := row.Scan(&provider, &productType, &extractedAt); err != nil {
		t.Fatalf("select record: %v", err)
	}
	if provider != "ShopPay" || productType != models.ProductTypeBNPL {
		t.Errorf("stored (%q, %q), want (ShopPay, %q)", provider, productType, models.ProductTypeBNPL)
	}
	if extractedAt != rec.ExtractedAt {
		t.Errorf("extracted_at = %q, want %q", extractedAt, rec.ExtractedAt)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	if n != 1 {
		t.Errorf("snapshot count = %d, want 1", n)
	}
}

func TestSQLiteSinkAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	// Same URL twice must produce two rows, not an upsert.
	for i := 0; i < 2; i++ {
		if err := s.Put(ctx, sampleRecord("https://shoppay.example/products/splitpay")); err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("row count = %d, want 2", n)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
