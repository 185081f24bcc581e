package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/finsift/finsift/models"
)

// SQLiteSink appends records to a local SQLite database. WAL mode keeps
// readers (ad-hoc sqlite3 queries during a crawl) from blocking the
// writer; the connection pool is capped at one because SQLite allows a
// single writer anyway.
type SQLiteSink struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	provider TEXT NOT NULL,
	product_name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	apr TEXT NOT NULL,
	fees TEXT NOT NULL,
	term TEXT NOT NULL,
	eligibility TEXT NOT NULL,
	sample_monthly_payment TEXT NOT NULL,
	source_url TEXT NOT NULL,
	extracted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_source_url ON records(source_url);
CREATE INDEX IF NOT EXISTS idx_records_provider ON records(provider);

CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_url TEXT NOT NULL,
	markdown TEXT NOT NULL,
	stored_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_source_url ON snapshots(source_url);
`

// NewSQLite opens (or creates) the database at path and applies the
// schema. Parent directories are created as needed.
func NewSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("sqlite sink: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite sink: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite sink: apply schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Put(ctx context.Context, rec *models.ProductRecord) error {
	const q = `INSERT INTO records
		(provider, product_name, product_type, apr, fees, term, eligibility, sample_monthly_payment, source_url, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.Provider, rec.ProductName, rec.ProductType,
		rec.APR, rec.Fees, rec.Term, rec.Eligibility,
		rec.SampleMonthlyPayment, rec.SourceURL, rec.ExtractedAt)
	if err != nil {
		return fmt.Errorf("sqlite sink: insert record: %w", err)
	}
	return nil
}

func (s *SQLiteSink) PutSnapshot(ctx context.Context, sourceURL, markdown string) error {
	const q = `INSERT INTO snapshots (source_url, markdown, stored_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, sourceURL, markdown, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite sink: insert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
