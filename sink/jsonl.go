package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/finsift/finsift/models"
)

// JSONLSink appends records to a newline-delimited JSON file, one object
// per line. Snapshots go to a sibling "<name>.snapshots.jsonl" file so
// the record stream stays small and grep-able.
type JSONLSink struct {
	mu        sync.Mutex
	records   *os.File
	snapshots *os.File
	enc       *json.Encoder
}

// NewJSONL opens (or creates) the record file at path, creating parent
// directories as needed.
func NewJSONL(path string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("jsonl sink: create directory: %w", err)
	}

	records, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("jsonl sink: open %s: %w", path, err)
	}

	snapPath := snapshotPath(path)
	snapshots, err := os.OpenFile(snapPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("jsonl sink: open %s: %w", snapPath, err)
	}

	return &JSONLSink{
		records:   records,
		snapshots: snapshots,
		enc:       json.NewEncoder(records),
	}, nil
}

// snapshotPath derives the snapshot file name: records.jsonl →
// records.snapshots.jsonl.
func snapshotPath(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + ".snapshots" + ext
}

func (s *JSONLSink) Put(ctx context.Context, rec *models.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("jsonl sink: encode record: %w", err)
	}
	return nil
}

// snapshotEntry is one line of the snapshot file.
type snapshotEntry struct {
	SourceURL string `json:"source_url"`
	Markdown  string `json:"markdown"`
	StoredAt  string `json:"stored_at"`
}

func (s *JSONLSink) PutSnapshot(ctx context.Context, sourceURL, markdown string) error {
	entry := snapshotEntry{
		SourceURL: sourceURL,
		Markdown:  markdown,
		StoredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("jsonl sink: encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.snapshots.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("jsonl sink: write snapshot: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapErr := s.snapshots.Close()
	if err := s.records.Close(); err != nil {
		return err
	}
	return snapErr
}
