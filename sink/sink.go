// Package sink persists extracted product records. Sinks are append-only:
// one record per call, no deduplication or update semantics — re-crawled
// pages simply append a newer record.
package sink

import (
	"context"

	"github.com/finsift/finsift/models"
)

// Sink receives each emitted record. Implementations must be safe for
// concurrent use; the crawler emits from multiple workers.
type Sink interface {
	// Put appends one complete record.
	Put(ctx context.Context, rec *models.ProductRecord) error

	// PutSnapshot stores the Markdown audit snapshot for a source URL.
	PutSnapshot(ctx context.Context, sourceURL, markdown string) error

	// Close flushes and releases the underlying storage.
	Close() error
}
