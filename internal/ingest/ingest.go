package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result values reported to telemetry.
const (
	ResultNew          = "new"
	ResultDeduplicated = "deduplicated"
	ResultRejected     = "rejected"
	ResultFailed       = "failed"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	FileID       uuid.UUID
	Deduplicated bool
	HashHex      string
	FileExt      string
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the server and daemon depend on.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	IngestBytes(ctx context.Context, filename string, data []byte) (IngestionResult, error)
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
