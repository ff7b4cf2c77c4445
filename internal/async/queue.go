package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("async: queue closed")

// Job is the smallest useful unit: one ingested card file to scan.
type Job struct {
	FileID      uuid.UUID
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// FileProcessor is the pipeline entry point workers call.
type FileProcessor interface {
	ProcessFile(ctx context.Context, fileID uuid.UUID) (pipeline.Outcome, error)
}

// ResultFunc observes every finished job.
type ResultFunc func(job Job, out pipeline.Outcome, err error)
