package server

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/async"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/ingest"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
)

const (
	maxUploadBytes = 20 << 20
	maxTextRunes   = 64 << 10
)

type ScanService struct {
	ingestor  ingest.Ingestor
	queue     async.Queue // nil: every scan runs inline
	processor *pipeline.Processor
	jobs      repository.ScanJobRepository
	contacts  repository.ContactRepository
	logger    *slog.Logger
}

var _ ScanServer = (*ScanService)(nil)

func NewScanService(
	ing ingest.Ingestor,
	queue async.Queue,
	proc *pipeline.Processor,
	jobs repository.ScanJobRepository,
	contacts repository.ContactRepository,
	logger *slog.Logger,
) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{ingestor: ing, queue: queue, processor: proc, jobs: jobs, contacts: contacts, logger: logger}
}

// ScanCard stores the uploaded card, then either queues it or runs the
// pipeline before answering. Pipeline failures are reported in the
// response; the job row records them too.
func (s *ScanService) ScanCard(ctx context.Context, req *ScanCardRequest) (*ScanCardResponse, error) {
	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "." || name == "" {
		return nil, common.InvalidArgumentError("filename is required")
	}
	if len(req.Data) == 0 {
		return nil, common.InvalidArgumentError("data is required")
	}
	if len(req.Data) > maxUploadBytes {
		return nil, common.InvalidArgumentErrorf("data exceeds %d bytes", maxUploadBytes)
	}

	r, err := s.ingestor.IngestBytes(ctx, name, req.Data)
	if err != nil {
		s.logger.Error("scan.ingest.failed", "filename", name, "error", err)
		return nil, common.ToStatus(err)
	}
	resp := &ScanCardResponse{FileID: r.FileID, Deduplicated: r.Deduplicated, HashHex: r.HashHex}

	if req.Async && s.queue != nil {
		job := async.Job{FileID: r.FileID, TraceID: common.RequestIDFromContext(ctx)}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			if errors.Is(err, async.ErrQueueClosed) {
				return nil, common.ToStatus(common.WrapError(common.ErrUnavailable, "scan queue closed"))
			}
			return nil, common.ToStatus(err)
		}
		resp.Queued = true
		return resp, nil
	}

	out, err := s.processor.ProcessFile(ctx, r.FileID)
	if out.JobID != uuid.Nil {
		jobID := out.JobID
		resp.JobID = &jobID
	}
	if err != nil {
		s.logger.Error("scan.pipeline.failed", "file_id", r.FileID, "error", err)
		resp.Error = err.Error()
		return resp, nil
	}
	resp.ContactID, resp.Created, resp.NeedsReview = out.ContactID, out.Created, out.NeedsReview
	if out.ContactID != nil {
		if c, err := s.contacts.GetByID(ctx, *out.ContactID); err == nil {
			resp.Contact = c
		}
	}
	s.logger.Info("scan.card.ok", "file_id", r.FileID, "job_id", out.JobID, "created", out.Created)
	return resp, nil
}

// ParseText runs extraction over text the caller already recognized.
func (s *ScanService) ParseText(ctx context.Context, req *ParseTextRequest) (*ParseTextResponse, error) {
	if utf8.RuneCountInString(req.Text) > maxTextRunes {
		return nil, common.InvalidArgumentErrorf("text exceeds %d characters", maxTextRunes)
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return nil, common.InvalidArgumentError("confidence must be within [0,1]")
	}
	a := s.processor.ProcessText(ctx, req.Text, req.Confidence)
	return &ParseTextResponse{Analysis: a}, nil
}

func (s *ScanService) GetScanJob(ctx context.Context, req *GetScanJobRequest) (*GetScanJobResponse, error) {
	id, err := parseID("job_id", req.JobID)
	if err != nil {
		return nil, err
	}
	job, file, err := s.jobs.GetWithFile(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &GetScanJobResponse{Job: job, File: file}, nil
}
