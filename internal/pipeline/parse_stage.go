package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

// ParseResult is what one parse run produced.
type ParseResult struct {
	JobID     uuid.UUID
	ContactID *uuid.UUID // nil when the card yielded no fields
	Created   bool
	Analysis  Analysis
}

type ParseStage struct {
	JobsRepo     repository.ScanJobRepository
	ContactsRepo repository.ContactRepository
	Analyzer     *Analyzer
	Telemetry    *telemetry.Provider
	Logger       *slog.Logger
}

func NewParseStage(jobs repository.ScanJobRepository, contacts repository.ContactRepository, an *Analyzer, tel *telemetry.Provider, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{JobsRepo: jobs, ContactsRepo: contacts, Analyzer: an, Telemetry: tel, Logger: logger}
}

// Run parses the OCR text of an existing job (jobID).
// Preconditions: job is OCR_OK with ocr_text set.
// Effects: upserts the contact, links job -> contact, writes extracted_json
// and needs_review, and marks the job PARSED.
func (s *ParseStage) Run(ctx context.Context, jobID uuid.UUID) (result ParseResult, err error) {
	start := time.Now()
	defer func() { s.Telemetry.RecordStage(telemetry.StageParse, err, time.Since(start)) }()
	result.JobID = jobID

	job, file, err := s.JobsRepo.GetWithFile(ctx, jobID)
	if err != nil {
		return result, fmt.Errorf("load job: %w", err)
	}
	if job.Status != string(constants.JobStatusOCROK) || job.OCRText == nil {
		return result, fmt.Errorf("job not ready for parse: status=%s ocr_text_empty=%t", job.Status, job.OCRText == nil)
	}

	var conf float32
	if job.OCRConfidence != nil {
		conf = *job.OCRConfidence
	}
	an := s.Analyzer.Analyze(ctx, extract.Input{Text: *job.OCRText, Confidence: conf})
	an.NeedsReview = an.NeedsReview || job.NeedsReview
	result.Analysis = an

	fail := func(err error) (ParseResult, error) {
		if ferr := s.JobsRepo.FinishFailure(ctx, job.ID, err.Error()); ferr != nil {
			s.Logger.Error("scan.parse.finish_failure_failed", "job_id", job.ID, "err", ferr)
		}
		return result, err
	}

	if !an.Fields.IsEmpty() {
		c, created, err := s.ContactsRepo.UpsertFromScan(ctx, an.Fields, &file.ID)
		if err != nil {
			return fail(fmt.Errorf("upsert contact: %w", err))
		}
		result.ContactID, result.Created = &c.ID, created
	} else {
		s.Logger.Warn("scan.parse.no_fields", "job_id", job.ID, "file_id", file.ID)
	}

	raw, err := json.Marshal(an.Fields)
	if err != nil {
		return fail(fmt.Errorf("encode fields: %w", err))
	}
	if err := s.JobsRepo.FinishParseSuccess(ctx, job.ID, repository.ParseOutcome{
		Fields:      raw,
		ContactID:   result.ContactID,
		NeedsReview: an.NeedsReview,
		ModelName:   an.Model,
	}); err != nil {
		return result, err
	}

	s.Logger.Info("scan.parse.ok",
		"job_id", job.ID,
		"contact_id", result.ContactID,
		"created", result.Created,
		"found", an.Found,
		"refined", an.Refined,
		"needs_review", an.NeedsReview,
	)
	return result, nil
}
