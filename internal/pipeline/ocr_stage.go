package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/ocr"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

type OCRStage struct {
	FilesRepo     repository.CardFileRepository
	JobsRepo      repository.ScanJobRepository
	TextExtractor extract.TextExtractor
	Telemetry     *telemetry.Provider
	Logger        *slog.Logger
}

func NewOCRStage(files repository.CardFileRepository, jobs repository.ScanJobRepository, tx extract.TextExtractor, tel *telemetry.Provider, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{FilesRepo: files, JobsRepo: jobs, TextExtractor: tx, Telemetry: tel, Logger: logger}
}

// Run starts a scan_job, runs OCR, and persists the recognized text.
// Returns the job ID and the extraction summary. Field parsing is NOT run.
func (s *OCRStage) Run(ctx context.Context, fileID uuid.UUID) (jobID uuid.UUID, res extract.TextExtractionResult, err error) {
	start := time.Now()
	defer func() { s.Telemetry.RecordStage(telemetry.StageOCR, err, time.Since(start)) }()

	row, err := s.FilesRepo.GetByID(ctx, fileID)
	if err != nil {
		return uuid.Nil, res, fmt.Errorf("get file: %w", err)
	}

	format := constants.MapExtToFormat(row.FileExt)
	if format == "" {
		return uuid.Nil, res, fmt.Errorf("unsupported format: %s", row.FileExt)
	}

	job, err := s.JobsRepo.Start(ctx, row.ID, format)
	if err != nil {
		return uuid.Nil, res, err
	}

	ocrCtx := ocr.WithContentHash(common.WithScanJobID(ctx, job.ID.String()), hex.EncodeToString(row.ContentHash))
	res, err = s.TextExtractor.Extract(ocrCtx, row.SourcePath)
	if err != nil {
		if ferr := s.JobsRepo.FinishFailure(ctx, job.ID, err.Error()); ferr != nil {
			s.Logger.Error("scan.ocr.finish_failure_failed", "job_id", job.ID, "err", ferr)
		}
		return job.ID, res, fmt.Errorf("ocr: %w", err)
	}

	needsReview := false
	if format == constants.IMAGE && res.Confidence > 0 && res.Confidence < ocr.ImageConfidenceThreshold {
		s.Logger.Warn("scan.ocr.low_confidence", "file_id", fileID, "job_id", job.ID, "conf", res.Confidence)
		needsReview = true
	}

	out := repository.OCROutcome{
		Text:        res.Text,
		Method:      res.Method,
		Confidence:  res.Confidence,
		NeedsReview: needsReview,
	}
	if err := s.JobsRepo.FinishOCR(ctx, job.ID, out); err != nil {
		return job.ID, res, err
	}
	return job.ID, res, nil
}
