package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

// Outcome summarizes one file run through the pipeline.
type Outcome struct {
	FileID      uuid.UUID
	JobID       uuid.UUID
	ContactID   *uuid.UUID
	Created     bool
	NeedsReview bool
	Err         error
}

// Processor coordinates OCR (text extract) then field parsing.
type Processor struct {
	Logger   *slog.Logger
	OCR      *OCRStage
	Parse    *ParseStage
	Analyzer *Analyzer
}

func NewProcessor(logger *slog.Logger, ocr *OCRStage, parse *ParseStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, OCR: ocr, Parse: parse, Analyzer: parse.Analyzer}
}

// ProcessFile runs OCR for a fileID (creating a scan_job), then parses the
// job's text and upserts the contact.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (Outcome, error) {
	out := Outcome{FileID: fileID}

	jobID, ocrRes, err := p.OCR.Run(ctx, fileID)
	out.JobID = jobID
	if err != nil {
		p.Logger.Error("processor.ocr.failed", "file_id", fileID, "err", err)
		out.Err = err
		return out, err
	}
	p.Logger.Info("processor.ocr.ok",
		"file_id", fileID,
		"job_id", jobID,
		"method", ocrRes.Method,
		"pages", ocrRes.Pages,
		"confidence", ocrRes.Confidence,
	)

	res, err := p.Parse.Run(ctx, jobID)
	if err != nil {
		p.Logger.Error("processor.parse.failed", "job_id", jobID, "err", err)
		out.Err = err
		return out, err
	}
	out.ContactID, out.Created, out.NeedsReview = res.ContactID, res.Created, res.Analysis.NeedsReview
	p.Logger.Info("processor.parse.ok", "job_id", jobID)
	return out, nil
}

// ProcessText runs extraction (and refinement) over already-recognized
// text without touching storage.
func (p *Processor) ProcessText(ctx context.Context, text string, confidence float32) Analysis {
	return p.Analyzer.Analyze(ctx, extract.Input{Text: text, Confidence: confidence})
}

// ProcessAll runs ProcessFile over fileIDs with at most concurrency files in
// flight. Per-file failures are reported in the outcomes; the returned
// error is only set when ctx ends the batch early.
func (p *Processor) ProcessAll(ctx context.Context, fileIDs []uuid.UUID, concurrency int) ([]Outcome, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	outcomes := make([]Outcome, len(fileIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range fileIDs {
		if gctx.Err() != nil {
			outcomes[i] = Outcome{FileID: id, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			out, _ := p.ProcessFile(gctx, id)
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	p.Logger.Info("processor.batch.done", "files", len(fileIDs), "failed", failed, "concurrency", concurrency)
	return outcomes, ctx.Err()
}
