package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// FieldRefiner is an optional Stage 2b: fill fields the heuristics missed.
// Implementations must only return values grounded in text.
type FieldRefiner interface {
	Refine(ctx context.Context, text string, base ContactFields) (ContactFields, error)
}

// Input is what the OCR boundary hands to the extractor.
type Input struct {
	Text       string
	Confidence float32 // engine-reported, 0..1
}

// Result is ContactFields plus bookkeeping for review decisions.
type Result struct {
	Fields     ContactFields
	Found      []string
	Confidence float32
}

// Extract runs ExtractFields over in.Text and carries the OCR confidence along.
func Extract(in Input) Result { return DefaultOptions.Extract(in) }

func (o Options) Extract(in Input) Result {
	f := o.ExtractFields(in.Text)
	return Result{
		Fields:     f,
		Found:      f.Present(),
		Confidence: in.Confidence,
	}
}
