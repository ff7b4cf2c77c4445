package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

// DefaultMinConfidence is the OCR confidence under which a scan needs review.
const DefaultMinConfidence = 0.6

// Analysis is the persistence-free outcome of parsing card text.
type Analysis struct {
	Fields      extract.ContactFields `json:"fields"`
	Found       []string              `json:"found"`
	Confidence  float32               `json:"confidence"`
	NeedsReview bool                  `json:"needs_review"`
	Refined     bool                  `json:"refined"`
	Model       string                `json:"model,omitempty"`
}

// Analyzer runs the heuristics and, when configured, the refiner.
type Analyzer struct {
	Options       extract.Options
	Refiner       extract.FieldRefiner // optional
	MinConfidence float32
	Telemetry     *telemetry.Provider
	Logger        *slog.Logger
}

func NewAnalyzer(opts extract.Options, refiner extract.FieldRefiner, tel *telemetry.Provider, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{Options: opts, Refiner: refiner, MinConfidence: DefaultMinConfidence, Telemetry: tel, Logger: logger}
}

// Analyze never fails: a refiner error degrades to the heuristic result.
func (a *Analyzer) Analyze(ctx context.Context, in extract.Input) Analysis {
	res := a.Options.Extract(in)
	out := Analysis{Fields: res.Fields, Confidence: res.Confidence}

	if a.Refiner != nil && len(res.Fields.Missing()) > 0 && in.Text != "" {
		start := time.Now()
		refined, err := a.Refiner.Refine(ctx, in.Text, res.Fields)
		a.Telemetry.RecordStage(telemetry.StageRefine, err, time.Since(start))
		if err != nil {
			a.Logger.Warn("scan.refine.skipped", "error", err)
		} else {
			out.Refined = len(refined.Present()) > len(res.Fields.Present())
			out.Fields = refined
			if m, ok := a.Refiner.(interface{ ModelName() string }); ok && out.Refined {
				out.Model = m.ModelName()
			}
		}
	}

	out.Found = out.Fields.Present()
	out.NeedsReview = a.needsReview(out.Fields, out.Confidence)
	a.Telemetry.RecordExtraction(out.Found, out.Confidence, out.NeedsReview)
	return out
}

// needsReview flags contacts nobody could identify or reach, and scans the
// OCR engine was unsure about.
func (a *Analyzer) needsReview(f extract.ContactFields, conf float32) bool {
	if f.Name == "" && f.Company == "" {
		return true
	}
	if f.Email == "" && f.Phone == "" {
		return true
	}
	return conf > 0 && conf < a.MinConfidence
}
