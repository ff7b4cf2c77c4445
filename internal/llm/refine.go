package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

// Refiner asks a Generator for the fields the heuristics missed and keeps
// only answers that are grounded in the card text.
type Refiner struct {
	gen    Generator
	opts   extract.Options
	schema *jsonschema.Schema
	logger *slog.Logger
}

var _ extract.FieldRefiner = (*Refiner)(nil)

func NewRefiner(gen Generator, opts extract.Options, logger *slog.Logger) (*Refiner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildContactJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Refiner{gen: gen, opts: opts, schema: schema, logger: logger}, nil
}

// ModelName reports the underlying model for persistence.
func (r *Refiner) ModelName() string { return r.gen.Model() }

// Refine returns base with missing fields filled from the model. Values
// already in base are never replaced.
func (r *Refiner) Refine(ctx context.Context, text string, base extract.ContactFields) (extract.ContactFields, error) {
	missing := base.Missing()
	if len(missing) == 0 {
		return base, nil
	}

	rid := uuid.New().String()
	start := time.Now()
	r.logger.Info("llm.refine.start",
		"req_id", rid,
		"model", r.gen.Model(),
		"text_len", len(text),
		"missing", missing,
	)

	content, err := r.gen.Generate(ctx, BuildSystemPrompt(), BuildUserPrompt(text, base))
	if err != nil {
		r.logger.Error("llm.refine.generate_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return base, fmt.Errorf("refine: %w", err)
	}

	cleaned, dropped, err := NormalizeAndSanitizeJSON([]byte(content), r.logger)
	if err != nil {
		r.logger.Error("llm.refine.sanitize_failed", "req_id", rid, "error", err)
		return base, fmt.Errorf("refine: %w", err)
	}
	if err := ValidateJSON(r.schema, cleaned); err != nil {
		r.logger.Error("llm.refine.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned), "dropped", dropped,
		)
		return base, fmt.Errorf("refine: schema validation failed: %w", err)
	}

	var doc contactDoc
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return base, fmt.Errorf("refine: unmarshal fields: %w", err)
	}
	proposed := extract.ContactFields{
		Name:    doc.Name,
		Company: doc.Company,
		Title:   doc.Title,
		Email:   doc.Email,
		Phone:   doc.Phone,
		Website: doc.Website,
		Address: doc.Address,
	}
	if proposed.Phone != "" {
		proposed.Phone = r.opts.NormalizePhone(proposed.Phone)
	}

	grounded := r.opts.Grounded(text, proposed)
	if rejected := len(proposed.Present()) - len(grounded.Present()); rejected > 0 {
		r.logger.Warn("llm.refine.ungrounded_dropped", "req_id", rid, "count", rejected)
	}
	out := base.Merge(grounded)

	r.logger.Info("llm.refine.ok",
		"req_id", rid,
		"filled", len(out.Present())-len(base.Present()),
		"model_confidence", doc.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
