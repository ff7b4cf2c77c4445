package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

const sampleCard = `John Smith
Acme Corp
Senior Engineer
john@acme.com
(415) 555-0199
www.acme.com
100 Main Street`

// fakeExtractor answers by source path.
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]extract.TextExtractionResult
	errs    map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[path]; err != nil {
		return extract.TextExtractionResult{}, err
	}
	return f.results[path], nil
}

type fakeRefiner struct {
	fill extract.ContactFields
	err  error
}

func (f fakeRefiner) Refine(_ context.Context, _ string, base extract.ContactFields) (extract.ContactFields, error) {
	if f.err != nil {
		return base, f.err
	}
	return base.Merge(f.fill), nil
}

func (fakeRefiner) ModelName() string { return "fake-model" }

type harness struct {
	proc     *pipeline.Processor
	files    repository.CardFileRepository
	jobs     repository.ScanJobRepository
	contacts repository.ContactRepository
	ocr      *fakeExtractor
}

func newHarness(t *testing.T, refiner extract.FieldRefiner) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	h := &harness{
		files:    repository.NewCardFileRepository(db, nil),
		jobs:     repository.NewScanJobRepository(db, nil),
		contacts: repository.NewContactRepository(db, nil),
		ocr:      &fakeExtractor{results: map[string]extract.TextExtractionResult{}, errs: map[string]error{}},
	}
	tel := telemetry.NewProvider()
	an := pipeline.NewAnalyzer(extract.DefaultOptions, refiner, tel, nil)
	h.proc = pipeline.NewProcessor(nil,
		pipeline.NewOCRStage(h.files, h.jobs, h.ocr, tel, nil),
		pipeline.NewParseStage(h.jobs, h.contacts, an, tel, nil),
	)
	return h
}

func (h *harness) addFile(t *testing.T, name string, res extract.TextExtractionResult, err error) uuid.UUID {
	t.Helper()
	path := "/cards/" + name
	f, _, upErr := h.files.UpsertByHash(context.Background(), &entity.CardFile{
		SourcePath:  path,
		ContentHash: []byte(name),
		Filename:    name,
		FileExt:     "png",
		FileSize:    10,
	})
	require.NoError(t, upErr)
	h.ocr.results[path] = res
	if err != nil {
		h.ocr.errs[path] = err
	}
	return f.ID
}

func TestProcessFile_CreatesContact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	fileID := h.addFile(t, "a.png", extract.TextExtractionResult{Text: sampleCard, Method: "image-ocr", Confidence: 0.9}, nil)

	out, err := h.proc.ProcessFile(ctx, fileID)

	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.False(t, out.NeedsReview)
	require.NotNil(t, out.ContactID)

	c, err := h.contacts.GetByID(ctx, *out.ContactID)
	require.NoError(t, err)
	assert.Equal(t, extract.ContactFields{
		Name:    "John Smith",
		Company: "Acme Corp",
		Title:   "Senior Engineer",
		Email:   "john@acme.com",
		Phone:   "+14155550199",
		Website: "https://www.acme.com",
		Address: "100 Main Street",
	}, c.Fields())
	require.NotNil(t, c.SourceFileID)
	assert.Equal(t, fileID, *c.SourceFileID)

	job, err := h.jobs.Get(ctx, out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsed), job.Status)
	assert.JSONEq(t, `{"name":"John Smith","company":"Acme Corp","title":"Senior Engineer","email":"john@acme.com","phone":"+14155550199","website":"https://www.acme.com","address":"100 Main Street"}`, string(job.ExtractedJSON))

	// rescanning the same card merges into the same contact
	again, err := h.proc.ProcessFile(ctx, fileID)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, *out.ContactID, *again.ContactID)
}

func TestProcessFile_OCRFailureMarksJobFailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	fileID := h.addFile(t, "bad.png", extract.TextExtractionResult{}, errors.New("tesseract: exit status 1"))

	out, err := h.proc.ProcessFile(ctx, fileID)

	require.Error(t, err)
	job, err := h.jobs.Get(ctx, out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "exit status 1")
}

func TestProcessFile_LowConfidenceNeedsReview(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	fileID := h.addFile(t, "blurry.png", extract.TextExtractionResult{Text: sampleCard, Confidence: 0.4}, nil)

	out, err := h.proc.ProcessFile(context.Background(), fileID)

	require.NoError(t, err)
	assert.True(t, out.NeedsReview)
}

func TestProcessFile_NoFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	fileID := h.addFile(t, "blank.png", extract.TextExtractionResult{Text: "", Confidence: 0.9}, nil)

	out, err := h.proc.ProcessFile(ctx, fileID)

	require.NoError(t, err)
	assert.Nil(t, out.ContactID)
	assert.True(t, out.NeedsReview)
	n, err := h.contacts.Count(ctx, entity.ContactFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	text := "Jane Doe\njane@lumen.io\nLumen Labs Group"

	plain := newHarness(t, nil).proc.ProcessText(ctx, text, 0.95)
	assert.Equal(t, "Jane Doe", plain.Fields.Name)
	assert.Equal(t, "Lumen Labs Group", plain.Fields.Company)
	assert.False(t, plain.Refined)
	assert.False(t, plain.NeedsReview)

	refined := newHarness(t, fakeRefiner{fill: extract.ContactFields{Title: "Founder"}}).proc.ProcessText(ctx, text, 0.95)
	assert.True(t, refined.Refined)
	assert.Equal(t, "fake-model", refined.Model)
	assert.Equal(t, "Founder", refined.Fields.Title)
	assert.Contains(t, refined.Found, extract.FieldTitle)

	degraded := newHarness(t, fakeRefiner{err: errors.New("quota")}).proc.ProcessText(ctx, text, 0.95)
	assert.False(t, degraded.Refined)
	assert.Equal(t, plain.Fields, degraded.Fields)
}

func TestProcessText_NeedsReviewRules(t *testing.T) {
	t.Parallel()
	proc := newHarness(t, nil).proc
	ctx := context.Background()

	assert.True(t, proc.ProcessText(ctx, "jane@lumen.io", 0.9).NeedsReview, "no name or company")
	assert.True(t, proc.ProcessText(ctx, "Jane Doe\nLumen Inc", 0.9).NeedsReview, "no email or phone")
	assert.True(t, proc.ProcessText(ctx, "Jane Doe\njane@lumen.io", 0.3).NeedsReview, "low confidence")
	assert.False(t, proc.ProcessText(ctx, "Jane Doe\njane@lumen.io", 0).NeedsReview, "unknown confidence")
}

func TestProcessAll(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ids := []uuid.UUID{
		h.addFile(t, "1.png", extract.TextExtractionResult{Text: "Ann Lee\nann@one.io", Confidence: 0.9}, nil),
		h.addFile(t, "2.png", extract.TextExtractionResult{}, errors.New("unreadable")),
		h.addFile(t, "3.png", extract.TextExtractionResult{Text: "Bo Chan\nbo@three.io", Confidence: 0.9}, nil),
	}

	outs, err := h.proc.ProcessAll(context.Background(), ids, 2)

	require.NoError(t, err)
	require.Len(t, outs, 3)
	for i, o := range outs {
		assert.Equal(t, ids[i], o.FileID)
	}
	assert.NoError(t, outs[0].Err)
	assert.Error(t, outs[1].Err)
	assert.NoError(t, outs[2].Err)
}

func TestProcessAll_CanceledContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	id := h.addFile(t, "1.png", extract.TextExtractionResult{Text: "Ann Lee"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outs, err := h.proc.ProcessAll(ctx, []uuid.UUID{id}, 1)

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, outs, 1)
	assert.Error(t, outs[0].Err)
}
