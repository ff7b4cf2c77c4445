package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
)

// OCROutcome is what the OCR stage persists on success.
type OCROutcome struct {
	Text        string
	Method      string
	Confidence  float32
	NeedsReview bool
}

// ParseOutcome is what the parse stage persists on success.
type ParseOutcome struct {
	Fields      json.RawMessage
	ContactID   *uuid.UUID
	NeedsReview bool
	ModelName   string
}

type ScanJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ScanJob, error)
	FinishOCR(ctx context.Context, jobID uuid.UUID, out OCROutcome) error
	FinishParseSuccess(ctx context.Context, jobID uuid.UUID, out ParseOutcome) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	SetContactID(ctx context.Context, jobID, contactID uuid.UUID) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ScanJob, error)
	GetWithFile(ctx context.Context, jobID uuid.UUID) (*entity.ScanJob, *entity.CardFile, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ScanJob, error)
}

var scanJobColumns = []string{
	"id", "file_id", "contact_id", "format", "started_at", "finished_at", "status", "error_message",
	"ocr_confidence", "needs_review", "ocr_text", "ocr_method", "extracted_json", "model_name",
}

type scanJobRepo struct {
	db     *DB
	files  CardFileRepository
	logger *slog.Logger
}

func NewScanJobRepository(db *DB, logger *slog.Logger) ScanJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanJobRepo{db: db, files: NewCardFileRepository(db, logger), logger: logger}
}

func scanJob(s rowScanner) (*entity.ScanJob, error) {
	var (
		j        entity.ScanJob
		contact  uuid.NullUUID
		finished sql.NullTime
		errMsg   sql.NullString
		conf     sql.NullFloat64
		text     sql.NullString
		method   sql.NullString
		fields   sql.NullString
		model    sql.NullString
	)
	if err := s.Scan(&j.ID, &j.FileID, &contact, &j.Format, &j.StartedAt, &finished, &j.Status, &errMsg,
		&conf, &j.NeedsReview, &text, &method, &fields, &model); err != nil {
		return nil, err
	}
	if contact.Valid {
		id := contact.UUID
		j.ContactID = &id
	}
	if finished.Valid {
		j.FinishedAt = &finished.Time
	}
	if conf.Valid {
		c := float32(conf.Float64)
		j.OCRConfidence = &c
	}
	if fields.Valid {
		j.ExtractedJSON = json.RawMessage(fields.String)
	}
	j.ErrorMessage = strPtr(errMsg)
	j.OCRText = strPtr(text)
	j.OCRMethod = strPtr(method)
	j.ModelName = strPtr(model)
	return &j, nil
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *scanJobRepo) Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ScanJob, error) {
	job := &entity.ScanJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		StartedAt: time.Now().UTC(),
		Status:    string(constants.JobStatusRunning),
	}
	query, args := r.db.builder().Insert(scanJobsTable).
		Columns("id", "file_id", "format", "started_at", "status", "needs_review").
		Values(job.ID.String(), job.FileID.String(), job.Format, job.StartedAt, job.Status, false).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("scan_job start failed", "file_id", fileID, "err", err)
		return nil, fmt.Errorf("start scan job: %w", err)
	}
	r.logger.Info("scan_job started", "job_id", job.ID, "file_id", fileID, "format", format)
	return job, nil
}

func (r *scanJobRepo) exec(ctx context.Context, jobID uuid.UUID, u *entsql.UpdateBuilder) error {
	query, args := u.Where(entsql.EQ("id", jobID.String())).Query()
	res, err := r.db.sql().ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scan job %s: %w", jobID, common.ErrNotFound)
	}
	return nil
}

func (r *scanJobRepo) FinishOCR(ctx context.Context, jobID uuid.UUID, out OCROutcome) error {
	u := r.db.builder().Update(scanJobsTable).
		Set("ocr_text", out.Text).
		Set("ocr_method", out.Method).
		Set("ocr_confidence", float64(out.Confidence)).
		Set("needs_review", out.NeedsReview).
		Set("status", string(constants.JobStatusOCROK))
	if err := r.exec(ctx, jobID, u); err != nil {
		r.logger.Error("scan_job finish(OCR_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.logger.Info("scan_job ocr finished", "job_id", jobID, "method", out.Method, "confidence", out.Confidence)
	return nil
}

func (r *scanJobRepo) FinishParseSuccess(ctx context.Context, jobID uuid.UUID, out ParseOutcome) error {
	u := r.db.builder().Update(scanJobsTable).
		Set("extracted_json", string(out.Fields)).
		Set("needs_review", out.NeedsReview).
		Set("model_name", nullString(out.ModelName)).
		Set("finished_at", time.Now().UTC()).
		Set("status", string(constants.JobStatusParsed))
	if out.ContactID != nil {
		u = u.Set("contact_id", out.ContactID.String())
	}
	if err := r.exec(ctx, jobID, u); err != nil {
		r.logger.Error("scan_job finish(PARSED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.logger.Info("scan_job finished (PARSED)", "job_id", jobID, "needs_review", out.NeedsReview)
	return nil
}

func (r *scanJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	u := r.db.builder().Update(scanJobsTable).
		Set("finished_at", time.Now().UTC()).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message)
	if err := r.exec(ctx, jobID, u); err != nil {
		r.logger.Error("scan_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.logger.Warn("scan_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *scanJobRepo) SetContactID(ctx context.Context, jobID, contactID uuid.UUID) error {
	return r.exec(ctx, jobID, r.db.builder().Update(scanJobsTable).Set("contact_id", contactID.String()))
}

func (r *scanJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ScanJob, error) {
	b := r.db.builder()
	query, args := b.Select(scanJobColumns...).From(b.Table(scanJobsTable)).Where(entsql.EQ("id", jobID.String())).Query()
	job, err := scanJob(r.db.sql().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan job %s: %w", jobID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scan job: %w", err)
	}
	return job, nil
}

func (r *scanJobRepo) GetWithFile(ctx context.Context, jobID uuid.UUID) (*entity.ScanJob, *entity.CardFile, error) {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	file, err := r.files.GetByID(ctx, job.FileID)
	if err != nil {
		return nil, nil, err
	}
	return job, file, nil
}

func (r *scanJobRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ScanJob, error) {
	b := r.db.builder()
	query, args := b.Select(scanJobColumns...).From(b.Table(scanJobsTable)).
		Where(entsql.EQ("file_id", fileID.String())).
		OrderBy(entsql.Desc("started_at")).
		Query()
	rows, err := r.db.sql().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan jobs: %w", err)
	}
	defer rows.Close()

	var out []*entity.ScanJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
