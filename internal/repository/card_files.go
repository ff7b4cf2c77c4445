package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
)

type CardFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CardFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.CardFile, error)
	Create(ctx context.Context, f *entity.CardFile) (*entity.CardFile, error)
	// UpsertByHash returns the existing row for f.ContentHash, or creates
	// one. existed is true for the dedup path.
	UpsertByHash(ctx context.Context, f *entity.CardFile) (row *entity.CardFile, existed bool, err error)
}

var cardFileColumns = []string{"id", "source_path", "content_hash", "filename", "file_ext", "file_size", "uploaded_at"}

type cardFileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewCardFileRepository(db *DB, logger *slog.Logger) CardFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &cardFileRepo{db: db, logger: logger}
}

func (r *cardFileRepo) get(ctx context.Context, p *entsql.Predicate) (*entity.CardFile, error) {
	b := r.db.builder()
	query, args := b.Select(cardFileColumns...).From(b.Table(cardFilesTable)).Where(p).Query()

	var f entity.CardFile
	err := r.db.sql().QueryRowContext(ctx, query, args...).
		Scan(&f.ID, &f.SourcePath, &f.ContentHash, &f.Filename, &f.FileExt, &f.FileSize, &f.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card file: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card file: %w", err)
	}
	return &f, nil
}

func (r *cardFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CardFile, error) {
	return r.get(ctx, entsql.EQ("id", id.String()))
}

func (r *cardFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.CardFile, error) {
	return r.get(ctx, entsql.EQ("content_hash", hash))
}

func (r *cardFileRepo) Create(ctx context.Context, f *entity.CardFile) (*entity.CardFile, error) {
	row := *f
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UploadedAt.IsZero() {
		row.UploadedAt = time.Now().UTC()
	}
	query, args := r.db.builder().Insert(cardFilesTable).
		Columns(cardFileColumns...).
		Values(row.ID.String(), row.SourcePath, row.ContentHash, row.Filename, row.FileExt, row.FileSize, row.UploadedAt).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create card file", "source_path", row.SourcePath, "filename", row.Filename, "error", err)
		return nil, fmt.Errorf("create card file: %w", err)
	}
	return &row, nil
}

func (r *cardFileRepo) UpsertByHash(ctx context.Context, f *entity.CardFile) (*entity.CardFile, bool, error) {
	existing, err := r.GetByHash(ctx, f.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, f)
	if err != nil {
		// lost a race on the unique hash index
		if again, getErr := r.GetByHash(ctx, f.ContentHash); getErr == nil {
			return again, true, nil
		}
		r.logger.Error("failed to upsert card file by hash", "source_path", f.SourcePath, "error", err)
		return nil, false, err
	}
	return row, false, nil
}
