package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

const defaultListLimit = 50

type ContactRepository interface {
	Create(ctx context.Context, c *entity.Contact) (*entity.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	List(ctx context.Context, f entity.ContactFilter) ([]*entity.Contact, error)
	Count(ctx context.Context, f entity.ContactFilter) (int, error)
	Update(ctx context.Context, c *entity.Contact) (*entity.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpsertFromScan creates a contact from extracted card fields. When a
	// contact with the same e-mail (or, lacking one, the same phone) exists,
	// only its empty fields are filled. created reports which path ran.
	UpsertFromScan(ctx context.Context, f extract.ContactFields, fileID *uuid.UUID) (c *entity.Contact, created bool, err error)
}

var contactColumns = []string{
	"id", "name", "company", "title", "email", "phone", "website", "address",
	"category", "notes", "source_file_id", "created_at", "updated_at",
}

type contactRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewContactRepository(db *DB, logger *slog.Logger) ContactRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &contactRepo{db: db, logger: logger}
}

func scanContact(s rowScanner) (*entity.Contact, error) {
	var c entity.Contact
	var src uuid.NullUUID
	if err := s.Scan(&c.ID, &c.Name, &c.Company, &c.Title, &c.Email, &c.Phone, &c.Website,
		&c.Address, &c.Category, &c.Notes, &src, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if src.Valid {
		id := src.UUID
		c.SourceFileID = &id
	}
	return &c, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func (r *contactRepo) Create(ctx context.Context, c *entity.Contact) (*entity.Contact, error) {
	return r.create(ctx, r.db.sql(), c)
}

func (r *contactRepo) create(ctx context.Context, q queryer, c *entity.Contact) (*entity.Contact, error) {
	row := *c
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CreatedAt, row.UpdatedAt = now, now

	query, args := r.db.builder().Insert(contactsTable).
		Columns(contactColumns...).
		Values(row.ID.String(), row.Name, row.Company, row.Title, row.Email, row.Phone, row.Website,
			row.Address, row.Category, row.Notes, nullableUUID(row.SourceFileID), row.CreatedAt, row.UpdatedAt).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("contact.create.failed", "contact_id", row.ID, "error", err)
		return nil, fmt.Errorf("create contact: %w", err)
	}
	r.logger.Debug("contact.created", "contact_id", row.ID)
	return &row, nil
}

func (r *contactRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	return r.getBy(ctx, r.db.sql(), entsql.EQ("id", id.String()))
}

func (r *contactRepo) getBy(ctx context.Context, q queryer, p *entsql.Predicate) (*entity.Contact, error) {
	b := r.db.builder()
	query, args := b.Select(contactColumns...).
		From(b.Table(contactsTable)).
		Where(p).
		OrderBy("created_at").
		Limit(1).
		Query()
	c, err := scanContact(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *contactRepo) filtered(sel *entsql.Selector, f entity.ContactFilter) *entsql.Selector {
	if f.Query != "" {
		sel = sel.Where(entsql.Or(
			entsql.ContainsFold("name", f.Query),
			entsql.ContainsFold("company", f.Query),
			entsql.ContainsFold("email", f.Query),
		))
	}
	if f.Category != "" {
		sel = sel.Where(entsql.EQ("category", f.Category))
	}
	return sel
}

func (r *contactRepo) List(ctx context.Context, f entity.ContactFilter) ([]*entity.Contact, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	b := r.db.builder()
	sel := r.filtered(b.Select(contactColumns...).From(b.Table(contactsTable)), f).
		OrderBy(entsql.Desc("created_at"), "id").
		Limit(limit)
	if f.Offset > 0 {
		sel = sel.Offset(f.Offset)
	}
	query, args := sel.Query()

	rows, err := r.db.sql().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("contact.list.failed", "error", err)
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Contact, 0, limit)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contactRepo) Count(ctx context.Context, f entity.ContactFilter) (int, error) {
	b := r.db.builder()
	query, args := r.filtered(b.Select(entsql.Count("*")).From(b.Table(contactsTable)), f).Query()
	var n int
	if err := r.db.sql().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

func (r *contactRepo) Update(ctx context.Context, c *entity.Contact) (*entity.Contact, error) {
	return r.update(ctx, r.db.sql(), c)
}

func (r *contactRepo) update(ctx context.Context, q queryer, c *entity.Contact) (*entity.Contact, error) {
	row := *c
	row.UpdatedAt = time.Now().UTC()
	query, args := r.db.builder().Update(contactsTable).
		Set("name", row.Name).
		Set("company", row.Company).
		Set("title", row.Title).
		Set("email", row.Email).
		Set("phone", row.Phone).
		Set("website", row.Website).
		Set("address", row.Address).
		Set("category", row.Category).
		Set("notes", row.Notes).
		Set("source_file_id", nullableUUID(row.SourceFileID)).
		Set("updated_at", row.UpdatedAt).
		Where(entsql.EQ("id", row.ID.String())).
		Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("contact.update.failed", "contact_id", row.ID, "error", err)
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("contact %s: %w", row.ID, common.ErrNotFound)
	}
	return r.getBy(ctx, q, entsql.EQ("id", row.ID.String()))
}

func (r *contactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args := r.db.builder().Delete(contactsTable).Where(entsql.EQ("id", id.String())).Query()
	res, err := r.db.sql().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("contact.delete.failed", "contact_id", id, "error", err)
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %s: %w", id, common.ErrNotFound)
	}
	r.logger.Info("contact.deleted", "contact_id", id)
	return nil
}

func (r *contactRepo) UpsertFromScan(ctx context.Context, f extract.ContactFields, fileID *uuid.UUID) (*entity.Contact, bool, error) {
	var out *entity.Contact
	var created bool
	err := inTx(ctx, r.db.sql(), func(tx *sql.Tx) error {
		var match *entsql.Predicate
		var key string
		switch {
		case f.Email != "":
			match = entsql.EqualFold("email", f.Email)
			key = "email:" + strings.ToLower(f.Email)
		case f.Phone != "":
			match = entsql.EQ("phone", f.Phone)
			key = "phone:" + f.Phone
		}

		if match != nil {
			if err := r.lockScanKey(ctx, tx, key); err != nil {
				return err
			}
			existing, err := r.getBy(ctx, tx, match)
			switch {
			case err == nil:
				merged := *existing
				merged.SetFields(existing.Fields().Merge(f))
				if merged.SourceFileID == nil {
					merged.SourceFileID = fileID
				}
				out, err = r.update(ctx, tx, &merged)
				return err
			case !errors.Is(err, common.ErrNotFound):
				return err
			}
		}

		c := &entity.Contact{SourceFileID: fileID}
		c.SetFields(f)
		var err error
		out, err = r.create(ctx, tx, c)
		created = true
		return err
	})
	if err != nil {
		r.logger.Error("contact.upsert.failed", "error", err)
		return nil, false, err
	}
	r.logger.Info("contact.upserted", "contact_id", out.ID, "created", created)
	return out, created, nil
}

// lockScanKey serializes upserts of the same e-mail or phone on Postgres
// until tx ends. sqlite transactions already begin holding the write lock.
func (r *contactRepo) lockScanKey(ctx context.Context, tx *sql.Tx, key string) error {
	if r.db.dialect != dialect.Postgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("lock contact %s: %w", key, err)
	}
	return nil
}
