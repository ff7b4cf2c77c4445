package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	contactsTable  = "contacts"
	cardFilesTable = "card_files"
	scanJobsTable  = "scan_jobs"
)

var (
	cardFilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "source_path", Type: field.TypeString},
		{Name: "content_hash", Type: field.TypeBytes, Unique: true},
		{Name: "filename", Type: field.TypeString},
		{Name: "file_ext", Type: field.TypeString},
		{Name: "file_size", Type: field.TypeInt},
		{Name: "uploaded_at", Type: field.TypeTime},
	}
	cardFilesSchema = &schema.Table{
		Name:       cardFilesTable,
		Columns:    cardFilesColumns,
		PrimaryKey: []*schema.Column{cardFilesColumns[0]},
	}

	contactsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "company", Type: field.TypeString, Default: ""},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "website", Type: field.TypeString, Default: ""},
		{Name: "address", Type: field.TypeString, Default: ""},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "notes", Type: field.TypeString, Default: ""},
		{Name: "source_file_id", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	contactsSchema = &schema.Table{
		Name:       contactsTable,
		Columns:    contactsColumns,
		PrimaryKey: []*schema.Column{contactsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "contacts_card_files_contacts",
				Columns:    []*schema.Column{contactsColumns[10]},
				RefColumns: []*schema.Column{cardFilesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "contact_email", Columns: []*schema.Column{contactsColumns[4]}},
			{Name: "contact_category", Columns: []*schema.Column{contactsColumns[8]}},
		},
	}

	scanJobsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "file_id", Type: field.TypeUUID},
		{Name: "contact_id", Type: field.TypeUUID, Nullable: true},
		{Name: "format", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
		{Name: "status", Type: field.TypeString},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "ocr_confidence", Type: field.TypeFloat32, Nullable: true},
		{Name: "needs_review", Type: field.TypeBool, Default: false},
		{Name: "ocr_text", Type: field.TypeString, Nullable: true},
		{Name: "ocr_method", Type: field.TypeString, Nullable: true},
		{Name: "extracted_json", Type: field.TypeString, Nullable: true},
		{Name: "model_name", Type: field.TypeString, Nullable: true},
	}
	scanJobsSchema = &schema.Table{
		Name:       scanJobsTable,
		Columns:    scanJobsColumns,
		PrimaryKey: []*schema.Column{scanJobsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "scan_jobs_card_files_jobs",
				Columns:    []*schema.Column{scanJobsColumns[1]},
				RefColumns: []*schema.Column{cardFilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "scan_jobs_contacts_jobs",
				Columns:    []*schema.Column{scanJobsColumns[2]},
				RefColumns: []*schema.Column{contactsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "scanjob_file_id_started_at", Columns: []*schema.Column{scanJobsColumns[1], scanJobsColumns[4]}},
			{Name: "scanjob_status", Columns: []*schema.Column{scanJobsColumns[6]}},
		},
	}

	tables = []*schema.Table{cardFilesSchema, contactsSchema, scanJobsSchema}
)

func init() {
	contactsSchema.ForeignKeys[0].RefTable = cardFilesSchema
	scanJobsSchema.ForeignKeys[0].RefTable = cardFilesSchema
	scanJobsSchema.ForeignKeys[1].RefTable = contactsSchema
}

// Migrate creates or updates the contacts, card_files and scan_jobs tables.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		d.logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	d.logger.Info("schema migrated", "dialect", d.dialect, "tables", len(tables))
	return nil
}
