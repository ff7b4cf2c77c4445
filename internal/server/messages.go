package server

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/share"
)

// Contacts

type CreateContactRequest struct {
	Contact entity.Contact `json:"contact"`
}

type ContactResponse struct {
	Contact *entity.Contact `json:"contact"`
}

type GetContactRequest struct {
	ID string `json:"id"`
}

type ListContactsRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

type ListContactsResponse struct {
	Contacts []*entity.Contact `json:"contacts"`
	Total    int               `json:"total"`
}

type UpdateContactRequest struct {
	Contact entity.Contact `json:"contact"`
}

type DeleteContactRequest struct {
	ID string `json:"id"`
}

type DeleteContactResponse struct{}

type ShareContactRequest struct {
	ID      string `json:"id"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

type ShareContactResponse struct {
	Links share.Links `json:"links"`
}

// Scans

type ScanCardRequest struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
	// Async hands the file to the background queue instead of scanning inline.
	Async bool `json:"async,omitempty"`
}

type ScanCardResponse struct {
	FileID       uuid.UUID       `json:"file_id"`
	Deduplicated bool            `json:"deduplicated"`
	HashHex      string          `json:"content_hash_hex"`
	Queued       bool            `json:"queued"`
	JobID        *uuid.UUID      `json:"job_id,omitempty"`
	ContactID    *uuid.UUID      `json:"contact_id,omitempty"`
	Created      bool            `json:"created"`
	NeedsReview  bool            `json:"needs_review"`
	Contact      *entity.Contact `json:"contact,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type ParseTextRequest struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence,omitempty"`
}

type ParseTextResponse struct {
	Analysis pipeline.Analysis `json:"analysis"`
}

type GetScanJobRequest struct {
	JobID string `json:"job_id"`
}

type GetScanJobResponse struct {
	Job  *entity.ScanJob  `json:"job"`
	File *entity.CardFile `json:"file,omitempty"`
}

// Export

type ExportContactsRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

type ExportContactsResponse struct {
	Filename string `json:"filename"`
	XLSX     []byte `json:"xlsx"`
}
