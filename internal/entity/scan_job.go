package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ScanJob records one OCR + extraction attempt over a card file.
type ScanJob struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"file_id"`
	ContactID     *uuid.UUID      `json:"contact_id,omitempty"`
	Format        string          `json:"format"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	Status        string          `json:"status"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	OCRConfidence *float32        `json:"ocr_confidence,omitempty"`
	NeedsReview   bool            `json:"needs_review"`
	OCRText       *string         `json:"ocr_text,omitempty"`
	OCRMethod     *string         `json:"ocr_method,omitempty"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
	ModelName     *string         `json:"model_name,omitempty"`
}
