package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
)

// SheetName is the worksheet holding exported contacts.
const SheetName = "Contacts"

// maxExportRows bounds a single export; the wallet is personal-scale.
const maxExportRows = 10000

// Headers are the columns of the contacts sheet, in order.
var Headers = []string{
	"Name",
	"Company",
	"Title",
	"Email",
	"Phone",
	"Website",
	"Address",
	"Category",
	"Notes",
	"Created",
}

// Service produces XLSX bytes for contact exports.
type Service struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
}

func NewService(contacts repository.ContactRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{contacts: contacts, logger: logger}
}

// ExportContactsXLSX returns a workbook with one row per contact matching filter.
// Limit and Offset on the filter are ignored.
func (s *Service) ExportContactsXLSX(ctx context.Context, filter entity.ContactFilter) ([]byte, error) {
	start := time.Now()

	filter.Limit = maxExportRows
	filter.Offset = 0
	contacts, err := s.contacts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()

	// rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for r, c := range contacts {
		row := r + 2
		values := []any{
			c.Name,
			c.Company,
			c.Title,
			c.Email,
			c.Phone,
			c.Website,
			c.Address,
			c.Category,
			truncate(c.Notes, 500),
			c.CreatedAt.UTC().Format("2006-01-02"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "B", 26) // name, company
	_ = f.SetColWidth(SheetName, "C", "C", 24) // title
	_ = f.SetColWidth(SheetName, "D", "D", 30) // email
	_ = f.SetColWidth(SheetName, "E", "E", 18) // phone
	_ = f.SetColWidth(SheetName, "F", "F", 30) // website
	_ = f.SetColWidth(SheetName, "G", "G", 40) // address
	_ = f.SetColWidth(SheetName, "H", "H", 12) // category
	_ = f.SetColWidth(SheetName, "I", "I", 48) // notes
	_ = f.SetColWidth(SheetName, "J", "J", 12) // created

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(contacts),
		"query", filter.Query,
		"category", filter.Category,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
