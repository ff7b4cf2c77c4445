package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/export"
)

type ExportService struct {
	svc    *export.Service
	logger *slog.Logger
}

var _ ExportServer = (*ExportService)(nil)

func NewExportService(svc *export.Service, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{svc: svc, logger: logger}
}

func (s *ExportService) ExportContacts(ctx context.Context, req *ExportContactsRequest) (*ExportContactsResponse, error) {
	f := entity.ContactFilter{Query: strings.TrimSpace(req.Query)}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		canon, ok := constants.Canonicalize(cat)
		if !ok {
			return nil, common.InvalidArgumentErrorf("unknown category %q", cat)
		}
		f.Category = string(canon)
	}

	xlsx, err := s.svc.ExportContactsXLSX(ctx, f)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	name := "contacts-" + time.Now().UTC().Format("20060102") + ".xlsx"
	return &ExportContactsResponse{Filename: name, XLSX: xlsx}, nil
}
