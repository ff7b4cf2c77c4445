package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/share"
)

const maxListLimit = 500

type ContactsService struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
}

var _ ContactsServer = (*ContactsService)(nil)

func NewContactsService(contacts repository.ContactRepository, logger *slog.Logger) *ContactsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactsService{contacts: contacts, logger: logger}
}

func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, common.InvalidArgumentErrorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.InvalidArgumentErrorf("%s must be a UUID", field)
	}
	return id, nil
}

// validateContact trims c in place, checks its fields and canonicalizes the category.
func validateContact(c *entity.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Company = strings.TrimSpace(c.Company)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Category = strings.TrimSpace(c.Category)

	v := common.NewValidator().
		Field("name", c.Name, common.MaxLength(200)).
		Field("company", c.Company, common.MaxLength(200)).
		Field("title", c.Title, common.MaxLength(200)).
		Field("email", c.Email, common.Email, common.MaxLength(254)).
		Field("phone", c.Phone, common.Phone).
		Field("website", c.Website, common.MaxLength(500)).
		Field("address", c.Address, common.MaxLength(500)).
		Field("category", c.Category, common.Category).
		Field("notes", c.Notes, common.MaxLength(4000))
	if c.Name == "" && c.Company == "" && c.Email == "" && c.Phone == "" {
		v.Field("name", c.Name, common.Required)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}
	if c.Category != "" {
		cat, _ := constants.Canonicalize(c.Category)
		c.Category = string(cat)
	}
	return nil
}

func (s *ContactsService) CreateContact(ctx context.Context, req *CreateContactRequest) (*ContactResponse, error) {
	c := req.Contact
	c.ID = uuid.Nil
	c.SourceFileID = nil
	if err := validateContact(&c); err != nil {
		s.logger.Warn("contacts.create.invalid", "error", err)
		return nil, err
	}
	out, err := s.contacts.Create(ctx, &c)
	if err != nil {
		s.logger.Error("contacts.create.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Info("contacts.create.ok", "contact_id", out.ID)
	return &ContactResponse{Contact: out}, nil
}

func (s *ContactsService) GetContact(ctx context.Context, req *GetContactRequest) (*ContactResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &ContactResponse{Contact: c}, nil
}

func (s *ContactsService) ListContacts(ctx context.Context, req *ListContactsRequest) (*ListContactsResponse, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, common.InvalidArgumentError("limit and offset must be non-negative")
	}
	f := entity.ContactFilter{
		Query:  strings.TrimSpace(req.Query),
		Limit:  min(req.Limit, maxListLimit),
		Offset: req.Offset,
	}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		canon, ok := constants.Canonicalize(cat)
		if !ok {
			return nil, common.InvalidArgumentErrorf("unknown category %q", cat)
		}
		f.Category = string(canon)
	}

	items, err := s.contacts.List(ctx, f)
	if err != nil {
		s.logger.Error("contacts.list.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	total, err := s.contacts.Count(ctx, f)
	if err != nil {
		s.logger.Error("contacts.count.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Debug("contacts.list.ok", "count", len(items), "total", total)
	return &ListContactsResponse{Contacts: items, Total: total}, nil
}

// UpdateContact replaces the editable fields of an existing contact.
func (s *ContactsService) UpdateContact(ctx context.Context, req *UpdateContactRequest) (*ContactResponse, error) {
	if req.Contact.ID == uuid.Nil {
		return nil, common.InvalidArgumentError("contact.id is required")
	}
	existing, err := s.contacts.GetByID(ctx, req.Contact.ID)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	c := req.Contact
	if err := validateContact(&c); err != nil {
		s.logger.Warn("contacts.update.invalid", "contact_id", c.ID, "error", err)
		return nil, err
	}
	c.SourceFileID = existing.SourceFileID
	c.CreatedAt = existing.CreatedAt

	out, err := s.contacts.Update(ctx, &c)
	if err != nil {
		s.logger.Error("contacts.update.failed", "contact_id", c.ID, "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Info("contacts.update.ok", "contact_id", out.ID)
	return &ContactResponse{Contact: out}, nil
}

func (s *ContactsService) DeleteContact(ctx context.Context, req *DeleteContactRequest) (*DeleteContactResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return nil, common.ToStatus(err)
	}
	s.logger.Info("contacts.delete.ok", "contact_id", id)
	return &DeleteContactResponse{}, nil
}

func (s *ContactsService) ShareContact(ctx context.Context, req *ShareContactRequest) (*ShareContactResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &ShareContactResponse{Links: share.Build(c, req.Subject, req.Message)}, nil
}
