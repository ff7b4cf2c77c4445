package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

// Contact is a wallet entry, created by hand or from a scanned card.
type Contact struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name,omitempty"`
	Company      string     `json:"company,omitempty"`
	Title        string     `json:"title,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Website      string     `json:"website,omitempty"`
	Address      string     `json:"address,omitempty"`
	Category     string     `json:"category,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	SourceFileID *uuid.UUID `json:"source_file_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Fields projects the card fields of c.
func (c Contact) Fields() extract.ContactFields {
	return extract.ContactFields{
		Name:    c.Name,
		Company: c.Company,
		Title:   c.Title,
		Email:   c.Email,
		Phone:   c.Phone,
		Website: c.Website,
		Address: c.Address,
	}
}

// SetFields overwrites the card fields of c with f.
func (c *Contact) SetFields(f extract.ContactFields) {
	c.Name = f.Name
	c.Company = f.Company
	c.Title = f.Title
	c.Email = f.Email
	c.Phone = f.Phone
	c.Website = f.Website
	c.Address = f.Address
}

// DisplayName falls back to company, then email, when the name is missing.
func (c Contact) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Company != "":
		return c.Company
	default:
		return c.Email
	}
}

// ContactFilter narrows List queries. Query matches name, company or email.
type ContactFilter struct {
	Query    string
	Category string
	Limit    int
	Offset   int
}
