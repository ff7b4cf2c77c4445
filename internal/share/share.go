// Package share builds the links and vCards used to pass a contact on.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
)

// Links bundles every share format for one contact. Empty fields mean the
// contact lacks the data for that channel.
type Links struct {
	Mailto   string `json:"mailto,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	VCard    string `json:"vcard"`
}

// Summary renders the contact as plain text, one field per line.
func Summary(c *entity.Contact) string {
	var b strings.Builder
	line := func(label, v string) {
		if v == "" {
			return
		}
		if label != "" {
			b.WriteString(label)
			b.WriteString(": ")
		}
		b.WriteString(v)
		b.WriteString("\n")
	}
	line("", c.Name)
	line("", c.Title)
	line("", c.Company)
	line("Email", c.Email)
	line("Phone", c.Phone)
	line("Web", c.Website)
	line("Address", c.Address)
	return strings.TrimRight(b.String(), "\n")
}

// MailtoLink opens a new message, with no recipient, whose body is the contact summary.
func MailtoLink(c *entity.Contact, subject string) string {
	if subject == "" {
		subject = "Contact: " + c.DisplayName()
	}
	q := "subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(Summary(c))
	return "mailto:?" + q
}

// mailto readers expect %20 rather than '+' for spaces.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WhatsAppLink opens a chat with the contact's phone number.
func WhatsAppLink(c *entity.Contact, message string) (string, error) {
	digits := digitsOnly(c.Phone)
	if digits == "" {
		return "", fmt.Errorf("contact has no phone number: %w", common.ErrInvalidInput)
	}
	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Build collects every share format available for c.
func Build(c *entity.Contact, subject, message string) Links {
	l := Links{
		Mailto: MailtoLink(c, subject),
		VCard:  VCard(c),
	}
	if wa, err := WhatsAppLink(c, message); err == nil {
		l.WhatsApp = wa
	}
	return l
}
