package share

import (
	"strings"

	"github.com/joseph-ayodele/b2breeze/internal/entity"
)

var vcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r\n", `\n`,
	"\n", `\n`,
	",", `\,`,
	";", `\;`,
)

// VCard renders c as vCard 3.0 (RFC 2426) with CRLF line endings.
func VCard(c *entity.Contact) string {
	var b strings.Builder
	prop := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	b.WriteString("BEGIN:VCARD\r\nVERSION:3.0\r\n")

	// FN and N are mandatory in 3.0
	fn := c.DisplayName()
	family, given := splitName(c.Name)
	b.WriteString("N:" + vcardEscaper.Replace(family) + ";" + vcardEscaper.Replace(given) + ";;;\r\n")
	b.WriteString("FN:" + vcardEscaper.Replace(fn) + "\r\n")

	prop("ORG", vcardEscaper.Replace(c.Company))
	prop("TITLE", vcardEscaper.Replace(c.Title))
	prop("TEL;TYPE=WORK,VOICE", c.Phone)
	prop("EMAIL;TYPE=INTERNET", c.Email)
	prop("URL", c.Website)
	if c.Address != "" {
		// street slot only; the extractor keeps the address as one line
		prop("ADR;TYPE=WORK", ";;"+vcardEscaper.Replace(c.Address)+";;;;")
	}
	prop("CATEGORIES", vcardEscaper.Replace(c.Category))
	prop("NOTE", vcardEscaper.Replace(c.Notes))

	b.WriteString("END:VCARD\r\n")
	return b.String()
}

// splitName treats the last token as the family name.
func splitName(name string) (family, given string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
	}
}
