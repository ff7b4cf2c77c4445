package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

const sampleCard = "John Smith\nAcme Corporation Inc\nSenior Engineer\njohn.smith@acme.com\n(415) 555-0199\nwww.acme.com\n123 Main Street, Suite 400"

func TestExtractFields_SampleCard(t *testing.T) {
	t.Parallel()

	f := extract.ExtractFields(sampleCard)

	assert.Equal(t, "John Smith", f.Name)
	assert.Equal(t, "Acme Corporation Inc", f.Company)
	// third header line carries title keywords, so it is attributed to title
	assert.Equal(t, "Senior Engineer", f.Title)
	assert.Equal(t, "john.smith@acme.com", f.Email)
	assert.Equal(t, "+14155550199", f.Phone)
	assert.Equal(t, "https://www.acme.com", f.Website)
	assert.Equal(t, "123 Main Street, Suite 400", f.Address)
}

func TestExtractFields_TitleOutsideHeaderIsIgnored(t *testing.T) {
	t.Parallel()

	text := "John Smith\nAcme Corporation Inc\njohn.smith@acme.com\nSenior Engineer\n(415) 555-0199"

	f := extract.ExtractFields(text)

	assert.Equal(t, "John Smith", f.Name)
	assert.Equal(t, "Acme Corporation Inc", f.Company)
	assert.Empty(t, f.Title)
}

func TestExtractFields_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		f := extract.ExtractFields(in)
		assert.True(t, f.IsEmpty(), "input %q", in)
		assert.Equal(t, extract.ContactFields{}, f)
	}
}

func TestExtractFields_NoEmail(t *testing.T) {
	t.Parallel()

	f := extract.ExtractFields("Jane Doe\nGlobex LLC\n+44 20 7946 0958\nglobex.co.uk")

	assert.Empty(t, f.Email)
	assert.Equal(t, "Jane Doe", f.Name)
	assert.Equal(t, "Globex LLC", f.Company)
	assert.Equal(t, "+442079460958", f.Phone)
	assert.Equal(t, "https://globex.co.uk", f.Website)
}

func TestExtractFields_Phone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "parenthesized area code", text: "(212) 555-0100", want: "+12125550100"},
		{name: "dots", text: "212.555.0100", want: "+12125550100"},
		{name: "dashes", text: "212-555-0100", want: "+12125550100"},
		{name: "country code", text: "Tel: +1 212 555 0100", want: "+12125550100"},
		{name: "international", text: "+49 30 901820", want: "+4930901820"},
		{name: "eleven digits without plus", text: "1 212 555 0100", want: "+12125550100"},
		{name: "too short", text: "Suite 400", want: ""},
		{name: "two numbers on one line", text: "T 415 555 0199 415 555 0100", want: "+14155550199"},
		{name: "postcode on address line", text: "Suite 400 94105", want: ""},
		{name: "postcode before number", text: "Suite 400 94105\n(415) 555-0199", want: "+14155550199"},
		{name: "iso date", text: "2024-01-15", want: ""},
		{name: "date before number", text: "Since 15/01/2024\nM 212.555.0100", want: "+12125550100"},
		{name: "full number on address line", text: "9 Harbour Road Tel +44 20 7946 0958", want: "+442079460958"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract.ExtractFields(tt.text).Phone)
		})
	}
}

func TestExtractFields_PhoneWithoutDefaultCallingCode(t *testing.T) {
	t.Parallel()

	f := extract.Options{}.ExtractFields("(415) 555-0199")

	assert.Equal(t, "+4155550199", f.Phone)
}

func TestExtractFields_Website(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "keeps scheme", text: "http://example.org/about", want: "http://example.org/about"},
		{name: "adds scheme", text: "example.io", want: "https://example.io"},
		{name: "skips email domain", text: "sales@initech.com", want: ""},
		{name: "after email", text: "sales@initech.com\ninitech.com/contact", want: "https://initech.com/contact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract.ExtractFields(tt.text).Website)
		})
	}
}

func TestExtractFields_HeaderPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantName    string
		wantCompany string
		wantTitle   string
	}{
		{
			name:     "name shaped title goes to name first",
			text:     "Chief Executive Officer\nMaria Lopez",
			wantName: "Chief Executive Officer",
		},
		{
			name:        "company before title on same line",
			text:        "Ann Lee\nacme group engineer",
			wantName:    "Ann Lee",
			wantCompany: "acme group engineer",
		},
		{
			name:      "second title line ignored",
			text:      "ann lee\nproject manager\nlead designer",
			wantTitle: "project manager",
		},
		{
			name:        "fourth line not scanned",
			text:        "a\nb\nc\nInitech LLC",
			wantCompany: "",
		},
		{
			name:      "email and phone lines are skipped but counted",
			text:      "ann@x.io\n555-123-4567\nsenior analyst",
			wantTitle: "senior analyst",
		},
		{
			name:        "keywords need word boundaries",
			text:        "Lincoln Park\nincubator lab",
			wantName:    "Lincoln Park",
			wantCompany: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := extract.ExtractFields(tt.text)
			assert.Equal(t, tt.wantName, f.Name)
			assert.Equal(t, tt.wantCompany, f.Company)
			assert.Equal(t, tt.wantTitle, f.Title)
		})
	}
}

func TestExtractFields_NameShape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "José Álvarez", extract.ExtractFields("José Álvarez").Name)
	assert.Empty(t, extract.ExtractFields("Madonna").Name)
	assert.Empty(t, extract.ExtractFields("John smith").Name)
	assert.Empty(t, extract.ExtractFields("John Smith 3rd").Name)
	assert.Empty(t, extract.ExtractFields("A B C D E").Name)
}

func TestExtractFields_AddressScansWholeText(t *testing.T) {
	t.Parallel()

	text := "Ann Lee\nx\ny\nz\nw\n9 Harbour Road\n10 Other Lane"

	assert.Equal(t, "9 Harbour Road", extract.ExtractFields(text).Address)
}

func TestExtractFields_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{sampleCard, "", "garbage ### 12", "Jane Doe\nGlobex LLC\n+44 20 7946 0958"}
	for _, in := range inputs {
		assert.Equal(t, extract.ExtractFields(in), extract.ExtractFields(in))
	}
}

func TestExtractFields_NeverFabricates(t *testing.T) {
	t.Parallel()

	inputs := []string{
		sampleCard,
		"Dr. Who\nTARDIS Enterprises\nhead of time\nwho@tardis.space\n+44 (0) 20 1234 5678\nhttps://tardis.space/console\nFloor 3, Police Box Building",
		"||| ~~ \x00 ​ (555) 010-9999 @@ foo@bar.baz www.x.y.zz",
		strings.Repeat("Lorem Ipsum\n", 50),
	}
	for _, in := range inputs {
		f := extract.ExtractFields(in)
		assert.Equal(t, f, extract.Grounded(in, f), "input %q", in)
		for _, name := range []string{extract.FieldName, extract.FieldCompany, extract.FieldTitle, extract.FieldEmail, extract.FieldAddress} {
			if v := f.Get(name); v != "" {
				assert.Contains(t, in, v)
			}
		}
	}
}

func TestExtract_CarriesConfidence(t *testing.T) {
	t.Parallel()

	res := extract.Extract(extract.Input{Text: sampleCard, Confidence: 0.82})

	require.Len(t, res.Found, 7)
	assert.InDelta(t, 0.82, res.Confidence, 1e-6)
	assert.Equal(t, extract.ExtractFields(sampleCard), res.Fields)
}

func FuzzExtractFields(f *testing.F) {
	seeds := []string{
		sampleCard,
		"",
		"T 415 555 0199 415 555 0100",
		"Suite 400 94105\n2024-01-15",
		"sales@initech.com\ninitech.com/contact",
		"José Álvarez\n株式会社 Tanaka Co.\n+81 3-1234-5678\r\nhttps://example.jp/",
		"(((((((((((\n+ + + 1.2.3.4.5.6.7.8\n@@@.com www.",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		got := extract.ExtractFields(text)

		assert.Equal(t, got, extract.ExtractFields(text))
		assert.Equal(t, got, extract.Grounded(text, got))
		for _, name := range []string{extract.FieldName, extract.FieldCompany, extract.FieldTitle, extract.FieldEmail, extract.FieldAddress} {
			if v := got.Get(name); v != "" {
				assert.Contains(t, text, v)
			}
		}
	})
}
