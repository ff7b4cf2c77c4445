package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

func TestGrounded(t *testing.T) {
	t.Parallel()

	in := extract.ContactFields{
		Name:    "John Smith",
		Company: "Acme Ltd", // not in text
		Title:   "Senior Engineer",
		Email:   "john.smith@acme.com",
		Phone:   "+14155550199",
		Website: "https://WWW.ACME.COM",
		Address: "123 Main Street, Suite 400",
	}

	got := extract.Grounded(sampleCard, in)

	assert.Equal(t, "John Smith", got.Name)
	assert.Empty(t, got.Company)
	assert.Equal(t, "Senior Engineer", got.Title)
	assert.Equal(t, "john.smith@acme.com", got.Email)
	assert.Equal(t, "+14155550199", got.Phone)
	assert.Equal(t, "https://WWW.ACME.COM", got.Website)
	assert.Equal(t, "123 Main Street, Suite 400", got.Address)
}

func TestGrounded_RejectsInventedPhoneAndWebsite(t *testing.T) {
	t.Parallel()

	got := extract.Grounded(sampleCard, extract.ContactFields{
		Phone:   "+14155550100",
		Website: "www.acme.com", // scheme must be normalized
	})

	assert.True(t, got.IsEmpty())
}

func TestGrounded_Website(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		site string
		want bool
	}{
		{name: "as printed", text: "www.acme.com", site: "https://www.acme.com", want: true},
		{name: "without www", text: "www.acme.com", site: "https://acme.com", want: true},
		{name: "path", text: "acme.com/team", site: "http://acme.com/team", want: true},
		{name: "email domain", text: "john@acme.com", site: "https://acme.com", want: false},
		{name: "word from a name", text: "John Smith", site: "https://Smith", want: false},
		{name: "other domain", text: "www.acme.com", site: "https://acme.co", want: false},
		{name: "empty host", text: "acme.com", site: "https://", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extract.Grounded(tt.text, extract.ContactFields{Website: tt.site})
			assert.Equal(t, tt.want, got.Website != "")
		})
	}
}

func TestGrounded_PhoneFromSharedLine(t *testing.T) {
	t.Parallel()

	got := extract.Grounded("T 415 555 0199 415 555 0100", extract.ContactFields{Phone: "+14155550100"})

	assert.Equal(t, "+14155550100", got.Phone)
}

func TestContactFields_MergeKeepsExisting(t *testing.T) {
	t.Parallel()

	base := extract.ContactFields{Name: "Ann Lee"}
	merged := base.Merge(extract.ContactFields{Name: "Other", Email: "ann@x.io"})

	assert.Equal(t, "Ann Lee", merged.Name)
	assert.Equal(t, "ann@x.io", merged.Email)
	assert.Equal(t, []string{"name", "email"}, merged.Present())
	assert.Len(t, merged.Missing(), 5)
}
