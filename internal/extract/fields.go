package extract

// Field names as they appear in JSON and in the Present list.
const (
	FieldName    = "name"
	FieldCompany = "company"
	FieldTitle   = "title"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldWebsite = "website"
	FieldAddress = "address"
)

// AllFields lists field names in display order.
var AllFields = []string{FieldName, FieldCompany, FieldTitle, FieldEmail, FieldPhone, FieldWebsite, FieldAddress}

// ContactFields is the partial contact recovered from card text.
// An empty string means the field was not found; it is omitted from JSON.
type ContactFields struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

// Get returns the value of a field by name.
func (f ContactFields) Get(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldCompany:
		return f.Company
	case FieldTitle:
		return f.Title
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldWebsite:
		return f.Website
	case FieldAddress:
		return f.Address
	}
	return ""
}

// Set assigns a field by name. Unknown names are ignored.
func (f *ContactFields) Set(field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldCompany:
		f.Company = value
	case FieldTitle:
		f.Title = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldWebsite:
		f.Website = value
	case FieldAddress:
		f.Address = value
	}
}

// Present returns the names of populated fields in display order.
func (f ContactFields) Present() []string {
	out := make([]string, 0, len(AllFields))
	for _, name := range AllFields {
		if f.Get(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// Missing returns the names of empty fields in display order.
func (f ContactFields) Missing() []string {
	out := make([]string, 0, len(AllFields))
	for _, name := range AllFields {
		if f.Get(name) == "" {
			out = append(out, name)
		}
	}
	return out
}

// IsEmpty reports whether no field was found.
func (f ContactFields) IsEmpty() bool { return len(f.Present()) == 0 }

// Merge fills the empty fields of f from other; populated fields of f win.
func (f ContactFields) Merge(other ContactFields) ContactFields {
	for _, name := range f.Missing() {
		if v := other.Get(name); v != "" {
			f.Set(name, v)
		}
	}
	return f
}
