package extract

import "strings"

// Grounded keeps only the fields of f that can be derived from text using
// DefaultOptions.
func Grounded(text string, f ContactFields) ContactFields {
	return DefaultOptions.Grounded(text, f)
}

// Grounded keeps only the fields of f that can be derived from text: a
// verbatim substring, the phone normalization of a phone-shaped substring, or
// the scheme-normalized form of a domain-like substring outside any e-mail
// address.
func (o Options) Grounded(text string, f ContactFields) ContactFields {
	var out ContactFields
	for _, name := range f.Present() {
		v := f.Get(name)
		var ok bool
		switch name {
		case FieldPhone:
			ok = o.phoneGrounded(text, v)
		case FieldWebsite:
			ok = websiteGrounded(text, v)
		default:
			ok = strings.Contains(text, v)
		}
		if ok {
			out.Set(name, v)
		}
	}
	return out
}

func (o Options) phoneGrounded(text, phone string) bool {
	for _, c := range phoneCandidates(text) {
		if o.NormalizePhone(c) == phone {
			return true
		}
	}
	return false
}

// websiteGrounded accepts a scheme-qualified site only when it names a
// domain-like token of text that is not part of an e-mail address.
func websiteGrounded(text, site string) bool {
	if !reScheme.MatchString(site) {
		return false
	}
	want := siteKey(site)
	if want == "" {
		return false
	}
	for _, c := range websiteCandidates(text) {
		if siteKey(c) == want {
			return true
		}
	}
	return false
}

func siteKey(site string) string {
	s := strings.ToLower(reScheme.ReplaceAllString(site, ""))
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
