package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// headerLines is how many leading lines are considered for name, company and title.
const headerLines = 3

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// Phone candidates stay on one line; digit count is checked separately.
	rePhone    = regexp.MustCompile(`\+?[\d(][\d ().-]{6,}\d`)
	reNotPhone = regexp.MustCompile(`[^\d+]`)
	reDigits   = regexp.MustCompile(`\d+`)
	reDate     = regexp.MustCompile(`^(?:\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./]\d{2,4})$`)
	reWebsite  = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}\b(?:/\S*)?`)
	reScheme   = regexp.MustCompile(`(?i)^https?://`)

	reCompany = regexp.MustCompile(`(?i)\b(?:inc|corp|llc|ltd|company|corporation|group|enterprises)\b|\bco\.`)
	reTitle   = regexp.MustCompile(`(?i)\b(?:manager|director|ceo|cto|president|vice|senior|junior|lead|head|chief|officer|coordinator|specialist|analyst|consultant|engineer|developer|designer)\b`)
	reAddress = regexp.MustCompile(`(?i)\b(?:street|road|avenue|drive|lane|boulevard|suite|floor|building)\b`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15

	// numbers written without "+" carry at most a trunk or country prefix
	maxLocalDigits = 12

	// shorter runs on an address line are street numbers and postcodes
	minAddressPhoneDigits = 10
)

// Options tunes the extractor. The zero value is valid.
type Options struct {
	// DefaultCallingCode is prepended to 10-digit numbers written without a
	// leading "+". Empty means only "+" is prepended.
	DefaultCallingCode string
}

// DefaultOptions treats bare 10-digit numbers as North American.
var DefaultOptions = Options{DefaultCallingCode: "1"}

// ExtractFields splits recognized card text into contact fields using
// DefaultOptions. It never fails: unmatched fields are left empty.
func ExtractFields(text string) ContactFields {
	return DefaultOptions.ExtractFields(text)
}

// ExtractFields splits recognized card text into contact fields.
func (o Options) ExtractFields(text string) ContactFields {
	var f ContactFields
	if strings.TrimSpace(text) == "" {
		return f
	}
	lines := splitLines(text)

	f.Email = reEmail.FindString(text)

	phoneRaw := findPhone(text)
	if phoneRaw != "" {
		f.Phone = o.NormalizePhone(phoneRaw)
	}

	if site := findWebsite(text); site != "" {
		f.Website = normalizeWebsite(site)
	}

	for i := 0; i < len(lines) && i < headerLines; i++ {
		line := lines[i]
		if (f.Email != "" && line == f.Email) || (phoneRaw != "" && line == phoneRaw) {
			continue
		}
		// name, then company, then title; first unfilled match wins the line
		switch {
		case f.Name == "" && isLikelyName(line):
			f.Name = line
		case f.Company == "" && isLikelyCompany(line):
			f.Company = line
		case f.Title == "" && isLikelyTitle(line):
			f.Title = line
		}
	}

	for _, line := range lines {
		if reAddress.MatchString(line) {
			f.Address = line
			break
		}
	}
	return f
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func findPhone(text string) string {
	if c := phoneCandidates(text); len(c) > 0 {
		return c[0]
	}
	return ""
}

// phoneCandidates returns the phone-shaped substrings of text in order.
// Dates are skipped, and so are short digit runs on address lines.
func phoneCandidates(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		addressLine := reAddress.MatchString(line)
		for _, run := range rePhone.FindAllString(line, -1) {
			for _, c := range splitPhoneRun(run) {
				n := countDigits(c)
				if n < minPhoneDigits || reDate.MatchString(c) {
					continue
				}
				if addressLine && n < minAddressPhoneDigits {
					continue
				}
				out = append(out, c)
			}
		}
	}
	return out
}

// splitPhoneRun cuts a run of digit groups into numbers at group boundaries,
// so two numbers printed side by side stay apart.
func splitPhoneRun(run string) []string {
	var out []string
	for run != "" {
		groups := reDigits.FindAllStringIndex(run, -1)
		if len(groups) == 0 {
			break
		}
		limit := maxLocalDigits
		if strings.HasPrefix(run, "+") {
			limit = maxPhoneDigits
		}
		end, n := 0, 0
		for _, g := range groups {
			if n+g[1]-g[0] > limit {
				break
			}
			n += g[1] - g[0]
			end = g[1]
		}
		if end == 0 {
			// one group longer than any number
			end = groups[0][1]
		} else {
			out = append(out, run[:end])
		}
		run = strings.TrimLeft(run[end:], " ().-")
	}
	return out
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// NormalizePhone strips a phone number to digits and "+", prefixing the
// default calling code for bare 10-digit numbers.
func (o Options) NormalizePhone(raw string) string {
	p := reNotPhone.ReplaceAllString(raw, "")
	if strings.HasPrefix(p, "+") {
		return p
	}
	if o.DefaultCallingCode != "" && len(p) == 10 {
		return "+" + o.DefaultCallingCode + p
	}
	return "+" + p
}

// findWebsite returns the first domain-like token that is not part of an
// e-mail address.
func findWebsite(text string) string {
	if c := websiteCandidates(text); len(c) > 0 {
		return c[0]
	}
	return ""
}

// websiteCandidates returns the domain-like tokens of text with e-mail
// addresses blanked out first.
func websiteCandidates(text string) []string {
	masked := []byte(text)
	for _, loc := range reEmail.FindAllStringIndex(text, -1) {
		for i := loc[0]; i < loc[1]; i++ {
			masked[i] = ' '
		}
	}
	var out []string
	for _, loc := range reWebsite.FindAllIndex(masked, -1) {
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func normalizeWebsite(site string) string {
	if reScheme.MatchString(site) {
		return site
	}
	return "https://" + site
}

func isLikelyName(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		for i, r := range []rune(tok) {
			if !unicode.IsLetter(r) {
				return false
			}
			if i == 0 && !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}

func isLikelyCompany(line string) bool { return reCompany.MatchString(line) }

func isLikelyTitle(line string) bool { return reTitle.MatchString(line) }
