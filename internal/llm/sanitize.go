package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

var (
	reFence  = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	reScheme = regexp.MustCompile(`(?i)^https?://`)
)

var synonyms = [][2]string{
	{"full_name", extract.FieldName},
	{"organization", extract.FieldCompany},
	{"company_name", extract.FieldCompany},
	{"job_title", extract.FieldTitle},
	{"position", extract.FieldTitle},
	{"email_address", extract.FieldEmail},
	{"e-mail", extract.FieldEmail},
	{"phone_number", extract.FieldPhone},
	{"mobile", extract.FieldPhone},
	{"telephone", extract.FieldPhone},
	{"url", extract.FieldWebsite},
	{"web", extract.FieldWebsite},
}

// StripCodeFence removes a surrounding ```json fence some models add even
// when asked for bare JSON.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (full_name -> name, organization -> company, ...)
// - Drops null/empty values
// - Coerces numeric phones to strings; adds a scheme to websites
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(StripCodeFence(string(raw))), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	for _, syn := range synonyms {
		renamed(syn[0], syn[1])
	}

	// 2) every field must be a non-empty string
	for _, k := range extract.AllFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case float64:
			if k != extract.FieldPhone {
				delete(m, k)
				dropped = append(dropped, k+"(type)")
				continue
			}
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 3) websites carry a scheme, as the heuristics report them
	if v, ok := m[extract.FieldWebsite].(string); ok && !reScheme.MatchString(v) {
		m[extract.FieldWebsite] = "https://" + v
	}

	// 4) remove unknown keys
	allowed := map[string]struct{}{"confidence": {}}
	for _, k := range extract.AllFields {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}
	if c, ok := m["confidence"]; ok {
		if f, isNum := c.(float64); !isNum || f < 0 || f > 1 {
			delete(m, "confidence")
			dropped = append(dropped, "confidence(range)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.refine.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
