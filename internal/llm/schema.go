package llm

import "github.com/joseph-ayodele/b2breeze/internal/extract"

// BuildContactJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it locally to validate.
// Nothing is required: a card may carry any subset of fields.
func BuildContactJSONSchema() map[string]any {
	props := map[string]any{
		extract.FieldName:    stringProp(120),
		extract.FieldCompany: stringProp(160),
		extract.FieldTitle:   stringProp(120),
		extract.FieldEmail: map[string]any{
			"type":    "string",
			"pattern": `^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`,
		},
		extract.FieldPhone: map[string]any{
			"type":    "string",
			"pattern": `^\+?[\d ().-]{7,24}$`,
		},
		extract.FieldWebsite: map[string]any{
			"type":    "string",
			"pattern": `^https?://\S+$`,
		},
		extract.FieldAddress: stringProp(300),
		"confidence":         map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func stringProp(max int) map[string]any {
	return map[string]any{"type": "string", "minLength": 1, "maxLength": max}
}
