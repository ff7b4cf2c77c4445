package llm

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
)

// maxPromptText bounds how much OCR text is sent; cards are short, so
// anything longer is usually a mis-scan of a full page.
const maxPromptText = 3000

// BuildSystemPrompt composes the system message: extraction rules, the
// no-invention constraint and the JSON Schema.
func BuildSystemPrompt() string {
	schema, _ := json.MarshalIndent(BuildContactJSONSchema(), "", "  ")
	parts := []string{
		"You are a business card parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Copy values exactly as they appear in the card text. Never guess, translate, or invent a value.",
		"If a field is not present on the card, omit it. Never output null or empty strings.",
		"'name' is a person's name, 'company' the organization, 'title' the person's role.",
		"'phone' is the first phone number as printed; 'website' is a URL or bare domain.",
		"'address' is the postal address line as printed.",
		"Optionally include 'confidence' (0..1) for how sure you are overall.",
		"JSON Schema:\n" + string(schema),
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the OCR text and tells the model which fields
// the heuristics already found, so it only spends effort on the rest.
func BuildUserPrompt(text string, base extract.ContactFields) string {
	var b strings.Builder
	if missing := base.Missing(); len(missing) > 0 {
		b.WriteString("Fields still needed: ")
		b.WriteString(strings.Join(missing, ", "))
		b.WriteString("\n")
	}
	if known, err := json.Marshal(base); err == nil && !base.IsEmpty() {
		b.WriteString("Already extracted (do not change): ")
		b.Write(known)
		b.WriteString("\n")
	}

	txt := strings.TrimSpace(text)
	b.WriteString("\nCard text:\n")
	if len(txt) > maxPromptText {
		cut := maxPromptText
		for cut > 0 && !utf8.RuneStart(txt[cut]) {
			cut--
		}
		b.WriteString(txt[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(txt)
	}
	return b.String()
}
