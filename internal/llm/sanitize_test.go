package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/internal/llm"
)

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"full_name": " Jane Doe ",
		"organization": "Lumen Labs",
		"title": null,
		"phone": 4155550100,
		"website": "www.lumen.io",
		"email": "",
		"linkedin": "jdoe",
		"confidence": 1.7
	}`)

	out, dropped, err := llm.NormalizeAndSanitizeJSON(raw, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Jane Doe",
		"company": "Lumen Labs",
		"phone": "4155550100",
		"website": "https://www.lumen.io"
	}`, string(out))
	assert.Contains(t, dropped, "title(null)")
	assert.Contains(t, dropped, "email(empty)")
	assert.Contains(t, dropped, "linkedin(unknown)")
	assert.Contains(t, dropped, "confidence(range)")
	require.NoError(t, llm.ValidateJSONAgainstSchema(llm.BuildContactJSONSchema(), out))
}

func TestNormalizeAndSanitizeJSON_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, _, err := llm.NormalizeAndSanitizeJSON([]byte("[1,2"), nil)
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("  {\"a\":1} "))
}
