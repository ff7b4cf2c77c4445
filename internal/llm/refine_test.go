package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/llm"
)

type fakeGenerator struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Model() string { return "fake-1" }

const card = `Jane Doe
Lumen Labs
jane@lumen.io
Tel: (415) 555-0100
Visit lumen.io`

func newRefiner(t *testing.T, gen llm.Generator) *llm.Refiner {
	t.Helper()
	r, err := llm.NewRefiner(gen, extract.DefaultOptions, nil)
	require.NoError(t, err)
	return r
}

func TestRefiner_FillsOnlyMissingGroundedFields(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "```json\n" + `{
		"name": "Janet Doe",
		"company": "Lumen Labs",
		"title": "Chief Invented Officer",
		"phone_number": "(415) 555-0100",
		"website": "lumen.io"
	}` + "\n```"}
	base := extract.ContactFields{Name: "Jane Doe", Email: "jane@lumen.io"}

	got, err := newRefiner(t, gen).Refine(context.Background(), card, base)

	require.NoError(t, err)
	assert.Equal(t, extract.ContactFields{
		Name:    "Jane Doe", // heuristic value wins
		Company: "Lumen Labs",
		Email:   "jane@lumen.io",
		Phone:   "+14155550100",
		Website: "https://lumen.io",
	}, got)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Fields still needed: company, title, phone, website, address")
}

func TestRefiner_SkipsWhenComplete(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	full := extract.ContactFields{
		Name: "a", Company: "b", Title: "c", Email: "d", Phone: "e", Website: "f", Address: "g",
	}

	got, err := newRefiner(t, gen).Refine(context.Background(), card, full)

	require.NoError(t, err)
	assert.Equal(t, full, got)
	assert.Zero(t, gen.calls)
}

func TestRefiner_Errors(t *testing.T) {
	t.Parallel()

	base := extract.ContactFields{Email: "jane@lumen.io"}
	tests := []struct {
		name string
		gen  *fakeGenerator
		want string
	}{
		{name: "generator", gen: &fakeGenerator{err: errors.New("quota")}, want: "quota"},
		{name: "not json", gen: &fakeGenerator{reply: "sorry, I can't"}, want: "decode"},
		{name: "schema", gen: &fakeGenerator{reply: `{"website": "not a url at all"}`}, want: "schema validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newRefiner(t, tt.gen).Refine(context.Background(), card, base)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, base, got)
		})
	}
}

func TestRefiner_ModelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "fake-1", newRefiner(t, &fakeGenerator{}).ModelName())
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	t.Parallel()

	p := llm.BuildUserPrompt(strings.Repeat("x", 5000), extract.ContactFields{})
	assert.Contains(t, p, "(truncated)")
	assert.NotContains(t, p, "Already extracted")
}

func TestBuildUserPrompt_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// 3-byte runes put the byte limit in the middle of a character
	p := llm.BuildUserPrompt("Dr"+strings.Repeat("株式会社", 1000), extract.ContactFields{})
	assert.Contains(t, p, "(truncated)")
	assert.True(t, utf8.ValidString(p))
}
