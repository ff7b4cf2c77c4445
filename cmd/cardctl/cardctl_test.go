package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand_Stdin(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	out, err := execute(t, "Jane Roe\nRoe Ventures LLC\njane@roe.io\n+44 20 7946 0958\n", "parse", "--confidence", "0.9")
	require.NoError(t, err)

	var a pipeline.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "Jane Roe", a.Fields.Name)
	assert.Equal(t, "Roe Ventures LLC", a.Fields.Company)
	assert.Equal(t, "jane@roe.io", a.Fields.Email)
	assert.Equal(t, "+442079460958", a.Fields.Phone)
	assert.False(t, a.NeedsReview)
}

func TestParseCommand_BadConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := execute(t, "", "parse")
	assert.Error(t, err)
}

func TestBatchCommand_RequiresDir(t *testing.T) {
	_, err := execute(t, "", "batch")
	assert.ErrorContains(t, err, "dir")
}
