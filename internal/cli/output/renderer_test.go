package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/neteinstein/pickaname/pkg/core"
)

var sample = []core.Name{
	{ID: 1, Name: "João", Gender: core.GenderMale, Notes: "Forma de John"},
	{ID: 2, Name: "Maria", Gender: core.GenderFemale},
	{ID: 3, Name: "Ariel", Gender: core.GenderUnspecified, Notes: "a|b"},
}

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{"", ModeMarkdown},
		{ModeAuto, ModeMarkdown},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
		{ModeYAML, ModeYAML},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_NamesMarkdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown)
	require.NoError(t, r.Names("Names", sample))

	got := out.String()
	assert.Contains(t, got, "# Names (3)")
	assert.Contains(t, got, "| 1 | João | Male | Forma de John |")
	assert.Contains(t, got, "| 2 | Maria | Female |  |")
	assert.Contains(t, got, `| 3 | Ariel |  | a\|b |`)
}

func TestRenderer_NamesText(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Names("Names", sample))

	got := out.String()
	assert.Contains(t, got, "Names (3)")
	assert.Contains(t, got, "João")
	assert.Contains(t, got, "Female")
	assert.NotContains(t, got, "\x1b[", "non-terminal output should not be styled")
}

func TestRenderer_ImportRuns(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []*core.ImportRun{
		{ID: "b", Source: "embedded:database.data", Status: core.RunStatusCompleted, StartedAt: started, Succeeded: 30},
		{ID: "a", Source: "embedded:database.data", Status: core.RunStatusFailed, StartedAt: started.Add(-time.Hour), Failed: 2},
	}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown)
		r.ImportRuns("Recent imports", runs)

		got := out.String()
		assert.Contains(t, got, "## Recent imports")
		assert.Contains(t, got, "| completed | 30 | 0 | embedded:database.data |")
		assert.Contains(t, got, "| failed | 0 | 2 | embedded:database.data |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		r.ImportRuns("Recent imports", runs)

		got := out.String()
		assert.Contains(t, got, "Recent imports")
		assert.Contains(t, got, "completed")
		assert.Contains(t, got, "failed")
	})
}

func TestRenderer_NamesEmpty(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Names("Search", nil))
	assert.Contains(t, out.String(), "(0 names)")

	r, out, _ = newTestRenderer(ModeJSON)
	require.NoError(t, r.Names("Search", nil))
	assert.JSONEq(t, "[]", out.String())
}

func TestRenderer_NamesJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)
	require.NoError(t, r.Names("Names", sample[:1]))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "João", got[0]["name"])
	assert.Equal(t, "MALE", got[0]["gender"])
}

func TestRenderer_NameYAML(t *testing.T) {
	r, out, _ := newTestRenderer(ModeYAML)
	require.NoError(t, r.Name(sample[1]))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Maria", got["name"])
	assert.Equal(t, "FEMALE", got["gender"])
}

func TestRenderer_NameDetail(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Name(sample[0]))

	got := out.String()
	assert.Contains(t, got, "João")
	assert.Contains(t, got, "Male")
	assert.Contains(t, got, "Forma de John")

	r, out, _ = newTestRenderer(ModeMarkdown)
	require.NoError(t, r.Name(sample[2]))
	assert.Contains(t, out.String(), "# Ariel")
	assert.Contains(t, out.String(), "- **Gender:** -")
}

func TestRenderer_Error(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	r.Error("Name not found")

	assert.Empty(t, out.String())
	assert.Equal(t, "Error: Name not found\n", errOut.String())
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
}
