package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(PortfolioFile, KeyAnalyzeResume)
	require.NoError(t, err)
	assert.Contains(t, prompt, "avatarPrompt")
	assert.Contains(t, prompt, "personalInfo")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(PortfolioFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestAllKeysPresent(t *testing.T) {
	ClearCache()

	for _, key := range []string{KeyAnalyzeResume, KeyAvatarImage, KeyEditResume, KeyParseResume} {
		prompt, err := Get(PortfolioFile, key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, you said {{.Text}}", map[string]string{
		"Name": "Ada",
		"Text": "{{.Name}}",
	})
	assert.Equal(t, "Hello Ada, you said {{.Name}}", out, "values must not be re-expanded")

	assert.Equal(t, "unchanged {{.X}}", Format("unchanged {{.X}}", nil))
}

func TestRender_EditResume(t *testing.T) {
	ClearCache()

	prompt, err := Render(KeyEditResume, map[string]string{
		"HTMLContent": "<h1>Jane</h1>",
		"Instruction": "make the summary shorter",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "<h1>Jane</h1>")
	assert.Contains(t, prompt, "make the summary shorter")
	assert.NotContains(t, prompt, "{{.HTMLContent}}")
}
